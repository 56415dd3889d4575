// Package config provides user configuration for the airscan backend.
//
// Configuration lives in a YAML file in the platform config directory
// (e.g. ~/.config/airscan/config.yaml on Linux):
//
//	version: 1
//	discovery:
//	  enabled: true
//	  init_scan_window_ms: 2500
//	  list_timeout_seconds: 5
//	devices:
//	  "Kyocera eSCL": http://192.168.1.102:9095/eSCL
//
// Statically configured devices under "devices" are registered directly
// with the device manager at startup and do not depend on mDNS discovery.
// A missing config file is not an error; defaults apply.
package config
