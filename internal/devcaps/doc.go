// Package devcaps models eSCL scanner capabilities and parses the
// ScannerCapabilities XML document that devices serve over HTTP.
//
// A capability document describes the device vendor/model and, per scan
// source (flatbed, ADF front, ADF back), the supported color modes, the
// supported resolutions (a discrete DPI list or a continuous range), and
// the scan-window geometry converted here from eSCL's 1/300-inch units to
// millimeters.
//
// # Usage Example
//
//	caps, err := devcaps.Parse(body)
//	if err != nil {
//	    // treat like any other capability-fetch failure
//	}
//	id, _ := caps.FirstSource()
//	src := caps.Source(id)
//	mode := src.ChooseColorMode(devcaps.ColorModeColor)
//	dpi := src.ChooseResolution(300)
//
// Parse rejects documents with no usable source: a scanner that advertises
// neither color modes nor resolutions anywhere cannot be driven, so its
// discovery attempt must fail rather than produce a half-usable device.
package devcaps
