// Package logging provides structured logging for the airscan backend.
//
// This package wraps zap logger with convenience functions for common logging
// patterns used throughout the backend. It provides both general logging
// functions and specialized functions for device and HTTP logging needs.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (per-device lifecycle, HTTP traffic, payload dumps)
//   - Info: Normal operations (discovery start/stop, device ready)
//   - Warn: Non-fatal issues (probe failures, capability parse errors)
//   - Error: Fatal issues (startup failures, critical errors)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Device ready",
//	    zap.String("device", "Kyocera ECOSYS M2040dn"),
//	    zap.String("url", "http://192.168.1.102:9095/eSCL/"),
//	)
//
// # Specialized Logging
//
// The package provides domain-specific logging functions:
//
//	logging.LogDevice(name, "created")
//	logging.LogHTTPRequest(name, "GET", url)
//	logging.LogHTTPResponse(name, url, statusCode, bodyLen)
//	logging.LogRawBytes("ScannerCapabilities body", body)
//
// # Configuration
//
// Logging is silent by default. Set the AIRSCAN_LOG_LEVEL environment
// variable (or call Initialize with an explicit level) to enable output:
//
//	if err := logging.InitializeFromEnv(); err != nil {
//	    log.Fatal(err)
//	}
//	defer logging.Sync()
//
// # Thread Safety
//
// All logging functions are safe for concurrent use. The underlying zap
// logger handles synchronization automatically.
package logging
