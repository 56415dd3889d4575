// Package discovery provides mDNS-based discovery of eSCL network scanners.
//
// eSCL scanners advertise themselves with the "_uscan._tcp" DNS-SD service
// type. The Browser listens for those advertisements and converts each one
// into a found-event on the device manager, carrying the device name and an
// ordered list of candidate network endpoints (IPv4 before IPv6) plus the
// "rs" resource path from the TXT record.
//
// # Initial scan window
//
// Discovery runs continuously, but the first sweep is special: devices
// found during the bounded initial window are flagged so that the device
// manager's listing API can wait for them to finish capability negotiation
// before returning. When the window closes, the browser notifies the
// manager and reports scan-complete through the poll hook it installs on
// the manager.
//
// # Removal
//
// The underlying zeroconf library delivers additions only; it does not
// surface goodbye packets. Device removal therefore reaches the manager
// through its Removed entry point (driven by higher layers), not from this
// package.
//
// # Network Requirements
//
//   - Requires multicast support on the network interface
//   - Devices must be on the same local network segment
//   - Firewall must allow mDNS (UDP port 5353)
package discovery
