// Package device is the discovery-and-lifecycle core of the airscan
// backend: it maintains the authoritative table of known scan devices,
// drives asynchronous capability negotiation over HTTP against each
// candidate network address, and exposes a wait-until-ready device listing
// API.
//
// # Lifecycle
//
// A device enters the table on a found-event (or static configuration) and
// starts probing its candidate addresses strictly in list order. Each probe
// fetches the eSCL ScannerCapabilities document; the first address that
// yields a valid document makes the device ready. When every candidate
// fails, the device is removed, and rediscovery requires a fresh
// found-event. Removal cancels all in-flight requests before the device is
// marked halted, so no completion handler ever observes a removed record.
//
// # Concurrency
//
// One mutex guards the table and all device state; a condition variable
// signals readiness changes. Table mutation happens on the discovery
// goroutine and on request-completion goroutines; List and the option
// accessors may be called from any goroutine. List re-checks its wait
// predicate on every wake and bounds the wait with a timeout, returning
// whatever ready devices exist when it fires.
//
// # Ownership
//
// Device records are reference counted: the table holds one reference while
// the device is listed, and each handle returned by Open holds one more. A
// caller may therefore hold an open handle across a concurrent removal; the
// record stays valid until Close, but produces no further I/O completions
// once removed.
//
// # Usage Example
//
//	mgr := device.NewManager(nil)
//	defer mgr.Stop()
//
//	// Wire up discovery (found/removed/init-scan events), then:
//	for _, info := range mgr.List() {
//	    fmt.Printf("%s (%s %s)\n", info.Name, info.Vendor, info.Model)
//	}
//
//	if dev := mgr.Open(name); dev != nil {
//	    defer mgr.Close(dev)
//	    dpi, _ := dev.GetOption(device.OptResolution)
//	    _ = dev.SetOption(device.OptSource, "ADF Front")
//	}
package device
