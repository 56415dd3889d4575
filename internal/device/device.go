package device

import (
	"net/url"
	"sync/atomic"

	"github.com/yetamrra/sane-airscan-wsd/internal/devcaps"
	"github.com/yetamrra/sane-airscan-wsd/internal/logging"
)

// lifecycle is the per-device lifecycle state. A device starts probing,
// becomes ready exactly once if some candidate address yields a valid
// capability document, and is halted on removal. Halted is terminal.
type lifecycle int

const (
	stateProbing lifecycle = iota
	stateReady
	stateHalted
)

func (s lifecycle) String() string {
	switch s {
	case stateProbing:
		return "probing"
	case stateReady:
		return "ready"
	case stateHalted:
		return "halted"
	default:
		return "unknown"
	}
}

// Device is one known scan device. All fields except the reference counter
// are guarded by the owning Manager's mutex.
//
// The reference counter keeps the record alive across concurrent teardown:
// the registry holds one reference while the device is listed, and every
// open handle holds one more. The record is "destroyed" (final debug log,
// invariant check) only when the count drops to zero, which requires both
// removal from the registry and release of the last handle, in either order.
type Device struct {
	m    *Manager
	name string
	refs atomic.Int32

	state    lifecycle
	listed   bool // present in the registry table
	initWait bool // found during initial scan, not yet resolved

	// Address probing. endpoints is nil for statically configured devices,
	// which carry a fixed baseURL instead.
	endpoints []Endpoint
	cursor    int
	baseURL   *url.URL

	// In-flight HTTP requests, so removal can cancel them en masse
	pending map[*pendingRequest]struct{}

	caps *devcaps.Caps

	// Current option selection, recomputed when the source changes
	optSource     devcaps.SourceID
	optColorMode  devcaps.ColorMode
	optResolution int
	optTLX        float64
	optTLY        float64
	optBRX        float64
	optBRY        float64
}

// Name returns the immutable device name
func (d *Device) Name() string {
	return d.name
}

// Caps returns the negotiated capabilities, or nil before the device is
// ready. The returned value is immutable once set.
func (d *Device) Caps() *devcaps.Caps {
	d.m.mu.Lock()
	defer d.m.mu.Unlock()
	return d.caps
}

// ref acquires one reference to the device
func (d *Device) ref() *Device {
	d.refs.Add(1)
	return d
}

// unref releases one reference. The last release destroys the record.
func (d *Device) unref() {
	if d.refs.Add(-1) != 0 {
		return
	}

	// The record must already be removed from the registry: destruction
	// with a live registry entry would let a dangling name be rediscovered
	// while the old record still drains.
	if d.listed || d.state != stateHalted {
		panic("device: destroyed while still listed or not halted")
	}

	logging.LogDevice(d.name, "destroyed")
}
