package device

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yetamrra/sane-airscan-wsd/internal/devcaps"
	"github.com/yetamrra/sane-airscan-wsd/internal/logging"
)

const (
	// DefaultListTimeout is the max time List waits until the device table
	// is ready
	DefaultListTimeout = 5 * time.Second

	// DefaultResolution is the preferred default resolution in DPI,
	// snapped to each source's supported set
	DefaultResolution = 300

	// DeviceType is the fixed type label reported for every device
	DeviceType = "eSCL network scanner"

	// capabilitiesPath is the eSCL resource holding the capability document
	capabilitiesPath = "ScannerCapabilities"
)

// Info is a point-in-time snapshot of one ready device, independent of
// later registry mutation
type Info struct {
	Name   string `json:"name"`
	Vendor string `json:"vendor"`
	Model  string `json:"model"`
	Type   string `json:"type"`
}

// Manager owns the canonical table of known scan devices and drives their
// lifecycle: insertion on discovery, sequential address probing, capability
// negotiation, and removal with cancellation of in-flight I/O.
//
// One mutex guards the table and every device's state; the condition
// variable signals readiness changes to List callers. All mutation is
// expected from a single logical discovery goroutine plus the request
// completion goroutines; List and the option accessors may run concurrently
// from any goroutine.
type Manager struct {
	mu      sync.Mutex
	cond    *sync.Cond
	devices map[string]*Device

	transport        Transport
	initScanComplete func() bool
	listTimeout      time.Duration
}

// NewManager creates a device manager using the given transport.
// Pass nil to use the production HTTP transport.
func NewManager(transport Transport) *Manager {
	if transport == nil {
		transport = NewHTTPTransport()
	}
	m := &Manager{
		devices:          make(map[string]*Device),
		transport:        transport,
		initScanComplete: func() bool { return true },
		listTimeout:      DefaultListTimeout,
	}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// SetListTimeout overrides the bounded wait used by List
func (m *Manager) SetListTimeout(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listTimeout = d
}

// SetInitScanComplete installs the poll hook reporting whether the external
// discovery mechanism has finished its bounded initial sweep. List waits on
// it in addition to the per-device init-wait flags.
func (m *Manager) SetInitScanComplete(f func() bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f == nil {
		f = func() bool { return true }
	}
	m.initScanComplete = f
}

// Stop removes every device from the table, cancelling all pending I/O.
// Every listed device must have been removed or is removed here; the table
// is empty when Stop returns.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, dev := range m.allLocked() {
		m.delLocked(dev)
	}
	m.cond.Broadcast()
}

// Size returns the current device table size
func (m *Manager) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.devices)
}

// Found handles a "device found" notification from the discovery mechanism.
// A name already present in the table is ignored. Otherwise the device is
// inserted, its candidate address list captured, and probing starts at the
// first candidate.
func (m *Manager) Found(name string, initScan bool, endpoints []Endpoint) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.devices[name] != nil {
		logging.LogDevice(name, "device already exists")
		return
	}
	if len(endpoints) == 0 {
		logging.LogDevice(name, "found with no addresses, ignored")
		return
	}

	dev := m.addLocked(name)
	if initScan {
		dev.initWait = true
	}
	dev.endpoints = append([]Endpoint(nil), endpoints...)
	m.probeLocked(dev, 0)
}

// AddStatic registers a statically configured device with a fixed base URL.
// It follows the same negotiation path as a discovered device, minus the
// address list: a single capability fetch against the given URL, removal on
// failure.
func (m *Manager) AddStatic(name string, baseURL string) error {
	u, err := url.Parse(baseURL)
	if err != nil {
		return fmt.Errorf("invalid base URL for device %q: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid base URL for device %q: scheme must be http or https", name)
	}

	// Relative requests must resolve under the configured path
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.devices[name] != nil {
		logging.LogDevice(name, "device already exists")
		return nil
	}

	dev := m.addLocked(name)
	dev.initWait = true
	dev.baseURL = u
	m.fetchCapabilitiesLocked(dev)
	return nil
}

// Removed handles a "device removed" notification from the discovery
// mechanism. Unknown names are ignored.
func (m *Manager) Removed(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if dev := m.devices[name]; dev != nil {
		m.delLocked(dev)
		m.cond.Broadcast()
	}
}

// InitScanFinished handles the discovery mechanism's notification that its
// bounded initial sweep is complete. It only wakes List waiters; devices
// still probing keep their init-wait flag until they resolve.
func (m *Manager) InitScanFinished() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cond.Broadcast()
}

// List blocks until no device remains in init-wait and the discovery
// mechanism reports its initial scan complete, or until the list timeout
// elapses, whichever comes first. It then returns a snapshot of every ready
// device, ordered by name.
func (m *Manager) List() []Info {
	m.mu.Lock()
	defer m.mu.Unlock()

	deadline := time.Now().Add(m.listTimeout)

	// sync.Cond has no timed wait; a timer broadcast bounds the loop.
	// Predicate and clock are re-checked on every wake, spurious or not.
	timer := time.AfterFunc(m.listTimeout, func() {
		m.mu.Lock()
		m.cond.Broadcast()
		m.mu.Unlock()
	})
	defer timer.Stop()

	for (m.hasInitWaitLocked() || !m.initScanComplete()) && time.Now().Before(deadline) {
		m.cond.Wait()
	}

	ready := m.collectReadyLocked()
	infos := make([]Info, 0, len(ready))
	for _, dev := range ready {
		infos = append(infos, Info{
			Name:   dev.name,
			Vendor: dev.caps.Vendor,
			Model:  dev.caps.Model,
			Type:   DeviceType,
		})
	}
	return infos
}

// Open returns a referenced handle to a ready device, or nil if the name is
// unknown or the device has not completed negotiation. The handle keeps the
// record alive across a concurrent removal; release it with Close.
func (m *Manager) Open(name string) *Device {
	m.mu.Lock()
	defer m.mu.Unlock()

	if dev := m.devices[name]; dev != nil && dev.state == stateReady {
		return dev.ref()
	}
	return nil
}

// Close releases a handle returned by Open
func (m *Manager) Close(dev *Device) {
	dev.unref()
}

// addLocked inserts a new device record. The caller must have checked for
// duplicates; access is single-threaded on the discovery path, so the check
// is advisory rather than atomic. Caller holds m.mu.
func (m *Manager) addLocked(name string) *Device {
	dev := &Device{
		m:       m,
		name:    name,
		state:   stateProbing,
		listed:  true,
		pending: make(map[*pendingRequest]struct{}),
	}
	dev.refs.Store(1) // the registry's reference

	logging.LogDevice(name, "created")
	m.devices[name] = dev
	return dev
}

// delLocked removes a device from the table and halts its pending I/O.
// Every pending request is cancelled before the device is marked halted,
// and no new request can be added once removal has begun, so no completion
// handler fires against the record past this point. A reference held by an
// open handle may keep the record alive after removal. Caller holds m.mu.
func (m *Manager) delLocked(dev *Device) {
	if !dev.listed {
		panic("device: removal of unlisted device")
	}

	logging.LogDevice(dev.name, "removed from device table")
	dev.listed = false
	delete(m.devices, dev.name)

	for req := range dev.pending {
		req.cancelled = true
		req.cancel()
		delete(dev.pending, req)
	}

	dev.state = stateHalted
	dev.initWait = false

	dev.unref()
}

// hasInitWaitLocked reports whether any device is still unresolved from the
// initial scan window. Caller holds m.mu.
func (m *Manager) hasInitWaitLocked() bool {
	for _, dev := range m.devices {
		if dev.initWait {
			return true
		}
	}
	return false
}

// collectReadyLocked returns every ready device, ordered by name.
// Caller holds m.mu.
func (m *Manager) collectReadyLocked() []*Device {
	var ready []*Device
	for _, dev := range m.devices {
		if dev.state == stateReady {
			ready = append(ready, dev)
		}
	}
	sort.Slice(ready, func(i, j int) bool { return ready[i].name < ready[j].name })
	return ready
}

// allLocked returns every device in the table. Caller holds m.mu.
func (m *Manager) allLocked() []*Device {
	all := make([]*Device, 0, len(m.devices))
	for _, dev := range m.devices {
		all = append(all, dev)
	}
	return all
}

// fetchCapabilitiesLocked issues the capability request against the
// device's current base URL. Caller holds m.mu.
func (m *Manager) fetchCapabilitiesLocked(dev *Device) {
	m.issueGetLocked(dev, capabilitiesPath, m.capabilitiesDone)
}

// capabilitiesDone drives the negotiation state machine on completion of a
// capability fetch. Transport errors, non-success statuses, and parse or
// validation errors are all treated identically: advance to the next
// candidate address or remove the device. Success makes the device ready
// and derives its default option selection. Every outcome wakes List
// waiters. Runs under m.mu.
func (m *Manager) capabilitiesDone(dev *Device, res result) {
	defer m.cond.Broadcast()

	var caps *devcaps.Caps
	var err error

	switch {
	case res.err != nil:
		err = res.err
	case res.status < http.StatusOK || res.status >= http.StatusMultipleChoices:
		err = fmt.Errorf("failed to load %s: HTTP status %d", capabilitiesPath, res.status)
	default:
		logging.LogRawBytes("ScannerCapabilities body", res.body)
		caps, err = devcaps.Parse(res.body)
	}

	if err != nil {
		logging.Warn("capability fetch failed",
			zap.String("device", dev.name),
			zap.Error(err),
		)
		m.probeFailedLocked(dev)
		return
	}

	dev.caps = caps

	// A parsed document always has a first source; its absence would have
	// failed validation above.
	id, ok := caps.FirstSource()
	if !ok {
		panic("device: capability document with no sources passed validation")
	}
	dev.selectSourceLocked(id)

	dev.state = stateReady
	dev.initWait = false

	logging.Info("device ready",
		zap.String("device", dev.name),
		zap.String("vendor", caps.Vendor),
		zap.String("model", caps.Model),
		zap.String("url", dev.baseURL.String()),
	)
}
