package device

import (
	"fmt"
	"net"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/yetamrra/sane-airscan-wsd/internal/logging"
)

// Endpoint is one candidate network address at which a discovered device
// might be reachable. Discovery yields an ordered list of these per device;
// they are probed strictly in list order.
type Endpoint struct {
	// Addr is the literal IPv4 or IPv6 address
	Addr net.IP

	// Port is the TCP port the device's eSCL server listens on
	Port int

	// RS is the optional resource path prefix from the mDNS TXT record
	// (typically "eSCL"); empty means the server root
	RS string

	// ZoneIndex is the network interface index. Only meaningful for
	// link-local IPv6 addresses, which are ambiguous without a scope.
	ZoneIndex int
}

// BaseURL builds the eSCL base URL for the endpoint.
//
// IPv6 literals are bracketed. Link-local IPv6 additionally carries an
// explicit zone suffix with the percent escaped as %25, per RFC 6874.
// The path always ends with "/" so relative requests resolve predictably.
func (ep Endpoint) BaseURL() (*url.URL, error) {
	var host string
	if v4 := ep.Addr.To4(); v4 != nil {
		host = v4.String()
	} else {
		literal := ep.Addr.String()
		if ep.Addr.IsLinkLocalUnicast() {
			literal = fmt.Sprintf("%s%%25%d", literal, ep.ZoneIndex)
		}
		host = "[" + literal + "]"
	}

	var raw string
	if rs := strings.Trim(ep.RS, "/"); rs != "" {
		raw = fmt.Sprintf("http://%s:%d/%s/", host, ep.Port, rs)
	} else {
		raw = fmt.Sprintf("http://%s:%d/", host, ep.Port)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to build base URL %q: %w", raw, err)
	}
	return u, nil
}

// String returns the endpoint in host:port form
func (ep Endpoint) String() string {
	return net.JoinHostPort(ep.Addr.String(), fmt.Sprintf("%d", ep.Port))
}

// probeLocked points the device at the idx'th candidate address and issues
// the capability request against it. Caller holds m.mu.
func (m *Manager) probeLocked(dev *Device, idx int) {
	dev.cursor = idx

	u, err := dev.endpoints[idx].BaseURL()
	if err != nil {
		// A malformed candidate cannot be probed; fail it over like any
		// other fetch failure.
		logging.Warn("unusable candidate address",
			zap.String("device", dev.name),
			zap.Error(err),
		)
		m.probeFailedLocked(dev)
		return
	}

	dev.baseURL = u
	logging.LogDevice(dev.name, "probing address", zap.String("url", u.String()))

	m.fetchCapabilitiesLocked(dev)
}

// probeFailedLocked advances to the next candidate address, or removes the
// device when the list is exhausted. Rediscovery then requires a fresh
// found-event. Caller holds m.mu.
func (m *Manager) probeFailedLocked(dev *Device) {
	if dev.endpoints != nil && dev.cursor+1 < len(dev.endpoints) {
		m.probeLocked(dev, dev.cursor+1)
		return
	}

	logging.LogDevice(dev.name, "all addresses exhausted, giving up")
	m.delLocked(dev)
}
