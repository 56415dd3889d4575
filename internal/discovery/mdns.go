package discovery

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/yetamrra/sane-airscan-wsd/internal/device"
	"github.com/yetamrra/sane-airscan-wsd/internal/logging"
)

const (
	// ServiceType is the DNS-SD service type eSCL scanners advertise
	ServiceType = "_uscan._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultInitScanWindow is the bounded period treated as the initial
	// sweep. Devices found inside it are held init-wait until resolved.
	DefaultInitScanWindow = 2500 * time.Millisecond

	// DefaultPort is the fallback port when the advertisement carries none
	DefaultPort = 80
)

// Browser performs continuous mDNS discovery of eSCL scanners and feeds
// found-events into the device manager.
//
// Discovery runs until Stop (or context cancellation). Found-events fired
// within the initial scan window carry the init-scan flag, which makes the
// manager's List wait for those devices to resolve.
type Browser struct {
	// InitScanWindow is the duration of the initial sweep
	InitScanWindow time.Duration

	mgr      *device.Manager
	done     atomic.Bool
	cancel   context.CancelFunc
	finished *time.Timer
}

// NewBrowser creates a browser feeding the given manager
func NewBrowser(mgr *device.Manager) *Browser {
	return &Browser{
		InitScanWindow: DefaultInitScanWindow,
		mgr:            mgr,
	}
}

// Start begins browsing for devices. It wires the browser's init-scan
// status into the manager and returns once browsing is running; discovered
// devices flow into the manager asynchronously.
func (b *Browser) Start(ctx context.Context) error {
	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	ctx, b.cancel = context.WithCancel(ctx)
	b.mgr.SetInitScanComplete(b.InitScanComplete)

	entries := make(chan *zeroconf.ServiceEntry)
	go func() {
		for entry := range entries {
			name, endpoints := parseServiceEntry(entry)
			if len(endpoints) == 0 {
				continue
			}
			logging.Debug("mDNS service entry",
				zap.String("device", name),
				zap.Int("addresses", len(endpoints)),
			)
			b.mgr.Found(name, !b.done.Load(), endpoints)
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		b.cancel()
		return fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	b.finished = time.AfterFunc(b.InitScanWindow, func() {
		b.done.Store(true)
		logging.Info("initial mDNS sweep finished")
		b.mgr.InitScanFinished()
	})

	logging.Info("mDNS discovery started",
		zap.String("service", ServiceType),
		zap.Duration("init_scan_window", b.InitScanWindow),
	)
	return nil
}

// Stop ends browsing. The initial sweep is marked finished so List callers
// do not wait out their full timeout against a stopped browser.
func (b *Browser) Stop() {
	if b.finished != nil && b.finished.Stop() {
		b.done.Store(true)
		b.mgr.InitScanFinished()
	}
	if b.cancel != nil {
		b.cancel()
	}
}

// InitScanComplete reports whether the initial sweep window has closed.
// This is the poll hook consulted by the manager's List predicate.
func (b *Browser) InitScanComplete() bool {
	return b.done.Load()
}

// parseServiceEntry converts a zeroconf service entry into a device name
// and its ordered candidate endpoint list. IPv4 addresses come first: they
// need no scope handling and in practice respond more reliably. Returns an
// empty list for entries without any address.
func parseServiceEntry(entry *zeroconf.ServiceEntry) (string, []device.Endpoint) {
	name := entry.Instance
	if name == "" {
		name = strings.TrimSuffix(entry.HostName, ".")
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	// The "rs" TXT key is the resource path prefix of the eSCL endpoint
	var rs string
	for _, txt := range entry.Text {
		if value, ok := strings.CutPrefix(txt, "rs="); ok {
			rs = value
			break
		}
	}

	var endpoints []device.Endpoint
	for _, addr := range entry.AddrIPv4 {
		endpoints = append(endpoints, device.Endpoint{Addr: addr, Port: port, RS: rs})
	}
	for _, addr := range entry.AddrIPv6 {
		endpoints = append(endpoints, device.Endpoint{Addr: addr, Port: port, RS: rs})
	}

	return name, endpoints
}
