package device

import (
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"
)

const testCapsXML = `<?xml version="1.0" encoding="UTF-8"?>
<scan:ScannerCapabilities
    xmlns:scan="http://schemas.hp.com/imaging/escl/2011/05/03"
    xmlns:pwg="http://www.pwg.org/schemas/2010/12/sm">
  <pwg:MakeAndModel>Kyocera ECOSYS M2040dn</pwg:MakeAndModel>
  <scan:Platen>
    <scan:PlatenInputCaps>
      <scan:MaxWidth>2550</scan:MaxWidth>
      <scan:MaxHeight>3508</scan:MaxHeight>
      <scan:SettingProfiles>
        <scan:SettingProfile>
          <scan:ColorModes>
            <scan:ColorMode>Grayscale8</scan:ColorMode>
            <scan:ColorMode>RGB24</scan:ColorMode>
          </scan:ColorModes>
          <scan:SupportedResolutions>
            <scan:DiscreteResolutions>
              <scan:DiscreteResolution>
                <scan:XResolution>200</scan:XResolution>
                <scan:YResolution>200</scan:YResolution>
              </scan:DiscreteResolution>
              <scan:DiscreteResolution>
                <scan:XResolution>300</scan:XResolution>
                <scan:YResolution>300</scan:YResolution>
              </scan:DiscreteResolution>
            </scan:DiscreteResolutions>
          </scan:SupportedResolutions>
        </scan:SettingProfile>
      </scan:SettingProfiles>
    </scan:PlatenInputCaps>
  </scan:Platen>
  <scan:Adf>
    <scan:AdfSimplexInputCaps>
      <scan:MaxWidth>2550</scan:MaxWidth>
      <scan:MaxHeight>4200</scan:MaxHeight>
      <scan:SettingProfiles>
        <scan:SettingProfile>
          <scan:ColorModes>
            <scan:ColorMode>RGB24</scan:ColorMode>
          </scan:ColorModes>
          <scan:SupportedResolutions>
            <scan:DiscreteResolutions>
              <scan:DiscreteResolution>
                <scan:XResolution>300</scan:XResolution>
                <scan:YResolution>300</scan:YResolution>
              </scan:DiscreteResolution>
            </scan:DiscreteResolutions>
          </scan:SupportedResolutions>
        </scan:SettingProfile>
      </scan:SettingProfiles>
    </scan:AdfSimplexInputCaps>
  </scan:Adf>
</scan:ScannerCapabilities>`

// fakeTransport is an in-memory Transport recording every request
type fakeTransport struct {
	mu       sync.Mutex
	requests []string
	handler  func(ctx context.Context, url string) (int, []byte, error)
}

func (t *fakeTransport) Get(ctx context.Context, url string) (int, []byte, error) {
	t.mu.Lock()
	t.requests = append(t.requests, url)
	h := t.handler
	t.mu.Unlock()

	if h != nil {
		return h(ctx, url)
	}
	return 200, []byte(testCapsXML), nil
}

func (t *fakeTransport) Requests() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.requests...)
}

func endpoint(addr string) Endpoint {
	return Endpoint{Addr: net.ParseIP(addr), Port: 80, RS: "eSCL"}
}

func TestFound_DeviceBecomesReady(t *testing.T) {
	ft := &fakeTransport{}
	mgr := NewManager(ft)
	defer mgr.Stop()

	mgr.Found("Printer1", true, []Endpoint{endpoint("192.0.2.5")})

	infos := mgr.List()
	if len(infos) != 1 {
		t.Fatalf("List() returned %d devices, want 1", len(infos))
	}
	if infos[0].Name != "Printer1" {
		t.Errorf("Name = %q, want %q", infos[0].Name, "Printer1")
	}
	if infos[0].Vendor != "Kyocera" {
		t.Errorf("Vendor = %q, want %q", infos[0].Vendor, "Kyocera")
	}
	if infos[0].Model != "Kyocera ECOSYS M2040dn" {
		t.Errorf("Model = %q, want %q", infos[0].Model, "Kyocera ECOSYS M2040dn")
	}
	if infos[0].Type != DeviceType {
		t.Errorf("Type = %q, want %q", infos[0].Type, DeviceType)
	}

	reqs := ft.Requests()
	if len(reqs) != 1 {
		t.Fatalf("transport saw %d requests, want 1: %v", len(reqs), reqs)
	}
	want := "http://192.0.2.5:80/eSCL/ScannerCapabilities"
	if reqs[0] != want {
		t.Errorf("request URL = %q, want %q", reqs[0], want)
	}
}

func TestFound_DuplicateNameIgnored(t *testing.T) {
	ft := &fakeTransport{}
	mgr := NewManager(ft)
	defer mgr.Stop()

	mgr.Found("Printer1", true, []Endpoint{endpoint("192.0.2.5")})
	mgr.Found("Printer1", true, []Endpoint{endpoint("192.0.2.6")})

	mgr.List()
	if got := mgr.Size(); got != 1 {
		t.Errorf("Size() = %d, want 1", got)
	}
}

func TestAddressFailover_SequentialInOrder(t *testing.T) {
	ft := &fakeTransport{
		handler: func(ctx context.Context, url string) (int, []byte, error) {
			// Only the third candidate responds
			if strings.Contains(url, "192.0.2.3") {
				return 200, []byte(testCapsXML), nil
			}
			return 503, nil, nil
		},
	}
	mgr := NewManager(ft)
	defer mgr.Stop()

	mgr.Found("Printer1", true, []Endpoint{
		endpoint("192.0.2.1"),
		endpoint("192.0.2.2"),
		endpoint("192.0.2.3"),
	})

	infos := mgr.List()
	if len(infos) != 1 {
		t.Fatalf("List() returned %d devices, want 1", len(infos))
	}

	// Exactly three attempts, strictly in list order
	want := []string{
		"http://192.0.2.1:80/eSCL/ScannerCapabilities",
		"http://192.0.2.2:80/eSCL/ScannerCapabilities",
		"http://192.0.2.3:80/eSCL/ScannerCapabilities",
	}
	reqs := ft.Requests()
	if len(reqs) != len(want) {
		t.Fatalf("transport saw %d requests, want %d: %v", len(reqs), len(want), reqs)
	}
	for i := range want {
		if reqs[i] != want[i] {
			t.Errorf("request[%d] = %q, want %q", i, reqs[i], want[i])
		}
	}

	// The active base address must be the candidate that succeeded
	dev := mgr.Open("Printer1")
	if dev == nil {
		t.Fatal("Open() returned nil for ready device")
	}
	defer mgr.Close(dev)
	if got := dev.baseURL.Host; got != "192.0.2.3:80" {
		t.Errorf("active base address host = %q, want %q", got, "192.0.2.3:80")
	}
}

func TestAddressExhaustion_DeviceRemoved(t *testing.T) {
	ft := &fakeTransport{
		handler: func(ctx context.Context, url string) (int, []byte, error) {
			return 500, nil, nil
		},
	}
	mgr := NewManager(ft)
	defer mgr.Stop()

	mgr.Found("Printer1", true, []Endpoint{
		endpoint("192.0.2.1"),
		endpoint("192.0.2.2"),
	})

	infos := mgr.List()
	if len(infos) != 0 {
		t.Errorf("List() returned %d devices, want 0", len(infos))
	}
	if got := mgr.Size(); got != 0 {
		t.Errorf("Size() = %d, want 0 after exhaustion", got)
	}
	if got := len(ft.Requests()); got != 2 {
		t.Errorf("transport saw %d requests, want 2", got)
	}
}

func TestParseFailure_TreatedAsFetchFailure(t *testing.T) {
	ft := &fakeTransport{
		handler: func(ctx context.Context, url string) (int, []byte, error) {
			return 200, []byte("this is not XML"), nil
		},
	}
	mgr := NewManager(ft)
	defer mgr.Stop()

	mgr.Found("Printer1", true, []Endpoint{endpoint("192.0.2.5")})

	if infos := mgr.List(); len(infos) != 0 {
		t.Errorf("List() returned %d devices, want 0", len(infos))
	}
	if got := mgr.Size(); got != 0 {
		t.Errorf("Size() = %d, want 0", got)
	}
}

func TestRemoved_CancelsPendingRequests(t *testing.T) {
	started := make(chan struct{})
	cancelled := make(chan error, 1)
	ft := &fakeTransport{
		handler: func(ctx context.Context, url string) (int, []byte, error) {
			close(started)
			<-ctx.Done()
			cancelled <- ctx.Err()
			return 0, nil, ctx.Err()
		},
	}
	mgr := NewManager(ft)
	defer mgr.Stop()

	mgr.Found("Printer1", false, []Endpoint{endpoint("192.0.2.5")})

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("capability request never issued")
	}

	mgr.Removed("Printer1")

	if got := mgr.Size(); got != 0 {
		t.Errorf("Size() = %d, want 0 after removal", got)
	}

	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("pending request was not cancelled by removal")
	}

	// Give a suppressed completion handler time to misfire; it would panic
	// on the halted record if suppression were broken
	time.Sleep(100 * time.Millisecond)
}

func TestRemoved_UnknownNameIgnored(t *testing.T) {
	mgr := NewManager(&fakeTransport{})
	defer mgr.Stop()

	mgr.Removed("no-such-device")
}

func TestList_ReturnsImmediatelyWhenReady(t *testing.T) {
	ft := &fakeTransport{}
	mgr := NewManager(ft)
	defer mgr.Stop()

	mgr.Found("Printer1", true, []Endpoint{endpoint("192.0.2.5")})
	mgr.List() // settle

	start := time.Now()
	infos := mgr.List()
	elapsed := time.Since(start)

	if len(infos) != 1 {
		t.Fatalf("List() returned %d devices, want 1", len(infos))
	}
	if elapsed > 500*time.Millisecond {
		t.Errorf("List() took %v, should return without blocking", elapsed)
	}
}

func TestList_TimesOutOnStuckDevice(t *testing.T) {
	ft := &fakeTransport{
		handler: func(ctx context.Context, url string) (int, []byte, error) {
			<-ctx.Done() // never completes until cancelled
			return 0, nil, ctx.Err()
		},
	}
	mgr := NewManager(ft)
	defer mgr.Stop()
	mgr.SetListTimeout(150 * time.Millisecond)

	mgr.Found("Printer1", true, []Endpoint{endpoint("192.0.2.5")})

	start := time.Now()
	infos := mgr.List()
	elapsed := time.Since(start)

	if len(infos) != 0 {
		t.Errorf("List() returned %d devices, want 0", len(infos))
	}
	if elapsed < 140*time.Millisecond {
		t.Errorf("List() returned after %v, should have waited out the timeout", elapsed)
	}
	if elapsed > 2*time.Second {
		t.Errorf("List() took %v, should return at the timeout", elapsed)
	}
}

func TestList_WaitsForInitScanComplete(t *testing.T) {
	ft := &fakeTransport{}
	mgr := NewManager(ft)
	defer mgr.Stop()

	var mu sync.Mutex
	scanDone := false
	mgr.SetInitScanComplete(func() bool {
		mu.Lock()
		defer mu.Unlock()
		return scanDone
	})

	results := make(chan []Info, 1)
	go func() { results <- mgr.List() }()

	select {
	case <-results:
		t.Fatal("List() returned before initial scan completed")
	case <-time.After(100 * time.Millisecond):
	}

	mu.Lock()
	scanDone = true
	mu.Unlock()
	mgr.InitScanFinished()

	select {
	case <-results:
	case <-time.After(2 * time.Second):
		t.Fatal("List() did not wake on InitScanFinished")
	}
}

func TestAddStatic_FetchesAgainstFixedURL(t *testing.T) {
	ft := &fakeTransport{}
	mgr := NewManager(ft)
	defer mgr.Stop()

	if err := mgr.AddStatic("Office MFP", "http://192.0.2.9:9095/eSCL"); err != nil {
		t.Fatalf("AddStatic() error = %v", err)
	}

	infos := mgr.List()
	if len(infos) != 1 || infos[0].Name != "Office MFP" {
		t.Fatalf("List() = %+v, want one device named %q", infos, "Office MFP")
	}

	// The configured path must gain a trailing slash so the relative
	// capability request resolves under it
	reqs := ft.Requests()
	want := "http://192.0.2.9:9095/eSCL/ScannerCapabilities"
	if len(reqs) != 1 || reqs[0] != want {
		t.Errorf("requests = %v, want [%q]", reqs, want)
	}
}

func TestAddStatic_RejectsBadURL(t *testing.T) {
	mgr := NewManager(&fakeTransport{})
	defer mgr.Stop()

	if err := mgr.AddStatic("bad", "ftp://192.0.2.9/"); err == nil {
		t.Error("AddStatic() should reject non-http URL")
	}
}

func TestOpen_RefSurvivesRemoval(t *testing.T) {
	ft := &fakeTransport{}
	mgr := NewManager(ft)
	defer mgr.Stop()

	mgr.Found("Printer1", true, []Endpoint{endpoint("192.0.2.5")})
	mgr.List()

	dev := mgr.Open("Printer1")
	if dev == nil {
		t.Fatal("Open() returned nil for ready device")
	}

	mgr.Removed("Printer1")

	// The record must survive the removal while the handle is held, but
	// stop being usable
	if dev.Name() != "Printer1" {
		t.Errorf("Name() = %q after removal, want %q", dev.Name(), "Printer1")
	}
	if _, err := dev.GetOption(OptResolution); !IsNotReady(err) {
		t.Errorf("GetOption() after removal = %v, want not-ready error", err)
	}

	mgr.Close(dev) // final release, must not panic
}

func TestOpen_UnknownOrNotReady(t *testing.T) {
	ft := &fakeTransport{
		handler: func(ctx context.Context, url string) (int, []byte, error) {
			<-ctx.Done()
			return 0, nil, ctx.Err()
		},
	}
	mgr := NewManager(ft)
	defer mgr.Stop()

	if dev := mgr.Open("no-such-device"); dev != nil {
		t.Error("Open() should return nil for unknown device")
	}

	mgr.Found("Printer1", false, []Endpoint{endpoint("192.0.2.5")})
	if dev := mgr.Open("Printer1"); dev != nil {
		t.Error("Open() should return nil while negotiation is pending")
	}
}

func TestStop_PurgesTable(t *testing.T) {
	ft := &fakeTransport{}
	mgr := NewManager(ft)

	mgr.Found("Printer1", true, []Endpoint{endpoint("192.0.2.5")})
	mgr.Found("Printer2", true, []Endpoint{endpoint("192.0.2.6")})
	mgr.List()

	mgr.Stop()
	if got := mgr.Size(); got != 0 {
		t.Errorf("Size() = %d after Stop, want 0", got)
	}
}

func TestEndToEnd_FoundListRemoveList(t *testing.T) {
	ft := &fakeTransport{}
	mgr := NewManager(ft)
	defer mgr.Stop()

	mgr.Found("Printer1", true, []Endpoint{endpoint("192.0.2.5")})

	infos := mgr.List()
	if len(infos) != 1 || infos[0].Name != "Printer1" {
		t.Fatalf("List() = %+v, want one device named Printer1", infos)
	}

	// Capability document advertises two sources; the default must be the
	// first in preference order
	dev := mgr.Open("Printer1")
	if dev == nil {
		t.Fatal("Open() returned nil")
	}
	src, err := dev.GetOption(OptSource)
	if err != nil {
		t.Fatalf("GetOption(OptSource) error = %v", err)
	}
	if src != "Flatbed" {
		t.Errorf("default source = %v, want Flatbed", src)
	}
	mgr.Close(dev)

	mgr.Removed("Printer1")
	if infos := mgr.List(); len(infos) != 0 {
		t.Errorf("List() after removal = %+v, want empty", infos)
	}
}

func TestList_SortedByName(t *testing.T) {
	ft := &fakeTransport{}
	mgr := NewManager(ft)
	defer mgr.Stop()

	mgr.Found("Zebra", true, []Endpoint{endpoint("192.0.2.7")})
	mgr.Found("Alpha", true, []Endpoint{endpoint("192.0.2.8")})

	infos := mgr.List()
	if len(infos) != 2 {
		t.Fatalf("List() returned %d devices, want 2", len(infos))
	}
	if infos[0].Name != "Alpha" || infos[1].Name != "Zebra" {
		t.Errorf("List() order = [%s, %s], want [Alpha, Zebra]", infos[0].Name, infos[1].Name)
	}
}
