package device

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/yetamrra/sane-airscan-wsd/internal/logging"
)

// Transport issues HTTP GET requests on behalf of the device manager.
// Implementations must honor context cancellation; the manager relies on it
// to abort in-flight requests when a device is removed.
type Transport interface {
	Get(ctx context.Context, url string) (status int, body []byte, err error)
}

// HTTPTransport is the production Transport built on net/http.
//
// It deliberately sets no request timeout: the device-management design has
// exactly one cancellation path, device removal, and a hung request must
// stay cancellable through it rather than racing a second timer.
type HTTPTransport struct {
	Client *http.Client
}

// NewHTTPTransport creates a Transport backed by a default HTTP client
func NewHTTPTransport() *HTTPTransport {
	return &HTTPTransport{Client: &http.Client{}}
}

// Get performs a GET request and returns the status code and full body
func (t *HTTPTransport) Get(ctx context.Context, u string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := t.Client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return resp.StatusCode, body, nil
}

// result is the completion of one tracked request
type result struct {
	status int
	body   []byte
	err    error
}

// pendingRequest tracks one in-flight request so device removal can cancel
// it. The cancelled bit is set under m.mu before cancel() is called, and the
// completion goroutine checks it under the same mutex, so a handler can
// never observe a device whose removal has begun.
type pendingRequest struct {
	cancel    context.CancelFunc
	cancelled bool
}

// issueGetLocked starts an asynchronous GET for a resource relative to the
// device's current base URL. The request is recorded in the device's pending
// set at issue time; on completion it is removed from the set and done is
// invoked under m.mu, unless the request was cancelled by removal, in which
// case done never runs. Caller holds m.mu.
func (m *Manager) issueGetLocked(dev *Device, path string, done func(*Device, result)) {
	u := dev.baseURL.ResolveReference(&url.URL{Path: path})

	ctx, cancel := context.WithCancel(context.Background())
	req := &pendingRequest{cancel: cancel}
	dev.pending[req] = struct{}{}

	logging.LogHTTPRequest(dev.name, http.MethodGet, u.String())

	go func() {
		defer cancel()
		status, body, err := m.transport.Get(ctx, u.String())

		m.mu.Lock()
		defer m.mu.Unlock()

		if req.cancelled {
			// Cancelled by removal; the record is being torn down
			return
		}
		delete(dev.pending, req)

		logging.LogHTTPResponse(dev.name, u.String(), status, len(body))
		done(dev, result{status: status, body: body, err: err})
	}()
}
