package device

import (
	"net"
	"strings"
	"testing"
)

func TestEndpointBaseURL(t *testing.T) {
	tests := []struct {
		name string
		ep   Endpoint
		want string
	}{
		{
			name: "IPv4 with resource path",
			ep:   Endpoint{Addr: net.ParseIP("192.0.2.5"), Port: 80, RS: "eSCL"},
			want: "http://192.0.2.5:80/eSCL/",
		},
		{
			name: "IPv4 without resource path",
			ep:   Endpoint{Addr: net.ParseIP("192.0.2.5"), Port: 8080},
			want: "http://192.0.2.5:8080/",
		},
		{
			name: "resource path with surrounding slashes",
			ep:   Endpoint{Addr: net.ParseIP("192.0.2.5"), Port: 80, RS: "/eSCL/"},
			want: "http://192.0.2.5:80/eSCL/",
		},
		{
			name: "global IPv6 is bracketed without zone",
			ep:   Endpoint{Addr: net.ParseIP("2001:db8::1"), Port: 8080, RS: "eSCL"},
			want: "http://[2001:db8::1]:8080/eSCL/",
		},
		{
			name: "link-local IPv6 carries escaped zone",
			ep:   Endpoint{Addr: net.ParseIP("fe80::1"), Port: 80, RS: "eSCL", ZoneIndex: 2},
			want: "http://[fe80::1%252]:80/eSCL/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := tt.ep.BaseURL()
			if err != nil {
				t.Fatalf("BaseURL() error = %v", err)
			}
			if u.String() != tt.want {
				t.Errorf("BaseURL() = %q, want %q", u.String(), tt.want)
			}
			if !strings.HasSuffix(u.Path, "/") {
				t.Errorf("BaseURL() path %q must end with /", u.Path)
			}
		})
	}
}

func TestEndpointBaseURL_ZoneOnlyForLinkLocal(t *testing.T) {
	// A zone index on a non-link-local address must not leak into the URL
	ep := Endpoint{Addr: net.ParseIP("2001:db8::2"), Port: 80, ZoneIndex: 3}
	u, err := ep.BaseURL()
	if err != nil {
		t.Fatalf("BaseURL() error = %v", err)
	}
	if strings.Contains(u.String(), "%") {
		t.Errorf("BaseURL() = %q, non-link-local address must carry no zone", u.String())
	}
}

func TestEndpointBaseURL_RelativeResolution(t *testing.T) {
	ep := Endpoint{Addr: net.ParseIP("192.0.2.5"), Port: 80, RS: "eSCL"}
	base, err := ep.BaseURL()
	if err != nil {
		t.Fatalf("BaseURL() error = %v", err)
	}

	// The trailing slash guarantees relative requests resolve under the
	// resource path, not beside it
	ref := base.JoinPath("ScannerCapabilities")
	want := "http://192.0.2.5:80/eSCL/ScannerCapabilities"
	if ref.String() != want {
		t.Errorf("resolved URL = %q, want %q", ref.String(), want)
	}
}
