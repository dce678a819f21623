package fetch

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewClient(t *testing.T) {
	t.Parallel()

	t.Run("defaults to direct connections", func(t *testing.T) {
		t.Parallel()

		client, err := NewClient()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client.ProxyAddress() != "" {
			t.Errorf("ProxyAddress() = %q, want empty", client.ProxyAddress())
		}
		if client.Timeout() != DefaultTimeout {
			t.Errorf("Timeout() = %v, want %v", client.Timeout(), DefaultTimeout)
		}
		if client.UserAgent() != DefaultUserAgent {
			t.Errorf("UserAgent() = %q, want %q", client.UserAgent(), DefaultUserAgent)
		}
	})

	t.Run("applies options", func(t *testing.T) {
		t.Parallel()

		client, err := NewClient(
			WithProxy("127.0.0.1:9050"),
			WithTimeout(5*time.Second),
			WithUserAgent("custom/1.0"),
			WithCookie("session=abc"),
			WithHeaders(map[string]string{"X-Test": "1"}),
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client.ProxyAddress() != "127.0.0.1:9050" {
			t.Errorf("ProxyAddress() = %q", client.ProxyAddress())
		}
		if client.Timeout() != 5*time.Second {
			t.Errorf("Timeout() = %v", client.Timeout())
		}
		if client.UserAgent() != "custom/1.0" {
			t.Errorf("UserAgent() = %q", client.UserAgent())
		}
		if client.Cookie() != "session=abc" {
			t.Errorf("Cookie() = %q", client.Cookie())
		}
		if client.Headers()["X-Test"] != "1" {
			t.Errorf("Headers() = %v", client.Headers())
		}
	})

	t.Run("empty values keep defaults", func(t *testing.T) {
		t.Parallel()

		client, err := NewClient(WithProxy(""), WithTimeout(0), WithUserAgent(""))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if client.ProxyAddress() != "" || client.Timeout() != DefaultTimeout || client.UserAgent() != DefaultUserAgent {
			t.Errorf("defaults were overwritten: %+v", client)
		}
	})

	t.Run("invalid proxy address returns error", func(t *testing.T) {
		t.Parallel()

		_, err := NewClient(WithProxy("127.0.0.1"))
		if !errors.Is(err, ErrInvalidProxyAddress) {
			t.Errorf("expected ErrInvalidProxyAddress, got %v", err)
		}
	})
}

func TestIsValidProxyAddress(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		address  string
		expected bool
	}{
		{"valid IPv4 with port", "127.0.0.1:9050", true},
		{"valid localhost with port", "localhost:9050", true},
		{"valid hostname with port", "tor.example.com:9050", true},
		{"bracketed IPv6", "[::1]:9050", true},
		{"empty string", "", false},
		{"no port", "127.0.0.1", false},
		{"empty host", ":9050", false},
		{"empty port", "127.0.0.1:", false},
		{"port zero", "127.0.0.1:0", false},
		{"port too large", "127.0.0.1:70000", false},
		{"multiple colons", "127.0.0.1:9050:extra", false},
		{"only colon", ":", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := isValidProxyAddress(tc.address); got != tc.expected {
				t.Errorf("isValidProxyAddress(%q) = %v, expected %v", tc.address, got, tc.expected)
			}
		})
	}
}

func TestProxyStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status ProxyStatus
		str    string
		err    error
	}{
		{ProxyStatusOK, "OK", nil},
		{ProxyStatusWrongType, "wrong type (not SOCKS5)", ErrProxyNotSOCKS5},
		{ProxyStatusCannotConnect, "cannot connect", ErrProxyCannotConnect},
		{ProxyStatusTimeout, "timeout", ErrProxyTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.str, func(t *testing.T) {
			t.Parallel()

			if tt.status.String() != tt.str {
				t.Errorf("String() = %q, want %q", tt.status.String(), tt.str)
			}
			if !errors.Is(tt.status.Err(), tt.err) {
				t.Errorf("Err() = %v, want %v", tt.status.Err(), tt.err)
			}
		})
	}

	if ProxyStatus(99).String() != "unknown" {
		t.Error("unknown status should stringify as unknown")
	}
	if ProxyStatus(99).Err() == nil {
		t.Error("unknown status should have an error")
	}
}

func TestHTTPClient(t *testing.T) {
	t.Parallel()

	t.Run("decorates every request", func(t *testing.T) {
		t.Parallel()

		var got http.Header
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.Header.Clone()
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		client, err := NewClient(
			WithUserAgent("inspector/2.0"),
			WithCookie("session=abc"),
			WithHeaders(map[string]string{"Authorization": "Bearer token"}),
		)
		if err != nil {
			t.Fatal(err)
		}

		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
		if err != nil {
			t.Fatal(err)
		}
		req.Header.Set("Cookie", "existing=1")

		resp, err := client.HTTPClient().Do(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()

		if got.Get("User-Agent") != "inspector/2.0" {
			t.Errorf("User-Agent = %q", got.Get("User-Agent"))
		}
		if got.Get("Cookie") != "existing=1; session=abc" {
			t.Errorf("Cookie = %q", got.Get("Cookie"))
		}
		if got.Get("Authorization") != "Bearer token" {
			t.Errorf("Authorization = %q", got.Get("Authorization"))
		}
	})

	t.Run("does not modify the caller's request", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		client, err := NewClient(WithHeaders(map[string]string{"X-Test": "1"}))
		if err != nil {
			t.Fatal(err)
		}
		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
		if err != nil {
			t.Fatal(err)
		}
		resp, err := client.HTTPClient().Do(req)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()

		if req.Header.Get("X-Test") != "" {
			t.Error("original request was modified")
		}
	})

	t.Run("stops after too many redirects", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/loop", http.StatusFound)
		}))
		defer server.Close()

		client, err := NewClient()
		if err != nil {
			t.Fatal(err)
		}
		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, server.URL, nil)
		if err != nil {
			t.Fatal(err)
		}
		resp, err := client.HTTPClient().Do(req)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		resp.Body.Close()

		if resp.StatusCode != http.StatusFound {
			t.Errorf("StatusCode = %d, want %d", resp.StatusCode, http.StatusFound)
		}
	})

	t.Run("uses the configured timeout", func(t *testing.T) {
		t.Parallel()

		client, err := NewClient(WithTimeout(7 * time.Second))
		if err != nil {
			t.Fatal(err)
		}
		httpClient := client.HTTPClient()
		if httpClient.Timeout != 7*time.Second {
			t.Errorf("Timeout = %v", httpClient.Timeout)
		}
		if httpClient.Jar == nil {
			t.Error("expected a cookie jar")
		}
	})
}

// serveOnce accepts one connection and hands it to handle.
func serveOnce(t *testing.T, handle func(net.Conn)) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0") //nolint:noctx // test code
	if err != nil {
		t.Fatalf("failed to start mock server: %v", err)
	}
	t.Cleanup(func() { listener.Close() })

	go func() {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		handle(conn)
	}()

	return listener.Addr().String()
}

func TestCheckProxy(t *testing.T) {
	t.Parallel()

	t.Run("direct client is always OK", func(t *testing.T) {
		t.Parallel()

		client, err := NewClient()
		if err != nil {
			t.Fatal(err)
		}
		if status := client.CheckProxy(context.Background()); status != ProxyStatusOK {
			t.Errorf("expected ProxyStatusOK, got %v", status)
		}
	})

	t.Run("returns CannotConnect for a closed port", func(t *testing.T) {
		t.Parallel()

		listener, err := net.Listen("tcp", "127.0.0.1:0") //nolint:noctx // test code
		if err != nil {
			t.Fatal(err)
		}
		addr := listener.Addr().String()
		listener.Close()

		client, err := NewClient(WithProxy(addr))
		if err != nil {
			t.Fatal(err)
		}
		if status := client.CheckProxy(context.Background()); status != ProxyStatusCannotConnect {
			t.Errorf("expected ProxyStatusCannotConnect, got %v", status)
		}
	})

	t.Run("returns WrongType for an HTTP server", func(t *testing.T) {
		t.Parallel()

		addr := serveOnce(t, func(conn net.Conn) {
			buf := make([]byte, 3)
			_, _ = conn.Read(buf)
			_, _ = conn.Write([]byte("HTTP/1.1 200 OK\r\n\r\n"))
		})

		client, err := NewClient(WithProxy(addr))
		if err != nil {
			t.Fatal(err)
		}
		if status := client.CheckProxy(context.Background()); status != ProxyStatusWrongType {
			t.Errorf("expected ProxyStatusWrongType, got %v", status)
		}
	})

	t.Run("returns WrongType when authentication is required", func(t *testing.T) {
		t.Parallel()

		addr := serveOnce(t, func(conn net.Conn) {
			buf := make([]byte, 3)
			_, _ = conn.Read(buf)
			_, _ = conn.Write([]byte{0x05, 0xFF})
		})

		client, err := NewClient(WithProxy(addr))
		if err != nil {
			t.Fatal(err)
		}
		if status := client.CheckProxy(context.Background()); status != ProxyStatusWrongType {
			t.Errorf("expected ProxyStatusWrongType, got %v", status)
		}
	})

	t.Run("returns OK for a SOCKS5 proxy", func(t *testing.T) {
		t.Parallel()

		addr := serveOnce(t, func(conn net.Conn) {
			buf := make([]byte, 3)
			_, _ = conn.Read(buf)
			_, _ = conn.Write([]byte{0x05, 0x00})
			req := make([]byte, 256)
			_, _ = conn.Read(req)
			_, _ = conn.Write([]byte{0x05, 0x04, 0x00, 0x01, 0, 0, 0, 0, 0, 0})
		})

		client, err := NewClient(WithProxy(addr))
		if err != nil {
			t.Fatal(err)
		}
		if status := client.CheckProxy(context.Background()); status != ProxyStatusOK {
			t.Errorf("expected ProxyStatusOK, got %v", status)
		}
	})

	t.Run("returns Timeout for a silent server", func(t *testing.T) {
		t.Parallel()

		done := make(chan struct{})
		t.Cleanup(func() { close(done) })
		addr := serveOnce(t, func(_ net.Conn) {
			<-done
		})

		client, err := NewClient(WithProxy(addr))
		if err != nil {
			t.Fatal(err)
		}
		if status := client.CheckProxy(context.Background()); status != ProxyStatusTimeout {
			t.Errorf("expected ProxyStatusTimeout, got %v", status)
		}
	})
}
