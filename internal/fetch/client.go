package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

const (
	// DefaultTimeout bounds every request made by a Client.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent identifies requests when no site overrides it.
	DefaultUserAgent = "webwaiter/1.0 (+https://github.com/nao1215/webwaiter)"

	// maxRedirects mirrors what browsers tolerate before giving up.
	maxRedirects = 10

	// checkProxyTimeout is short because the check only talks to the proxy.
	checkProxyTimeout = 2 * time.Second
)

// Client builds HTTP clients for inspections. A Client is cheap to create;
// build one per target so request decorations stay with their site.
type Client struct {
	proxyAddress string
	dialer       proxy.Dialer
	timeout      time.Duration
	userAgent    string
	cookie       string
	headers      map[string]string
}

// ClientOption configures a Client.
type ClientOption func(*Client) error

// WithProxy routes every connection through the SOCKS5 proxy at address.
// An empty address leaves the client on direct connections.
func WithProxy(address string) ClientOption {
	return func(c *Client) error {
		if address == "" {
			return nil
		}
		if !isValidProxyAddress(address) {
			return fmt.Errorf("%w: %q", ErrInvalidProxyAddress, address)
		}
		dialer, err := proxy.SOCKS5("tcp", address, nil, proxy.Direct)
		if err != nil {
			return fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		c.proxyAddress = address
		c.dialer = dialer
		return nil
	}
}

// WithTimeout sets the overall timeout of each request.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) error {
		if timeout > 0 {
			c.timeout = timeout
		}
		return nil
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) error {
		if userAgent != "" {
			c.userAgent = userAgent
		}
		return nil
	}
}

// WithCookie attaches a raw cookie string such as "session=abc; theme=dark".
func WithCookie(cookie string) ClientOption {
	return func(c *Client) error {
		c.cookie = cookie
		return nil
	}
}

// WithHeaders attaches extra headers to every request.
func WithHeaders(headers map[string]string) ClientOption {
	return func(c *Client) error {
		if len(headers) == 0 {
			return nil
		}
		c.headers = make(map[string]string, len(headers))
		for k, v := range headers {
			c.headers[k] = v
		}
		return nil
	}
}

// NewClient creates a Client. It does not contact the proxy; call
// CheckProxy for that.
func NewClient(opts ...ClientOption) (*Client, error) {
	c := &Client{
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ProxyAddress returns the SOCKS5 proxy address, or "" for direct connections.
func (c *Client) ProxyAddress() string {
	return c.proxyAddress
}

// UserAgent returns the User-Agent sent with each request.
func (c *Client) UserAgent() string {
	return c.userAgent
}

// Cookie returns the configured raw cookie string.
func (c *Client) Cookie() string {
	return c.cookie
}

// Headers returns a copy of the extra request headers.
func (c *Client) Headers() map[string]string {
	out := make(map[string]string, len(c.headers))
	for k, v := range c.headers {
		out[k] = v
	}
	return out
}

// Timeout returns the per-request timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// HTTPClient returns a new http.Client carrying the configured routing and
// request decorations. Each call gets its own cookie jar.
func (c *Client) HTTPClient() *http.Client {
	transport := &http.Transport{
		DialContext:         c.dialContext,
		MaxIdleConns:        32,
		MaxIdleConnsPerHost: 8,
		IdleConnTimeout:     30 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		ForceAttemptHTTP2:   c.dialer == nil,
	}

	jar, _ := cookiejar.New(nil) //nolint:errcheck // cookiejar.New only fails with invalid options

	return &http.Client{
		Transport: &decoratingTransport{
			base:      transport,
			userAgent: c.userAgent,
			cookie:    c.cookie,
			headers:   c.headers,
		},
		Timeout: c.timeout,
		Jar:     jar,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

func (c *Client) dialContext(ctx context.Context, network, address string) (net.Conn, error) {
	if c.dialer == nil {
		var d net.Dialer
		return d.DialContext(ctx, network, address)
	}
	if cd, ok := c.dialer.(proxy.ContextDialer); ok {
		return cd.DialContext(ctx, network, address)
	}
	return c.dialer.Dial(network, address)
}

// decoratingTransport adds the user agent, cookie and headers to every
// request, redirects included.
type decoratingTransport struct {
	base      http.RoundTripper
	userAgent string
	cookie    string
	headers   map[string]string
}

// RoundTrip implements http.RoundTripper.
func (t *decoratingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())

	if t.userAgent != "" && clone.Header.Get("User-Agent") == "" {
		clone.Header.Set("User-Agent", t.userAgent)
	}
	if t.cookie != "" {
		if existing := clone.Header.Get("Cookie"); existing != "" {
			clone.Header.Set("Cookie", existing+"; "+t.cookie)
		} else {
			clone.Header.Set("Cookie", t.cookie)
		}
	}
	for key, value := range t.headers {
		clone.Header.Set(key, value)
	}

	return t.base.RoundTrip(clone)
}

// isValidProxyAddress reports whether address is host:port with a port in
// 1..65535. IPv6 hosts must be bracketed.
func isValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" || strings.ContainsAny(host, " /") {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}

// SOCKS5 wire constants used by CheckProxy.
const (
	socks5Version      = 0x05
	socks5AuthNone     = 0x00
	socks5CmdConnect   = 0x01
	socks5AddrTypeName = 0x03

	socks5ProbeHost = "example.com"
	socks5ProbePort = 80
)

// CheckProxy verifies that the configured proxy speaks SOCKS5 and answers a
// CONNECT request. The outcome of the CONNECT itself does not matter.
// A client without a proxy always reports ProxyStatusOK.
func (c *Client) CheckProxy(ctx context.Context) ProxyStatus {
	if c.proxyAddress == "" {
		return ProxyStatusOK
	}
	return checkSOCKS5(ctx, c.proxyAddress)
}

func checkSOCKS5(ctx context.Context, address string) ProxyStatus {
	ctx, cancel := context.WithTimeout(ctx, checkProxyTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return ProxyStatusTimeout
		}
		return ProxyStatusCannotConnect
	}
	defer conn.Close()

	deadline, _ := ctx.Deadline()
	if err := conn.SetDeadline(deadline); err != nil {
		return ProxyStatusCannotConnect
	}

	if _, err := conn.Write([]byte{socks5Version, 0x01, socks5AuthNone}); err != nil {
		return ProxyStatusCannotConnect
	}

	greeting := make([]byte, 2)
	if _, err := io.ReadFull(conn, greeting); err != nil {
		return readFailure(err)
	}
	if greeting[0] != socks5Version || greeting[1] != socks5AuthNone {
		return ProxyStatusWrongType
	}

	req := []byte{socks5Version, socks5CmdConnect, 0x00, socks5AddrTypeName, byte(len(socks5ProbeHost))}
	req = append(req, socks5ProbeHost...)
	req = append(req, byte(socks5ProbePort>>8), byte(socks5ProbePort&0xff))
	if _, err := conn.Write(req); err != nil {
		return ProxyStatusCannotConnect
	}

	reply := make([]byte, 4)
	if _, err := io.ReadFull(conn, reply); err != nil {
		return readFailure(err)
	}
	if reply[0] != socks5Version {
		return ProxyStatusWrongType
	}
	return ProxyStatusOK
}

func readFailure(err error) ProxyStatus {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ProxyStatusTimeout
	}
	return ProxyStatusWrongType
}
