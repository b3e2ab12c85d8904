package httpx

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/proxy"
)

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Doer lets us accept *http.Client or a test double.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type ClientConfig struct {
	Timeout   time.Duration
	ProxyURL  string // socks5://, socks5h://, http:// or https://; bare host:port implies socks5
	ConnLimit int    // total concurrent connections across the scan
}

type dialFunc func(ctx context.Context, network, addr string) (net.Conn, error)

// NewClient builds the shared HTTP client: automatic redirect following,
// optional proxy routing, and a hard cap on concurrent connections.
func NewClient(cfg ClientConfig) (*http.Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.ConnLimit <= 0 {
		cfg.ConnLimit = 50
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,

		ForceAttemptHTTP2:     true,
		MaxIdleConns:          cfg.ConnLimit,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	dial := (&net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}).DialContext

	if cfg.ProxyURL != "" {
		var err error
		dial, err = applyProxy(transport, cfg.ProxyURL, dial)
		if err != nil {
			return nil, err
		}
	}

	// The connection gate backs the scan-wide pool ceiling: a slot is taken
	// when a connection is dialed and held until that connection closes, so
	// idle keep-alive connections count against the cap too.
	transport.DialContext = newConnGate(cfg.ConnLimit).wrap(dial)

	return &http.Client{
		Timeout:   cfg.Timeout,
		Transport: transport,
	}, nil
}

func applyProxy(transport *http.Transport, rawURL string, direct dialFunc) (dialFunc, error) {
	if !strings.Contains(rawURL, "://") {
		rawURL = "socks5://" + rawURL
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse proxy url: %w", err)
	}

	switch u.Scheme {
	case "socks5", "socks5h":
		dialer, err := proxy.FromURL(u, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("create proxy dialer: %w", err)
		}
		transport.Proxy = nil
		if cd, ok := dialer.(proxy.ContextDialer); ok {
			return cd.DialContext, nil
		}
		return func(ctx context.Context, network, addr string) (net.Conn, error) {
			// Dialer without ctx support; best effort.
			return dialer.Dial(network, addr)
		}, nil

	case "http", "https":
		transport.Proxy = http.ProxyURL(u)
		return direct, nil

	default:
		return nil, fmt.Errorf("unsupported proxy scheme %q", u.Scheme)
	}
}

type connGate struct {
	slots chan struct{}
}

func newConnGate(limit int) *connGate {
	return &connGate{slots: make(chan struct{}, limit)}
}

func (g *connGate) wrap(dial dialFunc) dialFunc {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		select {
		case g.slots <- struct{}{}:
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		conn, err := dial(ctx, network, addr)
		if err != nil {
			<-g.slots
			return nil, err
		}
		return &gatedConn{Conn: conn, gate: g}, nil
	}
}

type gatedConn struct {
	net.Conn
	gate *connGate
	once sync.Once
}

func (c *gatedConn) Close() error {
	c.once.Do(func() { <-c.gate.slots })
	return c.Conn.Close()
}

func NewRequest(ctx context.Context, method, rawURL string, body io.Reader, userAgent string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	return req, nil
}
