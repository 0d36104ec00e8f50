// Package antidetect provides the rotating-identity HTTP client used for
// out-of-browser calls (the captcha provider). Requests carry a Chrome
// TLS fingerprint via utls and a browser-like header set; the identity
// and egress address rotate on session (re)initialization.
package antidetect

import (
	"context"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	tls2 "github.com/refraction-networking/utls"

	"github.com/use-agent/bookbay/config"
)

var defaultHeaders = map[string]string{
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.5",
	"DNT":             "1",
	"Connection":      "keep-alive",
}

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:121.0) Gecko/20100101 Firefox/121.0",
}

// Client is a paced HTTP session with identity rotation.
type Client struct {
	mu        sync.Mutex
	userAgent string
	proxyPool []string
	proxyIdx  int
	proxy     string
	min, max  time.Duration
	rng       *rand.Rand
}

// New builds a client; the first identity and egress address are rotated
// in immediately.
func New(proxyPool []string, pacing config.PacingConfig) *Client {
	c := &Client{
		proxyPool: proxyPool,
		min:       pacing.MinDelay,
		max:       pacing.MaxDelay,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	c.rotate()
	return c
}

func (c *Client) rotate() {
	c.userAgent = userAgents[c.rng.Intn(len(userAgents))]
	if len(c.proxyPool) > 0 {
		c.proxy = c.proxyPool[c.proxyIdx%len(c.proxyPool)]
		c.proxyIdx++
	}
}

// Reset rotates in a fresh identity and egress address, replacing the
// accumulated request pattern.
func (c *Client) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rotate()
}

// Get fetches the URL after the inter-request delay.
func (c *Client) Get(ctx context.Context, targetURL string) ([]byte, error) {
	return c.do(ctx, http.MethodGet, targetURL, "", nil)
}

// PostForm posts form values after the inter-request delay.
func (c *Client) PostForm(ctx context.Context, targetURL string, form url.Values) ([]byte, error) {
	return c.do(ctx, http.MethodPost, targetURL,
		"application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
}

func (c *Client) do(ctx context.Context, method, targetURL, contentType string, body io.Reader) ([]byte, error) {
	if err := c.delay(ctx); err != nil {
		return nil, err
	}

	c.mu.Lock()
	ua := c.userAgent
	proxy := c.proxy
	c.mu.Unlock()

	transport := &http.Transport{
		DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialTLSChrome(ctx, network, addr)
		},
	}
	if proxy != "" {
		if proxyURL, err := url.Parse(proxy); err == nil && (proxyURL.Scheme == "http" || proxyURL.Scheme == "https") {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}
	client := &http.Client{Transport: transport}
	defer client.CloseIdleConnections()

	req, err := http.NewRequestWithContext(ctx, method, targetURL, body)
	if err != nil {
		return nil, err
	}
	for k, v := range defaultHeaders {
		req.Header.Set(k, v)
	}
	req.Header.Set("User-Agent", ua)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(io.LimitReader(resp.Body, 10*1024*1024)) // 10 MB cap
}

// delay enforces the randomized inter-request pause.
func (c *Client) delay(ctx context.Context) error {
	c.mu.Lock()
	span := c.max - c.min
	d := c.min
	if span > 0 {
		d += time.Duration(c.rng.Int63n(int64(span)))
	}
	c.mu.Unlock()
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// dialTLSChrome establishes a TLS connection using a Chrome fingerprint
// via utls.
func dialTLSChrome(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{}
	rawConn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	host, _, _ := net.SplitHostPort(addr)
	tlsConn := tls2.UClient(rawConn, &tls2.Config{
		ServerName: host,
	}, tls2.HelloChrome_Auto)

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		rawConn.Close()
		return nil, err
	}
	return tlsConn, nil
}
