package httpx

import (
	"math/rand"
	"net"
	"net/http"
	"time"
)

var defaultClient *http.Client

// Default returns a shared HTTP client with sensible timeouts.
func Default() *http.Client {
	if defaultClient != nil {
		return defaultClient
	}
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	defaultClient = &http.Client{
		Timeout:   20 * time.Second,
		Transport: transport,
	}
	return defaultClient
}

// userAgents is a small pool of modern desktop browser strings. Recreation.gov
// rejects requests carrying no (or an obviously stale) User-Agent.
var userAgents = []string{
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64; rv:127.0) Gecko/20100101 Firefox/127.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.5 Safari/605.1.15",
}

// Headers is a browser-like header set applied to every outgoing request.
// Construct one per process and pass it to whoever makes requests; the
// User-Agent stays fixed for the lifetime of the value.
type Headers struct {
	userAgent string
}

// RandomBrowserHeaders picks a User-Agent from the pool at random.
func RandomBrowserHeaders() Headers {
	src := rand.NewSource(time.Now().UnixNano())
	r := rand.New(src)
	return Headers{userAgent: userAgents[r.Intn(len(userAgents))]}
}

// Apply sets the header set on the request.
func (h Headers) Apply(r *http.Request) {
	ua := h.userAgent
	if ua == "" {
		ua = userAgents[0]
	}
	r.Header.Set("User-Agent", ua)
	r.Header.Set("Accept", "application/json, text/plain, */*")
	r.Header.Set("Accept-Language", "en-US,en;q=0.9")
	r.Header.Set("Connection", "keep-alive")
}
