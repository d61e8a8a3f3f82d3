package helpers

import (
	"fmt"
	"net/url"
	"strings"
	"sync"

	"gridwatch/src/logger"
)

const defaultUserAgent = "gridwatch/1.0 (+https://transparency.entsoe.eu)"

var proxySchemes = map[string]bool{"http": true, "https": true, "socks5": true}

// -----------------------------------------------------------------------------

// ProxyPool hands out outbound proxies round-robin. Entries are parsed once
// when the pool is built; bad entries are logged and left out.
type ProxyPool struct {
	mu        sync.Mutex
	entries   []*url.URL
	cursor    int
	userAgent string
	logger    *logger.Logger
}

// -----------------------------------------------------------------------------

func NewProxyPool(raw []string, userAgent string, log *logger.Logger) *ProxyPool {
	if log == nil {
		log = logger.NewLogger(nil, "ProxyPool")
	}
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	pool := &ProxyPool{userAgent: userAgent, logger: log}
	for _, entry := range raw {
		u, err := ParseProxy(entry)
		if err != nil {
			log.Warning("Skipping proxy: %v", err)
			continue
		}
		pool.entries = append(pool.entries, u)
	}
	return pool
}

// -----------------------------------------------------------------------------

// Current returns the proxy in use, or false when the pool is empty.
func (p *ProxyPool) Current() (*url.URL, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.entries) == 0 {
		return nil, false
	}
	u := *p.entries[p.cursor]
	return &u, true
}

// -----------------------------------------------------------------------------

// Next advances to the following proxy. A pool of one stays put.
func (p *ProxyPool) Next() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.entries) < 2 {
		return
	}
	p.cursor = (p.cursor + 1) % len(p.entries)
	p.logger.Info("Switched outbound proxy to %s", p.entries[p.cursor].Redacted())
}

// -----------------------------------------------------------------------------

func (p *ProxyPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.entries)
}

func (p *ProxyPool) UserAgent() string {
	return p.userAgent
}

// -----------------------------------------------------------------------------

// ParseProxy accepts host:port or scheme://[user:pass@]host:port. A missing
// scheme means http. The returned error never echoes a password.
func ParseProxy(entry string) (*url.URL, error) {
	entry = strings.TrimSpace(entry)
	if entry == "" {
		return nil, fmt.Errorf("empty proxy entry")
	}
	if !strings.Contains(entry, "://") {
		entry = "http://" + entry
	}

	u, err := url.Parse(entry)
	if err != nil {
		return nil, fmt.Errorf("unparsable proxy entry")
	}
	if !proxySchemes[u.Scheme] {
		return nil, fmt.Errorf("proxy %s: scheme %q not supported", u.Redacted(), u.Scheme)
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("proxy %s: missing host", u.Redacted())
	}
	return u, nil
}
