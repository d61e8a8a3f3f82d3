package network

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"gridwatch/src/helpers"
	"gridwatch/src/interfaces"
	"gridwatch/src/logger"
	"gridwatch/src/models"

	"golang.org/x/time/rate"
)

const (
	maxErrorBody = 512
	redacted     = "REDACTED"
)

// secretParams are masked in every URL that ends up in an error or a log line.
var secretParams = []string{"securityToken"}

type AsyncNetworkManager struct {
	Config       *models.MConfig
	Proxies      interfaces.IProxyPool
	Client       *http.Client
	Logger       *logger.Logger
	limiter      *rate.Limiter
	backoff      time.Duration
	clientMu     sync.RWMutex
}

// -----------------------------------------------------------------------------

func NewAsyncNetworkManager(cfg *models.MConfig, log *logger.Logger) *AsyncNetworkManager {
	var proxies []string
	if cfg.Network.Enabled {
		proxies = cfg.Network.Proxies
	}

	limit := rate.Inf
	if cfg.Network.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.Network.RequestsPerMinute))
	}

	nm := &AsyncNetworkManager{
		Config:       cfg,
		Proxies:      helpers.NewProxyPool(proxies, cfg.Network.UserAgent, log),
		Logger:       log,
		limiter:      rate.NewLimiter(limit, 1),
		backoff:      time.Second,
	}
	nm.Client = nm.createClient()
	return nm
}

// -----------------------------------------------------------------------------

func (nm *AsyncNetworkManager) createClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if proxyURL, ok := nm.Proxies.Current(); ok {
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	return &http.Client{
		Transport: transport,
		Timeout:   nm.Config.Network.RequestTimeoutDuration(),
	}
}

// -----------------------------------------------------------------------------

func (nm *AsyncNetworkManager) rotateProxy() {
	if nm.Proxies.Len() < 2 {
		return
	}

	nm.Proxies.Next()
	client := nm.createClient()

	nm.clientMu.Lock()
	nm.Client = client
	nm.clientMu.Unlock()
}

// -----------------------------------------------------------------------------

// Get performs a GET request with optional retries and proxy rotation.
// Only 429 and 5xx responses and transport errors are retried.
func (nm *AsyncNetworkManager) Get(ctx context.Context, urlStr string, params map[string]string) ([]byte, error) {
	reqUrl, err := url.Parse(urlStr)
	if err != nil {
		return nil, helpers.NewNetworkError("invalid url", 0, err)
	}

	q := reqUrl.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	reqUrl.RawQuery = q.Encode()
	finalUrl := reqUrl.String()

	maxRetries := nm.Config.Network.MaxRetries
	var lastErr error

	for i := 0; i <= maxRetries; i++ {
		if i > 0 {
			if err := sleepCtx(ctx, time.Duration(i*i)*nm.backoff); err != nil {
				return nil, helpers.NewNetworkError("request cancelled", 0, err)
			}
			nm.rotateProxy()
		}

		if err := nm.limiter.Wait(ctx); err != nil {
			return nil, helpers.NewNetworkError("rate limiter", 0, err)
		}

		body, retry, err := nm.do(ctx, finalUrl)
		if err == nil {
			return body, nil
		}

		lastErr = err
		nm.Logger.Info("Request failed (attempt %d/%d): %v", i+1, maxRetries+1, err)
		if !retry {
			break
		}
	}

	return nil, lastErr
}

// -----------------------------------------------------------------------------

func (nm *AsyncNetworkManager) do(ctx context.Context, finalUrl string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalUrl, nil)
	if err != nil {
		return nil, false, helpers.NewNetworkError("build request", 0, redactError(err))
	}
	req.Header.Set("User-Agent", nm.Proxies.UserAgent())

	nm.clientMu.RLock()
	client := nm.Client
	nm.clientMu.RUnlock()

	resp, err := client.Do(req)
	if err != nil {
		return nil, ctx.Err() == nil, helpers.NewNetworkError("request failed", 0, redactError(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		retry := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		msg := fmt.Sprintf("bad status %d", resp.StatusCode)
		if s := strings.TrimSpace(string(snippet)); s != "" {
			msg = fmt.Sprintf("%s: %s", msg, s)
		}
		return nil, retry, helpers.NewNetworkError(msg, resp.StatusCode, nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, helpers.NewNetworkError("read body", resp.StatusCode, err)
	}
	return body, false, nil
}

// -----------------------------------------------------------------------------

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// -----------------------------------------------------------------------------

// RedactURL masks credential query parameters.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	changed := false
	for _, p := range secretParams {
		if q.Has(p) {
			q.Set(p, redacted)
			changed = true
		}
	}
	if !changed {
		return raw
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func redactError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		ue.URL = RedactURL(ue.URL)
	}
	return err
}
