package network

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"gridwatch/src/helpers"
	"gridwatch/src/logger"
	"gridwatch/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(retries int) *AsyncNetworkManager {
	cfg := &models.MConfig{
		Network: models.MNetworkConfig{RequestTimeout: 2, MaxRetries: retries, UserAgent: "test-agent"},
	}
	nm := NewAsyncNetworkManager(cfg, logger.NewLoggerWithOutput(nil, "NetworkTest", io.Discard))
	nm.backoff = time.Millisecond
	return nm
}

func TestGet_SendsParamsAndUserAgent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "A44", r.URL.Query().Get("documentType"))
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		w.Write([]byte("<ok/>"))
	}))
	defer srv.Close()

	body, err := newTestManager(0).Get(context.Background(), srv.URL, map[string]string{"documentType": "A44"})
	require.NoError(t, err)
	assert.Equal(t, "<ok/>", string(body))
}

func TestGet_NonOKIsNetworkError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte("invalid token"))
	}))
	defer srv.Close()

	_, err := newTestManager(3).Get(context.Background(), srv.URL, nil)
	require.Error(t, err)

	var netErr *helpers.NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, http.StatusUnauthorized, netErr.StatusCode)
	assert.Contains(t, err.Error(), "invalid token")
	assert.Equal(t, int32(1), calls.Load(), "4xx must not be retried")
}

func TestGet_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("done"))
	}))
	defer srv.Close()

	body, err := newTestManager(2).Get(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, "done", string(body))
	assert.Equal(t, int32(3), calls.Load())
}

func TestGet_TimeoutIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	nm := newTestManager(0)
	nm.Client.Timeout = 20 * time.Millisecond

	_, err := nm.Get(context.Background(), srv.URL+"?securityToken=secret", nil)
	require.Error(t, err)
	assert.True(t, helpers.IsRecoverable(err))
	assert.NotContains(t, err.Error(), "secret")
}

func TestRedactURL(t *testing.T) {
	got := RedactURL("https://api.example.com/api?documentType=A44&securityToken=abc")
	assert.Contains(t, got, "securityToken="+redacted)
	assert.NotContains(t, got, "abc")

	plain := "https://api.example.com/api?documentType=A44"
	assert.Equal(t, plain, RedactURL(plain))
}
