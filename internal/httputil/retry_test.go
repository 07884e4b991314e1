// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Use a tiny base delay so tests finish quickly.
	RetryBaseDelay = 1 * time.Millisecond
}

func newTestClient(ts *httptest.Server) *Client {
	return &Client{HTTP: ts.Client(), UserAgent: "research-digest/test"}
}

func TestGetText_ImmediateSuccess(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "research-digest/test", r.Header.Get("User-Agent"))
		fmt.Fprint(w, "<rss/>")
	}))
	defer ts.Close()

	body, err := newTestClient(ts).GetText(context.Background(), ts.URL)
	require.NoError(t, err)
	assert.Equal(t, "<rss/>", body)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetJSON_RetriesThenSucceeds(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n <= 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"count": 7}`)
	}))
	defer ts.Close()

	var out struct {
		Count int `json:"count"`
	}
	err := newTestClient(ts).GetJSON(context.Background(), ts.URL, &out)
	require.NoError(t, err)
	assert.Equal(t, 7, out.Count)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGetText_ExhaustsAttempts(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	_, err := newTestClient(ts).GetText(context.Background(), ts.URL)
	require.Error(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusServiceUnavailable, se.Code)
	assert.Contains(t, err.Error(), "failed after 3 attempts")
}

func TestGetText_SurfacesFinalAttemptError(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	_, err := newTestClient(ts).GetText(context.Background(), ts.URL)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.Code)
}

func TestGetJSON_MalformedBodyIsRetried(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprint(w, `{"count": `)
	}))
	defer ts.Close()

	var out map[string]any
	err := newTestClient(ts).GetJSON(context.Background(), ts.URL, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding JSON")
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGetText_CustomAttempts(t *testing.T) {
	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	c := newTestClient(ts)
	c.MaxAttempts = 5
	_, err := c.GetText(context.Background(), ts.URL)
	require.Error(t, err)
	assert.Equal(t, int32(5), atomic.LoadInt32(&calls))
}

func TestGetText_ContextCancelledDuringBackoff(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	c := newTestClient(ts)
	c.BaseDelay = 500 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := c.GetText(ctx, ts.URL)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGetText_NetworkFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	url := ts.URL
	ts.Close()

	_, err := (&Client{}).GetText(context.Background(), url)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 3 attempts")
}
