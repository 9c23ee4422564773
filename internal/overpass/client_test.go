package overpass

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResponse = `{
  "version": 0.6,
  "elements": [
    {"type": "node", "id": 1, "lat": 34.98, "lon": 135.77, "tags": {"name": "伏見稲荷大社", "religion": "shinto"}},
    {"type": "way", "id": 2, "center": {"lat": 34.69, "lon": 135.52}, "tags": {"name": "大阪城", "historic": "castle"}},
    {"type": "node", "id": 3}
  ]
}`

func TestHTTPClient_Query(t *testing.T) {
	var gotQuery, gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotQuery = r.PostForm.Get("data")
		gotContentType = r.Header.Get("Content-Type")
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, time.Second, nil)
	resp, err := c.Query(context.Background(), "[out:json];node(1);out;")
	require.NoError(t, err)

	assert.Equal(t, "[out:json];node(1);out;", gotQuery)
	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	require.Len(t, resp.Elements, 3)

	lat, lon, ok := resp.Elements[0].Coordinates()
	assert.True(t, ok)
	assert.Equal(t, 34.98, lat)
	assert.Equal(t, 135.77, lon)

	lat, lon, ok = resp.Elements[1].Coordinates()
	assert.True(t, ok)
	assert.Equal(t, 34.69, lat)
	assert.Equal(t, 135.52, lon)

	_, _, ok = resp.Elements[2].Coordinates()
	assert.False(t, ok)
}

func TestHTTPClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate_limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL, time.Second, nil).Query(context.Background(), "q")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.Code)
	assert.False(t, errors.Is(err, ErrTimeout))
}

func TestHTTPClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewHTTPClient(srv.URL, 50*time.Millisecond, nil).Query(context.Background(), "q")
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestHTTPClient_RemarkTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"elements":[],"remark":"runtime error: Query timed out in \"query\" at line 3 after 26 seconds."}`))
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL, time.Second, nil).Query(context.Background(), "q")
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestHTTPClient_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>busy</html>`))
	}))
	defer srv.Close()

	_, err := NewHTTPClient(srv.URL, time.Second, nil).Query(context.Background(), "q")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTimeout)
}

func TestResilientClient_RetriesOverload(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer srv.Close()

	rc := NewResilientClient(NewHTTPClient(srv.URL, time.Second, nil), ResilientConfig{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		OpenTimeout:  time.Second,
	})
	resp, err := rc.Query(context.Background(), "q")
	require.NoError(t, err)
	assert.Len(t, resp.Elements, 3)
	assert.Equal(t, int32(3), calls.Load())
}

func TestResilientClient_DoesNotRetryBadRequest(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	rc := NewResilientClient(NewHTTPClient(srv.URL, time.Second, nil), ResilientConfig{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		OpenTimeout:  time.Second,
	})
	_, err := rc.Query(context.Background(), "q")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&StatusError{Code: http.StatusTooManyRequests}))
	assert.True(t, IsRetryable(&StatusError{Code: http.StatusGatewayTimeout}))
	assert.False(t, IsRetryable(&StatusError{Code: http.StatusBadRequest}))
	assert.False(t, IsRetryable(ErrTimeout))
	assert.False(t, IsRetryable(nil))
}
