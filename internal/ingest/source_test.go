package ingest

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/jeopardy/internal/resilience"
)

func fastSource() *Source {
	return &Source{
		Client: &http.Client{Timeout: 5 * time.Second},
		Retry: resilience.Policy{
			MaxAttempts:    3,
			InitialBackoff: time.Millisecond,
			MaxBackoff:     5 * time.Millisecond,
		},
	}
}

func TestSource_Download(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		_, _ = io.WriteString(w, dataset)
	}))
	defer srv.Close()

	rc, err := fastSource().Open(context.Background(), srv.URL+"/jeopardy.csv")
	require.NoError(t, err)
	defer rc.Close() //nolint:errcheck

	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, dataset, string(body))
}

func TestSource_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, dataset)
	}))
	defer srv.Close()

	rc, err := fastSource().Open(context.Background(), srv.URL)
	require.NoError(t, err)
	rc.Close() //nolint:errcheck
	assert.Equal(t, int32(3), calls.Load())
}

func TestSource_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := fastSource().Open(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http 404")
	assert.Equal(t, int32(1), calls.Load())
}

func TestRunFile_URL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, dataset)
	}))
	defer srv.Close()

	res, err := New(newStore(t), Options{Source: fastSource()}).RunFile(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.Inserted)
}

func TestIsURL(t *testing.T) {
	assert.True(t, isURL("https://example.com/jeopardy.csv"))
	assert.True(t, isURL("http://localhost:8000/data.csv"))
	assert.False(t, isURL("dataset.csv"))
	assert.False(t, isURL("/data/https.csv"))
}
