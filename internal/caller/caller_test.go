package caller_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pro70/dooropener/internal/caller"
)

func TestGetSucceedsOn200(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		require.Equal(t, http.MethodGet, r.Method)
	}))
	defer ts.Close()

	c := caller.NewHTTP(time.Second)
	require.NoError(t, c.Get(context.Background(), ts.URL))
	require.EqualValues(t, 1, hits.Load())
}

func TestGetFailsOnNon200(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer ts.Close()

	c := caller.NewHTTP(time.Second)
	require.ErrorContains(t, c.Get(context.Background(), ts.URL), "unexpected status 204")
}

func TestGetFailsOnConnectionRefused(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	ts.Close()

	c := caller.NewHTTP(time.Second)
	require.Error(t, c.Get(context.Background(), ts.URL))
}

func TestGetHonorsContextCancellation(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	c := caller.NewHTTP(time.Minute)
	require.Error(t, c.Get(ctx, ts.URL))
}

func TestGetFailsOnBadURL(t *testing.T) {
	c := caller.NewHTTP(time.Second)
	require.Error(t, c.Get(context.Background(), "http://"))
}
