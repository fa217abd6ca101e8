package server_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pro70/dooropener/internal/ledger"
	"github.com/pro70/dooropener/internal/server"
	"github.com/pro70/dooropener/internal/store"
)

// fakeController backs the API with a real store and records actions.
type fakeController struct {
	st *store.Store

	mu    sync.Mutex
	honks []time.Duration
	bells int
}

func newFakeController(t *testing.T) *fakeController {
	t.Helper()

	var (
		r1On   string
		r1Time = 3 * time.Second
	)

	st := store.New(filepath.Join(t.TempDir(), "state.json"))
	st.BindURL("r1_on_url", func() string { return r1On }, func(v string) { r1On = v })
	st.BindSeconds("r1_time", func() time.Duration { return r1Time }, func(v time.Duration) { r1Time = v })

	return &fakeController{st: st}
}

func (f *fakeController) Config() map[string]store.Value            { return f.st.All() }
func (f *fakeController) ConfigValue(key string) (store.Value, error) { return f.st.Get(key) }
func (f *fakeController) Update(key, value string) (store.Value, error) {
	return f.st.Set(key, value)
}

func (f *fakeController) Honk(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.honks = append(f.honks, d)
}

func (f *fakeController) RingBell() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bells++
}

func (f *fakeController) RecentEvents(limit int) ([]*ledger.Entry, error) {
	return []*ledger.Entry{{ID: 1, EventType: "bell_rung"}}, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *fakeController) {
	t.Helper()
	ctrl := newFakeController(t)
	ts := httptest.NewServer(server.New(":0", "", ctrl).Handler())
	t.Cleanup(ts.Close)
	return ts, ctrl
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestStatusSnapshot(t *testing.T) {
	ts, _ := newTestServer(t)

	code, body := get(t, ts.URL+"/api/status")
	require.Equal(t, http.StatusOK, code)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &doc))
	require.Equal(t, 3.0, doc["r1_time"])
	require.Nil(t, doc["r1_on_url"])
}

func TestStatusSingleKey(t *testing.T) {
	ts, _ := newTestServer(t)

	code, body := get(t, ts.URL+"/api/status/r1_time")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "3", strings.TrimSpace(body))

	code, _ = get(t, ts.URL+"/api/status/nope")
	require.Equal(t, http.StatusNotFound, code)
}

func TestStatusUpdateViaPost(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/status/r1_time", "text/plain", strings.NewReader("4.5"))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	code, body := get(t, ts.URL+"/api/status/r1_time")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "4.5", strings.TrimSpace(body))
}

func TestStatusUpdateViaGet(t *testing.T) {
	ts, _ := newTestServer(t)

	// Values may contain slashes; everything after the key is the value.
	code, body := get(t, ts.URL+"/api/status/r1_on_url/http%3A%2F%2Fx%2Fon")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, `"http://x/on"`, strings.TrimSpace(body))

	code, body = get(t, ts.URL+"/api/status/r1_time/2")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "2", strings.TrimSpace(body))
}

func TestStatusPostWithPathValueRejected(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/status/r1_time/5", "text/plain", strings.NewReader("9"))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Neither the path value nor the body was applied.
	code, body := get(t, ts.URL+"/api/status/r1_time")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "3", strings.TrimSpace(body))
}

func TestStatusUpdateRejectsBadInput(t *testing.T) {
	ts, _ := newTestServer(t)

	code, _ := get(t, ts.URL+"/api/status/r1_time/abc")
	require.Equal(t, http.StatusNotFound, code)

	resp, err := http.Post(ts.URL+"/api/status/nope", "text/plain", strings.NewReader("1"))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestHonkAction(t *testing.T) {
	ts, ctrl := newTestServer(t)

	code, body := get(t, ts.URL+"/api/action/honk")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "honk", strings.TrimSpace(body))

	code, _ = get(t, ts.URL+"/api/action/honk/0.5")
	require.Equal(t, http.StatusOK, code)

	code, _ = get(t, ts.URL+"/api/action/honk/abc")
	require.Equal(t, http.StatusNotFound, code)

	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	require.Equal(t, []time.Duration{0, 500 * time.Millisecond}, ctrl.honks)
}

func TestBellAction(t *testing.T) {
	ts, ctrl := newTestServer(t)

	code, body := get(t, ts.URL+"/api/action/bell")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "bell", strings.TrimSpace(body))

	ctrl.mu.Lock()
	defer ctrl.mu.Unlock()
	require.Equal(t, 1, ctrl.bells)
}

func TestLedgerEndpoint(t *testing.T) {
	ts, _ := newTestServer(t)

	code, body := get(t, ts.URL+"/api/ledger")
	require.Equal(t, http.StatusOK, code)

	var entries []map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &entries))
	require.Len(t, entries, 1)
	require.Equal(t, "bell_rung", entries[0]["event_type"])

	code, _ = get(t, ts.URL+"/api/ledger?limit=abc")
	require.Equal(t, http.StatusBadRequest, code)
}
