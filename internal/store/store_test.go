package store_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pro70/dooropener/internal/store"
)

// fields stands in for the live actor settings a store binds to.
type fields struct {
	r1On     string
	r1Off    string
	r1Time   time.Duration
	online   string
	bellTime time.Duration
}

func newTestStore(path string) (*store.Store, *fields) {
	f := &fields{
		r1Time:   3 * time.Second,
		bellTime: 200 * time.Millisecond,
	}

	s := store.New(path)
	s.BindURL("r1_on_url", func() string { return f.r1On }, func(v string) { f.r1On = v })
	s.BindURL("r1_off_url", func() string { return f.r1Off }, func(v string) { f.r1Off = v })
	s.BindSeconds("r1_time", func() time.Duration { return f.r1Time }, func(v time.Duration) { f.r1Time = v })
	s.BindURL("online_url", func() string { return f.online }, func(v string) { f.online = v })
	s.BindSeconds("bell_time", func() time.Duration { return f.bellTime }, func(v time.Duration) { f.bellTime = v })
	return s, f
}

func TestSetGetRoundTrip(t *testing.T) {
	s, f := newTestStore(filepath.Join(t.TempDir(), "state.json"))

	_, err := s.Set("r1_on_url", "http://x/on")
	require.NoError(t, err)

	v, err := s.Get("r1_on_url")
	require.NoError(t, err)
	require.Equal(t, "http://x/on", v.Str())
	require.Equal(t, "http://x/on", f.r1On)

	_, err = s.Set("r1_time", "2.5")
	require.NoError(t, err)

	v, err = s.Get("r1_time")
	require.NoError(t, err)
	require.Equal(t, 2.5, v.Num())
	require.Equal(t, 2500*time.Millisecond, f.r1Time)
}

func TestSetUnknownKeyRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s, _ := newTestStore(path)

	_, err := s.Set("nope", "1")
	require.ErrorIs(t, err, store.ErrUnknownKey)

	// A rejected mutation never creates the snapshot document.
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestSetParseFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s, f := newTestStore(path)

	_, err := s.Set("r1_time", "abc")
	require.Error(t, err)
	require.Equal(t, 3*time.Second, f.r1Time)

	_, err = s.Set("r1_time", "-1")
	require.Error(t, err)
	require.Equal(t, 3*time.Second, f.r1Time)

	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestPersistenceRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	s, _ := newTestStore(path)
	_, err := s.Set("r1_time", "3")
	require.NoError(t, err)
	_, err = s.Set("online_url", "http://x")
	require.NoError(t, err)

	// The document is a flat key/value map.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	require.Equal(t, 3.0, doc["r1_time"])
	require.Equal(t, "http://x", doc["online_url"])
	require.Nil(t, doc["r1_on_url"])

	// A fresh store over the same document comes back with both values.
	s2, f2 := newTestStore(path)
	f2.r1Time = time.Second
	require.NoError(t, s2.Load())

	all := s2.All()
	require.Equal(t, 3.0, all["r1_time"].Num())
	require.Equal(t, "http://x", all["online_url"].Str())
	require.Equal(t, 3*time.Second, f2.r1Time)
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	s, f := newTestStore(filepath.Join(t.TempDir(), "state.json"))

	require.NoError(t, s.Load())
	require.Equal(t, 3*time.Second, f.r1Time)
	require.Equal(t, 200*time.Millisecond, f.bellTime)
}

func TestLoadIgnoresUnknownAndInvalidEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	doc := map[string]any{
		"r1_time":   "not a number",
		"nope":      1,
		"bell_time": 0.5,
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	s, f := newTestStore(path)
	require.NoError(t, s.Load())

	// Bad entries are skipped, good ones applied.
	require.Equal(t, 3*time.Second, f.r1Time)
	require.Equal(t, 500*time.Millisecond, f.bellTime)
}

func TestAllCoversEveryKey(t *testing.T) {
	s, _ := newTestStore(filepath.Join(t.TempDir(), "state.json"))

	all := s.All()
	require.Len(t, all, 5)
	require.True(t, all["r1_on_url"].IsAbsent())
	require.Nil(t, all["r1_on_url"].Interface())
	require.Equal(t, 3.0, all["r1_time"].Num())
}
