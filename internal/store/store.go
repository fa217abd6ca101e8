// Package store implements the runtime config table: a fixed set of known
// keys, each bound to one live actor field. Every accepted mutation is
// applied to the actor first and then the full snapshot is persisted as a
// flat JSON document, replaced atomically. Unknown keys are rejected without
// side effects.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrUnknownKey is returned for keys outside the fixed schema.
var ErrUnknownKey = errors.New("unknown config key")

// binding connects one config key to a live actor field.
type binding struct {
	kind Kind
	get  func() Value
	set  func(Value)
}

// Store is the typed key/value table over the fixed key set.
type Store struct {
	mu       sync.Mutex
	path     string
	bindings map[string]binding
}

// New creates an empty store persisting to path. Keys are registered with
// the Bind* methods before Load is called.
func New(path string) *Store {
	return &Store{
		path:     path,
		bindings: make(map[string]binding),
	}
}

// BindURL registers a string key backed by the given accessors. The empty
// string stands for absent.
func (s *Store) BindURL(key string, get func() string, set func(string)) {
	s.bindings[key] = binding{
		kind: KindString,
		get:  func() Value { return StringValue(get()) },
		set:  func(v Value) { set(v.Str()) },
	}
}

// BindSeconds registers a numeric key holding a duration in seconds.
func (s *Store) BindSeconds(key string, get func() time.Duration, set func(time.Duration)) {
	s.bindings[key] = binding{
		kind: KindNumber,
		get:  func() Value { return NumberValue(get().Seconds()) },
		set:  func(v Value) { set(time.Duration(v.Num() * float64(time.Second))) },
	}
}

// Keys returns the known key set, sorted.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.bindings))
	for k := range s.bindings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the current live value for key.
func (s *Store) Get(key string) (Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.bindings[key]
	if !ok {
		return Value{}, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return b.get(), nil
}

// All returns a snapshot of every known key and its current live value.
func (s *Store) All() map[string]Value {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Store) snapshot() map[string]Value {
	out := make(map[string]Value, len(s.bindings))
	for k, b := range s.bindings {
		out[k] = b.get()
	}
	return out
}

// Set validates key and raw, applies the parsed value to the live actor
// field, and persists the full snapshot. The field mutation happens before
// persistence and is not rolled back if persisting fails.
func (s *Store) Set(key, raw string) (Value, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := s.apply(key, raw)
	if err != nil {
		return Value{}, err
	}

	if err := s.persist(); err != nil {
		return Value{}, fmt.Errorf("persist config: %w", err)
	}

	log.Info().Str("key", key).Str("value", v.String()).Msg("Config updated")
	return v, nil
}

// apply parses raw for key and writes it through to the bound actor field.
func (s *Store) apply(key, raw string) (Value, error) {
	b, ok := s.bindings[key]
	if !ok {
		return Value{}, fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}

	var v Value
	switch b.kind {
	case KindNumber:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Value{}, fmt.Errorf("parse %s: %w", key, err)
		}
		if f < 0 {
			return Value{}, fmt.Errorf("parse %s: negative duration", key)
		}
		v = NumberValue(f)
	default:
		v = StringValue(raw)
	}

	b.set(v)
	return v, nil
}

// Load reads the persisted snapshot, if present, and applies every known key
// through the same parse/apply path as Set. A missing document is a warning;
// compiled-in defaults stay in effect and no file is written until the first
// successful mutation.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn().Str("path", s.path).Msg("No config snapshot found, using defaults")
			return nil
		}
		return fmt.Errorf("read config snapshot: %w", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse config snapshot: %w", err)
	}

	for key, raw := range doc {
		if raw == nil {
			continue
		}
		if _, ok := s.bindings[key]; !ok {
			log.Warn().Str("key", key).Msg("Ignoring unknown key in config snapshot")
			continue
		}

		var text string
		switch val := raw.(type) {
		case float64:
			text = strconv.FormatFloat(val, 'f', -1, 64)
		case string:
			text = val
		default:
			log.Warn().Str("key", key).Msg("Ignoring malformed value in config snapshot")
			continue
		}

		if _, err := s.apply(key, text); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("Ignoring invalid value in config snapshot")
		}
	}

	log.Info().Str("path", s.path).Msg("Config snapshot loaded")
	return nil
}

// persist writes the full snapshot and replaces the document atomically.
func (s *Store) persist() error {
	doc := make(map[string]any, len(s.bindings))
	for k, v := range s.snapshot() {
		doc[k] = v.Interface()
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmp := fmt.Sprintf("%s.%d.tmp", s.path, time.Now().UnixNano())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp config: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace config file: %w", err)
	}

	return nil
}
