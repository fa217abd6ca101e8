// Package server exposes the HTTP control plane: the runtime config surface
// under /api/status, the action endpoints under /api/action, the event
// ledger under /api/ledger and the static web panel at /.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/pro70/dooropener/internal/ledger"
	"github.com/pro70/dooropener/internal/store"
)

// Controller is the subset of controller operations the API maps onto.
type Controller interface {
	Config() map[string]store.Value
	ConfigValue(key string) (store.Value, error)
	Update(key, value string) (store.Value, error)
	Honk(d time.Duration)
	RingBell()
	RecentEvents(limit int) ([]*ledger.Entry, error)
}

const defaultLedgerLimit = 100

// Server is the control API HTTP server.
type Server struct {
	addr       string
	staticDir  string
	ctrl       Controller
	httpServer *http.Server
}

// New creates a control API server. An empty staticDir disables the web
// panel.
func New(addr, staticDir string, ctrl Controller) *Server {
	return &Server{
		addr:      addr,
		staticDir: staticDir,
		ctrl:      ctrl,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/action/honk", s.handleHonk)
	mux.HandleFunc("/api/action/honk/", s.handleHonk)
	mux.HandleFunc("/api/action/bell", s.handleBell)
	mux.HandleFunc("/api/ledger", s.handleLedger)

	if s.staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))
	} else {
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/" {
				http.NotFound(w, r)
				return
			}
			_, _ = io.WriteString(w, "dooropener\n")
		})
	}

	// /api/status/{key}/{value} carries URLs in the value segment. The mux
	// would path-clean their slashes into a redirect, so that prefix is
	// dispatched before the mux ever sees it.
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.EscapedPath(), "/api/status/") {
			s.handleStatusKey(w, r)
			return
		}
		mux.ServeHTTP(w, r)
	})
}

// Run starts the server. It blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context, shutdownTimeout time.Duration) error {
	s.httpServer = &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}

	log.Info().Str("addr", s.addr).Msg("Starting control API server")

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Control API server shutdown error")
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

// handleStatus serves the full config snapshot as a flat key/value document.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	snapshot := s.ctrl.Config()
	doc := make(map[string]any, len(snapshot))
	for k, v := range snapshot {
		doc[k] = v.Interface()
	}
	writeJSON(w, http.StatusOK, doc)
}

// handleStatusKey serves a single key: GET /api/status/{key} reads it,
// POST /api/status/{key} with the raw body sets it, and
// GET /api/status/{key}/{value} sets it for clients restricted to GET.
// Unknown keys and unparsable values yield 404.
func (s *Server) handleStatusKey(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.EscapedPath(), "/api/status/")
	// Everything after the first separator is the value; action URLs
	// contain slashes of their own.
	key, value, hasValue := strings.Cut(rest, "/")
	if key == "" {
		http.NotFound(w, r)
		return
	}
	if hasValue {
		if decoded, err := url.PathUnescape(value); err == nil {
			value = decoded
		}
	}

	if r.Method == http.MethodPost {
		// On POST the value comes from the body; a value segment in the
		// path would be ambiguous, so the combined form is not a route.
		if hasValue {
			http.NotFound(w, r)
			return
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusBadRequest)
			return
		}
		s.update(w, key, strings.TrimSpace(string(body)))
		return
	}

	if hasValue {
		s.update(w, key, value)
		return
	}

	v, err := s.ctrl.ConfigValue(key)
	if err != nil {
		log.Debug().Err(err).Str("key", key).Msg("Config read rejected")
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, v.Interface())
}

func (s *Server) update(w http.ResponseWriter, key, value string) {
	v, err := s.ctrl.Update(key, value)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("Config update rejected")
		http.Error(w, "unknown key or invalid value", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, v.Interface())
}

// handleHonk triggers the bell, optionally with a duration in seconds from
// the path.
func (s *Server) handleHonk(w http.ResponseWriter, r *http.Request) {
	var d time.Duration

	if rest := strings.TrimPrefix(r.URL.Path, "/api/action/honk"); rest != "" && rest != "/" {
		seconds, err := strconv.ParseFloat(strings.Trim(rest, "/"), 64)
		if err != nil || seconds < 0 {
			http.Error(w, "invalid duration", http.StatusNotFound)
			return
		}
		d = time.Duration(seconds * float64(time.Second))
	}

	s.ctrl.Honk(d)
	_, _ = io.WriteString(w, "honk\n")
}

// handleBell triggers the bell actor.
func (s *Server) handleBell(w http.ResponseWriter, _ *http.Request) {
	s.ctrl.RingBell()
	_, _ = io.WriteString(w, "bell\n")
}

// handleLedger serves the newest ledger entries.
func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	limit := defaultLedgerLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries, err := s.ctrl.RecentEvents(limit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to read ledger")
		http.Error(w, "ledger unavailable", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []*ledger.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}
