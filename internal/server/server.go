// Package server exposes the routing engine over HTTP. Each request routes
// one message within a session; the proposed state from the result is
// committed to the session store before the response is written.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"voucherbot/internal/logging"
	"voucherbot/internal/router"
	"voucherbot/internal/session"
	"voucherbot/internal/types"
)

// Server wires the routing engine and session store behind a chi router.
type Server struct {
	engine   *router.Router
	sessions *session.Store
	addr     string
}

// New creates a Server listening on addr when Run is called.
func New(engine *router.Router, sessions *session.Store, addr string) *Server {
	return &Server{engine: engine, sessions: sessions, addr: addr}
}

// Handler builds the HTTP route tree. Exposed separately from Run so tests
// can drive it with httptest.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/route", s.handleRoute)
		r.Get("/sessions/{id}", s.handleGetSession)
		r.Delete("/sessions/{id}", s.handleDeleteSession)
	})

	return r
}

// Run starts the HTTP server and blocks until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Server("listening on %s", s.addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

type routeRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
	Language  string `json:"language,omitempty"`
}

type routeResponse struct {
	SessionID string                      `json:"session_id"`
	Result    *types.ClassificationResult `json:"result"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	var req routeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	state, err := s.sessions.GetOrCreate(r.Context(), req.SessionID, req.Language)
	if err != nil {
		logging.Server("session load failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "session store unavailable"})
		return
	}
	log := logging.Get(logging.CategoryServer).With("session", state.SessionID)

	result, err := s.engine.Route(r.Context(), req.Message, state)
	if err != nil {
		switch {
		case errors.Is(err, types.ErrInvalidInput):
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			// Client went away or ran out of time.
			writeJSON(w, http.StatusGatewayTimeout, errorResponse{Error: "request cancelled"})
		default:
			log.Error("routing failed: %v", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "routing failed"})
		}
		return
	}

	if result.ProposedState != nil {
		proposed := *result.ProposedState
		proposed.SessionID = state.SessionID
		if err := s.sessions.Apply(r.Context(), proposed); err != nil {
			log.Error("state commit failed: %v", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to persist session state"})
			return
		}
	}

	writeJSON(w, http.StatusOK, routeResponse{SessionID: state.SessionID, Result: result})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	state, ok, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "session store unavailable"})
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "session not found"})
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.sessions.Delete(r.Context(), id); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to delete session"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Server("failed to encode response: %v", err)
	}
}
