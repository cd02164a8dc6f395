// Package api provides the HTTP REST API server for cryptodetails.
//
// It exposes the lookup flow to external front ends: submitting a symbol,
// reading the current state, and a WebSocket stream of state transitions.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/cryptodetails/internal/config"
	"github.com/seenimoa/cryptodetails/internal/lookup"
	"github.com/seenimoa/cryptodetails/internal/metrics"
	"github.com/seenimoa/cryptodetails/internal/provider"
)

const shutdownTimeout = 15 * time.Second

// Server is the HTTP API server.
type Server struct {
	router  chi.Router
	cfg     *config.Config
	flow    *lookup.Flow
	reg     *provider.Registry
	wsHub   *WSHub
	metrics *metrics.Metrics
	log     zerolog.Logger
	version string
	unsub   func()
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics mounts /metrics for m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithLogger sets the access and error logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.log = l }
}

// WithVersion sets the version reported by /health.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// NewServer creates a configured API server with all routes and middleware.
// Every state the flow publishes is broadcast to WebSocket clients.
func NewServer(cfg *config.Config, flow *lookup.Flow, reg *provider.Registry, opts ...Option) *Server {
	srv := &Server{
		cfg:     cfg,
		flow:    flow,
		reg:     reg,
		log:     zerolog.Nop(),
		version: "dev",
	}
	for _, opt := range opts {
		opt(srv)
	}
	srv.wsHub = NewWSHub(srv.log)
	srv.unsub = flow.Subscribe(func(st lookup.State) {
		srv.wsHub.Broadcast(stateMessage(st))
	})

	srv.router = srv.buildRouter()
	return srv
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *WSHub {
	return s.wsHub
}

// Close detaches the server from the flow.
func (s *Server) Close() {
	s.unsub()
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		s.wsHub.Run(gctx)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.log.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	s.Close()
	return err
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(s.log))
	r.Use(middleware.Recoverer)

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Get("/state", s.handleState)
		r.Post("/lookup", s.handleLookup)
		r.Get("/providers", s.handleProviders)

		r.Get("/config", s.handleGetConfig)
		r.Get("/config/keys", s.handleGetConfigKeys)
	})

	r.Get("/ws", s.handleWebSocket)

	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	return r
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// LookupRequest is the body for POST /api/v1/lookup.
type LookupRequest struct {
	Symbol string `json:"symbol"`
}

// ProvidersResponse is returned by GET /api/v1/providers.
type ProvidersResponse struct {
	Providers []provider.ProviderInfo       `json:"providers"`
	Defaults  map[provider.ModelType]string `json:"defaults"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":     "ok",
			"version":    s.version,
			"providers":  len(s.reg.List()),
			"ws_clients": s.wsHub.ClientCount(),
			"time":       time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    s.flow.State().View(),
	})
}

// handleLookup runs one lookup. Provider failures are ordinary results
// (phase "failed"); only a blank symbol is a client error.
func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	var req LookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	// The published state is shared, so a client hanging up must not turn
	// it into a failure for everyone else.
	st, err := s.flow.Submit(context.WithoutCancel(r.Context()), req.Symbol)
	if err != nil {
		var le *lookup.Error
		if errors.As(err, &le) {
			writeError(w, http.StatusBadRequest, le.Message())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    st.View(),
	})
}

func (s *Server) handleProviders(w http.ResponseWriter, r *http.Request) {
	defaults := make(map[provider.ModelType]string)
	for _, m := range provider.AllModels() {
		if name, ok := s.reg.DefaultProvider(m); ok {
			defaults[m] = name
		}
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ProvidersResponse{
			Providers: s.reg.List(),
			Defaults:  defaults,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
