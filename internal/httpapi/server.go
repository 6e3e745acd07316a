// Package httpapi is the thin request/response surface around the quote
// engine core: POST /quote, GET /pools, GET /tokens, GET /health. It owns
// no pricing logic — every handler's job is to validate the boundary,
// call into pkg/graph, pkg/prefetch, and pkg/quote, and shape the
// response. Modeled on the Server/routes()/writeJSON pattern of
// orbas1-Synnergy's cmd/explorer/server.go, with chi standing in for
// that repo's gorilla/mux.
package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/solana-zh/dlmm-quote-engine/pkg/config"
	"github.com/solana-zh/dlmm-quote-engine/pkg/store"
)

// Server exposes the quote engine over HTTP.
type Server struct {
	router     chi.Router
	httpServer *http.Server
	store      store.Store
	cfg        config.Config
	log        *zap.SugaredLogger
}

// NewServer builds a Server wired to the given store and configuration.
func NewServer(addr string, s store.Store, cfg config.Config, log *zap.SugaredLogger) *Server {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	srv := &Server{store: s, cfg: cfg, log: log}
	srv.routes()
	srv.httpServer = &http.Server{
		Addr:         addr,
		Handler:      srv.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	return srv
}

// Start runs the HTTP server until it errors or is shut down.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP makes Server an http.Handler directly, so tests can drive
// requests through httptest.NewRecorder without binding a real socket.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(s.loggingMiddleware)

	r.Post("/quote", s.handleQuote)
	r.Get("/pools", s.handlePools)
	r.Get("/tokens", s.handleTokens)
	r.Get("/health", s.handleHealth)

	s.router = r
}

// requestIDHeader is the response header carrying the per-request
// correlation id, handed to the on-chain router's off-chain callers for
// log correlation across the quote engine and its consumers.
const requestIDHeader = "X-Request-Id"

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.New().String()
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Infow("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", w.Header().Get(requestIDHeader),
			"duration", time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
