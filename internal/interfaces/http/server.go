// Package http exposes the read-only JSON API over the published
// bundle: market data, signals, alerts, predictions, a coalesced
// refresh trigger, health, metrics, and the bundle WebSocket stream.
package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/sawpanic/gridpulse/internal/config"
	"github.com/sawpanic/gridpulse/internal/market"
	"github.com/sawpanic/gridpulse/internal/metrics"
)

// Reader is the scheduler surface the API consumes. Handlers only
// ever read published bundles or queue a refresh; they never touch
// generation state.
type Reader interface {
	Latest() (*market.Bundle, error)
	TriggerRefresh() bool
}

// Server is the read-only HTTP server.
type Server struct {
	router  *mux.Router
	server  *http.Server
	reader  Reader
	metrics *metrics.Metrics
	stream  http.Handler
	limiter *rate.Limiter
	cfg     config.HTTPConfig
}

// NewServer wires routes and middleware. The stream handler is
// optional; pass nil to disable /ws.
func NewServer(cfg config.HTTPConfig, reader Reader, m *metrics.Metrics, stream http.Handler) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		reader:  reader,
		metrics: m,
		stream:  stream,
		// Manual refreshes are deliberately scarce; the scheduler
		// already regenerates on its own cadence.
		limiter: rate.NewLimiter(rate.Every(5*time.Second), 1),
		cfg:     cfg,
	}
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout.D(),
		WriteTimeout: cfg.WriteTimeout.D(),
		IdleTimeout:  cfg.IdleTimeout.D(),
	}
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.requestLoggingMiddleware)
	s.router.Use(s.corsMiddleware)

	api := s.router.PathPrefix("/api").Subrouter()
	api.Use(s.jsonContentTypeMiddleware)
	api.HandleFunc("/market-data", s.handleMarketData).Methods("GET")
	api.HandleFunc("/trading-signals", s.handleSignals).Methods("GET")
	api.HandleFunc("/alerts", s.handleAlerts).Methods("GET")
	api.HandleFunc("/predictions", s.handlePredictions).Methods("GET")
	api.HandleFunc("/refresh", s.handleRefresh).Methods("POST")

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler()).Methods("GET")
	}
	if s.stream != nil {
		s.router.Handle("/ws", s.stream).Methods("GET")
	}
	s.router.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler { return s.router }

// Start serves until Shutdown.
func (s *Server) Start() error {
	log.Info().Str("addr", s.server.Addr).Msg("HTTP server starting (read-only)")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Info().Msg("HTTP server shutting down")
	return s.server.Shutdown(ctx)
}

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()[:8]
		w.Header().Set("X-Request-ID", requestID)
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type requestIDKey struct{}

func (s *Server) requestLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		requestID, _ := r.Context().Value(requestIDKey{}).(string)
		log.Debug().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", wrapper.statusCode).
			Dur("elapsed", time.Since(start)).
			Str("remote", r.RemoteAddr).
			Msg("Request handled")
	})
}

// corsMiddleware allows local dashboard origins only.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if strings.Contains(origin, "localhost") || strings.Contains(origin, "127.0.0.1") {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
