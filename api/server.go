// Package api exposes quote calculation over HTTP.
// Handlers resolve the current snapshot and delegate to the calculator;
// they contain no pricing logic.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shipping-cost/core/calculator"
	"shipping-cost/core/output"
	"shipping-cost/core/snapshot"
	"shipping-cost/internal/config"
	"shipping-cost/internal/errors"
	"shipping-cost/internal/logging"
)

// Version is reported in response metadata
const Version = "1.0.0"

// Config contains HTTP server settings
type Config struct {
	// Address to listen on
	Address string

	// ReadTimeout for requests
	ReadTimeout time.Duration

	// WriteTimeout for responses
	WriteTimeout time.Duration

	// MaxBodySize limits request body size
	MaxBodySize int64

	// EnableCORS enables CORS headers
	EnableCORS bool

	// AllowedOrigins for CORS
	AllowedOrigins []string

	// EnableMetrics exposes GET /metrics
	EnableMetrics bool
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	return ConfigFrom(config.Default().Server)
}

// ConfigFrom converts the file configuration section
func ConfigFrom(s config.ServerConfig) *Config {
	return &Config{
		Address:        s.Address,
		ReadTimeout:    time.Duration(s.ReadTimeoutSeconds) * time.Second,
		WriteTimeout:   time.Duration(s.WriteTimeoutSeconds) * time.Second,
		MaxBodySize:    s.MaxBodyBytes,
		EnableCORS:     s.EnableCORS,
		AllowedOrigins: s.AllowedOrigins,
		EnableMetrics:  s.EnableMetrics,
	}
}

// Server is the HTTP API server
type Server struct {
	cache  *snapshot.Cache
	calc   *calculator.Calculator
	config *Config
	logger *zap.Logger
	server *http.Server

	// Metrics
	mu             sync.RWMutex
	requestCount   int64
	errorCount     int64
	quoteCount     int64
	rejectionCount int64
	totalLatencyMs int64
}

// New creates a server. A nil config uses DefaultConfig and a nil logger
// uses the package logger.
func New(cache *snapshot.Cache, calc *calculator.Calculator, cfg *Config, logger *zap.Logger) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.MaxBodySize <= 0 {
		cfg.MaxBodySize = 1 << 20
	}
	if logger == nil {
		logger = logging.Named("api")
	}
	return &Server{
		cache:  cache,
		calc:   calc,
		config: cfg,
		logger: logger,
	}
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /quote", s.handleQuote)
	mux.HandleFunc("POST /quote/compare", s.handleCompare)
	mux.HandleFunc("GET /destinations", s.handleDestinations)
	mux.HandleFunc("GET /destinations/{postal}/origins", s.handleOrigins)
	mux.HandleFunc("GET /snapshot", s.handleSnapshot)
	mux.HandleFunc("POST /snapshot/refresh", s.handleRefresh)

	if s.config.EnableMetrics {
		mux.HandleFunc("GET /metrics", s.handleMetrics)
	}

	handler := s.corsMiddleware(mux)
	handler = s.loggingMiddleware(handler)
	handler = s.recoveryMiddleware(handler)
	handler = requestIDMiddleware(handler)

	return handler
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.config.Address,
		Handler:      s.Router(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	s.logger.Info("listening", zap.String("address", s.config.Address))
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// StatusFor maps an error type to its HTTP status
func StatusFor(t errors.Type) int {
	switch t {
	case errors.TypeInput, errors.TypeParsing, errors.TypeAmbiguous:
		return http.StatusBadRequest
	case errors.TypeNotFound:
		return http.StatusNotFound
	case errors.TypeServiceNotAllowed, errors.TypeItemNotInstallable, errors.TypeUnavailableRate:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// Middleware

type ctxKey int

const requestIDKey ctxKey = iota

// RequestIDHeader carries the request ID in both directions
const RequestIDHeader = "X-Request-ID"

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey, id)))
	})
}

func requestID(r *http.Request) string {
	id, _ := r.Context().Value(requestIDKey).(string)
	return id
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.config.EnableCORS {
			origin := "*"
			if len(s.config.AllowedOrigins) > 0 && s.config.AllowedOrigins[0] != "*" {
				origin = s.config.AllowedOrigins[0]
			}
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		s.mu.Lock()
		s.requestCount++
		s.totalLatencyMs += elapsed.Milliseconds()
		if rec.status >= http.StatusInternalServerError {
			s.errorCount++
		}
		s.mu.Unlock()

		s.logger.Debug("request",
			zap.String("request_id", requestID(r)),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", elapsed),
		)
	})
}

func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rv := recover(); rv != nil {
				s.mu.Lock()
				s.errorCount++
				s.mu.Unlock()

				s.logger.Error("panic in handler",
					zap.String("request_id", requestID(r)),
					zap.Any("panic", rv),
				)
				s.writeError(w, r, errors.Internal("internal server error", fmt.Errorf("%v", rv)))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// Helpers

func (s *Server) parseJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	defer r.Body.Close()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.MaxBodySize))
	if err != nil {
		return errors.Wrap(errors.TypeInput, "request body unreadable or too large", err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.Wrap(errors.TypeInput, "invalid JSON body", err)
	}
	return nil
}

func (s *Server) metadata(r *http.Request, start time.Time) ResponseMetadata {
	return ResponseMetadata{
		RequestID:  requestID(r),
		DurationMs: time.Since(start).Milliseconds(),
		Version:    Version,
		Timestamp:  time.Now().UTC(),
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	s.writeErrorStatus(w, r, StatusFor(errors.TypeOf(err)), err)
}

func (s *Server) writeErrorStatus(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status < http.StatusInternalServerError {
		s.mu.Lock()
		s.rejectionCount++
		s.mu.Unlock()
	}
	s.writeJSON(w, status, ErrorResponse{
		Success:   false,
		Error:     output.NewErrorBody(err),
		RequestID: requestID(r),
	})
}
