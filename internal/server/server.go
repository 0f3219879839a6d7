// Package server provides the HTTP REST API for interview answer feedback.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/interview-coach/internal/db"
	"github.com/jonathan/interview-coach/internal/interview"
	"github.com/jonathan/interview-coach/internal/logging"
	"github.com/jonathan/interview-coach/internal/server/middleware"
	"github.com/jonathan/interview-coach/internal/server/ratelimit"
	"github.com/jonathan/interview-coach/internal/speech"
)

// Pipeline is the part of interview.Service the handlers call.
type Pipeline interface {
	SubmitAudio(ctx context.Context, req interview.AudioRequest) (*interview.Outcome, error)
	SubmitTranscript(ctx context.Context, req interview.TranscriptRequest) (*interview.Outcome, error)
	Feedback(ctx context.Context, responseID string) (*db.FeedbackRecord, error)
	Recent(ctx context.Context, limit int) ([]db.FeedbackSummary, error)
}

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer    *http.Server
	pipeline      Pipeline
	synthesizer   speech.Synthesizer
	health        Pinger
	log           *logging.Logger
	rateLimiter   *ratelimit.Limiter
	corsOrigin    string
	maxAudioBytes int64
}

// Config holds server configuration
type Config struct {
	Port          int
	CORSOrigin    string
	MaxAudioBytes int64
	// RateLimit defaults to ratelimit.LoadConfig() when nil.
	RateLimit *ratelimit.Config
}

// Deps are the adapters the handlers use. Synthesizer and Health may be nil.
type Deps struct {
	Pipeline    Pipeline
	Synthesizer speech.Synthesizer
	Health      Pinger
	Logger      *logging.Logger
}

// New creates a new server instance
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Pipeline == nil {
		return nil, fmt.Errorf("server requires a feedback pipeline")
	}
	if cfg.CORSOrigin == "" {
		cfg.CORSOrigin = "*"
	}
	if cfg.MaxAudioBytes <= 0 {
		cfg.MaxAudioBytes = 25 << 20
	}
	rl := cfg.RateLimit
	if rl == nil {
		rl = ratelimit.LoadConfig()
	}

	s := &Server{
		pipeline:      deps.Pipeline,
		synthesizer:   deps.Synthesizer,
		health:        deps.Health,
		log:           logging.OrNop(deps.Logger).With("component", "server"),
		rateLimiter:   ratelimit.NewLimiter(rl),
		corsOrigin:    cfg.CORSOrigin,
		maxAudioBytes: cfg.MaxAudioBytes,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 300 * time.Second, // transcription plus critique can take minutes
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /responses/{id}/feedback", s.handleSubmitAudio)
	mux.HandleFunc("POST /responses/{id}/feedback/transcript", s.handleSubmitTranscript)
	mux.HandleFunc("GET /responses/{id}/feedback", s.handleGetFeedback)
	mux.HandleFunc("GET /responses", s.handleListFeedback)
	mux.HandleFunc("POST /speech", s.handleSpeech)
	mux.HandleFunc("GET /schema", s.handleSchema)
	mux.HandleFunc("GET /health", s.handleHealth)

	return middleware.RequestID(s.withLogging(s.withRateLimit(s.withCORS(mux))))
}

// Start begins listening and blocks until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run serves until ctx is cancelled or the listener fails.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		s.rateLimiter.Stop()
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	defer s.rateLimiter.Stop()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.log.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.corsOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+middleware.HeaderRequestID)
		w.Header().Set("Access-Control-Expose-Headers", middleware.HeaderRequestID)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit rejects clients over their token bucket with 429.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

// withLogging logs one line per request.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		if rec.status == 0 {
			rec.status = http.StatusOK
		}

		fields := []interface{}{
			"request_id", middleware.GetRequestID(r),
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"bytes", rec.bytes,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		switch {
		case rec.status >= 500:
			s.log.Error("request failed", fields...)
		case rec.status >= 400:
			s.log.Warn("request rejected", fields...)
		default:
			s.log.Info("request completed", fields...)
		}
	})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("failed to encode JSON response", "error", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// ErrorBody is the JSON shape of every failed request.
type ErrorBody struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
	// Result is set when feedback was built but could not be stored.
	Result *FeedbackResponse `json:"result,omitempty"`
}

// writeError maps err to a status and writes an ErrorBody.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	s.jsonResponse(w, HTTPStatus(err), ErrorBody{
		Error:     err.Error(),
		Code:      errorCode(err),
		RequestID: middleware.GetRequestID(r),
	})
}

// extractClientID uses the remote IP. X-Forwarded-For is ignored since there is no trusted proxy list.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]interface{}{
		"error":      "Rate limit exceeded. Please try again later.",
		"code":       "rate_limit_exceeded",
		"request_id": middleware.GetRequestID(r),
		"limit":      info.Limit,
		"remaining":  info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}
	if info.RetryAfter > 0 {
		secs := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = secs
		w.Header().Set("Retry-After", fmt.Sprintf("%d", secs))
	}

	s.log.Warn("rate limit exceeded", "client", s.extractClientID(r), "path", r.URL.Path, "limit", info.Limit)
	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
