package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/teemow/minutegen/internal/drive"
	"github.com/teemow/minutegen/internal/google"
	"github.com/teemow/minutegen/internal/instrumentation"
	"github.com/teemow/minutegen/internal/logging"
	"github.com/teemow/minutegen/internal/pipeline"
)

const (
	// DefaultReadHeaderTimeout bounds slow-header attacks on the app server.
	DefaultReadHeaderTimeout = 10 * time.Second

	// DefaultIdleTimeout closes idle keep-alive connections.
	DefaultIdleTimeout = 120 * time.Second
)

// Server is the application HTTP server.
type Server struct {
	authorizer   *google.Authorizer
	session      *drive.Session
	orchestrator *pipeline.Orchestrator
	metrics      *instrumentation.Metrics
	logger       *slog.Logger
	health       *HealthChecker
	httpServer   *http.Server
}

// New creates the application server.
func New(authorizer *google.Authorizer, session *drive.Session,
	orchestrator *pipeline.Orchestrator, metrics *instrumentation.Metrics,
	logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		authorizer:   authorizer,
		session:      session,
		orchestrator: orchestrator,
		metrics:      metrics,
		logger:       logger,
		health:       NewHealthChecker(),
	}
	return s
}

// Handler builds the complete route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /oauth/callback", s.handleOAuthCallback)
	mux.HandleFunc("POST /api/auth/start", s.handleAuthStart)
	mux.HandleFunc("GET /api/auth/status", s.handleAuthStatus)
	mux.HandleFunc("POST /api/auth/reset", s.handleAuthReset)
	mux.HandleFunc("GET /api/files", s.handleFiles)
	mux.HandleFunc("POST /api/process", s.handleProcess)

	s.health.RegisterHealthEndpoints(mux)

	return s.withRequestMetrics(mux)
}

// Start runs the server until it fails or is shut down.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		IdleTimeout:       DefaultIdleTimeout,
		// No WriteTimeout: /api/process streams for as long as a pipeline
		// run takes.
	}
	s.logger.Info("application server listening", "addr", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.health.SetReady(false)
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = indexPage.Execute(w, map[string]string{
		"Status": string(s.authorizer.Status(r.Context())),
	})
}

// handleOAuthCallback completes the authorization-code flow. Every failure
// kind renders a distinguishable HTML error page; success persists the
// credentials and closes the tab.
func (s *Server) handleOAuthCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	err := s.authorizer.CompleteAuthorization(r.Context(),
		query.Get("code"), query.Get("state"), query.Get("error"))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err == nil {
		s.metrics.RecordOAuthFlow(r.Context(), "completed")
		w.WriteHeader(http.StatusOK)
		_ = successPage.Execute(w, nil)
		return
	}

	var denied *google.ProviderDeniedError
	var exchange *google.ExchangeError
	var message, result string
	switch {
	case errors.As(err, &denied):
		result = "denied"
		message = fmt.Sprintf("Authorization failed: %s", denied.Reason)
	case errors.Is(err, google.ErrMalformedCallback):
		result = "malformed_callback"
		message = "Invalid authorization response: missing authorization code or state parameter."
	case errors.Is(err, google.ErrStateMismatch):
		result = "state_mismatch"
		message = "Invalid state: authorization state mismatch. Please try again."
	case errors.As(err, &exchange):
		result = "exchange_failed"
		message = fmt.Sprintf("Authorization error: %v", err)
	default:
		result = "error"
		message = fmt.Sprintf("Authorization error: %v", err)
	}

	s.metrics.RecordOAuthFlow(r.Context(), result)
	s.logger.Warn("authorization callback failed", "result", result, logging.Err(err))

	w.WriteHeader(http.StatusBadRequest)
	_ = errorPage.Execute(w, map[string]string{"Message": message})
}

func (s *Server) handleAuthStart(w http.ResponseWriter, r *http.Request) {
	result, err := s.authorizer.StartAuthorization(r.Context())
	if err != nil {
		if errors.Is(err, google.ErrClientCredentialsMissing) {
			s.writeError(w, http.StatusInternalServerError,
				"Google OAuth credentials not found. Set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET.")
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.metrics.RecordOAuthFlow(r.Context(), "started")
	s.writeJSON(w, http.StatusOK, map[string]any{
		"already_authorized": result.AlreadyAuthorized,
		"auth_url":           result.AuthURL,
	})
}

func (s *Server) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": string(s.authorizer.Status(r.Context())),
	})
}

func (s *Server) handleAuthReset(w http.ResponseWriter, r *http.Request) {
	if err := s.authorizer.Reset(); err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": string(google.StatusUnauthorized),
	})
}

func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	candidates, summary, err := s.session.SearchAudioCandidates(r.Context())
	if err != nil {
		if errors.Is(err, google.ErrNotAuthorized) {
			s.writeError(w, http.StatusUnauthorized, "Google Drive is not authorized")
			return
		}
		s.writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	if candidates == nil {
		candidates = []drive.Candidate{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"files":   candidates,
		"summary": summary,
	})
}

// handleProcess runs the pipeline and streams each update as one JSON line.
// The connection stays open until the run reaches its terminal state or the
// client goes away (which cancels the request context and thereby the run).
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var source pipeline.Source
	if err := json.NewDecoder(r.Body).Decode(&source); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)

	flusher, _ := w.(http.Flusher)
	encoder := json.NewEncoder(w)

	for update := range s.orchestrator.Run(r.Context(), source) {
		if err := encoder.Encode(update); err != nil {
			s.logger.Debug("client went away during pipeline run", logging.Err(err))
			return
		}
		if flusher != nil {
			flusher.Flush()
		}
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
