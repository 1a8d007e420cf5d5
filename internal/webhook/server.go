// Package webhook is the inbound gateway: it validates the platform
// handshake, accepts delivery envelopes, and hands normalized messages
// to the router. The intake boundary never fails visibly to the
// platform; downstream failures are contained so the platform does not
// retry-storm the assistant.
package webhook

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"github.com/bloombot/bloom/internal/router"
	"github.com/bloombot/bloom/internal/whatsapp"
)

// MessageRouter drives a normalized message through its flow
type MessageRouter interface {
	Dispatch(ctx context.Context, msg router.Message) whatsapp.DeliveryResult
}

// ServerOptions configures the webhook server
type ServerOptions struct {
	Host        string
	Port        int
	VerifyToken string

	// ArtifactDir, when set, is served read-only under /images/ so
	// generated artifacts are reachable from the public base URL.
	ArtifactDir string
}

// Server is the webhook HTTP server
type Server struct {
	options        ServerOptions
	server         *http.Server
	router         MessageRouter
	logger         zerolog.Logger
	isShuttingDown bool
	shutdownMu     sync.RWMutex
	inFlightReqs   sync.WaitGroup
}

// NewServer creates a new webhook server
func NewServer(options ServerOptions, messageRouter MessageRouter, logger zerolog.Logger) (*Server, error) {
	if options.Port == 0 {
		options.Port = 3000
	}
	if options.Host == "" {
		options.Host = "0.0.0.0"
	}
	if options.VerifyToken == "" {
		return nil, fmt.Errorf("verify token is required")
	}
	if messageRouter == nil {
		return nil, fmt.Errorf("message router is required")
	}

	return &Server{
		options: options,
		router:  messageRouter,
		logger:  logger.With().Str("module", "webhook").Logger(),
	}, nil
}

// Handler returns the HTTP handler with all routes registered
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/whatsapp/webhook", s.handleWebhook)

	if s.options.ArtifactDir != "" {
		mux.Handle("/images/", http.StripPrefix("/images/", http.FileServer(http.Dir(s.options.ArtifactDir))))
	}

	return mux
}

// Start starts the webhook server and blocks until it stops
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.options.Host, s.options.Port),
		Handler: s.Handler(),
	}

	s.logger.Info().
		Str("host", s.options.Host).
		Int("port", s.options.Port).
		Msg("Starting webhook server")

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start webhook server: %w", err)
	}

	return nil
}

// Stop gracefully stops the webhook server
func (s *Server) Stop(ctx context.Context) error {
	s.shutdownMu.Lock()
	s.isShuttingDown = true
	s.shutdownMu.Unlock()

	// Let in-flight deliveries finish, bounded by the caller's context
	done := make(chan struct{})
	go func() {
		s.inFlightReqs.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn().Msg("Shutdown timeout, abandoning in-flight deliveries")
	}

	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// handleHealth reports server liveness
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.shutdownMu.RLock()
	shuttingDown := s.isShuttingDown
	s.shutdownMu.RUnlock()

	if shuttingDown {
		http.Error(w, "shutting down", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ok")
}

// handleWebhook routes verification probes and deliveries
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleVerification(w, r)
	case http.MethodPost:
		s.handleDelivery(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}
