// Package health serves the keep-alive HTTP endpoints used by uptime
// monitors and hosting platforms to check that the bot process is alive.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/fasthttp/router"
	"github.com/jonboulle/clockwork"
	"github.com/valyala/fasthttp"
)

// Status is the body of GET /status.
type Status struct {
	Status          string               `json:"status"`
	Uptime          string               `json:"uptime"`
	UptimeSeconds   int64                `json:"uptime_seconds"`
	ActiveTasks     int                  `json:"active_tasks"`
	ReminderEngine  string               `json:"reminder_engine"`
	NextReminder    *time.Time           `json:"next_reminder,omitempty"`
	ReminderChannel int64                `json:"reminder_channel"`
	Journal         string               `json:"journal,omitempty"`
	Maintenance     map[string]time.Time `json:"maintenance,omitempty"`
}

// StatusFunc reports the live bot state. The server fills in status and uptime.
type StatusFunc func(ctx context.Context) Status

// Server is the keep-alive HTTP server.
type Server struct {
	addr    string
	status  StatusFunc
	clock   clockwork.Clock
	started time.Time
	logger  *slog.Logger
	server  *fasthttp.Server
}

// Option configures a Server.
type Option func(*Server)

// WithClock sets the clock used for uptime.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Server) { s.clock = clock }
}

// NewServer creates a server listening on addr once Run is called.
func NewServer(addr string, status StatusFunc, logger *slog.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Server{
		addr:   addr,
		status: status,
		clock:  clockwork.NewRealClock(),
		logger: logger.With("component", "health_server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.started = s.clock.Now()

	r := router.New()
	r.GET("/", s.handleRoot)
	r.GET("/ping", s.handlePing)
	r.GET("/health", s.handleHealth)
	r.GET("/status", s.handleStatus)
	r.NotFound = s.handleNotFound

	s.server = &fasthttp.Server{
		Handler:      r.Handler,
		Name:         "taskpilot",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  time.Minute,
	}
	return s
}

// Handler returns the request handler, for tests and embedding.
func (s *Server) Handler() fasthttp.RequestHandler {
	return s.server.Handler
}

// Run listens on the configured address until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Keep-alive server started", "address", ln.Addr().String())
		errCh <- s.server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, net.ErrClosed) {
			return fmt.Errorf("keep-alive server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.ShutdownWithContext(shutdownCtx); err != nil {
		s.logger.Error("Error shutting down keep-alive server", "error", err)
		return err
	}
	<-errCh
	s.logger.Info("Keep-alive server stopped")
	return nil
}

func (s *Server) handleRoot(ctx *fasthttp.RequestCtx) {
	ctx.SetContentType("text/plain; charset=utf-8")
	ctx.SetBodyString("Task Reminder Bot is running!")
}

func (s *Server) handlePing(ctx *fasthttp.RequestCtx) {
	ctx.SetContentType("text/plain; charset=utf-8")
	ctx.SetBodyString("pong")
}

func (s *Server) handleHealth(ctx *fasthttp.RequestCtx) {
	respondJSON(ctx, http.StatusOK, map[string]string{"status": "healthy", "bot": "running"})
}

func (s *Server) handleStatus(ctx *fasthttp.RequestCtx) {
	var st Status
	if s.status != nil {
		st = s.status(ctx)
	}
	uptime := s.clock.Since(s.started)
	st.Status = "running"
	st.Uptime = uptime.Round(time.Second).String()
	st.UptimeSeconds = int64(uptime / time.Second)
	respondJSON(ctx, http.StatusOK, st)
}

func (s *Server) handleNotFound(ctx *fasthttp.RequestCtx) {
	respondJSON(ctx, http.StatusNotFound, map[string]string{"error": "not found"})
}

func respondJSON(ctx *fasthttp.RequestCtx, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		ctx.Error(err.Error(), http.StatusInternalServerError)
		return
	}
	ctx.Response.Header.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}
