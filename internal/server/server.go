// Package server exposes the open project over HTTP: a JSON API, server-sent
// event streams of entity names and phonemes, and an inbox directory whose
// dropped project files are merged into the document.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/jengamon/lexi/internal/document"
	"github.com/jengamon/lexi/internal/notifier"
	"github.com/jengamon/lexi/internal/state"
	"github.com/jengamon/lexi/internal/translit"
)

// DefaultAddr is the listen address used when none is configured.
const DefaultAddr = "127.0.0.1:8765"

// Config holds configuration for the server.
type Config struct {
	Document     *document.Document
	Notifier     *notifier.Notifier
	Files        *state.FileStore
	History      *state.SQLiteStore
	Addr         string
	InboxDir     string
	PollInterval time.Duration
	Translit     translit.Func
	Logger       *slog.Logger
}

// Server serves one document.
type Server struct {
	doc          *document.Document
	notify       *notifier.Notifier
	files        *state.FileStore
	history      *state.SQLiteStore
	addr         string
	inboxDir     string
	pollInterval time.Duration
	translit     translit.Func
	logger       *slog.Logger
}

// NewServer creates a new server instance.
func NewServer(cfg Config) *Server {
	s := &Server{
		doc:          cfg.Document,
		notify:       cfg.Notifier,
		files:        cfg.Files,
		history:      cfg.History,
		addr:         cfg.Addr,
		inboxDir:     cfg.InboxDir,
		pollInterval: cfg.PollInterval,
		translit:     cfg.Translit,
		logger:       cfg.Logger,
	}
	if s.doc == nil {
		s.doc = document.New("", nil)
	}
	if s.notify == nil {
		s.notify = notifier.New()
	}
	if s.addr == "" {
		s.addr = DefaultAddr
	}
	if s.pollInterval <= 0 {
		s.pollInterval = document.DefaultPollInterval
	}
	if s.translit == nil {
		s.translit = translit.BrannerToIPA
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		s.requestLogger,
		middleware.Recoverer,
		middleware.Compress(5),
	)
	s.setupRoutes(r)
	return r
}

// Serve listens on the configured address and blocks until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln until ctx is cancelled, then shuts down
// gracefully. The inbox watcher runs alongside when an inbox is configured.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	s.logger.Info("starting server", "addr", "http://"+ln.Addr().String())

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.inboxDir != "" {
		inbox, err := NewInboxWatcher(s.inboxDir, s.doc, s.logger)
		if err != nil {
			_ = ln.Close()
			return err
		}
		eg.Go(func() error {
			return inbox.Run(egctx)
		})
	}

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
