// Package autosave periodically writes the open project to one or more
// stores.
package autosave

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jengamon/lexi/internal/document"
	"github.com/jengamon/lexi/pkg/core"
)

// DefaultInterval is how often the scheduler checks for changes.
const DefaultInterval = 30 * time.Second

// flushTimeout bounds the final save made while shutting down.
const flushTimeout = 5 * time.Second

// Saver persists a named language group.
type Saver interface {
	Save(ctx context.Context, name string, g *core.LanguageGroup) error
}

// SaverFunc adapts a function to the Saver interface.
type SaverFunc func(ctx context.Context, name string, g *core.LanguageGroup) error

// Save calls f.
func (f SaverFunc) Save(ctx context.Context, name string, g *core.LanguageGroup) error {
	return f(ctx, name, g)
}

// Scheduler saves the document whenever its revision moved since the last
// successful save.
type Scheduler struct {
	doc      *document.Document
	savers   []Saver
	interval time.Duration
	logger   *slog.Logger

	mu      sync.Mutex
	lastRev uint64
}

// New creates a scheduler. The document's current revision counts as saved.
// An interval of zero or less disables periodic saving.
func New(doc *document.Document, interval time.Duration, logger *slog.Logger, savers ...Saver) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{
		doc:      doc,
		savers:   savers,
		interval: interval,
		logger:   logger,
		lastRev:  doc.Revision(),
	}
}

// SaveNow writes the document through every saver if it changed. It reports
// whether a save happened. When any saver fails the revision is not marked
// saved, so the next call retries.
func (s *Scheduler) SaveNow(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name, group, rev := s.doc.Snapshot()
	if rev == s.lastRev {
		return false, nil
	}
	if err := s.fanOut(ctx, name, group); err != nil {
		return false, err
	}
	s.lastRev = rev
	s.logger.Debug("autosaved project", "name", name, "revision", rev)
	return true, nil
}

// Flush writes the document through every saver regardless of revision.
func (s *Scheduler) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	name, group, rev := s.doc.Snapshot()
	if err := s.fanOut(ctx, name, group); err != nil {
		return err
	}
	s.lastRev = rev
	return nil
}

func (s *Scheduler) fanOut(ctx context.Context, name string, group *core.LanguageGroup) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, saver := range s.savers {
		g.Go(func() error {
			return saver.Save(gctx, name, group)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("autosave %s: %w", name, err)
	}
	return nil
}

// Run saves on every tick until ctx is done, then makes one last save of
// any pending change. Save failures are logged and retried on the next tick.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.interval <= 0 || len(s.savers) == 0 {
		s.logger.Debug("autosave disabled")
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), flushTimeout)
			defer cancel()
			if _, err := s.SaveNow(flushCtx); err != nil {
				s.logger.Error("final autosave failed", "error", err)
				return err
			}
			return nil
		case <-ticker.C:
			if _, err := s.SaveNow(ctx); err != nil {
				s.logger.Error("autosave failed", "error", err)
			}
		}
	}
}
