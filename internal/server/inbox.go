package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jengamon/lexi/internal/document"
	"github.com/jengamon/lexi/internal/state"
	"github.com/jengamon/lexi/pkg/core"
)

// inboxDebounce is how long a file must stay quiet before it is merged.
const inboxDebounce = 100 * time.Millisecond

// InboxWatcher merges project files dropped into a directory. Files from a
// different family are skipped.
type InboxWatcher struct {
	dir     string
	doc     *document.Document
	logger  *slog.Logger
	watcher *fsnotify.Watcher

	// OnMerge, when set, is called after each merge attempt.
	OnMerge func(path string, err error)

	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewInboxWatcher creates dir if needed and starts watching it. Events are
// processed by Run.
func NewInboxWatcher(dir string, doc *document.Document, logger *slog.Logger) (*InboxWatcher, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create inbox %s: %w", dir, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch inbox %s: %w", dir, err)
	}

	return &InboxWatcher{
		dir:     dir,
		doc:     doc,
		logger:  logger,
		watcher: watcher,
		timers:  make(map[string]*time.Timer),
	}, nil
}

// Run handles file events until ctx is cancelled.
func (w *InboxWatcher) Run(ctx context.Context) error {
	defer func() { _ = w.watcher.Close() }()
	defer w.stopTimers()

	w.logger.Info("watching merge inbox", "dir", w.dir)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if !strings.HasSuffix(event.Name, state.FileSuffix) {
				continue
			}
			w.schedule(event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watcher error", "error", err)
		}
	}
}

// schedule merges path once it has been quiet for inboxDebounce.
func (w *InboxWatcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(inboxDebounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		err := w.merge(path)
		if w.OnMerge != nil {
			w.OnMerge(path, err)
		}
	})
}

func (w *InboxWatcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
}

func (w *InboxWatcher) merge(path string) error {
	incoming, err := state.LoadFile(path)
	if err != nil {
		w.logger.Error("failed to read inbox file", "file", path, "error", err)
		return err
	}

	report, err := w.doc.Merge(incoming)
	if errors.Is(err, core.ErrFamilyMismatch) {
		w.logger.Warn("skipping inbox file from another family", "file", path, "error", err)
		return err
	}
	if err != nil {
		w.logger.Error("inbox merge failed", "file", path, "error", err)
		return err
	}

	w.logger.Info("merged inbox file",
		"file", path,
		"languages", report.Languages,
		"replaced", report.Replaced,
	)
	return nil
}
