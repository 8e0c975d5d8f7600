package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jengamon/lexi/internal/autosave"
	"github.com/jengamon/lexi/internal/cli/config"
	"github.com/jengamon/lexi/internal/cli/output"
	"github.com/jengamon/lexi/internal/document"
	"github.com/jengamon/lexi/internal/state"
	"github.com/jengamon/lexi/pkg/core"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
	Files    *state.FileStore
	History  *state.SQLiteStore // nil when history is off

	doc   *document.Document
	saver *autosave.Scheduler
	note  string
}

// NewCommandContext creates a CommandContext with the project stores opened.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	c := NewCommandContextWithoutStores(cmd)
	c.Files = state.NewFileStore(c.Cfg.DataDir, c.Logger)

	cleanup := func() {}
	if c.Cfg.HistoryEnabled() {
		history, err := openHistory(c.Cfg.HistoryPath, c.Logger)
		if err != nil {
			return nil, nil, err
		}
		c.History = history
		cleanup = func() { _ = history.Close() }
	}
	return c, cleanup, nil
}

// NewCommandContextWithoutStores creates a CommandContext without stores.
// Useful for commands that never touch a project.
func NewCommandContextWithoutStores(cmd *cobra.Command) *CommandContext {
	cfg := getConfig()
	renderer := output.FromContext(cmd.Context())
	if renderer == nil {
		mode, err := output.ParseMode(cfg.Output)
		if err != nil {
			mode = output.ModeAuto
		}
		renderer = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)
	}
	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: renderer,
	}
}

// getConfig returns the current configuration, or defaults when none was
// loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}
	dataDir := config.DefaultDataDir()
	return &config.Config{
		DataDir:          dataDir,
		Project:          os.Getenv(config.EnvPrefix + "PROJECT"),
		HistoryPath:      filepath.Join(dataDir, config.HistoryFile),
		HistoryKeep:      config.DefaultHistoryKeep,
		LogLevel:         config.DefaultLogLevel,
		LogFormat:        config.DefaultLogFormat,
		Output:           config.DefaultOutput,
		AutosaveInterval: config.DefaultAutosaveInterval,
		PollInterval:     config.DefaultPollInterval,
		Server:           config.ServerConfig{Addr: config.DefaultServerAddr},
	}
}

func openHistory(path string, logger *slog.Logger) (*state.SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}
	history := state.NewSQLiteStore(logger)
	if err := history.Open(path); err != nil {
		return nil, err
	}
	return history, nil
}

// Project returns the open document. A document placed in ctx by the shell
// wins; otherwise the configured project is loaded from its file.
func (c *CommandContext) Project(ctx context.Context) (*document.Document, error) {
	if c.doc != nil {
		return c.doc, nil
	}
	if doc := document.FromContext(ctx); doc != nil {
		c.attach(doc)
		return doc, nil
	}

	name, err := c.Cfg.RequireProject()
	if err != nil {
		return nil, err
	}
	g, err := c.Files.Load(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to open project %q: %w", name, err)
	}
	c.attach(document.New(name, g, document.WithLogger(c.Logger)))
	return c.doc, nil
}

// attach makes doc the context's document. Its current revision counts as
// saved.
func (c *CommandContext) attach(doc *document.Document) {
	c.doc = doc
	savers := []autosave.Saver{c.Files}
	if c.History != nil {
		savers = append(savers, autosave.SaverFunc(c.record))
	}
	c.saver = autosave.New(doc, 0, c.Logger, savers...)
}

// record stores a history snapshot labelled with the pending note and trims
// old snapshots.
func (c *CommandContext) record(ctx context.Context, name string, g *core.LanguageGroup) error {
	if _, err := c.History.Record(ctx, name, g, c.note); err != nil {
		return err
	}
	if c.Cfg.HistoryKeep > 0 {
		if _, err := c.History.Prune(ctx, name, c.Cfg.HistoryKeep); err != nil {
			return err
		}
	}
	return nil
}

// Commit saves the document if it changed since it was opened or last
// committed. note labels the history snapshot.
func (c *CommandContext) Commit(ctx context.Context, note string) error {
	if c.saver == nil {
		return nil
	}
	c.note = note
	saved, err := c.saver.SaveNow(ctx)
	if err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	if saved {
		c.Logger.Debug("project saved", "project", c.doc.Name(), "note", note)
	}
	return nil
}

// Start replaces the document with a fresh or loaded project and marks it
// unsaved, so the next Commit writes it.
func (c *CommandContext) Start(ctx context.Context, name string, g *core.LanguageGroup) (*document.Document, error) {
	if doc := document.FromContext(ctx); doc != nil {
		c.attach(doc)
		if err := doc.Replace(name, g); err != nil {
			return nil, err
		}
		return doc, nil
	}
	doc := document.New(name, nil, document.WithLogger(c.Logger))
	c.attach(doc)
	if err := doc.Replace(name, g); err != nil {
		return nil, err
	}
	return doc, nil
}
