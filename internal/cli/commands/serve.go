package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jengamon/lexi/internal/autosave"
	"github.com/jengamon/lexi/internal/document"
	"github.com/jengamon/lexi/internal/notifier"
	"github.com/jengamon/lexi/internal/server"
	"github.com/jengamon/lexi/pkg/core"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Create bool
}

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the selected project over HTTP",
		Long: `Open the selected project and serve it over a local HTTP API.

The server provides:
- JSON endpoints for the project, languages, protolanguages and phonemes
- Server-sent event streams of entity names and phonemes
- An optional inbox directory; project files dropped there are merged in

The project is saved every autosave_interval while it changes, and once more
on shutdown.`,
		Example: `  # Serve on the default address
  lexi serve --project norse

  # Serve on another port and merge files dropped into ./inbox
  lexi serve --project norse --addr 127.0.0.1:9000 --inbox ./inbox`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default: 127.0.0.1:8765)")
	cmd.Flags().String("inbox", "", "Directory watched for project files to merge")
	cmd.Flags().Duration("autosave-interval", 0, "How often to save changes (0 disables)")
	cmd.Flags().BoolVar(&opts.Create, "create", false, "Start a new project if the selected one does not exist")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	cctx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := cctx.Cfg
	logger := cctx.Logger
	name, err := cfg.RequireProject()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	created := false
	g, err := cctx.Files.Load(ctx, name)
	switch {
	case errors.Is(err, core.ErrNotFound) && opts.Create:
		logger.Info("starting new project", "project", name)
		g, created = core.NewGroup(), true
	case err != nil:
		return fmt.Errorf("failed to open project %q: %w", name, err)
	}

	notify := notifier.New()
	doc := document.New(name, g, document.WithLogger(logger), document.WithBroadcaster(notify))

	savers := []autosave.Saver{cctx.Files}
	if cctx.History != nil {
		savers = append(savers, cctx.History)
	}
	scheduler := autosave.New(doc, cfg.AutosaveInterval, logger, savers...)
	if created {
		if err := scheduler.Flush(ctx); err != nil {
			return err
		}
	}

	srv := server.NewServer(server.Config{
		Document:     doc,
		Notifier:     notify,
		Files:        cctx.Files,
		History:      cctx.History,
		Addr:         cfg.Server.Addr,
		InboxDir:     cfg.Server.InboxDir,
		PollInterval: cfg.PollInterval,
		Logger:       logger,
	})

	r := cctx.Renderer
	r.Info(fmt.Sprintf("Serving %s on http://%s", name, cfg.Server.Addr))
	if cfg.Server.InboxDir != "" {
		r.Muted("Merging project files dropped into " + cfg.Server.InboxDir)
	}
	r.Muted("Press Ctrl+C to stop")

	grp, gctx := errgroup.WithContext(ctx)
	grp.Go(func() error { return srv.Serve(gctx) })
	grp.Go(func() error { return scheduler.Run(gctx) })
	if err := grp.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
