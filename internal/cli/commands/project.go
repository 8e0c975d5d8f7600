package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jengamon/lexi/internal/cli/output"
	"github.com/jengamon/lexi/internal/state"
	"github.com/jengamon/lexi/pkg/core"
)

// NewProjectCommand creates the project command and its subcommands.
func NewProjectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project",
		Aliases: []string{"p"},
		Short:   "Create, inspect and transform projects",
		Long: `Manage language-group projects.

A project is one language family snapshot saved as <data_dir>/lang/<name>.lg.json.
Most subcommands act on the project selected with --project (or LEXI_PROJECT).`,
	}
	cmd.AddCommand(
		newProjectNewCommand(),
		newProjectShowCommand(),
		newProjectListCommand(),
		newProjectDeleteCommand(),
		newProjectRenameCommand(),
		newProjectEpochCommand(),
		newProjectMergeCommand(),
		newProjectExportCommand(),
		newProjectImportCommand(),
		newProjectHistoryCommand(),
		newProjectRestoreCommand(),
	)
	return cmd
}

// projectExists reports whether name already has a project file.
func projectExists(files *state.FileStore, name string) (bool, error) {
	path, err := files.Path(name)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

func newProjectNewCommand() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "new <name>",
		Short: "Start a new language family",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cctx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			name := args[0]
			exists, err := projectExists(cctx.Files, name)
			if err != nil {
				return err
			}
			if exists && !force {
				return fmt.Errorf("project %q already exists\nHint: use --force to overwrite it", name)
			}

			doc, err := cctx.Start(ctx, name, core.NewGroup())
			if err != nil {
				return err
			}
			if err := cctx.Commit(ctx, "new"); err != nil {
				return err
			}

			r := cctx.Renderer
			_, g, _ := doc.Snapshot()
			if ok, err := r.Structured(projectView(name, g)); ok {
				return err
			}
			r.Success(fmt.Sprintf("Created project %s", name))
			r.Muted(fmt.Sprintf("family %s", doc.FamilyID()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing project")
	return cmd
}

func newProjectShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the selected project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cctx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			doc, err := cctx.Project(cmd.Context())
			if err != nil {
				return err
			}
			name, g, _ := doc.Snapshot()
			view := projectView(name, g)

			r := cctx.Renderer
			if ok, err := r.Structured(view); ok {
				return err
			}
			renderProject(r, view)
			return nil
		},
	}
}

func renderProject(r *output.Renderer, view ProjectView) {
	r.Header(1, "Project "+view.Name)
	r.KeyValues([][2]string{
		{"family", view.FamilyID},
		{"version", view.Version},
		{"protolanguages", strconv.Itoa(len(view.Protolanguages))},
		{"languages", strconv.Itoa(len(view.Languages))},
	})

	if len(view.Protolanguages) > 0 {
		r.Header(2, "Protolanguages")
		rows := make([][]string, 0, len(view.Protolanguages))
		for _, p := range view.Protolanguages {
			rows = append(rows, p.row())
		}
		r.Table([]string{"Name", "Phonemes"}, rows)
	}
	if len(view.Languages) > 0 {
		r.Header(2, "Languages")
		rows := make([][]string, 0, len(view.Languages))
		for _, l := range view.Languages {
			rows = append(rows, l.row())
		}
		r.Table([]string{"Name", "Phonemes", "Ancestors"}, rows)
	}
}

func newProjectListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved projects",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cctx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			names, err := cctx.Files.List(cmd.Context())
			if err != nil {
				return err
			}

			r := cctx.Renderer
			if ok, err := r.Structured(names); ok {
				return err
			}
			if len(names) == 0 {
				r.Muted("No projects in " + cctx.Files.Dir())
				return nil
			}
			r.Header(1, fmt.Sprintf("Projects (%d total)", len(names)))
			for _, name := range names {
				status := ""
				if name == cctx.Cfg.Project {
					status = "success"
				}
				r.StatusLine(name, status, "")
			}
			return nil
		},
	}
}

func newProjectDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a saved project file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cctx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := cctx.Files.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			cctx.Renderer.Success(fmt.Sprintf("Deleted project %s", args[0]))
			return nil
		},
	}
}

func newProjectRenameCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <new-name>",
		Short: "Rename the selected project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cctx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			doc, err := cctx.Project(ctx)
			if err != nil {
				return err
			}
			old := doc.Name()
			if old == args[0] {
				return nil
			}
			exists, err := projectExists(cctx.Files, args[0])
			if err != nil {
				return err
			}
			if exists {
				return fmt.Errorf("project %q already exists", args[0])
			}

			if err := doc.SetName(args[0]); err != nil {
				return err
			}
			if err := cctx.Commit(ctx, "rename from "+old); err != nil {
				return err
			}
			if err := cctx.Files.Delete(ctx, old); err != nil && !errors.Is(err, core.ErrNotFound) {
				return err
			}
			cctx.Renderer.Success(fmt.Sprintf("Renamed %s to %s", old, args[0]))
			return nil
		},
	}
}

func newProjectEpochCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "epoch",
		Short: "Turn every language into a protolanguage",
		Long: `Advance the family by one stage.

Every language becomes a protolanguage of the same name with its inherited
phonemes flattened in. The old protolanguages are dropped and the language
list starts empty. The project is saved under a new name: name_epochN becomes name_epochN+1, any other name
gains the suffix _epoched. The original project file is left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cctx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			doc, err := cctx.Project(ctx)
			if err != nil {
				return err
			}
			old := doc.Name()
			name, err := doc.Epoch()
			if err != nil {
				return err
			}
			if err := cctx.Commit(ctx, "epoch of "+old); err != nil {
				return err
			}

			r := cctx.Renderer
			if ok, err := r.Structured(map[string]string{"from": old, "project": name}); ok {
				return err
			}
			r.Success(fmt.Sprintf("Epoch complete: %s", name))
			r.Muted(fmt.Sprintf("Continue with --project %s", name))
			return nil
		},
	}
}

func newProjectMergeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "merge <file>",
		Short: "Replace the languages with those of another snapshot of the family",
		Long: `Merge the languages of a project file into the selected project.

The file must belong to the same family. Its languages replace the current
ones; protolanguages are kept and ancestors that name no protolanguage are
dropped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cctx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			doc, err := cctx.Project(ctx)
			if err != nil {
				return err
			}
			incoming, err := state.LoadFile(args[0])
			if err != nil {
				return err
			}
			report, err := doc.Merge(incoming)
			if err != nil {
				return err
			}
			if err := cctx.Commit(ctx, "merge "+filepath.Base(args[0])); err != nil {
				return err
			}

			r := cctx.Renderer
			if ok, err := r.Structured(report); ok {
				return err
			}
			r.Success(fmt.Sprintf("Merged %d languages", report.Languages))
			for _, name := range report.Replaced {
				r.StatusLine(name, "warning", "removed")
			}
			for lang, pruned := range report.Pruned {
				r.StatusLine(lang, "warning", "dropped ancestors "+strings.Join(pruned, ", "))
			}
			return nil
		},
	}
}

func newProjectExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write the project in its persisted JSON form",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cctx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			doc, err := cctx.Project(cmd.Context())
			if err != nil {
				return err
			}
			_, g, _ := doc.Snapshot()

			if len(args) == 0 {
				return core.Encode(cctx.Renderer.Writer(), g)
			}
			f, err := os.Create(args[0]) //nolint:gosec // G304: user-chosen export path
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", args[0], err)
			}
			if err := core.Encode(f, g); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to write %s: %w", args[0], err)
			}
			cctx.Renderer.Success(fmt.Sprintf("Exported %s to %s", doc.Name(), args[0]))
			return nil
		},
	}
}

func newProjectImportCommand() *cobra.Command {
	var (
		name  string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Save a project file into the data directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cctx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			g, err := state.LoadFile(args[0])
			if err != nil {
				return err
			}
			if name == "" {
				name = strings.TrimSuffix(strings.TrimSuffix(filepath.Base(args[0]), state.FileSuffix), ".json")
			}
			exists, err := projectExists(cctx.Files, name)
			if err != nil {
				return err
			}
			if exists && !force {
				return fmt.Errorf("project %q already exists\nHint: use --force to overwrite it or --name to pick another name", name)
			}
			if _, err := cctx.Start(ctx, name, g); err != nil {
				return err
			}
			if err := cctx.Commit(ctx, "import "+filepath.Base(args[0])); err != nil {
				return err
			}
			cctx.Renderer.Success(fmt.Sprintf("Imported %s as %s", args[0], name))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Project name (default: the file name)")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing project")
	return cmd
}

func requireHistory(cctx *CommandContext) error {
	if cctx.History == nil {
		return fmt.Errorf("history is disabled\nHint: set history_path in lexi.yaml or drop --history off")
	}
	return nil
}

func newProjectHistoryCommand() *cobra.Command {
	var (
		limit int
		all   bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded snapshots of the selected project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cctx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			if err := requireHistory(cctx); err != nil {
				return err
			}

			project := ""
			if !all {
				if project, err = cctx.Cfg.RequireProject(); err != nil {
					return err
				}
			}
			snaps, err := cctx.History.List(cmd.Context(), project, limit)
			if err != nil {
				return err
			}

			r := cctx.Renderer
			if ok, err := r.Structured(snaps); ok {
				return err
			}
			if len(snaps) == 0 {
				r.Muted("No snapshots recorded")
				return nil
			}
			rows := make([][]string, 0, len(snaps))
			for _, s := range snaps {
				rows = append(rows, []string{
					s.ID,
					s.Project,
					s.TakenAt.Local().Format(time.DateTime),
					strconv.Itoa(s.Protolanguages),
					strconv.Itoa(s.Languages),
					s.Note,
				})
			}
			r.Table([]string{"ID", "Project", "Taken", "Protolanguages", "Languages", "Note"}, rows)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of snapshots (0 for all)")
	cmd.Flags().BoolVar(&all, "all", false, "List snapshots of every project")
	return cmd
}

func newProjectRestoreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <snapshot-id>",
		Short: "Restore a recorded snapshot over its project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cctx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()
			if err := requireHistory(cctx); err != nil {
				return err
			}

			ctx := cmd.Context()
			snap, g, err := cctx.History.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if _, err := cctx.Start(ctx, snap.Project, g); err != nil {
				return err
			}
			if err := cctx.Commit(ctx, "restore "+snap.ID); err != nil {
				return err
			}
			cctx.Renderer.Success(fmt.Sprintf("Restored %s from %s", snap.Project, snap.TakenAt.Local().Format(time.DateTime)))
			return nil
		},
	}
}
