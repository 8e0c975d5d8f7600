package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jengamon/lexi/internal/document"
	"github.com/jengamon/lexi/pkg/core"
)

// NewLanguageCommand creates the lang command.
func NewLanguageCommand() *cobra.Command {
	cmd := newEntityCommand(core.KindLanguage, "lang", "Manage languages", "language", "languages")
	cmd.AddCommand(newAncestorsCommand())
	return cmd
}

// NewProtolanguageCommand creates the proto command.
func NewProtolanguageCommand() *cobra.Command {
	return newEntityCommand(core.KindProtolanguage, "proto", "Manage protolanguages", "protolanguage", "protolanguages")
}

func newEntityCommand(kind core.Kind, use, short string, aliases ...string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     use,
		Aliases: aliases,
		Short:   short,
	}
	cmd.AddCommand(
		newEntityCreateCommand(kind),
		newEntityDeleteCommand(kind),
		newEntityListCommand(kind),
		newEntityShowCommand(kind),
		newEntityDescribeCommand(kind),
		newPhonemeCommand(kind),
	)
	return cmd
}

// entityView fetches one entity as a view.
func entityView(doc *document.Document, kind core.Kind, name string) (EntityView, error) {
	if kind == core.KindLanguage {
		l, err := doc.Language(name)
		if err != nil {
			return EntityView{}, err
		}
		return languageView(l), nil
	}
	p, err := doc.Protolanguage(name)
	if err != nil {
		return EntityView{}, err
	}
	return protolanguageView(p), nil
}

func newEntityCreateCommand(kind core.Kind) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>...",
		Short: fmt.Sprintf("Create empty %ss", kind),
		Args:  cobra.MinimumNArgs(1),
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
			create := doc.CreateLanguage
			if kind == core.KindProtolanguage {
				create = doc.CreateProtolanguage
			}
			for _, name := range args {
				if err := create(name); err != nil {
					return err
				}
			}
			if err := cctx.Commit(ctx, fmt.Sprintf("create %s %s", kind, strings.Join(args, ", "))); err != nil {
				return err
			}
			for _, name := range args {
				cctx.Renderer.StatusLine(name, "success", "created")
			}
			return nil
		},
	}
}

func newEntityDeleteCommand(kind core.Kind) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <name>...",
		Aliases: []string{"rm"},
		Short:   fmt.Sprintf("Delete %ss", kind),
		Long: fmt.Sprintf(`Delete %ss by name. Deleting a missing name is not an error.
Languages that name a deleted protolanguage as ancestor keep the name; it is
skipped when phonemes are resolved.`, kind),
		Args: cobra.MinimumNArgs(1),
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
			removed := make([]bool, len(args))
			for i, name := range args {
				removed[i] = doc.Delete(kind, name)
			}
			if err := cctx.Commit(ctx, fmt.Sprintf("delete %s %s", kind, strings.Join(args, ", "))); err != nil {
				return err
			}
			for i, name := range args {
				if removed[i] {
					cctx.Renderer.StatusLine(name, "success", "deleted")
				} else {
					cctx.Renderer.StatusLine(name, "", "not found")
				}
			}
			return nil
		},
	}
}

func newEntityListCommand(kind core.Kind) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   fmt.Sprintf("List %ss", kind),
		Args:    cobra.NoArgs,
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
			names := doc.Names(kind)
			views := make([]EntityView, 0, len(names))
			for _, name := range names {
				v, err := entityView(doc, kind, name)
				if err != nil {
					return err
				}
				views = append(views, v)
			}

			r := cctx.Renderer
			if ok, err := r.Structured(views); ok {
				return err
			}
			if len(views) == 0 {
				r.Muted(fmt.Sprintf("No %ss", kind))
				return nil
			}
			header := []string{"Name", "Phonemes"}
			if kind == core.KindLanguage {
				header = append(header, "Ancestors")
			}
			rows := make([][]string, 0, len(views))
			for _, v := range views {
				rows = append(rows, v.row())
			}
			r.Table(header, rows)
			return nil
		},
	}
}

func newEntityShowCommand(kind core.Kind) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: fmt.Sprintf("Show a %s and every phoneme visible to it", kind),
		Args:  cobra.ExactArgs(1),
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
			view, err := entityView(doc, kind, args[0])
			if err != nil {
				return err
			}
			entries, err := doc.EnumeratePhonemes(kind, args[0])
			if err != nil {
				return err
			}
			phonemes := entryViews(entries)

			r := cctx.Renderer
			if ok, err := r.Structured(struct {
				EntityView `yaml:",inline"`
				Visible    []PhonemeView `json:"visible" yaml:"visible"`
			}{view, phonemes}); ok {
				return err
			}

			r.Header(1, view.Name)
			pairs := [][2]string{{"kind", view.Kind}}
			if kind == core.KindLanguage {
				pairs = append(pairs, [2]string{"ancestors", strings.Join(view.Ancestors, ", ")})
			}
			if view.Description != nil {
				desc, _ := json.Marshal(view.Description)
				pairs = append(pairs, [2]string{"description", string(desc)})
			}
			r.KeyValues(pairs)
			renderPhonemes(cctx, phonemes)
			return nil
		},
	}
}

func newEntityDescribeCommand(kind core.Kind) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <name> [json|-]",
		Short: fmt.Sprintf("Get or set the description of a %s", kind),
		Long: fmt.Sprintf(`Print the free-form JSON description of a %s, or replace it.
Pass "-" to read the new description from stdin.`, kind),
		Args: cobra.RangeArgs(1, 2),
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

			if len(args) == 1 {
				raw, err := doc.Description(kind, args[0])
				if err != nil {
					return err
				}
				if len(raw) == 0 {
					raw = json.RawMessage("null")
				}
				return cctx.Renderer.JSON(raw)
			}

			body := []byte(args[1])
			if args[1] == "-" {
				if body, err = io.ReadAll(cmd.InOrStdin()); err != nil {
					return fmt.Errorf("failed to read description: %w", err)
				}
			}
			if !json.Valid(body) {
				return fmt.Errorf("description for %s %q is not valid JSON", kind, args[0])
			}
			if err := doc.SetDescription(kind, args[0], json.RawMessage(body)); err != nil {
				return err
			}
			if err := cctx.Commit(ctx, fmt.Sprintf("describe %s %s", kind, args[0])); err != nil {
				return err
			}
			cctx.Renderer.Success(fmt.Sprintf("Updated description of %s", args[0]))
			return nil
		},
	}
}

func newAncestorsCommand() *cobra.Command {
	var clearAll bool
	cmd := &cobra.Command{
		Use:   "ancestors <language> [protolanguage...]",
		Short: "Get or set the ancestors of a language",
		Long: `Print the ancestor protolanguages of a language, or replace them.
Ancestors are resolved in the order given. Names are not checked, so a
language may name a protolanguage that does not exist yet.`,
		Args: cobra.MinimumNArgs(1),
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
			lang := args[0]

			if len(args) == 1 && !clearAll {
				l, err := doc.Language(lang)
				if err != nil {
					return err
				}
				r := cctx.Renderer
				if ok, err := r.Structured(l.Ancestors); ok {
					return err
				}
				for _, name := range l.Ancestors {
					status := "success"
					if _, err := doc.Protolanguage(name); err != nil {
						status = "warning"
					}
					r.StatusLine(name, status, "")
				}
				return nil
			}

			for _, name := range args[1:] {
				if _, err := doc.Protolanguage(name); err != nil {
					cctx.Renderer.Warning(fmt.Sprintf("%s names unknown protolanguage %q", lang, name))
				}
			}
			if err := doc.SetAncestors(lang, args[1:]); err != nil {
				return err
			}
			if err := cctx.Commit(ctx, "ancestors of "+lang); err != nil {
				return err
			}
			if len(args) == 1 {
				cctx.Renderer.Success(fmt.Sprintf("%s has no ancestors", lang))
				return nil
			}
			cctx.Renderer.Success(fmt.Sprintf("%s descends from %s", lang, strings.Join(args[1:], ", ")))
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Remove every ancestor")
	return cmd
}
