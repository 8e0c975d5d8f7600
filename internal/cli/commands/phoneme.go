package commands

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jengamon/lexi/pkg/core"
	"github.com/jengamon/lexi/pkg/phone"
)

// phonemeFlags are the flags shared by phoneme add and set.
type phonemeFlags struct {
	ortho     string
	primary   string
	allo      []string
	clearAllo bool
}

func (f *phonemeFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.ortho, "ortho", "", "Orthographic form")
	fs.StringVar(&f.primary, "primary", "null", "Primary phone, e.g. plosive/bilabial/voiceless+ejective")
	fs.StringArrayVar(&f.allo, "allo", nil, "Allophone (repeatable)")
}

// apply overrides the fields of base whose flags were set.
func (f *phonemeFlags) apply(fs *pflag.FlagSet, base core.Phoneme) (core.Phoneme, error) {
	out := base.Clone()
	if fs.Changed("ortho") {
		out.Ortho = f.ortho
	}
	if fs.Changed("primary") {
		p, err := phone.Parse(f.primary)
		if err != nil {
			return core.Phoneme{}, err
		}
		out.Primary = p
	}
	if f.clearAllo {
		out.Allophones = nil
	}
	if fs.Changed("allo") {
		allo := make([]phone.Phone, 0, len(f.allo))
		for _, spec := range f.allo {
			p, err := phone.Parse(spec)
			if err != nil {
				return core.Phoneme{}, err
			}
			allo = append(allo, p)
		}
		out.Allophones = append(out.Allophones, allo...)
	}
	return out.Normalize(), nil
}

func parsePhonemeID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid phoneme id %q: %w", s, err)
	}
	return id, nil
}

func renderPhonemes(cctx *CommandContext, views []PhonemeView) {
	r := cctx.Renderer
	if len(views) == 0 {
		r.Muted("No phonemes")
		return
	}
	rows := make([][]string, 0, len(views))
	for _, v := range views {
		rows = append(rows, v.row())
	}
	r.Table([]string{"ID", "Ortho", "Primary", "Allophones", "Source"}, rows)
}

func newPhonemeCommand(kind core.Kind) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "phoneme",
		Aliases: []string{"ph"},
		Short:   fmt.Sprintf("Manage the phonemes of a %s", kind),
		Long: fmt.Sprintf(`Manage the phonemes of a %s.

Phones are written as specs:
  null
  vowel
  plosive/<place>/<voiced|voiceless>[+attachment...]
  fricative/<place>/<voiced|voiceless>[+attachment...]
  affricate/<start>/<end>/<voiced|voiceless>[+attachment...]

Attachments are ejective, aspirated, preaspirated, breathy and creaky.`, kind),
	}
	cmd.AddCommand(
		newPhonemeAddCommand(kind),
		newPhonemeListCommand(kind),
		newPhonemeGetCommand(kind),
		newPhonemeSetCommand(kind),
		newPhonemeDeleteCommand(kind),
	)
	return cmd
}

func newPhonemeAddCommand(kind core.Kind) *cobra.Command {
	var flags phonemeFlags
	cmd := &cobra.Command{
		Use:   "add <entity>",
		Short: "Add a phoneme and print its id",
		Args:  cobra.ExactArgs(1),
		Example: `  lexi lang phoneme add Norse --ortho p --primary plosive/bilabial/voiceless \
    --allo plosive/bilabial/voiceless+aspirated`,
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
			p, err := flags.apply(cmd.Flags(), core.Phoneme{Primary: phone.Null()})
			if err != nil {
				return err
			}
			id, err := doc.CreatePhoneme(kind, args[0], p)
			if err != nil {
				return err
			}
			if err := cctx.Commit(ctx, fmt.Sprintf("add phoneme %s to %s", p.Ortho, args[0])); err != nil {
				return err
			}

			r := cctx.Renderer
			if ok, err := r.Structured(phonemeView(id.String(), p, "")); ok {
				return err
			}
			r.Println(id.String())
			return nil
		},
	}
	flags.register(cmd.Flags())
	return cmd
}

func newPhonemeListCommand(kind core.Kind) *cobra.Command {
	return &cobra.Command{
		Use:     "list <entity>",
		Aliases: []string{"ls"},
		Short:   "List every phoneme visible to an entity, local ones first",
		Args:    cobra.ExactArgs(1),
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
			entries, err := doc.EnumeratePhonemes(kind, args[0])
			if err != nil {
				return err
			}
			views := entryViews(entries)
			if ok, err := cctx.Renderer.Structured(views); ok {
				return err
			}
			renderPhonemes(cctx, views)
			return nil
		},
	}
}

func newPhonemeGetCommand(kind core.Kind) *cobra.Command {
	return &cobra.Command{
		Use:   "get <entity> <id>",
		Short: "Show one phoneme, resolving it through ancestors",
		Args:  cobra.ExactArgs(2),
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
			id, err := parsePhonemeID(args[1])
			if err != nil {
				return err
			}
			p, err := doc.GetPhoneme(kind, args[0], id)
			if err != nil {
				return err
			}

			view := phonemeView(id.String(), p, "")
			r := cctx.Renderer
			if ok, err := r.Structured(view); ok {
				return err
			}
			allo := ""
			for i, a := range view.Allophones {
				if i > 0 {
					allo += " "
				}
				allo += a.label()
			}
			r.KeyValues([][2]string{
				{"id", view.ID},
				{"ortho", view.Ortho},
				{"primary", view.Primary.label()},
				{"spec", view.Primary.Spec},
				{"allophones", allo},
			})
			return nil
		},
	}
}

func newPhonemeSetCommand(kind core.Kind) *cobra.Command {
	var flags phonemeFlags
	cmd := &cobra.Command{
		Use:   "set <entity> <id>",
		Short: "Change a phoneme",
		Long: `Change the fields given by flags and keep the rest.

Setting a phoneme inherited from an ancestor stores a local override on the
entity; the ancestor keeps its own version.`,
		Args: cobra.ExactArgs(2),
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
			id, err := parsePhonemeID(args[1])
			if err != nil {
				return err
			}
			current, err := doc.GetPhoneme(kind, args[0], id)
			if err != nil {
				return err
			}
			p, err := flags.apply(cmd.Flags(), current)
			if err != nil {
				return err
			}
			if err := doc.SetPhoneme(kind, args[0], id, p); err != nil {
				return err
			}
			if err := cctx.Commit(ctx, fmt.Sprintf("set phoneme %s of %s", id, args[0])); err != nil {
				return err
			}
			cctx.Renderer.StatusLine(id.String(), "success", "updated")
			return nil
		},
	}
	flags.register(cmd.Flags())
	cmd.Flags().BoolVar(&flags.clearAllo, "clear-allo", false, "Drop the existing allophones before adding --allo")
	return cmd
}

func newPhonemeDeleteCommand(kind core.Kind) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <entity> <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a phoneme from the entity itself",
		Long: `Delete a phoneme stored on the entity. Inherited phonemes are not touched,
so deleting a local override reveals the ancestor's version again.`,
		Args: cobra.ExactArgs(2),
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
			id, err := parsePhonemeID(args[1])
			if err != nil {
				return err
			}
			_, ok, err := doc.DeletePhoneme(kind, args[0], id)
			if err != nil {
				return err
			}
			if !ok {
				cctx.Renderer.StatusLine(id.String(), "", "not stored on "+args[0])
				return nil
			}
			if err := cctx.Commit(ctx, fmt.Sprintf("delete phoneme %s of %s", id, args[0])); err != nil {
				return err
			}
			cctx.Renderer.StatusLine(id.String(), "success", "deleted")
			return nil
		},
	}
}
