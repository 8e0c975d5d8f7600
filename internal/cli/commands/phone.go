package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jengamon/lexi/internal/translit"
	"github.com/jengamon/lexi/pkg/phone"
)

// NewPhoneCommand creates the phone command.
func NewPhoneCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "phone",
		Short: "Render phones in Branner notation and IPA",
	}
	cmd.AddCommand(newPhoneRenderCommand(), newPhoneIPACommand())
	return cmd
}

// PhoneRendering is one row of `phone render`.
type PhoneRendering struct {
	Spec    string `json:"spec" yaml:"spec"`
	Branner string `json:"branner,omitempty" yaml:"branner,omitempty"`
	Display string `json:"display,omitempty" yaml:"display,omitempty"`
	Error   string `json:"error,omitempty" yaml:"error,omitempty"`
}

func newPhoneRenderCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "render <spec>...",
		Short: "Render phone specs",
		Example: `  lexi phone render plosive/bilabial/voiceless+ejective
  lexi phone render "affricate/alveolar/alveolar/voiceless" fricative/dental/voiced`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cctx := NewCommandContextWithoutStores(cmd)

			rows := make([]PhoneRendering, 0, len(args))
			var failed int
			for _, spec := range args {
				row := PhoneRendering{Spec: spec}
				p, err := phone.Parse(spec)
				if err != nil {
					return err
				}
				row.Spec = p.Spec()
				r, err := translit.Render(p, nil)
				switch {
				case errors.Is(err, phone.ErrUnsupported):
					row.Error = err.Error()
					failed++
				case err != nil:
					return err
				default:
					row.Branner, row.Display = r.Branner, r.Display
				}
				rows = append(rows, row)
			}

			r := cctx.Renderer
			if ok, err := r.Structured(rows); ok {
				return err
			}
			table := make([][]string, 0, len(rows))
			for _, row := range rows {
				display := row.Display
				if row.Error != "" {
					display = row.Error
				}
				table = append(table, []string{row.Spec, row.Branner, display})
			}
			r.Table([]string{"Spec", "Branner", "IPA"}, table)
			if failed > 0 {
				r.Warning(fmt.Sprintf("%d of %d phones have no rendering", failed, len(rows)))
			}
			return nil
		},
	}
}

func newPhoneIPACommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ipa <branner>...",
		Short: "Transliterate Branner notation to IPA",
		Example: `  lexi phone ipa 'th^' 'p))s' "S"`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cctx := NewCommandContextWithoutStores(cmd)
			r := cctx.Renderer

			out := make([]string, 0, len(args))
			for _, b := range args {
				out = append(out, translit.Clean(translit.BrannerToIPA(b)))
			}
			if ok, err := r.Structured(out); ok {
				return err
			}
			for _, s := range out {
				r.Println(s)
			}
			return nil
		},
	}
}
