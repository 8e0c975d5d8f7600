package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jengamon/lexi/pkg/core"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display lexi version and the project data version it reads and writes.`,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "lexi v%s\n", version)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Project data version %s\n", core.DataVersion)
		},
	}
}
