package commands

import (
	"runtime"

	"github.com/depscope-dev/depscope/internal/cli/output"
	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version, buildDate, gitCommit string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx := NewCommandContext(cmd)
			r := cmdCtx.Renderer

			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(map[string]string{
					"version":    version,
					"build_date": buildDate,
					"git_commit": gitCommit,
					"go_version": runtime.Version(),
				})
			}

			r.Printf("depscope %s\n", version)
			r.Muted("build date: " + buildDate)
			r.Muted("git commit: " + gitCommit)
			r.Muted("go version: " + runtime.Version())
			return nil
		},
	}
}
