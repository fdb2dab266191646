package cli

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/roach88/optimal/internal/ir"
)

// VersionResult is the JSON payload of version.
type VersionResult struct {
	Version       string `json:"version"`
	FormatVersion string `json:"format_version"`
	GoVersion     string `json:"go_version"`
}

func versionString() string {
	return "v" + ir.ToolVersion
}

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "version",
		Short:         "Print version information",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			if f.Format == "json" {
				return f.Success(VersionResult{
					Version:       ir.ToolVersion,
					FormatVersion: ir.FormatVersion,
					GoVersion:     runtime.Version(),
				})
			}
			f.Text("optimal %s (hash format %s, %s)", versionString(), ir.FormatVersion, runtime.Version())
			return nil
		},
	}
}
