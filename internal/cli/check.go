package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/optimal/internal/compiler"
	"github.com/roach88/optimal/internal/loader"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Dir string
}

// CheckResult is the JSON payload of check.
type CheckResult struct {
	Module   string                      `json:"module"`
	Hash     string                      `json:"hash"`
	Defs     []string                    `json:"defs"`
	Imports  []string                    `json:"imports"`
	Warnings []compiler.RecursionWarning `json:"warnings"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <module>",
		Short: "Load a module and report recursive definitions",
		Long: `Load a module and its imports without evaluating anything.

Every definition is parsed and resolved. Definitions that reach themselves
through references are reported as warnings: they reduce fine lazily, but
only a rewrite budget stops one without a normal form.

Examples:
  optimal check main
  optimal check prelude --dir ./lib --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Dir, "dir", ".", "directory containing module files")

	return cmd
}

func runCheck(opts *CheckOptions, target string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	module, _ := loader.ParseTarget(target)
	f.VerboseLog("Loading module %s from %s", module, opts.Dir)
	m, err := loader.Load(opts.Dir, module)
	if err != nil {
		return loadFailure(f, module, err)
	}

	imports := m.Imports
	if imports == nil {
		imports = []string{}
	}
	// only local definitions: imports are checked when loaded on their own
	local := make(map[string]bool, len(m.Sources))
	for _, name := range m.Names() {
		local[m.Qualified(name)] = true
	}
	warnings := []compiler.RecursionWarning{}
	for _, w := range compiler.AnalyzeRecursion(m.Defs) {
		if local[w.Path[0]] {
			warnings = append(warnings, w)
		}
	}

	result := CheckResult{
		Module:   m.Name,
		Hash:     m.Hash,
		Defs:     m.Names(),
		Imports:  imports,
		Warnings: warnings,
	}
	if f.Format == "json" {
		return f.Success(result)
	}

	f.Text("%s#%s: %d definitions", m.Name, m.Hash, len(result.Defs))
	if len(imports) > 0 {
		f.Text("imports: %s", strings.Join(imports, ", "))
	}
	for _, w := range warnings {
		f.Text("%s: %s", w.Level, w.Message)
	}
	if len(warnings) == 0 {
		f.Text("no recursive definitions")
	}
	return nil
}
