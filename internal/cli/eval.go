package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/optimal/internal/compiler"
	"github.com/roach88/optimal/internal/engine"
	"github.com/roach88/optimal/internal/loader"
	"github.com/roach88/optimal/internal/store"
	"github.com/roach88/optimal/internal/term"
)

// Evaluation modes.
const (
	ModeOptimal = "optimal" // interaction-net reduction
	ModeDebug   = "debug"   // substitution-based reference reducer
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	Dir         string
	Mode        string
	Weak        bool
	MaxRewrites int
	Database    string

	// IDGenerator allows overriding the run id generator (for testing).
	// If nil, defaults to store.UUIDv7Generator.
	IDGenerator store.IDGenerator
}

// EvalResult is the JSON payload of eval.
type EvalResult struct {
	Target     string        `json:"target"`
	ModuleHash string        `json:"module_hash"`
	Mode       string        `json:"mode"`
	Weak       bool          `json:"weak,omitempty"`
	Result     string        `json:"result"`
	ResultHash string        `json:"result_hash"`
	Stats      *engine.Stats `json:"stats,omitempty"`
	Reference  *DebugStats   `json:"reference,omitempty"`
	RunID      string        `json:"run_id,omitempty"`
}

// DebugStats are the statistics of the reference reducer.
type DebugStats struct {
	Steps int `json:"steps"`
	Peak  int `json:"peak"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval <module>[/<name>]",
		Short: "Evaluate a definition to normal form",
		Long: `Evaluate a definition of a module to its normal form.

The target names a module file <module>.cue in --dir and one of its
definitions (default: main). In optimal mode the term is compiled to an
interaction net, reduced lazily and read back; the statistics line reports
walk iterations, rewrites and the peak number of live nodes. Debug mode
uses the substitution-based reference reducer instead.

With --db the module tree is saved by content hash and the run is
recorded in the history.

Examples:
  optimal eval main
  optimal eval prelude/two --weak
  optimal eval main --max-rewrites 100000 --db ./optimal.db
  optimal eval main --mode debug --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Dir, "dir", ".", "directory containing module files")
	cmd.Flags().StringVar(&opts.Mode, "mode", ModeOptimal, "evaluation mode (optimal|debug)")
	cmd.Flags().BoolVar(&opts.Weak, "weak", false, "stop at weak head normal form")
	cmd.Flags().IntVar(&opts.MaxRewrites, "max-rewrites", 0, "rewrite budget, 0 for unbounded (steps in debug mode)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")

	return cmd
}

func runEval(opts *EvalOptions, target string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	if opts.Mode != ModeOptimal && opts.Mode != ModeDebug {
		return fail(f, ExitCommandError, ErrCodeGeneric,
			fmt.Sprintf("invalid mode %q: must be %s or %s", opts.Mode, ModeOptimal, ModeDebug), nil)
	}
	if opts.MaxRewrites < 0 {
		return fail(f, ExitCommandError, ErrCodeGeneric, "--max-rewrites must be non-negative", nil)
	}

	m, q, err := loadTarget(f, opts.Dir, target)
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	res := EvalResult{
		Target:     q,
		ModuleHash: m.Hash,
		Mode:       opts.Mode,
		Weak:       opts.Weak,
	}
	out, evalErr := evaluate(ctx, opts, m, q, &res)
	if evalErr == nil {
		res.Result = term.Show(out)
		if res.ResultHash, err = term.Hash(out); err != nil {
			return fail(f, ExitFailure, ErrCodeGeneric, "cannot hash result", err)
		}
	}

	if opts.Database != "" {
		id, err := recordRun(ctx, opts, m, res, evalErr)
		if err != nil {
			return storeFailure(f, "cannot record run", err)
		}
		res.RunID = id
		f.VerboseLog("Recorded run %s", id)
	}

	if evalErr != nil {
		return evalFailure(f, evalErr)
	}

	if f.Format == "json" {
		return f.Success(res)
	}
	f.Text("%s", res.Result)
	var stats any = res.Stats
	if res.Reference != nil {
		stats = res.Reference
	}
	line, err := json.Marshal(stats)
	if err != nil {
		return err
	}
	f.Text("%s", line)
	return nil
}

// evaluate runs the selected reducer on the definition q and fills in
// the statistics of res.
func evaluate(ctx context.Context, opts *EvalOptions, m *loader.Module, q string, res *EvalResult) (term.Term, error) {
	root := term.Ref{Name: q}

	if opts.Mode == ModeDebug {
		out, stats, err := term.Normalize(root, m.Defs, term.ReduceOptions{
			MaxSteps: opts.MaxRewrites,
			Weak:     opts.Weak,
		})
		res.Reference = &DebugStats{Steps: stats.Steps, Peak: stats.Peak}
		var le *term.LimitError
		if errors.As(err, &le) {
			// report the reference limit under the same code as the reducer's
			return nil, &engine.BudgetExceededError{Limit: le.Limit, Stats: engine.Stats{Rewrites: le.Steps}}
		}
		return out, err
	}

	book := compiler.NewBook(m.Defs)
	out, stats, err := engine.Normalize(ctx, root, book, opts.Weak,
		engine.WithMaxRewrites(opts.MaxRewrites),
		engine.WithLogger(slog.Default()),
	)
	res.Stats = &stats
	slog.Debug("evaluated", "target", q, "loops", stats.Loops, "rewrites", stats.Rewrites, "max_len", stats.MaxLen)
	return out, err
}

// recordRun saves the module tree and appends the run to the history.
func recordRun(ctx context.Context, opts *EvalOptions, m *loader.Module, res EvalResult, evalErr error) (string, error) {
	st, err := store.Open(opts.Database)
	if err != nil {
		return "", err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	if _, err := st.SaveModuleTree(ctx, m); err != nil {
		return "", err
	}

	gen := opts.IDGenerator
	if gen == nil {
		gen = store.UUIDv7Generator{}
	}
	run := store.Run{
		ID:         gen.Generate(),
		Target:     res.Target,
		ModuleHash: res.ModuleHash,
		Mode:       runMode(res),
		Result:     res.Result,
		ResultHash: res.ResultHash,
	}
	switch {
	case res.Stats != nil:
		run.Loops, run.Rewrites, run.MaxLen = res.Stats.Loops, res.Stats.Rewrites, res.Stats.MaxLen
	case res.Reference != nil:
		run.Rewrites, run.MaxLen = res.Reference.Steps, res.Reference.Peak
	}
	if evalErr != nil {
		run.Error = evalErr.Error()
	}
	if err := st.WriteRun(ctx, run); err != nil {
		return "", err
	}
	return run.ID, nil
}

func runMode(res EvalResult) string {
	if res.Weak {
		return res.Mode + "-weak"
	}
	return res.Mode
}

// signalContext returns the command's context, cancelled on SIGINT or
// SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, func()) {
	return signal.NotifyContext(contextOrBackground(cmd.Context()), os.Interrupt, syscall.SIGTERM)
}
