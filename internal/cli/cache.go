package cli

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/optimal/internal/ir"
	"github.com/roach88/optimal/internal/loader"
	"github.com/roach88/optimal/internal/store"
)

// DefaultDatabase is the database used when --db is not given.
const DefaultDatabase = "optimal.db"

// ModuleInfo describes a stored module in command output.
type ModuleInfo struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Hash    string   `json:"hash"`
	Imports []string `json:"imports"`
}

func moduleInfo(rec store.ModuleRecord) ModuleInfo {
	imports := make([]string, len(rec.Imports))
	for i, imp := range rec.Imports {
		imports[i] = imp.Name + "#" + imp.Hash
	}
	return ModuleInfo{ID: rec.ID(), Name: rec.Name, Hash: rec.Hash, Imports: imports}
}

// withStore opens the database at path, runs fn and closes it.
func withStore(f *OutputFormatter, path string, fn func(*store.Store) error) error {
	f.VerboseLog("Opening database %s", path)
	st, err := store.Open(path)
	if err != nil {
		return storeFailure(f, "cannot open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	return fn(st)
}

// SaveOptions holds flags for the save command.
type SaveOptions struct {
	*RootOptions
	Dir      string
	Database string
}

// SaveResult is the JSON payload of save.
type SaveResult struct {
	Module string   `json:"module"`
	Saved  []string `json:"saved"`
}

// NewSaveCommand creates the save command.
func NewSaveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SaveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "save <module>",
		Short: "Save a module and its imports by content hash",
		Long: `Save a module and everything it imports in the database.

Modules are addressed by the hash of their definitions and of the hashes
of their imports. Saving a module that is already stored is a no-op.

Examples:
  optimal save main
  optimal save prelude --dir ./lib --db ./optimal.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSave(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Dir, "dir", ".", "directory containing module files")
	cmd.Flags().StringVar(&opts.Database, "db", DefaultDatabase, "SQLite database path")

	return cmd
}

func runSave(opts *SaveOptions, target string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	module, _ := loader.ParseTarget(target)
	m, err := loader.Load(opts.Dir, module)
	if err != nil {
		return loadFailure(f, module, err)
	}

	var ids []string
	err = withStore(f, opts.Database, func(st *store.Store) error {
		var err error
		ids, err = st.SaveModuleTree(contextOrBackground(cmd.Context()), m)
		if err != nil {
			return storeFailure(f, "cannot save "+m.Name, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if f.Format == "json" {
		return f.Success(SaveResult{Module: m.Name + "#" + m.Hash, Saved: ids})
	}
	for _, id := range ids {
		f.Text("saved %s", id)
	}
	return nil
}

// LoadOptions holds flags for the load command.
type LoadOptions struct {
	*RootOptions
	Dir      string
	Database string
	Force    bool
}

// LoadResult is the JSON payload of load.
type LoadResult struct {
	Module  string   `json:"module"`
	Written []string `json:"written"`
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoadOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "load <name#hash>",
		Short: "Write a stored module and its imports back to files",
		Long: `Write a stored module and everything it imports to --dir as
<name>.cue files. The reference is a hash, or name#hash, where the hash
may be shortened to a unique prefix of at least six characters.

A file that already exists with different content is left alone unless
--force is given.

Examples:
  optimal load main#3f2a9c
  optimal load 3f2a9c4b --dir ./restored --force`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Dir, "dir", ".", "directory to write module files to")
	cmd.Flags().StringVar(&opts.Database, "db", DefaultDatabase, "SQLite database path")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "overwrite module files that differ")

	return cmd
}

func runLoad(opts *LoadOptions, ref string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	var tree []store.ModuleRecord
	err := withStore(f, opts.Database, func(st *store.Store) error {
		var err error
		tree, err = st.ModuleTree(contextOrBackground(cmd.Context()), ref)
		if err != nil {
			return storeFailure(f, "cannot load "+ref, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// check every file before writing any
	for _, rec := range tree {
		path := filepath.Join(opts.Dir, rec.Name+loader.Ext)
		existing, err := os.ReadFile(path)
		if err == nil && !bytes.Equal(existing, []byte(rec.Source)) && !opts.Force {
			return fail(f, ExitCommandError, ErrCodeWriteFailed,
				fmt.Sprintf("%s exists with different content (use --force to overwrite)", path), nil)
		}
	}

	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return fail(f, ExitCommandError, ErrCodeWriteFailed, "cannot create "+opts.Dir, err)
	}
	written := make([]string, 0, len(tree))
	for _, rec := range tree {
		path := filepath.Join(opts.Dir, rec.Name+loader.Ext)
		if err := os.WriteFile(path, []byte(rec.Source), 0644); err != nil {
			return fail(f, ExitCommandError, ErrCodeWriteFailed, "cannot write "+path, err)
		}
		f.VerboseLog("Wrote %s (%s)", path, rec.ID())
		written = append(written, path)
	}

	if f.Format == "json" {
		return f.Success(LoadResult{Module: tree[0].ID(), Written: written})
	}
	for i, path := range written {
		f.Text("%s -> %s", tree[i].ID(), path)
	}
	return nil
}

// CitedByOptions holds flags for the cited-by command.
type CitedByOptions struct {
	*RootOptions
	Database string
}

// CitedByResult is the JSON payload of cited-by.
type CitedByResult struct {
	Module  string       `json:"module"`
	CitedBy []ModuleInfo `json:"cited_by"`
}

// NewCitedByCommand creates the cited-by command.
func NewCitedByCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CitedByOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "cited-by <name#hash>",
		Short: "List stored modules that import a module",
		Long: `List the stored modules that import the given module directly.

Examples:
  optimal cited-by prelude#9e41c0
  optimal cited-by 9e41c0 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCitedBy(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", DefaultDatabase, "SQLite database path")

	return cmd
}

func runCitedBy(opts *CitedByOptions, ref string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	var result CitedByResult
	err := withStore(f, opts.Database, func(st *store.Store) error {
		ctx := contextOrBackground(cmd.Context())
		mod, err := st.LoadModule(ctx, ref)
		if err != nil {
			return storeFailure(f, "cannot resolve "+ref, err)
		}
		citing, err := st.CitedBy(ctx, mod.Hash)
		if err != nil {
			return storeFailure(f, "cannot query citations", err)
		}
		result.Module = mod.ID()
		result.CitedBy = make([]ModuleInfo, len(citing))
		for i, rec := range citing {
			result.CitedBy[i] = moduleInfo(rec)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if f.Format == "json" {
		return f.Success(result)
	}
	if len(result.CitedBy) == 0 {
		f.Text("%s is not imported by any stored module", result.Module)
		return nil
	}
	for _, m := range result.CitedBy {
		f.Text("%s", m.ID)
	}
	return nil
}

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Database string
}

// RunInfo describes a recorded run in command output.
type RunInfo struct {
	ID         string `json:"id"`
	Target     string `json:"target"`
	Module     string `json:"module"`
	Mode       string `json:"mode"`
	Loops      int    `json:"loops"`
	Rewrites   int    `json:"rewrites"`
	MaxLen     int    `json:"max_len"`
	Result     string `json:"result,omitempty"`
	ResultHash string `json:"result_hash,omitempty"`
	Error      string `json:"error,omitempty"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history [target]",
		Short: "List recorded runs",
		Long: `List the runs recorded by eval --db, oldest first.

The optional target is a qualified definition name such as main/main;
a bare module name selects its main definition.

Examples:
  optimal history
  optimal history prelude/two --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			target := ""
			if len(args) == 1 {
				module, name := loader.ParseTarget(args[0])
				target = module + "/" + name
			}
			return runHistory(opts, target, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", DefaultDatabase, "SQLite database path")

	return cmd
}

func runHistory(opts *HistoryOptions, target string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd)

	var runs []store.Run
	err := withStore(f, opts.Database, func(st *store.Store) error {
		var err error
		runs, err = st.ListRuns(contextOrBackground(cmd.Context()), target)
		if err != nil {
			return storeFailure(f, "cannot list runs", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	infos := make([]RunInfo, len(runs))
	for i, r := range runs {
		infos[i] = RunInfo{
			ID:         r.ID,
			Target:     r.Target,
			Module:     r.ModuleHash,
			Mode:       r.Mode,
			Loops:      r.Loops,
			Rewrites:   r.Rewrites,
			MaxLen:     r.MaxLen,
			Result:     r.Result,
			ResultHash: r.ResultHash,
			Error:      r.Error,
		}
	}

	if f.Format == "json" {
		return f.Success(infos)
	}
	if len(infos) == 0 {
		f.Text("No runs recorded.")
		return nil
	}
	for _, r := range infos {
		outcome := r.Result
		if r.Error != "" {
			outcome = "error: " + r.Error
		}
		f.Text("%s  %s  %s  %s  rewrites=%d  %s",
			ir.ShortHash(r.ID), r.Target, ir.ShortHash(r.Module), r.Mode, r.Rewrites, outcome)
	}
	return nil
}

// contextOrBackground returns ctx or a background context when ctx is nil.
func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
