package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/roach88/optimal/internal/compiler"
	"github.com/roach88/optimal/internal/engine"
	"github.com/roach88/optimal/internal/loader"
	"github.com/roach88/optimal/internal/term"
)

// REPLOptions holds flags for the repl command.
type REPLOptions struct {
	*RootOptions
	Dir         string
	Module      string
	Weak        bool
	MaxRewrites int
}

// NewREPLCommand creates the repl command.
func NewREPLCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &REPLOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Evaluate terms interactively",
		Long: `Read terms line by line and print their normal forms.

Definitions of the module given with --load (or :load) are in scope by
plain name, their imports by qualified name. Enter :help for commands
and Ctrl-D to quit. Ctrl-C interrupts a running evaluation.

Examples:
  optimal repl
  optimal repl --dir ./lib --load prelude`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Dir, "dir", ".", "directory containing module files")
	cmd.Flags().StringVar(&opts.Module, "load", "", "module to load at start")
	cmd.Flags().BoolVar(&opts.Weak, "weak", false, "start in weak head normal form mode")
	cmd.Flags().IntVar(&opts.MaxRewrites, "max-rewrites", 0, "rewrite budget per term, 0 for unbounded")

	return cmd
}

func runREPL(opts *REPLOptions, cmd *cobra.Command) error {
	initDisplay()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "λ> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "",
		Stdout:          cmd.OutOrStdout(),
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot start line editor", err)
	}
	defer rl.Close()

	s := newSession(rl.Stdout(), opts.Dir)
	s.weak = opts.Weak
	s.maxRewrites = opts.MaxRewrites
	s.interruptible = true
	if opts.Module != "" {
		if err := s.load(opts.Module); err != nil {
			pterm.Error.Println(err.Error())
		}
	}

	pterm.Info.Println("optimal " + versionString() + " (:help for commands, Ctrl-D to quit)")
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if err != nil { // io.EOF
			break
		}
		quit, err := s.handle(contextOrBackground(cmd.Context()), line)
		if err != nil {
			pterm.Error.Println(err.Error())
			continue
		}
		if quit {
			break
		}
	}
	return nil
}

// initDisplay sets the message prefixes of the interactive loop.
func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " λ ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error ",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

const replHelp = `Commands:
  <term>          evaluate a term, e.g. (λx. x x) (λy. y)
  :load <module>  bring the definitions of <module> into scope
  :defs           list the definitions in scope
  :weak           toggle weak head normal form mode
  :stats          toggle the statistics line
  :help           show this help
  :q, :quit       leave`

// session is the state of one interactive loop. It writes results to out
// and returns errors to the caller.
type session struct {
	out         io.Writer
	dir         string
	module      *loader.Module
	book        *compiler.Book
	weak        bool
	stats       bool
	maxRewrites int

	// interruptible evaluations are cancelled by SIGINT.
	interruptible bool
}

func newSession(out io.Writer, dir string) *session {
	return &session{
		out:   out,
		dir:   dir,
		book:  compiler.NewBook(term.Defs{}),
		stats: true,
	}
}

// handle processes one input line. It reports whether the loop should end.
func (s *session) handle(ctx context.Context, line string) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "--") {
		return false, nil
	}
	if !strings.HasPrefix(line, ":") {
		return false, s.eval(ctx, line)
	}

	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case ":q", ":quit":
		return true, nil
	case ":help", ":h":
		fmt.Fprintln(s.out, replHelp)
	case ":weak":
		s.weak = !s.weak
		fmt.Fprintf(s.out, "weak mode %s\n", onOff(s.weak))
	case ":stats":
		s.stats = !s.stats
		fmt.Fprintf(s.out, "statistics %s\n", onOff(s.stats))
	case ":load":
		if arg == "" {
			return false, fmt.Errorf(":load needs a module name")
		}
		return false, s.load(arg)
	case ":defs":
		if s.module == nil {
			fmt.Fprintln(s.out, "no module loaded")
			return false, nil
		}
		for _, name := range s.module.Names() {
			fmt.Fprintf(s.out, "%s = %s\n", name, term.Show(s.module.Defs[s.module.Qualified(name)]))
		}
	default:
		return false, fmt.Errorf("unknown command %s (try :help)", cmd)
	}
	return false, nil
}

// load replaces the definitions in scope by those of module.
func (s *session) load(module string) error {
	m, err := loader.Load(s.dir, module)
	if err != nil {
		return err
	}
	s.module = m
	s.book = compiler.NewBook(m.Defs)
	fmt.Fprintf(s.out, "loaded %s#%s (%d definitions)\n", m.Name, m.Hash, len(m.Sources))
	return nil
}

func (s *session) resolver() term.Resolver {
	if s.module == nil {
		return term.NoGlobals
	}
	return s.module.Resolver()
}

func (s *session) eval(ctx context.Context, src string) error {
	t, err := term.Parse(src, s.resolver())
	if err != nil {
		return err
	}

	if s.interruptible {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, os.Interrupt)
		defer stop()
	}
	out, stats, err := engine.Normalize(ctx, t, s.book, s.weak,
		engine.WithMaxRewrites(s.maxRewrites),
		engine.WithLogger(slog.Default()),
	)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("interrupted after %d rewrites", stats.Rewrites)
		}
		return err
	}

	fmt.Fprintln(s.out, term.Show(out))
	if s.stats {
		line, err := json.Marshal(stats)
		if err != nil {
			return err
		}
		fmt.Fprintln(s.out, string(line))
	}
	return nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
