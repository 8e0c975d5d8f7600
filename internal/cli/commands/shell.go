package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jengamon/lexi/internal/document"
)

// NewShellCommand creates the shell command. newRoot builds the command tree
// each line is run against.
func NewShellCommand(newRoot func() *cobra.Command) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Work on the selected project interactively",
		Long: `Open the selected project and read lexi commands line by line.

Every line is a lexi command without the leading "lexi", e.g.
  lang create Norse
  lang phoneme add Norse --ortho p --primary plosive/bilabial/voiceless

The project stays open between lines and each change is saved as it is made.
Global flags given when starting the shell apply to every line.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShell(cmd, newRoot)
		},
	}
}

// shellSession runs lines against one open document.
type shellSession struct {
	doc     *document.Document
	newRoot func() *cobra.Command
	prefix  []string
	in      io.Reader
	out     io.Writer
	errOut  io.Writer
}

func runShell(cmd *cobra.Command, newRoot func() *cobra.Command) error {
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

	s := &shellSession{
		doc:     doc,
		newRoot: newRoot,
		prefix:  persistentFlagArgs(cmd),
		in:      cmd.InOrStdin(),
		out:     cmd.OutOrStdout(),
		errOut:  cmd.ErrOrStderr(),
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          s.prompt(),
		HistoryFile:     filepath.Join(cctx.Cfg.DataDir, "shell_history"),
		AutoComplete:    newCommandCompleter(newRoot()),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
	})
	if err != nil {
		return fmt.Errorf("failed to initialize shell: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(s.out, "lexi shell (project: %s)\n", doc.Name())
	_, _ = fmt.Fprintln(s.out, "Type .help for shell commands, .quit to exit")

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if quit := s.exec(ctx, line); quit {
			return nil
		}
		rl.SetPrompt(s.prompt())
	}
}

func (s *shellSession) prompt() string {
	return "lexi:" + s.doc.Name() + "> "
}

// exec runs one line and reports whether the shell should exit.
func (s *shellSession) exec(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	if strings.HasPrefix(line, ".") {
		switch strings.Fields(line)[0] {
		case ".quit", ".exit":
			return true
		case ".help":
			printShellHelp(s.out)
		case ".project":
			_, _ = fmt.Fprintf(s.out, "%s (family %s, revision %d)\n", s.doc.Name(), s.doc.FamilyID(), s.doc.Revision())
		default:
			_, _ = fmt.Fprintf(s.errOut, "Unknown command: %s (type .help for commands)\n", line)
		}
		return false
	}

	args, err := splitArgs(line)
	if err != nil {
		_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		return false
	}
	if args[0] == "shell" {
		_, _ = fmt.Fprintln(s.errOut, "Error: already in a shell")
		return false
	}

	root := s.newRoot()
	root.SetArgs(append(append([]string{}, s.prefix...), args...))
	root.SetIn(s.in)
	root.SetOut(s.out)
	root.SetErr(s.errOut)
	if err := root.ExecuteContext(document.WithContext(ctx, s.doc)); err != nil {
		_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
	}
	return false
}

func printShellHelp(w io.Writer) {
	help := `
Shell commands:
  .help      Show this help message
  .project   Show the open project
  .quit      Exit the shell (also .exit or Ctrl+D)

Any other line runs a lexi command against the open project, e.g.
  project show
  lang list
  proto phoneme list Proto
  help lang
`
	_, _ = fmt.Fprintln(w, help)
}

// persistentFlagArgs renders the root flags set on the shell's own command
// line so every line inherits them.
func persistentFlagArgs(cmd *cobra.Command) []string {
	var args []string
	cmd.Root().PersistentFlags().Visit(func(f *pflag.Flag) {
		args = append(args, "--"+f.Name+"="+f.Value.String())
	})
	return args
}

// newCommandCompleter completes command paths from the command tree.
func newCommandCompleter(root *cobra.Command) *readline.PrefixCompleter {
	items := commandItems(root)
	items = append(items,
		readline.PcItem(".help"),
		readline.PcItem(".project"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
	return readline.NewPrefixCompleter(items...)
}

func commandItems(cmd *cobra.Command) []readline.PrefixCompleterInterface {
	var items []readline.PrefixCompleterInterface
	for _, sub := range cmd.Commands() {
		if sub.Hidden || sub.Name() == "shell" || sub.Name() == "completion" {
			continue
		}
		items = append(items, readline.PcItem(sub.Name(), commandItems(sub)...))
	}
	return items
}

// splitArgs splits a line into words. Single and double quotes group words
// and a backslash escapes the next character outside single quotes.
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)
	for _, r := range line {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped, inWord = true, true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote, inWord = r, true
		case r == ' ' || r == '\t':
			if inWord {
				args = append(args, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}
	if escaped {
		return nil, fmt.Errorf("line ends with a backslash")
	}
	if inWord {
		args = append(args, cur.String())
	}
	return args, nil
}
