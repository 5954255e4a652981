package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"rtask/internal/config"
	"rtask/internal/exitcode"
	"rtask/internal/output"
	"rtask/internal/store"
)

func init() {
	Register(&ShellCmd{})
}

// ShellCmd implements an interactive session over a single store. Each
// input line runs one command; the task list is printed again whenever
// the store reports a change.
type ShellCmd struct {
	in io.Reader
}

// SetInput sets the reader commands are read from (for testing).
func (c *ShellCmd) SetInput(r io.Reader) {
	c.in = r
}

func (c *ShellCmd) Name() string                    { return "shell" }
func (c *ShellCmd) Aliases() []string               { return []string{"repl"} }
func (c *ShellCmd) Synopsis() string                { return "Interactive session" }
func (c *ShellCmd) Usage() string                   { return "rtask shell" }
func (c *ShellCmd) NeedsStore() bool                { return true }
func (c *ShellCmd) RegisterFlags(fs *pflag.FlagSet) {}

// Commands that make no sense inside a session.
var shellExcluded = map[string]bool{"shell": true, "login": true, "logout": true}

const shellHelp = `Commands:
  ls [--open | --done]    list tasks
  add <title...>          create a task
  edit <id> <title...>    change a title
  done <id>, undo <id>    set completion
  toggle <id>             flip completion
  rm <id>                 delete a task
  show <id>               fetch one task
  refresh                 reload all tasks
  quit                    leave the shell
`

func (c *ShellCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	in := c.in
	if in == nil {
		in = os.Stdin
	}

	updates, unsubscribe := st.Subscribe()
	defer unsubscribe()

	// Subcommands report through the re-rendered list, not "ok".
	sub := *cfg
	sub.Quiet = true

	renderSnapshot(out, st.Snapshot())

	scanner := bufio.NewScanner(in)
	for {
		if !cfg.Quiet {
			fmt.Fprint(errOut, "> ")
		}
		if !scanner.Scan() {
			break
		}
		if ctx.Err() != nil {
			break
		}

		quit := c.exec(ctx, &sub, st, strings.Fields(scanner.Text()), out, errOut)
		if quit {
			return exitcode.Success
		}

		select {
		case snap, ok := <-updates:
			if ok {
				renderSnapshot(out, snap)
			}
		default:
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(errOut, "error: reading input: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}

// exec runs one input line. It returns true when the session should end.
func (c *ShellCmd) exec(ctx context.Context, cfg *config.Config, st *store.Store, words []string, out, errOut io.Writer) bool {
	if len(words) == 0 {
		return false
	}

	name, args := words[0], words[1:]
	switch name {
	case "quit", "exit":
		return true
	case "help", "?":
		fmt.Fprint(out, shellHelp)
		return false
	case "refresh":
		if err := st.Refresh(ctx); err != nil {
			ReportError(errOut, err)
		}
		return false
	}

	cmd, ok := DefaultRegistry.Find(name)
	if !ok || shellExcluded[cmd.Name()] {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", name)
		return false
	}

	fs := pflag.NewFlagSet(cmd.Name(), pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cmd.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprintf(out, "usage: %s\n", strings.TrimPrefix(cmd.Usage(), config.AppName+" "))
			return false
		}
		fmt.Fprintf(errOut, "error: %v\n", err)
		return false
	}

	cmd.Run(ctx, cfg, st, fs.Args(), out, errOut)
	return false
}

func renderSnapshot(w io.Writer, snap store.Snapshot) {
	if len(snap.Tasks) == 0 {
		fmt.Fprintln(w, "no tasks")
	}
	for _, t := range snap.Tasks {
		output.FormatTask(w, t)
	}
	if snap.Status.State == store.Failed {
		fmt.Fprintln(w, snap.Status)
	}
}
