package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"rtask/internal/config"
	"rtask/internal/exitcode"
	"rtask/internal/output"
	"rtask/internal/service"
	"rtask/internal/store"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `rtask` (no args) and `rtask list`.
type ListCmd struct {
	format   string
	openOnly bool
	doneOnly bool
}

// SetFormat sets the output format (for testing).
func (c *ListCmd) SetFormat(format string) {
	c.format = format
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string {
	return "rtask list [--format text|json|yaml] [--open | --done]"
}
func (c *ListCmd) NeedsStore() bool { return true }

func (c *ListCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.format, "format", "f", output.FormatText, "output format")
	fs.BoolVar(&c.openOnly, "open", false, "only open tasks")
	fs.BoolVar(&c.doneOnly, "done", false, "only completed tasks")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	if c.format == "" {
		c.format = output.FormatText
	}
	if !output.ValidFormat(c.format) {
		fmt.Fprintf(errOut, "error: invalid format: %s (want %s)\n", c.format, strings.Join(output.Formats, ", "))
		return exitcode.UserError
	}
	if c.openOnly && c.doneOnly {
		fmt.Fprintln(errOut, "error: cannot use both --open and --done")
		return exitcode.UserError
	}

	tasks := c.filter(st.Tasks())

	if len(tasks) == 0 && c.format == output.FormatText {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}

	if err := output.FormatTasks(out, tasks, c.format); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}

func (c *ListCmd) filter(tasks []service.Task) []service.Task {
	if !c.openOnly && !c.doneOnly {
		return tasks
	}
	kept := tasks[:0]
	for _, t := range tasks {
		if t.Completed == c.doneOnly {
			kept = append(kept, t)
		}
	}
	return kept
}
