package commands

import (
	"context"
	"io"

	"github.com/spf13/pflag"

	"rtask/internal/config"
	"rtask/internal/exitcode"
	"rtask/internal/output"
	"rtask/internal/store"
)

func init() {
	Register(&RmCmd{})
	Register(&ShowCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct{}

func (c *RmCmd) Name() string                    { return "rm" }
func (c *RmCmd) Aliases() []string               { return []string{"delete"} }
func (c *RmCmd) Synopsis() string                { return "Delete a task" }
func (c *RmCmd) Usage() string                   { return "rtask rm <id>" }
func (c *RmCmd) NeedsStore() bool                { return true }
func (c *RmCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	id, ok := parseRefArg(args, errOut)
	if !ok {
		return exitcode.UserError
	}

	if err := st.DeleteTask(ctx, id); err != nil {
		return ReportError(errOut, err)
	}
	return done(out, cfg.Quiet)
}

// ShowCmd implements the show command. It always asks the server for the
// current version of the task.
type ShowCmd struct{}

func (c *ShowCmd) Name() string                    { return "show" }
func (c *ShowCmd) Aliases() []string               { return []string{"get"} }
func (c *ShowCmd) Synopsis() string                { return "Print one task in detail" }
func (c *ShowCmd) Usage() string                   { return "rtask show <id>" }
func (c *ShowCmd) NeedsStore() bool                { return true }
func (c *ShowCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *ShowCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	id, ok := parseRefArg(args, errOut)
	if !ok {
		return exitcode.UserError
	}

	task, err := st.ReloadTask(ctx, id)
	if err != nil {
		return ReportError(errOut, err)
	}
	output.FormatTaskDetail(out, task)
	return exitcode.Success
}
