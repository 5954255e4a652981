package commands

import (
	"context"
	"io"

	"github.com/spf13/pflag"

	"rtask/internal/config"
	"rtask/internal/exitcode"
	"rtask/internal/service"
	"rtask/internal/store"
)

func init() {
	Register(&DoneCmd{})
	Register(&UndoCmd{})
	Register(&ToggleCmd{})
}

// DoneCmd implements the done command.
type DoneCmd struct{}

func (c *DoneCmd) Name() string                    { return "done" }
func (c *DoneCmd) Aliases() []string               { return []string{"complete"} }
func (c *DoneCmd) Synopsis() string                { return "Mark a task completed" }
func (c *DoneCmd) Usage() string                   { return "rtask done <id>" }
func (c *DoneCmd) NeedsStore() bool                { return true }
func (c *DoneCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	return setCompleted(ctx, cfg, st, args, true, out, errOut)
}

// UndoCmd implements the undo command.
type UndoCmd struct{}

func (c *UndoCmd) Name() string                    { return "undo" }
func (c *UndoCmd) Aliases() []string               { return []string{"reopen"} }
func (c *UndoCmd) Synopsis() string                { return "Mark a task open again" }
func (c *UndoCmd) Usage() string                   { return "rtask undo <id>" }
func (c *UndoCmd) NeedsStore() bool                { return true }
func (c *UndoCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *UndoCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	return setCompleted(ctx, cfg, st, args, false, out, errOut)
}

// setCompleted is the shared implementation for done and undo. The update
// is sent even if the task is not in the local collection.
func setCompleted(ctx context.Context, cfg *config.Config, st *store.Store, args []string, completed bool, out, errOut io.Writer) int {
	id, ok := parseRefArg(args, errOut)
	if !ok {
		return exitcode.UserError
	}

	if _, err := st.UpdateTask(ctx, id, service.SetCompleted(completed)); err != nil {
		return ReportError(errOut, err)
	}
	return done(out, cfg.Quiet)
}

// ToggleCmd implements the toggle command.
type ToggleCmd struct{}

func (c *ToggleCmd) Name() string                    { return "toggle" }
func (c *ToggleCmd) Aliases() []string               { return nil }
func (c *ToggleCmd) Synopsis() string                { return "Flip the completion state of a task" }
func (c *ToggleCmd) Usage() string                   { return "rtask toggle <id>" }
func (c *ToggleCmd) NeedsStore() bool                { return true }
func (c *ToggleCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *ToggleCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	id, ok := parseRefArg(args, errOut)
	if !ok {
		return exitcode.UserError
	}

	if _, err := st.ToggleTaskCompletion(ctx, id); err != nil {
		return ReportError(errOut, err)
	}
	return done(out, cfg.Quiet)
}
