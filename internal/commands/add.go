package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"rtask/internal/config"
	"rtask/internal/exitcode"
	"rtask/internal/service"
	"rtask/internal/store"
)

func init() {
	Register(&AddCmd{})
	Register(&EditCmd{})
}

// AddCmd implements the add command.
type AddCmd struct{}

func (c *AddCmd) Name() string                    { return "add" }
func (c *AddCmd) Aliases() []string               { return []string{"create"} }
func (c *AddCmd) Synopsis() string                { return "Create a task" }
func (c *AddCmd) Usage() string                   { return "rtask add <title...>" }
func (c *AddCmd) NeedsStore() bool                { return true }
func (c *AddCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	title, ok := joinTitle(args, errOut)
	if !ok {
		return exitcode.UserError
	}

	if _, err := st.CreateTask(ctx, title); err != nil {
		return ReportError(errOut, err)
	}
	return done(out, cfg.Quiet)
}

// EditCmd implements the edit command.
type EditCmd struct{}

func (c *EditCmd) Name() string                    { return "edit" }
func (c *EditCmd) Aliases() []string               { return []string{"rename"} }
func (c *EditCmd) Synopsis() string                { return "Change the title of a task" }
func (c *EditCmd) Usage() string                   { return "rtask edit <id> <title...>" }
func (c *EditCmd) NeedsStore() bool                { return true }
func (c *EditCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	id, rest, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	title, ok := joinTitle(rest, errOut)
	if !ok {
		return exitcode.UserError
	}

	if _, err := st.UpdateTask(ctx, id, service.SetTitle(title)); err != nil {
		return ReportError(errOut, err)
	}
	return done(out, cfg.Quiet)
}

// joinTitle joins args into a trimmed, non-empty title.
func joinTitle(args []string, errOut io.Writer) (string, bool) {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		fmt.Fprintln(errOut, "error: title required")
		return "", false
	}
	return title, true
}
