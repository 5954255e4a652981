package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"rtask/internal/config"
	"rtask/internal/exitcode"
	"rtask/internal/store"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string                    { return "help" }
func (c *HelpCmd) Aliases() []string               { return nil }
func (c *HelpCmd) Synopsis() string                { return "Print usage" }
func (c *HelpCmd) Usage() string                   { return "rtask help [command]" }
func (c *HelpCmd) NeedsStore() bool                { return false }
func (c *HelpCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(out, helpText)
		return exitcode.Success
	}

	cmd, ok := DefaultRegistry.Find(args[0])
	if !ok {
		fmt.Fprintf(errOut, "error: unknown command: %s\n", args[0])
		return exitcode.UserError
	}
	fmt.Fprintf(out, "%s\n\n  %s\n", cmd.Synopsis(), cmd.Usage())
	if aliases := cmd.Aliases(); len(aliases) > 0 {
		fmt.Fprintf(out, "\nAliases: %v\n", aliases)
	}
	return exitcode.Success
}

const helpText = `Usage:
  rtask                                   List all tasks
  rtask list [--format text|json|yaml] [--open | --done]
  rtask add <title...>                    Create a task (alias: create)
  rtask edit <id> <title...>              Change a task's title
  rtask done <id>                         Mark a task completed
  rtask undo <id>                         Mark a task open again
  rtask toggle <id>                       Flip a task's completion state
  rtask rm <id>                           Delete a task (alias: delete)
  rtask show <id>                         Fetch and print one task
  rtask shell                             Interactive session
  rtask login [--token <token>]           Save an API token
  rtask logout                            Remove the saved token
  rtask help [command]
  rtask version

Common flags:
  --config <dir>        Override config directory
  --base-url <url>      Task API base URL (default http://localhost:8080)
  --timeout <duration>  Per-request timeout (default 10s)
  --quiet, -q           Suppress informational output
  --debug               Print debug logs to stderr

Environment:
  RTASK_BASE_URL, RTASK_TIMEOUT, RTASK_TOKEN, RTASK_KEYRING_BACKEND
`
