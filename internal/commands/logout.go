package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"rtask/internal/config"
	"rtask/internal/credential"
	"rtask/internal/exitcode"
	"rtask/internal/store"
)

func init() {
	Register(&LogoutCmd{})
}

// LogoutCmd implements the logout command.
type LogoutCmd struct{}

func (c *LogoutCmd) Name() string                    { return "logout" }
func (c *LogoutCmd) Aliases() []string               { return nil }
func (c *LogoutCmd) Synopsis() string                { return "Remove the saved token" }
func (c *LogoutCmd) Usage() string                   { return "rtask logout" }
func (c *LogoutCmd) NeedsStore() bool                { return false }
func (c *LogoutCmd) RegisterFlags(fs *pflag.FlagSet) {}

func (c *LogoutCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	creds, err := credential.Open(cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	if err := creds.Delete(credential.TokenKey); err != nil {
		if credential.IsNotFound(err) {
			if !cfg.Quiet {
				fmt.Fprintln(out, "not logged in")
			}
			return exitcode.Success
		}
		fmt.Fprintf(errOut, "error: failed to remove token: %v\n", err)
		return exitcode.AuthError
	}
	return done(out, cfg.Quiet)
}
