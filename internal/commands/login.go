package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/oauth2/clientcredentials"

	"rtask/internal/config"
	"rtask/internal/credential"
	"rtask/internal/exitcode"
	"rtask/internal/store"
)

// Token exchange timeout
const tokenExchangeTimeout = 30 * time.Second

func init() {
	Register(&LoginCmd{})
}

// LoginCmd implements the login command.
//
// With oauth.client_id configured it checks that the client credentials
// can obtain a token. Otherwise it saves a bearer token in the keyring,
// taken from --token or read from standard input.
type LoginCmd struct {
	token string
	in    io.Reader
}

// SetToken sets the token flag (for testing).
func (c *LoginCmd) SetToken(token string) {
	c.token = token
}

// SetInput sets the reader the token is read from (for testing).
func (c *LoginCmd) SetInput(r io.Reader) {
	c.in = r
}

func (c *LoginCmd) Name() string      { return "login" }
func (c *LoginCmd) Aliases() []string { return nil }
func (c *LoginCmd) Synopsis() string  { return "Save an API token" }
func (c *LoginCmd) Usage() string     { return "rtask login [--token <token>]" }
func (c *LoginCmd) NeedsStore() bool  { return false }

func (c *LoginCmd) RegisterFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.token, "token", "", "API token to save")
}

func (c *LoginCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	if cfg.OAuth.Enabled() {
		return c.checkClientCredentials(ctx, cfg, out, errOut)
	}

	creds, err := credential.Open(cfg)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.AuthError
	}

	token := strings.TrimSpace(c.token)
	if token == "" {
		if _, err := creds.Get(credential.TokenKey); err == nil {
			if !cfg.Quiet {
				fmt.Fprintln(out, "already logged in")
			}
			return exitcode.Success
		}

		token, err = c.readToken(errOut)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.AuthError
		}
	}
	if token == "" {
		fmt.Fprintln(errOut, "error: token required")
		return exitcode.UserError
	}

	if err := cfg.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.AuthError
	}
	if err := creds.Set(credential.TokenKey, token); err != nil {
		fmt.Fprintf(errOut, "error: failed to save token: %v\n", err)
		return exitcode.AuthError
	}
	return done(out, cfg.Quiet)
}

func (c *LoginCmd) readToken(errOut io.Writer) (string, error) {
	in := c.in
	if in == nil {
		in = os.Stdin
	}
	fmt.Fprint(errOut, "API token: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading token: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// checkClientCredentials performs one token exchange against the configured
// token endpoint. Tokens obtained this way are never stored.
func (c *LoginCmd) checkClientCredentials(ctx context.Context, cfg *config.Config, out, errOut io.Writer) int {
	cc := clientcredentials.Config{
		ClientID:     cfg.OAuth.ClientID,
		ClientSecret: cfg.OAuth.ClientSecret,
		TokenURL:     cfg.OAuth.TokenURL,
		Scopes:       cfg.OAuth.Scopes,
	}

	exchangeCtx, cancel := context.WithTimeout(ctx, tokenExchangeTimeout)
	defer cancel()

	if _, err := cc.Token(exchangeCtx); err != nil {
		fmt.Fprintf(errOut, "error: failed to obtain token: %v\n", err)
		return exitcode.AuthError
	}
	return done(out, cfg.Quiet)
}
