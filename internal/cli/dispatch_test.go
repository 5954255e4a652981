package cli_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"testing"

	"rtask/internal/cli"
	"rtask/internal/commands"
	"rtask/internal/config"
	"rtask/internal/exitcode"
	"rtask/internal/store"
	"rtask/internal/testutil"
)

// testFactory creates a store factory backed by the given FakeService.
func testFactory(svc *testutil.FakeService) cli.StoreFactory {
	return func(ctx context.Context, cfg *config.Config, log *slog.Logger) (*store.Store, error) {
		return store.New(ctx, svc, store.WithLogger(log)), nil
	}
}

// run dispatches args with an isolated config directory.
func run(t *testing.T, svc *testutil.FakeService, args ...string) (stdout, stderr string, code int) {
	t.Helper()

	dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(svc))
	args = append(args, "--config", t.TempDir())

	var outBuf, errBuf bytes.Buffer
	code = dispatcher.Run(context.Background(), args, &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func TestDispatcher_UnknownCommand(t *testing.T) {
	_, stderr, code := run(t, testutil.NewFakeService(), "unknowncmd")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	expected := "error: unknown command: unknowncmd\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
}

func TestDispatcher_NoArgsListsTasks(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("Buy milk", false)
	svc.AddTask("Walk dog", true)

	stdout, stderr, code := run(t, svc)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	expected := "   1  [ ] Buy milk\n   2  [x] Walk dog\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestDispatcher_FlagsOnlyListsTasks(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("Buy milk", false)

	stdout, _, code := run(t, svc, "--format", "json")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.Contains(stdout, `"title": "Buy milk"`) {
		t.Errorf("expected JSON output, got %q", stdout)
	}
}

func TestDispatcher_HelpCommand(t *testing.T) {
	stdout, stderr, code := run(t, nil, "help")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	if !strings.Contains(stdout, "Usage:") {
		t.Error("expected help output to contain 'Usage:'")
	}
}

func TestDispatcher_VersionCommand(t *testing.T) {
	stdout, _, code := run(t, nil, "version")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "rtask 0.1.0\n" {
		t.Errorf("unexpected version output %q", stdout)
	}
}

func TestDispatcher_CommandHelpFlag(t *testing.T) {
	stdout, _, code := run(t, nil, "rm", "--help")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stdout != "usage: rtask rm <id>\n" {
		t.Errorf("unexpected usage output %q", stdout)
	}
}

func TestDispatcher_FlagErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "unknown long", args: []string{"list", "--bogus"}, want: "error: unknown flag: --bogus\n"},
		{name: "unknown short", args: []string{"list", "-z"}, want: "error: unknown shorthand flag: 'z' in -z\n"},
		{name: "missing value", args: []string{"list", "--format"}, want: "error: flag needs an argument: --format\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dispatcher := cli.NewDispatcher(commands.DefaultRegistry, testFactory(testutil.NewFakeService()))
			var stdout, stderr bytes.Buffer
			code := dispatcher.Run(context.Background(), tt.args, &stdout, &stderr)

			if code != exitcode.UserError {
				t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
			}
			if stderr.String() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, stderr.String())
			}
		})
	}
}

func TestDispatcher_InvalidTimeout(t *testing.T) {
	_, stderr, code := run(t, testutil.NewFakeService(), "list", "--timeout", "soon")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if !strings.HasPrefix(stderr, `error: invalid argument "soon" for "--timeout" flag`) {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_AddQuiet(t *testing.T) {
	svc := testutil.NewFakeService()

	stdout, stderr, code := run(t, svc, "add", "-q", "Buy", "milk")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, stderr)
	}
	if stdout != "" {
		t.Errorf("expected no stdout in quiet mode, got %q", stdout)
	}
	if svc.Calls("create") != 1 {
		t.Errorf("expected one create call, got %d", svc.Calls("create"))
	}
}

func TestDispatcher_InitialFetchFails(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.ListTasksErr = testutil.RemoteErr("list", http.StatusInternalServerError, "database unavailable")

	stdout, stderr, code := run(t, svc, "add", "Buy milk")

	if code != exitcode.RemoteError {
		t.Errorf("expected exit code %d, got %d", exitcode.RemoteError, code)
	}
	if stdout != "" {
		t.Errorf("expected no stdout, got %q", stdout)
	}
	if stderr != "error: remote error: database unavailable\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if svc.Calls("create") != 0 {
		t.Error("command should not run after a failed initial fetch")
	}
}

func TestDispatcher_Unauthorized(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.ListTasksErr = testutil.RemoteErr("list", http.StatusUnauthorized, "invalid token")

	_, stderr, code := run(t, svc, "list")

	if code != exitcode.AuthError {
		t.Errorf("expected exit code %d, got %d", exitcode.AuthError, code)
	}
	if stderr != "error: auth error: invalid token\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestDispatcher_FactoryErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   int
		stderr string
	}{
		{
			name:   "setup",
			err:    errors.New("base url is required"),
			code:   exitcode.RemoteError,
			stderr: "error: remote error: base url is required\n",
		},
		{
			name:   "rejected credentials",
			err:    testutil.RemoteErr("token", http.StatusUnauthorized, "invalid_client"),
			code:   exitcode.AuthError,
			stderr: "error: auth error: invalid_client\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory := func(ctx context.Context, cfg *config.Config, log *slog.Logger) (*store.Store, error) {
				return nil, tt.err
			}
			dispatcher := cli.NewDispatcher(commands.DefaultRegistry, factory)

			var stdout, stderr bytes.Buffer
			code := dispatcher.Run(context.Background(), []string{"list", "--config", t.TempDir()}, &stdout, &stderr)

			if code != tt.code {
				t.Errorf("expected exit code %d, got %d", tt.code, code)
			}
			if stderr.String() != tt.stderr {
				t.Errorf("expected %q, got %q", tt.stderr, stderr.String())
			}
		})
	}
}

func TestDispatcher_ToggleUnknownTask(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("Buy milk", false)

	_, stderr, code := run(t, svc, "toggle", "9")

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if stderr != "error: task not found: 9\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if svc.Calls("update") != 0 {
		t.Error("toggle of an unknown task must not reach the service")
	}
}

func TestDispatcher_DebugLogsToStderr(t *testing.T) {
	svc := testutil.NewFakeService()

	_, stderr, code := run(t, svc, "list", "--debug")

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if !strings.Contains(stderr, "level=DEBUG") || !strings.Contains(stderr, "command=list") {
		t.Errorf("expected debug log lines, got %q", stderr)
	}
}
