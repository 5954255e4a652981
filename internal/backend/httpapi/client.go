// Package httpapi implements the service.Service interface against the
// task REST API (JSON envelope {data, error} over HTTP).
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"rtask/internal/config"
	"rtask/internal/service"
)

const (
	// TasksPath is the collection resource.
	TasksPath = "/tasks"

	// RequestIDHeader carries a per-request id for server-side correlation.
	RequestIDHeader = "X-Request-ID"

	// maxResponseBytes caps how much of a response body is read.
	maxResponseBytes = 4 << 20
)

var _ service.Service = (*Client)(nil)

// Client implements service.Service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for request tracing.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a client from configuration.
// token is a bearer token (e.g. read from the keyring); it is ignored when
// the client-credentials flow is configured. An empty token sends no
// Authorization header.
func New(ctx context.Context, cfg *config.Config, token string, opts ...Option) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}

	var httpClient *http.Client
	switch {
	case cfg.OAuth.Enabled():
		cc := &clientcredentials.Config{
			ClientID:     cfg.OAuth.ClientID,
			ClientSecret: cfg.OAuth.ClientSecret,
			TokenURL:     cfg.OAuth.TokenURL,
			Scopes:       cfg.OAuth.Scopes,
		}
		httpClient = cc.Client(ctx)
	case token != "":
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
		httpClient = oauth2.NewClient(ctx, ts)
	default:
		httpClient = &http.Client{}
	}
	httpClient.Timeout = cfg.Timeout

	return NewWithHTTPClient(cfg.BaseURL, httpClient, opts...), nil
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(baseURL string, httpClient *http.Client, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		log:        slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListTasks returns all tasks in server order.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	var tasks []service.Task
	if err := c.do(ctx, "list", http.MethodGet, TasksPath, nil, &tasks); err != nil {
		return nil, err
	}
	if tasks == nil {
		tasks = []service.Task{}
	}
	return tasks, nil
}

// GetTask returns a single task by id.
func (c *Client) GetTask(ctx context.Context, id int64) (service.Task, error) {
	return c.taskCall(ctx, "get", http.MethodGet, taskPath(id), nil, id)
}

// CreateTask creates a task.
func (c *Client) CreateTask(ctx context.Context, title string) (service.Task, error) {
	body := struct {
		Title string `json:"title"`
	}{Title: title}
	return c.taskCall(ctx, "create", http.MethodPost, TasksPath, body, 0)
}

// UpdateTask sends the fields set in upd.
func (c *Client) UpdateTask(ctx context.Context, id int64, upd service.TaskUpdate) (service.Task, error) {
	return c.taskCall(ctx, "update", http.MethodPut, taskPath(id), upd, id)
}

// DeleteTask deletes a task. Any data in the response is ignored.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, "delete", http.MethodDelete, taskPath(id), nil, nil)
}

// taskCall performs a request whose envelope must carry a single task.
// The task must have an id, and it must equal wantID unless wantID is 0.
func (c *Client) taskCall(ctx context.Context, op, method, path string, body any, wantID int64) (service.Task, error) {
	var task *service.Task
	if err := c.do(ctx, op, method, path, body, &task); err != nil {
		return service.Task{}, err
	}
	if task == nil {
		return service.Task{}, &service.RemoteError{Op: op, StatusCode: http.StatusOK, Message: "server returned no task"}
	}
	if task.ID == 0 || (wantID != 0 && task.ID != wantID) {
		c.log.Debug("unexpected task id in response", "op", op, "want", wantID, "got", task.ID)
		return service.Task{}, &service.RemoteError{Op: op, StatusCode: http.StatusOK, Message: "malformed response from server"}
	}
	return *task, nil
}

// envelope is the response shape shared by all endpoints.
type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

// do builds the request, sends it, and decodes the envelope into out.
// out may be nil when the payload is ignored.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &service.RemoteError{Op: op, Message: fmt.Sprintf("encoding request: %v", err), Err: err}
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return &service.RemoteError{Op: op, Message: fmt.Sprintf("building request: %v", err), Err: err}
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(RequestIDHeader, reqID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug("remote request failed", "op", op, "method", method, "path", path, "request_id", reqID, "error", err)
		return wrapTransportError(op, c.baseURL, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return wrapTransportError(op, c.baseURL, err)
	}
	c.log.Debug("remote request",
		"op", op,
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", reqID,
		"duration", time.Since(start),
	)

	var env envelope
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			if !isSuccess(resp.StatusCode) {
				return statusError(op, resp.StatusCode)
			}
			return &service.RemoteError{Op: op, StatusCode: resp.StatusCode, Message: "malformed response from server", Err: err}
		}
	}

	if env.Error != "" {
		return &service.RemoteError{Op: op, StatusCode: resp.StatusCode, Message: env.Error}
	}
	if !isSuccess(resp.StatusCode) {
		return statusError(op, resp.StatusCode)
	}

	if out == nil || len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &service.RemoteError{Op: op, StatusCode: resp.StatusCode, Message: "malformed response from server", Err: err}
	}
	return nil
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

func statusError(op string, code int) error {
	return &service.RemoteError{
		Op:         op,
		StatusCode: code,
		Message:    fmt.Sprintf("unexpected status %d %s", code, http.StatusText(code)),
	}
}

// wrapTransportError turns network-level failures into user-friendly messages.
func wrapTransportError(op, baseURL string, err error) error {
	msg := fmt.Sprintf("request failed: %v", err)

	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		msg = "request timed out"
	case errors.Is(err, context.Canceled):
		msg = "request cancelled"
	case errors.Is(err, syscall.ECONNREFUSED):
		msg = fmt.Sprintf("cannot connect to %s", baseURL)
	}

	return &service.RemoteError{Op: op, Message: msg, Err: err}
}

func taskPath(id int64) string {
	return TasksPath + "/" + strconv.FormatInt(id, 10)
}
