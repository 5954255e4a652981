package httpapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rtask/internal/backend/httpapi"
	"rtask/internal/config"
	"rtask/internal/service"
	"rtask/internal/store"
	"rtask/internal/testutil"
)

func newClient(t *testing.T) (*httpapi.Client, *testutil.FakeAPI) {
	t.Helper()
	api := testutil.NewFakeAPI()
	srv := api.Start()
	t.Cleanup(srv.Close)
	return httpapi.NewWithHTTPClient(srv.URL+"/", srv.Client()), api
}

func requireRemoteError(t *testing.T, err error) *service.RemoteError {
	t.Helper()
	require.Error(t, err)
	re, ok := service.AsRemoteError(err)
	require.True(t, ok, "expected *service.RemoteError, got %T: %v", err, err)
	return re
}

func TestClient_ListTasks(t *testing.T) {
	client, api := newClient(t)
	api.Seed("Buy milk", false)
	api.Seed("Walk dog", true)

	tasks, err := client.ListTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, int64(1), tasks[0].ID)
	assert.Equal(t, "Buy milk", tasks[0].Title)
	assert.False(t, tasks[0].Completed)
	assert.Equal(t, "2024-01-02T03:04:05Z", tasks[0].CreatedAt)
	assert.Equal(t, "Walk dog", tasks[1].Title)
	assert.True(t, tasks[1].Completed)
}

func TestClient_ListTasks_EmptyPayloads(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty array", body: `{"data":[]}`},
		{name: "null data", body: `{"data":null}`},
		{name: "absent data", body: `{}`},
		{name: "empty body", body: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, api := newClient(t)
			api.RespondNext(http.MethodGet, http.StatusOK, tt.body)

			tasks, err := client.ListTasks(context.Background())
			require.NoError(t, err)
			assert.NotNil(t, tasks)
			assert.Empty(t, tasks)
		})
	}
}

func TestClient_ListTasks_ServerError(t *testing.T) {
	client, api := newClient(t)
	api.FailNext(http.MethodGet, http.StatusInternalServerError, "Failed to retrieve tasks")

	_, err := client.ListTasks(context.Background())
	re := requireRemoteError(t, err)
	assert.Equal(t, "Failed to retrieve tasks", re.Error())
	assert.Equal(t, "list", re.Op)
	assert.Equal(t, http.StatusInternalServerError, re.StatusCode)
}

func TestClient_ListTasks_ErrorFieldWithOK(t *testing.T) {
	client, api := newClient(t)
	api.RespondNext(http.MethodGet, http.StatusOK, `{"error":"maintenance"}`)

	_, err := client.ListTasks(context.Background())
	re := requireRemoteError(t, err)
	assert.Equal(t, "maintenance", re.Message)
}

func TestClient_CreateTask(t *testing.T) {
	client, api := newClient(t)

	task, err := client.CreateTask(context.Background(), "X")
	require.NoError(t, err)
	assert.Equal(t, int64(1), task.ID)
	assert.Equal(t, "X", task.Title)
	assert.False(t, task.Completed)
	assert.NotEmpty(t, task.CreatedAt)

	reqs := api.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, "/tasks", reqs[0].Path)
	assert.JSONEq(t, `{"title":"X"}`, reqs[0].Body)
	assert.NotEmpty(t, reqs[0].RequestID)
}

func TestClient_CreateTask_Rejected(t *testing.T) {
	client, _ := newClient(t)

	_, err := client.CreateTask(context.Background(), "   ")
	re := requireRemoteError(t, err)
	assert.Equal(t, "title is required", re.Message)
	assert.Equal(t, http.StatusBadRequest, re.StatusCode)
}

func TestClient_CreateTask_NoData(t *testing.T) {
	client, api := newClient(t)
	api.RespondNext(http.MethodPost, http.StatusCreated, `{}`)

	_, err := client.CreateTask(context.Background(), "X")
	re := requireRemoteError(t, err)
	assert.Equal(t, "server returned no task", re.Message)
}

func TestClient_GetTask(t *testing.T) {
	client, api := newClient(t)
	seeded := api.Seed("Buy milk", false)

	task, err := client.GetTask(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, seeded, task)

	_, err = client.GetTask(context.Background(), 99)
	re := requireRemoteError(t, err)
	assert.Equal(t, "Task not found", re.Message)
	assert.Equal(t, http.StatusNotFound, re.StatusCode)
}

func TestClient_UpdateTask_SendsOnlyProvidedFields(t *testing.T) {
	client, api := newClient(t)
	seeded := api.Seed("Buy milk", false)

	task, err := client.UpdateTask(context.Background(), seeded.ID, service.SetCompleted(true))
	require.NoError(t, err)

	// Title was not sent but the server response carries it.
	assert.Equal(t, "Buy milk", task.Title)
	assert.True(t, task.Completed)

	reqs := api.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPut, reqs[0].Method)
	assert.Equal(t, "/tasks/1", reqs[0].Path)
	assert.JSONEq(t, `{"completed":true}`, reqs[0].Body)
}

func TestClient_UpdateTask_UnknownID(t *testing.T) {
	client, _ := newClient(t)

	_, err := client.UpdateTask(context.Background(), 42, service.SetTitle("nope"))
	re := requireRemoteError(t, err)
	assert.Equal(t, "Task not found", re.Message)
	assert.Equal(t, "update", re.Op)
}

func TestClient_DeleteTask(t *testing.T) {
	client, api := newClient(t)
	seeded := api.Seed("Buy milk", false)

	require.NoError(t, client.DeleteTask(context.Background(), seeded.ID))
	assert.Empty(t, api.Tasks())

	err := client.DeleteTask(context.Background(), seeded.ID)
	re := requireRemoteError(t, err)
	assert.Equal(t, "Task not found", re.Message)
}

func TestClient_StatusWithoutErrorField(t *testing.T) {
	client, api := newClient(t)
	api.RespondNext(http.MethodGet, http.StatusBadGateway, `<html>bad gateway</html>`)

	_, err := client.ListTasks(context.Background())
	re := requireRemoteError(t, err)
	assert.Equal(t, "unexpected status 502 Bad Gateway", re.Message)
	assert.Equal(t, http.StatusBadGateway, re.StatusCode)
}

func TestClient_MalformedResponse(t *testing.T) {
	client, api := newClient(t)
	api.RespondNext(http.MethodGet, http.StatusOK, `{"data": [`)

	_, err := client.ListTasks(context.Background())
	re := requireRemoteError(t, err)
	assert.Equal(t, "malformed response from server", re.Message)
}

func TestClient_WrongDataShape(t *testing.T) {
	client, api := newClient(t)
	api.RespondNext(http.MethodGet, http.StatusOK, `{"data": {"id": "one"}}`)

	_, err := client.ListTasks(context.Background())
	re := requireRemoteError(t, err)
	assert.Equal(t, "malformed response from server", re.Message)
}

func TestClient_TaskResponseWithoutID(t *testing.T) {
	tests := []struct {
		name   string
		method string
		body   string
		call   func(*httpapi.Client) error
	}{
		{
			name:   "create empty object",
			method: http.MethodPost,
			body:   `{"data":{}}`,
			call: func(c *httpapi.Client) error {
				_, err := c.CreateTask(context.Background(), "x")
				return err
			},
		},
		{
			name:   "update empty object",
			method: http.MethodPut,
			body:   `{"data":{}}`,
			call: func(c *httpapi.Client) error {
				_, err := c.UpdateTask(context.Background(), 1, service.SetCompleted(true))
				return err
			},
		},
		{
			name:   "update without id",
			method: http.MethodPut,
			body:   `{"data":{"title":"Buy milk","completed":true}}`,
			call: func(c *httpapi.Client) error {
				_, err := c.UpdateTask(context.Background(), 1, service.SetCompleted(true))
				return err
			},
		},
		{
			name:   "update other id",
			method: http.MethodPut,
			body:   `{"data":{"id":2,"title":"Walk dog","completed":true}}`,
			call: func(c *httpapi.Client) error {
				_, err := c.UpdateTask(context.Background(), 1, service.SetCompleted(true))
				return err
			},
		},
		{
			name:   "get other id",
			method: http.MethodGet,
			body:   `{"data":{"id":2,"title":"Walk dog"}}`,
			call: func(c *httpapi.Client) error {
				_, err := c.GetTask(context.Background(), 1)
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, api := newClient(t)
			api.Seed("Buy milk", false)
			api.RespondNext(tt.method, http.StatusOK, tt.body)

			re := requireRemoteError(t, tt.call(client))
			assert.Equal(t, "malformed response from server", re.Message)
		})
	}
}

func TestClient_StoreIgnoresTaskWithoutID(t *testing.T) {
	client, api := newClient(t)
	api.Seed("Buy milk", false)

	st := store.New(context.Background(), client)
	require.NoError(t, st.Wait(context.Background()))

	api.RespondNext(http.MethodPut, http.StatusOK, `{"data":{"title":"Buy milk","completed":true}}`)
	_, err := st.ToggleTaskCompletion(context.Background(), 1)
	requireRemoteError(t, err)

	api.RespondNext(http.MethodPost, http.StatusOK, `{"data":{}}`)
	_, err = st.CreateTask(context.Background(), "x")
	requireRemoteError(t, err)

	tasks := st.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, int64(1), tasks[0].ID)
	assert.False(t, tasks[0].Completed)
	assert.Equal(t, store.Failed, st.Status().State)
}

func TestClient_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := httpapi.NewWithHTTPClient(url, &http.Client{})
	_, err := client.ListTasks(context.Background())
	re := requireRemoteError(t, err)
	assert.Equal(t, "cannot connect to "+url, re.Message)
	assert.Zero(t, re.StatusCode)
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	client := httpapi.NewWithHTTPClient(srv.URL, &http.Client{Timeout: 50 * time.Millisecond})
	_, err := client.ListTasks(context.Background())
	re := requireRemoteError(t, err)
	assert.Equal(t, "request timed out", re.Message)
}

func TestClient_ContextCancelled(t *testing.T) {
	client, _ := newClient(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ListTasks(ctx)
	re := requireRemoteError(t, err)
	assert.Equal(t, "request cancelled", re.Message)
}

func TestNew_BearerToken(t *testing.T) {
	api := testutil.NewFakeAPI()
	srv := api.Start()
	t.Cleanup(srv.Close)

	cfg := &config.Config{BaseURL: srv.URL, Timeout: time.Second}
	client, err := httpapi.New(context.Background(), cfg, "s3cret")
	require.NoError(t, err)

	_, err = client.ListTasks(context.Background())
	require.NoError(t, err)

	reqs := api.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "Bearer s3cret", reqs[0].Authorization)
}

func TestNew_NoToken(t *testing.T) {
	api := testutil.NewFakeAPI()
	srv := api.Start()
	t.Cleanup(srv.Close)

	cfg := &config.Config{BaseURL: srv.URL, Timeout: time.Second}
	client, err := httpapi.New(context.Background(), cfg, "")
	require.NoError(t, err)

	_, err = client.ListTasks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, api.Requests()[0].Authorization)
}

func TestNew_ClientCredentials(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"issued","token_type":"bearer","expires_in":3600}`))
	}))
	t.Cleanup(tokenSrv.Close)

	api := testutil.NewFakeAPI()
	srv := api.Start()
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		BaseURL: srv.URL,
		Timeout: time.Second,
		OAuth: config.OAuthConfig{
			TokenURL:     tokenSrv.URL,
			ClientID:     "cli",
			ClientSecret: "shh",
		},
	}
	client, err := httpapi.New(context.Background(), cfg, "ignored")
	require.NoError(t, err)

	_, err = client.ListTasks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer issued", api.Requests()[0].Authorization)
}

func TestNew_RequiresBaseURL(t *testing.T) {
	_, err := httpapi.New(context.Background(), &config.Config{Timeout: time.Second}, "")
	assert.Error(t, err)
}
