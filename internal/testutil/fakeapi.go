package testutil

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"rtask/internal/service"
)

// Request records one call received by FakeAPI.
type Request struct {
	Method        string
	Path          string
	Body          string
	Authorization string
	RequestID     string
}

type injected struct {
	status  int
	message string
	raw     string
}

// FakeAPI is an in-memory task REST server speaking the {data, error}
// envelope. Serve it with Start or mount Handler in an httptest.Server.
type FakeAPI struct {
	mu       sync.Mutex
	tasks    []service.Task
	nextID   int64
	requests []Request
	failures map[string][]injected // method -> queued responses

	// Now supplies timestamps; defaults to a fixed clock so output is stable.
	Now func() time.Time

	engine *gin.Engine
}

// NewFakeAPI creates an empty FakeAPI.
func NewFakeAPI() *FakeAPI {
	gin.SetMode(gin.TestMode)

	f := &FakeAPI{
		nextID:   1,
		failures: make(map[string][]injected),
		Now: func() time.Time {
			return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
		},
	}

	r := gin.New()
	r.Use(f.record, f.inject)
	r.GET("/tasks", f.list)
	r.POST("/tasks", f.create)
	r.GET("/tasks/:id", f.get)
	r.PUT("/tasks/:id", f.update)
	r.DELETE("/tasks/:id", f.delete)
	f.engine = r
	return f
}

// Handler returns the HTTP handler.
func (f *FakeAPI) Handler() http.Handler {
	return f.engine
}

// Start serves the API on a local httptest.Server.
// The caller must Close the returned server.
func (f *FakeAPI) Start() *httptest.Server {
	return httptest.NewServer(f.engine)
}

// Seed appends a task with the next id and returns it.
func (f *FakeAPI) Seed(title string, completed bool) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.insert(title, completed)
}

// Tasks returns a copy of the server-side collection.
func (f *FakeAPI) Tasks() []service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]service.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

// Requests returns every request received so far.
func (f *FakeAPI) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Request, len(f.requests))
	copy(out, f.requests)
	return out
}

// FailNext makes the next request with the given method answer with
// status and an {"error": message} body.
func (f *FakeAPI) FailNext(method string, status int, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method] = append(f.failures[method], injected{status: status, message: message})
}

// RespondNext makes the next request with the given method answer with
// status and a raw body, bypassing the envelope.
func (f *FakeAPI) RespondNext(method string, status int, raw string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method] = append(f.failures[method], injected{status: status, raw: raw})
}

func (f *FakeAPI) record(c *gin.Context) {
	data, _ := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewReader(data))
	body := string(data)

	f.mu.Lock()
	f.requests = append(f.requests, Request{
		Method:        c.Request.Method,
		Path:          c.Request.URL.Path,
		Body:          body,
		Authorization: c.GetHeader("Authorization"),
		RequestID:     c.GetHeader("X-Request-ID"),
	})
	f.mu.Unlock()
	c.Next()
}

func (f *FakeAPI) inject(c *gin.Context) {
	f.mu.Lock()
	queue := f.failures[c.Request.Method]
	var next *injected
	if len(queue) > 0 {
		next = &queue[0]
		f.failures[c.Request.Method] = queue[1:]
	}
	f.mu.Unlock()

	if next == nil {
		c.Next()
		return
	}
	if next.raw != "" || next.message == "" {
		c.Data(next.status, "application/json", []byte(next.raw))
	} else {
		c.JSON(next.status, gin.H{"error": next.message})
	}
	c.Abort()
}

func (f *FakeAPI) list(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": f.Tasks()})
}

func (f *FakeAPI) create(c *gin.Context) {
	var req struct {
		Title string `json:"title"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	f.mu.Lock()
	task := f.insert(req.Title, false)
	f.mu.Unlock()
	c.JSON(http.StatusCreated, gin.H{"data": task})
}

func (f *FakeAPI) get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	f.mu.Lock()
	i := f.index(id)
	var task service.Task
	if i >= 0 {
		task = f.tasks[i]
	}
	f.mu.Unlock()

	if i < 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": task})
}

func (f *FakeAPI) update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req service.TaskUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.index(id)
	if i < 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}
	if req.Title != nil {
		if *req.Title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title cannot be empty"})
			return
		}
		f.tasks[i].Title = *req.Title
	}
	if req.Completed != nil {
		f.tasks[i].Completed = *req.Completed
	}
	f.tasks[i].UpdatedAt = f.Now().Format(time.RFC3339)
	c.JSON(http.StatusOK, gin.H{"data": f.tasks[i]})
}

func (f *FakeAPI) delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.index(id)
	if i < 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
		return
	}
	f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
	c.JSON(http.StatusOK, gin.H{"data": "Task deleted successfully"})
}

// insert must be called with f.mu held.
func (f *FakeAPI) insert(title string, completed bool) service.Task {
	ts := f.Now().Format(time.RFC3339)
	task := service.Task{
		ID:        f.nextID,
		Title:     title,
		Completed: completed,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	f.nextID++
	f.tasks = append(f.tasks, task)
	return task
}

// index must be called with f.mu held.
func (f *FakeAPI) index(id int64) int {
	for i, t := range f.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID"})
		return 0, false
	}
	return id, true
}
