// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"rtask/internal/service"
)

// Timestamp is the fixed time stamped on tasks created by the fakes.
const Timestamp = "2024-01-02T03:04:05Z"

// NotFound is the error the fakes return for an unknown id.
func NotFound(op string) *service.RemoteError {
	return &service.RemoteError{Op: op, StatusCode: http.StatusNotFound, Message: "Task not found"}
}

// RemoteErr builds a RemoteError as a server would report it.
func RemoteErr(op string, status int, message string) *service.RemoteError {
	return &service.RemoteError{Op: op, StatusCode: status, Message: message}
}

// FakeService is an in-memory implementation of service.Service for testing.
type FakeService struct {
	mu     sync.Mutex
	tasks  []service.Task
	nextID int64
	calls  map[string]int

	// Error injection for testing
	ListTasksErr  error
	GetTaskErr    error
	CreateTaskErr error
	UpdateTaskErr error
	DeleteTaskErr error
}

var _ service.Service = (*FakeService)(nil)

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		nextID: 1,
		calls:  make(map[string]int),
	}
}

// AddTask adds a task with the next id and returns it.
func (f *FakeService) AddTask(title string, completed bool) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	task := service.Task{
		ID:        f.nextID,
		Title:     title,
		Completed: completed,
		CreatedAt: Timestamp,
		UpdatedAt: Timestamp,
	}
	f.nextID++
	f.tasks = append(f.tasks, task)
	return task
}

// RemoveTask deletes a task server-side without going through the API,
// simulating another client.
func (f *FakeService) RemoveTask(id int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := f.index(id); i >= 0 {
		f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
	}
}

// SetErr sets an injected error under the lock, for tests that run
// operations concurrently.
func (f *FakeService) SetErr(target *error, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	*target = err
}

// Calls returns how many times the named operation was invoked
// (list, get, create, update, delete).
func (f *FakeService) Calls(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

// TotalCalls returns the number of operations invoked.
func (f *FakeService) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context) ([]service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["list"]++
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	result := make([]service.Task, len(f.tasks))
	copy(result, f.tasks)
	return result, nil
}

// GetTask implements service.Service.
func (f *FakeService) GetTask(ctx context.Context, id int64) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["get"]++
	if f.GetTaskErr != nil {
		return service.Task{}, f.GetTaskErr
	}
	i := f.index(id)
	if i < 0 {
		return service.Task{}, NotFound("get")
	}
	return f.tasks[i], nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, title string) (service.Task, error) {
	f.mu.Lock()
	f.calls["create"]++
	if f.CreateTaskErr != nil {
		err := f.CreateTaskErr
		f.mu.Unlock()
		return service.Task{}, err
	}
	if strings.TrimSpace(title) == "" {
		f.mu.Unlock()
		return service.Task{}, RemoteErr("create", http.StatusBadRequest, "title is required")
	}
	f.mu.Unlock()
	return f.AddTask(title, false), nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, id int64, upd service.TaskUpdate) (service.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["update"]++
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}
	i := f.index(id)
	if i < 0 {
		return service.Task{}, NotFound("update")
	}
	if upd.Title != nil {
		if *upd.Title == "" {
			return service.Task{}, RemoteErr("update", http.StatusBadRequest, "title cannot be empty")
		}
		f.tasks[i].Title = *upd.Title
	}
	if upd.Completed != nil {
		f.tasks[i].Completed = *upd.Completed
	}
	f.tasks[i].UpdatedAt = time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC).Format(time.RFC3339)
	return f.tasks[i], nil
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["delete"]++
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	i := f.index(id)
	if i < 0 {
		return NotFound("delete")
	}
	f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
	return nil
}

// index must be called with f.mu held.
func (f *FakeService) index(id int64) int {
	for i, t := range f.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
