// Package store holds the session's in-memory task collection and keeps it
// in step with the remote service.
//
// The collection only changes after the service confirms an operation;
// nothing is applied optimistically. Concurrent operations on the same task
// are not serialized: results are applied in completion order, so the
// last response to arrive wins.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"rtask/internal/service"
)

// ErrTaskNotFound is returned when an operation needs a task that is not in
// the local collection. It is detected locally; no request is sent.
var ErrTaskNotFound = errors.New("task not found")

// State is the coarse status of the store.
type State int

const (
	Idle State = iota
	Loading
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Failed:
		return "error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Status is the signal exposed alongside the collection.
// Message is set only when State is Failed.
type Status struct {
	State   State
	Message string
}

func (s Status) String() string {
	if s.State == Failed {
		return "error: " + s.Message
	}
	return s.State.String()
}

// Snapshot is a consistent copy of the collection and status.
type Snapshot struct {
	Tasks  []service.Task
	Status Status
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger for state transitions.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// Store owns the task collection for one session.
type Store struct {
	svc service.Service
	log *slog.Logger

	mu     sync.Mutex
	tasks  []service.Task
	status Status
	subs   map[int]chan Snapshot
	nextID int

	ready   chan struct{}
	initErr error
}

// New creates a store in the Loading state and starts the initial fetch in
// the background. Use Wait to block until it resolves.
func New(ctx context.Context, svc service.Service, opts ...Option) *Store {
	s := &Store{
		svc:    svc,
		log:    slog.New(slog.DiscardHandler),
		tasks:  []service.Task{},
		status: Status{State: Loading},
		subs:   make(map[int]chan Snapshot),
		ready:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	go func() {
		s.initErr = s.fetch(ctx)
		close(s.ready)
	}()
	return s
}

// Wait blocks until the initial fetch has finished and returns its error.
func (s *Store) Wait(ctx context.Context) error {
	select {
	case <-s.ready:
		return s.initErr
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Tasks returns a copy of the collection in insertion order.
func (s *Store) Tasks() []service.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tasks)
}

// Task returns the task with the given id.
func (s *Store) Task(id int64) (service.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.index(id); i >= 0 {
		return s.tasks[i], true
	}
	return service.Task{}, false
}

// Status returns the current status.
func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Snapshot returns the collection and status together.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe returns a channel that receives a Snapshot after every change,
// and a function that ends the subscription. The channel holds at most one
// pending snapshot; a slow reader sees only the latest state.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan Snapshot, 1)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

// Refresh re-fetches the whole collection regardless of the current status.
// On failure the previous collection is kept and the status records the error.
func (s *Store) Refresh(ctx context.Context) error {
	return s.fetch(ctx)
}

func (s *Store) fetch(ctx context.Context) error {
	s.setStatus(Status{State: Loading})

	tasks, err := s.svc.ListTasks(ctx)
	if err != nil {
		s.fail("refresh", err)
		return err
	}

	s.mu.Lock()
	s.tasks = slices.Clone(tasks)
	if s.tasks == nil {
		s.tasks = []service.Task{}
	}
	s.status = Status{State: Idle}
	s.notifyLocked()
	s.mu.Unlock()

	s.log.Debug("tasks loaded", "count", len(tasks))
	return nil
}

// CreateTask creates a task remotely and appends the result.
// Title validation is left to the caller and the service.
func (s *Store) CreateTask(ctx context.Context, title string) (service.Task, error) {
	s.clearError()

	task, err := s.svc.CreateTask(ctx, title)
	if err != nil {
		s.fail("create", err)
		return service.Task{}, err
	}

	s.apply(func() { s.upsertLocked(task) })
	s.log.Debug("task created", "id", task.ID)
	return task, nil
}

// UpdateTask sends a partial update and replaces the stored task with the
// server's response. A task confirmed by the server but missing locally is
// appended.
func (s *Store) UpdateTask(ctx context.Context, id int64, upd service.TaskUpdate) (service.Task, error) {
	s.clearError()

	task, err := s.svc.UpdateTask(ctx, id, upd)
	if err != nil {
		s.fail("update", err)
		return service.Task{}, err
	}

	s.apply(func() { s.upsertLocked(task) })
	s.log.Debug("task updated", "id", task.ID)
	return task, nil
}

// DeleteTask deletes a task remotely and removes it locally.
// Removing an id that is already absent is a no-op.
func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	s.clearError()

	if err := s.svc.DeleteTask(ctx, id); err != nil {
		s.fail("delete", err)
		return err
	}

	s.apply(func() {
		if i := s.index(id); i >= 0 {
			s.tasks = slices.Delete(s.tasks, i, i+1)
		}
	})
	s.log.Debug("task deleted", "id", id)
	return nil
}

// ToggleTaskCompletion flips the completion flag of a task in the local
// collection. It fails with ErrTaskNotFound, without a remote call and
// without touching the status, if id is not present.
func (s *Store) ToggleTaskCompletion(ctx context.Context, id int64) (service.Task, error) {
	current, ok := s.Task(id)
	if !ok {
		return service.Task{}, fmt.Errorf("%w: %d", ErrTaskNotFound, id)
	}
	return s.UpdateTask(ctx, id, service.SetCompleted(!current.Completed))
}

// ReloadTask fetches one task from the server and replaces (or appends) the
// local copy.
func (s *Store) ReloadTask(ctx context.Context, id int64) (service.Task, error) {
	s.clearError()

	task, err := s.svc.GetTask(ctx, id)
	if err != nil {
		s.fail("reload", err)
		return service.Task{}, err
	}

	s.apply(func() { s.upsertLocked(task) })
	return task, nil
}

// apply runs fn under the lock and notifies subscribers.
func (s *Store) apply(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
	s.notifyLocked()
}

// upsertLocked replaces the task with the same id, or appends it.
func (s *Store) upsertLocked(task service.Task) {
	if i := s.index(task.ID); i >= 0 {
		s.tasks[i] = task
		return
	}
	s.tasks = append(s.tasks, task)
}

// clearError drops a previous error. A pending load keeps its Loading state.
func (s *Store) clearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status.State != Failed {
		return
	}
	s.status = Status{State: Idle}
	s.notifyLocked()
}

func (s *Store) fail(op string, err error) {
	s.log.Debug("remote operation failed", "op", op, "error", err)
	s.setStatus(Status{State: Failed, Message: err.Error()})
}

func (s *Store) setStatus(st Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = st
	s.notifyLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{Tasks: slices.Clone(s.tasks), Status: s.status}
}

// notifyLocked delivers the current snapshot to every subscriber, replacing
// any snapshot the subscriber has not read yet.
func (s *Store) notifyLocked() {
	if len(s.subs) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

func (s *Store) index(id int64) int {
	return slices.IndexFunc(s.tasks, func(t service.Task) bool { return t.ID == id })
}
