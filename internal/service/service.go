// Package service defines the backend-agnostic interface for task operations.
package service

import "context"

// Service defines the interface for the remote task backend.
// All HTTP calls go through this interface.
// The store and commands never build requests directly.
//
// Every failure, transport or application, is returned as a *RemoteError.
// Implementations never retry.
type Service interface {
	// ListTasks returns all tasks in server order.
	// An absent or empty payload yields an empty slice, not an error.
	ListTasks(ctx context.Context) ([]Task, error)

	// GetTask returns a single task by id.
	GetTask(ctx context.Context, id int64) (Task, error)

	// CreateTask creates a task and returns it with its server-assigned
	// id and timestamps.
	CreateTask(ctx context.Context, title string) (Task, error)

	// UpdateTask sends only the fields set in upd and returns the full task
	// as stored by the server.
	UpdateTask(ctx context.Context, id int64, upd TaskUpdate) (Task, error)

	// DeleteTask removes a task on the server.
	DeleteTask(ctx context.Context, id int64) error
}
