// Package service defines the backend-agnostic interface for session and task operations.
package service

import "context"

// API defines the interface for task backend operations.
// Stores and views never import a backend package directly.
type API interface {
	// CheckAuth confirms the current session with the server and returns its user.
	CheckAuth(ctx context.Context) (User, error)

	// Login authenticates with email and password and returns the user.
	Login(ctx context.Context, email, password string) (User, error)

	// Logout ends the server-side session.
	Logout(ctx context.Context) error

	// Register creates an account. It does not authenticate.
	Register(ctx context.Context, name, email, password string) error

	// ListTasks returns every task of the authenticated user in server order.
	ListTasks(ctx context.Context) ([]Task, error)

	// GetTask returns a single task. Returns ErrNotFound if it does not exist.
	GetTask(ctx context.Context, id string) (Task, error)

	// CreateTask creates a task and returns the server record.
	CreateTask(ctx context.Context, in TaskInput) (Task, error)

	// UpdateTask replaces all editable fields of a task and returns the server record.
	UpdateTask(ctx context.Context, id string, in TaskInput) (Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, id string) error
}
