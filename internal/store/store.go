// Package store holds the client-side state containers that mirror server state:
// the session store and the task store. Both are created explicitly and passed
// to views; nothing here is a package-level singleton.
package store

import (
	"log/slog"

	"taskboard/internal/service"
)

// Stores bundles the state containers of one application instance.
type Stores struct {
	API     service.API
	Session *SessionStore
	Tasks   *TaskStore
	Nav     *RouteRecorder
}

// New wires both stores to api, sharing the notifier and a fresh route recorder.
func New(api service.API, notify Notifier, logger *slog.Logger) *Stores {
	nav := &RouteRecorder{}
	return &Stores{
		API:     api,
		Session: NewSessionStore(api, notify, nav, logger),
		Tasks:   NewTaskStore(api, notify, logger),
		Nav:     nav,
	}
}
