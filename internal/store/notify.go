package store

import (
	"context"
	"sync"
)

// Routes a store may navigate to.
const (
	RouteHome      = "/"
	RouteLogin     = "/login"
	RouteSignup    = "/signup"
	RouteDashboard = "/dashboard"
)

// Level classifies a notification.
type Level int

const (
	LevelSuccess Level = iota
	LevelError
)

func (l Level) String() string {
	if l == LevelError {
		return "error"
	}
	return "success"
}

// Notification is a transient user-visible message.
// Err carries the underlying failure for error notifications.
type Notification struct {
	Level   Level
	Message string
	Err     error
}

// Notifier surfaces notifications to the user.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

// Notify calls f(n).
func (f NotifierFunc) Notify(n Notification) { f(n) }

// Navigator receives navigation signals from the session store.
type Navigator interface {
	Navigate(route string)
}

type navigatorKey struct{}

// WithNavigator returns a context whose session store calls navigate to nav
// instead of the store's own navigator. Servers use it to keep one route per request.
func WithNavigator(ctx context.Context, nav Navigator) context.Context {
	return context.WithValue(ctx, navigatorKey{}, nav)
}

func navigatorFrom(ctx context.Context, fallback Navigator) Navigator {
	if nav, ok := ctx.Value(navigatorKey{}).(Navigator); ok && nav != nil {
		return nav
	}
	return fallback
}

// RouteRecorder is a Navigator that holds the most recent route until taken.
type RouteRecorder struct {
	mu      sync.Mutex
	pending string
	ok      bool
}

// Navigate records route, replacing any pending one.
func (r *RouteRecorder) Navigate(route string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = route
	r.ok = true
}

// Take returns and clears the pending route.
func (r *RouteRecorder) Take() (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	route, ok := r.pending, r.ok
	r.pending, r.ok = "", false
	return route, ok
}
