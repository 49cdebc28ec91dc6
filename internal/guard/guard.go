// Package guard gates protected views on the session store.
package guard

import "net/http"

// Session is the read side of a session the guard needs.
type Session interface {
	Loading() bool
	Authenticated() bool
}

// Decision is the outcome of a guard check.
type Decision int

const (
	// Wait means the session is still loading; show a waiting indicator.
	Wait Decision = iota
	// Allow means the guarded view may render.
	Allow
	// Redirect means the visitor is unauthenticated and goes to the landing route.
	Redirect
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Redirect:
		return "redirect"
	default:
		return "wait"
	}
}

// Decide returns Wait while s is loading, then Allow iff s is authenticated.
func Decide(s Session) Decision {
	if s.Loading() {
		return Wait
	}
	if s.Authenticated() {
		return Allow
	}
	return Redirect
}

// Middleware guards an HTTP handler. While loading it serves wait; an
// unauthenticated visitor is redirected to landing. The requested path is not kept.
func Middleware(s Session, wait http.Handler, landing string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch Decide(s) {
			case Allow:
				next.ServeHTTP(w, r)
			case Redirect:
				http.Redirect(w, r, landing, http.StatusSeeOther)
			default:
				wait.ServeHTTP(w, r)
			}
		})
	}
}
