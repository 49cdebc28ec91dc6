package testutil

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"taskboard/internal/service"
)

// SessionCookie is the cookie name used by FakeServer.
const SessionCookie = "sid"

// FakeServer exposes a FakeAPI over the REST contract the client expects,
// with a cookie session. Mount Handler() under an httptest.Server; routes live under /api.
type FakeServer struct {
	API *FakeAPI

	mu       sync.Mutex
	sessions map[string]service.User
}

// NewFakeServer wraps api.
func NewFakeServer(api *FakeAPI) *FakeServer {
	return &FakeServer{API: api, sessions: make(map[string]service.User)}
}

// Handler returns the router.
func (s *FakeServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Get("/users/check-auth", s.checkAuth)
		r.Post("/users/login", s.login)
		r.Post("/users/logout", s.logout)
		r.Post("/users/register", s.register)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)
			r.Get("/tasks", s.listTasks)
			r.Post("/tasks", s.createTask)
			r.Get("/tasks/{id}", s.getTask)
			r.Put("/tasks/{id}", s.updateTask)
			r.Delete("/tasks/{id}", s.deleteTask)
		})
	})
	return r
}

func (s *FakeServer) session(r *http.Request) (service.User, bool) {
	c, err := r.Cookie(SessionCookie)
	if err != nil {
		return service.User{}, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.sessions[c.Value]
	return u, ok
}

func (s *FakeServer) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.session(r); !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "not authenticated"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *FakeServer) checkAuth(w http.ResponseWriter, r *http.Request) {
	u, ok := s.session(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "not authenticated"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": u})
}

func (s *FakeServer) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid body"})
		return
	}
	u, err := s.API.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid credentials"})
		return
	}
	sid := uuid.NewString()
	s.mu.Lock()
	s.sessions[sid] = u
	s.mu.Unlock()
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: sid, Path: "/", HttpOnly: true})
	writeJSON(w, http.StatusOK, map[string]any{"data": u})
}

func (s *FakeServer) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.API.Logout(r.Context()); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
		return
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		s.mu.Lock()
		delete(s.sessions, c.Value)
		s.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1})
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (s *FakeServer) register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid body"})
		return
	}
	if err := s.API.Register(r.Context(), req.Name, req.Email, req.Password); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "registered"})
}

func (s *FakeServer) listTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.API.ListTasks(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if tasks == nil {
		tasks = []service.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *FakeServer) getTask(w http.ResponseWriter, r *http.Request) {
	t, err := s.API.GetTask(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *FakeServer) createTask(w http.ResponseWriter, r *http.Request) {
	var in service.TaskInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid body"})
		return
	}
	t, err := s.API.CreateTask(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, t)
}

func (s *FakeServer) updateTask(w http.ResponseWriter, r *http.Request) {
	var in service.TaskInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid body"})
		return
	}
	t, err := s.API.UpdateTask(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *FakeServer) deleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.API.DeleteTask(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "task not found"})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
