package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"taskboard/internal/service"
	"taskboard/internal/store"
)

// authAction runs a session call with a navigator private to this request
// and redirects to the route it signalled, or fallback if none.
func (s *Server) authAction(w http.ResponseWriter, r *http.Request, fallback string, call func(ctx context.Context)) {
	nav := &store.RouteRecorder{}
	call(store.WithNavigator(r.Context(), nav))

	route, ok := nav.Take()
	if !ok {
		route = fallback
	}
	http.Redirect(w, r, route, http.StatusSeeOther)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"session": s.stores.Session.State().String(),
	})
}

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "home", page{Title: "Welcome"})
}

func (s *Server) waiting(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "waiting", page{Title: "Loading", Refresh: true})
}

func (s *Server) loginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "login", page{Title: "Log in"})
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	s.authAction(w, r, store.RouteLogin, func(ctx context.Context) {
		_ = s.stores.Session.Login(ctx, r.PostForm.Get("email"), r.PostForm.Get("password"))
	})
}

func (s *Server) signupForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "signup", page{Title: "Sign up"})
}

func (s *Server) signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	s.authAction(w, r, store.RouteSignup, func(ctx context.Context) {
		_ = s.stores.Session.Register(ctx, r.PostForm.Get("name"), r.PostForm.Get("email"), r.PostForm.Get("password"))
	})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.authAction(w, r, store.RouteDashboard, func(ctx context.Context) {
		_ = s.stores.Session.Logout(ctx)
	})
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	// A failed fetch is flashed and the last known list is shown.
	_ = s.stores.Tasks.ListTasks(r.Context())
	s.render(w, http.StatusOK, "dashboard", page{Title: "Dashboard", Board: s.stores.Tasks.Board()})
}

func (s *Server) newTask(w http.ResponseWriter, r *http.Request) {
	form := editorForm{Heading: "New task", Action: "/tasks", Status: string(service.StatusTodo)}
	s.render(w, http.StatusOK, "editor", page{Title: "New task", Form: form})
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	form, in, ok := s.parseEditor(w, r)
	if !ok {
		return
	}
	form.Heading, form.Action = "New task", "/tasks"

	if _, err := s.stores.Tasks.CreateTask(r.Context(), in); err != nil {
		s.render(w, http.StatusUnprocessableEntity, "editor", page{Title: "New task", Form: form})
		return
	}
	http.Redirect(w, r, store.RouteDashboard, http.StatusSeeOther)
}

func (s *Server) editTask(w http.ResponseWriter, r *http.Request) {
	task, ok := s.stores.Tasks.GetTaskByID(r.Context(), chi.URLParam(r, "id"))
	if !ok {
		http.Redirect(w, r, store.RouteDashboard, http.StatusSeeOther)
		return
	}
	s.render(w, http.StatusOK, "editor", page{Title: "Edit task", Form: formFromTask(task)})
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	form, in, ok := s.parseEditor(w, r)
	if !ok {
		return
	}
	form.Heading, form.Action = "Edit task", "/tasks/"+id

	if _, err := s.stores.Tasks.UpdateTask(r.Context(), id, in); err != nil {
		s.render(w, http.StatusUnprocessableEntity, "editor", page{Title: "Edit task", Form: form})
		return
	}
	http.Redirect(w, r, store.RouteDashboard, http.StatusSeeOther)
}

// moveTask changes only the status, sending every other field as the board has it.
func (s *Server) moveTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	status, err := service.ParseStatus(r.PostForm.Get("status"))
	if err != nil {
		s.flash.Notify(store.Notification{Level: store.LevelError, Message: "error updating task", Err: err})
		http.Redirect(w, r, store.RouteDashboard, http.StatusSeeOther)
		return
	}

	task, ok := s.localTask(id)
	if !ok {
		if task, ok = s.stores.Tasks.GetTaskByID(r.Context(), id); !ok {
			http.Redirect(w, r, store.RouteDashboard, http.StatusSeeOther)
			return
		}
	}

	in := task.Input()
	in.Status = status
	_, _ = s.stores.Tasks.UpdateTask(r.Context(), id, in)
	http.Redirect(w, r, store.RouteDashboard, http.StatusSeeOther)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request) {
	_ = s.stores.Tasks.DeleteTask(r.Context(), chi.URLParam(r, "id"))
	http.Redirect(w, r, store.RouteDashboard, http.StatusSeeOther)
}

func (s *Server) localTask(id string) (service.Task, bool) {
	for _, t := range s.stores.Tasks.Tasks() {
		if t.ID == id {
			return t, true
		}
	}
	return service.Task{}, false
}

// parseEditor reads the editor form. On a malformed status or date it
// re-renders the editor itself and returns false.
func (s *Server) parseEditor(w http.ResponseWriter, r *http.Request) (editorForm, service.TaskInput, bool) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return editorForm{}, service.TaskInput{}, false
	}

	form := editorForm{
		Title:       r.PostForm.Get("title"),
		Description: r.PostForm.Get("description"),
		Status:      r.PostForm.Get("status"),
		DueDate:     r.PostForm.Get("dueDate"),
	}

	status, err := service.ParseStatus(form.Status)
	if err == nil {
		var due service.Date
		if due, err = service.ParseDate(form.DueDate); err == nil {
			return form, service.TaskInput{
				Title:       strings.TrimSpace(form.Title),
				Description: form.Description,
				Status:      status,
				DueDate:     due,
			}, true
		}
	}

	s.flash.Notify(store.Notification{Level: store.LevelError, Message: "invalid task", Err: err})
	form.Heading, form.Action = "Edit task", r.URL.Path
	if r.URL.Path == "/tasks" {
		form.Heading = "New task"
	}
	s.render(w, http.StatusUnprocessableEntity, "editor", page{Title: form.Heading, Form: form})
	return editorForm{}, service.TaskInput{}, false
}
