package web

import (
	"embed"
	"html/template"
	"net/http"

	"taskboard/internal/service"
	"taskboard/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"home", "login", "signup", "dashboard", "editor", "waiting"}

// pages maps a page name to its template set, each parsed with the layout.
type pages map[string]*template.Template

func mustParsePages() pages {
	p := make(pages, len(pageNames))
	for _, name := range pageNames {
		p[name] = template.Must(template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html"))
	}
	return p
}

// page is the data every template receives.
type page struct {
	Title    string
	User     string
	Refresh  bool
	Flash    []flashMessage
	Board    store.Board
	Statuses []service.Status
	Form     editorForm
}

// editorForm holds the task editor's field values as submitted.
type editorForm struct {
	Heading     string
	Action      string
	Title       string
	Description string
	Status      string
	DueDate     string
}

func formFromTask(t service.Task) editorForm {
	return editorForm{
		Heading:     "Edit task",
		Action:      "/tasks/" + t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		DueDate:     t.DueDate.String(),
	}
}

func (s *Server) render(w http.ResponseWriter, status int, name string, p page) {
	tmpl, ok := s.pages[name]
	if !ok {
		http.Error(w, "unknown page", http.StatusInternalServerError)
		return
	}

	p.Flash = s.flash.take()
	p.Statuses = service.Statuses
	if !s.stores.Session.Loading() && s.stores.Session.Authenticated() {
		if user, ok := s.stores.Session.User(); ok {
			p.User = user.DisplayName()
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "layout", p); err != nil {
		s.logger.Error("render_failed", "page", name, "error", err)
	}
}
