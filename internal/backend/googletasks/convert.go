package googletasks

import (
	"strings"
	"time"

	tasks "google.golang.org/api/tasks/v1"

	"taskboard/internal/service"
)

// Google task status values.
const (
	statusNeedsAction = "needsAction"
	statusCompleted   = "completed"
)

// inProgressMarker is the first notes line of a task that is IN_PROGRESS.
// Google Tasks only knows open and completed.
const inProgressMarker = "[in progress]"

func fromGoogle(t *tasks.Task) service.Task {
	out := service.Task{
		ID:     t.Id,
		Title:  t.Title,
		Status: service.StatusTodo,
	}

	notes := t.Notes
	if first, rest, _ := strings.Cut(notes, "\n"); strings.TrimSpace(first) == inProgressMarker {
		out.Status = service.StatusInProgress
		notes = rest
	}
	out.Description = notes

	if t.Status == statusCompleted {
		out.Status = service.StatusDone
	}
	if due, err := time.Parse(time.RFC3339, t.Due); err == nil {
		due = due.UTC()
		out.DueDate = service.NewDate(due.Year(), due.Month(), due.Day())
	}
	if updated, err := time.Parse(time.RFC3339, t.Updated); err == nil {
		out.UpdatedAt = updated
	}
	return out
}

func toGoogle(in service.TaskInput) *tasks.Task {
	t := &tasks.Task{
		Title:  in.Title,
		Notes:  in.Description,
		Status: statusNeedsAction,
	}
	switch in.Status {
	case service.StatusDone:
		t.Status = statusCompleted
	case service.StatusInProgress:
		t.Notes = inProgressMarker
		if in.Description != "" {
			t.Notes += "\n" + in.Description
		}
	}
	if !in.DueDate.IsZero() {
		t.Due = in.DueDate.Format(time.RFC3339)
	}
	return t
}
