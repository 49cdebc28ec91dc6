// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"taskboard/internal/service"
	"taskboard/internal/store"
)

const (
	// ColumnSeparator is the separator line around column headers.
	ColumnSeparator = "------------"
)

// FormatBoard prints every status column with numbered cards.
// Format per card: "{N:>4}  {TITLE}[  (due YYYY-MM-DD)]\n".
func FormatBoard(w io.Writer, board store.Board) {
	num := 1
	for _, col := range board.Columns {
		FormatColumnHeader(w, col.Status, len(col.Tasks))
		if len(col.Tasks) == 0 {
			fmt.Fprintln(w, "      (none)")
		}
		for _, task := range col.Tasks {
			FormatCard(w, num, task)
			num++
		}
	}
}

// FormatColumnHeader formats a status column header.
func FormatColumnHeader(w io.Writer, status service.Status, count int) {
	fmt.Fprintln(w, ColumnSeparator)
	fmt.Fprintf(w, "%s (%d)\n", status, count)
	fmt.Fprintln(w, ColumnSeparator)
}

// FormatCard formats one board card.
func FormatCard(w io.Writer, num int, task service.Task) {
	title := normalizeTitle(task.Title)
	if due := task.DueDate.String(); due != "" {
		fmt.Fprintf(w, "%4d  %s  (due %s)\n", num, title, due)
		return
	}
	fmt.Fprintf(w, "%4d  %s\n", num, title)
}

// FormatTaskDetail prints every field of a task.
func FormatTaskDetail(w io.Writer, task service.Task) {
	fmt.Fprintf(w, "id:          %s\n", task.ID)
	fmt.Fprintf(w, "title:       %s\n", normalizeTitle(task.Title))
	fmt.Fprintf(w, "status:      %s\n", task.Status)
	fmt.Fprintf(w, "due:         %s\n", orDash(task.DueDate.String()))
	if !task.CreatedAt.IsZero() {
		fmt.Fprintf(w, "created:     %s\n", task.CreatedAt.Format("2006-01-02 15:04"))
	}
	if !task.UpdatedAt.IsZero() {
		fmt.Fprintf(w, "updated:     %s\n", task.UpdatedAt.Format("2006-01-02 15:04"))
	}
	if desc := strings.TrimSpace(task.Description); desc != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, desc)
	}
}

// FormatUser prints the current user.
func FormatUser(w io.Writer, user service.User) {
	name := user.DisplayName()
	if user.Email != "" && user.Email != name {
		fmt.Fprintf(w, "%s <%s>\n", name, user.Email)
		return
	}
	fmt.Fprintln(w, name)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
