package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"taskboard/internal/exitcode"
	"taskboard/internal/service"
	"taskboard/internal/store"
)

// TaskRef represents a parsed task reference.
// Exactly one of Num and ID is set.
type TaskRef struct {
	Num int    // 1-based board number
	ID  string // task ID or a unique ID prefix
}

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses the task reference in args[0].
// All digits is a board number; anything else is an ID or ID prefix.
func ParseTaskRef(args []string) (TaskRef, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return TaskRef{}, ErrTaskRefRequired
	}

	ref := strings.TrimSpace(args[0])
	if isAllDigits(ref) {
		num, err := strconv.Atoi(ref)
		if err != nil {
			return TaskRef{}, fmt.Errorf("invalid task reference: %s", ref)
		}
		if num < 1 {
			return TaskRef{}, fmt.Errorf("task number out of range: %d", num)
		}
		return TaskRef{Num: num}, nil
	}
	return TaskRef{ID: ref}, nil
}

func (r TaskRef) String() string {
	if r.ID != "" {
		return r.ID
	}
	return strconv.Itoa(r.Num)
}

// Resolve finds the referenced task on board.
// An ID matches exactly first, then as a prefix of exactly one task.
func (r TaskRef) Resolve(board store.Board) (service.Task, error) {
	if r.ID == "" {
		task, ok := board.Card(r.Num)
		if !ok {
			return service.Task{}, fmt.Errorf("task number out of range: %d", r.Num)
		}
		return task, nil
	}

	var matches []service.Task
	for _, col := range board.Columns {
		for _, task := range col.Tasks {
			if task.ID == r.ID {
				return task, nil
			}
			if strings.HasPrefix(task.ID, r.ID) {
				matches = append(matches, task)
			}
		}
	}
	switch len(matches) {
	case 0:
		return service.Task{}, fmt.Errorf("task not found: %s", r.ID)
	case 1:
		return matches[0], nil
	default:
		return service.Task{}, fmt.Errorf("ambiguous task reference: %s", r.ID)
	}
}

// findTask parses args[0], loads the board and resolves the reference.
// The returned code is exitcode.Success when task is valid.
func findTask(ctx context.Context, st *store.Stores, args []string, errOut io.Writer) (service.Task, int) {
	ref, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return service.Task{}, exitcode.UserError
	}

	if err := st.Tasks.ListTasks(ctx); err != nil {
		return service.Task{}, ExitCode(err)
	}

	task, err := ref.Resolve(st.Tasks.Board())
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return service.Task{}, exitcode.UserError
	}
	return task, exitcode.Success
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
