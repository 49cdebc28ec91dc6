package store

import "taskboard/internal/service"

// Column is one status column of the board.
type Column struct {
	Status service.Status
	Tasks  []service.Task
}

// Board is the task list grouped by status in TODO, IN_PROGRESS, DONE order.
// Within a column tasks keep list order. Cards are numbered 1..n across columns.
type Board struct {
	Columns []Column
}

// NewBoard groups tasks by status. Tasks with an unknown status are dropped.
func NewBoard(tasks []service.Task) Board {
	b := Board{Columns: make([]Column, len(service.Statuses))}
	for i, st := range service.Statuses {
		b.Columns[i].Status = st
	}
	for _, t := range tasks {
		for i := range b.Columns {
			if b.Columns[i].Status == t.Status {
				b.Columns[i].Tasks = append(b.Columns[i].Tasks, t)
				break
			}
		}
	}
	return b
}

// Len returns the number of cards on the board.
func (b Board) Len() int {
	n := 0
	for _, c := range b.Columns {
		n += len(c.Tasks)
	}
	return n
}

// Card returns the task with board number num (1-based).
func (b Board) Card(num int) (service.Task, bool) {
	if num < 1 {
		return service.Task{}, false
	}
	for _, c := range b.Columns {
		if num <= len(c.Tasks) {
			return c.Tasks[num-1], true
		}
		num -= len(c.Tasks)
	}
	return service.Task{}, false
}
