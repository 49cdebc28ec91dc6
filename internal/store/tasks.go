package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"taskboard/internal/service"
)

// TaskStore mirrors the current user's task list.
// Mutations are applied locally from the server response; the list is only
// refetched wholesale by ListTasks. There is no conflict detection: the last
// response applied wins.
type TaskStore struct {
	api    service.API
	notify Notifier
	logger *slog.Logger

	mu      sync.RWMutex
	tasks   []service.Task
	loading bool

	subMu     sync.Mutex
	nextSub   int
	listeners map[int]func([]service.Task)
}

// NewTaskStore creates an empty task store.
func NewTaskStore(api service.API, notify Notifier, logger *slog.Logger) *TaskStore {
	return &TaskStore{
		api:       api,
		notify:    notify,
		logger:    logger,
		listeners: make(map[int]func([]service.Task)),
	}
}

// Tasks returns a copy of the task list.
func (s *TaskStore) Tasks() []service.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneTasks(s.tasks)
}

// Loading reports whether a ListTasks call is in flight.
func (s *TaskStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Board groups the current list by status.
func (s *TaskStore) Board() Board {
	return NewBoard(s.Tasks())
}

// Subscribe registers fn to be called with a snapshot after every list change.
// The returned function removes the listener.
func (s *TaskStore) Subscribe(fn func([]service.Task)) func() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.listeners[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *TaskStore) publish() {
	snapshot := s.Tasks()
	s.subMu.Lock()
	fns := make([]func([]service.Task), 0, len(s.listeners))
	for _, fn := range s.listeners {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn(snapshot)
	}
}

// ListTasks fetches the full collection and replaces the local list.
func (s *TaskStore) ListTasks(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	tasks, err := s.api.ListTasks(ctx)

	s.mu.Lock()
	s.loading = false
	if err == nil {
		s.tasks = cloneTasks(tasks)
	}
	s.mu.Unlock()

	if err != nil {
		s.fail("error fetching tasks", err)
		return err
	}
	s.publish()
	return nil
}

// GetTaskByID fetches one task without touching the local list.
// The bool is false when the task was not found or the call failed.
func (s *TaskStore) GetTaskByID(ctx context.Context, id string) (service.Task, bool) {
	task, err := s.api.GetTask(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			s.logger.Debug("task not found", "id", id)
		}
		s.fail("error fetching task", err)
		return service.Task{}, false
	}
	return task, true
}

// CreateTask posts a new task and appends the server record.
func (s *TaskStore) CreateTask(ctx context.Context, in service.TaskInput) (service.Task, error) {
	if err := in.Validate(); err != nil {
		s.fail("error creating task", err)
		return service.Task{}, err
	}

	task, err := s.api.CreateTask(ctx, in)
	if err != nil {
		s.fail("error creating task", err)
		return service.Task{}, err
	}

	s.mu.Lock()
	if i := indexOf(s.tasks, task.ID); i >= 0 {
		s.tasks[i] = task
	} else {
		s.tasks = append(s.tasks, task)
	}
	s.mu.Unlock()

	s.succeed("task created")
	s.publish()
	return task, nil
}

// UpdateTask sends a full replacement and swaps the matching entry in place.
func (s *TaskStore) UpdateTask(ctx context.Context, id string, in service.TaskInput) (service.Task, error) {
	if err := in.Validate(); err != nil {
		s.fail("error updating task", err)
		return service.Task{}, err
	}

	task, err := s.api.UpdateTask(ctx, id, in)
	if err != nil {
		s.fail("error updating task", err)
		return service.Task{}, err
	}

	s.mu.Lock()
	if i := indexOf(s.tasks, id); i >= 0 {
		s.tasks[i] = task
	}
	s.mu.Unlock()

	s.succeed("task updated")
	s.publish()
	return task, nil
}

// DeleteTask deletes a task and removes it from the local list.
func (s *TaskStore) DeleteTask(ctx context.Context, id string) error {
	if err := s.api.DeleteTask(ctx, id); err != nil {
		s.fail("error deleting task", err)
		return err
	}

	s.mu.Lock()
	kept := s.tasks[:0]
	for _, t := range s.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.tasks = kept
	s.mu.Unlock()

	s.succeed("task deleted")
	s.publish()
	return nil
}

func (s *TaskStore) fail(msg string, err error) {
	s.logger.Debug(msg, "error", err)
	s.notify.Notify(Notification{Level: LevelError, Message: msg, Err: err})
}

func (s *TaskStore) succeed(msg string) {
	s.notify.Notify(Notification{Level: LevelSuccess, Message: msg})
}

func indexOf(tasks []service.Task, id string) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func cloneTasks(tasks []service.Task) []service.Task {
	if tasks == nil {
		return nil
	}
	out := make([]service.Task, len(tasks))
	copy(out, tasks)
	return out
}
