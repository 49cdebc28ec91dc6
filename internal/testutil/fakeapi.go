// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskboard/internal/service"
	"taskboard/internal/store"
)

// FakeAPI is an in-memory implementation of service.API for testing.
// It behaves like the REST backend: a cookie-less session flag, server-assigned
// IDs and timestamps, and ErrNotFound for unknown tasks.
type FakeAPI struct {
	mu       sync.RWMutex
	users    map[string]fakeUser // email -> user
	loggedIn *service.User
	tasks    []service.Task
	now      func() time.Time

	// Error injection for testing
	CheckAuthErr  error
	LoginErr      error
	LogoutErr     error
	RegisterErr   error
	ListTasksErr  error
	GetTaskErr    error
	CreateTaskErr error
	UpdateTaskErr error
	DeleteTaskErr error

	// Calls counts backend calls by operation name.
	Calls map[string]int
}

type fakeUser struct {
	user     service.User
	password string
}

// NewFakeAPI creates an empty FakeAPI with no users and no session.
func NewFakeAPI() *FakeAPI {
	return &FakeAPI{
		users: make(map[string]fakeUser),
		now:   func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) },
		Calls: make(map[string]int),
	}
}

// AddUser registers a user directly.
func (f *FakeAPI) AddUser(name, email, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[email] = fakeUser{
		user:     service.User{ID: uuid.NewString(), Name: name, Email: email},
		password: password,
	}
}

// SignIn marks the user with email as logged in, as if a cookie were present.
func (f *FakeAPI) SignIn(email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[email]; ok {
		user := u.user
		f.loggedIn = &user
	}
}

// LoggedIn reports whether the fake server holds a session.
func (f *FakeAPI) LoggedIn() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.loggedIn != nil
}

// AddTask stores a task as if it had been created earlier.
func (f *FakeAPI) AddTask(id, title string, status service.Status) service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := service.Task{
		ID:        id,
		Title:     title,
		Status:    status,
		CreatedAt: f.now(),
		UpdatedAt: f.now(),
	}
	f.tasks = append(f.tasks, t)
	return t
}

// ServerTasks returns the server-side task list.
func (f *FakeAPI) ServerTasks() []service.Task {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]service.Task, len(f.tasks))
	copy(out, f.tasks)
	return out
}

func (f *FakeAPI) record(op string) {
	f.mu.Lock()
	f.Calls[op]++
	f.mu.Unlock()
}

// CallCount returns how many times op was called.
func (f *FakeAPI) CallCount(op string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.Calls[op]
}

// CheckAuth implements service.API.
func (f *FakeAPI) CheckAuth(ctx context.Context) (service.User, error) {
	f.record("CheckAuth")
	if f.CheckAuthErr != nil {
		return service.User{}, f.CheckAuthErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.loggedIn == nil {
		return service.User{}, service.ErrUnauthorized
	}
	return *f.loggedIn, nil
}

// Login implements service.API.
func (f *FakeAPI) Login(ctx context.Context, email, password string) (service.User, error) {
	f.record("Login")
	if f.LoginErr != nil {
		return service.User{}, f.LoginErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[email]
	if !ok || u.password != password {
		return service.User{}, service.ErrUnauthorized
	}
	user := u.user
	f.loggedIn = &user
	return user, nil
}

// Logout implements service.API.
func (f *FakeAPI) Logout(ctx context.Context) error {
	f.record("Logout")
	if f.LogoutErr != nil {
		return f.LogoutErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loggedIn = nil
	return nil
}

// Register implements service.API.
func (f *FakeAPI) Register(ctx context.Context, name, email, password string) error {
	f.record("Register")
	if f.RegisterErr != nil {
		return f.RegisterErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[email] = fakeUser{
		user:     service.User{ID: uuid.NewString(), Name: name, Email: email},
		password: password,
	}
	return nil
}

// ListTasks implements service.API.
func (f *FakeAPI) ListTasks(ctx context.Context) ([]service.Task, error) {
	f.record("ListTasks")
	if f.ListTasksErr != nil {
		return nil, f.ListTasksErr
	}
	return f.ServerTasks(), nil
}

// GetTask implements service.API.
func (f *FakeAPI) GetTask(ctx context.Context, id string) (service.Task, error) {
	f.record("GetTask")
	if f.GetTaskErr != nil {
		return service.Task{}, f.GetTaskErr
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, t := range f.tasks {
		if t.ID == id {
			return t, nil
		}
	}
	return service.Task{}, service.ErrNotFound
}

// CreateTask implements service.API.
func (f *FakeAPI) CreateTask(ctx context.Context, in service.TaskInput) (service.Task, error) {
	f.record("CreateTask")
	if f.CreateTaskErr != nil {
		return service.Task{}, f.CreateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	t := service.Task{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		DueDate:     in.DueDate,
		CreatedAt:   f.now(),
		UpdatedAt:   f.now(),
	}
	f.tasks = append(f.tasks, t)
	return t, nil
}

// UpdateTask implements service.API.
func (f *FakeAPI) UpdateTask(ctx context.Context, id string, in service.TaskInput) (service.Task, error) {
	f.record("UpdateTask")
	if f.UpdateTaskErr != nil {
		return service.Task{}, f.UpdateTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			t.Title = in.Title
			t.Description = in.Description
			t.Status = in.Status
			t.DueDate = in.DueDate
			t.UpdatedAt = f.now().Add(time.Minute)
			f.tasks[i] = t
			return t, nil
		}
	}
	return service.Task{}, service.ErrNotFound
}

// DeleteTask implements service.API.
func (f *FakeAPI) DeleteTask(ctx context.Context, id string) error {
	f.record("DeleteTask")
	if f.DeleteTaskErr != nil {
		return f.DeleteTaskErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return service.ErrNotFound
}

// Notifications is a store.Notifier that records everything it receives.
type Notifications struct {
	mu   sync.Mutex
	list []store.Notification
}

// Notify implements store.Notifier.
func (n *Notifications) Notify(note store.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.list = append(n.list, note)
}

// Last returns the latest notification.
func (n *Notifications) Last() (store.Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.list) == 0 {
		return store.Notification{}, false
	}
	return n.list[len(n.list)-1], true
}

// Len returns the number of notifications recorded.
func (n *Notifications) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.list)
}
