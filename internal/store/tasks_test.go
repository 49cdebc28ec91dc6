package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskboard/internal/logging"
	"taskboard/internal/service"
	"taskboard/internal/store"
	"taskboard/internal/testutil"
)

func countID(tasks []service.Task, id string) int {
	n := 0
	for _, t := range tasks {
		if t.ID == id {
			n++
		}
	}
	return n
}

func TestListTasks_ReplacesList(t *testing.T) {
	api := testutil.NewFakeAPI()
	api.AddTask("t1", "One", service.StatusTodo)
	api.AddTask("t2", "Two", service.StatusDone)
	st, _ := newStores(api)

	if err := st.Tasks.ListTasks(context.Background()); err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if got := len(st.Tasks.Tasks()); got != 2 {
		t.Fatalf("expected 2 tasks, got %d", got)
	}
	if st.Tasks.Loading() {
		t.Error("expected loading cleared")
	}

	if err := api.DeleteTask(context.Background(), "t1"); err != nil {
		t.Fatalf("server delete failed: %v", err)
	}
	if err := st.Tasks.ListTasks(context.Background()); err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	tasks := st.Tasks.Tasks()
	if len(tasks) != 1 || tasks[0].ID != "t2" {
		t.Errorf("expected list replaced wholesale, got %+v", tasks)
	}
}

func TestListTasks_FailureKeepsLastKnownGood(t *testing.T) {
	api := testutil.NewFakeAPI()
	api.AddTask("t1", "One", service.StatusTodo)
	st, notes := newStores(api)
	if err := st.Tasks.ListTasks(context.Background()); err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}

	api.ListTasksErr = errors.New("network down")
	if err := st.Tasks.ListTasks(context.Background()); err == nil {
		t.Fatal("expected error")
	}

	if got := len(st.Tasks.Tasks()); got != 1 {
		t.Errorf("expected previous list kept, got %d tasks", got)
	}
	if st.Tasks.Loading() {
		t.Error("expected loading cleared after failure")
	}
	last, _ := notes.Last()
	if last.Message != "error fetching tasks" {
		t.Errorf("unexpected notification %+v", last)
	}
}

func TestCreateTask_AppendsServerRecord(t *testing.T) {
	api := testutil.NewFakeAPI()
	api.AddTask("t1", "Existing", service.StatusDone)
	st, notes := newStores(api)
	if err := st.Tasks.ListTasks(context.Background()); err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}

	created, err := st.Tasks.CreateTask(context.Background(), service.TaskInput{
		Title:   "Write report",
		Status:  service.StatusTodo,
		DueDate: service.NewDate(2024, time.June, 1),
	})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	if created.ID == "" {
		t.Fatal("expected server-assigned id")
	}
	tasks := st.Tasks.Tasks()
	if len(tasks) != 2 {
		t.Fatalf("expected list to grow by one, got %d", len(tasks))
	}
	if countID(tasks, created.ID) != 1 {
		t.Errorf("expected id %s exactly once", created.ID)
	}
	last := tasks[1]
	if last.Title != "Write report" || last.Status != service.StatusTodo || last.DueDate.String() != "2024-06-01" {
		t.Errorf("unexpected appended task %+v", last)
	}
	note, _ := notes.Last()
	if note.Level != store.LevelSuccess || note.Message != "task created" {
		t.Errorf("unexpected notification %+v", note)
	}
}

// dupAPI returns an already-listed id on create.
type dupAPI struct {
	*testutil.FakeAPI
}

func (d dupAPI) CreateTask(ctx context.Context, in service.TaskInput) (service.Task, error) {
	return service.Task{ID: "t1", Title: in.Title, Status: in.Status}, nil
}

func TestCreateTask_DuplicateIDStaysUnique(t *testing.T) {
	api := testutil.NewFakeAPI()
	api.AddTask("t1", "Existing", service.StatusTodo)
	tasksStore := store.NewTaskStore(dupAPI{api}, &testutil.Notifications{}, logging.Discard())
	if err := tasksStore.ListTasks(context.Background()); err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}

	if _, err := tasksStore.CreateTask(context.Background(), service.TaskInput{Title: "Again", Status: service.StatusTodo}); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	tasks := tasksStore.Tasks()
	if len(tasks) != 1 || countID(tasks, "t1") != 1 {
		t.Errorf("expected single t1 entry, got %+v", tasks)
	}
	if tasks[0].Title != "Again" {
		t.Errorf("expected entry replaced by server record, got %q", tasks[0].Title)
	}
}

func TestCreateTask_FailureLeavesList(t *testing.T) {
	api := testutil.NewFakeAPI()
	api.CreateTaskErr = errors.New("500 internal error")
	st, notes := newStores(api)

	if _, err := st.Tasks.CreateTask(context.Background(), service.TaskInput{Title: "x", Status: service.StatusTodo}); err == nil {
		t.Fatal("expected error")
	}
	if len(st.Tasks.Tasks()) != 0 {
		t.Error("expected list unchanged")
	}
	note, _ := notes.Last()
	if note.Level != store.LevelError || note.Message != "error creating task" {
		t.Errorf("unexpected notification %+v", note)
	}
}

func TestCreateTask_ValidationSkipsServer(t *testing.T) {
	api := testutil.NewFakeAPI()
	st, _ := newStores(api)

	_, err := st.Tasks.CreateTask(context.Background(), service.TaskInput{Title: " ", Status: service.StatusTodo})
	if !errors.Is(err, service.ErrTitleRequired) {
		t.Fatalf("expected ErrTitleRequired, got %v", err)
	}
	if api.CallCount("CreateTask") != 0 {
		t.Error("expected no backend call for invalid input")
	}
}

func TestUpdateTask_ReplacesInPlace(t *testing.T) {
	api := testutil.NewFakeAPI()
	api.AddTask("t1", "One", service.StatusTodo)
	api.AddTask("t2", "Two", service.StatusTodo)
	api.AddTask("t3", "Three", service.StatusTodo)
	st, _ := newStores(api)
	if err := st.Tasks.ListTasks(context.Background()); err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	before := st.Tasks.Tasks()

	in := before[1].Input()
	in.Status = service.StatusInProgress
	if _, err := st.Tasks.UpdateTask(context.Background(), "t2", in); err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}

	after := st.Tasks.Tasks()
	if len(after) != len(before) {
		t.Fatalf("expected length unchanged, got %d", len(after))
	}
	for i := range after {
		if after[i].ID != before[i].ID {
			t.Errorf("order changed at %d: %s vs %s", i, after[i].ID, before[i].ID)
		}
	}
	got := after[1]
	if got.Status != service.StatusInProgress {
		t.Errorf("expected IN_PROGRESS, got %s", got.Status)
	}
	if got.Title != before[1].Title || got.Description != before[1].Description || !got.DueDate.Equal(before[1].DueDate.Time) {
		t.Errorf("expected other fields unchanged, got %+v", got)
	}
}

func TestUpdateTask_FailureLeavesEntry(t *testing.T) {
	api := testutil.NewFakeAPI()
	api.AddTask("t1", "One", service.StatusTodo)
	st, _ := newStores(api)
	if err := st.Tasks.ListTasks(context.Background()); err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	api.UpdateTaskErr = errors.New("boom")

	if _, err := st.Tasks.UpdateTask(context.Background(), "t1", service.TaskInput{Title: "Changed", Status: service.StatusDone}); err == nil {
		t.Fatal("expected error")
	}
	if got := st.Tasks.Tasks()[0]; got.Title != "One" || got.Status != service.StatusTodo {
		t.Errorf("expected entry unchanged, got %+v", got)
	}
}

func TestDeleteTask_RemovesEntry(t *testing.T) {
	api := testutil.NewFakeAPI()
	api.AddTask("t1", "One", service.StatusTodo)
	api.AddTask("t2", "Two", service.StatusTodo)
	st, _ := newStores(api)
	if err := st.Tasks.ListTasks(context.Background()); err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}

	if err := st.Tasks.DeleteTask(context.Background(), "t1"); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}

	tasks := st.Tasks.Tasks()
	if countID(tasks, "t1") != 0 {
		t.Error("expected t1 removed")
	}
	if len(tasks) != 1 {
		t.Errorf("expected 1 task left, got %d", len(tasks))
	}
}

func TestDeleteTask_FailureKeepsEntry(t *testing.T) {
	api := testutil.NewFakeAPI()
	api.AddTask("t1", "One", service.StatusTodo)
	st, _ := newStores(api)
	if err := st.Tasks.ListTasks(context.Background()); err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	api.DeleteTaskErr = errors.New("boom")

	if err := st.Tasks.DeleteTask(context.Background(), "t1"); err == nil {
		t.Fatal("expected error")
	}
	if len(st.Tasks.Tasks()) != 1 {
		t.Error("expected entry kept")
	}
}

func TestGetTaskByID_DoesNotMutateList(t *testing.T) {
	api := testutil.NewFakeAPI()
	api.AddTask("t1", "One", service.StatusTodo)
	st, notes := newStores(api)

	task, ok := st.Tasks.GetTaskByID(context.Background(), "t1")
	if !ok || task.Title != "One" {
		t.Fatalf("expected task One, got %+v (ok=%v)", task, ok)
	}
	if len(st.Tasks.Tasks()) != 0 {
		t.Error("GetTaskByID must not populate the list")
	}

	if _, ok := st.Tasks.GetTaskByID(context.Background(), "missing"); ok {
		t.Error("expected not found")
	}
	note, _ := notes.Last()
	if note.Message != "error fetching task" {
		t.Errorf("unexpected notification %+v", note)
	}
}

func TestSubscribe_NotifiedOnChange(t *testing.T) {
	api := testutil.NewFakeAPI()
	st, _ := newStores(api)

	var seen []int
	unsubscribe := st.Tasks.Subscribe(func(tasks []service.Task) {
		seen = append(seen, len(tasks))
	})

	ctx := context.Background()
	created, err := st.Tasks.CreateTask(ctx, service.TaskInput{Title: "a", Status: service.StatusTodo})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if err := st.Tasks.DeleteTask(ctx, created.ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	unsubscribe()
	if _, err := st.Tasks.CreateTask(ctx, service.TaskInput{Title: "b", Status: service.StatusTodo}); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	if len(seen) != 2 || seen[0] != 1 || seen[1] != 0 {
		t.Errorf("unexpected listener calls %v", seen)
	}
}

func TestBoard_GroupsAndNumbers(t *testing.T) {
	board := store.NewBoard([]service.Task{
		{ID: "a", Status: service.StatusDone},
		{ID: "b", Status: service.StatusTodo},
		{ID: "c", Status: service.StatusInProgress},
		{ID: "d", Status: service.StatusTodo},
	})

	if board.Len() != 4 {
		t.Fatalf("expected 4 cards, got %d", board.Len())
	}
	want := []string{"b", "d", "c", "a"}
	for i, id := range want {
		card, ok := board.Card(i + 1)
		if !ok || card.ID != id {
			t.Errorf("card %d: expected %s, got %+v (ok=%v)", i+1, id, card, ok)
		}
	}
	if _, ok := board.Card(5); ok {
		t.Error("expected card 5 out of range")
	}
	if _, ok := board.Card(0); ok {
		t.Error("expected card 0 out of range")
	}
}
