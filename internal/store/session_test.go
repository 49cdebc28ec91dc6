package store_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"taskboard/internal/logging"
	"taskboard/internal/service"
	"taskboard/internal/store"
	"taskboard/internal/testutil"
)

func newStores(api *testutil.FakeAPI) (*store.Stores, *testutil.Notifications) {
	notes := &testutil.Notifications{}
	return store.New(api, notes, logging.Discard()), notes
}

func TestCheckSession_Authenticated(t *testing.T) {
	api := testutil.NewFakeAPI()
	api.AddUser("Ada", "ada@example.com", "secret")
	api.SignIn("ada@example.com")
	st, notes := newStores(api)

	if st.Session.State() != store.NotChecked {
		t.Fatalf("expected NotChecked before check, got %v", st.Session.State())
	}
	if !st.Session.Loading() {
		t.Error("expected loading before check")
	}

	if err := st.Session.CheckSession(context.Background()); err != nil {
		t.Fatalf("CheckSession failed: %v", err)
	}

	if st.Session.Loading() {
		t.Error("expected loading cleared after check")
	}
	if !st.Session.Authenticated() {
		t.Error("expected authenticated")
	}
	user, ok := st.Session.User()
	if !ok || user.Email != "ada@example.com" {
		t.Errorf("unexpected user %+v (ok=%v)", user, ok)
	}
	if notes.Len() != 0 {
		t.Errorf("session check should not notify, got %d notifications", notes.Len())
	}
}

func TestCheckSession_FailureIsUnauthenticated(t *testing.T) {
	api := testutil.NewFakeAPI()
	api.CheckAuthErr = errors.New("connection refused")
	st, _ := newStores(api)

	err := st.Session.CheckSession(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	if st.Session.Authenticated() {
		t.Error("expected unauthenticated after failed check")
	}
	if st.Session.State() != store.Resolved {
		t.Errorf("expected Resolved after failure, got %v", st.Session.State())
	}
}

func TestLogin_ValidCredentials(t *testing.T) {
	api := testutil.NewFakeAPI()
	api.AddUser("Ada", "ada@example.com", "secret")
	st, notes := newStores(api)

	if err := st.Session.Login(context.Background(), "ada@example.com", "secret"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if !st.Session.Authenticated() {
		t.Error("expected authenticated after login")
	}
	route, ok := st.Nav.Take()
	if !ok || route != store.RouteDashboard {
		t.Errorf("expected navigation to %s, got %q (ok=%v)", store.RouteDashboard, route, ok)
	}
	last, _ := notes.Last()
	if last.Level != store.LevelSuccess {
		t.Errorf("expected success notification, got %+v", last)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	api := testutil.NewFakeAPI()
	api.AddUser("Ada", "ada@example.com", "secret")
	st, notes := newStores(api)

	err := st.Session.Login(context.Background(), "ada@example.com", "wrong")
	if !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	if st.Session.Authenticated() {
		t.Error("expected unauthenticated after failed login")
	}
	if _, ok := st.Nav.Take(); ok {
		t.Error("expected no navigation after failed login")
	}
	last, _ := notes.Last()
	if last.Level != store.LevelError || last.Message != "login failed" {
		t.Errorf("expected login failed notification, got %+v", last)
	}
	if api.CallCount("Login") != 1 {
		t.Errorf("expected exactly one login attempt, got %d", api.CallCount("Login"))
	}
}

func TestLogout_Success(t *testing.T) {
	api := testutil.NewFakeAPI()
	api.AddUser("Ada", "ada@example.com", "secret")
	st, _ := newStores(api)
	if err := st.Session.Login(context.Background(), "ada@example.com", "secret"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	st.Nav.Take()

	if err := st.Session.Logout(context.Background()); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	if st.Session.Authenticated() {
		t.Error("expected unauthenticated after logout")
	}
	if _, ok := st.Session.User(); ok {
		t.Error("expected user cleared after logout")
	}
	if route, _ := st.Nav.Take(); route != store.RouteHome {
		t.Errorf("expected navigation to %s, got %q", store.RouteHome, route)
	}
}

func TestLogout_FailureKeepsLocalState(t *testing.T) {
	api := testutil.NewFakeAPI()
	api.AddUser("Ada", "ada@example.com", "secret")
	st, notes := newStores(api)
	if err := st.Session.Login(context.Background(), "ada@example.com", "secret"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	st.Nav.Take()
	api.LogoutErr = errors.New("503 service unavailable")

	if err := st.Session.Logout(context.Background()); err == nil {
		t.Fatal("expected logout error")
	}

	if !st.Session.Authenticated() {
		t.Error("expected session to stay authenticated after failed logout")
	}
	if _, ok := st.Nav.Take(); ok {
		t.Error("expected no navigation after failed logout")
	}
	last, _ := notes.Last()
	if last.Level != store.LevelError {
		t.Errorf("expected error notification, got %+v", last)
	}
}

func TestRegister_DoesNotAuthenticate(t *testing.T) {
	api := testutil.NewFakeAPI()
	st, _ := newStores(api)

	if err := st.Session.Register(context.Background(), "Ada", "ada@example.com", "secret"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if st.Session.Authenticated() {
		t.Error("register must not authenticate")
	}
	if api.LoggedIn() {
		t.Error("register must not open a server session")
	}
	if route, _ := st.Nav.Take(); route != store.RouteLogin {
		t.Errorf("expected navigation to %s, got %q", store.RouteLogin, route)
	}
}

func TestRegister_Failure(t *testing.T) {
	api := testutil.NewFakeAPI()
	api.RegisterErr = errors.New("email taken")
	st, notes := newStores(api)

	if err := st.Session.Register(context.Background(), "Ada", "ada@example.com", "secret"); err == nil {
		t.Fatal("expected error")
	}
	if _, ok := st.Nav.Take(); ok {
		t.Error("expected no navigation")
	}
	last, _ := notes.Last()
	if last.Message != "registration failed" {
		t.Errorf("unexpected notification %+v", last)
	}
}

// staleCheckAPI answers CheckAuth with the server state at call time but
// holds the reply until released.
type staleCheckAPI struct {
	*testutil.FakeAPI
	entered chan struct{}
	release chan struct{}
}

func (a staleCheckAPI) CheckAuth(ctx context.Context) (service.User, error) {
	user, err := a.FakeAPI.CheckAuth(ctx)
	a.entered <- struct{}{}
	<-a.release
	return user, err
}

func TestCheckSession_LateReplyDoesNotUndoLogin(t *testing.T) {
	fake := testutil.NewFakeAPI()
	fake.AddUser("Ada", "ada@example.com", "secret")
	api := staleCheckAPI{FakeAPI: fake, entered: make(chan struct{}), release: make(chan struct{})}
	st := store.New(api, &testutil.Notifications{}, logging.Discard())

	done := make(chan error, 1)
	go func() { done <- st.Session.CheckSession(context.Background()) }()
	<-api.entered

	if err := st.Session.Login(context.Background(), "ada@example.com", "secret"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	close(api.release)
	if err := <-done; err != nil {
		t.Errorf("expected superseded check to report nothing, got %v", err)
	}

	if !st.Session.Authenticated() {
		t.Error("expected login to survive the earlier session check")
	}
	if st.Session.State() != store.Resolved {
		t.Errorf("expected Resolved, got %v", st.Session.State())
	}
}

func TestLogin_ContextNavigator(t *testing.T) {
	api := testutil.NewFakeAPI()
	api.AddUser("Ada", "ada@example.com", "secret")
	st, _ := newStores(api)

	nav := &store.RouteRecorder{}
	ctx := store.WithNavigator(context.Background(), nav)
	if err := st.Session.Login(ctx, "ada@example.com", "secret"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if route, ok := nav.Take(); !ok || route != store.RouteDashboard {
		t.Errorf("expected %s on the context navigator, got %q (ok=%v)", store.RouteDashboard, route, ok)
	}
	if _, ok := st.Nav.Take(); ok {
		t.Error("expected the shared navigator untouched")
	}
}

func TestFailures_LoggedAtDebugOnly(t *testing.T) {
	var buf bytes.Buffer
	api := testutil.NewFakeAPI()
	api.ListTasksErr = errors.New("network down")
	st := store.New(api, &testutil.Notifications{}, logging.New(&buf, false))

	_ = st.Session.Login(context.Background(), "nobody@example.com", "x")
	_ = st.Tasks.ListTasks(context.Background())

	if buf.Len() != 0 {
		t.Errorf("expected store failures hidden without --debug, got %q", buf.String())
	}

	st = store.New(api, &testutil.Notifications{}, logging.New(&buf, true))
	_ = st.Tasks.ListTasks(context.Background())
	if !strings.Contains(buf.String(), "error fetching tasks") {
		t.Errorf("expected failure in debug log, got %q", buf.String())
	}
}
