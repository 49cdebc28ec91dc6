package web_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"taskboard/internal/config"
	"taskboard/internal/logging"
	"taskboard/internal/service"
	"taskboard/internal/testutil"
	"taskboard/internal/web"
)

func testConfig() *config.Config {
	return &config.Config{
		Backend:    config.BackendREST,
		ServerURL:  config.DefaultServerURL,
		Timeout:    time.Second,
		ListenAddr: config.DefaultListenAddr,
	}
}

// newServer returns a dashboard over api with the session already checked.
func newServer(t *testing.T, api *testutil.FakeAPI) *web.Server {
	t.Helper()
	srv := web.New(testConfig(), api, logging.Discard())
	srv.CheckSession(context.Background())
	return srv
}

func loggedInAPI() *testutil.FakeAPI {
	api := testutil.NewFakeAPI()
	api.AddUser("Ada", "ada@example.com", "secret")
	api.SignIn("ada@example.com")
	api.AddTask("t1", "Write report", service.StatusTodo)
	api.AddTask("t2", "Review PR", service.StatusDone)
	return api
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func post(t *testing.T, h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func expectRedirect(t *testing.T, rec *httptest.ResponseRecorder, location string) {
	t.Helper()
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d (body %q)", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Location"); got != location {
		t.Errorf("expected redirect to %q, got %q", location, got)
	}
}

func TestDashboard_WaitsWhileSessionLoading(t *testing.T) {
	srv := web.New(testConfig(), loggedInAPI(), logging.Discard())

	rec := get(t, srv.Handler(), "/dashboard")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Checking your session") {
		t.Error("expected waiting page while the session is unchecked")
	}
	if strings.Contains(rec.Body.String(), "Write report") {
		t.Error("tasks must not render before the session resolves")
	}
}

func TestDashboard_RedirectsWhenLoggedOut(t *testing.T) {
	api := loggedInAPI()
	api.CheckAuthErr = service.ErrUnauthorized
	srv := newServer(t, api)

	expectRedirect(t, get(t, srv.Handler(), "/dashboard"), "/")
	if api.CallCount("ListTasks") != 0 {
		t.Error("guarded handler should not run")
	}
}

func TestDashboard_RendersBoard(t *testing.T) {
	srv := newServer(t, loggedInAPI())

	rec := get(t, srv.Handler(), "/dashboard")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"TODO (1)", "IN_PROGRESS (0)", "DONE (1)", "Write report", "Review PR", "Ada"} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard is missing %q", want)
		}
	}
}

func TestDashboard_FetchErrorIsFlashed(t *testing.T) {
	api := loggedInAPI()
	api.ListTasksErr = errors.New("connection refused")
	srv := newServer(t, api)

	rec := get(t, srv.Handler(), "/dashboard")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "error fetching tasks: connection refused") {
		t.Error("expected fetch error in flash")
	}
}

func TestLogin_SuccessNavigatesToDashboard(t *testing.T) {
	api := testutil.NewFakeAPI()
	api.AddUser("Ada", "ada@example.com", "secret")
	srv := newServer(t, api)

	rec := post(t, srv.Handler(), "/login", url.Values{"email": {"ada@example.com"}, "password": {"secret"}})
	expectRedirect(t, rec, "/dashboard")

	page := get(t, srv.Handler(), "/dashboard")
	if page.Code != http.StatusOK {
		t.Fatalf("expected 200 after login, got %d", page.Code)
	}
	if !strings.Contains(page.Body.String(), "logged in as Ada") {
		t.Error("expected success flash after login")
	}
}

func TestLogin_FailureStaysOnLogin(t *testing.T) {
	api := testutil.NewFakeAPI()
	api.AddUser("Ada", "ada@example.com", "secret")
	srv := newServer(t, api)

	rec := post(t, srv.Handler(), "/login", url.Values{"email": {"ada@example.com"}, "password": {"wrong"}})
	expectRedirect(t, rec, "/login")

	page := get(t, srv.Handler(), "/login")
	if !strings.Contains(page.Body.String(), "login failed") {
		t.Error("expected error flash after failed login")
	}
	if srv.Stores().Session.Authenticated() {
		t.Error("session must stay unauthenticated")
	}
}

func TestLogin_RateLimited(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimitRPS = 0.001
	srv := web.New(cfg, testutil.NewFakeAPI(), logging.Discard())
	srv.CheckSession(context.Background())

	form := url.Values{"email": {"x@example.com"}, "password": {"x"}}
	var last *httptest.ResponseRecorder
	for i := 0; i < 6; i++ {
		last = post(t, srv.Handler(), "/login", form)
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst, got %d", last.Code)
	}
	if last.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
}

func TestSignup_NavigatesToLogin(t *testing.T) {
	api := testutil.NewFakeAPI()
	srv := newServer(t, api)

	rec := post(t, srv.Handler(), "/signup", url.Values{
		"name": {"Ada"}, "email": {"ada@example.com"}, "password": {"secret"},
	})
	expectRedirect(t, rec, "/login")

	if srv.Stores().Session.Authenticated() {
		t.Error("registration must not authenticate")
	}
	if _, err := api.Login(context.Background(), "ada@example.com", "secret"); err != nil {
		t.Errorf("registered user cannot log in: %v", err)
	}
}

func TestLogout(t *testing.T) {
	srv := newServer(t, loggedInAPI())

	expectRedirect(t, post(t, srv.Handler(), "/logout", nil), "/")
	if srv.Stores().Session.Authenticated() {
		t.Error("expected session cleared")
	}
	expectRedirect(t, get(t, srv.Handler(), "/dashboard"), "/")
}

func TestLogout_FailureKeepsSession(t *testing.T) {
	api := loggedInAPI()
	api.LogoutErr = errors.New("connection reset")
	srv := newServer(t, api)

	expectRedirect(t, post(t, srv.Handler(), "/logout", nil), "/dashboard")
	if !srv.Stores().Session.Authenticated() {
		t.Error("failed logout should leave the session as it was")
	}
}

func TestCreateTask(t *testing.T) {
	api := loggedInAPI()
	srv := newServer(t, api)

	rec := post(t, srv.Handler(), "/tasks", url.Values{
		"title": {"Plan sprint"}, "description": {"next week"}, "status": {"IN_PROGRESS"}, "dueDate": {"2024-06-01"},
	})
	expectRedirect(t, rec, "/dashboard")

	tasks := api.ServerTasks()
	created := tasks[len(tasks)-1]
	if created.Title != "Plan sprint" || created.Status != service.StatusInProgress {
		t.Errorf("unexpected task %+v", created)
	}
	if created.DueDate.String() != "2024-06-01" {
		t.Errorf("unexpected due date %q", created.DueDate.String())
	}
}

func TestCreateTask_BlankTitle(t *testing.T) {
	api := loggedInAPI()
	srv := newServer(t, api)

	rec := post(t, srv.Handler(), "/tasks", url.Values{"title": {"  "}, "status": {"TODO"}})

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "error creating task: title required") {
		t.Error("expected validation error in flash")
	}
	if api.CallCount("CreateTask") != 0 {
		t.Error("no request should be sent for a blank title")
	}
}

func TestCreateTask_BadDate(t *testing.T) {
	api := loggedInAPI()
	srv := newServer(t, api)

	rec := post(t, srv.Handler(), "/tasks", url.Values{"title": {"Plan"}, "status": {"TODO"}, "dueDate": {"soon"}})

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid task: invalid date: soon") {
		t.Error("expected date error in flash")
	}
	if !strings.Contains(rec.Body.String(), `value="Plan"`) {
		t.Error("expected submitted title to be kept")
	}
}

func TestEditTask(t *testing.T) {
	api := loggedInAPI()
	srv := newServer(t, api)

	page := get(t, srv.Handler(), "/tasks/t1/edit")
	if page.Code != http.StatusOK || !strings.Contains(page.Body.String(), `value="Write report"`) {
		t.Fatalf("expected editor with task values, got %d", page.Code)
	}

	rec := post(t, srv.Handler(), "/tasks/t1", url.Values{"title": {"Write final report"}, "status": {"TODO"}})
	expectRedirect(t, rec, "/dashboard")
	if got := api.ServerTasks()[0].Title; got != "Write final report" {
		t.Errorf("expected title updated, got %q", got)
	}
}

func TestEditTask_Missing(t *testing.T) {
	srv := newServer(t, loggedInAPI())

	expectRedirect(t, get(t, srv.Handler(), "/tasks/nope/edit"), "/dashboard")

	page := get(t, srv.Handler(), "/dashboard")
	if !strings.Contains(page.Body.String(), "error fetching task: not found") {
		t.Error("expected not-found flash")
	}
}

func TestMoveTask_KeepsOtherFields(t *testing.T) {
	api := loggedInAPI()
	srv := newServer(t, api)
	get(t, srv.Handler(), "/dashboard")

	rec := post(t, srv.Handler(), "/tasks/t1/status", url.Values{"status": {"DONE"}})
	expectRedirect(t, rec, "/dashboard")

	task := api.ServerTasks()[0]
	if task.Status != service.StatusDone || task.Title != "Write report" {
		t.Errorf("unexpected task after move: %+v", task)
	}
	if api.CallCount("GetTask") != 0 {
		t.Error("a task on the board should not be refetched")
	}
}

func TestDeleteTask(t *testing.T) {
	api := loggedInAPI()
	srv := newServer(t, api)

	expectRedirect(t, post(t, srv.Handler(), "/tasks/t2/delete", nil), "/dashboard")
	if len(api.ServerTasks()) != 1 {
		t.Errorf("expected one task left, got %d", len(api.ServerTasks()))
	}
}

func TestHealth(t *testing.T) {
	srv := newServer(t, loggedInAPI())

	rec := get(t, srv.Handler(), "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "ok" || body["session"] != "resolved" {
		t.Errorf("unexpected health body %v", body)
	}
}

func TestMetrics(t *testing.T) {
	srv := newServer(t, loggedInAPI())
	get(t, srv.Handler(), "/dashboard")
	get(t, srv.Handler(), "/tasks/t1/edit")

	body := get(t, srv.Handler(), "/metrics").Body.String()

	for _, want := range []string{
		`http_requests_total{method="GET",path="/dashboard",status="200"} 1`,
		`http_requests_total{method="GET",path="/tasks/{id}/edit",status="200"} 1`,
		`taskboard_tasks{status="TODO"} 1`,
		`taskboard_tasks{status="DONE"} 1`,
		`taskboard_tasks{status="IN_PROGRESS"} 0`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("expected metrics to contain %q\nfull body:\n%s", want, body)
		}
	}
}

func postFrom(t *testing.T, h http.Handler, path string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(""))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCrossSitePostRefused(t *testing.T) {
	api := loggedInAPI()
	srv := newServer(t, api)

	rec := postFrom(t, srv.Handler(), "/tasks/t1/delete", map[string]string{
		"Origin":         "https://evil.example",
		"Sec-Fetch-Site": "cross-site",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if len(api.ServerTasks()) != 2 {
		t.Error("expected no task deleted")
	}

	rec = postFrom(t, srv.Handler(), "/logout", map[string]string{"Origin": "https://evil.example"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign Origin, got %d", rec.Code)
	}
	if !srv.Stores().Session.Authenticated() {
		t.Error("expected session kept")
	}

	rec = postFrom(t, srv.Handler(), "/login", map[string]string{"Sec-Fetch-Site": "same-site"})
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for same-site sibling, got %d", rec.Code)
	}
	if api.CallCount("Login") != 0 {
		t.Error("expected no login attempt")
	}
}

func TestSameOriginPostAllowed(t *testing.T) {
	api := loggedInAPI()
	srv := newServer(t, api)

	// httptest requests carry Host example.com.
	rec := postFrom(t, srv.Handler(), "/tasks/t1/delete", map[string]string{
		"Origin":         "http://example.com",
		"Sec-Fetch-Site": "same-origin",
	})
	expectRedirect(t, rec, "/dashboard")
	if len(api.ServerTasks()) != 1 {
		t.Error("expected task deleted")
	}

	rec = postFrom(t, srv.Handler(), "/logout", map[string]string{"Origin": "http://example.com"})
	expectRedirect(t, rec, "/")
}

func TestAuthRedirect_IgnoresSharedRoute(t *testing.T) {
	api := testutil.NewFakeAPI()
	api.AddUser("Ada", "ada@example.com", "secret")
	srv := newServer(t, api)
	srv.Stores().Nav.Navigate("/elsewhere")

	rec := post(t, srv.Handler(), "/login", url.Values{"email": {"ada@example.com"}, "password": {"wrong"}})
	expectRedirect(t, rec, "/login")

	rec = post(t, srv.Handler(), "/login", url.Values{"email": {"ada@example.com"}, "password": {"secret"}})
	expectRedirect(t, rec, "/dashboard")

	if route, _ := srv.Stores().Nav.Take(); route != "/elsewhere" {
		t.Errorf("expected requests to leave the shared route alone, got %q", route)
	}
}
