package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ganttline/ganttline/internal/db"
	"github.com/ganttline/ganttline/models"
	"github.com/ganttline/ganttline/types"
)

const (
	testUser     = "alice"
	testPassword = "Sup3r$ecret"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store, err := db.NewStore(":memory:")
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	cfg := types.ServerConfig{
		Port:           0,
		DBPath:         ":memory:",
		AllowedOrigins: []string{"http://localhost:3000"},
	}
	srv := New(cfg, store, log.New(io.Discard))
	t.Cleanup(func() { _ = store.Close() })
	return srv
}

func doRequest(t *testing.T, srv *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func registerAndLogin(t *testing.T, srv *Server) string {
	t.Helper()
	rec := doRequest(t, srv, http.MethodPost, "/user/register", registerRequest{Username: testUser, Password: testPassword})
	if rec.Code != http.StatusOK {
		t.Fatalf("register status = %d, body = %s", rec.Code, rec.Body.String())
	}
	rec = doRequest(t, srv, http.MethodPost, "/user/authorise", loginRequest{Username: testUser, Password: testPassword})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp authResponse
	decodeResponse(t, rec, &resp)
	if resp.AccessToken == "" {
		t.Fatal("login returned empty access token")
	}
	return resp.AccessToken
}

func createProject(t *testing.T, srv *Server, token, name string) db.ProjectRecord {
	t.Helper()
	rec := doRequest(t, srv, http.MethodPut, "/project/new-project", newProjectRequest{AccessToken: token, Name: name})
	if rec.Code != http.StatusOK {
		t.Fatalf("new-project status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp projectResponse
	decodeResponse(t, rec, &resp)
	return resp.Project
}

func TestRegisterValidation(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name     string
		username string
		password string
		want     int
	}{
		{"valid", "alice", "Sup3r$ecret", http.StatusOK},
		{"duplicate user", "alice", "Sup3r$ecret", http.StatusConflict},
		{"short username", "al", "Sup3r$ecret", http.StatusBadRequest},
		{"symbol in username", "al!ce2", "Sup3r$ecret", http.StatusBadRequest},
		{"short password", "bob1", "Ab1$", http.StatusBadRequest},
		{"no uppercase", "bob1", "sup3r$ecret", http.StatusBadRequest},
		{"no lowercase", "bob1", "SUP3R$ECRET", http.StatusBadRequest},
		{"no digit", "bob1", "Super$ecret", http.StatusBadRequest},
		{"no special char", "bob1", "Sup3rSecret", http.StatusBadRequest},
		{"missing fields", "", "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, srv, http.MethodPost, "/user/register", registerRequest{Username: tt.username, Password: tt.password})
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestLogin(t *testing.T) {
	srv := newTestServer(t)
	doRequest(t, srv, http.MethodPost, "/user/register", registerRequest{Username: testUser, Password: testPassword})

	rec := doRequest(t, srv, http.MethodPost, "/user/authorise", loginRequest{Username: testUser, Password: "WrongPass1$"})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password status = %d, want 401", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodPost, "/user/authorise", loginRequest{Username: "nobody", Password: testPassword})
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown user status = %d, want 404", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodPost, "/user/authorise", loginRequest{Username: testUser, Password: testPassword})
	if rec.Code != http.StatusOK {
		t.Errorf("login status = %d, want 200", rec.Code)
	}
}

func TestAuthRejection(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPut, "/project/new-project", newProjectRequest{AccessToken: "garbage", Name: "P"})
	if rec.Code != http.StatusForbidden {
		t.Errorf("garbage token status = %d, want 403", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodPut, "/project/new-project", newProjectRequest{Name: "P"})
	if rec.Code != http.StatusForbidden {
		t.Errorf("missing token status = %d, want 403", rec.Code)
	}
}

func TestExpiredTokenGone(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv)

	// Jump server time past the token lifetime.
	srv.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	rec := doRequest(t, srv, http.MethodPost, "/project/fetch-user-projects", fetchProjectsRequest{AccessToken: token})
	if rec.Code != http.StatusGone {
		t.Errorf("expired token status = %d, want 410", rec.Code)
	}
}

func TestTokenRenewalNearExpiry(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv)

	// Move inside the renew-ahead window but before expiry.
	srv.now = func() time.Time { return time.Now().Add(55 * time.Minute) }

	rec := doRequest(t, srv, http.MethodPost, "/project/fetch-user-projects", fetchProjectsRequest{AccessToken: token})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp projectListResponse
	decodeResponse(t, rec, &resp)
	if resp.AccessToken == token {
		t.Error("token near expiry should be renewed")
	}
	if resp.AccessToken == "" {
		t.Error("renewed token should not be empty")
	}
}

func TestProjectLifecycle(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv)

	project := createProject(t, srv, token, "Release Plan")
	if project.Name != "Release Plan" || project.Admin != testUser {
		t.Errorf("unexpected project: %+v", project)
	}

	rec := doRequest(t, srv, http.MethodPost, "/project/rename-project", renameProjectRequest{
		AccessToken: token, ProjectID: project.ID, Name: "Launch Plan",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("rename status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var renamed projectResponse
	decodeResponse(t, rec, &renamed)
	if renamed.Project.Name != "Launch Plan" {
		t.Errorf("renamed name = %q", renamed.Project.Name)
	}

	rec = doRequest(t, srv, http.MethodPost, "/project/fetch-user-projects", fetchProjectsRequest{AccessToken: token})
	var list projectListResponse
	decodeResponse(t, rec, &list)
	if len(list.Projects) != 1 {
		t.Fatalf("fetched %d projects, want 1", len(list.Projects))
	}

	rec = doRequest(t, srv, http.MethodPost, "/project/delete-project", deleteProjectRequest{AccessToken: token, ProjectID: project.ID})
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodPost, "/project/rename-project", renameProjectRequest{
		AccessToken: token, ProjectID: project.ID, Name: "Gone",
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("rename deleted project status = %d, want 404", rec.Code)
	}
}

func TestProjectAccessControl(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv)
	project := createProject(t, srv, token, "Private")

	doRequest(t, srv, http.MethodPost, "/user/register", registerRequest{Username: "mallory1", Password: testPassword})
	rec := doRequest(t, srv, http.MethodPost, "/user/authorise", loginRequest{Username: "mallory1", Password: testPassword})
	var other authResponse
	decodeResponse(t, rec, &other)

	rec = doRequest(t, srv, http.MethodPost, "/project/task/fetch-all", fetchTasksRequest{
		AccessToken: other.AccessToken, ProjectID: project.ID,
	})
	if rec.Code != http.StatusForbidden {
		t.Errorf("foreign project access status = %d, want 403", rec.Code)
	}
}

func TestTaskLifecycle(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv)
	project := createProject(t, srv, token, "Sprint")

	first := models.NewTask(models.KindTask, "Design", 10, 14)
	rec := doRequest(t, srv, http.MethodPut, "/project/task/new", newTaskRequest{
		AccessToken: token, ProjectID: project.ID, Task: first,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("new task status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var created taskResponse
	decodeResponse(t, rec, &created)
	if created.Task.Lane != 0 {
		t.Errorf("first task lane = %d, want 0", created.Task.Lane)
	}

	second := models.NewTask(models.KindMilestone, "Ship", 20, 20)
	rec = doRequest(t, srv, http.MethodPut, "/project/task/new", newTaskRequest{
		AccessToken: token, ProjectID: project.ID, Task: second,
	})
	var createdSecond taskResponse
	decodeResponse(t, rec, &createdSecond)
	if createdSecond.Task.Lane != 1 {
		t.Errorf("second task lane = %d, want 1", createdSecond.Task.Lane)
	}

	// Update the first task's dates.
	updated := created.Task
	updated.Start, updated.End = 12, 16
	rec = doRequest(t, srv, http.MethodPost, "/project/task/update", updateTaskRequest{
		AccessToken: token, ProjectID: project.ID, Task: updated,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, srv, http.MethodPost, "/project/task/fetch-all", fetchTasksRequest{
		AccessToken: token, ProjectID: project.ID,
	})
	var list taskListResponse
	decodeResponse(t, rec, &list)
	if len(list.Tasks) != 2 {
		t.Fatalf("fetched %d tasks, want 2", len(list.Tasks))
	}
	if list.Tasks[updated.ID].Start != 12 {
		t.Errorf("updated start = %d, want 12", list.Tasks[updated.ID].Start)
	}

	rec = doRequest(t, srv, http.MethodPost, "/project/task/delete", deleteTaskRequest{
		AccessToken: token, ProjectID: project.ID, TaskID: updated.ID,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}

	rec = doRequest(t, srv, http.MethodPost, "/project/task/delete", deleteTaskRequest{
		AccessToken: token, ProjectID: project.ID, TaskID: updated.ID,
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("delete missing task status = %d, want 404", rec.Code)
	}
}

func TestNewTaskRejectsInvalidPayload(t *testing.T) {
	srv := newTestServer(t)
	token := registerAndLogin(t, srv)
	project := createProject(t, srv, token, "Sprint")

	bad := models.NewTask(models.KindTask, "Design", 10, 14)
	bad.Colour = "blue"
	rec := doRequest(t, srv, http.MethodPut, "/project/task/new", newTaskRequest{
		AccessToken: token, ProjectID: project.ID, Task: bad,
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid colour status = %d, want 400", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/project/task/fetch-all", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Allow-Origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/project/task/fetch-all", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("disallowed origin preflight status = %d, want 403", rec.Code)
	}
}
