package db

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/ganttline/ganttline/models"
)

func setupTestDB(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(":memory:")
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func createTestUser(t *testing.T, store *Store, username string) {
	t.Helper()
	err := store.CreateUser(User{
		Username:     username,
		PasswordHash: "$2a$10$fakedhashforunittestsonly0000000000000000000000000000",
		SecretKey:    "deadbeef",
	})
	if err != nil {
		t.Fatalf("CreateUser(%q) error = %v", username, err)
	}
}

func createTestProject(t *testing.T, store *Store, admin string) ProjectRecord {
	t.Helper()
	p := ProjectRecord{ID: uuid.NewString(), Name: "Test Project", Admin: admin}
	if err := store.CreateProject(p); err != nil {
		t.Fatalf("CreateProject() error = %v", err)
	}
	return p
}

func TestUserRoundTrip(t *testing.T) {
	store := setupTestDB(t)
	createTestUser(t, store, "alice")

	u, err := store.GetUser("alice")
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if u.Username != "alice" || u.SecretKey != "deadbeef" {
		t.Errorf("unexpected user: %+v", u)
	}

	if _, err := store.GetUser("nobody"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetUser(nobody) error = %v, want ErrNotFound", err)
	}
}

func TestProjectLifecycle(t *testing.T) {
	store := setupTestDB(t)
	createTestUser(t, store, "alice")
	p := createTestProject(t, store, "alice")

	got, err := store.GetProject(p.ID)
	if err != nil {
		t.Fatalf("GetProject() error = %v", err)
	}
	if got.Name != "Test Project" || got.Admin != "alice" {
		t.Errorf("unexpected project: %+v", got)
	}

	renamed, err := store.RenameProject(p.ID, "alice", "New Name")
	if err != nil {
		t.Fatalf("RenameProject() error = %v", err)
	}
	if renamed.Name != "New Name" {
		t.Errorf("Name = %q after rename, want %q", renamed.Name, "New Name")
	}

	// Only the admin may rename.
	if _, err := store.RenameProject(p.ID, "mallory", "Stolen"); !errors.Is(err, ErrNotFound) {
		t.Errorf("rename by non-admin error = %v, want ErrNotFound", err)
	}

	projects, err := store.ListProjects("alice")
	if err != nil {
		t.Fatalf("ListProjects() error = %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("ListProjects() returned %d projects, want 1", len(projects))
	}

	if err := store.DeleteProject(p.ID, "alice"); err != nil {
		t.Fatalf("DeleteProject() error = %v", err)
	}
	if _, err := store.GetProject(p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetProject after delete error = %v, want ErrNotFound", err)
	}
}

func TestTaskUpsertAndList(t *testing.T) {
	store := setupTestDB(t)
	createTestUser(t, store, "alice")
	p := createTestProject(t, store, "alice")

	task := models.NewTask(models.KindTask, "Design", 10, 14)
	if err := store.UpsertTask(p.ID, task); err != nil {
		t.Fatalf("UpsertTask() error = %v", err)
	}

	count, err := store.CountTasks(p.ID)
	if err != nil {
		t.Fatalf("CountTasks() error = %v", err)
	}
	if count != 1 {
		t.Errorf("CountTasks() = %d, want 1", count)
	}

	// Upsert with the same id replaces the row.
	task.Name = "Redesign"
	task.End = 20
	if err := store.UpsertTask(p.ID, task); err != nil {
		t.Fatalf("UpsertTask() update error = %v", err)
	}

	got, err := store.GetTask(p.ID, task.ID)
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	if got.Name != "Redesign" || got.End != 20 {
		t.Errorf("unexpected task after upsert: %+v", got)
	}

	tasks, err := store.ListTasks(p.ID)
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if len(tasks) != 1 {
		t.Errorf("ListTasks() returned %d tasks, want 1", len(tasks))
	}
}

func TestDeleteTaskCompactsLanesAndPurgesSuccessors(t *testing.T) {
	store := setupTestDB(t)
	createTestUser(t, store, "alice")
	p := createTestProject(t, store, "alice")

	a := models.NewTask(models.KindTask, "A", 0, 2)
	b := models.NewTask(models.KindTask, "B", 3, 5)
	c := models.NewTask(models.KindTask, "C", 6, 8)
	a.Lane, b.Lane, c.Lane = 0, 1, 2
	a.Successors = []string{b.ID}
	c.Successors = []string{b.ID}

	for _, task := range []models.Task{a, b, c} {
		if err := store.UpsertTask(p.ID, task); err != nil {
			t.Fatalf("UpsertTask(%s) error = %v", task.Name, err)
		}
	}

	if err := store.DeleteTask(p.ID, b.ID); err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}

	if _, err := store.GetTask(p.ID, b.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetTask(deleted) error = %v, want ErrNotFound", err)
	}

	tasks, err := store.ListTasks(p.ID)
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if tasks[a.ID].Lane != 0 {
		t.Errorf("A lane = %d, want 0", tasks[a.ID].Lane)
	}
	if tasks[c.ID].Lane != 1 {
		t.Errorf("C lane = %d, want 1 after compaction", tasks[c.ID].Lane)
	}
	if tasks[a.ID].HasSuccessor(b.ID) || tasks[c.ID].HasSuccessor(b.ID) {
		t.Error("deleted task id should be purged from successor lists")
	}
}

func TestDeleteTaskMissing(t *testing.T) {
	store := setupTestDB(t)
	createTestUser(t, store, "alice")
	p := createTestProject(t, store, "alice")

	if err := store.DeleteTask(p.ID, uuid.NewString()); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteTask(missing) error = %v, want ErrNotFound", err)
	}
}
