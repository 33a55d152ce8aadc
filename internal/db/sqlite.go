// Package db implements the server-side persistence layer on SQLite. It
// stores user accounts, project metadata, and the task rows that remote
// clients push and pull.
package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ganttline/ganttline/models"
)

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// User is a registered account. SecretKey signs that user's access tokens.
type User struct {
	Username     string
	PasswordHash string
	SecretKey    string
	CreatedAt    time.Time
}

// ProjectRecord is the server-side metadata for one project.
type ProjectRecord struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Admin     string    `json:"admin"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store wraps the SQLite database holding accounts, projects, and tasks.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the database at dbPath and ensures the schema
// exists. Pass ":memory:" for an ephemeral database.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return store, nil
}

// initSchema creates the database tables if they don't exist.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		username TEXT PRIMARY KEY,
		password_hash TEXT NOT NULL,
		secret_key TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		admin TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		FOREIGN KEY (admin) REFERENCES users(username) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,              -- task_id:project_id
		task_id TEXT NOT NULL,
		project_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		colour TEXT NOT NULL,
		start_day INTEGER NOT NULL,
		end_day INTEGER NOT NULL,
		lane INTEGER NOT NULL,
		completed INTEGER NOT NULL DEFAULT 0,
		successors TEXT NOT NULL DEFAULT '[]',  -- JSON array of task ids
		FOREIGN KEY (project_id) REFERENCES projects(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_projects_admin ON projects(admin);
	CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id);
	CREATE INDEX IF NOT EXISTS idx_tasks_lane ON tasks(project_id, lane);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// === User CRUD ===

// CreateUser inserts a new account. The caller checks for duplicates first.
func (s *Store) CreateUser(u User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(`
		INSERT INTO users (username, password_hash, secret_key, created_at)
		VALUES (?, ?, ?, ?)
	`, u.Username, u.PasswordHash, u.SecretKey, u.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUser retrieves an account by username.
func (s *Store) GetUser(username string) (*User, error) {
	var u User
	var createdAt string
	err := s.db.QueryRow(`
		SELECT username, password_hash, secret_key, created_at
		FROM users WHERE username = ?
	`, username).Scan(&u.Username, &u.PasswordHash, &u.SecretKey, &createdAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &u, nil
}

// === Project CRUD ===

// CreateProject inserts a new project record.
func (s *Store) CreateProject(p ProjectRecord) error {
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = now
	}
	_, err := s.db.Exec(`
		INSERT INTO projects (id, name, admin, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.Admin, p.CreatedAt.Format(time.RFC3339), p.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

// GetProject retrieves a project by id.
func (s *Store) GetProject(id string) (*ProjectRecord, error) {
	var p ProjectRecord
	var createdAt, updatedAt string
	err := s.db.QueryRow(`
		SELECT id, name, admin, created_at, updated_at FROM projects WHERE id = ?
	`, id).Scan(&p.ID, &p.Name, &p.Admin, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("project %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query project: %w", err)
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &p, nil
}

// RenameProject sets a new name on a project owned by admin.
func (s *Store) RenameProject(id, admin, name string) (*ProjectRecord, error) {
	result, err := s.db.Exec(`
		UPDATE projects SET name = ?, updated_at = ? WHERE id = ? AND admin = ?
	`, name, time.Now().UTC().Format(time.RFC3339), id, admin)
	if err != nil {
		return nil, fmt.Errorf("rename project: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return nil, fmt.Errorf("project %q: %w", id, ErrNotFound)
	}
	return s.GetProject(id)
}

// DeleteProject removes a project owned by admin along with all its tasks.
func (s *Store) DeleteProject(id, admin string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.Exec("DELETE FROM projects WHERE id = ? AND admin = ?", id, admin)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("project %q: %w", id, ErrNotFound)
	}

	if _, err := tx.Exec("DELETE FROM tasks WHERE project_id = ?", id); err != nil {
		return fmt.Errorf("delete project tasks: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListProjects returns all projects administered by the given user.
func (s *Store) ListProjects(admin string) ([]ProjectRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, name, admin, created_at, updated_at
		FROM projects WHERE admin = ? ORDER BY created_at
	`, admin)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var projects []ProjectRecord
	for rows.Next() {
		var p ProjectRecord
		var createdAt, updatedAt string
		if err := rows.Scan(&p.ID, &p.Name, &p.Admin, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// TouchProject bumps a project's updated_at timestamp.
func (s *Store) TouchProject(id string) error {
	_, err := s.db.Exec(`
		UPDATE projects SET updated_at = ? WHERE id = ?
	`, time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("touch project: %w", err)
	}
	return nil
}

// === Task CRUD ===

// CountTasks returns the number of tasks stored for a project.
func (s *Store) CountTasks(projectID string) (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM tasks WHERE project_id = ?", projectID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return count, nil
}

// UpsertTask inserts or replaces one task row for a project.
func (s *Store) UpsertTask(projectID string, t models.Task) error {
	successors, err := json.Marshal(t.Successors)
	if err != nil {
		return fmt.Errorf("marshal successors: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO tasks (id, task_id, project_id, kind, name, description, colour,
		                   start_day, end_day, lane, completed, successors)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind,
			name = excluded.name,
			description = excluded.description,
			colour = excluded.colour,
			start_day = excluded.start_day,
			end_day = excluded.end_day,
			lane = excluded.lane,
			completed = excluded.completed,
			successors = excluded.successors
	`, t.ID+":"+projectID, t.ID, projectID, string(t.Kind), t.Name, t.Description,
		t.Colour, t.Start, t.End, t.Lane, t.Completed, string(successors))
	if err != nil {
		return fmt.Errorf("upsert task: %w", err)
	}
	return nil
}

// GetTask retrieves one task row.
func (s *Store) GetTask(projectID, taskID string) (*models.Task, error) {
	row := s.db.QueryRow(`
		SELECT task_id, kind, name, description, colour, start_day, end_day, lane, completed, successors
		FROM tasks WHERE project_id = ? AND task_id = ?
	`, projectID, taskID)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("task %q: %w", taskID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query task: %w", err)
	}
	return t, nil
}

// DeleteTask removes one task, compacts the lanes above it, and strips the
// task from every remaining successor list in the project.
func (s *Store) DeleteTask(projectID, taskID string) error {
	task, err := s.GetTask(projectID, taskID)
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM tasks WHERE project_id = ? AND task_id = ?", projectID, taskID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	if _, err := tx.Exec(`
		UPDATE tasks SET lane = lane - 1 WHERE project_id = ? AND lane > ?
	`, projectID, task.Lane); err != nil {
		return fmt.Errorf("compact lanes: %w", err)
	}

	// Successor lists are JSON text, so the purge happens row by row.
	rows, err := tx.Query("SELECT task_id, successors FROM tasks WHERE project_id = ?", projectID)
	if err != nil {
		return fmt.Errorf("query successors: %w", err)
	}

	type patch struct {
		id         string
		successors string
	}
	var patches []patch
	for rows.Next() {
		var id, rawSuccessors string
		if err := rows.Scan(&id, &rawSuccessors); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan successors: %w", err)
		}
		var successors []string
		if err := json.Unmarshal([]byte(rawSuccessors), &successors); err != nil {
			_ = rows.Close()
			return fmt.Errorf("unmarshal successors for %s: %w", id, err)
		}
		kept := successors[:0]
		removed := false
		for _, succ := range successors {
			if succ == taskID {
				removed = true
				continue
			}
			kept = append(kept, succ)
		}
		if !removed {
			continue
		}
		updated, err := json.Marshal(kept)
		if err != nil {
			_ = rows.Close()
			return fmt.Errorf("marshal successors for %s: %w", id, err)
		}
		patches = append(patches, patch{id: id, successors: string(updated)})
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return fmt.Errorf("iterate successors: %w", err)
	}
	_ = rows.Close()

	for _, p := range patches {
		if _, err := tx.Exec(`
			UPDATE tasks SET successors = ? WHERE project_id = ? AND task_id = ?
		`, p.successors, projectID, p.id); err != nil {
			return fmt.Errorf("strip successor from %s: %w", p.id, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// ListTasks returns all task rows for a project keyed by task id.
func (s *Store) ListTasks(projectID string) (map[string]models.Task, error) {
	rows, err := s.db.Query(`
		SELECT task_id, kind, name, description, colour, start_day, end_day, lane, completed, successors
		FROM tasks WHERE project_id = ? ORDER BY lane
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	tasks := make(map[string]models.Task)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks[t.ID] = *t
	}
	return tasks, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*models.Task, error) {
	var t models.Task
	var kind, rawSuccessors string
	if err := row.Scan(&t.ID, &kind, &t.Name, &t.Description, &t.Colour,
		&t.Start, &t.End, &t.Lane, &t.Completed, &rawSuccessors); err != nil {
		return nil, err
	}
	t.Kind = models.TaskKind(kind)
	if err := json.Unmarshal([]byte(rawSuccessors), &t.Successors); err != nil {
		return nil, fmt.Errorf("unmarshal successors: %w", err)
	}
	return &t, nil
}

// Close closes the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
