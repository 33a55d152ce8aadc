package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ganttline/ganttline/models"
)

func setupTestStore(t *testing.T, format string) *FileProjectStore {
	t.Helper()

	tempDir := t.TempDir()
	filePath := filepath.Join(tempDir, "project."+format)

	s := NewFileProjectStore()
	config := map[string]string{
		"dataFile":       filePath,
		"dataFileFormat": format,
		"projectName":    "Test Project",
	}
	if err := s.Initialize(config); err != nil {
		t.Fatalf("Failed to initialize store: %v", err)
	}
	return s
}

func sampleProject() models.Project {
	p := models.NewProject("Test Project")
	a := models.NewTask(models.KindTask, "Design", 0, 3)
	b := models.NewTask(models.KindMilestone, "Review", 5, 5)
	b.Lane = 1
	a.Successors = []string{b.ID}
	p.Tasks[a.ID] = a
	p.Tasks[b.ID] = b
	return p
}

func TestFileProjectStore_LoadFreshProject(t *testing.T) {
	s := setupTestStore(t, "json")
	defer func() { _ = s.Close() }()

	p, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if p.Name != "Test Project" {
		t.Errorf("Name = %q, want %q", p.Name, "Test Project")
	}
	if len(p.Tasks) != 0 {
		t.Errorf("fresh project has %d tasks, want 0", len(p.Tasks))
	}
	if p.ID == "" {
		t.Error("fresh project should have an ID")
	}
}

func TestFileProjectStore_SaveAndReload(t *testing.T) {
	for _, format := range []string{"json", "yaml", "toml"} {
		t.Run(format, func(t *testing.T) {
			s := setupTestStore(t, format)
			defer func() { _ = s.Close() }()

			want := sampleProject()
			if err := s.Save(want); err != nil {
				t.Fatalf("Save failed: %v", err)
			}

			got, err := s.Load()
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if got.ID != want.ID || got.Name != want.Name {
				t.Errorf("project = (%q, %q), want (%q, %q)", got.ID, got.Name, want.ID, want.Name)
			}
			if len(got.Tasks) != len(want.Tasks) {
				t.Fatalf("task count = %d, want %d", len(got.Tasks), len(want.Tasks))
			}
			for id, task := range want.Tasks {
				loaded, ok := got.Tasks[id]
				if !ok {
					t.Fatalf("task %s missing after reload", id)
				}
				if loaded.Name != task.Name || loaded.Lane != task.Lane || loaded.Start != task.Start || loaded.End != task.End {
					t.Errorf("task %s = %+v, want %+v", id, loaded, task)
				}
				if len(loaded.Successors) != len(task.Successors) {
					t.Errorf("task %s successors = %v, want %v", id, loaded.Successors, task.Successors)
				}
			}
		})
	}
}

func TestFileProjectStore_ChecksumMismatch(t *testing.T) {
	s := setupTestStore(t, "json")
	defer func() { _ = s.Close() }()

	if err := s.Save(sampleProject()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Tamper with the data file behind the store's back.
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		t.Fatalf("read data file: %v", err)
	}
	if err := os.WriteFile(s.filePath, append(data, '\n'), 0o644); err != nil {
		t.Fatalf("tamper with data file: %v", err)
	}

	if _, err := s.Load(); err == nil {
		t.Error("Load should fail on a checksum mismatch")
	}
}

func TestFileProjectStore_RejectsUnknownFormat(t *testing.T) {
	s := NewFileProjectStore()
	err := s.Initialize(map[string]string{
		"dataFile":       filepath.Join(t.TempDir(), "p.xml"),
		"dataFileFormat": "xml",
	})
	if err == nil {
		t.Error("Initialize should reject unsupported formats")
	}
}

func TestFileProjectStore_BackupAndRestore(t *testing.T) {
	s := setupTestStore(t, "json")
	defer func() { _ = s.Close() }()

	want := sampleProject()
	if err := s.Save(want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	backupPath := filepath.Join(t.TempDir(), "backup.json")
	if err := s.Backup(backupPath); err != nil {
		t.Fatalf("Backup failed: %v", err)
	}

	if err := s.Save(models.NewProject("Wiped")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Restore(backupPath); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got.Name != want.Name || len(got.Tasks) != len(want.Tasks) {
		t.Errorf("restored project = (%q, %d tasks), want (%q, %d tasks)", got.Name, len(got.Tasks), want.Name, len(want.Tasks))
	}
}
