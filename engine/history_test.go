package engine

import (
	"fmt"
	"testing"

	"github.com/ganttline/ganttline/models"
)

func namedProject(name string) models.Project {
	p := models.NewProject(name)
	return p
}

func TestHistoryUndoRedoBoundaries(t *testing.T) {
	h := newHistory()
	h.reset(namedProject("v0"))

	if _, ok := h.undo(); ok {
		t.Error("undo at index 0 should report false")
	}
	if _, ok := h.redo(); ok {
		t.Error("redo at the tail should report false")
	}

	h.push(namedProject("v1"))
	p, ok := h.undo()
	if !ok || p.Name != "v0" {
		t.Errorf("undo = (%q, %v), want (v0, true)", p.Name, ok)
	}
	p, ok = h.redo()
	if !ok || p.Name != "v1" {
		t.Errorf("redo = (%q, %v), want (v1, true)", p.Name, ok)
	}
}

func TestHistoryBranchTruncation(t *testing.T) {
	h := newHistory()
	h.reset(namedProject("v0"))
	h.push(namedProject("v1"))
	h.push(namedProject("v2"))

	h.undo()
	h.undo()
	h.push(namedProject("v1b"))

	if h.len() != 2 {
		t.Fatalf("history length = %d, want 2 after truncation", h.len())
	}
	if _, ok := h.redo(); ok {
		t.Error("redo should be empty after the branch is truncated")
	}
	p, ok := h.undo()
	if !ok || p.Name != "v0" {
		t.Errorf("undo = (%q, %v), want (v0, true)", p.Name, ok)
	}
}

func TestHistoryCapDropsOldest(t *testing.T) {
	h := newHistory()
	h.reset(namedProject("v0"))
	for i := 1; i <= maxHistory+1; i++ {
		h.push(namedProject(fmt.Sprintf("v%d", i)))
	}

	if h.len() != maxHistory {
		t.Fatalf("history length = %d, want %d", h.len(), maxHistory)
	}

	// Walk to the start: the earliest retained snapshot is v2.
	var last models.Project
	for {
		p, ok := h.undo()
		if !ok {
			break
		}
		last = p
	}
	if last.Name != "v2" {
		t.Errorf("earliest retained snapshot = %q, want v2", last.Name)
	}
}

func TestHistorySnapshotsAreIsolated(t *testing.T) {
	h := newHistory()
	p := namedProject("live")
	task := models.NewTask(models.KindTask, "A", 0, 3)
	p.Tasks[task.ID] = task
	h.reset(p)

	// Mutating the live project must not reach the stored snapshot.
	task.Start = 99
	p.Tasks[task.ID] = task
	h.push(p)

	old, ok := h.undo()
	if !ok {
		t.Fatal("undo failed")
	}
	if old.Tasks[task.ID].Start != 0 {
		t.Errorf("snapshot start = %d, want 0: history must hold copies, not references", old.Tasks[task.ID].Start)
	}
}
