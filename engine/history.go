package engine

import "github.com/ganttline/ganttline/models"

// maxHistory caps the undo stack. Oldest snapshots drop first.
const maxHistory = 500

// history is a linear undo/redo stack of full project snapshots. Every
// successful mutating engine operation pushes exactly one snapshot, so one
// undo step corresponds to one user-visible action.
type history struct {
	snapshots []models.Project
	index     int
}

func newHistory() *history {
	return &history{index: -1}
}

// reset discards all history and seeds a single snapshot.
func (h *history) reset(p models.Project) {
	h.snapshots = []models.Project{p.Clone()}
	h.index = 0
}

// push records a snapshot at the current position. Any snapshots after the
// current index are discarded first (branch truncation).
func (h *history) push(p models.Project) {
	if h.index < len(h.snapshots)-1 {
		h.snapshots = h.snapshots[:h.index+1]
	}
	h.snapshots = append(h.snapshots, p.Clone())
	if len(h.snapshots) > maxHistory {
		over := len(h.snapshots) - maxHistory
		h.snapshots = append([]models.Project(nil), h.snapshots[over:]...)
	}
	h.index = len(h.snapshots) - 1
}

// undo steps back one snapshot. The second return is false at the start of
// history, which is a normal "nothing to undo" condition.
func (h *history) undo() (models.Project, bool) {
	if h.index <= 0 {
		return models.Project{}, false
	}
	h.index--
	return h.snapshots[h.index].Clone(), true
}

// redo steps forward one snapshot, false at the tail.
func (h *history) redo() (models.Project, bool) {
	if h.index >= len(h.snapshots)-1 {
		return models.Project{}, false
	}
	h.index++
	return h.snapshots[h.index].Clone(), true
}

func (h *history) len() int {
	return len(h.snapshots)
}
