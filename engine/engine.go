// Package engine implements the dependency-constrained timeline scheduler:
// task placement on a day-indexed lane grid, precedence edges between tasks,
// automatic placement repair when a task moves, resizes, or gains a
// dependency, and linear undo/redo over the whole project state.
//
// The engine is single-threaded and synchronous. Every operation runs to
// completion before returning and is all-or-nothing: validation happens
// before any field is written. The engine performs no I/O; persistence and
// rendering belong to its callers, driven by the change sets it returns.
package engine

import (
	"fmt"
	"slices"
	"time"

	"github.com/ganttline/ganttline/models"
)

// ChangeSet lists the ids of every task whose lane, dates, or edges were
// modified by one operation: the anchor task plus everything touched by the
// cascade. Reload is set when an edit placed a task before the visible
// window start, in which case cached layout state is stale and the caller
// must rebuild from the full task set.
type ChangeSet struct {
	IDs    []string
	Reload bool
}

// Contains reports whether the change set includes the task id.
func (c ChangeSet) Contains(id string) bool {
	return slices.Contains(c.IDs, id)
}

// Engine owns the task graph for one open project. It is a plain value held
// by the presentation layer; callers serialise access to it.
type Engine struct {
	projectID   string
	projectName string
	tasks       *graphStore
	hist        *history
	window      Window
	now         func() time.Time
}

// New returns an engine with no project loaded.
func New() *Engine {
	e := &Engine{
		tasks: newGraphStore(),
		hist:  newHistory(),
		now:   time.Now,
	}
	e.window = deriveWindow(nil, Today(e.now()))
	e.hist.reset(e.current())
	return e
}

// Load replaces the open project wholesale and resets history to a single
// snapshot of the loaded state.
func (e *Engine) Load(p models.Project) {
	e.projectID = p.ID
	e.projectName = p.Name
	e.tasks.load(p.Tasks)
	e.window = deriveWindow(e.tasks.all(), Today(e.now()))
	e.hist.reset(e.current())
}

// Project returns a deep copy of the open project, suitable for persistence.
func (e *Engine) Project() models.Project {
	return models.Project{
		ID:    e.projectID,
		Name:  e.projectName,
		Tasks: e.tasks.snapshot(),
	}
}

// Window returns the current visible timeline window.
func (e *Engine) Window() Window {
	return e.window
}

// All returns every task in the project, ordered by lane.
func (e *Engine) All() []models.Task {
	return e.tasks.all()
}

// Get returns one task by id.
func (e *Engine) Get(id string) (models.Task, error) {
	return e.tasks.get(id)
}

// CreateTask adds a task of the given kind, assigned the next free lane. A
// non-negative lane reassigns it through the resolver so lane exclusivity
// holds. The task is validated before anything is written.
func (e *Engine) CreateTask(kind models.TaskKind, name string, start, end int64, lane int) (models.Task, error) {
	task := models.NewTask(kind, name, start, end)
	task.Lane = e.tasks.len()
	if err := models.ValidateStruct(task); err != nil {
		return models.Task{}, fmt.Errorf("invalid task: %w", err)
	}

	e.tasks.insert(task)
	if lane >= 0 && lane != task.Lane {
		r := newResolver(e.tasks)
		if err := r.setLane(task.ID, lane); err != nil {
			return models.Task{}, err
		}
	}

	e.syncWindow()
	e.checkpoint()
	return e.tasks.get(task.ID)
}

// DeleteTask removes the task, strips its id from every successor set, and
// compacts the lanes above it so lanes stay a permutation of 0..n-1.
func (e *Engine) DeleteTask(id string) error {
	t, err := e.tasks.get(id)
	if err != nil {
		return err
	}
	if err := e.tasks.remove(id); err != nil {
		return err
	}

	for _, other := range e.tasks.all() {
		if other.Lane > t.Lane {
			other.Lane--
			if err := e.tasks.replace(other.ID, other); err != nil {
				return err
			}
		}
	}

	e.syncWindow()
	e.checkpoint()
	return nil
}

// MoveOrResize is the interactive drag entry point: it reassigns the task's
// lane and date range, then propagates forward through its successors.
// Predecessors are never pulled backward. A call that changes nothing is a
// no-op and records no history.
func (e *Engine) MoveOrResize(id string, lane int, start, end int64) (ChangeSet, error) {
	t, err := e.tasks.get(id)
	if err != nil {
		return ChangeSet{}, err
	}
	if lane == t.Lane && start == t.Start && end == t.End {
		return ChangeSet{}, nil
	}

	r := newResolver(e.tasks)
	r.markDirty(id)
	if err := r.setLane(id, lane); err != nil {
		return ChangeSet{}, err
	}

	t, err = e.tasks.get(id)
	if err != nil {
		return ChangeSet{}, err
	}
	t.Start = start
	t.End = end
	if err := e.tasks.replace(id, t); err != nil {
		return ChangeSet{}, err
	}

	if err := r.propagate(id); err != nil {
		return ChangeSet{}, err
	}

	reload := e.syncWindow()
	e.checkpoint()
	return ChangeSet{IDs: r.dirtyIDs(), Reload: reload}, nil
}

// ToggleEdge adds the precedence edge from -> to, or removes it if it
// already exists. Adding an edge repairs lane ordering (the successor must
// sit below its predecessor) and date ordering (the successor subtree shifts
// forward until it starts no earlier than the predecessor ends).
//
// Rejected with ErrInvalidEdge before any mutation: self-edges, and edges
// whose immediate reverse already exists. Longer cycles are not detected
// here; the resolver's visited sets keep repair terminating regardless.
func (e *Engine) ToggleEdge(fromID, toID string) (ChangeSet, error) {
	if fromID == toID {
		return ChangeSet{}, fmt.Errorf("task '%s' cannot depend on itself: %w", fromID, ErrInvalidEdge)
	}
	from, err := e.tasks.get(fromID)
	if err != nil {
		return ChangeSet{}, err
	}
	to, err := e.tasks.get(toID)
	if err != nil {
		return ChangeSet{}, err
	}
	if to.HasSuccessor(fromID) {
		return ChangeSet{}, fmt.Errorf("tasks '%s' and '%s' already depend on each other: %w", fromID, toID, ErrInvalidEdge)
	}

	r := newResolver(e.tasks)
	r.markDirty(fromID)
	r.markDirty(toID)

	if from.HasSuccessor(toID) {
		// Toggle off. No repair needed.
		from.Successors = slices.DeleteFunc(slices.Clone(from.Successors), func(s string) bool { return s == toID })
		if err := e.tasks.replace(fromID, from); err != nil {
			return ChangeSet{}, err
		}
	} else {
		from.Successors = append(slices.Clone(from.Successors), toID)
		if err := e.tasks.replace(fromID, from); err != nil {
			return ChangeSet{}, err
		}

		if to.Lane < from.Lane {
			if err := r.setLane(toID, from.Lane); err != nil {
				return ChangeSet{}, err
			}
		}

		// Lane repair may have relocated either endpoint; re-read before the
		// date comparison.
		from, err = e.tasks.get(fromID)
		if err != nil {
			return ChangeSet{}, err
		}
		to, err = e.tasks.get(toID)
		if err != nil {
			return ChangeSet{}, err
		}
		if to.Start < from.End {
			if err := r.shiftForward(toID, from.End-to.Start); err != nil {
				return ChangeSet{}, err
			}
		}
	}

	reload := e.syncWindow()
	e.checkpoint()
	return ChangeSet{IDs: r.dirtyIDs(), Reload: reload}, nil
}

// Undo steps the project back one snapshot. Returns nil at the start of
// history. The change set covers every task: after a history jump the whole
// timeline is re-rendered and re-persisted.
func (e *Engine) Undo() *ChangeSet {
	p, ok := e.hist.undo()
	if !ok {
		return nil
	}
	return e.restore(p)
}

// Redo steps the project forward one snapshot. Returns nil at the tail.
func (e *Engine) Redo() *ChangeSet {
	p, ok := e.hist.redo()
	if !ok {
		return nil
	}
	return e.restore(p)
}

// HistoryLen reports the number of retained snapshots.
func (e *Engine) HistoryLen() int {
	return e.hist.len()
}

func (e *Engine) restore(p models.Project) *ChangeSet {
	e.projectID = p.ID
	e.projectName = p.Name
	e.tasks.load(p.Tasks)
	reload := e.syncWindow()
	return &ChangeSet{IDs: e.tasks.ids(), Reload: reload}
}

// current returns the live project state for snapshotting. The history layer
// clones it.
func (e *Engine) current() models.Project {
	return models.Project{
		ID:    e.projectID,
		Name:  e.projectName,
		Tasks: e.tasks.snapshot(),
	}
}

func (e *Engine) checkpoint() {
	e.hist.push(e.current())
}

// syncWindow grows the window to cover the latest task end, and reports
// whether a task now starts before the window: that forces a full rebuild
// with a re-derived window, mirroring the reload on out-of-window drags.
func (e *Engine) syncWindow() bool {
	tasks := e.tasks.all()
	for _, t := range tasks {
		if !e.window.Covers(t.Start) {
			e.window = deriveWindow(tasks, Today(e.now()))
			return true
		}
	}
	for _, t := range tasks {
		if t.End > e.window.End {
			e.window.End = t.End
		}
	}
	return false
}
