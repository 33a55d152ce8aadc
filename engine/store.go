package engine

import (
	"fmt"
	"slices"
	"sort"

	"github.com/ganttline/ganttline/models"
)

// graphStore owns the task records for the currently open project. It is pure
// data: existence checks only, no scheduling validation. Repair logic lives in
// the resolver, edge validation in the engine facade.
type graphStore struct {
	tasks map[string]models.Task
}

func newGraphStore() *graphStore {
	return &graphStore{tasks: make(map[string]models.Task)}
}

// load replaces the store contents wholesale with deep copies of the given
// tasks.
func (s *graphStore) load(tasks map[string]models.Task) {
	s.tasks = make(map[string]models.Task, len(tasks))
	for id, t := range tasks {
		s.tasks[id] = t.Clone()
	}
}

func (s *graphStore) get(id string) (models.Task, error) {
	t, ok := s.tasks[id]
	if !ok {
		return models.Task{}, fmt.Errorf("task with ID '%s' not found: %w", id, ErrTaskNotFound)
	}
	return t.Clone(), nil
}

// all returns copies of every task, ordered by lane.
func (s *graphStore) all() []models.Task {
	out := make([]models.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Lane < out[j].Lane })
	return out
}

// ids returns every task id, ordered by lane.
func (s *graphStore) ids() []string {
	tasks := s.all()
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func (s *graphStore) len() int {
	return len(s.tasks)
}

func (s *graphStore) insert(t models.Task) {
	s.tasks[t.ID] = t.Clone()
}

func (s *graphStore) replace(id string, t models.Task) error {
	if _, ok := s.tasks[id]; !ok {
		return fmt.Errorf("task with ID '%s' not found: %w", id, ErrTaskNotFound)
	}
	s.tasks[id] = t.Clone()
	return nil
}

// remove deletes the task and purges its id from every other task's
// successor set.
func (s *graphStore) remove(id string) error {
	if _, ok := s.tasks[id]; !ok {
		return fmt.Errorf("task with ID '%s' not found: %w", id, ErrTaskNotFound)
	}
	delete(s.tasks, id)
	for otherID, other := range s.tasks {
		if other.HasSuccessor(id) {
			other.Successors = slices.DeleteFunc(slices.Clone(other.Successors), func(s string) bool { return s == id })
			s.tasks[otherID] = other
		}
	}
	return nil
}

// snapshot returns a deep copy of the full task mapping.
func (s *graphStore) snapshot() map[string]models.Task {
	out := make(map[string]models.Task, len(s.tasks))
	for id, t := range s.tasks {
		out[id] = t.Clone()
	}
	return out
}
