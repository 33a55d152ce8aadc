package models

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// TaskKind distinguishes schedulable units on the timeline. A milestone is a
// task whose date range may collapse to a single day and which carries no
// completion state.
type TaskKind string

const (
	KindTask      TaskKind = "task"
	KindMilestone TaskKind = "milestone"
)

// DefaultColour is assigned to tasks created without an explicit colour.
const DefaultColour = "#4c6fbf"

// Task is a single schedulable unit: a named bar occupying one lane and a
// day-indexed date range, linked forward to the tasks that may not start
// before it ends.
type Task struct {
	ID          string   `json:"id" yaml:"id" toml:"id" validate:"required,uuid4"`
	Kind        TaskKind `json:"kind" yaml:"kind" toml:"kind" validate:"required,oneof=task milestone"`
	Name        string   `json:"name" yaml:"name" toml:"name" validate:"required,min=1,max=20"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty" validate:"max=1024"`
	Colour      string   `json:"colour" yaml:"colour" toml:"colour" validate:"required,len=7,startswith=#"`
	// Start and End are day offsets from the Unix epoch. End >= Start; a
	// milestone may have End == Start.
	Start int64 `json:"start" yaml:"start" toml:"start"`
	End   int64 `json:"end" yaml:"end" toml:"end" validate:"gtefield=Start"`
	// Lane is the exclusive row the task occupies. Within a project, lanes
	// form a permutation of 0..n-1.
	Lane      int  `json:"lane" yaml:"lane" toml:"lane" validate:"min=0"`
	Completed bool `json:"completed" yaml:"completed" toml:"completed"`
	// Successors holds the ids of tasks that depend on this one: a successor
	// may not start before this task ends.
	Successors []string `json:"successors,omitempty" yaml:"successors,omitempty" toml:"successors,omitempty" validate:"dive,uuid4"`
}

// HasSuccessor reports whether id is a direct successor of the task.
func (t Task) HasSuccessor(id string) bool {
	return slices.Contains(t.Successors, id)
}

// Clone returns a deep copy of the task.
func (t Task) Clone() Task {
	c := t
	c.Successors = slices.Clone(t.Successors)
	return c
}

// Project owns the task mapping for one timeline. The mapping is the unit of
// undo/redo snapshotting.
type Project struct {
	ID    string          `json:"id" yaml:"id" toml:"id" validate:"required"`
	Name  string          `json:"name" yaml:"name" toml:"name" validate:"required,min=1,max=50"`
	Tasks map[string]Task `json:"tasks" yaml:"tasks" toml:"tasks" validate:"dive"`
}

// NewProject creates an empty project with a fresh id.
func NewProject(name string) Project {
	return Project{
		ID:    uuid.NewString(),
		Name:  name,
		Tasks: make(map[string]Task),
	}
}

// Clone returns a deep copy of the project, including every task.
func (p Project) Clone() Project {
	c := p
	c.Tasks = make(map[string]Task, len(p.Tasks))
	for id, t := range p.Tasks {
		c.Tasks[id] = t.Clone()
	}
	return c
}

// NewTask creates a task of the given kind with defaults applied. Milestones
// collapse to a single day; tasks span start..end inclusive.
func NewTask(kind TaskKind, name string, start, end int64) Task {
	if kind == KindMilestone {
		end = start
	}
	return Task{
		ID:         uuid.NewString(),
		Kind:       kind,
		Name:       name,
		Colour:     DefaultColour,
		Start:      start,
		End:        end,
		Successors: []string{},
	}
}

// global validator instance; caches struct metadata across calls.
var validate = validator.New()

// ValidateStruct performs validation on any struct carrying validation tags.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	var messages []string
	for _, e := range validationErrors {
		messages = append(messages, fmt.Sprintf("validation failed on field '%s': rule '%s' (value: '%v')", e.StructNamespace(), e.Tag(), e.Value()))
	}
	return fmt.Errorf("%s", strings.Join(messages, "; "))
}
