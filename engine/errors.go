package engine

import "errors"

var (
	// ErrTaskNotFound is returned when an operation references a task id that
	// is absent from the open project.
	ErrTaskNotFound = errors.New("task not found")

	// ErrInvalidEdge is returned when a dependency toggle would create a
	// self-dependency or an immediate two-task cycle. No state changes when
	// an edge is rejected.
	ErrInvalidEdge = errors.New("invalid dependency edge")
)
