package engine

import (
	"time"

	"github.com/ganttline/ganttline/models"
)

// horizonDays is the minimum span of the visible timeline: twelve weeks past
// today, so an empty or short project still renders a usable grid.
const horizonDays = 12 * 7

// Window is the [Start, End] day range the presentation layer currently
// renders. It grows to the right in place; a task landing before Start forces
// the caller to discard cached layout and rebuild from the full task set.
type Window struct {
	Start int64
	End   int64
}

// Covers reports whether the day falls at or after the window start. A false
// result means the caller must reload: earlier tasks may reveal range the
// window never materialised.
func (w Window) Covers(day int64) bool {
	return day >= w.Start
}

// Today converts a wall-clock instant to a day offset from the Unix epoch.
func Today(now time.Time) int64 {
	return now.UTC().Unix() / 86400
}

// deriveWindow computes the window for a task set. With no tasks the window
// is [today, today+12w]; otherwise it spans from the earliest task start to
// the latest task end, never ending before today+12w.
func deriveWindow(tasks []models.Task, today int64) Window {
	horizon := today + horizonDays
	if len(tasks) == 0 {
		return Window{Start: today, End: horizon}
	}
	w := Window{Start: tasks[0].Start, End: horizon}
	for _, t := range tasks {
		if t.Start < w.Start {
			w.Start = t.Start
		}
		if t.End > w.End {
			w.End = t.End
		}
	}
	return w
}
