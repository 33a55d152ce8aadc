// Package ui renders project timelines in the terminal and hosts the
// interactive edit session.
package ui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/ganttline/ganttline/engine"
	"github.com/ganttline/ganttline/models"
)

const (
	nameColumnWidth = 22
	minGridWidth    = 28
)

// DayToDate converts a day offset from the Unix epoch to a calendar date.
func DayToDate(day int64) time.Time {
	return time.Unix(day*86400, 0).UTC()
}

// RenderTimeline draws the lane-ordered bar view of the project inside the
// given window, one row per task, scaled to width terminal columns.
func RenderTimeline(tasks []models.Task, window engine.Window, width int) string {
	return renderTimeline(tasks, window, width, -1)
}

func renderTimeline(tasks []models.Task, window engine.Window, width int, selectedLane int) string {
	grid := width - nameColumnWidth
	if grid < minGridWidth {
		grid = minGridWidth
	}
	span := window.End - window.Start + 1
	if span < 1 {
		span = 1
	}

	sorted := make([]models.Task, len(tasks))
	copy(sorted, tasks)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Lane < sorted[j].Lane })

	var b strings.Builder
	b.WriteString(renderHeader(window, grid))

	for _, t := range sorted {
		b.WriteString(renderRow(t, window, span, grid, t.Lane == selectedLane))
		b.WriteString("\n")
	}
	if len(sorted) == 0 {
		b.WriteString(StyleSubtle.Render("  (no tasks)"))
		b.WriteString("\n")
	}
	return b.String()
}

// renderHeader prints the window bounds aligned with the grid edges.
func renderHeader(window engine.Window, grid int) string {
	start := DayToDate(window.Start).Format("02 Jan 2006")
	end := DayToDate(window.End).Format("02 Jan 2006")
	gap := grid - len(start) - len(end)
	if gap < 1 {
		gap = 1
	}
	line := strings.Repeat(" ", nameColumnWidth) + start + strings.Repeat(" ", gap) + end
	return StyleHeader.Render(line) + "\n"
}

// cell maps a day offset to a grid column.
func cell(day, windowStart, span int64, grid int) int {
	col := int((day - windowStart) * int64(grid) / span)
	if col < 0 {
		col = 0
	}
	if col >= grid {
		col = grid - 1
	}
	return col
}

func renderRow(t models.Task, window engine.Window, span int64, grid int, selected bool) string {
	name := t.Name
	if t.Completed {
		name += " *"
	}
	if len(name) > nameColumnWidth-2 {
		name = name[:nameColumnWidth-5] + "..."
	}
	label := fmt.Sprintf("%-*s", nameColumnWidth, name)
	if selected {
		label = StyleSelected.Render(label)
	} else if t.Completed {
		label = StyleSubtle.Render(label)
	} else {
		label = StyleText.Render(label)
	}

	row := make([]rune, grid)
	for i := range row {
		row[i] = '·'
	}

	barStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(t.Colour))
	if t.Kind == models.KindMilestone {
		at := cell(t.Start, window.Start, span, grid)
		left := string(row[:at])
		right := string(row[at+1:])
		return label + StyleSubtle.Render(left) + StyleMilestone.Render("◆") + StyleSubtle.Render(right)
	}

	from := cell(t.Start, window.Start, span, grid)
	to := cell(t.End, window.Start, span, grid)
	for i := from; i <= to; i++ {
		row[i] = '█'
	}
	left := string(row[:from])
	bar := string(row[from : to+1])
	right := string(row[to+1:])
	return label + StyleSubtle.Render(left) + barStyle.Render(bar) + StyleSubtle.Render(right)
}

// RenderTaskTable prints tasks as a plain table for non-interactive output.
func RenderTaskTable(tasks []models.Task) string {
	sorted := make([]models.Task, len(tasks))
	copy(sorted, tasks)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Lane < sorted[j].Lane })

	var b strings.Builder
	header := fmt.Sprintf("%-6s %-10s %-22s %-12s %-12s %-5s %-5s %s",
		"LANE", "KIND", "NAME", "START", "END", "DONE", "DEPS", "ID")
	b.WriteString(StyleHeader.Render(header) + "\n")

	for _, t := range sorted {
		done := ""
		if t.Completed {
			done = "yes"
		}
		line := fmt.Sprintf("%-6d %-10s %-22s %-12s %-12s %-5s %-5d %s",
			t.Lane,
			t.Kind,
			truncate(t.Name, 22),
			DayToDate(t.Start).Format("2006-01-02"),
			DayToDate(t.End).Format("2006-01-02"),
			done,
			len(t.Successors),
			t.ID[:8],
		)
		if t.Completed {
			b.WriteString(StyleSubtle.Render(line))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
