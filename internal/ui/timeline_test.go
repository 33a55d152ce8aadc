package ui

import (
	"strings"
	"testing"

	"github.com/ganttline/ganttline/engine"
	"github.com/ganttline/ganttline/models"
)

func sampleWindow() engine.Window {
	return engine.Window{Start: 0, End: 83}
}

func TestDayToDate(t *testing.T) {
	if got := DayToDate(0).Format("2006-01-02"); got != "1970-01-01" {
		t.Errorf("DayToDate(0) = %s", got)
	}
	if got := DayToDate(20000).Format("2006-01-02"); got != "2024-10-04" {
		t.Errorf("DayToDate(20000) = %s", got)
	}
}

func TestRenderTimelineShowsTasksInLaneOrder(t *testing.T) {
	first := models.NewTask(models.KindTask, "Design", 0, 6)
	second := models.NewTask(models.KindTask, "Build", 7, 20)
	second.Lane = 1

	out := RenderTimeline([]models.Task{second, first}, sampleWindow(), 100)

	designAt := strings.Index(out, "Design")
	buildAt := strings.Index(out, "Build")
	if designAt == -1 || buildAt == -1 {
		t.Fatalf("output missing task names:\n%s", out)
	}
	if designAt > buildAt {
		t.Error("lane 0 task should render before lane 1 task")
	}
	if !strings.Contains(out, "█") {
		t.Error("task rows should contain bar cells")
	}
}

func TestRenderTimelineMilestoneMarker(t *testing.T) {
	m := models.NewTask(models.KindMilestone, "Launch", 10, 10)
	out := RenderTimeline([]models.Task{m}, sampleWindow(), 100)
	if !strings.Contains(out, "◆") {
		t.Errorf("milestone should render as a diamond:\n%s", out)
	}
	if strings.Contains(out, "█") {
		t.Error("milestone should not render a bar")
	}
}

func TestRenderTimelineEmpty(t *testing.T) {
	out := RenderTimeline(nil, sampleWindow(), 100)
	if !strings.Contains(out, "(no tasks)") {
		t.Errorf("empty project placeholder missing:\n%s", out)
	}
}

func TestCellClamping(t *testing.T) {
	w := sampleWindow()
	span := w.End - w.Start + 1

	if got := cell(-10, w.Start, span, 50); got != 0 {
		t.Errorf("cell before window = %d, want 0", got)
	}
	if got := cell(w.End+30, w.Start, span, 50); got != 49 {
		t.Errorf("cell past window = %d, want 49", got)
	}
	if got := cell(0, w.Start, span, 50); got != 0 {
		t.Errorf("cell at window start = %d, want 0", got)
	}
}

func TestRenderTaskTable(t *testing.T) {
	task := models.NewTask(models.KindTask, "Design", 0, 6)
	done := models.NewTask(models.KindTask, "Spec", 0, 2)
	done.Lane = 1
	done.Completed = true

	out := RenderTaskTable([]models.Task{task, done})
	for _, want := range []string{"LANE", "Design", "Spec", "1970-01-01", "1970-01-07", "yes"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}
