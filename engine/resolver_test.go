package engine

import (
	"testing"

	"github.com/ganttline/ganttline/models"
)

func storeWith(tasks ...models.Task) *graphStore {
	s := newGraphStore()
	for _, t := range tasks {
		s.insert(t)
	}
	return s
}

func lanes(t *testing.T, s *graphStore) map[string]int {
	t.Helper()
	out := make(map[string]int)
	for _, task := range s.all() {
		out[task.Name] = task.Lane
	}
	return out
}

func TestSetLaneMovesDown(t *testing.T) {
	a := taskAt(models.KindTask, "A", 0, 0, 1)
	b := taskAt(models.KindTask, "B", 1, 0, 1)
	c := taskAt(models.KindTask, "C", 2, 0, 1)
	d := taskAt(models.KindTask, "D", 3, 0, 1)
	s := storeWith(a, b, c, d)

	r := newResolver(s)
	if err := r.setLane(a.ID, 2); err != nil {
		t.Fatalf("setLane failed: %v", err)
	}

	got := lanes(t, s)
	want := map[string]int{"A": 2, "B": 0, "C": 1, "D": 3}
	for name, lane := range want {
		if got[name] != lane {
			t.Errorf("%s lane = %d, want %d", name, got[name], lane)
		}
	}
}

func TestSetLaneMovesUp(t *testing.T) {
	a := taskAt(models.KindTask, "A", 0, 0, 1)
	b := taskAt(models.KindTask, "B", 1, 0, 1)
	c := taskAt(models.KindTask, "C", 2, 0, 1)
	s := storeWith(a, b, c)

	r := newResolver(s)
	if err := r.setLane(c.ID, 0); err != nil {
		t.Fatalf("setLane failed: %v", err)
	}

	got := lanes(t, s)
	want := map[string]int{"A": 1, "B": 2, "C": 0}
	for name, lane := range want {
		if got[name] != lane {
			t.Errorf("%s lane = %d, want %d", name, got[name], lane)
		}
	}
}

func TestSetLaneNoOp(t *testing.T) {
	a := taskAt(models.KindTask, "A", 0, 0, 1)
	s := storeWith(a)

	r := newResolver(s)
	if err := r.setLane(a.ID, 0); err != nil {
		t.Fatalf("setLane failed: %v", err)
	}
	if len(r.dirtyIDs()) != 0 {
		t.Errorf("dirty = %v, want empty for a no-op", r.dirtyIDs())
	}
}

func TestShiftForwardTracksDirtySet(t *testing.T) {
	a := taskAt(models.KindTask, "A", 0, 0, 3)
	b := taskAt(models.KindTask, "B", 1, 5, 8)
	a.Successors = []string{b.ID}
	s := storeWith(a, b)

	r := newResolver(s)
	if err := r.shiftForward(a.ID, 10); err != nil {
		t.Fatalf("shiftForward failed: %v", err)
	}

	gotA, _ := s.get(a.ID)
	gotB, _ := s.get(b.ID)
	if gotA.Start != 10 || gotA.End != 13 || gotB.Start != 15 || gotB.End != 18 {
		t.Errorf("A=[%d,%d] B=[%d,%d], want A=[10,13] B=[15,18]", gotA.Start, gotA.End, gotB.Start, gotB.End)
	}
	for _, id := range []string{a.ID, b.ID} {
		found := false
		for _, d := range r.dirtyIDs() {
			if d == id {
				found = true
			}
		}
		if !found {
			t.Errorf("dirty set missing %s", id)
		}
	}
}

// A cyclic graph cannot be built through ToggleEdge, but a corrupt upstream
// load could carry one. The visited set keeps both cascades terminating on
// it.
func TestCascadesTerminateOnCyclicGraph(t *testing.T) {
	a := taskAt(models.KindTask, "A", 0, 0, 3)
	b := taskAt(models.KindTask, "B", 1, 5, 8)
	c := taskAt(models.KindTask, "C", 2, 10, 12)
	a.Successors = []string{b.ID}
	b.Successors = []string{c.ID}
	c.Successors = []string{a.ID}
	s := storeWith(a, b, c)

	r := newResolver(s)
	if err := r.shiftForward(a.ID, 5); err != nil {
		t.Fatalf("shiftForward on cycle failed: %v", err)
	}

	r2 := newResolver(s)
	if err := r2.propagate(a.ID); err != nil {
		t.Fatalf("propagate on cycle failed: %v", err)
	}
}
