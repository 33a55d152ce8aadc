package engine

import (
	"errors"
	"testing"

	"github.com/ganttline/ganttline/models"
)

func TestGraphStoreGetMissing(t *testing.T) {
	s := newGraphStore()
	_, err := s.get("missing")
	if !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("err = %v, want ErrTaskNotFound", err)
	}
}

func TestGraphStoreAllOrderedByLane(t *testing.T) {
	a := taskAt(models.KindTask, "A", 2, 0, 1)
	b := taskAt(models.KindTask, "B", 0, 0, 1)
	c := taskAt(models.KindTask, "C", 1, 0, 1)
	s := storeWith(a, b, c)

	var names []string
	for _, task := range s.all() {
		names = append(names, task.Name)
	}
	want := []string{"B", "C", "A"}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("all() order = %v, want %v", names, want)
		}
	}
}

func TestGraphStoreRemovePurgesSuccessors(t *testing.T) {
	a := taskAt(models.KindTask, "A", 0, 0, 1)
	b := taskAt(models.KindTask, "B", 1, 2, 3)
	a.Successors = []string{b.ID}
	s := storeWith(a, b)

	if err := s.remove(b.ID); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	got, err := s.get(a.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.HasSuccessor(b.ID) {
		t.Error("removed id should be purged from successor sets")
	}
}

func TestGraphStoreCopiesInAndOut(t *testing.T) {
	a := taskAt(models.KindTask, "A", 0, 0, 1)
	s := storeWith(a)

	got, _ := s.get(a.ID)
	got.Start = 42
	again, _ := s.get(a.ID)
	if again.Start == 42 {
		t.Error("get must return a copy the caller cannot mutate in place")
	}

	a.Name = "mutated"
	again, _ = s.get(a.ID)
	if again.Name == "mutated" {
		t.Error("insert must copy the task")
	}
}

func TestGraphStoreReplaceMissing(t *testing.T) {
	s := newGraphStore()
	err := s.replace("nope", taskAt(models.KindTask, "A", 0, 0, 1))
	if !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("err = %v, want ErrTaskNotFound", err)
	}
}
