package engine

// resolver computes and applies the minimal cascade of lane and date changes
// needed to restore the placement invariants after one task changes. It
// collects every task it touches into an ordered dirty set, which becomes the
// operation's change set.
//
// Two cascades exist because the reference behaviour differs by entry point:
// an edge toggle pushes one fixed delta through the whole successor subtree,
// while a move recomputes the violation per successor and shifts only the
// violators. Both walks carry a visited set, so a dependency graph that
// somehow acquired a multi-hop cycle degrades to a partial repair instead of
// recursing forever.
type resolver struct {
	tasks  *graphStore
	dirty  []string
	member map[string]struct{}
}

func newResolver(tasks *graphStore) *resolver {
	return &resolver{tasks: tasks, member: make(map[string]struct{})}
}

func (r *resolver) markDirty(id string) {
	if _, ok := r.member[id]; ok {
		return
	}
	r.member[id] = struct{}{}
	r.dirty = append(r.dirty, id)
}

func (r *resolver) dirtyIDs() []string {
	return append([]string(nil), r.dirty...)
}

// setLane reassigns the task's lane with insert-into-ordered-list semantics:
// every task whose lane lies strictly between the old lane and the target
// moves one lane toward the vacated slot. Lanes stay a permutation of
// 0..n-1, so no two tasks ever share a lane. No-op when the lane is
// unchanged.
func (r *resolver) setLane(id string, lane int) error {
	t, err := r.tasks.get(id)
	if err != nil {
		return err
	}
	if t.Lane == lane {
		return nil
	}

	for _, other := range r.tasks.all() {
		if other.ID == id {
			continue
		}
		switch {
		case lane > t.Lane && other.Lane > t.Lane && other.Lane <= lane:
			other.Lane--
		case lane < t.Lane && other.Lane < t.Lane && other.Lane >= lane:
			other.Lane++
		default:
			continue
		}
		if err := r.tasks.replace(other.ID, other); err != nil {
			return err
		}
		r.markDirty(other.ID)
	}

	t.Lane = lane
	if err := r.tasks.replace(id, t); err != nil {
		return err
	}
	r.markDirty(id)
	return nil
}

// shiftForward moves the task and its entire transitive successor subtree
// forward by the same delta. Each successor whose lane does not lie strictly
// below its parent's is reassigned to the parent's lane. This is the
// edge-toggle repair path.
func (r *resolver) shiftForward(id string, delta int64) error {
	return r.shiftSubtree(id, delta, "", map[string]bool{})
}

func (r *resolver) shiftSubtree(id string, delta int64, parentID string, seen map[string]bool) error {
	if seen[id] {
		return nil
	}
	seen[id] = true

	t, err := r.tasks.get(id)
	if err != nil {
		return err
	}
	t.Start += delta
	t.End += delta
	if err := r.tasks.replace(id, t); err != nil {
		return err
	}
	r.markDirty(id)

	if parentID != "" {
		parent, err := r.tasks.get(parentID)
		if err != nil {
			return err
		}
		if t.Lane <= parent.Lane {
			if err := r.setLane(id, parent.Lane); err != nil {
				return err
			}
		}
	}

	for _, succID := range t.Successors {
		if err := r.shiftSubtree(succID, delta, id, seen); err != nil {
			return err
		}
	}
	return nil
}

// propagate walks the successor subtree of the anchor after a move or
// resize. A successor that now starts before its parent ends is shifted
// forward so its start meets the parent's end; lane correction applies the
// same rule as shiftForward. The walk visits the whole subtree even where no
// date shift is needed, since a lane correction may still apply further
// down. Predecessors of the anchor are never pulled backward.
func (r *resolver) propagate(anchorID string) error {
	return r.propagateFrom(anchorID, map[string]bool{anchorID: true})
}

func (r *resolver) propagateFrom(parentID string, seen map[string]bool) error {
	parent, err := r.tasks.get(parentID)
	if err != nil {
		return err
	}

	for _, succID := range parent.Successors {
		if seen[succID] {
			continue
		}
		seen[succID] = true

		succ, err := r.tasks.get(succID)
		if err != nil {
			return err
		}
		if succ.Start < parent.End {
			delta := parent.End - succ.Start
			succ.Start += delta
			succ.End += delta
			if err := r.tasks.replace(succID, succ); err != nil {
				return err
			}
			r.markDirty(succID)
		}
		if succ.Lane <= parent.Lane {
			if err := r.setLane(succID, parent.Lane); err != nil {
				return err
			}
		}

		if err := r.propagateFrom(succID, seen); err != nil {
			return err
		}

		// Lane shifts may have moved the parent; refresh before the next
		// successor is compared against it.
		parent, err = r.tasks.get(parentID)
		if err != nil {
			return err
		}
	}
	return nil
}
