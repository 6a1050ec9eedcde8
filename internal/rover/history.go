package rover

// History is the bounded, insertion-ordered run record. It is owned
// exclusively by the simulation loop and is NOT safe for concurrent use;
// observers only ever see copies produced by View.
type History struct {
	snaps   []Snapshot
	cap     int
	dropped int
}

// DefaultHistoryCap bounds a run at 20000 snapshots, about 16 minutes of
// simulated time at the default 0.05s step.
const DefaultHistoryCap = 20000

// NewHistory returns an empty history bounded at capacity (DefaultHistoryCap
// when capacity <= 0).
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCap
	}
	return &History{snaps: make([]Snapshot, 0, min(capacity, 4096)), cap: capacity}
}

// Append records one snapshot, dropping the oldest entry once full.
func (h *History) Append(s Snapshot) {
	if len(h.snaps) == h.cap {
		copy(h.snaps, h.snaps[1:])
		h.snaps[len(h.snaps)-1] = s
		h.dropped++
		return
	}
	h.snaps = append(h.snaps, s)
}

// Len is the number of retained snapshots.
func (h *History) Len() int { return len(h.snaps) }

// Dropped is how many snapshots fell off the front of the bound.
func (h *History) Dropped() int { return h.dropped }

// Last returns the most recent snapshot, if any.
func (h *History) Last() (Snapshot, bool) {
	if len(h.snaps) == 0 {
		return Snapshot{}, false
	}
	return h.snaps[len(h.snaps)-1], true
}

// Clear empties the history. Only called on explicit reset.
func (h *History) Clear() {
	h.snaps = h.snaps[:0]
	h.dropped = 0
}

// View returns a deep-copied, read-only sequence of the retained snapshots.
func (h *History) View() View {
	v := View{Snapshots: make([]Snapshot, len(h.snaps)), Dropped: h.dropped}
	for i, s := range h.snaps {
		v.Snapshots[i] = s.Clone()
	}
	return v
}

// View is a point-in-time copy of a History handed to observers. Mutating it
// never affects the running simulation.
type View struct {
	Snapshots []Snapshot
	Dropped   int
}

// Last returns the newest snapshot in the view, if any.
func (v View) Last() (Snapshot, bool) {
	if len(v.Snapshots) == 0 {
		return Snapshot{}, false
	}
	return v.Snapshots[len(v.Snapshots)-1], true
}
