package gridcalc

// edgeStore holds the directed dependent -> dependency relation as a
// compressed-sparse-row-like structure: forward[v] lists the vertices v
// depends on, reverse[v] lists the vertices that depend on v. A small
// delta buffer absorbs single-edge mutations so a batch of set_formula
// calls doesn't force a full adjacency rebuild on every call; the reverse
// index degrades to a linear scan while the delta buffer is non-empty or
// batch mode is on, per spec.md §3 ("the reverse index is maintained when the
// delta is empty ... otherwise a fallback scan is used").
type edgeStore struct {
	forward map[VertexID][]VertexID
	reverse map[VertexID][]VertexID

	// delta buffers pending additions before they're folded into reverse;
	// batchMode defers folding until EndBatch.
	delta     []edgeDelta
	batchMode bool
}

type edgeDelta struct {
	from VertexID // dependent
	to   VertexID // dependency
	add  bool
}

func newEdgeStore() *edgeStore {
	return &edgeStore{forward: make(map[VertexID][]VertexID), reverse: make(map[VertexID][]VertexID)}
}

// BeginBatch defers reverse-index maintenance until EndBatch, for bulk
// formula installs (e.g. pasting a column of formulas).
func (e *edgeStore) BeginBatch() { e.batchMode = true }

// EndBatch folds any pending delta into the reverse index and resumes
// eager maintenance.
func (e *edgeStore) EndBatch() {
	e.batchMode = false
	e.flushDelta()
}

func (e *edgeStore) flushDelta() {
	for _, d := range e.delta {
		if d.add {
			e.reverse[d.to] = appendUnique(e.reverse[d.to], d.from)
		} else {
			e.reverse[d.to] = removeVertex(e.reverse[d.to], d.from)
		}
	}
	e.delta = e.delta[:0]
}

// AddEdge records that `from` depends on `to`.
func (e *edgeStore) AddEdge(from, to VertexID) {
	e.forward[from] = appendUnique(e.forward[from], to)
	if e.batchMode {
		e.delta = append(e.delta, edgeDelta{from: from, to: to, add: true})
		return
	}
	e.reverse[to] = appendUnique(e.reverse[to], from)
}

// RemoveOutgoing clears all edges from `from` (used before installing a
// new formula's dependency set, or clearing a value cell's old formula
// edges).
func (e *edgeStore) RemoveOutgoing(from VertexID) {
	olds := e.forward[from]
	delete(e.forward, from)
	for _, to := range olds {
		if e.batchMode {
			e.delta = append(e.delta, edgeDelta{from: from, to: to, add: false})
			continue
		}
		e.reverse[to] = removeVertex(e.reverse[to], from)
	}
}

// Dependents returns every vertex that directly depends on v (via edges
// only — stripe-based dependents are collected separately by the graph).
func (e *edgeStore) Dependents(v VertexID) []VertexID {
	if !e.batchMode && len(e.delta) == 0 {
		return e.reverse[v]
	}
	// fallback scan while the delta buffer has unflushed entries
	var out []VertexID
	seen := make(map[VertexID]struct{})
	for from, tos := range e.forward {
		for _, to := range tos {
			if to == v {
				if _, ok := seen[from]; !ok {
					seen[from] = struct{}{}
					out = append(out, from)
				}
			}
		}
	}
	return out
}

// Dependencies returns the set of vertices v directly depends on.
func (e *edgeStore) Dependencies(v VertexID) []VertexID {
	return e.forward[v]
}

func appendUnique(xs []VertexID, v VertexID) []VertexID {
	for _, x := range xs {
		if x == v {
			return xs
		}
	}
	return append(xs, v)
}

func removeVertex(xs []VertexID, v VertexID) []VertexID {
	for i, x := range xs {
		if x == v {
			return append(xs[:i], xs[i+1:]...)
		}
	}
	return xs
}
