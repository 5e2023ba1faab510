package gridcalc

import "context"

// EvalReport summarizes one Evaluate() pass (spec.md §4.4).
type EvalReport struct {
	VerticesEvaluated int
	CircularVertices  []VertexID
	Cancelled         bool
}

// Evaluate runs the scheduler's topological pass over every vertex
// currently marked dirty (plus every volatile vertex, which is always
// treated as dirty): it computes residual in-degrees restricted to the
// dirty subgraph via Kahn's algorithm, evaluates each vertex in
// dependency order, writes its result, and clears its dirty flag. Any
// vertex left with nonzero residual in-degree once the frontier empties
// is part of a cycle and is assigned #CIRC! (spec.md §4.4). ctx.Done()
// is honored as the cancel signal between vertices — the idiomatic Go
// substitute for a bespoke cancel-token type.
func (eng *Engine) Evaluate(ctx context.Context) EvalReport {
	g := eng.graph
	frontier := eng.collectEvaluationFrontier()
	if len(frontier) == 0 {
		return EvalReport{}
	}

	inSet := make(map[VertexID]struct{}, len(frontier))
	for _, v := range frontier {
		inSet[v] = struct{}{}
	}

	indeg := make(map[VertexID]int, len(frontier))
	deps := make(map[VertexID][]VertexID, len(frontier))
	for _, v := range frontier {
		var count int
		for _, dep := range g.edges.Dependencies(v) {
			if _, ok := inSet[dep]; ok {
				count++
				deps[dep] = append(deps[dep], v) // dep -> dependents within frontier
			}
		}
		indeg[v] = count
	}
	// A frontier vertex lying inside a range that another frontier vertex
	// reads through a stripe registration is one of that vertex's producers.
	for _, u := range frontier {
		row, col := g.vertices.coord[u].Row(), g.vertices.coord[u].Col()
		for _, sk := range stripesTouchedBy(g.vertices.sheet[u], row, col, g.cfg.EnableBlockStripes) {
			for _, reg := range g.stripeMembers[sk] {
				if _, ok := inSet[reg.vertex]; ok && reg.bounds.contains(row, col) {
					deps[u] = append(deps[u], reg.vertex)
					indeg[reg.vertex]++
				}
			}
		}
	}

	queue := make([]VertexID, 0, len(frontier))
	for _, v := range frontier {
		if indeg[v] == 0 {
			queue = append(queue, v)
		}
	}

	report := EvalReport{}
	var evaluated []VertexID

	for len(queue) > 0 {
		select {
		case <-ctx.Done():
			report.Cancelled = true
			return report
		default:
		}

		v := queue[0]
		queue = queue[1:]

		eng.evaluateVertex(v)
		evaluated = append(evaluated, v)
		report.VerticesEvaluated++

		for _, dependent := range deps[v] {
			indeg[dependent]--
			if indeg[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if report.VerticesEvaluated < len(frontier) {
		for _, v := range frontier {
			if indeg[v] > 0 {
				g.vertices.values[v] = NewErrorValue(ErrCirc, "")
				g.vertices.kind[v] = VertexValue
				report.CircularVertices = append(report.CircularVertices, v)
				evaluated = append(evaluated, v)
			}
		}
	}

	g.ClearDirtyFlags(evaluated)
	return report
}

// collectEvaluationFrontier returns every vertex that needs recomputation
// this pass: dirty vertices plus any formula vertex flagged volatile
// (spec.md §4.4 get_evaluation_vertices).
func (eng *Engine) collectEvaluationFrontier() []VertexID {
	g := eng.graph
	seen := make(map[VertexID]struct{})
	var out []VertexID
	add := func(v VertexID) {
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	for _, v := range g.DirtyVertices() {
		add(v)
	}
	for id, kind := range g.vertices.kind {
		if kind == VertexFormula && g.vertices.volatile[id] {
			add(VertexID(id))
		}
	}
	return out
}

// evaluateVertex runs one formula vertex's AST and commits the result,
// per spec.md §4.4 step 5: errors are stored as Error LiteralValues, not
// thrown.
func (eng *Engine) evaluateVertex(v VertexID) {
	g := eng.graph
	if g.vertices.kind[v] != VertexFormula {
		return
	}
	ast := g.vertices.formulas[v]
	if ast == nil {
		g.vertices.values[v] = Empty
		return
	}
	ctx := EvalContext{Sheet: g.vertices.sheet[v], Row: g.vertices.coord[v].Row(), Col: g.vertices.coord[v].Col()}
	val, err := ast.Eval(eng, ctx)
	if err != nil {
		eng.logger().Warnw("formula evaluation returned infrastructural error",
			"vertex", v, "error", err.Error())
		val = NewErrorValue(ErrValue, err.Error())
	}
	if val == nil {
		val = Empty
	}
	g.vertices.values[v] = val
}
