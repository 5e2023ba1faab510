package gridcalc

// OperationSummary reports what a mutating graph operation touched,
// mirroring spec.md §4.3's set_value/set_formula return contract.
type OperationSummary struct {
	AffectedVertices   []VertexID
	CreatedPlaceholders []VertexID
}

// DependencyGraph is the engine's core state: the vertex store, its edges,
// and the stripe membership index, wired together the way the teacher's
// DependencyGraph (graph.go) wires together cell/range dependency maps
// and dirty/volatile sets — generalized onto packed coordinates and
// compressed stripe dependencies instead of per-cell maps.
type DependencyGraph struct {
	vertices *vertexStore
	edges    *edgeStore

	stripeMembers map[StripeKey][]stripeRegistration // stripe -> (vertex, its range bounds)
	vertexStripes map[VertexID][]StripeKey           // reverse: vertex -> stripes it's registered in

	cfg EngineConfig
}

// rangeBounds is the resolved (post whole-row/whole-column expansion)
// rectangle a stripe registration was compressed from, kept alongside the
// registration so a write can be checked for precise containment instead
// of trusting the coarse stripe bucket alone (spec.md §4.3's stripe
// containment-verification rule).
type rangeBounds struct {
	sr, sc, er, ec int
}

func (b rangeBounds) contains(row, col int) bool {
	return row >= b.sr && row <= b.er && col >= b.sc && col <= b.ec
}

// stripeRegistration records that vertex depends on a range compressed
// into a stripe bucket, plus the range's own bounds for containment checks.
type stripeRegistration struct {
	vertex VertexID
	bounds rangeBounds
}

// stripeDep is a single stripe a range dependency compresses to, paired
// with the originating range's bounds.
type stripeDep struct {
	key    StripeKey
	bounds rangeBounds
}

func newDependencyGraph(cfg EngineConfig) *DependencyGraph {
	return &DependencyGraph{
		vertices:      newVertexStore(),
		edges:         newEdgeStore(),
		stripeMembers: make(map[StripeKey][]stripeRegistration),
		vertexStripes: make(map[VertexID][]StripeKey),
		cfg:           cfg,
	}
}

// GetValue reads the current value stored at (sheet, coord), if any.
func (g *DependencyGraph) GetValue(sheet SheetID, coord PackedCoord) (LiteralValue, bool) {
	id, ok := g.vertices.lookup(sheet, coord)
	if !ok {
		return nil, false
	}
	v := g.vertices.values[id]
	if v == nil {
		return nil, false
	}
	return v, true
}

// SetValue installs a literal value at (sheet, coord), clearing any
// previous formula's edges first. Returns the set of vertices marked
// dirty as a result (spec.md §4.3 set_value).
func (g *DependencyGraph) SetValue(sheet SheetID, coord PackedCoord, value LiteralValue) OperationSummary {
	id := g.vertices.getOrCreate(sheet, coord)
	if g.vertices.kind[id] == VertexFormula {
		g.clearFormula(id)
	}
	g.vertices.kind[id] = VertexValue
	g.vertices.values[id] = value
	g.vertices.formulas[id] = nil
	g.vertices.formulaText[id] = ""
	g.vertices.volatile[id] = false

	affected := g.markDependentsDirty(sheet, coord, id)
	return OperationSummary{AffectedVertices: affected}
}

// SetFormula installs a formula at (sheet, coord): extracts its
// dependencies, allocates placeholder vertices for cells it references
// that don't yet exist, detects direct self-reference as #CIRC!, and
// marks dependents dirty (spec.md §4.3 set_formula).
func (g *DependencyGraph) SetFormula(sheet SheetID, coord PackedCoord, ast ASTNode, source string, resolveSheet func(string) (SheetID, bool), tableDeps func(*TableRefNode) []vertexDep) OperationSummary {
	id := g.vertices.getOrCreate(sheet, coord)
	if g.vertices.kind[id] == VertexFormula {
		g.clearFormula(id)
	}

	var created []VertexID
	deps, stripeDeps, isVolatile := extractDependencies(ast, sheet, resolveSheet, g.cfg.RangeExpansionLimit, g.cfg.EnableBlockStripes, tableDeps)

	selfRef := false
	for _, d := range deps {
		depSheet, depCoord := d.sheet, d.coord
		if depSheet == sheet && depCoord == coord {
			selfRef = true
			continue
		}
		existed := true
		if _, ok := g.vertices.lookup(depSheet, depCoord); !ok {
			existed = false
		}
		depID := g.vertices.getOrCreate(depSheet, depCoord)
		if !existed {
			g.vertices.kind[depID] = VertexPlaceholder
			created = append(created, depID)
		}
		g.edges.AddEdge(id, depID)
	}

	for _, sd := range stripeDeps {
		g.stripeMembers[sd.key] = append(g.stripeMembers[sd.key], stripeRegistration{vertex: id, bounds: sd.bounds})
		g.vertexStripes[id] = append(g.vertexStripes[id], sd.key)
	}

	g.vertices.kind[id] = VertexFormula
	g.vertices.formulas[id] = ast
	g.vertices.formulaText[id] = source
	g.vertices.volatile[id] = isVolatile

	if selfRef {
		g.vertices.kind[id] = VertexValue
		g.vertices.values[id] = NewErrorValue(ErrCirc, "")
		g.vertices.formulas[id] = nil
	} else {
		g.vertices.dirty[id] = true
	}

	affected := g.markDependentsDirty(sheet, coord, id)
	return OperationSummary{AffectedVertices: affected, CreatedPlaceholders: created}
}

// clearFormula removes a formula vertex's outgoing edges and stripe
// membership before it is replaced by a new formula or a literal value.
func (g *DependencyGraph) clearFormula(id VertexID) {
	g.edges.RemoveOutgoing(id)
	cleared := make(map[StripeKey]struct{}, len(g.vertexStripes[id]))
	for _, sk := range g.vertexStripes[id] {
		if _, done := cleared[sk]; done {
			continue
		}
		cleared[sk] = struct{}{}
		g.stripeMembers[sk] = removeStripeRegistration(g.stripeMembers[sk], id)
	}
	delete(g.vertexStripes, id)
}

// removeStripeRegistration drops every registration belonging to id from
// regs (a vertex can be registered against the same stripe more than once
// when several ranges in its formula compress to the same bucket).
func removeStripeRegistration(regs []stripeRegistration, id VertexID) []stripeRegistration {
	out := regs[:0]
	for _, r := range regs {
		if r.vertex != id {
			out = append(out, r)
		}
	}
	return out
}

// markDependentsDirty flags every vertex transitively downstream of id via
// direct edges or precise stripe containment, implementing the BFS dirty
// traversal spec.md §4.3 requires: each write reopens the frontier at the
// written cell, and every vertex newly marked dirty reopens it again at
// its own cell, so a chain A1 -> B1 -> C1 propagates all the way to C1
// instead of stopping at B1. Stripe candidates are checked against the
// originating range's own bounds (stripeRegistration.bounds) before being
// marked, so a write outside every range registered on a coarse stripe
// (e.g. a whole-column bucket) is never falsely flagged dirty.
func (g *DependencyGraph) markDependentsDirty(sheet SheetID, coord PackedCoord, id VertexID) []VertexID {
	seen := map[VertexID]struct{}{id: {}}
	var affected []VertexID

	type frontierCell struct {
		sheet SheetID
		coord PackedCoord
		id    VertexID
	}
	queue := []frontierCell{{sheet: sheet, coord: coord, id: id}}

	mark := func(v VertexID) {
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		g.vertices.dirty[v] = true
		affected = append(affected, v)
		queue = append(queue, frontierCell{sheet: g.vertices.sheet[v], coord: g.vertices.coord[v], id: v})
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		for _, dep := range g.edges.Dependents(cur.id) {
			mark(dep)
		}
		row, col := cur.coord.Row(), cur.coord.Col()
		for _, sk := range stripesTouchedBy(cur.sheet, row, col, g.cfg.EnableBlockStripes) {
			for _, reg := range g.stripeMembers[sk] {
				if reg.bounds.contains(row, col) {
					mark(reg.vertex)
				}
			}
		}
	}
	return affected
}

// vertexDep is an extracted cell-level dependency.
type vertexDep struct {
	sheet SheetID
	coord PackedCoord
}

// extractDependencies walks an AST and collects every cell it reads
// directly, every stripe a large/unbounded range dependency compresses
// to, and whether the formula is volatile (calls a function that
// isVolatileFunction lists — see dispatch.go). Ranges of at most
// RangeExpansionLimit cells are expanded to individual cell dependencies; larger
// or unbounded ranges fall back to stripes, per spec.md §3. A reference
// whose sheet name doesn't resolve is skipped: evaluation will surface
// that as a #REF! value on its own, and the graph shouldn't wire an edge
// to a sheet that doesn't exist.
func extractDependencies(ast ASTNode, home SheetID, resolveSheet func(string) (SheetID, bool), expansionLimit int, blocksEnabled bool, tableDeps func(*TableRefNode) []vertexDep) (cells []vertexDep, stripes []stripeDep, volatile bool) {
	resolve := func(name string) (SheetID, bool) {
		if name == "" {
			return home, true
		}
		return resolveSheet(name)
	}

	ast.Walk(func(n ASTNode) {
		switch node := n.(type) {
		case *CellRefNode:
			sheet, ok := resolve(node.Sheet)
			if !ok {
				return
			}
			cells = append(cells, vertexDep{sheet: sheet, coord: PackCoord(node.Row, node.Col)})
		case *RangeNode:
			sheet, ok := resolve(node.Sheet)
			if !ok {
				return
			}
			sr, sc := node.Start.Row, node.Start.Col
			er, ec := node.End.Row, node.End.Col
			if node.WholeColumn {
				sr, er = 1, MaxRow
			}
			if node.WholeRow {
				sc, ec = 1, MaxCol
			}
			if sr > er {
				sr, er = er, sr
			}
			if sc > ec {
				sc, ec = ec, sc
			}
			count := (er - sr + 1) * (ec - sc + 1)
			if !node.WholeColumn && !node.WholeRow && count <= expansionLimit {
				for r := sr; r <= er; r++ {
					for c := sc; c <= ec; c++ {
						cells = append(cells, vertexDep{sheet: sheet, coord: PackCoord(r, c)})
					}
				}
				return
			}
			bounds := rangeBounds{sr: sr, sc: sc, er: er, ec: ec}
			for _, key := range stripesForRange(sheet, sr, sc, er, ec, node.WholeColumn, node.WholeRow, blocksEnabled) {
				stripes = append(stripes, stripeDep{key: key, bounds: bounds})
			}
		case *TableRefNode:
			if tableDeps != nil {
				cells = append(cells, tableDeps(node)...)
			}
		case *FunctionCallNode:
			if isVolatileFunction(node.Name) {
				volatile = true
			}
		}
	})
	return cells, stripes, volatile
}

// RangeView returns a read view over a rectangular region of sheet, for
// range-valued AST evaluation and function dispatch.
func (g *DependencyGraph) RangeView(sheet SheetID, sr, sc, er, ec int) RangeView {
	return &storeRangeView{graph: g, sheet: sheet, sr: sr, sc: sc, er: er, ec: ec}
}

// ClearDirtyFlags resets the dirty bit on every vertex in ids, called by
// the scheduler after a vertex's recomputed value has been committed.
func (g *DependencyGraph) ClearDirtyFlags(ids []VertexID) {
	for _, id := range ids {
		g.vertices.dirty[id] = false
	}
}

// DirtyVertices returns every vertex currently flagged dirty, the
// scheduler's evaluation frontier (spec.md §4.4 get_evaluation_vertices).
func (g *DependencyGraph) DirtyVertices() []VertexID {
	var out []VertexID
	for id, dirty := range g.vertices.dirty {
		if dirty {
			out = append(out, VertexID(id))
		}
	}
	return out
}
