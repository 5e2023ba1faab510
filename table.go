package gridcalc

import "strings"

// TableColumnSpec names one column of a structured Table.
type TableColumnSpec struct {
	Name string
}

// Table is a structured-reference target (spec.md §4.3's Table[...]
// additions): a named rectangular region with header/data/totals bands,
// resolved by column name for Table[Column] references. Table[#Data],
// Table[#Headers] and Table[#Totals] all read the whole data band, and
// nested specifier lists such as Table[[#Data],[Column]] are not parsed.
type Table struct {
	Name       string
	Sheet      SheetID
	HeaderRow  int
	FirstCol   int
	LastCol    int
	FirstData  int // first data row (HeaderRow+1 when a header is present)
	LastData   int
	HasTotals  bool
	TotalsRow  int
	Columns    []TableColumnSpec
}

// DataRange returns the table's data band (excluding header/totals) as a
// RangeRef.
func (t Table) DataRange() RangeRef {
	fr, lr, fc, lc := t.FirstData, t.LastData, t.FirstCol, t.LastCol
	return RangeRef{StartRow: &fr, EndRow: &lr, StartCol: &fc, EndCol: &lc}
}

// ColumnIndex resolves a column name (case-insensitive) to its 0-based
// offset within the table, or -1 if not found.
func (t Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if strings.EqualFold(c.Name, name) {
			return i
		}
	}
	return -1
}

// TableRegistry interns Table definitions by name, the way
// NamedRangeTable interns defined names.
type TableRegistry struct {
	byName map[string]*Table
}

func newTableRegistry() *TableRegistry {
	return &TableRegistry{byName: make(map[string]*Table)}
}

// Define installs or replaces a table definition.
func (r *TableRegistry) Define(t *Table) {
	r.byName[strings.ToUpper(t.Name)] = t
}

// Resolve looks up a table by name.
func (r *TableRegistry) Resolve(name string) (*Table, bool) {
	t, ok := r.byName[strings.ToUpper(name)]
	return t, ok
}

// Remove deletes a table definition.
func (r *TableRegistry) Remove(name string) bool {
	key := strings.ToUpper(name)
	if _, ok := r.byName[key]; !ok {
		return false
	}
	delete(r.byName, key)
	return true
}

// TableRefNode references a structured Table[Column] expression
// (SPEC_FULL.md §4.3). It extracts to one cell dependency per cell of the
// table's resolved data band, never to stripes however large the band;
// the band is resolved when the formula is set.
type TableRefNode struct {
	NodePosition
	Table  string
	Column string // "" means the whole data band
}

func (n *TableRefNode) Walk(visit func(ASTNode)) { visit(n) }

func (n *TableRefNode) String() string {
	if n.Column == "" {
		return n.Table + "[#Data]"
	}
	return n.Table + "[" + n.Column + "]"
}

func (n *TableRefNode) Eval(eng *Engine, ctx EvalContext) (LiteralValue, error) {
	t, ok := eng.tables.Resolve(n.Table)
	if !ok {
		return NewErrorValue(ErrRef, ""), nil
	}
	fc, lc := t.FirstCol, t.LastCol
	if n.Column != "" {
		idx := t.ColumnIndex(n.Column)
		if idx < 0 {
			return NewErrorValue(ErrRef, ""), nil
		}
		fc = t.FirstCol + idx
		lc = fc
	}
	view := eng.graph.RangeView(t.Sheet, t.FirstData, fc, t.LastData, lc)
	rows, cols := view.Dims()
	if rows == 1 && cols == 1 {
		return view.GetCell(0, 0), nil
	}
	out := make([][]LiteralValue, rows)
	for r := 0; r < rows; r++ {
		out[r] = make([]LiteralValue, cols)
		for c := 0; c < cols; c++ {
			out[r][c] = view.GetCell(r, c)
		}
	}
	return ArrayValue{Rows: out}, nil
}

// tableDependencies returns the cell dependencies a TableRefNode
// contributes, for extractDependencies (graph.go) to fold in alongside
// ordinary range dependencies.
func tableDependencies(eng *Engine, n *TableRefNode) []vertexDep {
	t, ok := eng.tables.Resolve(n.Table)
	if !ok {
		return nil
	}
	fc, lc := t.FirstCol, t.LastCol
	if n.Column != "" {
		idx := t.ColumnIndex(n.Column)
		if idx < 0 {
			return nil
		}
		fc = t.FirstCol + idx
		lc = fc
	}
	var deps []vertexDep
	for r := t.FirstData; r <= t.LastData; r++ {
		for c := fc; c <= lc; c++ {
			deps = append(deps, vertexDep{sheet: t.Sheet, coord: PackCoord(r, c)})
		}
	}
	return deps
}
