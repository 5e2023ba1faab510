package gridcalc

import (
	"fmt"
	"strings"

	"github.com/katalvlaran/lvlath/core"
)

// NamedDefinition is a defined name's target: either a resolved reference
// (cell/range) or a formula AST (spec.md §4.3's NamedDefinition variants).
type NamedDefinition struct {
	Name    string
	Sheet   SheetID // home sheet used to resolve unqualified refs inside the formula
	AST     ASTNode
	Formula string
}

// NamedRangeTable interns defined names the way the teacher's
// NamedRangeTable (range.go) does, keeping two tables per spec.md §3's
// data model: a workbook-scoped name -> NamedRange table and a
// sheet-scoped (sheet_id, name) -> NamedRange table, with sheet-scope
// shadowing workbook-scope on lookup (spec.md §4.3). It additionally
// builds a small lvlath/core.Graph over name -> name references purely to
// pre-empt cyclic name *definitions* with a readable cycle path before the
// scheduler's own Kahn pass ever sees the resulting formulas (spec.md §9,
// SPEC_FULL.md §3).
type NamedRangeTable struct {
	workbook map[string]*NamedDefinition            // upper(name) -> def
	sheet    map[SheetID]map[string]*NamedDefinition // sheet -> upper(name) -> def
}

func newNamedRangeTable() *NamedRangeTable {
	return &NamedRangeTable{
		workbook: make(map[string]*NamedDefinition),
		sheet:    make(map[SheetID]map[string]*NamedDefinition),
	}
}

// validName approximates Excel's defined-name rules: must start with a
// letter or underscore, contain only letters/digits/underscore/period,
// and must not look like a bare cell reference (splitLettersDigits
// matching) — Excel itself rejects "A1"-shaped names for the same reason
// our lexer can't disambiguate them from references.
func validName(name string) bool {
	if name == "" {
		return false
	}
	first := name[0]
	if !(isAsciiLetter(first) || first == '_') {
		return false
	}
	for i := 1; i < len(name); i++ {
		c := name[i]
		if !(isAsciiLetter(c) || (c >= '0' && c <= '9') || c == '_' || c == '.') {
			return false
		}
	}
	if _, _, ok := splitLettersDigits(name); ok {
		return false
	}
	return true
}

// resolutionKey returns the cycle-graph vertex identity a name reference
// resolves to when looked up from home: the sheet-scoped definition if one
// exists for (home, name), else the workbook-scoped one, matching
// ResolveScoped's own precedence.
func (t *NamedRangeTable) resolutionKey(home SheetID, name string) string {
	upper := strings.ToUpper(name)
	if defs, ok := t.sheet[home]; ok {
		if _, ok := defs[upper]; ok {
			return sheetKey(home, upper)
		}
	}
	return workbookKey(upper)
}

func workbookKey(upper string) string { return "W:" + upper }
func sheetKey(sheet SheetID, upper string) string {
	return fmt.Sprintf("S%d:%s", sheet, upper)
}

// Define installs or replaces a workbook-scoped named definition.
func (t *NamedRangeTable) Define(def *NamedDefinition) error {
	return t.define(workbookKey(strings.ToUpper(def.Name)), def, func() {
		t.workbook[strings.ToUpper(def.Name)] = def
	})
}

// DefineScoped installs or replaces a sheet-scoped named definition, visible
// only within sheet (and shadowing a workbook-scoped name of the same name
// for lookups from that sheet).
func (t *NamedRangeTable) DefineScoped(sheet SheetID, def *NamedDefinition) error {
	upper := strings.ToUpper(def.Name)
	return t.define(sheetKey(sheet, upper), def, func() {
		defs, ok := t.sheet[sheet]
		if !ok {
			defs = make(map[string]*NamedDefinition)
			t.sheet[sheet] = defs
		}
		defs[upper] = def
	})
}

// define validates def.Name, rejects a definition that would create a
// cyclic chain of name references (A -> B -> A), and installs it via
// commit once it passes both checks. key is def's own cycle-graph vertex
// identity (scoped or workbook, per which table is being written).
func (t *NamedRangeTable) define(key string, def *NamedDefinition, commit func()) error {
	if !validName(def.Name) {
		return NewAppErrorf(InvalidArgument, "invalid defined name %q", def.Name)
	}

	g := core.NewGraph(core.WithDirected(true))
	ensureVertex := func(id string) {
		if g.HasVertex(id) {
			return
		}
		_ = g.AddVertex(id)
	}
	addRefs := func(fromKey string, home SheetID, ast ASTNode) {
		ensureVertex(fromKey)
		ast.Walk(func(n ASTNode) {
			nr, ok := n.(*NamedRangeNode)
			if !ok {
				return
			}
			refKey := t.resolutionKey(home, nr.Name)
			ensureVertex(refKey)
			_, _ = g.AddEdge(fromKey, refKey, 1)
		})
	}

	for upper, existing := range t.workbook {
		if existingKey := workbookKey(upper); existingKey != key {
			addRefs(existingKey, existing.Sheet, existing.AST)
		}
	}
	for sh, defs := range t.sheet {
		for upper, existing := range defs {
			if existingKey := sheetKey(sh, upper); existingKey != key {
				addRefs(existingKey, existing.Sheet, existing.AST)
			}
		}
	}
	addRefs(key, def.Sheet, def.AST)

	if cyclePath, found := findNameCycle(g, key); found {
		return NewAppErrorf(FailedPrecondition, "cyclic name definition: %s", strings.Join(cyclePath, " -> "))
	}

	commit()
	return nil
}

// findNameCycle reports whether a cycle reachable from start exists in g,
// returning the path for diagnostics. lvlath's core.Graph doesn't ship a
// cycle-path helper directly usable off the shelf for a directed graph of
// this shape, so this walks the graph's own adjacency via Neighbors with
// simple DFS coloring — the point of using lvlath here is the vertex/edge
// bookkeeping, not reimplementing a textbook DFS badly.
func findNameCycle(g *core.Graph, start string) ([]string, bool) {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int)
	var path []string

	var visit func(v string) ([]string, bool)
	visit = func(v string) ([]string, bool) {
		color[v] = gray
		path = append(path, v)
		edges, err := g.Neighbors(v)
		if err == nil {
			for _, e := range edges {
				nb := e.To
				switch color[nb] {
				case gray:
					return append(append([]string{}, path...), nb), true
				case white:
					if cyc, found := visit(nb); found {
						return cyc, true
					}
				}
			}
		}
		path = path[:len(path)-1]
		color[v] = black
		return nil, false
	}
	return visit(start)
}

// Resolve looks up a workbook-scoped defined name case-insensitively.
func (t *NamedRangeTable) Resolve(name string) (*NamedDefinition, bool) {
	def, ok := t.workbook[strings.ToUpper(name)]
	return def, ok
}

// ResolveScoped resolves name as seen from sheet: sheet-scoped definitions
// shadow workbook-scoped ones of the same name (spec.md §4.3's
// sheet-scope-first resolution order).
func (t *NamedRangeTable) ResolveScoped(sheet SheetID, name string) (*NamedDefinition, bool) {
	upper := strings.ToUpper(name)
	if defs, ok := t.sheet[sheet]; ok {
		if def, ok := defs[upper]; ok {
			return def, true
		}
	}
	def, ok := t.workbook[upper]
	return def, ok
}

// Undefine removes a workbook-scoped defined name.
func (t *NamedRangeTable) Undefine(name string) bool {
	key := strings.ToUpper(name)
	if _, ok := t.workbook[key]; !ok {
		return false
	}
	delete(t.workbook, key)
	return true
}

// UndefineScoped removes a sheet-scoped defined name.
func (t *NamedRangeTable) UndefineScoped(sheet SheetID, name string) bool {
	defs, ok := t.sheet[sheet]
	if !ok {
		return false
	}
	key := strings.ToUpper(name)
	if _, ok := defs[key]; !ok {
		return false
	}
	delete(defs, key)
	return true
}

// Names lists every currently defined workbook-scoped name.
func (t *NamedRangeTable) Names() []string {
	out := make([]string, 0, len(t.workbook))
	for _, def := range t.workbook {
		out = append(out, def.Name)
	}
	return out
}
