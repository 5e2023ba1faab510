package gridcalc

import (
	"go.uber.org/zap"
)

// Engine is the top-level host API (spec.md §6), generalizing the
// teacher's Spreadsheet/RunnableSpreadsheet (sheet.go) off a per-cell
// object model onto the packed-coordinate dependency graph.
type Engine struct {
	cfg   EngineConfig
	sheets *SheetRegistry
	graph  *DependencyGraph
	names  *NamedRangeTable
	tables *TableRegistry
	dispatch *FunctionRegistry

	opts   engineOptions
	events []ChangeEvent
}

// NewEngine constructs an Engine ready to accept cells and formulas.
func NewEngine(cfg EngineConfig, opts ...EngineOption) *Engine {
	cfg = cfg.normalize()
	return &Engine{
		cfg:      cfg,
		sheets:   NewSheetRegistry(),
		graph:    newDependencyGraph(cfg),
		names:    newNamedRangeTable(),
		tables:   newTableRegistry(),
		dispatch: newFunctionRegistry(),
		opts:     resolveEngineOptions(opts),
	}
}

func (eng *Engine) logger() *zap.SugaredLogger { return eng.opts.logger }

// Clock returns the engine's injected (or default wall) clock, used by
// the datetime function family for NOW/TODAY.
func (eng *Engine) Clock() Clock { return eng.opts.clock }

// RandomSource returns the engine's injected (or default) random source.
// No registered built-in reads it: RAND and RANDBETWEEN are not registered.
func (eng *Engine) RandomSource() RandomGenerator { return eng.opts.rng }

// DefineSheet interns a worksheet name, creating it if necessary.
func (eng *Engine) DefineSheet(name string) SheetID {
	return eng.sheets.Define(name)
}

// resolveSheetName resolves a sheet name to its ID for dependency
// extraction, satisfying the func(string)(SheetID,bool) shape
// extractDependencies expects.
func (eng *Engine) resolveSheetName(name string) (SheetID, bool) {
	id := eng.sheets.Lookup(name)
	if id == InvalidSheetID {
		return 0, false
	}
	return id, true
}

// SetCellValue installs a literal value at (sheet, row, col) (spec.md §6
// set_cell_value).
func (eng *Engine) SetCellValue(sheet SheetID, row, col int, value LiteralValue) (OperationSummary, error) {
	if !ValidateCoord(row, col) {
		return OperationSummary{}, NewAppErrorf(OutOfRange, "cell (%d,%d) out of range", row, col)
	}
	summary := eng.graph.SetValue(sheet, PackCoord(row, col), value)
	eng.recordEvent(ChangeEvent{Kind: ChangeSetValue, Sheet: sheet, Row: row, Col: col})
	return summary, nil
}

// SetCellFormula parses and installs formula at (sheet, row, col)
// (spec.md §6 set_cell_formula). The formula string should include its
// leading "=".
func (eng *Engine) SetCellFormula(sheet SheetID, row, col int, formula string) (OperationSummary, error) {
	if !ValidateCoord(row, col) {
		return OperationSummary{}, NewAppErrorf(OutOfRange, "cell (%d,%d) out of range", row, col)
	}
	ast, err := ParseFormula(formula)
	if err != nil {
		return OperationSummary{}, err
	}
	summary := eng.graph.SetFormula(sheet, PackCoord(row, col), ast, formula, eng.resolveSheetName, func(n *TableRefNode) []vertexDep {
		return tableDependencies(eng, n)
	})
	eng.recordEvent(ChangeEvent{Kind: ChangeSetFormula, Sheet: sheet, Row: row, Col: col})
	return summary, nil
}

// GetCellValue reads the current value at (sheet, row, col), or nil if
// the cell has never been set (spec.md §6 get_cell_value).
func (eng *Engine) GetCellValue(sheet SheetID, row, col int) LiteralValue {
	v, ok := eng.graph.GetValue(sheet, PackCoord(row, col))
	if !ok {
		return nil
	}
	return v
}

// DefineName installs a workbook-scoped defined name (spec.md §4.3).
func (eng *Engine) DefineName(name, formula string, home SheetID) error {
	ast, err := ParseFormula(formula)
	if err != nil {
		return err
	}
	if err := eng.names.Define(&NamedDefinition{Name: name, Sheet: home, AST: ast, Formula: formula}); err != nil {
		return err
	}
	eng.recordEvent(ChangeEvent{Kind: ChangeDefineName, Name: name})
	return nil
}

// UpdateName replaces an existing defined name's formula.
func (eng *Engine) UpdateName(name, formula string, home SheetID) error {
	if _, ok := eng.names.Resolve(name); !ok {
		return NewAppErrorf(NotFound, "name %q is not defined", name)
	}
	if err := eng.DefineName(name, formula, home); err != nil {
		return err
	}
	eng.recordEvent(ChangeEvent{Kind: ChangeUpdateName, Name: name})
	return nil
}

// DeleteName removes a defined name.
func (eng *Engine) DeleteName(name string) bool {
	ok := eng.names.Undefine(name)
	if ok {
		eng.recordEvent(ChangeEvent{Kind: ChangeDeleteName, Name: name})
	}
	return ok
}

// DefineSheetName installs a sheet-scoped defined name, visible only from
// formulas on sheet and shadowing any workbook-scoped name of the same
// spelling when resolved there (spec.md §4.3).
func (eng *Engine) DefineSheetName(sheet SheetID, name, formula string) error {
	ast, err := ParseFormula(formula)
	if err != nil {
		return err
	}
	if err := eng.names.DefineScoped(sheet, &NamedDefinition{Name: name, Sheet: sheet, AST: ast, Formula: formula}); err != nil {
		return err
	}
	eng.recordEvent(ChangeEvent{Kind: ChangeDefineName, Sheet: sheet, Name: name})
	return nil
}

// UpdateSheetName replaces an existing sheet-scoped defined name's formula.
func (eng *Engine) UpdateSheetName(sheet SheetID, name, formula string) error {
	if _, ok := eng.names.ResolveScoped(sheet, name); !ok {
		return NewAppErrorf(NotFound, "name %q is not defined on this sheet", name)
	}
	if err := eng.DefineSheetName(sheet, name, formula); err != nil {
		return err
	}
	eng.recordEvent(ChangeEvent{Kind: ChangeUpdateName, Sheet: sheet, Name: name})
	return nil
}

// DeleteSheetName removes a sheet-scoped defined name.
func (eng *Engine) DeleteSheetName(sheet SheetID, name string) bool {
	ok := eng.names.UndefineScoped(sheet, name)
	if ok {
		eng.recordEvent(ChangeEvent{Kind: ChangeDeleteName, Sheet: sheet, Name: name})
	}
	return ok
}

func (eng *Engine) recordEvent(e ChangeEvent) {
	eng.events = append(eng.events, e)
}

// DrainEvents returns and clears the pending ChangeEvent stream.
func (eng *Engine) DrainEvents() []ChangeEvent {
	out := eng.events
	eng.events = nil
	return out
}
