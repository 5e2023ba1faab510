package gridcalc

import (
	"fmt"
	"math"
	"strings"
)

// EvalContext carries the coordinate a formula AST is being evaluated at.
// The teacher's parser.go threaded a single mutable "current address" on
// *Spreadsheet (GetCurrentAddress/SetCurrentAddress) that every CellRefNode
// read during Eval. SPEC_FULL.md §4.2 replaces that with an explicit,
// per-call EvalContext: the scheduler now fans evaluation out across many
// vertices whose relative-offset resolution must not race on shared
// mutable state.
type EvalContext struct {
	Sheet SheetID
	Row   int
	Col   int
}

// ASTNode is the evaluation contract every formula node implements,
// generalizing the teacher's ASTNode interface (parser.go) off a bare
// *Spreadsheet receiver onto an explicit (*Engine, EvalContext) pair.
type ASTNode interface {
	Eval(eng *Engine, ctx EvalContext) (LiteralValue, error)
	Position() NodePosition
	String() string
	// Walk invokes visit on this node and recursively on its children,
	// used by dependency extraction (graph.go) and the reference adjuster
	// (structural.go).
	Walk(visit func(ASTNode))
}

// NodePosition is the [start, end) byte range of a node in its source
// formula text, used for parser diagnostics.
type NodePosition struct {
	Start int
	End   int
}

func (p NodePosition) Position() NodePosition { return p }

// LiteralNode wraps a constant LiteralValue (number, text, boolean, or
// array literal).
type LiteralNode struct {
	NodePosition
	Value LiteralValue
}

func (n *LiteralNode) Eval(*Engine, EvalContext) (LiteralValue, error) { return n.Value, nil }
func (n *LiteralNode) Walk(visit func(ASTNode))                        { visit(n) }
func (n *LiteralNode) String() string {
	switch v := n.Value.(type) {
	case TextValue:
		return "\"" + strings.ReplaceAll(string(v), "\"", "\"\"") + "\""
	case BoolValue:
		if v {
			return "TRUE"
		}
		return "FALSE"
	default:
		s, _ := AsText(n.Value)
		return s
	}
}

// CellRefNode is a reference to a single cell: Cell{sheet?, row, col}
// (spec.md §3). AbsoluteRow/AbsoluteCol record whether the source text
// carried a "$" marker — kept only for round-trip rendering, since this
// engine resolves every reference to its literal target rather than
// re-anchoring relative offsets against a "current address" the way the
// teacher's parser.go did; structural row/column shifts instead rewrite
// the AST in place via a reference adjuster (see structural.go).
type CellRefNode struct {
	NodePosition
	Sheet       string // "" = current sheet
	Row         int
	Col         int
	AbsoluteRow bool
	AbsoluteCol bool
}

func (n *CellRefNode) Walk(visit func(ASTNode)) { visit(n) }

func (n *CellRefNode) Eval(eng *Engine, ctx EvalContext) (LiteralValue, error) {
	sheet := ctx.Sheet
	if n.Sheet != "" {
		id := eng.sheets.Lookup(n.Sheet)
		if id == InvalidSheetID {
			return NewErrorValue(ErrRef, ""), nil
		}
		sheet = id
	}
	if !ValidateCoord(n.Row, n.Col) {
		return NewErrorValue(ErrRef, ""), nil
	}
	v, ok := eng.graph.GetValue(sheet, PackCoord(n.Row, n.Col))
	if !ok {
		return Empty, nil
	}
	return v, nil
}

func (n *CellRefNode) String() string {
	col, _ := numberToColumn(n.Col)
	colMark, rowMark := "", ""
	if n.AbsoluteCol {
		colMark = "$"
	}
	if n.AbsoluteRow {
		rowMark = "$"
	}
	return renderSheetQualifier(n.Sheet) + colMark + col + rowMark + fmt.Sprintf("%d", n.Row)
}

// RangeNode is a reference to a rectangular (possibly unbounded) range.
type RangeNode struct {
	NodePosition
	Sheet string
	Start CellRefNode
	End   CellRefNode
	// WholeColumn/WholeRow mirror RangeRef's unbounded encoding.
	WholeColumn bool
	WholeRow    bool
}

func (n *RangeNode) Walk(visit func(ASTNode)) {
	visit(n)
	n.Start.Walk(visit)
	n.End.Walk(visit)
}

func (n *RangeNode) resolveBounds(eng *Engine, ctx EvalContext) (sheet SheetID, sr, sc, er, ec int, err error) {
	sheet = ctx.Sheet
	if n.Sheet != "" {
		id := eng.sheets.Lookup(n.Sheet)
		if id == InvalidSheetID {
			return 0, 0, 0, 0, 0, NewExcelError(ErrRef, "")
		}
		sheet = id
	}
	sr, sc = n.Start.Row, n.Start.Col
	er, ec = n.End.Row, n.End.Col
	if n.WholeColumn {
		sr, er = 1, MaxRow
	}
	if n.WholeRow {
		sc, ec = 1, MaxCol
	}
	if sr > er {
		sr, er = er, sr
	}
	if sc > ec {
		sc, ec = ec, sc
	}
	return sheet, sr, sc, er, ec, nil
}

func (n *RangeNode) Eval(eng *Engine, ctx EvalContext) (LiteralValue, error) {
	sheet, sr, sc, er, ec, rerr := n.resolveBounds(eng, ctx)
	if rerr != nil {
		return NewErrorValue(ErrRef, ""), nil
	}
	view := eng.graph.RangeView(sheet, sr, sc, er, ec)
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

func (n *RangeNode) String() string {
	return n.Start.String() + ":" + n.End.String()
}

// NamedRangeNode references a defined name (spec.md §4.3's NamedDefinition).
type NamedRangeNode struct {
	NodePosition
	Name string
}

func (n *NamedRangeNode) Walk(visit func(ASTNode)) { visit(n) }

func (n *NamedRangeNode) Eval(eng *Engine, ctx EvalContext) (LiteralValue, error) {
	def, ok := eng.names.ResolveScoped(ctx.Sheet, n.Name)
	if !ok {
		return NewErrorValue(ErrName, ""), nil
	}
	return def.AST.Eval(eng, EvalContext{Sheet: def.Sheet, Row: ctx.Row, Col: ctx.Col})
}

func (n *NamedRangeNode) String() string { return n.Name }

// BinaryOpNode is a binary arithmetic/comparison/concatenation operator.
type BinaryOpNode struct {
	NodePosition
	Op    string
	Left  ASTNode
	Right ASTNode
}

func (n *BinaryOpNode) Walk(visit func(ASTNode)) {
	visit(n)
	n.Left.Walk(visit)
	n.Right.Walk(visit)
}

func (n *BinaryOpNode) String() string {
	return "(" + n.Left.String() + " " + n.Op + " " + n.Right.String() + ")"
}

func (n *BinaryOpNode) Eval(eng *Engine, ctx EvalContext) (LiteralValue, error) {
	l, err := n.Left.Eval(eng, ctx)
	if err != nil {
		return nil, err
	}
	if lv, ok := l.(ErrorValue); ok {
		return lv, nil
	}
	r, err := n.Right.Eval(eng, ctx)
	if err != nil {
		return nil, err
	}
	if rv, ok := r.(ErrorValue); ok {
		return rv, nil
	}
	return evalBinaryOp(n.Op, l, r)
}

func evalBinaryOp(op string, l, r LiteralValue) (LiteralValue, error) {
	switch op {
	case "&":
		ls, lerr := AsText(l)
		if lerr != nil {
			return ErrorValue{lerr}, nil
		}
		rs, rerr := AsText(r)
		if rerr != nil {
			return ErrorValue{rerr}, nil
		}
		return TextValue(ls + rs), nil
	case "=", "<>":
		eq := valuesEqual(l, r)
		if op == "<>" {
			eq = !eq
		}
		return BoolValue(eq), nil
	case "<", "<=", ">", ">=":
		c := compareValues(l, r)
		switch op {
		case "<":
			return BoolValue(c < 0), nil
		case "<=":
			return BoolValue(c <= 0), nil
		case ">":
			return BoolValue(c > 0), nil
		default:
			return BoolValue(c >= 0), nil
		}
	case "+", "-", "*", "/", "^":
		ln, lerr := AsNumber(l)
		if lerr != nil {
			return ErrorValue{lerr}, nil
		}
		rn, rerr := AsNumber(r)
		if rerr != nil {
			return ErrorValue{rerr}, nil
		}
		switch op {
		case "+":
			return NumberValue(ln + rn), nil
		case "-":
			return NumberValue(ln - rn), nil
		case "*":
			return NumberValue(ln * rn), nil
		case "/":
			if rn == 0 {
				return NewErrorValue(ErrDiv, ""), nil
			}
			return NumberValue(ln / rn), nil
		case "^":
			return NumberValue(powFloat(ln, rn)), nil
		}
	}
	return NewErrorValue(ErrValue, fmt.Sprintf("unsupported operator %q", op)), nil
}

func valuesEqual(l, r LiteralValue) bool {
	if lt, ok := l.(TextValue); ok {
		if rt, ok := r.(TextValue); ok {
			return asciiLower(string(lt)) == asciiLower(string(rt))
		}
	}
	return compareValues(l, r) == 0
}

// UnaryOpNode is a prefix "-"/"+" or postfix "%" operator.
type UnaryOpNode struct {
	NodePosition
	Op       string
	Operand  ASTNode
	Postfix  bool
}

func (n *UnaryOpNode) Walk(visit func(ASTNode)) {
	visit(n)
	n.Operand.Walk(visit)
}

func (n *UnaryOpNode) String() string {
	if n.Postfix {
		return n.Operand.String() + n.Op
	}
	return n.Op + n.Operand.String()
}

func (n *UnaryOpNode) Eval(eng *Engine, ctx EvalContext) (LiteralValue, error) {
	v, err := n.Operand.Eval(eng, ctx)
	if err != nil {
		return nil, err
	}
	if ev, ok := v.(ErrorValue); ok {
		return ev, nil
	}
	num, nerr := AsNumber(v)
	if nerr != nil {
		return ErrorValue{nerr}, nil
	}
	switch n.Op {
	case "-":
		return NumberValue(-num), nil
	case "+":
		return NumberValue(num), nil
	case "%":
		return NumberValue(num / 100), nil
	}
	return NewErrorValue(ErrValue, ""), nil
}

// FunctionCallNode invokes a registered built-in by name.
type FunctionCallNode struct {
	NodePosition
	Name string
	Args []ASTNode
}

func (n *FunctionCallNode) Walk(visit func(ASTNode)) {
	visit(n)
	for _, a := range n.Args {
		a.Walk(visit)
	}
}

func (n *FunctionCallNode) String() string {
	parts := make([]string, len(n.Args))
	for i, a := range n.Args {
		parts[i] = a.String()
	}
	return n.Name + "(" + strings.Join(parts, ",") + ")"
}

func (n *FunctionCallNode) Eval(eng *Engine, ctx EvalContext) (LiteralValue, error) {
	fn, ok := eng.dispatch.Lookup(n.Name)
	if !ok {
		return NewErrorValue(ErrName, ""), nil
	}
	return fn.Invoke(eng, ctx, n.Args)
}

// ArrayLiteralNode is a "{1,2;3,4}" inline array.
type ArrayLiteralNode struct {
	NodePosition
	Rows [][]ASTNode
}

func (n *ArrayLiteralNode) Walk(visit func(ASTNode)) {
	visit(n)
	for _, row := range n.Rows {
		for _, c := range row {
			c.Walk(visit)
		}
	}
}

func (n *ArrayLiteralNode) String() string {
	rows := make([]string, len(n.Rows))
	for i, row := range n.Rows {
		parts := make([]string, len(row))
		for j, c := range row {
			parts[j] = c.String()
		}
		rows[i] = strings.Join(parts, ",")
	}
	return "{" + strings.Join(rows, ";") + "}"
}

func (n *ArrayLiteralNode) Eval(eng *Engine, ctx EvalContext) (LiteralValue, error) {
	out := make([][]LiteralValue, len(n.Rows))
	for i, row := range n.Rows {
		out[i] = make([]LiteralValue, len(row))
		for j, c := range row {
			v, err := c.Eval(eng, ctx)
			if err != nil {
				return nil, err
			}
			out[i][j] = v
		}
	}
	return ArrayValue{Rows: out}, nil
}

func powFloat(base, exp float64) float64 {
	// small integer fast path avoids math.Pow's libm rounding surprises
	// for the overwhelmingly common case of small integral exponents.
	if exp == float64(int(exp)) && exp >= 0 && exp <= 64 {
		result := 1.0
		for i := 0; i < int(exp); i++ {
			result *= base
		}
		return result
	}
	return math.Pow(base, exp)
}
