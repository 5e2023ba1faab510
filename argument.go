package gridcalc

// FnCaps is a bitset of capability flags a built-in function declares,
// generalizing the teacher's implicit per-function behavior (builtin.go's
// name-switch) into an explicit, introspectable contract (spec.md §4.5).
type FnCaps uint16

const (
	// CapVolatile marks a function that must be recomputed on every
	// calculation pass regardless of dirty-flag state (NOW, TODAY, RAND).
	CapVolatile FnCaps = 1 << iota
	// CapArrayAware marks a function that consumes RangeView arguments
	// directly instead of requiring scalar coercion of each argument.
	CapArrayAware
	// CapLocalCapture permits a function implementation to read/write
	// package-level mutable state local to its own call (e.g. a per-call
	// scratch buffer) — spec.md §7's narrow carve-out from the "no shared
	// mutable state" rule.
	CapLocalCapture
)

// CalcValue is the argument-passing representation a function body
// receives: either a single scalar LiteralValue, a RangeView over a
// multi-cell argument, or (for higher-order functions like SUMPRODUCT's
// lambda-free callback style) a Callable wrapping an unevaluated AST plus
// its EvalContext (spec.md §4.5).
type CalcValue struct {
	Scalar   LiteralValue
	Range    RangeView
	Callable *CallableArg
	isRange  bool
}

// CallableArg defers evaluation of an argument AST, used by functions
// whose contract requires inspecting the shape of an argument before
// deciding whether (and how many times) to evaluate it.
type CallableArg struct {
	Node ASTNode
	Eng  *Engine
	Ctx  EvalContext
}

// Invoke evaluates the wrapped AST exactly once.
func (c *CallableArg) Invoke() (LiteralValue, error) {
	return c.Node.Eval(c.Eng, c.Ctx)
}

// IsRange reports whether this CalcValue carries a multi-cell RangeView.
func (v CalcValue) IsRange() bool { return v.isRange }

// AsScalar collapses a CalcValue to a single LiteralValue: a Range
// collapses to its top-left cell (Excel's implicit-intersection rule for
// scalar contexts), matching the coercion AsNumber/AsText/AsBool already
// apply to a 1x1 ArrayValue.
func (v CalcValue) AsScalar() LiteralValue {
	if v.isRange {
		return v.Range.GetCell(0, 0)
	}
	return v.Scalar
}

// AsRangeView returns a RangeView over this CalcValue regardless of
// whether it originated as a scalar or a range, so array-aware functions
// can treat every argument uniformly.
func (v CalcValue) AsRangeView() RangeView {
	if v.isRange {
		return v.Range
	}
	return &singleRangeView{value: v.Scalar}
}

func scalarCalcValue(v LiteralValue) CalcValue { return CalcValue{Scalar: v} }

func rangeCalcValue(v RangeView) CalcValue { return CalcValue{Range: v, isRange: true} }

// evalArg evaluates a single argument AST node to a CalcValue: range-
// producing nodes (RangeNode, NamedRangeNode resolving to a range, array
// literals) become a Range CalcValue; everything else is a Scalar.
func evalArg(eng *Engine, ctx EvalContext, node ASTNode) (CalcValue, error) {
	switch n := node.(type) {
	case *RangeNode:
		sheet, sr, sc, er, ec, err := n.resolveBounds(eng, ctx)
		if err != nil {
			return CalcValue{}, err
		}
		return rangeCalcValue(eng.graph.RangeView(sheet, sr, sc, er, ec)), nil
	default:
		v, err := node.Eval(eng, ctx)
		if err != nil {
			return CalcValue{}, err
		}
		if arr, ok := v.(ArrayValue); ok {
			rows, cols := arr.Dims()
			if rows*cols > 1 {
				return rangeCalcValue(&arrayRangeView{rows: arr.Rows}), nil
			}
			if rows == 1 && cols == 1 {
				return scalarCalcValue(arr.Rows[0][0]), nil
			}
		}
		return scalarCalcValue(v), nil
	}
}

// ArgShape constrains what an ArgSchema slot will accept.
type ArgShape int

const (
	ShapeAny ArgShape = iota
	ShapeScalar
	ShapeRange
)

// ArgSchema describes one positional (or variadic trailing) argument slot
// in a built-in function's signature, used for arity/shape validation
// before the function body runs.
type ArgSchema struct {
	Name     string
	Shape    ArgShape
	Optional bool
	Variadic bool
}
