package gridcalc

// registerLookupFunctions installs XLOOKUP and the dynamic-array family
// (FILTER, UNIQUE, SEQUENCE, TRANSPOSE, TAKE, DROP), one of SPEC_FULL.md
// §4.7's representative families. The dynamic-array functions return an
// ArrayValue; XLOOKUP returns a single value when its return array is
// one-dimensional. An ArrayValue result is stored whole as the value of
// the formula's own cell; it is not spilled into neighbouring cells.
func registerLookupFunctions(r *FunctionRegistry) {
	r.register(&BuiltinFunc{
		Name: "XLOOKUP",
		Args: []ArgSchema{
			{Name: "lookup_value", Shape: ShapeScalar},
			{Name: "lookup_array", Shape: ShapeRange},
			{Name: "return_array", Shape: ShapeRange},
			{Name: "if_not_found", Shape: ShapeScalar, Optional: true},
		},
		Body: func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
			lookup, errVal := scalarArg(eng, ctx, args[0])
			if errVal != nil {
				return errVal, nil
			}
			lookupArr, errVal2 := rangeArg(eng, ctx, args[1])
			if errVal2 != nil {
				return errVal2, nil
			}
			returnArr, errVal3 := rangeArg(eng, ctx, args[2])
			if errVal3 != nil {
				return errVal3, nil
			}
			rows, cols := lookupArr.Dims()
			n := rows
			vertical := true
			if rows == 1 && cols > 1 {
				n = cols
				vertical = false
			}
			for i := 0; i < n; i++ {
				var cell LiteralValue
				if vertical {
					cell = lookupArr.GetCell(i, 0)
				} else {
					cell = lookupArr.GetCell(0, i)
				}
				if compareValues(cell, lookup) == 0 {
					if vertical {
						_, rCols := returnArr.Dims()
						if rCols == 1 {
							return returnArr.GetCell(i, 0), nil
						}
						row := make([]LiteralValue, rCols)
						for c := 0; c < rCols; c++ {
							row[c] = returnArr.GetCell(i, c)
						}
						return ArrayValue{Rows: [][]LiteralValue{row}}, nil
					}
					return returnArr.GetCell(0, i), nil
				}
			}
			if len(args) > 3 {
				fallback, errVal4 := scalarArg(eng, ctx, args[3])
				if errVal4 != nil {
					return errVal4, nil
				}
				return fallback, nil
			}
			return NewErrorValue(ErrNA, ""), nil
		},
	})

	r.register(&BuiltinFunc{
		Name: "FILTER",
		Args: []ArgSchema{
			{Name: "array", Shape: ShapeRange},
			{Name: "include", Shape: ShapeRange},
			{Name: "if_empty", Shape: ShapeAny, Optional: true},
		},
		Body: func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
			array, errVal := rangeArg(eng, ctx, args[0])
			if errVal != nil {
				return errVal, nil
			}
			include, errVal2 := rangeArg(eng, ctx, args[1])
			if errVal2 != nil {
				return errVal2, nil
			}
			rows, cols := array.Dims()
			incRows, _ := include.Dims()
			var out [][]LiteralValue
			for r := 0; r < rows; r++ {
				ir := r
				if incRows == 1 {
					ir = 0
				}
				keep, berr := AsBool(include.GetCell(ir, 0))
				if berr != nil || !keep {
					continue
				}
				row := make([]LiteralValue, cols)
				for c := 0; c < cols; c++ {
					row[c] = array.GetCell(r, c)
				}
				out = append(out, row)
			}
			if len(out) == 0 {
				if len(args) > 2 {
					return args[2].Eval(eng, ctx)
				}
				return NewErrorValue(ErrCalc, "no rows matched FILTER's condition"), nil
			}
			return ArrayValue{Rows: out}, nil
		},
	})

	r.register(&BuiltinFunc{
		Name: "UNIQUE",
		Args: []ArgSchema{{Name: "array", Shape: ShapeRange}},
		Body: func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
			array, errVal := rangeArg(eng, ctx, args[0])
			if errVal != nil {
				return errVal, nil
			}
			rows, cols := array.Dims()
			var out [][]LiteralValue
			seen := make([]string, 0, rows)
			for r := 0; r < rows; r++ {
				key := ""
				row := make([]LiteralValue, cols)
				for c := 0; c < cols; c++ {
					row[c] = array.GetCell(r, c)
					s, _ := AsText(row[c])
					key += s + "\x1f"
				}
				dup := false
				for _, k := range seen {
					if k == key {
						dup = true
						break
					}
				}
				if dup {
					continue
				}
				seen = append(seen, key)
				out = append(out, row)
			}
			return ArrayValue{Rows: out}, nil
		},
	})

	r.register(&BuiltinFunc{
		Name: "SEQUENCE",
		Args: []ArgSchema{
			{Name: "rows", Shape: ShapeScalar},
			{Name: "columns", Shape: ShapeScalar, Optional: true},
			{Name: "start", Shape: ShapeScalar, Optional: true},
			{Name: "step", Shape: ShapeScalar, Optional: true},
		},
		Body: func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
			arg := func(i int) ASTNode {
				if i < len(args) {
					return args[i]
				}
				return nil
			}
			rows, errVal := scalarNumberArg(eng, ctx, arg(0), 1)
			if errVal != nil {
				return errVal, nil
			}
			cols, errVal2 := scalarNumberArg(eng, ctx, arg(1), 1)
			if errVal2 != nil {
				return errVal2, nil
			}
			start, errVal3 := scalarNumberArg(eng, ctx, arg(2), 1)
			if errVal3 != nil {
				return errVal3, nil
			}
			step, errVal4 := scalarNumberArg(eng, ctx, arg(3), 1)
			if errVal4 != nil {
				return errVal4, nil
			}
			out := make([][]LiteralValue, int(rows))
			v := start
			for rr := 0; rr < int(rows); rr++ {
				out[rr] = make([]LiteralValue, int(cols))
				for cc := 0; cc < int(cols); cc++ {
					out[rr][cc] = NumberValue(v)
					v += step
				}
			}
			return ArrayValue{Rows: out}, nil
		},
	})

	r.register(&BuiltinFunc{
		Name: "TRANSPOSE",
		Args: []ArgSchema{{Name: "array", Shape: ShapeRange}},
		Body: func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
			array, errVal := rangeArg(eng, ctx, args[0])
			if errVal != nil {
				return errVal, nil
			}
			rows, cols := array.Dims()
			out := make([][]LiteralValue, cols)
			for c := 0; c < cols; c++ {
				out[c] = make([]LiteralValue, rows)
				for rr := 0; rr < rows; rr++ {
					out[c][rr] = array.GetCell(rr, c)
				}
			}
			return ArrayValue{Rows: out}, nil
		},
	})

	r.register(&BuiltinFunc{
		Name: "TAKE",
		Args: []ArgSchema{{Name: "array", Shape: ShapeRange}, {Name: "rows", Shape: ShapeScalar}},
		Body: func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
			return takeOrDrop(eng, ctx, args, true)
		},
	})
	r.register(&BuiltinFunc{
		Name: "DROP",
		Args: []ArgSchema{{Name: "array", Shape: ShapeRange}, {Name: "rows", Shape: ShapeScalar}},
		Body: func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
			return takeOrDrop(eng, ctx, args, false)
		},
	})
}

func takeOrDrop(eng *Engine, ctx EvalContext, args []ASTNode, take bool) (LiteralValue, error) {
	array, errVal := rangeArg(eng, ctx, args[0])
	if errVal != nil {
		return errVal, nil
	}
	n, errVal2 := scalarNumberArg(eng, ctx, args[1], 0)
	if errVal2 != nil {
		return errVal2, nil
	}
	rows, cols := array.Dims()
	count := int(n)
	var lo, hi int
	if take {
		if count >= 0 {
			lo, hi = 0, min(count, rows)
		} else {
			lo, hi = max(0, rows+count), rows
		}
	} else {
		if count >= 0 {
			lo, hi = min(count, rows), rows
		} else {
			lo, hi = 0, max(0, rows+count)
		}
	}
	out := make([][]LiteralValue, 0, hi-lo)
	for r := lo; r < hi; r++ {
		row := make([]LiteralValue, cols)
		for c := 0; c < cols; c++ {
			row[c] = array.GetCell(r, c)
		}
		out = append(out, row)
	}
	return ArrayValue{Rows: out}, nil
}

// scalarNumberArg evaluates an optional scalar argument, substituting
// fallback when the argument slot wasn't supplied by the caller (args[i]
// is nil only when the schema marks the slot Optional and parseFunctionCall
// didn't produce a node for it, which cannot happen here since variadic
// handling is explicit per-function — retained for SEQUENCE's elided
// trailing args).
func scalarNumberArg(eng *Engine, ctx EvalContext, node ASTNode, fallback float64) (float64, LiteralValue) {
	if node == nil {
		return fallback, nil
	}
	v, err := node.Eval(eng, ctx)
	if err != nil {
		return 0, NewErrorValue(ErrCalc, err.Error())
	}
	if v.IsError() {
		return 0, v
	}
	n, nerr := AsNumber(v)
	if nerr != nil {
		return 0, ErrorValue{nerr}
	}
	return n, nil
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
