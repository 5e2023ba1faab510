package gridcalc

import "math"

// registerMathFunctions installs the arithmetic/aggregation/trig family,
// generalizing the teacher's builtin.go SUM/AVERAGE/MIN/MAX handlers onto
// the RangeView abstraction so they work uniformly over scalars, array
// literals, and store-backed ranges.
func registerMathFunctions(r *FunctionRegistry) {
	r.register(&BuiltinFunc{
		Name: "SUM",
		Args: []ArgSchema{{Name: "values", Shape: ShapeAny, Variadic: true}},
		Body: reduceNumbers(0, func(acc, n float64) float64 { return acc + n }),
	})
	r.register(&BuiltinFunc{
		Name: "PRODUCT",
		Args: []ArgSchema{{Name: "values", Shape: ShapeAny, Variadic: true}},
		Body: reduceNumbers(1, func(acc, n float64) float64 { return acc * n }),
	})
	r.register(&BuiltinFunc{
		Name: "AVERAGE",
		Args: []ArgSchema{{Name: "values", Shape: ShapeAny, Variadic: true}},
		Body: func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
			sum, count, errVal := sumAndCount(eng, ctx, args)
			if errVal != nil {
				return errVal, nil
			}
			if count == 0 {
				return NewErrorValue(ErrDiv, ""), nil
			}
			return NumberValue(sum / float64(count)), nil
		},
	})
	r.register(&BuiltinFunc{
		Name: "COUNT",
		Args: []ArgSchema{{Name: "values", Shape: ShapeAny, Variadic: true}},
		Body: func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
			n := 0
			forEachNumericCell(eng, ctx, args, func(float64) { n++ })
			return NumberValue(n), nil
		},
	})
	r.register(&BuiltinFunc{
		Name: "COUNTA",
		Args: []ArgSchema{{Name: "values", Shape: ShapeAny, Variadic: true}},
		Body: func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
			n := 0
			forEachCell(eng, ctx, args, func(v LiteralValue) {
				if _, empty := v.(EmptyValue); !empty {
					n++
				}
			})
			return NumberValue(n), nil
		},
	})
	r.register(&BuiltinFunc{
		Name: "COUNTBLANK",
		Args: []ArgSchema{{Name: "range", Shape: ShapeRange}},
		Body: func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
			n := 0
			forEachCell(eng, ctx, args, func(v LiteralValue) {
				if _, empty := v.(EmptyValue); empty {
					n++
				}
			})
			return NumberValue(n), nil
		},
	})
	r.register(&BuiltinFunc{
		Name: "MIN",
		Args: []ArgSchema{{Name: "values", Shape: ShapeAny, Variadic: true}},
		Body: extremum(func(a, b float64) bool { return a < b }, math.Inf(1)),
	})
	r.register(&BuiltinFunc{
		Name: "MAX",
		Args: []ArgSchema{{Name: "values", Shape: ShapeAny, Variadic: true}},
		Body: extremum(func(a, b float64) bool { return a > b }, math.Inf(-1)),
	})
	r.register(&BuiltinFunc{
		Name: "ABS",
		Args: []ArgSchema{{Name: "value", Shape: ShapeScalar}},
		Body: unaryMath(math.Abs),
	})
	r.register(&BuiltinFunc{
		Name: "SQRT",
		Args: []ArgSchema{{Name: "value", Shape: ShapeScalar}},
		Body: func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
			n, errVal := scalarNumber(eng, ctx, args[0])
			if errVal != nil {
				return errVal, nil
			}
			if n < 0 {
				return NewErrorValue(ErrNum, ""), nil
			}
			return NumberValue(math.Sqrt(n)), nil
		},
	})
	r.register(&BuiltinFunc{Name: "SIN", Args: []ArgSchema{{Name: "value", Shape: ShapeScalar}}, Body: unaryMath(math.Sin)})
	r.register(&BuiltinFunc{Name: "COS", Args: []ArgSchema{{Name: "value", Shape: ShapeScalar}}, Body: unaryMath(math.Cos)})
	r.register(&BuiltinFunc{Name: "TAN", Args: []ArgSchema{{Name: "value", Shape: ShapeScalar}}, Body: unaryMath(math.Tan)})
	r.register(&BuiltinFunc{Name: "LN", Args: []ArgSchema{{Name: "value", Shape: ShapeScalar}}, Body: unaryMath(math.Log)})
	r.register(&BuiltinFunc{Name: "EXP", Args: []ArgSchema{{Name: "value", Shape: ShapeScalar}}, Body: unaryMath(math.Exp)})
	r.register(&BuiltinFunc{
		Name: "LOG10",
		Args: []ArgSchema{{Name: "value", Shape: ShapeScalar}},
		Body: unaryMath(math.Log10),
	})
	r.register(&BuiltinFunc{
		Name: "POWER",
		Args: []ArgSchema{{Name: "base", Shape: ShapeScalar}, {Name: "exponent", Shape: ShapeScalar}},
		Body: func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
			base, errVal := scalarNumber(eng, ctx, args[0])
			if errVal != nil {
				return errVal, nil
			}
			exp, errVal2 := scalarNumber(eng, ctx, args[1])
			if errVal2 != nil {
				return errVal2, nil
			}
			return NumberValue(powFloat(base, exp)), nil
		},
	})
	r.register(&BuiltinFunc{
		Name: "MOD",
		Args: []ArgSchema{{Name: "number", Shape: ShapeScalar}, {Name: "divisor", Shape: ShapeScalar}},
		Body: func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
			n, errVal := scalarNumber(eng, ctx, args[0])
			if errVal != nil {
				return errVal, nil
			}
			d, errVal2 := scalarNumber(eng, ctx, args[1])
			if errVal2 != nil {
				return errVal2, nil
			}
			if d == 0 {
				return NewErrorValue(ErrDiv, ""), nil
			}
			m := math.Mod(n, d)
			if m != 0 && (m < 0) != (d < 0) {
				m += d
			}
			return NumberValue(m), nil
		},
	})
	r.register(&BuiltinFunc{
		Name: "ROUND",
		Args: []ArgSchema{{Name: "number", Shape: ShapeScalar}, {Name: "digits", Shape: ShapeScalar, Optional: true}},
		Body: roundingFunc(math.Round),
	})
	r.register(&BuiltinFunc{
		Name: "ROUNDUP",
		Args: []ArgSchema{{Name: "number", Shape: ShapeScalar}, {Name: "digits", Shape: ShapeScalar, Optional: true}},
		Body: roundingFunc(func(v float64) float64 {
			if v < 0 {
				return math.Floor(v)
			}
			return math.Ceil(v)
		}),
	})
	r.register(&BuiltinFunc{
		Name: "ROUNDDOWN",
		Args: []ArgSchema{{Name: "number", Shape: ShapeScalar}, {Name: "digits", Shape: ShapeScalar, Optional: true}},
		Body: roundingFunc(math.Trunc),
	})
	r.register(&BuiltinFunc{
		Name: "INT",
		Args: []ArgSchema{{Name: "value", Shape: ShapeScalar}},
		Body: unaryMath(math.Floor),
	})
	r.register(&BuiltinFunc{
		Name: "SIGN",
		Args: []ArgSchema{{Name: "value", Shape: ShapeScalar}},
		Body: unaryMath(func(n float64) float64 {
			switch {
			case n > 0:
				return 1
			case n < 0:
				return -1
			default:
				return 0
			}
		}),
	})
}

func scalarNumber(eng *Engine, ctx EvalContext, node ASTNode) (float64, LiteralValue) {
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

func unaryMath(fn func(float64) float64) func(*Engine, EvalContext, []ASTNode) (LiteralValue, error) {
	return func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
		n, errVal := scalarNumber(eng, ctx, args[0])
		if errVal != nil {
			return errVal, nil
		}
		return NumberValue(fn(n)), nil
	}
}

func roundingFunc(round func(float64) float64) func(*Engine, EvalContext, []ASTNode) (LiteralValue, error) {
	return func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
		n, errVal := scalarNumber(eng, ctx, args[0])
		if errVal != nil {
			return errVal, nil
		}
		digits := 0.0
		if len(args) > 1 {
			d, errVal2 := scalarNumber(eng, ctx, args[1])
			if errVal2 != nil {
				return errVal2, nil
			}
			digits = d
		}
		scale := math.Pow(10, digits)
		return NumberValue(round(n*scale) / scale), nil
	}
}

// forEachCell walks every argument's value(s), descending into ranges
// cell by cell, and calls visit once per cell (or once for a scalar arg).
func forEachCell(eng *Engine, ctx EvalContext, args []ASTNode, visit func(LiteralValue)) {
	for _, a := range args {
		cv, err := evalArg(eng, ctx, a)
		if err != nil {
			continue
		}
		if cv.IsRange() {
			cv.AsRangeView().ForEachCell(func(_, _ int, v LiteralValue) { visit(v) })
			continue
		}
		visit(cv.AsScalar())
	}
}

// forEachNumericCell is forEachCell restricted to cells holding a number,
// date or datetime value (COUNT's "numeric cells only" contract); numeric
// text and booleans are skipped.
func forEachNumericCell(eng *Engine, ctx EvalContext, args []ASTNode, visit func(float64)) {
	forEachCell(eng, ctx, args, func(v LiteralValue) {
		switch v.(type) {
		case NumberValue, DateValue, DateTimeValue:
			n, _ := AsNumber(v)
			visit(n)
		}
	})
}

func sumAndCount(eng *Engine, ctx EvalContext, args []ASTNode) (sum float64, count int, errVal LiteralValue) {
	for _, a := range args {
		cv, err := evalArg(eng, ctx, a)
		if err != nil {
			return 0, 0, NewErrorValue(ErrCalc, err.Error())
		}
		if cv.IsRange() {
			var firstErr LiteralValue
			cv.AsRangeView().ForEachCell(func(_, _ int, v LiteralValue) {
				if firstErr != nil {
					return
				}
				if v.IsError() {
					firstErr = v
					return
				}
				switch v.(type) {
				case NumberValue, DateValue, DateTimeValue:
					n, _ := AsNumber(v)
					sum += n
					count++
				}
			})
			if firstErr != nil {
				return 0, 0, firstErr
			}
			continue
		}
		v := cv.AsScalar()
		if v.IsError() {
			return 0, 0, v
		}
		if _, empty := v.(EmptyValue); empty {
			continue
		}
		switch a.(type) {
		case *CellRefNode, *RangeNode:
			// A referenced cell counts only when it holds a number,
			// the same rule the range branch above applies.
			switch v.(type) {
			case NumberValue, DateValue, DateTimeValue:
				n, _ := AsNumber(v)
				sum += n
				count++
			}
			continue
		}
		n, nerr := AsNumber(v)
		if nerr != nil {
			return 0, 0, ErrorValue{nerr}
		}
		sum += n
		count++
	}
	return sum, count, nil
}

func reduceNumbers(seed float64, combine func(acc, n float64) float64) func(*Engine, EvalContext, []ASTNode) (LiteralValue, error) {
	return func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
		acc := seed
		for _, a := range args {
			cv, err := evalArg(eng, ctx, a)
			if err != nil {
				return nil, err
			}
			if cv.IsRange() {
				var firstErr LiteralValue
				cv.AsRangeView().ForEachCell(func(_, _ int, v LiteralValue) {
					if firstErr != nil {
						return
					}
					if v.IsError() {
						firstErr = v
						return
					}
					switch v.(type) {
					case NumberValue, DateValue, DateTimeValue:
						n, _ := AsNumber(v)
						acc = combine(acc, n)
					}
				})
				if firstErr != nil {
					return firstErr, nil
				}
				continue
			}
			v := cv.AsScalar()
			if v.IsError() {
				return v, nil
			}
			if _, empty := v.(EmptyValue); empty {
				continue
			}
			n, nerr := AsNumber(v)
			if nerr != nil {
				return ErrorValue{nerr}, nil
			}
			acc = combine(acc, n)
		}
		return NumberValue(acc), nil
	}
}

func extremum(better func(a, b float64) bool, seed float64) func(*Engine, EvalContext, []ASTNode) (LiteralValue, error) {
	return func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
		best := seed
		found := false
		forEachNumericCell(eng, ctx, args, func(n float64) {
			found = true
			if better(n, best) {
				best = n
			}
		})
		if !found {
			return NumberValue(0), nil
		}
		return NumberValue(best), nil
	}
}
