package gridcalc

// registerLogicalFunctions installs the IF/error-test/boolean family
// (SPEC_FULL.md §4.7's added logical group), grounded on the teacher's
// builtin.go name-switch but expressed as individually schema-carrying
// BuiltinFunc entries instead of one monolithic switch.
func registerLogicalFunctions(r *FunctionRegistry) {
	r.register(&BuiltinFunc{
		Name: "IF",
		Args: []ArgSchema{
			{Name: "condition", Shape: ShapeScalar},
			{Name: "if_true", Shape: ShapeAny},
			{Name: "if_false", Shape: ShapeAny, Optional: true},
		},
		Body: func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
			cond, err := args[0].Eval(eng, ctx)
			if err != nil {
				return nil, err
			}
			if cond.IsError() {
				return cond, nil
			}
			b, berr := AsBool(cond)
			if berr != nil {
				return ErrorValue{berr}, nil
			}
			if b {
				return args[1].Eval(eng, ctx)
			}
			if len(args) < 3 {
				return BoolValue(false), nil
			}
			return args[2].Eval(eng, ctx)
		},
	})

	r.register(&BuiltinFunc{
		Name: "IFERROR",
		Args: []ArgSchema{
			{Name: "value", Shape: ShapeAny},
			{Name: "fallback", Shape: ShapeAny},
		},
		Body: func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
			v, err := args[0].Eval(eng, ctx)
			if err != nil {
				return nil, err
			}
			if v.IsError() {
				return args[1].Eval(eng, ctx)
			}
			return v, nil
		},
	})

	r.register(&BuiltinFunc{
		Name: "IFNA",
		Args: []ArgSchema{
			{Name: "value", Shape: ShapeAny},
			{Name: "fallback", Shape: ShapeAny},
		},
		Body: func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
			v, err := args[0].Eval(eng, ctx)
			if err != nil {
				return nil, err
			}
			if ev, ok := v.(ErrorValue); ok && ev.Kind == ErrNA {
				return args[1].Eval(eng, ctx)
			}
			return v, nil
		},
	})

	r.register(&BuiltinFunc{Name: "ISERROR", Args: []ArgSchema{{Name: "value", Shape: ShapeAny}}, Body: isTestBody(func(v LiteralValue) bool {
		return v.IsError()
	})})
	r.register(&BuiltinFunc{Name: "ISERR", Args: []ArgSchema{{Name: "value", Shape: ShapeAny}}, Body: isTestBody(func(v LiteralValue) bool {
		ev, ok := v.(ErrorValue)
		return ok && ev.Kind != ErrNA
	})})
	r.register(&BuiltinFunc{Name: "ISNA", Args: []ArgSchema{{Name: "value", Shape: ShapeAny}}, Body: isTestBody(func(v LiteralValue) bool {
		ev, ok := v.(ErrorValue)
		return ok && ev.Kind == ErrNA
	})})
	r.register(&BuiltinFunc{Name: "ISBLANK", Args: []ArgSchema{{Name: "value", Shape: ShapeAny}}, Body: isTestBody(func(v LiteralValue) bool {
		_, ok := v.(EmptyValue)
		return ok
	})})
	r.register(&BuiltinFunc{Name: "ISNUMBER", Args: []ArgSchema{{Name: "value", Shape: ShapeAny}}, Body: isTestBody(func(v LiteralValue) bool {
		switch v.(type) {
		case NumberValue, DateValue, DateTimeValue:
			return true
		}
		return false
	})})
	r.register(&BuiltinFunc{Name: "ISTEXT", Args: []ArgSchema{{Name: "value", Shape: ShapeAny}}, Body: isTestBody(func(v LiteralValue) bool {
		_, ok := v.(TextValue)
		return ok
	})})
	r.register(&BuiltinFunc{Name: "ISLOGICAL", Args: []ArgSchema{{Name: "value", Shape: ShapeAny}}, Body: isTestBody(func(v LiteralValue) bool {
		_, ok := v.(BoolValue)
		return ok
	})})

	r.register(&BuiltinFunc{
		Name: "AND",
		Args: []ArgSchema{{Name: "values", Shape: ShapeAny, Variadic: true}},
		Body: func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
			return foldBool(eng, ctx, args, true, func(acc, v bool) bool { return acc && v })
		},
	})
	r.register(&BuiltinFunc{
		Name: "OR",
		Args: []ArgSchema{{Name: "values", Shape: ShapeAny, Variadic: true}},
		Body: func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
			return foldBool(eng, ctx, args, false, func(acc, v bool) bool { return acc || v })
		},
	})
	r.register(&BuiltinFunc{
		Name: "XOR",
		Args: []ArgSchema{{Name: "values", Shape: ShapeAny, Variadic: true}},
		Body: func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
			count := 0
			err := eachBool(eng, ctx, args, func(v bool) {
				if v {
					count++
				}
			})
			if err != nil {
				return err.(LiteralValue), nil
			}
			return BoolValue(count%2 == 1), nil
		},
	})
	r.register(&BuiltinFunc{
		Name: "NOT",
		Args: []ArgSchema{{Name: "value", Shape: ShapeScalar}},
		Body: func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
			v, err := args[0].Eval(eng, ctx)
			if err != nil {
				return nil, err
			}
			if v.IsError() {
				return v, nil
			}
			b, berr := AsBool(v)
			if berr != nil {
				return ErrorValue{berr}, nil
			}
			return BoolValue(!b), nil
		},
	})
}

func isTestBody(pred func(LiteralValue) bool) func(*Engine, EvalContext, []ASTNode) (LiteralValue, error) {
	return func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
		v, err := args[0].Eval(eng, ctx)
		if err != nil {
			return nil, err
		}
		return BoolValue(pred(v)), nil
	}
}

// eachBool evaluates every argument (scanning ranges cell by cell) and
// calls visit with its boolean coercion; the first error encountered is
// returned as a LiteralValue-typed error for the caller to surface directly.
func eachBool(eng *Engine, ctx EvalContext, args []ASTNode, visit func(bool)) any {
	for _, a := range args {
		cv, err := evalArg(eng, ctx, a)
		if err != nil {
			return NewErrorValue(ErrValue, err.Error())
		}
		if cv.IsRange() {
			view := cv.AsRangeView()
			rows, cols := view.Dims()
			for rr := 0; rr < rows; rr++ {
				for cc := 0; cc < cols; cc++ {
					cell := view.GetCell(rr, cc)
					if cell.IsError() {
						return cell
					}
					if _, isEmpty := cell.(EmptyValue); isEmpty {
						continue
					}
					b, berr := AsBool(cell)
					if berr != nil {
						return ErrorValue{berr}
					}
					visit(b)
				}
			}
			continue
		}
		v := cv.AsScalar()
		if v.IsError() {
			return v
		}
		b, berr := AsBool(v)
		if berr != nil {
			return ErrorValue{berr}
		}
		visit(b)
	}
	return nil
}

func foldBool(eng *Engine, ctx EvalContext, args []ASTNode, seed bool, combine func(acc, v bool) bool) (LiteralValue, error) {
	acc := seed
	errVal := eachBool(eng, ctx, args, func(v bool) { acc = combine(acc, v) })
	if errVal != nil {
		return errVal.(LiteralValue), nil
	}
	return BoolValue(acc), nil
}
