package gridcalc

// registerCriteriaFunctions installs the SUMIF/COUNTIF family (spec.md
// §4.6), built on criteria.go's CriteriaPredicate and evaluated over
// RangeView pairs so a criteria range and a sum range can differ in
// origin. Shapes are not checked: iteration runs over the criteria
// range's dimensions (for SUMIFS/AVERAGEIFS, the sum or average range's),
// a cell outside another range's extent reads as Empty, and a
// single-value argument broadcasts.
func registerCriteriaFunctions(r *FunctionRegistry) {
	r.register(&BuiltinFunc{
		Name: "COUNTIF",
		Args: []ArgSchema{{Name: "range", Shape: ShapeRange}, {Name: "criterion", Shape: ShapeScalar}},
		Body: func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
			rangeView, errVal := rangeArg(eng, ctx, args[0])
			if errVal != nil {
				return errVal, nil
			}
			criterion, errVal2 := scalarArg(eng, ctx, args[1])
			if errVal2 != nil {
				return errVal2, nil
			}
			pred := ParseCriteria(criterion)
			count := 0
			rangeView.ForEachCell(func(_, _ int, v LiteralValue) {
				if pred.Matches(v) {
					count++
				}
			})
			return NumberValue(count), nil
		},
	})

	r.register(&BuiltinFunc{
		Name: "SUMIF",
		Args: []ArgSchema{
			{Name: "range", Shape: ShapeRange},
			{Name: "criterion", Shape: ShapeScalar},
			{Name: "sum_range", Shape: ShapeRange, Optional: true},
		},
		Body: func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
			criteriaRange, errVal := rangeArg(eng, ctx, args[0])
			if errVal != nil {
				return errVal, nil
			}
			criterion, errVal2 := scalarArg(eng, ctx, args[1])
			if errVal2 != nil {
				return errVal2, nil
			}
			sumRange := criteriaRange
			if len(args) > 2 {
				sr, errVal3 := rangeArg(eng, ctx, args[2])
				if errVal3 != nil {
					return errVal3, nil
				}
				sumRange = sr
			}
			pred := ParseCriteria(criterion)
			sum := 0.0
			rows, cols := criteriaRange.Dims()
			for rr := 0; rr < rows; rr++ {
				for cc := 0; cc < cols; cc++ {
					if !pred.Matches(criteriaRange.GetCell(rr, cc)) {
						continue
					}
					if n, nerr := AsNumber(sumRange.GetCell(rr, cc)); nerr == nil {
						sum += n
					}
				}
			}
			return NumberValue(sum), nil
		},
	})

	r.register(&BuiltinFunc{
		Name: "AVERAGEIF",
		Args: []ArgSchema{
			{Name: "range", Shape: ShapeRange},
			{Name: "criterion", Shape: ShapeScalar},
			{Name: "avg_range", Shape: ShapeRange, Optional: true},
		},
		Body: func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
			criteriaRange, errVal := rangeArg(eng, ctx, args[0])
			if errVal != nil {
				return errVal, nil
			}
			criterion, errVal2 := scalarArg(eng, ctx, args[1])
			if errVal2 != nil {
				return errVal2, nil
			}
			avgRange := criteriaRange
			if len(args) > 2 {
				ar, errVal3 := rangeArg(eng, ctx, args[2])
				if errVal3 != nil {
					return errVal3, nil
				}
				avgRange = ar
			}
			pred := ParseCriteria(criterion)
			sum, count := 0.0, 0
			rows, cols := criteriaRange.Dims()
			for rr := 0; rr < rows; rr++ {
				for cc := 0; cc < cols; cc++ {
					if !pred.Matches(criteriaRange.GetCell(rr, cc)) {
						continue
					}
					if n, nerr := AsNumber(avgRange.GetCell(rr, cc)); nerr == nil {
						sum += n
						count++
					}
				}
			}
			if count == 0 {
				return NewErrorValue(ErrDiv, ""), nil
			}
			return NumberValue(sum / float64(count)), nil
		},
	})

	r.register(&BuiltinFunc{
		Name: "COUNTIFS",
		Args: []ArgSchema{{Name: "pairs", Shape: ShapeAny, Variadic: true}},
		Body: func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
			pairs, errVal := buildCriteriaPairs(eng, ctx, args)
			if errVal != nil {
				return errVal, nil
			}
			count := 0
			rows, cols := pairs[0].rangeView.Dims()
			for rr := 0; rr < rows; rr++ {
				for cc := 0; cc < cols; cc++ {
					if allPairsMatch(pairs, rr, cc) {
						count++
					}
				}
			}
			return NumberValue(count), nil
		},
	})

	r.register(&BuiltinFunc{
		Name: "SUMIFS",
		Args: []ArgSchema{
			{Name: "sum_range", Shape: ShapeRange},
			{Name: "pairs", Shape: ShapeAny, Variadic: true},
		},
		Body: func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
			sumRange, errVal := rangeArg(eng, ctx, args[0])
			if errVal != nil {
				return errVal, nil
			}
			pairs, errVal2 := buildCriteriaPairs(eng, ctx, args[1:])
			if errVal2 != nil {
				return errVal2, nil
			}
			sum := 0.0
			rows, cols := sumRange.Dims()
			for rr := 0; rr < rows; rr++ {
				for cc := 0; cc < cols; cc++ {
					if !allPairsMatch(pairs, rr, cc) {
						continue
					}
					if n, nerr := AsNumber(sumRange.GetCell(rr, cc)); nerr == nil {
						sum += n
					}
				}
			}
			return NumberValue(sum), nil
		},
	})

	r.register(&BuiltinFunc{
		Name: "AVERAGEIFS",
		Args: []ArgSchema{
			{Name: "avg_range", Shape: ShapeRange},
			{Name: "pairs", Shape: ShapeAny, Variadic: true},
		},
		Body: func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
			avgRange, errVal := rangeArg(eng, ctx, args[0])
			if errVal != nil {
				return errVal, nil
			}
			pairs, errVal2 := buildCriteriaPairs(eng, ctx, args[1:])
			if errVal2 != nil {
				return errVal2, nil
			}
			sum, count := 0.0, 0
			rows, cols := avgRange.Dims()
			for rr := 0; rr < rows; rr++ {
				for cc := 0; cc < cols; cc++ {
					if !allPairsMatch(pairs, rr, cc) {
						continue
					}
					if n, nerr := AsNumber(avgRange.GetCell(rr, cc)); nerr == nil {
						sum += n
						count++
					}
				}
			}
			if count == 0 {
				return NewErrorValue(ErrDiv, ""), nil
			}
			return NumberValue(sum / float64(count)), nil
		},
	})
}

type criteriaPair struct {
	rangeView RangeView
	pred      CriteriaPredicate
}

func buildCriteriaPairs(eng *Engine, ctx EvalContext, args []ASTNode) ([]criteriaPair, LiteralValue) {
	if len(args)%2 != 0 {
		return nil, NewErrorValue(ErrValue, "criteria range/criterion must be paired")
	}
	pairs := make([]criteriaPair, 0, len(args)/2)
	for i := 0; i < len(args); i += 2 {
		rv, errVal := rangeArg(eng, ctx, args[i])
		if errVal != nil {
			return nil, errVal
		}
		criterion, errVal2 := scalarArg(eng, ctx, args[i+1])
		if errVal2 != nil {
			return nil, errVal2
		}
		pairs = append(pairs, criteriaPair{rangeView: rv, pred: ParseCriteria(criterion)})
	}
	return pairs, nil
}

func allPairsMatch(pairs []criteriaPair, r, c int) bool {
	for _, p := range pairs {
		if !p.pred.Matches(p.rangeView.GetCell(r, c)) {
			return false
		}
	}
	return true
}

func rangeArg(eng *Engine, ctx EvalContext, node ASTNode) (RangeView, LiteralValue) {
	cv, err := evalArg(eng, ctx, node)
	if err != nil {
		return nil, NewErrorValue(ErrCalc, err.Error())
	}
	return cv.AsRangeView(), nil
}

func scalarArg(eng *Engine, ctx EvalContext, node ASTNode) (LiteralValue, LiteralValue) {
	cv, err := evalArg(eng, ctx, node)
	if err != nil {
		return nil, NewErrorValue(ErrCalc, err.Error())
	}
	v := cv.AsScalar()
	if v.IsError() {
		return nil, v
	}
	return v, nil
}
