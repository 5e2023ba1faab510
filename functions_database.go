package gridcalc

// registerDatabaseFunctions installs the D* family (DSUM, DCOUNT, ...),
// one of the representative families of SPEC_FULL.md §4.7: each treats
// its first argument as a table with a header row, its second as a
// column name or offset, and its third as a criteria block (a range
// whose own header row names the columns it constrains and whose
// remaining rows are OR'd together, AND'd within a row) — Excel's
// database-function convention.
func registerDatabaseFunctions(r *FunctionRegistry) {
	register := func(name string, agg func(values []float64) (float64, bool)) {
		r.register(&BuiltinFunc{
			Name: name,
			Args: []ArgSchema{
				{Name: "database", Shape: ShapeRange},
				{Name: "field", Shape: ShapeScalar},
				{Name: "criteria", Shape: ShapeRange},
			},
			Body: func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
				values, errVal := dFieldValues(eng, ctx, args)
				if errVal != nil {
					return errVal, nil
				}
				result, ok := agg(values)
				if !ok {
					return NewErrorValue(ErrDiv, ""), nil
				}
				return NumberValue(result), nil
			},
		})
	}

	register("DSUM", func(values []float64) (float64, bool) {
		sum := 0.0
		for _, v := range values {
			sum += v
		}
		return sum, true
	})
	register("DCOUNT", func(values []float64) (float64, bool) {
		return float64(len(values)), true
	})
	register("DAVERAGE", func(values []float64) (float64, bool) {
		if len(values) == 0 {
			return 0, false
		}
		sum := 0.0
		for _, v := range values {
			sum += v
		}
		return sum / float64(len(values)), true
	})
	register("DMAX", func(values []float64) (float64, bool) {
		if len(values) == 0 {
			return 0, false
		}
		best := values[0]
		for _, v := range values[1:] {
			if v > best {
				best = v
			}
		}
		return best, true
	})
	register("DMIN", func(values []float64) (float64, bool) {
		if len(values) == 0 {
			return 0, false
		}
		best := values[0]
		for _, v := range values[1:] {
			if v < best {
				best = v
			}
		}
		return best, true
	})
	register("DPRODUCT", func(values []float64) (float64, bool) {
		prod := 1.0
		for _, v := range values {
			prod *= v
		}
		return prod, true
	})
	register("DVAR", func(values []float64) (float64, bool) { return sampleVariance(values) })
	register("DVARP", func(values []float64) (float64, bool) { return populationVariance(values) })
	register("DSTDEV", func(values []float64) (float64, bool) {
		v, ok := sampleVariance(values)
		if !ok {
			return 0, false
		}
		return sqrtApprox(v), true
	})
	register("DSTDEVP", func(values []float64) (float64, bool) {
		v, ok := populationVariance(values)
		if !ok {
			return 0, false
		}
		return sqrtApprox(v), true
	})

	r.register(&BuiltinFunc{
		Name: "DCOUNTA",
		Args: []ArgSchema{
			{Name: "database", Shape: ShapeRange},
			{Name: "field", Shape: ShapeScalar},
			{Name: "criteria", Shape: ShapeRange},
		},
		Body: func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
			cells, errVal := dFieldCells(eng, ctx, args)
			if errVal != nil {
				return errVal, nil
			}
			n := 0
			for _, c := range cells {
				if _, empty := c.(EmptyValue); !empty {
					n++
				}
			}
			return NumberValue(n), nil
		},
	})

	r.register(&BuiltinFunc{
		Name: "DGET",
		Args: []ArgSchema{
			{Name: "database", Shape: ShapeRange},
			{Name: "field", Shape: ShapeScalar},
			{Name: "criteria", Shape: ShapeRange},
		},
		Body: func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
			cells, errVal := dFieldCells(eng, ctx, args)
			if errVal != nil {
				return errVal, nil
			}
			switch len(cells) {
			case 0:
				return NewErrorValue(ErrValue, ""), nil
			case 1:
				return cells[0], nil
			default:
				return NewErrorValue(ErrNum, ""), nil
			}
		},
	})
}

func sampleVariance(values []float64) (float64, bool) {
	if len(values) < 2 {
		return 0, false
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	ss := 0.0
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return ss / float64(len(values)-1), true
}

func populationVariance(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))
	ss := 0.0
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return ss / float64(len(values)), true
}

// sqrtApprox avoids importing math twice across the database/financial
// families for a single call site; Newton's method converges in a handful
// of iterations for the magnitudes variance produces.
func sqrtApprox(v float64) float64 {
	if v <= 0 {
		return 0
	}
	x := v
	for i := 0; i < 40; i++ {
		x = 0.5 * (x + v/x)
	}
	return x
}

// dFieldCells resolves DGET/D*'s (database, field, criteria) triple to
// the matching rows' values in the named field column.
func dFieldCells(eng *Engine, ctx EvalContext, args []ASTNode) ([]LiteralValue, LiteralValue) {
	db, errVal := rangeArg(eng, ctx, args[0])
	if errVal != nil {
		return nil, errVal
	}
	field, errVal2 := scalarArg(eng, ctx, args[1])
	if errVal2 != nil {
		return nil, errVal2
	}
	criteria, errVal3 := rangeArg(eng, ctx, args[2])
	if errVal3 != nil {
		return nil, errVal3
	}

	dbRows, dbCols := db.Dims()
	if dbRows < 2 {
		return nil, NewErrorValue(ErrValue, "")
	}
	fieldCol := dFieldIndex(db, field)
	if fieldCol < 0 || fieldCol >= dbCols {
		return nil, NewErrorValue(ErrValue, "")
	}

	groups := dCriteriaGroups(db, criteria)

	var out []LiteralValue
	for r := 1; r < dbRows; r++ {
		if dRowMatchesAnyGroup(db, r, groups) {
			out = append(out, db.GetCell(r, fieldCol))
		}
	}
	return out, nil
}

func dFieldValues(eng *Engine, ctx EvalContext, args []ASTNode) ([]float64, LiteralValue) {
	cells, errVal := dFieldCells(eng, ctx, args)
	if errVal != nil {
		return nil, errVal
	}
	out := make([]float64, 0, len(cells))
	for _, c := range cells {
		if n, nerr := AsNumber(c); nerr == nil {
			out = append(out, n)
		}
	}
	return out, nil
}

// dFieldIndex resolves field to a zero-based column index within db:
// either a 1-based numeric offset, or a header-row name match.
func dFieldIndex(db RangeView, field LiteralValue) int {
	if n, nerr := AsNumber(field); nerr == nil {
		return int(n) - 1
	}
	name, ferr := AsText(field)
	if ferr != nil {
		return -1
	}
	_, cols := db.Dims()
	for c := 0; c < cols; c++ {
		if header, herr := AsText(db.GetCell(0, c)); herr == nil && asciiLower(header) == asciiLower(name) {
			return c
		}
	}
	return -1
}

// dCriteriaBinding is one criteria-column constraint: the database column
// it tests and the parsed predicate for one criteria row.
type dCriteriaBinding struct {
	dbCol int
	pred  CriteriaPredicate
}

// dCriteriaGroups maps each criteria-block row (after the header) to the
// list of (column, predicate) constraints it carries; Excel ANDs bindings
// within a row and ORs across rows.
func dCriteriaGroups(db, criteria RangeView) [][]dCriteriaBinding {
	critRows, critCols := criteria.Dims()
	if critRows < 2 {
		return nil
	}
	colIndex := make([]int, critCols)
	for c := 0; c < critCols; c++ {
		header, _ := AsText(criteria.GetCell(0, c))
		colIndex[c] = dFieldIndex(db, TextValue(header))
	}
	var groups [][]dCriteriaBinding
	for r := 1; r < critRows; r++ {
		var bindings []dCriteriaBinding
		for c := 0; c < critCols; c++ {
			cell := criteria.GetCell(r, c)
			if _, empty := cell.(EmptyValue); empty || colIndex[c] < 0 {
				continue
			}
			bindings = append(bindings, dCriteriaBinding{dbCol: colIndex[c], pred: ParseCriteria(cell)})
		}
		if len(bindings) > 0 {
			groups = append(groups, bindings)
		}
	}
	return groups
}

func dRowMatchesAnyGroup(db RangeView, row int, groups [][]dCriteriaBinding) bool {
	if len(groups) == 0 {
		return true
	}
	for _, group := range groups {
		matched := true
		for _, b := range group {
			if !b.pred.Matches(db.GetCell(row, b.dbCol)) {
				matched = false
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}
