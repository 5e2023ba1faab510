package gridcalc

import "time"

// excelEpoch1900 is serial 0 of the 1900 date system, 1899-12-30. Counting
// from it, serial 1 is 1899-12-31 and serial 61 is 1900-03-01; Excel's
// fictitious 1900-02-29 has no serial here, so serials from 61 on agree
// with Excel and serials below 61 fall one day earlier than Excel's.
var excelEpoch1900 = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)
var excelEpoch1904 = time.Date(1904, time.January, 1, 0, 0, 0, 0, time.UTC)

func dateEpoch(sys DateSystem) time.Time {
	if sys == DateSystem1904 {
		return excelEpoch1904
	}
	return excelEpoch1900
}

func serialFromTime(t time.Time, sys DateSystem) float64 {
	return t.Sub(dateEpoch(sys)).Hours() / 24
}

func timeFromSerial(serial float64, sys DateSystem) time.Time {
	days := time.Duration(serial * float64(24*time.Hour))
	return dateEpoch(sys).Add(days)
}

// registerDatetimeFunctions installs NOW/TODAY (sourced from the
// engine's injected Clock for determinism, per logging.go's Clock
// interface) plus the rest of the date-serial family, one of the
// representative families of SPEC_FULL.md §4.7.
func registerDatetimeFunctions(r *FunctionRegistry) {
	r.register(&BuiltinFunc{
		Name: "NOW",
		Caps: CapVolatile,
		Body: func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
			return DateTimeValue(serialFromTime(eng.Clock().Now(), eng.cfg.DateSystem)), nil
		},
	})
	r.register(&BuiltinFunc{
		Name: "TODAY",
		Caps: CapVolatile,
		Body: func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
			now := eng.Clock().Now()
			day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
			return DateValue(serialFromTime(day, eng.cfg.DateSystem)), nil
		},
	})
	r.register(&BuiltinFunc{
		Name: "DATE",
		Args: []ArgSchema{{Name: "year", Shape: ShapeScalar}, {Name: "month", Shape: ShapeScalar}, {Name: "day", Shape: ShapeScalar}},
		Body: func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
			y, errVal := scalarNumber(eng, ctx, args[0])
			if errVal != nil {
				return errVal, nil
			}
			m, errVal2 := scalarNumber(eng, ctx, args[1])
			if errVal2 != nil {
				return errVal2, nil
			}
			d, errVal3 := scalarNumber(eng, ctx, args[2])
			if errVal3 != nil {
				return errVal3, nil
			}
			t := time.Date(int(y), time.Month(int(m)), int(d), 0, 0, 0, 0, time.UTC)
			return DateValue(serialFromTime(t, eng.cfg.DateSystem)), nil
		},
	})
	r.register(&BuiltinFunc{
		Name: "YEAR",
		Args: []ArgSchema{{Name: "serial", Shape: ShapeScalar}},
		Body: dateComponent(func(t time.Time) float64 { return float64(t.Year()) }),
	})
	r.register(&BuiltinFunc{
		Name: "MONTH",
		Args: []ArgSchema{{Name: "serial", Shape: ShapeScalar}},
		Body: dateComponent(func(t time.Time) float64 { return float64(t.Month()) }),
	})
	r.register(&BuiltinFunc{
		Name: "DAY",
		Args: []ArgSchema{{Name: "serial", Shape: ShapeScalar}},
		Body: dateComponent(func(t time.Time) float64 { return float64(t.Day()) }),
	})
	r.register(&BuiltinFunc{
		Name: "WEEKDAY",
		Args: []ArgSchema{{Name: "serial", Shape: ShapeScalar}},
		Body: dateComponent(func(t time.Time) float64 { return float64(t.Weekday()) + 1 }),
	})
	r.register(&BuiltinFunc{
		Name: "DAYS",
		Args: []ArgSchema{{Name: "end", Shape: ShapeScalar}, {Name: "start", Shape: ShapeScalar}},
		Body: func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
			end, errVal := scalarNumber(eng, ctx, args[0])
			if errVal != nil {
				return errVal, nil
			}
			start, errVal2 := scalarNumber(eng, ctx, args[1])
			if errVal2 != nil {
				return errVal2, nil
			}
			return NumberValue(end - start), nil
		},
	})
	r.register(&BuiltinFunc{
		Name: "EDATE",
		Args: []ArgSchema{{Name: "serial", Shape: ShapeScalar}, {Name: "months", Shape: ShapeScalar}},
		Body: func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
			serial, errVal := scalarNumber(eng, ctx, args[0])
			if errVal != nil {
				return errVal, nil
			}
			months, errVal2 := scalarNumber(eng, ctx, args[1])
			if errVal2 != nil {
				return errVal2, nil
			}
			t := timeFromSerial(serial, eng.cfg.DateSystem)
			t = t.AddDate(0, int(months), 0)
			return DateValue(serialFromTime(t, eng.cfg.DateSystem)), nil
		},
	})
}

func dateComponent(component func(time.Time) float64) func(*Engine, EvalContext, []ASTNode) (LiteralValue, error) {
	return func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
		serial, errVal := scalarNumber(eng, ctx, args[0])
		if errVal != nil {
			return errVal, nil
		}
		t := timeFromSerial(serial, eng.cfg.DateSystem)
		return NumberValue(component(t)), nil
	}
}
