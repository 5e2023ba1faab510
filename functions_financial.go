package gridcalc

import "math"

// registerFinancialFunctions installs the time-value-of-money family
// (one of SPEC_FULL.md §4.7's representative families): PMT/PV/FV/NPER
// have closed forms, while RATE and IRR fall back to Newton-Raphson,
// bounded by EngineConfig.MaxIterations so a pathological input can't
// hang a calculation pass.
func registerFinancialFunctions(r *FunctionRegistry) {
	r.register(&BuiltinFunc{
		Name: "PMT",
		Args: []ArgSchema{
			{Name: "rate", Shape: ShapeScalar}, {Name: "nper", Shape: ShapeScalar},
			{Name: "pv", Shape: ShapeScalar}, {Name: "fv", Shape: ShapeScalar, Optional: true},
			{Name: "type", Shape: ShapeScalar, Optional: true},
		},
		Body: func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
			p, errVal := financialArgs(eng, ctx, args)
			if errVal != nil {
				return errVal, nil
			}
			return NumberValue(pmt(p.rate, p.nper, p.pv, p.fv, p.typ)), nil
		},
	})
	r.register(&BuiltinFunc{
		Name: "PV",
		Args: []ArgSchema{
			{Name: "rate", Shape: ShapeScalar}, {Name: "nper", Shape: ShapeScalar},
			{Name: "pmt", Shape: ShapeScalar}, {Name: "fv", Shape: ShapeScalar, Optional: true},
			{Name: "type", Shape: ShapeScalar, Optional: true},
		},
		Body: func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
			p, errVal := financialArgsPMT(eng, ctx, args)
			if errVal != nil {
				return errVal, nil
			}
			return NumberValue(pv(p.rate, p.nper, p.pmtVal, p.fv, p.typ)), nil
		},
	})
	r.register(&BuiltinFunc{
		Name: "FV",
		Args: []ArgSchema{
			{Name: "rate", Shape: ShapeScalar}, {Name: "nper", Shape: ShapeScalar},
			{Name: "pmt", Shape: ShapeScalar}, {Name: "pv", Shape: ShapeScalar, Optional: true},
			{Name: "type", Shape: ShapeScalar, Optional: true},
		},
		Body: func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
			p, errVal := financialArgsPMT(eng, ctx, args)
			if errVal != nil {
				return errVal, nil
			}
			return NumberValue(fv(p.rate, p.nper, p.pmtVal, p.pv, p.typ)), nil
		},
	})
	r.register(&BuiltinFunc{
		Name: "NPER",
		Args: []ArgSchema{
			{Name: "rate", Shape: ShapeScalar}, {Name: "pmt", Shape: ShapeScalar},
			{Name: "pv", Shape: ShapeScalar}, {Name: "fv", Shape: ShapeScalar, Optional: true},
			{Name: "type", Shape: ShapeScalar, Optional: true},
		},
		Body: func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
			rate, errVal := scalarNumber(eng, ctx, args[0])
			if errVal != nil {
				return errVal, nil
			}
			pmtVal, errVal2 := scalarNumber(eng, ctx, args[1])
			if errVal2 != nil {
				return errVal2, nil
			}
			pvVal, errVal3 := scalarNumber(eng, ctx, args[2])
			if errVal3 != nil {
				return errVal3, nil
			}
			fvVal, typ := 0.0, 0.0
			if len(args) > 3 {
				v, errVal4 := scalarNumber(eng, ctx, args[3])
				if errVal4 != nil {
					return errVal4, nil
				}
				fvVal = v
			}
			if len(args) > 4 {
				v, errVal5 := scalarNumber(eng, ctx, args[4])
				if errVal5 != nil {
					return errVal5, nil
				}
				typ = v
			}
			if rate == 0 {
				if pmtVal == 0 {
					return NewErrorValue(ErrDiv, ""), nil
				}
				return NumberValue(-(pvVal + fvVal) / pmtVal), nil
			}
			due := 1.0
			if typ != 0 {
				due = 1 + rate
			}
			num := pmtVal*due - fvVal*rate
			den := pvVal*rate + pmtVal*due
			if num <= 0 || den <= 0 {
				return NewErrorValue(ErrNum, ""), nil
			}
			return NumberValue(math.Log(num/den) / math.Log(1+rate)), nil
		},
	})
	r.register(&BuiltinFunc{
		Name: "RATE",
		Args: []ArgSchema{
			{Name: "nper", Shape: ShapeScalar}, {Name: "pmt", Shape: ShapeScalar},
			{Name: "pv", Shape: ShapeScalar}, {Name: "fv", Shape: ShapeScalar, Optional: true},
			{Name: "type", Shape: ShapeScalar, Optional: true}, {Name: "guess", Shape: ShapeScalar, Optional: true},
		},
		Body: func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
			nper, errVal := scalarNumber(eng, ctx, args[0])
			if errVal != nil {
				return errVal, nil
			}
			pmtVal, errVal2 := scalarNumber(eng, ctx, args[1])
			if errVal2 != nil {
				return errVal2, nil
			}
			pvVal, errVal3 := scalarNumber(eng, ctx, args[2])
			if errVal3 != nil {
				return errVal3, nil
			}
			fvVal, typ, guess := 0.0, 0.0, 0.1
			if len(args) > 3 {
				v, e := scalarNumber(eng, ctx, args[3])
				if e != nil {
					return e, nil
				}
				fvVal = v
			}
			if len(args) > 4 {
				v, e := scalarNumber(eng, ctx, args[4])
				if e != nil {
					return e, nil
				}
				typ = v
			}
			if len(args) > 5 {
				v, e := scalarNumber(eng, ctx, args[5])
				if e != nil {
					return e, nil
				}
				guess = v
			}
			rate, ok := solveRate(nper, pmtVal, pvVal, fvVal, typ, guess, eng.cfg.MaxIterations)
			if !ok {
				return NewErrorValue(ErrNum, ""), nil
			}
			return NumberValue(rate), nil
		},
	})
	r.register(&BuiltinFunc{
		Name: "IRR",
		Args: []ArgSchema{{Name: "cashflows", Shape: ShapeRange}, {Name: "guess", Shape: ShapeScalar, Optional: true}},
		Body: func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
			view, errVal := rangeArg(eng, ctx, args[0])
			if errVal != nil {
				return errVal, nil
			}
			flows, ok := view.NumbersSlice()
			if !ok {
				return NewErrorValue(ErrValue, ""), nil
			}
			guess := 0.1
			if len(args) > 1 {
				g, e := scalarNumber(eng, ctx, args[1])
				if e != nil {
					return e, nil
				}
				guess = g
			}
			rate, ok := solveIRR(flows, guess, eng.cfg.MaxIterations)
			if !ok {
				return NewErrorValue(ErrNum, ""), nil
			}
			return NumberValue(rate), nil
		},
	})
	r.register(&BuiltinFunc{
		Name: "NPV",
		Args: []ArgSchema{{Name: "rate", Shape: ShapeScalar}, {Name: "cashflows", Shape: ShapeAny, Variadic: true}},
		Body: func(eng *Engine, ctx EvalContext, args []ASTNode) (LiteralValue, error) {
			rate, errVal := scalarNumber(eng, ctx, args[0])
			if errVal != nil {
				return errVal, nil
			}
			sum, period := 0.0, 1
			for _, a := range args[1:] {
				cv, err := evalArg(eng, ctx, a)
				if err != nil {
					return nil, err
				}
				if cv.IsRange() {
					view := cv.AsRangeView()
					rows, cols := view.Dims()
					for rr := 0; rr < rows; rr++ {
						for cc := 0; cc < cols; cc++ {
							n, nerr := AsNumber(view.GetCell(rr, cc))
							if nerr != nil {
								continue
							}
							sum += n / math.Pow(1+rate, float64(period))
							period++
						}
					}
					continue
				}
				n, nerr := AsNumber(cv.AsScalar())
				if nerr != nil {
					return ErrorValue{nerr}, nil
				}
				sum += n / math.Pow(1+rate, float64(period))
				period++
			}
			return NumberValue(sum), nil
		},
	})
}

type financialParams struct {
	rate, nper, pv, fv, typ float64
}

func financialArgs(eng *Engine, ctx EvalContext, args []ASTNode) (financialParams, LiteralValue) {
	rate, errVal := scalarNumber(eng, ctx, args[0])
	if errVal != nil {
		return financialParams{}, errVal
	}
	nper, errVal2 := scalarNumber(eng, ctx, args[1])
	if errVal2 != nil {
		return financialParams{}, errVal2
	}
	pvVal, errVal3 := scalarNumber(eng, ctx, args[2])
	if errVal3 != nil {
		return financialParams{}, errVal3
	}
	fvVal, typ := 0.0, 0.0
	if len(args) > 3 {
		v, e := scalarNumber(eng, ctx, args[3])
		if e != nil {
			return financialParams{}, e
		}
		fvVal = v
	}
	if len(args) > 4 {
		v, e := scalarNumber(eng, ctx, args[4])
		if e != nil {
			return financialParams{}, e
		}
		typ = v
	}
	return financialParams{rate: rate, nper: nper, pv: pvVal, fv: fvVal, typ: typ}, nil
}

type financialParamsPMT struct {
	rate, nper, pmtVal, pv, fv, typ float64
}

// financialArgsPMT parses the (rate, nper, pmt, <pv-or-fv>, type) shape
// PV/FV share. The optional 4th argument is stored in both the pv and fv
// fields; each caller reads the one it takes as input.
func financialArgsPMT(eng *Engine, ctx EvalContext, args []ASTNode) (financialParamsPMT, LiteralValue) {
	rate, errVal := scalarNumber(eng, ctx, args[0])
	if errVal != nil {
		return financialParamsPMT{}, errVal
	}
	nper, errVal2 := scalarNumber(eng, ctx, args[1])
	if errVal2 != nil {
		return financialParamsPMT{}, errVal2
	}
	pmtVal, errVal3 := scalarNumber(eng, ctx, args[2])
	if errVal3 != nil {
		return financialParamsPMT{}, errVal3
	}
	other, typ := 0.0, 0.0
	if len(args) > 3 {
		v, e := scalarNumber(eng, ctx, args[3])
		if e != nil {
			return financialParamsPMT{}, e
		}
		other = v
	}
	if len(args) > 4 {
		v, e := scalarNumber(eng, ctx, args[4])
		if e != nil {
			return financialParamsPMT{}, e
		}
		typ = v
	}
	return financialParamsPMT{rate: rate, nper: nper, pmtVal: pmtVal, pv: other, fv: other, typ: typ}, nil
}

func pmt(rate, nper, pv, fv, typ float64) float64 {
	if rate == 0 {
		return -(pv + fv) / nper
	}
	due := 1.0
	if typ != 0 {
		due = 1 + rate
	}
	growth := math.Pow(1+rate, nper)
	return -(pv*growth + fv) * rate / ((growth - 1) * due)
}

func pv(rate, nper, pmtVal, fv, typ float64) float64 {
	if rate == 0 {
		return -(fv + pmtVal*nper)
	}
	due := 1.0
	if typ != 0 {
		due = 1 + rate
	}
	growth := math.Pow(1+rate, nper)
	return -(fv + pmtVal*due*(growth-1)/rate) / growth
}

func fv(rate, nper, pmtVal, pv, typ float64) float64 {
	if rate == 0 {
		return -(pv + pmtVal*nper)
	}
	due := 1.0
	if typ != 0 {
		due = 1 + rate
	}
	growth := math.Pow(1+rate, nper)
	return -(pv*growth + pmtVal*due*(growth-1)/rate)
}

// solveRate finds RATE's implied periodic rate via Newton-Raphson over
// PV's closed form (the rate at which pv() reproduces pvVal), bounded by
// maxIter (EngineConfig.MaxIterations).
func solveRate(nper, pmtVal, pvVal, fvVal, typ, guess float64, maxIter int) (float64, bool) {
	rate := guess
	const eps = 1e-10
	for i := 0; i < maxIter; i++ {
		f := pv(rate, nper, pmtVal, fvVal, typ) - pvVal
		df := (pv(rate+eps, nper, pmtVal, fvVal, typ) - pv(rate-eps, nper, pmtVal, fvVal, typ)) / (2 * eps)
		if df == 0 {
			return 0, false
		}
		next := rate - f/df
		if math.Abs(next-rate) < 1e-9 {
			return next, true
		}
		rate = next
	}
	return rate, math.Abs(pv(rate, nper, pmtVal, fvVal, typ)-pvVal) < 1e-6
}

// solveIRR finds the discount rate that zeroes the NPV of flows via
// Newton-Raphson, bounded by maxIter.
func solveIRR(flows []float64, guess float64, maxIter int) (float64, bool) {
	rate := guess
	npvAt := func(r float64) float64 {
		sum := 0.0
		for i, f := range flows {
			sum += f / math.Pow(1+r, float64(i))
		}
		return sum
	}
	const eps = 1e-6
	for i := 0; i < maxIter; i++ {
		f := npvAt(rate)
		df := (npvAt(rate+eps) - npvAt(rate-eps)) / (2 * eps)
		if df == 0 {
			return 0, false
		}
		next := rate - f/df
		if math.IsNaN(next) || math.IsInf(next, 0) {
			return 0, false
		}
		if math.Abs(next-rate) < 1e-9 {
			return next, true
		}
		rate = next
	}
	return rate, math.Abs(npvAt(rate)) < 1e-4
}
