package gridcalc

import "testing"

func TestMathSumProductAverage(t *testing.T) {
	newEngineCase(t).
		Set("A1", NumberValue(10)).
		Set("A2", NumberValue(20)).
		Set("A3", NumberValue(30)).
		Formula("B1", "=SUM(A1:A3)").
		Formula("B2", "=PRODUCT(A1:A3)").
		Formula("B3", "=AVERAGE(A1:A3)").
		Run().
		RequireNumber("B1", 60).
		RequireNumber("B2", 6000).
		RequireNumber("B3", 20)
}

func TestMathSumSkipsTextAndPropagatesErrors(t *testing.T) {
	newEngineCase(t).
		Set("A1", NumberValue(10)).
		Set("A2", TextValue("text")).
		Set("A3", NumberValue(30)).
		Formula("B1", "=SUM(A1:A3)").
		Formula("B2", "=SUM(1/0, A1:A3)").
		Run().
		RequireNumber("B1", 40).
		RequireError("B2", ErrDiv)
}

func TestMathAverageDivZeroOnNoNumbers(t *testing.T) {
	newEngineCase(t).
		Set("A1", TextValue("text")).
		Formula("B1", "=AVERAGE(A1)").
		Run().
		RequireError("B1", ErrDiv)
}

func TestMathCountFamily(t *testing.T) {
	newEngineCase(t).
		Set("A1", NumberValue(10)).
		Set("A2", TextValue("text")).
		Set("A3", BoolValue(true)).
		Set("A4", NumberValue(20)).
		Formula("B1", "=COUNT(A1:A4)").
		Formula("B2", "=COUNTA(A1:A4)").
		Formula("B3", "=COUNTBLANK(A1:A5)").
		Run().
		RequireNumber("B1", 2).
		RequireNumber("B2", 4).
		RequireNumber("B3", 1)
}

func TestMathMinMax(t *testing.T) {
	newEngineCase(t).
		Set("A1", NumberValue(10)).
		Set("A2", NumberValue(50)).
		Set("A3", NumberValue(30)).
		Formula("B1", "=MIN(A1:A3)").
		Formula("B2", "=MAX(A1:A3)").
		Run().
		RequireNumber("B1", 10).
		RequireNumber("B2", 50)
}

func TestMathUnaryFunctions(t *testing.T) {
	newEngineCase(t).
		Formula("A1", "=ABS(-10)").
		Formula("A2", "=SQRT(16)").
		Formula("A3", "=SQRT(-1)").
		Formula("A4", "=POWER(2, 3)").
		Formula("A5", "=INT(3.9)").
		Formula("A6", "=SIGN(-5)").
		Run().
		RequireNumber("A1", 10).
		RequireNumber("A2", 4).
		RequireError("A3", ErrNum).
		RequireNumber("A4", 8).
		RequireNumber("A5", 3).
		RequireNumber("A6", -1)
}

func TestMathModMatchesDivisorSign(t *testing.T) {
	newEngineCase(t).
		Formula("A1", "=MOD(10, 3)").
		Formula("A2", "=MOD(-10, 3)").
		Formula("A3", "=MOD(10, 0)").
		Run().
		RequireNumber("A1", 1).
		RequireNumber("A2", 2).
		RequireError("A3", ErrDiv)
}

func TestMathRoundingFamily(t *testing.T) {
	newEngineCase(t).
		Formula("A1", "=ROUND(3.14159, 2)").
		Formula("A2", "=ROUNDUP(3.1, 0)").
		Formula("A3", "=ROUNDDOWN(3.9, 0)").
		Run().
		RequireNumber("A1", 3.14).
		RequireNumber("A2", 4).
		RequireNumber("A3", 3)
}
