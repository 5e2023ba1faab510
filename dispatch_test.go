package gridcalc

import "testing"

func TestDispatchTooFewArgumentsYieldsValueError(t *testing.T) {
	newEngineCase(t).
		Formula("A1", "=IF(TRUE)").
		Run().
		RequireError("A1", ErrValue)
}

func TestDispatchTooManyArgumentsYieldsValueError(t *testing.T) {
	newEngineCase(t).
		Formula("A1", `=IF(TRUE, 1, 2, 3)`).
		Run().
		RequireError("A1", ErrValue)
}

func TestDispatchVariadicAcceptsManyArguments(t *testing.T) {
	newEngineCase(t).
		Formula("A1", "=SUM(1,2,3,4,5)").
		Run().
		RequireNumber("A1", 15)
}

func TestDispatchUnknownFunctionIsNameError(t *testing.T) {
	newEngineCase(t).
		Formula("A1", "=NOTAREALFUNCTION(1)").
		Run().
		RequireError("A1", ErrName)
}

func TestDispatchDivisionByZeroIsDivError(t *testing.T) {
	newEngineCase(t).
		Set("A2", NumberValue(0)).
		Formula("A1", "=10/A2").
		Run().
		RequireError("A1", ErrDiv)
}
