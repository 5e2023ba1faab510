package gridcalc

import "testing"

func TestCountifSumifAverageif(t *testing.T) {
	newEngineCase(t).
		Set("A1", NumberValue(10)).
		Set("A2", NumberValue(20)).
		Set("A3", NumberValue(30)).
		Set("B1", NumberValue(1)).
		Set("B2", NumberValue(2)).
		Set("B3", NumberValue(3)).
		Formula("C1", "=COUNTIF(A1:A3, \">15\")").
		Formula("C2", "=SUMIF(A1:A3, \">15\")").
		Formula("C3", "=SUMIF(A1:A3, \">15\", B1:B3)").
		Formula("C4", "=AVERAGEIF(A1:A3, \">15\")").
		Run().
		RequireNumber("C1", 2).
		RequireNumber("C2", 50).
		RequireNumber("C3", 5).
		RequireNumber("C4", 25)
}

func TestCountifsSumifsAverageifs(t *testing.T) {
	newEngineCase(t).
		Set("A1", NumberValue(10)).
		Set("A2", NumberValue(20)).
		Set("A3", NumberValue(30)).
		Set("B1", TextValue("east")).
		Set("B2", TextValue("west")).
		Set("B3", TextValue("east")).
		Formula("C1", `=COUNTIFS(A1:A3, ">5", B1:B3, "east")`).
		Formula("C2", `=SUMIFS(A1:A3, A1:A3, ">5", B1:B3, "east")`).
		Formula("C3", `=AVERAGEIFS(A1:A3, B1:B3, "east")`).
		Run().
		RequireNumber("C1", 2).
		RequireNumber("C2", 40).
		RequireNumber("C3", 20)
}

func TestSumifNoMatchesAverageifDivZero(t *testing.T) {
	newEngineCase(t).
		Set("A1", NumberValue(10)).
		Formula("B1", `=SUMIF(A1, ">100")`).
		Formula("B2", `=AVERAGEIF(A1, ">100")`).
		Run().
		RequireNumber("B1", 0).
		RequireError("B2", ErrDiv)
}
