package gridcalc

import "testing"

// buildSalesDatabase lays out a 3-row database with header "Region"/"Sales"
// and a matching criteria block, the way Excel's D* functions expect.
func buildSalesDatabase(c *engineCase) *engineCase {
	return c.
		Set("A1", TextValue("Region")).
		Set("B1", TextValue("Sales")).
		Set("A2", TextValue("East")).
		Set("B2", NumberValue(100)).
		Set("A3", TextValue("West")).
		Set("B3", NumberValue(200)).
		Set("A4", TextValue("East")).
		Set("B4", NumberValue(300)).
		Set("D1", TextValue("Region")).
		Set("D2", TextValue("East"))
}

func TestDatabaseAggregates(t *testing.T) {
	c := buildSalesDatabase(newEngineCase(t))
	c.
		Formula("F1", "=DSUM(A1:B4, \"Sales\", D1:D2)").
		Formula("F2", "=DCOUNT(A1:B4, \"Sales\", D1:D2)").
		Formula("F3", "=DAVERAGE(A1:B4, \"Sales\", D1:D2)").
		Formula("F4", "=DMAX(A1:B4, \"Sales\", D1:D2)").
		Formula("F5", "=DMIN(A1:B4, \"Sales\", D1:D2)").
		Run().
		RequireNumber("F1", 400).
		RequireNumber("F2", 2).
		RequireNumber("F3", 200).
		RequireNumber("F4", 300).
		RequireNumber("F5", 100)
}

func TestDatabaseFieldByOffset(t *testing.T) {
	c := buildSalesDatabase(newEngineCase(t))
	c.
		Formula("F1", "=DSUM(A1:B4, 2, D1:D2)").
		Run().
		RequireNumber("F1", 400)
}

func TestDGetSingleMatch(t *testing.T) {
	c := buildSalesDatabase(newEngineCase(t))
	c.
		Set("D2", TextValue("West")).
		Formula("F1", "=DGET(A1:B4, \"Sales\", D1:D2)").
		Run().
		RequireNumber("F1", 200)
}

func TestDGetAmbiguousMatchIsNumError(t *testing.T) {
	c := buildSalesDatabase(newEngineCase(t))
	c.
		Formula("F1", "=DGET(A1:B4, \"Sales\", D1:D2)").
		Run().
		RequireError("F1", ErrNum)
}
