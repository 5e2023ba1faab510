package gridcalc

import "testing"

func TestLogicalIf(t *testing.T) {
	newEngineCase(t).
		Formula("A1", "=IF(TRUE, 1, 2)").
		Formula("A2", "=IF(FALSE, 1, 2)").
		Run().
		RequireNumber("A1", 1).
		RequireNumber("A2", 2)
}

func TestLogicalIfErrorFamily(t *testing.T) {
	newEngineCase(t).
		Formula("A1", "=IFERROR(1/0, 99)").
		Formula("A2", "=IFERROR(5, 99)").
		Formula("A3", `=IFNA(XLOOKUP("z", {"a"}, {1}), 7)`).
		Run().
		RequireNumber("A1", 99).
		RequireNumber("A2", 5).
		RequireNumber("A3", 7)
}

func TestLogicalIsFamily(t *testing.T) {
	newEngineCase(t).
		Set("A1", TextValue("hi")).
		Formula("B1", "=ISTEXT(A1)").
		Formula("B2", "=ISNUMBER(A1)").
		Formula("B3", "=ISBLANK(Z99)").
		Formula("B4", "=ISERROR(1/0)").
		Run().
		RequireBool("B1", true).
		RequireBool("B2", false).
		RequireBool("B3", true).
		RequireBool("B4", true)
}

func TestLogicalAndOrXorNot(t *testing.T) {
	newEngineCase(t).
		Formula("A1", "=AND(TRUE, TRUE, 1)").
		Formula("A2", "=AND(TRUE, FALSE)").
		Formula("A3", "=OR(FALSE, FALSE, 1)").
		Formula("A4", "=XOR(TRUE, TRUE)").
		Formula("A5", "=XOR(TRUE, FALSE)").
		Formula("A6", "=NOT(FALSE)").
		Run().
		RequireBool("A1", true).
		RequireBool("A2", false).
		RequireBool("A3", true).
		RequireBool("A4", false).
		RequireBool("A5", true).
		RequireBool("A6", true)
}
