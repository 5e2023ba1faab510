package gridcalc

import "testing"

func TestInsertRowsShiftsValuesAndReferences(t *testing.T) {
	c := newEngineCase(t).
		Set("A1", NumberValue(1)).
		Set("A2", NumberValue(2)).
		Formula("B1", "=A2")
	c.eng.InsertRows(c.sheet, 2, 1)
	c.Run().
		RequireEmpty("A2").
		RequireNumber("A3", 2).
		RequireNumber("B1", 2) // B1's reference to A2 was rewritten to A3
}

func TestDeleteRowsConvertsReferencesToRef(t *testing.T) {
	c := newEngineCase(t).
		Set("A1", NumberValue(1)).
		Set("A2", NumberValue(2)).
		Set("A3", NumberValue(3)).
		Formula("B1", "=A2")
	c.eng.DeleteRows(c.sheet, 2, 1)
	c.Run().
		RequireNumber("A2", 3). // old A3 shifted up into A2
		RequireError("B1", ErrRef)
}

func TestInsertColumnsShiftsValuesAndReferences(t *testing.T) {
	c := newEngineCase(t).
		Set("A1", NumberValue(1)).
		Set("B1", NumberValue(2)).
		Formula("C1", "=B1")
	c.eng.InsertColumns(c.sheet, 2, 1)
	c.Run().
		RequireEmpty("B1").
		RequireNumber("C1", 2).
		RequireNumber("D1", 2) // the formula itself shifted from C1 to D1, now reading the shifted C1 value
}

func TestDeleteColumnsConvertsReferencesToRef(t *testing.T) {
	c := newEngineCase(t).
		Set("A1", NumberValue(1)).
		Set("B1", NumberValue(2)).
		Set("C1", NumberValue(3)).
		Formula("D1", "=B1")
	c.eng.DeleteColumns(c.sheet, 2, 1)
	c.Run().
		RequireNumber("B1", 3).
		RequireError("C1", ErrRef) // the formula itself shifted from D1 to C1
}
