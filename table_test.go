package gridcalc

import "testing"

func TestTableRefResolvesSingleColumn(t *testing.T) {
	c := newEngineCase(t).
		Set("A1", TextValue("Region")).
		Set("B1", TextValue("Sales")).
		Set("A2", TextValue("East")).
		Set("B2", NumberValue(100)).
		Set("A3", TextValue("West")).
		Set("B3", NumberValue(200))

	c.eng.tables.Define(&Table{
		Name:      "Sales",
		Sheet:     c.sheet,
		HeaderRow: 1,
		FirstCol:  1,
		LastCol:   2,
		FirstData: 2,
		LastData:  3,
		Columns:   []TableColumnSpec{{Name: "Region"}, {Name: "Sales"}},
	})

	c.Formula("D1", "=SUM(Sales[Sales])").
		Run().
		RequireNumber("D1", 300)
}

func TestTableRefUnknownColumnIsRefError(t *testing.T) {
	c := newEngineCase(t)
	c.eng.tables.Define(&Table{
		Name:      "Sales",
		Sheet:     c.sheet,
		FirstCol:  1,
		LastCol:   2,
		FirstData: 2,
		LastData:  3,
		Columns:   []TableColumnSpec{{Name: "Region"}, {Name: "Sales"}},
	})
	c.Formula("D1", "=Sales[Missing]").
		Run().
		RequireError("D1", ErrRef)
}

func TestTableColumnIndexIsCaseInsensitive(t *testing.T) {
	tbl := Table{Columns: []TableColumnSpec{{Name: "Region"}, {Name: "Sales"}}}
	if idx := tbl.ColumnIndex("sales"); idx != 1 {
		t.Errorf("ColumnIndex(\"sales\") = %d, want 1", idx)
	}
	if idx := tbl.ColumnIndex("nope"); idx != -1 {
		t.Errorf("ColumnIndex(\"nope\") = %d, want -1", idx)
	}
}
