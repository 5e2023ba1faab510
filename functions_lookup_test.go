package gridcalc

import "testing"

func TestXlookupVerticalMatch(t *testing.T) {
	newEngineCase(t).
		Set("A1", TextValue("a")).
		Set("A2", TextValue("b")).
		Set("A3", TextValue("c")).
		Set("B1", NumberValue(1)).
		Set("B2", NumberValue(2)).
		Set("B3", NumberValue(3)).
		Formula("D1", `=XLOOKUP("b", A1:A3, B1:B3)`).
		Run().
		RequireNumber("D1", 2)
}

func TestXlookupFallbackWhenNotFound(t *testing.T) {
	newEngineCase(t).
		Set("A1", TextValue("a")).
		Set("B1", NumberValue(1)).
		Formula("D1", `=XLOOKUP("z", A1:A1, B1:B1, "missing")`).
		Formula("D2", `=XLOOKUP("z", A1:A1, B1:B1)`).
		Run().
		RequireText("D1", "missing").
		RequireError("D2", ErrNA)
}

func TestSequenceBuildsRowsAndDefaults(t *testing.T) {
	c := newEngineCase(t).
		Formula("A1", "=SEQUENCE(3)").
		Run()
	v := c.Get("A1")
	arr, ok := v.(ArrayValue)
	if !ok || len(arr.Rows) != 3 {
		t.Fatalf("SEQUENCE(3) = %#v, want a 3-row array", v)
	}
	for i, row := range arr.Rows {
		if len(row) != 1 {
			t.Fatalf("row %d has %d columns, want 1", i, len(row))
		}
		n, _ := AsNumber(row[0])
		if n != float64(i+1) {
			t.Errorf("row %d = %v, want %d", i, n, i+1)
		}
	}
}

func TestTakeAndDrop(t *testing.T) {
	c := newEngineCase(t).
		Set("A1", NumberValue(1)).
		Set("A2", NumberValue(2)).
		Set("A3", NumberValue(3)).
		Formula("B1", "=TAKE(A1:A3, 2)").
		Formula("C1", "=DROP(A1:A3, 2)").
		Run()
	v := c.Get("B1")
	arr, ok := v.(ArrayValue)
	if !ok || len(arr.Rows) != 2 {
		t.Fatalf("TAKE(A1:A3,2) = %#v, want a 2-row array", v)
	}
	v2 := c.Get("C1")
	arr2, ok2 := v2.(ArrayValue)
	if !ok2 || len(arr2.Rows) != 1 {
		t.Fatalf("DROP(A1:A3,2) = %#v, want a 1-row array", v2)
	}
}
