package gridcalc

import "testing"

func TestArrayRangeViewDimsAndGetCell(t *testing.T) {
	v := &arrayRangeView{rows: [][]LiteralValue{
		{NumberValue(1), NumberValue(2)},
		{NumberValue(3), NumberValue(4)},
	}}
	rows, cols := v.Dims()
	if rows != 2 || cols != 2 {
		t.Fatalf("Dims() = %d,%d want 2,2", rows, cols)
	}
	if v.GetCell(1, 1) != NumberValue(4) {
		t.Errorf("GetCell(1,1) = %v, want 4", v.GetCell(1, 1))
	}
	if v.GetCell(5, 5) != Empty {
		t.Errorf("out-of-bounds GetCell should return Empty, got %v", v.GetCell(5, 5))
	}
}

func TestArrayRangeViewNumbersSliceFailsOnText(t *testing.T) {
	v := &arrayRangeView{rows: [][]LiteralValue{{NumberValue(1), TextValue("x")}}}
	if _, ok := v.NumbersSlice(); ok {
		t.Errorf("expected NumbersSlice to fail when a cell is non-numeric text")
	}
}

func TestArrayRangeViewKindProbeDetectsMixed(t *testing.T) {
	numeric := &arrayRangeView{rows: [][]LiteralValue{{NumberValue(1), NumberValue(2)}}}
	if numeric.KindProbe() != KindProbeNumericOnly {
		t.Errorf("expected KindProbeNumericOnly for an all-numeric view")
	}
	mixed := &arrayRangeView{rows: [][]LiteralValue{{NumberValue(1), TextValue("x")}}}
	if mixed.KindProbe() != KindProbeMixed {
		t.Errorf("expected KindProbeMixed once a text cell is present")
	}
}

func TestSingleRangeViewBroadcastsScalar(t *testing.T) {
	v := &singleRangeView{value: NumberValue(7)}
	rows, cols := v.Dims()
	if rows != 1 || cols != 1 {
		t.Fatalf("singleRangeView.Dims() = %d,%d want 1,1", rows, cols)
	}
	if v.GetCell(0, 0) != NumberValue(7) {
		t.Errorf("GetCell(0,0) = %v, want 7", v.GetCell(0, 0))
	}
	if v.GetCell(1, 0) != NumberValue(7) {
		t.Errorf("GetCell outside 0,0 should broadcast the scalar, got %v", v.GetCell(1, 0))
	}
}

func TestStoreRangeViewReadsLiveGraphState(t *testing.T) {
	c := newEngineCase(t).
		Set("A1", NumberValue(1)).
		Set("A2", NumberValue(2))
	view := c.eng.graph.RangeView(c.sheet, 1, 1, 2, 1)
	rows, cols := view.Dims()
	if rows != 2 || cols != 1 {
		t.Fatalf("Dims() = %d,%d want 2,1", rows, cols)
	}
	if view.GetCell(0, 0) != NumberValue(1) || view.GetCell(1, 0) != NumberValue(2) {
		t.Errorf("storeRangeView didn't reflect live cell values: %v, %v", view.GetCell(0, 0), view.GetCell(1, 0))
	}
}
