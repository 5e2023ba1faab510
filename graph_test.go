package gridcalc

import "context"

import "testing"

func TestSetValueMarksDirectDependentsDirty(t *testing.T) {
	c := newEngineCase(t).
		Set("A1", NumberValue(1)).
		Formula("B1", "=A1+1")
	c.Run().RequireNumber("B1", 2)

	c.Set("A1", NumberValue(10))
	dirty := c.eng.graph.DirtyVertices()
	if len(dirty) == 0 {
		t.Fatalf("expected B1's vertex to be marked dirty after A1 changed")
	}
	c.Run().RequireNumber("B1", 11)
}

func TestDirtyPropagationIsTransitiveAcrossChain(t *testing.T) {
	c := newEngineCase(t).
		Set("A1", NumberValue(1)).
		Formula("B1", "=A1+1").
		Formula("C1", "=B1+1")
	c.Run().RequireNumber("B1", 2).RequireNumber("C1", 3)

	c.Set("A1", NumberValue(10))
	c.Run()
	if c.report.VerticesEvaluated < 2 {
		t.Fatalf("expected both B1 and C1 to be recomputed once A1 changed, got %d vertices evaluated", c.report.VerticesEvaluated)
	}
	c.RequireNumber("B1", 11).RequireNumber("C1", 12)
}

func TestStripeDependencyRequiresPreciseRangeContainment(t *testing.T) {
	c := newEngineCase(t)
	cfg := DefaultConfig()
	cfg.RangeExpansionLimit = 10
	c.eng = NewEngine(cfg)
	c.sheet = c.eng.DefineSheet("Sheet1")

	c.Set("A5", NumberValue(7)).
		Formula("Z1", "=SUM(A1:A1000)").
		Run().
		RequireNumber("Z1", 7)

	c.Set("A5000", NumberValue(99))
	c.Run()
	if c.report.VerticesEvaluated != 0 {
		t.Errorf("write at A5000 falls outside A1:A1000, expected the stripe-dependent formula to stay clean, got %d evaluated", c.report.VerticesEvaluated)
	}
	c.RequireNumber("Z1", 7)
}

func TestSetFormulaCreatesPlaceholderForUnwrittenCell(t *testing.T) {
	c := newEngineCase(t)
	summary, err := c.eng.SetCellFormula(c.sheet, 1, 2, "=A1")
	if err != nil {
		t.Fatalf("SetCellFormula: %v", err)
	}
	if len(summary.CreatedPlaceholders) != 1 {
		t.Fatalf("expected one placeholder created for A1, got %d", len(summary.CreatedPlaceholders))
	}
}

func TestSetFormulaSelfReferenceIsCircularImmediately(t *testing.T) {
	c := newEngineCase(t)
	row, col := c.cell("A1")
	_, err := c.eng.SetCellFormula(c.sheet, row, col, "=A1+1")
	if err != nil {
		t.Fatalf("SetCellFormula: %v", err)
	}
	c.RequireError("A1", ErrCirc)
}

func TestLargeRangeDependencyUsesStripeNotPerCellEdges(t *testing.T) {
	c := newEngineCase(t)
	cfg := DefaultConfig()
	cfg.RangeExpansionLimit = 10
	c.eng = NewEngine(cfg)
	c.sheet = c.eng.DefineSheet("Sheet1")

	c.Formula("Z1", "=SUM(A1:A1000)")
	c.Set("A500", NumberValue(42))
	c.Run().RequireNumber("Z1", 42)
}

func TestEvaluateClearsDirtyFlagsAfterCommit(t *testing.T) {
	c := newEngineCase(t).
		Set("A1", NumberValue(1)).
		Formula("B1", "=A1+1")
	c.eng.Evaluate(context.Background())
	if dirty := c.eng.graph.DirtyVertices(); len(dirty) != 0 {
		t.Errorf("expected no dirty vertices after a full evaluation pass, got %d", len(dirty))
	}
}
