package gridcalc

import (
	"context"
	"testing"
)

func TestEvaluateOrdersByDependency(t *testing.T) {
	c := newEngineCase(t).
		Set("A1", NumberValue(5)).
		Formula("B1", "=A1*2").
		Formula("C1", "=B1+1")
	report := c.eng.Evaluate(context.Background())
	if report.VerticesEvaluated < 2 {
		t.Fatalf("expected at least 2 vertices evaluated, got %d", report.VerticesEvaluated)
	}
	c.RequireNumber("B1", 10).RequireNumber("C1", 11)
}

func TestEvaluateDetectsCircularReference(t *testing.T) {
	c := newEngineCase(t).
		Formula("A1", "=B1+1").
		Formula("B1", "=A1+1")
	report := c.eng.Evaluate(context.Background())
	if len(report.CircularVertices) != 2 {
		t.Fatalf("expected both vertices flagged circular, got %d", len(report.CircularVertices))
	}
	c.RequireError("A1", ErrCirc).RequireError("B1", ErrCirc)
}

func TestEvaluateIsIdempotentOnSecondPass(t *testing.T) {
	c := newEngineCase(t).
		Set("A1", NumberValue(1)).
		Formula("B1", "=A1+1")
	c.eng.Evaluate(context.Background())
	report := c.eng.Evaluate(context.Background())
	if report.VerticesEvaluated != 0 {
		t.Errorf("second pass with nothing dirty should evaluate 0 vertices, got %d", report.VerticesEvaluated)
	}
	c.RequireNumber("B1", 2)
}

func TestEvaluateCancellation(t *testing.T) {
	c := newEngineCase(t).
		Set("A1", NumberValue(1)).
		Formula("B1", "=A1+1").
		Formula("C1", "=B1+1")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report := c.eng.Evaluate(ctx)
	if !report.Cancelled {
		t.Fatalf("expected Evaluate to report cancellation when ctx is already done")
	}
}

func TestEvaluateVolatileAlwaysRecomputes(t *testing.T) {
	c := newEngineCase(t).
		Formula("A1", "=NOW()")
	c.eng.Evaluate(context.Background())
	first := c.eng.collectEvaluationFrontier()
	if len(first) != 1 {
		t.Fatalf("expected NOW() to stay in the frontier as volatile, got %d entries", len(first))
	}
}
