package gridcalc

import (
	"testing"
)

func parseFormula(formula string) bool {
	_, err := ParseFormula(formula)
	return err == nil
}

func TestParserBasicFormulas(t *testing.T) {
	validFormulas := []string{
		"=1+2",
		"=A1",
		"=SUM(A1:A10)",
		"=Sheet2!A1",
		"=Sheet2!A1:B2",
		"=SUM(Sheet2!A1:A10)",
		"=Sheet2!A1 + Sheet3!B1",
		"=SUM(B2:A1)",
		"=SUM(A1:A1)",
		"=SUM(A1:Z1000)",
		`="Hello world"`,
		`=CONCATENATE("Hello ", "there")`,
		"={1,2;3,4}",
		"=IF(A1>0,1,-1)",
		"=-A1^2",
		"=50%",
	}

	for _, formula := range validFormulas {
		t.Run(formula, func(t *testing.T) {
			if !parseFormula(formula) {
				t.Errorf("failed to parse valid formula: %s", formula)
			}
		})
	}
}

func TestParserInvalidFormulas(t *testing.T) {
	invalidFormulas := []string{
		"=",
		"=SUM(",
		`="hello`,
		"=(1+2",
	}

	for _, formula := range invalidFormulas {
		t.Run(formula, func(t *testing.T) {
			if parseFormula(formula) {
				t.Errorf("expected formula to fail but it succeeded: %s", formula)
			}
		})
	}
}

func TestParserPrecedence(t *testing.T) {
	node, err := ParseFormula("=1+2*3")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	bin, ok := node.(*BinaryOpNode)
	if !ok || bin.Op != "+" {
		t.Fatalf("expected top-level '+', got %s", node.String())
	}
	rhs, ok := bin.Right.(*BinaryOpNode)
	if !ok || rhs.Op != "*" {
		t.Fatalf("expected right-hand '*', got %s", bin.Right.String())
	}
}

func TestParserCellRefAbsolute(t *testing.T) {
	node, err := ParseFormula("=$A$1")
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	ref, ok := node.(*CellRefNode)
	if !ok {
		t.Fatalf("expected CellRefNode, got %T", node)
	}
	if !ref.AbsoluteRow || !ref.AbsoluteCol {
		t.Errorf("expected absolute row and column markers preserved")
	}
	if ref.Row != 1 || ref.Col != 1 {
		t.Errorf("expected A1 to resolve to (1,1), got (%d,%d)", ref.Row, ref.Col)
	}
}
