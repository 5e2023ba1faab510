package gridcalc

import (
	"context"
	"testing"
)

func TestDefineNameResolvesInFormula(t *testing.T) {
	c := newEngineCase(t).
		Set("A1", NumberValue(5))
	if err := c.eng.DefineName("Rate", "=A1", c.sheet); err != nil {
		t.Fatalf("DefineName: %v", err)
	}
	c.Formula("B1", "=Rate*2").
		Run().
		RequireNumber("B1", 10)
}

func TestUpdateNameRequiresExistingDefinition(t *testing.T) {
	c := newEngineCase(t)
	if err := c.eng.UpdateName("Missing", "=A1", c.sheet); err == nil {
		t.Fatalf("expected UpdateName on an undefined name to fail")
	}
}

func TestUpdateNameReplacesFormula(t *testing.T) {
	c := newEngineCase(t).
		Set("A1", NumberValue(1)).
		Set("A2", NumberValue(2))
	if err := c.eng.DefineName("Target", "=A1", c.sheet); err != nil {
		t.Fatalf("DefineName: %v", err)
	}
	if err := c.eng.UpdateName("Target", "=A2", c.sheet); err != nil {
		t.Fatalf("UpdateName: %v", err)
	}
	c.Formula("B1", "=Target").
		Run().
		RequireNumber("B1", 2)
}

func TestDeleteNameRemovesDefinition(t *testing.T) {
	c := newEngineCase(t)
	if err := c.eng.DefineName("Foo", "=A1", c.sheet); err != nil {
		t.Fatalf("DefineName: %v", err)
	}
	if !c.eng.DeleteName("Foo") {
		t.Fatalf("expected DeleteName to report success for an existing name")
	}
	if c.eng.DeleteName("Foo") {
		t.Fatalf("expected a second DeleteName on the same name to report false")
	}
}

func TestDefineNameRejectsCyclicDefinitions(t *testing.T) {
	c := newEngineCase(t)
	if err := c.eng.DefineName("Alpha", "=Beta", c.sheet); err != nil {
		t.Fatalf("DefineName(Alpha): %v", err)
	}
	if err := c.eng.DefineName("Beta", "=Alpha", c.sheet); err == nil {
		t.Fatalf("expected defining Beta=Alpha to fail with a cyclic-definition error")
	}
}

func TestDefineNameRejectsCellLikeNames(t *testing.T) {
	c := newEngineCase(t)
	if err := c.eng.DefineName("A1", "=5", c.sheet); err == nil {
		t.Fatalf("expected a cell-shaped name like A1 to be rejected")
	}
}

func TestSheetScopedNameShadowsWorkbookName(t *testing.T) {
	c := newEngineCase(t).
		Set("A1", NumberValue(1)).
		Set("A2", NumberValue(2))
	if err := c.eng.DefineName("Rate", "=A1", c.sheet); err != nil {
		t.Fatalf("DefineName: %v", err)
	}
	if err := c.eng.DefineSheetName(c.sheet, "Rate", "=A2"); err != nil {
		t.Fatalf("DefineSheetName: %v", err)
	}
	c.Formula("B1", "=Rate").
		Run().
		RequireNumber("B1", 2)
}

func TestSheetScopedNameIsInvisibleFromOtherSheets(t *testing.T) {
	c := newEngineCase(t).Set("A1", NumberValue(9))
	other := c.eng.DefineSheet("Sheet2")
	if err := c.eng.DefineSheetName(c.sheet, "Local", "=A1"); err != nil {
		t.Fatalf("DefineSheetName: %v", err)
	}
	_, err := c.eng.SetCellFormula(other, 1, 2, "=Local")
	if err != nil {
		t.Fatalf("SetCellFormula: %v", err)
	}
	c.eng.Evaluate(context.Background())
	v := c.eng.GetCellValue(other, 1, 2)
	ev, ok := v.(ErrorValue)
	if !ok || ev.Kind != ErrName {
		t.Fatalf("expected a name reference from another sheet to resolve to #NAME?, got %#v", v)
	}
}

func TestUpdateSheetNameRequiresExistingDefinition(t *testing.T) {
	c := newEngineCase(t)
	if err := c.eng.UpdateSheetName(c.sheet, "Missing", "=A1"); err == nil {
		t.Fatalf("expected UpdateSheetName on an undefined sheet name to fail")
	}
}

func TestDeleteSheetNameRemovesDefinition(t *testing.T) {
	c := newEngineCase(t)
	if err := c.eng.DefineSheetName(c.sheet, "Foo", "=A1"); err != nil {
		t.Fatalf("DefineSheetName: %v", err)
	}
	if !c.eng.DeleteSheetName(c.sheet, "Foo") {
		t.Fatalf("expected DeleteSheetName to report success for an existing name")
	}
	if c.eng.DeleteSheetName(c.sheet, "Foo") {
		t.Fatalf("expected a second DeleteSheetName on the same name to report false")
	}
}
