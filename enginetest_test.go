package gridcalc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// engineCase is a fluent formula test-case builder, generalizing the
// teacher's SpreadsheetTestCase (sheet_test.go) off the Spreadsheet/Primitive
// model onto Engine/LiteralValue: Set("A1", ...) still reads as a plain cell
// address, but resolves through parseCellToken and a single default sheet
// instead of a "Sheet!A1" qualified string.
type engineCase struct {
	t      *testing.T
	eng    *Engine
	sheet  SheetID
	report EvalReport
}

func newEngineCase(t *testing.T) *engineCase {
	eng := NewEngine(DefaultConfig())
	return &engineCase{t: t, eng: eng, sheet: eng.DefineSheet("Sheet1")}
}

func (c *engineCase) cell(addr string) (int, int) {
	row, col, err := parseCellToken(addr)
	require.NoError(c.t, err, "address %q", addr)
	return row, col
}

func (c *engineCase) Set(addr string, v LiteralValue) *engineCase {
	row, col := c.cell(addr)
	_, err := c.eng.SetCellValue(c.sheet, row, col, v)
	require.NoError(c.t, err)
	return c
}

func (c *engineCase) Formula(addr string, formula string) *engineCase {
	row, col := c.cell(addr)
	_, err := c.eng.SetCellFormula(c.sheet, row, col, formula)
	require.NoError(c.t, err, "formula %q", formula)
	return c
}

func (c *engineCase) Run() *engineCase {
	c.report = c.eng.Evaluate(context.Background())
	return c
}

func (c *engineCase) Get(addr string) LiteralValue {
	row, col := c.cell(addr)
	return c.eng.GetCellValue(c.sheet, row, col)
}

func (c *engineCase) RequireNumber(addr string, want float64) *engineCase {
	v := c.Get(addr)
	n, errVal := AsNumber(v)
	require.Nil(c.t, errVal, "cell %s = %#v, expected a number", addr, v)
	require.InDelta(c.t, want, n, 1e-9, "cell %s", addr)
	return c
}

func (c *engineCase) RequireNumberDelta(addr string, want, delta float64) *engineCase {
	v := c.Get(addr)
	n, errVal := AsNumber(v)
	require.Nil(c.t, errVal, "cell %s = %#v, expected a number", addr, v)
	require.InDelta(c.t, want, n, delta, "cell %s", addr)
	return c
}

func (c *engineCase) RequireText(addr string, want string) *engineCase {
	v := c.Get(addr)
	s, errVal := AsText(v)
	require.Nil(c.t, errVal, "cell %s = %#v, expected text", addr, v)
	require.Equal(c.t, want, s, "cell %s", addr)
	return c
}

func (c *engineCase) RequireBool(addr string, want bool) *engineCase {
	v := c.Get(addr)
	b, errVal := AsBool(v)
	require.Nil(c.t, errVal, "cell %s = %#v, expected a boolean", addr, v)
	require.Equal(c.t, want, b, "cell %s", addr)
	return c
}

func (c *engineCase) RequireError(addr string, kind ExcelErrorKind) *engineCase {
	v := c.Get(addr)
	ev, ok := v.(ErrorValue)
	require.True(c.t, ok, "cell %s = %#v, expected an error value", addr, v)
	require.Equal(c.t, kind, ev.Kind, "cell %s", addr)
	return c
}

func (c *engineCase) RequireEmpty(addr string) *engineCase {
	v := c.Get(addr)
	_, ok := v.(EmptyValue)
	require.True(c.t, v == nil || ok, "cell %s = %#v, expected empty", addr, v)
	return c
}
