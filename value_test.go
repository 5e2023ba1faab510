package gridcalc

import "testing"

func TestAsNumberCoercion(t *testing.T) {
	cases := []struct {
		name string
		in   LiteralValue
		want float64
	}{
		{"empty", EmptyValue{}, 0},
		{"bool true", BoolValue(true), 1},
		{"bool false", BoolValue(false), 0},
		{"number", NumberValue(3.5), 3.5},
		{"date", DateValue(43831), 43831},
		{"percent text", TextValue("50%"), 0.5},
		{"currency text", TextValue("$1,200.50"), 1200.5},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := AsNumber(c.in)
			if err != nil {
				t.Fatalf("AsNumber(%v): %v", c.in, err)
			}
			if got != c.want {
				t.Errorf("AsNumber(%v) = %v, want %v", c.in, got, c.want)
			}
		})
	}
}

func TestAsNumberOnNonNumericTextIsValueError(t *testing.T) {
	_, err := AsNumber(TextValue("hello"))
	if err == nil || err.Kind != ErrValue {
		t.Fatalf("AsNumber(non-numeric text) = %v, want #VALUE!", err)
	}
}

func TestAsTextFormatsIntegralNumbersWithoutDecimal(t *testing.T) {
	got, err := AsText(NumberValue(42))
	if err != nil || got != "42" {
		t.Fatalf("AsText(42) = %q, %v, want \"42\"", got, err)
	}
	got, err = AsText(BoolValue(true))
	if err != nil || got != "TRUE" {
		t.Fatalf("AsText(true) = %q, %v, want \"TRUE\"", got, err)
	}
}

func TestAsBoolParsesTextCaseInsensitively(t *testing.T) {
	for _, s := range []string{"TRUE", "true", "True"} {
		got, err := AsBool(TextValue(s))
		if err != nil || !got {
			t.Errorf("AsBool(%q) = %v, %v, want true", s, got, err)
		}
	}
	if _, err := AsBool(TextValue("maybe")); err == nil || err.Kind != ErrValue {
		t.Errorf("AsBool(\"maybe\") should be #VALUE!, got %v", err)
	}
}

func TestCompareValuesRanksNumbersBeforeTextBeforeLogical(t *testing.T) {
	if compareValues(NumberValue(1), TextValue("a")) >= 0 {
		t.Errorf("expected a number to sort before text")
	}
	if compareValues(TextValue("a"), BoolValue(true)) >= 0 {
		t.Errorf("expected text to sort before a boolean")
	}
	if compareValues(NumberValue(5), NumberValue(10)) >= 0 {
		t.Errorf("expected 5 < 10")
	}
}

func TestCompareValuesTextIsAsciiCaseInsensitive(t *testing.T) {
	if compareValues(TextValue("abc"), TextValue("ABC")) != 0 {
		t.Errorf("expected case-insensitive text equality")
	}
}

func TestIsMonotonicDetectsUnsortedSlice(t *testing.T) {
	asc := []LiteralValue{NumberValue(1), NumberValue(2), NumberValue(3)}
	if !isMonotonic(asc, true) {
		t.Errorf("expected ascending slice to be monotonic")
	}
	mixed := []LiteralValue{NumberValue(1), NumberValue(3), NumberValue(2)}
	if isMonotonic(mixed, true) {
		t.Errorf("expected non-sorted slice to fail monotonic check")
	}
}
