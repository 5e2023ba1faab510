package gridcalc

import "testing"

func TestParseCriteriaEquality(t *testing.T) {
	p := ParseCriteria(NumberValue(5))
	if !p.IsNum || p.Op != CritEqual || p.Num != 5 {
		t.Fatalf("unexpected predicate: %+v", p)
	}
	if !p.Matches(NumberValue(5)) {
		t.Errorf("expected 5 to match =5")
	}
	if p.Matches(NumberValue(6)) {
		t.Errorf("expected 6 not to match =5")
	}
}

func TestParseCriteriaRelational(t *testing.T) {
	cases := []struct {
		criterion string
		value     float64
		want      bool
	}{
		{">10", 11, true},
		{">10", 10, false},
		{">=10", 10, true},
		{"<5", 4, true},
		{"<5", 5, false},
		{"<=5", 5, true},
		{"<>5", 6, true},
		{"<>5", 5, false},
	}
	for _, c := range cases {
		p := ParseCriteria(TextValue(c.criterion))
		got := p.Matches(NumberValue(c.value))
		if got != c.want {
			t.Errorf("%s against %v: got %v, want %v", c.criterion, c.value, got, c.want)
		}
	}
}

func TestParseCriteriaEmptyCell(t *testing.T) {
	if !ParseCriteria(TextValue("")).Matches(Empty) {
		t.Errorf("empty criterion should match an empty cell")
	}
	if ParseCriteria(TextValue("<>")).Matches(Empty) {
		t.Errorf("<> criterion should not match an empty cell")
	}
}

func TestWildcardMatch(t *testing.T) {
	cases := []struct {
		pattern, text string
		want          bool
	}{
		{"a*", "apple", true},
		{"a*", "banana", false},
		{"?at", "cat", true},
		{"?at", "scat", false},
		{"*at", "scat", true},
		{"a~*b", "a*b", true},
		{"a~*b", "axb", false},
	}
	for _, c := range cases {
		if got := wildcardMatch(c.pattern, c.text); got != c.want {
			t.Errorf("wildcardMatch(%q, %q) = %v, want %v", c.pattern, c.text, got, c.want)
		}
	}
}

func TestParseCriteriaTextEquality(t *testing.T) {
	p := ParseCriteria(TextValue("apple"))
	if !p.Matches(TextValue("Apple")) {
		t.Errorf("text equality should be ASCII case-insensitive")
	}
	if p.Matches(TextValue("grape")) {
		t.Errorf("apple should not match grape")
	}
}
