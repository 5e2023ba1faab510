package gridcalc

import (
	"strconv"
	"strings"
)

// CriteriaOp tags a parsed criteria predicate's comparison kind (spec.md
// §4.6).
type CriteriaOp int

const (
	CritEqual CriteriaOp = iota
	CritNotEqual
	CritLess
	CritLessEqual
	CritGreater
	CritGreaterEqual
	CritTextLike // wildcard text match: '*' any run, '?' one char, '~' escapes the next
)

// CriteriaPredicate is a parsed SUMIF/COUNTIF-style criteria argument:
// a relational comparison against a number, or a (possibly wildcarded)
// text match, or a type test (e.g. "<>" against blank means "non-blank").
type CriteriaPredicate struct {
	Op   CriteriaOp
	Num  float64
	IsNum bool
	Text string // raw comparison text, used for CritTextLike and non-numeric relational compares
}

// ParseCriteria parses a criterion value the way SUMIF/COUNTIF/SUMIFS do:
// a bare number or text is an equality match; a leading relational
// operator ("<", "<=", ">", ">=", "<>", "=") switches to a relational
// predicate against the remainder, numeric if the remainder parses as a
// number. A leading "=" is always equality with no wildcard expansion in
// the remainder, whereas bare text with no operator retains wildcard
// semantics (spec.md §4.6).
func ParseCriteria(criterion LiteralValue) CriteriaPredicate {
	s, err := AsText(criterion)
	if err != nil {
		return CriteriaPredicate{Op: CritEqual, Text: ""}
	}
	for _, op := range []struct {
		prefix string
		kind   CriteriaOp
	}{
		{"<=", CritLessEqual},
		{">=", CritGreaterEqual},
		{"<>", CritNotEqual},
		{"<", CritLess},
		{">", CritGreater},
		{"=", CritEqual},
	} {
		if strings.HasPrefix(s, op.prefix) {
			rest := s[len(op.prefix):]
			if n, perr := strconv.ParseFloat(rest, 64); perr == nil {
				return CriteriaPredicate{Op: op.kind, Num: n, IsNum: true, Text: rest}
			}
			return CriteriaPredicate{Op: op.kind, Text: rest}
		}
	}
	if n, perr := strconv.ParseFloat(s, 64); perr == nil {
		return CriteriaPredicate{Op: CritEqual, Num: n, IsNum: true, Text: s}
	}
	if strings.ContainsAny(s, "*?~") {
		return CriteriaPredicate{Op: CritTextLike, Text: s}
	}
	return CriteriaPredicate{Op: CritEqual, Text: s}
}

// Matches reports whether value satisfies the predicate. An empty cell
// satisfies "=" only when the operand is empty and "<>" only when the
// operand is non-empty; it never satisfies an ordering criterion (<, <=,
// >, >=).
func (p CriteriaPredicate) Matches(value LiteralValue) bool {
	if p.Op == CritTextLike {
		text, err := AsText(value)
		if err != nil {
			return false
		}
		return wildcardMatch(p.Text, text)
	}

	if _, isEmpty := value.(EmptyValue); isEmpty {
		switch p.Op {
		case CritEqual:
			return p.Text == ""
		case CritNotEqual:
			return p.Text != ""
		default:
			return false
		}
	}

	if p.IsNum {
		n, err := AsNumber(value)
		if err != nil {
			return p.Op == CritNotEqual
		}
		switch p.Op {
		case CritEqual:
			return n == p.Num
		case CritNotEqual:
			return n != p.Num
		case CritLess:
			return n < p.Num
		case CritLessEqual:
			return n <= p.Num
		case CritGreater:
			return n > p.Num
		case CritGreaterEqual:
			return n >= p.Num
		}
	}

	text, err := AsText(value)
	if err != nil {
		return false
	}
	cmp := sortStringsCI(text, p.Text)
	switch p.Op {
	case CritEqual:
		return cmp == 0
	case CritNotEqual:
		return cmp != 0
	case CritLess:
		return cmp < 0
	case CritLessEqual:
		return cmp <= 0
	case CritGreater:
		return cmp > 0
	case CritGreaterEqual:
		return cmp >= 0
	}
	return false
}

// wildcardMatch implements Excel's criteria wildcard language: '*' matches
// any run (including empty), '?' matches exactly one character, and '~'
// escapes the following character so it's matched literally (spec.md
// §4.6). Matching is ASCII case-insensitive.
func wildcardMatch(pattern, text string) bool {
	p := asciiLower(pattern)
	t := asciiLower(text)
	return wildcardMatchRunes([]rune(p), []rune(t))
}

func wildcardMatchRunes(pattern, text []rune) bool {
	var pi, ti int
	var starPi, starTi = -1, -1
	for ti < len(text) {
		if pi < len(pattern) {
			switch {
			case pattern[pi] == '~' && pi+1 < len(pattern):
				if text[ti] == pattern[pi+1] {
					pi += 2
					ti++
					continue
				}
			case pattern[pi] == '?':
				pi++
				ti++
				continue
			case pattern[pi] == '*':
				starPi = pi
				starTi = ti
				pi++
				continue
			case pattern[pi] == text[ti]:
				pi++
				ti++
				continue
			}
		}
		if starPi >= 0 {
			pi = starPi + 1
			starTi++
			ti = starTi
			continue
		}
		return false
	}
	for pi < len(pattern) && pattern[pi] == '*' {
		pi++
	}
	return pi == len(pattern)
}
