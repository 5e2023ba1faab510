package gridcalc

import (
	"strconv"
	"strings"
)

// ReferenceType tags the shape of a parsed reference (spec.md §3/§4.1).
type ReferenceType int

const (
	RefCell ReferenceType = iota
	RefRange
	RefNamedRange
	RefTable
)

// CellRef is an absolute or sheet-qualified single-cell reference.
type CellRef struct {
	Sheet string // "" means "current sheet"
	Row   int
	Col   int
}

// RangeRef is a (possibly unbounded) rectangular range. A nil bound means
// "unbounded" — used to encode whole-row/whole-column references.
type RangeRef struct {
	Sheet    string
	StartRow *int
	StartCol *int
	EndRow   *int
	EndCol   *int
}

// IsWholeColumn reports whether the range has no row bounds (e.g. "A:A").
func (r RangeRef) IsWholeColumn() bool { return r.StartRow == nil && r.EndRow == nil }

// IsWholeRow reports whether the range has no column bounds (e.g. "1:1").
func (r RangeRef) IsWholeRow() bool { return r.StartCol == nil && r.EndCol == nil }

// numberToColumn renders a 1-based column number as Excel letters
// (1=A, 26=Z, 27=AA, ...). Ported from the teacher's column-rendering
// convention in parser.go, generalized to return an error on overflow
// instead of panicking.
func numberToColumn(n int) (string, error) {
	if n < 1 || n > MaxCol {
		return "", NewReferenceError("column number out of range: %d", n)
	}
	var b []byte
	for n > 0 {
		n--
		b = append([]byte{byte('A' + n%26)}, b...)
		n /= 26
	}
	return string(b), nil
}

// columnToNumber parses Excel column letters ("A".."XFD") into a 1-based
// column number, matching spec.md §4.1's base-26 rule with A=1 and a
// maximum of 3 letters.
func columnToNumber(letters string) (int, error) {
	if letters == "" || len(letters) > 3 {
		return 0, NewReferenceError("invalid column letters: %q", letters)
	}
	n := 0
	for _, ch := range letters {
		var d int
		switch {
		case ch >= 'A' && ch <= 'Z':
			d = int(ch-'A') + 1
		case ch >= 'a' && ch <= 'z':
			d = int(ch-'a') + 1
		default:
			return 0, NewReferenceError("invalid column letter %q", ch)
		}
		n = n*26 + d
	}
	if n < 1 || n > MaxCol {
		return 0, NewReferenceError("column out of range: %q", letters)
	}
	return n, nil
}

// splitLettersDigits splits a cell-style token ("A1", "$B$12") into its
// leading column-letter run and trailing digit run, tolerating "$"
// absolute markers anywhere in the two runs.
func splitLettersDigits(s string) (letters, digits string, ok bool) {
	i := 0
	for i < len(s) && (s[i] == '$') {
		i++
	}
	letterStart := i
	for i < len(s) && isAsciiLetter(s[i]) {
		i++
	}
	letters = s[letterStart:i]
	if i < len(s) && s[i] == '$' {
		i++
	}
	digitStart := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	digits = s[digitStart:i]
	ok = i == len(s) && letters != "" && digits != ""
	return
}

func isAsciiLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// parseCellToken parses a single cell address like "A1" or "$B$12" into
// 1-based (row, col).
func parseCellToken(tok string) (row, col int, err error) {
	letters, digits, ok := splitLettersDigits(tok)
	if !ok {
		return 0, 0, NewReferenceError("malformed cell reference: %q", tok)
	}
	col, err = columnToNumber(letters)
	if err != nil {
		return 0, 0, err
	}
	rowNum, perr := strconv.Atoi(digits)
	if perr != nil || rowNum < 1 || rowNum > MaxRow {
		return 0, 0, NewReferenceError("row out of range in %q", tok)
	}
	return rowNum, col, nil
}

// splitSheetQualifier splits "Sheet1!A1" / "'My Sheet'!A1" into sheet name
// and remainder; remainder is the whole string when no "!" qualifier is
// present. Quoted sheet names (OpenFormula/Excel dialect) are unquoted and
// have doubled single-quotes collapsed.
func splitSheetQualifier(s string) (sheet, rest string) {
	if strings.HasPrefix(s, "'") {
		// find the closing quote, skipping doubled quotes ('')
		i := 1
		for i < len(s) {
			if s[i] == '\'' {
				if i+1 < len(s) && s[i+1] == '\'' {
					i += 2
					continue
				}
				break
			}
			i++
		}
		if i < len(s) && i+1 < len(s) && s[i+1] == '!' {
			name := strings.ReplaceAll(s[1:i], "''", "'")
			return name, s[i+2:]
		}
		return "", s
	}
	if idx := strings.Index(s, "!"); idx >= 0 {
		return s[:idx], s[idx+1:]
	}
	return "", s
}

// needsQuoting reports whether a sheet name must be single-quoted when
// rendered in a reference: non-alphanumeric characters (besides '_'),
// a leading digit, or an empty string all force quoting.
func needsQuoting(name string) bool {
	if name == "" {
		return true
	}
	if name[0] >= '0' && name[0] <= '9' {
		return true
	}
	for _, ch := range name {
		if !(isAsciiLetter(byte(ch)) || (ch >= '0' && ch <= '9') || ch == '_') {
			return true
		}
	}
	return false
}

// renderSheetQualifier renders the "Sheet1!" / "'My Sheet'!" prefix for a
// reference, or "" when sheet is empty (meaning "current sheet").
func renderSheetQualifier(sheet string) string {
	if sheet == "" {
		return ""
	}
	if needsQuoting(sheet) {
		return "'" + strings.ReplaceAll(sheet, "'", "''") + "'!"
	}
	return sheet + "!"
}

// RenderCellRef renders a CellRef in canonical form, e.g. "Sheet1!A1".
func RenderCellRef(ref CellRef) string {
	col, _ := numberToColumn(ref.Col)
	return renderSheetQualifier(ref.Sheet) + col + strconv.Itoa(ref.Row)
}

// RenderRangeRef renders a RangeRef in canonical form, handling whole-row
// and whole-column forms ("A:A", "1:1").
func RenderRangeRef(ref RangeRef) string {
	prefix := renderSheetQualifier(ref.Sheet)
	switch {
	case ref.IsWholeColumn() && ref.StartCol != nil && ref.EndCol != nil:
		sc, _ := numberToColumn(*ref.StartCol)
		ec, _ := numberToColumn(*ref.EndCol)
		return prefix + sc + ":" + ec
	case ref.IsWholeRow() && ref.StartRow != nil && ref.EndRow != nil:
		return prefix + strconv.Itoa(*ref.StartRow) + ":" + strconv.Itoa(*ref.EndRow)
	default:
		start := CellRef{Row: derefOr(ref.StartRow, 1), Col: derefOr(ref.StartCol, 1)}
		end := CellRef{Row: derefOr(ref.EndRow, 1), Col: derefOr(ref.EndCol, 1)}
		sc, _ := numberToColumn(start.Col)
		ec, _ := numberToColumn(end.Col)
		return prefix + sc + strconv.Itoa(start.Row) + ":" + ec + strconv.Itoa(end.Row)
	}
}

func derefOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}

// ParseReference parses a reference string in either Excel (default) or
// OpenFormula dialect. OpenFormula uses "." instead of "!" as the
// sheet-qualifier separator and "[Sheet.A1:B2]" external-reference
// brackets; when the Excel-dialect parse fails, ParseReference retries in
// OpenFormula dialect and logs the fallback via logFn (nil-safe) per
// SPEC_FULL.md §4.1.
func ParseReference(s string, logFn func(string)) (any, ReferenceType, error) {
	v, rt, err := parseReferenceExcel(s)
	if err == nil {
		return v, rt, nil
	}
	v2, rt2, err2 := parseReferenceOpenFormula(s)
	if err2 == nil {
		if logFn != nil {
			logFn("recovered reference via OpenFormula dialect fallback: " + s)
		}
		return v2, rt2, nil
	}
	return nil, 0, err
}

func parseReferenceExcel(s string) (any, ReferenceType, error) {
	sheet, rest := splitSheetQualifier(s)
	if strings.Contains(rest, ":") {
		return parseRangeBody(sheet, rest)
	}
	row, col, err := parseCellToken(rest)
	if err != nil {
		return nil, 0, err
	}
	return CellRef{Sheet: sheet, Row: row, Col: col}, RefCell, nil
}

// parseReferenceOpenFormula accepts "Sheet.A1" style qualifiers in place
// of "Sheet!A1", and strips "[...]" external-reference brackets.
func parseReferenceOpenFormula(s string) (any, ReferenceType, error) {
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if idx := strings.Index(s, "."); idx >= 0 && !strings.Contains(s, "!") {
		sheet := s[:idx]
		rest := s[idx+1:]
		converted := sheet + "!" + rest
		return parseReferenceExcel(converted)
	}
	return parseReferenceExcel(s)
}

func parseRangeBody(sheet, rest string) (any, ReferenceType, error) {
	parts := strings.SplitN(rest, ":", 2)
	if len(parts) != 2 {
		return nil, 0, NewReferenceError("malformed range: %q", rest)
	}
	start, end := parts[0], parts[1]

	// whole-column form: "A:A"
	if isAllLetters(start) && isAllLetters(end) {
		sc, err := columnToNumber(start)
		if err != nil {
			return nil, 0, err
		}
		ec, err := columnToNumber(end)
		if err != nil {
			return nil, 0, err
		}
		return RangeRef{Sheet: sheet, StartCol: &sc, EndCol: &ec}, RefRange, nil
	}
	// whole-row form: "1:1"
	if isAllDigits(start) && isAllDigits(end) {
		sr, err1 := strconv.Atoi(start)
		er, err2 := strconv.Atoi(end)
		if err1 != nil || err2 != nil || sr < 1 || er < 1 || sr > MaxRow || er > MaxRow {
			return nil, 0, NewReferenceError("malformed whole-row range: %q:%q", start, end)
		}
		return RangeRef{Sheet: sheet, StartRow: &sr, EndRow: &er}, RefRange, nil
	}

	sr, sc, err := parseCellToken(start)
	if err != nil {
		return nil, 0, err
	}
	er, ec, err := parseCellToken(end)
	if err != nil {
		return nil, 0, err
	}
	return RangeRef{Sheet: sheet, StartRow: &sr, StartCol: &sc, EndRow: &er, EndCol: &ec}, RefRange, nil
}

func isAllLetters(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isAsciiLetter(s[i]) {
			return false
		}
	}
	return true
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
