package gridcalc

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ExcelErrorKind enumerates the Excel-compatible error values a formula can
// produce (spec.md §6). Error values are first-class LiteralValues: they can
// be stored, copied, compared, and propagate through arithmetic (sticky).
type ExcelErrorKind uint8

const (
	ErrNull        ExcelErrorKind = iota + 1 // #NULL! - no cells in common between ranges
	ErrDiv                                   // #DIV/0! - division by zero
	ErrValue                                 // #VALUE! - wrong type of argument or operand
	ErrRef                                   // #REF! - invalid cell reference
	ErrName                                  // #NAME? - unrecognized function/name
	ErrNum                                   // #NUM! - number too large/small to represent
	ErrNA                                    // #N/A - value not available
	ErrGettingData                           // #GETTING_DATA - async data still loading
	ErrCirc                                  // #CIRC! - circular reference
	ErrCalc                                  // #CALC! - calculation error (e.g. Callable used as value)
	ErrSpill                                 // #SPILL! - dynamic array result collides with occupied cells
)

var errorKindText = map[ExcelErrorKind]string{
	ErrNull:        "#NULL!",
	ErrDiv:         "#DIV/0!",
	ErrValue:       "#VALUE!",
	ErrRef:         "#REF!",
	ErrName:        "#NAME?",
	ErrNum:         "#NUM!",
	ErrNA:          "#N/A",
	ErrGettingData: "#GETTING_DATA",
	ErrCirc:        "#CIRC!",
	ErrCalc:        "#CALC!",
	ErrSpill:       "#SPILL!",
}

func (k ExcelErrorKind) String() string {
	if s, ok := errorKindText[k]; ok {
		return s
	}
	return "#ERROR!"
}

// SpreadsheetError is the LiteralValue::Error(kind, message?) variant.
// Arithmetic on an error is sticky: it returns the same error untouched.
type SpreadsheetError struct {
	Kind    ExcelErrorKind
	Message string
}

func (e *SpreadsheetError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.String()
}

// NewExcelError builds a SpreadsheetError, defaulting the message to the
// kind's canonical text when none is supplied.
func NewExcelError(kind ExcelErrorKind, message string) *SpreadsheetError {
	if message == "" {
		message = kind.String()
	}
	return &SpreadsheetError{Kind: kind, Message: message}
}

// LiteralValue is the tagged union described in spec.md §3:
// Empty | Boolean | Int | Number | Text | Date | DateTime | Error | Array.
//
// Go has no sum types, so LiteralValue is implemented as an interface with a
// closed set of implementations, each of which knows its own Kind(). This
// mirrors the teacher's `Primitive any` value model (cell.go) but makes the
// tag explicit and exhaustive instead of relying on a runtime type switch
// over bare Go types.
type LiteralValue interface {
	Kind() ValueKind
	// IsError reports whether this value is an Error variant — used
	// pervasively for the "any error operand propagates" rule (spec.md §7).
	IsError() bool
}

// ValueKind tags the concrete LiteralValue variant.
type ValueKind uint8

const (
	KindEmpty ValueKind = iota
	KindBoolean
	KindNumber
	KindText
	KindDate
	KindDateTime
	KindError
	KindArray
)

// EmptyValue is the canonical LiteralValue::Empty. A single shared instance
// is used everywhere an empty cell/pad value is needed.
type EmptyValue struct{}

func (EmptyValue) Kind() ValueKind { return KindEmpty }
func (EmptyValue) IsError() bool   { return false }

// Empty is the shared LiteralValue::Empty singleton.
var Empty LiteralValue = EmptyValue{}

// BoolValue is LiteralValue::Boolean.
type BoolValue bool

func (BoolValue) Kind() ValueKind { return KindBoolean }
func (BoolValue) IsError() bool   { return false }

// NumberValue is LiteralValue::Number(f64). Integral literals are folded
// into NumberValue too (spec.md's Int variant is not distinguished at
// runtime — Excel itself has one numeric type); AsText (via formatNumber)
// renders it without a fractional part when the value is integral,
// matching the teacher's NumberNode.ToString convention.
type NumberValue float64

func (NumberValue) Kind() ValueKind { return KindNumber }
func (NumberValue) IsError() bool   { return false }

// TextValue is LiteralValue::Text.
type TextValue string

func (TextValue) Kind() ValueKind { return KindText }
func (TextValue) IsError() bool   { return false }

// DateValue is LiteralValue::Date: an Excel 1900/1904-system serial day
// number (integral part only; see DateTimeValue for fractional time-of-day).
type DateValue float64

func (DateValue) Kind() ValueKind { return KindDate }
func (DateValue) IsError() bool   { return false }

// DateTimeValue is LiteralValue::DateTime: an Excel serial with a
// fractional time-of-day component (spec.md §4.7 datetime family).
type DateTimeValue float64

func (DateTimeValue) Kind() ValueKind { return KindDateTime }
func (DateTimeValue) IsError() bool   { return false }

// ErrorValue is LiteralValue::Error(kind, message?).
type ErrorValue struct {
	*SpreadsheetError
}

func (ErrorValue) Kind() ValueKind { return KindError }
func (ErrorValue) IsError() bool   { return true }

// NewErrorValue wraps a SpreadsheetError as a LiteralValue.
func NewErrorValue(kind ExcelErrorKind, message string) ErrorValue {
	return ErrorValue{NewExcelError(kind, message)}
}

// ArrayValue is LiteralValue::Array(rows[][]) — a rectangular grid of
// literal values, produced by array literals ({1,2;3,4}) and dynamic-array
// functions (FILTER, UNIQUE, SEQUENCE, TRANSPOSE, ...).
type ArrayValue struct {
	Rows [][]LiteralValue
}

func (ArrayValue) Kind() ValueKind { return KindArray }
func (a ArrayValue) IsError() bool {
	return len(a.Rows) == 1 && len(a.Rows[0]) == 1 && a.Rows[0][0].IsError()
}

// Dims returns the array's row/column extent.
func (a ArrayValue) Dims() (rows, cols int) {
	rows = len(a.Rows)
	if rows == 0 {
		return 0, 0
	}
	cols = len(a.Rows[0])
	return rows, cols
}

// firstError returns the first error cell found in row-major order, if any.
func (a ArrayValue) firstError() (ErrorValue, bool) {
	for _, row := range a.Rows {
		for _, v := range row {
			if ev, ok := v.(ErrorValue); ok {
				return ev, true
			}
		}
	}
	return ErrorValue{}, false
}

// AsNumber coerces a LiteralValue to a float64 using Excel-lenient rules:
// booleans become 1/0, numeric-looking text is parsed (trimmed, locale-free
// decimal point), dates/datetimes use their serial value. Errors propagate.
func AsNumber(v LiteralValue) (float64, *SpreadsheetError) {
	switch t := v.(type) {
	case EmptyValue:
		return 0, nil
	case BoolValue:
		if t {
			return 1, nil
		}
		return 0, nil
	case NumberValue:
		return float64(t), nil
	case DateValue:
		return float64(t), nil
	case DateTimeValue:
		return float64(t), nil
	case TextValue:
		if n, ok := parseLenientNumber(string(t)); ok {
			return n, nil
		}
		return 0, NewExcelError(ErrValue, "")
	case ErrorValue:
		return 0, t.SpreadsheetError
	case ArrayValue:
		if len(t.Rows) > 0 && len(t.Rows[0]) > 0 {
			return AsNumber(t.Rows[0][0])
		}
		return 0, NewExcelError(ErrValue, "")
	default:
		return 0, NewExcelError(ErrValue, "")
	}
}

// AsText coerces a LiteralValue to its display text, the way CONCATENATE/&
// would render it.
func AsText(v LiteralValue) (string, *SpreadsheetError) {
	switch t := v.(type) {
	case EmptyValue:
		return "", nil
	case BoolValue:
		if t {
			return "TRUE", nil
		}
		return "FALSE", nil
	case NumberValue:
		return formatNumber(float64(t)), nil
	case DateValue:
		return formatNumber(float64(t)), nil
	case DateTimeValue:
		return formatNumber(float64(t)), nil
	case TextValue:
		return string(t), nil
	case ErrorValue:
		return "", t.SpreadsheetError
	case ArrayValue:
		if len(t.Rows) > 0 && len(t.Rows[0]) > 0 {
			return AsText(t.Rows[0][0])
		}
		return "", nil
	default:
		return "", NewExcelError(ErrValue, "")
	}
}

// AsBool coerces a LiteralValue to a boolean using Excel rules: any nonzero
// number is true, "TRUE"/"FALSE" text (case-insensitive) map directly,
// empty is false.
func AsBool(v LiteralValue) (bool, *SpreadsheetError) {
	switch t := v.(type) {
	case EmptyValue:
		return false, nil
	case BoolValue:
		return bool(t), nil
	case NumberValue:
		return float64(t) != 0, nil
	case TextValue:
		switch {
		case strings.EqualFold(string(t), "TRUE"):
			return true, nil
		case strings.EqualFold(string(t), "FALSE"):
			return false, nil
		default:
			return false, NewExcelError(ErrValue, "")
		}
	case ErrorValue:
		return false, t.SpreadsheetError
	default:
		return false, NewExcelError(ErrValue, "")
	}
}

func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}

// compareValues implements Excel's cross-type ordering, used by the
// comparison operators (ast.go) and XLOOKUP's exact-match test:
// numbers < text < logical, with errors never comparable except to
// themselves (handled by callers before reaching here).
func compareValues(a, b LiteralValue) int {
	aNum, aIsNum := a.(NumberValue)
	bNum, bIsNum := b.(NumberValue)
	if aIsNum && bIsNum {
		switch {
		case float64(aNum) < float64(bNum):
			return -1
		case float64(aNum) > float64(bNum):
			return 1
		default:
			return 0
		}
	}

	rank := func(v LiteralValue) int {
		switch v.(type) {
		case NumberValue, DateValue, DateTimeValue:
			return 0
		case TextValue:
			return 1
		case BoolValue:
			return 2
		default:
			return 3
		}
	}
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return sortInt(ra, rb)
	}

	switch av := a.(type) {
	case TextValue:
		bv := b.(TextValue)
		return sortStringsCI(string(av), string(bv))
	case BoolValue:
		bv := b.(BoolValue)
		if av == bv {
			return 0
		}
		if !bool(av) {
			return -1
		}
		return 1
	default:
		an, _ := AsNumber(a)
		bn, _ := AsNumber(b)
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		default:
			return 0
		}
	}
}

func sortInt(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

func sortStringsCI(a, b string) int {
	la, lb := asciiLower(a), asciiLower(b)
	if la < lb {
		return -1
	}
	if la > lb {
		return 1
	}
	return 0
}

// asciiLower lowercases ASCII letters only — Excel text comparison for
// criteria/lookups is ASCII case-insensitive (spec.md §4.6).
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 32
		}
	}
	return string(b)
}

// sortValues sorts a slice of LiteralValue in Excel cross-type order.
// No function in the package calls it.
func sortValues(vs []LiteralValue) {
	sort.SliceStable(vs, func(i, j int) bool {
		return compareValues(vs[i], vs[j]) < 0
	})
}

// parseLenientNumber parses text the way Excel's numeric coercion does:
// surrounding whitespace is trimmed, a trailing "%" divides by 100, and a
// leading "$" or thousands separators are stripped before the strconv parse.
func parseLenientNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	pct := false
	if strings.HasSuffix(s, "%") {
		pct = true
		s = strings.TrimSuffix(s, "%")
	}
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if pct {
		n /= 100
	}
	return n, true
}

func isMonotonic(vs []LiteralValue, ascending bool) bool {
	for i := 1; i < len(vs); i++ {
		c := compareValues(vs[i-1], vs[i])
		if ascending && c > 0 {
			return false
		}
		if !ascending && c < 0 {
			return false
		}
	}
	return true
}
