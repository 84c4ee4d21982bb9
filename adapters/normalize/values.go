package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"scorenorm/domain/scorecard"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// CellCoercer converts raw grid cells into typed values with
// deterministic rules
type CellCoercer struct{}

// NewCellCoercer creates a coercer
func NewCellCoercer() *CellCoercer {
	return &CellCoercer{}
}

// CoerceNumber parses a numeric cell. A trailing percent sign is
// dropped without rescaling, so "85%" yields 85, while a bare decimal
// such as 0.5 passes through unchanged. The two conventions are
// preserved exactly as the source files use them.
func (c *CellCoercer) CoerceNumber(raw string) (scorecard.Value, bool) {
	cleanVal := strings.TrimSpace(raw)
	if cleanVal == "" {
		return scorecard.NewMissingValue(), false
	}

	// Parentheses mark negatives in exported sheets: (123) -> -123
	isNegative := false
	if strings.HasPrefix(cleanVal, "(") && strings.HasSuffix(cleanVal, ")") {
		cleanVal = strings.TrimPrefix(cleanVal, "(")
		cleanVal = strings.TrimSuffix(cleanVal, ")")
		isNegative = true
	}

	if strings.HasSuffix(cleanVal, "%") {
		cleanVal = strings.TrimSpace(strings.TrimSuffix(cleanVal, "%"))
	}

	// Thousands separators
	cleanVal = strings.ReplaceAll(cleanVal, ",", "")
	cleanVal = strings.ReplaceAll(cleanVal, " ", "")

	if isNegative {
		cleanVal = "-" + cleanVal
	}

	if val, err := strconv.ParseFloat(cleanVal, 64); err == nil {
		if !math.IsInf(val, 0) && !math.IsNaN(val) {
			return scorecard.NewNumericValue(val), true
		}
	}

	return scorecard.NewMissingValue(), false
}

// CoerceOrder parses an explicit order cell into an integer. Integral
// floats such as "3.0" are accepted; anything else is unparseable and
// callers fall back to positional order.
func (c *CellCoercer) CoerceOrder(raw string) (int, bool) {
	cleanVal := strings.TrimSpace(raw)
	if cleanVal == "" {
		return 0, false
	}

	if n, err := strconv.Atoi(cleanVal); err == nil {
		return n, true
	}

	if val, err := strconv.ParseFloat(cleanVal, 64); err == nil {
		if val == math.Trunc(val) && !math.IsInf(val, 0) {
			return int(val), true
		}
	}

	return 0, false
}

// IsTrueFlag normalizes a selection-flag cell. Only a trimmed,
// case-insensitive "true" keeps a row; "false", blank, and anything
// unparseable all exclude it.
func (c *CellCoercer) IsTrueFlag(raw string) bool {
	return strings.EqualFold(strings.TrimSpace(raw), "true")
}

// NormalizeLabel prepares a header cell for matching: trimmed,
// lowercased, and runs of whitespace collapsed so double-spaced
// labels compare equal to their clean spellings.
func NormalizeLabel(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ToLower(name)
	name = whitespaceRe.ReplaceAllString(name, " ")
	return name
}

// ContainsAny checks whether the text contains any of the keywords
func ContainsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
