package model

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// NoValueLabel is the external form of a clue without a dollar value
// (Final Jeopardy!, tiebreakers).
const NoValueLabel = "None"

// ErrInvalidValueFormat is returned when a value selector is neither
// "None" nor a dollar amount like "$200" or "$1,000".
var ErrInvalidValueFormat = eris.New("invalid value format")

// DollarValue is a clue's monetary value. The zero value means "no value".
type DollarValue struct {
	Amount int64
	Valid  bool
}

// Dollars returns a DollarValue holding n.
func Dollars(n int64) DollarValue {
	return DollarValue{Amount: n, Valid: true}
}

// NoValue returns the explicit "no value" marker.
func NoValue() DollarValue {
	return DollarValue{}
}

// String renders the value the way clients send it: "$200" or "None".
func (v DollarValue) String() string {
	if !v.Valid {
		return NoValueLabel
	}
	return "$" + strconv.FormatInt(v.Amount, 10)
}

// MarshalJSON encodes the value in its display form.
func (v DollarValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

// ParseDollarValue parses a value selector. Accepted forms are the literal
// "None", "$<digits>" and "$<digits>" with comma group separators between
// digits ("$1,000"). Anything else yields ErrInvalidValueFormat.
func ParseDollarValue(s string) (DollarValue, error) {
	if s == NoValueLabel {
		return NoValue(), nil
	}
	digits, ok := strings.CutPrefix(s, "$")
	if !ok {
		return DollarValue{}, eris.Wrapf(ErrInvalidValueFormat, "value %q", s)
	}
	n, ok := parseGroupedDigits(digits)
	if !ok {
		return DollarValue{}, eris.Wrapf(ErrInvalidValueFormat, "value %q", s)
	}
	return Dollars(n), nil
}

// ParseIngestValue parses the Value column of the source dataset. It is
// more lenient than ParseDollarValue: an empty cell means no value and the
// leading "$" is optional.
func ParseIngestValue(s string) (DollarValue, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == NoValueLabel {
		return NoValue(), nil
	}
	n, ok := parseGroupedDigits(strings.TrimPrefix(s, "$"))
	if !ok {
		return DollarValue{}, eris.Wrapf(ErrInvalidValueFormat, "value %q", s)
	}
	return Dollars(n), nil
}

func parseGroupedDigits(s string) (int64, bool) {
	if s == "" || s[0] == ',' || s[len(s)-1] == ',' || strings.Contains(s, ",,") {
		return 0, false
	}
	plain := strings.ReplaceAll(s, ",", "")
	for _, r := range plain {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(plain, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
