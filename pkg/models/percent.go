package models

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Percent is a percentage rounded to one fractional digit.
type Percent float64

// NewPercent returns part/whole*100 rounded to one decimal, or zero when whole is zero.
func NewPercent(part, whole float64) Percent {
	if whole == 0 {
		return 0
	}
	return Percent(math.Round(part*100/whole*10) / 10)
}

// String renders exactly one fractional digit, e.g. "60.0".
func (p Percent) String() string {
	return strconv.FormatFloat(float64(p), 'f', 1, 64)
}

// Float returns the underlying value.
func (p Percent) Float() float64 {
	return float64(p)
}

// MarshalJSON encodes the value as a number with one fractional digit.
func (p Percent) MarshalJSON() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalJSON accepts a JSON number or a quoted value such as "60.0%".
func (p *Percent) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = 0
		return nil
	}
	s := string(data)
	if len(s) >= 2 && s[0] == '"' {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return fmt.Errorf("invalid percent %s: %w", s, err)
		}
		s = strings.TrimSuffix(strings.TrimSpace(unquoted), "%")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("invalid percent %s: %w", string(data), err)
	}
	*p = Percent(v)
	return nil
}
