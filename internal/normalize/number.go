// Package normalize converts loosely typed external input into canonical
// values. No function in this package returns an error: input that cannot be
// interpreted resolves to "no value" (a nil pointer or ok=false).
package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseNumber accepts a native number or a numeric string. Thousands
// separators and any character outside digits, sign and decimal point are
// stripped from strings before parsing.
func ParseNumber(input interface{}) (float64, bool) {
	switch v := input.(type) {
	case nil:
		return 0, false
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case json.Number:
		return ParseNumber(v.String())
	case *float64:
		if v == nil {
			return 0, false
		}
		return finite(*v)
	case *string:
		if v == nil {
			return 0, false
		}
		return ParseNumber(*v)
	case string:
		cleaned := strings.Map(func(r rune) rune {
			if (r >= '0' && r <= '9') || r == '.' || r == '+' || r == '-' {
				return r
			}
			return -1
		}, v)
		if cleaned == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0, false
		}
		return finite(f)
	default:
		return 0, false
	}
}

// Number is ParseNumber returning a pointer, nil for no value
func Number(input interface{}) *float64 {
	f, ok := ParseNumber(input)
	if !ok {
		return nil
	}
	return &f
}

func finite(f float64) (float64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// RoundDecimal rounds to the given number of decimal places, half away from
// zero. Nil in gives nil out.
func RoundDecimal(value *float64, places int32) *float64 {
	if value == nil {
		return nil
	}
	rounded, _ := decimal.NewFromFloat(*value).Round(places).Float64()
	return &rounded
}

// Round2 is RoundDecimal with the two places used for money and percentages
func Round2(value *float64) *float64 {
	return RoundDecimal(value, 2)
}

// Float returns a pointer to f
func Float(f float64) *float64 {
	return &f
}
