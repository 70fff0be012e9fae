package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

var americanOddsPattern = regexp.MustCompile(`^[+\-]?\d+$`)

// DecimalOddsFromString converts an odds string to decimal odds. Signed
// integers are American odds (+150 -> 2.5, -110 -> 1.909); any other
// positive number is taken as already decimal.
func DecimalOddsFromString(odds *string) *float64 {
	if odds == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*odds)
	if trimmed == "" {
		return nil
	}
	normalized := strings.ReplaceAll(trimmed, ",", "")

	if americanOddsPattern.MatchString(normalized) {
		american, err := strconv.ParseFloat(normalized, 64)
		if err != nil || american == 0 {
			return nil
		}
		var dec float64
		if american > 0 {
			dec = american/100 + 1
		} else {
			dec = 100/math.Abs(american) + 1
		}
		return RoundDecimal(&dec, 3)
	}

	numeric, err := strconv.ParseFloat(normalized, 64)
	if err != nil || math.IsNaN(numeric) || math.IsInf(numeric, 0) || numeric <= 0 {
		return nil
	}
	return &numeric
}
