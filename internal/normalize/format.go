package normalize

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Placeholder is shown in place of an unknown value
const Placeholder = "—"

// FormatCurrency renders a USD amount with thousands separators
func FormatCurrency(value *float64) string {
	if value == nil {
		return Placeholder
	}
	d := decimal.NewFromFloat(*value).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	fixed := d.StringFixed(2)
	whole, frac, _ := strings.Cut(fixed, ".")
	return sign + "$" + groupThousands(whole) + "." + frac
}

// FormatPercent renders a percentage with two decimals
func FormatPercent(value *float64) string {
	if value == nil {
		return Placeholder
	}
	return decimal.NewFromFloat(*value).StringFixed(2) + "%"
}

// FormatDate renders a stored date as "Jan 2, 2006". Values that do not
// parse are returned unchanged.
func FormatDate(value *string) string {
	if value == nil || strings.TrimSpace(*value) == "" {
		return Placeholder
	}
	day := NormalizeDate(*value)
	if day == nil {
		return *value
	}
	t, err := time.Parse(isoDateLayout, *day)
	if err != nil {
		return *value
	}
	return t.Format("Jan 2, 2006")
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
