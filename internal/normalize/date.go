package normalize

import (
	"encoding/json"
	"math"
	"regexp"
	"strings"
	"time"
)

const isoDateLayout = "2006-01-02"

// MaxEpochMillis is the largest epoch-millisecond magnitude accepted as a date
const MaxEpochMillis = 8.64e15

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// dateLayouts are tried in order for strings that are not already ISO dates
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.ANSIC,
	"Mon Jan 2 2006",
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
	"01/02/2006",
	"1/2/2006",
	"2006/01/02",
	"2006/1/2",
}

// NormalizeDate returns a YYYY-MM-DD calendar date. ISO dates pass through
// unchanged; other recognised date strings and epoch-millisecond numbers are
// converted to the UTC day.
func NormalizeDate(input interface{}) *string {
	switch v := input.(type) {
	case nil:
		return nil
	case *string:
		if v == nil {
			return nil
		}
		return NormalizeDate(*v)
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil
		}
		if isoDatePattern.MatchString(trimmed) {
			return &trimmed
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, trimmed); err == nil {
				return utcDay(t)
			}
		}
		return nil
	case json.Number:
		if ms, err := v.Int64(); err == nil {
			return fromEpochMillis(float64(ms))
		}
		if f, err := v.Float64(); err == nil {
			return fromEpochMillis(f)
		}
		return nil
	case float64:
		return fromEpochMillis(v)
	case int64:
		return fromEpochMillis(float64(v))
	case int:
		return fromEpochMillis(float64(v))
	case time.Time:
		if v.IsZero() {
			return nil
		}
		return utcDay(v)
	default:
		return nil
	}
}

// fromEpochMillis converts epoch milliseconds to a UTC day. Values outside
// the representable calendar range are no value.
func fromEpochMillis(ms float64) *string {
	if _, ok := finite(ms); !ok || math.Abs(ms) > MaxEpochMillis {
		return nil
	}
	return utcDay(time.UnixMilli(int64(ms)))
}

func utcDay(t time.Time) *string {
	s := t.UTC().Format(isoDateLayout)
	return &s
}
