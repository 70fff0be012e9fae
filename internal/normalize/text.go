package normalize

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
)

// MaxSlugLength caps the length of generated slugs
const MaxSlugLength = 120

var (
	nonSlugRun      = regexp.MustCompile(`[^a-z0-9]+`)
	pdfExtension    = regexp.MustCompile(`(?i)\.pdf$`)
	slugFallbackNow = time.Now
)

// Slugify derives a URL-safe key from a label. An empty result falls back to
// a time-based placeholder.
func Slugify(label string) string {
	slug := nonSlugRun.ReplaceAllString(strings.ToLower(label), "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		return fmt.Sprintf("report-%d", slugFallbackNow().UnixMilli())
	}
	if len(slug) > MaxSlugLength {
		slug = slug[:MaxSlugLength]
	}
	return slug
}

// NormalizeTitle collapses whitespace, trims and lowercases a title. The
// result is a matching key, not for display. Unicode spaces such as NBSP and
// the byte order mark count as whitespace.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.Join(strings.FieldsFunc(title, isTitleSpace), " "))
}

func isTitleSpace(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// TrimmedString returns the trimmed string when it is non-blank, nil otherwise.
// Non-string input is no value.
func TrimmedString(input interface{}) *string {
	var s string
	switch v := input.(type) {
	case string:
		s = v
	case *string:
		if v == nil {
			return nil
		}
		s = *v
	default:
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// FirstNonBlank returns the first candidate that trims to a non-blank string
func FirstNonBlank(candidates ...*string) *string {
	for _, c := range candidates {
		if s := TrimmedString(c); s != nil {
			return s
		}
	}
	return nil
}

// StripPDFExtension removes a trailing .pdf, case-insensitively
func StripPDFExtension(fileName string) string {
	return pdfExtension.ReplaceAllString(fileName, "")
}

// String returns a pointer to s
func String(s string) *string {
	return &s
}
