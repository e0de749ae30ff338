// Package format renders remote field values for display.
package format

import (
	"html"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

// Placeholders shown when a value is missing.
const (
	NoDate        = "No Date"
	InvalidDate   = "Invalid Date"
	NoTitle       = "No Title"
	NoDescription = "No Description"
	NoStatus      = "No Status"
	NoName        = "No Name"
)

// TrimLength is the cell length of long text columns.
const TrimLength = 80

var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

var shortLayouts = map[string]string{
	"en": "1/2/2006",
	"fr": "02/01/2006",
}

// ParseDate accepts a full ISO-8601 timestamp or a bare date.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ShortDate renders s as a locale short date. Empty input yields "",
// unparsable input "Invalid Date".
func ShortDate(s, lang string) string {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	t, ok := ParseDate(s)
	if !ok {
		return InvalidDate
	}
	layout, found := shortLayouts[lang]
	if !found {
		layout = shortLayouts["en"]
	}
	return t.UTC().Format(layout)
}

// DateOr is ShortDate with a placeholder for missing values.
func DateOr(s, lang, placeholder string) string {
	if out := ShortDate(s, lang); out != "" {
		return out
	}
	return placeholder
}

// EpochMillis is the ordering key of a date column; missing or invalid
// dates sort as 0.
func EpochMillis(s string) int64 {
	t, ok := ParseDate(s)
	if !ok {
		return 0
	}
	return t.UnixMilli()
}

// Truncate cuts s to n runes and appends "..." when it was longer.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n]) + "..."
}

// Text returns placeholder for blank values.
func Text(s, placeholder string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}

// ImageURL resolves a stored profile image file name against the uploads
// base, falling back to the placeholder image.
func ImageURL(uploadsBase, file, fallback string) string {
	file = strings.TrimSpace(file)
	if file == "" {
		return fallback
	}
	if strings.HasPrefix(file, "http://") || strings.HasPrefix(file, "https://") {
		return file
	}
	return strings.TrimRight(uploadsBase, "/") + "/" + strings.TrimLeft(file, "/")
}

var (
	// Editor output is user content; the view panel gets the UGC subset.
	richPolicy  = bluemonday.UGCPolicy()
	plainPolicy = bluemonday.StrictPolicy().AddSpaceWhenStrippingTag(true)
)

// SafeHTML sanitizes editor HTML for rendering. Scripts, event handlers
// and javascript: URLs are dropped; formatting survives.
func SafeHTML(s string) string { return richPolicy.Sanitize(s) }

// PlainText strips markup from editor HTML for table cells and collapses
// whitespace. Script and style bodies are dropped with their tags.
func PlainText(s string) string {
	return strings.Join(strings.Fields(html.UnescapeString(plainPolicy.Sanitize(s))), " ")
}
