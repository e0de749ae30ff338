// Package validation collects per-field violation codes for form input.
// Codes are i18n catalog keys.
package validation

import (
	"strconv"
	"strings"
	"time"
)

// DateLayout is the layout of HTML date inputs.
const DateLayout = "2006-01-02"

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Add records code for field unless the field already has a violation.
func (v Violations) Add(field, code string) {
	if _, ok := v[field]; !ok {
		v[field] = code
	}
}

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "required")
	}
}

// RequiredList flags an empty selection.
func RequiredList(field string, values []string, v Violations) {
	for _, s := range values {
		if strings.TrimSpace(s) != "" {
			return
		}
	}
	v.Add(field, "required")
}

func PositiveInt(field, value string, v Violations) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		v.Add(field, "not_a_number")
		return 0
	}
	if n <= 0 {
		v.Add(field, "must_be_positive")
	}
	return n
}

// Date parses a YYYY-MM-DD value. Blank values are left to Required.
func Date(field, value string, v Violations) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	d, err := time.Parse(DateLayout, value)
	if err != nil {
		v.Add(field, "invalid_date")
		return time.Time{}, false
	}
	return d, true
}

// DateNotBefore flags a date earlier than the calendar day of min.
func DateNotBefore(field, value string, min time.Time, v Violations) {
	d, ok := Date(field, value, v)
	if !ok {
		return
	}
	y, m, day := min.Date()
	if d.Before(time.Date(y, m, day, 0, 0, 0, 0, time.UTC)) {
		v.Add(field, "date_in_past")
	}
}

// EndNotBefore flags an end date that precedes the start date.
func EndNotBefore(field, start, end string, v Violations) {
	s, err1 := time.Parse(DateLayout, strings.TrimSpace(start))
	e, err2 := time.Parse(DateLayout, strings.TrimSpace(end))
	if err1 != nil || err2 != nil {
		return
	}
	if e.Before(s) {
		v.Add(field, "end_before_start")
	}
}

// SubsetOf flags any value not contained in known.
func SubsetOf(field string, values []string, known map[string]bool, v Violations) {
	for _, s := range values {
		if s != "" && !known[s] {
			v.Add(field, "unknown_provider")
			return
		}
	}
}
