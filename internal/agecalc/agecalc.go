// Package agecalc renders the child's age at the date of a milestone.
package agecalc

import (
	"fmt"
	"strings"
	"time"
)

// SameDay is rendered when every component is zero.
const SameDay = "当天"

// DateLayout is the calendar date format accepted at the API boundary.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date into UTC midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// Label maps (birth, event) to a label such as "1岁 2个月" or "19天".
//
// Years and months are whole calendar units, days are whole days modulo 30.
// The day component is only shown before the first birthday. Components are
// truncated toward zero, so an event before the birth date renders as SameDay
// or as the positive components only.
func Label(birth, event time.Time) string {
	b, e := dateOnly(birth), dateOnly(event)

	years := fullYears(b, e)
	months := fullMonths(b, e) % 12
	days := fullDays(b, e) % 30

	parts := make([]string, 0, 3)
	if years > 0 {
		parts = append(parts, fmt.Sprintf("%d岁", years))
	}
	if months > 0 {
		parts = append(parts, fmt.Sprintf("%d个月", months))
	}
	if days > 0 && years == 0 {
		parts = append(parts, fmt.Sprintf("%d天", days))
	}
	if len(parts) == 0 {
		return SameDay
	}
	return strings.Join(parts, " ")
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ordered returns (earlier, later, sign) where sign is -1 when a is after b.
func ordered(a, b time.Time) (time.Time, time.Time, int) {
	if b.Before(a) {
		return b, a, -1
	}
	return a, b, 1
}

func fullYears(a, b time.Time) int {
	from, to, sign := ordered(a, b)
	n := to.Year() - from.Year()
	if to.Month() < from.Month() || (to.Month() == from.Month() && to.Day() < from.Day()) {
		n--
	}
	return sign * n
}

func fullMonths(a, b time.Time) int {
	from, to, sign := ordered(a, b)
	n := (to.Year()-from.Year())*12 + int(to.Month()) - int(from.Month())
	if n > 0 && to.Day() < from.Day() && !isLastDayOfMonth(to) {
		n--
	}
	return sign * n
}

func fullDays(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

func isLastDayOfMonth(t time.Time) bool {
	return t.AddDate(0, 0, 1).Month() != t.Month()
}
