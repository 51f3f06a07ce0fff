// Package dates normalizes the date strings found in project timelines into
// calendar days and provides whole-day arithmetic over them.
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

const msPerDay = 24 * 60 * 60 * 1000

// Layout is the canonical rendering of a calendar day.
const Layout = "2006-01-02"

var dayMonthYear = regexp.MustCompile(`^(\d{2})-(\d{2})-(\d{4})$`)

// Parse converts a raw date string into a UTC calendar day.
// DD-MM-YYYY is matched literally and converted positionally; anything else
// goes through general parsing, then a retry with a midnight suffix.
// The boolean is false when no representation succeeds.
func Parse(raw string) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	if m := dayMonthYear.FindStringSubmatch(s); m != nil {
		dd, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		yyyy, _ := strconv.Atoi(m[3])
		return time.Date(yyyy, time.Month(mm), dd, 0, 0, 0, 0, time.UTC), true
	}

	if t, err := dateparse.ParseIn(s, time.UTC); err == nil {
		return Day(t), true
	}
	if t, err := dateparse.ParseIn(s+"T00:00:00", time.UTC); err == nil {
		return Day(t), true
	}
	return time.Time{}, false
}

// Day truncates t to midnight UTC of the day it falls in.
func Day(t time.Time) time.Time {
	return time.UnixMilli(dayIndex(t) * msPerDay).UTC()
}

// DiffDays is the whole-day difference a - b. Time of day never matters:
// two instants on the same UTC day always differ by 0.
func DiffDays(a, b time.Time) int {
	return int(dayIndex(a) - dayIndex(b))
}

// AddDays shifts t by n whole days.
func AddDays(t time.Time, n int) time.Time {
	return t.Add(time.Duration(n) * 24 * time.Hour)
}

// ClampNonNeg returns n, or 0 when n is negative.
func ClampNonNeg(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// Format renders a day as YYYY-MM-DD, or "-" when ok is false.
func Format(t time.Time, ok bool) string {
	if !ok {
		return "-"
	}
	return t.UTC().Format(Layout)
}

func dayIndex(t time.Time) int64 {
	ms := t.UnixMilli()
	d := ms / msPerDay
	if ms%msPerDay != 0 && ms < 0 {
		d--
	}
	return d
}
