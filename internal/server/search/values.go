package search

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var unitMultipliers = map[string]float64{
	"bytes": 1,
	"kb":    1024,
	"mb":    1024 * 1024,
	"gb":    1024 * 1024 * 1024,
}

// ConvertToBytes parses a decimal size in the given unit (bytes, kb, mb or
// gb; default bytes) and rounds it to whole bytes. Negative, non-finite and
// out-of-range sizes are rejected.
func ConvertToBytes(value, unit string) (int64, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}

	n, err := strconv.ParseFloat(value, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}

	multiplier, ok := unitMultipliers[strings.ToLower(strings.TrimSpace(unit))]
	if !ok {
		multiplier = 1
	}

	bytes := math.Round(n * multiplier)
	if bytes < 0 || bytes >= math.MaxInt64 {
		return 0, false
	}
	return int64(bytes), true
}

var dateOnly = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

var offsetLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05 -07:00",
	time.RFC1123Z,
	time.RFC822Z,
}

var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006/01/02",
	"2006/01/02 15:04:05",
	"01/02/2006",
	"01/02/2006 15:04:05",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
}

// localZone is the zone offset-less timestamps are read in.
var localZone = time.Local

// ParseDate reads a user-supplied date. "YYYY-MM-DD" is midnight UTC.
// Timestamps with an offset are converted to UTC; timestamps without one
// are taken as local time and converted to UTC.
func ParseDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}

	if dateOnly.MatchString(value) {
		t, err := time.Parse(time.DateOnly, value)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}

	for _, layout := range offsetLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, localZone); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// StartOfDay is midnight of t's UTC calendar day.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// EndOfDay is the last representable instant of t's UTC calendar day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).Add(24*time.Hour - time.Nanosecond)
}

// mergeRange picks the two bounds of a between condition: an explicit
// range first, then a two-element value list, then value/secondaryValue.
func mergeRange(c Condition) (from, to string, ok bool) {
	if c.Range != nil {
		return c.Range.From, c.Range.To, true
	}
	if len(c.Values) >= 2 {
		return c.Values[0], c.Values[1], true
	}
	if strings.TrimSpace(c.Value) != "" || strings.TrimSpace(c.SecondaryValue) != "" {
		return c.Value, c.SecondaryValue, true
	}
	return "", "", false
}
