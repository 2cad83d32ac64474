// Package parse provides permissive cell parsers. None of them fail:
// each returns the type default with ok=false when the input is unusable.
package parse

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ISODate is the layout of canonical dates
const ISODate = "2006-01-02"

// Date parses any common date text and returns it as an ISO calendar date.
// Missing or unparseable input yields "".
func Date(raw string) (string, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", false
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return "", false
	}
	return t.Format(ISODate), true
}

// intLimit is 2^(IntSize-1), the smallest magnitude int cannot hold
var intLimit = math.Ldexp(1, strconv.IntSize-1)

// Int parses a decimal number and truncates it toward zero.
// Missing, non-numeric or negative input yields 0, as does a value too large
// for int, where the conversion would otherwise be undefined.
func Int(raw string) (int, bool) {
	f, ok := Float(raw)
	if !ok || f < 0 || f >= intLimit {
		return 0, false
	}
	return int(math.Trunc(f)), true
}

// Float parses a finite decimal number
func Float(raw string) (float64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// DaysBetween returns the absolute whole-day distance between two ISO dates
func DaysBetween(a, b string) (int, bool) {
	ta, err := time.Parse(ISODate, a)
	if err != nil {
		return 0, false
	}
	tb, err := time.Parse(ISODate, b)
	if err != nil {
		return 0, false
	}
	d := int(ta.Sub(tb).Hours() / 24)
	if d < 0 {
		d = -d
	}
	return d, true
}
