package core

import (
	"fmt"
	"math"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// Eprint writes msg to stderr when verbose is true.
func Eprint(msg string, verbose bool) {
	if verbose {
		fmt.Fprintln(os.Stderr, msg)
	}
}

// GetTZ returns a *time.Location for the given timezone name.
// Falls back to UTC if the timezone is not found.
func GetTZ(name string) *time.Location {
	if name == "" {
		name = DefaultTZ
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Timezone '%s' not found; falling back to UTC.\n", name)
		return time.UTC
	}
	return loc
}

// ParseDate parses a YYYY-MM-DD string into a time.Time (date only, at midnight UTC).
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(APIDateFmt, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date '%s' (expected YYYY-MM-DD)", s)
	}
	return t, nil
}

// ValidateDate checks that s is a real calendar date in YYYY-MM-DD form and
// returns it trimmed.
func ValidateDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !dateRe.MatchString(s) {
		return "", fmt.Errorf("date must be YYYY-MM-DD, got: %s", s)
	}
	if _, err := ParseDate(s); err != nil {
		return "", err
	}
	return s, nil
}

// ResolveDate accepts YYYY-MM-DD or a shorthand understood by ParseDateSpec
// and returns the concrete YYYY-MM-DD string.
func ResolveDate(spec string, loc *time.Location) (string, error) {
	spec = strings.TrimSpace(spec)
	if dateRe.MatchString(spec) {
		return ValidateDate(spec)
	}
	t, err := ParseDateSpec(spec, loc)
	if err != nil {
		return "", err
	}
	return FormatDate(t), nil
}

// ParseDateSpec returns a concrete date for flexible spec strings.
// Supports:
// 1. Exact YYYY-MM-DD
// 2. today / yesterday
// 3. Relative forms like d-7 (days), w-2 (weeks), m-3 (months), y-1 (years)
func ParseDateSpec(spec string, loc *time.Location) (time.Time, error) {
	now := time.Now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	if t, err := time.Parse(APIDateFmt, spec); err == nil {
		return t, nil
	}

	switch strings.ToLower(spec) {
	case "today":
		return today, nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	}

	relRegex := regexp.MustCompile(`^([dwmy])-(\d+)$`)
	if matches := relRegex.FindStringSubmatch(strings.ToLower(spec)); matches != nil {
		num, _ := strconv.Atoi(matches[2])
		switch matches[1] {
		case "d":
			return today.AddDate(0, 0, -num), nil
		case "w":
			return today.AddDate(0, 0, -num*7), nil
		case "m":
			return today.AddDate(0, -num, 0), nil
		case "y":
			return today.AddDate(-num, 0, 0), nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid date specification: '%s'", spec)
}

// DateOnly truncates t to midnight in its own location.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// FormatDate formats t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(APIDateFmt)
}

// FormatDuration renders seconds as 1h23m45s, 25m30s or 42s.
func FormatDuration(seconds float64) string {
	s := int(seconds)
	if s <= 0 {
		return "0s"
	}
	h, m, sec := s/3600, (s%3600)/60, s%60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, sec)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, sec)
	}
	return fmt.Sprintf("%ds", sec)
}

// FormatPace converts a speed in m/s to "M:SS /km". It returns "" for
// non-positive speeds.
func FormatPace(metersPerSec float64) string {
	if metersPerSec <= 0 || math.IsNaN(metersPerSec) || math.IsInf(metersPerSec, 0) {
		return ""
	}
	secPerKm := int(1000.0 / metersPerSec)
	return fmt.Sprintf("%d:%02d /km", secPerKm/60, secPerKm%60)
}
