package when

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidInput marks unparseable or out-of-range date/time input. It is
// always detected before any mutation happens.
var ErrInvalidInput = errors.New("invalid input")

var clockRe = regexp.MustCompile(`(?i)^\s*(\d{1,2})(?::(\d{1,2}))?\s*(AM|PM)?\s*$`)

// ParseClock normalizes user time input ("7", "7:00 PM", "19:30") to a
// 24-hour "HH:MM" string. Without a meridiem the hour must be 0-23; with one
// it must be 1-12, where 12 AM maps to 00 and 12 PM stays 12.
func ParseClock(input string) (string, error) {
	m := clockRe.FindStringSubmatch(input)
	if m == nil {
		return "", fmt.Errorf("%w: unrecognized time %q", ErrInvalidInput, input)
	}
	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	if minute > 59 {
		return "", fmt.Errorf("%w: minute out of range in %q", ErrInvalidInput, input)
	}
	switch strings.ToUpper(m[3]) {
	case "AM":
		if hour < 1 || hour > 12 {
			return "", fmt.Errorf("%w: hour out of range in %q", ErrInvalidInput, input)
		}
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour < 1 || hour > 12 {
			return "", fmt.Errorf("%w: hour out of range in %q", ErrInvalidInput, input)
		}
		if hour < 12 {
			hour += 12
		}
	default:
		if hour > 23 {
			return "", fmt.Errorf("%w: hour out of range in %q", ErrInvalidInput, input)
		}
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}

// ParseDate accepts MM/DD/YYYY; single-digit month and day are fine.
func ParseDate(input string) (time.Time, error) {
	t, err := time.Parse("1/2/2006", strings.TrimSpace(input))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: unrecognized date %q", ErrInvalidInput, input)
	}
	return t, nil
}

// ParseDateTime combines date and time input into an absolute instant in loc.
func ParseDateTime(dateInput, timeInput string, loc *time.Location) (time.Time, error) {
	date, err := ParseDate(dateInput)
	if err != nil {
		return time.Time{}, err
	}
	clock, err := ParseClock(timeInput)
	if err != nil {
		return time.Time{}, err
	}
	hour, _ := strconv.Atoi(clock[:2])
	minute, _ := strconv.Atoi(clock[3:])
	if loc == nil {
		loc = time.Local
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, loc), nil
}

// EnsureFuture rejects instants at or before now.
func EnsureFuture(t, now time.Time) error {
	if !t.After(now) {
		return fmt.Errorf("%w: %s is not in the future", ErrInvalidInput, t.Format(time.RFC3339))
	}
	return nil
}
