package core

import (
	"fmt"
	"strconv"
	"strings"
)

// TimeOfDay is an hour and minute pair as entered in the form. Hours are not
// range-checked here; the working window is enforced by Validate.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseError reports text that could not be interpreted as a time or date.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%v: %q", e.Err, e.Input)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ParseTimeOfDay parses "HH:MM". A trailing seconds component is tolerated
// and ignored.
func ParseTimeOfDay(text string) (TimeOfDay, error) {
	parts := strings.Split(strings.TrimSpace(text), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return TimeOfDay{}, &ParseError{Input: text, Err: ErrMalformedTime}
	}
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return TimeOfDay{}, &ParseError{Input: text, Err: ErrMalformedTime}
		}
		nums[i] = n
	}
	if nums[1] > 59 {
		return TimeOfDay{}, &ParseError{Input: text, Err: ErrMalformedTime}
	}
	return TimeOfDay{Hour: nums[0], Minute: nums[1]}, nil
}

// Minutes returns the minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// ParseDate parses "DD/MM/YYYY". ok is false for empty input. Out-of-range
// days and months are normalised the way a calendar constructor does, so
// 31/02/2025 becomes 03/03/2025.
func ParseDate(text string) (d Date, ok bool, err error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Date{}, false, nil
	}
	parts := strings.Split(text, "/")
	if len(parts) != 3 {
		return Date{}, false, &ParseError{Input: text, Err: ErrMalformedDate}
	}
	var nums [3]int
	for i, p := range parts {
		n, convErr := strconv.Atoi(p)
		if convErr != nil {
			return Date{}, false, &ParseError{Input: text, Err: ErrMalformedDate}
		}
		nums[i] = n
	}
	return NewDate(nums[2], nums[1], nums[0]), true, nil
}

// FormatDate renders d as zero-padded "DD/MM/YYYY".
func FormatDate(d Date) string {
	return fmt.Sprintf("%02d/%02d/%04d", d.Day(), int(d.Month()), d.Year())
}
