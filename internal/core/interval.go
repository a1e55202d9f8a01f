package core

import (
	"fmt"
	"math"
)

// MinutesBetween returns end minus start in minutes. The result is negative
// when end precedes start.
func MinutesBetween(start, end TimeOfDay) int {
	return end.Minutes() - start.Minutes()
}

// MinutesBetweenText parses both times and returns MinutesBetween.
func MinutesBetweenText(start, end string) (int, error) {
	s, err := ParseTimeOfDay(start)
	if err != nil {
		return 0, err
	}
	e, err := ParseTimeOfDay(end)
	if err != nil {
		return 0, err
	}
	return MinutesBetween(s, e), nil
}

// FormatMinutes renders a duration as "HH:MM". Negative totals render as
// "00:00"; hours have no upper bound.
func FormatMinutes(total int) string {
	if total < 0 {
		return "00:00"
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// FormatMinutesFloat rounds total and formats it. NaN and infinities render
// as "00:00".
func FormatMinutesFloat(total float64) string {
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return "00:00"
	}
	return FormatMinutes(roundMinutes(total))
}

// roundMinutes rounds half up, which for the non-negative averages produced
// here is the same as rounding half away from zero.
func roundMinutes(x float64) int {
	return int(math.Floor(x + 0.5))
}
