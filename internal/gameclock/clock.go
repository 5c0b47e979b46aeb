// Package gameclock converts between the period-relative mm:ss clock strings
// used throughout the match document and plain second counts.
package gameclock

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse converts a "mm:ss" clock string to seconds within the period.
// Malformed input degrades to 0 rather than failing the caller; the live
// tooling must never block an operator on a bad transient value.
func Parse(s string) int {
	if s == "" {
		return 0
	}
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0
	}
	minutes, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0
	}
	seconds, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0
	}
	return minutes*60 + seconds
}

// Format renders seconds as a zero-padded "mm:ss" string. Negative input
// clamps to 0.
func Format(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// Absolute places a period-relative second count on the match-wide timeline
// so two clock positions in different periods can be compared.
func Absolute(period, clockSeconds, periodSeconds int) int {
	return (period-1)*periodSeconds + clockSeconds
}

// FromAbsolute is the inverse of Absolute: it splits a match-wide second
// count back into a period number and seconds within that period.
func FromAbsolute(abs, periodSeconds int) (period, clockSeconds int) {
	if periodSeconds <= 0 {
		return 1, 0
	}
	return abs/periodSeconds + 1, abs % periodSeconds
}
