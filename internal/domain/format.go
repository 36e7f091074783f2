package domain

import (
	"math"
	"strconv"
	"strings"
)

const milesPerMeter = 0.000621371

// FormatDuration renders seconds as hours and whole minutes ("1hr 1min",
// "2hrs 5mins"). Leftover seconds are dropped, so anything under a minute
// renders as an empty string.
func FormatDuration(seconds int) string {
	hours := seconds / 3600
	minutes := (seconds - hours*3600) / 60

	parts := make([]string, 0, 2)
	if hours > 0 {
		parts = append(parts, plural(hours, "hr", "hrs"))
	}
	if minutes > 0 {
		parts = append(parts, plural(minutes, "min", "mins"))
	}
	return strings.Join(parts, " ")
}

// FormatMiles renders meters as a whole number of miles.
func FormatMiles(meters int) string {
	miles := int(math.Round(float64(meters) * milesPerMeter))
	if miles == 1 {
		return "1 mile"
	}
	return strconv.Itoa(miles) + " miles"
}

// SequenceLetter labels the i-th stop of a truck: A..Z, then AA, AB, ...
func SequenceLetter(i int) string {
	letters := ""
	for i >= 0 {
		letters = string(rune('A'+i%26)) + letters
		i = i/26 - 1
	}
	return letters
}

func plural(n int, one, many string) string {
	if n == 1 {
		return strconv.Itoa(n) + one
	}
	return strconv.Itoa(n) + many
}
