// Package extract turns free-text fragments from tvil.ru into numeric fields.
// Both functions are total: malformed or empty input degrades to the zero
// value, never an error.
package extract

import (
	"regexp"
	"strconv"
)

var (
	availabilityRe = regexp.MustCompile(`Свободны \d+ из (\d+)`)
	capacityRe     = regexp.MustCompile(`(\d+)-местный`)
)

// TotalFromAvailabilityText extracts the total room count from an
// availability fragment such as "Свободны 3 из 10", returning 0 when the
// pattern is absent or the capture does not parse.
func TotalFromAvailabilityText(text string) int {
	m := availabilityRe.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return n
}

// CapacityFromDescription extracts the bed count from a room description
// such as "2-местный номер", returning the digits as a string or "" when
// no capacity is mentioned.
func CapacityFromDescription(description string) string {
	m := capacityRe.FindStringSubmatch(description)
	if m == nil {
		return ""
	}
	return m[1]
}
