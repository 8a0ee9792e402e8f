package parser

import (
	"regexp"
	"strconv"
	"strings"
)

var revenuePattern = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)*)\s*([km])?\b`)

// ParseRevenue turns a rendered revenue label such as "$12.5K/mo" or
// "$1,200" into a number. The second result is false when no amount is
// present.
func ParseRevenue(label string) (float64, bool) {
	m := revenuePattern.FindStringSubmatch(strings.TrimSpace(label))
	if m == nil {
		return 0, false
	}

	digits := m[1]
	// A comma followed by exactly three digits is a thousands separator.
	if strings.Contains(digits, ",") {
		if isThousandsGrouped(digits) {
			digits = strings.ReplaceAll(digits, ",", "")
		} else {
			digits = strings.Replace(digits, ",", ".", 1)
		}
	}

	value, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0, false
	}

	switch strings.ToLower(m[2]) {
	case "k":
		value *= 1_000
	case "m":
		value *= 1_000_000
	}

	return value, true
}

func isThousandsGrouped(s string) bool {
	parts := strings.Split(s, ",")
	for _, part := range parts[1:] {
		digits := strings.SplitN(part, ".", 2)[0]
		if len(digits) != 3 {
			return false
		}
	}
	return true
}
