package publication

import (
	"fmt"
	"strconv"
	"strings"
)

var monthNames = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

// Some journals date issues by season. The season's first month
// stands in.
var seasonMonths = map[string]int{
	"winter": 1,
	"spring": 4,
	"summer": 7,
	"fall":   10,
	"autumn": 10,
}

// ParseDate reads a MEDLINE DP value: "2020 Jun 29", "2020 Jun",
// "2020", "2020 Nov-Dec", "2021 Winter". Ranges resolve to their first
// month, and month and day default to 1 when the source omits them. A
// value without a four-digit year is an error.
func ParseDate(dp string) (year, month, day int, err error) {
	month, day = 1, 1

	fields := strings.Fields(dp)
	yearIdx := -1
	for i, f := range fields {
		head := strings.SplitN(f, "-", 2)[0]
		if len(head) == 4 && isDigits(head) {
			year, _ = strconv.Atoi(head)
			yearIdx = i
			break
		}
	}
	if yearIdx == -1 {
		return 0, 0, 0, fmt.Errorf("no year in date %q", dp)
	}

	haveMonth := false
	for i, f := range fields {
		if i == yearIdx {
			continue
		}
		tok := strings.SplitN(f, "-", 2)[0]
		if !haveMonth {
			if m, ok := parseMonth(tok); ok {
				month = m
				haveMonth = true
				continue
			}
		}
		if haveMonth {
			if d, err := strconv.Atoi(tok); err == nil && d >= 1 && d <= 31 {
				day = d
				break
			}
		}
	}

	return year, month, day, nil
}

func parseMonth(tok string) (int, bool) {
	low := strings.ToLower(tok)
	if len(low) >= 3 {
		if m, ok := monthNames[low[:3]]; ok {
			return m, true
		}
	}
	if m, ok := seasonMonths[low]; ok {
		return m, true
	}
	if n, err := strconv.Atoi(tok); err == nil && n >= 1 && n <= 12 {
		return n, true
	}
	return 0, false
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
