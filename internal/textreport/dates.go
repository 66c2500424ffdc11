package textreport

import (
	"regexp"
	"strconv"
	"time"

	"deliveryboard/pkg/contracts/domain"
)

// dateToken matches d.m.yyyy / dd.mm.yyyy anywhere in a string
var dateToken = regexp.MustCompile(`\b(\d{1,2})\.(\d{1,2})\.(\d{4})\b`)

// HasDate reports whether s contains a date token, valid or not
func HasDate(s string) bool {
	return dateToken.MatchString(s)
}

// ExtractDate returns the first dd.mm.yyyy token in s parsed as a
// calendar date. A token that is not a real day (32.01.2025, 29.02.2025)
// yields false.
func ExtractDate(s string) (domain.Date, bool) {
	m := dateToken.FindStringSubmatch(s)
	if m == nil {
		return domain.Date{}, false
	}
	return parseToken(m[1], m[2], m[3])
}

// ExtractDates returns every valid date token in s, in order
func ExtractDates(s string) []domain.Date {
	var dates []domain.Date
	for _, m := range dateToken.FindAllStringSubmatch(s, -1) {
		if d, ok := parseToken(m[1], m[2], m[3]); ok {
			dates = append(dates, d)
		}
	}
	return dates
}

func parseToken(day, month, year string) (domain.Date, bool) {
	d, err := strconv.Atoi(day)
	if err != nil {
		return domain.Date{}, false
	}
	m, err := strconv.Atoi(month)
	if err != nil {
		return domain.Date{}, false
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return domain.Date{}, false
	}
	if m < 1 || m > 12 || d < 1 {
		return domain.Date{}, false
	}

	// time.Date normalizes overflow, so a round trip detects 31.02 etc.
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d || int(t.Month()) != m || t.Year() != y {
		return domain.Date{}, false
	}
	return domain.DateOf(t), true
}
