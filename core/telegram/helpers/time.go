package helpers

import (
	"errors"
	"regexp"
	"strconv"
	"time"
)

var (
	// ErrDateFormat reports input that does not look like "D.M[.Y] H:MM".
	ErrDateFormat = errors.New("date: unrecognised format")
	// ErrDateRange reports a day, month or clock value outside the calendar.
	ErrDateRange = errors.New("date: value out of range")
)

var dayMonthTimeRx = regexp.MustCompile(`(\d{1,2})\.(\d{1,2})(?:\.(\d{2,4}))?\s+(\d{1,2}):(\d{2})`)

// ParseDayMonthTime reads the first "D.M[.YY[YY]] H:MM" occurrence in input.
// The year defaults to now's year and two-digit years mean 20YY. The result is
// in now's location. Values that time.Date would normalise (31.02, 25:00) are
// rejected with ErrDateRange.
func ParseDayMonthTime(input string, now time.Time) (time.Time, error) {
	m := dayMonthTimeRx.FindStringSubmatch(input)
	if m == nil {
		return time.Time{}, ErrDateFormat
	}

	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year := now.Year()
	if m[3] != "" {
		year, _ = strconv.Atoi(m[3])
		if year < 100 {
			year += 2000
		}
	}
	hour, _ := strconv.Atoi(m[4])
	minute, _ := strconv.Atoi(m[5])

	t := time.Date(year, time.Month(month), day, hour, minute, 0, 0, now.Location())
	if t.Day() != day || int(t.Month()) != month || t.Year() != year || t.Hour() != hour || t.Minute() != minute {
		return time.Time{}, ErrDateRange
	}
	return t, nil
}
