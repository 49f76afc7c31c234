package cycle

import "time"

const (
	DayLayout = "2006-01-02"

	secondsPerDay = 24 * 60 * 60
)

// MinDay and MaxDay bound the dates that format as four-digit years. The zero
// time marks an absent date, so the range starts on its second day.
var (
	MinDay = time.Date(1, time.January, 2, 0, 0, 0, 0, time.UTC)
	MaxDay = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)
)

// DateOnly drops the time-of-day and zone, keeping the calendar date as seen
// in the value's own location.
func DateOnly(value time.Time) time.Time {
	if value.IsZero() {
		return time.Time{}
	}
	year, month, day := value.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func AddDays(value time.Time, days int) time.Time {
	return DateOnly(value).AddDate(0, 0, days)
}

// DaysBetween returns the whole number of calendar days from a to b. It works
// on Unix seconds because a time.Duration overflows past about 292 years.
func DaysBetween(a time.Time, b time.Time) int {
	return int((DateOnly(b).Unix() - DateOnly(a).Unix()) / secondsPerDay)
}

// InDayRange reports whether day falls between MinDay and MaxDay inclusive.
// The zero time is never in range.
func InDayRange(day time.Time) bool {
	return !day.IsZero() && BetweenInclusive(day, MinDay, MaxDay)
}

func SameDay(a time.Time, b time.Time) bool {
	if a.IsZero() || b.IsZero() {
		return false
	}
	return DateOnly(a).Equal(DateOnly(b))
}

func BetweenInclusive(day time.Time, start time.Time, end time.Time) bool {
	if start.IsZero() || end.IsZero() {
		return false
	}
	day = DateOnly(day)
	return !day.Before(DateOnly(start)) && !day.After(DateOnly(end))
}

func ParseDay(raw string) (time.Time, error) {
	parsed, err := time.ParseInLocation(DayLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, err
	}
	return parsed, nil
}

func FormatDay(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return DateOnly(value).Format(DayLayout)
}
