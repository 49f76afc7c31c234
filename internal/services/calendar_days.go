package services

import (
	"time"

	"github.com/terraincognita07/totoro/internal/cycle"
)

const calendarGridDays = 42

type CalendarDayState struct {
	Date        time.Time
	DateString  string
	Day         int
	InMonth     bool
	IsToday     bool
	IsPeriod    bool
	IsOvulation bool
	IsFertility bool
	Phase       cycle.Phase
}

// MonthStart returns the first calendar day of the month containing day.
func MonthStart(day time.Time) time.Time {
	day = cycle.DateOnly(day)
	return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// CalendarGridRange returns the first and last day of the Sunday-first
// six-week grid shown for the month containing month.
func CalendarGridRange(month time.Time) (time.Time, time.Time) {
	monthStart := MonthStart(month)
	gridStart := cycle.AddDays(monthStart, -int(monthStart.Weekday()))
	return gridStart, cycle.AddDays(gridStart, calendarGridDays-1)
}

// BuildCalendarDayStates colours each grid day. A day shows one highlight:
// period wins over ovulation, ovulation over fertile.
func BuildCalendarDayStates(month time.Time, history cycle.History, stats cycle.Statistics, now time.Time) []CalendarDayState {
	monthStart := MonthStart(month)
	gridStart, gridEnd := CalendarGridRange(monthStart)
	todayKey := cycle.FormatDay(now)

	days := make([]CalendarDayState, 0, calendarGridDays)
	for _, highlighted := range cycle.Span(stats, history, gridStart, gridEnd) {
		day := highlighted.Date
		key := cycle.FormatDay(day)

		isPeriod := highlighted.Period
		isOvulation := highlighted.Ovulation && !isPeriod
		isFertility := highlighted.Fertile && !isPeriod && !isOvulation

		days = append(days, CalendarDayState{
			Date:        day,
			DateString:  key,
			Day:         day.Day(),
			InMonth:     day.Month() == monthStart.Month(),
			IsToday:     key == todayKey,
			IsPeriod:    isPeriod,
			IsOvulation: isOvulation,
			IsFertility: isFertility,
			Phase:       cycle.Classify(stats, history, day).Phase,
		})
	}

	return days
}
