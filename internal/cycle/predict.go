// Package cycle predicts cycle phases from observed periods and classifies
// calendar dates against that prediction. Everything here is pure: no I/O,
// no clock, no shared state.
package cycle

import (
	"errors"
	"math"
	"time"
)

const (
	DefaultCycleLength = 28
	LutealPhaseDays    = 14

	fertileDaysBeforeOvulation = 5
	fertileDaysAfterOvulation  = 1
)

var (
	ErrInvalidRange   = errors.New("period end is before period start")
	ErrDateOutOfRange = errors.New("date outside supported calendar range")
)

type PeriodRecord struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (record PeriodRecord) Length() int {
	return DaysBetween(record.Start, record.End) + 1
}

func (record PeriodRecord) Contains(day time.Time) bool {
	return BetweenInclusive(day, record.Start, record.End)
}

// History is ordered by Start ascending; the last element is the most recent
// period. Callers keep that order, nothing here re-sorts it.
type History []PeriodRecord

func (history History) Latest() (PeriodRecord, bool) {
	if len(history) == 0 {
		return PeriodRecord{}, false
	}
	return history[len(history)-1], true
}

// Statistics is a full snapshot derived from a History. Zero dates are absent;
// AverageCycleLength == 0 means no prediction has been made yet.
type Statistics struct {
	AveragePeriodLength int       `json:"average_period_length"`
	AverageCycleLength  int       `json:"average_cycle_length"`
	NextPeriodStart     time.Time `json:"next_period_start"`
	OvulationDay        time.Time `json:"ovulation_day"`
	FertileWindowStart  time.Time `json:"fertile_window_start"`
	FertileWindowEnd    time.Time `json:"fertile_window_end"`
}

func (stats Statistics) HasPrediction() bool {
	return stats.AverageCycleLength > 0 && !stats.NextPeriodStart.IsZero()
}

// inDayRange reports whether every projected date, including the day before
// the fertile window when its reminder fires, stays between MinDay and MaxDay.
func (stats Statistics) inDayRange() bool {
	return InDayRange(AddDays(stats.FertileWindowStart, -1)) && InDayRange(stats.NextPeriodStart)
}

// Predict appends newPeriod to a copy of history and recomputes the statistics
// from scratch. previous only matters while fewer than two periods exist. A
// period whose dates or projection leave MinDay..MaxDay is rejected with
// ErrDateOutOfRange.
func Predict(history History, previous Statistics, newPeriod PeriodRecord) (History, Statistics, error) {
	record := PeriodRecord{Start: DateOnly(newPeriod.Start), End: DateOnly(newPeriod.End)}
	if record.Start.IsZero() || record.End.IsZero() || record.End.Before(record.Start) {
		return history, previous, ErrInvalidRange
	}
	if !InDayRange(record.Start) || !InDayRange(record.End) {
		return history, previous, ErrDateOutOfRange
	}

	updated := make(History, 0, len(history)+1)
	updated = append(updated, history...)
	updated = append(updated, record)

	stats := Recompute(updated, previous)
	if !stats.inDayRange() {
		return history, previous, ErrDateOutOfRange
	}
	return updated, stats, nil
}

// Recompute derives statistics from history alone. An empty history keeps the
// previous averages and clears every projected date.
func Recompute(history History, previous Statistics) Statistics {
	latest, ok := history.Latest()
	if !ok {
		return Statistics{
			AveragePeriodLength: previous.AveragePeriodLength,
			AverageCycleLength:  previous.AverageCycleLength,
		}
	}

	stats := Statistics{
		AveragePeriodLength: averagePeriodLength(history),
		AverageCycleLength:  averageCycleLength(history, previous),
	}

	stats.NextPeriodStart = AddDays(latest.Start, stats.AverageCycleLength)
	stats.OvulationDay = AddDays(stats.NextPeriodStart, -LutealPhaseDays)
	stats.FertileWindowStart = AddDays(stats.OvulationDay, -fertileDaysBeforeOvulation)
	stats.FertileWindowEnd = AddDays(stats.OvulationDay, fertileDaysAfterOvulation)
	return stats
}

func averagePeriodLength(history History) int {
	total := 0
	for _, record := range history {
		total += record.Length()
	}
	return roundMean(total, len(history))
}

func averageCycleLength(history History, previous Statistics) int {
	if len(history) < 2 {
		if previous.AverageCycleLength > 0 {
			return previous.AverageCycleLength
		}
		return DefaultCycleLength
	}

	total := 0
	for i := 1; i < len(history); i++ {
		total += DaysBetween(history[i-1].Start, history[i].Start)
	}
	return roundMean(total, len(history)-1)
}

// roundMean rounds half away from zero: 27.5 becomes 28.
func roundMean(total int, count int) int {
	if count <= 0 {
		return 0
	}
	return int(math.Round(float64(total) / float64(count)))
}
