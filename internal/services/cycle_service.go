package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/terraincognita07/totoro/internal/cycle"
	"github.com/terraincognita07/totoro/internal/models"
)

var (
	ErrPeriodAlreadyRecorded = errors.New("period already recorded")
	ErrPeriodOutOfOrder      = errors.New("period starts before latest recorded period")
	ErrInvalidCalendarRange  = errors.New("invalid calendar range")
)

// MaxSpanDays bounds a single highlight range request.
const MaxSpanDays = 366

type CycleRepository interface {
	ListPeriods() ([]models.Period, error)
	LoadSnapshot() (models.CycleSnapshot, bool, error)
	AppendPeriod(build func(periods []models.Period, snapshot models.CycleSnapshot) (models.Period, models.CycleSnapshot, error)) (models.Period, error)
	RebuildSnapshot(build func(periods []models.Period, snapshot models.CycleSnapshot) (models.CycleSnapshot, error)) (models.CycleSnapshot, error)
	ClearHistory() error
}

type CycleService struct {
	cycles CycleRepository
}

// Status is the view of a single day: its phase and how far the cycle has run.
type Status struct {
	Date                time.Time
	Phase               cycle.Phase
	DayOfCycle          int
	AverageCycleLength  int
	DaysUntilNextPeriod int
	HasPrediction       bool
	Statistics          cycle.Statistics
}

func NewCycleService(cycles CycleRepository) *CycleService {
	return &CycleService{cycles: cycles}
}

// RecordPeriod appends a period and stores the refreshed statistics together.
func (service *CycleService) RecordPeriod(start time.Time, end time.Time) (cycle.Statistics, error) {
	record := cycle.PeriodRecord{Start: cycle.DateOnly(start), End: cycle.DateOnly(end)}
	if record.Start.IsZero() || record.End.IsZero() || record.End.Before(record.Start) {
		return cycle.Statistics{}, cycle.ErrInvalidRange
	}

	var stats cycle.Statistics
	_, err := service.cycles.AppendPeriod(func(periods []models.Period, snapshot models.CycleSnapshot) (models.Period, models.CycleSnapshot, error) {
		history := models.PeriodsToHistory(periods)
		if err := checkAppendable(history, record); err != nil {
			return models.Period{}, models.CycleSnapshot{}, err
		}

		_, updated, err := cycle.Predict(history, snapshot.Statistics(), record)
		if err != nil {
			return models.Period{}, models.CycleSnapshot{}, err
		}
		stats = updated
		return models.NewPeriod(record), models.NewCycleSnapshot(updated), nil
	})
	if err != nil {
		return cycle.Statistics{}, err
	}
	return stats, nil
}

func checkAppendable(history cycle.History, record cycle.PeriodRecord) error {
	for _, existing := range history {
		if existing.Contains(record.Start) {
			return ErrPeriodAlreadyRecorded
		}
	}
	if latest, ok := history.Latest(); ok && !record.Start.After(latest.Start) {
		return ErrPeriodOutOfOrder
	}
	return nil
}

func (service *CycleService) History() (cycle.History, error) {
	periods, err := service.cycles.ListPeriods()
	if err != nil {
		return nil, fmt.Errorf("load period history: %w", err)
	}
	return models.PeriodsToHistory(periods), nil
}

// Stats returns the stored snapshot. A missing snapshot next to a non-empty
// history, or one that no longer parses, is rebuilt from history.
func (service *CycleService) Stats() (cycle.Statistics, error) {
	snapshot, found, err := service.cycles.LoadSnapshot()
	switch {
	case errors.Is(err, models.ErrMalformedDay):
		return service.RestoreSnapshot()
	case err != nil:
		return cycle.Statistics{}, fmt.Errorf("load cycle snapshot: %w", err)
	case found:
		return snapshot.Statistics(), nil
	}

	history, err := service.History()
	if err != nil {
		return cycle.Statistics{}, err
	}
	if len(history) == 0 {
		return cycle.Statistics{}, nil
	}
	return service.RestoreSnapshot()
}

// RestoreSnapshot recomputes the statistics from history alone and stores them.
func (service *CycleService) RestoreSnapshot() (cycle.Statistics, error) {
	rebuilt, err := service.cycles.RebuildSnapshot(func(periods []models.Period, snapshot models.CycleSnapshot) (models.CycleSnapshot, error) {
		stats := cycle.Recompute(models.PeriodsToHistory(periods), snapshot.Statistics())
		return models.NewCycleSnapshot(stats), nil
	})
	if err != nil {
		return cycle.Statistics{}, fmt.Errorf("rebuild cycle snapshot: %w", err)
	}
	return rebuilt.Statistics(), nil
}

func (service *CycleService) state() (cycle.History, cycle.Statistics, error) {
	history, err := service.History()
	if err != nil {
		return nil, cycle.Statistics{}, err
	}
	stats, err := service.Stats()
	if err != nil {
		return nil, cycle.Statistics{}, err
	}
	return history, stats, nil
}

func (service *CycleService) Status(day time.Time) (Status, error) {
	history, stats, err := service.state()
	if err != nil {
		return Status{}, err
	}
	return BuildStatus(stats, history, day), nil
}

func BuildStatus(stats cycle.Statistics, history cycle.History, day time.Time) Status {
	day = cycle.DateOnly(day)
	classification := cycle.Classify(stats, history, day)

	status := Status{
		Date:               day,
		Phase:              classification.Phase,
		DayOfCycle:         classification.DayOfCycle,
		AverageCycleLength: stats.AverageCycleLength,
		HasPrediction:      stats.HasPrediction(),
		Statistics:         stats,
	}
	if status.HasPrediction {
		status.DaysUntilNextPeriod = cycle.DaysBetween(day, stats.NextPeriodStart)
	}
	return status
}

func (service *CycleService) Calendar(month time.Time, now time.Time) ([]CalendarDayState, error) {
	history, stats, err := service.state()
	if err != nil {
		return nil, err
	}
	return BuildCalendarDayStates(month, history, stats, now), nil
}

func (service *CycleService) Span(from time.Time, to time.Time) ([]cycle.DayHighlight, error) {
	from, to = cycle.DateOnly(from), cycle.DateOnly(to)
	if from.IsZero() || to.IsZero() || to.Before(from) || cycle.DaysBetween(from, to) >= MaxSpanDays {
		return nil, ErrInvalidCalendarRange
	}

	history, stats, err := service.state()
	if err != nil {
		return nil, err
	}
	return cycle.Span(stats, history, from, to), nil
}

// ClearAll drops every recorded period and the snapshot. The profile is kept.
func (service *CycleService) ClearAll() error {
	if err := service.cycles.ClearHistory(); err != nil {
		return fmt.Errorf("clear cycle history: %w", err)
	}
	return nil
}
