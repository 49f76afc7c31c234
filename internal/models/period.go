package models

import (
	"time"

	"github.com/terraincognita07/totoro/internal/cycle"
)

type Period struct {
	ID        uint `gorm:"primaryKey"`
	StartDay  Day  `gorm:"column:start_day;type:text;not null;uniqueIndex:uidx_periods_start_day"`
	EndDay    Day  `gorm:"column:end_day;type:text;not null"`
	CreatedAt time.Time
}

func NewPeriod(record cycle.PeriodRecord) Period {
	return Period{
		StartDay: NewDay(record.Start),
		EndDay:   NewDay(record.End),
	}
}

func (period Period) Record() cycle.PeriodRecord {
	return cycle.PeriodRecord{Start: period.StartDay.Time, End: period.EndDay.Time}
}

func PeriodsToHistory(periods []Period) cycle.History {
	history := make(cycle.History, 0, len(periods))
	for _, period := range periods {
		history = append(history, period.Record())
	}
	return history
}
