package models

import (
	"time"

	"github.com/terraincognita07/totoro/internal/cycle"
)

const SnapshotID = 1

// CycleSnapshot is the single persisted statistics row. It is replaced as a
// whole, never patched.
type CycleSnapshot struct {
	ID                  uint `gorm:"primaryKey"`
	AveragePeriodLength int  `gorm:"not null"`
	AverageCycleLength  int  `gorm:"not null"`
	NextPeriodStart     Day  `gorm:"type:text"`
	OvulationDay        Day  `gorm:"type:text"`
	FertileWindowStart  Day  `gorm:"type:text"`
	FertileWindowEnd    Day  `gorm:"type:text"`
	UpdatedAt           time.Time
}

func NewCycleSnapshot(stats cycle.Statistics) CycleSnapshot {
	return CycleSnapshot{
		ID:                  SnapshotID,
		AveragePeriodLength: stats.AveragePeriodLength,
		AverageCycleLength:  stats.AverageCycleLength,
		NextPeriodStart:     NewDay(stats.NextPeriodStart),
		OvulationDay:        NewDay(stats.OvulationDay),
		FertileWindowStart:  NewDay(stats.FertileWindowStart),
		FertileWindowEnd:    NewDay(stats.FertileWindowEnd),
	}
}

func (snapshot CycleSnapshot) Statistics() cycle.Statistics {
	return cycle.Statistics{
		AveragePeriodLength: snapshot.AveragePeriodLength,
		AverageCycleLength:  snapshot.AverageCycleLength,
		NextPeriodStart:     snapshot.NextPeriodStart.Time,
		OvulationDay:        snapshot.OvulationDay.Time,
		FertileWindowStart:  snapshot.FertileWindowStart.Time,
		FertileWindowEnd:    snapshot.FertileWindowEnd.Time,
	}
}
