package db

import (
	"errors"

	"github.com/terraincognita07/totoro/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CycleRepository struct {
	database *gorm.DB
}

func NewCycleRepository(database *gorm.DB) *CycleRepository {
	return &CycleRepository{database: database}
}

func (repo *CycleRepository) ListPeriods() ([]models.Period, error) {
	return listPeriods(repo.database)
}

func (repo *CycleRepository) LoadSnapshot() (models.CycleSnapshot, bool, error) {
	return loadSnapshot(repo.database)
}

// AppendPeriod reads history and the current snapshot, lets build derive the
// new period and snapshot, and writes both in the same transaction. A stored
// snapshot that no longer parses is handed to build as empty.
func (repo *CycleRepository) AppendPeriod(build func(periods []models.Period, snapshot models.CycleSnapshot) (models.Period, models.CycleSnapshot, error)) (models.Period, error) {
	var created models.Period
	err := repo.database.Transaction(func(tx *gorm.DB) error {
		periods, err := listPeriods(tx)
		if err != nil {
			return err
		}

		snapshot, _, err := loadSnapshot(tx)
		if errors.Is(err, models.ErrMalformedDay) {
			snapshot = models.CycleSnapshot{}
		} else if err != nil {
			return err
		}

		period, updated, err := build(periods, snapshot)
		if err != nil {
			return err
		}
		if err := tx.Create(&period).Error; err != nil {
			return err
		}
		if err := saveSnapshot(tx, updated); err != nil {
			return err
		}
		created = period
		return nil
	})
	if err != nil {
		return models.Period{}, err
	}
	return created, nil
}

// RebuildSnapshot derives a fresh snapshot from the stored history and writes
// it back in one transaction.
func (repo *CycleRepository) RebuildSnapshot(build func(periods []models.Period, snapshot models.CycleSnapshot) (models.CycleSnapshot, error)) (models.CycleSnapshot, error) {
	var rebuilt models.CycleSnapshot
	err := repo.database.Transaction(func(tx *gorm.DB) error {
		periods, err := listPeriods(tx)
		if err != nil {
			return err
		}

		snapshot, _, err := loadSnapshot(tx)
		if errors.Is(err, models.ErrMalformedDay) {
			snapshot = models.CycleSnapshot{}
		} else if err != nil {
			return err
		}

		updated, err := build(periods, snapshot)
		if err != nil {
			return err
		}
		if err := saveSnapshot(tx, updated); err != nil {
			return err
		}
		rebuilt = updated
		return nil
	})
	if err != nil {
		return models.CycleSnapshot{}, err
	}
	return rebuilt, nil
}

func (repo *CycleRepository) ClearHistory() error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.Period{}).Error; err != nil {
			return err
		}
		return tx.Where("1 = 1").Delete(&models.CycleSnapshot{}).Error
	})
}

func listPeriods(database *gorm.DB) ([]models.Period, error) {
	periods := make([]models.Period, 0)
	if err := database.Order("start_day ASC, id ASC").Find(&periods).Error; err != nil {
		return nil, err
	}
	return periods, nil
}

func loadSnapshot(database *gorm.DB) (models.CycleSnapshot, bool, error) {
	snapshot := models.CycleSnapshot{}
	result := database.Where("id = ?", models.SnapshotID).Limit(1).Find(&snapshot)
	if result.Error != nil {
		return models.CycleSnapshot{}, false, result.Error
	}
	if result.RowsAffected == 0 {
		return models.CycleSnapshot{}, false, nil
	}
	return snapshot, true, nil
}

func saveSnapshot(database *gorm.DB, snapshot models.CycleSnapshot) error {
	snapshot.ID = models.SnapshotID
	return database.Clauses(clause.OnConflict{UpdateAll: true}).Create(&snapshot).Error
}
