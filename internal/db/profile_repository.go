package db

import (
	"github.com/terraincognita07/totoro/internal/models"
	"gorm.io/gorm"
)

type ProfileRepository struct {
	database *gorm.DB
}

func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{database: database}
}

func (repo *ProfileRepository) Load() (models.Profile, error) {
	profile := models.Profile{}
	result := repo.database.Where("id = ?", models.ProfileID).Limit(1).Find(&profile)
	if result.Error != nil {
		return models.Profile{}, result.Error
	}
	if result.RowsAffected == 0 {
		return models.DefaultProfile(), nil
	}
	return profile, nil
}

func (repo *ProfileRepository) UpdateDisplayName(displayName string) error {
	return repo.update(map[string]any{"display_name": displayName})
}

func (repo *ProfileRepository) UpdateLanguage(language string) error {
	return repo.update(map[string]any{"language": language})
}

func (repo *ProfileRepository) UpdatePassphraseHash(passphraseHash string) error {
	return repo.update(map[string]any{"passphrase_hash": passphraseHash})
}

func (repo *ProfileRepository) update(updates map[string]any) error {
	return repo.database.Transaction(func(tx *gorm.DB) error {
		defaults := models.DefaultProfile()
		if err := tx.Where("id = ?", models.ProfileID).FirstOrCreate(&defaults).Error; err != nil {
			return err
		}
		return tx.Model(&models.Profile{}).Where("id = ?", models.ProfileID).Updates(updates).Error
	})
}
