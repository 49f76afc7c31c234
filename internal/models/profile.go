package models

import "time"

const (
	ProfileID          = 1
	DefaultDisplayName = "Totoro"
)

type Profile struct {
	ID             uint   `gorm:"primaryKey"`
	DisplayName    string `gorm:"not null"`
	Language       string `gorm:"not null"`
	PassphraseHash string `gorm:"not null"`
	UpdatedAt      time.Time
}

func DefaultProfile() Profile {
	return Profile{ID: ProfileID, DisplayName: DefaultDisplayName}
}

func (profile Profile) Locked() bool {
	return profile.PassphraseHash != ""
}
