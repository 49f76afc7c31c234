package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/terraincognita07/totoro/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrPassphraseInvalid  = errors.New("passphrase invalid")
	ErrPassphraseTooShort = errors.New("passphrase too short")
	ErrOwnerLockDisabled  = errors.New("owner lock disabled")
)

const MinPassphraseLength = 8

type AuthProfileRepository interface {
	Load() (models.Profile, error)
	UpdatePassphraseHash(passphraseHash string) error
}

type AuthService struct {
	profiles AuthProfileRepository
}

func NewAuthService(profiles AuthProfileRepository) *AuthService {
	return &AuthService{profiles: profiles}
}

func (service *AuthService) Locked() (bool, error) {
	profile, err := service.profiles.Load()
	if err != nil {
		return false, fmt.Errorf("load profile: %w", err)
	}
	return profile.Locked(), nil
}

// VerifyPassphrase checks raw against the stored hash.
func (service *AuthService) VerifyPassphrase(raw string) error {
	profile, err := service.profiles.Load()
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	if !profile.Locked() {
		return ErrOwnerLockDisabled
	}

	passphrase := strings.TrimSpace(raw)
	if passphrase == "" {
		return ErrPassphraseInvalid
	}
	if bcrypt.CompareHashAndPassword([]byte(profile.PassphraseHash), []byte(passphrase)) != nil {
		return ErrPassphraseInvalid
	}
	return nil
}

// SetPassphrase stores a new passphrase hash. An empty passphrase removes the lock.
func (service *AuthService) SetPassphrase(raw string) error {
	passphrase := strings.TrimSpace(raw)
	if passphrase == "" {
		return service.profiles.UpdatePassphraseHash("")
	}
	if len([]rune(passphrase)) < MinPassphraseLength {
		return ErrPassphraseTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(passphrase), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash passphrase: %w", err)
	}
	return service.profiles.UpdatePassphraseHash(string(hash))
}
