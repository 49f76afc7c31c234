package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/terraincognita07/totoro/internal/cycle"
	"github.com/terraincognita07/totoro/internal/db"
	"github.com/terraincognita07/totoro/internal/security"
	"github.com/terraincognita07/totoro/internal/services"
	"gorm.io/gorm"
)

const DefaultSecretLength = 48

var ErrPassphraseMismatch = errors.New("passphrases do not match")

func openRepositories(dbPath string) (*db.Repositories, func(), error) {
	database, err := db.OpenSQLite(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("database init failed: %w", err)
	}
	return db.NewRepositories(database), closeDatabase(database), nil
}

func closeDatabase(database *gorm.DB) func() {
	return func() {
		if sqlDB, err := database.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

// RunClearDataCommand deletes the recorded history and statistics. The
// profile and passphrase are kept.
func RunClearDataCommand(dbPath string, out io.Writer) error {
	repositories, closeDB, err := openRepositories(dbPath)
	if err != nil {
		return err
	}
	defer closeDB()

	if err := services.NewCycleService(repositories.Cycles).ClearAll(); err != nil {
		return err
	}
	fmt.Fprintln(out, "✅ Cycle history cleared")
	return nil
}

// RunRecomputeCommand rebuilds the statistics snapshot from stored history.
func RunRecomputeCommand(dbPath string, out io.Writer) error {
	repositories, closeDB, err := openRepositories(dbPath)
	if err != nil {
		return err
	}
	defer closeDB()

	stats, err := services.NewCycleService(repositories.Cycles).RestoreSnapshot()
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "✅ Statistics recomputed")
	fmt.Fprintf(out, "Average period length: %d\n", stats.AveragePeriodLength)
	fmt.Fprintf(out, "Average cycle length: %d\n", stats.AverageCycleLength)
	if stats.HasPrediction() {
		fmt.Fprintf(out, "Next period start: %s\n", cycle.FormatDay(stats.NextPeriodStart))
		fmt.Fprintf(out, "Ovulation day: %s\n", cycle.FormatDay(stats.OvulationDay))
		fmt.Fprintf(out, "Fertile window: %s .. %s\n", cycle.FormatDay(stats.FertileWindowStart), cycle.FormatDay(stats.FertileWindowEnd))
	}
	return nil
}

// RunSetPassphraseCommand locks the API behind a passphrase. An empty
// passphrase removes the lock.
func RunSetPassphraseCommand(dbPath string, read PassphraseReader, out io.Writer) error {
	passphrase, err := read("New passphrase (empty to remove): ")
	if err != nil {
		return fmt.Errorf("read passphrase: %w", err)
	}
	if passphrase != "" {
		confirmation, err := read("Repeat passphrase: ")
		if err != nil {
			return fmt.Errorf("read passphrase: %w", err)
		}
		if confirmation != passphrase {
			return ErrPassphraseMismatch
		}
	}

	repositories, closeDB, err := openRepositories(dbPath)
	if err != nil {
		return err
	}
	defer closeDB()

	if err := services.NewAuthService(repositories.Profiles).SetPassphrase(passphrase); err != nil {
		return err
	}
	if passphrase == "" {
		fmt.Fprintln(out, "✅ Owner lock removed")
		return nil
	}
	fmt.Fprintln(out, "✅ Owner lock enabled")
	return nil
}

// RunSecretCommand prints a random value suitable for auth.secret_key.
func RunSecretCommand(out io.Writer) error {
	secret, err := GenerateSecretKey(DefaultSecretLength)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, secret)
	return nil
}

func GenerateSecretKey(length int) (string, error) {
	return security.SecretKey(length)
}
