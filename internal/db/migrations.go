package db

import (
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strings"
	"time"

	embeddedmigrations "github.com/terraincognita07/totoro/migrations"
	"gorm.io/gorm"
)

var (
	migrationNamePattern = regexp.MustCompile(`^(\d+)_[a-z0-9_]+\.sql$`)
	addColumnPattern     = regexp.MustCompile(`(?i)^ALTER\s+TABLE\s+["` + "`" + `]?(\w+)["` + "`" + `]?\s+ADD\s+COLUMN\s+["` + "`" + `]?(\w+)`)
)

// migration is one forward-only SQL file. Version is the zero-padded numeric
// prefix, so versions sort as strings.
type migration struct {
	Version    string
	Name       string
	Statements []string
}

type schemaMigration struct {
	Version   string    `gorm:"column:version;primaryKey"`
	Name      string    `gorm:"column:name"`
	AppliedAt time.Time `gorm:"column:applied_at"`
}

func (schemaMigration) TableName() string {
	return "schema_migrations"
}

func applyEmbeddedMigrations(database *gorm.DB) error {
	if err := ensureSchemaMigrationsTable(database); err != nil {
		return err
	}

	pending, err := loadEmbeddedMigrations()
	if err != nil {
		return err
	}

	var applied []string
	if err := database.Model(&schemaMigration{}).Pluck("version", &applied).Error; err != nil {
		return fmt.Errorf("load applied migrations: %w", err)
	}
	done := make(map[string]bool, len(applied))
	for _, version := range applied {
		done[version] = true
	}

	for _, next := range pending {
		if done[next.Version] {
			continue
		}
		if err := applyMigration(database, next); err != nil {
			return err
		}
	}
	return nil
}

func ensureSchemaMigrationsTable(database *gorm.DB) error {
	const createTableSQL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`
	if err := database.Exec(createTableSQL).Error; err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}
	return nil
}

func loadEmbeddedMigrations() ([]migration, error) {
	names, err := fs.Glob(embeddedmigrations.Files, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("list embedded migrations: %w", err)
	}

	result := make([]migration, 0, len(names))
	owners := make(map[string]string, len(names))
	for _, name := range names {
		matches := migrationNamePattern.FindStringSubmatch(name)
		if matches == nil {
			return nil, fmt.Errorf("migration %s: name must look like 0001_description.sql", name)
		}
		version := matches[1]
		if owner, taken := owners[version]; taken {
			return nil, fmt.Errorf("migration version %s used by both %s and %s", version, owner, name)
		}
		owners[version] = name

		content, err := fs.ReadFile(embeddedmigrations.Files, name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		statements := splitSQLStatements(string(content))
		if len(statements) == 0 {
			return nil, fmt.Errorf("migration %s has no statements", name)
		}

		result = append(result, migration{Version: version, Name: name, Statements: statements})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Version < result[j].Version
	})
	return result, nil
}

// applyMigration runs every statement and records the version in one
// transaction. ADD COLUMN statements for columns that already exist are
// skipped so hand-patched databases still migrate.
func applyMigration(database *gorm.DB, next migration) error {
	return database.Transaction(func(tx *gorm.DB) error {
		for _, statement := range next.Statements {
			if table, column, ok := addedColumn(statement); ok && tx.Migrator().HasColumn(table, column) {
				continue
			}
			if err := tx.Exec(statement).Error; err != nil {
				return fmt.Errorf("migration %s: %w", next.Name, err)
			}
		}

		record := schemaMigration{Version: next.Version, Name: next.Name, AppliedAt: time.Now().UTC()}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("record migration %s: %w", next.Name, err)
		}
		return nil
	})
}

func splitSQLStatements(sqlText string) []string {
	var statements []string
	for _, part := range strings.Split(sqlText, ";") {
		if statement := strings.TrimSpace(part); statement != "" {
			statements = append(statements, statement)
		}
	}
	return statements
}

func addedColumn(statement string) (string, string, bool) {
	matches := addColumnPattern.FindStringSubmatch(statement)
	if matches == nil {
		return "", "", false
	}
	return matches[1], matches[2], true
}
