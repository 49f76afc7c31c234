package db

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	embeddedmigrations "github.com/terraincognita07/totoro/migrations"
	"gorm.io/gorm"
)

func TestOpenSQLiteAppliesEmbeddedMigrationsOnCleanDatabase(t *testing.T) {
	databasePath := filepath.Join(t.TempDir(), "totoro-clean.db")
	database := openSQLiteForMigrationBootstrapTest(t, databasePath)

	assertPeriodsSchema(t, database)
	assertProfilesSchema(t, database)
	assertAllEmbeddedMigrationsApplied(t, database)

	var seeded struct {
		DisplayName string `gorm:"column:display_name"`
		Language    string `gorm:"column:language"`
	}
	if err := database.Raw(`SELECT display_name, language FROM profiles WHERE id = 1`).Scan(&seeded).Error; err != nil {
		t.Fatalf("load seeded profile: %v", err)
	}
	if seeded.DisplayName != "Totoro" {
		t.Fatalf("expected seeded display_name Totoro, got %q", seeded.DisplayName)
	}
	if seeded.Language != "" {
		t.Fatalf("expected seeded language to be empty, got %q", seeded.Language)
	}
}

func TestOpenSQLiteSkipsAlreadyPresentProfileColumns(t *testing.T) {
	databasePath := filepath.Join(t.TempDir(), "totoro-partial.db")
	seedPartialSchema(t, databasePath)

	database := openSQLiteForMigrationBootstrapTest(t, databasePath)

	assertProfilesSchema(t, database)
	assertAllEmbeddedMigrationsApplied(t, database)

	var kept struct {
		Language string `gorm:"column:language"`
	}
	if err := database.Raw(`SELECT language FROM profiles WHERE id = 1`).Scan(&kept).Error; err != nil {
		t.Fatalf("load partial profile: %v", err)
	}
	if kept.Language != "ru" {
		t.Fatalf("expected pre-existing language to survive, got %q", kept.Language)
	}
}

func TestOpenSQLiteMigrationBootstrapIsIdempotent(t *testing.T) {
	databasePath := filepath.Join(t.TempDir(), "totoro-idempotent.db")

	firstOpen, err := OpenSQLite(databasePath)
	if err != nil {
		t.Fatalf("first open sqlite: %v", err)
	}
	firstRecords := loadMigrationRecords(t, firstOpen)

	firstSQLDB, err := firstOpen.DB()
	if err != nil {
		t.Fatalf("first open sql db: %v", err)
	}
	if err := firstSQLDB.Close(); err != nil {
		t.Fatalf("close first sql db: %v", err)
	}

	secondOpen := openSQLiteForMigrationBootstrapTest(t, databasePath)
	secondRecords := loadMigrationRecords(t, secondOpen)

	if !reflect.DeepEqual(firstRecords, secondRecords) {
		t.Fatalf("expected migration records to remain unchanged between boots, before=%v after=%v", firstRecords, secondRecords)
	}
}

func TestOpenSQLiteRejectsDuplicatePeriodStart(t *testing.T) {
	database := openSQLiteForMigrationBootstrapTest(t, filepath.Join(t.TempDir(), "totoro-unique.db"))

	insert := `INSERT INTO periods (start_day, end_day) VALUES (?, ?)`
	if err := database.Exec(insert, "2024-01-01", "2024-01-05").Error; err != nil {
		t.Fatalf("insert first period: %v", err)
	}
	if err := database.Exec(insert, "2024-01-01", "2024-01-03").Error; err == nil {
		t.Fatal("expected duplicate start_day insert to fail")
	}
	if err := database.Exec(insert, "2024-02-10", "2024-02-01").Error; err == nil {
		t.Fatal("expected end_day before start_day to fail the CHECK constraint")
	}
}

func openSQLiteForMigrationBootstrapTest(t *testing.T, databasePath string) *gorm.DB {
	t.Helper()

	database, err := OpenSQLite(databasePath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return database
}

// seedPartialSchema leaves a database that ran the first two migrations and
// then had the language column added by hand.
func seedPartialSchema(t *testing.T, databasePath string) {
	t.Helper()

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", databasePath)
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open partial sqlite: %v", err)
	}
	if err := ensureSchemaMigrationsTable(database); err != nil {
		t.Fatalf("create schema_migrations: %v", err)
	}

	for _, name := range []string{"0001_periods.sql", "0002_profiles.sql"} {
		rawSQL, err := fs.ReadFile(embeddedmigrations.Files, name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		for _, statement := range splitSQLStatements(string(rawSQL)) {
			if err := database.Exec(statement).Error; err != nil {
				t.Fatalf("apply %s: %v", name, err)
			}
		}
		version := strings.SplitN(name, "_", 2)[0]
		if err := database.Exec(`INSERT INTO schema_migrations(version, name) VALUES (?, ?)`, version, name).Error; err != nil {
			t.Fatalf("record %s: %v", name, err)
		}
	}

	if err := database.Exec(`ALTER TABLE profiles ADD COLUMN language TEXT NOT NULL DEFAULT 'ru'`).Error; err != nil {
		t.Fatalf("add language column by hand: %v", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open partial sql db: %v", err)
	}
	if err := sqlDB.Close(); err != nil {
		t.Fatalf("close partial sql db: %v", err)
	}
}

func assertPeriodsSchema(t *testing.T, database *gorm.DB) {
	t.Helper()

	columns := loadTableColumns(t, database, "periods")
	for _, column := range []string{"id", "start_day", "end_day", "created_at"} {
		if _, exists := columns[column]; !exists {
			t.Fatalf("expected periods.%s column to exist after migrations", column)
		}
	}

	snapshotColumns := loadTableColumns(t, database, "cycle_snapshots")
	for _, column := range []string{
		"average_period_length",
		"average_cycle_length",
		"next_period_start",
		"ovulation_day",
		"fertile_window_start",
		"fertile_window_end",
	} {
		if _, exists := snapshotColumns[column]; !exists {
			t.Fatalf("expected cycle_snapshots.%s column to exist after migrations", column)
		}
	}

	indexSQL := loadSQLiteObjectSQL(t, database, "index", "uidx_periods_start_day")
	definition := strings.ToLower(strings.Join(strings.Fields(indexSQL), ""))
	if !strings.Contains(definition, "unique") {
		t.Fatalf("expected unique start_day index, got %q", indexSQL)
	}
}

func assertProfilesSchema(t *testing.T, database *gorm.DB) {
	t.Helper()

	notNullFlags := loadTableColumnNotNullFlags(t, database, "profiles")
	for _, column := range []string{"display_name", "language", "passphrase_hash"} {
		notNull, exists := notNullFlags[column]
		if !exists {
			t.Fatalf("expected profiles.%s column to exist after migrations", column)
		}
		if !notNull {
			t.Fatalf("expected profiles.%s to be NOT NULL", column)
		}
	}
}

func assertAllEmbeddedMigrationsApplied(t *testing.T, database *gorm.DB) {
	t.Helper()

	expectedVersions := embeddedMigrationVersionsForTest(t)
	actualVersions := make([]string, 0)

	var rows []struct {
		Version string `gorm:"column:version"`
	}
	if err := database.Raw(`SELECT version FROM schema_migrations ORDER BY version ASC`).Scan(&rows).Error; err != nil {
		t.Fatalf("load applied migration versions: %v", err)
	}
	for _, row := range rows {
		actualVersions = append(actualVersions, row.Version)
	}

	if !reflect.DeepEqual(expectedVersions, actualVersions) {
		t.Fatalf("unexpected applied migration versions: expected=%v actual=%v", expectedVersions, actualVersions)
	}
}

type migrationRecord struct {
	Version   string `gorm:"column:version"`
	Name      string `gorm:"column:name"`
	AppliedAt string `gorm:"column:applied_at"`
}

func loadMigrationRecords(t *testing.T, database *gorm.DB) []migrationRecord {
	t.Helper()

	records := make([]migrationRecord, 0)
	if err := database.Raw(
		`SELECT version, name, applied_at FROM schema_migrations ORDER BY version ASC`,
	).Scan(&records).Error; err != nil {
		t.Fatalf("load migration records: %v", err)
	}
	return records
}

func loadTableColumns(t *testing.T, database *gorm.DB, tableName string) map[string]struct{} {
	t.Helper()

	flags := loadTableColumnNotNullFlags(t, database, tableName)
	columns := make(map[string]struct{}, len(flags))
	for name := range flags {
		columns[name] = struct{}{}
	}
	return columns
}

func loadTableColumnNotNullFlags(t *testing.T, database *gorm.DB, tableName string) map[string]bool {
	t.Helper()

	escapedTable := strings.ReplaceAll(tableName, `"`, `""`)
	query := fmt.Sprintf(`PRAGMA table_info("%s")`, escapedTable)

	var rows []struct {
		Name    string `gorm:"column:name"`
		NotNull int    `gorm:"column:notnull"`
	}
	if err := database.Raw(query).Scan(&rows).Error; err != nil {
		t.Fatalf("load table columns for %s: %v", tableName, err)
	}

	flags := make(map[string]bool, len(rows))
	for _, row := range rows {
		flags[strings.ToLower(strings.TrimSpace(row.Name))] = row.NotNull == 1
	}
	return flags
}

func loadSQLiteObjectSQL(t *testing.T, database *gorm.DB, objectType string, objectName string) string {
	t.Helper()

	var row struct {
		SQL string `gorm:"column:sql"`
	}
	if err := database.Raw(
		`SELECT sql FROM sqlite_master WHERE type = ? AND name = ?`,
		objectType,
		objectName,
	).Scan(&row).Error; err != nil {
		t.Fatalf("load sqlite master sql for %s %s: %v", objectType, objectName, err)
	}
	return row.SQL
}

func embeddedMigrationVersionsForTest(t *testing.T) []string {
	t.Helper()

	migrations, err := loadEmbeddedMigrations()
	if err != nil {
		t.Fatalf("load embedded migrations: %v", err)
	}

	versions := make([]string, 0, len(migrations))
	for _, migration := range migrations {
		versions = append(versions, migration.Version)
	}
	return versions
}

func TestAddedColumnRecognisesAlterStatements(t *testing.T) {
	testCases := []struct {
		statement string
		table     string
		column    string
		ok        bool
	}{
		{statement: "ALTER TABLE profiles ADD COLUMN language TEXT NOT NULL DEFAULT ''", table: "profiles", column: "language", ok: true},
		{statement: `alter table "profiles" add column "language" TEXT`, table: "profiles", column: "language", ok: true},
		{statement: "CREATE TABLE periods (id INTEGER)", ok: false},
		{statement: "ALTER TABLE profiles RENAME TO people", ok: false},
	}

	for _, testCase := range testCases {
		table, column, ok := addedColumn(testCase.statement)
		if ok != testCase.ok || table != testCase.table || column != testCase.column {
			t.Fatalf("addedColumn(%q) = (%q, %q, %v), want (%q, %q, %v)",
				testCase.statement, table, column, ok, testCase.table, testCase.column, testCase.ok)
		}
	}
}

func TestOpenSQLiteUsesSingleWALConnection(t *testing.T) {
	database := openSQLiteForMigrationBootstrapTest(t, filepath.Join(t.TempDir(), "totoro-pool.db"))

	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	if got := sqlDB.Stats().MaxOpenConnections; got != 1 {
		t.Fatalf("expected a single pooled connection, got %d", got)
	}

	var mode string
	if err := database.Raw(`PRAGMA journal_mode`).Scan(&mode).Error; err != nil {
		t.Fatalf("read journal mode: %v", err)
	}
	if !strings.EqualFold(mode, "wal") {
		t.Fatalf("expected WAL journal mode, got %q", mode)
	}
}
