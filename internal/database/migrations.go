package database

import (
	"database/sql"
	"fmt"
	"log"
)

// Migration represents a database migration.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// migrationsFor returns the migration set with engine-specific DDL resolved.
// SQLite's AUTOINCREMENT and postgres sequences both guarantee that row ids
// are monotonic and never reused after deletion.
func migrationsFor(driver string) []Migration {
	idColumn := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if driver == DriverPostgres {
		idColumn = "BIGSERIAL PRIMARY KEY"
	}

	return []Migration{
		{
			Version: 1,
			Name:    "create_processed_agent_data",
			SQL: fmt.Sprintf(`CREATE TABLE IF NOT EXISTS processed_agent_data (
				id %s,
				road_state TEXT NOT NULL,
				x INTEGER NOT NULL,
				y INTEGER NOT NULL,
				z INTEGER NOT NULL,
				latitude DOUBLE PRECISION NOT NULL,
				longitude DOUBLE PRECISION NOT NULL,
				timestamp TEXT NOT NULL
			)`, idColumn),
		},
		{
			Version: 2,
			Name:    "index_processed_agent_data_timestamp",
			SQL: `CREATE INDEX IF NOT EXISTS idx_processed_agent_data_timestamp
				ON processed_agent_data (timestamp)`,
		},
	}
}

// MigrationManager applies pending schema migrations.
type MigrationManager struct {
	db     *sql.DB
	driver string
}

// NewMigrationManager creates a new migration manager.
func NewMigrationManager(db *sql.DB, driver string) *MigrationManager {
	return &MigrationManager{db: db, driver: driver}
}

// initMigrationsTable creates the migrations tracking table.
func (m *MigrationManager) initMigrationsTable() error {
	query := `CREATE TABLE IF NOT EXISTS migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := m.db.Exec(query); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	return nil
}

// appliedMigrations returns the set of applied migration versions.
func (m *MigrationManager) appliedMigrations() (map[int]bool, error) {
	rows, err := m.db.Query("SELECT version FROM migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to query migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

// Run applies all pending migrations, each inside its own transaction.
func (m *MigrationManager) Run() error {
	if err := m.initMigrationsTable(); err != nil {
		return err
	}

	applied, err := m.appliedMigrations()
	if err != nil {
		return err
	}

	for _, migration := range migrationsFor(m.driver) {
		if applied[migration.Version] {
			continue
		}

		err := Transaction(m.db, func(tx *sql.Tx) error {
			if _, err := tx.Exec(migration.SQL); err != nil {
				return fmt.Errorf("failed to apply migration %d (%s): %w",
					migration.Version, migration.Name, err)
			}
			insert := Rebind(m.driver, "INSERT INTO migrations (version, name) VALUES (?, ?)")
			if _, err := tx.Exec(insert, migration.Version, migration.Name); err != nil {
				return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
			}
			return nil
		})
		if err != nil {
			return err
		}

		log.Printf("Applied migration %d: %s", migration.Version, migration.Name)
	}

	return nil
}

// Migrate applies all pending migrations to the given database.
func Migrate(db *sql.DB, driver string) error {
	return NewMigrationManager(db, driver).Run()
}
