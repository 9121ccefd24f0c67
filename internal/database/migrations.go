package database

import (
	"database/sql"
	"fmt"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations are applied in ascending version order. The statistics layer
// only reads these tables; other parts of the system write them.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_accidents",
		SQL: `
			CREATE TABLE IF NOT EXISTS accidents (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				occurred_at TIMESTAMP NOT NULL,
				severity TEXT,
				cause TEXT,
				governorate TEXT,
				delegation TEXT,
				source TEXT,
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_accidents_occurred_at ON accidents(occurred_at);
			CREATE INDEX IF NOT EXISTS idx_accidents_governorate ON accidents(governorate);
			CREATE INDEX IF NOT EXISTS idx_accidents_severity ON accidents(severity);
		`,
	},
	{
		Version: 2,
		Name:    "create_accident_reports",
		SQL: `
			CREATE TABLE IF NOT EXISTS accident_reports (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				date TIMESTAMP NOT NULL,
				status TEXT NOT NULL DEFAULT 'PENDING',
				created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
			CREATE INDEX IF NOT EXISTS idx_reports_date ON accident_reports(date);
			CREATE INDEX IF NOT EXISTS idx_reports_status ON accident_reports(status);
		`,
	},
}

// Migrate creates the migrations tracking table and applies any pending
// migrations in order.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := appliedVersions(db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		if _, err := db.Exec(m.SQL); err != nil {
			return fmt.Errorf("failed to apply migration %d (%s): %w", m.Version, m.Name, err)
		}
		if _, err := db.Exec("INSERT INTO migrations (version, name) VALUES (?, ?)", m.Version, m.Name); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
	}
	return nil
}

func appliedVersions(db *sql.DB) (map[int]bool, error) {
	rows, err := db.Query("SELECT version FROM migrations ORDER BY version")
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
