package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema version tracking
//
// v1: snapshots
// v2: snapshots.format_version
// v3: snapshots.with_blanket
const currentSchemaVersion = 3

// initializeSchema creates all tables for a new database
func (db *DB) initializeSchema() error {
	return db.WithTx(context.Background(), func(tx *sql.Tx) error {
		if err := createSchemaVersionTable(tx); err != nil {
			return err
		}
		if err := createSnapshotsTable(tx); err != nil {
			return err
		}
		if err := migrateToV2(tx); err != nil {
			return err
		}
		if err := setSchemaVersion(tx, currentSchemaVersion); err != nil {
			return err
		}

		db.logger.Info("Database schema initialized", "version", currentSchemaVersion)
		return nil
	})
}

// runMigrations brings an existing database up to currentSchemaVersion.
func (db *DB) runMigrations() error {
	version, err := db.getSchemaVersion()
	if err != nil {
		return err
	}

	if version == currentSchemaVersion {
		db.logger.Debug("Database schema is up to date", "version", version)
		return nil
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}

	db.logger.Info("Running database migrations",
		"from_version", version,
		"to_version", currentSchemaVersion,
	)

	return db.WithTx(context.Background(), func(tx *sql.Tx) error {
		if version < 1 {
			if err := createSchemaVersionTable(tx); err != nil {
				return err
			}
			if err := createSnapshotsTable(tx); err != nil {
				return err
			}
		}
		if version < 2 {
			if err := migrateToV2(tx); err != nil {
				return err
			}
		}
		if version < 3 {
			if err := migrateToV3(tx); err != nil {
				return err
			}
		}
		return setSchemaVersion(tx, currentSchemaVersion)
	})
}

// getSchemaVersion returns 0 for a database without a schema_version table.
func (db *DB) getSchemaVersion() (int, error) {
	var tableName string
	err := db.conn.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='schema_version'
	`).Scan(&tableName)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	var version int
	err = db.conn.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return version, nil
}

func setSchemaVersion(tx *sql.Tx, version int) error {
	if _, err := tx.Exec("DELETE FROM schema_version"); err != nil {
		return err
	}
	_, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version)
	return err
}

func createSchemaVersionTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER NOT NULL
		)
	`)
	return err
}

// createSnapshotsTable creates the v1 snapshots table. payload holds the
// zstd-compressed msgpack listing.
func createSnapshotsTable(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS snapshots (
			id TEXT PRIMARY KEY,
			crate TEXT NOT NULL,
			version TEXT NOT NULL DEFAULT '',
			label TEXT,
			digest TEXT NOT NULL,
			created_at TEXT NOT NULL,
			item_count INTEGER NOT NULL CHECK(item_count >= 0),
			payload BLOB NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create snapshots table: %w", err)
	}

	indexes := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_snapshots_label ON snapshots(label) WHERE label IS NOT NULL",
		"CREATE INDEX IF NOT EXISTS idx_snapshots_digest ON snapshots(digest)",
		"CREATE INDEX IF NOT EXISTS idx_snapshots_crate_created ON snapshots(crate, created_at)",
	}
	for _, indexSQL := range indexes {
		if _, err := tx.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}

func migrateToV2(tx *sql.Tx) error {
	_, err := tx.Exec(`ALTER TABLE snapshots ADD COLUMN format_version INTEGER NOT NULL DEFAULT 0`)
	if err != nil {
		return fmt.Errorf("failed to add format_version column: %w", err)
	}
	return nil
}

// migrateToV3 records whether blanket implementations were rendered, which
// changes the listing built from the same rustdoc JSON.
func migrateToV3(tx *sql.Tx) error {
	_, err := tx.Exec(`ALTER TABLE snapshots ADD COLUMN with_blanket INTEGER NOT NULL DEFAULT 0`)
	if err != nil {
		return fmt.Errorf("failed to add with_blanket column: %w", err)
	}
	return nil
}
