// Package sqlitemigrate applies embedded SQL migrations to a SQLite database.
package sqlitemigrate

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"
)

const (
	migrationTable = "schema_migrations"
	upMarker       = "-- +migrate Up"
	downMarker     = "-- +migrate Down"
)

// ApplyMigrations runs every .sql file under migrationRoot that has not been
// recorded yet, in lexical order. Each migration runs in its own transaction
// and is recorded only on success, so a failed file can be fixed and retried.
func ApplyMigrations(sqlDB *sql.DB, migrationFS fs.FS, migrationRoot string) error {
	if sqlDB == nil {
		return fmt.Errorf("sql db is required")
	}

	root := strings.TrimSpace(migrationRoot)
	if root == "" {
		root = "."
	}

	files, err := fs.Glob(migrationFS, path.Join(root, "*.sql"))
	if err != nil {
		return fmt.Errorf("glob migrations: %w", err)
	}
	sort.Strings(files)

	if err := ensureMigrationTable(sqlDB); err != nil {
		return err
	}
	applied, err := appliedSet(sqlDB)
	if err != nil {
		return err
	}

	for _, file := range files {
		// Recorded keys keep the root prefix so two roots sharing one
		// table cannot collide.
		key := strings.TrimPrefix(file, "./")
		if applied[key] {
			continue
		}

		content, err := fs.ReadFile(migrationFS, file)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", key, err)
		}
		upSQL := strings.TrimSpace(ExtractUpMigration(string(content)))
		if upSQL == "" {
			continue
		}

		if err := applyOne(sqlDB, key, upSQL); err != nil {
			return err
		}
	}
	return nil
}

func applyOne(sqlDB *sql.DB, key, upSQL string) error {
	tx, err := sqlDB.BeginTx(context.Background(), nil)
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", key, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(upSQL); err != nil && !IsAlreadyExistsError(err) {
		return fmt.Errorf("exec migration %s: %w", key, err)
	}
	if _, err := tx.Exec(
		"INSERT OR IGNORE INTO "+migrationTable+" (name, applied_at) VALUES (?, ?)",
		key, time.Now().UTC().UnixMilli(),
	); err != nil {
		return fmt.Errorf("record migration %s: %w", key, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %s: %w", key, err)
	}
	return nil
}

func ensureMigrationTable(sqlDB *sql.DB) error {
	_, err := sqlDB.Exec("CREATE TABLE IF NOT EXISTS " + migrationTable +
		" (name TEXT PRIMARY KEY, applied_at INTEGER NOT NULL)")
	if err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}
	return nil
}

func appliedSet(sqlDB *sql.DB) (map[string]bool, error) {
	rows, err := sqlDB.Query("SELECT name FROM " + migrationTable)
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan applied migration: %w", err)
		}
		applied[name] = true
	}
	return applied, rows.Err()
}

// ExtractUpMigration returns the SQL between the up and down markers. Content
// without markers is treated as a bare up migration.
func ExtractUpMigration(content string) string {
	section := content
	if idx := strings.Index(section, upMarker); idx != -1 {
		section = section[idx+len(upMarker):]
	}
	if idx := strings.Index(section, downMarker); idx != -1 {
		section = section[:idx]
	}
	return section
}

// IsAlreadyExistsError reports whether err comes from re-running DDL that
// already applied (table/index/column exists).
func IsAlreadyExistsError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already exists") || strings.Contains(msg, "duplicate column name")
}
