package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"
	"time"

	"ielts-prep/internal/logger"

	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

const createVersionTable = `CREATE TABLE SCHEMA_MIGRATIONS (
    VERSION    NUMBER(19) NOT NULL,
    APPLIED_AT TIMESTAMP  NOT NULL,
    CONSTRAINT PK_SCHEMA_MIGRATIONS PRIMARY KEY (VERSION)
)`

// Migrator applies golang-migrate style migration files to Oracle.
// golang-migrate ships no Oracle database driver, so only its source side is
// used here and statements run through database/sql.
type Migrator struct {
	db  *sql.DB
	src source.Driver
}

// NewMigrator reads *.up.sql / *.down.sql files from dir inside fsys.
func NewMigrator(db *sql.DB, fsys fs.FS, dir string) (*Migrator, error) {
	src, err := iofs.New(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open migration source: %w", err)
	}
	return &Migrator{db: db, src: src}, nil
}

func (m *Migrator) Close() error {
	return m.src.Close()
}

// Up applies every migration newer than the current version and returns how
// many were applied.
func (m *Migrator) Up(ctx context.Context) (int, error) {
	if err := m.ensureVersionTable(ctx); err != nil {
		return 0, err
	}
	current, err := m.currentVersion(ctx)
	if err != nil {
		return 0, err
	}

	applied := 0
	version, err := m.src.First()
	for err == nil {
		if version > current {
			if err := m.apply(ctx, version, true); err != nil {
				return applied, err
			}
			applied++
		}
		version, err = m.src.Next(version)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return applied, fmt.Errorf("failed to walk migrations: %w", err)
	}
	return applied, nil
}

// Down reverts the most recently applied migration. It reports false when
// nothing is applied.
func (m *Migrator) Down(ctx context.Context) (bool, error) {
	if err := m.ensureVersionTable(ctx); err != nil {
		return false, err
	}
	current, err := m.currentVersion(ctx)
	if err != nil {
		return false, err
	}
	if current == 0 {
		return false, nil
	}
	return true, m.apply(ctx, current, false)
}

func (m *Migrator) apply(ctx context.Context, version uint, up bool) error {
	var (
		r          io.ReadCloser
		identifier string
		err        error
	)
	if up {
		r, identifier, err = m.src.ReadUp(version)
	} else {
		r, identifier, err = m.src.ReadDown(version)
	}
	if err != nil {
		return fmt.Errorf("failed to read migration %d: %w", version, err)
	}
	defer r.Close()

	body, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read migration %d: %w", version, err)
	}

	for _, stmt := range SplitStatements(string(body)) {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d_%s failed: %w", version, identifier, err)
		}
	}

	if up {
		_, err = m.db.ExecContext(ctx, `INSERT INTO SCHEMA_MIGRATIONS (VERSION, APPLIED_AT) VALUES (:1, :2)`, int64(version), time.Now())
	} else {
		_, err = m.db.ExecContext(ctx, `DELETE FROM SCHEMA_MIGRATIONS WHERE VERSION = :1`, int64(version))
	}
	if err != nil {
		return fmt.Errorf("failed to record migration %d: %w", version, err)
	}

	direction := "up"
	if !up {
		direction = "down"
	}
	logger.Get().Info("Executed migration",
		zap.Uint("version", version),
		zap.String("name", identifier),
		zap.String("direction", direction))
	return nil
}

func (m *Migrator) ensureVersionTable(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, createVersionTable); err != nil {
		// ORA-00955: name is already used by an existing object
		if strings.Contains(err.Error(), "ORA-00955") {
			return nil
		}
		return fmt.Errorf("failed to create SCHEMA_MIGRATIONS: %w", err)
	}
	return nil
}

func (m *Migrator) currentVersion(ctx context.Context) (uint, error) {
	var version sql.NullInt64
	if err := m.db.QueryRowContext(ctx, `SELECT MAX(VERSION) FROM SCHEMA_MIGRATIONS`).Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	if !version.Valid {
		return 0, nil
	}
	return uint(version.Int64), nil
}

// SplitStatements splits a migration file into single statements. The Oracle
// driver executes one statement per call and rejects a trailing semicolon.
func SplitStatements(body string) []string {
	var stmts []string
	for _, part := range strings.Split(body, ";") {
		var lines []string
		for _, line := range strings.Split(part, "\n") {
			if strings.HasPrefix(strings.TrimSpace(line), "--") {
				continue
			}
			lines = append(lines, line)
		}
		stmt := strings.TrimSpace(strings.Join(lines, "\n"))
		if stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}
