package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"quizbox/internal/config"
	"quizbox/internal/logger"
	"sort"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrator applies the embedded schema migrations.
type Migrator interface {
	// Up applies every pending migration.
	Up(ctx context.Context) error
	// Down rolls back steps migrations, or all of them when steps <= 0.
	Down(ctx context.Context, steps int) error
	// Version returns the current version, 0 when nothing is applied.
	Version(ctx context.Context) (version uint, dirty bool, err error)
	Close() error
}

// NewMigrator picks the migration backend for the configured driver. Postgres
// goes through golang-migrate; Oracle, which golang-migrate has no driver
// for, uses the built-in runner.
func NewMigrator(db *sqlx.DB, driver string) (Migrator, error) {
	switch driver {
	case config.DriverPostgres:
		return newPostgresMigrator(db)
	case config.DriverOracle:
		migrations, err := loadMigrations(migrationsFS, "migrations/oracle")
		if err != nil {
			return nil, err
		}
		return &sqlMigrator{db: db, migrations: migrations, tableExists: oracleTableExists}, nil
	default:
		return nil, fmt.Errorf("no migrations for driver %q", driver)
	}
}

type postgresMigrator struct {
	m *migrate.Migrate
}

func newPostgresMigrator(db *sqlx.DB) (*postgresMigrator, error) {
	src, err := iofs.New(migrationsFS, "migrations/postgres")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	driver, err := pgxmigrate.WithInstance(db.DB, &pgxmigrate.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	m.Log = migrateLogger{}
	return &postgresMigrator{m: m}, nil
}

func (p *postgresMigrator) Up(ctx context.Context) error {
	if err := p.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

func (p *postgresMigrator) Down(ctx context.Context, steps int) error {
	var err error
	if steps <= 0 {
		err = p.m.Down()
	} else {
		err = p.m.Steps(-steps)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}
	return nil
}

func (p *postgresMigrator) Version(ctx context.Context) (uint, bool, error) {
	version, dirty, err := p.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

// Close also closes the database handed to NewMigrator.
func (p *postgresMigrator) Close() error {
	srcErr, dbErr := p.m.Close()
	return errors.Join(srcErr, dbErr)
}

// migrateLogger routes golang-migrate output to zap.
type migrateLogger struct{}

func (migrateLogger) Printf(format string, v ...interface{}) {
	logger.Get().Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (migrateLogger) Verbose() bool { return false }

type migration struct {
	version uint
	name    string
	up      []string
	down    []string
}

// loadMigrations reads NNNNNN_name.{up,down}.sql pairs from dir, ordered by
// version.
func loadMigrations(fsys fs.FS, dir string) ([]migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("could not read migrations directory: %w", err)
	}

	byVersion := make(map[uint]*migration)
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		prefix, _, found := strings.Cut(name, "_")
		if !found {
			return nil, fmt.Errorf("migration %s has no version prefix", name)
		}
		version, err := strconv.ParseUint(prefix, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("migration %s has an invalid version: %w", name, err)
		}

		content, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("could not read migration file %s: %w", name, err)
		}

		m, ok := byVersion[uint(version)]
		if !ok {
			m = &migration{version: uint(version), name: strings.TrimSuffix(name, ".up.sql")}
			byVersion[uint(version)] = m
		}
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			m.name = strings.TrimSuffix(name, ".up.sql")
			m.up = splitStatements(string(content))
		case strings.HasSuffix(name, ".down.sql"):
			m.down = splitStatements(string(content))
		}
	}

	migrations := make([]migration, 0, len(byVersion))
	for _, m := range byVersion {
		migrations = append(migrations, *m)
	}
	sort.Slice(migrations, func(i, j int) bool { return migrations[i].version < migrations[j].version })
	return migrations, nil
}

// splitStatements splits a script on ';' at the end of a line. Oracle drivers
// execute one statement per call and reject the trailing semicolon.
func splitStatements(script string) []string {
	var statements []string
	var current strings.Builder
	for _, line := range strings.Split(script, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")
		if strings.HasSuffix(trimmed, ";") {
			stmt := strings.TrimSuffix(strings.TrimSpace(current.String()), ";")
			statements = append(statements, stmt)
			current.Reset()
		}
	}
	if rest := strings.TrimSpace(current.String()); rest != "" {
		statements = append(statements, rest)
	}
	return statements
}

// sqlMigrator runs migrations with plain SQL and records them in
// schema_migrations, the same table layout golang-migrate uses.
type sqlMigrator struct {
	db          *sqlx.DB
	migrations  []migration
	tableExists func(ctx context.Context, db *sqlx.DB) (bool, error)
}

func oracleTableExists(ctx context.Context, db *sqlx.DB) (bool, error) {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(*) FROM user_tables WHERE table_name = 'SCHEMA_MIGRATIONS'`); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *sqlMigrator) ensureTable(ctx context.Context) error {
	exists, err := s.tableExists(ctx, s.db)
	if err != nil {
		return fmt.Errorf("failed to check schema_migrations: %w", err)
	}
	if exists {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, `CREATE TABLE schema_migrations (version NUMBER(19) PRIMARY KEY, dirty NUMBER(1) DEFAULT 0 NOT NULL)`); err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}
	return nil
}

func (s *sqlMigrator) applied(ctx context.Context) (map[uint]bool, error) {
	var versions []uint
	if err := s.db.SelectContext(ctx, &versions, `SELECT version FROM schema_migrations ORDER BY version`); err != nil {
		return nil, fmt.Errorf("failed to read applied migrations: %w", err)
	}
	applied := make(map[uint]bool, len(versions))
	for _, v := range versions {
		applied[v] = true
	}
	return applied, nil
}

func (s *sqlMigrator) Up(ctx context.Context) error {
	if err := s.ensureTable(ctx); err != nil {
		return err
	}
	applied, err := s.applied(ctx)
	if err != nil {
		return err
	}

	for _, m := range s.migrations {
		if applied[m.version] {
			continue
		}
		if _, err := s.db.ExecContext(ctx, s.db.Rebind(`INSERT INTO schema_migrations (version, dirty) VALUES (?, 1)`), m.version); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", m.name, err)
		}
		for _, stmt := range m.up {
			if _, err := s.db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("could not execute migration %s: %w", m.name, err)
			}
		}
		if _, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE schema_migrations SET dirty = 0 WHERE version = ?`), m.version); err != nil {
			return fmt.Errorf("failed to record migration %s: %w", m.name, err)
		}
		logger.Get().Info("Executed migration", zap.String("migration", m.name))
	}
	return nil
}

func (s *sqlMigrator) Down(ctx context.Context, steps int) error {
	if err := s.ensureTable(ctx); err != nil {
		return err
	}
	applied, err := s.applied(ctx)
	if err != nil {
		return err
	}

	rolledBack := 0
	for i := len(s.migrations) - 1; i >= 0; i-- {
		if steps > 0 && rolledBack == steps {
			break
		}
		m := s.migrations[i]
		if !applied[m.version] {
			continue
		}
		if _, err := s.db.ExecContext(ctx, s.db.Rebind(`UPDATE schema_migrations SET dirty = 1 WHERE version = ?`), m.version); err != nil {
			return fmt.Errorf("failed to mark migration %s: %w", m.name, err)
		}
		for _, stmt := range m.down {
			if _, err := s.db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("could not roll back migration %s: %w", m.name, err)
			}
		}
		if _, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM schema_migrations WHERE version = ?`), m.version); err != nil {
			return fmt.Errorf("failed to unrecord migration %s: %w", m.name, err)
		}
		logger.Get().Info("Rolled back migration", zap.String("migration", m.name))
		rolledBack++
	}
	return nil
}

func (s *sqlMigrator) Version(ctx context.Context) (uint, bool, error) {
	if err := s.ensureTable(ctx); err != nil {
		return 0, false, err
	}
	var rows []struct {
		Version uint `db:"version"`
		Dirty   int  `db:"dirty"`
	}
	query := `SELECT version "version", dirty "dirty" FROM schema_migrations ORDER BY version DESC FETCH FIRST 1 ROWS ONLY`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return 0, false, fmt.Errorf("failed to read migration version: %w", err)
	}
	if len(rows) == 0 {
		return 0, false, nil
	}
	return rows[0].Version, rows[0].Dirty != 0, nil
}

func (s *sqlMigrator) Close() error {
	return s.db.Close()
}
