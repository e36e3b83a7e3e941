package sqlstore

import (
	"embed"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"go.uber.org/multierr"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Database wraps the SQL database connection
type Database struct {
	db *sqlx.DB
}

// Open connects to the store and applies pending migrations.
// Supported drivers are "sqlite" and "postgres".
func Open(driver, dsn string) (*Database, error) {
	dialect, err := gooseDialect(driver)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if driver == "sqlite" {
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			return nil, multierr.Append(
				fmt.Errorf("failed to enable foreign keys: %w", err),
				db.Close(),
			)
		}
	}

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return nil, multierr.Append(
			fmt.Errorf("failed to set migration dialect: %w", err),
			db.Close(),
		)
	}
	if err := goose.Up(db.DB, "migrations"); err != nil {
		return nil, multierr.Append(
			fmt.Errorf("failed to apply migrations: %w", err),
			db.Close(),
		)
	}

	return &Database{db: db}, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// GetDB returns the underlying database handle
func (d *Database) GetDB() *sqlx.DB {
	return d.db
}

func gooseDialect(driver string) (string, error) {
	switch driver {
	case "sqlite":
		return "sqlite3", nil
	case "postgres":
		return "postgres", nil
	default:
		return "", fmt.Errorf("unsupported driver %q", driver)
	}
}
