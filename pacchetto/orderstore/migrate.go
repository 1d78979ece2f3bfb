package orderstore

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/taldoflemis/pizzeria/pacchetto"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const migrationsTable = "cassiere_schema_migrations"

// Migrate brings the orders schema up to date. Running it on an up to date database is a no-op.
func Migrate(cfg pacchetto.DatabaseSettings) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("could not open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, cfg.URL("pgx5", "x-migrations-table", migrationsTable))
	if err != nil {
		return fmt.Errorf("could not create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}
