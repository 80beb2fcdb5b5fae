package store

import (
	"context"
	"embed"
	"fmt"
	"log/slog"

	"github.com/pkg/errors"
)

// The migration system applies the full LATEST.sql schema on fresh databases.
// Schema files live in store/migration/{driver}/LATEST.sql.

//go:embed migration
var migrationFS embed.FS

const latestSchemaFileName = "LATEST.sql"

// Migrate initializes the database schema if it has not been applied yet.
func (s *Store) Migrate(ctx context.Context) error {
	initialized, err := s.driver.IsInitialized(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to check if database is initialized")
	}
	if initialized {
		return nil
	}

	buf, err := migrationFS.ReadFile(fmt.Sprintf("migration/%s/%s", s.profile.Driver, latestSchemaFileName))
	if err != nil {
		return errors.Wrapf(err, "failed to read latest schema file for driver %s", s.profile.Driver)
	}

	if _, err := s.driver.GetDB().ExecContext(ctx, string(buf)); err != nil {
		return errors.Wrap(err, "failed to apply latest schema")
	}

	slog.Info("database schema initialized", slog.String("driver", s.profile.Driver))
	return nil
}
