package mongodb

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/mongodb"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/sirupsen/logrus"
)

// RunMigrations applies the JSON command migrations in migrationsDir
// (index creation) to the given database.
func RunMigrations(uri, database, migrationsDir string, logger *logrus.Logger) error {
	dbURL, err := MigrationURL(uri, database)
	if err != nil {
		return err
	}
	m, err := migrate.New(fmt.Sprintf("file://%s", migrationsDir), dbURL)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	logger.Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}

// MigrationURL puts the database name in the URI path, which is where the
// migrate mongodb driver reads it from.
func MigrationURL(uri, database string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", err
	}
	if u.Scheme != "mongodb" && u.Scheme != "mongodb+srv" {
		return "", fmt.Errorf("unsupported mongo uri scheme %q", u.Scheme)
	}
	if database == "" {
		return "", errors.New("database name is required")
	}
	u.Path = "/" + database
	return u.String(), nil
}
