package main

import (
	"flag"
	"fmt"
	"path/filepath"

	"github.com/cyverse-de/go-mod/cfg"
	"github.com/elucidare/tonewise/config"
	"github.com/elucidare/tonewise/logging"
	"github.com/elucidare/tonewise/server"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logging.GetLogger().WithFields(logrus.Fields{"package": "main"})

// runSchemaMigrations brings the profile, usage and result tables up to date. If reinit is set, every table is
// dropped first, which discards all usage counters.
func runSchemaMigrations(dbURI, migrationsDir string, reinit bool) error {
	log := log.WithFields(logrus.Fields{"context": "schema migrations"})

	wrapMsg := "unable to run the schema migrations"

	absDir, err := filepath.Abs(migrationsDir)
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}
	migrationsURI := fmt.Sprintf("file://%s", filepath.ToSlash(absDir))

	m, err := migrate.New(migrationsURI, dbURI)
	if err != nil {
		return errors.Wrap(err, wrapMsg)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.Warnf("unable to close the migration handles: %v, %v", srcErr, dbErr)
		}
	}()

	if reinit {
		log.Warn("reinitializing the database; all usage records will be lost")
		err = m.Down()
		if err != nil && err != migrate.ErrNoChange {
			return errors.Wrap(err, wrapMsg)
		}
	}

	log.Info("running the up database migrations")
	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return errors.Wrap(err, wrapMsg)
	}

	version, dirty, err := m.Version()
	if err != nil && err != migrate.ErrNilVersion {
		return errors.Wrap(err, wrapMsg)
	}
	if dirty {
		return fmt.Errorf("%s: schema version %d is dirty", wrapMsg, version)
	}
	log.Infof("database schema is at version %d", version)

	return nil
}

func main() {
	var (
		err error

		configPath    = flag.String("config", cfg.DefaultConfigPath, "Path to the config file")
		dotEnvPath    = flag.String("dotenv-path", cfg.DefaultDotEnvPath, "Path to the dotenv file")
		envPrefix     = flag.String("env-prefix", "TONEWISE_", "The prefix for environment variables")
		logLevel      = flag.String("log-level", "info", "One of trace, debug, info, warn, error, fatal, or panic.")
		migrationsDir = flag.String("migrations", "migrations", "Path to the directory containing the schema migrations")
		showVersion   = flag.Bool("version", false, "Print the service version and exit")
	)

	flag.Parse()

	if *showVersion {
		fmt.Println(server.Version)
		return
	}

	logging.SetupLogging(*logLevel)

	log := log.WithFields(logrus.Fields{"context": "main"})

	spec, err := config.LoadConfig(*envPrefix, *configPath, *dotEnvPath)
	if err != nil {
		log.Fatalf("unable to load the configuration: %s", err.Error())
	}

	log.Info("loaded the configuration file")

	if spec.RunSchemaMigrations {
		err = runSchemaMigrations(spec.DatabaseURI, *migrationsDir, spec.ReinitDB)
		if err != nil {
			log.Fatal(err.Error())
		}
	}

	server.Init(spec)
}
