package db

import (
	"database/sql"

	"github.com/cyverse-de/dbutil"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Init establishes the database connection and wraps it in a GORM session with tracing enabled.
func Init(driverName, databaseURI string) (*sql.DB, *gorm.DB, error) {
	wrapMsg := "unable to initialize the database"

	connector, err := dbutil.NewDefaultConnector("1m")
	if err != nil {
		return nil, nil, errors.Wrap(err, wrapMsg)
	}

	sqlDB, err := connector.Connect(driverName, databaseURI)
	if err != nil {
		return nil, nil, errors.Wrap(err, wrapMsg)
	}

	gormDB, err := Open(sqlDB, logger.Warn)
	if err != nil {
		return nil, nil, errors.Wrap(err, wrapMsg)
	}

	if err = gormDB.Use(otelgorm.NewPlugin()); err != nil {
		return nil, nil, errors.Wrap(err, wrapMsg)
	}

	return sqlDB, gormDB, nil
}

// Open wraps an existing connection in a GORM session.
func Open(sqlDB *sql.DB, level logger.LogLevel) (*gorm.DB, error) {
	return gorm.Open(
		postgres.New(postgres.Config{Conn: sqlDB}),
		&gorm.Config{
			Logger:                 logger.Default.LogMode(level),
			SkipDefaultTransaction: true,
		},
	)
}
