package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/MarkoPoloResearchLab/watchlaunch/internal/model"
)

const (
	// DriverNameSQLite identifies the embedded SQLite driver, the default store.
	DriverNameSQLite = "sqlite"
	// DriverNamePostgres identifies the hosted PostgreSQL driver.
	DriverNamePostgres = "postgres"

	sqliteBusyTimeoutPragma = "_pragma=busy_timeout(5000)"
	sqlitePragmaParameter   = "_pragma=busy_timeout"

	errorMessageMissingDatabaseDriverName = "storage: missing database driver name"
	errorMessageUnsupportedDatabaseDriver = "storage: unsupported database driver"
	errorMessageMissingDataSourceName     = "storage: missing database data source name"
	errorMessageOpenDatabase              = "storage: open database"
	errorMessageMigrateDatabase           = "storage: migrate database"
	errorMessageCloseDatabase             = "storage: close database"
)

var (
	// ErrMissingDatabaseDriverName indicates the database driver name configuration was omitted.
	ErrMissingDatabaseDriverName = errors.New(errorMessageMissingDatabaseDriverName)
	// ErrUnsupportedDatabaseDriver indicates the provided database driver is not supported.
	ErrUnsupportedDatabaseDriver = errors.New(errorMessageUnsupportedDatabaseDriver)
	// ErrMissingDataSourceName indicates the database data source name configuration was omitted.
	ErrMissingDataSourceName = errors.New(errorMessageMissingDataSourceName)
)

type dialectorFactory func(dataSourceName string) gorm.Dialector

var dialectorFactories = map[string]dialectorFactory{
	DriverNameSQLite:   sqliteDialector,
	DriverNamePostgres: postgresDialector,
}

// Config captures database connection configuration.
type Config struct {
	DriverName     string
	DataSourceName string
	// LogLevel controls gorm's own statement logging. Zero keeps it silent.
	LogLevel logger.LogLevel
}

// OpenDatabase opens the submissions store with the configured driver.
// The interest_submissions table is shared with other writers, so nothing here assumes exclusive access.
func OpenDatabase(configuration Config) (*gorm.DB, error) {
	driverName := strings.ToLower(strings.TrimSpace(configuration.DriverName))
	if driverName == "" {
		return nil, ErrMissingDatabaseDriverName
	}

	newDialector, driverSupported := dialectorFactories[driverName]
	if !driverSupported {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDatabaseDriver, driverName)
	}

	dataSourceName := strings.TrimSpace(configuration.DataSourceName)
	if dataSourceName == "" {
		return nil, ErrMissingDataSourceName
	}

	logLevel := configuration.LogLevel
	if logLevel == 0 {
		logLevel = logger.Silent
	}

	database, openErr := gorm.Open(newDialector(dataSourceName), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if openErr != nil {
		return nil, fmt.Errorf("%s: %s: %w", errorMessageOpenDatabase, driverName, openErr)
	}

	return database, nil
}

// sqliteDialector waits on locks instead of failing while a dashboard read overlaps a form insert.
func sqliteDialector(dataSourceName string) gorm.Dialector {
	return sqlite.Open(withSQLiteBusyTimeout(dataSourceName))
}

func withSQLiteBusyTimeout(dataSourceName string) string {
	if strings.Contains(dataSourceName, sqlitePragmaParameter) {
		return dataSourceName
	}
	separator := "?"
	if strings.Contains(dataSourceName, "?") {
		separator = "&"
	}
	return dataSourceName + separator + sqliteBusyTimeoutPragma
}

// AutoMigrate creates the submissions table when it does not exist yet.
func AutoMigrate(database *gorm.DB) error {
	if database == nil {
		return ErrNilDatabase
	}
	if migrateErr := database.AutoMigrate(&model.InterestSubmission{}); migrateErr != nil {
		return fmt.Errorf("%s: %w", errorMessageMigrateDatabase, migrateErr)
	}
	return nil
}

// Close releases the pooled connections behind database.
func Close(database *gorm.DB) error {
	if database == nil {
		return nil
	}
	sqlDatabase, sqlErr := database.DB()
	if sqlErr != nil {
		return fmt.Errorf("%s: %w", errorMessageCloseDatabase, sqlErr)
	}
	if closeErr := sqlDatabase.Close(); closeErr != nil {
		return fmt.Errorf("%s: %w", errorMessageCloseDatabase, closeErr)
	}
	return nil
}

// NewID generates a new globally unique identifier.
func NewID() string {
	return uuid.NewString()
}
