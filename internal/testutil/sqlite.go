// Package testutil opens throwaway submission stores for tests.
package testutil

import (
	"fmt"
	"log"
	"strings"
	"testing"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/MarkoPoloResearchLab/watchlaunch/internal/model"
	"github.com/MarkoPoloResearchLab/watchlaunch/internal/storage"
)

const (
	sqliteTestDatabaseNamePrefix        = "watchlaunch-test-db"
	sqliteInMemoryDataSourceNamePattern = "file:%s?mode=memory&cache=shared"
)

type testingLogWriter struct {
	testingT *testing.T
}

func (writer testingLogWriter) Write(data []byte) (int, error) {
	if trimmed := strings.TrimSpace(string(data)); trimmed != "" {
		writer.testingT.Log(trimmed)
	}
	return len(data), nil
}

// SQLiteConfiguration returns storage settings for a private in-memory database.
// Each call names a new database, so tests never observe each other's rows.
func SQLiteConfiguration(testingT *testing.T) storage.Config {
	testingT.Helper()
	databaseName := fmt.Sprintf("%s-%s", sqliteTestDatabaseNamePrefix, storage.NewID())
	return storage.Config{
		DriverName:     storage.DriverNameSQLite,
		DataSourceName: fmt.Sprintf(sqliteInMemoryDataSourceNamePattern, databaseName),
	}
}

// OpenSQLiteDatabase opens an empty in-memory database without the submissions table.
// gorm statement errors are routed to the test log; the database is closed on cleanup.
func OpenSQLiteDatabase(testingT *testing.T) *gorm.DB {
	testingT.Helper()

	database, openErr := storage.OpenDatabase(SQLiteConfiguration(testingT))
	if openErr != nil {
		testingT.Fatalf("open sqlite test database: %v", openErr)
	}
	testingT.Cleanup(func() {
		_ = storage.Close(database)
	})

	gormLogger := logger.New(
		log.New(testingLogWriter{testingT: testingT}, "", 0),
		logger.Config{
			IgnoreRecordNotFoundError: true,
			LogLevel:                  logger.Error,
		},
	)
	return database.Session(&gorm.Session{Logger: gormLogger})
}

// OpenMigratedSQLiteDatabase opens a fresh in-memory database with the submissions table created.
func OpenMigratedSQLiteDatabase(testingT *testing.T) *gorm.DB {
	testingT.Helper()

	database := OpenSQLiteDatabase(testingT)
	if migrateErr := storage.AutoMigrate(database); migrateErr != nil {
		testingT.Fatalf("migrate sqlite test database: %v", migrateErr)
	}
	return database
}

// SeedSubmissions writes rows directly, bypassing the form path. Rows may carry NULL categories,
// the way other writers of the shared table leave them.
func SeedSubmissions(testingT *testing.T, database *gorm.DB, submissions ...model.InterestSubmission) {
	testingT.Helper()
	for index := range submissions {
		if submissions[index].ID == "" {
			submissions[index].ID = storage.NewID()
		}
		if createErr := database.Create(&submissions[index]).Error; createErr != nil {
			testingT.Fatalf("seed submission %d: %v", index, createErr)
		}
	}
}
