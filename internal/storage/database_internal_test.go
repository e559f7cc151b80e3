package storage

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testUnreachablePostgresDSN = "host=127.0.0.1 port=1 user=watchlaunch dbname=watchlaunch sslmode=disable connect_timeout=1"

func TestWithSQLiteBusyTimeoutAppendsPragma(testingT *testing.T) {
	testCases := []struct {
		name           string
		dataSourceName string
		expected       string
	}{
		{
			name:           "plain path",
			dataSourceName: "watchlaunch.db",
			expected:       "watchlaunch.db?" + sqliteBusyTimeoutPragma,
		},
		{
			name:           "existing parameters",
			dataSourceName: "file:watchlaunch.db?mode=rwc",
			expected:       "file:watchlaunch.db?mode=rwc&" + sqliteBusyTimeoutPragma,
		},
		{
			name:           "caller supplied timeout",
			dataSourceName: "file:watchlaunch.db?_pragma=busy_timeout(100)",
			expected:       "file:watchlaunch.db?_pragma=busy_timeout(100)",
		},
	}

	for _, testCase := range testCases {
		testingT.Run(testCase.name, func(t *testing.T) {
			require.Equal(t, testCase.expected, withSQLiteBusyTimeout(testCase.dataSourceName))
		})
	}
}

func TestOpenDatabaseReportsSQLiteOpenError(testingT *testing.T) {
	missingDirectory := filepath.Join(testingT.TempDir(), "missing")
	dataSourceName := fmt.Sprintf("file:%s?mode=rw", filepath.Join(missingDirectory, "test.db"))

	_, openErr := OpenDatabase(Config{DriverName: DriverNameSQLite, DataSourceName: dataSourceName})
	require.Error(testingT, openErr)
	require.Contains(testingT, openErr.Error(), errorMessageOpenDatabase)
	require.Contains(testingT, openErr.Error(), DriverNameSQLite)
}

func TestOpenDatabaseReportsPostgresConnectError(testingT *testing.T) {
	_, openErr := OpenDatabase(Config{DriverName: DriverNamePostgres, DataSourceName: testUnreachablePostgresDSN})
	require.Error(testingT, openErr)
	require.Contains(testingT, openErr.Error(), errorMessageOpenDatabase)
	require.Contains(testingT, openErr.Error(), DriverNamePostgres)
}

func TestAutoMigrateAndCloseTolerateNilDatabase(testingT *testing.T) {
	require.ErrorIs(testingT, AutoMigrate(nil), ErrNilDatabase)
	require.NoError(testingT, Close(nil))
}
