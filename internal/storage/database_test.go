package storage_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MarkoPoloResearchLab/watchlaunch/internal/model"
	"github.com/MarkoPoloResearchLab/watchlaunch/internal/storage"
	"github.com/MarkoPoloResearchLab/watchlaunch/internal/testutil"
)

const (
	testSubmissionNameValue           = "Grace Hopper"
	testSubmissionEmailValue          = "grace@example.com"
	testSubmissionMessageValue        = "Sign me up"
	testUnsupportedDriverName         = "unsupported-driver"
	testUnsupportedDriverDescription  = "unsupported driver"
	testMissingDriverDescription      = "missing driver"
	testMissingDataSourceDescription  = "missing data source"
	testMissingPostgresDSNDescription = "missing postgres data source"
)

func buildTestSubmission(t *testing.T, watchModel string, createdAt time.Time) model.InterestSubmission {
	t.Helper()
	submission, err := model.NewInterestSubmission(model.InterestSubmissionInput{
		Name:       testSubmissionNameValue,
		Email:      testSubmissionEmailValue,
		WatchModel: watchModel,
		TopFeature: "Battery",
		Message:    testSubmissionMessageValue,
		CreatedAt:  createdAt,
	})
	require.NoError(t, err)
	return submission
}

func TestOpenDatabaseWithSQLiteConfiguration(t *testing.T) {
	database, openErr := storage.OpenDatabase(testutil.SQLiteConfiguration(t))
	require.NoError(t, openErr)
	t.Cleanup(func() { require.NoError(t, storage.Close(database)) })

	require.NoError(t, storage.AutoMigrate(database))
	require.True(t, database.Migrator().HasTable(model.InterestSubmissionTableName))
	for _, columnName := range []string{"name", "email", "watch_model", "top_feature", "message", "created_at"} {
		require.True(t, database.Migrator().HasColumn(&model.InterestSubmission{}, columnName), columnName)
	}
}

func TestOpenDatabaseNormalizesDriverName(t *testing.T) {
	database, openErr := storage.OpenDatabase(storage.Config{
		DriverName:     "  SQLite ",
		DataSourceName: testutil.SQLiteConfiguration(t).DataSourceName,
	})
	require.NoError(t, openErr)
	require.NoError(t, storage.Close(database))
}

func TestOpenDatabaseValidation(t *testing.T) {
	sqliteDataSourceName := testutil.SQLiteConfiguration(t).DataSourceName

	testCases := []struct {
		name              string
		configuration     storage.Config
		expectedRootError error
	}{
		{
			name: testMissingDriverDescription,
			configuration: storage.Config{
				DriverName:     "",
				DataSourceName: sqliteDataSourceName,
			},
			expectedRootError: storage.ErrMissingDatabaseDriverName,
		},
		{
			name: testUnsupportedDriverDescription,
			configuration: storage.Config{
				DriverName:     testUnsupportedDriverName,
				DataSourceName: sqliteDataSourceName,
			},
			expectedRootError: storage.ErrUnsupportedDatabaseDriver,
		},
		{
			name: testMissingDataSourceDescription,
			configuration: storage.Config{
				DriverName:     storage.DriverNameSQLite,
				DataSourceName: "",
			},
			expectedRootError: storage.ErrMissingDataSourceName,
		},
		{
			name: testMissingPostgresDSNDescription,
			configuration: storage.Config{
				DriverName:     storage.DriverNamePostgres,
				DataSourceName: " ",
			},
			expectedRootError: storage.ErrMissingDataSourceName,
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(testingT *testing.T) {
			_, openErr := storage.OpenDatabase(testCase.configuration)
			require.Error(testingT, openErr)
			require.True(testingT, errors.Is(openErr, testCase.expectedRootError))
		})
	}
}

func TestSubmissionStoreListsNewestFirst(t *testing.T) {
	database := testutil.OpenMigratedSQLiteDatabase(t)
	store := storage.NewSubmissionStore(database)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	oldest := buildTestSubmission(t, "Classic", now.Add(-72*time.Hour))
	newest := buildTestSubmission(t, "Sport", now)
	middle := buildTestSubmission(t, "Classic", now.Add(-2*time.Hour))

	require.NoError(t, store.InsertSubmission(ctx, oldest))
	require.NoError(t, store.InsertSubmission(ctx, newest))
	require.NoError(t, store.InsertSubmission(ctx, middle))

	submissions, listErr := store.ListSubmissions(ctx)
	require.NoError(t, listErr)
	require.Len(t, submissions, 3)
	require.Equal(t, newest.ID, submissions[0].ID)
	require.Equal(t, middle.ID, submissions[1].ID)
	require.Equal(t, oldest.ID, submissions[2].ID)
	require.Equal(t, "Sport", submissions[0].WatchModelLabel())
	require.Equal(t, testSubmissionMessageValue, submissions[0].Message)
}

func TestSubmissionStoreAppendsDuplicates(t *testing.T) {
	database := testutil.OpenMigratedSQLiteDatabase(t)
	store := storage.NewSubmissionStore(database)
	ctx := context.Background()

	submission := buildTestSubmission(t, "Classic", time.Now())
	duplicate := submission
	duplicate.ID = ""

	require.NoError(t, store.InsertSubmission(ctx, submission))
	require.NoError(t, store.InsertSubmission(ctx, duplicate))

	submissions, listErr := store.ListSubmissions(ctx)
	require.NoError(t, listErr)
	require.Len(t, submissions, 2)
	require.NotEqual(t, submissions[0].ID, submissions[1].ID)
}

func TestSubmissionStoreReadsNullCategoriesAsUndefined(t *testing.T) {
	database := testutil.OpenMigratedSQLiteDatabase(t)
	store := storage.NewSubmissionStore(database)

	testutil.SeedSubmissions(t, database, model.InterestSubmission{
		Name:      testSubmissionNameValue,
		Email:     testSubmissionEmailValue,
		CreatedAt: time.Now().UTC(),
	})

	submissions, listErr := store.ListSubmissions(context.Background())
	require.NoError(t, listErr)
	require.Len(t, submissions, 1)
	require.Nil(t, submissions[0].WatchModel)
	require.Equal(t, model.UndefinedCategory, submissions[0].WatchModelLabel())
	require.Equal(t, model.UndefinedCategory, submissions[0].TopFeatureLabel())
}

func TestSubmissionStoreRequiresDatabase(t *testing.T) {
	store := storage.NewSubmissionStore(nil)

	insertErr := store.InsertSubmission(context.Background(), model.InterestSubmission{})
	require.ErrorIs(t, insertErr, storage.ErrNilDatabase)

	_, listErr := store.ListSubmissions(context.Background())
	require.ErrorIs(t, listErr, storage.ErrNilDatabase)
}

func TestSubmissionStoreWrapsQueryErrors(t *testing.T) {
	database := testutil.OpenSQLiteDatabase(t)
	store := storage.NewSubmissionStore(database)

	_, listErr := store.ListSubmissions(context.Background())
	require.Error(t, listErr)
	require.Contains(t, listErr.Error(), "storage: list submissions")
}
