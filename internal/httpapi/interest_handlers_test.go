package httpapi_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MarkoPoloResearchLab/watchlaunch/internal/httpapi"
	"github.com/MarkoPoloResearchLab/watchlaunch/internal/interest"
)

func validInterestPayload() map[string]string {
	return map[string]string{
		"name":       "Ada",
		"email":      "a@x.io",
		"watchModel": "Chrono S",
		"topFeature": "GPS",
		"message":    "",
	}
}

func TestCreateSubmissionStoresRecord(t *testing.T) {
	harness := buildAPIHarness(t)

	recorder := performJSONRequest(t, harness.router, http.MethodPost, httpapi.InterestAPIPath, validInterestPayload(), nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	body := decodeJSONBody(t, recorder)
	require.Equal(t, "ok", body["status"])
	require.Equal(t, interest.SuccessMessage, body["notice"])
	require.Equal(t, true, body["reset"])

	records, err := harness.store.ListSubmissions(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, "Ada", records[0].Name)
	require.Equal(t, "GPS", records[0].TopFeatureLabel())
	require.True(t, harnessNow.Equal(records[0].CreatedAt))
}

func TestCreateSubmissionRejectsBadInput(t *testing.T) {
	harness := buildAPIHarness(t)

	missingEmail := validInterestPayload()
	missingEmail["email"] = " "

	testCases := []struct {
		name          string
		payload       any
		expectedError string
	}{
		{name: "invalid json", payload: "{not json", expectedError: "invalid_json"},
		{name: "missing field", payload: missingEmail, expectedError: "missing_fields"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(testingT *testing.T) {
			recorder := performJSONRequest(testingT, harness.router, http.MethodPost, httpapi.InterestAPIPath, testCase.payload, nil)
			require.Equal(testingT, http.StatusBadRequest, recorder.Code)
			body := decodeJSONBody(testingT, recorder)
			require.Equal(testingT, testCase.expectedError, body["error"])
			require.Equal(testingT, interest.FailureMessage, body["notice"])
			require.Equal(testingT, false, body["reset"])
		})
	}

	records, err := harness.store.ListSubmissions(context.Background())
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestCreateSubmissionReportsStoreFailure(t *testing.T) {
	harness := buildAPIHarness(t)
	sqlDatabase, err := harness.database.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDatabase.Close())

	recorder := performJSONRequest(t, harness.router, http.MethodPost, httpapi.InterestAPIPath, validInterestPayload(), nil)
	require.Equal(t, http.StatusInternalServerError, recorder.Code)
	body := decodeJSONBody(t, recorder)
	require.Equal(t, "save_failed", body["error"])
	require.Equal(t, interest.FailureMessage, body["notice"])
	require.Equal(t, false, body["reset"])
}

func TestCreateSubmissionBroadcastsEvent(t *testing.T) {
	harness := buildAPIHarness(t)
	subscription := harness.broadcaster.Subscribe()
	require.NotNil(t, subscription)
	defer subscription.Close()

	recorder := performJSONRequest(t, harness.router, http.MethodPost, httpapi.InterestAPIPath, validInterestPayload(), nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	select {
	case event := <-subscription.Events():
		require.Equal(t, "Chrono S", event.WatchModel)
		require.Equal(t, "GPS", event.TopFeature)
		require.NotEmpty(t, event.SubmissionID)
	default:
		t.Fatalf("expected a submission event")
	}
}
