package httpapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MarkoPoloResearchLab/watchlaunch/internal/httpapi"
	"github.com/MarkoPoloResearchLab/watchlaunch/internal/theme"
)

func TestThemeDefaultsToLightAndIssuesSession(t *testing.T) {
	harness := buildAPIHarness(t)

	recorder := performJSONRequest(t, harness.router, http.MethodGet, httpapi.ThemeAPIPath, nil, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	body := decodeJSONBody(t, recorder)
	require.Equal(t, "light", body["theme"])
	require.Equal(t, theme.IconMoon, body["icon"])
	require.NotEmpty(t, recorder.Result().Cookies())
}

func TestThemeTogglePersistsInSessionCookie(t *testing.T) {
	harness := buildAPIHarness(t)

	first := performJSONRequest(t, harness.router, http.MethodGet, httpapi.ThemeAPIPath, nil, nil)
	cookies := first.Result().Cookies()

	toggled := performJSONRequest(t, harness.router, http.MethodPost, httpapi.ThemeToggleAPIPath, nil, cookies)
	require.Equal(t, http.StatusOK, toggled.Code)
	require.Equal(t, "dark", decodeJSONBody(t, toggled)["theme"])
	require.Equal(t, theme.IconSun, decodeJSONBody(t, toggled)["icon"])
	cookies = toggled.Result().Cookies()

	current := performJSONRequest(t, harness.router, http.MethodGet, httpapi.ThemeAPIPath, nil, cookies)
	require.Equal(t, "dark", decodeJSONBody(t, current)["theme"])

	toggledBack := performJSONRequest(t, harness.router, http.MethodPost, httpapi.ThemeToggleAPIPath, nil, cookies)
	require.Equal(t, "light", decodeJSONBody(t, toggledBack)["theme"])
}

func TestUpdateThemeValidatesValue(t *testing.T) {
	harness := buildAPIHarness(t)

	testCases := []struct {
		name           string
		payload        any
		expectedStatus int
		expectedValue  string
		expectedKey    string
	}{
		{name: "dark", payload: map[string]string{"theme": "dark"}, expectedStatus: http.StatusOK, expectedKey: "theme", expectedValue: "dark"},
		{name: "mixed case light", payload: map[string]string{"theme": " Light "}, expectedStatus: http.StatusOK, expectedKey: "theme", expectedValue: "light"},
		{name: "unknown", payload: map[string]string{"theme": "sepia"}, expectedStatus: http.StatusBadRequest, expectedKey: "error", expectedValue: "invalid_theme"},
		{name: "invalid json", payload: "{", expectedStatus: http.StatusBadRequest, expectedKey: "error", expectedValue: "invalid_json"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(testingT *testing.T) {
			recorder := performJSONRequest(testingT, harness.router, http.MethodPut, httpapi.ThemeAPIPath, testCase.payload, nil)
			require.Equal(testingT, testCase.expectedStatus, recorder.Code)
			require.Equal(testingT, testCase.expectedValue, decodeJSONBody(testingT, recorder)[testCase.expectedKey])
		})
	}
}
