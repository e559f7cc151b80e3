package httpapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MarkoPoloResearchLab/watchlaunch/internal/httpapi"
	"github.com/MarkoPoloResearchLab/watchlaunch/internal/theme"
)

func TestLandingPageRendersCountdownAndForm(t *testing.T) {
	harness := buildAPIHarness(t)

	recorder := performJSONRequest(t, harness.router, http.MethodGet, httpapi.LandingPagePath, nil, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Header().Get("Content-Type"), "text/html")

	body := recorder.Body.String()
	require.Contains(t, body, `<html lang="en" data-theme="light">`)
	require.Contains(t, body, `<span id="days">35</span>`)
	require.Contains(t, body, `<span id="hours">12</span>`)
	require.Contains(t, body, `<span id="minutes">00</span>`)
	require.Contains(t, body, `<span id="seconds">00</span>`)
	require.Contains(t, body, "Launching in 5 weeks")
	require.Contains(t, body, `id="interestForm"`)
	for _, fieldID := range []string{"name", "email", "watchModel", "topFeature", "message"} {
		require.Contains(t, body, `id="`+fieldID+`"`)
	}
	require.Contains(t, body, `data-stream="/api/countdown/events"`)
	require.Contains(t, body, `id="themeToggle"`)
	require.Contains(t, body, `fas fa-moon`)
}

func TestDashboardPageRendersMountPointsInStoredTheme(t *testing.T) {
	harness := buildAPIHarness(t)
	toggled := performJSONRequest(t, harness.router, http.MethodPost, httpapi.ThemeToggleAPIPath, nil, nil)
	cookies := toggled.Result().Cookies()

	recorder := performJSONRequest(t, harness.router, http.MethodGet, httpapi.DashboardPagePath, nil, cookies)
	require.Equal(t, http.StatusOK, recorder.Code)

	body := recorder.Body.String()
	require.Contains(t, body, `data-theme="dark"`)
	require.Contains(t, body, "fas "+theme.IconSun)
	for _, elementID := range []string{"totalSubmissions", "last24Hours", "topWatch", "topFeature", "watchChart", "featureChart", "timelineChart"} {
		require.Contains(t, body, `id="`+elementID+`"`)
	}
	require.Contains(t, body, `data-stream="/api/dashboard/events"`)
}

func TestLiveScriptIsServed(t *testing.T) {
	harness := buildAPIHarness(t)

	recorder := performJSONRequest(t, harness.router, http.MethodGet, httpapi.LiveScriptPath, nil, nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Header().Get("Content-Type"), "javascript")
	require.Contains(t, recorder.Body.String(), `addEventListener("chart_update"`)
	require.Equal(t, recorder.Body.Bytes(), httpapi.LiveScript())
}
