package httpapi_test

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/MarkoPoloResearchLab/watchlaunch/internal/dashboard"
	"github.com/MarkoPoloResearchLab/watchlaunch/internal/httpapi"
	"github.com/MarkoPoloResearchLab/watchlaunch/internal/interest"
	"github.com/MarkoPoloResearchLab/watchlaunch/internal/storage"
	"github.com/MarkoPoloResearchLab/watchlaunch/internal/testutil"
)

const (
	testSessionSecret   = "0123456789abcdef0123456789abcdef"
	streamEventTimeout  = 5 * time.Second
	harnessRefreshDelay = time.Hour
)

var (
	harnessNow      = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	harnessLaunchAt = time.Date(2025, time.April, 15, 0, 0, 0, 0, time.UTC)
)

type apiHarness struct {
	router      *gin.Engine
	database    *gorm.DB
	store       *storage.SubmissionStore
	registry    *httpapi.LivePageRegistry
	broadcaster *httpapi.SubmissionEventBroadcaster
}

func harnessClock() time.Time {
	return harnessNow
}

func buildAPIHarness(testingT *testing.T) apiHarness {
	testingT.Helper()
	gin.SetMode(gin.TestMode)

	logger, loggerErr := zap.NewDevelopment()
	require.NoError(testingT, loggerErr)

	database := testutil.OpenMigratedSQLiteDatabase(testingT)
	store := storage.NewSubmissionStore(database)
	registry := httpapi.NewLivePageRegistry()
	broadcaster := httpapi.NewSubmissionEventBroadcaster()
	testingT.Cleanup(broadcaster.Close)
	themeSessions := httpapi.NewThemeSessions([]byte(testSessionSecret), false, logger)

	submitter := interest.NewSubmitter(store, logger,
		interest.WithClock(harnessClock),
		interest.WithSubmittedHook(broadcaster.BroadcastSubmission),
	)
	renderer := httpapi.NewPageRenderer(httpapi.PageConfig{LaunchAt: harnessLaunchAt, Clock: harnessClock})
	pageHandlers := httpapi.NewPageHandlers(logger, renderer, themeSessions)
	interestHandlers := httpapi.NewInterestHandlers(submitter, logger)
	dashboardHandlers := httpapi.NewDashboardHandlers(store, logger, httpapi.DashboardConfig{
		RefreshInterval: harnessRefreshDelay,
		Summary:         dashboard.SummarizeOptions{Location: time.UTC},
		Clock:           harnessClock,
	}, themeSessions, registry, broadcaster)
	countdownHandlers := httpapi.NewCountdownHandlers(logger, httpapi.CountdownConfig{
		LaunchAt:     harnessLaunchAt,
		TickInterval: 50 * time.Millisecond,
		Clock:        harnessClock,
	}, themeSessions, registry)
	themeHandlers := httpapi.NewThemeHandlers(logger, themeSessions, registry)

	router := gin.New()
	router.Use(httpapi.RequestLogger(logger))
	router.GET(httpapi.LandingPagePath, pageHandlers.RenderLandingPage)
	router.GET(httpapi.DashboardPagePath, pageHandlers.RenderDashboardPage)
	router.GET(httpapi.LiveScriptPath, pageHandlers.LiveScript)
	router.POST(httpapi.InterestAPIPath, interestHandlers.CreateSubmission)
	router.GET(httpapi.DashboardSummaryAPIPath, dashboardHandlers.Summary)
	router.GET(httpapi.DashboardEventsAPIPath, dashboardHandlers.StreamEvents)
	router.GET(httpapi.CountdownEventsAPIPath, countdownHandlers.StreamEvents)
	router.GET(httpapi.ThemeAPIPath, themeHandlers.CurrentTheme)
	router.PUT(httpapi.ThemeAPIPath, themeHandlers.UpdateTheme)
	router.POST(httpapi.ThemeToggleAPIPath, themeHandlers.ToggleTheme)

	return apiHarness{
		router:      router,
		database:    database,
		store:       store,
		registry:    registry,
		broadcaster: broadcaster,
	}
}

func performJSONRequest(testingT *testing.T, handler http.Handler, method string, path string, payload any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	testingT.Helper()
	var body io.Reader
	if payload != nil {
		switch typed := payload.(type) {
		case string:
			body = strings.NewReader(typed)
		default:
			encoded, marshalErr := json.Marshal(payload)
			require.NoError(testingT, marshalErr)
			body = bytes.NewReader(encoded)
		}
	}
	request := httptest.NewRequest(method, path, body)
	if payload != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range cookies {
		request.AddCookie(cookie)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

func decodeJSONBody(testingT *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	testingT.Helper()
	var decoded map[string]any
	require.NoError(testingT, json.Unmarshal(recorder.Body.Bytes(), &decoded))
	return decoded
}

type receivedStreamEvent struct {
	Name string
	Data map[string]any
}

// readStreamEvents parses a text/event-stream body into events until the body ends.
func readStreamEvents(body io.Reader, events chan<- receivedStreamEvent) {
	defer close(events)
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var eventName string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			eventName = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			var data map[string]any
			if json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &data) == nil {
				events <- receivedStreamEvent{Name: eventName, Data: data}
			}
		}
	}
}

// waitForStreamEvent drains events until match returns true.
func waitForStreamEvent(testingT *testing.T, events <-chan receivedStreamEvent, match func(receivedStreamEvent) bool) receivedStreamEvent {
	testingT.Helper()
	deadline := time.After(streamEventTimeout)
	for {
		select {
		case event, open := <-events:
			require.True(testingT, open, "stream closed before the expected event")
			if match(event) {
				return event
			}
		case <-deadline:
			testingT.Fatalf("timed out waiting for stream event")
			return receivedStreamEvent{}
		}
	}
}

func textEvent(field string, value string) func(receivedStreamEvent) bool {
	return func(event receivedStreamEvent) bool {
		return event.Name == "text" && event.Data["field"] == field && event.Data["value"] == value
	}
}

func themeEvent(expectedTheme string) func(receivedStreamEvent) bool {
	return func(event receivedStreamEvent) bool {
		return event.Name == "theme" && event.Data["theme"] == expectedTheme
	}
}
