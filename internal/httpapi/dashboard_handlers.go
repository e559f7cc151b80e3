package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/watchlaunch/internal/dashboard"
	"github.com/MarkoPoloResearchLab/watchlaunch/internal/theme"
)

const errorValueSummaryUnavailable = "summary_unavailable"

// DashboardConfig carries the dashboard settings shared by every live page.
type DashboardConfig struct {
	RefreshInterval time.Duration
	Summary         dashboard.SummarizeOptions
	Clock           func() time.Time
}

type summaryResponse struct {
	Total       int                      `json:"total"`
	Last24Hours int                      `json:"last_24_hours"`
	TopWatch    *string                  `json:"top_watch"`
	TopFeature  *string                  `json:"top_feature"`
	ByModel     dashboard.FrequencyTable `json:"by_model"`
	ByFeature   dashboard.FrequencyTable `json:"by_feature"`
	ByDay       dashboard.FrequencyTable `json:"by_day"`
	GeneratedAt time.Time                `json:"generated_at"`
}

func newSummaryResponse(snapshot dashboard.Snapshot) summaryResponse {
	response := summaryResponse{
		Total:       snapshot.Total,
		Last24Hours: snapshot.Last24Hours,
		ByModel:     snapshot.ByModel,
		ByFeature:   snapshot.ByFeature,
		ByDay:       snapshot.ByDay,
		GeneratedAt: snapshot.GeneratedAt,
	}
	if topWatch, found := snapshot.TopModel(); found {
		response.TopWatch = &topWatch
	}
	if topFeature, found := snapshot.TopFeature(); found {
		response.TopFeature = &topFeature
	}
	return response
}

// DashboardHandlers serves the summary API and the live dashboard stream.
type DashboardHandlers struct {
	source      dashboard.SubmissionSource
	logger      *zap.Logger
	config      DashboardConfig
	sessions    *ThemeSessions
	registry    *LivePageRegistry
	broadcaster *SubmissionEventBroadcaster
	aggregator  *dashboard.Aggregator
}

func NewDashboardHandlers(source dashboard.SubmissionSource, logger *zap.Logger, config DashboardConfig, themeSessions *ThemeSessions, registry *LivePageRegistry, broadcaster *SubmissionEventBroadcaster) *DashboardHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandlers{
		source:      source,
		logger:      logger,
		config:      config,
		sessions:    themeSessions,
		registry:    registry,
		broadcaster: broadcaster,
		aggregator:  dashboard.NewAggregator(source, logger, config.Clock, config.Summary),
	}
}

// Summary returns one snapshot as JSON.
func (handlers *DashboardHandlers) Summary(ginContext *gin.Context) {
	snapshot, snapshotErr := handlers.aggregator.Snapshot(ginContext.Request.Context())
	if snapshotErr != nil {
		ginContext.JSON(http.StatusInternalServerError, gin.H{jsonKeyError: errorValueSummaryUnavailable})
		return
	}
	ginContext.JSON(http.StatusOK, newSummaryResponse(snapshot))
}

// StreamEvents runs one live dashboard page for the lifetime of the connection.
func (handlers *DashboardHandlers) StreamEvents(ginContext *gin.Context) {
	sessionStore := handlers.sessions.Open(ginContext)
	pageThemeStore := theme.NewMemoryStore()
	if storedTheme, found := sessionStore.Get(theme.StorageKey); found {
		pageThemeStore.Set(theme.StorageKey, storedTheme)
	}

	stream, streamErr := openEventStream(ginContext)
	if streamErr != nil {
		ginContext.JSON(http.StatusServiceUnavailable, gin.H{jsonKeyError: errorValueStreamUnavailable})
		return
	}

	presenter := newStreamPresenter()
	page := dashboard.NewPage(dashboard.PageConfig{
		Source:          handlers.source,
		Presenter:       presenter,
		ThemeStore:      pageThemeStore,
		Logger:          handlers.logger,
		RefreshInterval: handlers.config.RefreshInterval,
		Summary:         handlers.config.Summary,
		Clock:           handlers.config.Clock,
	})
	unregister := handlers.registry.Register(sessionStore.ID(), page)
	subscription := handlers.broadcaster.Subscribe()
	defer func() {
		unregister()
		subscription.Close()
		presenter.Close()
		page.Stop()
	}()

	requestContext := ginContext.Request.Context()
	page.Start(requestContext)

	submissionEvents := subscription.Events()
	for {
		select {
		case <-requestContext.Done():
			return
		case event := <-presenter.Events():
			if sendErr := stream.Send(event); sendErr != nil {
				handlers.logger.Debug("dashboard_stream_write_failed", zap.Error(sendErr))
				return
			}
		case _, open := <-submissionEvents:
			if !open {
				submissionEvents = nil
				continue
			}
			page.RefreshNow()
		}
	}
}
