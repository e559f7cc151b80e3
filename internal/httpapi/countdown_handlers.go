package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/watchlaunch/internal/countdown"
	"github.com/MarkoPoloResearchLab/watchlaunch/internal/theme"
)

// CountdownConfig configures the landing countdown stream.
type CountdownConfig struct {
	LaunchAt     time.Time
	TickInterval time.Duration
	Clock        func() time.Time
}

// landingPage is the live state behind one open landing page.
type landingPage struct {
	preference *theme.Preference
}

func (page landingPage) SetTheme(next theme.Theme) {
	page.preference.Set(next)
}

// CountdownHandlers streams the countdown to open landing pages.
type CountdownHandlers struct {
	logger   *zap.Logger
	config   CountdownConfig
	sessions *ThemeSessions
	registry *LivePageRegistry
}

func NewCountdownHandlers(logger *zap.Logger, config CountdownConfig, themeSessions *ThemeSessions, registry *LivePageRegistry) *CountdownHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CountdownHandlers{logger: logger, config: config, sessions: themeSessions, registry: registry}
}

// StreamEvents ticks the countdown for the lifetime of the connection.
func (handlers *CountdownHandlers) StreamEvents(ginContext *gin.Context) {
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
	timer := countdown.NewTimer(handlers.config.LaunchAt, presenter,
		countdown.WithClock(handlers.config.Clock),
		countdown.WithTickInterval(handlers.config.TickInterval),
	)
	page := landingPage{preference: theme.NewPreference(pageThemeStore, presenter)}
	unregister := handlers.registry.Register(sessionStore.ID(), page)
	defer func() {
		unregister()
		presenter.Close()
		timer.Stop()
	}()

	requestContext := ginContext.Request.Context()
	page.preference.Init()
	timer.Start(requestContext)

	for {
		select {
		case <-requestContext.Done():
			return
		case event := <-presenter.Events():
			if sendErr := stream.Send(event); sendErr != nil {
				handlers.logger.Debug("countdown_stream_write_failed", zap.Error(sendErr))
				return
			}
		}
	}
}
