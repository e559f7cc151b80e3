package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/watchlaunch/internal/theme"
)

const errorValueInvalidTheme = "invalid_theme"

type themeRequest struct {
	Theme string `json:"theme"`
}

type themeResponse struct {
	Theme     theme.Theme `json:"theme"`
	Icon      string      `json:"icon"`
	LivePages int         `json:"live_pages"`
}

// ThemeHandlers reads and changes the browser's theme preference.
type ThemeHandlers struct {
	logger   *zap.Logger
	sessions *ThemeSessions
	registry *LivePageRegistry
}

func NewThemeHandlers(logger *zap.Logger, themeSessions *ThemeSessions, registry *LivePageRegistry) *ThemeHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ThemeHandlers{logger: logger, sessions: themeSessions, registry: registry}
}

// CurrentTheme reports the stored theme, light when none is stored.
func (handlers *ThemeHandlers) CurrentTheme(ginContext *gin.Context) {
	store := handlers.sessions.Open(ginContext)
	stored := theme.NewPreference(store, nil).Stored()
	ginContext.JSON(http.StatusOK, themeResponse{
		Theme:     stored,
		Icon:      stored.Icon(),
		LivePages: handlers.registry.Count(store.ID()),
	})
}

// UpdateTheme stores an explicit theme and re-themes the browser's open pages.
func (handlers *ThemeHandlers) UpdateTheme(ginContext *gin.Context) {
	var payload themeRequest
	if bindErr := ginContext.ShouldBindJSON(&payload); bindErr != nil {
		ginContext.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueInvalidJSON})
		return
	}
	if !theme.Valid(payload.Theme) {
		ginContext.JSON(http.StatusBadRequest, gin.H{jsonKeyError: errorValueInvalidTheme})
		return
	}
	handlers.apply(ginContext, func(preference *theme.Preference) theme.Theme {
		next := theme.Parse(payload.Theme)
		preference.Set(next)
		return next
	})
}

// ToggleTheme flips the stored theme and re-themes the browser's open pages.
func (handlers *ThemeHandlers) ToggleTheme(ginContext *gin.Context) {
	handlers.apply(ginContext, func(preference *theme.Preference) theme.Theme {
		next := preference.Stored().Opposite()
		preference.Set(next)
		return next
	})
}

func (handlers *ThemeHandlers) apply(ginContext *gin.Context, change func(*theme.Preference) theme.Theme) {
	store := handlers.sessions.Open(ginContext)
	surface := sessionSurface{registry: handlers.registry, sessionID: store.ID()}
	next := change(theme.NewPreference(store, surface))
	livePages := handlers.registry.Count(store.ID())
	handlers.logger.Debug("theme_changed", zap.String("theme", next.String()), zap.Int("live_pages", livePages))
	ginContext.JSON(http.StatusOK, themeResponse{
		Theme:     next,
		Icon:      next.Icon(),
		LivePages: livePages,
	})
}
