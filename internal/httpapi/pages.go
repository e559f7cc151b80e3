package httpapi

import (
	"bytes"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/watchlaunch/internal/countdown"
	"github.com/MarkoPoloResearchLab/watchlaunch/internal/interest"
	"github.com/MarkoPoloResearchLab/watchlaunch/internal/theme"
)

const (
	LandingPagePath         = "/launch"
	DashboardPagePath       = "/dashboard"
	LiveScriptPath          = "/assets/live.js"
	InterestAPIPath         = "/api/interest"
	DashboardSummaryAPIPath = "/api/dashboard/summary"
	DashboardEventsAPIPath  = "/api/dashboard/events"
	CountdownEventsAPIPath  = "/api/countdown/events"
	ThemeAPIPath            = "/api/theme"
	ThemeToggleAPIPath      = "/api/theme/toggle"

	landingTemplateName   = "landing"
	dashboardTemplateName = "dashboard"
	htmlContentType       = "text/html; charset=utf-8"
	javaScriptContentType = "application/javascript; charset=utf-8"

	defaultBrandName = "Chrono"

	sharedPageStylesCSS = `:root[data-theme="light"] { --page-bg: #F5F5F7; --page-fg: #1D1D1F; --card-bg: #FFFFFF; }
      :root[data-theme="dark"] { --page-bg: #1D1D1F; --page-fg: #F5F5F7; --card-bg: #2C2C2E; }
      body { margin: 0; font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; background: var(--page-bg); color: var(--page-fg); transition: background-color 0.3s ease, color 0.3s ease; }
      main { max-width: 960px; margin: 0 auto; padding: 2rem 1rem; }
      .countdown, .summary { display: flex; gap: 1rem; flex-wrap: wrap; }
      .countdown-unit, .summary-card, .chart-card { background: var(--card-bg); border-radius: 12px; padding: 1rem; flex: 1; }
      .countdown-unit span, .summary-card span { display: block; font-size: 2rem; font-weight: 600; }
      .charts { display: grid; grid-template-columns: 1fr 1fr; gap: 1rem; margin-top: 1rem; }
      .chart-card-wide { grid-column: 1 / -1; }
      form { display: grid; gap: 0.5rem; }
      .notice-success { color: #34C759; }
      .notice-error { color: #FF3B30; }
      .site-footer { padding: 1rem; text-align: center; }
      .theme-toggle { background: none; border: none; color: inherit; cursor: pointer; font-size: 1.25rem; }`
)

var (
	defaultWatchModels = []string{"Chrono S", "Chrono Pro", "Chrono Sport", "Chrono Classic"}
	defaultFeatures    = []string{"Battery life", "Health tracking", "GPS", "Water resistance", "Design"}
)

// PageConfig describes the content of the two pages.
type PageConfig struct {
	BrandName   string
	LaunchAt    time.Time
	WatchModels []string
	Features    []string
	Clock       func() time.Time
}

type pageTemplateData struct {
	BrandName       string
	Theme           theme.Theme
	SharedStyles    template.CSS
	FooterHTML      template.HTML
	StreamPath      string
	ThemeTogglePath string
	LiveScriptPath  string
	SubmitPath      string
	FailureNotice   string
	Countdown       countdown.Display
	CountdownPhrase string
	WatchModels     []string
	Features        []string
}

// PageRenderer executes the landing and dashboard templates.
type PageRenderer struct {
	config            PageConfig
	landingTemplate   *template.Template
	dashboardTemplate *template.Template
}

func NewPageRenderer(config PageConfig) *PageRenderer {
	if config.BrandName == "" {
		config.BrandName = defaultBrandName
	}
	if len(config.WatchModels) == 0 {
		config.WatchModels = defaultWatchModels
	}
	if len(config.Features) == 0 {
		config.Features = defaultFeatures
	}
	if config.Clock == nil {
		config.Clock = time.Now
	}
	return &PageRenderer{
		config:            config,
		landingTemplate:   template.Must(template.New(landingTemplateName).Parse(landingTemplateHTML)),
		dashboardTemplate: template.Must(template.New(dashboardTemplateName).Parse(dashboardTemplateHTML)),
	}
}

// Landing renders the landing page with the countdown as of now.
func (renderer *PageRenderer) Landing(activeTheme theme.Theme) ([]byte, error) {
	remaining := countdown.Compute(renderer.config.LaunchAt, renderer.config.Clock())
	data, err := renderer.baseData(activeTheme, CountdownEventsAPIPath)
	if err != nil {
		return nil, err
	}
	data.SubmitPath = InterestAPIPath
	data.FailureNotice = interest.FailureMessage
	data.Countdown = remaining.Display()
	data.CountdownPhrase = remaining.Humanize()
	data.WatchModels = renderer.config.WatchModels
	data.Features = renderer.config.Features
	return execute(renderer.landingTemplate, data)
}

// Dashboard renders the dashboard shell. Values arrive over the event stream.
func (renderer *PageRenderer) Dashboard(activeTheme theme.Theme) ([]byte, error) {
	data, err := renderer.baseData(activeTheme, DashboardEventsAPIPath)
	if err != nil {
		return nil, err
	}
	return execute(renderer.dashboardTemplate, data)
}

func (renderer *PageRenderer) baseData(activeTheme theme.Theme, streamPath string) (pageTemplateData, error) {
	footerHTML, footerErr := renderPageFooter(renderer.config.BrandName, activeTheme)
	if footerErr != nil {
		return pageTemplateData{}, footerErr
	}
	return pageTemplateData{
		BrandName:       renderer.config.BrandName,
		Theme:           activeTheme,
		SharedStyles:    template.CSS(sharedPageStylesCSS),
		FooterHTML:      footerHTML,
		StreamPath:      streamPath,
		ThemeTogglePath: ThemeToggleAPIPath,
		LiveScriptPath:  LiveScriptPath,
	}, nil
}

func execute(pageTemplate *template.Template, data pageTemplateData) ([]byte, error) {
	var buffer bytes.Buffer
	if err := pageTemplate.Execute(&buffer, data); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// LiveScript returns the client script that applies stream events.
func LiveScript() []byte {
	return append([]byte(nil), liveScriptJS...)
}

// PageHandlers serves the two HTML pages and the client script.
type PageHandlers struct {
	logger   *zap.Logger
	renderer *PageRenderer
	sessions *ThemeSessions
}

func NewPageHandlers(logger *zap.Logger, renderer *PageRenderer, themeSessions *ThemeSessions) *PageHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PageHandlers{logger: logger, renderer: renderer, sessions: themeSessions}
}

// RenderLandingPage writes the landing page in the browser's stored theme.
func (handlers *PageHandlers) RenderLandingPage(ginContext *gin.Context) {
	body, renderErr := handlers.renderer.Landing(handlers.storedTheme(ginContext))
	if renderErr != nil {
		handlers.logger.Error("render_landing_page", zap.Error(renderErr))
		ginContext.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "landing_render_failed"})
		return
	}
	ginContext.Data(http.StatusOK, htmlContentType, body)
}

// RenderDashboardPage writes the dashboard shell in the browser's stored theme.
func (handlers *PageHandlers) RenderDashboardPage(ginContext *gin.Context) {
	body, renderErr := handlers.renderer.Dashboard(handlers.storedTheme(ginContext))
	if renderErr != nil {
		handlers.logger.Error("render_dashboard_page", zap.Error(renderErr))
		ginContext.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "dashboard_render_failed"})
		return
	}
	ginContext.Data(http.StatusOK, htmlContentType, body)
}

// LiveScript serves the client script.
func (handlers *PageHandlers) LiveScript(ginContext *gin.Context) {
	ginContext.Data(http.StatusOK, javaScriptContentType, liveScriptJS)
}

func (handlers *PageHandlers) storedTheme(ginContext *gin.Context) theme.Theme {
	if handlers.sessions == nil {
		return theme.Default
	}
	return theme.NewPreference(handlers.sessions.Open(ginContext), nil).Stored()
}
