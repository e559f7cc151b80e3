package main

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/MarkoPoloResearchLab/watchlaunch/internal/httpapi"
)

const (
	corsOriginWildcard      = "*"
	corsHeaderContentType   = "Content-Type"
	corsPreflightMaxAge     = 12 * time.Hour
	rootRedirectDestination = httpapi.LandingPagePath
)

var (
	corsAllowedMethods = []string{http.MethodPost, http.MethodOptions}
	corsAllowedHeaders = []string{corsHeaderContentType}
	corsExposedHeaders = []string{corsHeaderContentType}
)

type routeHandlers struct {
	pages     *httpapi.PageHandlers
	interest  *httpapi.InterestHandlers
	dashboard *httpapi.DashboardHandlers
	countdown *httpapi.CountdownHandlers
	theme     *httpapi.ThemeHandlers
}

func registerRoutes(router *gin.Engine, handlers routeHandlers) {
	registerFrontendRoutes(router, handlers)
	registerBackendRoutes(router, handlers)
}

func registerFrontendRoutes(router *gin.Engine, handlers routeHandlers) {
	router.GET("/", func(context *gin.Context) {
		context.Redirect(http.StatusFound, rootRedirectDestination)
	})

	pageGroup := router.Group("/")
	pageGroup.Use(httpapi.NoStore())
	pageGroup.GET(httpapi.LandingPagePath, handlers.pages.RenderLandingPage)
	pageGroup.GET(httpapi.DashboardPagePath, handlers.pages.RenderDashboardPage)
	router.GET(httpapi.LiveScriptPath, handlers.pages.LiveScript)
}

func registerBackendRoutes(router *gin.Engine, handlers routeHandlers) {
	publicCORS := cors.New(cors.Config{
		AllowOrigins:     []string{corsOriginWildcard},
		AllowMethods:     corsAllowedMethods,
		AllowHeaders:     corsAllowedHeaders,
		ExposeHeaders:    corsExposedHeaders,
		AllowCredentials: false,
		MaxAge:           corsPreflightMaxAge,
	})
	interestGroup := router.Group(httpapi.InterestAPIPath)
	interestGroup.Use(publicCORS)
	interestGroup.POST("", handlers.interest.CreateSubmission)
	interestGroup.OPTIONS("", func(context *gin.Context) {
		context.Status(http.StatusNoContent)
	})

	streamGroup := router.Group("/")
	streamGroup.Use(httpapi.NoStore())
	streamGroup.GET(httpapi.DashboardEventsAPIPath, handlers.dashboard.StreamEvents)
	streamGroup.GET(httpapi.CountdownEventsAPIPath, handlers.countdown.StreamEvents)

	router.GET(httpapi.DashboardSummaryAPIPath, handlers.dashboard.Summary)
	router.GET(httpapi.ThemeAPIPath, handlers.theme.CurrentTheme)
	router.PUT(httpapi.ThemeAPIPath, handlers.theme.UpdateTheme)
	router.POST(httpapi.ThemeToggleAPIPath, handlers.theme.ToggleTheme)
}
