package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/securecookie"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/MarkoPoloResearchLab/watchlaunch/internal/dashboard"
	"github.com/MarkoPoloResearchLab/watchlaunch/internal/httpapi"
	"github.com/MarkoPoloResearchLab/watchlaunch/internal/interest"
	"github.com/MarkoPoloResearchLab/watchlaunch/internal/storage"
)

const (
	commandUseName                 = "server"
	commandShortDescription        = "Run the watch launch server"
	commandLongDescription         = "Serve the launch landing page and the live interest dashboard"
	missingConfigurationMessage    = "missing required configuration"
	invalidConfigurationMessage    = "invalid configuration"
	loggerCreationErrorMessage     = "logger"
	logEventListening              = "listening"
	logEventRandomSessionSecret    = "session_secret_generated"
	logFieldAddress                = "addr"
	logFieldDriver                 = "driver"
	loggerContextOpenDatabase      = "open_db"
	loggerContextAutoMigrate       = "migrate"
	loggerContextCloseDatabase     = "close_db"
	loggerContextServer            = "server"
	readHeaderTimeoutSeconds       = 5
	sessionSecretLength            = 32
	unexpectedArgumentsMessage     = "unexpected command arguments"
	commandInitializationFailure   = "failed to configure command"
	flagNotDefinedMessage          = "flag %s not defined"
	environmentConfigurationError  = "failed to apply environment configuration"
	launchAtLayout                 = "2006-01-02T15:04:05"
	defaultApplicationAddress      = ":8080"
	defaultDatabaseDriver          = storage.DriverNameSQLite
	defaultLaunchAt                = "2025-04-15T00:00:00"
	defaultTimezone                = "Local"
	defaultRefreshInterval         = "30s"
	defaultDayLabelLayout          = dashboard.DefaultDayLabelLayout
	defaultTimelineOrder           = string(dashboard.TimelineOrderChronological)
	defaultSecureCookies           = "false"
	flagNameApplicationAddress     = "app-addr"
	flagNameDatabaseDriver         = "db-driver"
	flagNameDatabaseDataSourceName = "db-dsn"
	flagNameSessionSecret          = "session-secret"
	flagNameSecureCookies          = "secure-cookies"
	flagNameLaunchAt               = "launch-at"
	flagNameTimezone               = "timezone"
	flagNameRefreshInterval        = "refresh-interval"
	flagNameDayLabelLayout         = "day-label-layout"
	flagNameTimelineOrder          = "timeline-order"
	flagNameBrandName              = "brand-name"
	environmentKeyApplicationAddr  = "APP_ADDR"
	environmentKeyDatabaseDriver   = "DB_DRIVER"
	environmentKeyDatabaseDSN      = "DB_DSN"
	environmentKeySessionSecret    = "SESSION_SECRET"
	environmentKeySecureCookies    = "SECURE_COOKIES"
	environmentKeyLaunchAt         = "LAUNCH_AT"
	environmentKeyTimezone         = "TIMEZONE"
	environmentKeyRefreshInterval  = "REFRESH_INTERVAL"
	environmentKeyDayLabelLayout   = "DAY_LABEL_LAYOUT"
	environmentKeyTimelineOrder    = "TIMELINE_ORDER"
	environmentKeyBrandName        = "BRAND_NAME"
)

type configurationFlag struct {
	environmentKey string
	flagName       string
	defaultValue   string
	usage          string
}

var configurationFlags = []configurationFlag{
	{environmentKey: environmentKeyApplicationAddr, flagName: flagNameApplicationAddress, defaultValue: defaultApplicationAddress, usage: "address for the HTTP server to listen on"},
	{environmentKey: environmentKeyDatabaseDriver, flagName: flagNameDatabaseDriver, defaultValue: defaultDatabaseDriver, usage: "database driver (sqlite or postgres)"},
	{environmentKey: environmentKeyDatabaseDSN, flagName: flagNameDatabaseDataSourceName, defaultValue: "", usage: "database connection string"},
	{environmentKey: environmentKeySessionSecret, flagName: flagNameSessionSecret, defaultValue: "", usage: "secret used to sign the theme preference cookie"},
	{environmentKey: environmentKeySecureCookies, flagName: flagNameSecureCookies, defaultValue: defaultSecureCookies, usage: "mark the theme preference cookie as Secure"},
	{environmentKey: environmentKeyLaunchAt, flagName: flagNameLaunchAt, defaultValue: defaultLaunchAt, usage: "launch moment the countdown targets (2006-01-02T15:04:05 or RFC 3339)"},
	{environmentKey: environmentKeyTimezone, flagName: flagNameTimezone, defaultValue: defaultTimezone, usage: "IANA location for the launch moment and the day labels"},
	{environmentKey: environmentKeyRefreshInterval, flagName: flagNameRefreshInterval, defaultValue: defaultRefreshInterval, usage: "dashboard polling interval"},
	{environmentKey: environmentKeyDayLabelLayout, flagName: flagNameDayLabelLayout, defaultValue: defaultDayLabelLayout, usage: "Go layout for the per-day timeline labels"},
	{environmentKey: environmentKeyTimelineOrder, flagName: flagNameTimelineOrder, defaultValue: defaultTimelineOrder, usage: "timeline ordering (chronological or first-seen)"},
	{environmentKey: environmentKeyBrandName, flagName: flagNameBrandName, defaultValue: "", usage: "brand shown in the page headers and footer"},
}

// ServerConfig captures configuration needed to run the server.
type ServerConfig struct {
	ApplicationAddress     string
	DatabaseDriverName     string
	DatabaseDataSourceName string
	SessionSecret          []byte
	SecureCookies          bool
	BrandName              string
	LaunchAt               time.Time
	Location               *time.Location
	RefreshInterval        time.Duration
	DayLabelLayout         string
	TimelineOrder          dashboard.TimelineOrder
}

// DatabaseOpener opens a database connection for the configured driver.
type DatabaseOpener func(storage.Config) (*gorm.DB, error)

// ServerApplication constructs and executes the server command.
type ServerApplication struct {
	configurationLoader *viper.Viper
	databaseOpener      DatabaseOpener
}

// NewServerApplication creates a ServerApplication with default dependencies.
func NewServerApplication() *ServerApplication {
	return &ServerApplication{
		configurationLoader: viper.New(),
		databaseOpener:      storage.OpenDatabase,
	}
}

// WithDatabaseOpener overrides the database opener dependency.
func (application *ServerApplication) WithDatabaseOpener(databaseOpener DatabaseOpener) *ServerApplication {
	application.databaseOpener = databaseOpener
	return application
}

// Command builds the Cobra command for the server.
func (application *ServerApplication) Command() (*cobra.Command, error) {
	rootCommand := &cobra.Command{
		Use:   commandUseName,
		Short: commandShortDescription,
		Long:  commandLongDescription,
		RunE:  application.runCommand,
	}

	if configurationErr := application.configureCommand(rootCommand); configurationErr != nil {
		return nil, configurationErr
	}

	return rootCommand, nil
}

func (application *ServerApplication) configureCommand(command *cobra.Command) error {
	commandFlags := command.Flags()
	for _, configuration := range configurationFlags {
		application.configurationLoader.SetDefault(configuration.environmentKey, configuration.defaultValue)
		commandFlags.String(configuration.flagName, configuration.defaultValue, configuration.usage)
	}
	application.configurationLoader.AutomaticEnv()

	for _, configuration := range configurationFlags {
		if bindErr := application.bindFlag(commandFlags, configuration.environmentKey, configuration.flagName); bindErr != nil {
			return bindErr
		}
		if environmentErr := application.applyEnvironmentConfiguration(commandFlags, configuration.environmentKey, configuration.flagName); environmentErr != nil {
			return environmentErr
		}
	}

	if markErr := command.MarkFlagRequired(flagNameDatabaseDataSourceName); markErr != nil {
		return markErr
	}

	return nil
}

func (application *ServerApplication) bindFlag(flagSet *pflag.FlagSet, environmentKey string, flagName string) error {
	flag := flagSet.Lookup(flagName)
	if flag == nil {
		return fmt.Errorf(flagNotDefinedMessage, flagName)
	}

	if bindErr := application.configurationLoader.BindPFlag(environmentKey, flag); bindErr != nil {
		return bindErr
	}

	return nil
}

func (application *ServerApplication) applyEnvironmentConfiguration(flagSet *pflag.FlagSet, environmentKey string, flagName string) error {
	environmentValue, environmentFound := os.LookupEnv(environmentKey)
	if !environmentFound {
		return nil
	}

	if setErr := flagSet.Set(flagName, environmentValue); setErr != nil {
		return fmt.Errorf("%s: %w", environmentConfigurationError, setErr)
	}

	return nil
}

func (application *ServerApplication) runCommand(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return fmt.Errorf("%s: %s", unexpectedArgumentsMessage, strings.Join(arguments, " "))
	}

	serverConfig, configErr := application.loadServerConfig()
	if configErr != nil {
		return configErr
	}

	logger, loggerErr := zap.NewProduction()
	if loggerErr != nil {
		return fmt.Errorf("%s: %w", loggerCreationErrorMessage, loggerErr)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if len(serverConfig.SessionSecret) == 0 {
		serverConfig.SessionSecret = securecookie.GenerateRandomKey(sessionSecretLength)
		logger.Warn(logEventRandomSessionSecret)
	}

	database, databaseErr := application.databaseOpener(storage.Config{
		DriverName:     serverConfig.DatabaseDriverName,
		DataSourceName: serverConfig.DatabaseDataSourceName,
	})
	if databaseErr != nil {
		logger.Fatal(loggerContextOpenDatabase, zap.String(logFieldDriver, serverConfig.DatabaseDriverName), zap.Error(databaseErr))
	}
	defer func() {
		if closeErr := storage.Close(database); closeErr != nil {
			logger.Warn(loggerContextCloseDatabase, zap.Error(closeErr))
		}
	}()

	if migrateErr := storage.AutoMigrate(database); migrateErr != nil {
		logger.Fatal(loggerContextAutoMigrate, zap.Error(migrateErr))
	}

	broadcaster := httpapi.NewSubmissionEventBroadcaster()
	defer broadcaster.Close()

	router := buildRouter(logger, database, broadcaster, serverConfig)

	httpServer := &http.Server{
		Addr:              serverConfig.ApplicationAddress,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeoutSeconds * time.Second,
	}

	logger.Info(logEventListening, zap.String(logFieldAddress, serverConfig.ApplicationAddress))
	if serveErr := httpServer.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
		logger.Fatal(loggerContextServer, zap.Error(serveErr))
	}

	return nil
}

func buildRouter(logger *zap.Logger, database *gorm.DB, broadcaster *httpapi.SubmissionEventBroadcaster, serverConfig ServerConfig) *gin.Engine {
	store := storage.NewSubmissionStore(database)
	registry := httpapi.NewLivePageRegistry()
	themeSessions := httpapi.NewThemeSessions(serverConfig.SessionSecret, serverConfig.SecureCookies, logger)

	submitter := interest.NewSubmitter(store, logger, interest.WithSubmittedHook(broadcaster.BroadcastSubmission))
	renderer := httpapi.NewPageRenderer(httpapi.PageConfig{
		BrandName: serverConfig.BrandName,
		LaunchAt:  serverConfig.LaunchAt,
	})

	handlers := routeHandlers{
		pages:    httpapi.NewPageHandlers(logger, renderer, themeSessions),
		interest: httpapi.NewInterestHandlers(submitter, logger),
		dashboard: httpapi.NewDashboardHandlers(store, logger, httpapi.DashboardConfig{
			RefreshInterval: serverConfig.RefreshInterval,
			Summary: dashboard.SummarizeOptions{
				Location:       serverConfig.Location,
				DayLabelLayout: serverConfig.DayLabelLayout,
				TimelineOrder:  serverConfig.TimelineOrder,
			},
		}, themeSessions, registry, broadcaster),
		countdown: httpapi.NewCountdownHandlers(logger, httpapi.CountdownConfig{LaunchAt: serverConfig.LaunchAt}, themeSessions, registry),
		theme:     httpapi.NewThemeHandlers(logger, themeSessions, registry),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(httpapi.RequestLogger(logger))
	registerRoutes(router, handlers)
	return router
}

func (application *ServerApplication) loadServerConfig() (ServerConfig, error) {
	loader := application.configurationLoader
	serverConfig := ServerConfig{
		ApplicationAddress:     strings.TrimSpace(loader.GetString(environmentKeyApplicationAddr)),
		DatabaseDriverName:     strings.ToLower(strings.TrimSpace(loader.GetString(environmentKeyDatabaseDriver))),
		DatabaseDataSourceName: strings.TrimSpace(loader.GetString(environmentKeyDatabaseDSN)),
		SessionSecret:          []byte(strings.TrimSpace(loader.GetString(environmentKeySessionSecret))),
		SecureCookies:          loader.GetBool(environmentKeySecureCookies),
		BrandName:              strings.TrimSpace(loader.GetString(environmentKeyBrandName)),
		DayLabelLayout:         strings.TrimSpace(loader.GetString(environmentKeyDayLabelLayout)),
	}

	if validationErr := ensureRequiredConfiguration(serverConfig); validationErr != nil {
		return ServerConfig{}, validationErr
	}

	var invalidParameters []string

	location, locationErr := time.LoadLocation(strings.TrimSpace(loader.GetString(environmentKeyTimezone)))
	if locationErr != nil {
		invalidParameters = append(invalidParameters, flagNameTimezone)
		location = time.Local
	}
	serverConfig.Location = location

	launchAt, launchErr := parseLaunchAt(loader.GetString(environmentKeyLaunchAt), location)
	if launchErr != nil {
		invalidParameters = append(invalidParameters, flagNameLaunchAt)
	}
	serverConfig.LaunchAt = launchAt

	refreshInterval, refreshErr := time.ParseDuration(strings.TrimSpace(loader.GetString(environmentKeyRefreshInterval)))
	if refreshErr != nil || refreshInterval <= 0 {
		invalidParameters = append(invalidParameters, flagNameRefreshInterval)
	}
	serverConfig.RefreshInterval = refreshInterval

	timelineOrder, orderKnown := dashboard.ParseTimelineOrder(loader.GetString(environmentKeyTimelineOrder))
	if !orderKnown {
		invalidParameters = append(invalidParameters, flagNameTimelineOrder)
	}
	serverConfig.TimelineOrder = timelineOrder

	if len(invalidParameters) > 0 {
		return ServerConfig{}, fmt.Errorf("%s: %s", invalidConfigurationMessage, strings.Join(invalidParameters, ", "))
	}

	return serverConfig, nil
}

// parseLaunchAt accepts a wall-clock moment in the configured location or an RFC 3339 instant.
func parseLaunchAt(rawValue string, location *time.Location) (time.Time, error) {
	trimmed := strings.TrimSpace(rawValue)
	if launchAt, parseErr := time.ParseInLocation(launchAtLayout, trimmed, location); parseErr == nil {
		return launchAt, nil
	}
	return time.Parse(time.RFC3339, trimmed)
}

func ensureRequiredConfiguration(configuration ServerConfig) error {
	var missingParameters []string

	if configuration.DatabaseDataSourceName == "" {
		missingParameters = append(missingParameters, flagNameDatabaseDataSourceName)
	}

	if configuration.DatabaseDriverName == "" {
		missingParameters = append(missingParameters, flagNameDatabaseDriver)
	}

	if len(missingParameters) == 0 {
		return nil
	}

	return fmt.Errorf("%s: %s", missingConfigurationMessage, strings.Join(missingParameters, ", "))
}

func main() {
	application := NewServerApplication()
	rootCommand, commandErr := application.Command()
	if commandErr != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", commandInitializationFailure, commandErr)
		os.Exit(1)
	}

	if executeErr := rootCommand.Execute(); executeErr != nil {
		os.Exit(1)
	}
}
