package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	themeSessionName     = "watchlaunch_preferences"
	themeSessionIDKey    = "sid"
	themeSessionLifetime = 365 * 24 * time.Hour
)

// ThemeSessions keeps the theme preference of each browser in a signed cookie.
type ThemeSessions struct {
	store  sessions.Store
	logger *zap.Logger
}

// NewThemeSessions builds a cookie-backed session store signed with secret.
func NewThemeSessions(secret []byte, secureCookies bool, logger *zap.Logger) *ThemeSessions {
	if logger == nil {
		logger = zap.NewNop()
	}
	cookieStore := sessions.NewCookieStore(secret)
	cookieStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(themeSessionLifetime.Seconds()),
		HttpOnly: true,
		Secure:   secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	return &ThemeSessions{store: cookieStore, logger: logger}
}

// Open loads the request's session. A session id is assigned and saved on first use,
// so Open must run before the response header is written.
func (themeSessions *ThemeSessions) Open(ginContext *gin.Context) *SessionThemeStore {
	session, loadErr := themeSessions.store.Get(ginContext.Request, themeSessionName)
	if loadErr != nil {
		themeSessions.logger.Debug("load_theme_session_failed", zap.Error(loadErr))
	}
	store := &SessionThemeStore{
		session: session,
		request: ginContext.Request,
		writer:  ginContext.Writer,
		logger:  themeSessions.logger,
	}
	if _, found := session.Values[themeSessionIDKey].(string); !found {
		session.Values[themeSessionIDKey] = uuid.NewString()
		store.save()
	}
	return store
}

// SessionThemeStore adapts one request's session to theme.Store.
type SessionThemeStore struct {
	session *sessions.Session
	request *http.Request
	writer  http.ResponseWriter
	logger  *zap.Logger
}

// ID returns the session identifier used to find the browser's open pages.
func (store *SessionThemeStore) ID() string {
	identifier, _ := store.session.Values[themeSessionIDKey].(string)
	return identifier
}

func (store *SessionThemeStore) Get(key string) (string, bool) {
	value, found := store.session.Values[key].(string)
	return value, found
}

// Set stores the value and writes the cookie. Write failures are logged only.
func (store *SessionThemeStore) Set(key string, value string) {
	store.session.Values[key] = value
	store.save()
}

func (store *SessionThemeStore) save() {
	if saveErr := store.session.Save(store.request, store.writer); saveErr != nil {
		store.logger.Warn("save_theme_session_failed", zap.Error(saveErr))
	}
}
