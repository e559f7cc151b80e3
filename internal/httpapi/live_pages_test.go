package httpapi_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MarkoPoloResearchLab/watchlaunch/internal/httpapi"
	"github.com/MarkoPoloResearchLab/watchlaunch/internal/theme"
)

type recordingThemedPage struct {
	mutex  sync.Mutex
	themes []theme.Theme
}

func (page *recordingThemedPage) SetTheme(next theme.Theme) {
	page.mutex.Lock()
	defer page.mutex.Unlock()
	page.themes = append(page.themes, next)
}

func (page *recordingThemedPage) received() []theme.Theme {
	page.mutex.Lock()
	defer page.mutex.Unlock()
	return append([]theme.Theme(nil), page.themes...)
}

func TestLivePageRegistryScopesThemeToSession(t *testing.T) {
	registry := httpapi.NewLivePageRegistry()
	firstPage := &recordingThemedPage{}
	secondPage := &recordingThemedPage{}
	otherPage := &recordingThemedPage{}

	unregisterFirst := registry.Register("session-a", firstPage)
	unregisterSecond := registry.Register("session-a", secondPage)
	unregisterOther := registry.Register("session-b", otherPage)
	defer unregisterOther()

	require.Equal(t, 2, registry.Count("session-a"))
	require.Equal(t, 2, registry.ApplyTheme("session-a", theme.Dark))
	require.Equal(t, []theme.Theme{theme.Dark}, firstPage.received())
	require.Equal(t, []theme.Theme{theme.Dark}, secondPage.received())
	require.Empty(t, otherPage.received())

	unregisterFirst()
	unregisterFirst()
	require.Equal(t, 1, registry.Count("session-a"))
	unregisterSecond()
	require.Zero(t, registry.Count("session-a"))
	require.Zero(t, registry.ApplyTheme("session-a", theme.Light))
}

func TestLivePageRegistryIgnoresIncompleteRegistrations(t *testing.T) {
	registry := httpapi.NewLivePageRegistry()
	registry.Register("", &recordingThemedPage{})()
	registry.Register("session", nil)()
	require.Zero(t, registry.Count(""))
	require.Zero(t, registry.Count("session"))

	var nilRegistry *httpapi.LivePageRegistry
	require.Zero(t, nilRegistry.ApplyTheme("session", theme.Dark))
	require.Zero(t, nilRegistry.Count("session"))
}
