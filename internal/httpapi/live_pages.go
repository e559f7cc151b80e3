package httpapi

import (
	"sync"

	"github.com/MarkoPoloResearchLab/watchlaunch/internal/theme"
)

// ThemedPage is a live page that can be re-themed from outside its connection.
type ThemedPage interface {
	SetTheme(theme.Theme)
}

// LivePageRegistry tracks the open pages of each theme session.
type LivePageRegistry struct {
	mutex  sync.Mutex
	nextID uint64
	pages  map[string]map[uint64]ThemedPage
}

func NewLivePageRegistry() *LivePageRegistry {
	return &LivePageRegistry{pages: make(map[string]map[uint64]ThemedPage)}
}

// Register adds page under sessionID and returns the function that removes it.
func (registry *LivePageRegistry) Register(sessionID string, page ThemedPage) func() {
	if registry == nil || page == nil || sessionID == "" {
		return func() {}
	}
	registry.mutex.Lock()
	identifier := registry.nextID
	registry.nextID++
	sessionPages, found := registry.pages[sessionID]
	if !found {
		sessionPages = make(map[uint64]ThemedPage)
		registry.pages[sessionID] = sessionPages
	}
	sessionPages[identifier] = page
	registry.mutex.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			registry.mutex.Lock()
			defer registry.mutex.Unlock()
			sessionPages := registry.pages[sessionID]
			delete(sessionPages, identifier)
			if len(sessionPages) == 0 {
				delete(registry.pages, sessionID)
			}
		})
	}
}

// ApplyTheme re-themes every open page of the session and returns how many were reached.
func (registry *LivePageRegistry) ApplyTheme(sessionID string, activeTheme theme.Theme) int {
	if registry == nil {
		return 0
	}
	registry.mutex.Lock()
	targets := make([]ThemedPage, 0, len(registry.pages[sessionID]))
	for _, page := range registry.pages[sessionID] {
		targets = append(targets, page)
	}
	registry.mutex.Unlock()

	for _, page := range targets {
		page.SetTheme(activeTheme)
	}
	return len(targets)
}

// Count returns the number of open pages of the session.
func (registry *LivePageRegistry) Count(sessionID string) int {
	if registry == nil {
		return 0
	}
	registry.mutex.Lock()
	defer registry.mutex.Unlock()
	return len(registry.pages[sessionID])
}

// sessionSurface forwards theme changes made through the API to the session's open pages.
type sessionSurface struct {
	registry  *LivePageRegistry
	sessionID string
}

func (surface sessionSurface) ApplyTheme(activeTheme theme.Theme, _ string) {
	surface.registry.ApplyTheme(surface.sessionID, activeTheme)
}
