// Package theme persists the light/dark preference and fans changes out to the page.
package theme

import (
	"strings"
	"sync"
)

// Theme is the visual mode applied to the page root.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"

	// Default applies when nothing valid is stored.
	Default = Light

	// StorageKey names the persisted preference entry.
	StorageKey = "theme"

	// RootAttribute is the attribute carrying the theme on the visual root.
	RootAttribute = "data-theme"

	// IconSun is shown while the dark theme is active, offering the way back to light.
	IconSun = "fa-sun"
	// IconMoon is shown while the light theme is active.
	IconMoon = "fa-moon"
)

// Parse normalizes a stored or submitted value. Anything other than "dark" is light.
func Parse(raw string) Theme {
	if Theme(strings.ToLower(strings.TrimSpace(raw))) == Dark {
		return Dark
	}
	return Light
}

// Valid reports whether raw names one of the two themes exactly.
func Valid(raw string) bool {
	normalized := Theme(strings.ToLower(strings.TrimSpace(raw)))
	return normalized == Light || normalized == Dark
}

// Opposite returns the theme the toggle control switches to.
func (theme Theme) Opposite() Theme {
	if theme == Dark {
		return Light
	}
	return Dark
}

// Icon returns the toggle icon class for the theme.
func (theme Theme) Icon() string {
	if theme == Dark {
		return IconSun
	}
	return IconMoon
}

func (theme Theme) String() string {
	return string(theme)
}

// Store is the key-value persistence behind the preference. Write failures are the adapter's concern.
type Store interface {
	Get(key string) (string, bool)
	Set(key string, value string)
}

// Surface applies the theme to the visual root and the toggle icon.
type Surface interface {
	ApplyTheme(theme Theme, icon string)
}

// Listener is notified after every Set.
type Listener func(Theme)

// Preference owns the current theme for one page.
type Preference struct {
	mutex     sync.Mutex
	store     Store
	surface   Surface
	current   Theme
	listeners []Listener
}

// NewPreference builds a Preference. A nil store falls back to memory; a nil surface is skipped.
func NewPreference(store Store, surface Surface) *Preference {
	if store == nil {
		store = NewMemoryStore()
	}
	return &Preference{
		store:   store,
		surface: surface,
		current: Default,
	}
}

// Stored reads the persisted theme without applying it.
func (preference *Preference) Stored() Theme {
	storedValue, found := preference.store.Get(StorageKey)
	if !found {
		return Default
	}
	return Parse(storedValue)
}

// Current returns the last applied theme.
func (preference *Preference) Current() Theme {
	preference.mutex.Lock()
	defer preference.mutex.Unlock()
	return preference.current
}

// Subscribe registers a listener for subsequent changes.
func (preference *Preference) Subscribe(listener Listener) {
	if listener == nil {
		return
	}
	preference.mutex.Lock()
	preference.listeners = append(preference.listeners, listener)
	preference.mutex.Unlock()
}

// Init applies the stored theme, or the default when none is stored.
func (preference *Preference) Init() Theme {
	stored := preference.Stored()
	preference.Set(stored)
	return stored
}

// Set persists the theme, applies it to the surface and notifies listeners.
func (preference *Preference) Set(theme Theme) {
	theme = Parse(string(theme))

	preference.mutex.Lock()
	preference.current = theme
	listeners := append([]Listener(nil), preference.listeners...)
	preference.mutex.Unlock()

	preference.store.Set(StorageKey, string(theme))
	if preference.surface != nil {
		preference.surface.ApplyTheme(theme, theme.Icon())
	}
	for _, listener := range listeners {
		listener(theme)
	}
}

// Toggle switches to the opposite of the current theme and returns it.
func (preference *Preference) Toggle() Theme {
	next := preference.Current().Opposite()
	preference.Set(next)
	return next
}
