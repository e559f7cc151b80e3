package footer

import (
	"bytes"
	"errors"
	"html/template"
	"strings"
)

// ErrMissingElementID indicates the footer was configured without a root element id.
var ErrMissingElementID = errors.New("footer: missing element id")

// Link describes a navigation entry displayed in the footer.
type Link struct {
	Label    string
	URL      string
	External bool
}

// Config captures the markup and style hooks required to render the footer.
type Config struct {
	ElementID         string
	BaseClass         string
	InnerClass        string
	BrandClass        string
	BrandText         string
	LinkClass         string
	Links             []Link
	ThemeToggleID     string
	ThemeToggleClass  string
	ThemeIconClass    string
	ThemeAriaLabel    string
	ThemeToggleHidden bool
}

var (
	footerTemplate = template.Must(template.New("footer").Option("missingkey=error").Parse(`<footer id="{{.ElementID}}" class="{{.BaseClass}}">
  <div class="{{.InnerClass}}">
    <span class="{{.BrandClass}}">{{.BrandText}}</span>
    {{range .Links}}<a class="{{$.LinkClass}}" href="{{.URL}}"{{if .External}} target="_blank" rel="noopener noreferrer"{{end}}>{{.Label}}</a>
    {{end}}{{if not .ThemeToggleHidden}}<button id="{{.ThemeToggleID}}" class="{{.ThemeToggleClass}}" type="button" aria-label="{{.ThemeAriaLabel}}"><i class="fas {{.ThemeIconClass}}"></i></button>{{end}}
  </div>
</footer>`))
)

// Render returns the footer HTML for the provided configuration.
func Render(config Config) (template.HTML, error) {
	if strings.TrimSpace(config.ElementID) == "" {
		return "", ErrMissingElementID
	}
	var buffer bytes.Buffer
	if err := footerTemplate.Execute(&buffer, config); err != nil {
		return "", err
	}
	return template.HTML(buffer.String()), nil
}
