// Package viewstate models what the viewer shows as a plain value with pure
// transitions. The hub serializes it to every connected client.
package viewstate

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/erkantaylan/markview/internal/document"
	"github.com/erkantaylan/markview/internal/markdown"
)

type Status string

const (
	StatusEmpty   Status = "empty"
	StatusLoading Status = "loading"
	StatusLoaded  Status = "loaded"
	StatusError   Status = "error"
)

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// ParseTheme accepts light, dark or system in any case.
func ParseTheme(s string) (Theme, error) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(s))); t {
	case ThemeLight, ThemeDark, ThemeSystem:
		return t, nil
	default:
		return "", fmt.Errorf("invalid theme '%s': must be one of: light, dark, system", s)
	}
}

// State is the full view sent to clients.
type State struct {
	Status   Status              `json:"status"`
	Path     string              `json:"path,omitempty"`
	Filename string              `json:"filename,omitempty"`
	Title    string              `json:"title"`
	HTML     string              `json:"html,omitempty"`
	TOC      []markdown.TocEntry `json:"toc"`
	Info     *document.Info      `json:"info,omitempty"`
	Error    string              `json:"error,omitempty"`
	Theme    Theme               `json:"theme"`
}

// Initial is the state before any file is opened.
func Initial(theme Theme) State {
	return State{
		Status: StatusEmpty,
		Title:  document.FallbackTitle,
		TOC:    []markdown.TocEntry{},
		Theme:  theme,
	}
}

// Loading marks path as being read. Reloading the file already shown keeps
// its content so clients do not flash an empty page.
func (s State) Loading(path string) State {
	if s.Path == path && s.Status == StatusLoaded {
		s.Status = StatusLoading
		return s
	}
	next := Initial(s.Theme)
	next.Status = StatusLoading
	next.Path = path
	next.Filename = filepath.Base(path)
	return next
}

// Loaded shows a rendered document.
func (s State) Loaded(doc *document.Document, res markdown.Result) State {
	info := doc.Info
	toc := res.TOC
	if toc == nil {
		toc = []markdown.TocEntry{}
	}
	return State{
		Status:   StatusLoaded,
		Path:     doc.Path,
		Filename: filepath.Base(doc.Path),
		Title:    doc.Title,
		HTML:     res.HTML,
		TOC:      toc,
		Info:     &info,
		Theme:    s.Theme,
	}
}

// Failed reports an error opening or reading path.
func (s State) Failed(path string, err error) State {
	next := Initial(s.Theme)
	next.Status = StatusError
	next.Path = path
	if path != "" {
		next.Filename = filepath.Base(path)
	}
	if err != nil {
		next.Error = err.Error()
	}
	return next
}

// WithTheme changes the theme preference and nothing else.
func (s State) WithTheme(theme Theme) State {
	s.Theme = theme
	return s
}

// Closed drops the current document but keeps preferences.
func (s State) Closed() State {
	return Initial(s.Theme)
}
