// Package viewer ties documents, the renderer and the file watcher together
// behind the actions a connected client can request.
package viewer

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/erkantaylan/markview/internal/document"
	"github.com/erkantaylan/markview/internal/logger"
	"github.com/erkantaylan/markview/internal/markdown"
	"github.com/erkantaylan/markview/internal/viewstate"
	"github.com/erkantaylan/markview/internal/watcher"
)

// ErrNoDocument is returned by Reload when nothing is open.
var ErrNoDocument = errors.New("no document open")

// Publisher receives every state the session moves through.
type Publisher interface {
	Publish(state viewstate.State)
}

// Session holds the open document and keeps it in sync with the file on disk.
type Session struct {
	renderer *markdown.Renderer
	pub      Publisher
	watcher  *watcher.Watcher
	log      *logger.Logger

	mu    sync.Mutex
	state viewstate.State
}

func NewSession(r *markdown.Renderer, pub Publisher, w *watcher.Watcher, initial viewstate.State, log *logger.Logger) *Session {
	if log == nil {
		log = logger.Discard()
	}
	return &Session{
		renderer: r,
		pub:      pub,
		watcher:  w,
		log:      log,
		state:    initial,
	}
}

// State returns the last published state.
func (s *Session) State() viewstate.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Open loads path, publishes it and starts watching it for changes.
func (s *Session) Open(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("path is required")
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(absPath); err != nil {
		return err
	}

	if s.watcher != nil {
		if err := s.watcher.Watch(absPath, func() { s.changed(absPath) }); err != nil {
			s.log.WatcherError(err)
		}
	}
	return nil
}

// Reload reads the open document again.
func (s *Session) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Path == "" {
		return ErrNoDocument
	}
	return s.loadLocked(s.state.Path)
}

// SetTheme changes the theme preference.
func (s *Session) SetTheme(theme viewstate.Theme) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setLocked(s.state.WithTheme(theme))
	return nil
}

// Close stops watching and clears the view.
func (s *Session) Close() error {
	var err error
	if s.watcher != nil {
		err = s.watcher.Close()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(s.state.Closed())
	return err
}

func (s *Session) changed(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// A callback from the previous file can fire after Open moved on.
	if s.state.Path != path {
		return
	}
	s.log.FileChanged(path)
	_ = s.loadLocked(path)
}

func (s *Session) loadLocked(path string) error {
	s.setLocked(s.state.Loading(path))

	doc, err := document.Load(path)
	if err != nil {
		s.log.FileError(path, err)
		s.setLocked(s.state.Failed(path, err))
		return err
	}

	res := s.renderer.Render(doc.Content)
	s.setLocked(s.state.Loaded(doc, res))
	s.log.FileOpened(doc.Path, doc.Info.Size)
	return nil
}

func (s *Session) setLocked(state viewstate.State) {
	s.state = state
	if s.pub != nil {
		s.pub.Publish(state)
	}
}
