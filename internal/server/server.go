package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/erkantaylan/markview/internal/logger"
	"github.com/erkantaylan/markview/internal/markdown"
	"github.com/erkantaylan/markview/internal/viewstate"
)

//go:embed static
var staticFiles embed.FS

const writeWait = 10 * time.Second

// Controller carries out the actions clients request over the socket.
type Controller interface {
	Open(path string) error
	Reload() error
	SetTheme(theme viewstate.Theme) error
}

// Request is a message sent by a client.
type Request struct {
	Type  string `json:"type"`
	Path  string `json:"path,omitempty"`
	Theme string `json:"theme,omitempty"`
}

// Options configures the HTTP listener and highlight styles.
type Options struct {
	Host       string
	Port       int
	LightStyle string
	DarkStyle  string
}

// Server handles HTTP and WebSocket
type Server struct {
	hub    *Hub
	ctrl   Controller
	opts   Options
	log    *logger.Logger
	server *http.Server
}

func NewServer(hub *Hub, ctrl Controller, opts Options, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Discard()
	}
	s := &Server{
		hub:  hub,
		ctrl: ctrl,
		opts: opts,
		log:  log,
	}
	s.server = &http.Server{
		Addr:              s.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Clients can ask the server to open files, so only pages served from this
// host may connect. The zero CheckOrigin enforces a same-host Origin.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	client, ok := s.hub.join(r.RemoteAddr)
	if !ok {
		conn.Close()
		return
	}

	// Writer goroutine
	go func() {
		defer conn.Close()

		for message := range client.send {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}()

	// Reader goroutine
	go func() {
		defer func() {
			s.hub.leave(client)
			conn.Close()
		}()

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var req Request
			if err := json.Unmarshal(data, &req); err != nil {
				s.log.Debug("ignoring malformed request", "error", err)
				continue
			}
			s.dispatch(req)
		}
	}()
}

func (s *Server) dispatch(req Request) {
	var err error
	switch req.Type {
	case "open":
		err = s.ctrl.Open(req.Path)
	case "reload":
		err = s.ctrl.Reload()
	case "theme":
		var theme viewstate.Theme
		if theme, err = viewstate.ParseTheme(req.Theme); err == nil {
			err = s.ctrl.SetTheme(theme)
		}
	default:
		s.log.Debug("unknown request", "type", req.Type)
		return
	}
	if err != nil {
		s.log.Warn("request failed", "type", req.Type, "error", err)
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.hub.Current()); err != nil {
		s.log.Warn("failed to write state", "error", err)
	}
}

func (s *Server) handleHighlightCSS(w http.ResponseWriter, r *http.Request) {
	style := s.opts.LightStyle
	if r.URL.Query().Get("theme") == string(viewstate.ThemeDark) {
		style = s.opts.DarkStyle
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	if err := markdown.WriteCSS(w, style); err != nil {
		s.log.Warn("failed to write highlight css", "style", style, "error", err)
	}
}

// Handler builds the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Serve index.html at root
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		data, _ := staticFiles.ReadFile("static/index.html")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(data)
	})

	// Serve static files
	staticFS, _ := fs.Sub(staticFiles, "static")
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/api/state", s.handleState)
	mux.HandleFunc("/highlight.css", s.handleHighlightCSS)

	return mux
}

// Addr is the listen address built from the options.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.opts.Host, strconv.Itoa(s.opts.Port))
}

// Start listens on Addr and serves until Shutdown.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.Addr(), err)
	}
	return s.Serve(ln)
}

// Serve serves on an existing listener until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	if err := s.server.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
