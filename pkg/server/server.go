package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/html"

	tnterrors "github.com/tnt-dev/tnt/internal/errors"
	"github.com/tnt-dev/tnt/pkg/app"
	"github.com/tnt-dev/tnt/pkg/dom"
	"github.com/tnt-dev/tnt/pkg/router"
	"github.com/tnt-dev/tnt/pkg/telemetry"
)

// Config configures the preview server.
type Config struct {
	// Address is the listen address (default: "localhost:3000").
	Address string

	// ReadTimeout bounds how long a websocket may stay silent.
	ReadTimeout time.Duration

	// WriteTimeout bounds a single websocket write.
	WriteTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration

	// QueueSize is the number of tasks the run loop buffers.
	QueueSize int

	// CheckOrigin validates websocket origins. Nil allows same-origin only.
	CheckOrigin func(*http.Request) bool

	// Router receives hash messages. Optional.
	Router *router.Router

	// Telemetry records events and serves /metrics. Optional; without it
	// /metrics serves the default Prometheus registry.
	Telemetry *telemetry.Telemetry

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Address:         "localhost:3000",
		ReadTimeout:     60 * time.Second,
		WriteTimeout:    10 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		QueueSize:       64,
	}
}

// Server serves a mounted app to browsers and routes their events back into
// it. All app and document access happens on the server's Loop.
type Server struct {
	config    *Config
	app       *app.App
	doc       *dom.Document
	container *html.Node
	loop      *Loop
	upgrader  websocket.Upgrader
	logger    *slog.Logger

	// mutations counts document changes since the last broadcast. Only the
	// loop goroutine touches it.
	mutations int

	mu      sync.Mutex
	clients map[*client]struct{}

	httpServer *http.Server
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// New mounts a into container on doc and returns a server for it. Elements
// with handlers are stamped with hydration IDs so client events can be
// routed to them.
func New(a *app.App, doc *dom.Document, container *html.Node, config *Config) (*Server, error) {
	defaults := DefaultConfig()
	if config == nil {
		config = defaults
	} else {
		if config.Address == "" {
			config.Address = defaults.Address
		}
		if config.ReadTimeout == 0 {
			config.ReadTimeout = defaults.ReadTimeout
		}
		if config.WriteTimeout == 0 {
			config.WriteTimeout = defaults.WriteTimeout
		}
		if config.ShutdownTimeout == 0 {
			config.ShutdownTimeout = defaults.ShutdownTimeout
		}
		if config.QueueSize == 0 {
			config.QueueSize = defaults.QueueSize
		}
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if container == nil {
		return nil, tnterrors.New("E007").WithDetail("the preview container was not found")
	}

	s := &Server{
		config:    config,
		app:       a,
		doc:       doc,
		container: container,
		loop:      NewLoop(config.QueueSize),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     config.CheckOrigin,
		},
		logger:  logger,
		clients: make(map[*client]struct{}),
	}

	var err error
	doErr := s.loop.Do(context.Background(), func() {
		doc.EnableHydrationIDs()
		doc.SetAttribute(container, RootAttr, "")
		doc.Observe(func(dom.Mutation) { s.mutations++ })
		if t := config.Telemetry; t != nil {
			t.ObserveDocument(doc)
		}
		err = a.Mount(doc, container)
		s.mutations = 0
	})
	if doErr != nil {
		s.loop.Close()
		return nil, doErr
	}
	if err != nil {
		s.loop.Close()
		return nil, fmt.Errorf("server: mount: %w", err)
	}
	return s, nil
}

// Loop returns the server's run loop. Code that changes app data from
// outside a client event must go through it, usually via Update.
func (s *Server) Loop() *Loop {
	return s.loop
}

// Handler returns the HTTP handler with every route installed.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/ws", s.handleWebSocket)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if t := s.config.Telemetry; t != nil {
		r.Method(http.MethodGet, "/metrics", t.Handler())
	} else {
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	}
	return r
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var page string
	if err := s.loop.Do(r.Context(), func() { page = s.doc.HTML() }); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	if i := strings.LastIndex(page, "</body>"); i >= 0 {
		page = page[:i] + clientScript + page[i:]
	} else {
		page += clientScript
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(page))
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		s.wsError("upgrade")
		return
	}
	c := &client{conn: conn}
	s.addClient(c)
	defer s.removeClient(c)

	var body string
	if err := s.loop.Do(r.Context(), func() { body = dom.InnerHTML(s.container) }); err != nil {
		return
	}
	if err := s.send(c, ServerMessage{Type: MessageRender, HTML: body}); err != nil {
		return
	}
	s.readLoop(r.Context(), c)
}

// readLoop handles client messages until the connection closes.
func (s *Server) readLoop(ctx context.Context, c *client) {
	for {
		c.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("websocket read error", "error", err)
				s.wsError("read")
			}
			return
		}

		msg, err := DecodeMessage(data)
		if err == nil {
			err = s.Handle(ctx, msg)
		}
		if err != nil {
			s.logger.Warn("client message rejected", "code", tnterrors.Code(err), "error", err)
			if errors.Is(err, ErrLoopClosed) {
				return
			}
			s.send(c, errorMessage(err))
		}
	}
}

// Handle applies one client message on the loop and broadcasts the
// re-render when the document changed.
func (s *Server) Handle(ctx context.Context, msg ClientMessage) error {
	var finish func(error)
	if t := s.config.Telemetry; t != nil && msg.Type == MessageEvent {
		ctx, finish = t.StartEvent(ctx, msg.Event, msg.ID)
	}
	err := s.Update(ctx, func() error { return s.apply(msg) })
	if finish != nil {
		finish(err)
	}
	return err
}

// Update runs fn on the loop and broadcasts the re-rendered container to
// every client when fn changed the document. If ctx ends before the task
// runs, the task still runs later and broadcasts its own render.
func (s *Server) Update(ctx context.Context, fn func() error) error {
	const (
		pending int32 = iota
		delivered
		abandoned
	)
	var state atomic.Int32
	var err error
	var msg ServerMessage

	doErr := s.loop.Do(ctx, func() {
		err = fn()
		n := s.mutations
		s.mutations = 0
		if n > 0 {
			msg = ServerMessage{Type: MessageRender, HTML: dom.InnerHTML(s.container), Mutations: n}
		}
		if !state.CompareAndSwap(pending, delivered) && n > 0 {
			// The caller is gone. Broadcasting off the loop keeps slow
			// clients from stalling later tasks.
			go s.broadcast(msg)
		}
	})
	if doErr != nil && state.CompareAndSwap(pending, abandoned) {
		return doErr
	}
	if msg.Mutations > 0 {
		s.broadcast(msg)
	}
	return err
}

// apply runs on the loop. A render failure caused by the message is
// returned to the client.
func (s *Server) apply(msg ClientMessage) error {
	before := s.app.Err()
	switch msg.Type {
	case MessageEvent:
		el := s.doc.ElementByHID(msg.ID)
		if el == nil {
			return tnterrors.New("E011").WithDetailf("unknown element id %q", msg.ID)
		}
		if ran := s.doc.Dispatch(el, msg.Event, msg.Value); ran == 0 {
			s.logger.Debug("event had no handler", "id", msg.ID, "event", msg.Event)
		}
	case MessageHash:
		if s.config.Router == nil {
			return tnterrors.New("E011").WithDetail("hash message without a router")
		}
		s.config.Router.Change(msg.Hash)
	default:
		return tnterrors.New("E011").WithDetailf("unknown message type %q", msg.Type)
	}
	if err := s.app.Err(); err != nil && err != before {
		return err
	}
	return nil
}

func (s *Server) addClient(c *client) {
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	if t := s.config.Telemetry; t != nil {
		t.ClientConnected(true)
	}
}

func (s *Server) removeClient(c *client) {
	s.mu.Lock()
	_, ok := s.clients[c]
	delete(s.clients, c)
	s.mu.Unlock()
	if !ok {
		return
	}
	c.conn.Close()
	if t := s.config.Telemetry; t != nil {
		t.ClientConnected(false)
	}
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) send(c *client, msg ServerMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := c.conn.WriteJSON(msg); err != nil {
		s.logger.Error("websocket write error", "error", err)
		s.wsError("write")
		return err
	}
	return nil
}

func (s *Server) broadcast(msg ServerMessage) {
	s.mu.Lock()
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.Unlock()

	for _, c := range clients {
		if err := s.send(c, msg); err != nil {
			s.removeClient(c)
		}
	}
}

func (s *Server) wsError(kind string) {
	if t := s.config.Telemetry; t != nil {
		t.WebSocketError(kind)
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.config.Address,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("preview server starting", "address", s.config.Address)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.loop.Close()
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown closes client connections, stops the HTTP server and the loop.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.mu.Lock()
	for c := range s.clients {
		c.conn.Close()
	}
	s.mu.Unlock()

	var err error
	if s.httpServer != nil {
		if err = s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
		}
	}
	s.loop.Close()
	s.logger.Info("server shutdown complete")
	return err
}
