// Package web exposes the capture configuration surface over HTTP and
// streams preview frames and status updates over websockets. It is the
// runtime stand-in for the UI-binding layer: every config field it accepts
// maps onto one capture.Manager update.
package web

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/openscan/go-scancam/pkg/capture"
	"github.com/openscan/go-scancam/pkg/hub"
)

// statusInterval is how often the status websocket broadcasts a snapshot.
const statusInterval = time.Second

// Server is the scancam control server.
type Server struct {
	app    *fiber.App
	addr   string
	logger *slog.Logger

	manager *capture.Manager

	previewHub *hub.Hub
	statusHub  *hub.Hub

	stopStatus chan struct{}
}

// NewServer creates a control server over the manager.
func NewServer(addr string, manager *capture.Manager, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		addr:       addr,
		logger:     logger,
		manager:    manager,
		previewHub: hub.New("preview", logger),
		statusHub:  hub.New("status", logger),
		stopStatus: make(chan struct{}),
	}

	app := fiber.New(fiber.Config{
		AppName:               "scancam",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	api := app.Group("/api")
	api.Get("/config", s.handleGetConfig)
	api.Post("/config", s.handleUpdateConfig)
	api.Get("/status", s.handleStatus)
	api.Get("/presets", s.handlePresets)
	api.Post("/enabled", s.handleEnabled)
	api.Post("/tap", s.handleTap)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/preview", websocket.New(s.handlePreviewWS))
	app.Get("/ws/status", websocket.New(s.handleStatusWS))

	s.app = app
	return s
}

// Start runs the hubs, the status broadcaster and the HTTP listener.
// Blocks until Shutdown.
func (s *Server) Start() error {
	go s.previewHub.Run()
	go s.statusHub.Run()
	go s.broadcastStatus()

	s.logger.Info("control server listening", "addr", s.addr)
	return s.app.Listen(s.addr)
}

// Shutdown stops the HTTP listener.
func (s *Server) Shutdown() error {
	close(s.stopStatus)
	return s.app.Shutdown()
}

// Analyze implements capture.Analyzer: every frame the pipeline delivers is
// fanned out to preview clients. With no clients connected the frame is
// dropped immediately, so preview costs nothing when unused.
func (s *Server) Analyze(f capture.Frame) {
	if s.previewHub.ClientCount() == 0 {
		return
	}
	s.previewHub.BroadcastBinary(f.Data)
}

var _ capture.Analyzer = (*Server)(nil)

// broadcastStatus pushes a status snapshot to status clients once a second.
func (s *Server) broadcastStatus() {
	ticker := time.NewTicker(statusInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopStatus:
			return
		case <-ticker.C:
			if s.statusHub.ClientCount() == 0 {
				continue
			}
			if err := s.statusHub.BroadcastJSON(s.manager.Controller().Status()); err != nil {
				s.logger.Warn("status broadcast failed", "error", err)
			}
		}
	}
}
