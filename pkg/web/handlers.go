package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/openscan/go-scancam/pkg/capture"
	"github.com/openscan/go-scancam/pkg/hub"
)

// handleGetConfig returns the current capture configuration.
func (s *Server) handleGetConfig(c *fiber.Ctx) error {
	return c.JSON(s.manager.GetConfigJSON())
}

// handleUpdateConfig applies a partial config update. Unknown fields and
// invalid values are rejected; valid updates trigger the matching pipeline
// reconfiguration.
func (s *Server) handleUpdateConfig(c *fiber.Ctx) error {
	var params map[string]interface{}
	if err := c.BodyParser(&params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid JSON body",
		})
	}
	if err := s.manager.UpdateConfig(params); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(s.manager.GetConfigJSON())
}

// handleStatus returns a pipeline status snapshot.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	return c.JSON(s.manager.Controller().Status())
}

// handlePresets lists the quality tiers the API accepts.
func (s *Server) handlePresets(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"qualities": capture.PresetNames(),
	})
}

// EnabledRequest is the request body for toggling the pipeline.
type EnabledRequest struct {
	Enabled bool `json:"enabled"`
}

// handleEnabled toggles the pipeline on or off.
func (s *Server) handleEnabled(c *fiber.Ctx) error {
	var req EnabledRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid JSON body",
		})
	}
	if err := s.manager.UpdateConfig(map[string]interface{}{"enabled": req.Enabled}); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"enabled": req.Enabled})
}

// TapRequest is a tap coordinate in normalized view space.
type TapRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// handleTap forwards a tap-to-focus gesture to the controller. Always
// succeeds: focus is best-effort and the tap may be ignored by policy.
func (s *Server) handleTap(c *fiber.Ctx) error {
	var req TapRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid JSON body",
		})
	}
	s.manager.Controller().Tap(capture.Point{X: req.X, Y: req.Y})
	return c.SendStatus(fiber.StatusAccepted)
}

// handlePreviewWS streams JPEG preview frames.
func (s *Server) handlePreviewWS(conn *websocket.Conn) {
	client := hub.NewClient(s.previewHub, conn)
	client.Run()
}

// handleStatusWS streams status snapshots.
func (s *Server) handleStatusWS(conn *websocket.Conn) {
	client := hub.NewClient(s.statusHub, conn)
	client.Run()
}
