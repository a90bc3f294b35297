package capture

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Manager binds a mutable Config to a Controller. It is the UI-facing
// configuration surface: each changed field triggers exactly the matching
// controller operation, so a config update behaves like the corresponding
// sequence of direct calls.
type Manager struct {
	controller *Controller

	mu     sync.RWMutex
	config Config
}

// NewManager creates a manager over the controller, seeded with cfg. The
// seed config is recorded but not applied; pass the same cfg to
// NewController, then call Apply (or SetConfig) to drive the pipeline.
func NewManager(controller *Controller, cfg Config) *Manager {
	return &Manager{
		controller: controller,
		config:     cfg,
	}
}

// GetConfig returns the current configuration.
func (m *Manager) GetConfig() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// Controller returns the managed controller.
func (m *Manager) Controller() *Controller {
	return m.controller
}

// Apply pushes the current configuration to the controller, field by field.
// Used once at startup to honor the seed config.
func (m *Manager) Apply() {
	m.mu.RLock()
	cfg := m.config
	m.mu.RUnlock()

	c := m.controller
	c.SetFacing(cfg.facing())
	c.SetQuality(cfg.quality())
	c.SetTapToFocus(cfg.TapToFocus)
	c.SetAimMode(cfg.AimMode)
	c.SetEnabled(cfg.Enabled)
	c.SetTorch(cfg.Torch)
}

// SetConfig validates cfg, stores it, and triggers a controller operation
// for every field that changed. Unchanged fields trigger nothing, so
// repeated identical updates are free.
func (m *Manager) SetConfig(cfg Config) error {
	if errs := cfg.Validate(); len(errs) > 0 {
		return fmt.Errorf("validation failed: %v", errs)
	}

	m.mu.Lock()
	old := m.config
	m.config = cfg
	m.mu.Unlock()

	c := m.controller

	// Topology first, then activity, then device parameters: the torch
	// write should land on the device the new config selected.
	if cfg.facing() != old.facing() {
		c.SetFacing(cfg.facing())
	}
	if cfg.quality() != old.quality() {
		c.SetQuality(cfg.quality())
	}
	if cfg.TapToFocus != old.TapToFocus {
		c.SetTapToFocus(cfg.TapToFocus)
	}
	if cfg.AimMode != old.AimMode {
		c.SetAimMode(cfg.AimMode)
	}
	if cfg.Enabled != old.Enabled {
		c.SetEnabled(cfg.Enabled)
	}
	if cfg.Torch != old.Torch {
		c.SetTorch(cfg.Torch)
	}
	return nil
}

// UpdateConfig updates specific fields of the configuration from a map, as
// received by the config API.
func (m *Manager) UpdateConfig(params map[string]interface{}) error {
	m.mu.RLock()
	cfg := m.config
	m.mu.RUnlock()

	for key, value := range params {
		switch key {
		case "enabled":
			if v, ok := value.(bool); ok {
				cfg.Enabled = v
			}
		case "facing":
			if v, ok := value.(string); ok {
				cfg.Facing = v
			}
		case "quality":
			if v, ok := value.(string); ok {
				cfg.Quality = v
			}
		case "torch":
			if v, ok := value.(bool); ok {
				cfg.Torch = v
			}
		case "tap_to_focus":
			if v, ok := value.(bool); ok {
				cfg.TapToFocus = v
			}
		case "aim_mode":
			if v, ok := value.(bool); ok {
				cfg.AimMode = v
			}
		default:
			return fmt.Errorf("unknown config field: %s", key)
		}
	}

	return m.SetConfig(cfg)
}

// GetConfigJSON returns the current config as a map for JSON serialization.
func (m *Manager) GetConfigJSON() map[string]interface{} {
	cfg := m.GetConfig()

	data, _ := json.Marshal(cfg)
	var result map[string]interface{}
	json.Unmarshal(data, &result)

	return result
}
