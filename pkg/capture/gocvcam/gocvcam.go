// Package gocvcam implements the capture backend on top of OpenCV video
// capture via gocv. Webcams exposed this way have no torch and no focus
// point of interest; those controls degrade to no-ops through the capture
// package's best-effort gateway, while autofocus maps onto the OpenCV
// autofocus property.
package gocvcam

import (
	"fmt"
	"log/slog"

	"github.com/openscan/go-scancam/pkg/capture"
)

// Config holds gocv backend settings.
type Config struct {
	// BackDeviceID is the OpenCV device index treated as the back camera.
	// -1 means no back camera.
	BackDeviceID int

	// FrontDeviceID is the OpenCV device index treated as the front camera.
	// -1 means no front camera.
	FrontDeviceID int

	// Framerate is the capture loop rate in frames per second.
	Framerate int

	// JPEGQuality is the frame encode quality, 1-100.
	JPEGQuality int
}

// DefaultConfig returns the recommended backend configuration: device 0 as
// the back camera, no front camera.
func DefaultConfig() Config {
	return Config{
		BackDeviceID:  0,
		FrontDeviceID: -1,
		Framerate:     30,
		JPEGQuality:   85,
	}
}

// Validate checks the backend configuration.
func (c *Config) Validate() error {
	if c.Framerate < 1 || c.Framerate > 120 {
		return fmt.Errorf("gocvcam: framerate must be between 1 and 120, got %d", c.Framerate)
	}
	if c.JPEGQuality < 1 || c.JPEGQuality > 100 {
		return fmt.Errorf("gocvcam: jpeg quality must be between 1 and 100, got %d", c.JPEGQuality)
	}
	if c.BackDeviceID < 0 && c.FrontDeviceID < 0 {
		return fmt.Errorf("gocvcam: at least one device index required")
	}
	return nil
}

// Backend creates gocv-backed sessions, devices and inputs.
type Backend struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a gocv backend.
func New(cfg Config, logger *slog.Logger) (*Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{cfg: cfg, logger: logger}, nil
}

// Name returns the backend name.
func (b *Backend) Name() string { return "gocv" }

// NewSession creates a capture session running at the configured framerate.
func (b *Backend) NewSession() (capture.Session, error) {
	return newSession(b.cfg.Framerate, b.cfg.JPEGQuality, b.logger), nil
}

// Devices returns descriptors for the configured device indices. Descriptors
// are cheap; the underlying capture handle is only opened by NewInput.
func (b *Backend) Devices() ([]capture.Device, error) {
	var out []capture.Device
	if b.cfg.BackDeviceID >= 0 {
		out = append(out, newDevice(b.cfg.BackDeviceID, capture.FacingBack))
	}
	if b.cfg.FrontDeviceID >= 0 {
		out = append(out, newDevice(b.cfg.FrontDeviceID, capture.FacingFront))
	}
	return out, nil
}

// NewInput opens the device's video capture handle and binds it.
func (b *Backend) NewInput(d capture.Device) (capture.Input, error) {
	dev, ok := d.(*device)
	if !ok {
		return nil, fmt.Errorf("gocvcam: foreign device %T", d)
	}
	return dev.open()
}

var _ capture.Backend = (*Backend)(nil)
