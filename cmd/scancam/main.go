// Command scancam runs the camera capture pipeline with its HTTP control
// surface. Configuration comes from SCANCAM_* environment variables; the
// pipeline itself is reconfigured at runtime through the API.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/openscan/go-scancam/internal/config"
	"github.com/openscan/go-scancam/internal/log"
	"github.com/openscan/go-scancam/pkg/capture"
	"github.com/openscan/go-scancam/pkg/capture/gocvcam"
	"github.com/openscan/go-scancam/pkg/web"
)

func main() {
	log.Init(config.LogLevel())
	logger := log.L()

	backend, err := newBackend()
	if err != nil {
		logger.Error("backend setup failed", "error", err)
		os.Exit(1)
	}

	cfg := capture.DefaultConfig()
	cfg.Enabled = true

	// The web server doubles as the frame analyzer: frames go to preview
	// clients. A real deployment would chain a barcode engine in front.
	var server *web.Server

	controller, err := capture.NewController(backend, analyzerFunc(func(f capture.Frame) {
		if server != nil {
			server.Analyze(f)
		}
	}), nil, cfg, logger)
	if err != nil {
		logger.Error("controller setup failed", "error", err)
		os.Exit(1)
	}
	defer controller.Close()

	manager := capture.NewManager(controller, cfg)
	server = web.NewServer(config.Addr(), manager, logger)
	manager.Apply()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("shutting down")
		server.Shutdown()
	}()

	if err := server.Start(); err != nil {
		logger.Error("server stopped", "error", err)
	}
}

// analyzerFunc adapts a function to capture.Analyzer.
type analyzerFunc func(capture.Frame)

func (f analyzerFunc) Analyze(frame capture.Frame) { f(frame) }

func newBackend() (capture.Backend, error) {
	switch name := config.BackendName(); name {
	case "gocv":
		cfg := gocvcam.DefaultConfig()
		cfg.BackDeviceID = config.BackDeviceID()
		cfg.FrontDeviceID = config.FrontDeviceID()
		cfg.Framerate = config.Framerate()
		cfg.JPEGQuality = config.JPEGQuality()
		return gocvcam.New(cfg, log.L())
	case "mock":
		return capture.NewMockBackend(
			capture.WithMockDevices(
				capture.NewMockDevice("mock-back", capture.WithTorch(), capture.WithFocusPoint()),
				capture.NewMockDevice("mock-front", capture.WithDeviceFacing(capture.FacingFront)),
			),
		), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want gocv or mock)", name)
	}
}
