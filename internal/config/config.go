// Package config provides environment configuration helpers for go-scancam
// commands.
package config

import (
	"os"
	"strconv"
)

// Defaults for the scancam server.
const (
	DefaultAddr        = ":8080"
	DefaultBackend     = "gocv"
	DefaultBackDevice  = 0
	DefaultFrontDevice = -1
	DefaultFramerate   = 30
	DefaultJPEGQuality = 85
)

// Addr returns the listen address from SCANCAM_ADDR or the default.
func Addr() string {
	return envString("SCANCAM_ADDR", DefaultAddr)
}

// BackendName returns the capture backend from SCANCAM_BACKEND.
// Valid values: "gocv", "mock".
func BackendName() string {
	return envString("SCANCAM_BACKEND", DefaultBackend)
}

// LogLevel returns the log level from SCANCAM_LOG_LEVEL.
func LogLevel() string {
	return envString("SCANCAM_LOG_LEVEL", "info")
}

// BackDeviceID returns the back camera device index from SCANCAM_BACK_DEVICE.
func BackDeviceID() int {
	return envInt("SCANCAM_BACK_DEVICE", DefaultBackDevice)
}

// FrontDeviceID returns the front camera device index from
// SCANCAM_FRONT_DEVICE. -1 disables the front camera.
func FrontDeviceID() int {
	return envInt("SCANCAM_FRONT_DEVICE", DefaultFrontDevice)
}

// Framerate returns the capture framerate from SCANCAM_FRAMERATE.
func Framerate() int {
	return envInt("SCANCAM_FRAMERATE", DefaultFramerate)
}

// JPEGQuality returns the frame encode quality from SCANCAM_JPEG_QUALITY.
func JPEGQuality() int {
	return envInt("SCANCAM_JPEG_QUALITY", DefaultJPEGQuality)
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
