package capture

import "errors"

// Sentinel errors for common error conditions.
var (
	// ErrClosed is returned for configuration access to a closed device.
	ErrClosed = errors.New("capture: closed")

	// ErrNoDevice is returned by backends when no capture device exists at all.
	ErrNoDevice = errors.New("capture: no capture device available")

	// ErrDeviceBusy is returned when exclusive hardware-configuration access
	// cannot be acquired. The device control gateway treats it as a benign
	// rejection, never as a fault.
	ErrDeviceBusy = errors.New("capture: device busy")

	// ErrUnsupported is returned by devices for control operations the
	// hardware does not implement (torch on a torchless camera, focus point
	// on a fixed-focus lens).
	ErrUnsupported = errors.New("capture: operation not supported by device")
)
