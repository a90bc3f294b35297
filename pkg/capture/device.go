package capture

// Facing identifies which way a capture device points.
type Facing int

const (
	FacingBack Facing = iota
	FacingFront
)

// String returns the config name of the facing.
func (f Facing) String() string {
	if f == FacingFront {
		return "front"
	}
	return "back"
}

// ParseFacing parses a facing name as used in config and the API.
func ParseFacing(name string) (Facing, bool) {
	switch name {
	case "back":
		return FacingBack, true
	case "front":
		return FacingFront, true
	}
	return FacingBack, false
}

// DeviceKind classifies the physical camera assembly. Kinds exist so device
// selection can prefer richer assemblies; backends that cannot distinguish
// them report KindWideAngle.
type DeviceKind int

const (
	KindTripleCamera DeviceKind = iota
	KindDualWideCamera
	KindDualCamera
	KindWideAngle
)

// String returns a short name for the kind.
func (k DeviceKind) String() string {
	switch k {
	case KindTripleCamera:
		return "triple"
	case KindDualWideCamera:
		return "dual-wide"
	case KindDualCamera:
		return "dual"
	default:
		return "wide-angle"
	}
}

// FocusMode controls device autofocus behavior.
type FocusMode int

const (
	// FocusContinuous keeps the lens focusing continuously. Preferred for
	// scanning because the subject distance changes constantly.
	FocusContinuous FocusMode = iota

	// FocusSingleShot focuses once and then holds.
	FocusSingleShot

	// FocusLocked holds the current lens position.
	FocusLocked
)

// String returns a short name for the focus mode.
func (m FocusMode) String() string {
	switch m {
	case FocusContinuous:
		return "continuous"
	case FocusSingleShot:
		return "single-shot"
	default:
		return "locked"
	}
}

// Point is a normalized coordinate in [0,1]x[0,1]. Which space it lives in
// (view or device) depends on context; View converts between the two.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Device is an exclusive handle to a physical capture device. The controller
// owns the selected device; external callers never hold one.
//
// Control mutations (torch, focus) must happen between LockForConfiguration
// and Unlock. LockForConfiguration may fail when the hardware is busy; the
// device control gateway treats every failure here as benign.
type Device interface {
	// ID uniquely identifies the device for logging and status reporting.
	ID() string

	// Name is a human-readable device name.
	Name() string

	Facing() Facing
	Kind() DeviceKind

	// LockForConfiguration acquires exclusive hardware-configuration access.
	// Every successful acquisition must be paired with Unlock.
	LockForConfiguration() error
	Unlock()

	// TorchAvailable reports whether torch hardware is present and currently
	// usable. Support can change at runtime (thermal shutdown), so callers
	// re-check before every write.
	TorchAvailable() bool
	TorchActive() bool
	SetTorch(on bool) error

	// SupportsFocusMode reports whether the device can use the given mode.
	// Re-checked at every focus-affecting call site rather than cached,
	// since support changes when the device is swapped.
	SupportsFocusMode(mode FocusMode) bool
	SetFocusMode(mode FocusMode) error

	// FocusPointSupported reports whether the device accepts a point of
	// interest to steer focus.
	FocusPointSupported() bool
	SetFocusPoint(p Point) error

	// Close releases the device handle. Safe to call more than once.
	Close() error
}

// Input binds exactly one Device to a Session. It is disposed and rebuilt
// whenever the device changes; it never outlives its device.
type Input interface {
	Device() Device
	Close() error
}

// Backend creates the platform resources the controller orchestrates.
type Backend interface {
	// Name returns the backend name (e.g. "gocv", "mock").
	Name() string

	// NewSession creates the capture session. Called once per controller.
	NewSession() (Session, error)

	// Devices enumerates the capture devices currently present. An empty
	// slice means the platform has no camera; the controller degrades
	// rather than failing.
	Devices() ([]Device, error)

	// NewInput opens the device and binds it into an input adapter.
	NewInput(d Device) (Input, error)
}
