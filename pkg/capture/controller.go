package capture

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// State describes the controller lifecycle for status reporting.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateRunning       State = "running"
	StateStopped       State = "stopped"
	StateClosed        State = "closed"
)

// Controller owns the capture session and every resource hanging off it:
// the selected device, its input adapter, the frame output and its worker.
// External callers never touch those resources directly; they trigger state
// changes through the controller's operation set.
//
// Two locks, acquired in a fixed order when both are needed:
//
//   - sessionMu guards pipeline topology (input, output, preset) and the
//     start/stop transition. Every reconfiguration holds it around its
//     begin/commit bracket.
//   - deviceMu guards the device handle and hardware parameter writes
//     (torch, focus). See devicecontrol.go.
//
// sessionMu may be held while taking deviceMu (device swap, focus fallback
// after a swap), never the reverse, so the two cannot deadlock. Device
// control ops take deviceMu alone and therefore never contend with an
// in-flight reconfiguration bracket.
type Controller struct {
	// Collaborators are fixed at construction and never reassigned, so they
	// are safe to read without holding either lock.
	logger   *slog.Logger
	backend  Backend
	analyzer Analyzer
	view     View

	sessionMu sync.Mutex
	session   Session
	input     Input
	output    *frameOutput
	facing    Facing
	quality   ResolutionPreset
	effective ResolutionPreset
	presetSet bool
	closed    bool

	deviceMu sync.Mutex
	device   Device

	tapToFocus atomic.Bool

	controlAttempts   atomic.Int64
	controlRejections atomic.Int64
}

// NewController creates a controller over the given backend. The analyzer
// and view collaborators may be nil; the pipeline then runs without frame
// analysis or overlay support. The session itself is created lazily on the
// first Start, so construction never touches hardware.
func NewController(backend Backend, analyzer Analyzer, view View, cfg Config, logger *slog.Logger) (*Controller, error) {
	if backend == nil {
		return nil, fmt.Errorf("capture: backend required")
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("capture: invalid config: %v", errs)
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Controller{
		logger:   logger.With("backend", backend.Name()),
		backend:  backend,
		analyzer: analyzer,
		view:     view,
		facing:   cfg.facing(),
		quality:  cfg.quality(),
	}
	c.tapToFocus.Store(cfg.TapToFocus)
	if cfg.AimMode && view != nil {
		view.AddAimOverlay()
	}
	return c, nil
}

// Start brings the pipeline up. The first call lazily performs any
// configuration step whose resource is still absent (session, input,
// output, preset), so no separate setup call exists. Redundant calls are
// safe: a running session is stopped and restarted with exactly one input,
// one output and one preset.
func (c *Controller) Start() {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()

	if c.closed {
		return
	}
	if c.session != nil && c.session.Running() {
		c.session.StopRunning()
	}
	if c.session == nil {
		s, err := c.backend.NewSession()
		if err != nil {
			c.logger.Error("session creation failed", "error", err)
			return
		}
		c.session = s
	}
	if c.input == nil {
		c.reconfigureInputLocked()
	}
	if c.output == nil {
		c.configureOutputLocked()
	}
	if !c.presetSet {
		c.configurePresetLocked()
	}

	c.session.StartRunning()
	c.logger.Info("capture started",
		"facing", c.facing.String(),
		"preset", c.effective.String(),
		"has_input", c.input != nil,
	)
}

// Stop halts frame delivery. An active torch is turned off first, through
// the device control gateway, so the hardware is left clean before release.
// Safe to call when already stopped or never started.
func (c *Controller) Stop() {
	// Torch cleanup uses deviceMu only; keep it outside the session lock.
	c.withDevice("torch_off", func(d Device) error {
		if !d.TorchAvailable() || !d.TorchActive() {
			return nil
		}
		return d.SetTorch(false)
	})

	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()
	if c.session != nil && c.session.Running() {
		c.session.StopRunning()
		c.logger.Info("capture stopped")
	}
}

// SetEnabled is the single external control surface for pipeline activity.
func (c *Controller) SetEnabled(on bool) {
	if on {
		c.Start()
	} else {
		c.Stop()
	}
}

// SetFacing swaps the capture device. While running, the swap happens inside
// a configuration bracket and is followed by a resolution renegotiation,
// since the new device can change which presets the session supports.
func (c *Controller) SetFacing(f Facing) {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()

	if c.closed {
		return
	}
	c.facing = f
	if c.session == nil {
		// Not configured yet; the first Start picks the new facing up.
		return
	}
	c.reconfigureInputLocked()
}

// SetQuality renegotiates the resolution preset. The effective tier is the
// highest supported tier at or below the request; requesting more than the
// session supports is not an error.
func (c *Controller) SetQuality(p ResolutionPreset) {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()

	if c.closed {
		return
	}
	c.quality = p
	if c.session == nil {
		return
	}
	c.configurePresetLocked()
}

// SetTapToFocus gates the tap gesture. Takes effect on the next tap.
func (c *Controller) SetTapToFocus(on bool) {
	c.tapToFocus.Store(on)
}

// SetAimMode adds or removes the aiming overlay on the view collaborator.
func (c *Controller) SetAimMode(on bool) {
	if c.view == nil {
		return
	}
	if on {
		c.view.AddAimOverlay()
	} else {
		c.view.RemoveAimOverlay()
	}
}

// reconfigureInputLocked rebuilds the input for the current facing: old
// input and device torn down, a new device negotiated and bound, the input
// added only if the session accepts it. When no device matches at all the
// input slot is simply left absent — the session runs frameless rather than
// half-configured. Always renegotiates the preset afterwards.
//
// Caller holds sessionMu; c.session is non-nil.
func (c *Controller) reconfigureInputLocked() {
	s := c.session
	s.BeginConfiguration()

	if c.input != nil {
		s.RemoveInput(c.input)
		if err := c.input.Close(); err != nil {
			c.logger.Warn("input close failed", "error", err)
		}
		c.input = nil
	}
	c.swapDevice(nil)

	devices, err := c.backend.Devices()
	if err != nil {
		c.logger.Warn("device enumeration failed", "error", err)
	}
	dev := SelectDevice(devices, c.facing)
	if dev == nil {
		c.logger.Warn("no capture device available", "facing", c.facing.String())
		s.CommitConfiguration()
		c.configurePresetLocked()
		return
	}

	in, err := c.backend.NewInput(dev)
	if err != nil {
		c.logger.Warn("input open failed", "device", dev.ID(), "error", err)
		dev.Close()
		s.CommitConfiguration()
		c.configurePresetLocked()
		return
	}

	if s.CanAddInput(in) {
		s.AddInput(in)
		c.input = in
		c.swapDevice(dev)
		c.logger.Info("input configured",
			"device", dev.ID(),
			"name", dev.Name(),
			"facing", dev.Facing().String(),
			"kind", dev.Kind().String(),
		)
	} else {
		c.logger.Warn("session rejected input", "device", dev.ID())
		in.Close()
		dev.Close()
	}
	s.CommitConfiguration()

	// Device swap can change supported presets and focus capabilities.
	c.configurePresetLocked()
	c.applyFocusMode()
}

// configureOutputLocked builds the frame output and attaches the analyzer.
// Caller holds sessionMu; c.session is non-nil.
func (c *Controller) configureOutputLocked() {
	s := c.session
	out := newFrameOutput(c.analyzer, c.logger)

	s.BeginConfiguration()
	if s.CanAddOutput(out) {
		s.AddOutput(out)
		c.output = out
	} else {
		c.logger.Warn("session rejected output")
		out.Close()
	}
	s.CommitConfiguration()

	if ta, ok := c.analyzer.(TransformAware); ok && c.view != nil {
		ta.SetTransform(c.view.ViewPoint)
	}
}

// configurePresetLocked negotiates and applies the resolution preset.
// Caller holds sessionMu; c.session is non-nil.
func (c *Controller) configurePresetLocked() {
	s := c.session
	p := NegotiatePreset(s, c.quality)

	s.BeginConfiguration()
	s.SetPreset(p)
	s.CommitConfiguration()

	if p != c.quality {
		c.logger.Info("quality degraded to supported preset",
			"requested", c.quality.String(),
			"effective", p.String(),
		)
	}
	c.effective = p
	c.presetSet = true
}

// swapDevice replaces the device handle under deviceMu and closes the old
// one. Caller holds sessionMu, so the session→device lock order is kept.
func (c *Controller) swapDevice(d Device) {
	c.deviceMu.Lock()
	old := c.device
	c.device = d
	c.deviceMu.Unlock()

	if old != nil {
		old.Close()
	}
}

// Status reports the externally observable pipeline state, including the
// degraded "no device" condition that would otherwise only show up as an
// analyzer that never sees frames.
func (c *Controller) Status() Status {
	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()

	st := Status{
		State:            StateUninitialized,
		Facing:           c.facing.String(),
		RequestedQuality: c.quality.String(),
		DeviceAbsent:     true,
	}
	switch {
	case c.closed:
		st.State = StateClosed
	case c.session == nil:
	case c.session.Running():
		st.State = StateRunning
	default:
		st.State = StateStopped
	}
	if c.presetSet {
		st.EffectivePreset = c.effective.String()
	}
	if c.output != nil {
		st.Frames = c.output.Stats()
	}

	c.deviceMu.Lock()
	if c.device != nil {
		st.DeviceAbsent = false
		st.DeviceID = c.device.ID()
		st.DeviceName = c.device.Name()
		st.TorchActive = c.device.TorchActive()
	}
	c.deviceMu.Unlock()

	st.Control = ControlStats{
		Attempts:   c.controlAttempts.Load(),
		Rejections: c.controlRejections.Load(),
	}
	return st
}

// Status is a point-in-time snapshot of the pipeline.
type Status struct {
	State            State        `json:"state"`
	Facing           string       `json:"facing"`
	RequestedQuality string       `json:"requested_quality"`
	EffectivePreset  string       `json:"effective_preset,omitempty"`
	DeviceAbsent     bool         `json:"device_absent"`
	DeviceID         string       `json:"device_id,omitempty"`
	DeviceName       string       `json:"device_name,omitempty"`
	TorchActive      bool         `json:"torch_active"`
	Frames           OutputStats  `json:"frames"`
	Control          ControlStats `json:"control"`
}

// Close stops the pipeline and releases every owned resource. Each teardown
// step is individually guarded, so a resource that was never created does
// not prevent releasing the rest. Safe to call more than once, and safe on
// a controller that was never started.
func (c *Controller) Close() error {
	c.Stop()

	c.sessionMu.Lock()
	defer c.sessionMu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	if c.output != nil {
		if c.session != nil {
			c.session.BeginConfiguration()
			c.session.RemoveOutput(c.output)
			c.session.CommitConfiguration()
		}
		c.output.Close()
		c.output = nil
	}
	if c.input != nil {
		if c.session != nil {
			c.session.BeginConfiguration()
			c.session.RemoveInput(c.input)
			c.session.CommitConfiguration()
		}
		c.input.Close()
		c.input = nil
	}
	c.swapDevice(nil)
	if c.session != nil {
		c.session.Close()
		c.session = nil
	}

	c.logger.Info("controller closed")
	return nil
}
