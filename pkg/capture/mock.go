package capture

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Mock implementations of the capture backend for testing. MockSession keeps
// tripwire counters (mutations outside a configuration bracket, unbalanced
// brackets) so tests can assert the coordinator's locking discipline, not
// just its end state.

// MockDevice is a scriptable capture device.
type MockDevice struct {
	id     string
	name   string
	facing Facing
	kind   DeviceKind

	mu             sync.Mutex
	locked         bool
	lockErr        error
	controlErr     error
	torchAvailable bool
	torchOn        bool
	focusModes     map[FocusMode]bool
	focusPointOK   bool
	focusMode      FocusMode
	focusPoint     Point
	closed         bool

	torchWrites      int
	focusModeWrites  int
	focusPointWrites int
	unlockedWrites   int
	closes           int
}

// MockDeviceOption configures a MockDevice.
type MockDeviceOption func(*MockDevice)

// WithDeviceFacing sets the device facing.
func WithDeviceFacing(f Facing) MockDeviceOption {
	return func(d *MockDevice) { d.facing = f }
}

// WithDeviceKind sets the device kind.
func WithDeviceKind(k DeviceKind) MockDeviceOption {
	return func(d *MockDevice) { d.kind = k }
}

// WithTorch makes torch hardware available.
func WithTorch() MockDeviceOption {
	return func(d *MockDevice) { d.torchAvailable = true }
}

// WithFocusModes sets the supported focus modes.
func WithFocusModes(modes ...FocusMode) MockDeviceOption {
	return func(d *MockDevice) {
		d.focusModes = make(map[FocusMode]bool, len(modes))
		for _, m := range modes {
			d.focusModes[m] = true
		}
	}
}

// WithFocusPoint makes the device accept a focus point of interest.
func WithFocusPoint() MockDeviceOption {
	return func(d *MockDevice) { d.focusPointOK = true }
}

// WithLockError makes LockForConfiguration fail with err.
func WithLockError(err error) MockDeviceOption {
	return func(d *MockDevice) { d.lockErr = err }
}

// WithControlError makes every control write fail with err.
func WithControlError(err error) MockDeviceOption {
	return func(d *MockDevice) { d.controlErr = err }
}

// NewMockDevice creates a mock device. Defaults: back-facing wide-angle, no
// torch, continuous and single-shot focus, no focus point.
func NewMockDevice(name string, opts ...MockDeviceOption) *MockDevice {
	d := &MockDevice{
		id:     uuid.NewString(),
		name:   name,
		facing: FacingBack,
		kind:   KindWideAngle,
		focusModes: map[FocusMode]bool{
			FocusContinuous: true,
			FocusSingleShot: true,
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *MockDevice) ID() string       { return d.id }
func (d *MockDevice) Name() string     { return d.name }
func (d *MockDevice) Facing() Facing   { return d.facing }
func (d *MockDevice) Kind() DeviceKind { return d.kind }

func (d *MockDevice) LockForConfiguration() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.lockErr != nil {
		return d.lockErr
	}
	if d.closed {
		return ErrClosed
	}
	if d.locked {
		return ErrDeviceBusy
	}
	d.locked = true
	return nil
}

func (d *MockDevice) Unlock() {
	d.mu.Lock()
	d.locked = false
	d.mu.Unlock()
}

func (d *MockDevice) TorchAvailable() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.torchAvailable && !d.closed
}

func (d *MockDevice) TorchActive() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.torchOn
}

func (d *MockDevice) SetTorch(on bool) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.locked {
		d.unlockedWrites++
	}
	d.torchWrites++
	if d.controlErr != nil {
		return d.controlErr
	}
	if !d.torchAvailable {
		return ErrUnsupported
	}
	d.torchOn = on
	return nil
}

func (d *MockDevice) SupportsFocusMode(mode FocusMode) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.focusModes[mode]
}

func (d *MockDevice) SetFocusMode(mode FocusMode) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.locked {
		d.unlockedWrites++
	}
	d.focusModeWrites++
	if d.controlErr != nil {
		return d.controlErr
	}
	if !d.focusModes[mode] {
		return ErrUnsupported
	}
	d.focusMode = mode
	return nil
}

func (d *MockDevice) FocusPointSupported() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.focusPointOK
}

func (d *MockDevice) SetFocusPoint(p Point) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.locked {
		d.unlockedWrites++
	}
	d.focusPointWrites++
	if d.controlErr != nil {
		return d.controlErr
	}
	if !d.focusPointOK {
		return ErrUnsupported
	}
	d.focusPoint = p
	return nil
}

func (d *MockDevice) Close() error {
	d.mu.Lock()
	d.closed = true
	d.closes++
	d.mu.Unlock()
	return nil
}

// Closed reports whether Close was called.
func (d *MockDevice) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// FocusMode returns the last focus mode written.
func (d *MockDevice) FocusMode() FocusMode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.focusMode
}

// FocusPoint returns the last focus point written.
func (d *MockDevice) FocusPoint() Point {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.focusPoint
}

// TorchWrites returns how many torch writes the device saw.
func (d *MockDevice) TorchWrites() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.torchWrites
}

// FocusModeWrites returns how many focus mode writes the device saw.
func (d *MockDevice) FocusModeWrites() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.focusModeWrites
}

// FocusPointWrites returns how many focus point writes the device saw.
func (d *MockDevice) FocusPointWrites() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.focusPointWrites
}

// UnlockedWrites returns how many writes happened outside the device's
// exclusive-configuration lock. Should always be zero.
func (d *MockDevice) UnlockedWrites() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.unlockedWrites
}

var _ Device = (*MockDevice)(nil)

// MockInput binds a MockDevice to a MockSession.
type MockInput struct {
	dev *MockDevice

	mu     sync.Mutex
	closed bool
}

func (i *MockInput) Device() Device { return i.dev }

func (i *MockInput) Close() error {
	i.mu.Lock()
	i.closed = true
	i.mu.Unlock()
	return nil
}

// Closed reports whether Close was called.
func (i *MockInput) Closed() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.closed
}

var _ Input = (*MockInput)(nil)

// MockSession is a scriptable capture session.
type MockSession struct {
	mu            sync.Mutex
	running       bool
	configDepth   int
	inputs        []Input
	outputs       []Output
	preset        ResolutionPreset
	maxPreset     ResolutionPreset
	rejectInputs  bool
	rejectOutputs bool
	closed        bool

	commits      int
	badMutations int // topology mutations outside a bracket
	seq          uint64
}

func (s *MockSession) BeginConfiguration() {
	s.mu.Lock()
	s.configDepth++
	s.mu.Unlock()
}

func (s *MockSession) CommitConfiguration() {
	s.mu.Lock()
	if s.configDepth > 0 {
		s.configDepth--
		s.commits++
	} else {
		s.badMutations++
	}
	s.mu.Unlock()
}

func (s *MockSession) CanAddInput(in Input) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.rejectInputs && len(s.inputs) == 0
}

func (s *MockSession) AddInput(in Input) {
	s.mu.Lock()
	if s.configDepth == 0 {
		s.badMutations++
	}
	s.inputs = append(s.inputs, in)
	s.mu.Unlock()
}

func (s *MockSession) RemoveInput(in Input) {
	s.mu.Lock()
	if s.configDepth == 0 {
		s.badMutations++
	}
	for i, x := range s.inputs {
		if x == in {
			s.inputs = append(s.inputs[:i], s.inputs[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
}

func (s *MockSession) CanAddOutput(out Output) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.rejectOutputs && len(s.outputs) == 0
}

func (s *MockSession) AddOutput(out Output) {
	s.mu.Lock()
	if s.configDepth == 0 {
		s.badMutations++
	}
	s.outputs = append(s.outputs, out)
	s.mu.Unlock()
}

func (s *MockSession) RemoveOutput(out Output) {
	s.mu.Lock()
	if s.configDepth == 0 {
		s.badMutations++
	}
	for i, x := range s.outputs {
		if x == out {
			s.outputs = append(s.outputs[:i], s.outputs[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
}

func (s *MockSession) SupportsPreset(p ResolutionPreset) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return p <= s.maxPreset
}

func (s *MockSession) SetPreset(p ResolutionPreset) {
	s.mu.Lock()
	if s.configDepth == 0 {
		s.badMutations++
	}
	s.preset = p
	s.mu.Unlock()
}

func (s *MockSession) Preset() ResolutionPreset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preset
}

func (s *MockSession) StartRunning() {
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()
}

func (s *MockSession) StopRunning() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

func (s *MockSession) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *MockSession) Close() error {
	s.mu.Lock()
	s.closed = true
	s.running = false
	s.mu.Unlock()
	return nil
}

// DeliverFrame pushes a synthetic frame through the session's outputs.
// Returns false when the session is stopped or mid-bracket, mirroring the
// invariant that a configuring session delivers nothing.
func (s *MockSession) DeliverFrame() bool {
	s.mu.Lock()
	if !s.running || s.configDepth > 0 || len(s.outputs) == 0 {
		s.mu.Unlock()
		return false
	}
	s.seq++
	f := Frame{
		Data:      []byte{0xff, 0xd8, 0xff, 0xd9},
		Width:     640,
		Height:    480,
		Seq:       s.seq,
		Timestamp: time.Now(),
	}
	outs := make([]Output, len(s.outputs))
	copy(outs, s.outputs)
	s.mu.Unlock()

	for _, out := range outs {
		out.Deliver(f)
	}
	return true
}

// InputCount returns the number of attached inputs.
func (s *MockSession) InputCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inputs)
}

// OutputCount returns the number of attached outputs.
func (s *MockSession) OutputCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.outputs)
}

// BadMutations returns how many topology mutations happened outside a
// begin/commit bracket. Should always be zero.
func (s *MockSession) BadMutations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.badMutations
}

var _ Session = (*MockSession)(nil)

// MockBackend wires mock devices and a mock session into a Backend.
type MockBackend struct {
	mu         sync.Mutex
	devices    []*MockDevice
	session    *MockSession
	maxPreset  ResolutionPreset
	sessionErr error
	inputErr   error
	rejectIn   bool
	rejectOut  bool
}

// MockBackendOption configures a MockBackend.
type MockBackendOption func(*MockBackend)

// WithMockDevices sets the devices the backend enumerates. Calling it with
// no arguments gives a backend that enumerates no devices at all, which is
// distinct from omitting the option (that keeps the default device).
func WithMockDevices(devices ...*MockDevice) MockBackendOption {
	return func(b *MockBackend) { b.devices = append([]*MockDevice{}, devices...) }
}

// WithMaxPreset caps the preset tier the session supports.
func WithMaxPreset(p ResolutionPreset) MockBackendOption {
	return func(b *MockBackend) { b.maxPreset = p }
}

// WithSessionError makes NewSession fail.
func WithSessionError(err error) MockBackendOption {
	return func(b *MockBackend) { b.sessionErr = err }
}

// WithInputError makes NewInput fail.
func WithInputError(err error) MockBackendOption {
	return func(b *MockBackend) { b.inputErr = err }
}

// RejectInputs makes the session refuse every input.
func RejectInputs() MockBackendOption {
	return func(b *MockBackend) { b.rejectIn = true }
}

// RejectOutputs makes the session refuse every output.
func RejectOutputs() MockBackendOption {
	return func(b *MockBackend) { b.rejectOut = true }
}

// NewMockBackend creates a mock backend. With no options it has one
// back-facing wide-angle device and a session supporting every preset.
func NewMockBackend(opts ...MockBackendOption) *MockBackend {
	b := &MockBackend{
		maxPreset: PresetHighest,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.devices == nil {
		b.devices = []*MockDevice{NewMockDevice("mock-back")}
	}
	return b
}

func (b *MockBackend) Name() string { return "mock" }

func (b *MockBackend) NewSession() (Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sessionErr != nil {
		return nil, b.sessionErr
	}
	b.session = &MockSession{
		maxPreset:     b.maxPreset,
		rejectInputs:  b.rejectIn,
		rejectOutputs: b.rejectOut,
	}
	return b.session, nil
}

func (b *MockBackend) Devices() ([]Device, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Device, len(b.devices))
	for i, d := range b.devices {
		out[i] = d
	}
	return out, nil
}

func (b *MockBackend) NewInput(d Device) (Input, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.inputErr != nil {
		return nil, b.inputErr
	}
	md, ok := d.(*MockDevice)
	if !ok {
		return nil, ErrUnsupported
	}
	return &MockInput{dev: md}, nil
}

// Session returns the session created by NewSession, or nil before the
// first Start.
func (b *MockBackend) Session() *MockSession {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.session
}

var _ Backend = (*MockBackend)(nil)

// MockAnalyzer records every frame it receives. An optional per-frame delay
// simulates a slow analysis engine for backpressure tests.
type MockAnalyzer struct {
	Delay time.Duration

	mu        sync.Mutex
	frames    []Frame
	transform PointTransform
}

func (a *MockAnalyzer) Analyze(f Frame) {
	if a.Delay > 0 {
		time.Sleep(a.Delay)
	}
	a.mu.Lock()
	a.frames = append(a.frames, f)
	a.mu.Unlock()
}

// SetTransform implements TransformAware.
func (a *MockAnalyzer) SetTransform(t PointTransform) {
	a.mu.Lock()
	a.transform = t
	a.mu.Unlock()
}

// FrameCount returns the number of frames analyzed so far.
func (a *MockAnalyzer) FrameCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.frames)
}

// Transform returns the transform set by the controller, nil if none.
func (a *MockAnalyzer) Transform() PointTransform {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.transform
}

var (
	_ Analyzer       = (*MockAnalyzer)(nil)
	_ TransformAware = (*MockAnalyzer)(nil)
)

// MockView counts overlay operations and applies a fixed affine flip as its
// coordinate transform so tests can tell the two spaces apart.
type MockView struct {
	mu       sync.Mutex
	overlays int
	taps     []Point
}

func (v *MockView) AddAimOverlay() {
	v.mu.Lock()
	v.overlays++
	v.mu.Unlock()
}

func (v *MockView) RemoveAimOverlay() {
	v.mu.Lock()
	if v.overlays > 0 {
		v.overlays--
	}
	v.mu.Unlock()
}

// DevicePoint mirrors the view point across both axes, a recognizably
// different coordinate so tests can assert the transform was applied.
func (v *MockView) DevicePoint(p Point) Point {
	v.mu.Lock()
	v.taps = append(v.taps, p)
	v.mu.Unlock()
	return Point{X: 1 - p.X, Y: 1 - p.Y}
}

func (v *MockView) ViewPoint(p Point) Point {
	return Point{X: 1 - p.X, Y: 1 - p.Y}
}

// Overlays returns the current overlay count.
func (v *MockView) Overlays() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.overlays
}

var _ View = (*MockView)(nil)
