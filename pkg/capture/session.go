package capture

import "time"

// Frame is one captured image as delivered to outputs. Data is an encoded
// JPEG; Width and Height are the capture dimensions in sensor space.
type Frame struct {
	Data      []byte
	Width     int
	Height    int
	Seq       uint64
	Timestamp time.Time
}

// Output is a sink the session delivers frames to. Deliver must never block
// frame delivery: implementations drop frames they cannot keep up with.
type Output interface {
	Deliver(f Frame)
	Close() error
}

// Session is the hardware pipeline aggregate: at most one input, at most one
// output, one resolution preset.
//
// Topology mutations (inputs, outputs, preset) are only legal inside a
// BeginConfiguration/CommitConfiguration bracket; the session must not
// deliver frames between the two. Brackets may nest. Callers additionally
// serialize brackets and the running transition under the controller's
// session lock, so implementations only need to keep frame delivery off the
// half-configured topology.
type Session interface {
	BeginConfiguration()
	CommitConfiguration()

	// CanAddInput reports whether AddInput would be accepted. The controller
	// checks before mutating; an add the session would reject is skipped,
	// not attempted.
	CanAddInput(in Input) bool
	AddInput(in Input)
	RemoveInput(in Input)

	CanAddOutput(out Output) bool
	AddOutput(out Output)
	RemoveOutput(out Output)

	// SupportsPreset reports whether the session can run at the given tier
	// with its current input. PresetLow is always supported.
	SupportsPreset(p ResolutionPreset) bool
	SetPreset(p ResolutionPreset)
	Preset() ResolutionPreset

	StartRunning()
	StopRunning()
	Running() bool

	// Close releases session resources. Inputs and outputs are owned and
	// closed by the controller, not by the session.
	Close() error
}
