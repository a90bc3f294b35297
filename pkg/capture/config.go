// Package capture owns the camera capture session lifecycle: device and
// resolution negotiation, bracketed reconfiguration of a running pipeline,
// start/stop, and best-effort device control (torch, tap-to-focus).
//
// The frame analyzer and the preview view are external collaborators; this
// package only attaches them to the pipeline.
package capture

// Config holds the runtime-mutable capture configuration. Every field can be
// changed while the pipeline runs; Manager diffs configs and triggers the
// matching controller operation.
type Config struct {
	// Enabled starts and stops the whole pipeline.
	Enabled bool `json:"enabled"`

	// Facing selects the camera. Values: "back", "front".
	Facing string `json:"facing"`

	// Quality is the requested resolution tier. Values: "low", "medium",
	// "high", "highest". The effective tier may be lower when the session
	// does not support the request; that divergence is expected.
	Quality string `json:"quality"`

	// Torch turns the torch on. Best-effort: ignored when the device has no
	// torch or rejects the write.
	Torch bool `json:"torch"`

	// TapToFocus gates the tap gesture.
	TapToFocus bool `json:"tap_to_focus"`

	// AimMode shows the aiming overlay on the view.
	AimMode bool `json:"aim_mode"`
}

// DefaultConfig returns the recommended scanning configuration.
func DefaultConfig() Config {
	return Config{
		Enabled:    false,
		Facing:     FacingBack.String(),
		Quality:    PresetHigh.String(),
		Torch:      false,
		TapToFocus: true,
		AimMode:    false,
	}
}

// Validate checks config values. Returns a list of validation errors, or nil
// if valid.
func (c *Config) Validate() []string {
	var errs []string

	if _, ok := ParseFacing(c.Facing); c.Facing != "" && !ok {
		errs = append(errs, "facing must be back or front")
	}
	if _, ok := ParsePreset(c.Quality); c.Quality != "" && !ok {
		errs = append(errs, "quality must be low, medium, high, or highest")
	}

	return errs
}

// facing returns the parsed facing, defaulting to back.
func (c *Config) facing() Facing {
	f, _ := ParseFacing(c.Facing)
	return f
}

// quality returns the parsed quality tier, defaulting to high when unset.
// Validate catches unknown values before they get here.
func (c *Config) quality() ResolutionPreset {
	if c.Quality == "" {
		return PresetHigh
	}
	p, _ := ParsePreset(c.Quality)
	return p
}
