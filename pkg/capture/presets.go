package capture

// ResolutionPreset is a discrete capability tier the session may or may not
// support. Tiers are ordered: a lower tier is always a valid fallback for a
// higher one, and PresetLow is assumed supported by every session.
type ResolutionPreset int

const (
	PresetLow ResolutionPreset = iota
	PresetMedium
	PresetHigh
	PresetHighest
)

// presetNames maps presets to their wire/config names.
var presetNames = map[ResolutionPreset]string{
	PresetLow:     "low",
	PresetMedium:  "medium",
	PresetHigh:    "high",
	PresetHighest: "highest",
}

// presetDimensions maps presets to target capture dimensions. The mapping is
// monotonic: each tier is at least as large as the one below it.
var presetDimensions = map[ResolutionPreset][2]int{
	PresetLow:     {640, 480},
	PresetMedium:  {1280, 720},
	PresetHigh:    {1920, 1080},
	PresetHighest: {3840, 2160},
}

// String returns the config name of the preset.
func (p ResolutionPreset) String() string {
	if name, ok := presetNames[p]; ok {
		return name
	}
	return "unknown"
}

// Dimensions returns the target width and height for the preset.
func (p ResolutionPreset) Dimensions() (width, height int) {
	d := presetDimensions[p]
	return d[0], d[1]
}

// Lower returns the next tier down and true, or the same tier and false when
// already at PresetLow.
func (p ResolutionPreset) Lower() (ResolutionPreset, bool) {
	if p <= PresetLow {
		return PresetLow, false
	}
	return p - 1, true
}

// PresetNames returns the list of preset names from lowest to highest.
func PresetNames() []string {
	return []string{
		PresetLow.String(),
		PresetMedium.String(),
		PresetHigh.String(),
		PresetHighest.String(),
	}
}

// ParsePreset parses a preset name as used in config and the API.
func ParsePreset(name string) (ResolutionPreset, bool) {
	for p, n := range presetNames {
		if n == name {
			return p, true
		}
	}
	return PresetLow, false
}
