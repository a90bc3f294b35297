package capture

import "testing"

func TestSelectDevice_PrefersRicherBackAssembly(t *testing.T) {
	wide := NewMockDevice("wide", WithDeviceKind(KindWideAngle))
	triple := NewMockDevice("triple", WithDeviceKind(KindTripleCamera))
	dual := NewMockDevice("dual", WithDeviceKind(KindDualCamera))

	got := SelectDevice([]Device{wide, dual, triple}, FacingBack)
	if got != triple {
		t.Errorf("Expected triple camera, got %v", got.Name())
	}
}

func TestSelectDevice_FacingMatchBeatsKindPreference(t *testing.T) {
	// The front camera is a dual assembly, a kind not in the front
	// preference list. It must still win over any back device.
	frontDual := NewMockDevice("front-dual",
		WithDeviceFacing(FacingFront), WithDeviceKind(KindDualCamera))
	backTriple := NewMockDevice("back-triple", WithDeviceKind(KindTripleCamera))

	got := SelectDevice([]Device{backTriple, frontDual}, FacingFront)
	if got != frontDual {
		t.Errorf("Expected front device, got %v", got.Name())
	}
}

func TestSelectDevice_FallsBackToDefaultDevice(t *testing.T) {
	backOnly := NewMockDevice("back-only")

	got := SelectDevice([]Device{backOnly}, FacingFront)
	if got != backOnly {
		t.Error("Expected fallback to the only available device")
	}
}

func TestSelectDevice_NoCamera(t *testing.T) {
	if got := SelectDevice(nil, FacingBack); got != nil {
		t.Errorf("Expected nil with no devices, got %v", got)
	}
}

func TestNegotiatePreset_StepsDownToSupported(t *testing.T) {
	tests := []struct {
		name string
		max  ResolutionPreset
		want ResolutionPreset
		get  ResolutionPreset
	}{
		{"supported as requested", PresetHighest, PresetHigh, PresetHigh},
		{"one step down", PresetMedium, PresetHigh, PresetMedium},
		{"all the way down", PresetLow, PresetHighest, PresetLow},
		{"low always succeeds", PresetLow, PresetLow, PresetLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &MockSession{maxPreset: tt.max}
			got := NegotiatePreset(s, tt.want)
			if got != tt.get {
				t.Errorf("NegotiatePreset(max=%v, want=%v) = %v, expected %v",
					tt.max, tt.want, got, tt.get)
			}
			if !s.SupportsPreset(got) {
				t.Errorf("Negotiated preset %v is not supported", got)
			}
			if got > tt.want {
				t.Errorf("Negotiated preset %v above request %v", got, tt.want)
			}
		})
	}
}
