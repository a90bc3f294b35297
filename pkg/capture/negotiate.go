package capture

// Device and resolution negotiation. Both functions are pure policy: they
// never mutate the session or the devices they inspect, and they never fail
// hard — unsupported requests degrade to the best available alternative.

// kindPreference is the ordered camera-kind preference per facing. Richer
// assemblies first for the back camera, since they carry the better scanning
// optics. This ordering is policy, not a hardware constraint; change it here
// to change selection behavior.
var kindPreference = map[Facing][]DeviceKind{
	FacingBack:  {KindTripleCamera, KindDualWideCamera, KindDualCamera, KindWideAngle},
	FacingFront: {KindWideAngle},
}

// SelectDevice picks the capture device for the requested facing.
//
// Selection runs three passes: preferred kinds with matching facing, any
// device with matching facing, then any device at all (the platform default).
// Returns nil only when no camera exists.
func SelectDevice(devices []Device, facing Facing) Device {
	for _, kind := range kindPreference[facing] {
		for _, d := range devices {
			if d.Facing() == facing && d.Kind() == kind {
				return d
			}
		}
	}
	for _, d := range devices {
		if d.Facing() == facing {
			return d
		}
	}
	if len(devices) > 0 {
		return devices[0]
	}
	return nil
}

// NegotiatePreset resolves the requested quality tier against what the
// session supports, stepping down one tier at a time. PresetLow is assumed
// always supported, so negotiation never fails; a request above the
// session's capability silently degrades.
func NegotiatePreset(s Session, want ResolutionPreset) ResolutionPreset {
	p := want
	for !s.SupportsPreset(p) {
		lower, ok := p.Lower()
		if !ok {
			return PresetLow
		}
		p = lower
	}
	return p
}
