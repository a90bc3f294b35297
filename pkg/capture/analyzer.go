package capture

// Analyzer consumes the frame stream. The analysis engine itself (barcode
// decoding, classification) lives outside this module; the controller only
// attaches it to the pipeline and feeds it frames.
//
// Analyze is called from the output's serial worker goroutine. A slow
// Analyze does not stall capture: frames that arrive while Analyze is busy
// are dropped by the output.
type Analyzer interface {
	Analyze(f Frame)
}

// PointTransform converts a point between coordinate spaces.
type PointTransform func(Point) Point

// TransformAware is implemented by analyzers that map detection regions from
// device space into view space. The controller hands them the view's
// transform when the output is configured.
type TransformAware interface {
	SetTransform(t PointTransform)
}

// View is the overlay/preview collaborator. It renders the aiming decoration
// and converts between view-space and device-space coordinates; the
// controller never draws anything itself.
type View interface {
	AddAimOverlay()
	RemoveAimOverlay()

	// DevicePoint converts a view-space point (a tap) into the device's
	// point-of-interest space.
	DevicePoint(viewPoint Point) Point

	// ViewPoint converts a device-space point into view space, for overlay
	// placement of detection regions.
	ViewPoint(devicePoint Point) Point
}
