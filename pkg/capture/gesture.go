package capture

// Tap handles a tap-to-focus gesture at a view-space coordinate. The tap is
// ignored unless tap-to-focus is enabled and the device accepts a focus
// point of interest. The view converts the coordinate into device space;
// setting the point and re-applying the autofocus fallback happen as one
// atomic gateway operation.
func (c *Controller) Tap(viewPoint Point) {
	if !c.tapToFocus.Load() || c.view == nil {
		return
	}
	devicePoint := c.view.DevicePoint(viewPoint)

	c.withDevice("tap_focus", func(d Device) error {
		if !d.FocusPointSupported() {
			return nil
		}
		if err := d.SetFocusPoint(devicePoint); err != nil {
			return err
		}
		return setPreferredFocusMode(d)
	})
}

// TapHandler returns a callback suitable for wiring into view tap events.
func (c *Controller) TapHandler() func(Point) {
	return c.Tap
}
