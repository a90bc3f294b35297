package capture

// Device control gateway: every hardware parameter write (torch, focus mode,
// focus point) funnels through withDevice, which serializes writers on
// deviceMu and brackets the write in the device's exclusive-configuration
// lock.
//
// All of these operations are best-effort. Torch and focus are cosmetic for
// scanning; a busy or removed device must never take the pipeline down. A
// failed acquisition or write is counted, logged at debug, and discarded —
// it is not an error callers can observe, by policy.

// ControlStats counts device control outcomes. Rejections are expected under
// contention and device churn; they indicate dropped cosmetic writes, not
// faults.
type ControlStats struct {
	Attempts   int64 `json:"attempts"`
	Rejections int64 `json:"rejections"`
}

// withDevice runs fn against the current device under the device lock and
// the device's exclusive hardware-configuration access. No-op when no device
// is bound. Failures are swallowed; see the package policy above.
func (c *Controller) withDevice(op string, fn func(d Device) error) {
	c.deviceMu.Lock()
	defer c.deviceMu.Unlock()

	d := c.device
	if d == nil {
		return
	}
	c.controlAttempts.Add(1)

	if err := d.LockForConfiguration(); err != nil {
		c.controlRejections.Add(1)
		c.logger.Debug("device control rejected", "op", op, "error", err)
		return
	}
	defer d.Unlock()

	if err := fn(d); err != nil {
		c.controlRejections.Add(1)
		c.logger.Debug("device control failed", "op", op, "error", err)
	}
}

// SetTorch turns the torch on or off. Only attempted when the device reports
// torch hardware present and available right now; availability is re-checked
// on every call because it changes at runtime.
func (c *Controller) SetTorch(on bool) {
	c.withDevice("torch", func(d Device) error {
		if !d.TorchAvailable() {
			return nil
		}
		return d.SetTorch(on)
	})
}

// applyFocusMode applies the autofocus fallback chain: continuous autofocus
// when the device supports it, single-shot otherwise, nothing when neither
// is supported. Support is re-checked here on every call rather than cached,
// since a device swap changes it.
func (c *Controller) applyFocusMode() {
	c.withDevice("focus_mode", func(d Device) error {
		return setPreferredFocusMode(d)
	})
}

// setPreferredFocusMode runs the fallback chain against a device already
// locked for configuration.
func setPreferredFocusMode(d Device) error {
	if d.SupportsFocusMode(FocusContinuous) {
		return d.SetFocusMode(FocusContinuous)
	}
	if d.SupportsFocusMode(FocusSingleShot) {
		return d.SetFocusMode(FocusSingleShot)
	}
	return nil
}
