package capture

import (
	"errors"
	"testing"
)

func TestGateway_LockRejectionSwallowed(t *testing.T) {
	dev := NewMockDevice("busy-cam", WithTorch(), WithLockError(ErrDeviceBusy))
	b := NewMockBackend(WithMockDevices(dev))
	c, err := NewController(b, nil, nil, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	defer c.Close()

	c.Start()
	c.SetTorch(true)

	if dev.TorchWrites() != 0 {
		t.Errorf("Expected no write behind a failed lock, got %d", dev.TorchWrites())
	}
	st := c.Status()
	if st.Control.Rejections == 0 {
		t.Error("Expected rejection to be counted")
	}
	if st.Control.Attempts < st.Control.Rejections {
		t.Errorf("Attempts %d below rejections %d", st.Control.Attempts, st.Control.Rejections)
	}
}

func TestGateway_WriteFailureSwallowed(t *testing.T) {
	dev := NewMockDevice("flaky-cam", WithTorch(), WithControlError(errors.New("hardware fault")))
	b := NewMockBackend(WithMockDevices(dev))
	c, err := NewController(b, nil, nil, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	defer c.Close()

	c.Start()
	before := c.Status().Control.Rejections
	c.SetTorch(true)

	if dev.TorchActive() {
		t.Error("Failed write must not change torch state")
	}
	if c.Status().Control.Rejections <= before {
		t.Error("Expected write failure to be counted as a rejection")
	}
}

func TestGateway_TorchlessDeviceSkipsWrite(t *testing.T) {
	dev := NewMockDevice("plain-cam") // no torch hardware
	b := NewMockBackend(WithMockDevices(dev))
	c, err := NewController(b, nil, nil, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	defer c.Close()

	c.Start()
	before := c.Status().Control.Rejections
	c.SetTorch(true)

	if dev.TorchWrites() != 0 {
		t.Errorf("Expected capability check before write, got %d writes", dev.TorchWrites())
	}
	if c.Status().Control.Rejections != before {
		t.Error("Missing capability is not a rejection")
	}
}

func TestGateway_NoDeviceIsNoOp(t *testing.T) {
	b := NewMockBackend(WithMockDevices())
	c, err := NewController(b, nil, nil, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	defer c.Close()

	c.Start()
	c.SetTorch(true) // must not panic

	if att := c.Status().Control.Attempts; att != 0 {
		t.Errorf("Expected no attempts without a device, got %d", att)
	}
}

func TestGateway_FocusFallbackOnDeviceBind(t *testing.T) {
	continuous := NewMockDevice("cont-cam",
		WithFocusModes(FocusContinuous, FocusSingleShot))
	b := NewMockBackend(WithMockDevices(continuous))
	c, err := NewController(b, nil, nil, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	defer c.Close()

	c.Start()
	if continuous.FocusMode() != FocusContinuous {
		t.Errorf("Expected continuous autofocus preferred, got %v", continuous.FocusMode())
	}
}

func TestGateway_FocusFallsBackToSingleShot(t *testing.T) {
	single := NewMockDevice("single-cam", WithFocusModes(FocusSingleShot))
	b := NewMockBackend(WithMockDevices(single))
	c, err := NewController(b, nil, nil, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	defer c.Close()

	c.Start()
	if single.FocusMode() != FocusSingleShot {
		t.Errorf("Expected single-shot fallback, got %v", single.FocusMode())
	}
	if single.FocusModeWrites() != 1 {
		t.Errorf("Expected exactly one focus mode write, got %d", single.FocusModeWrites())
	}
}

func TestGateway_NoFocusModeSupportedWritesNothing(t *testing.T) {
	fixed := NewMockDevice("fixed-cam", WithFocusModes())
	b := NewMockBackend(WithMockDevices(fixed))
	c, err := NewController(b, nil, nil, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	defer c.Close()

	c.Start()
	if fixed.FocusModeWrites() != 0 {
		t.Errorf("Expected no focus write on fixed-focus device, got %d", fixed.FocusModeWrites())
	}
}
