package capture

import (
	"errors"
	"testing"
	"time"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestController_StartTwice(t *testing.T) {
	b := NewMockBackend()
	c, err := NewController(b, &MockAnalyzer{}, &MockView{}, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	defer c.Close()

	c.Start()
	c.Start()

	s := b.Session()
	if !s.Running() {
		t.Error("Expected session running after double start")
	}
	if s.InputCount() != 1 {
		t.Errorf("Expected exactly 1 input, got %d", s.InputCount())
	}
	if s.OutputCount() != 1 {
		t.Errorf("Expected exactly 1 output, got %d", s.OutputCount())
	}
	if s.BadMutations() != 0 {
		t.Errorf("Found %d topology mutations outside a bracket", s.BadMutations())
	}

	st := c.Status()
	if st.State != StateRunning {
		t.Errorf("Expected running state, got %v", st.State)
	}
	if st.DeviceAbsent {
		t.Error("Expected a device to be bound")
	}
	if st.EffectivePreset != PresetHigh.String() {
		t.Errorf("Expected effective preset high, got %q", st.EffectivePreset)
	}
}

func TestController_StopWhenStopped(t *testing.T) {
	b := NewMockBackend()
	c, err := NewController(b, nil, nil, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	defer c.Close()

	// Stop before any start must be a no-op.
	c.Stop()
	if st := c.Status(); st.State != StateUninitialized {
		t.Errorf("Expected uninitialized after stop-before-start, got %v", st.State)
	}

	c.Start()
	c.Stop()
	c.Stop()
	if b.Session().Running() {
		t.Error("Expected session stopped")
	}
	if st := c.Status(); st.State != StateStopped {
		t.Errorf("Expected stopped state, got %v", st.State)
	}
}

func TestController_StopTurnsTorchOff(t *testing.T) {
	dev := NewMockDevice("torch-cam", WithTorch())
	b := NewMockBackend(WithMockDevices(dev))
	c, err := NewController(b, nil, nil, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	defer c.Close()

	c.Start()
	c.SetTorch(true)
	if !dev.TorchActive() {
		t.Fatal("Expected torch on")
	}
	writes := dev.TorchWrites()

	c.Stop()
	if dev.TorchActive() {
		t.Error("Expected torch off after stop")
	}
	if dev.TorchWrites() != writes+1 {
		t.Errorf("Expected one torch-off write, got %d extra", dev.TorchWrites()-writes)
	}

	// A second stop sees the torch already off and writes nothing.
	writes = dev.TorchWrites()
	c.Stop()
	if dev.TorchWrites() != writes {
		t.Errorf("Expected no torch write on redundant stop, got %d extra", dev.TorchWrites()-writes)
	}
}

func TestController_FacingChangeWhileRunning(t *testing.T) {
	back := NewMockDevice("back", WithDeviceKind(KindTripleCamera))
	front := NewMockDevice("front", WithDeviceFacing(FacingFront))
	b := NewMockBackend(WithMockDevices(back, front))
	c, err := NewController(b, nil, nil, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	defer c.Close()

	c.Start()
	if st := c.Status(); st.DeviceName != "back" {
		t.Fatalf("Expected back device first, got %q", st.DeviceName)
	}

	c.SetFacing(FacingFront)

	s := b.Session()
	st := c.Status()
	if st.DeviceName != "front" {
		t.Errorf("Expected front device after facing change, got %q", st.DeviceName)
	}
	if st.State != StateRunning {
		t.Errorf("Expected session still running, got %v", st.State)
	}
	if !back.Closed() {
		t.Error("Expected old device to be closed")
	}
	if front.Closed() {
		t.Error("New device must not be closed")
	}
	if s.InputCount() != 1 {
		t.Errorf("Expected exactly 1 input after rebuild, got %d", s.InputCount())
	}
	if s.BadMutations() != 0 {
		t.Errorf("Found %d topology mutations outside a bracket", s.BadMutations())
	}
	// Device swap forces preset renegotiation.
	if s.Preset() != PresetHigh {
		t.Errorf("Expected preset renegotiated to high, got %v", s.Preset())
	}
}

func TestController_QualityHighestDegradesToMedium(t *testing.T) {
	b := NewMockBackend(WithMaxPreset(PresetMedium))
	cfg := DefaultConfig()
	cfg.Quality = PresetHighest.String()
	c, err := NewController(b, nil, nil, cfg, nil)
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	defer c.Close()

	c.Start()

	st := c.Status()
	if st.RequestedQuality != PresetHighest.String() {
		t.Errorf("Requested quality lost: %q", st.RequestedQuality)
	}
	if st.EffectivePreset != PresetMedium.String() {
		t.Errorf("Expected effective preset medium, got %q", st.EffectivePreset)
	}
	if b.Session().Preset() != PresetMedium {
		t.Errorf("Expected session preset medium, got %v", b.Session().Preset())
	}
}

func TestController_SetQualityWhileRunning(t *testing.T) {
	b := NewMockBackend()
	c, err := NewController(b, nil, nil, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	defer c.Close()

	c.Start()
	c.SetQuality(PresetLow)

	if b.Session().Preset() != PresetLow {
		t.Errorf("Expected preset low, got %v", b.Session().Preset())
	}
	if !b.Session().Running() {
		t.Error("Expected session still running after quality change")
	}
}

func TestController_NoDeviceDegradedMode(t *testing.T) {
	b := NewMockBackend(WithMockDevices())
	c, err := NewController(b, &MockAnalyzer{}, nil, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	defer c.Close()

	c.Start()

	s := b.Session()
	if !s.Running() {
		t.Error("Expected session running without an input")
	}
	if s.InputCount() != 0 {
		t.Errorf("Expected no input, got %d", s.InputCount())
	}
	st := c.Status()
	if !st.DeviceAbsent {
		t.Error("Expected device_absent to be reported")
	}
}

func TestController_InputRejectedLeavesSlotAbsent(t *testing.T) {
	dev := NewMockDevice("cam")
	b := NewMockBackend(WithMockDevices(dev), RejectInputs())
	c, err := NewController(b, nil, nil, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	defer c.Close()

	c.Start()

	s := b.Session()
	if s.InputCount() != 0 {
		t.Errorf("Expected rejected input to be skipped, got %d inputs", s.InputCount())
	}
	if !dev.Closed() {
		t.Error("Expected unused device to be closed")
	}
	if s.BadMutations() != 0 {
		t.Errorf("Found %d topology mutations outside a bracket", s.BadMutations())
	}
}

func TestController_SessionCreationFailure(t *testing.T) {
	b := NewMockBackend(WithSessionError(errors.New("no media subsystem")))
	c, err := NewController(b, nil, nil, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	defer c.Close()

	c.Start()
	if st := c.Status(); st.State != StateUninitialized {
		t.Errorf("Expected uninitialized after session failure, got %v", st.State)
	}
}

func TestController_InputOpenFailure(t *testing.T) {
	dev := NewMockDevice("cam")
	b := NewMockBackend(WithMockDevices(dev), WithInputError(errors.New("device wedged")))
	c, err := NewController(b, nil, nil, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	defer c.Close()

	c.Start()

	st := c.Status()
	if st.State != StateRunning {
		t.Errorf("Expected degraded running state, got %v", st.State)
	}
	if !st.DeviceAbsent {
		t.Error("Expected device_absent after input open failure")
	}
	if !dev.Closed() {
		t.Error("Expected device closed after input open failure")
	}
}

func TestController_CloseWithoutStart(t *testing.T) {
	c, err := NewController(NewMockBackend(), nil, nil, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close on never-started controller failed: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Second close failed: %v", err)
	}
}

func TestController_CloseReleasesEverything(t *testing.T) {
	dev := NewMockDevice("cam")
	b := NewMockBackend(WithMockDevices(dev))
	c, err := NewController(b, &MockAnalyzer{}, &MockView{}, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}

	c.Start()
	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Second close failed: %v", err)
	}

	if !dev.Closed() {
		t.Error("Expected device closed")
	}
	s := b.Session()
	if s.Running() {
		t.Error("Expected session stopped")
	}
	if s.InputCount() != 0 || s.OutputCount() != 0 {
		t.Errorf("Expected empty topology, got %d inputs %d outputs",
			s.InputCount(), s.OutputCount())
	}
	if st := c.Status(); st.State != StateClosed {
		t.Errorf("Expected closed state, got %v", st.State)
	}

	// Operations after close are no-ops, not faults.
	c.Start()
	c.SetFacing(FacingFront)
	c.SetTorch(true)
	if st := c.Status(); st.State != StateClosed {
		t.Errorf("Expected controller to stay closed, got %v", st.State)
	}
}

func TestController_TorchToggleRapid(t *testing.T) {
	dev := NewMockDevice("torch-cam", WithTorch())
	b := NewMockBackend(WithMockDevices(dev))
	c, err := NewController(b, nil, nil, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	defer c.Close()

	c.Start()
	for i := 0; i < 100; i++ {
		c.SetTorch(i%2 == 0)
	}

	if dev.TorchActive() {
		t.Error("Expected torch off, last request was off")
	}
	if dev.UnlockedWrites() != 0 {
		t.Errorf("Found %d writes outside the device configuration lock", dev.UnlockedWrites())
	}
	if rej := c.Status().Control.Rejections; rej != 0 {
		t.Errorf("Expected no rejections for sequential toggles, got %d", rej)
	}
}

func TestController_FramesReachAnalyzer(t *testing.T) {
	analyzer := &MockAnalyzer{}
	b := NewMockBackend()
	c, err := NewController(b, analyzer, nil, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	defer c.Close()

	c.Start()
	s := b.Session()
	for i := 0; i < 5; i++ {
		if !s.DeliverFrame() {
			t.Fatal("Expected running session to deliver frames")
		}
		time.Sleep(5 * time.Millisecond)
	}

	waitFor(t, time.Second, func() bool { return analyzer.FrameCount() >= 1 })
}

func TestController_NoDeliveryMidBracket(t *testing.T) {
	b := NewMockBackend()
	c, err := NewController(b, &MockAnalyzer{}, nil, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	defer c.Close()

	c.Start()
	s := b.Session()

	s.BeginConfiguration()
	if s.DeliverFrame() {
		t.Error("Session delivered a frame inside a configuration bracket")
	}
	s.CommitConfiguration()
	if !s.DeliverFrame() {
		t.Error("Session refused to deliver after commit")
	}
}

func TestController_AimMode(t *testing.T) {
	view := &MockView{}
	cfg := DefaultConfig()
	cfg.AimMode = true
	c, err := NewController(NewMockBackend(), nil, view, cfg, nil)
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	defer c.Close()

	if view.Overlays() != 1 {
		t.Errorf("Expected aim overlay from initial config, got %d", view.Overlays())
	}
	c.SetAimMode(false)
	if view.Overlays() != 0 {
		t.Errorf("Expected overlay removed, got %d", view.Overlays())
	}
	c.SetAimMode(true)
	if view.Overlays() != 1 {
		t.Errorf("Expected overlay added, got %d", view.Overlays())
	}
}
