package gocvcam

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"gocv.io/x/gocv"

	"github.com/openscan/go-scancam/pkg/capture"
)

// device is a lightweight descriptor for one OpenCV device index. The
// capture handle itself lives on the input; control writes reach the
// hardware only while an input has the device open.
type device struct {
	index  int
	uid    string
	facing capture.Facing

	mu     sync.Mutex
	locked bool
	vc     *gocv.VideoCapture
	closed bool
}

func newDevice(index int, facing capture.Facing) *device {
	return &device{
		index:  index,
		uid:    uuid.NewString(),
		facing: facing,
	}
}

func (d *device) ID() string   { return d.uid }
func (d *device) Name() string { return fmt.Sprintf("camera-%d", d.index) }

func (d *device) Facing() capture.Facing { return d.facing }

// Kind is always wide-angle: OpenCV exposes no assembly information, so
// every device negotiates through the wide-angle preference slot.
func (d *device) Kind() capture.DeviceKind { return capture.KindWideAngle }

func (d *device) LockForConfiguration() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return capture.ErrClosed
	}
	if d.vc == nil || d.locked {
		return capture.ErrDeviceBusy
	}
	d.locked = true
	return nil
}

func (d *device) Unlock() {
	d.mu.Lock()
	d.locked = false
	d.mu.Unlock()
}

// TorchAvailable is always false: webcams have no torch. The gateway checks
// this before writing, so SetTorch is never reached in practice.
func (d *device) TorchAvailable() bool { return false }

func (d *device) TorchActive() bool { return false }

func (d *device) SetTorch(on bool) error { return capture.ErrUnsupported }

func (d *device) SupportsFocusMode(mode capture.FocusMode) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	// The OpenCV autofocus property covers continuous autofocus and a
	// locked lens; there is no single-shot trigger.
	return d.vc != nil && (mode == capture.FocusContinuous || mode == capture.FocusLocked)
}

func (d *device) SetFocusMode(mode capture.FocusMode) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.vc == nil {
		return capture.ErrDeviceBusy
	}
	switch mode {
	case capture.FocusContinuous:
		d.vc.Set(gocv.VideoCaptureAutoFocus, 1)
	case capture.FocusLocked:
		d.vc.Set(gocv.VideoCaptureAutoFocus, 0)
	default:
		return capture.ErrUnsupported
	}
	return nil
}

// FocusPointSupported is always false: OpenCV has no focus region control.
func (d *device) FocusPointSupported() bool { return false }

func (d *device) SetFocusPoint(p capture.Point) error { return capture.ErrUnsupported }

func (d *device) Close() error {
	d.mu.Lock()
	d.closed = true
	d.vc = nil
	d.mu.Unlock()
	return nil
}

// open opens the capture handle and binds it to a new input.
func (d *device) open() (*input, error) {
	vc, err := gocv.OpenVideoCapture(d.index)
	if err != nil {
		return nil, fmt.Errorf("gocvcam: open device %d: %w", d.index, err)
	}
	if !vc.IsOpened() {
		vc.Close()
		return nil, fmt.Errorf("gocvcam: device %d: %w", d.index, capture.ErrNoDevice)
	}

	d.mu.Lock()
	d.vc = vc
	d.mu.Unlock()

	return &input{dev: d, vc: vc}, nil
}

// detach unbinds the capture handle from the device.
func (d *device) detach() {
	d.mu.Lock()
	d.vc = nil
	d.mu.Unlock()
}

var _ capture.Device = (*device)(nil)

// input owns the opened video capture handle for exactly one device.
type input struct {
	dev *device
	vc  *gocv.VideoCapture

	closeOnce sync.Once
}

func (i *input) Device() capture.Device { return i.dev }

func (i *input) Close() error {
	var err error
	i.closeOnce.Do(func() {
		i.dev.detach()
		err = i.vc.Close()
	})
	return err
}

var _ capture.Input = (*input)(nil)
