package gocvcam

import (
	"log/slog"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/openscan/go-scancam/pkg/capture"
)

// session drives the capture loop: one goroutine reads frames at the
// configured rate, encodes them to JPEG and hands them to the output.
//
// The session mutex covers both topology and each frame grab, so a
// begin/commit bracket can never observe a half-delivered frame and a frame
// grab can never observe a half-configured topology. Brackets therefore wait
// at most one frame interval.
type session struct {
	logger    *slog.Logger
	framerate int
	quality   int

	mu          sync.Mutex
	configDepth int
	running     bool
	closed      bool
	input       *input
	output      capture.Output
	preset      capture.ResolutionPreset
	seq         uint64

	stopCh chan struct{}
	doneCh chan struct{}
}

func newSession(framerate, quality int, logger *slog.Logger) *session {
	if logger == nil {
		logger = slog.Default()
	}
	return &session{
		logger:    logger,
		framerate: framerate,
		quality:   quality,
		preset:    capture.PresetLow,
	}
}

func (s *session) BeginConfiguration() {
	s.mu.Lock()
	s.configDepth++
	s.mu.Unlock()
}

func (s *session) CommitConfiguration() {
	s.mu.Lock()
	if s.configDepth > 0 {
		s.configDepth--
	}
	s.mu.Unlock()
}

func (s *session) CanAddInput(in capture.Input) bool {
	_, ok := in.(*input)
	if !ok {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input == nil && !s.closed
}

func (s *session) AddInput(in capture.Input) {
	gi, ok := in.(*input)
	if !ok {
		return
	}
	s.mu.Lock()
	s.input = gi
	s.mu.Unlock()
}

func (s *session) RemoveInput(in capture.Input) {
	s.mu.Lock()
	if s.input == in {
		s.input = nil
	}
	s.mu.Unlock()
}

func (s *session) CanAddOutput(out capture.Output) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.output == nil && !s.closed
}

func (s *session) AddOutput(out capture.Output) {
	s.mu.Lock()
	s.output = out
	s.mu.Unlock()
}

func (s *session) RemoveOutput(out capture.Output) {
	s.mu.Lock()
	if s.output == out {
		s.output = nil
	}
	s.mu.Unlock()
}

// SupportsPreset probes by applying the tier's dimensions and reading back
// what the driver settled on. The probe mutates the capture size, which is
// harmless: negotiation always finishes with SetPreset, and both run under
// the controller's session lock.
func (s *session) SupportsPreset(p capture.ResolutionPreset) bool {
	if p == capture.PresetLow {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.input == nil {
		return false
	}
	w, h := p.Dimensions()
	vc := s.input.vc
	vc.Set(gocv.VideoCaptureFrameWidth, float64(w))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(h))
	return int(vc.Get(gocv.VideoCaptureFrameWidth)) >= w &&
		int(vc.Get(gocv.VideoCaptureFrameHeight)) >= h
}

func (s *session) SetPreset(p capture.ResolutionPreset) {
	s.mu.Lock()
	s.preset = p
	if s.input != nil {
		w, h := p.Dimensions()
		s.input.vc.Set(gocv.VideoCaptureFrameWidth, float64(w))
		s.input.vc.Set(gocv.VideoCaptureFrameHeight, float64(h))
		s.input.vc.Set(gocv.VideoCaptureFPS, float64(s.framerate))
	}
	s.mu.Unlock()
}

func (s *session) Preset() capture.ResolutionPreset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.preset
}

func (s *session) StartRunning() {
	s.mu.Lock()
	if s.running || s.closed {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	stop, done := s.stopCh, s.doneCh
	s.mu.Unlock()

	go s.run(stop, done)
}

func (s *session) StopRunning() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	stop, done := s.stopCh, s.doneCh
	s.mu.Unlock()

	close(stop)
	<-done
}

func (s *session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *session) Close() error {
	s.StopRunning()
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func (s *session) run(stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(time.Second / time.Duration(s.framerate))
	defer ticker.Stop()

	img := gocv.NewMat()
	defer img.Close()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.grab(&img)
		}
	}
}

// grab reads, encodes and delivers one frame. Skipped while a configuration
// bracket is open or the topology is incomplete.
func (s *session) grab(img *gocv.Mat) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.configDepth > 0 || s.input == nil || s.output == nil {
		return
	}
	if ok := s.input.vc.Read(img); !ok || img.Empty() {
		return
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, *img, []int{gocv.IMWriteJpegQuality, s.quality})
	if err != nil {
		s.logger.Debug("frame encode failed", "error", err)
		return
	}
	data := make([]byte, len(buf.GetBytes()))
	copy(data, buf.GetBytes())
	buf.Close()

	s.seq++
	s.output.Deliver(capture.Frame{
		Data:      data,
		Width:     img.Cols(),
		Height:    img.Rows(),
		Seq:       s.seq,
		Timestamp: time.Now(),
	})
}

var _ capture.Session = (*session)(nil)
