package capture

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// OutputStats contains frame delivery statistics.
type OutputStats struct {
	// Delivered is the number of frames handed to the analyzer.
	Delivered int64 `json:"delivered"`

	// Dropped is the number of frames discarded because the analyzer was
	// still busy with an earlier frame.
	Dropped int64 `json:"dropped"`
}

// frameOutput delivers frames to the analyzer on a dedicated serial worker
// goroutine. Backpressure policy: a frame arriving while the worker is busy
// is dropped, never queued beyond a single slot. Capture latency stays
// bounded at the cost of dropped frames under load.
type frameOutput struct {
	analyzer Analyzer
	logger   *slog.Logger

	ch        chan Frame
	done      chan struct{}
	closeOnce sync.Once

	delivered atomic.Int64
	dropped   atomic.Int64
}

var _ Output = (*frameOutput)(nil)

func newFrameOutput(analyzer Analyzer, logger *slog.Logger) *frameOutput {
	if logger == nil {
		logger = slog.Default()
	}
	o := &frameOutput{
		analyzer: analyzer,
		logger:   logger,
		ch:       make(chan Frame, 1),
		done:     make(chan struct{}),
	}
	go o.run()
	return o
}

// run is the serial work queue: one frame at a time, in arrival order.
func (o *frameOutput) run() {
	defer close(o.done)
	for f := range o.ch {
		if o.analyzer != nil {
			o.analyzer.Analyze(f)
		}
		o.delivered.Add(1)
	}
}

// Deliver enqueues a frame for analysis without blocking the caller.
func (o *frameOutput) Deliver(f Frame) {
	select {
	case o.ch <- f:
	default:
		o.dropped.Add(1)
	}
}

// Stats returns delivery statistics.
func (o *frameOutput) Stats() OutputStats {
	return OutputStats{
		Delivered: o.delivered.Load(),
		Dropped:   o.dropped.Load(),
	}
}

// Close stops the worker and waits for an in-flight Analyze to finish.
// Safe to call more than once. Callers must remove the output from the
// session before closing so no Deliver races the channel close.
func (o *frameOutput) Close() error {
	o.closeOnce.Do(func() {
		close(o.ch)
	})
	<-o.done
	return nil
}
