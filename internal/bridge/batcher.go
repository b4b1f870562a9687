package bridge

import (
	"context"
	"log/slog"
	"time"

	"github.com/hightidelight/osc-bridge/internal/highlight"
	"github.com/hightidelight/osc-bridge/internal/metrics"
)

// Forwarder delivers one event downstream.
type Forwarder interface {
	Forward(ev highlight.Event) error
}

// Batcher drains a Buffer on every tick and forwards the drained events in
// order.
type Batcher struct {
	Buffer    *Buffer
	Forwarder Forwarder
	Interval  time.Duration
	Logger    *slog.Logger
	Metrics   *metrics.Metrics

	warn      *throttledLogger
	throttled []*throttledLogger // flushed on every tick along with warn
}

// Run ticks until ctx is cancelled. Events still queued at cancellation are
// abandoned.
func (b *Batcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(b.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.flushWarnings(true)
			return nil
		case <-ticker.C:
			b.flush()
			b.flushWarnings(false)
		}
	}
}

// flush drains the buffer and forwards what it held. It returns the batch
// size.
func (b *Batcher) flush() int {
	events := b.Buffer.Drain()
	b.Metrics.BatchDrained(len(events))
	if len(events) == 0 {
		return 0
	}

	b.logger().Debug("Processing batch", "size", len(events))
	b.forward(events)
	return len(events)
}

// forward sends events in order. A failed event is logged and the rest
// still go out.
func (b *Batcher) forward(events []highlight.Event) {
	for i, ev := range events {
		if err := b.Forwarder.Forward(ev); err != nil {
			b.Metrics.ForwardError()
			b.warner().Warn("Forward failed", "position", i, "event", ev, "error", err)
			continue
		}
		b.Metrics.EventForwarded()
	}
}

func (b *Batcher) logger() *slog.Logger {
	if b.Logger != nil {
		return b.Logger
	}
	return slog.Default().With("component", "batcher")
}

func (b *Batcher) warner() *throttledLogger {
	if b.warn == nil {
		b.warn = newThrottledLogger(b.logger())
	}
	return b.warn
}

// flushWarnings reports warnings held back by throttling.
func (b *Batcher) flushWarnings(force bool) {
	b.warner().flush(force)
	for _, w := range b.throttled {
		w.flush(force)
	}
}
