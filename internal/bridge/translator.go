package bridge

import (
	"log/slog"

	"github.com/hightidelight/osc-bridge/internal/highlight"
	"github.com/hightidelight/osc-bridge/internal/metrics"
	"github.com/hightidelight/osc-bridge/osc"
)

// Sink receives each successfully translated event.
type Sink func(ev highlight.Event)

// Translator turns highlight messages into events. It is registered on a
// Dispatcher for the monitored address, so every message it sees has
// already passed the address filter.
type Translator struct {
	Schema  highlight.Schema
	Sink    Sink
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	warn *throttledLogger
}

// HandleMessage implements osc.Method.
func (t *Translator) HandleMessage(msg *osc.Message) {
	ev, err := highlight.Translate(msg.Arguments, t.Schema)
	if err != nil {
		t.Metrics.SchemaError()
		t.warner().Warn("Dropping highlight", "message", msg.String(), "error", err)
		return
	}
	t.logger().Debug("Parsed highlight", "event", ev)
	t.Sink(ev)
}

// ignore is the Dispatcher's NotFound hook.
func (t *Translator) ignore(msg *osc.Message) {
	t.Metrics.MessageIgnored()
	t.logger().Debug("Ignoring message", "address", msg.Address)
}

// nested is the Dispatcher's Nested hook.
func (t *Translator) nested(b *osc.Bundle) {
	t.Metrics.NestedBundleDropped()
	t.warner().Warn("Dropping nested bundle", "elements", len(b.Elements))
}

// newDispatcher routes address to t and wires t's hooks for everything else.
func newDispatcher(address string, t *Translator) (*osc.Dispatcher, error) {
	d := &osc.Dispatcher{
		NotFound: osc.MethodFunc(t.ignore),
		Nested:   t.nested,
	}
	if err := d.Handle(address, t); err != nil {
		return nil, err
	}
	return d, nil
}

func (t *Translator) logger() *slog.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return slog.Default().With("component", "translator")
}

func (t *Translator) warner() *throttledLogger {
	if t.warn == nil {
		t.warn = newThrottledLogger(t.logger())
	}
	return t.warn
}
