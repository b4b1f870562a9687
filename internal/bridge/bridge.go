// Package bridge runs the highlight pipeline: it receives OSC datagrams,
// translates the ones addressed to the monitored address and forwards the
// resulting events to the editor plugin.
//
// With a positive batch interval the bridge runs two loops, a receive loop
// that fills a Buffer and a Batcher that drains it on every tick. With a
// zero interval a single loop receives, translates and forwards each
// message before reading the next.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hightidelight/osc-bridge/internal/config"
	"github.com/hightidelight/osc-bridge/internal/highlight"
	"github.com/hightidelight/osc-bridge/internal/metrics"
	"github.com/hightidelight/osc-bridge/osc"
)

// ErrNotOpen is returned by Run before Open has succeeded.
var ErrNotOpen = errors.New("bridge: not open")

// serialReadTimeout bounds each read in the serial model so the loop
// notices cancellation between datagrams.
const serialReadTimeout = 100 * time.Millisecond

// Bridge owns the two UDP sockets and runs the pipeline between them.
type Bridge struct {
	cfg     config.Config
	base    *slog.Logger
	logger  *slog.Logger
	metrics *metrics.Metrics

	conn   net.PacketConn
	sender *Sender
	buffer Buffer
}

// New returns a Bridge for cfg. m may be nil.
func New(cfg config.Config, logger *slog.Logger, m *metrics.Metrics) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bridge{
		cfg:     cfg,
		base:    logger,
		logger:  logger.With("component", "bridge"),
		metrics: m,
	}
	b.buffer.onDepth = m.SetBufferDepth
	return b
}

// Open binds the receive socket and dials the forward target.
func (b *Bridge) Open() error {
	conn, err := net.ListenPacket("udp", b.cfg.ListenAddr())
	if err != nil {
		return fmt.Errorf("bind %s: %w", b.cfg.ListenAddr(), err)
	}

	sender, err := NewSender(b.cfg.ForwardAddr(), b.cfg.ForwardAddress, b.base)
	if err != nil {
		_ = conn.Close()
		return err
	}

	b.conn = conn
	b.sender = sender
	return nil
}

// ListenAddr is the bound receive address, or nil before Open.
func (b *Bridge) ListenAddr() net.Addr {
	if b.conn == nil {
		return nil
	}
	return b.conn.LocalAddr()
}

// Run processes datagrams until ctx is cancelled or the receive socket
// fails. It returns nil after cancellation. Events still buffered at that
// point are not forwarded.
func (b *Bridge) Run(ctx context.Context) error {
	if b.conn == nil {
		return ErrNotOpen
	}

	batcher := &Batcher{
		Buffer:    &b.buffer,
		Forwarder: b.sender,
		Interval:  b.cfg.BatchInterval(),
		Logger:    b.base.With("component", "batcher"),
		Metrics:   b.metrics,
	}
	translator := &Translator{
		Schema:  b.cfg.Schema,
		Logger:  b.base.With("component", "translator"),
		Metrics: b.metrics,
	}
	dispatcher, err := newDispatcher(b.cfg.Address, translator)
	if err != nil {
		return fmt.Errorf("monitored address: %w", err)
	}

	server := &osc.Server{
		Logger: b.base.With("component", "listener"),
		ErrorHandler: func(err error, addr net.Addr) {
			b.metrics.DatagramReceived()
			b.metrics.DecodeError()
			b.logger.Warn("Dropping malformed datagram", "from", addr, "error", err)
		},
	}
	batcher.throttled = []*throttledLogger{translator.warner()}

	if batcher.Interval <= 0 {
		translator.Sink = func(ev highlight.Event) {
			batcher.forward([]highlight.Event{ev})
		}
		server.ReadTimeout = serialReadTimeout

		b.logger.Info("Bridge running", "mode", "serial", "listen", b.ListenAddr().String())
		err := server.Serve(ctx, b.conn, b.handle(dispatcher, func() {
			batcher.flushWarnings(false)
		}))
		batcher.flushWarnings(true)
		return err
	}

	translator.Sink = func(ev highlight.Event) {
		b.buffer.Push(ev)
		b.metrics.EventEnqueued()
	}
	handler := b.handle(dispatcher, nil)

	b.logger.Info("Bridge running", "mode", "concurrent", "listen", b.ListenAddr().String(),
		"batch_interval", batcher.Interval)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Serve(gctx, b.conn, handler)
	})
	g.Go(func() error {
		return batcher.Run(gctx)
	})
	return g.Wait()
}

// handle counts and dispatches each packet. after, if set, runs once the
// packet has been handled.
func (b *Bridge) handle(d *osc.Dispatcher, after func()) osc.Handler {
	return func(p osc.Packet, addr net.Addr) {
		b.metrics.DatagramReceived()
		if bundle, ok := p.(*osc.Bundle); ok {
			b.logger.Debug("Received bundle", "from", addr, "elements", len(bundle.Elements))
		}
		d.Dispatch(p, addr)
		if after != nil {
			after()
		}
	}
}

// Close releases both sockets.
func (b *Bridge) Close() error {
	var errs []error
	if b.conn != nil {
		errs = append(errs, b.conn.Close())
		b.conn = nil
	}
	if b.sender != nil {
		errs = append(errs, b.sender.Close())
		b.sender = nil
	}
	return errors.Join(errs...)
}
