package osc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"runtime"
	"time"
)

// Handler is called for every packet the server decodes.
type Handler func(packet Packet, addr net.Addr)

// Server reads OSC packets from a packet connection.
type Server struct {
	// ReadTimeout bounds each read. Zero means reads block until a datagram
	// arrives or the Serve context is cancelled.
	ReadTimeout time.Duration

	// ErrorHandler is called for each datagram that fails to decode. The
	// default logs the error at warn level.
	ErrorHandler func(err error, addr net.Addr)

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// ReceivePacket reads one datagram from c and decodes it. Decode failures
// wrap ErrMalformed; read failures, timeouts included, are returned as is.
func (s *Server) ReceivePacket(c net.PacketConn) (Packet, net.Addr, error) {
	if s.ReadTimeout != 0 {
		if err := c.SetReadDeadline(time.Now().Add(s.ReadTimeout)); err != nil {
			return nil, nil, err
		}
	}

	b := bPool.Get().(*[]byte)
	defer bPool.Put(b)

	n, addr, err := c.ReadFrom(*b)
	if err != nil {
		return nil, addr, err
	}

	p, err := ParsePacket((*b)[:n])
	return p, addr, err
}

// Serve reads packets from c and hands them to handler until ctx is
// cancelled or the connection fails. Handlers run on the receive goroutine
// so packets are handled in arrival order. A cancelled ctx unblocks a pending
// read and makes Serve return nil; any other read error is returned.
func (s *Server) Serve(ctx context.Context, c net.PacketConn, handler Handler) error {
	stop := context.AfterFunc(ctx, func() {
		_ = c.SetReadDeadline(time.Now())
	})
	defer stop()

	for {
		if ctx.Err() != nil {
			return nil
		}

		p, addr, err := s.ReceivePacket(c)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, ErrMalformed) {
				s.handleError(err, addr)
				continue
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			return fmt.Errorf("osc: receive: %w", err)
		}

		s.serve(handler, p, addr)
	}
}

func (s *Server) serve(handler Handler, p Packet, addr net.Addr) {
	defer func() {
		if err := recover(); err != nil {
			buf := make([]byte, 4096)
			buf = buf[:runtime.Stack(buf, false)]
			s.logger().Error("osc: panic handling packet", "from", addr, "panic", err, "stack", string(buf))
		}
	}()
	handler(p, addr)
}

func (s *Server) handleError(err error, addr net.Addr) {
	if s.ErrorHandler != nil {
		s.ErrorHandler(err, addr)
		return
	}
	s.logger().Warn("osc: dropping malformed packet", "from", addr, "error", err)
}

func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
