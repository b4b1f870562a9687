package bridge

import (
	"fmt"
	"log/slog"

	"github.com/hightidelight/osc-bridge/internal/highlight"
	"github.com/hightidelight/osc-bridge/osc"
)

// Sender forwards events to the editor over one connected UDP socket.
type Sender struct {
	client  *osc.Client
	address string
	logger  *slog.Logger
}

// NewSender dials target once. address is the OSC address put on every
// outbound message.
func NewSender(target, address string, logger *slog.Logger) (*Sender, error) {
	if logger == nil {
		logger = slog.Default()
	}
	client, err := osc.Dial(target)
	if err != nil {
		return nil, fmt.Errorf("open forward socket: %w", err)
	}
	return &Sender{
		client:  client,
		address: address,
		logger:  logger.With("component", "sender"),
	}, nil
}

// Forward encodes ev and writes it as one datagram.
func (s *Sender) Forward(ev highlight.Event) error {
	if err := s.client.Send(highlight.Encode(ev, s.address)); err != nil {
		return fmt.Errorf("send to %s: %w", s.client.RemoteAddr(), err)
	}
	s.logger.Debug("Forwarded highlight", "event", ev)
	return nil
}

// Target is the address events are sent to.
func (s *Sender) Target() string {
	return s.client.RemoteAddr().String()
}

func (s *Sender) Close() error {
	return s.client.Close()
}
