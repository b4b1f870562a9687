package osc

import (
	"bytes"
	"encoding"
	"errors"
	"fmt"
)

const (
	// MaxPacketSize is the largest datagram the server reads and the largest packet the encoder produces.
	MaxPacketSize = 65535

	bit32Size = 4
	bit64Size = 8

	// maxBundleNesting bounds the recursion of the bundle parser. Bundles
	// this deep are decoded without their elements. How many levels are
	// actually processed is decided by the Dispatcher.
	maxBundleNesting = 8
)

// ErrMalformed is wrapped by every decode error.
var ErrMalformed = errors.New("osc: malformed packet")

// Packet is the interface for Message and Bundle.
type Packet interface {
	encoding.BinaryMarshaler

	// LightMarshalBinary appends the encoded packet to data.
	LightMarshalBinary(data *bytes.Buffer) error
}

// ParsePacket parses the given bytes into a *Message or a *Bundle. The
// returned packet does not alias data.
func ParsePacket(data []byte) (Packet, error) {
	return parsePacket(data, 0)
}

func parsePacket(data []byte, depth int) (Packet, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty packet", ErrMalformed)
	}

	switch data[0] {
	case '/':
		m := &Message{}
		if err := m.UnmarshalBinary(data); err != nil {
			return nil, err
		}
		return m, nil
	case '#':
		b := &Bundle{}
		if err := b.unmarshalBinary(data, depth); err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%w: unknown packet type %q", ErrMalformed, data[0])
	}
}

func malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformed, fmt.Sprintf(format, args...))
}
