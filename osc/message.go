package osc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Message represents a single OSC message. An OSC message consists of an OSC
// address pattern and zero or more arguments.
type Message struct {
	Address   string
	Arguments []interface{}
}

// Verify that Messages implements the Packet interface.
var _ Packet = (*Message)(nil)

// NewMessage returns a new Message. The address parameter is the OSC address.
func NewMessage(addr string, args ...interface{}) *Message {
	return &Message{Address: addr, Arguments: args}
}

// Append appends the given arguments to the arguments list.
func (m *Message) Append(args ...interface{}) error {
	for _, a := range args {
		if ToTypeTag(a) == TypeInvalid {
			return fmt.Errorf("Append: unsupported type: %T", a)
		}
	}
	m.Arguments = append(m.Arguments, args...)
	return nil
}

// TypeTags returns the type tag string.
func (m *Message) TypeTags() (string, error) {
	if m == nil {
		return "", fmt.Errorf("TypeTags: message is nil")
	}
	return GetTypeTags(m.Arguments)
}

// String implements the fmt.Stringer interface.
func (m *Message) String() string {
	if m == nil {
		return ""
	}

	tags, _ := m.TypeTags()

	strBuf := getBuffer()
	defer putBuffer(strBuf)

	strBuf.WriteString(m.Address)
	if len(tags) <= 1 {
		return strBuf.String()
	}

	strBuf.WriteByte(' ')
	strBuf.WriteString(tags)

	for _, arg := range m.Arguments {
		switch arg := arg.(type) {
		case bool, int32, int64, float32, float64:
			fmt.Fprintf(strBuf, " %v", arg)

		case string:
			fmt.Fprintf(strBuf, " %q", arg)

		case nil:
			strBuf.WriteString(" Nil")

		case []byte:
			fmt.Fprintf(strBuf, " blob(%d)", len(arg))

		case Timetag:
			fmt.Fprintf(strBuf, " %d", uint64(arg))
		}
	}

	return strBuf.String()
}

// MarshalBinary implements the encoding.BinaryMarshaler interface.
func (m *Message) MarshalBinary() ([]byte, error) {
	data := getBuffer()
	defer putBuffer(data)

	if err := m.LightMarshalBinary(data); err != nil {
		return nil, err
	}
	return append([]byte(nil), data.Bytes()...), nil
}

// LightMarshalBinary appends the encoded message to data. The buffer has the
// following format:
// 1. OSC Address Pattern
// 2. OSC Type Tag String
// 3. OSC Arguments
func (m *Message) LightMarshalBinary(data *bytes.Buffer) error {
	if !strings.HasPrefix(m.Address, "/") {
		return fmt.Errorf("LightMarshalBinary: address %q must start with '/'", m.Address)
	}
	if strings.IndexByte(m.Address, 0) != -1 {
		return fmt.Errorf("LightMarshalBinary: address contains a null byte")
	}

	typetags, err := m.TypeTags()
	if err != nil {
		return fmt.Errorf("LightMarshalBinary: %w", err)
	}

	start := data.Len()
	writePaddedString(m.Address, data)
	writePaddedString(typetags, data)

	var buf [bit64Size]byte
	for _, arg := range m.Arguments {
		switch t := arg.(type) {
		case bool, nil:
			// Encoded in the type tag only.
		case int32:
			binary.BigEndian.PutUint32(buf[:bit32Size], uint32(t))
			data.Write(buf[:bit32Size])
		case float32:
			binary.BigEndian.PutUint32(buf[:bit32Size], math.Float32bits(t))
			data.Write(buf[:bit32Size])
		case int64:
			binary.BigEndian.PutUint64(buf[:], uint64(t))
			data.Write(buf[:])
		case float64:
			binary.BigEndian.PutUint64(buf[:], math.Float64bits(t))
			data.Write(buf[:])
		case Timetag:
			binary.BigEndian.PutUint64(buf[:], uint64(t))
			data.Write(buf[:])
		case string:
			if strings.IndexByte(t, 0) != -1 {
				return fmt.Errorf("LightMarshalBinary: string argument contains a null byte")
			}
			writePaddedString(t, data)
		case []byte:
			writeBlob(t, data)
		}
	}

	if n := data.Len() - start; n > MaxPacketSize {
		return fmt.Errorf("LightMarshalBinary: packet too large: %d", n)
	}

	return nil
}

// NewMessageFromData returns a new OSC message created from the parsed data.
func NewMessageFromData(data []byte) (*Message, error) {
	msg := &Message{}
	if err := msg.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return msg, nil
}

// UnmarshalBinary implements the encoding.BinaryUnmarshaler interface. The
// resulting message does not alias data.
func (m *Message) UnmarshalBinary(data []byte) error {
	if len(data) == 0 || data[0] != '/' {
		return malformed("data not a valid OSC message")
	}

	if (len(data) % bit32Size) != 0 {
		return malformed("message length %d isn't a multiple of 4", len(data))
	}

	addr, n, err := parsePaddedString(data)
	if err != nil {
		return fmt.Errorf("address: %w", err)
	}

	m.Address = addr
	m.Arguments = nil
	if err = m.parseArguments(data[n:]); err != nil {
		return fmt.Errorf("message %s: %w", addr, err)
	}

	return nil
}

// parseArguments reads the type tag string and the arguments it describes.
func (m *Message) parseArguments(data []byte) error {
	// Messages without a type tag string carry no arguments.
	if len(data) == 0 {
		return nil
	}

	typetags, n, err := parsePaddedString(data)
	if err != nil {
		return fmt.Errorf("type tags: %w", err)
	}
	data = data[n:]

	if len(typetags) == 0 || typetags[0] != ',' {
		return malformed("unsupported typetag string: %q", typetags)
	}
	if len(typetags) == 1 {
		return nil
	}

	m.Arguments = make([]interface{}, 0, len(typetags)-1)

	for _, c := range []byte(typetags[1:]) {
		switch TypeTag(c) {
		default:
			return malformed("unsupported typetag: %q", c)

		case TypeInt32:
			if len(data) < bit32Size {
				return malformed("not enough data for int32")
			}
			m.Arguments = append(m.Arguments, int32(binary.BigEndian.Uint32(data)))
			data = data[bit32Size:]

		case TypeFloat32:
			if len(data) < bit32Size {
				return malformed("not enough data for float32")
			}
			m.Arguments = append(m.Arguments, math.Float32frombits(binary.BigEndian.Uint32(data)))
			data = data[bit32Size:]

		case TypeInt64:
			if len(data) < bit64Size {
				return malformed("not enough data for int64")
			}
			m.Arguments = append(m.Arguments, int64(binary.BigEndian.Uint64(data)))
			data = data[bit64Size:]

		case TypeFloat64:
			if len(data) < bit64Size {
				return malformed("not enough data for float64")
			}
			m.Arguments = append(m.Arguments, math.Float64frombits(binary.BigEndian.Uint64(data)))
			data = data[bit64Size:]

		case TypeTimeTag:
			if len(data) < bit64Size {
				return malformed("not enough data for timetag")
			}
			m.Arguments = append(m.Arguments, Timetag(binary.BigEndian.Uint64(data)))
			data = data[bit64Size:]

		case TypeString:
			str, n, err := parsePaddedString(data)
			if err != nil {
				return fmt.Errorf("string argument: %w", err)
			}
			m.Arguments = append(m.Arguments, str)
			data = data[n:]

		case TypeBlob:
			blob, n, err := parseBlob(data)
			if err != nil {
				return err
			}
			m.Arguments = append(m.Arguments, blob)
			data = data[n:]

		case TypeNil:
			m.Arguments = append(m.Arguments, nil)

		case TypeTrue:
			m.Arguments = append(m.Arguments, true)

		case TypeFalse:
			m.Arguments = append(m.Arguments, false)
		}
	}

	return nil
}
