package osc

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"
)

const (
	bundleTagString = "#bundle"

	// "#bundle\0" followed by the timetag.
	bundleHeaderSize = 16
)

// Bundle represents an OSC bundle. It consists of the OSC-string "#bundle"
// followed by an OSC Time Tag, followed by zero or more OSC bundle/message
// elements. The OSC-timetag is a 64-bit fixed point time tag. See
// http://opensoundcontrol.org/spec-1_0.html for more information.
type Bundle struct {
	Timetag  Timetag
	Elements []Packet
}

// Verify that Bundle implements the Packet interface.
var _ Packet = (*Bundle)(nil)

// NewBundle returns a bundle with an immediate time tag holding the given elements.
func NewBundle(elems ...Packet) *Bundle {
	b := &Bundle{Timetag: NewImmediateTimetag()}
	for _, e := range elems {
		_ = b.Append(e)
	}
	return b
}

// NewBundleWithTime returns an empty OSC Bundle with the given time tag.
func NewBundleWithTime(time time.Time) *Bundle {
	return &Bundle{Timetag: NewTimetagFromTime(time)}
}

// Append appends an OSC bundle or OSC message to the bundle.
func (b *Bundle) Append(pck Packet) error {
	switch t := pck.(type) {
	default:
		return fmt.Errorf("unsupported OSC packet type: only Bundle and Message are supported")

	case *Bundle, *Message:
		b.Elements = append(b.Elements, t)
	}

	return nil
}

// MarshalBinary implements the encoding.BinaryMarshaler interface.
func (b *Bundle) MarshalBinary() ([]byte, error) {
	data := getBuffer()
	defer putBuffer(data)

	if err := b.LightMarshalBinary(data); err != nil {
		return nil, err
	}
	return append([]byte(nil), data.Bytes()...), nil
}

// LightMarshalBinary appends the encoded bundle to data with the following
// format:
// 1. Bundle string: '#bundle'
// 2. OSC timetag
// 3. Length of first OSC bundle element
// 4. First bundle element
// 5. Length of n OSC bundle element
// 6. n bundle element
func (b *Bundle) LightMarshalBinary(data *bytes.Buffer) error {
	start := data.Len()
	writePaddedString(bundleTagString, data)

	var buf [bit64Size]byte
	binary.BigEndian.PutUint64(buf[:], uint64(b.Timetag))
	data.Write(buf[:])

	for _, elem := range b.Elements {
		// Reserve the size field and patch it once the element is written.
		sizeAt := data.Len()
		data.Write(zeros[:])

		if err := elem.LightMarshalBinary(data); err != nil {
			return err
		}

		size := data.Len() - sizeAt - bit32Size
		binary.BigEndian.PutUint32(data.Bytes()[sizeAt:], uint32(size))
	}

	if n := data.Len() - start; n > MaxPacketSize {
		return fmt.Errorf("LightMarshalBinary: bundle too large: %d", n)
	}

	return nil
}

// NewBundleFromData returns a new OSC bundle created from the parsed data.
func NewBundleFromData(data []byte) (*Bundle, error) {
	b := &Bundle{}
	if err := b.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return b, nil
}

// UnmarshalBinary implements the encoding.BinaryUnmarshaler interface. The
// resulting bundle does not alias data.
func (b *Bundle) UnmarshalBinary(data []byte) error {
	return b.unmarshalBinary(data, 0)
}

func (b *Bundle) unmarshalBinary(data []byte, depth int) error {
	if (len(data) % bit32Size) != 0 {
		return malformed("bundle length %d isn't a multiple of 4", len(data))
	}

	if len(data) < bundleHeaderSize {
		return malformed("bundle is too short")
	}

	// Read the '#bundle' OSC string
	startTag, n, err := parsePaddedString(data)
	if err != nil {
		return err
	}
	if startTag != bundleTagString {
		return malformed("invalid bundle start tag: %q", startTag)
	}
	data = data[n:]

	b.Timetag = Timetag(binary.BigEndian.Uint64(data[:bit64Size]))
	data = data[bit64Size:]
	b.Elements = nil

	// Past the nesting limit only the header is read. The bundle stays in
	// its parent, empty, so its siblings are still delivered.
	if depth >= maxBundleNesting {
		return nil
	}

	for len(data) > 0 {
		if len(data) < bit32Size {
			return malformed("truncated bundle element size")
		}

		length := int64(binary.BigEndian.Uint32(data[:bit32Size]))
		data = data[bit32Size:]
		if length == 0 || length > int64(len(data)) || length%bit32Size != 0 {
			return malformed("invalid bundle element length: %d", length)
		}

		p, err := parsePacket(data[:length], depth+1)
		if err != nil {
			return err
		}
		b.Elements = append(b.Elements, p)
		data = data[length:]
	}

	return nil
}
