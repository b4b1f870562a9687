package osc

import (
	"bytes"
	"encoding/binary"
	"io"
)

////
// De/Encoding functions
////

// parseBlob parses an OSC blob from data. It returns a copy of the blob
// contents and the number of bytes consumed, padding included.
func parseBlob(data []byte) ([]byte, int, error) {
	if len(data) < bit32Size {
		return nil, 0, malformed("blob length: %v", io.ErrUnexpectedEOF)
	}

	blobLen := int(binary.BigEndian.Uint32(data[:bit32Size]))
	data = data[bit32Size:]
	if blobLen < 0 || blobLen > len(data) {
		return nil, 0, malformed("invalid blob length %d", blobLen)
	}

	n := bit32Size + blobLen
	n += padBytesNeeded(n)
	if n > bit32Size+len(data) {
		return nil, 0, malformed("blob padding: %v", io.ErrUnexpectedEOF)
	}

	blob := make([]byte, blobLen)
	copy(blob, data)
	return blob, n, nil
}

// writeBlob writes data as an OSC blob into b. If the length of data isn't
// 32-bit aligned, padding bytes will be added.
func writeBlob(data []byte, b *bytes.Buffer) int {
	var size [bit32Size]byte
	binary.BigEndian.PutUint32(size[:], uint32(len(data)))
	b.Write(size[:])
	b.Write(data)

	n := bit32Size + len(data)
	pad := padBytesNeeded(n)
	b.Write(zeros[:pad])
	return n + pad
}

// parsePaddedString reads a null terminated, padded string from data and
// returns the string and the number of bytes consumed.
func parsePaddedString(data []byte) (string, int, error) {
	pos := bytes.IndexByte(data, 0)
	if pos == -1 {
		return "", 0, malformed("padded string: %v", io.EOF)
	}

	n := pos + 1
	n += padBytesNeeded(n)
	if n > len(data) {
		return "", 0, malformed("padded string: %v", io.ErrUnexpectedEOF)
	}

	return string(data[:pos]), n, nil
}

// writePaddedString writes a string with padding bytes to the buffer.
// Returns the number of written bytes.
func writePaddedString(str string, b *bytes.Buffer) int {
	b.WriteString(str)
	n := len(str) + 1
	pad := padBytesNeeded(n)
	b.Write(zeros[:pad+1])
	return n + pad
}

// padBytesNeeded determines how many bytes are needed to fill up to the next 4
// byte length.
func padBytesNeeded(elementLen int) int {
	return (4 - (elementLen % 4)) % 4
}
