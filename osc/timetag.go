package osc

import (
	"encoding/binary"
	"time"
)

const (
	secondsFrom1900To1970 = 2208988800

	// immediateTimetag is the special value meaning "immediately".
	immediateTimetag = Timetag(1)
)

// Timetag represents an OSC Time Tag.
// An OSC Time Tag is defined as follows:
// Time tags are represented by a 64 bit fixed point number. The first 32 bits
// specify the number of seconds since midnight on January 1, 1900, and the
// last 32 bits specify fractional parts of a second to a precision of about
// 200 picoseconds. This is the representation used by Internet NTP timestamps.
type Timetag uint64

// NewTimetag returns a time tag for the current time.
func NewTimetag() Timetag {
	return NewTimetagFromTime(time.Now())
}

// NewImmediateTimetag returns the time tag meaning "immediately".
func NewImmediateTimetag() Timetag {
	return immediateTimetag
}

// NewTimetagFromTime returns a new OSC time tag object from a time.Time.
func NewTimetagFromTime(timeStamp time.Time) Timetag {
	secs := uint64(timeStamp.Unix()+secondsFrom1900To1970) << 32
	frac := (uint64(timeStamp.Nanosecond()) << 32) / uint64(time.Second)
	return Timetag(secs + frac)
}

// IsImmediate reports whether t is the "immediately" time tag.
func (t Timetag) IsImmediate() bool {
	return t == immediateTimetag
}

// Time returns the time.
func (t Timetag) Time() time.Time {
	secs := int64(t>>32) - secondsFrom1900To1970
	nanos := (uint64(t&0xffffffff) * uint64(time.Second)) >> 32
	return time.Unix(secs, int64(nanos))
}

// MarshalBinary converts the OSC time tag to a byte array.
func (t Timetag) MarshalBinary() ([]byte, error) {
	b := make([]byte, bit64Size)
	binary.BigEndian.PutUint64(b, uint64(t))
	return b, nil
}
