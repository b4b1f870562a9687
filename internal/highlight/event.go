// Package highlight holds the canonical highlight event and the two argument
// schemas the pattern runtime emits it in, plus the outbound layout the editor
// plugin consumes.
package highlight

import "log/slog"

// Event is one highlight in canonical form. StreamID is 1-indexed; rows and
// columns are character cells in the editor buffer.
type Event struct {
	StreamID int32
	StartRow int32
	StartCol int32
	EndRow   int32
	EndCol   int32
	Duration float32 // seconds

	// SoundName is kept from extended messages but not forwarded.
	SoundName string
}

// EventID is the advisory identifier sent to the editor. It collides
// whenever StartRow is 0, which is the case for every extended message.
func (e Event) EventID() int32 {
	return e.StartRow*1000 + e.StartCol
}

// LogValue implements slog.LogValuer.
func (e Event) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("stream", int(e.StreamID)),
		slog.Int("start_row", int(e.StartRow)),
		slog.Int("start_col", int(e.StartCol)),
		slog.Int("end_row", int(e.EndRow)),
		slog.Int("end_col", int(e.EndCol)),
		slog.Float64("duration", float64(e.Duration)),
	}
	if e.SoundName != "" {
		attrs = append(attrs, slog.String("sound", e.SoundName))
	}
	return slog.GroupValue(attrs...)
}
