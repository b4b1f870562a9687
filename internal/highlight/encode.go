package highlight

import "github.com/hightidelight/osc-bridge/osc"

const (
	// DefaultAddress is the inbound address the pattern runtime sends highlights to.
	DefaultAddress = "/editor/highlights"

	// DefaultForwardAddress is the address the editor plugin listens on. The
	// plugin compares it byte for byte; a mismatch silently shows nothing.
	DefaultForwardAddress = "/editor/highlights"

	// Cycle is sent in the cycle slot of every outbound message.
	Cycle float32 = 1.0
)

// Encode builds the outbound message for ev:
// [stream_id:i, duration:f, cycle:f, start_col:i, event_id:i, end_col:i].
func Encode(ev Event, address string) *osc.Message {
	return osc.NewMessage(address,
		ev.StreamID,
		ev.Duration,
		Cycle,
		ev.StartCol,
		ev.EventID(),
		ev.EndCol,
	)
}
