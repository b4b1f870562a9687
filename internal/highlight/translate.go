package highlight

import (
	"errors"
	"fmt"
	"math"

	"github.com/hightidelight/osc-bridge/osc"
)

// ErrSchema is matched by every error Translate returns.
var ErrSchema = errors.New("highlight: schema error")

// SchemaError describes why a message's arguments don't fit a schema.
type SchemaError struct {
	Schema Schema
	Index  int // argument position, -1 when the argument count is wrong
	Field  string
	Got    osc.TypeTag
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Index < 0 {
		return e.Reason
	}
	return fmt.Sprintf("%s argument %d (%s, got %s): %s", e.Schema, e.Index, e.Field, e.Got, e.Reason)
}

// Is makes errors.Is(err, ErrSchema) hold.
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// Translate reads an inbound message's arguments into an Event. With
// SchemaAuto the layout is chosen by argument count. Arguments past the
// schema's arity are ignored.
func Translate(args []interface{}, schema Schema) (Event, error) {
	concrete, err := schema.resolve(len(args))
	if err != nil {
		return Event{}, err
	}

	r := argReader{schema: concrete, args: args}
	var ev Event

	switch concrete {
	case SchemaExtended:
		ev.SoundName = r.stringAt(0, "sound_name")
		r.numberAt(1, "cps")
		r.numberAt(2, "cycle")
		orbit := r.intAt(3, "orbit")
		ev.Duration = r.floatAt(4, "delta")
		ev.StartCol = r.intAt(5, "start_pos")
		ev.EndCol = r.intAt(6, "end_pos")

		// Orbits count from 0, editor streams from 1.
		ev.StreamID = orbit + 1

	case SchemaCanonical:
		ev.StreamID = r.intAt(0, "stream_id")
		ev.StartRow = r.intAt(1, "start_row")
		ev.StartCol = r.intAt(2, "start_col")
		ev.EndRow = r.intAt(3, "end_row")
		ev.EndCol = r.intAt(4, "end_col")
		ev.Duration = r.floatAt(5, "duration")

	default:
		return Event{}, &SchemaError{Schema: concrete, Index: -1, Reason: fmt.Sprintf("unsupported schema %s", concrete)}
	}

	if r.err != nil {
		return Event{}, r.err
	}
	if ev.StreamID < 1 {
		return Event{}, &SchemaError{Schema: concrete, Index: -1, Reason: fmt.Sprintf("stream id %d is below 1", ev.StreamID)}
	}
	return ev, nil
}

// argReader converts positional arguments, keeping the first error.
type argReader struct {
	schema Schema
	args   []interface{}
	err    error
}

func (r *argReader) fail(i int, field, reason string) {
	if r.err != nil {
		return
	}
	r.err = &SchemaError{
		Schema: r.schema,
		Index:  i,
		Field:  field,
		Got:    osc.ToTypeTag(r.args[i]),
		Reason: reason,
	}
}

func (r *argReader) stringAt(i int, field string) string {
	s, ok := r.args[i].(string)
	if !ok {
		r.fail(i, field, "want a string")
	}
	return s
}

// numberAt checks that an unused slot holds a numeric argument.
func (r *argReader) numberAt(i int, field string) {
	switch r.args[i].(type) {
	case int32, int64, float32, float64:
	default:
		r.fail(i, field, "want a number")
	}
}

// intAt accepts any numeric argument. Floats are truncated toward zero and
// int64 wraps to int32.
func (r *argReader) intAt(i int, field string) int32 {
	switch v := r.args[i].(type) {
	case int32:
		return v
	case int64:
		return int32(v)
	case float32:
		return r.truncate(i, field, float64(v))
	case float64:
		return r.truncate(i, field, v)
	default:
		r.fail(i, field, "want a number")
		return 0
	}
}

func (r *argReader) truncate(i int, field string, f float64) int32 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		r.fail(i, field, "not a finite number")
		return 0
	}
	t := math.Trunc(f)
	if t < math.MinInt32 || t > math.MaxInt32 {
		r.fail(i, field, "out of int32 range")
		return 0
	}
	return int32(t)
}

// floatAt accepts any numeric argument and narrows it to float32.
func (r *argReader) floatAt(i int, field string) float32 {
	var f float32
	switch v := r.args[i].(type) {
	case float32:
		f = v
	case float64:
		f = float32(v)
	case int32:
		f = float32(v)
	case int64:
		f = float32(v)
	default:
		r.fail(i, field, "want a number")
		return 0
	}

	if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
		r.fail(i, field, "not a finite number")
		return 0
	}
	return f
}
