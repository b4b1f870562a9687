package highlight

import (
	"fmt"
	"strings"
)

// Schema selects how the positional arguments of an inbound message are read.
type Schema int

const (
	// SchemaAuto picks Extended for 7 or more arguments and Canonical for 6.
	SchemaAuto Schema = iota

	// SchemaExtended is the pattern runtime's native layout:
	// sound_name, cps, cycle, orbit, delta, start_pos, end_pos.
	SchemaExtended

	// SchemaCanonical carries the event fields directly:
	// stream_id, start_row, start_col, end_row, end_col, duration.
	SchemaCanonical
)

const (
	extendedArity  = 7
	canonicalArity = 6
)

// ParseSchema parses "auto", "extended" or "canonical".
func ParseSchema(s string) (Schema, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return SchemaAuto, nil
	case "extended":
		return SchemaExtended, nil
	case "canonical":
		return SchemaCanonical, nil
	default:
		return SchemaAuto, fmt.Errorf("unknown schema %q (want auto, extended or canonical)", s)
	}
}

func (s Schema) String() string {
	switch s {
	case SchemaAuto:
		return "auto"
	case SchemaExtended:
		return "extended"
	case SchemaCanonical:
		return "canonical"
	default:
		return fmt.Sprintf("Schema(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Schema) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler so the schema can be set
// from YAML, environment variables and flags.
func (s *Schema) UnmarshalText(text []byte) error {
	parsed, err := ParseSchema(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Arity is the number of positional arguments the schema reads. Auto has none.
func (s Schema) Arity() int {
	switch s {
	case SchemaExtended:
		return extendedArity
	case SchemaCanonical:
		return canonicalArity
	default:
		return 0
	}
}

// resolve returns the concrete schema for a message with argc arguments.
func (s Schema) resolve(argc int) (Schema, error) {
	concrete := s
	if s == SchemaAuto {
		switch {
		case argc >= extendedArity:
			concrete = SchemaExtended
		case argc == canonicalArity:
			concrete = SchemaCanonical
		default:
			return s, &SchemaError{Index: -1, Reason: fmt.Sprintf("insufficient arguments: expected %d or %d, got %d", canonicalArity, extendedArity, argc)}
		}
	}

	if argc < concrete.Arity() {
		return concrete, &SchemaError{Schema: concrete, Index: -1, Reason: fmt.Sprintf("insufficient arguments: expected %d, got %d", concrete.Arity(), argc)}
	}
	return concrete, nil
}
