package osc

import "fmt"

// TypeTag identifies the OSC type of a single argument.
type TypeTag rune

const (
	TypeString  TypeTag = 's'
	TypeInt32   TypeTag = 'i'
	TypeInt64   TypeTag = 'h'
	TypeFloat32 TypeTag = 'f'
	TypeFloat64 TypeTag = 'd'
	TypeBlob    TypeTag = 'b'
	TypeTimeTag TypeTag = 't'
	TypeNil     TypeTag = 'N'
	TypeTrue    TypeTag = 'T'
	TypeFalse   TypeTag = 'F'
	TypeInvalid TypeTag = 0
)

// ToTypeTag returns the OSC TypeTag for the given argument.
// Returns TypeInvalid if the argument type is unsupported.
func ToTypeTag(arg interface{}) TypeTag {
	switch t := arg.(type) {
	case bool:
		if t {
			return TypeTrue
		}
		return TypeFalse
	case nil:
		return TypeNil
	case int32:
		return TypeInt32
	case float32:
		return TypeFloat32
	case string:
		return TypeString
	case []byte:
		return TypeBlob
	case int64:
		return TypeInt64
	case float64:
		return TypeFloat64
	case Timetag:
		return TypeTimeTag
	default:
		return TypeInvalid
	}
}

// String returns a readable name for the tag, used in error messages.
func (t TypeTag) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeInt32:
		return "int32"
	case TypeInt64:
		return "int64"
	case TypeFloat32:
		return "float32"
	case TypeFloat64:
		return "float64"
	case TypeBlob:
		return "blob"
	case TypeTimeTag:
		return "timetag"
	case TypeNil:
		return "nil"
	case TypeTrue, TypeFalse:
		return "bool"
	default:
		return "invalid"
	}
}

// GetTypeTags returns the OSC type tag string, including the leading ',', for args.
func GetTypeTags(args []interface{}) (string, error) {
	tags := make([]byte, 0, len(args)+1)
	tags = append(tags, ',')
	for _, arg := range args {
		tag := ToTypeTag(arg)
		if tag == TypeInvalid {
			return "", fmt.Errorf("unsupported type: %T", arg)
		}
		tags = append(tags, byte(tag))
	}
	return string(tags), nil
}
