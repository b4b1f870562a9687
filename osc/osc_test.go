package osc

const zero = string(byte(0))

// nulls returns a string of `i` nulls.
func nulls(i int) string {
	s := ""
	for j := 0; j < i; j++ {
		s += zero
	}
	return s
}

// raw concatenates strings and byte slices into one packet.
func raw(parts ...interface{}) []byte {
	var out []byte
	for _, p := range parts {
		switch p := p.(type) {
		case string:
			out = append(out, p...)
		case []byte:
			out = append(out, p...)
		}
	}
	return out
}

type testCase struct {
	name    string
	obj     Packet
	raw     []byte
	wantErr bool
}

var messageTestCases = []testCase{
	{
		name: "no_arguments",
		obj:  NewMessage("/"),
		raw:  raw("/", nulls(3), ",", nulls(3)),
	},
	{
		name: "int32_and_float32",
		obj:  NewMessage("/a", int32(1), float32(0.5)),
		raw:  raw("/a", nulls(2), ",if", nulls(1), []byte{0, 0, 0, 1}, []byte{0x3f, 0, 0, 0}),
	},
	{
		name: "string",
		obj:  NewMessage("/editor/highlights", "bd"),
		raw:  raw("/editor/highlights", nulls(2), ",s", nulls(2), "bd", nulls(2)),
	},
	{
		name: "int64_float64_bools_nil",
		obj:  NewMessage("/x", int64(-1), float64(1.25), true, false, nil),
		raw: raw("/x", nulls(2), ",hdTFN", nulls(2),
			[]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
			[]byte{0x3f, 0xf4, 0, 0, 0, 0, 0, 0}),
	},
	{
		name: "blob",
		obj:  NewMessage("/b", []byte{1, 2, 3}),
		raw:  raw("/b", nulls(2), ",b", nulls(2), []byte{0, 0, 0, 3, 1, 2, 3, 0}),
	},
	{
		name: "timetag",
		obj:  NewMessage("/t", Timetag(1)),
		raw:  raw("/t", nulls(2), ",t", nulls(2), []byte{0, 0, 0, 0, 0, 0, 0, 1}),
	},
}

var bundleTestCases = []testCase{
	{
		name: "empty",
		obj:  &Bundle{Timetag: 1},
		raw:  raw("#bundle", nulls(1), []byte{0, 0, 0, 0, 0, 0, 0, 1}),
	},
	{
		name: "one_message",
		obj:  NewBundle(NewMessage("/a", int32(7))),
		raw: raw("#bundle", nulls(1), []byte{0, 0, 0, 0, 0, 0, 0, 1},
			[]byte{0, 0, 0, 12}, "/a", nulls(2), ",i", nulls(2), []byte{0, 0, 0, 7}),
	},
	{
		name: "nested",
		obj:  &Bundle{Timetag: 1, Elements: []Packet{NewMessage("/a"), &Bundle{Timetag: 1}}},
		raw: raw("#bundle", nulls(1), []byte{0, 0, 0, 0, 0, 0, 0, 1},
			[]byte{0, 0, 0, 8}, "/a", nulls(2), ",", nulls(3),
			[]byte{0, 0, 0, 16}, "#bundle", nulls(1), []byte{0, 0, 0, 0, 0, 0, 0, 1}),
	},
}
