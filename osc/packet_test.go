package osc

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"
)

var temp = &Message{Address: "/editor/highlights", Arguments: []interface{}{"bd", float32(0.5625), float32(12.25), int32(1), float32(0.25), int32(10), int32(20)}}
var msg, _ = temp.MarshalBinary()

func BenchmarkParsePacket(b *testing.B) {
	b.ResetTimer()
	b.ReportAllocs()
	var p Packet
	for n := 0; n < b.N; n++ {
		p, _ = ParsePacket(msg)
	}
	result = p
}

func TestParsePacket(t *testing.T) {
	tests := []testCase{}
	tests = append(tests, messageTestCases...)
	tests = append(tests, bundleTestCases...)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePacket(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParsePacket() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !reflect.DeepEqual(got, tt.obj) {
				t.Errorf("ParsePacket() got = %v, want %v", got, tt.obj)
			}
		})
	}
}

func TestParsePacket_Malformed(t *testing.T) {
	tt8 := []byte{0, 0, 0, 0, 0, 0, 0, 1}
	tests := []struct {
		name string
		raw  []byte
	}{
		{"empty", []byte{}},
		{"unknown_type", raw("xyz", nulls(1))},
		{"unaligned", raw("/a", nulls(1))},
		{"no_null", raw("/abc")},
		{"typetags_without_comma", raw("/a", nulls(2), "xi", nulls(2))},
		{"unsupported_tag", raw("/a", nulls(2), ",z", nulls(2))},
		{"truncated_int32", raw("/a", nulls(2), ",i", nulls(2))},
		{"truncated_int64", raw("/a", nulls(2), ",h", nulls(2), nulls(4))},
		{"truncated_string", raw("/a", nulls(2), ",s", nulls(2), "abcd")},
		{"blob_too_long", raw("/a", nulls(2), ",b", nulls(2), []byte{0, 0, 0, 16})},
		{"short_bundle", raw("#bundle", nulls(1))},
		{"bad_bundle_tag", raw("#bundlx", nulls(1), tt8)},
		{"element_too_long", raw("#bundle", nulls(1), tt8, []byte{0, 0, 0, 64})},
		{"element_zero_length", raw("#bundle", nulls(1), tt8, []byte{0, 0, 0, 0})},
		{"element_bad_packet", raw("#bundle", nulls(1), tt8, []byte{0, 0, 0, 4}, "abc", nulls(1))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePacket(tt.raw)
			if err == nil {
				t.Fatalf("ParsePacket() expected error, got %v", p)
			}
			if !errors.Is(err, ErrMalformed) {
				t.Errorf("ParsePacket() error %v does not wrap ErrMalformed", err)
			}
		})
	}
}

func TestParsePacket_MaxNestingAccepted(t *testing.T) {
	for _, n := range []int{maxBundleNesting, maxBundleNesting + 1, maxBundleNesting + 5} {
		if _, err := ParsePacket(deepBundle(n)); err != nil {
			t.Errorf("ParsePacket(%d levels) error = %v", n, err)
		}
	}
}

func TestParsePacket_RandomBytes(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10000; i++ {
		data := make([]byte, rng.Intn(128))
		rng.Read(data)
		if len(data) > 0 && i%2 == 0 {
			data[0] = "/#"[i%4/2]
		}
		_, _ = ParsePacket(data)
	}
}

// deepBundle returns the encoding of n bundles nested inside each other.
func deepBundle(n int) []byte {
	var p Packet = &Bundle{Timetag: 1}
	for i := 1; i < n; i++ {
		p = &Bundle{Timetag: 1, Elements: []Packet{p}}
	}
	data, _ := p.MarshalBinary()
	return data
}

func FuzzParsePacket(f *testing.F) {
	for _, tc := range bundleTestCases {
		f.Add(tc.raw)
	}
	for _, tc := range messageTestCases {
		f.Add(tc.raw)
	}
	f.Fuzz(func(t *testing.T, data []byte) {
		packet, err := ParsePacket(data)
		if err != nil {
			return
		}

		dataNew, err := packet.MarshalBinary()
		if err != nil {
			t.Fatalf("MarshalBinary(): err != nil on parsed packet %#v: %v", packet, err)
		}

		packet, err = ParsePacket(dataNew)
		if err != nil {
			t.Fatalf("ParsePacket(): err != nil on marshaled packet %#v: %v", packet, err)
		}

		dataNew2, err := packet.MarshalBinary()
		if err != nil {
			t.Fatalf("MarshalBinary(): err != nil on double-parsed packet %#v: %v", packet, err)
		}

		if !reflect.DeepEqual(dataNew, dataNew2) {
			t.Fatalf("dataNew != dataNew2: dataNew: %s %v\ndataNew2: %s %v\npacket: %v\n", dataNew, dataNew, dataNew2, dataNew2, packet)
		}
	})
}
