package redis

import (
	"bufio"
	"bytes"
	"testing"
)

func decode(t *testing.T, wire string) RespValue {
	t.Helper()
	v, err := DecodeValue(bufio.NewReader(bytes.NewBufferString(wire)))
	if err != nil {
		t.Fatalf("decode %q: %v", wire, err)
	}
	return v
}

func TestDecodeSimpleString(t *testing.T) {
	v := decode(t, "+OK\r\n")
	if v.Type != typeSimpleString || v.Text != "OK" || v.IsError {
		t.Errorf("got %+v", v)
	}
}

func TestDecodeError(t *testing.T) {
	v := decode(t, "-WRONGTYPE bad type\r\n")
	if !v.IsError || v.Text != "WRONGTYPE bad type" {
		t.Errorf("got %+v", v)
	}
}

func TestDecodeInteger(t *testing.T) {
	v := decode(t, ":-42\r\n")
	if v.Type != typeInteger || v.Integer != -42 {
		t.Errorf("got %+v", v)
	}
}

func TestDecodeBulkString(t *testing.T) {
	v := decode(t, "$5\r\nhello\r\n")
	if v.IsNil || string(v.Bulk) != "hello" {
		t.Errorf("got %+v", v)
	}
}

func TestDecodeNilBulkVsEmptyBulk(t *testing.T) {
	nilBulk := decode(t, "$-1\r\n")
	if !nilBulk.IsNil {
		t.Errorf("nil bulk: got IsNil=false")
	}
	emptyBulk := decode(t, "$0\r\n\r\n")
	if emptyBulk.IsNil || len(emptyBulk.Bulk) != 0 {
		t.Errorf("empty bulk: got %+v", emptyBulk)
	}
}

func TestDecodeNilArrayVsEmptyArray(t *testing.T) {
	nilArray := decode(t, "*-1\r\n")
	if !nilArray.IsNil {
		t.Errorf("nil array: got IsNil=false")
	}
	emptyArray := decode(t, "*0\r\n")
	if emptyArray.IsNil || len(emptyArray.Array) != 0 {
		t.Errorf("empty array: got %+v", emptyArray)
	}
}

func TestDecodeNestedArray(t *testing.T) {
	v := decode(t, "*2\r\n$3\r\nfoo\r\n:7\r\n")
	if len(v.Array) != 2 || string(v.Array[0].Bulk) != "foo" || v.Array[1].Integer != 7 {
		t.Errorf("got %+v", v)
	}
}

// TestEncodeDecodeRoundTrip covers spec §8: parse(encode(v)) == v, nil and
// empty distinguished.
func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []RespValue{
		{Type: typeSimpleString, Text: "OK"},
		{Type: typeError, Text: "ERR oops", IsError: true},
		{Type: typeInteger, Integer: 123456789},
		{Type: typeInteger, Integer: -1},
		{Type: typeBulkString, Bulk: []byte("hello")},
		{Type: typeBulkString, Bulk: []byte{}},
		{Type: typeBulkString, IsNil: true},
		{Type: typeArray, Array: []RespValue{
			{Type: typeBulkString, Bulk: []byte("a")},
			{Type: typeInteger, Integer: 2},
		}},
		{Type: typeArray, Array: []RespValue{}},
		{Type: typeArray, IsNil: true},
	}
	for _, want := range cases {
		wire := EncodeValue(want)
		got, err := DecodeValue(bufio.NewReader(bytes.NewReader(wire)))
		if err != nil {
			t.Fatalf("decode(encode(%+v)): %v", want, err)
		}
		if !respEqual(got, want) {
			t.Errorf("round trip mismatch: got %+v, want %+v", got, want)
		}
	}
}

func respEqual(a, b RespValue) bool {
	if a.Type != b.Type || a.Text != b.Text || a.Integer != b.Integer || a.IsNil != b.IsNil || a.IsError != b.IsError {
		return false
	}
	if !bytes.Equal(a.Bulk, b.Bulk) {
		return false
	}
	if len(a.Array) != len(b.Array) {
		return false
	}
	for i := range a.Array {
		if !respEqual(a.Array[i], b.Array[i]) {
			return false
		}
	}
	return true
}

// TestEncodeCommandWireLayout checks the exact byte layout spec §8
// requires: *<N>\r\n($<len>\r\n<bytes>\r\n)...
func TestEncodeCommandWireLayout(t *testing.T) {
	r := newRequest()
	defer r.free()
	r.encodeCommand("SET", "k", "v")
	want := "*3\r\n$3\r\nSET\r\n$1\r\nk\r\n$1\r\nv\r\n"
	if string(r.buf) != want {
		t.Errorf("got %q, want %q", r.buf, want)
	}
}

func TestEncodeCommandWithIntArg(t *testing.T) {
	r := newRequest()
	defer r.free()
	r.encodeCommand("EXPIRE", "k", int64(60))
	want := "*3\r\n$7\r\nEXPIRE\r\n$1\r\nk\r\n$2\r\n60\r\n"
	if string(r.buf) != want {
		t.Errorf("got %q, want %q", r.buf, want)
	}
}

func TestParseInt(t *testing.T) {
	cases := map[string]int64{
		"0":     0,
		"42":    42,
		"-42":   -42,
		"12345": 12345,
	}
	for in, want := range cases {
		if got := ParseInt([]byte(in)); got != want {
			t.Errorf("ParseInt(%q) = %d, want %d", in, got, want)
		}
	}
}
