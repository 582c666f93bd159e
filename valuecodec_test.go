package redis

import (
	"bytes"
	"strings"
	"testing"
)

func TestRawCodecRoundTrip(t *testing.T) {
	var c RawCodec
	b, err := c.Encode("hello")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	var out string
	if err := c.Decode(b, &out); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out != "hello" {
		t.Errorf("got %q, want hello", out)
	}
}

func TestRawCodecRejectsUnsupportedTypes(t *testing.T) {
	var c RawCodec
	if _, err := c.Encode(42); err == nil {
		t.Error("Encode(int) should fail: RawCodec only handles []byte/string")
	}
}

func TestCompressingCodecBelowThresholdStoresUncompressed(t *testing.T) {
	c := NewCompressingCodec(RawCodec{}, 1024)
	payload, err := c.Encode("short")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if payload[0]&flagCompressed != 0 {
		t.Error("payload below threshold was flagged compressed")
	}
	var out string
	if err := c.Decode(payload, &out); err != nil || out != "short" {
		t.Fatalf("Decode = %q, %v", out, err)
	}
}

func TestCompressingCodecAboveThresholdCompresses(t *testing.T) {
	c := NewCompressingCodec(RawCodec{}, 8)
	big := strings.Repeat("x", 4096)
	payload, err := c.Encode(big)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if payload[0]&flagCompressed == 0 {
		t.Error("payload above threshold was not flagged compressed")
	}
	if len(payload) >= len(big) {
		t.Errorf("compressed payload (%d bytes) is not smaller than input (%d bytes)", len(payload), len(big))
	}
	var out string
	if err := c.Decode(payload, &out); err != nil || out != big {
		t.Fatalf("Decode round trip failed: err=%v, matches=%v", err, out == big)
	}
}

func TestCompressingCodecZeroThresholdNeverCompresses(t *testing.T) {
	c := NewCompressingCodec(RawCodec{}, 0)
	big := strings.Repeat("y", 4096)
	payload, err := c.Encode(big)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if payload[0]&flagCompressed != 0 {
		t.Error("Threshold=0 must disable compression entirely")
	}
}

func TestCompressingCodecDecodesUncompressedFlagDespiteCompressingEncoder(t *testing.T) {
	// A payload written with flag=0 must decode as-is even through a codec
	// whose Threshold would have compressed it on encode.
	c := NewCompressingCodec(RawCodec{}, 1)
	raw := append([]byte{0}, []byte("plain")...)
	var out []byte
	if err := c.Decode(raw, &out); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !bytes.Equal(out, []byte("plain")) {
		t.Errorf("got %q, want plain", out)
	}
}
