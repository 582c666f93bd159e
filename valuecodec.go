package redis

import (
	"fmt"

	"github.com/golang/snappy"
)

// Value layout on the wire for the opaque-object surface: one flag byte
// followed by the codec's payload. Bit 0 of the flag marks the payload as
// snappy-compressed; the rest of the byte is reserved and must be zero.
const (
	flagCompressed byte = 1 << 0
)

// ValueCodec turns application values into the byte payload stored behind
// a key, and back. Encode is applied before the compression threshold
// check in CompressingCodec; Decode always receives the raw (already
// decompressed) payload.
type ValueCodec interface {
	Encode(value any) ([]byte, error)
	Decode(data []byte, out any) error
}

// RawCodec treats every value as a []byte or string and performs no
// transformation. It is the default for callers who only need the
// raw-string operation surface and want wire compatibility with other
// RESP clients.
type RawCodec struct{}

func (RawCodec) Encode(value any) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("redis: RawCodec cannot encode %T", value)
	}
}

func (RawCodec) Decode(data []byte, out any) error {
	switch o := out.(type) {
	case *[]byte:
		*o = data
		return nil
	case *string:
		*o = string(data)
		return nil
	default:
		return fmt.Errorf("redis: RawCodec cannot decode into %T", out)
	}
}

// CompressingCodec wraps an inner ValueCodec and snappy-compresses its
// output when it exceeds Threshold bytes, prefixing every payload with a
// one-byte compression flag.
//
// This is a deliberate, documented break from interoperability with other
// naiveredis-family clients: the original scheme used an LZF-class
// compressor paired with Java object serialization, which this module does
// not reproduce. Deployments that need to read values written by the
// original client, or share a keyspace with one, must not use
// CompressingCodec — use RawCodec, or a custom ValueCodec matching the
// original wire layout exactly.
type CompressingCodec struct {
	Inner     ValueCodec
	Threshold int // bytes; 0 disables compression entirely
}

func NewCompressingCodec(inner ValueCodec, threshold int) *CompressingCodec {
	return &CompressingCodec{Inner: inner, Threshold: threshold}
}

func (c *CompressingCodec) Encode(value any) ([]byte, error) {
	payload, err := c.Inner.Encode(value)
	if err != nil {
		return nil, err
	}
	if c.Threshold <= 0 || len(payload) <= c.Threshold {
		out := make([]byte, 1+len(payload))
		out[0] = 0
		copy(out[1:], payload)
		return out, nil
	}
	compressed := snappy.Encode(nil, payload)
	out := make([]byte, 1+len(compressed))
	out[0] = flagCompressed
	copy(out[1:], compressed)
	return out, nil
}

func (c *CompressingCodec) Decode(data []byte, out any) error {
	if len(data) == 0 {
		return c.Inner.Decode(data, out)
	}
	flag, payload := data[0], data[1:]
	if flag&flagCompressed != 0 {
		decompressed, err := snappy.Decode(nil, payload)
		if err != nil {
			return fmt.Errorf("redis: snappy decode: %w", err)
		}
		payload = decompressed
	}
	return c.Inner.Decode(payload, out)
}
