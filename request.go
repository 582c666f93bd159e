package redis

import (
	"strconv"
	"sync"
)

// request is a growable byte buffer for one outbound RESP command array.
// It is pooled: every request obtained from newRequest must eventually be
// returned with free (Channel.encode does so as soon as it has copied the
// encoded bytes, mirroring the teacher's codec pool).
type request struct {
	buf []byte
}

var requestPool = sync.Pool{
	New: func() any { return &request{buf: make([]byte, 0, 256)} },
}

func newRequest() *request {
	r := requestPool.Get().(*request)
	r.buf = r.buf[:0]
	return r
}

func (r *request) free() {
	requestPool.Put(r)
}

// arg is anything encodeCommand knows how to append as one bulk string.
// Accepted concrete types: string, []byte, int64, int, float64. Any other type panics —
// it is a programmer error in a DirectClient method, never caller input.
type arg any

// encodeCommand renders name and args as one RESP array of bulk strings,
// per spec: "every command is encoded as a RESP array of bulk strings,
// each bulk string carrying the UTF-8 byte form of the argument (or raw
// bytes for opaque values). The encoder never emits inline commands."
func (r *request) encodeCommand(name string, args ...arg) {
	r.buf = append(r.buf, '*')
	r.buf = strconv.AppendInt(r.buf, int64(1+len(args)), 10)
	r.buf = append(r.buf, '\r', '\n')
	r.addBulk(name)
	for _, a := range args {
		switch v := a.(type) {
		case string:
			r.addBulk(v)
		case []byte:
			r.addBulkBytes(v)
		case int64:
			r.addBulk(strconv.FormatInt(v, 10))
		case int:
			r.addBulk(strconv.Itoa(v))
		case float64:
			r.addBulk(strconv.FormatFloat(v, 'g', -1, 64))
		default:
			panic("redis: unsupported argument type in encodeCommand")
		}
	}
}

func (r *request) addBulk(s string) {
	r.buf = append(r.buf, '$')
	r.buf = strconv.AppendInt(r.buf, int64(len(s)), 10)
	r.buf = append(r.buf, '\r', '\n')
	r.buf = append(r.buf, s...)
	r.buf = append(r.buf, '\r', '\n')
}

func (r *request) addBulkBytes(b []byte) {
	r.buf = append(r.buf, '$')
	r.buf = strconv.AppendInt(r.buf, int64(len(b)), 10)
	r.buf = append(r.buf, '\r', '\n')
	r.buf = append(r.buf, b...)
	r.buf = append(r.buf, '\r', '\n')
}
