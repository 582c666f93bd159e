package redis

import (
	"bufio"
	"net"
	"testing"
	"time"
)

// echoServer answers PING with PONG (the Dial handshake) then echoes back
// an OK for every subsequent command it receives, in arrival order — good
// enough to exercise Channel's pipelining and FIFO guarantees without a
// real Redis.
func echoServer(t testing.TB) *fakeServer {
	return newFakeServer(t, func(conn net.Conn, r *bufio.Reader) {
		defer conn.Close()
		if !servePing(conn, r) {
			return
		}
		for {
			v, err := DecodeValue(r)
			if err != nil {
				return
			}
			if len(v.Array) == 0 {
				continue
			}
			name := string(v.Array[0].Bulk)
			switch name {
			case "PING":
				conn.Write([]byte("+PONG\r\n"))
			default:
				conn.Write([]byte("+OK\r\n"))
			}
		}
	})
}

func dialChannel(t testing.TB, addr string) *Channel {
	t.Helper()
	ch, err := Dial(ChannelConfig{Addr: addr, PingPeriod: -1})
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { ch.Close() })
	return ch
}

func TestChannelPingHandshake(t *testing.T) {
	s := echoServer(t)
	ch := dialChannel(t, s.addr())
	if ch.State() != Running {
		t.Fatalf("state = %v, want Running", ch.State())
	}
}

func TestChannelDoReturnsResponse(t *testing.T) {
	s := echoServer(t)
	ch := dialChannel(t, s.addr())
	v, err := ch.Do(time.Second, "SET", "k", "v")
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if v.Text != "OK" {
		t.Errorf("got %+v, want OK", v)
	}
}

// TestChannelFIFOOrdering submits N commands concurrently on one channel
// and checks the FIFO pairing: every command receives exactly one of the
// server's N distinct replies, and no reply is delivered twice.
func TestChannelFIFOOrdering(t *testing.T) {
	s := newFakeServer(t, func(conn net.Conn, r *bufio.Reader) {
		defer conn.Close()
		if !servePing(conn, r) {
			return
		}
		n := 0
		for {
			v, err := DecodeValue(r)
			if err != nil {
				return
			}
			if len(v.Array) == 0 {
				continue
			}
			n++
			conn.Write([]byte(":" + itoa(n) + "\r\n"))
		}
	})
	ch := dialChannel(t, s.addr())

	const count = 50
	results := make(chan int, count)
	for i := 0; i < count; i++ {
		go func(i int) {
			v, err := ch.Do(2*time.Second, "INCR", "ctr")
			if err != nil {
				t.Errorf("Do #%d: %v", i, err)
				results <- -1
				return
			}
			results <- int(v.Integer)
		}(i)
	}
	seen := make(map[int]bool, count)
	for i := 0; i < count; i++ {
		n := <-results
		if n < 1 || n > count {
			t.Fatalf("reply %d out of expected range", n)
		}
		if seen[n] {
			t.Fatalf("reply %d delivered twice — FIFO pairing broken", n)
		}
		seen[n] = true
	}
}

// TestChannelTimeoutStorm covers spec §8: 51 consecutive timeouts each
// less than 1s apart transition the channel to Closed; a single timeout
// does not.
func TestChannelTimeoutStorm(t *testing.T) {
	s := newFakeServer(t, func(conn net.Conn, r *bufio.Reader) {
		defer conn.Close()
		if !servePing(conn, r) {
			return
		}
		// Never answer anything else — every subsequent Do times out.
		for {
			if _, err := DecodeValue(r); err != nil {
				return
			}
		}
	})
	ch := dialChannel(t, s.addr())

	if _, err := ch.Do(5*time.Millisecond, "GET", "k"); err != ErrTimeout {
		t.Fatalf("first Do err = %v, want ErrTimeout", err)
	}
	if ch.State() != Running {
		t.Fatalf("single timeout closed the channel; state = %v", ch.State())
	}

	for i := 0; i < timeoutStormThreshold; i++ {
		ch.Do(5*time.Millisecond, "GET", "k")
	}
	if ch.State() != Closed {
		t.Fatalf("state = %v after %d timeouts, want Closed", ch.State(), timeoutStormThreshold+1)
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
