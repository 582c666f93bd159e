package redis

import (
	"bufio"
	"net"
	"testing"
	"time"
)

// dispatchServer completes the PING handshake, then for every subsequent
// command calls reply with the command name and its string arguments and
// writes back whatever RESP wire bytes reply returns.
func dispatchServer(t testing.TB, reply func(name string, args []string) string) *fakeServer {
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
			args := make([]string, len(v.Array)-1)
			for i, e := range v.Array[1:] {
				args[i] = string(e.Bulk)
			}
			conn.Write([]byte(reply(name, args)))
		}
	})
}

func dialDirectClient(t testing.TB, addr string) *DirectClient {
	t.Helper()
	c, err := NewDirectClient(ClientConfig{
		ChannelConfig: ChannelConfig{Addr: addr, PingPeriod: -1},
		Timeout:       2 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewDirectClient: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestDirectClientSetStringThenGetString(t *testing.T) {
	store := map[string]string{}
	s := dispatchServer(t, func(name string, args []string) string {
		switch name {
		case "SET":
			store[args[0]] = args[1]
			return "+OK\r\n"
		case "GET":
			v, ok := store[args[0]]
			if !ok {
				return "$-1\r\n"
			}
			return "$" + itoa(len(v)) + "\r\n" + v + "\r\n"
		}
		return "+OK\r\n"
	})
	c := dialDirectClient(t, s.addr())

	if err := c.SetString("k", "v", SetOptions{}); err != nil {
		t.Fatalf("SetString: %v", err)
	}
	got, found, err := c.GetString("k")
	if err != nil || !found || got != "v" {
		t.Fatalf("GetString = %q, %v, %v", got, found, err)
	}
}

func TestDirectClientGetStringMissingKey(t *testing.T) {
	s := dispatchServer(t, func(name string, args []string) string {
		return "$-1\r\n"
	})
	c := dialDirectClient(t, s.addr())

	_, found, err := c.GetString("missing")
	if err != nil {
		t.Fatalf("GetString: %v", err)
	}
	if found {
		t.Error("found = true for a nil bulk reply, want false")
	}
}

func TestDirectClientSetIfAbsentReturnsErrNullOnCollision(t *testing.T) {
	s := dispatchServer(t, func(name string, args []string) string {
		return "$-1\r\n" // NX condition unmet
	})
	c := dialDirectClient(t, s.addr())

	err := c.SetString("k", "v", SetOptions{Flags: SetIfAbsent})
	if err != errNull {
		t.Fatalf("err = %v, want errNull", err)
	}
}

func TestDirectClientIncrBy(t *testing.T) {
	s := dispatchServer(t, func(name string, args []string) string {
		return ":7\r\n"
	})
	c := dialDirectClient(t, s.addr())

	n, err := c.IncrBy("ctr", 3)
	if err != nil || n != 7 {
		t.Fatalf("IncrBy = %d, %v", n, err)
	}
}

func TestDirectClientDeleteCounts(t *testing.T) {
	s := dispatchServer(t, func(name string, args []string) string {
		return ":" + itoa(len(args)) + "\r\n"
	})
	c := dialDirectClient(t, s.addr())

	n, err := c.Delete("a", "b", "c")
	if err != nil || n != 3 {
		t.Fatalf("Delete = %d, %v", n, err)
	}
}

func TestDirectClientServerErrorSurfacesAsServerError(t *testing.T) {
	s := dispatchServer(t, func(name string, args []string) string {
		return "-WRONGTYPE Operation against a key holding the wrong kind of value\r\n"
	})
	c := dialDirectClient(t, s.addr())

	_, _, err := c.GetString("k")
	se, ok := err.(ServerError)
	if !ok {
		t.Fatalf("err = %v (%T), want ServerError", err, err)
	}
	if se.Prefix() != "WRONGTYPE" {
		t.Errorf("Prefix() = %q, want WRONGTYPE", se.Prefix())
	}
}

func TestDirectClientRejectsEmptyKeyWithoutNetworkCall(t *testing.T) {
	s := dispatchServer(t, func(name string, args []string) string {
		t.Fatal("empty key must be rejected locally, before any network round trip")
		return ""
	})
	c := dialDirectClient(t, s.addr())

	if _, _, err := c.GetString(""); err != ErrInvalidArgument {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestDirectClientIsAvailableAfterClose(t *testing.T) {
	s := dispatchServer(t, func(name string, args []string) string { return "+OK\r\n" })
	c := dialDirectClient(t, s.addr())
	if !c.IsAvailable() {
		t.Fatal("freshly dialed client reports unavailable")
	}
	c.Close()
	if c.IsAvailable() {
		t.Fatal("client reports available after Close")
	}
}
