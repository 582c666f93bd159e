package redis

import (
	"bufio"
	"net"
	"testing"
)

// fakeServer is a minimal scripted RESP listener for unit-testing Channel,
// DirectClient, ReplicationRouter and DistributedLock without a real Redis
// process. handle is invoked once per accepted connection and owns that
// connection's entire protocol exchange.
type fakeServer struct {
	ln net.Listener
}

func newFakeServer(t testing.TB, handle func(net.Conn, *bufio.Reader)) *fakeServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("fake server listen: %v", err)
	}
	s := &fakeServer{ln: ln}
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go handle(conn, bufio.NewReader(conn))
		}
	}()
	t.Cleanup(func() { ln.Close() })
	return s
}

func (s *fakeServer) addr() string { return s.ln.Addr().String() }

// servePing reads the first command, answers it with +PONG if it is a PING
// and reports whether it was — the handshake every Dial performs before
// anything else.
func servePing(conn net.Conn, r *bufio.Reader) bool {
	v, err := DecodeValue(r)
	if err != nil {
		return false
	}
	if len(v.Array) != 1 || string(v.Array[0].Bulk) != "PING" {
		return false
	}
	conn.Write([]byte("+PONG\r\n"))
	return true
}
