package redis

import (
	"bufio"
	"net"
	"strconv"
	"testing"
	"time"
)

// slotsReply builds a CLUSTER SLOTS wire reply assigning the full slot
// range to one master host.
func slotsReply(t testing.TB, masterAddr string) string {
	t.Helper()
	ip, portStr, err := net.SplitHostPort(masterAddr)
	if err != nil {
		t.Fatalf("split %q: %v", masterAddr, err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("parse port %q: %v", portStr, err)
	}
	return "*1\r\n" +
		"*3\r\n" +
		":0\r\n" +
		":16383\r\n" +
		"*2\r\n" +
		"$" + itoa(len(ip)) + "\r\n" + ip + "\r\n" +
		":" + itoa(port) + "\r\n"
}

// clusterNode is a scripted single-node cluster member: it answers the
// Dial PING handshake, CLUSTER SLOTS with the given slots reply, and
// every other command via reply.
func clusterNode(t testing.TB, slots func() string, reply func(name string, args []string) string) *fakeServer {
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
			if name == "CLUSTER" {
				conn.Write([]byte(slots()))
				continue
			}
			conn.Write([]byte(reply(name, args)))
		}
	})
}

func TestClusterRouterBootstrapsSlotTable(t *testing.T) {
	var a *fakeServer
	a = clusterNode(t, func() string { return slotsReply(t, a.addr()) },
		func(name string, args []string) string { return "+OK\r\n" })

	r, err := NewClusterRouter(ClusterConfig{
		BootstrapHosts: []string{a.addr()},
		ClientConfig:   ClientConfig{ChannelConfig: ChannelConfig{PingPeriod: -1}, Timeout: time.Second},
	})
	if err != nil {
		t.Fatalf("NewClusterRouter: %v", err)
	}
	defer r.Close()

	v, err := r.Do("somekey", time.Second, "SET", "somekey", "v")
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if v.Text != "OK" {
		t.Errorf("got %+v, want OK", v)
	}
}

func TestClusterRouterFollowsMovedRedirect(t *testing.T) {
	var a, b *fakeServer

	moved := false
	a = clusterNode(t, func() string { return slotsReply(t, a.addr()) },
		func(name string, args []string) string {
			if name == "GET" && !moved {
				moved = true
				return "-MOVED 0 " + b.addr() + "\r\n"
			}
			return "+OK\r\n"
		})
	b = clusterNode(t, func() string { return slotsReply(t, a.addr()) },
		func(name string, args []string) string {
			if name == "GET" {
				return "$5\r\nworld\r\n"
			}
			return "+OK\r\n"
		})

	r, err := NewClusterRouter(ClusterConfig{
		BootstrapHosts: []string{a.addr()},
		ClientConfig:   ClientConfig{ChannelConfig: ChannelConfig{PingPeriod: -1}, Timeout: time.Second},
	})
	if err != nil {
		t.Fatalf("NewClusterRouter: %v", err)
	}
	defer r.Close()

	v, err := r.Do("hello", time.Second, "GET", "hello")
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if string(v.Bulk) != "world" {
		t.Errorf("got %+v, want bulk \"world\" from the MOVED-redirected host", v)
	}
}

func TestClusterRouterFollowsAskRedirect(t *testing.T) {
	var a, b *fakeServer

	a = clusterNode(t, func() string { return slotsReply(t, a.addr()) },
		func(name string, args []string) string {
			if name == "GET" {
				return "-ASK 0 " + b.addr() + "\r\n"
			}
			return "+OK\r\n"
		})
	sawAsking := false
	b = clusterNode(t, func() string { return slotsReply(t, a.addr()) },
		func(name string, args []string) string {
			if name == "ASKING" {
				sawAsking = true
				return "+OK\r\n"
			}
			if name == "GET" {
				if !sawAsking {
					t.Error("GET arrived at the ASK target before ASKING")
				}
				return "$2\r\nok\r\n"
			}
			return "+OK\r\n"
		})

	r, err := NewClusterRouter(ClusterConfig{
		BootstrapHosts: []string{a.addr()},
		ClientConfig:   ClientConfig{ChannelConfig: ChannelConfig{PingPeriod: -1}, Timeout: time.Second},
	})
	if err != nil {
		t.Fatalf("NewClusterRouter: %v", err)
	}
	defer r.Close()

	v, err := r.Do("hello", time.Second, "GET", "hello")
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if string(v.Bulk) != "ok" {
		t.Errorf("got %+v, want bulk \"ok\" from the ASK target", v)
	}
}
