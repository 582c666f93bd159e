// Command redisctl is a thin operator tool over the redis package — not
// part of the library's public API, grounded on the teacher's own
// cmd/reget in structure (flag-parsed, stdout-only) but generalized to
// the new command surface.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/fenwick-io/goredis"
)

var (
	addrFlag    = flag.String("addr", "localhost:6379", "Redis node `address`.")
	timeoutFlag = flag.Duration("timeout", time.Second, "Per-call `deadline`.")
)

func main() {
	flag.Usage = usage
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	client, err := redis.NewDirectClient(redis.ClientConfig{
		ChannelConfig: redis.ChannelConfig{Addr: *addrFlag},
		Timeout:       *timeoutFlag,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "redisctl: connect:", err)
		os.Exit(2)
	}
	defer client.Close()

	switch cmd, rest := args[0], args[1:]; cmd {
	case "get":
		runGet(client, rest)
	case "set":
		runSet(client, rest)
	case "del":
		runDel(client, rest)
	case "publish":
		runPublish(client, rest)
	case "lock":
		runLock(client, rest)
	default:
		fmt.Fprintf(os.Stderr, "redisctl: unknown subcommand %q\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	os.Stderr.WriteString(`NAME
	redisctl — exercise a Redis node

SYNOPSIS
	redisctl [ -addr host:port ] get key
	redisctl [ -addr host:port ] set key value
	redisctl [ -addr host:port ] del key [ key ... ]
	redisctl [ -addr host:port ] publish channel message
	redisctl [ -addr host:port ] lock name

`)
	flag.PrintDefaults()
}

func runGet(c *redis.DirectClient, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "redisctl: get takes exactly one key")
		os.Exit(1)
	}
	s, found, err := c.GetString(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, "redisctl: get:", err)
		os.Exit(255)
	}
	if !found {
		fmt.Println("<null>")
		return
	}
	fmt.Println(strconv.Quote(s))
}

func runSet(c *redis.DirectClient, args []string) {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "redisctl: set takes exactly key and value")
		os.Exit(1)
	}
	if err := c.SetString(args[0], args[1], redis.SetOptions{}); err != nil {
		fmt.Fprintln(os.Stderr, "redisctl: set:", err)
		os.Exit(255)
	}
}

func runDel(c *redis.DirectClient, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "redisctl: del takes one or more keys")
		os.Exit(1)
	}
	n, err := c.Delete(args...)
	if err != nil {
		fmt.Fprintln(os.Stderr, "redisctl: del:", err)
		os.Exit(255)
	}
	fmt.Println(n)
}

func runPublish(c *redis.DirectClient, args []string) {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "redisctl: publish takes exactly channel and message")
		os.Exit(1)
	}
	n, err := c.Publish(args[0], []byte(args[1]))
	if err != nil {
		fmt.Fprintln(os.Stderr, "redisctl: publish:", err)
		os.Exit(255)
	}
	fmt.Println(n, "subscribers received it")
}

func runLock(c *redis.DirectClient, args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "redisctl: lock takes exactly one name")
		os.Exit(1)
	}
	lock := redis.NewDistributedLock(c, nil)
	info, err := lock.TryLock(args[0], redis.LockConfig{})
	if err != nil {
		fmt.Fprintln(os.Stderr, "redisctl: lock:", err)
		os.Exit(255)
	}
	if info == nil {
		fmt.Println("lock not acquired (contended)")
		os.Exit(3)
	}
	fmt.Println("acquired, token", info.Token)
}
