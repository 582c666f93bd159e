package redis

import (
	"bufio"
	"net"
	"sync"
	"sync/atomic"
	"time"
)

// channelState is Channel's lifecycle: Uninitialized until dial completes
// and PING/PONG verifies the session, Running while serving commands, and
// Closed once the socket is torn down — permanently, a Channel never
// reopens.
type channelState int32

const (
	Uninitialized channelState = iota
	Running
	Closed
)

func (s channelState) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Running:
		return "running"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

// ChannelConfig configures a single Channel session. Zero values fall back
// to the defaults below.
type ChannelConfig struct {
	Addr           string // host:port, or a Unix socket path starting with "/"
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	// PingPeriod is the longest the channel goes without network traffic
	// before the heartbeat sends a PING. Zero picks defaultPingPeriod; a
	// negative value disables the heartbeat.
	PingPeriod time.Duration
	// QueueSize bounds the number of in-flight pipelined commands. Zero
	// picks queueSizeTCP/queueSizeUnix, matching the teacher's distinction
	// (a Unix socket gets the deeper queue).
	QueueSize int
}

const (
	queueSizeTCP  = 128
	queueSizeUnix = 512

	defaultConnectTimeout = 5 * time.Second
	defaultPingPeriod     = 30 * time.Second

	// timeoutStormThreshold is the count of consecutive, closely-spaced
	// timeouts the channel tolerates; one more closes it. "Consecutive" here means every
	// pair of recorded timeouts landed within timeoutStormWindow of the
	// previous one; a single isolated timeout never trips this.
	timeoutStormThreshold = 50
	timeoutStormWindow    = time.Second
)

// Channel is one pipelined TCP or Unix-domain session with a Redis node.
// Callers submit commands via Do/DoAsking; a single background goroutine
// owns all socket reads and hands each reply to the oldest unanswered
// command, preserving response order under concurrent submission. Safe for
// concurrent use by multiple goroutines.
type Channel struct {
	addr           string
	connectTimeout time.Duration
	readTimeout    time.Duration
	writeTimeout   time.Duration
	pingPeriod     time.Duration

	state atomic.Int32

	writeMu sync.Mutex // serializes writers and their matching FIFO push
	conn    net.Conn
	reader  *bufio.Reader

	inflight chan command

	lastUsedMu sync.Mutex
	lastUsed   time.Time

	timeoutMu           sync.Mutex
	consecutiveTimeouts int
	lastTimeoutAt       time.Time

	closeOnce sync.Once
	closed    chan struct{}
	closeErr  error
}

// Dial opens addr, verifies the session with PING/PONG, and starts the
// background reader and heartbeat. It returns a Channel already in the
// Running state, or an error if the handshake fails.
func Dial(cfg ChannelConfig) (*Channel, error) {
	addr := normalizeAddr(cfg.Addr)
	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = defaultConnectTimeout
	}
	pingPeriod := cfg.PingPeriod
	switch {
	case pingPeriod == 0:
		pingPeriod = defaultPingPeriod
	case pingPeriod < 0:
		pingPeriod = 0 // explicit opt-out of the heartbeat
	}
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		if isUnixAddr(addr) {
			queueSize = queueSizeUnix
		} else {
			queueSize = queueSizeTCP
		}
	}

	network := "tcp"
	if isUnixAddr(addr) {
		network = "unix"
	}
	conn, err := net.DialTimeout(network, addr, connectTimeout)
	if err != nil {
		return nil, err
	}
	if tcp, ok := conn.(*net.TCPConn); ok {
		tcp.SetNoDelay(false) // favor fewer, fuller packets under pipelining
		tcp.SetLinger(0)
	}

	ch := &Channel{
		addr:           addr,
		connectTimeout: connectTimeout,
		readTimeout:    cfg.ReadTimeout,
		writeTimeout:   cfg.WriteTimeout,
		pingPeriod:     pingPeriod,
		conn:           conn,
		reader:         bufio.NewReader(conn),
		inflight:       make(chan command, queueSize),
		closed:         make(chan struct{}),
	}

	if err := ch.verify(); err != nil {
		conn.Close()
		return nil, err
	}

	ch.state.Store(int32(Running))
	ch.touch()
	go ch.readLoop()
	if pingPeriod > 0 {
		go ch.heartbeatLoop()
	}
	return ch, nil
}

func (ch *Channel) verify() error {
	if ch.writeTimeout > 0 {
		ch.conn.SetWriteDeadline(time.Now().Add(ch.writeTimeout))
	}
	if _, err := ch.conn.Write(pingFrame); err != nil {
		return err
	}
	if ch.readTimeout > 0 {
		ch.conn.SetReadDeadline(time.Now().Add(ch.readTimeout))
	}
	v, err := DecodeValue(ch.reader)
	if err != nil {
		return err
	}
	if v.IsError {
		return ServerError(v.Text)
	}
	if v.Text != "PONG" {
		return unexpectedf("startup PING answered %q, want PONG", v.Text)
	}
	return nil
}

var pingFrame = []byte("*1\r\n$4\r\nPING\r\n")

// State reports the channel's current lifecycle state.
func (ch *Channel) State() channelState {
	return channelState(ch.state.Load())
}

// Do encodes name/args, submits it, and blocks up to timeout for the
// response. A non-positive timeout blocks indefinitely. Timeouts are fed
// back into the channel's timeout-storm detector.
func (ch *Channel) Do(timeout time.Duration, name string, args ...arg) (RespValue, error) {
	cmd := ch.encode(name, args...)
	if err := ch.enqueue(cmd); err != nil {
		return RespValue{}, err
	}
	return ch.await(cmd, timeout)
}

// DoAsking is Do, but prefixes the wire request with an ASKING frame — the
// cluster ASK redirect path. The wrapping is transport-only: the caller
// still waits on, and receives the error/value of, the wrapped command.
func (ch *Channel) DoAsking(timeout time.Duration, name string, args ...arg) (RespValue, error) {
	inner := ch.encode(name, args...)
	wrapped := newAskingCommand(inner)
	if err := ch.enqueue(wrapped); err != nil {
		return RespValue{}, err
	}
	return ch.await(inner, timeout)
}

func (ch *Channel) encode(name string, args ...arg) *simpleCommand {
	req := newRequest()
	req.encodeCommand(name, args...)
	buf := make([]byte, len(req.buf))
	copy(buf, req.buf)
	req.free()
	return newSimpleCommand(buf)
}

func (ch *Channel) await(cmd *simpleCommand, timeout time.Duration) (RespValue, error) {
	v, err := cmd.wait(timeout)
	if err == ErrTimeout {
		ch.recordTimeout()
	}
	return v, err
}

// enqueue pushes cmd onto the in-flight FIFO and then writes the request as
// one write-locked step, so FIFO order always matches wire order and a
// reply can never arrive before its command is on the FIFO.
func (ch *Channel) enqueue(cmd command) error {
	if ch.State() != Running {
		return ErrIllegalState
	}
	ch.writeMu.Lock()
	if ch.State() != Running {
		ch.writeMu.Unlock()
		return ErrIllegalState
	}
	select {
	case ch.inflight <- cmd:
	default:
		ch.writeMu.Unlock()
		ch.fail(errConnLost)
		return errConnLost
	}
	if ch.writeTimeout > 0 {
		ch.conn.SetWriteDeadline(time.Now().Add(ch.writeTimeout))
	}
	_, err := ch.conn.Write(cmd.requestBytes())
	ch.writeMu.Unlock()
	if err != nil {
		ch.fail(err)
		return err
	}
	ch.touch()
	return nil
}

// readLoop is the channel's sole socket reader. It decodes one reply at a
// time and hands it to the oldest command still awaiting one, popping that
// command off the FIFO only once it reports itself done — a composite
// askingCommand holds the FIFO slot across its two replies.
func (ch *Channel) readLoop() {
	var current command
	for {
		if ch.readTimeout > 0 && ch.pingPeriod <= 0 {
			ch.conn.SetReadDeadline(time.Now().Add(ch.readTimeout))
		}
		v, err := DecodeValue(ch.reader)
		if err != nil {
			ch.fail(err)
			return
		}
		ch.touch()
		if current == nil {
			select {
			case current = <-ch.inflight:
			default:
				ch.fail(unexpectedf("unsolicited reply with no command pending"))
				return
			}
		}
		if current.receive(v) {
			current = nil
		}
	}
}

// heartbeatLoop sends PING whenever the channel has been idle for longer
// than pingPeriod. A timed-out pong counts as a timeout event against the
// storm detector, same as any other command timeout.
func (ch *Channel) heartbeatLoop() {
	ticker := time.NewTicker(ch.pingPeriod / 4)
	defer ticker.Stop()
	for {
		select {
		case <-ch.closed:
			return
		case <-ticker.C:
			if ch.idleFor() < ch.pingPeriod {
				continue
			}
			if ch.State() != Running {
				return
			}
			timeout := ch.pingPeriod
			if ch.readTimeout > 0 && ch.readTimeout < timeout {
				timeout = ch.readTimeout
			}
			if _, err := ch.Do(timeout, "PING"); err != nil && ch.State() == Closed {
				return
			}
		}
	}
}

func (ch *Channel) idleFor() time.Duration {
	ch.lastUsedMu.Lock()
	defer ch.lastUsedMu.Unlock()
	return time.Since(ch.lastUsed)
}

func (ch *Channel) touch() {
	ch.lastUsedMu.Lock()
	ch.lastUsed = time.Now()
	ch.lastUsedMu.Unlock()
}

// recordTimeout applies the timeout-storm policy: more than
// timeoutStormThreshold timeouts, every consecutive pair within
// timeoutStormWindow of each other, closes the channel. A gap at or beyond
// the window resets the streak to 1.
func (ch *Channel) recordTimeout() {
	ch.timeoutMu.Lock()
	now := time.Now()
	if !ch.lastTimeoutAt.IsZero() && now.Sub(ch.lastTimeoutAt) < timeoutStormWindow {
		ch.consecutiveTimeouts++
	} else {
		ch.consecutiveTimeouts = 1
	}
	ch.lastTimeoutAt = now
	storm := ch.consecutiveTimeouts > timeoutStormThreshold
	ch.timeoutMu.Unlock()

	if storm {
		ch.fail(errTimeoutStorm)
	}
}

// fail transitions the channel to Closed, closes the socket, and unblocks
// every command still in the FIFO with err. Safe to call more than once or
// concurrently; only the first call has effect.
func (ch *Channel) fail(err error) {
	ch.closeOnce.Do(func() {
		ch.closeErr = err
		if err != ErrClosed {
			logWarnf("redis: channel %s closed: %v", ch.addr, err)
		}
		ch.state.Store(int32(Closed))
		ch.conn.Close()
		close(ch.closed)
		for {
			select {
			case cmd := <-ch.inflight:
				cmd.closeWith(err)
			default:
				return
			}
		}
	})
}

// Close shuts the channel down cleanly, unblocking any in-flight commands
// with ErrClosed.
func (ch *Channel) Close() error {
	ch.fail(ErrClosed)
	return nil
}

// Err returns the reason the channel closed, or nil while Running.
func (ch *Channel) Err() error {
	return ch.closeErr
}
