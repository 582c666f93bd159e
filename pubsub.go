package redis

import (
	"bufio"
	"context"
	"net"
	"sync"
	"time"
)

// MessageHandler receives one PUBLISH payload for a channel subscription.
type MessageHandler func(channel string, payload []byte)

// PatternHandler receives one PUBLISH payload for a pattern subscription,
// together with the concrete channel name that matched the pattern.
type PatternHandler func(pattern, channel string, payload []byte)

// Subscriber is a long-lived (P)SUBSCRIBE session on a dedicated
// connection — pub/sub monopolizes the connection, so a Subscriber never
// shares its socket with DirectClient's request/response traffic. On any
// transport failure it reconnects with a doubling backoff and
// re-subscribes to every channel and pattern it held before the drop;
// messages published during the gap are lost, and a message delivered
// right at reconnect may be seen twice (at-least-once), matching the
// teacher's own Listener.
//
// By default, handler dispatch runs synchronously on the reader goroutine
// — handlers must not block. Set Config.WorkerPoolSize to isolate handler
// latency behind a bounded pool instead.
type Subscriber struct {
	config   SubscriberConfig
	observer Observer

	ctx    context.Context
	cancel context.CancelFunc
	closed chan struct{}

	mu       sync.Mutex
	conn     net.Conn
	channels map[string]MessageHandler
	patterns map[string]PatternHandler

	work chan func()
}

// NewSubscriber dials cfg.Addr and starts the session's background
// connect/reconnect loop. Subscriptions registered before the first
// successful connect are sent as soon as it completes.
func NewSubscriber(cfg SubscriberConfig, observer Observer) *Subscriber {
	if observer == nil {
		observer = NopObserver{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Subscriber{
		config:   cfg,
		observer: observer,
		ctx:      ctx,
		cancel:   cancel,
		closed:   make(chan struct{}),
		channels: make(map[string]MessageHandler),
		patterns: make(map[string]PatternHandler),
	}
	if cfg.WorkerPoolSize > 0 {
		s.work = make(chan func(), cfg.WorkerPoolSize*4)
		for i := 0; i < cfg.WorkerPoolSize; i++ {
			go s.worker()
		}
	}
	go s.connectLoop()
	return s
}

func (s *Subscriber) worker() {
	for fn := range s.work {
		fn()
	}
}

func (s *Subscriber) dispatch(fn func()) {
	if s.work == nil {
		fn()
		return
	}
	select {
	case s.work <- fn:
	case <-s.ctx.Done():
	}
}

// Subscribe registers handler for channel, sending SUBSCRIBE immediately
// if the session is connected and re-sending it on every future reconnect.
func (s *Subscriber) Subscribe(channel string, handler MessageHandler) error {
	if channel == "" || handler == nil {
		return ErrInvalidArgument
	}
	s.mu.Lock()
	s.channels[channel] = handler
	conn := s.conn
	s.mu.Unlock()
	if conn != nil {
		return sendSubscribe(conn, s.config.ConnectTimeout, "SUBSCRIBE", channel)
	}
	return nil
}

// PSubscribe registers handler for pattern, sending PSUBSCRIBE immediately
// if connected and re-sending it on every future reconnect.
func (s *Subscriber) PSubscribe(pattern string, handler PatternHandler) error {
	if pattern == "" || handler == nil {
		return ErrInvalidArgument
	}
	s.mu.Lock()
	s.patterns[pattern] = handler
	conn := s.conn
	s.mu.Unlock()
	if conn != nil {
		return sendSubscribe(conn, s.config.ConnectTimeout, "PSUBSCRIBE", pattern)
	}
	return nil
}

// Unsubscribe drops channel's handler and, if connected, sends UNSUBSCRIBE.
func (s *Subscriber) Unsubscribe(channel string) error {
	s.mu.Lock()
	delete(s.channels, channel)
	conn := s.conn
	s.mu.Unlock()
	if conn != nil {
		return sendSubscribe(conn, s.config.ConnectTimeout, "UNSUBSCRIBE", channel)
	}
	return nil
}

// PUnsubscribe drops pattern's handler and, if connected, sends
// PUNSUBSCRIBE.
func (s *Subscriber) PUnsubscribe(pattern string) error {
	s.mu.Lock()
	delete(s.patterns, pattern)
	conn := s.conn
	s.mu.Unlock()
	if conn != nil {
		return sendSubscribe(conn, s.config.ConnectTimeout, "PUNSUBSCRIBE", pattern)
	}
	return nil
}

// Close terminates the session permanently; no further reconnect attempts
// are made.
func (s *Subscriber) Close() error {
	s.cancel()
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn != nil {
		conn.Close()
	}
	<-s.closed
	if s.work != nil {
		close(s.work)
	}
	return nil
}

func (s *Subscriber) connectLoop() {
	defer close(s.closed)

	backoff := time.Duration(0)
	for {
		if s.ctx.Err() != nil {
			return
		}

		conn, reader, err := s.dial()
		if err != nil {
			logWarnf("redis: subscriber %s dial failed: %v", s.config.Addr, err)
			if backoff == 0 {
				backoff = 10 * time.Millisecond
			} else {
				backoff *= 2
			}
			max := s.config.ReconnectBackoff
			if max <= 0 {
				max = defaultReconnectBackoff
			}
			if backoff > max {
				backoff = max
			}
			select {
			case <-time.After(backoff):
				continue
			case <-s.ctx.Done():
				return
			}
		}
		backoff = 0

		s.mu.Lock()
		s.conn = conn
		names := make([]string, 0, len(s.channels))
		for name := range s.channels {
			names = append(names, name)
		}
		pats := make([]string, 0, len(s.patterns))
		for p := range s.patterns {
			pats = append(pats, p)
		}
		s.mu.Unlock()

		ok := true
		if len(names) > 0 {
			ok = sendSubscribe(conn, s.config.ConnectTimeout, "SUBSCRIBE", names...) == nil
		}
		if ok && len(pats) > 0 {
			ok = sendSubscribe(conn, s.config.ConnectTimeout, "PSUBSCRIBE", pats...) == nil
		}

		if ok {
			s.receiveLoop(reader)
		}

		s.mu.Lock()
		s.conn = nil
		s.mu.Unlock()
		conn.Close()

		if s.ctx.Err() != nil {
			return
		}
	}
}

func (s *Subscriber) dial() (net.Conn, *bufio.Reader, error) {
	timeout := s.config.ConnectTimeout
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	addr := normalizeAddr(s.config.Addr)
	network := "tcp"
	if isUnixAddr(addr) {
		network = "unix"
	}
	conn, err := net.DialTimeout(network, addr, timeout)
	if err != nil {
		return nil, nil, err
	}
	return conn, bufio.NewReader(conn), nil
}

// receiveLoop decodes one RESP array per iteration and dispatches it per
// spec §4.8: 3-element "message" and 4-element "pmessage" frames go to
// handlers; 3-element "subscribe"/"unsubscribe"/... frames are session
// bookkeeping only, their membership count is not otherwise surfaced.
func (s *Subscriber) receiveLoop(reader *bufio.Reader) {
	for {
		v, err := DecodeValue(reader)
		if err != nil {
			return
		}
		if v.IsNil || len(v.Array) < 3 {
			continue
		}
		kind := string(v.Array[0].Bulk)
		switch kind {
		case "message":
			channel := string(v.Array[1].Bulk)
			payload := v.Array[2].Bulk
			s.mu.Lock()
			handler := s.channels[channel]
			s.mu.Unlock()
			if handler != nil {
				s.dispatch(func() { handler(channel, payload) })
			}

		case "pmessage":
			if len(v.Array) < 4 {
				continue
			}
			pattern := string(v.Array[1].Bulk)
			channel := string(v.Array[2].Bulk)
			payload := v.Array[3].Bulk
			s.mu.Lock()
			handler := s.patterns[pattern]
			s.mu.Unlock()
			if handler != nil {
				s.dispatch(func() { handler(pattern, channel, payload) })
			}

		case "subscribe", "unsubscribe", "psubscribe", "punsubscribe":
			// session bookkeeping only; the membership count Redis
			// reports here is not surfaced further.
		}
	}
}

// sendSubscribe writes one (P)(UN)SUBSCRIBE frame naming every target.
func sendSubscribe(conn net.Conn, timeout time.Duration, name string, targets ...string) error {
	req := newRequest()
	args := make([]arg, len(targets))
	for i, t := range targets {
		args[i] = t
	}
	req.encodeCommand(name, args...)
	if timeout > 0 {
		conn.SetWriteDeadline(time.Now().Add(timeout))
	}
	_, err := conn.Write(req.buf)
	req.free()
	return err
}
