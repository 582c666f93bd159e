package redis

import (
	"strconv"
	"time"
)

// ClientConfig configures a DirectClient (and the Channel it binds).
type ClientConfig struct {
	ChannelConfig

	Codec                 ValueCodec    // defaults to RawCodec{}
	Timeout               time.Duration // per-call deadline; defaults to 1s
	CompressionThreshold  int           // bytes; forwarded to a CompressingCodec if Codec is one
	SlowExecutionThreshold time.Duration // defaults to 100ms; negative disables slow-call events
	Observer              Observer      // defaults to NopObserver{}
	ListName              string        // label used in Observer events; defaults to Addr
}

const (
	defaultClientTimeout = time.Second
	defaultSlowThreshold = 100 * time.Millisecond
)

// DirectClient binds one Channel to the full typed Redis command surface:
// strings, counters, sets, sorted sets, lists, hashes, geo values, pub/sub
// publish and keyspace administration. Every method validates its
// arguments locally (failing with ErrInvalidArgument before any network
// call), classifies the outcome for the Observer, and times out per
// Timeout.
type DirectClient struct {
	addr     string
	listName string
	channel  *Channel
	codec    ValueCodec
	timeout  time.Duration
	slow     time.Duration
	observer Observer
}

// NewDirectClient dials cfg.Addr and returns a DirectClient bound to the
// new Channel.
func NewDirectClient(cfg ClientConfig) (*DirectClient, error) {
	ch, err := Dial(cfg.ChannelConfig)
	if err != nil {
		return nil, err
	}
	return newDirectClientFromChannel(ch, cfg), nil
}

func newDirectClientFromChannel(ch *Channel, cfg ClientConfig) *DirectClient {
	codec := cfg.Codec
	if codec == nil {
		codec = RawCodec{}
	}
	if cc, ok := codec.(*CompressingCodec); ok && cfg.CompressionThreshold > 0 {
		cc.Threshold = cfg.CompressionThreshold
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultClientTimeout
	}
	slow := cfg.SlowExecutionThreshold
	if slow == 0 {
		slow = defaultSlowThreshold
	}
	observer := cfg.Observer
	if observer == nil {
		observer = NopObserver{}
	}
	listName := cfg.ListName
	if listName == "" {
		listName = cfg.Addr
	}
	return &DirectClient{
		addr:     normalizeAddr(cfg.Addr),
		listName: listName,
		channel:  ch,
		codec:    codec,
		timeout:  timeout,
		slow:     slow,
		observer: observer,
	}
}

// Addr returns the normalized host this client is bound to.
func (c *DirectClient) Addr() string { return c.addr }

// IsAvailable reports whether the underlying channel is Running.
func (c *DirectClient) IsAvailable() bool {
	return c.channel.State() == Running
}

// Close tears down the underlying channel.
func (c *DirectClient) Close() error {
	return c.channel.Close()
}

// do is every typed method's single path to the network: it submits the
// command, times the round trip, and reports the outcome to the Observer.
func (c *DirectClient) do(name string, args ...arg) (RespValue, error) {
	start := time.Now()
	v, err := c.channel.Do(c.timeout, name, args...)
	class := classify(err)
	if err == nil && v.IsError {
		class = ClassRedisError
	}
	c.observer.OnExecution(class, time.Since(start))
	if err == nil && c.slow > 0 {
		if elapsed := time.Since(start); elapsed > c.slow {
			c.observer.OnSlowCall(name, elapsed)
		}
	}
	return v, err
}

func (c *DirectClient) requireRunning() error {
	if !c.IsAvailable() {
		c.observer.OnExecution(ClassIllegalState, 0)
		return ErrIllegalState
	}
	return nil
}

// --- response classification helpers -------------------------------------

func asOK(v RespValue, err error) error {
	if err != nil {
		return err
	}
	if v.IsError {
		return ServerError(v.Text)
	}
	return nil
}

func asInt(v RespValue, err error) (int64, error) {
	if err != nil {
		return 0, err
	}
	if v.IsError {
		return 0, ServerError(v.Text)
	}
	if v.Type != typeInteger {
		return 0, unexpectedf("want integer reply, received type %q", v.Type)
	}
	return v.Integer, nil
}

// asBulk returns (payload, found, err). found is false on a nil bulk
// ("$-1"), which is GET-family's key-missing signal, not an error.
func asBulk(v RespValue, err error) ([]byte, bool, error) {
	if err != nil {
		return nil, false, err
	}
	if v.IsError {
		return nil, false, ServerError(v.Text)
	}
	if v.IsNil {
		return nil, false, nil
	}
	return v.Bulk, true, nil
}

func asBulkString(v RespValue, err error) (string, bool, error) {
	b, ok, err := asBulk(v, err)
	if !ok || err != nil {
		return "", ok, err
	}
	return string(b), true, nil
}

func asBytesArray(v RespValue, err error) ([][]byte, error) {
	if err != nil {
		return nil, err
	}
	if v.IsError {
		return nil, ServerError(v.Text)
	}
	if v.IsNil {
		return nil, nil
	}
	out := make([][]byte, len(v.Array))
	for i, e := range v.Array {
		out[i] = e.Bulk
	}
	return out, nil
}

func asStringArray(v RespValue, err error) ([]string, error) {
	if err != nil {
		return nil, err
	}
	if v.IsError {
		return nil, ServerError(v.Text)
	}
	if v.IsNil {
		return nil, nil
	}
	out := make([]string, len(v.Array))
	for i, e := range v.Array {
		out[i] = string(e.Bulk)
	}
	return out, nil
}

func asFloat(v RespValue, err error) (float64, bool, error) {
	s, ok, err := asBulkString(v, err)
	if !ok || err != nil {
		return 0, ok, err
	}
	f, perr := strconv.ParseFloat(s, 64)
	if perr != nil {
		return 0, true, unexpectedf("malformed float reply %q", s)
	}
	return f, true, nil
}

// encodeValue runs v through the client's codec. Set is its only caller;
// the raw-string methods (SetString, HSet, list pushes, ZADD members) send
// their arguments as given, without the codec.
func (c *DirectClient) encodeValue(v any) ([]byte, error) {
	b, err := c.codec.Encode(v)
	if err != nil {
		return nil, ErrInvalidArgument
	}
	return b, nil
}

// --- admin / keys ----------------------------------------------------------

// Ping verifies the connection is alive end to end.
func (c *DirectClient) Ping() error {
	if err := c.requireRunning(); err != nil {
		return err
	}
	return asOK(pingOK(c.do("PING")))
}

// pingOK treats a bare "+PONG" the same as "+OK" for Ping's purposes.
func pingOK(v RespValue, err error) (RespValue, error) {
	if err == nil && !v.IsError && v.Text == "PONG" {
		v.Text = "OK"
	}
	return v, err
}

// Expire sets a TTL of seconds on key. Returns false if key does not exist.
func (c *DirectClient) Expire(key string, seconds int64) (bool, error) {
	if key == "" {
		return false, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return false, err
	}
	n, err := asInt(c.do("EXPIRE", key, seconds))
	return n == 1, err
}

// Persist removes any TTL on key. Returns false if key had none or did not
// exist.
func (c *DirectClient) Persist(key string) (bool, error) {
	if key == "" {
		return false, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return false, err
	}
	n, err := asInt(c.do("PERSIST", key))
	return n == 1, err
}

// TTL returns the remaining time to live in seconds, -1 if key has no
// expiry, or -2 if key does not exist.
func (c *DirectClient) TTL(key string) (int64, error) {
	if key == "" {
		return 0, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return 0, err
	}
	return asInt(c.do("TTL", key))
}

// Delete removes the given keys and returns the number actually removed.
func (c *DirectClient) Delete(keys ...string) (int64, error) {
	if len(keys) == 0 {
		return 0, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return 0, err
	}
	return asInt(c.do("DEL", stringArgs(keys)...))
}

// Exists reports whether key is present.
func (c *DirectClient) Exists(key string) (bool, error) {
	if key == "" {
		return false, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return false, err
	}
	n, err := asInt(c.do("EXISTS", key))
	return n == 1, err
}

// Type returns the Redis type name stored at key ("none" if absent).
func (c *DirectClient) Type(key string) (string, error) {
	if key == "" {
		return "", ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return "", err
	}
	v, err := c.do("TYPE", key)
	if err != nil {
		return "", err
	}
	if v.IsError {
		return "", ServerError(v.Text)
	}
	return v.Text, nil
}

// Rename renames src to dst, overwriting dst if it exists.
func (c *DirectClient) Rename(src, dst string) error {
	if src == "" || dst == "" {
		return ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return err
	}
	return asOK(c.do("RENAME", src, dst))
}

// Publish delivers message on channel and returns the number of
// subscribers that received it.
func (c *DirectClient) Publish(channel string, message []byte) (int64, error) {
	if channel == "" {
		return 0, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return 0, err
	}
	n, err := asInt(c.do("PUBLISH", channel, message))
	switch {
	case err != nil:
		c.observer.OnPublish(PublishError)
	case n == 0:
		c.observer.OnPublish(PublishNoSubscriber)
	default:
		c.observer.OnPublish(PublishOK)
	}
	return n, err
}

func stringArgs(keys []string) []arg {
	out := make([]arg, len(keys))
	for i, k := range keys {
		out[i] = k
	}
	return out
}
