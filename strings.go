package redis

// SetFlag selects SET's conditional/expiry behavior, combined by OR.
type SetFlag int

const (
	SetAlways  SetFlag = 0
	SetIfAbsent SetFlag = 1 << iota // NX
	SetIfExist                      // XX
)

// SetOptions configures Set. ExpireSeconds of 0 means no expiry.
type SetOptions struct {
	Flags         SetFlag
	ExpireSeconds int64
}

// Get returns the decoded value stored at key, or found=false if key does
// not exist.
func (c *DirectClient) Get(key string, out any) (found bool, err error) {
	if key == "" {
		return false, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return false, err
	}
	payload, found, err := asBulk(c.do("GET", key))
	if !found || err != nil {
		return found, err
	}
	if derr := c.codec.Decode(payload, out); derr != nil {
		return true, unexpectedf("value decode: %v", derr)
	}
	return true, nil
}

// GetString is Get specialized to raw strings, bypassing the codec.
func (c *DirectClient) GetString(key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return "", false, err
	}
	return asBulkString(c.do("GET", key))
}

// MGet returns one decoded value per key, with found[i] reporting whether
// keys[i] existed.
func (c *DirectClient) MGet(keys []string, outs []any) (found []bool, err error) {
	if len(keys) == 0 || len(keys) != len(outs) {
		return nil, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return nil, err
	}
	v, err := c.do("MGET", stringArgs(keys)...)
	if err != nil {
		return nil, err
	}
	if v.IsError {
		return nil, ServerError(v.Text)
	}
	found = make([]bool, len(keys))
	for i, e := range v.Array {
		if e.IsNil {
			continue
		}
		if derr := c.codec.Decode(e.Bulk, outs[i]); derr != nil {
			return found, unexpectedf("value decode: %v", derr)
		}
		found[i] = true
	}
	return found, nil
}

// Set stores value at key per opts.
func (c *DirectClient) Set(key string, value any, opts SetOptions) error {
	if key == "" {
		return ErrInvalidArgument
	}
	payload, err := c.encodeValue(value)
	if err != nil {
		return err
	}
	if err := c.requireRunning(); err != nil {
		return err
	}
	args := []arg{key, payload}
	if opts.ExpireSeconds > 0 {
		args = append(args, "EX", opts.ExpireSeconds)
	}
	switch {
	case opts.Flags&SetIfAbsent != 0:
		args = append(args, "NX")
	case opts.Flags&SetIfExist != 0:
		args = append(args, "XX")
	}
	v, err := c.do("SET", args...)
	if err != nil {
		return err
	}
	if v.IsError {
		return ServerError(v.Text)
	}
	if v.IsNil {
		return errNull // NX/XX condition not satisfied
	}
	return nil
}

// SetString is Set specialized to raw strings, bypassing the codec.
func (c *DirectClient) SetString(key, value string, opts SetOptions) error {
	if key == "" {
		return ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return err
	}
	args := []arg{key, value}
	if opts.ExpireSeconds > 0 {
		args = append(args, "EX", opts.ExpireSeconds)
	}
	switch {
	case opts.Flags&SetIfAbsent != 0:
		args = append(args, "NX")
	case opts.Flags&SetIfExist != 0:
		args = append(args, "XX")
	}
	v, err := c.do("SET", args...)
	if err != nil {
		return err
	}
	if v.IsError {
		return ServerError(v.Text)
	}
	if v.IsNil {
		return errNull
	}
	return nil
}

// GetSet atomically replaces key's raw string value and returns the old
// one.
func (c *DirectClient) GetSet(key, value string) (old string, found bool, err error) {
	if key == "" {
		return "", false, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return "", false, err
	}
	return asBulkString(c.do("GETSET", key, value))
}

// StrLen returns the byte length of the raw string stored at key, 0 if
// absent.
func (c *DirectClient) StrLen(key string) (int64, error) {
	if key == "" {
		return 0, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return 0, err
	}
	return asInt(c.do("STRLEN", key))
}

// IncrBy adds delta to the counter at key, creating it at 0 first if
// absent, and returns the new value.
func (c *DirectClient) IncrBy(key string, delta int64) (int64, error) {
	if key == "" {
		return 0, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return 0, err
	}
	return asInt(c.do("INCRBY", key, delta))
}

// MGetCount parses each of keys as a counter, treating absence as 0.
func (c *DirectClient) MGetCount(keys []string) ([]int64, error) {
	if len(keys) == 0 {
		return nil, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return nil, err
	}
	v, err := c.do("MGET", stringArgs(keys)...)
	if err != nil {
		return nil, err
	}
	if v.IsError {
		return nil, ServerError(v.Text)
	}
	out := make([]int64, len(v.Array))
	for i, e := range v.Array {
		if !e.IsNil {
			out[i] = ParseInt(e.Bulk)
		}
	}
	return out, nil
}
