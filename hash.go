package redis

// HSet sets field to value in the hash at key, creating the hash first if
// absent. Returns true if field is new.
func (c *DirectClient) HSet(key, field, value string) (bool, error) {
	if key == "" || field == "" {
		return false, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return false, err
	}
	n, err := asInt(c.do("HSET", key, field, value))
	return n == 1, err
}

// HMSet sets multiple fields atomically. fields must have an even length:
// field1, value1, field2, value2, ...
func (c *DirectClient) HMSet(key string, fields ...string) error {
	if key == "" || len(fields) == 0 || len(fields)%2 != 0 {
		return ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return err
	}
	return asOK(c.do("HMSET", append([]arg{key}, stringArgs(fields)...)...))
}

// HSetNX sets field to value only if field does not already exist.
func (c *DirectClient) HSetNX(key, field, value string) (bool, error) {
	if key == "" || field == "" {
		return false, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return false, err
	}
	n, err := asInt(c.do("HSETNX", key, field, value))
	return n == 1, err
}

// HIncrBy adds delta to field's integer value, creating it at 0 first if
// absent.
func (c *DirectClient) HIncrBy(key, field string, delta int64) (int64, error) {
	if key == "" || field == "" {
		return 0, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return 0, err
	}
	return asInt(c.do("HINCRBY", key, field, delta))
}

// HIncrByFloat adds delta to field's floating-point value, creating it at
// 0 first if absent.
func (c *DirectClient) HIncrByFloat(key, field string, delta float64) (float64, error) {
	if key == "" || field == "" {
		return 0, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return 0, err
	}
	f, _, err := asFloat(c.do("HINCRBYFLOAT", key, field, delta))
	return f, err
}

// HDel removes fields from the hash at key, returning the count actually
// removed.
func (c *DirectClient) HDel(key string, fields ...string) (int64, error) {
	if key == "" || len(fields) == 0 {
		return 0, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return 0, err
	}
	return asInt(c.do("HDEL", append([]arg{key}, stringArgs(fields)...)...))
}

// HExists reports whether field is present in the hash at key.
func (c *DirectClient) HExists(key, field string) (bool, error) {
	if key == "" || field == "" {
		return false, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return false, err
	}
	n, err := asInt(c.do("HEXISTS", key, field))
	return n == 1, err
}

// HLen returns the number of fields in the hash at key.
func (c *DirectClient) HLen(key string) (int64, error) {
	if key == "" {
		return 0, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return 0, err
	}
	return asInt(c.do("HLEN", key))
}

// HGet returns field's value, or found=false if the hash or field is
// absent.
func (c *DirectClient) HGet(key, field string) (string, bool, error) {
	if key == "" || field == "" {
		return "", false, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return "", false, err
	}
	return asBulkString(c.do("HGET", key, field))
}

// HStrLen returns the byte length of field's value, 0 if absent.
func (c *DirectClient) HStrLen(key, field string) (int64, error) {
	if key == "" || field == "" {
		return 0, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return 0, err
	}
	return asInt(c.do("HSTRLEN", key, field))
}

// HMGet returns one value per field; a missing field yields an empty
// string in the result (per Redis semantics, indistinguishable here from a
// genuinely empty value — use HExists to disambiguate).
func (c *DirectClient) HMGet(key string, fields ...string) ([]string, error) {
	if key == "" || len(fields) == 0 {
		return nil, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return nil, err
	}
	return asStringArray(c.do("HMGET", append([]arg{key}, stringArgs(fields)...)...))
}

// HKeys returns every field name in the hash at key.
func (c *DirectClient) HKeys(key string) ([]string, error) {
	if key == "" {
		return nil, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return nil, err
	}
	return asStringArray(c.do("HKEYS", key))
}

// HVals returns every value in the hash at key.
func (c *DirectClient) HVals(key string) ([]string, error) {
	if key == "" {
		return nil, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return nil, err
	}
	return asStringArray(c.do("HVALS", key))
}

// HGetAll returns the hash at key as a map from field to value.
func (c *DirectClient) HGetAll(key string) (map[string]string, error) {
	if key == "" {
		return nil, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return nil, err
	}
	v, err := c.do("HGETALL", key)
	if err != nil {
		return nil, err
	}
	if v.IsError {
		return nil, ServerError(v.Text)
	}
	out := make(map[string]string, len(v.Array)/2)
	for i := 0; i+1 < len(v.Array); i += 2 {
		out[string(v.Array[i].Bulk)] = string(v.Array[i+1].Bulk)
	}
	return out, nil
}
