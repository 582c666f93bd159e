package redis

// LPush prepends values to the list at key, creating it first if absent,
// and returns the new length.
func (c *DirectClient) LPush(key string, values ...string) (int64, error) {
	if key == "" || len(values) == 0 {
		return 0, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return 0, err
	}
	return asInt(c.do("LPUSH", append([]arg{key}, stringArgs(values)...)...))
}

// RPush appends values to the list at key, creating it first if absent,
// and returns the new length.
func (c *DirectClient) RPush(key string, values ...string) (int64, error) {
	if key == "" || len(values) == 0 {
		return 0, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return 0, err
	}
	return asInt(c.do("RPUSH", append([]arg{key}, stringArgs(values)...)...))
}

// LPop removes and returns the first element of the list at key.
func (c *DirectClient) LPop(key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return "", false, err
	}
	return asBulkString(c.do("LPOP", key))
}

// RPop removes and returns the last element of the list at key.
func (c *DirectClient) RPop(key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return "", false, err
	}
	return asBulkString(c.do("RPOP", key))
}

// LInsertBefore inserts value immediately before the first occurrence of
// pivot, returning the new length, or -1 if pivot was not found.
func (c *DirectClient) LInsertBefore(key, pivot, value string) (int64, error) {
	return c.lInsert(key, "BEFORE", pivot, value)
}

// LInsertAfter inserts value immediately after the first occurrence of
// pivot, returning the new length, or -1 if pivot was not found.
func (c *DirectClient) LInsertAfter(key, pivot, value string) (int64, error) {
	return c.lInsert(key, "AFTER", pivot, value)
}

func (c *DirectClient) lInsert(key, where, pivot, value string) (int64, error) {
	if key == "" {
		return 0, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return 0, err
	}
	return asInt(c.do("LINSERT", key, where, pivot, value))
}

// LSet overwrites the element at index (negative counts from the end).
func (c *DirectClient) LSet(key string, index int64, value string) error {
	if key == "" {
		return ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return err
	}
	return asOK(c.do("LSET", key, index, value))
}

// LRem removes up to count occurrences of value (count<0 scans from the
// tail, count==0 removes all) and returns the number removed.
func (c *DirectClient) LRem(key string, count int64, value string) (int64, error) {
	if key == "" {
		return 0, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return 0, err
	}
	return asInt(c.do("LREM", key, count, value))
}

// LTrim keeps only the elements in range [start, stop], discarding the
// rest.
func (c *DirectClient) LTrim(key string, start, stop int64) error {
	if key == "" {
		return ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return err
	}
	return asOK(c.do("LTRIM", key, start, stop))
}

// LLen returns the length of the list at key, 0 if absent.
func (c *DirectClient) LLen(key string) (int64, error) {
	if key == "" {
		return 0, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return 0, err
	}
	return asInt(c.do("LLEN", key))
}

// LIndex returns the element at index (negative counts from the end).
func (c *DirectClient) LIndex(key string, index int64) (string, bool, error) {
	if key == "" {
		return "", false, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return "", false, err
	}
	return asBulkString(c.do("LINDEX", key, index))
}

// LRange returns the elements in [start, stop] (inclusive, negative counts
// from the end).
func (c *DirectClient) LRange(key string, start, stop int64) ([]string, error) {
	if key == "" {
		return nil, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return nil, err
	}
	return asStringArray(c.do("LRANGE", key, start, stop))
}
