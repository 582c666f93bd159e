package redis

// SAdd adds members to the set at key, returning the count actually added.
func (c *DirectClient) SAdd(key string, members ...string) (int64, error) {
	if key == "" || len(members) == 0 {
		return 0, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return 0, err
	}
	return asInt(c.do("SADD", append([]arg{key}, stringArgs(members)...)...))
}

// SRem removes members from the set at key, returning the count actually
// removed.
func (c *DirectClient) SRem(key string, members ...string) (int64, error) {
	if key == "" || len(members) == 0 {
		return 0, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return 0, err
	}
	return asInt(c.do("SREM", append([]arg{key}, stringArgs(members)...)...))
}

// SIsMember reports whether member is in the set at key.
func (c *DirectClient) SIsMember(key, member string) (bool, error) {
	if key == "" {
		return false, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return false, err
	}
	n, err := asInt(c.do("SISMEMBER", key, member))
	return n == 1, err
}

// SCard returns the number of members in the set at key.
func (c *DirectClient) SCard(key string) (int64, error) {
	if key == "" {
		return 0, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return 0, err
	}
	return asInt(c.do("SCARD", key))
}

// SMembers returns every member of the set at key.
func (c *DirectClient) SMembers(key string) ([]string, error) {
	if key == "" {
		return nil, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return nil, err
	}
	return asStringArray(c.do("SMEMBERS", key))
}

// SPop removes and returns up to count random members of the set at key.
func (c *DirectClient) SPop(key string, count int64) ([]string, error) {
	if key == "" || count <= 0 {
		return nil, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return nil, err
	}
	v, err := c.do("SPOP", key, count)
	if err != nil {
		return nil, err
	}
	if v.IsError {
		return nil, ServerError(v.Text)
	}
	if v.Type == typeBulkString {
		if v.IsNil {
			return nil, nil
		}
		return []string{string(v.Bulk)}, nil
	}
	return asStringArray(v, nil)
}
