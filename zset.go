package redis

// ZAddMode selects ZADD's existence condition, mirroring spec's sort-mode
// enum: {∅, CH, NX, XX[+CH]} map to {ReplaceRetNew, ReplaceRetUpdated,
// OnlyAddRetNew, OnlyUpdateRetUpdated}.
type ZAddMode int

const (
	ReplaceRetNew ZAddMode = iota
	ReplaceRetUpdated
	OnlyAddRetNew
	OnlyUpdateRetUpdated
)

// ZMember is one member/score pair for ZAdd.
type ZMember struct {
	Member string
	Score  float64
}

// ZAdd adds or updates members of the sorted set at key per mode, and
// returns the count of members added (or, with a *RetUpdated mode, added
// plus changed).
func (c *DirectClient) ZAdd(key string, mode ZAddMode, members ...ZMember) (int64, error) {
	if key == "" || len(members) == 0 {
		return 0, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return 0, err
	}
	args := []arg{key}
	switch mode {
	case OnlyAddRetNew:
		args = append(args, "NX")
	case OnlyUpdateRetUpdated:
		args = append(args, "XX", "CH")
	case ReplaceRetUpdated:
		args = append(args, "CH")
	}
	for _, m := range members {
		args = append(args, m.Score, m.Member)
	}
	return asInt(c.do("ZADD", args...))
}

// ZIncrBy adds delta to member's score, creating it at 0 first if absent,
// and returns the new score.
func (c *DirectClient) ZIncrBy(key, member string, delta float64) (float64, error) {
	if key == "" || member == "" {
		return 0, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return 0, err
	}
	f, _, err := asFloat(c.do("ZINCRBY", key, delta, member))
	return f, err
}

// ZRem removes members from the sorted set at key.
func (c *DirectClient) ZRem(key string, members ...string) (int64, error) {
	if key == "" || len(members) == 0 {
		return 0, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return 0, err
	}
	return asInt(c.do("ZREM", append([]arg{key}, stringArgs(members)...)...))
}

// ZRemRangeByRank removes members whose rank falls in [start, stop]
// (inclusive, 0-based, negative indices count from the end).
func (c *DirectClient) ZRemRangeByRank(key string, start, stop int64) (int64, error) {
	if key == "" {
		return 0, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return 0, err
	}
	return asInt(c.do("ZREMRANGEBYRANK", key, start, stop))
}

// ZRemRangeByScore removes members whose score falls in [min, max].
func (c *DirectClient) ZRemRangeByScore(key string, min, max float64) (int64, error) {
	if key == "" {
		return 0, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return 0, err
	}
	return asInt(c.do("ZREMRANGEBYSCORE", key, min, max))
}

// ZScore returns member's score, or found=false if member is absent.
func (c *DirectClient) ZScore(key, member string) (float64, bool, error) {
	if key == "" || member == "" {
		return 0, false, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return 0, false, err
	}
	return asFloat(c.do("ZSCORE", key, member))
}

// ZRank returns member's 0-based rank in ascending score order, or
// found=false if member is absent.
func (c *DirectClient) ZRank(key, member string) (int64, bool, error) {
	if key == "" || member == "" {
		return 0, false, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return 0, false, err
	}
	v, err := c.do("ZRANK", key, member)
	if err != nil {
		return 0, false, err
	}
	if v.IsError {
		return 0, false, ServerError(v.Text)
	}
	if v.IsNil {
		return 0, false, nil
	}
	return v.Integer, true, nil
}

// ZCard returns the number of members in the sorted set at key.
func (c *DirectClient) ZCard(key string) (int64, error) {
	if key == "" {
		return 0, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return 0, err
	}
	return asInt(c.do("ZCARD", key))
}

// ZCount returns the number of members whose score falls in [min, max].
func (c *DirectClient) ZCount(key string, min, max float64) (int64, error) {
	if key == "" {
		return 0, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return 0, err
	}
	return asInt(c.do("ZCOUNT", key, min, max))
}

// ZRangeOptions configures a rank- or score-range read.
type ZRangeOptions struct {
	Reverse     bool
	WithScores  bool
	Offset      int64 // score-range only
	Count       int64 // score-range only; <=0 means "no LIMIT"
}

// ZRangeByRank returns members (and, if requested, scores) whose rank falls
// in [start, stop].
func (c *DirectClient) ZRangeByRank(key string, start, stop int64, opts ZRangeOptions) ([]ZMember, error) {
	if key == "" {
		return nil, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return nil, err
	}
	name := "ZRANGE"
	if opts.Reverse {
		name = "ZREVRANGE"
	}
	args := []arg{key, start, stop}
	if opts.WithScores {
		args = append(args, "WITHSCORES")
	}
	v, err := c.do(name, args...)
	return decodeZMembers(v, err, opts.WithScores)
}

// ZRangeByScore returns members (and, if requested, scores) whose score
// falls in [min, max], ordered ascending unless Reverse.
func (c *DirectClient) ZRangeByScore(key string, min, max float64, opts ZRangeOptions) ([]ZMember, error) {
	if key == "" {
		return nil, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return nil, err
	}
	name := "ZRANGEBYSCORE"
	lo, hi := arg(min), arg(max)
	if opts.Reverse {
		name = "ZREVRANGEBYSCORE"
		lo, hi = hi, lo
	}
	args := []arg{key, lo, hi}
	if opts.WithScores {
		args = append(args, "WITHSCORES")
	}
	if opts.Count > 0 {
		args = append(args, "LIMIT", opts.Offset, opts.Count)
	}
	v, err := c.do(name, args...)
	return decodeZMembers(v, err, opts.WithScores)
}

func decodeZMembers(v RespValue, err error, withScores bool) ([]ZMember, error) {
	if err != nil {
		return nil, err
	}
	if v.IsError {
		return nil, ServerError(v.Text)
	}
	if v.IsNil {
		return nil, nil
	}
	if !withScores {
		out := make([]ZMember, len(v.Array))
		for i, e := range v.Array {
			out[i] = ZMember{Member: string(e.Bulk)}
		}
		return out, nil
	}
	out := make([]ZMember, 0, len(v.Array)/2)
	for i := 0; i+1 < len(v.Array); i += 2 {
		out = append(out, ZMember{
			Member: string(v.Array[i].Bulk),
			Score:  ParseFloat(v.Array[i+1].Bulk),
		})
	}
	return out, nil
}
