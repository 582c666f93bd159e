package redis

// GeoCoordinate is a WGS84 longitude/latitude pair, matching the
// precondition Redis's own GEOADD enforces.
type GeoCoordinate struct {
	Longitude float64
	Latitude  float64
}

func (g GeoCoordinate) valid() bool {
	return g.Longitude >= -180 && g.Longitude <= 180 &&
		g.Latitude >= -85.05112878 && g.Latitude <= 85.05112878
}

// GeoMember is one member/coordinate pair for GeoAdd.
type GeoMember struct {
	Member string
	Coordinate GeoCoordinate
}

// GeoUnit is a GEO distance unit.
type GeoUnit string

const (
	Meters      GeoUnit = "m"
	Kilometers  GeoUnit = "km"
	Feet        GeoUnit = "ft"
	Miles       GeoUnit = "mi"
)

// GeoAdd adds or updates members' coordinates in the geo set at key.
// Validation of coordinate bounds happens here, at the encode boundary, per
// spec — an out-of-range coordinate never reaches the network.
func (c *DirectClient) GeoAdd(key string, members ...GeoMember) (int64, error) {
	if key == "" || len(members) == 0 {
		return 0, ErrInvalidArgument
	}
	args := make([]arg, 0, 1+3*len(members))
	args = append(args, key)
	for _, m := range members {
		if !m.Coordinate.valid() {
			return 0, ErrInvalidArgument
		}
		args = append(args, m.Coordinate.Longitude, m.Coordinate.Latitude, m.Member)
	}
	if err := c.requireRunning(); err != nil {
		return 0, err
	}
	return asInt(c.do("GEOADD", args...))
}

// GeoRemove removes members from the geo set at key (a geo set is stored
// as a sorted set, so removal is ZREM).
func (c *DirectClient) GeoRemove(key string, members ...string) (int64, error) {
	if key == "" || len(members) == 0 {
		return 0, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return 0, err
	}
	return asInt(c.do("ZREM", append([]arg{key}, stringArgs(members)...)...))
}

// GeoDist returns the distance between two members in unit, or found=false
// if either member is absent.
func (c *DirectClient) GeoDist(key, member1, member2 string, unit GeoUnit) (float64, bool, error) {
	if key == "" || member1 == "" || member2 == "" {
		return 0, false, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return 0, false, err
	}
	if unit == "" {
		unit = Meters
	}
	return asFloat(c.do("GEODIST", key, member1, member2, string(unit)))
}

// GeoPos returns each member's coordinate, with found[i] reporting whether
// members[i] is present.
func (c *DirectClient) GeoPos(key string, members ...string) ([]GeoCoordinate, []bool, error) {
	if key == "" || len(members) == 0 {
		return nil, nil, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return nil, nil, err
	}
	v, err := c.do("GEOPOS", append([]arg{key}, stringArgs(members)...)...)
	if err != nil {
		return nil, nil, err
	}
	if v.IsError {
		return nil, nil, ServerError(v.Text)
	}
	coords := make([]GeoCoordinate, len(v.Array))
	found := make([]bool, len(v.Array))
	for i, e := range v.Array {
		if e.IsNil || len(e.Array) != 2 {
			continue
		}
		coords[i] = GeoCoordinate{
			Longitude: ParseFloat(e.Array[0].Bulk),
			Latitude:  ParseFloat(e.Array[1].Bulk),
		}
		found[i] = true
	}
	return coords, found, nil
}

// GeoOrder sorts FindNeighbours results by distance, or leaves them
// unordered.
type GeoOrder int

const (
	OrderNone GeoOrder = iota
	OrderAsc
	OrderDesc
)

// GeoSearchOptions configures FindNeighbours.
type GeoSearchOptions struct {
	Radius    float64
	Unit      GeoUnit
	Count     int64 // <=0 means unlimited
	NeedCoord bool
	NeedDist  bool
	OrderBy   GeoOrder
}

// GeoNeighbour is one FindNeighbours result row.
type GeoNeighbour struct {
	Member     string
	Distance   float64 // valid iff the query set NeedDist
	Coordinate GeoCoordinate // valid iff the query set NeedCoord
}

// FindNeighboursByMember searches around an existing member's position.
func (c *DirectClient) FindNeighboursByMember(key, member string, opts GeoSearchOptions) ([]GeoNeighbour, error) {
	if key == "" || member == "" || opts.Radius <= 0 {
		return nil, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return nil, err
	}
	args := []arg{key, member}
	args = c.geoRadiusArgs(args, opts)
	v, err := c.do("GEORADIUSBYMEMBER", args...)
	return decodeGeoNeighbours(v, err, opts)
}

// FindNeighboursByCoordinate searches around an arbitrary coordinate.
func (c *DirectClient) FindNeighboursByCoordinate(key string, center GeoCoordinate, opts GeoSearchOptions) ([]GeoNeighbour, error) {
	if key == "" || !center.valid() || opts.Radius <= 0 {
		return nil, ErrInvalidArgument
	}
	if err := c.requireRunning(); err != nil {
		return nil, err
	}
	args := []arg{key, center.Longitude, center.Latitude}
	args = c.geoRadiusArgs(args, opts)
	v, err := c.do("GEORADIUS", args...)
	return decodeGeoNeighbours(v, err, opts)
}

func (c *DirectClient) geoRadiusArgs(args []arg, opts GeoSearchOptions) []arg {
	unit := opts.Unit
	if unit == "" {
		unit = Meters
	}
	args = append(args, opts.Radius, string(unit))
	if opts.NeedCoord {
		args = append(args, "WITHCOORD")
	}
	if opts.NeedDist {
		args = append(args, "WITHDIST")
	}
	if opts.Count > 0 {
		args = append(args, "COUNT", opts.Count)
	}
	switch opts.OrderBy {
	case OrderAsc:
		args = append(args, "ASC")
	case OrderDesc:
		args = append(args, "DESC")
	}
	return args
}

func decodeGeoNeighbours(v RespValue, err error, opts GeoSearchOptions) ([]GeoNeighbour, error) {
	if err != nil {
		return nil, err
	}
	if v.IsError {
		return nil, ServerError(v.Text)
	}
	out := make([]GeoNeighbour, len(v.Array))
	for i, row := range v.Array {
		if row.Type != typeArray {
			// no WITHCOORD/WITHDIST requested: row is a bare member name
			out[i] = GeoNeighbour{Member: string(row.Bulk)}
			continue
		}
		n := GeoNeighbour{Member: string(row.Array[0].Bulk)}
		next := 1
		if opts.NeedDist {
			n.Distance = ParseFloat(row.Array[next].Bulk)
			next++
		}
		if opts.NeedCoord {
			coord := row.Array[next]
			n.Coordinate = GeoCoordinate{
				Longitude: ParseFloat(coord.Array[0].Bulk),
				Latitude:  ParseFloat(coord.Array[1].Bulk),
			}
		}
		out[i] = n
	}
	return out, nil
}
