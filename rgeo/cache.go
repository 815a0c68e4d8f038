package rgeo

import (
	"github.com/golang/geo/s2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/motionlog/motiond/geo/detect"
	"github.com/motionlog/motiond/params"
	"github.com/paulmach/orb"
)

// TagCache memoizes tags per s2 cell. Geocode payloads arrive on a
// fraction of fixes; the cache lets the rest of the fixes in the same
// cell inherit the tags.
type TagCache struct {
	level int
	lru   *lru.Cache[s2.CellID, detect.GeoTags]
}

func NewTagCache(cfg *params.RGeoConfig) (*TagCache, error) {
	if cfg == nil {
		cfg = params.DefaultRGeoConfig
	}
	c, err := lru.New[s2.CellID, detect.GeoTags](cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	return &TagCache{level: cfg.CellLevel, lru: c}, nil
}

func (c *TagCache) cell(pt orb.Point) s2.CellID {
	return s2.CellIDFromLatLng(s2.LatLngFromDegrees(pt.Lat(), pt.Lon())).Parent(c.level)
}

func (c *TagCache) Get(pt orb.Point) (detect.GeoTags, bool) {
	return c.lru.Get(c.cell(pt))
}

func (c *TagCache) Put(pt orb.Point, tags detect.GeoTags) {
	c.lru.Add(c.cell(pt), tags)
}
