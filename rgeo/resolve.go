package rgeo

import (
	"github.com/motionlog/motiond/geo/detect"
	"github.com/motionlog/motiond/params"
	"github.com/motionlog/motiond/types/fix"
)

// Resolver is the one-stop tag source for the classification pipeline.
type Resolver struct {
	cache *TagCache
}

func NewResolver(cfg *params.RGeoConfig) (*Resolver, error) {
	cache, err := NewTagCache(cfg)
	if err != nil {
		return nil, err
	}
	return &Resolver{cache: cache}, nil
}

// Tags resolves the geographic tags for a fix: a carried geocode
// payload wins and refreshes the cell cache, otherwise the cache
// answers for the fix's cell. No payload and no cached cell means no
// tags, which the engine treats as "geocoder silent".
func (r *Resolver) Tags(f *fix.Fix) detect.GeoTags {
	if raw, ok := f.GeocodeRaw(); ok {
		tags := Normalize(raw)
		r.cache.Put(f.Point(), tags)
		return tags
	}
	if tags, ok := r.cache.Get(f.Point()); ok {
		return tags
	}
	return detect.GeoTags{}
}
