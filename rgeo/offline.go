package rgeo

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	srgeo "github.com/sams96/rgeo"
	"github.com/twpayne/go-geom"
)

// The offline geocoder names regions (country, province, city) for
// fixes whose clients sent no geocode payload. It cannot tag stations
// or highways; those only come from client payloads. Loading the
// datasets costs hundreds of megabytes, so it is strictly opt-in.

type OfflineGeocoder interface {
	GetLocation(pt orb.Point) (srgeo.Location, error)
}

// rR wraps srgeo.Rgeo to implement OfflineGeocoder.
type rR srgeo.Rgeo

var geocoder OfflineGeocoder

func (rr *rR) GetLocation(pt orb.Point) (srgeo.Location, error) {
	return (*srgeo.Rgeo)(rr).ReverseGeocode(geom.Coord{pt.Lon(), pt.Lat()})
}

var datasets = []func() []byte{
	srgeo.Cities10,
	srgeo.Countries10,
	srgeo.Provinces10,
}

var ErrAlreadyInitialized = fmt.Errorf("rgeo already initialized")

// Init loads the offline datasets. Call once, early, or not at all.
func Init() error {
	if geocoder != nil {
		return ErrAlreadyInitialized
	}
	r1, err := srgeo.New(datasets...)
	if err != nil {
		return err
	}
	geocoder = (*rR)(r1)
	return nil
}

// R returns the offline geocoder, or false when Init never ran.
func R() (OfflineGeocoder, bool) {
	if geocoder == nil {
		return nil, false
	}
	return geocoder, true
}

// RegionName names the region around a point, most specific part
// first, eg. "Missoula, Montana, United States". False when the
// geocoder is not loaded or has no answer for the point.
func RegionName(pt orb.Point) (string, bool) {
	g, ok := R()
	if !ok {
		return "", false
	}
	loc, err := g.GetLocation(pt)
	if err != nil {
		return "", false
	}
	name := formatLocation(loc)
	return name, name != ""
}

func formatLocation(loc srgeo.Location) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{loc.City, loc.Province, loc.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
