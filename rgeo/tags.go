// Package rgeo turns raw reverse-geocode payloads into the normalized
// geographic tags the detection rules key on, with an s2-cell cache so
// a station sighting keeps tagging nearby fixes, and an optional
// offline geocoder for region naming.
package rgeo

import (
	"github.com/motionlog/motiond/geo/detect"
	"github.com/tidwall/gjson"
)

// The geocoder vocabulary is OSM-flavored but clients are sloppy, so
// matching is deliberately loose: either flat tags ("railway":
// "station") or class/type pairs ("class": "railway", "type":
// "station") are accepted.
var (
	railwayValues = map[string]bool{
		"station": true, "halt": true, "stop": true,
		"platform": true, "railway_station": true,
	}
	highwayValues = map[string]bool{
		"motorway": true, "motorway_link": true,
		"trunk": true, "trunk_link": true, "highway": true,
	}
	aerowayValues = map[string]bool{
		"aerodrome": true, "airport": true, "terminal": true, "runway": true,
	}
)

// Normalize parses a raw geocode payload into tags.
// Garbage in, zero tags out; this is never an error path.
func Normalize(raw string) detect.GeoTags {
	tags := detect.GeoTags{}
	if raw == "" || !gjson.Valid(raw) {
		return tags
	}
	g := gjson.Parse(raw)

	railway := g.Get("railway").String()
	highway := g.Get("highway").String()
	aeroway := g.Get("aeroway").String()
	if class, typ := g.Get("class").String(), g.Get("type").String(); class != "" {
		switch class {
		case "railway":
			railway = typ
		case "highway":
			highway = typ
		case "aeroway", "airport":
			aeroway = typ
		}
	}

	name := g.Get("name").String()

	if railwayValues[railway] {
		tags.AtTrainStation = true
		tags.StationName = name
	}
	if highwayValues[highway] {
		tags.OnHighway = true
	}
	if aerowayValues[aeroway] {
		tags.AtAirport = true
		tags.AirportName = name
	}
	return tags
}
