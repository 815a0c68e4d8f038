package fix

import (
	"fmt"
	"math"
	"time"

	"github.com/motionlog/motiond/common"
	"github.com/motionlog/motiond/conceptual"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// Fix is one GPS observation for a trajectory.
// It's an alias of geojson.Feature, with definite point geometry and a time property.
// A geojson.Feature has no concept of time, but a Fix is as much a point
// in time as it is a point in space; motiond prefers the UnixTime property
// (1-second granularity) and falls back to RFC3339 Time.
// Speeds ride in the Speed property, in km/h.
type Fix geojson.Feature

// NewFix creates and initializes a GeoJSON feature given the required attributes.
func NewFix(geometry orb.Geometry) *Fix {
	return &Fix{
		Type:       "Feature",
		Geometry:   geometry,
		Properties: make(map[string]interface{}),
	}
}

// MarshalJSON implements the json.Marshaler interface.
func (f Fix) MarshalJSON() ([]byte, error) {
	ff := geojson.Feature(f)
	return ff.MarshalJSON()
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (f *Fix) UnmarshalJSON(data []byte) error {
	ff, err := geojson.UnmarshalFeature(data)
	if err != nil {
		return err
	}
	*f = *(*Fix)(ff)
	return nil
}

// Copy returns a shallow copy of the fix with cloned properties.
func (f *Fix) Copy() *Fix {
	cp := &Fix{}
	*cp = *f
	cp.Properties = f.Properties.Clone()
	return cp
}

// IsEmpty is useful for dealing with zero-value fixes.
func (f *Fix) IsEmpty() bool {
	return f == nil || f.Geometry == nil ||
		f.Properties == nil ||
		len(f.Properties) == 0
}

// TrajectoryID returns the trajectory (user/device stream) the fix belongs to.
func (f *Fix) TrajectoryID() conceptual.TrajectoryID {
	return conceptual.TrajectoryID(f.Properties.MustString("Trajectory", ""))
}

// Time returns the fix time, preferring UnixTime over RFC3339 Time.
func (f *Fix) Time() (time.Time, error) {
	unix, ok := f.Properties["UnixTime"]
	if ok {
		if v, ok := unix.(int64); ok {
			return time.Unix(v, 0), nil
		} else if v, ok := unix.(float64); ok {
			return time.Unix(int64(v), 0), nil
		}
	}
	rfc3339, ok := f.Properties["Time"]
	if !ok {
		return time.Time{}, fmt.Errorf("missing Time property")
	}
	if v, ok := rfc3339.(time.Time); ok {
		return v, nil
	}
	ts, ok := rfc3339.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("property Time is not a string")
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return time.Time{}, err
	}
	if t.IsZero() {
		return time.Time{}, fmt.Errorf("zero time")
	}
	return t, nil
}

// MustTime gets the time or panics.
func (f *Fix) MustTime() time.Time {
	t, err := f.Time()
	if err != nil {
		panic(err)
	}
	return t
}

// Point returns the coordinates of the fix.
func (f *Fix) Point() orb.Point {
	return f.Geometry.Bound().Center()
}

// SpeedKmh returns the reported speed in km/h, or -1 when absent or not finite.
// Callers deriving speed from consecutive fixes should set the property first.
func (f *Fix) SpeedKmh() float64 {
	v, ok := f.Properties["Speed"]
	if !ok {
		return -1
	}
	speed, ok := v.(float64)
	if !ok || math.IsNaN(speed) || math.IsInf(speed, 0) {
		return -1
	}
	return math.Max(0, speed)
}

// SetSpeedKmh sets the reported speed property.
func (f *Fix) SetSpeedKmh(v float64) {
	f.Properties["Speed"] = v
}

// GeocodeRaw returns the raw reverse-geocoder payload attached to the fix,
// if any. The rgeo package normalizes it into tags.
func (f *Fix) GeocodeRaw() (string, bool) {
	v, ok := f.Properties["Geocode"]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

// TimeOffset returns the time offset between two fixes, assuming a happens before b.
func TimeOffset(a, b *Fix) time.Duration {
	if a.IsEmpty() || b.IsEmpty() {
		return time.Second
	}
	return b.MustTime().Sub(a.MustTime())
}

// Sanitize normalizes and streamlines a fix.
// It zeroes the feature ID and drops JSON-null properties; not all
// clients report the same properties and empty ones only cost space.
func Sanitize(f Fix) Fix {
	f.ID = 0
	for k, v := range f.Properties {
		if v == nil {
			delete(f.Properties, k)
		}
	}
	// The bounding box of a point is useless.
	if f.BBox != nil {
		f.BBox = nil
	}
	return f
}

func (f *Fix) IsValid() bool {
	return f.Validate() == nil
}

// Validate checks the fix for basic validity, returning the first error.
func (f *Fix) Validate() error {
	if f.Type != "Feature" {
		return fmt.Errorf("not a feature")
	}

	if f.Geometry == nil {
		return fmt.Errorf("nil geometry")
	}
	pt, ok := f.Geometry.(orb.Point)
	if !ok {
		return fmt.Errorf("not a point")
	}

	if !common.IsFiniteCoordinate(pt[0], pt[1]) {
		return fmt.Errorf("invalid coordinate: lng=%.14f lat=%.14f", pt[0], pt[1])
	}

	if f.Properties == nil {
		return fmt.Errorf("nil properties")
	}
	if len(f.Properties) == 0 {
		return fmt.Errorf("empty properties")
	}

	if f.Properties["Trajectory"] == nil {
		return fmt.Errorf("nil trajectory")
	}
	if n, ok := f.Properties["Trajectory"].(string); !ok {
		return fmt.Errorf("trajectory not a string")
	} else if n == "" {
		return fmt.Errorf("empty trajectory")
	}

	if t, err := f.Time(); err != nil {
		return fmt.Errorf("invalid time: %v", err)
	} else if t.IsZero() {
		return fmt.Errorf("zero time")
	}

	if v, ok := f.Properties["Speed"]; ok {
		s, ok := v.(float64)
		if !ok {
			return fmt.Errorf("speed not a float64")
		}
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return fmt.Errorf("speed not finite")
		}
	}
	return nil
}

// SlicesSortFunc implements slices.SortFunc for Fix slices.
// Sorting is by trajectory, then chronologically at 1-second granularity.
// > cmp(a, b) should return a negative number when a < b,
// > a positive number when a > b, and zero when a == b
func SlicesSortFunc(a, b Fix) int {
	at := a.TrajectoryID()
	bt := b.TrajectoryID()
	if at < bt {
		return -1
	} else if at > bt {
		return 1
	}

	ti, err := a.Time()
	if err != nil {
		return 0
	}
	tj, err := b.Time()
	if err != nil {
		return 0
	}
	if ti.Unix() < tj.Unix() {
		return -1
	}
	if ti.Unix() > tj.Unix() {
		return 1
	}
	return 0
}

func (f *Fix) StringPretty() string {
	pt := f.Point()
	t, _ := f.Time()
	return fmt.Sprintf("%s %v [%v,%v] %.1fkm/h",
		f.TrajectoryID(),
		t.In(time.Local).Format("2006-01-02 15:04:05"),
		common.DecimalToFixed(pt.Lat(), 5),
		common.DecimalToFixed(pt.Lon(), 5),
		f.SpeedKmh(),
	)
}
