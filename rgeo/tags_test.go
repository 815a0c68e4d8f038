package rgeo

import (
	"testing"
	"time"

	"github.com/motionlog/motiond/types/fix"
	"github.com/paulmach/orb"
)

func TestNormalize(t *testing.T) {
	station := Normalize(`{"railway":"station","name":"Bern"}`)
	if !station.AtTrainStation || station.StationName != "Bern" {
		t.Errorf("station = %+v", station)
	}

	classed := Normalize(`{"class":"railway","type":"halt","name":"Wankdorf"}`)
	if !classed.AtTrainStation || classed.StationName != "Wankdorf" {
		t.Errorf("classed station = %+v", classed)
	}

	highway := Normalize(`{"highway":"motorway","name":"A1"}`)
	if !highway.OnHighway || highway.AtTrainStation {
		t.Errorf("highway = %+v", highway)
	}

	airport := Normalize(`{"aeroway":"aerodrome","name":"Zürich Airport"}`)
	if !airport.AtAirport || airport.AirportName != "Zürich Airport" {
		t.Errorf("airport = %+v", airport)
	}

	if got := Normalize(`{"building":"yes"}`); !got.Empty() {
		t.Errorf("building = %+v", got)
	}
	if got := Normalize(`not json at all`); !got.Empty() {
		t.Errorf("garbage = %+v", got)
	}
	if got := Normalize(""); !got.Empty() {
		t.Errorf("empty = %+v", got)
	}
}

func TestResolverCachesCell(t *testing.T) {
	r, err := NewResolver(nil)
	if err != nil {
		t.Fatal(err)
	}

	tagged := fix.NewFix(orb.Point{7.4391, 46.9489})
	tagged.Properties["Trajectory"] = "test"
	tagged.Properties["UnixTime"] = time.Now().Unix()
	tagged.Properties["Geocode"] = `{"railway":"station","name":"Bern"}`

	got := r.Tags(tagged)
	if !got.AtTrainStation || got.StationName != "Bern" {
		t.Fatalf("tagged = %+v", got)
	}

	// A bare fix a few meters away inherits the cell's tags.
	bare := fix.NewFix(orb.Point{7.43912, 46.94891})
	bare.Properties["Trajectory"] = "test"
	bare.Properties["UnixTime"] = time.Now().Unix()

	got = r.Tags(bare)
	if !got.AtTrainStation || got.StationName != "Bern" {
		t.Errorf("cached = %+v", got)
	}

	// Far away, nothing.
	far := fix.NewFix(orb.Point{8.54, 47.38})
	far.Properties["Trajectory"] = "test"
	far.Properties["UnixTime"] = time.Now().Unix()
	if got := r.Tags(far); !got.Empty() {
		t.Errorf("far = %+v", got)
	}
}
