package types

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/motionlog/motiond/types/fix"
	"github.com/paulmach/orb"
)

func testFix(id string, unix int64) *fix.Fix {
	f := fix.NewFix(orb.Point{7.44, 46.95})
	f.Properties["Trajectory"] = id
	f.Properties["UnixTime"] = unix
	f.Properties["Speed"] = 12.3
	return f
}

func TestDecodeFixesShotgun_FeatureCollection(t *testing.T) {
	body := []byte(`{"type":"FeatureCollection","features":[
		{"type":"Feature","geometry":{"type":"Point","coordinates":[7.44,46.95]},"properties":{"Trajectory":"rye","UnixTime":1724500000}},
		{"type":"Feature","geometry":{"type":"Point","coordinates":[7.45,46.96]},"properties":{"Trajectory":"rye","UnixTime":1724500010}}
	]}`)
	out, err := DecodeFixesShotgun(body)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d fixes, want 2", len(out))
	}
	if out[0].TrajectoryID() != "rye" {
		t.Errorf("trajectory = %q", out[0].TrajectoryID())
	}
}

func TestDecodeFixesShotgun_Array(t *testing.T) {
	a, _ := json.Marshal(testFix("rye", 1724500000))
	b, _ := json.Marshal(testFix("rye", 1724500010))
	body := []byte("[" + string(a) + "," + string(b) + "]")
	out, err := DecodeFixesShotgun(body)
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("got %d fixes, want 2", len(out))
	}
}

func TestDecodeFixesShotgun_NDJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	for i := int64(0); i < 3; i++ {
		if err := enc.Encode(testFix("ia", 1724500000+i)); err != nil {
			t.Fatal(err)
		}
	}
	out, err := DecodeFixesShotgun(buf.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 3 {
		t.Fatalf("got %d fixes, want 3", len(out))
	}
	if out[2].TrajectoryID() != "ia" {
		t.Errorf("trajectory = %q", out[2].TrajectoryID())
	}
}

func TestDecodeFixesShotgun_Junk(t *testing.T) {
	if _, err := DecodeFixesShotgun([]byte("this is not json")); err == nil {
		t.Error("expected error for junk input")
	}
	if _, err := DecodeFixesShotgun([]byte("[]")); err == nil {
		t.Error("expected error for empty set")
	}
}
