package webd

import (
	"bufio"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/motionlog/motiond/fixdb/cache"
	"github.com/motionlog/motiond/state"
	"github.com/motionlog/motiond/types/mode"
)

func TestWebDaemon_populate(t *testing.T) {
	d := newTestWebDaemon(t)

	req := httptest.NewRequest(http.MethodPost, "http://motionlog.org/populate", carRideNDJSON(t, "rye", 12))
	w := httptest.NewRecorder()
	d.handlePopulate(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != "[]" {
		t.Errorf("body = %q, want legacy empty array", string(body))
	}

	// The push landed in the last-push cache, unclassified, as sent.
	item := cache.LastPushTTLCache.Get("rye")
	if item == nil {
		t.Fatal("no last push cached")
	}
	if got := len(item.Value()); got != 12 {
		t.Errorf("cached push = %d fixes, want 12", got)
	}

	// The pipeline stored and classified every fix.
	s, err := state.NewTrajectoryState("rye", d.Config.DataDir, true)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	last, err := s.ReadLastFix()
	if err != nil {
		t.Fatal(err)
	}
	if got := mode.FromAny(last.Properties["Mode"]); got != mode.Car {
		t.Errorf("last mode = %v (%v)", got, last.Properties["ModeReason"])
	}

	r, err := s.Flat.NamedGZReader("fixes.geojson.gz")
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	lines := 0
	sc := bufio.NewScanner(r.Reader())
	for sc.Scan() {
		lines++
	}
	if lines != 12 {
		t.Errorf("stored lines = %d, want 12", lines)
	}
}

func TestWebDaemon_populateMixedPush(t *testing.T) {
	d := newTestWebDaemon(t)

	// Two movers interleaved in one push; each gets its own pipeline.
	a := carRideNDJSON(t, "tango", 6)
	b := carRideNDJSON(t, "whiskey", 4)
	mixed := strings.NewReader(a.String() + b.String())

	req := httptest.NewRequest(http.MethodPost, "http://motionlog.org/populate", mixed)
	w := httptest.NewRecorder()
	d.handlePopulate(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Result().StatusCode)
	}

	for tid, want := range map[string]int{"tango": 6, "whiskey": 4} {
		item := cache.LastPushTTLCache.Get(tid)
		if item == nil {
			t.Fatalf("no last push cached for %s", tid)
		}
		if got := len(item.Value()); got != want {
			t.Errorf("%s cached push = %d fixes, want %d", tid, got, want)
		}
	}
}

func TestWebDaemon_populateBadBody(t *testing.T) {
	d := newTestWebDaemon(t)

	req := httptest.NewRequest(http.MethodPost, "http://motionlog.org/populate", strings.NewReader("not json at all"))
	w := httptest.NewRecorder()
	d.handlePopulate(w, req)

	if w.Result().StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", w.Result().StatusCode)
	}
}
