package webd

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/motionlog/motiond/types/fix"
)

func TestPingPong(t *testing.T) {
	w := httptest.NewRecorder()
	pingPong(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
	if w.Body.String() != "pong" {
		t.Errorf("body = %q", w.Body.String())
	}
}

func TestHandleLastKnown(t *testing.T) {
	d := newTestWebDaemon(t)

	// Populate a short ride, then ask for the mover's last fix.
	req := httptest.NewRequest(http.MethodPost, "/populate", carRideNDJSON(t, "foxtrot", 6))
	d.handlePopulate(httptest.NewRecorder(), req)

	w := httptest.NewRecorder()
	d.handleLastKnown(w, httptest.NewRequest(http.MethodGet, "/last?trajectory=foxtrot", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	out := []*fix.Fix{}
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 {
		t.Fatalf("got %d fixes, want 1", len(out))
	}
	if _, ok := out[0].Properties["Mode"]; !ok {
		t.Error("last known fix missing Mode")
	}
}

func TestTokenAuthenticationMiddleware(t *testing.T) {
	d := newTestWebDaemon(t)
	d.Config.Token = "s3cret"

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := d.tokenAuthenticationMiddleware(ok)

	cases := []struct {
		name   string
		target string
		header string
		want   int
	}{
		{"no token", "/populate", "", http.StatusForbidden},
		{"wrong token", "/populate", "nope", http.StatusForbidden},
		{"header token", "/populate", "s3cret", http.StatusOK},
		{"query token", "/populate?api_token=s3cret", "", http.StatusOK},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, c.target, nil)
			if c.header != "" {
				req.Header.Set("Authorization", c.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			if w.Code != c.want {
				t.Errorf("status = %d, want %d", w.Code, c.want)
			}
		})
	}

	// An empty configured token allows everything.
	d.Config.Token = ""
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/populate", nil))
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 with auth disabled", w.Code)
	}
}

func TestPermissiveCorsMiddleware(t *testing.T) {
	handler := permissiveCorsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	}))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/last", nil))
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("allow-origin = %q", got)
	}
}
