package mode

import "testing"

func TestFromString(t *testing.T) {
	cases := []struct {
		in   string
		want Mode
	}{
		{"walking", Walking},
		{"Walk", Walking},
		{"on_foot", Walking},
		{"stationary", Stationary},
		{"still", Stationary},
		{"cycling", Cycling},
		{"Bike", Cycling},
		{"car", Car},
		{"driving", Car},
		{"train", Train},
		{"rail", Train},
		{"airplane", Airplane},
		{"flying", Airplane},
		{"", Unknown},
		{"submarine", Unknown},
	}
	for _, c := range cases {
		if got := FromString(c.in); got != c.want {
			t.Errorf("FromString(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, m := range []Mode{Stationary, Walking, Cycling, Car, Train, Airplane} {
		if got := FromString(m.String()); got != m {
			t.Errorf("FromString(%q) = %v, want %v", m.String(), got, m)
		}
	}
}

func TestImpossibleTransition(t *testing.T) {
	cases := []struct {
		a, b Mode
		want bool
	}{
		{Walking, Airplane, true},
		{Cycling, Train, true},
		{Train, Cycling, true},
		{Walking, Car, false},
		{Car, Train, false},
		{Train, Stationary, false},
		{Unknown, Airplane, false},
	}
	for _, c := range cases {
		if got := ImpossibleTransition(c.a, c.b); got != c.want {
			t.Errorf("ImpossibleTransition(%v, %v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestReasonCodeDetail(t *testing.T) {
	r := ReasonJourneyArrival.Detail("arrived at %s", "Basel SBB")
	if r.Code() != ReasonJourneyArrival {
		t.Errorf("Code() = %q", r.Code())
	}
	if r.Label() != "Journey ended on arrival" {
		t.Errorf("Label() = %q", r.Label())
	}
}
