package model

import "testing"

func TestParseUnitType(t *testing.T) {
	cases := map[string]UnitType{
		"ambulance": UnitAmbulance,
		"Police":    UnitPolice,
		" FIRE ":    UnitFire,
	}
	for in, want := range cases {
		got, err := ParseUnitType(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if got != want {
			t.Fatalf("parse %q: got %s want %s", in, got, want)
		}
	}
	if _, err := ParseUnitType("helicopter"); err == nil {
		t.Fatal("expected error for unknown type")
	}
	if _, err := ParseUnitType(""); err == nil {
		t.Fatal("expected error for empty type")
	}
}

func TestNormalizeStatus(t *testing.T) {
	if got := NormalizeStatus("BUSY"); got != UnitBusy {
		t.Fatalf("got %s", got)
	}
	if got := NormalizeStatus("available"); got != UnitAvailable {
		t.Fatalf("got %s", got)
	}
	// anything outside the known set is coerced to available
	for _, s := range []string{"", "en-route", "offline"} {
		if got := NormalizeStatus(s); got != UnitAvailable {
			t.Fatalf("status %q: got %s", s, got)
		}
	}
}

func TestCoordinateValidate(t *testing.T) {
	valid := []Coordinate{
		{0, 0},
		{48.8566, 2.3522},
		{-90, 180},
		{90, -180},
	}
	for _, c := range valid {
		if err := c.Validate(); err != nil {
			t.Fatalf("expected valid %v: %v", c, err)
		}
	}
	invalid := []Coordinate{
		{91, 0},
		{0, 181},
		{-90.0001, 0},
	}
	for _, c := range invalid {
		if err := c.Validate(); err == nil {
			t.Fatalf("expected invalid %v", c)
		}
	}
}

func TestStationCapacityFor(t *testing.T) {
	s := Station{ID: "s1", Capacity: map[UnitType]int{UnitAmbulance: 3}}
	if got := s.CapacityFor(UnitAmbulance); got != 3 {
		t.Fatalf("got %d", got)
	}
	if got := s.CapacityFor(UnitFire); got != 0 {
		t.Fatalf("missing entry should be zero, got %d", got)
	}
	if got := (Station{ID: "s2"}).CapacityFor(UnitPolice); got != 0 {
		t.Fatalf("nil map should be zero, got %d", got)
	}
}
