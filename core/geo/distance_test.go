package geo

import (
	"math"
	"testing"

	"github.com/kilianp07/sirene/core/model"
)

func TestDistance_Identity(t *testing.T) {
	pts := []model.Coordinate{
		{Lat: 0, Lon: 0},
		{Lat: 48.8566, Lon: 2.3522},
		{Lat: -90, Lon: 0},
		{Lat: 12.34, Lon: -170.5},
	}
	for _, p := range pts {
		if d := Distance(p, p); d != 0 {
			t.Fatalf("distance(%v, %v) = %v, want 0", p, p, d)
		}
	}
}

func TestDistance_Symmetry(t *testing.T) {
	a := model.Coordinate{Lat: 48.8566, Lon: 2.3522}
	b := model.Coordinate{Lat: 45.764, Lon: 4.8357}
	if d1, d2 := Distance(a, b), Distance(b, a); math.Abs(d1-d2) > 1e-9 {
		t.Fatalf("asymmetric: %v vs %v", d1, d2)
	}
}

func TestDistance_KnownValues(t *testing.T) {
	// Paris to Lyon is roughly 392 km as the crow flies.
	paris := model.Coordinate{Lat: 48.8566, Lon: 2.3522}
	lyon := model.Coordinate{Lat: 45.764, Lon: 4.8357}
	d := Distance(paris, lyon)
	if d < 385 || d > 400 {
		t.Fatalf("paris-lyon: got %v km", d)
	}

	// one degree of longitude at the equator is ~111.19 km
	d = Distance(model.Coordinate{}, model.Coordinate{Lon: 1})
	if math.Abs(d-111.19) > 0.1 {
		t.Fatalf("equator degree: got %v km", d)
	}
}

func TestDistance_Antipodal(t *testing.T) {
	d := Distance(model.Coordinate{Lat: 0, Lon: 0}, model.Coordinate{Lat: 0, Lon: 180})
	// half the Earth's circumference at radius 6371 km
	want := math.Pi * 6371.0
	if math.Abs(d-want) > 0.5 {
		t.Fatalf("antipodal: got %v want %v", d, want)
	}
}
