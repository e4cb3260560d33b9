package graph

import (
	"testing"

	"wayfarer/internal/tradedb"
)

func TestDestinations_ReachableWithinRange(t *testing.T) {
	systems := map[tradedb.SystemID]*tradedb.System{
		1: {ID: 1, X: 0, Stations: []tradedb.StationID{10}},
		2: {ID: 2, X: 5, Stations: []tradedb.StationID{20}},
		3: {ID: 3, X: 100, Stations: []tradedb.StationID{30}},
	}
	stations := map[tradedb.StationID]*tradedb.Station{
		10: {ID: 10, SystemID: 1},
		20: {ID: 20, SystemID: 2},
		30: {ID: 30, SystemID: 3},
	}
	g := NewGraph(systems, stations)

	dests, err := g.Destinations(10, 2, 10, nil, "", 0, false, "")
	if err != nil {
		t.Fatalf("Destinations: %v", err)
	}
	if len(dests) != 1 || dests[0].Station != 20 {
		t.Fatalf("expected only station 20 within 10ly, got %+v", dests)
	}
}

func TestDestinations_ExcludesSource(t *testing.T) {
	systems := map[tradedb.SystemID]*tradedb.System{
		1: {ID: 1, X: 0, Stations: []tradedb.StationID{10}},
	}
	stations := map[tradedb.StationID]*tradedb.Station{
		10: {ID: 10, SystemID: 1},
	}
	g := NewGraph(systems, stations)
	dests, err := g.Destinations(10, 3, 50, nil, "", 0, false, "")
	if err != nil {
		t.Fatalf("Destinations: %v", err)
	}
	if len(dests) != 0 {
		t.Fatalf("expected no destinations for a single-station system, got %+v", dests)
	}
}

func TestPadSizeOK(t *testing.T) {
	cases := []struct {
		stationPad, required string
		want                 bool
	}{
		{tradedb.PadLarge, tradedb.PadSmall, true},
		{tradedb.PadSmall, tradedb.PadLarge, false},
		{tradedb.PadMedium, "", true},
		{tradedb.PadMedium, tradedb.PadMedium, true},
	}
	for _, c := range cases {
		if got := padSizeOK(c.stationPad, c.required); got != c.want {
			t.Fatalf("padSizeOK(%q,%q) = %v, want %v", c.stationPad, c.required, got, c.want)
		}
	}
}
