package sqlite

import (
	"errors"
	"testing"
	"time"

	"wayfarer/internal/tradedb"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:): %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seed(t *testing.T, s *Store) {
	t.Helper()
	stmts := []string{
		`INSERT INTO systems (system_id, name, x, y, z) VALUES (1, 'Sol', 0, 0, 0)`,
		`INSERT INTO systems (system_id, name, x, y, z) VALUES (2, 'Alpha', 10, 0, 0)`,
		`INSERT INTO stations (station_id, system_id, name, max_pad_size) VALUES (100, 1, 'Sol Hub', 'L')`,
		`INSERT INTO stations (station_id, system_id, name, max_pad_size) VALUES (200, 2, 'Alpha Dock', 'M')`,
		`INSERT INTO items (item_id, name) VALUES (10, 'Widgets')`,
		`INSERT INTO station_items (station_id, item_id, modified, sup_price, sup_units) VALUES (100, 10, '1700000000', 5, 50)`,
		`INSERT INTO station_items (station_id, item_id, modified, dmd_price, dmd_units) VALUES (200, 10, '1700000000', 9, 40)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			t.Fatalf("seed exec %q: %v", stmt, err)
		}
	}
}

func TestStore_EachYieldsOfferRows(t *testing.T) {
	s := openTestStore(t)
	seed(t, s)

	var rows []tradedb.OfferRow
	if err := s.Each(func(r tradedb.OfferRow) error {
		rows = append(rows, r)
		return nil
	}); err != nil {
		t.Fatalf("Each: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
}

func TestStore_LoadSystemsOwnsStations(t *testing.T) {
	s := openTestStore(t)
	seed(t, s)

	systems, err := s.LoadSystems()
	if err != nil {
		t.Fatalf("LoadSystems: %v", err)
	}
	sol := systems[tradedb.SystemID(1)]
	if sol == nil {
		t.Fatal("system 1 (Sol) missing")
	}
	if len(sol.Stations) != 1 || sol.Stations[0] != tradedb.StationID(100) {
		t.Errorf("Sol.Stations = %v, want [100]", sol.Stations)
	}
}

func TestStore_LoadStations(t *testing.T) {
	s := openTestStore(t)
	seed(t, s)

	stations, err := s.LoadStations()
	if err != nil {
		t.Fatalf("LoadStations: %v", err)
	}
	hub := stations[tradedb.StationID(100)]
	if hub == nil {
		t.Fatal("station 100 missing")
	}
	if hub.MaxPadSize != tradedb.PadLarge {
		t.Errorf("MaxPadSize = %q, want L", hub.MaxPadSize)
	}
	if hub.SystemID != tradedb.SystemID(1) {
		t.Errorf("SystemID = %d, want 1", hub.SystemID)
	}
}

func TestStore_BadTimestampPropagates(t *testing.T) {
	s := openTestStore(t)
	seed(t, s)
	if _, err := s.db.Exec(`UPDATE station_items SET modified = 'not-a-number' WHERE station_id = 100 AND item_id = 10`); err != nil {
		t.Fatalf("seed bad row: %v", err)
	}

	_, err := tradedb.NewOfferIndex(s, time.Now(), tradedb.Config{})
	if err == nil {
		t.Fatal("expected NewOfferIndex to fail on unparsable modified column")
	}
	var bad *tradedb.BadTimestampError
	if !errors.As(err, &bad) {
		t.Errorf("err = %v, want *tradedb.BadTimestampError", err)
	}
}
