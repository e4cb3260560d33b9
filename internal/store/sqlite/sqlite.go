// Package sqlite is a modernc.org/sqlite-backed store satisfying
// tradedb.OfferSource plus the system/station/item catalog loads a full
// search run needs. Migrations are tracked in a schema_version table;
// every statement is CREATE TABLE IF NOT EXISTS so re-running against an
// existing file is a no-op.
package sqlite

import (
	"database/sql"
	"fmt"

	"golang.org/x/sync/singleflight"

	"wayfarer/internal/tradedb"

	_ "modernc.org/sqlite"
)

// Store wraps a SQLite connection holding the systems/stations/items/
// station_items tables a search run loads from. group coalesces concurrent
// identical catalog loads: a search launched from several goroutines
// against one Store issues one query, not N.
type Store struct {
	db    *sql.DB
	group singleflight.Group
}

// Open opens (or creates) the database at path and runs migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping %s: %w", path, err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: migrate %s: %w", path, err)
	}
	return s, nil
}

// Close closes the underlying connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	var version int
	s.db.QueryRow(`SELECT version FROM schema_version ORDER BY version DESC LIMIT 1`).Scan(&version)

	if version < 1 {
		_, err := s.db.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS systems (
				system_id INTEGER PRIMARY KEY,
				name      TEXT NOT NULL,
				x         REAL NOT NULL,
				y         REAL NOT NULL,
				z         REAL NOT NULL
			);

			CREATE TABLE IF NOT EXISTS stations (
				station_id    INTEGER PRIMARY KEY,
				system_id     INTEGER NOT NULL REFERENCES systems(system_id),
				name          TEXT NOT NULL,
				ls_from_star  REAL NOT NULL DEFAULT 0,
				black_market  TEXT NOT NULL DEFAULT '?',
				max_pad_size  TEXT NOT NULL DEFAULT '?',
				planetary     TEXT NOT NULL DEFAULT '?',
				shipyard      TEXT NOT NULL DEFAULT '?',
				outfitting    TEXT NOT NULL DEFAULT '?',
				refuel        TEXT NOT NULL DEFAULT '?',
				data_age_sec  INTEGER,
				UNIQUE(system_id, name)
			);

			CREATE TABLE IF NOT EXISTS items (
				item_id  INTEGER PRIMARY KEY,
				name     TEXT NOT NULL,
				sort_key INTEGER NOT NULL DEFAULT 0
			);

			CREATE TABLE IF NOT EXISTS station_items (
				station_id  INTEGER NOT NULL REFERENCES stations(station_id),
				item_id     INTEGER NOT NULL REFERENCES items(item_id),
				modified    TEXT NOT NULL,
				dmd_price   REAL NOT NULL DEFAULT 0,
				dmd_units   INTEGER NOT NULL DEFAULT 0,
				dmd_level   INTEGER NOT NULL DEFAULT 0,
				sup_price   REAL NOT NULL DEFAULT 0,
				sup_units   INTEGER NOT NULL DEFAULT 0,
				sup_level   INTEGER NOT NULL DEFAULT 0,
				PRIMARY KEY (station_id, item_id)
			);

			INSERT INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return err
		}
	}
	return nil
}

// Each implements tradedb.OfferSource, streaming every station_items row as
// an OfferRow. Modified is kept as the raw TEXT column so NewOfferIndex's
// timestamp validation sees exactly what was stored.
func (s *Store) Each(yield func(tradedb.OfferRow) error) error {
	rows, err := s.db.Query(`
		SELECT station_id, item_id, modified, dmd_price, dmd_units, dmd_level,
		       sup_price, sup_units, sup_level
		FROM station_items
	`)
	if err != nil {
		return fmt.Errorf("sqlite: query station_items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r tradedb.OfferRow
		var station, item int64
		if err := rows.Scan(&station, &item, &r.Modified,
			&r.DemandPrice, &r.DemandUnits, &r.DemandLevel,
			&r.SupplyPrice, &r.SupplyUnits, &r.SupplyLevel); err != nil {
			return fmt.Errorf("sqlite: scan station_items row: %w", err)
		}
		r.StationID = tradedb.StationID(station)
		r.ItemID = tradedb.ItemID(item)
		if err := yield(r); err != nil {
			return err
		}
	}
	return rows.Err()
}

// LoadSystems returns every system, keyed by ID, with its owned stations
// populated.
func (s *Store) LoadSystems() (map[tradedb.SystemID]*tradedb.System, error) {
	v, err, _ := s.group.Do("LoadSystems", func() (any, error) { return s.loadSystems() })
	if err != nil {
		return nil, err
	}
	return v.(map[tradedb.SystemID]*tradedb.System), nil
}

func (s *Store) loadSystems() (map[tradedb.SystemID]*tradedb.System, error) {
	rows, err := s.db.Query(`SELECT system_id, name, x, y, z FROM systems`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query systems: %w", err)
	}
	defer rows.Close()

	out := make(map[tradedb.SystemID]*tradedb.System)
	for rows.Next() {
		var id int64
		sys := &tradedb.System{}
		if err := rows.Scan(&id, &sys.Name, &sys.X, &sys.Y, &sys.Z); err != nil {
			return nil, fmt.Errorf("sqlite: scan system row: %w", err)
		}
		sys.ID = tradedb.SystemID(id)
		out[sys.ID] = sys
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stRows, err := s.db.Query(`SELECT station_id, system_id FROM stations ORDER BY station_id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query station system_ids: %w", err)
	}
	defer stRows.Close()
	for stRows.Next() {
		var stID, sysID int64
		if err := stRows.Scan(&stID, &sysID); err != nil {
			return nil, fmt.Errorf("sqlite: scan station system_id row: %w", err)
		}
		if sys, ok := out[tradedb.SystemID(sysID)]; ok {
			sys.Stations = append(sys.Stations, tradedb.StationID(stID))
		}
	}
	return out, stRows.Err()
}

// LoadStations returns every station, keyed by ID.
func (s *Store) LoadStations() (map[tradedb.StationID]*tradedb.Station, error) {
	v, err, _ := s.group.Do("LoadStations", func() (any, error) { return s.loadStations() })
	if err != nil {
		return nil, err
	}
	return v.(map[tradedb.StationID]*tradedb.Station), nil
}

func (s *Store) loadStations() (map[tradedb.StationID]*tradedb.Station, error) {
	rows, err := s.db.Query(`
		SELECT station_id, system_id, name, ls_from_star, black_market,
		       max_pad_size, planetary, shipyard, outfitting, refuel, data_age_sec
		FROM stations
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query stations: %w", err)
	}
	defer rows.Close()

	out := make(map[tradedb.StationID]*tradedb.Station)
	for rows.Next() {
		var id, sysID int64
		var dataAge sql.NullInt64
		st := &tradedb.Station{}
		if err := rows.Scan(&id, &sysID, &st.Name, &st.LsFromStar, &st.BlackMarket,
			&st.MaxPadSize, &st.Planetary, &st.Shipyard, &st.Outfitting, &st.Refuel, &dataAge); err != nil {
			return nil, fmt.Errorf("sqlite: scan station row: %w", err)
		}
		st.ID = tradedb.StationID(id)
		st.SystemID = tradedb.SystemID(sysID)
		if dataAge.Valid {
			st.DataAgeSec = dataAge.Int64
			st.HasDataAge = true
		}
		out[st.ID] = st
	}
	return out, rows.Err()
}

// LoadItemCatalog returns every known item ID, for tradedb.Config.Catalog's
// NoItemsToLoad check.
func (s *Store) LoadItemCatalog() ([]tradedb.ItemID, error) {
	v, err, _ := s.group.Do("LoadItemCatalog", func() (any, error) { return s.loadItemCatalog() })
	if err != nil {
		return nil, err
	}
	return v.([]tradedb.ItemID), nil
}

func (s *Store) loadItemCatalog() ([]tradedb.ItemID, error) {
	rows, err := s.db.Query(`SELECT item_id FROM items`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: query items: %w", err)
	}
	defer rows.Close()

	var out []tradedb.ItemID
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("sqlite: scan item row: %w", err)
		}
		out = append(out, tradedb.ItemID(id))
	}
	return out, rows.Err()
}
