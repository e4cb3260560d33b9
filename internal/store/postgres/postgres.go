// Package postgres is a github.com/jackc/pgx/v5-backed store satisfying
// tradedb.OfferSource, for operators who run a shared Postgres instance
// instead of a local SQLite file. It mirrors internal/store/sqlite's
// logical schema.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"wayfarer/internal/tradedb"
)

// Store wraps a pgx connection pool over the same logical
// systems/stations/items/station_items schema internal/store/sqlite uses.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects to Postgres at dsn and verifies the connection. Schema
// migration is the operator's responsibility (pgx is used here purely as
// an OfferSource reader, not a migration tool); callers are expected to
// have applied the same systems/stations/items/station_items tables
// internal/store/sqlite creates.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() { s.pool.Close() }

// Each implements tradedb.OfferSource by streaming station_items rows.
func (s *Store) Each(yield func(tradedb.OfferRow) error) error {
	ctx := context.Background()
	rows, err := s.pool.Query(ctx, `
		SELECT station_id, item_id, modified, dmd_price, dmd_units, dmd_level,
		       sup_price, sup_units, sup_level
		FROM station_items
	`)
	if err != nil {
		return fmt.Errorf("postgres: query station_items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r tradedb.OfferRow
		var station, item int64
		if err := rows.Scan(&station, &item, &r.Modified,
			&r.DemandPrice, &r.DemandUnits, &r.DemandLevel,
			&r.SupplyPrice, &r.SupplyUnits, &r.SupplyLevel); err != nil {
			return fmt.Errorf("postgres: scan station_items row: %w", err)
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
func (s *Store) LoadSystems(ctx context.Context) (map[tradedb.SystemID]*tradedb.System, error) {
	rows, err := s.pool.Query(ctx, `SELECT system_id, name, x, y, z FROM systems`)
	if err != nil {
		return nil, fmt.Errorf("postgres: query systems: %w", err)
	}
	defer rows.Close()

	out := make(map[tradedb.SystemID]*tradedb.System)
	for rows.Next() {
		var id int64
		sys := &tradedb.System{}
		if err := rows.Scan(&id, &sys.Name, &sys.X, &sys.Y, &sys.Z); err != nil {
			return nil, fmt.Errorf("postgres: scan system row: %w", err)
		}
		sys.ID = tradedb.SystemID(id)
		out[sys.ID] = sys
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stRows, err := s.pool.Query(ctx, `SELECT station_id, system_id FROM stations ORDER BY station_id`)
	if err != nil {
		return nil, fmt.Errorf("postgres: query station system_ids: %w", err)
	}
	defer stRows.Close()
	for stRows.Next() {
		var stID, sysID int64
		if err := stRows.Scan(&stID, &sysID); err != nil {
			return nil, fmt.Errorf("postgres: scan station system_id row: %w", err)
		}
		if sys, ok := out[tradedb.SystemID(sysID)]; ok {
			sys.Stations = append(sys.Stations, tradedb.StationID(stID))
		}
	}
	return out, stRows.Err()
}

// LoadStations returns every station, keyed by ID.
func (s *Store) LoadStations(ctx context.Context) (map[tradedb.StationID]*tradedb.Station, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT station_id, system_id, name, ls_from_star, black_market,
		       max_pad_size, planetary, shipyard, outfitting, refuel, data_age_sec
		FROM stations
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: query stations: %w", err)
	}
	defer rows.Close()

	out := make(map[tradedb.StationID]*tradedb.Station)
	for rows.Next() {
		var id, sysID int64
		var dataAge *int64
		st := &tradedb.Station{}
		if err := rows.Scan(&id, &sysID, &st.Name, &st.LsFromStar, &st.BlackMarket,
			&st.MaxPadSize, &st.Planetary, &st.Shipyard, &st.Outfitting, &st.Refuel, &dataAge); err != nil {
			return nil, fmt.Errorf("postgres: scan station row: %w", err)
		}
		st.ID = tradedb.StationID(id)
		st.SystemID = tradedb.SystemID(sysID)
		if dataAge != nil {
			st.DataAgeSec = *dataAge
			st.HasDataAge = true
		}
		out[st.ID] = st
	}
	return out, rows.Err()
}

// LoadItemCatalog returns every known item ID.
func (s *Store) LoadItemCatalog(ctx context.Context) ([]tradedb.ItemID, error) {
	rows, err := s.pool.Query(ctx, `SELECT item_id FROM items`)
	if err != nil {
		return nil, fmt.Errorf("postgres: query items: %w", err)
	}
	defer rows.Close()

	var out []tradedb.ItemID
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("postgres: scan item row: %w", err)
		}
		out = append(out, tradedb.ItemID(id))
	}
	return out, rows.Err()
}
