package tradedb

import (
	"errors"
	"strconv"
	"testing"
	"time"
)

type sliceSource []OfferRow

func (s sliceSource) Each(yield func(OfferRow) error) error {
	for _, row := range s {
		if err := yield(row); err != nil {
			return err
		}
	}
	return nil
}

func epoch(t time.Time, agoSec int64) string {
	return strconv.FormatInt(t.Unix()-agoSec, 10)
}

func TestNewOfferIndex_BasicFilters(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	rows := sliceSource{
		{StationID: 1, ItemID: 10, Modified: epoch(now, 10), DemandPrice: 20, DemandUnits: 5, SupplyPrice: 10, SupplyUnits: 100},
		// demand below threshold: excluded from buying
		{StationID: 1, ItemID: 11, Modified: epoch(now, 10), DemandPrice: 5, DemandUnits: 1, SupplyPrice: 0, SupplyUnits: 0},
		// supply units known zero: excluded from selling
		{StationID: 2, ItemID: 10, Modified: epoch(now, 10), DemandPrice: 0, SupplyPrice: 8, SupplyUnits: 0},
	}

	idx, err := NewOfferIndex(rows, now, Config{MinDemand: 2})
	if err != nil {
		t.Fatalf("NewOfferIndex: %v", err)
	}
	sell := idx.Selling(1)
	if len(sell) != 1 || sell[0].Item != 10 {
		t.Fatalf("expected one sell offer for item 10, got %+v", sell)
	}
	buy := idx.Buying(1)
	if len(buy) != 1 || buy[0].Item != 10 {
		t.Fatalf("expected one buy offer for item 10 (item 11 demand below threshold), got %+v", buy)
	}
	if len(idx.Selling(2)) != 0 {
		t.Fatalf("expected station 2 to have no sell offers (supply units == 0), got %+v", idx.Selling(2))
	}
}

func TestNewOfferIndex_MaxAge(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	rows := sliceSource{
		{StationID: 1, ItemID: 10, Modified: epoch(now, 3*86400), SupplyPrice: 10, SupplyUnits: 5},
		{StationID: 1, ItemID: 11, Modified: epoch(now, 10*86400), SupplyPrice: 10, SupplyUnits: 5},
	}
	idx, err := NewOfferIndex(rows, now, Config{MaxAgeDays: 5})
	if err != nil {
		t.Fatalf("NewOfferIndex: %v", err)
	}
	sell := idx.Selling(1)
	if len(sell) != 1 || sell[0].Item != 10 {
		t.Fatalf("expected only the fresh offer to survive, got %+v", sell)
	}
}

func TestNewOfferIndex_AvoidAndRestrict(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	rows := sliceSource{
		{StationID: 1, ItemID: 10, Modified: epoch(now, 1), SupplyPrice: 10, SupplyUnits: 5},
		{StationID: 1, ItemID: 11, Modified: epoch(now, 1), SupplyPrice: 10, SupplyUnits: 5},
		{StationID: 1, ItemID: 12, Modified: epoch(now, 1), SupplyPrice: 10, SupplyUnits: 5},
	}
	idx, err := NewOfferIndex(rows, now, Config{
		AvoidItems:    map[ItemID]bool{11: true},
		RestrictItems: map[ItemID]bool{10: true, 11: true},
	})
	if err != nil {
		t.Fatalf("NewOfferIndex: %v", err)
	}
	sell := idx.Selling(1)
	if len(sell) != 1 || sell[0].Item != 10 {
		t.Fatalf("expected restrict ∩ ¬avoid == {10}, got %+v", sell)
	}
}

func TestNewOfferIndex_NoItemsToLoad(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	_, err := NewOfferIndex(sliceSource{}, now, Config{
		Catalog:    []ItemID{10, 11},
		AvoidItems: map[ItemID]bool{10: true, 11: true},
	})
	var target *NoItemsToLoadError
	if !errors.As(err, &target) {
		t.Fatalf("expected NoItemsToLoadError, got %v", err)
	}
}

func TestNewOfferIndex_BadTimestamp(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	rows := sliceSource{
		{StationID: 1, ItemID: 10, Modified: "not-a-number", SupplyPrice: 10, SupplyUnits: 5},
	}
	_, err := NewOfferIndex(rows, now, Config{})
	var target *BadTimestampError
	if !errors.As(err, &target) {
		t.Fatalf("expected BadTimestampError, got %v", err)
	}
	if target.Station != 1 || target.Item != 10 {
		t.Fatalf("unexpected error detail: %+v", target)
	}
}
