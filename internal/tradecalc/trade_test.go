package tradecalc

import (
	"testing"
	"time"

	"wayfarer/internal/tradedb"
)

func buildIndex(t *testing.T, rows []tradedb.OfferRow) *tradedb.OfferIndex {
	t.Helper()
	idx, err := tradedb.NewOfferIndex(sliceOfferSource(rows), time.Unix(1_700_000_000, 0), tradedb.Config{})
	if err != nil {
		t.Fatalf("NewOfferIndex: %v", err)
	}
	return idx
}

type sliceOfferSource []tradedb.OfferRow

func (s sliceOfferSource) Each(yield func(tradedb.OfferRow) error) error {
	for _, r := range s {
		if err := yield(r); err != nil {
			return err
		}
	}
	return nil
}

func TestTrades_TradeFilter(t *testing.T) {
	idx := buildIndex(t, []tradedb.OfferRow{
		{StationID: 1, ItemID: 100, Modified: "1700000000", SupplyPrice: 10, SupplyUnits: -1},
		{StationID: 2, ItemID: 100, Modified: "1700000000", DemandPrice: 11, DemandUnits: 100},
	})
	trades := Trades(idx, 1, 2, TradeFilter{MinGainPerTon: 2}, nil)
	if len(trades) != 0 {
		t.Fatalf("expected no trades with gain 1 below minGainPerTon 2, got %+v", trades)
	}
}

func TestTrades_OrderedGainDescCostAsc(t *testing.T) {
	idx := buildIndex(t, []tradedb.OfferRow{
		{StationID: 1, ItemID: 100, Modified: "1700000000", SupplyPrice: 10, SupplyUnits: -1},
		{StationID: 1, ItemID: 101, Modified: "1700000000", SupplyPrice: 5, SupplyUnits: -1},
		{StationID: 2, ItemID: 100, Modified: "1700000000", DemandPrice: 20, DemandUnits: 100},
		{StationID: 2, ItemID: 101, Modified: "1700000000", DemandPrice: 20, DemandUnits: 100},
	})
	trades := Trades(idx, 1, 2, DefaultTradeFilter(), nil)
	if len(trades) != 2 {
		t.Fatalf("expected 2 trades, got %+v", trades)
	}
	if trades[0].Item != 101 {
		t.Fatalf("expected item with higher gain (cheaper cost) first, got %+v", trades)
	}
}

func TestTrades_EmptyWhenNoOffers(t *testing.T) {
	idx := buildIndex(t, nil)
	if trades := Trades(idx, 1, 2, DefaultTradeFilter(), nil); trades != nil {
		t.Fatalf("expected nil, got %+v", trades)
	}
}

// Running Trades twice over the same immutable index yields identical
// ordered lists.
func TestTrades_IdempotentFiltering(t *testing.T) {
	idx := buildIndex(t, []tradedb.OfferRow{
		{StationID: 1, ItemID: 100, Modified: "1700000000", SupplyPrice: 10, SupplyUnits: -1},
		{StationID: 2, ItemID: 100, Modified: "1700000000", DemandPrice: 20, DemandUnits: 100},
	})
	first := Trades(idx, 1, 2, DefaultTradeFilter(), nil)
	second := Trades(idx, 1, 2, DefaultTradeFilter(), nil)
	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("entry %d differs: %+v vs %+v", i, first[i], second[i])
		}
	}
}
