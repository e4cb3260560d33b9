package tradecalc

import (
	"math"
	"sort"

	"wayfarer/internal/tradedb"
)

// Trade is a derived, directional record: buy Item at src, sell it at dst.
// Gain is always strictly positive.
type Trade struct {
	Item tradedb.ItemID

	CostCr float64 // src sell price
	GainCr float64 // dst buy price - src sell price

	SrcSupplyUnits int64
	SrcSupplyLevel int
	DstDemandUnits int64
	DstDemandLevel int

	SrcAgeSec int64
	DstAgeSec int64
}

// GainPerUnit is an alias kept for readability at call sites that score
// per-ton gain; a Trade's GainCr already is a per-unit figure.
func (t Trade) GainPerUnit() float64 { return t.GainCr }

// TradeFilter bounds the gain-per-ton window trades must fall in. Trades
// treats a MinGainPerTon of 0 or less as 1, so the zero value filters the
// same as DefaultTradeFilter.
type TradeFilter struct {
	MinGainPerTon float64
	MaxGainPerTon float64 // 0 means "no upper bound"
}

// DefaultTradeFilter requires at least 1cr gain per ton, with no upper
// bound.
func DefaultTradeFilter() TradeFilter {
	return TradeFilter{MinGainPerTon: 1, MaxGainPerTon: 0}
}

// Trades returns the profitable trading options from srcStation to
// dstStation, ordered gain DESC then cost ASC. srcSellingOverride, when
// non-nil, replaces the index lookup for src's sell offers; the hop
// expander uses this to pass a budget-prefiltered list without mutating
// the shared OfferIndex.
func Trades(
	idx *tradedb.OfferIndex,
	srcStation, dstStation tradedb.StationID,
	filter TradeFilter,
	srcSellingOverride []tradedb.SellOffer,
) []Trade {
	srcSelling := srcSellingOverride
	if srcSelling == nil {
		srcSelling = idx.Selling(srcStation)
		if len(srcSelling) == 0 {
			return nil
		}
	}
	dstBuying := idx.Buying(dstStation)
	if len(dstBuying) == 0 {
		return nil
	}

	buyByItem := make(map[tradedb.ItemID]tradedb.BuyOffer, len(dstBuying))
	for _, buy := range dstBuying {
		buyByItem[buy.Item] = buy
	}

	minGain := filter.MinGainPerTon
	if minGain <= 0 {
		minGain = 1
	}
	maxGain := filter.MaxGainPerTon
	if maxGain <= 0 || maxGain < minGain {
		maxGain = math.MaxFloat64
	}

	var trades []Trade
	for _, sell := range srcSelling {
		buy, ok := buyByItem[sell.Item]
		if !ok {
			continue
		}
		gain := buy.Price - sell.Price
		if gain < minGain || gain > maxGain {
			continue
		}
		trades = append(trades, Trade{
			Item:           sell.Item,
			CostCr:         sell.Price,
			GainCr:         gain,
			SrcSupplyUnits: sell.Units,
			SrcSupplyLevel: sell.Level,
			DstDemandUnits: buy.Demand,
			DstDemandLevel: buy.Level,
			SrcAgeSec:      sell.AgeSec,
			DstAgeSec:      buy.AgeSec,
		})
	}

	// Stable sort: primary key gain DESC, secondary key cost ASC.
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].CostCr < trades[j].CostCr
	})
	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].GainCr > trades[j].GainCr
	})

	return trades
}
