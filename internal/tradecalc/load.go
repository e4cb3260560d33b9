package tradecalc

// TradeItem is one (Trade, quantity) entry in a TradeLoad manifest.
type TradeItem struct {
	Trade Trade
	Qty   int64
}

// TradeLoad is the cargo manifest a fit solver returns: an ordered sequence
// of (Trade, quantity) pairs plus aggregates kept in sync with it.
type TradeLoad struct {
	Items  []TradeItem
	GainCr float64
	CostCr float64
	Units  int64
}

// EmptyLoad is returned by the fit solvers when nothing fits.
var EmptyLoad = TradeLoad{}

// Empty reports whether the load carries zero units.
func (l TradeLoad) Empty() bool { return l.Units <= 0 }

// Less orders manifests by gain DESC, tie broken by units ASC, tie broken
// by cost ASC.
func (l TradeLoad) Less(rhs TradeLoad) bool {
	if l.GainCr != rhs.GainCr {
		return l.GainCr > rhs.GainCr
	}
	if l.Units != rhs.Units {
		return l.Units < rhs.Units
	}
	return l.CostCr < rhs.CostCr
}

// itemQtyCeiling computes the most units of t that fit the remaining
// credits and capacity: min(maxUnits, cap, cr÷cost, supply). A non-positive
// supply means unknown and imposes no bound.
func itemQtyCeiling(t Trade, maxUnits, cap int64, cr float64) int64 {
	if t.CostCr <= 0 {
		return 0
	}
	qty := maxUnits
	if cap < qty {
		qty = cap
	}
	byCredits := int64(cr / t.CostCr)
	if byCredits < qty {
		qty = byCredits
	}
	if t.SrcSupplyUnits > 0 && t.SrcSupplyUnits < qty {
		qty = t.SrcSupplyUnits
	}
	return qty
}

// Fit is the fast branch-and-keep cargo fit solver. items must already be
// sorted gain DESC, cost ASC (the order Trades returns); the early stop on
// a capacity-saturating load is only correct under that ordering. Never
// fails; returns EmptyLoad when no positive-gain assignment fits.
func Fit(items []Trade, credits float64, capacity, maxUnits int64) TradeLoad {
	return fitFrom(items, 0, credits, capacity, maxUnits)
}

func fitFrom(items []Trade, offset int, cr float64, cap, maxUnits int64) TradeLoad {
	var (
		bestGainCr float64 = -1
		bestItem   *Trade
		bestQty    int64
		bestCostCr float64
		bestSub    TradeLoad
		haveSub    bool
	)

	for i := offset; i < len(items); i++ {
		item := items[i]
		maxQty := itemQtyCeiling(item, maxUnits, cap, cr)
		if maxQty <= 0 {
			continue
		}

		if maxQty == cap {
			// Full load of this single item saturates capacity; gain-per-unit
			// only falls from here (items are gain-DESC), so no later item
			// can beat this without the sub-recursion we're about to skip.
			gain := item.GainCr * float64(maxQty)
			if gain > bestGainCr {
				bestGainCr = gain
				bestItem = &items[i]
				bestQty = maxQty
				bestCostCr = item.CostCr * float64(maxQty)
				haveSub = false
			}
			break
		}

		loadCostCr := float64(maxQty) * item.CostCr
		loadGainCr := float64(maxQty) * item.GainCr
		if loadGainCr > bestGainCr {
			bestGainCr = loadGainCr
			bestCostCr = loadCostCr
			bestItem = &items[i]
			bestQty = maxQty
			haveSub = false
		}

		crLeft, capLeft := cr-loadCostCr, cap-maxQty
		if crLeft > 0 && capLeft > 0 {
			sub := fitFrom(items, i+1, crLeft, capLeft, maxUnits)
			if sub.Empty() {
				continue
			}
			totalGain := loadGainCr + sub.GainCr
			if totalGain < bestGainCr {
				continue
			}
			totalCost := loadCostCr + sub.CostCr
			if totalGain == bestGainCr && totalCost >= bestCostCr {
				continue
			}
			bestGainCr = totalGain
			bestItem = &items[i]
			bestQty = maxQty
			bestCostCr = totalCost
			bestSub = sub
			haveSub = true
		}
	}

	if bestItem == nil {
		return EmptyLoad
	}

	load := TradeLoad{
		Items:  []TradeItem{{Trade: *bestItem, Qty: bestQty}},
		GainCr: bestGainCr,
		CostCr: bestCostCr,
		Units:  bestQty,
	}
	if haveSub {
		load.Items = append(load.Items, bestSub.Items...)
		load.Units += bestSub.Units
	}
	return load
}

// FitExact is the brute-force fit solver: recursive enumeration of every
// quantity at every offset, exponential in the number of items. Used to
// validate Fit; never fails.
func FitExact(items []Trade, credits float64, capacity, maxUnits int64) TradeLoad {
	return fitExactFrom(items, 0, credits, capacity, maxUnits)
}

func fitExactFrom(items []Trade, offset int, cr float64, cap, maxUnits int64) TradeLoad {
	if cr <= 0 || cap <= 0 {
		return EmptyLoad
	}

	var item Trade
	var maxQty int64
	found := false
	for offset < len(items) {
		item = items[offset]
		offset++
		maxQty = itemQtyCeiling(item, maxUnits, cap, cr)
		if maxQty > 0 {
			found = true
			break
		}
	}
	if !found {
		return EmptyLoad
	}

	best := fitExactFrom(items, offset, cr, cap, maxUnits)
	for qty := int64(1); qty <= maxQty; qty++ {
		loadGain, loadCost := item.GainCr*float64(qty), item.CostCr*float64(qty)
		sub := fitExactFrom(items, offset, cr-loadCost, cap-qty, maxUnits)
		combGain := loadGain + sub.GainCr
		if combGain < best.GainCr {
			continue
		}
		combCost := loadCost + sub.CostCr
		combUnits := qty + sub.Units
		if combGain == best.GainCr {
			if combUnits > best.Units {
				continue
			}
			if combUnits == best.Units && combCost >= best.CostCr {
				continue
			}
		}
		items := make([]TradeItem, 0, len(sub.Items)+1)
		items = append(items, TradeItem{Trade: item, Qty: qty})
		items = append(items, sub.Items...)
		best = TradeLoad{Items: items, GainCr: combGain, CostCr: combCost, Units: combUnits}
	}
	return best
}
