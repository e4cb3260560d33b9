package tradedb

import (
	"strconv"
	"time"
)

// OfferRow is one row of the external StationItem relation: one item's
// buy/sell quotes at one station, with a modified timestamp that may or
// may not be a valid epoch.
type OfferRow struct {
	StationID StationID
	ItemID    ItemID
	// Modified is seconds since the Unix epoch, encoded as text. The
	// external data source owns the original representation; NewOfferIndex
	// validates it converts to an integer.
	Modified string

	DemandPrice float64
	DemandUnits int64
	DemandLevel int

	SupplyPrice float64
	SupplyUnits int64
	SupplyLevel int
}

// OfferSource is the external relational data source collaborator.
// Implementations push rows to yield; returning a non-nil error from yield
// stops iteration early and that error propagates out of Each.
type OfferSource interface {
	Each(yield func(OfferRow) error) error
}

// Config controls which offers NewOfferIndex loads.
type Config struct {
	// MaxAgeDays discards offers older than this many days. 0 disables the
	// filter.
	MaxAgeDays int
	// MinSupply/MinDemand are per-offer unit thresholds. 0 disables the
	// filter. Callers should set these directly regardless of whether the
	// legacy "supply"/"demand" option names surfaced the value.
	MinSupply int64
	MinDemand int64
	// AvoidItems excludes these items entirely at load time.
	AvoidItems map[ItemID]bool
	// RestrictItems, if non-empty, restricts loading to exactly this set.
	RestrictItems map[ItemID]bool
	// Catalog is the full set of known item IDs, used solely to detect an
	// avoid/restrict combination that leaves nothing to load. The item
	// catalog itself belongs to the external data source; callers that
	// can't supply it may leave Catalog nil, which skips this
	// construction-time check.
	Catalog []ItemID
}

// OfferIndex is the immutable, once-built mapping from station to its
// selling and buying offers. Safe for concurrent reads.
type OfferIndex struct {
	selling map[StationID][]SellOffer
	buying  map[StationID][]BuyOffer
}

// NewOfferIndex loads offers from source, applying the age, threshold, and
// item filters configured in cfg.
func NewOfferIndex(source OfferSource, now time.Time, cfg Config) (*OfferIndex, error) {
	if err := checkNoItemsToLoad(cfg); err != nil {
		return nil, err
	}

	idx := &OfferIndex{
		selling: make(map[StationID][]SellOffer),
		buying:  make(map[StationID][]BuyOffer),
	}

	var maxAgeSec int64
	if cfg.MaxAgeDays > 0 {
		maxAgeSec = int64(cfg.MaxAgeDays) * 86400
	}
	nowEpoch := now.Unix()

	err := source.Each(func(row OfferRow) error {
		if cfg.AvoidItems[row.ItemID] {
			return nil
		}
		if len(cfg.RestrictItems) > 0 && !cfg.RestrictItems[row.ItemID] {
			return nil
		}

		epoch, err := strconv.ParseInt(row.Modified, 10, 64)
		if err != nil {
			return &BadTimestampError{Station: row.StationID, Item: row.ItemID, Raw: row.Modified}
		}
		ageSec := nowEpoch - epoch
		if maxAgeSec > 0 && ageSec > maxAgeSec {
			return nil
		}

		if row.DemandPrice > 0 && (cfg.MinDemand == 0 || row.DemandUnits >= cfg.MinDemand) {
			idx.buying[row.StationID] = append(idx.buying[row.StationID], BuyOffer{
				Item: row.ItemID, Price: row.DemandPrice, Demand: row.DemandUnits,
				Level: row.DemandLevel, AgeSec: ageSec,
			})
		}
		if row.SupplyPrice > 0 && row.SupplyUnits != 0 && (cfg.MinSupply == 0 || row.SupplyUnits >= cfg.MinSupply) {
			idx.selling[row.StationID] = append(idx.selling[row.StationID], SellOffer{
				Item: row.ItemID, Price: row.SupplyPrice, Units: row.SupplyUnits,
				Level: row.SupplyLevel, AgeSec: ageSec,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return idx, nil
}

func checkNoItemsToLoad(cfg Config) error {
	if cfg.Catalog == nil {
		return nil
	}
	if len(cfg.AvoidItems) == 0 && len(cfg.RestrictItems) == 0 {
		return nil
	}
	base := cfg.Catalog
	if len(cfg.RestrictItems) > 0 {
		base = base[:0:0]
		for id := range cfg.RestrictItems {
			base = append(base, id)
		}
	}
	for _, id := range base {
		if !cfg.AvoidItems[id] {
			return nil
		}
	}
	return &NoItemsToLoadError{}
}

// Selling returns the ordered sell offers loaded for a station, or nil.
func (idx *OfferIndex) Selling(station StationID) []SellOffer {
	return idx.selling[station]
}

// Buying returns the ordered buy offers loaded for a station, or nil.
func (idx *OfferIndex) Buying(station StationID) []BuyOffer {
	return idx.buying[station]
}

// HasOffers reports whether any selling or buying offers were loaded for
// the station at all.
func (idx *OfferIndex) HasOffers(station StationID) bool {
	return len(idx.selling[station]) > 0 || len(idx.buying[station]) > 0
}
