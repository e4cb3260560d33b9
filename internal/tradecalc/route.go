package tradecalc

import "wayfarer/internal/tradedb"

// Route is an immutable, append-only value describing a chain of hops.
// Stations and Systems are kept parallel
// (both length len(Hops)+1) so FirstSystem/LastSystem never need an
// external station→system lookup: Systems[i] is always the system Stations[i]
// belongs to, and Jumps[i] runs from Systems[i] to Systems[i+1].
type Route struct {
	Stations []tradedb.StationID
	Systems  []tradedb.SystemID
	Hops     []TradeLoad
	// Jumps[i] is the hyperspace path for hop i: Jumps[i][0] == Systems[i],
	// Jumps[i][len-1] == Systems[i+1]. An in-system hop's path starts and
	// ends at that same system.
	Jumps [][]tradedb.SystemID

	StartCr float64
	GainCr  float64
	Score   float64
}

// NewRoute seeds a single-station route, the starting point the hop
// expander extends.
func NewRoute(station tradedb.StationID, system tradedb.SystemID, startCr float64) Route {
	return Route{
		Stations: []tradedb.StationID{station},
		Systems:  []tradedb.SystemID{system},
		StartCr:  startCr,
	}
}

// FirstStation returns the first station in the route.
func (r Route) FirstStation() tradedb.StationID { return r.Stations[0] }

// LastStation returns the last station in the route.
func (r Route) LastStation() tradedb.StationID { return r.Stations[len(r.Stations)-1] }

// FirstSystem returns the first system in the route.
func (r Route) FirstSystem() tradedb.SystemID { return r.Systems[0] }

// LastSystem returns the last system in the route.
func (r Route) LastSystem() tradedb.SystemID { return r.Systems[len(r.Systems)-1] }

// AvgGainPerTon is the integer mean of each hop's own gain-per-ton.
func (r Route) AvgGainPerTon() int64 {
	if len(r.Hops) == 0 {
		return 0
	}
	var sum int64
	for _, hop := range r.Hops {
		sum += gainPerTon(hop)
	}
	return sum / int64(len(r.Hops))
}

// GainPerTon is the overall gain-per-ton: total gain divided by total
// units across every hop, as an integer.
func (r Route) GainPerTon() int64 {
	var gain float64
	var units int64
	for _, hop := range r.Hops {
		gain += hop.GainCr
		units += hop.Units
	}
	if units == 0 {
		return 0
	}
	return int64(gain) / units
}

func gainPerTon(l TradeLoad) int64 {
	if l.Units == 0 {
		return 0
	}
	return int64(l.GainCr) / l.Units
}

// Plus returns a new route describing this route plus one more hop. The
// receiver is never mutated.
func (r Route) Plus(dstStation tradedb.StationID, dstSystem tradedb.SystemID, hop TradeLoad, jumps []tradedb.SystemID, addedScore float64) Route {
	stations := make([]tradedb.StationID, len(r.Stations)+1)
	copy(stations, r.Stations)
	stations[len(r.Stations)] = dstStation

	systems := make([]tradedb.SystemID, len(r.Systems)+1)
	copy(systems, r.Systems)
	systems[len(r.Systems)] = dstSystem

	hops := make([]TradeLoad, len(r.Hops)+1)
	copy(hops, r.Hops)
	hops[len(r.Hops)] = hop

	allJumps := make([][]tradedb.SystemID, len(r.Jumps)+1)
	copy(allJumps, r.Jumps)
	allJumps[len(r.Jumps)] = jumps

	return Route{
		Stations: stations,
		Systems:  systems,
		Hops:     hops,
		Jumps:    allJumps,
		StartCr:  r.StartCr,
		GainCr:   r.GainCr + hop.GainCr,
		Score:    r.Score + addedScore,
	}
}

// Less orders routes by score DESC, tie broken by jump count ASC.
func (r Route) Less(rhs Route) bool {
	if r.Score == rhs.Score {
		return len(r.Jumps) < len(rhs.Jumps)
	}
	return r.Score > rhs.Score
}

// Equal reports whether two routes rank the same: same score and same hop
// count.
func (r Route) Equal(rhs Route) bool {
	return r.Score == rhs.Score && len(r.Jumps) == len(rhs.Jumps)
}

// Contains reports whether station appears anywhere in the route.
func (r Route) Contains(station tradedb.StationID) bool {
	for _, s := range r.Stations {
		if s == station {
			return true
		}
	}
	return false
}
