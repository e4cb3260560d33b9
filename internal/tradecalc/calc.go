package tradecalc

import (
	"fmt"
	"math"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"wayfarer/internal/tradedb"
)

// Logger is the injected debug-tracing collaborator. A nil Logger must be
// safe to use: every call site in this package checks for nil before
// dispatching, so absence of a logger is silent.
type Logger interface {
	Debug0(format string, args ...any)
	Debug1(format string, args ...any)
	Debug2(format string, args ...any)
}

func debug0(l Logger, format string, args ...any) {
	if l != nil {
		l.Debug0(format, args...)
	}
}

func debug1(l Logger, format string, args ...any) {
	if l != nil {
		l.Debug1(format, args...)
	}
}

// Destination is one reachable station, as yielded by the graph
// collaborator. Via runs from the source system to the destination system;
// Via[0] is the source system, Via[len-1] is Station's system.
type Destination struct {
	System  tradedb.SystemID
	Station tradedb.StationID
	Via     []tradedb.SystemID
	DistLy  float64
}

// DestinationFunc is the external jump-graph collaborator used in graph
// mode. Implementations must yield each reachable station at most once.
type DestinationFunc func(
	src tradedb.StationID,
	maxJumps int,
	maxLyPer float64,
	avoidPlaces map[tradedb.StationID]bool,
	maxPadSize string,
	maxLsFromStar float64,
	noPlanet bool,
	planetary string,
) ([]Destination, error)

// Options holds the knobs governing trade selection, cargo fitting, and
// destination filtering for one search.
type Options struct {
	BaseCredits float64
	Capacity    int64
	MaxUnits    int64

	Margin    float64 // safety factor subtracted from 1 when projecting gain
	Insurance float64 // flat reserve deducted from credits

	TradeFilter TradeFilter

	MaxJumpsPer   int
	MaxLyPer      float64
	MaxPadSize    string
	Planetary     string
	NoPlanet      bool
	MaxLsFromStar float64

	AvoidPlaces        map[tradedb.StationID]bool
	Unique             bool
	LoopInterval       int
	RequireBlackMarket bool

	Direct           bool
	RestrictStations []tradedb.StationID

	HasGoal    bool
	GoalSystem tradedb.SystemID

	LsPenalty float64

	HasMaxAgeData bool
	MaxAgeDataSec int64

	// UseExactFit swaps in FitExact for every fit call, for validation
	// runs where correctness matters more than speed.
	UseExactFit bool
}

// Calc is the hop expander. It holds the read-only collaborators an
// expansion needs: the offer index, the system/station catalog (for
// distance calculations), and the external jump-graph function.
type Calc struct {
	Index    *tradedb.OfferIndex
	Systems  map[tradedb.SystemID]*tradedb.System
	Stations map[tradedb.StationID]*tradedb.Station

	Destinations DestinationFunc
	Options      Options
	Logger       Logger

	// Progress, if set, is invoked once per input route processed.
	Progress func(done, total int)
}

func (c *Calc) fit(items []Trade, credits float64, capacity, maxUnits int64) TradeLoad {
	if c.Options.UseExactFit {
		return FitExact(items, credits, capacity, maxUnits)
	}
	return Fit(items, credits, capacity, maxUnits)
}

// Trades enumerates profitable trades from src to dst under the
// calculator's configured gain filter.
func (c *Calc) Trades(src, dst tradedb.StationID, srcSellingOverride []tradedb.SellOffer) []Trade {
	return Trades(c.Index, src, dst, c.Options.TradeFilter, srcSellingOverride)
}

// Fit selects the best-gain manifest from items under the given budget,
// capacity, and per-item ceiling, honoring the UseExactFit option.
func (c *Calc) Fit(items []Trade, credits float64, capacity, maxUnits int64) TradeLoad {
	return c.fit(items, credits, capacity, maxUnits)
}

func (c *Calc) distance(a, b tradedb.SystemID) float64 {
	sa, sb := c.Systems[a], c.Systems[b]
	if sa == nil || sb == nil {
		return 0
	}
	return sa.DistanceTo(sb)
}

type bestCandidate struct {
	route  Route              // the input route this candidate extends
	dst    tradedb.StationID
	dstSys tradedb.SystemID
	load   TradeLoad
	jumps  []tradedb.SystemID
	distLy float64
	score  float64
}

// combined is the figure the retention policy compares: the predecessor
// route's own score plus this hop's added score.
func (b bestCandidate) combined() float64 { return b.route.Score + b.score }

// Expand extends every input route by one hop, keeping one best route per
// destination station.
func (c *Calc) Expand(routes []Route) ([]Route, error) {
	best := make(map[tradedb.StationID]bestCandidate)
	total := len(routes)
	var evaluated int64
	for done, route := range routes {
		c.expandOne(route, best, &evaluated)
		if c.Progress != nil {
			c.Progress(done+1, total)
		}
	}
	if evaluated == 0 {
		return nil, &NoHopsError{}
	}
	return c.emit(best), nil
}

// ExpandParallel shards routes across workers, each building its own
// bestToDest map, then merges them with the same retention rule, taking the
// workers' maps in worker order. Where two candidates for one destination
// tie on both combined score and distLy, the one merged first is kept, so
// in that case the retained predecessor can differ from Expand's.
func (c *Calc) ExpandParallel(routes []Route, workers int) ([]Route, error) {
	if workers <= 1 || len(routes) <= 1 {
		return c.Expand(routes)
	}

	shards := make([][]Route, workers)
	for i, r := range routes {
		w := i % workers
		shards[w] = append(shards[w], r)
	}

	partials := make([]map[tradedb.StationID]bestCandidate, workers)
	var completed int32
	var evaluated int64
	total := int32(len(routes))

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			m := make(map[tradedb.StationID]bestCandidate)
			var localEvaluated int64
			for _, route := range shards[w] {
				c.expandOne(route, m, &localEvaluated)
				if c.Progress != nil {
					done := atomic.AddInt32(&completed, 1)
					c.Progress(int(done), int(total))
				}
			}
			partials[w] = m
			atomic.AddInt64(&evaluated, localEvaluated)
			return nil
		})
	}
	_ = g.Wait() // expandOne never returns an error; worker funcs always return nil

	merged := make(map[tradedb.StationID]bestCandidate)
	for _, m := range partials {
		for dst, cand := range m {
			mergeCandidate(merged, dst, cand)
		}
	}

	if evaluated == 0 {
		return nil, &NoHopsError{}
	}
	return c.emit(merged), nil
}

func (c *Calc) emit(best map[tradedb.StationID]bestCandidate) []Route {
	out := make([]Route, 0, len(best))
	for _, cand := range best {
		out = append(out, cand.route.Plus(cand.dst, cand.dstSys, cand.load, cand.jumps, cand.score))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}

func (c *Calc) expandOne(route Route, best map[tradedb.StationID]bestCandidate, evaluated *int64) {
	src := route.LastStation()
	srcSystem := route.LastSystem()

	startCr := c.Options.BaseCredits + math.Floor(route.GainCr*(1-c.Options.Margin)) - c.Options.Insurance
	if startCr < 0 {
		startCr = 0
	}

	srcSelling := filterSellingByBudget(c.Index.Selling(src), startCr)
	if len(srcSelling) == 0 {
		debug1(c.Logger, "expand: station %d has no affordable selling offers at %.0fcr", src, startCr)
		return
	}

	dests, err := c.destinations(route, src, srcSystem)
	if err != nil {
		debug0(c.Logger, "expand: destinations(%d): %v", src, err)
		return
	}
	dests = c.filterDestinations(dests, route, src, srcSystem)
	// Deterministic tie resolution: distLy ASC, then stationID ASC, so
	// mergeCandidate's "keep incumbent" branch never depends on the graph
	// collaborator's iteration order.
	sort.Slice(dests, func(i, j int) bool {
		if dests[i].DistLy != dests[j].DistLy {
			return dests[i].DistLy < dests[j].DistLy
		}
		return dests[i].Station < dests[j].Station
	})

	origin := route.FirstStation()
	originSystem := route.FirstSystem()

	for _, dst := range dests {
		// Count every destination that reaches the trade enumeration,
		// whether or not a manifest ultimately comes of it. NoHops is about
		// destinations evaluated, not candidates retained.
		*evaluated++
		trades := Trades(c.Index, src, dst.Station, c.Options.TradeFilter, srcSelling)
		if len(trades) == 0 {
			continue
		}
		load := c.fit(trades, startCr, c.Options.Capacity, c.Options.MaxUnits)
		if load.Empty() {
			continue
		}

		score := c.score(route, src, srcSystem, dst, origin, originSystem, load)

		cand := bestCandidate{
			route:  route,
			dst:    dst.Station,
			dstSys: dst.System,
			load:   load,
			jumps:  dst.Via,
			distLy: dst.DistLy,
			score:  score,
		}
		mergeCandidate(best, dst.Station, cand)
	}
}

// mergeCandidate applies the retention policy: higher combined score wins;
// ties broken by shorter distLy, then by the incumbent winning outright
// (stable against reordering).
func mergeCandidate(best map[tradedb.StationID]bestCandidate, dst tradedb.StationID, cand bestCandidate) {
	incumbent, ok := best[dst]
	if !ok {
		best[dst] = cand
		return
	}
	newCombined, oldCombined := cand.combined(), incumbent.combined()
	switch {
	case newCombined < oldCombined:
		return
	case newCombined == oldCombined:
		if cand.distLy < incumbent.distLy {
			best[dst] = cand
		}
	default:
		best[dst] = cand
	}
}

func filterSellingByBudget(offers []tradedb.SellOffer, startCr float64) []tradedb.SellOffer {
	out := make([]tradedb.SellOffer, 0, len(offers))
	for _, o := range offers {
		if o.Price <= startCr {
			out = append(out, o)
		}
	}
	return out
}

func (c *Calc) destinations(route Route, src tradedb.StationID, srcSystem tradedb.SystemID) ([]Destination, error) {
	if c.Options.Direct {
		out := make([]Destination, 0, len(c.Options.RestrictStations))
		for _, st := range c.Options.RestrictStations {
			station := c.Stations[st]
			if station == nil {
				continue
			}
			out = append(out, Destination{
				System:  station.SystemID,
				Station: st,
				Via:     []tradedb.SystemID{srcSystem, station.SystemID},
				DistLy:  c.distance(srcSystem, station.SystemID),
			})
		}
		return out, nil
	}
	if c.Destinations == nil {
		return nil, fmt.Errorf("tradecalc: graph mode requires a Destinations function")
	}
	return c.Destinations(
		src,
		c.Options.MaxJumpsPer,
		c.Options.MaxLyPer,
		c.Options.AvoidPlaces,
		c.Options.MaxPadSize,
		c.Options.MaxLsFromStar,
		c.Options.NoPlanet,
		c.Options.Planetary,
	)
}

// filterDestinations applies the destination filter pipeline, in order:
// source exclusion, black market, uniqueness/loop window, restriction set,
// data age, goal progress.
func (c *Calc) filterDestinations(dests []Destination, route Route, src tradedb.StationID, srcSystem tradedb.SystemID) []Destination {
	opts := c.Options
	out := dests[:0:0]

	inRoute := make(map[tradedb.StationID]bool, len(route.Stations))
	if opts.Unique {
		for _, s := range route.Stations {
			inRoute[s] = true
		}
	} else if opts.LoopInterval > 0 {
		// Block the loopInterval-1 stations immediately preceding the
		// current (last) station. The current station itself is excluded
		// separately by the src filter, not by this window.
		stations := route.Stations
		end := len(stations) - 1
		if end < 0 {
			end = 0
		}
		start := end - (opts.LoopInterval - 1)
		if start < 0 {
			start = 0
		}
		for _, s := range stations[start:end] {
			inRoute[s] = true
		}
	}

	var restrict map[tradedb.StationID]bool
	if len(opts.RestrictStations) > 0 {
		restrict = make(map[tradedb.StationID]bool, len(opts.RestrictStations))
		for _, s := range opts.RestrictStations {
			restrict[s] = true
		}
	}

	for _, d := range dests {
		// 1. exclude src itself
		if d.Station == src {
			continue
		}
		// 2. require black market
		if opts.RequireBlackMarket {
			st := c.Stations[d.Station]
			if st == nil || st.BlackMarket != tradedb.TriYes {
				continue
			}
		}
		// 3. uniqueness / loop interval
		if (opts.Unique || opts.LoopInterval > 0) && inRoute[d.Station] {
			continue
		}
		// 4. restrictStations intersection
		if restrict != nil && !restrict[d.Station] {
			continue
		}
		// 5. max data age
		if opts.HasMaxAgeData {
			st := c.Stations[d.Station]
			if st == nil || !st.HasDataAge || st.DataAgeSec > opts.MaxAgeDataSec {
				continue
			}
		}
		// 6. goal-system filter
		if opts.HasGoal {
			isGoal := d.System == opts.GoalSystem
			if !isGoal {
				dGoal := c.distance(d.System, opts.GoalSystem)
				sGoal := c.distance(srcSystem, opts.GoalSystem)
				if dGoal >= sGoal {
					continue
				}
			}
			if opts.Unique && d.System == srcSystem {
				continue
			}
		}
		out = append(out, d)
	}
	return out
}

// score values one candidate hop. Without a goal the score is the
// manifest's gain; with one, distance-to-goal ratios dominate so routes
// make progress even through thin markets. The 5000/50/10/25/100/10/3
// constants are load-bearing; do not simplify them.
func (c *Calc) score(route Route, src tradedb.StationID, srcSystem tradedb.SystemID, dst Destination, origin tradedb.StationID, originSystem tradedb.SystemID, load TradeLoad) float64 {
	var s float64
	switch {
	case !c.Options.HasGoal:
		s = load.GainCr
	case dst.System == c.Options.GoalSystem:
		s = load.GainCr
	default:
		dGoal := c.distance(dst.System, c.Options.GoalSystem)
		sGoal := c.distance(srcSystem, c.Options.GoalSystem)
		oGoal := c.distance(originSystem, c.Options.GoalSystem)
		oDst := c.distance(originSystem, dst.System)
		sOrig := c.distance(srcSystem, originSystem)

		if dGoal <= 0 {
			dGoal = 1e-6
		}

		var progressTerm float64
		if dst.Station != origin {
			progressTerm = 10 * (oDst - sOrig)
		}

		var gpt float64
		if load.Units > 0 {
			gpt = load.GainCr / float64(load.Units)
		}

		s = 5000*oGoal/dGoal + 50*sGoal/dGoal + progressTerm + gpt/25
	}

	if c.Options.LsPenalty > 0 {
		station := c.Stations[dst.Station]
		if station != nil {
			kls := math.Floor(station.LsFromStar/100) / 10
			penalty := ((kls*kls - kls) / 3) * (c.Options.LsPenalty / 100)
			mult := 1 - penalty
			if mult < 0 {
				mult = 0
			}
			s *= mult
		}
	}

	return s
}
