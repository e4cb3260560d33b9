package graph

import (
	"container/heap"
	"sort"

	"wayfarer/internal/tradecalc"
	"wayfarer/internal/tradedb"
)

// reachState is one entry in the frontier during multi-jump expansion:
// the best (fewest-jumps, then shortest-distance) known path to a system.
type reachState struct {
	system tradedb.SystemID
	jumps  int
	distLy float64
	via    []tradedb.SystemID
}

type reachHeap []reachState

func (h reachHeap) Len() int { return len(h) }
func (h reachHeap) Less(i, j int) bool {
	if h[i].distLy != h[j].distLy {
		return h[i].distLy < h[j].distLy
	}
	return h[i].system < h[j].system
}
func (h reachHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *reachHeap) Push(x interface{}) { *h = append(*h, x.(reachState)) }
func (h *reachHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// reachableSystems runs a Dijkstra-style expansion from origin, treating
// any pair of systems within maxLyPer of each other as directly connected,
// bounded to maxJumps hops. It returns, for every system reached, the path
// with the fewest jumps found to it (shorter total distance breaks ties),
// keyed by system ID. Origin itself is included with
// zero jumps and zero distance.
func (g *Graph) reachableSystems(origin tradedb.SystemID, maxJumps int, maxLyPer float64) map[tradedb.SystemID]reachState {
	best := map[tradedb.SystemID]reachState{
		origin: {system: origin, jumps: 0, distLy: 0, via: []tradedb.SystemID{origin}},
	}

	pq := &reachHeap{best[origin]}
	heap.Init(pq)

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(reachState)
		if known, ok := best[cur.system]; ok && (cur.distLy > known.distLy || cur.jumps > known.jumps) {
			continue
		}
		if cur.jumps >= maxJumps {
			continue
		}
		originSys := g.Systems[cur.system]
		if originSys == nil {
			continue
		}
		for id, sys := range g.Systems {
			if id == cur.system {
				continue
			}
			d := originSys.DistanceTo(sys)
			if d > maxLyPer {
				continue
			}
			nextDist := cur.distLy + d
			nextJumps := cur.jumps + 1
			if known, ok := best[id]; ok && (known.jumps < nextJumps || (known.jumps == nextJumps && known.distLy <= nextDist)) {
				continue
			}
			via := make([]tradedb.SystemID, len(cur.via)+1)
			copy(via, cur.via)
			via[len(cur.via)] = id
			next := reachState{system: id, jumps: nextJumps, distLy: nextDist, via: via}
			best[id] = next
			heap.Push(pq, next)
		}
	}
	return best
}

// Destinations implements tradecalc.DestinationFunc: every station
// reachable from src within maxJumps hops of at most maxLyPer light-years
// each, subject to the station attribute filters.
func (g *Graph) Destinations(
	src tradedb.StationID,
	maxJumps int,
	maxLyPer float64,
	avoidPlaces map[tradedb.StationID]bool,
	maxPadSize string,
	maxLsFromStar float64,
	noPlanet bool,
	planetary string,
) ([]tradecalc.Destination, error) {
	srcStation := g.Stations[src]
	if srcStation == nil {
		return nil, nil
	}
	if maxJumps <= 0 {
		maxJumps = 1
	}
	if maxLyPer <= 0 {
		maxLyPer = 1
	}

	reached := g.reachableSystems(srcStation.SystemID, maxJumps, maxLyPer)

	var out []tradecalc.Destination
	for sysID, state := range reached {
		sys := g.Systems[sysID]
		if sys == nil {
			continue
		}
		for _, stID := range sys.Stations {
			if avoidPlaces[stID] {
				continue
			}
			st := g.Stations[stID]
			if st == nil || st.ID == src {
				continue
			}
			if !padSizeOK(st.MaxPadSize, maxPadSize) {
				continue
			}
			if noPlanet && st.Planetary == tradedb.TriYes {
				continue
			}
			if planetary != "" && planetary != tradedb.TriUnknown && st.Planetary != planetary {
				continue
			}
			if maxLsFromStar > 0 && st.LsFromStar > maxLsFromStar {
				continue
			}
			out = append(out, tradecalc.Destination{
				System:  sysID,
				Station: stID,
				Via:     state.via,
				DistLy:  state.distLy,
			})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].DistLy != out[j].DistLy {
			return out[i].DistLy < out[j].DistLy
		}
		return out[i].Station < out[j].Station
	})
	return out, nil
}

var padRank = map[string]int{
	tradedb.PadUnknown: 0,
	tradedb.PadSmall:   1,
	tradedb.PadMedium:  2,
	tradedb.PadLarge:   3,
}

// padSizeOK reports whether a station's max pad size accommodates a ship
// requiring at most `required` (S < M < L). An empty or "?" requirement
// imposes no constraint.
func padSizeOK(stationPad, required string) bool {
	if required == "" || required == tradedb.PadUnknown {
		return true
	}
	return padRank[stationPad] >= padRank[required]
}
