// Package routecache memoizes Calc.Expand results in Redis behind a
// signature of the input frontier, so re-running the same hop with the
// same options skips the search entirely. String key, JSON value,
// explicit TTL.
package routecache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"wayfarer/internal/metrics"
	"wayfarer/internal/tradecalc"
	"wayfarer/internal/tradedb"
)

// Cache wraps a redis client used purely as a memoization layer: absence
// of a reachable Redis must never fail a search, only skip the cache,
// the same nil-collaborator silence the logger observes.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// New wraps an already-constructed redis.Client. ttl of 0 defaults to 5
// minutes.
func New(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{client: client, ttl: ttl}
}

// cachedRoute is the wire shape for one Route, since tradecalc.Route's
// StationID/SystemID types don't round-trip through encoding/json as
// named types without an explicit shape.
type cachedRoute struct {
	Stations []int64               `json:"stations"`
	Systems  []int64               `json:"systems"`
	Hops     []tradecalc.TradeLoad `json:"hops"`
	Jumps    [][]int64             `json:"jumps"`
	StartCr  float64               `json:"start_cr"`
	GainCr   float64               `json:"gain_cr"`
	Score    float64               `json:"score"`
}

func toCached(r tradecalc.Route) cachedRoute {
	c := cachedRoute{
		Hops:    r.Hops,
		StartCr: r.StartCr,
		GainCr:  r.GainCr,
		Score:   r.Score,
	}
	for _, s := range r.Stations {
		c.Stations = append(c.Stations, int64(s))
	}
	for _, s := range r.Systems {
		c.Systems = append(c.Systems, int64(s))
	}
	for _, jump := range r.Jumps {
		var js []int64
		for _, s := range jump {
			js = append(js, int64(s))
		}
		c.Jumps = append(c.Jumps, js)
	}
	return c
}

func fromCached(c cachedRoute) tradecalc.Route {
	r := tradecalc.Route{
		Hops:    c.Hops,
		StartCr: c.StartCr,
		GainCr:  c.GainCr,
		Score:   c.Score,
	}
	for _, s := range c.Stations {
		r.Stations = append(r.Stations, tradedb.StationID(s))
	}
	for _, s := range c.Systems {
		r.Systems = append(r.Systems, tradedb.SystemID(s))
	}
	for _, jump := range c.Jumps {
		var js []tradedb.SystemID
		for _, s := range jump {
			js = append(js, tradedb.SystemID(s))
		}
		r.Jumps = append(r.Jumps, js)
	}
	return r
}

// routeKey is the part of a Route that makes it distinct for caching
// purposes: its full station path (not just the destination) and the
// gain accumulated to reach it, since two frontiers can share a
// destination set while disagreeing on how they got there.
type routeKey struct {
	Stations []int64
	GainCr   float64
}

// Signature derives a stable cache key from the input frontier and the
// options governing expansion; any change to either must miss the cache.
func Signature(routes []tradecalc.Route, opts tradecalc.Options) string {
	keys := make([]routeKey, 0, len(routes))
	for _, r := range routes {
		stations := make([]int64, len(r.Stations))
		for i, s := range r.Stations {
			stations[i] = int64(s)
		}
		keys = append(keys, routeKey{Stations: stations, GainCr: r.GainCr})
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i].Stations, keys[j].Stations
		if len(a) != len(b) {
			return len(a) < len(b)
		}
		for k := range a {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return keys[i].GainCr < keys[j].GainCr
	})

	h := sha256.New()
	enc := json.NewEncoder(h)
	enc.Encode(keys)
	enc.Encode(opts)
	return "wayfarer:expand:" + hex.EncodeToString(h.Sum(nil))
}

// Get looks up a previously cached Expand result. A cache miss (for any
// reason: key absent, redis unreachable, corrupt payload) returns
// (nil, false) rather than an error: the cache is an optimization, never
// a dependency.
func (c *Cache) Get(ctx context.Context, sig string) ([]tradecalc.Route, bool) {
	if c == nil || c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, sig).Bytes()
	if err != nil {
		metrics.RouteCacheMissesTotal.Inc()
		return nil, false
	}
	var cached []cachedRoute
	if err := json.Unmarshal(raw, &cached); err != nil {
		metrics.RouteCacheMissesTotal.Inc()
		return nil, false
	}
	out := make([]tradecalc.Route, len(cached))
	for i, cr := range cached {
		out[i] = fromCached(cr)
	}
	metrics.RouteCacheHitsTotal.Inc()
	return out, true
}

// Set stores an Expand result under sig. Errors are swallowed; a failed
// write just means the next Get() misses.
func (c *Cache) Set(ctx context.Context, sig string, routes []tradecalc.Route) {
	if c == nil || c.client == nil {
		return
	}
	cached := make([]cachedRoute, len(routes))
	for i, r := range routes {
		cached[i] = toCached(r)
	}
	raw, err := json.Marshal(cached)
	if err != nil {
		return
	}
	_ = c.client.Set(ctx, sig, raw, c.ttl).Err()
}
