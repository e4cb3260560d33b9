// Command wayfarer is the CLI around the route-search engine: it loads
// configuration, opens an offer store (sqlite or postgres), builds the
// jump graph and offer index, runs the hop expander for the configured
// number of hops, and reports the result as a plain list or through the
// interactive TUI.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"wayfarer/internal/config"
	"wayfarer/internal/graph"
	"wayfarer/internal/live"
	"wayfarer/internal/logger"
	"wayfarer/internal/metrics"
	"wayfarer/internal/routecache"
	"wayfarer/internal/store/postgres"
	"wayfarer/internal/store/sqlite"
	"wayfarer/internal/tradecalc"
	"wayfarer/internal/tradedb"
	"wayfarer/internal/tui"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "wayfarer.yaml", "path to the YAML config file")
	from := flag.Int64("from", 0, "station ID to start the search from (required)")
	uiMode := flag.String("ui", "plain", "output mode: plain | tui")
	flag.Parse()

	logger.Banner(version)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("config", err.Error())
		os.Exit(1)
	}
	if *from == 0 {
		logger.Error("main", "-from <stationID> is required")
		os.Exit(1)
	}

	runID := uuid.New().String()[:8]
	log := logger.NewDebug(runID, cfg.DebugLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	offerSource, systems, stations, catalog, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("store", err.Error())
		os.Exit(1)
	}
	defer closeStore()

	idx, err := tradedb.NewOfferIndex(offerSource, time.Now(), tradedb.Config{
		MaxAgeDays:    cfg.MaxAgeDays,
		MinSupply:     cfg.MinSupply,
		MinDemand:     cfg.MinDemand,
		AvoidItems:    toItemSet(cfg.AvoidItems),
		RestrictItems: toItemSet(cfg.RestrictItems),
		Catalog:       catalog,
	})
	if err != nil {
		logger.Error("index", err.Error())
		os.Exit(1)
	}
	logger.Success("index", fmt.Sprintf("offer index built for %d systems, %d stations", len(systems), len(stations)))

	g := graph.NewGraph(systems, stations)

	var cache *routecache.Cache
	if cfg.RedisAddr != "" {
		cache = routecache.New(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}), 5*time.Minute)
	}

	var hub *live.Hub
	if cfg.LiveAddr != "" {
		hub = live.NewHub()
		go hub.Run()
		go serveLive(cfg.LiveAddr, hub)
	}

	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr)
	}

	calc := &tradecalc.Calc{
		Index:        idx,
		Systems:      systems,
		Stations:     stations,
		Destinations: g.Destinations,
		Options:      toOptions(cfg),
		Logger:       log,
		Progress: func(done, total int) {
			metrics.RoutesExpanded.Inc()
			hub.Publish(live.ProgressEvent{RoutesDone: done, RoutesTotal: total, Phase: "expanding"})
		},
	}

	startStation, ok := stations[tradedb.StationID(*from)]
	if !ok {
		logger.Error("main", fmt.Sprintf("-from %d: no such station in the loaded catalog", *from))
		os.Exit(1)
	}

	seed := tradecalc.NewRoute(tradedb.StationID(*from), startStation.SystemID, cfg.Credits)
	frontier := []tradecalc.Route{seed}

	for hop := 1; hop <= cfg.Hops; hop++ {
		select {
		case <-ctx.Done():
			logger.Warn("main", "interrupted")
			os.Exit(1)
		default:
		}

		sig := ""
		if cache != nil {
			sig = routecache.Signature(frontier, calc.Options)
			if cached, ok := cache.Get(ctx, sig); ok {
				frontier = cached
				logger.Info("cache", fmt.Sprintf("hop %d: routecache hit", hop))
				continue
			}
		}

		timer := startTimer()
		next, err := calc.Expand(frontier)
		metrics.ExpandDuration.Observe(timer())
		if err != nil {
			metrics.HopsErrorsTotal.Inc()
			logger.Error("expand", fmt.Sprintf("hop %d: %v", hop, err))
			break
		}
		metrics.RoutesRetained.Set(float64(len(next)))
		frontier = next

		if cache != nil {
			cache.Set(ctx, sig, frontier)
		}
		hub.Publish(live.ProgressEvent{Hop: hop, RoutesDone: len(frontier), Phase: "expanding"})
		logger.Success("expand", fmt.Sprintf("hop %d: %d routes in frontier", hop, len(frontier)))
	}

	sort.Slice(frontier, func(i, j int) bool { return frontier[i].Less(frontier[j]) })
	hub.Publish(live.ProgressEvent{Phase: "done", RoutesDone: len(frontier)})

	names := &catalogNames{stations: stations, systems: systems}

	switch *uiMode {
	case "tui":
		if err := tui.Run(frontier, names); err != nil {
			logger.Error("tui", err.Error())
			os.Exit(1)
		}
	default:
		printRoutes(frontier, names)
	}
}

func startTimer() func() float64 {
	start := timeNow()
	return func() float64 { return timeNow().Sub(start).Seconds() }
}

// timeNow is a thin indirection so a future test can stub the clock
// without touching time.Now call sites throughout main.
var timeNow = time.Now

func openStore(ctx context.Context, cfg *config.Options) (
	tradedb.OfferSource,
	map[tradedb.SystemID]*tradedb.System,
	map[tradedb.StationID]*tradedb.Station,
	[]tradedb.ItemID,
	func(),
	error,
) {
	switch cfg.Store {
	case "postgres":
		st, err := postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, nil, nil, func() {}, err
		}
		systems, err := st.LoadSystems(ctx)
		if err != nil {
			return nil, nil, nil, nil, func() {}, err
		}
		stations, err := st.LoadStations(ctx)
		if err != nil {
			return nil, nil, nil, nil, func() {}, err
		}
		catalog, err := st.LoadItemCatalog(ctx)
		if err != nil {
			return nil, nil, nil, nil, func() {}, err
		}
		return st, systems, stations, catalog, func() { st.Close() }, nil
	default:
		st, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, nil, func() {}, err
		}
		systems, err := st.LoadSystems()
		if err != nil {
			return nil, nil, nil, nil, func() {}, err
		}
		stations, err := st.LoadStations()
		if err != nil {
			return nil, nil, nil, nil, func() {}, err
		}
		catalog, err := st.LoadItemCatalog()
		if err != nil {
			return nil, nil, nil, nil, func() {}, err
		}
		return st, systems, stations, catalog, func() { st.Close() }, nil
	}
}

func toItemSet(ids []int64) map[tradedb.ItemID]bool {
	if len(ids) == 0 {
		return nil
	}
	out := make(map[tradedb.ItemID]bool, len(ids))
	for _, id := range ids {
		out[tradedb.ItemID(id)] = true
	}
	return out
}

func toStationSet(ids []int64) map[tradedb.StationID]bool {
	if len(ids) == 0 {
		return nil
	}
	out := make(map[tradedb.StationID]bool, len(ids))
	for _, id := range ids {
		out[tradedb.StationID(id)] = true
	}
	return out
}

func toStationSlice(ids []int64) []tradedb.StationID {
	if len(ids) == 0 {
		return nil
	}
	out := make([]tradedb.StationID, len(ids))
	for i, id := range ids {
		out[i] = tradedb.StationID(id)
	}
	return out
}

func toOptions(cfg *config.Options) tradecalc.Options {
	return tradecalc.Options{
		BaseCredits: cfg.Credits,
		Capacity:    cfg.Capacity,
		MaxUnits:    cfg.Limit,
		Margin:      cfg.Margin,
		Insurance:   cfg.Insurance,
		TradeFilter: tradecalc.TradeFilter{
			MinGainPerTon: cfg.MinGainPerTon,
			MaxGainPerTon: cfg.MaxGainPerTon,
		},
		MaxJumpsPer:        cfg.MaxJumpsPer,
		MaxLyPer:           cfg.MaxLyPer,
		MaxPadSize:         cfg.PadSize,
		Planetary:          cfg.Planetary,
		NoPlanet:           cfg.NoPlanet,
		MaxLsFromStar:      cfg.MaxLs,
		AvoidPlaces:        toStationSet(cfg.AvoidPlaces),
		Unique:             cfg.Unique,
		LoopInterval:       cfg.LoopInt,
		RequireBlackMarket: cfg.BlackMarket,
		Direct:             cfg.Direct,
		RestrictStations:   toStationSlice(cfg.RestrictTo),
		HasGoal:            cfg.GoalSystem != 0,
		GoalSystem:         tradedb.SystemID(cfg.GoalSystem),
		LsPenalty:          cfg.LsPenalty,
		UseExactFit:        cfg.UseExactFit,
	}
}

func serveMetrics(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	logger.Info("metrics", "listening on "+addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logger.Error("metrics", err.Error())
	}
}

func serveLive(addr string, hub *live.Hub) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		live.ServeWs(hub, w, r)
	})
	logger.Server(addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logger.Error("live", err.Error())
	}
}

type catalogNames struct {
	stations map[tradedb.StationID]*tradedb.Station
	systems  map[tradedb.SystemID]*tradedb.System
}

func (c *catalogNames) StationName(id tradedb.StationID) string {
	if st := c.stations[id]; st != nil {
		return st.Name
	}
	return strconv.FormatInt(int64(id), 10)
}

func (c *catalogNames) SystemName(id tradedb.SystemID) string {
	if sys := c.systems[id]; sys != nil {
		return sys.Name
	}
	return strconv.FormatInt(int64(id), 10)
}

func printRoutes(routes []tradecalc.Route, names *catalogNames) {
	logger.Section("Routes")
	max := 20
	if len(routes) < max {
		max = len(routes)
	}
	for i := 0; i < max; i++ {
		r := routes[i]
		logger.Stats(
			fmt.Sprintf("#%d %s -> %s", i+1, names.StationName(r.FirstStation()), names.StationName(r.LastStation())),
			fmt.Sprintf("gain=%.0fcr hops=%d gpt=%d", r.GainCr, len(r.Hops), r.GainPerTon()),
		)
	}
}
