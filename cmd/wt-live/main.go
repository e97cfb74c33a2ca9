// Copyright (c) 2024 Neomantra Corp
//
// wt-live ingests a normalized tick feed and drives it through a live
// engine.Engine, taking the place of a broker's own engine.ParserAdapter
// implementation. The feed itself is newline-delimited JSON ticks, read
// from a file or stdin ("-") -- any real broker parser plugs in at the
// same engine.OnTick boundary (spec §9's IParserApi).

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"

	"wondertrader/basedata"
	"wondertrader/config"
	"wondertrader/engine"
	"wondertrader/store"
	"wondertrader/strategy"
	"wondertrader/trader"
	"wondertrader/wt"
)

///////////////////////////////////////////////////////////////////////////////

// liveTick is the wire shape accepted on the feed.
type liveTick struct {
	Code string `json:"code"` // "EX.CODE"
	wt.TickRecord
}

func main() {
	var boot config.BootstrapConfig
	var feedPath string
	var rtDir string
	var actionPolicyPath string
	var contextID string
	var showHelp bool

	pflag.StringVarP(&boot.RegistryPath, "registry", "r", "", "Contract registry YAML path (or set WT_REGISTRY_PATH envvar)")
	pflag.StringVarP(&boot.DataRoot, "data-root", "d", "", "Archive root directory (or set WT_DATA_ROOT envvar)")
	pflag.StringVarP(&rtDir, "rt-dir", "t", "", "Directory for per-code RT mmap blocks (defaults to <data-root>/rt)")
	pflag.StringVarP(&feedPath, "feed", "f", "-", `Tick feed file, or "-" for stdin`)
	pflag.StringVarP(&actionPolicyPath, "action-policy", "a", "", "Action-policy YAML path; enables live order placement via trader.Adapter")
	pflag.StringVarP(&contextID, "context", "c", "live", "Strategy context id registered with the engine")
	pflag.BoolVarP(&boot.Verbose, "verbose", "v", false, "Verbose logging")
	pflag.BoolVarP(&showHelp, "help", "h", false, "Show help")
	pflag.Parse()

	if showHelp {
		fmt.Fprintf(os.Stdout, "usage: %s -r <registry.yaml> [opts]\n\n", os.Args[0])
		pflag.PrintDefaults()
		os.Exit(0)
	}

	if boot.RegistryPath == "" && boot.DataRoot == "" {
		if err := boot.SetFromEnv(); err != nil {
			fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
			os.Exit(1)
		}
	}
	if boot.DataRoot == "" {
		boot.DataRoot = "."
	}
	if rtDir == "" {
		rtDir = filepath.Join(boot.DataRoot, "rt")
	}

	if err := run(boot, rtDir, feedPath, actionPolicyPath, contextID); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}
}

///////////////////////////////////////////////////////////////////////////////

// traderLogSink is the operational trader.Sink for wt-live: every broker
// lifecycle event is logged, matching the engine's own attribute-based
// logging idiom. A real deployment would forward these to its own
// order-management UI.
type traderLogSink struct {
	log *slog.Logger
}

func (s *traderLogSink) OnOrder(localID uint32, code string, isLong bool, totalQty, leftQty, price float64, isCanceled bool, userTag string) {
	s.log.Info("order", "local_id", localID, "code", code, "is_long", isLong, "left_qty", leftQty, "price", price, "canceled", isCanceled, "component", "trader")
}
func (s *traderLogSink) OnTrade(localID uint32, code string, isLong bool, vol, price float64, userTag string) {
	s.log.Info("trade", "local_id", localID, "code", code, "is_long", isLong, "vol", vol, "price", price, "component", "trader")
}
func (s *traderLogSink) OnEntrust(localID uint32, code string, success bool, msg, userTag string) {
	s.log.Info("entrust", "local_id", localID, "code", code, "success", success, "msg", msg, "component", "trader")
}
func (s *traderLogSink) OnChannelReady(tradingDay uint32) {
	s.log.Info("channel ready", "trading_day", tradingDay, "component", "trader")
}
func (s *traderLogSink) OnChannelLost() {
	s.log.Warn("channel lost", "component", "trader")
}
func (s *traderLogSink) OnPosition(code string, isLong bool, preVol, preAvail, newVol, newAvail float64, tradingDay uint32) {
	s.log.Info("position", "code", code, "is_long", isLong, "new_vol", newVol, "new_avail", newAvail, "component", "trader")
}

func run(boot config.BootstrapConfig, rtDir, feedPath, actionPolicyPath, contextID string) error {
	log := slog.Default()

	registry := basedata.NewRegistry(log)
	if boot.RegistryPath != "" {
		if err := registry.LoadFile(boot.RegistryPath); err != nil {
			return fmt.Errorf("failed to load registry: %w", err)
		}
	} else if boot.RegistryURL != "" {
		if err := registry.RefreshRemote(boot.RegistryURL); err != nil {
			return fmt.Errorf("failed to fetch registry: %w", err)
		}
	}

	e := engine.NewEngine(log, registry)
	e.Closer = &store.SessionCloser{
		Layout: store.ArchiveLayout{Root: boot.DataRoot},
	}

	var traderAdapter *trader.Adapter
	if actionPolicyPath != "" {
		policy, err := trader.LoadActionPolicy(actionPolicyPath)
		if err != nil {
			return fmt.Errorf("failed to load action policy: %w", err)
		}
		entrusts, err := trader.OpenEntrustCache(filepath.Join(rtDir, "entrust.cache"), 1024)
		if err != nil {
			return fmt.Errorf("failed to open entrust cache: %w", err)
		}
		limits := trader.NewRateLimiter(
			trader.RateLimitConfig{Timespan: time.Second, Boundary: 5},
			trader.RateLimitConfig{Timespan: time.Second, Boundary: 5},
		)
		traderAdapter = trader.NewAdapter(log, trader.NewIDMap(), entrusts, limits, policy, &traderLogSink{log: log})
		e.Adapters[contextID] = traderAdapter
	}

	ctx := strategy.NewContext(contextID, log)
	mocker := strategy.NewCTAMocker(ctx, nil)
	adapter := engine.NewCTAContextAdapter(log, ctx, mocker, registry, traderAdapter)
	e.RegisterContext(adapter)

	var in io.Reader = os.Stdin
	if feedPath != "-" {
		f, err := os.Open(feedPath)
		if err != nil {
			return fmt.Errorf("failed to open feed: %w", err)
		}
		defer f.Close()
		in = f
	}

	rtBlocks := map[string]*store.RTBlock{}
	defer func() {
		for _, rt := range rtBlocks {
			rt.Close()
		}
	}()

	sessionStarted := false
	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		var lt liveTick
		if err := json.Unmarshal(line, &lt); err != nil {
			log.Warn("dropping malformed feed line", "error", err)
			continue
		}

		if !sessionStarted {
			e.SessionBegin(lt.TradingDate)
			sessionStarted = true
		}

		if _, ok := rtBlocks[lt.Code]; !ok {
			session, err := registry.ContractSession(lt.Code)
			if err != nil {
				log.Warn("dropping tick for unknown contract", "code", lt.Code, "error", err)
				continue
			}
			contract, _ := registry.Contract(lt.Code)
			path := filepath.Join(rtDir, contract.Exchange, contract.Code+".dmb")
			rt, err := store.OpenRTBlock(path, wt.BlockType_Tick, 1440)
			if err != nil {
				log.Warn("failed to open RT block", "code", lt.Code, "error", err)
				continue
			}
			rtBlocks[lt.Code] = rt
			e.RegisterCode(lt.Code, contract.SessionID, rt, session)
			e.Subs.SubTick(adapter.ID(), lt.Code)
		}

		e.OnTick(lt.Code, lt.TickRecord)
	}
	return sc.Err()
}
