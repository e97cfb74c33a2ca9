// Copyright (c) 2024 Neomantra Corp

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"wondertrader/basedata"
	"wondertrader/config"
	"wondertrader/engine"
	"wondertrader/replay"
	"wondertrader/store"
	"wondertrader/strategy"
	"wondertrader/wt"
)

///////////////////////////////////////////////////////////////////////////////

type Config struct {
	DataRoot     string
	RegistryPath string
	Exchg        string
	ContextID    string
	Verbose      bool
}

///////////////////////////////////////////////////////////////////////////////

func main() {
	var cfg Config
	var showHelp bool

	pflag.StringVarP(&cfg.DataRoot, "data-root", "d", "", "Archive root directory (or set WT_DATA_ROOT envvar)")
	pflag.StringVarP(&cfg.RegistryPath, "registry", "r", "", "Contract registry YAML path (or set WT_REGISTRY_PATH envvar)")
	pflag.StringVarP(&cfg.Exchg, "exchg", "e", "", "Exchange directory name under the tick archive root")
	pflag.StringVarP(&cfg.ContextID, "context", "c", "replay", "Strategy context id registered with the engine")
	pflag.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Verbose logging")
	pflag.BoolVarP(&showHelp, "help", "h", false, "Show help")
	pflag.Parse()

	codes := pflag.Args()

	if showHelp {
		fmt.Fprintf(os.Stdout, "usage: %s -e <exchg> [opts] code1 code2 ...\n\n", os.Args[0])
		pflag.PrintDefaults()
		os.Exit(0)
	}

	if cfg.DataRoot == "" || cfg.RegistryPath == "" {
		var boot config.BootstrapConfig
		boot.SetFromEnv()
		if cfg.DataRoot == "" {
			cfg.DataRoot = boot.DataRoot
		}
		if cfg.RegistryPath == "" {
			cfg.RegistryPath = boot.RegistryPath
		}
	}
	requireValOrExit(cfg.Exchg, "missing required --exchg")
	requireValOrExit(cfg.RegistryPath, "missing required --registry")
	if len(codes) == 0 {
		fmt.Fprintf(os.Stderr, "requires at least one code argument\n")
		os.Exit(1)
	}

	if err := run(cfg, codes); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err.Error())
		os.Exit(1)
	}
}

func requireValOrExit(val string, errstr string) {
	if val == "" {
		fmt.Fprintf(os.Stderr, "%s\n", errstr)
		os.Exit(1)
	}
}

///////////////////////////////////////////////////////////////////////////////

func run(cfg Config, codes []string) error {
	log := slog.Default()
	layout := store.ArchiveLayout{Root: cfg.DataRoot}

	registry := basedata.NewRegistry(log)
	if err := registry.LoadFile(cfg.RegistryPath); err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	e := engine.NewEngine(log, registry)
	ctx := strategy.NewContext(cfg.ContextID, log)
	mocker := strategy.NewCTAMocker(ctx, nil)
	adapter := engine.NewCTAContextAdapter(log, ctx, mocker, registry, nil)
	adapter.IsSimulated = true // backtest archives may include synthesized ticks
	e.RegisterContext(adapter)

	r := replay.NewReplayer()
	var firstDate uint32
	for _, code := range codes {
		fullCode := cfg.Exchg + "." + code
		session, err := registry.ContractSession(fullCode)
		if err != nil {
			return fmt.Errorf("failed to resolve session for %s: %w", fullCode, err)
		}
		contract, err := registry.Contract(fullCode)
		if err != nil {
			return fmt.Errorf("failed to resolve contract for %s: %w", fullCode, err)
		}
		e.RegisterCode(fullCode, contract.SessionID, nil, session)
		e.Subs.SubTick(adapter.ID(), fullCode)

		path := layout.ArchivePath(wt.BlockType_Tick, cfg.Exchg, code, 0)
		ticks, err := store.ReadTickArchive(path)
		if err != nil {
			return fmt.Errorf("failed to read archive for %s: %w", code, err)
		}
		if cfg.Verbose {
			log.Info("loaded archive", "code", code, "ticks", len(ticks))
		}
		if len(ticks) > 0 && (firstDate == 0 || ticks[0].ActionDate < firstDate) {
			firstDate = ticks[0].ActionDate
		}
		r.AddSymbol(fullCode, ticks)
	}
	r.Prepare()
	if firstDate != 0 {
		e.SessionBegin(firstDate)
	}
	r.Run(&engineSink{eng: e})
	return nil
}

// engineSink adapts the replayer's Event-based callbacks onto the engine's
// code/tick-shaped dispatch entrypoints, driving every registered
// engine.ContextSink (including engine.CTAContextAdapter) through the exact
// same store-write -> ticker -> subscriber path a live feed uses.
type engineSink struct {
	eng *engine.Engine
}

func (s *engineSink) HandleTick(e replay.Event)       { s.eng.OnTick(e.Code, e.Tick) }
func (s *engineSink) HandleBarClose(e replay.Event)   {} // engine derives bar closes itself from ticks
func (s *engineSink) HandleSchedule(e replay.Event)   { s.eng.OnSchedule(e.Date, e.Time) }
func (s *engineSink) HandleSessionBegin(e replay.Event) { s.eng.SessionBegin(e.Date) }
func (s *engineSink) HandleSessionEnd(e replay.Event)   { s.eng.OnSessionEnd() }
func (s *engineSink) HandleSectionEnd(e replay.Event)   {}
