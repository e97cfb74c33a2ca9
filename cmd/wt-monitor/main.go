// Copyright (c) 2024 Neomantra Corp

package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"wondertrader/basedata"
	"wondertrader/config"
	wt_tui "wondertrader/internal/tui"
)

///////////////////////////////////////////////////////////////////////////////

func main() {
	var boot config.BootstrapConfig
	var feedPath string
	var showHelp bool

	pflag.StringVarP(&boot.RegistryPath, "registry", "r", "", "Contract registry YAML path (or set WT_REGISTRY_PATH envvar)")
	pflag.StringVarP(&boot.DataRoot, "data-root", "d", "", "Archive root directory (or set WT_DATA_ROOT envvar)")
	pflag.StringVarP(&feedPath, "feed", "f", "", `Tick feed file, or "-" for stdin (disabled if unset)`)
	pflag.BoolVarP(&showHelp, "help", "h", false, "Show help")
	pflag.Parse()

	if showHelp {
		fmt.Fprintf(os.Stdout, "usage: %s [options]\n\n", os.Args[0])
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

	registry := basedata.NewRegistry(nil)
	if boot.RegistryPath != "" {
		if err := registry.LoadFile(boot.RegistryPath); err != nil {
			fmt.Fprintf(os.Stderr, "error: failed to load registry: %s\n", err.Error())
			os.Exit(1)
		}
	} else if boot.RegistryURL != "" {
		if err := registry.RefreshRemote(boot.RegistryURL); err != nil {
			fmt.Fprintf(os.Stderr, "error: failed to fetch registry: %s\n", err.Error())
			os.Exit(1)
		}
	}

	tuiConfig := wt_tui.Config{
		Registry: registry,
		DataRoot: boot.DataRoot,
		FeedPath: feedPath,
	}
	if err := wt_tui.Run(tuiConfig); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err.Error())
		os.Exit(1)
	}
}
