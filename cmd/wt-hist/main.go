// Copyright (c) 2024 Neomantra Corp

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"wondertrader/store"
	"wondertrader/wt"
)

///////////////////////////////////////////////////////////////////////////////

var (
	dataRoot string
	kind     string
)

func requireNoErrorWithoutPrint(err error) {
	if err != nil {
		os.Exit(1)
	}
}

///////////////////////////////////////////////////////////////////////////////

func main() {
	cobra.OnInitialize()

	rootCmd.PersistentFlags().StringVarP(&dataRoot, "data-root", "d", ".", "Archive root directory")
	rootCmd.PersistentFlags().StringVarP(&kind, "kind", "k", "bar", `Archive kind: "bar" or "tick"`)

	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(rolloverCmd)

	err := rootCmd.Execute()
	requireNoErrorWithoutPrint(err)
}

///////////////////////////////////////////////////////////////////////////////

var rootCmd = &cobra.Command{
	Use:   "wt-hist",
	Short: "wt-hist inspects and rolls over WonderTrader archive (.dsb) files",
	Long:  "wt-hist inspects and rolls over WonderTrader archive (.dsb) files",
}

///////////////////////////////////////////////////////////////////////////////

var inspectCmd = &cobra.Command{
	Use:   "inspect file...",
	Short: `Prints a record-count summary for the given archive files`,
	Long:  `Prints a record-count summary for the given archive files`,
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		for _, path := range args {
			var count int
			var firstDate, lastDate uint32
			var err error
			if kind == "tick" {
				var ticks []wt.TickRecord
				ticks, err = store.ReadTickArchive(path)
				count = len(ticks)
				if count > 0 {
					firstDate, lastDate = ticks[0].TradingDate, ticks[count-1].TradingDate
				}
			} else {
				var bars []wt.BarRecord
				bars, err = store.ReadBarArchive(path)
				count = len(bars)
				if count > 0 {
					firstDate, lastDate = bars[0].Date, bars[count-1].Date
				}
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: reading %s: %s\n", path, err.Error())
				continue
			}
			summary := map[string]any{
				"file":       path,
				"records":    count,
				"first_date": firstDate,
				"last_date":  lastDate,
			}
			jstr, _ := json.Marshal(summary)
			fmt.Printf("%s\n", jstr)
		}
	},
}

///////////////////////////////////////////////////////////////////////////////

var rolloverCmd = &cobra.Command{
	Use:   "rollover exchg code tdate",
	Short: `Marks a tdate as closed in marker.ini for the given exchg/code stream`,
	Long:  `Marks a tdate as closed in marker.ini for the given exchg/code stream, as the session-close task does automatically`,
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		exchg, code, tdateStr := args[0], args[1], args[2]
		tdate, err := strconv.Atoi(tdateStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: invalid tdate %q: %s\n", tdateStr, err.Error())
			os.Exit(1)
		}

		marker, err := store.OpenMarker(dataRoot + "/marker.ini")
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: opening marker: %s\n", err.Error())
			os.Exit(1)
		}
		sessionID := exchg + "." + code
		if err := marker.Mark(sessionID, uint32(tdate)); err != nil {
			fmt.Fprintf(os.Stderr, "error: marking rollover: %s\n", err.Error())
			os.Exit(1)
		}
		fmt.Printf("marked %s closed through %d\n", sessionID, tdate)
	},
}
