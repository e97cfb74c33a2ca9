// Copyright (c) 2024 Neomantra Corp

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"wondertrader/internal/export"
)

///////////////////////////////////////////////////////////////////////////////

var (
	verbose bool

	destDir string // destination directory
	kind    string // "bar" or "tick"
	code    string // contract code, for split
)

func requireNoErrorWithoutPrint(err error) {
	if err != nil {
		os.Exit(1)
	}
}

///////////////////////////////////////////////////////////////////////////////

func main() {
	cobra.OnInitialize()

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVarP(&kind, "kind", "k", "bar", `Archive kind: "bar" or "tick"`)

	rootCmd.AddCommand(jsonCmd)

	rootCmd.AddCommand(parquetCmd)
	parquetCmd.Flags().StringVarP(&destDir, "dest", "d", "", "Destination directory for the .parquet output")
	parquetCmd.MarkFlagRequired("dest")

	rootCmd.AddCommand(splitCmd)
	splitCmd.Flags().StringVarP(&destDir, "dest", "d", "", "Destination directory")
	splitCmd.Flags().StringVarP(&code, "code", "c", "", "Contract code (used to name the per-day output file)")
	splitCmd.MarkFlagRequired("dest")
	splitCmd.MarkFlagRequired("code")

	err := rootCmd.Execute()
	requireNoErrorWithoutPrint(err)
}

///////////////////////////////////////////////////////////////////////////////

var rootCmd = &cobra.Command{
	Use:   "wt-export",
	Short: "wt-export reads WonderTrader .dsb archives and exports them",
	Long:  "wt-export reads WonderTrader .dsb bar/tick archives and exports them as JSON or Parquet",
}

///////////////////////////////////////////////////////////////////////////////

var jsonCmd = &cobra.Command{
	Use:   "json file...",
	Short: `Prints the specified archive's records as newline-delimited JSON`,
	Long:  `Prints the specified archive's records as newline-delimited JSON`,
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		for _, sourceFile := range args {
			var err error
			if kind == "tick" {
				err = export.WriteTickArchiveAsJson(sourceFile, os.Stdout)
			} else {
				err = export.WriteBarArchiveAsJson(sourceFile, os.Stdout)
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: reading %s: %s\n", sourceFile, err.Error())
			}
		}
	},
}

///////////////////////////////////////////////////////////////////////////////

var parquetCmd = &cobra.Command{
	Use:   "parquet file...",
	Short: `Converts the specified archives to Parquet files alongside them in --dest`,
	Long:  `Converts the specified archives to Parquet files alongside them in --dest`,
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := os.MkdirAll(destDir, os.ModePerm); err != nil {
			fmt.Fprintf(os.Stderr, "error: dest directory creation failed with: %s\n", err.Error())
			os.Exit(1)
		}
		for _, sourceFile := range args {
			base := strings.TrimSuffix(filepath.Base(sourceFile), filepath.Ext(sourceFile))
			destFile := filepath.Join(destDir, base+".parquet")
			var err error
			if kind == "tick" {
				err = export.WriteTickArchiveAsParquet(sourceFile, destFile)
			} else {
				err = export.WriteBarArchiveAsParquet(sourceFile, destFile)
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "error: converting %s: %s\n", sourceFile, err.Error())
			} else if verbose {
				fmt.Fprintf(os.Stderr, "wrote '%s'\n", destFile)
			}
		}
	},
}

///////////////////////////////////////////////////////////////////////////////

var splitCmd = &cobra.Command{
	Use:   "split file",
	Short: `Splits a continuous bar archive into "<dest>/Y/M/D/<code>.json" per-day files`,
	Long:  `Splits a continuous bar archive into "<dest>/Y/M/D/<code>.json" per-day files`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := export.SplitBarArchiveByDate(args[0], code, destDir); err != nil {
			fmt.Fprintf(os.Stderr, "error: splitting %s: %s\n", args[0], err.Error())
			os.Exit(1)
		}
	},
}
