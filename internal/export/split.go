// Copyright (c) 2024 Neomantra Corp
//
// Splits one continuous bar archive into per-day files, adapted from the
// teacher's internal/file/split.go per-instrument/date partitioning idiom
// (same "<dest>/Y/M/D/<name>" layout, retargeted from dbn.RHeader.TsEvent's
// nanosecond timestamp onto wt.BarRecord.Date).

package export

import (
	"fmt"
	"os"
	"path/filepath"

	"wondertrader/store"
)

const ymdPathFormat = "%04d" + string(filepath.Separator) + "%02d" + string(filepath.Separator) + "%02d"

// SplitBarArchiveByDate reads a continuous bar (.dsb) archive and writes one
// JSON file per trading date under destDir/YYYY/MM/DD/<code>.json.
func SplitBarArchiveByDate(sourceFile, code, destDir string) error {
	bars, err := store.ReadBarArchive(sourceFile)
	if err != nil {
		return fmt.Errorf("failed to read archive: %w", err)
	}

	var curDate uint32
	var f *os.File
	defer func() {
		if f != nil {
			f.Close()
		}
	}()

	for i := range bars {
		date := bars[i].Date
		if f == nil || date != curDate {
			if f != nil {
				f.Close()
			}
			year, month, day := date/10000, (date/100)%100, date%100
			datePath := fmt.Sprintf(ymdPathFormat, year, month, day)
			destPath := filepath.Join(destDir, datePath)
			if err := os.MkdirAll(destPath, os.ModePerm); err != nil {
				return fmt.Errorf("failed to create dest path '%s': %w", destPath, err)
			}
			fullDestPath := filepath.Join(destPath, code+".json")
			f, err = os.Create(fullDestPath)
			if err != nil {
				return fmt.Errorf("failed to create dest file '%s': %w", fullDestPath, err)
			}
			curDate = date
		}
		if err := WriteAsJson(&bars[i], f); err != nil {
			return fmt.Errorf("failed to write record: %w", err)
		}
	}
	return nil
}
