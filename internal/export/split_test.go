// Copyright (c) 2024 Neomantra Corp

package export_test

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"wondertrader/internal/export"
	"wondertrader/store"
	"wondertrader/wt"
)

// buildBarArchive writes a real continuous bar (.dsb) archive under dir via
// the same RTBlock-append-then-close path the engine uses at session close,
// so the export tests exercise the archive's actual on-disk format rather
// than a hand-rolled stand-in.
func buildBarArchive(t *testing.T, dir, exchg, code string, bars []wt.BarRecord) string {
	t.Helper()
	rtPath := filepath.Join(dir, "rt.dmb")
	block, err := store.OpenRTBlock(rtPath, wt.BlockType_Bar1Min, 240)
	if err != nil {
		t.Fatalf("OpenRTBlock failed: %s", err)
	}
	defer block.Close()

	for i := range bars {
		if err := block.Append(&bars[i]); err != nil {
			t.Fatalf("Append failed: %s", err)
		}
	}

	closer := store.SessionCloser{Layout: store.ArchiveLayout{Root: dir}}
	if err := closer.CloseBarStream(block, exchg, code); err != nil {
		t.Fatalf("CloseBarStream failed: %s", err)
	}
	return closer.Layout.ArchivePath(wt.BlockType_Bar1Min, exchg, code, 0)
}

func TestSplitBarArchiveByDate_OneFilePerTradingDate(t *testing.T) {
	dir := t.TempDir()
	bars := []wt.BarRecord{
		{Date: 20240101, Time: 202401010931, Close: 100},
		{Date: 20240101, Time: 202401010932, Close: 101},
		{Date: 20240102, Time: 202401020931, Close: 102},
	}
	archivePath := buildBarArchive(t, dir, "SHFE", "au2412", bars)

	destDir := filepath.Join(dir, "split")
	if err := export.SplitBarArchiveByDate(archivePath, "au2412", destDir); err != nil {
		t.Fatalf("SplitBarArchiveByDate failed: %s", err)
	}

	day1 := filepath.Join(destDir, "2024", "01", "01", "au2412.json")
	day2 := filepath.Join(destDir, "2024", "01", "02", "au2412.json")

	data1, err := os.ReadFile(day1)
	if err != nil {
		t.Fatalf("expected day-1 file to exist: %s", err)
	}
	lines := bytes.Count(data1, []byte("\n"))
	if lines != 2 {
		t.Errorf("day-1 file has %d lines, want 2", lines)
	}

	data2, err := os.ReadFile(day2)
	if err != nil {
		t.Fatalf("expected day-2 file to exist: %s", err)
	}
	if bytes.Count(data2, []byte("\n")) != 1 {
		t.Errorf("day-2 file should have exactly 1 record")
	}
}

func TestWriteBarArchiveAsJson_OneObjectPerLine(t *testing.T) {
	dir := t.TempDir()
	bars := []wt.BarRecord{
		{Date: 20240101, Close: 100},
		{Date: 20240101, Close: 101},
	}
	archivePath := buildBarArchive(t, dir, "SHFE", "au2412", bars)

	var buf bytes.Buffer
	if err := export.WriteBarArchiveAsJson(archivePath, &buf); err != nil {
		t.Fatalf("WriteBarArchiveAsJson failed: %s", err)
	}

	scanner := bufio.NewScanner(&buf)
	var count int
	for scanner.Scan() {
		if !bytes.Contains(scanner.Bytes(), []byte(`"Date":20240101`)) {
			t.Errorf("line %q missing expected Date field", scanner.Text())
		}
		count++
	}
	if count != 2 {
		t.Errorf("got %d lines, want 2", count)
	}
}
