// Copyright (c) 2024 Neomantra Corp

package export_test

import (
	"os"
	"path/filepath"
	"testing"

	"wondertrader/internal/export"
	"wondertrader/wt"
)

func TestWriteBarArchiveAsParquet_ProducesAValidParquetFile(t *testing.T) {
	dir := t.TempDir()
	bars := []wt.BarRecord{
		{Date: 20240101, Close: 100},
		{Date: 20240101, Close: 101},
	}
	archivePath := buildBarArchive(t, dir, "SHFE", "au2412", bars)

	destPath := filepath.Join(dir, "au2412.parquet")
	if err := export.WriteBarArchiveAsParquet(archivePath, destPath); err != nil {
		t.Fatalf("WriteBarArchiveAsParquet failed: %s", err)
	}

	data, err := os.ReadFile(destPath)
	if err != nil {
		t.Fatalf("expected parquet output file: %s", err)
	}
	if len(data) < 8 {
		t.Fatalf("parquet file too small: %d bytes", len(data))
	}
	// Parquet files are magic-bracketed "PAR1" at both start and end of file.
	if string(data[0:4]) != "PAR1" {
		t.Errorf("missing leading PAR1 magic, got %q", data[0:4])
	}
	if string(data[len(data)-4:]) != "PAR1" {
		t.Errorf("missing trailing PAR1 magic, got %q", data[len(data)-4:])
	}
}
