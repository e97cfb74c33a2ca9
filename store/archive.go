// Copyright (c) 2024 Neomantra Corp
//
// Compressed append-only archive files (spec §4.1.2, §6.1, §6.2) and the
// marker.ini idempotency record. Compression reuses wt.ZstdCompress, the
// same library wrapper the teacher uses in compressed_io.go for its own
// archive files.

package store

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"wondertrader/wt"
)

// ArchiveLayout names the archive path conventions of spec §6.1.
type ArchiveLayout struct {
	Root string // e.g. "his"
}

func (l ArchiveLayout) barPath(stream, exchg, code string) string {
	return filepath.Join(l.Root, stream, exchg, code+".dsb")
}

func (l ArchiveLayout) dailyPath(stream, exchg string, tdate uint32, code string) string {
	return filepath.Join(l.Root, stream, exchg, strconv.Itoa(int(tdate)), code+".dsb")
}

// IsBarStream reports whether stream is a continuous-across-days bar archive.
func IsBarStream(t wt.BlockType) bool {
	switch t {
	case wt.BlockType_Bar1Min, wt.BlockType_Bar5Min, wt.BlockType_BarDaily:
		return true
	}
	return false
}

func streamDirName(t wt.BlockType) string {
	switch t {
	case wt.BlockType_Tick:
		return "ticks"
	case wt.BlockType_OrderQueue:
		return "queue"
	case wt.BlockType_OrderDetail:
		return "orders"
	case wt.BlockType_Transaction:
		return "trans"
	case wt.BlockType_Bar1Min:
		return "min1"
	case wt.BlockType_Bar5Min:
		return "min5"
	case wt.BlockType_BarDaily:
		return "d1"
	}
	return "unknown"
}

// ArchivePath returns the on-disk path for a stream's archive.
func (l ArchiveLayout) ArchivePath(t wt.BlockType, exchg, code string, tdate uint32) string {
	stream := streamDirName(t)
	if IsBarStream(t) {
		return l.barPath(stream, exchg, code)
	}
	return l.dailyPath(stream, exchg, tdate, code)
}

///////////////////////////////////////////////////////////////////////////////

// Marker is the session-close idempotency record (`marker.ini`).
type Marker struct {
	mu   sync.Mutex
	path string
	vals map[string]uint32
}

// OpenMarker loads (or creates) the marker file at path.
func OpenMarker(path string) (*Marker, error) {
	m := &Marker{path: path, vals: map[string]uint32{}}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return m, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "[") || !strings.Contains(line, "=") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		tdate, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			continue
		}
		m.vals[strings.TrimSpace(parts[0])] = uint32(tdate)
	}
	return m, sc.Err()
}

// IsSessionProceeded reports whether sessionID has already been closed for
// a tdate >= today (spec §6.2 `isSessionProceeded`).
func (m *Marker) IsSessionProceeded(sessionID string, today uint32) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.vals[sessionID] >= today
}

// Mark records sessionID as closed through tdate and persists the file.
func (m *Marker) Mark(sessionID string, tdate uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vals[sessionID] = tdate

	tmp := m.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "[markers]")
	for k, v := range m.vals {
		fmt.Fprintf(w, "%s=%d\n", k, v)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, m.path)
}

///////////////////////////////////////////////////////////////////////////////

// SessionCloser runs the archive-rollover task of spec §4.1.2.
type SessionCloser struct {
	Layout ArchiveLayout
	Marker *Marker
}

// CloseTickLikeStream implements §4.1.2 steps 1-5 for per-day streams
// (ticks/L2): compress the RT block's committed records and write a new
// per-tdate archive file, then zero the RT block.
func (sc *SessionCloser) CloseTickLikeStream(block *RTBlock, exchg, code string, tdate uint32) error {
	raw := block.RawRecords()
	compressed, err := wt.ZstdCompress(raw)
	if err != nil {
		return err
	}

	path := sc.Layout.ArchivePath(block.blockType, exchg, code, tdate)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := writeArchiveFile(path, block.blockType, len(raw)/block.recSize, compressed); err != nil {
		return err
	}

	block.ResetForNewSession(0)
	return nil
}

// CloseBarStream implements §4.1.2 step 4: read the existing continuous
// archive, decompress, append the RT block's new bars (deduplicated by
// date/time), recompress, and write back atomically.
func (sc *SessionCloser) CloseBarStream(block *RTBlock, exchg, code string) error {
	path := sc.Layout.ArchivePath(block.blockType, exchg, code, 0)

	existing, err := readArchiveRecords(path, wt.BarRecord_Size)
	if err != nil && !os.IsNotExist(err) {
		return err
	}

	newRaw := block.RawRecords()
	n := len(newRaw) / wt.BarRecord_Size
	var newBars []wt.BarRecord
	for i := 0; i < n; i++ {
		var br wt.BarRecord
		off := i * wt.BarRecord_Size
		if err := br.FillRaw(newRaw[off : off+wt.BarRecord_Size]); err != nil {
			return err
		}
		newBars = append(newBars, br)
	}

	merged := mergeBarsDedup(existing, newBars)

	buf := make([]byte, len(merged)*wt.BarRecord_Size)
	for i, br := range merged {
		br.PutRaw(buf[i*wt.BarRecord_Size : (i+1)*wt.BarRecord_Size])
	}
	compressed, err := wt.ZstdCompress(buf)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	if err := writeArchiveFile(path, block.blockType, len(merged), compressed); err != nil {
		return err
	}

	block.ResetForNewSession(0)
	return nil
}

// mergeBarsDedup appends newBars onto existing, skipping any whose (date,
// time) pair is already present, per spec §4.1.2 step 4.
func mergeBarsDedup(existing, newBars []wt.BarRecord) []wt.BarRecord {
	seen := make(map[[2]uint64]bool, len(existing))
	key := func(b wt.BarRecord) [2]uint64 { return [2]uint64{uint64(b.Date), b.Time} }
	for _, b := range existing {
		seen[key(b)] = true
	}
	out := append([]wt.BarRecord{}, existing...)
	for _, b := range newBars {
		k := key(b)
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, b)
	}
	return out
}

const archiveHeaderSize = wt.BlockHeader_Size + 4 + 8 // header + record count + compressed size

func writeArchiveFile(path string, t wt.BlockType, recordCount int, compressed []byte) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	defer f.Close()

	hdr := wt.BlockHeader{Type: t, Version: wt.CmpV2}
	buf := make([]byte, archiveHeaderSize)
	hdr.PutRaw(buf[0:wt.BlockHeader_Size])
	off := wt.BlockHeader_Size
	putUint32(buf[off:off+4], uint32(recordCount))
	off += 4
	putUint64(buf[off:off+8], uint64(len(compressed)))
	if _, err := f.Write(buf); err != nil {
		return err
	}
	if _, err := f.Write(compressed); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// readArchiveRecords reads and decompresses an archive file's bar records.
func readArchiveRecords(path string, recSize int) ([]wt.BarRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) < archiveHeaderSize {
		return nil, wt.ErrMalformedRecord
	}
	var hdr wt.BlockHeader
	if err := hdr.FillRaw(data[0:wt.BlockHeader_Size]); err != nil {
		return nil, err
	}
	off := wt.BlockHeader_Size
	count := int(getUint32(data[off : off+4]))
	off += 4
	compressedSize := int(getUint64(data[off : off+8]))
	off += 8
	compressed := data[off : off+compressedSize]

	raw, err := wt.ZstdDecompress(compressed)
	if err != nil {
		return nil, err
	}
	bars := make([]wt.BarRecord, 0, count)
	for i := 0; i < count; i++ {
		var br wt.BarRecord
		o := i * recSize
		if err := br.FillRaw(raw[o : o+recSize]); err != nil {
			return nil, err
		}
		bars = append(bars, br)
	}
	return bars, nil
}

// ReadBarArchive reads and decompresses a bar (.dsb) archive file, for
// export/inspection tooling (cmd/wt-export, cmd/wt-hist).
func ReadBarArchive(path string) ([]wt.BarRecord, error) {
	return readArchiveRecords(path, wt.BarRecord_Size)
}

// ReadTickArchive reads and decompresses a tick (.dsb) archive file.
func ReadTickArchive(path string) ([]wt.TickRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) < archiveHeaderSize {
		return nil, wt.ErrMalformedRecord
	}
	var hdr wt.BlockHeader
	if err := hdr.FillRaw(data[0:wt.BlockHeader_Size]); err != nil {
		return nil, err
	}
	off := wt.BlockHeader_Size
	count := int(getUint32(data[off : off+4]))
	off += 4
	compressedSize := int(getUint64(data[off : off+8]))
	off += 8
	compressed := data[off : off+compressedSize]

	raw, err := wt.ZstdDecompress(compressed)
	if err != nil {
		return nil, err
	}
	ticks := make([]wt.TickRecord, 0, count)
	for i := 0; i < count; i++ {
		var tr wt.TickRecord
		o := i * wt.TickRecord_Size
		if err := tr.FillRaw(raw[o : o+wt.TickRecord_Size]); err != nil {
			return nil, err
		}
		ticks = append(ticks, tr)
	}
	return ticks, nil
}

///////////////////////////////////////////////////////////////////////////////

// WriteSessionSnapshot writes the session-close CSV snapshots of last tick
// and open interest per contract (spec §4.1.2 step 6, supplemented from
// original_source/WtDataWriter.cpp per SPEC_FULL.md §C item 5).
func WriteSessionSnapshot(path string, ticks map[string]wt.TickRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	fmt.Fprintln(w, "code,price,open_interest,trading_date")
	for code, t := range ticks {
		fmt.Fprintf(w, "%s,%g,%g,%d\n", code, t.Price, t.OpenInterest, t.TradingDate)
	}
	return w.Flush()
}
