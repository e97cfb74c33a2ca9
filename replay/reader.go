// Copyright (c) 2024 Neomantra Corp
//
// Data reader contract (spec §4.3.1): serves non-owning slice views that
// concatenate archive tail + RT block tail to callers.

package replay

import "wondertrader/wt"

// TickSlice is a non-owning view over tick records, valid until the next
// write from the producing thread to the same stream (spec §4.3.1).
type TickSlice struct {
	Records []wt.TickRecord
}

// KlineSlice is a non-owning view over bar records.
type KlineSlice struct {
	Records []wt.BarRecord
}

// DataReader is the interface strategies and the engine use to pull
// historical + live-tail data for a code (spec §4.3.1).
type DataReader interface {
	// ReadTickSlice returns up to count ticks for code ending at etime
	// (0 means "up to now").
	ReadTickSlice(code string, count int, etime uint64) (TickSlice, error)
	// ReadKlineSlice returns up to count bars of period ("m1"|"m5"|"d1")
	// for code ending at etime.
	ReadKlineSlice(code, period string, count int, etime uint64) (KlineSlice, error)
}

// ArchiveSource supplies the archived (historical) tail of a stream.
type ArchiveSource interface {
	TailTicks(code string, count int, etime uint64) ([]wt.TickRecord, error)
	TailBars(code, period string, count int, etime uint64) ([]wt.BarRecord, error)
}

// RTSource supplies the RT-block (same-session) tail of a stream.
type RTSource interface {
	TailTicks(code string, count int) ([]wt.TickRecord, error)
	TailBars(code, period string, count int) ([]wt.BarRecord, error)
}

// LiveReader concatenates an ArchiveSource tail with an RTSource tail,
// implementing the §4.3.1 contract.
type LiveReader struct {
	Archive ArchiveSource
	RT      RTSource
}

func NewLiveReader(archive ArchiveSource, rt RTSource) *LiveReader {
	return &LiveReader{Archive: archive, RT: rt}
}

func (r *LiveReader) ReadTickSlice(code string, count int, etime uint64) (TickSlice, error) {
	rtTail, err := r.RT.TailTicks(code, count)
	if err != nil {
		return TickSlice{}, err
	}
	if len(rtTail) >= count || etime != 0 {
		return TickSlice{Records: trimTicks(rtTail, count)}, nil
	}
	remaining := count - len(rtTail)
	archTail, err := r.Archive.TailTicks(code, remaining, etime)
	if err != nil {
		return TickSlice{}, err
	}
	out := append(archTail, rtTail...)
	return TickSlice{Records: trimTicks(out, count)}, nil
}

func (r *LiveReader) ReadKlineSlice(code, period string, count int, etime uint64) (KlineSlice, error) {
	rtTail, err := r.RT.TailBars(code, period, count)
	if err != nil {
		return KlineSlice{}, err
	}
	if len(rtTail) >= count || etime != 0 {
		return KlineSlice{Records: trimBars(rtTail, count)}, nil
	}
	remaining := count - len(rtTail)
	archTail, err := r.Archive.TailBars(code, period, remaining, etime)
	if err != nil {
		return KlineSlice{}, err
	}
	out := append(archTail, rtTail...)
	return KlineSlice{Records: trimBars(out, count)}, nil
}

func trimTicks(recs []wt.TickRecord, count int) []wt.TickRecord {
	if len(recs) <= count {
		return recs
	}
	return recs[len(recs)-count:]
}

func trimBars(recs []wt.BarRecord, count int) []wt.BarRecord {
	if len(recs) <= count {
		return recs
	}
	return recs[len(recs)-count:]
}
