// Copyright (c) 2024 Neomantra Corp
//
// UFT context specialization (spec §4.5.6). Rounds are persisted to an
// mmap-backed `round.membin` file (RoundBin) for cross-restart recovery;
// positions are held in memory only, and there are no order or trade
// records or files here. `Round` supplements the spec per SPEC_FULL.md §C.4, grounded on
// original_source/src/WtUftCore/UftStraContext.cpp. Persistence reuses the
// same edsrzf/mmap-go mapping concern as store/rtblock.go.

package strategy

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/edsrzf/mmap-go"
	"gopkg.in/yaml.v3"
)

// Round groups one open and its eventual close into a tradable round,
// the record shape the spec names (`round.membin`, §4.5.6) but never defines.
type Round struct {
	RoundID    uint64
	Code       [32]byte
	OpenTime   uint64
	CloseTime  uint64
	OpenPrice  float64
	ClosePrice float64
	Volume     float64
	Profit     float64
	Closed     uint8
}

const roundSize = 8 + 32 + 8 + 8 + 8 + 8 + 8 + 8 + 1

func (r *Round) putRaw(b []byte) {
	off := 0
	binary.LittleEndian.PutUint64(b[off:off+8], r.RoundID)
	off += 8
	copy(b[off:off+32], r.Code[:])
	off += 32
	binary.LittleEndian.PutUint64(b[off:off+8], r.OpenTime)
	off += 8
	binary.LittleEndian.PutUint64(b[off:off+8], r.CloseTime)
	off += 8
	binary.LittleEndian.PutUint64(b[off:off+8], math.Float64bits(r.OpenPrice))
	off += 8
	binary.LittleEndian.PutUint64(b[off:off+8], math.Float64bits(r.ClosePrice))
	off += 8
	binary.LittleEndian.PutUint64(b[off:off+8], math.Float64bits(r.Volume))
	off += 8
	binary.LittleEndian.PutUint64(b[off:off+8], math.Float64bits(r.Profit))
	off += 8
	b[off] = r.Closed
}

func (r *Round) fillRaw(b []byte) {
	off := 0
	r.RoundID = binary.LittleEndian.Uint64(b[off : off+8])
	off += 8
	copy(r.Code[:], b[off:off+32])
	off += 32
	r.OpenTime = binary.LittleEndian.Uint64(b[off : off+8])
	off += 8
	r.CloseTime = binary.LittleEndian.Uint64(b[off : off+8])
	off += 8
	r.OpenPrice = math.Float64frombits(binary.LittleEndian.Uint64(b[off : off+8]))
	off += 8
	r.ClosePrice = math.Float64frombits(binary.LittleEndian.Uint64(b[off : off+8]))
	off += 8
	r.Volume = math.Float64frombits(binary.LittleEndian.Uint64(b[off : off+8]))
	off += 8
	r.Profit = math.Float64frombits(binary.LittleEndian.Uint64(b[off : off+8]))
	off += 8
	r.Closed = b[off]
}

///////////////////////////////////////////////////////////////////////////////

// RoundBin is the mmap-backed `round.membin` file: a flat, rewrite-in-place
// array of Rounds keyed by slot index (append-only within a tdate).
type RoundBin struct {
	file    *os.File
	mapping mmap.MMap
	count   int
}

// OpenRoundBin opens or creates a round.membin sized for maxRounds entries.
func OpenRoundBin(path string, maxRounds int) (*RoundBin, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	total := int64(4 + maxRounds*roundSize)
	count := 0
	if info.Size() == 0 {
		if err := f.Truncate(total); err != nil {
			f.Close()
			return nil, err
		}
	} else {
		buf := make([]byte, 4)
		if _, err := f.ReadAt(buf, 0); err != nil {
			f.Close()
			return nil, err
		}
		count = int(binary.LittleEndian.Uint32(buf))
	}
	m, err := mmap.Map(f, mmap.RDWR, 0)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &RoundBin{file: f, mapping: m, count: count}, nil
}

// Append adds a new round, growing the logical count.
func (b *RoundBin) Append(r Round) {
	off := 4 + b.count*roundSize
	r.putRaw(b.mapping[off : off+roundSize])
	b.count++
	binary.LittleEndian.PutUint32(b.mapping[0:4], uint32(b.count))
}

// UpdateAt overwrites the round at index i (e.g. marking it closed).
func (b *RoundBin) UpdateAt(i int, r Round) {
	off := 4 + i*roundSize
	r.putRaw(b.mapping[off : off+roundSize])
}

// All reconstructs every persisted round, used on restart-within-tdate reload.
func (b *RoundBin) All() []Round {
	out := make([]Round, b.count)
	for i := 0; i < b.count; i++ {
		off := 4 + i*roundSize
		out[i].fillRaw(b.mapping[off : off+roundSize])
	}
	return out
}

// ResetForNewTDate zeroes the round count on tdate change (spec §4.5.6).
func (b *RoundBin) ResetForNewTDate() {
	b.count = 0
	binary.LittleEndian.PutUint32(b.mapping[0:4], 0)
}

func (b *RoundBin) Close() error {
	if err := b.mapping.Unmap(); err != nil {
		return err
	}
	return b.file.Close()
}

///////////////////////////////////////////////////////////////////////////////

// UFTContext specializes Context with membin-backed persistence.
type UFTContext struct {
	*Context
	Rounds *RoundBin
}

// NewUFTContext wraps ctx with round-tracking persistence.
func NewUFTContext(ctx *Context, rounds *RoundBin) *UFTContext {
	return &UFTContext{Context: ctx, Rounds: rounds}
}

// ReloadWithinTDate reconstructs PositionInfo from non-zero-volume details
// on a same-tdate restart (spec §4.5.6).
func (u *UFTContext) ReloadWithinTDate() {
	for _, p := range u.Positions {
		var kept []PositionDetail
		for _, d := range p.Details {
			if d.Volume != 0 {
				kept = append(kept, d)
			}
		}
		p.Details = kept
		p.ValidIdx = 0
		p.Volume = p.NetVolume()
	}
}

// RolloverTDate carries forward only non-zero details, resets closed_profit
// fields, and zeroes the round count (spec §4.5.6 "On tdate change").
// UFTContext holds no order or trade records, so none are reset.
func (u *UFTContext) RolloverTDate() {
	u.ReloadWithinTDate()
	for _, p := range u.Positions {
		p.TotalClosedProfit = 0
		for i := range p.Details {
			p.Details[i].ClosedProfit = 0
		}
	}
	if u.Rounds != nil {
		u.Rounds.ResetForNewTDate()
	}
}

// manualOverrideDoc is the `mannual.yaml` sidecar shape (spec §4.5.6).
type manualOverrideDoc struct {
	Positions map[string]float64 `yaml:"positions"` // code -> net volume override
}

// ApplyManualOverride loads a mannual.yaml sidecar if present, overwrites
// matching positions' net volume, and renames the sidecar with a timestamp
// suffix so it is not reapplied on the next restart (spec §4.5.6).
func (u *UFTContext) ApplyManualOverride(dir string, now time.Time) error {
	path := filepath.Join(dir, "mannual.yaml")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var doc manualOverrideDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	for code, vol := range doc.Positions {
		p := u.position(code)
		p.Volume = vol
	}

	renamed := filepath.Join(dir, fmt.Sprintf("mannual.yaml.%d", now.Unix()))
	return os.Rename(path, renamed)
}
