// Copyright (c) 2024 Neomantra Corp
//
// Position bookkeeping (spec §3 "PositionDetail"/"PositionInfo", §8
// property 1 "position identity", property 3 "FIFO invariant").

package strategy

import "wondertrader/wt"

// PositionDetail is one FIFO lot.
type PositionDetail struct {
	Direction     wt.Direction
	OpenPrice     float64
	OpenTime      uint64
	OpenTDate     uint32
	Volume        float64
	ClosedVolume  float64
	ClosedProfit  float64
	PositionProfit float64
	MaxProfit     float64
	MaxLoss       float64
	MaxPrice      float64
	MinPrice      float64
	OpenTag       string
	OpenBarNo     int
}

// PositionInfo is the per-contract aggregate over its details.
type PositionInfo struct {
	Code             string
	Volume           float64 // signed net volume
	OpenCost         float64
	DynProfit        float64
	TotalClosedProfit float64
	Frozen           float64 // T+1 unavailable portion
	LastEnterTime    uint64
	LastExitTime     uint64
	ValidIdx         int // index of first non-fully-closed detail
	Details          []PositionDetail
}

// NetVolume recomputes the signed net volume from details, the invariant
// checked by spec §8 property 1.
func (p *PositionInfo) NetVolume() float64 {
	var sum float64
	for _, d := range p.Details {
		sum += d.Volume * d.Direction.Sign()
	}
	return sum
}

// ResetFrozenForSession zeroes Frozen at session-begin (spec §3 lifecycle).
func (p *PositionInfo) ResetFrozenForSession() {
	p.Frozen = 0
}

// AppendDetail appends a freshly opened lot (spec §4.5.3 "stacking" branch).
func (p *PositionInfo) AppendDetail(d PositionDetail) {
	p.Details = append(p.Details, d)
}

// AdvanceValidIdx skips over fully-closed details at the front, the lazy
// valid_idx cursor of spec §3.
func (p *PositionInfo) AdvanceValidIdx() {
	for p.ValidIdx < len(p.Details) && p.Details[p.ValidIdx].Volume == 0 {
		p.ValidIdx++
	}
}

// GetPositionQty implements spec §4.5.1 `get_position`.
func (p *PositionInfo) GetPositionQty(onlyValid bool, userTag string) float64 {
	if userTag != "" {
		var sum float64
		for _, d := range p.Details {
			if d.OpenTag == userTag {
				sum += d.Volume
			}
		}
		return sum
	}
	if onlyValid {
		return p.Volume - p.Frozen
	}
	return p.Volume
}
