// Copyright (c) 2024 Neomantra Corp
//
// Tick simulation from OHLC bars (spec §4.3.2 "Tick simulation").

package replay

import "wondertrader/wt"

// SimulatedTick is a pseudo-tick synthesized from a bar's OHLC corners.
type SimulatedTick struct {
	Tick   wt.TickRecord
	PxType wt.PxType
}

// SynthesizeTicksFromBar produces the four pseudo-ticks O/H/L/C for a bar
// when a symbol's archive has bars but no recorded ticks for the day.
// pxType==3 (close) must be treated by callers as the bar-close tick: no
// further fills are possible within that bar after it.
func SynthesizeTicksFromBar(exchg, code string, bar wt.BarRecord) []SimulatedTick {
	prices := [4]float64{bar.Open, bar.High, bar.Low, bar.Close}
	pxTypes := [4]wt.PxType{wt.PxType_Open, wt.PxType_High, wt.PxType_Low, wt.PxType_Close}

	out := make([]SimulatedTick, 0, 4)
	for i, px := range prices {
		t := wt.TickRecord{
			Price:        px,
			Open:         bar.Open,
			High:         bar.High,
			Low:          bar.Low,
			TotalVolume:  bar.Vol,
			Volume:       bar.Vol / 4,
			OpenInterest: bar.Hold,
			ActionDate:   uint32(bar.Date),
			TradingDate:  uint32(bar.Date),
		}
		copy(t.Exchg[:], exchg)
		copy(t.Code[:], code)
		out = append(out, SimulatedTick{Tick: t, PxType: pxTypes[i]})
	}
	return out
}

// IsBarClose reports whether a simulated tick is the bar-close tick, past
// which no further fills within that bar are possible.
func (s SimulatedTick) IsBarClose() bool {
	return s.PxType == wt.PxType_Close
}
