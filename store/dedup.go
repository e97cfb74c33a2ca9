// Copyright (c) 2024 Neomantra Corp
//
// Tick deduplication and time-normalization rules (spec §4.1.4).

package store

import "wondertrader/wt"

// DedupDecision is the outcome of checking a new tick against the cached
// last tick for its (exchange, code).
type DedupDecision int

const (
	// DedupAccept: the tick is new data and should be written/aggregated.
	DedupAccept DedupDecision = iota
	// DedupRejectStale: the tick is non-monotone or its trading date
	// regressed against session arithmetic; drop with a warning (wt.ErrStaleTick).
	DedupRejectStale
	// DedupBumpTime: identical-looking tick; caller must add 200ms to
	// ActionTime before accepting (Zhengzhou second-granularity collision).
	DedupBumpTime
)

// bumpTimeMillis is the Zhengzhou-exchange collision nudge (spec §4.1.4).
const bumpTimeMillis = 200

// CheckTick applies the dedup/time-normalization rules to new against the
// cached last tick for the same (exchange, code). computedTradingDate is
// the tdate derived from session arithmetic for the new tick's action time.
func CheckTick(cached, new *wt.TickRecord, computedTradingDate uint32) DedupDecision {
	if computedTradingDate > new.TradingDate {
		return DedupRejectStale
	}
	if cached == nil {
		return DedupAccept
	}
	if new.TotalVolume < cached.TotalVolume {
		return DedupRejectStale
	}
	if new.ActionDate == cached.ActionDate &&
		new.ActionTime <= cached.ActionTime &&
		new.TotalVolume >= cached.TotalVolume {
		return DedupBumpTime
	}
	return DedupAccept
}

// ApplyBump adds the collision nudge to a tick's ActionTime in place.
func ApplyBump(t *wt.TickRecord) {
	t.ActionTime += bumpTimeMillis
}

// IsNewTradingDay reports whether new starts a new tdate relative to cached,
// the trigger for synthesizing delta fields from totals (spec §4.1.4 last rule).
func IsNewTradingDay(cached, new *wt.TickRecord) bool {
	return cached == nil || new.TradingDate > cached.TradingDate
}

// SynthesizeDeltas computes Volume/TurnOver for the first tick of a new
// tdate, where the feed only carries cumulative totals.
func SynthesizeDeltas(t *wt.TickRecord) {
	t.Volume = t.TotalVolume
	t.TurnOver = t.TotalTurnover
}
