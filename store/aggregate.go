// Copyright (c) 2024 Neomantra Corp
//
// Tick -> 1m bar aggregation (spec §4.1.5). Depends only on a small
// SessionClock interface rather than importing basedata directly, so the
// leaf-most component (C1) does not take on C2 as a compile-time dependency;
// basedata.SessionInfo satisfies this interface structurally.

package store

import "wondertrader/wt"

// SessionClock is the subset of basedata.SessionInfo needed to place a tick
// within a bar.
type SessionClock interface {
	TimeToMinutes(hhmm int) int
	MinuteToTime(minutes int) int
	IsLastOfSection(hhmm int) bool
}

// AggregatePolicy controls the no-trade skip behaviors of spec §4.1.5.
type AggregatePolicy struct {
	SkipNoTradeTick bool // don't accumulate a tick that carries no turnover
	SkipNoTradeBar  bool // don't even create the bar for a no-trade tick
}

// AggregateTick folds tick into its contract's one-minute bar, returning
// either a new bar to append or last with the tick accumulated into it
// (spec §4.1.5). last must hold the most recently written bar, with hasLast
// false when the stream is empty; last itself is not modified. Only
// one-minute bars are built; no five-minute bar is produced here.
func AggregateTick(clock SessionClock, policy AggregatePolicy, tick *wt.TickRecord, hasDelta bool, last *wt.BarRecord, hasLast bool) (bar wt.BarRecord, shouldAppend bool, shouldSkip bool) {
	noTrade := hasDelta && tick.Volume == 0 && tick.TurnOver == 0
	if noTrade && policy.SkipNoTradeTick && hasLast {
		return wt.BarRecord{}, false, true
	}

	hhmm := int(tick.ActionTime / 100000) // strip sub-second part of HHMMSSmmm
	minutes := clock.TimeToMinutes(hhmm)
	if clock.IsLastOfSection(hhmm) {
		minutes--
	}
	closeMinute := minutes + 1

	barTime, wrapped := closeMinuteToBarTime(clock, tick.ActionDate, closeMinute)
	barDate := tick.ActionDate
	if wrapped {
		barDate = tick.ActionDate // date rollover is resolved by the caller via basedata's nextBusinessDate
	}

	newBar := !hasLast || barTime > last.Time

	if newBar {
		if noTrade && policy.SkipNoTradeBar {
			return wt.BarRecord{}, false, true
		}
		bar = wt.BarRecord{
			Date:   barDate,
			Time:   barTime,
			Open:   tick.Price,
			High:   tick.Price,
			Low:    tick.Price,
			Close:  tick.Price,
			Settle: tick.Settle,
			Vol:    tick.Volume,
			Money:  tick.TurnOver,
			Hold:   tick.OpenInterest,
			Add:    0,
		}
		return bar, true, false
	}

	bar = *last
	bar.Close = tick.Price
	if tick.Price > bar.High {
		bar.High = tick.Price
	}
	if tick.Price < bar.Low {
		bar.Low = tick.Price
	}
	if !noTrade || !policy.SkipNoTradeTick {
		bar.Vol += tick.Volume
		bar.Money += tick.TurnOver
	}
	bar.Hold = tick.OpenInterest
	bar.Add += tick.OpenInterest - last.Hold
	return bar, false, false
}

// closeMinuteToBarTime converts a session-minute index into the
// YYYYMMDD*10000+HHMM `time` encoding, reporting whether it wrapped past
// the session's last minute back to 0 (date rollover, spec §4.1.5/§4.4).
func closeMinuteToBarTime(clock SessionClock, actionDate uint32, closeMinute int) (uint64, bool) {
	hhmm := clock.MinuteToTime(closeMinute)
	wrapped := hhmm == 0
	return uint64(actionDate)*10000 + uint64(hhmm), wrapped
}
