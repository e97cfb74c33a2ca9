// Copyright (c) 2024 Neomantra Corp
//
// CTA strategy-context adapter (spec §1's engine/strategy wiring, §9
// "Dynamic dispatch"): the concrete ContextSink the engine drives, bridging
// its tick/bar/schedule/session callbacks onto a strategy.Context plus a
// strategy.CTAMocker. Backtest/replay runs resolve fills locally through the
// mocker; live runs additionally route a resolved signal to the broker
// through a trader.Adapter (spec §2 data-flow step (e)), since the mocker
// only ever simulates fills.

package engine

import (
	"log/slog"
	"time"

	"wondertrader/basedata"
	"wondertrader/strategy"
	"wondertrader/trader"
	"wondertrader/wt"
)

// CTAContextAdapter implements ContextSink by delegating to a
// strategy.Context/CTAMocker pair. Construct with a nil Trader for
// backtest/replay (CTAMocker resolves every fill locally); a non-nil Trader
// additionally places live orders for resolved signals and conditional-order
// winners.
type CTAContextAdapter struct {
	log *slog.Logger

	Ctx      *strategy.Context
	Mocker   *strategy.CTAMocker
	Registry *basedata.Registry
	Trader   *trader.Adapter

	// IsSimulated marks replayer-synthesized ticks, selecting range-based
	// conditional-order matching over direct comparator evaluation (spec
	// §4.5.2). Backtest/replay only; live ticks are always real.
	IsSimulated bool

	barNo int
}

// NewCTAContextAdapter wires ctx/mocker into the engine's ContextSink seam.
// traderAdapter may be nil for backtest/replay.
func NewCTAContextAdapter(log *slog.Logger, ctx *strategy.Context, mocker *strategy.CTAMocker, registry *basedata.Registry, traderAdapter *trader.Adapter) *CTAContextAdapter {
	if log == nil {
		log = slog.Default()
	}
	return &CTAContextAdapter{
		log:      log,
		Ctx:      ctx,
		Mocker:   mocker,
		Registry: registry,
		Trader:   traderAdapter,
	}
}

func (a *CTAContextAdapter) ID() string { return a.Ctx.ContextID }

func (a *CTAContextAdapter) contractView(code string) (strategy.ContractView, bool) {
	if a.Registry == nil {
		return strategy.ContractView{}, false
	}
	ci, err := a.Registry.Contract(code)
	if err != nil {
		return strategy.ContractView{}, false
	}
	return strategy.ContractView{
		Code:        ci.FullCode(),
		PriceTick:   ci.PriceTick,
		VolumeScale: ci.VolumeScale,
		FeeRate:     ci.FeeRate,
		IsT1:        ci.IsT1,
		CanShort:    ci.CanShort,
	}, true
}

// OnTick implements ContextSink, translating the engine's per-code tick into
// the mocker's OnTick shape (backtest/replay) or the live order-placement
// path (Trader != nil).
func (a *CTAContextAdapter) OnTick(code string, tick wt.TickRecord) {
	view, ok := a.contractView(code)
	if !ok {
		a.log.Warn("tick for unregistered contract dropped", "code", code, "component", "ctacontext")
		return
	}
	now := uint64(tick.ActionDate)*1_000_000_000 + uint64(tick.ActionTime)

	if a.Trader == nil {
		if err := a.Mocker.OnTick(view, tick.Price, now, a.IsSimulated, false); err != nil {
			a.log.Warn("mocker tick rejected", "code", code, "error", err, "component", "ctacontext")
		}
		return
	}
	a.liveTick(view, tick.Price, now)
}

// liveTick applies the same §4.5.2 steps as CTAMocker.OnTick, but converts
// any resolved signal or conditional-order winner into a real broker order
// via trader.Adapter instead of treating the bookkeeping fill as final.
func (a *CTAContextAdapter) liveTick(view strategy.ContractView, price float64, now uint64) {
	code := view.Code

	if sig, ok := a.Ctx.Signals[code]; ok {
		current := a.Ctx.GetPosition(code, false, "")
		if _, _, err := a.Ctx.DoSetPosition(view, sig.TargetVol, price, sig.UserTag, now, a.barNo); err != nil {
			a.log.Warn("live signal rejected", "code", code, "error", err, "component", "ctacontext")
		} else {
			a.placeOrder(code, sig.TargetVol-current, price, sig.UserTag)
		}
		delete(a.Ctx.Signals, code)
	}

	a.Ctx.RecomputeDynProfit(view, price)

	if orders := a.Ctx.CondOrders[code]; len(orders) > 0 {
		if winner, ok := strategy.SelectWinner(strategy.MatchReal(orders, price)); ok {
			current := a.Ctx.GetPosition(code, false, "")
			if _, _, err := a.Ctx.DoSetPosition(view, winner.Order.Qty, winner.ExecPrice, winner.Order.UserTag, now, a.barNo); err != nil {
				a.log.Warn("live conditional order rejected", "code", code, "error", err, "component", "ctacontext")
			} else {
				a.placeOrder(code, winner.Order.Qty-current, winner.ExecPrice, winner.Order.UserTag)
			}
		}
		delete(a.Ctx.CondOrders, code)
	}
}

// placeOrder submits the broker order for a resolved target-position delta
// (spec §2 step (e)): positive diff buys/covers, negative diff sells/shorts.
func (a *CTAContextAdapter) placeOrder(code string, diff, price float64, userTag string) {
	if diff == 0 {
		return
	}
	isLong := diff > 0
	qty := diff
	if qty < 0 {
		qty = -qty
	}
	ids, err := a.Trader.Buy(code, isLong, price, qty, wt.OrderFlag_NOR, false, userTag, time.Now())
	if err != nil {
		a.log.Warn("live order placement failed", "code", code, "error", err, "component", "ctacontext")
		return
	}
	a.log.Info("live order placed", "code", code, "qty", qty, "is_long", isLong, "local_ids", ids, "component", "ctacontext")
}

// OnBar implements ContextSink: advances the mocker's bar counter on every
// bar close the engine dispatches (spec §4.5.2's per-bar conditional-order
// gate).
func (a *CTAContextAdapter) OnBar(code, period string, times int, bar wt.BarRecord) {
	a.barNo++
	if a.Mocker != nil {
		a.Mocker.AdvanceBar()
	}
}

// OnSchedule implements ContextSink; the CTA context has no scheduled-event
// hook of its own (spec §4.5 names schedule events as a UFT-context concern).
func (a *CTAContextAdapter) OnSchedule(date uint32, barTime int) {}

// OnSessionBegin implements ContextSink: resets every position's T+1 frozen
// quantity for the new trading session (spec §3 lifecycle).
func (a *CTAContextAdapter) OnSessionBegin(tdate uint32) {
	a.Ctx.ResetFrozenForSession()
}

// OnSessionEnd implements ContextSink. Output persistence (outputs/*.json)
// is the caller's responsibility at end-of-run, not per session-end.
func (a *CTAContextAdapter) OnSessionEnd(tdate uint32) {
	a.log.Debug("session end", "tdate", tdate, "context", a.Ctx.ContextID, "component", "ctacontext")
}
