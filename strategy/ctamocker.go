// Copyright (c) 2024 Neomantra Corp
//
// CTA backtest mocker (spec §4.5, "Mocker" in GLOSSARY): a strategy-context
// implementation simulating fills locally. OnTick drives signal application,
// dyn-profit tracking, and conditional-order evaluation per spec §4.5.2.

package strategy

import "wondertrader/wt"

// CTACallbacks are the user strategy's event handlers the mocker drives.
type CTACallbacks interface {
	OnConditionTriggered(code string, target, price float64)
}

// CTAMocker drives one CTA strategy's Context through simulated tick flow.
type CTAMocker struct {
	Ctx       *Context
	Callbacks CTACallbacks

	lastPrice map[string]float64
	barNo     int
}

// NewCTAMocker wraps ctx with simulated-fill tick handling.
func NewCTAMocker(ctx *Context, cb CTACallbacks) *CTAMocker {
	return &CTAMocker{Ctx: ctx, Callbacks: cb, lastPrice: map[string]float64{}}
}

// OnTick implements spec §4.5.2's per-tick algorithm for a subscribed code.
// isSimulated distinguishes real-tick vs. replayer-synthesized tick matching.
func (m *CTAMocker) OnTick(contract ContractView, price float64, now uint64, isSimulated bool, isBarClose bool) error {
	code := contract.Code

	// Step 1: apply a pending signal.
	if sig, ok := m.Ctx.Signals[code]; ok {
		_, _, err := m.Ctx.DoSetPosition(contract, sig.TargetVol, price, sig.UserTag, now, m.barNo)
		if err != nil {
			return err
		}
		if sig.SigType == wt.SigType_Condition && m.Callbacks != nil {
			m.Callbacks.OnConditionTriggered(code, sig.TargetVol, price)
		}
		delete(m.Ctx.Signals, code)
	}

	// Step 2: update dyn_profit per detail.
	m.Ctx.RecomputeDynProfit(contract, price)

	// Step 3: evaluate conditional orders.
	orders := m.Ctx.CondOrders[code]
	if len(orders) > 0 {
		var hits []MatchResult
		if isSimulated {
			prev, ok := m.lastPrice[code]
			if !ok {
				prev = price
			}
			hits = MatchSimulated(orders, prev, price)
		} else {
			hits = MatchReal(orders, price)
		}
		if winner, ok := SelectWinner(hits); ok {
			if _, _, err := m.Ctx.DoSetPosition(contract, winner.Order.Qty, winner.ExecPrice, winner.Order.UserTag, now, m.barNo); err != nil {
				return err
			}
			if m.Callbacks != nil {
				m.Callbacks.OnConditionTriggered(code, winner.Order.Qty, winner.ExecPrice)
			}
		}
		// at most one conditional fires per code per bar: clear all of them
		delete(m.Ctx.CondOrders, code)
	}

	m.lastPrice[code] = price
	if isBarClose {
		m.barNo++
	}
	return nil
}

// AdvanceBar increments the mocker's bar counter directly, for dispatchers
// (e.g. engine.CTAContextAdapter) that learn of a bar close out-of-band from
// the engine's own bar aggregation rather than via OnTick's isBarClose flag.
func (m *CTAMocker) AdvanceBar() {
	m.barNo++
}
