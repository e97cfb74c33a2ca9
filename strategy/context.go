// Copyright (c) 2024 Neomantra Corp
//
// Per-strategy context state and target-position semantics (spec §4.5,
// §3 "the strategy context holds..."). Shared by the CTA mocker (backtest)
// and any live CTA context; `DoSetPosition` is pure bookkeeping given an
// already-resolved trade price, identical in both modes.

package strategy

import (
	"log/slog"
	"math"

	"wondertrader/wt"
)

// FundInfo tracks strategy-level P&L across all codes.
type FundInfo struct {
	TotalProfit    float64
	TotalDynProfit float64
}

// SlippageMode selects how Context.ApplySlippage perturbs a fill price.
type SlippageMode int

const (
	SlippageAbsolute SlippageMode = iota
	SlippageRatio
)

// ContractView is the subset of basedata.ContractInfo a context needs.
type ContractView struct {
	Code        string
	PriceTick   float64
	VolumeScale float64
	FeeRate     float64
	IsT1        bool
	CanShort    bool
}

// Context holds one strategy instance's full runtime state (spec §4.5 state list).
type Context struct {
	Log *slog.Logger

	ContextID   string
	Fund        FundInfo
	Positions   map[string]*PositionInfo
	Signals     map[string]*Signal
	CondOrders  map[string][]ConditionalOrder
	UserData    map[string]string

	Slippage     float64
	SlippageMode SlippageMode

	condSeq int
}

// NewContext constructs an empty strategy context.
func NewContext(id string, log *slog.Logger) *Context {
	if log == nil {
		log = slog.Default()
	}
	return &Context{
		Log:        log,
		ContextID:  id,
		Positions:  map[string]*PositionInfo{},
		Signals:    map[string]*Signal{},
		CondOrders: map[string][]ConditionalOrder{},
		UserData:   map[string]string{},
	}
}

func (c *Context) position(code string) *PositionInfo {
	p, ok := c.Positions[code]
	if !ok {
		p = &PositionInfo{Code: code}
		c.Positions[code] = p
	}
	return p
}

// GetPosition implements spec §4.5.1 `get_position`.
func (c *Context) GetPosition(code string, onlyValid bool, userTag string) float64 {
	p, ok := c.Positions[code]
	if !ok {
		return 0
	}
	return p.GetPositionQty(onlyValid, userTag)
}

// SetPosition implements spec §4.5.1 `set_position`: enqueues an immediate
// signal, or creates a conditional order if limit/stop are given.
func (c *Context) SetPosition(code string, qty float64, userTag string, limit, stop float64, now uint64) {
	current := c.GetPosition(code, false, "")
	if limit == 0 && stop == 0 {
		c.Signals[code] = &Signal{StdCode: code, TargetVol: qty, UserTag: userTag, GenTime: now, SigType: wt.SigType_Normal}
		return
	}

	buying := qty > current
	var cmp wt.Comparator
	var target float64
	if buying {
		if stop > 0 {
			cmp, target = wt.Comparator_GreaterEqual, stop
		} else {
			cmp, target = wt.Comparator_LessEqual, limit
		}
	} else {
		if stop > 0 {
			cmp, target = wt.Comparator_LessEqual, stop
		} else {
			cmp, target = wt.Comparator_GreaterEqual, limit
		}
	}

	action := wt.CondAction_SetPos
	c.condSeq++
	order := ConditionalOrder{
		StdCode: code, Field: "price", Comparator: cmp, Target: target,
		Qty: qty, Action: action, UserTag: userTag, insertSeq: c.condSeq,
	}
	c.CondOrders[code] = append(c.CondOrders[code], order)
}

// EnterLong/ExitLong/EnterShort/ExitShort are sugar over SetPosition (spec §4.5.1).
func (c *Context) EnterLong(code string, qty float64, userTag string, limit, stop float64, now uint64) {
	current := c.GetPosition(code, false, "")
	c.SetPosition(code, current+qty, userTag, limit, stop, now)
}

func (c *Context) ExitLong(code string, qty float64, userTag string, limit, stop float64, now uint64) {
	current := c.GetPosition(code, true, "")
	c.SetPosition(code, math.Max(0, current-qty), userTag, limit, stop, now)
}

func (c *Context) EnterShort(code string, qty float64, userTag string, limit, stop float64, now uint64, canShort bool) {
	if !canShort {
		c.Log.Warn("enter_short on a non-shortable contract", slog.String("code", code))
		return
	}
	current := c.GetPosition(code, false, "")
	c.SetPosition(code, current-qty, userTag, limit, stop, now)
}

func (c *Context) ExitShort(code string, qty float64, userTag string, limit, stop float64, now uint64) {
	current := c.GetPosition(code, true, "")
	c.SetPosition(code, math.Min(0, current+qty), userTag, limit, stop, now)
}

// ResetFrozenForSession zeroes every tracked position's T+1 frozen quantity
// at session-begin (spec §3 lifecycle), the context-wide counterpart of
// PositionInfo.ResetFrozenForSession.
func (c *Context) ResetFrozenForSession() {
	for _, p := range c.Positions {
		p.ResetFrozenForSession()
	}
}

// ApplySlippage implements spec §4.5.3's slippage step. sign is +1 for
// buys, -1 for sells.
func (c *Context) ApplySlippage(price float64, sign float64, priceTick float64) float64 {
	if c.Slippage == 0 {
		return price
	}
	switch c.SlippageMode {
	case SlippageAbsolute:
		return price + sign*c.Slippage*priceTick
	case SlippageRatio:
		adj := roundToTick(c.Slippage*price/10000, priceTick)
		return price + sign*adj
	}
	return price
}

func roundToTick(v, tick float64) float64 {
	if tick == 0 {
		return v
	}
	return math.Round(v/tick) * tick
}

// RecomputeDynProfit implements spec §4.5.2 step 2's per-tick mark-to-market
// update for contract.Code: every open detail's position_profit/extremes are
// recomputed from price, and fund.total_dynprofit is adjusted by the delta
// against this position's previous dyn_profit contribution, so it tracks the
// current mark rather than accumulating every tick's mark. Shared by
// CTAMocker.OnTick (backtest) and any live context driving real ticks.
func (c *Context) RecomputeDynProfit(contract ContractView, price float64) {
	p, ok := c.Positions[contract.Code]
	if !ok {
		return
	}
	var dyn float64
	for i := range p.Details {
		d := &p.Details[i]
		if d.Volume == 0 {
			continue
		}
		profit := d.Volume * (price - d.OpenPrice) * contract.VolumeScale * d.Direction.Sign()
		d.PositionProfit = profit
		dyn += profit
		if profit > d.MaxProfit {
			d.MaxProfit = profit
		}
		if profit < d.MaxLoss {
			d.MaxLoss = profit
		}
		if price > d.MaxPrice || d.MaxPrice == 0 {
			d.MaxPrice = price
		}
		if price < d.MinPrice || d.MinPrice == 0 {
			d.MinPrice = price
		}
	}
	c.Fund.TotalDynProfit += dyn - p.DynProfit
	p.DynProfit = dyn
}

// TradeLogEntry and CloseLogEntry mirror the trades.csv/closes.csv rows of
// spec §6.4, returned by DoSetPosition for the caller to append.
type TradeLogEntry struct {
	Code, Direct, Action, Tag string
	Time                      uint64
	Price, Qty, Fee           float64
	BarNo                     int
}

type CloseLogEntry struct {
	Code, Direct, EnterTag, ExitTag string
	OpenTime, CloseTime             uint64
	OpenPrice, ClosePrice           float64
	Qty, Profit, MaxProfit, MaxLoss, TotalProfit float64
	OpenBarNo, CloseBarNo           int
}

// DoSetPosition implements spec §4.5.3: the position-update algorithm
// given a resolved trade price. Returns the trade/close log rows produced.
func (c *Context) DoSetPosition(contract ContractView, targetQty, price float64, userTag string, now uint64, barNo int) ([]TradeLogEntry, []CloseLogEntry, error) {
	p := c.position(contract.Code)
	currentQty := p.Volume
	if currentQty == targetQty {
		return nil, nil, nil // no-op: no fees, no trade log (spec §8 boundary behavior)
	}

	if contract.IsT1 && math.Abs(targetQty) < p.Frozen {
		return nil, nil, wt.ErrFrozenViolation
	}

	diff := targetQty - currentQty
	sign := 1.0
	if diff < 0 {
		sign = -1.0
	}
	tradePrice := c.ApplySlippage(price, sign, contract.PriceTick)
	fee := math.Abs(diff) * contract.VolumeScale * tradePrice * contract.FeeRate

	var trades []TradeLogEntry
	var closes []CloseLogEntry

	sameSign := (currentQty >= 0 && diff >= 0) || (currentQty <= 0 && diff <= 0)
	if sameSign {
		dir := wt.Direction_Long
		if targetQty < 0 {
			dir = wt.Direction_Short
		}
		p.AppendDetail(PositionDetail{
			Direction: dir, OpenPrice: tradePrice, OpenTime: now,
			Volume: math.Abs(diff), OpenTag: userTag, OpenBarNo: barNo,
		})
		p.OpenCost += math.Abs(diff) * tradePrice * contract.VolumeScale
		p.LastEnterTime = now
		if contract.IsT1 {
			p.Frozen += math.Abs(diff)
		}
		p.Volume += diff
		trades = append(trades, TradeLogEntry{
			Code: contract.Code, Direct: directionLabel(dir), Action: "open",
			Tag: userTag, Time: now, Price: tradePrice, Qty: math.Abs(diff), Fee: fee, BarNo: barNo,
		})
	} else {
		remaining := math.Abs(diff)
		for i := p.ValidIdx; i < len(p.Details) && remaining > 0; i++ {
			d := &p.Details[i]
			if d.Volume == 0 {
				continue
			}
			matched := math.Min(remaining, d.Volume)
			profit := (tradePrice - d.OpenPrice) * matched * contract.VolumeScale * d.Direction.Sign()

			p.TotalClosedProfit += profit
			c.Fund.TotalProfit += profit
			d.ClosedProfit += profit
			d.Volume -= matched
			d.ClosedVolume += matched
			remaining -= matched

			closes = append(closes, CloseLogEntry{
				Code: contract.Code, Direct: directionLabel(d.Direction), EnterTag: d.OpenTag, ExitTag: userTag,
				OpenTime: d.OpenTime, CloseTime: now, OpenPrice: d.OpenPrice, ClosePrice: tradePrice,
				Qty: matched, Profit: profit, MaxProfit: d.MaxProfit, MaxLoss: d.MaxLoss,
				TotalProfit: c.Fund.TotalProfit, OpenBarNo: d.OpenBarNo, CloseBarNo: barNo,
			})
			trades = append(trades, TradeLogEntry{
				Code: contract.Code, Direct: directionLabel(d.Direction), Action: "close",
				Tag: userTag, Time: now, Price: tradePrice, Qty: matched, Fee: fee, BarNo: barNo,
			})
		}
		p.AdvanceValidIdx()
		if remaining > 0 {
			// residual after exhausting one side: open the flip on the other side
			dir := wt.Direction_Long
			if sign < 0 {
				dir = wt.Direction_Short
			}
			p.AppendDetail(PositionDetail{Direction: dir, OpenPrice: tradePrice, OpenTime: now, Volume: remaining, OpenTag: userTag, OpenBarNo: barNo})
			if contract.IsT1 {
				p.Frozen += remaining
			}
		}
		p.Volume = targetQty
	}

	return trades, closes, nil
}

func directionLabel(d wt.Direction) string {
	if d == wt.Direction_Long {
		return "long"
	}
	return "short"
}

// MapOrderFlag implements spec §4.5.4's broker-boundary translation contract.
func MapOrderFlag(flag wt.OrderFlag) (timeInForce string, anyOrComplete string) {
	switch flag {
	case wt.OrderFlag_NOR:
		return "GFD", "AV"
	case wt.OrderFlag_FAK:
		return "IOC", "AV"
	case wt.OrderFlag_FOK:
		return "IOC", "CV"
	}
	return "GFD", "AV"
}
