// Copyright (c) 2024 Neomantra Corp
//
// Trader adapter (spec §4.6): state machine over one broker connection,
// wiring idmap/entrustcache/position/ratelimit/actionpolicy together and
// delivering lifecycle events to sinks. Grounded on the spec's §4.6 state
// diagram and §4.6.5 event list.

package trader

import (
	"log/slog"
	"sync"
	"time"

	"wondertrader/wt"
)

// Sink receives the adapter's lifecycle events (spec §4.6.5).
type Sink interface {
	OnOrder(localID uint32, code string, isLong bool, totalQty, leftQty, price float64, isCanceled bool, userTag string)
	OnTrade(localID uint32, code string, isLong bool, vol, price float64, userTag string)
	OnEntrust(localID uint32, code string, success bool, msg, userTag string)
	OnChannelReady(tradingDay uint32)
	OnChannelLost()
	OnPosition(code string, isLong bool, preVol, preAvail, newVol, newAvail float64, tradingDay uint32)
}

// Adapter is one broker connection's full order-management state.
type Adapter struct {
	log *slog.Logger

	mu    sync.Mutex
	state wt.TraderState

	IDs      *IDMap
	Entrusts *EntrustCache
	Limits   *RateLimiter
	Policy   *ActionPolicy

	sink      Sink
	coverMode map[string]wt.CoverMode // code -> cover mode, set per contract
	positions map[string]PosItem
	undoneQty map[string]float64 // code -> signed undone quantity (§4.6.4)
}

// NewAdapter wires an adapter from its already-open sub-components.
func NewAdapter(log *slog.Logger, ids *IDMap, entrusts *EntrustCache, limits *RateLimiter, policy *ActionPolicy, sink Sink) *Adapter {
	return &Adapter{
		log:       log,
		state:     wt.TraderState_NotLogin,
		IDs:       ids,
		Entrusts:  entrusts,
		Limits:    limits,
		Policy:    policy,
		sink:      sink,
		coverMode: map[string]wt.CoverMode{},
		positions: map[string]PosItem{},
		undoneQty: map[string]float64{},
	}
}

func (a *Adapter) State() wt.TraderState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *Adapter) setState(s wt.TraderState) {
	a.mu.Lock()
	a.state = s
	a.mu.Unlock()
}

// BeginLogin transitions NOTLOGIN -> LOGINING.
func (a *Adapter) BeginLogin() {
	a.setState(wt.TraderState_Logining)
}

// LoginSucceeded transitions LOGINING -> LOGINED.
func (a *Adapter) LoginSucceeded() {
	a.setState(wt.TraderState_Logined)
}

// LoginFailed transitions LOGINING -> LOGINFAILED.
func (a *Adapter) LoginFailed(reason string) {
	a.setState(wt.TraderState_LoginFailed)
	if a.log != nil {
		a.log.Warn("trader login failed", "reason", reason)
	}
}

// PositionsQueried transitions LOGINED -> POSITION_QRYED, ingesting the
// broker's position rows as PosItems (spec §4.6.2).
func (a *Adapter) PositionsQueried(rows map[string][]BrokerPositionRow, tradingDay uint32) {
	a.mu.Lock()
	for code, r := range rows {
		item := Reconcile(code, a.coverMode[code], r)
		a.positions[code] = item
	}
	a.state = wt.TraderState_PositionQryed
	a.mu.Unlock()

	for code, item := range a.positions {
		if a.sink == nil {
			continue
		}
		a.sink.OnPosition(code, true, item.LPreVol, item.LPreAvail, item.LNewVol, item.LNewAvail, tradingDay)
		a.sink.OnPosition(code, false, item.SPreVol, item.SPreAvail, item.SNewVol, item.SNewAvail, tradingDay)
	}
}

// OrdersQueried transitions POSITION_QRYED -> ORDERS_QRYED.
func (a *Adapter) OrdersQueried() {
	a.setState(wt.TraderState_OrdersQryed)
}

// TradesQueried transitions ORDERS_QRYED -> TRADES_QRYED -> ALLREADY, and
// notifies the sink the channel is ready (spec §4.6.5 on_channel_ready).
func (a *Adapter) TradesQueried(tradingDay uint32) {
	a.setState(wt.TraderState_AllReady)
	if a.sink != nil {
		a.sink.OnChannelReady(tradingDay)
	}
}

// Disconnected transitions any state back to NOTLOGIN (spec §4.6's "any ->
// NOTLOGIN" edge) and notifies the sink.
func (a *Adapter) Disconnected() {
	a.setState(wt.TraderState_NotLogin)
	if a.sink != nil {
		a.sink.OnChannelLost()
	}
}

// SetCoverMode registers a contract's cover mode ahead of position queries
// and order routing.
func (a *Adapter) SetCoverMode(code string, mode wt.CoverMode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.coverMode[code] = mode
}

// UndoneQty returns the signed outstanding quantity for code (spec §4.6.4).
func (a *Adapter) UndoneQty(code string) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.undoneQty[code]
}

// Buy emits 1..N child orders for a buy/sell intent, applying the action
// policy and rate limits, and registers each under the id map (spec §4.6.1,
// §4.6.3).
func (a *Adapter) Buy(code string, isLong bool, price, qty float64, flag wt.OrderFlag, forceClose bool, userTag string, now time.Time) ([]uint32, error) {
	if err := a.Limits.CheckOrderLimit(code, now); err != nil {
		return nil, err
	}

	a.mu.Lock()
	mode := a.coverMode[code]
	pos := a.positions[code]
	a.mu.Unlock()

	children := Buy(code, isLong, price, qty, flag, mode, pos, forceClose)
	if len(children) == 0 {
		return nil, nil
	}

	localIDs := make([]uint32, 0, len(children))
	a.mu.Lock()
	for _, c := range children {
		localID := a.IDs.NextLocalID()
		a.IDs.Bind(localID, &BrokerOrderInfo{
			Code:     c.Code,
			IsLong:   c.IsLong,
			TotalQty: c.Qty,
			LeftQty:  c.Qty,
			Price:    c.Price,
			UserTag:  userTag,
		})
		sign := 1.0
		if !c.IsLong {
			sign = -1.0
		}
		a.undoneQty[code] += sign * c.Qty
		localIDs = append(localIDs, localID)
	}
	a.mu.Unlock()

	return localIDs, nil
}

// Cancel enforces the per-code cancel rate limit ahead of a cancel request.
func (a *Adapter) Cancel(code string, now time.Time) error {
	return a.Limits.CheckCancelLimit(code, now)
}

// OnOrderUpdate reconciles a broker order-status push against the id map
// and forwards it to the sink (spec §4.6.5 on_order).
func (a *Adapter) OnOrderUpdate(localID uint32, leftQty, price float64, isCanceled bool) {
	info, ok := a.IDs.ByLocal(localID)
	if !ok {
		return
	}
	info.LeftQty = leftQty
	info.Price = price
	info.Canceled = isCanceled
	if isCanceled {
		a.mu.Lock()
		sign := 1.0
		if !info.IsLong {
			sign = -1.0
		}
		a.undoneQty[info.Code] -= sign * leftQty
		a.mu.Unlock()
	}
	if a.sink != nil {
		a.sink.OnOrder(localID, info.Code, info.IsLong, info.TotalQty, leftQty, price, isCanceled, info.UserTag)
	}
}

// OnTradeUpdate reconciles a fill against the id map and the undone-qty
// tracker, and forwards it to the sink (spec §4.6.4, §4.6.5 on_trade).
func (a *Adapter) OnTradeUpdate(localID uint32, vol, price float64) {
	info, ok := a.IDs.ByLocal(localID)
	if !ok {
		return
	}
	a.mu.Lock()
	sign := 1.0
	if !info.IsLong {
		sign = -1.0
	}
	a.undoneQty[info.Code] -= sign * vol
	a.mu.Unlock()

	if a.sink != nil {
		a.sink.OnTrade(localID, info.Code, info.IsLong, vol, price, info.UserTag)
	}
}

// OnEntrustUpdate forwards an order-insert acknowledgment to the sink,
// consulting the entrust-id cache for idempotency across reconnects (spec
// §4.6.1, §4.6.5 on_entrust).
func (a *Adapter) OnEntrustUpdate(entrustID string, localID uint32, code string, success bool, msg, userTag string) {
	if a.Entrusts != nil {
		if _, seen := a.Entrusts.Get(entrustID); seen {
			return
		}
		a.Entrusts.Put(entrustID, msg)
	}
	if a.sink != nil {
		a.sink.OnEntrust(localID, code, success, msg, userTag)
	}
}
