// Copyright (c) 2024 Neomantra Corp
//
// Engine (spec §4.7): owns the base-data registry, RT blocks, trader and
// parser adapters, the context map, and one session ticker per session id.
// Routes ticks through store-write -> ticker -> subscriber dispatch, and
// bar-close / schedule / session events to their respective subscriber
// sets. Grounded on spec §4.7's routing paragraph; no teacher analogue
// exists for a market-data dispatch loop, so the shape follows the
// interface-seam pattern already used across store/replay/ticker
// (SPEC_FULL.md §D) generalized to the top-level composition root.

package engine

import (
	"log/slog"
	"strings"
	"sync"

	"wondertrader/basedata"
	"wondertrader/store"
	"wondertrader/ticker"
	"wondertrader/trader"
	"wondertrader/wt"
)

// ContextSink is the engine-facing capability set any strategy context
// (CTA, SEL, or UFT) exposes, matching the virtual-method set of spec §9's
// "Dynamic dispatch" note.
type ContextSink interface {
	ID() string
	OnTick(code string, tick wt.TickRecord)
	OnBar(code, period string, times int, bar wt.BarRecord)
	OnSchedule(date uint32, barTime int)
	OnSessionBegin(tdate uint32)
	OnSessionEnd(tdate uint32)
}

// ParserAdapter is the out-of-tree broker feed boundary (spec §9's
// IParserApi). Engine only needs lifecycle control; normalized ticks
// arrive via Engine.OnTick from the parser's own goroutine.
type ParserAdapter interface {
	Connect() error
	Disconnect() error
}

// codeRuntime is the per-code mutable state the engine tracks between ticks.
type codeRuntime struct {
	sessionID string
	session   ticker.SessionClock
	lastTick  wt.TickRecord
	hasTick   bool
	minuteBar wt.BarRecord
	hasMinute bool
	rt        *store.RTBlock
}

// Engine is the top-level composition root (C7).
type Engine struct {
	log *slog.Logger

	BaseData *basedata.Registry
	Subs     *SubscriptionTable
	Adapters map[string]*trader.Adapter
	Parsers  map[string]ParserAdapter
	Closer   *store.SessionCloser // nil disables archive rollover (e.g. in replay)

	mu       sync.Mutex
	contexts map[string]ContextSink
	codes    map[string]*codeRuntime
	tickers  map[string]*ticker.Ticker // session_id -> ticker
	policy   store.AggregatePolicy
	date     uint32
}

// NewEngine constructs an empty engine bound to a base-data registry.
func NewEngine(log *slog.Logger, baseData *basedata.Registry) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		log:      log,
		BaseData: baseData,
		Subs:     NewSubscriptionTable(),
		Adapters: map[string]*trader.Adapter{},
		Parsers:  map[string]ParserAdapter{},
		contexts: map[string]ContextSink{},
		codes:    map[string]*codeRuntime{},
		tickers:  map[string]*ticker.Ticker{},
	}
}

// RegisterContext adds ctx to the context map (spec §4.7's `context_map`).
func (e *Engine) RegisterContext(ctx ContextSink) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.contexts[ctx.ID()] = ctx
}

// RegisterCode wires a code's RT block and session id for routing, and
// lazily creates that session's ticker.
func (e *Engine) RegisterCode(code, sessionID string, rt *store.RTBlock, session ticker.SessionClock) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.codes[code] = &codeRuntime{sessionID: sessionID, session: session, rt: rt}
	if _, ok := e.tickers[sessionID]; !ok {
		e.tickers[sessionID] = ticker.NewTicker(e.log, session, e, e)
	}
}

// OnTick is the engine's tick entrypoint: store-write -> ticker ->
// subscriber dispatch (spec §4.7, §5 ordering guarantees).
func (e *Engine) OnTick(code string, tick wt.TickRecord) {
	e.mu.Lock()
	rt, ok := e.codes[code]
	if !ok {
		e.mu.Unlock()
		e.log.Warn("tick for unregistered code dropped", "code", code)
		return
	}

	tdate := tick.TradingDate
	var decision store.DedupDecision
	if rt.hasTick {
		decision = store.CheckTick(&rt.lastTick, &tick, tdate)
	} else {
		decision = store.DedupAccept
	}

	switch decision {
	case store.DedupRejectStale:
		e.mu.Unlock()
		e.log.Warn("stale tick dropped", "code", code)
		return
	case store.DedupBumpTime:
		store.ApplyBump(&tick)
	}

	hasDelta := rt.hasTick
	rt.lastTick = tick
	rt.hasTick = true
	if rt.rt != nil {
		_ = rt.rt.Append(&tick)
	}

	sessionID := rt.sessionID
	tk := e.tickers[sessionID]
	e.mu.Unlock()

	if tk != nil {
		tk.OnTick(tdate, uint64(tick.ActionTime))
	}

	e.aggregateAndDispatch(code, &tick, hasDelta)

	for _, id := range e.Subs.TickSubscribers(code) {
		if ctx, ok := e.context(id); ok {
			ctx.OnTick(code, tick)
		}
	}
}

func (e *Engine) context(id string) (ContextSink, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	c, ok := e.contexts[id]
	return c, ok
}

// aggregateAndDispatch folds tick into the running 1-minute bar. When the
// tick opens a fresh bar, the prior bar has just closed: it is dispatched
// to bar subscribers (store.AggregateTick's `bar` return is the newly
// OPENED bar, used for RT-block storage, not the one that just closed —
// the engine dispatches `last` instead, per spec §4.1.5/§4.7).
func (e *Engine) aggregateAndDispatch(code string, tick *wt.TickRecord, hasDelta bool) {
	e.mu.Lock()
	rt := e.codes[code]
	var last wt.BarRecord
	hasLast := rt.hasMinute
	if hasLast {
		last = rt.minuteBar
	}
	clock := rt.session
	e.mu.Unlock()

	if clock == nil {
		return
	}
	bar, newBarOpened, shouldSkip := store.AggregateTick(clock, e.policy, tick, hasDelta, &last, hasLast)
	if shouldSkip {
		return
	}

	e.mu.Lock()
	rt.minuteBar = bar
	rt.hasMinute = true
	e.mu.Unlock()

	if newBarOpened && hasLast {
		for _, id := range e.Subs.BarSubscribers(code, "m1", 1) {
			if ctx, ok := e.context(id); ok {
				ctx.OnBar(code, "m1", 1, last)
			}
		}
	}
}

// OnSchedule implements ticker.EngineSink: broadcast to every context (spec §4.7).
func (e *Engine) OnSchedule(date uint32, barTime int) {
	e.mu.Lock()
	e.date = date
	contexts := make([]ContextSink, 0, len(e.contexts))
	for _, c := range e.contexts {
		contexts = append(contexts, c)
	}
	e.mu.Unlock()

	for _, c := range contexts {
		c.OnSchedule(date, barTime)
	}
}

// OnSessionEnd implements ticker.EngineSink.
func (e *Engine) OnSessionEnd() {
	e.mu.Lock()
	date := e.date
	contexts := make([]ContextSink, 0, len(e.contexts))
	for _, c := range e.contexts {
		contexts = append(contexts, c)
	}
	e.mu.Unlock()

	for _, c := range contexts {
		c.OnSessionEnd(date)
	}
}

// OnClockUpdated implements ticker.EngineSink; the engine has no separate
// clock-broadcast consumer beyond the ticker's own bookkeeping.
func (e *Engine) OnClockUpdated(date uint32, timeHHMMSSmmm uint64) {}

// FlushEndOfDay implements ticker.StoreNotifier, triggering the session-
// close archive rollover for every registered code's RT block (spec §6.2).
// Runs synchronously on the caller's goroutine; a production deployment
// hands this to the session-close/transhis thread of spec §5.
func (e *Engine) FlushEndOfDay(date uint32) {
	if e.Closer == nil {
		return
	}

	e.mu.Lock()
	rts := make(map[string]*store.RTBlock, len(e.codes))
	for code, rt := range e.codes {
		if rt.rt != nil {
			rts[code] = rt.rt
		}
	}
	e.mu.Unlock()

	for code, rt := range rts {
		exchg, bareCode := splitCode(code)
		var err error
		if store.IsBarStream(rt.Type()) {
			err = e.Closer.CloseBarStream(rt, exchg, bareCode)
		} else {
			err = e.Closer.CloseTickLikeStream(rt, exchg, bareCode, date)
		}
		if err != nil {
			e.log.Warn("end-of-day archive rollover failed", "code", code, "date", date, "error", err)
		}
	}
}

// splitCode divides a "EXCHG.CODE" full code into its parts.
func splitCode(fullCode string) (exchg, code string) {
	if i := strings.IndexByte(fullCode, '.'); i >= 0 {
		return fullCode[:i], fullCode[i+1:]
	}
	return "", fullCode
}

// SessionBegin broadcasts on_session_begin to every registered context for tdate.
func (e *Engine) SessionBegin(tdate uint32) {
	e.mu.Lock()
	e.date = tdate
	contexts := make([]ContextSink, 0, len(e.contexts))
	for _, c := range e.contexts {
		contexts = append(contexts, c)
	}
	e.mu.Unlock()

	for _, c := range contexts {
		c.OnSessionBegin(tdate)
	}
}
