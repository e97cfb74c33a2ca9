// Copyright (c) 2024 Neomantra Corp
//
// Session-aware real-time clock (spec §4.4). Drives bar-close/schedule/
// session events from incoming ticks, with a background wake thread for
// illiquid contracts. Grounded on the spec's own step-numbered algorithm
// text; the teacher has no ticking-clock analogue, so the goroutine +
// mutex + time.Ticker shape follows the concurrency idioms the teacher
// already uses for its own long-running commands (cmd/dbn-go-live's
// run loop), generalized to a periodic background wake rather than a
// one-shot stream read.

package ticker

import (
	"log/slog"
	"sync"
	"time"
)

// SessionClock is the subset of basedata.SessionInfo the ticker needs.
type SessionClock interface {
	TimeToMinutes(hhmm int) int
	MinuteToTime(minutes int) int
	IsLastOfSection(hhmm int) bool
	CloseOffset() int
}

// EngineSink receives the events the ticker drives (spec §4.4 step 4).
type EngineSink interface {
	OnSchedule(date uint32, barTime int)
	OnSessionEnd()
	OnClockUpdated(date uint32, time uint64)
}

// StoreNotifier is told to flush RT->HIS for ticks on end-of-tdate.
type StoreNotifier interface {
	FlushEndOfDay(date uint32)
}

// Ticker is the session-aware clock for one (commodity/session) stream.
type Ticker struct {
	log     *slog.Logger
	session SessionClock
	sink    EngineSink
	store   StoreNotifier

	mu            sync.Mutex
	date          uint32
	timeHHMMSSmmm uint64
	curPos        int
	lastEmitPos   int
	nextCheck     time.Time

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewTicker constructs a ticker bound to session, delivering events to sink
// and store. logger defaults to slog.Default() if nil.
func NewTicker(log *slog.Logger, session SessionClock, sink EngineSink, store StoreNotifier) *Ticker {
	if log == nil {
		log = slog.Default()
	}
	return &Ticker{log: log, session: session, sink: sink, store: store, stopCh: make(chan struct{})}
}

// OnTick implements the per-tick contract of spec §4.4.
func (t *Ticker) OnTick(date uint32, timeHHMMSSmmm uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if date == t.date && timeHHMMSSmmm < t.timeHHMMSSmmm {
		// step 1: tick-time earlier than local time; forward only, don't rewind.
		t.sink.OnClockUpdated(date, timeHHMMSSmmm)
		return
	}

	t.date = date
	t.timeHHMMSSmmm = timeHHMMSSmmm

	hhmm := int(timeHHMMSSmmm / 100000) // strip SSmmm
	minutes := t.session.TimeToMinutes(hhmm)
	if t.session.IsLastOfSection(hhmm) {
		minutes--
	}
	minutes++

	switch {
	case t.curPos == 0:
		t.curPos = minutes
	case t.curPos < minutes:
		t.emitBoundary()
		t.curPos = minutes
	default:
		// same bar, nothing to emit
	}

	t.sink.OnClockUpdated(date, timeHHMMSSmmm)
	t.nextCheck = time.Now().Add(msUntilNextMinute(timeHHMMSSmmm))
}

// emitBoundary performs step 4: bar-close emission at a crossed boundary.
// Callers must hold t.mu.
func (t *Ticker) emitBoundary() {
	t.lastEmitPos = t.curPos
	barTime := t.session.MinuteToTime(t.curPos)
	endOfTDate := t.curPos == t.session.CloseOffset()

	if endOfTDate {
		t.store.FlushEndOfDay(t.date)
	}
	t.sink.OnSchedule(t.date, barTime)
	if endOfTDate {
		t.sink.OnSessionEnd()
	}
}

// msUntilNextMinute computes the delay to the next minute boundary from a
// HHMMSSmmm timestamp.
func msUntilNextMinute(timeHHMMSSmmm uint64) time.Duration {
	ss := (timeHHMMSSmmm / 1000) % 100
	mmm := timeHHMMSSmmm % 1000
	remaining := (60-int(ss))*1000 - int(mmm)
	if remaining <= 0 {
		remaining = 1
	}
	return time.Duration(remaining) * time.Millisecond
}

// Start launches the background wake thread (spec §4.4 last two
// paragraphs): wakes periodically and force-emits a lagging bar-close or
// the final session-end when no more ticks arrive.
func (t *Ticker) Start(tradingHoursInterval, offHoursInterval time.Duration) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		interval := tradingHoursInterval
		tick := time.NewTicker(interval)
		defer tick.Stop()
		for {
			select {
			case <-t.stopCh:
				return
			case <-tick.C:
				t.wakeCheck()
			}
		}
	}()
}

// wakeCheck implements the background-thread ordering rule confirmed by
// original_source/WtCtaTicker.cpp (SPEC_FULL.md §C.2): only acts on a
// lagging emit cursor, never against a future one.
func (t *Ticker) wakeCheck() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if time.Now().Before(t.nextCheck) {
		return
	}
	if t.lastEmitPos < t.curPos {
		t.emitBoundary()
		return
	}
	total := t.session.CloseOffset()
	if t.lastEmitPos < total {
		t.log.Info("forcing final bar-close: no ticks after session close")
		t.curPos = total
		t.emitBoundary()
	}
}

// Stop halts the background wake thread.
func (t *Ticker) Stop() {
	close(t.stopCh)
	t.wg.Wait()
}
