// Copyright (c) 2024 Neomantra Corp
//
// Subscription tables (spec §4.7): a context registers interest in a
// code's tick stream, or a (code, period, multiplier) bar stream, or one
// of the L2 sub-streams; the engine consults these maps on every event to
// decide which contexts to invoke.

package engine

import (
	"fmt"
	"sync"
)

// SubscriptionTable holds every per-stream subscriber set the engine routes against.
type SubscriptionTable struct {
	mu sync.RWMutex

	tickSub   map[string]map[string]bool // code -> context_id set
	barSub    map[string]map[string]bool // "code#period#times" -> context_id set
	orddtlSub map[string]map[string]bool
	ordqueSub map[string]map[string]bool
	transSub  map[string]map[string]bool
}

func NewSubscriptionTable() *SubscriptionTable {
	return &SubscriptionTable{
		tickSub:   map[string]map[string]bool{},
		barSub:    map[string]map[string]bool{},
		orddtlSub: map[string]map[string]bool{},
		ordqueSub: map[string]map[string]bool{},
		transSub:  map[string]map[string]bool{},
	}
}

// BarKey builds the bar_sub_map key "code#period#times" (spec §4.7).
func BarKey(code, period string, times int) string {
	return fmt.Sprintf("%s#%s#%d", code, period, times)
}

func subscribe(table map[string]map[string]bool, key, contextID string) {
	set, ok := table[key]
	if !ok {
		set = map[string]bool{}
		table[key] = set
	}
	set[contextID] = true
}

func unsubscribe(table map[string]map[string]bool, key, contextID string) {
	if set, ok := table[key]; ok {
		delete(set, contextID)
	}
}

// SubTick registers contextID for code's tick stream.
func (s *SubscriptionTable) SubTick(contextID, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	subscribe(s.tickSub, code, contextID)
}

func (s *SubscriptionTable) UnsubTick(contextID, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	unsubscribe(s.tickSub, code, contextID)
}

// SubBar registers contextID for a (code, period, times) bar stream.
func (s *SubscriptionTable) SubBar(contextID, code, period string, times int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	subscribe(s.barSub, BarKey(code, period, times), contextID)
}

func (s *SubscriptionTable) SubOrderDetail(contextID, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	subscribe(s.orddtlSub, code, contextID)
}

func (s *SubscriptionTable) SubOrderQueue(contextID, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	subscribe(s.ordqueSub, code, contextID)
}

func (s *SubscriptionTable) SubTransaction(contextID, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	subscribe(s.transSub, code, contextID)
}

// TickSubscribers returns the context ids subscribed to code's tick stream.
func (s *SubscriptionTable) TickSubscribers(code string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return keys(s.tickSub[code])
}

// BarSubscribers returns the context ids subscribed to a (code, period, times) bar stream.
func (s *SubscriptionTable) BarSubscribers(code, period string, times int) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return keys(s.barSub[BarKey(code, period, times)])
}

func keys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
