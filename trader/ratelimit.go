// Copyright (c) 2024 Neomantra Corp
//
// Sliding-window order/cancel rate limiting (spec §4.6.3, §8 scenario 4).

package trader

import (
	"sync"
	"time"

	"wondertrader/wt"
)

// RateLimitConfig is a sliding-window throttle policy: at most Boundary
// actions within Timespan, and never more than TotalLimits actions for a
// code's lifetime.
type RateLimitConfig struct {
	Timespan    time.Duration
	Boundary    int
	TotalLimits int // 0 means unbounded
}

// slidingWindow tracks per-code action timestamps and a lifetime total.
type slidingWindow struct {
	cfg   RateLimitConfig
	hits  []time.Time
	total int
}

// admit prunes expired hits and reports whether a new action at now is
// allowed under both the windowed boundary and the lifetime total.
func (w *slidingWindow) admit(now time.Time) bool {
	if w.cfg.TotalLimits > 0 && w.total >= w.cfg.TotalLimits {
		return false
	}
	cutoff := now.Add(-w.cfg.Timespan)
	kept := w.hits[:0]
	for _, t := range w.hits {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	w.hits = kept
	if w.cfg.Boundary > 0 && len(w.hits) >= w.cfg.Boundary {
		return false
	}
	w.hits = append(w.hits, now)
	w.total++
	return true
}

// RateLimiter enforces independent order-insert and order-cancel windows
// per code. A code that breaches either window is latched into
// excludedCodes and rejected outright from then on (spec §4.6.3, §8
// scenario 4), until ResetCode clears it.
type RateLimiter struct {
	mu            sync.Mutex
	orderCfg      RateLimitConfig
	cancelCfg     RateLimitConfig
	orders        map[string]*slidingWindow
	cancels       map[string]*slidingWindow
	excludedCodes map[string]bool
}

func NewRateLimiter(orderCfg, cancelCfg RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		orderCfg:      orderCfg,
		cancelCfg:     cancelCfg,
		orders:        map[string]*slidingWindow{},
		cancels:       map[string]*slidingWindow{},
		excludedCodes: map[string]bool{},
	}
}

// IsExcluded reports whether code has been latched out by a prior breach.
func (r *RateLimiter) IsExcluded(code string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.excludedCodes[code]
}

// ResetCode clears a code's exclusion and counters, e.g. on tdate rollover.
func (r *RateLimiter) ResetCode(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.excludedCodes, code)
	delete(r.orders, code)
	delete(r.cancels, code)
}

// CheckOrderLimit reports whether a new order insert for code is allowed at
// now, latching the code into excludedCodes if this breach trips it.
func (r *RateLimiter) CheckOrderLimit(code string, now time.Time) error {
	return r.check(code, r.orders, r.orderCfg, now)
}

// CheckCancelLimit is CheckOrderLimit's counterpart for cancels.
func (r *RateLimiter) CheckCancelLimit(code string, now time.Time) error {
	return r.check(code, r.cancels, r.cancelCfg, now)
}

func (r *RateLimiter) check(code string, windows map[string]*slidingWindow, cfg RateLimitConfig, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.excludedCodes[code] {
		return wt.ErrRateLimitExceeded
	}
	w, ok := windows[code]
	if !ok {
		w = &slidingWindow{cfg: cfg}
		windows[code] = w
	}
	if !w.admit(now) {
		r.excludedCodes[code] = true
		return wt.ErrRateLimitExceeded
	}
	return nil
}
