// Copyright (c) 2024 Neomantra Corp
//
// Conditional order matching (spec §3 "ConditionalOrder", §4.5.2). Handles
// both real-tick comparator evaluation and simulated-tick range reasoning;
// winner-selection tie-break grounded on
// original_source/src/WtBtCore/CtaMocker.cpp per SPEC_FULL.md §C.3.

package strategy

import "wondertrader/wt"

// ConditionalOrder is a predicate bound to an action, evaluated on every
// tick of its code until it fires or is cleared.
type ConditionalOrder struct {
	StdCode    string
	Field      string
	Comparator wt.Comparator
	Target     float64
	Qty        float64
	Action     wt.CondAction
	UserTag    string

	insertSeq int // preserves insertion order for the "first-inserted wins" tie-break
}

// MatchResult is a fired conditional order plus its effective execution price.
type MatchResult struct {
	Order    ConditionalOrder
	ExecPrice float64
}

// MatchReal evaluates orders against a single real tick price, per spec
// §4.5.2 "Real ticks": direct comparator evaluation, no range reasoning.
func MatchReal(orders []ConditionalOrder, price float64) []MatchResult {
	var hits []MatchResult
	for _, o := range orders {
		if compareHits(o.Comparator, price, o.Target) {
			hits = append(hits, MatchResult{Order: o, ExecPrice: price})
		}
	}
	return hits
}

func compareHits(cmp wt.Comparator, price, target float64) bool {
	switch cmp {
	case wt.Comparator_Equal:
		return price == target
	case wt.Comparator_Greater:
		return price > target
	case wt.Comparator_GreaterEqual:
		return price >= target
	case wt.Comparator_Less:
		return price < target
	case wt.Comparator_LessEqual:
		return price <= target
	}
	return false
}

// MatchSimulated evaluates orders against a price range [prev, cur] (in
// either order), per spec §4.5.2 "Simulated ticks": reason about whether
// target lies within the range, with clamped effective execution prices.
func MatchSimulated(orders []ConditionalOrder, prevPrice, curPrice float64) []MatchResult {
	lo, hi := prevPrice, curPrice
	if lo > hi {
		lo, hi = hi, lo
	}

	var hits []MatchResult
	for _, o := range orders {
		switch o.Comparator {
		case wt.Comparator_Equal:
			if o.Target >= lo && o.Target <= hi {
				hits = append(hits, MatchResult{Order: o, ExecPrice: o.Target})
			}
		case wt.Comparator_Greater, wt.Comparator_GreaterEqual:
			// right edge must satisfy; buying-stops match at max(left, target)
			if compareHits(o.Comparator, hi, o.Target) {
				exec := lo
				if o.Target > lo {
					exec = o.Target
				}
				hits = append(hits, MatchResult{Order: o, ExecPrice: exec})
			}
		case wt.Comparator_Less, wt.Comparator_LessEqual:
			// left edge must satisfy; selling-stops match at min(right, target)
			if compareHits(o.Comparator, lo, o.Target) {
				exec := hi
				if o.Target < hi {
					exec = o.Target
				}
				hits = append(hits, MatchResult{Order: o, ExecPrice: exec})
			}
		}
	}
	return hits
}

// SelectWinner picks a single winner among same-code hits within a bar, per
// spec §4.5.2: same-comparator >=/> orders choose the smaller target;
// same-comparator <=/< orders choose the larger target; mixed comparators,
// first-inserted wins.
func SelectWinner(hits []MatchResult) (MatchResult, bool) {
	if len(hits) == 0 {
		return MatchResult{}, false
	}
	if len(hits) == 1 {
		return hits[0], true
	}

	allGE := true
	allLE := true
	for _, h := range hits {
		switch h.Order.Comparator {
		case wt.Comparator_Greater, wt.Comparator_GreaterEqual:
			allLE = false
		case wt.Comparator_Less, wt.Comparator_LessEqual:
			allGE = false
		default:
			allGE, allLE = false, false
		}
	}

	best := hits[0]
	switch {
	case allGE:
		for _, h := range hits[1:] {
			if h.Order.Target < best.Order.Target {
				best = h
			}
		}
	case allLE:
		for _, h := range hits[1:] {
			if h.Order.Target > best.Order.Target {
				best = h
			}
		}
	default:
		for _, h := range hits[1:] {
			if h.Order.insertSeq < best.Order.insertSeq {
				best = h
			}
		}
	}
	return best, true
}
