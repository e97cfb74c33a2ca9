// Copyright (c) 2024 Neomantra Corp
//
// Action-policy trade routing (spec §4.6.3, §6.3): translates a strategy's
// `buy`/`sell` intent into 1..N broker-facing child orders with concrete
// open/close/closetoday offsets, honoring CoverToday's today-vs-yesterday
// lot split. YAML shape grounded on basedata/registry.go's contracts.yaml
// pattern.

package trader

import (
	"os"

	"gopkg.in/yaml.v3"

	"wondertrader/wt"
)

// QtyRule controls how a policy rule's order quantity is derived relative
// to the current position (spec §6.3).
type QtyRule uint8

const (
	QtyRule_BySpec    QtyRule = iota // use the quantity as provided
	QtyRule_ByAvail                   // cap by the available (unfrozen) volume
	QtyRule_ByCurrent                 // match exactly the current position
)

// Offset is the broker-facing open/close intent of a child order.
type Offset uint8

const (
	Offset_Open Offset = iota
	Offset_CloseToday
	Offset_CloseYesterday
	Offset_Close // close, cover-mode agnostic (non-CoverToday exchanges)
)

// ActionRule is one `{product, direction, offset, qty_rule}` policy entry.
type ActionRule struct {
	Product  string  `yaml:"product"`
	Direction string `yaml:"direction"` // "long" or "short"
	Offset   string  `yaml:"offset"`    // "open", "close", "closetoday", "closeyesterday"
	QtyRule  string  `yaml:"qty_rule"`
}

type actionPolicyDoc struct {
	Rules []ActionRule `yaml:"rules"`
}

// ActionPolicy holds the loaded per-product routing rules.
type ActionPolicy struct {
	rules map[string][]ActionRule // product -> rules
}

// LoadActionPolicy reads a YAML action-policy file (spec §6.3).
func LoadActionPolicy(path string) (*ActionPolicy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc actionPolicyDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	p := &ActionPolicy{rules: map[string][]ActionRule{}}
	for _, r := range doc.Rules {
		p.rules[r.Product] = append(p.rules[r.Product], r)
	}
	return p, nil
}

// ChildOrder is one emitted broker-facing order from an action-policy translation.
type ChildOrder struct {
	Code     string
	IsLong   bool
	Price    float64
	Qty      float64
	Offset   Offset
	Flag     wt.OrderFlag
}

// Buy translates a target buy/sell intent into 1..N child orders given the
// contract's current position split, per spec §4.6.3's CTP CoverToday
// example: closing a long of 10 held as 3-yesterday + 7-today emits
// close_yesterday 3 then close_today 7.
func Buy(code string, isLong bool, price, qty float64, flag wt.OrderFlag, coverMode wt.CoverMode, pos PosItem, forceClose bool) []ChildOrder {
	if qty <= 0 {
		return nil
	}

	var availToday, availYesterday float64
	if isLong {
		availToday, availYesterday = pos.LNewAvail, pos.LPreAvail
	} else {
		availToday, availYesterday = pos.SNewAvail, pos.SPreAvail
	}

	if !forceClose {
		return []ChildOrder{{Code: code, IsLong: isLong, Price: price, Qty: qty, Offset: Offset_Open, Flag: flag}}
	}

	if coverMode != wt.CoverMode_CoverToday {
		return []ChildOrder{{Code: code, IsLong: isLong, Price: price, Qty: qty, Offset: Offset_Close, Flag: flag}}
	}

	var out []ChildOrder
	remaining := qty

	// Close yesterday's lot first (exchange convention), then today's.
	if fromYesterday := minFloat(remaining, availYesterday); fromYesterday > 0 {
		out = append(out, ChildOrder{Code: code, IsLong: isLong, Price: price, Qty: fromYesterday, Offset: Offset_CloseYesterday, Flag: flag})
		remaining -= fromYesterday
	}
	if remaining > 0 {
		fromToday := minFloat(remaining, availToday)
		if fromToday > 0 {
			out = append(out, ChildOrder{Code: code, IsLong: isLong, Price: price, Qty: fromToday, Offset: Offset_CloseToday, Flag: flag})
			remaining -= fromToday
		}
	}
	return out
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// ApplyQtyRule adjusts a requested quantity per the rule's policy (spec §6.3).
func ApplyQtyRule(rule QtyRule, requested, available, current float64) float64 {
	switch rule {
	case QtyRule_ByAvail:
		if requested > available {
			return available
		}
		return requested
	case QtyRule_ByCurrent:
		return current
	default: // QtyRule_BySpec
		return requested
	}
}

func parseQtyRule(s string) QtyRule {
	switch s {
	case "byavail":
		return QtyRule_ByAvail
	case "bycurrent":
		return QtyRule_ByCurrent
	default:
		return QtyRule_BySpec
	}
}

// RuleFor finds the matching rule for product/direction, if any.
func (p *ActionPolicy) RuleFor(product, direction string) (ActionRule, QtyRule, bool) {
	for _, r := range p.rules[product] {
		if r.Direction == direction {
			return r, parseQtyRule(r.QtyRule), true
		}
	}
	return ActionRule{}, QtyRule_BySpec, false
}
