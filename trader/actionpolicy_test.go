// Copyright (c) 2024 Neomantra Corp

package trader_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"wondertrader/trader"
	"wondertrader/wt"
)

func TestTrader(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "trader suite")
}

var _ = Describe("Buy", func() {
	It("emits a single open order when not force-closing", func() {
		orders := trader.Buy("au2412", true, 500, 10, wt.OrderFlag_NOR, wt.CoverMode_CoverToday, trader.PosItem{}, false)
		Expect(orders).To(HaveLen(1))
		Expect(orders[0].Offset).To(Equal(trader.Offset_Open))
		Expect(orders[0].Qty).To(Equal(10.0))
	})

	It("emits a single close order for non-CoverToday exchanges", func() {
		pos := trader.PosItem{LPreAvail: 10}
		orders := trader.Buy("IF2412", true, 3800, 10, wt.OrderFlag_NOR, wt.CoverMode_CoverAny, pos, true)
		Expect(orders).To(HaveLen(1))
		Expect(orders[0].Offset).To(Equal(trader.Offset_Close))
		Expect(orders[0].Qty).To(Equal(10.0))
	})

	It("splits a CoverToday close across yesterday then today lots", func() {
		pos := trader.PosItem{LPreAvail: 3, LNewAvail: 7}
		orders := trader.Buy("au2412", true, 500, 10, wt.OrderFlag_NOR, wt.CoverMode_CoverToday, pos, true)

		Expect(orders).To(HaveLen(2))
		Expect(orders[0].Offset).To(Equal(trader.Offset_CloseYesterday))
		Expect(orders[0].Qty).To(Equal(3.0))
		Expect(orders[1].Offset).To(Equal(trader.Offset_CloseToday))
		Expect(orders[1].Qty).To(Equal(7.0))
	})

	It("emits only the today leg when there is no yesterday lot", func() {
		pos := trader.PosItem{LPreAvail: 0, LNewAvail: 10}
		orders := trader.Buy("au2412", true, 500, 5, wt.OrderFlag_NOR, wt.CoverMode_CoverToday, pos, true)

		Expect(orders).To(HaveLen(1))
		Expect(orders[0].Offset).To(Equal(trader.Offset_CloseToday))
		Expect(orders[0].Qty).To(Equal(5.0))
	})

	It("returns nil for a non-positive quantity", func() {
		Expect(trader.Buy("au2412", true, 500, 0, wt.OrderFlag_NOR, wt.CoverMode_CoverToday, trader.PosItem{}, false)).To(BeNil())
		Expect(trader.Buy("au2412", true, 500, -5, wt.OrderFlag_NOR, wt.CoverMode_CoverToday, trader.PosItem{}, false)).To(BeNil())
	})
})

var _ = Describe("ApplyQtyRule", func() {
	It("caps by available volume under byavail", func() {
		Expect(trader.ApplyQtyRule(trader.QtyRule_ByAvail, 20, 10, 5)).To(Equal(10.0))
		Expect(trader.ApplyQtyRule(trader.QtyRule_ByAvail, 5, 10, 5)).To(Equal(5.0))
	})

	It("matches current position under bycurrent", func() {
		Expect(trader.ApplyQtyRule(trader.QtyRule_ByCurrent, 20, 10, 7)).To(Equal(7.0))
	})

	It("passes through the requested quantity under byspec", func() {
		Expect(trader.ApplyQtyRule(trader.QtyRule_BySpec, 20, 10, 7)).To(Equal(20.0))
	})
})

var _ = Describe("LoadActionPolicy", func() {
	It("loads rules grouped by product and finds them by direction", func() {
		dir, err := os.MkdirTemp("", "wt-actionpolicy")
		Expect(err).NotTo(HaveOccurred())
		defer os.RemoveAll(dir)

		path := filepath.Join(dir, "policy.yaml")
		Expect(os.WriteFile(path, []byte(`
rules:
  - product: au
    direction: long
    offset: closetoday
    qty_rule: byavail
  - product: au
    direction: short
    offset: open
    qty_rule: byspec
`), 0644)).To(Succeed())

		policy, err := trader.LoadActionPolicy(path)
		Expect(err).NotTo(HaveOccurred())

		rule, qtyRule, ok := policy.RuleFor("au", "long")
		Expect(ok).To(BeTrue())
		Expect(rule.Offset).To(Equal("closetoday"))
		Expect(qtyRule).To(Equal(trader.QtyRule_ByAvail))

		_, _, ok = policy.RuleFor("cu", "long")
		Expect(ok).To(BeFalse())
	})
})
