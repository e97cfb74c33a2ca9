// Copyright (c) 2024 Neomantra Corp

package strategy_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"wondertrader/strategy"
	"wondertrader/wt"
)

func TestStrategy(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "strategy suite")
}

func auContract() strategy.ContractView {
	return strategy.ContractView{Code: "SHFE.au", PriceTick: 0.05, VolumeScale: 1000, FeeRate: 0, IsT1: false, CanShort: true}
}

var _ = Describe("Context.DoSetPosition", func() {
	It("closes a single open-close round with the expected FIFO profit (spec scenario 1)", func() {
		ctx := strategy.NewContext("unit", nil)
		contract := auContract()

		trades1, closes1, err := ctx.DoSetPosition(contract, 2, 400.0, "tag1", 20240101210005, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(trades1).To(HaveLen(1))
		Expect(trades1[0].Action).To(Equal("open"))
		Expect(closes1).To(BeEmpty())

		pos := ctx.GetPosition("SHFE.au", false, "")
		Expect(pos).To(Equal(2.0))

		trades2, closes2, err := ctx.DoSetPosition(contract, 0, 405.0, "exit", 20240101210025, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(trades2).To(HaveLen(1))
		Expect(trades2[0].Action).To(Equal("close"))
		Expect(closes2).To(HaveLen(1))
		Expect(closes2[0].Profit).To(Equal((405.0 - 400.0) * 2 * 1000))
		Expect(closes2[0].Profit).To(Equal(10000.0))

		Expect(ctx.Fund.TotalProfit).To(Equal(10000.0))
		Expect(ctx.GetPosition("SHFE.au", false, "")).To(Equal(0.0))
	})

	It("is a no-op with no trades when target equals current volume", func() {
		ctx := strategy.NewContext("unit", nil)
		contract := auContract()

		_, _, err := ctx.DoSetPosition(contract, 2, 400.0, "tag1", 1, 0)
		Expect(err).NotTo(HaveOccurred())

		trades, closes, err := ctx.DoSetPosition(contract, 2, 450.0, "noop", 2, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(trades).To(BeEmpty())
		Expect(closes).To(BeEmpty())
	})

	It("rejects a target below the frozen T+1 quantity (spec scenario 2)", func() {
		ctx := strategy.NewContext("unit", nil)
		contract := strategy.ContractView{Code: "SSE.600000", PriceTick: 0.01, VolumeScale: 1, IsT1: true, CanShort: false}

		_, _, err := ctx.DoSetPosition(contract, 100, 10.0, "open", 1, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(ctx.Positions["SSE.600000"].Frozen).To(Equal(100.0))

		_, _, err = ctx.DoSetPosition(contract, 50, 10.5, "reduce", 2, 0)
		Expect(err).To(MatchError(wt.ErrFrozenViolation))
		Expect(ctx.GetPosition("SSE.600000", false, "")).To(Equal(100.0))
	})

	It("allows reducing below frozen once the session resets it", func() {
		ctx := strategy.NewContext("unit", nil)
		contract := strategy.ContractView{Code: "SSE.600000", PriceTick: 0.01, VolumeScale: 1, IsT1: true, CanShort: false}

		_, _, err := ctx.DoSetPosition(contract, 100, 10.0, "open", 1, 0)
		Expect(err).NotTo(HaveOccurred())

		ctx.ResetFrozenForSession()
		Expect(ctx.Positions["SSE.600000"].Frozen).To(Equal(0.0))

		_, _, err = ctx.DoSetPosition(contract, 50, 10.5, "reduce", 2, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(ctx.GetPosition("SSE.600000", false, "")).To(Equal(50.0))
	})
})

var _ = Describe("Context.RecomputeDynProfit", func() {
	It("tracks the current mark instead of accumulating every tick (spec §8 property 2)", func() {
		ctx := strategy.NewContext("unit", nil)
		contract := auContract()

		_, _, err := ctx.DoSetPosition(contract, 2, 400.0, "tag1", 1, 0)
		Expect(err).NotTo(HaveOccurred())

		ctx.RecomputeDynProfit(contract, 405.0) // +10000 mark
		Expect(ctx.Fund.TotalDynProfit).To(Equal(10000.0))

		ctx.RecomputeDynProfit(contract, 400.0) // reverts to open: mark is 0
		Expect(ctx.Fund.TotalDynProfit).To(Equal(0.0))

		ctx.RecomputeDynProfit(contract, 402.5) // +5000 mark
		Expect(ctx.Fund.TotalDynProfit).To(Equal(5000.0))
	})
})
