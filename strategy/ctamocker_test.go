// Copyright (c) 2024 Neomantra Corp

package strategy_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"wondertrader/strategy"
)

// conditionRecorder captures every on_condition_triggered callback.
type conditionRecorder struct {
	hits []conditionHit
}

type conditionHit struct {
	code         string
	target, price float64
}

func (r *conditionRecorder) OnConditionTriggered(code string, target, price float64) {
	r.hits = append(r.hits, conditionHit{code: code, target: target, price: price})
}

var _ = Describe("CTAMocker.OnTick", func() {
	It("matches a conditional order against a simulated O-H-L-C tick range (spec scenario 3)", func() {
		ctx := strategy.NewContext("unit", nil)
		cb := &conditionRecorder{}
		mocker := strategy.NewCTAMocker(ctx, cb)
		contract := auContract()

		ctx.EnterLong("SHFE.au", 1, "brk", 0, 102.0, 1)

		for i, price := range []float64{100.0, 103.0, 99.0, 101.0} {
			err := mocker.OnTick(contract, price, uint64(i+1), true, i == 3)
			Expect(err).NotTo(HaveOccurred())
		}

		Expect(cb.hits).To(HaveLen(1))
		Expect(cb.hits[0].target).To(Equal(1.0))
		Expect(cb.hits[0].price).To(Equal(102.0))
		Expect(ctx.GetPosition("SHFE.au", false, "")).To(Equal(1.0))
	})

	It("applies a pending normal signal on the next tick", func() {
		ctx := strategy.NewContext("unit", nil)
		mocker := strategy.NewCTAMocker(ctx, nil)
		contract := auContract()

		ctx.SetPosition("SHFE.au", 3, "go-long", 0, 0, 1)
		err := mocker.OnTick(contract, 400.0, 1, false, false)
		Expect(err).NotTo(HaveOccurred())

		Expect(ctx.GetPosition("SHFE.au", false, "")).To(Equal(3.0))
		Expect(ctx.Signals).To(BeEmpty())
	})

	It("tracks dyn_profit as the current mark, not an accumulation (spec §8 property 2)", func() {
		ctx := strategy.NewContext("unit", nil)
		mocker := strategy.NewCTAMocker(ctx, nil)
		contract := auContract()

		ctx.SetPosition("SHFE.au", 2, "tag1", 0, 0, 1)
		Expect(mocker.OnTick(contract, 400.0, 1, false, false)).To(Succeed())

		Expect(mocker.OnTick(contract, 405.0, 2, false, false)).To(Succeed())
		Expect(ctx.Fund.TotalDynProfit).To(Equal(10000.0))

		Expect(mocker.OnTick(contract, 400.0, 3, false, false)).To(Succeed())
		Expect(ctx.Fund.TotalDynProfit).To(Equal(0.0))
	})
})
