// Copyright (c) 2024 Neomantra Corp

package replay_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"wondertrader/replay"
	"wondertrader/wt"
)

func TestReplay(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "replay suite")
}

type recordingSink struct {
	ticks []replay.Event
	done  bool
}

func (s *recordingSink) HandleTick(e replay.Event)        { s.ticks = append(s.ticks, e) }
func (s *recordingSink) HandleBarClose(e replay.Event)    {}
func (s *recordingSink) HandleSchedule(e replay.Event)    {}
func (s *recordingSink) HandleSessionBegin(e replay.Event) {}
func (s *recordingSink) HandleSessionEnd(e replay.Event)  { s.done = true }
func (s *recordingSink) HandleSectionEnd(e replay.Event)  {}

var _ = Describe("Replayer", func() {
	It("merges multiple symbols in (date, time) order", func() {
		r := replay.NewReplayer()
		r.AddSymbol("au2412", []wt.TickRecord{
			{ActionDate: 20240101, ActionTime: 93100, Price: 500},
			{ActionDate: 20240101, ActionTime: 93300, Price: 502},
		})
		r.AddSymbol("cu2412", []wt.TickRecord{
			{ActionDate: 20240101, ActionTime: 93200, Price: 70000},
		})
		r.Prepare()

		sink := &recordingSink{}
		r.Run(sink)

		Expect(sink.ticks).To(HaveLen(3))
		Expect(sink.ticks[0].Code).To(Equal("au2412"))
		Expect(sink.ticks[1].Code).To(Equal("cu2412"))
		Expect(sink.ticks[2].Code).To(Equal("au2412"))
		Expect(sink.done).To(BeTrue())
	})

	It("emits nothing but session-end for an empty universe", func() {
		r := replay.NewReplayer()
		r.Prepare()

		sink := &recordingSink{}
		r.Run(sink)

		Expect(sink.ticks).To(BeEmpty())
		Expect(sink.done).To(BeTrue())
	})

	It("stops before dispatching further ticks once Stop is called", func() {
		r := replay.NewReplayer()
		r.AddSymbol("au2412", []wt.TickRecord{
			{ActionDate: 20240101, ActionTime: 93100, Price: 500},
			{ActionDate: 20240101, ActionTime: 93200, Price: 501},
		})
		r.Prepare()
		r.Stop()

		sink := &recordingSink{}
		r.Run(sink)

		Expect(sink.ticks).To(BeEmpty())
		Expect(sink.done).To(BeFalse())
	})

	It("single-steps only after StepCalc when a hook is installed", func() {
		r := replay.NewReplayer()
		r.AddSymbol("au2412", []wt.TickRecord{
			{ActionDate: 20240101, ActionTime: 93100, Price: 500},
		})
		r.Prepare()
		r.InstallHook()

		sink := &recordingSink{}
		done := make(chan struct{})
		go func() {
			r.Run(sink)
			close(done)
		}()

		r.StepCalc()
		Eventually(done).Should(BeClosed())
		Expect(sink.ticks).To(HaveLen(1))
	})
})

var _ = Describe("SynthesizeTicksFromBar", func() {
	It("produces four pseudo-ticks at the bar's OHLC corners", func() {
		bar := wt.BarRecord{Date: 20240101, Open: 100, High: 105, Low: 98, Close: 103, Vol: 400, Hold: 1000}
		ticks := replay.SynthesizeTicksFromBar("SHFE", "au2412", bar)

		Expect(ticks).To(HaveLen(4))
		Expect(ticks[0].Tick.Price).To(Equal(100.0))
		Expect(ticks[1].Tick.Price).To(Equal(105.0))
		Expect(ticks[2].Tick.Price).To(Equal(98.0))
		Expect(ticks[3].Tick.Price).To(Equal(103.0))
		Expect(ticks[3].IsBarClose()).To(BeTrue())
		Expect(ticks[0].IsBarClose()).To(BeFalse())

		for _, t := range ticks {
			Expect(t.Tick.TotalVolume).To(Equal(400.0))
			Expect(t.Tick.OpenInterest).To(Equal(1000.0))
		}
	})
})

var _ = Describe("AdjustFactorSeries", func() {
	It("returns the latest factor in effect on or before a date", func() {
		s := replay.AdjustFactorSeries{
			{Date: 20240101, Factor: 1.0},
			{Date: 20240301, Factor: 0.5},
			{Date: 20240601, Factor: 0.25},
		}
		Expect(s.FactorFor(20240201)).To(Equal(1.0))
		Expect(s.FactorFor(20240301)).To(Equal(0.5))
		Expect(s.FactorFor(20241231)).To(Equal(0.25))
	})

	It("returns 1.0 for a date before the series begins", func() {
		s := replay.AdjustFactorSeries{{Date: 20240301, Factor: 0.5}}
		Expect(s.FactorFor(20240101)).To(Equal(1.0))
	})
})

var _ = Describe("AdjustBar", func() {
	It("scales price fields and optionally volume/turnover/openinterest", func() {
		bar := wt.BarRecord{Open: 100, High: 110, Low: 90, Close: 105, Settle: 104, Bid: 104.5, Ask: 105.5, Vol: 100, Money: 10000, Hold: 50}
		out := replay.AdjustBar(bar, 0.5, replay.AdjustVolume|replay.AdjustOpenInterest)

		Expect(out.Open).To(Equal(50.0))
		Expect(out.Close).To(Equal(52.5))
		Expect(out.Vol).To(Equal(200.0))   // divided, since volume scales inversely to price
		Expect(out.Hold).To(Equal(100.0))  // divided
		Expect(out.Money).To(Equal(10000.0)) // turnover flag not set: unchanged
	})

	It("leaves volume/turnover/openinterest untouched when no flags are set", func() {
		bar := wt.BarRecord{Open: 100, Vol: 100, Money: 10000, Hold: 50}
		out := replay.AdjustBar(bar, 2.0, 0)

		Expect(out.Open).To(Equal(200.0))
		Expect(out.Vol).To(Equal(100.0))
		Expect(out.Money).To(Equal(10000.0))
		Expect(out.Hold).To(Equal(50.0))
	})
})
