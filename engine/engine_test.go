// Copyright (c) 2024 Neomantra Corp

package engine_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"wondertrader/basedata"
	"wondertrader/engine"
	"wondertrader/store"
	"wondertrader/wt"
)

func TestEngine(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "engine suite")
}

// fakeContext records every callback it receives for assertion.
type fakeContext struct {
	id     string
	ticks  []string
	bars   []string
}

func (f *fakeContext) ID() string { return f.id }
func (f *fakeContext) OnTick(code string, tick wt.TickRecord) {
	f.ticks = append(f.ticks, code)
}
func (f *fakeContext) OnBar(code, period string, times int, bar wt.BarRecord) {
	f.bars = append(f.bars, code)
}
func (f *fakeContext) OnSchedule(date uint32, barTime int)  {}
func (f *fakeContext) OnSessionBegin(tdate uint32)          {}
func (f *fakeContext) OnSessionEnd(tdate uint32)            {}

func dayOnlySession() *basedata.SessionInfo {
	return &basedata.SessionInfo{
		ID:       "FI",
		Sections: []basedata.Section{{Open: 540, Close: 543}}, // 09:00-09:03, 3 one-minute bars
	}
}

func tickAt(code string, price, totalVol float64, actionTime uint32, tdate uint32) wt.TickRecord {
	var t wt.TickRecord
	copy(t.Code[:], code)
	t.Price = price
	t.TotalVolume = totalVol
	t.Volume = totalVol
	t.ActionDate = tdate
	t.ActionTime = actionTime
	t.TradingDate = tdate
	return t
}

var _ = Describe("Engine", func() {
	var dir string
	var rt *store.RTBlock

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "wt-engine")
		Expect(err).NotTo(HaveOccurred())
		rt, err = store.OpenRTBlock(filepath.Join(dir, "au.dmb"), wt.BlockType_Tick, 1440)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		rt.Close()
		os.RemoveAll(dir)
	})

	It("dispatches ticks only to subscribed contexts", func() {
		e := engine.NewEngine(nil, nil)
		e.RegisterCode("SHFE.au", "FI", rt, dayOnlySession())

		subscribed := &fakeContext{id: "ctx1"}
		unsubscribed := &fakeContext{id: "ctx2"}
		e.RegisterContext(subscribed)
		e.RegisterContext(unsubscribed)
		e.Subs.SubTick("ctx1", "SHFE.au")

		e.OnTick("SHFE.au", tickAt("au", 400.0, 10, 90000000, 20240101))

		Expect(subscribed.ticks).To(Equal([]string{"SHFE.au"}))
		Expect(unsubscribed.ticks).To(BeEmpty())
	})

	It("fires a bar-close event to bar subscribers when a minute boundary is crossed", func() {
		e := engine.NewEngine(nil, nil)
		e.RegisterCode("SHFE.au", "FI", rt, dayOnlySession())

		ctx := &fakeContext{id: "ctx1"}
		e.RegisterContext(ctx)
		e.Subs.SubBar("ctx1", "SHFE.au", "m1", 1)

		e.OnTick("SHFE.au", tickAt("au", 400.0, 10, 90030000, 20240101)) // 09:00:30
		e.OnTick("SHFE.au", tickAt("au", 401.0, 20, 90130000, 20240101)) // 09:01:30, crosses into minute 2

		Expect(ctx.bars).To(Equal([]string{"SHFE.au"}))
	})

	It("drops a tick whose total volume regresses", func() {
		e := engine.NewEngine(nil, nil)
		e.RegisterCode("SHFE.au", "FI", rt, dayOnlySession())

		ctx := &fakeContext{id: "ctx1"}
		e.RegisterContext(ctx)
		e.Subs.SubTick("ctx1", "SHFE.au")

		e.OnTick("SHFE.au", tickAt("au", 400.0, 10, 90000000, 20240101))
		e.OnTick("SHFE.au", tickAt("au", 399.0, 5, 90010000, 20240101)) // stale: volume regressed

		Expect(ctx.ticks).To(Equal([]string{"SHFE.au"}))
	})
})
