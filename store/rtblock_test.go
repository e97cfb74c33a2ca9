// Copyright (c) 2024 Neomantra Corp

package store_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"wondertrader/store"
	"wondertrader/wt"
)

func TestStore(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "store suite")
}

var _ = Describe("RTBlock", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "wt-rtblock")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	It("round-trips written bars after close and reopen", func() {
		path := filepath.Join(dir, "au.dmb")
		b, err := store.OpenRTBlock(path, wt.BlockType_Bar1Min, 240)
		Expect(err).NotTo(HaveOccurred())

		for i := 0; i < 5; i++ {
			rec := wt.BarRecord{Date: 20240101, Time: uint64(202401010930 + i), Open: 100, High: 101, Low: 99, Close: 100.5}
			Expect(b.Append(&rec)).To(Succeed())
		}
		Expect(b.Size()).To(Equal(5))
		Expect(b.Close()).To(Succeed())

		b2, err := store.OpenRTBlock(path, wt.BlockType_Bar1Min, 240)
		Expect(err).NotTo(HaveOccurred())
		defer b2.Close()

		Expect(b2.Size()).To(Equal(5))
		var got wt.BarRecord
		Expect(b2.ReadAt(4, &got)).To(Succeed())
		Expect(got.Time).To(Equal(uint64(202401010934)))
		Expect(got.Open).To(Equal(100.0))
	})

	It("grows capacity when full and keeps prior records intact", func() {
		path := filepath.Join(dir, "small.dmb")
		b, err := store.OpenRTBlock(path, wt.BlockType_Tick, 240)
		Expect(err).NotTo(HaveOccurred())
		defer b.Close()

		initialCap := b.Capacity()
		for i := 0; i < initialCap+10; i++ {
			rec := wt.TickRecord{Price: float64(i), TotalVolume: float64(i)}
			Expect(b.Append(&rec)).To(Succeed())
		}
		Expect(b.Capacity()).To(BeNumerically(">", initialCap))
		Expect(b.Size()).To(Equal(initialCap + 10))

		var first wt.TickRecord
		Expect(b.ReadAt(0, &first)).To(Succeed())
		Expect(first.Price).To(Equal(0.0))
	})

	It("repairs capacity when the file length disagrees with the header", func() {
		path := filepath.Join(dir, "corrupt.dmb")
		b, err := store.OpenRTBlock(path, wt.BlockType_Tick, 240)
		Expect(err).NotTo(HaveOccurred())
		rec := wt.TickRecord{Price: 1}
		Expect(b.Append(&rec)).To(Succeed())
		Expect(b.Close()).To(Succeed())

		f, err := os.OpenFile(path, os.O_RDWR, 0644)
		Expect(err).NotTo(HaveOccurred())
		info, err := f.Stat()
		Expect(err).NotTo(HaveOccurred())
		Expect(f.Truncate(info.Size() - int64(wt.TickRecord_Size))).To(Succeed())
		Expect(f.Close()).To(Succeed())

		b2, err := store.OpenRTBlock(path, wt.BlockType_Tick, 240)
		Expect(err).NotTo(HaveOccurred())
		defer b2.Close()
		Expect(b2.Capacity()).To(BeNumerically(">=", 0))
		Expect(b2.Size()).To(BeNumerically("<=", b2.Capacity()))
	})
})

var _ = Describe("CheckTick", func() {
	It("rejects non-monotone total volume", func() {
		cached := &wt.TickRecord{TotalVolume: 100, ActionDate: 20240101, ActionTime: 93005000, TradingDate: 20240101}
		newTick := &wt.TickRecord{TotalVolume: 90, ActionDate: 20240101, ActionTime: 93006000, TradingDate: 20240101}
		Expect(store.CheckTick(cached, newTick, 20240101)).To(Equal(store.DedupRejectStale))
	})

	It("bumps time on exact collision with equal totals", func() {
		cached := &wt.TickRecord{TotalVolume: 100, ActionDate: 20240101, ActionTime: 93005000, TradingDate: 20240101}
		newTick := &wt.TickRecord{TotalVolume: 100, ActionDate: 20240101, ActionTime: 93005000, TradingDate: 20240101}
		Expect(store.CheckTick(cached, newTick, 20240101)).To(Equal(store.DedupBumpTime))
	})

	It("accepts a fresh tick with advancing volume and time", func() {
		cached := &wt.TickRecord{TotalVolume: 100, ActionDate: 20240101, ActionTime: 93005000, TradingDate: 20240101}
		newTick := &wt.TickRecord{TotalVolume: 110, ActionDate: 20240101, ActionTime: 93006000, TradingDate: 20240101}
		Expect(store.CheckTick(cached, newTick, 20240101)).To(Equal(store.DedupAccept))
	})
})
