// Copyright (c) 2024 Neomantra Corp

package trader_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"wondertrader/trader"
)

var _ = Describe("RateLimiter", func() {
	var limiter *trader.RateLimiter
	var base time.Time

	BeforeEach(func() {
		limiter = trader.NewRateLimiter(
			trader.RateLimitConfig{Timespan: time.Second, Boundary: 2},
			trader.RateLimitConfig{Timespan: time.Second, Boundary: 1},
		)
		base = time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC)
	})

	It("admits orders within the window boundary", func() {
		Expect(limiter.CheckOrderLimit("au2412", base)).To(Succeed())
		Expect(limiter.CheckOrderLimit("au2412", base.Add(100*time.Millisecond))).To(Succeed())
	})

	It("latches a code out once the window boundary is breached", func() {
		Expect(limiter.CheckOrderLimit("au2412", base)).To(Succeed())
		Expect(limiter.CheckOrderLimit("au2412", base.Add(100*time.Millisecond))).To(Succeed())
		Expect(limiter.CheckOrderLimit("au2412", base.Add(200*time.Millisecond))).To(HaveOccurred())

		Expect(limiter.IsExcluded("au2412")).To(BeTrue())
		// still excluded even after the window would otherwise have rolled off
		Expect(limiter.CheckOrderLimit("au2412", base.Add(2*time.Second))).To(HaveOccurred())
	})

	It("tracks order and cancel windows independently", func() {
		Expect(limiter.CheckOrderLimit("au2412", base)).To(Succeed())
		Expect(limiter.CheckOrderLimit("au2412", base.Add(10*time.Millisecond))).To(Succeed())
		// order window now at its boundary, but the cancel window is untouched
		Expect(limiter.CheckCancelLimit("au2412", base.Add(20*time.Millisecond))).To(Succeed())
	})

	It("does not let one code's breach affect another", func() {
		Expect(limiter.CheckOrderLimit("au2412", base)).To(Succeed())
		Expect(limiter.CheckOrderLimit("au2412", base.Add(10*time.Millisecond))).To(Succeed())
		Expect(limiter.CheckOrderLimit("au2412", base.Add(20*time.Millisecond))).To(HaveOccurred())

		Expect(limiter.IsExcluded("cu2412")).To(BeFalse())
		Expect(limiter.CheckOrderLimit("cu2412", base)).To(Succeed())
	})

	It("clears exclusion and counters on ResetCode", func() {
		Expect(limiter.CheckOrderLimit("au2412", base)).To(Succeed())
		Expect(limiter.CheckOrderLimit("au2412", base.Add(10*time.Millisecond))).To(Succeed())
		Expect(limiter.CheckOrderLimit("au2412", base.Add(20*time.Millisecond))).To(HaveOccurred())

		limiter.ResetCode("au2412")
		Expect(limiter.IsExcluded("au2412")).To(BeFalse())
		Expect(limiter.CheckOrderLimit("au2412", base.Add(30*time.Millisecond))).To(Succeed())
	})

	It("does not count a hit once it rolls outside the window", func() {
		narrow := trader.NewRateLimiter(
			trader.RateLimitConfig{Timespan: 100 * time.Millisecond, Boundary: 2},
			trader.RateLimitConfig{Timespan: time.Second, Boundary: 1},
		)
		Expect(narrow.CheckOrderLimit("au2412", base)).To(Succeed())
		// far enough past the 100ms window that the first hit has already aged out
		Expect(narrow.CheckOrderLimit("au2412", base.Add(time.Second))).To(Succeed())
		Expect(narrow.IsExcluded("au2412")).To(BeFalse())
	})

	It("enforces a lifetime total independent of the window", func() {
		capped := trader.NewRateLimiter(
			trader.RateLimitConfig{Timespan: time.Hour, Boundary: 100, TotalLimits: 1},
			trader.RateLimitConfig{Timespan: time.Hour, Boundary: 100},
		)
		Expect(capped.CheckOrderLimit("au2412", base)).To(Succeed())
		Expect(capped.CheckOrderLimit("au2412", base.Add(time.Millisecond))).To(HaveOccurred())
	})
})
