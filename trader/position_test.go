// Copyright (c) 2024 Neomantra Corp

package trader_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"wondertrader/trader"
	"wondertrader/wt"
)

var _ = Describe("Reconcile", func() {
	It("splits total into yesterday/today when the broker doesn't report a position date", func() {
		rows := []trader.BrokerPositionRow{
			{Code: "au2412", IsLong: true, TotalVolume: 10, TotalAvail: 10, TodayVolume: 4, TodayAvail: 4},
		}
		item := trader.Reconcile("au2412", wt.CoverMode_CoverAny, rows)

		Expect(item.LNewVol).To(Equal(4.0))
		Expect(item.LPreVol).To(Equal(6.0))
	})

	It("trusts the broker-reported today/yesterday split directly under CoverToday", func() {
		rows := []trader.BrokerPositionRow{
			{Code: "au2412", IsLong: true, TotalVolume: 10, TotalAvail: 10, TodayVolume: 7, TodayAvail: 7, HasPositionDate: true},
		}
		item := trader.Reconcile("au2412", wt.CoverMode_CoverToday, rows)

		Expect(item.LNewVol).To(Equal(7.0))
		Expect(item.LPreVol).To(Equal(3.0))
	})

	It("tracks long and short legs independently", func() {
		rows := []trader.BrokerPositionRow{
			{Code: "au2412", IsLong: true, TotalVolume: 10, TotalAvail: 10, TodayVolume: 4, TodayAvail: 4},
			{Code: "au2412", IsLong: false, TotalVolume: 5, TotalAvail: 5, TodayVolume: 1, TodayAvail: 1},
		}
		item := trader.Reconcile("au2412", wt.CoverMode_CoverAny, rows)

		Expect(item.LNewVol).To(Equal(4.0))
		Expect(item.LPreVol).To(Equal(6.0))
		Expect(item.SNewVol).To(Equal(1.0))
		Expect(item.SPreVol).To(Equal(4.0))
	})

	It("returns a zeroed item for a code with no position rows", func() {
		item := trader.Reconcile("au2412", wt.CoverMode_CoverAny, nil)
		Expect(item.Code).To(Equal("au2412"))
		Expect(item.LNewVol).To(Equal(0.0))
		Expect(item.SPreVol).To(Equal(0.0))
	})
})
