// Copyright (c) 2024 Neomantra Corp

package basedata_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"wondertrader/basedata"
)

func TestBasedata(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "basedata suite")
}

func shfeNightSession() *basedata.SessionInfo {
	return &basedata.SessionInfo{
		ID:   "SHFE.au",
		Name: "night+day",
		Sections: []basedata.Section{
			{Open: 21 * 60, Close: 26 * 60}, // 21:00 -> 02:00 next day
			{Open: 9 * 60, Close: 11*60 + 30},
			{Open: 13 * 60 + 30, Close: 15 * 60},
		},
	}
}

var _ = Describe("SessionInfo", func() {
	It("maps a day-session time to the right cumulative minute", func() {
		s := shfeNightSession()
		idx := s.TimeToMinutes(930)
		Expect(idx).To(Equal(330)) // 5 hours of night section plus 30 minutes of the 09:00 section precede it
	})

	It("treats the last minute of a section as IsLastOfSection", func() {
		s := shfeNightSession()
		Expect(s.IsLastOfSection(1129)).To(BeTrue())
		Expect(s.IsLastOfSection(1000)).To(BeFalse())
	})

	It("round-trips TimeToMinutes/MinuteToTime", func() {
		s := shfeNightSession()
		idx := s.TimeToMinutes(1400)
		Expect(s.MinuteToTime(idx)).To(Equal(1400))
	})

	It("computes total trading minutes across all sections", func() {
		s := shfeNightSession()
		Expect(s.GetTradingMins()).To(Equal(300 + 150 + 90))
	})
})

var _ = Describe("CalcTradingDate", func() {
	It("attributes a pre-midnight night tick to the next business day", func() {
		s := shfeNightSession()
		cal := basedata.NewHolidayCalendar("CN", nil)
		tdate := basedata.CalcTradingDate(s, cal, 20240101, 2130, true)
		Expect(tdate).To(BeNumerically(">", uint32(20240101)))
	})

	It("attributes a day-session tick to the same business day", func() {
		s := shfeNightSession()
		cal := basedata.NewHolidayCalendar("CN", nil)
		tdate := basedata.CalcTradingDate(s, cal, 20240102, 930, true) // 2024-01-02 is a Tuesday
		Expect(tdate).To(Equal(uint32(20240102)))
	})
})
