// Copyright (c) 2024 Neomantra Corp

package replay_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"wondertrader/replay"
	"wondertrader/wt"
)

type fakeArchiveSource struct {
	ticks []wt.TickRecord
	bars  []wt.BarRecord
}

func (f *fakeArchiveSource) TailTicks(code string, count int, etime uint64) ([]wt.TickRecord, error) {
	if count > len(f.ticks) {
		count = len(f.ticks)
	}
	return f.ticks[len(f.ticks)-count:], nil
}

func (f *fakeArchiveSource) TailBars(code, period string, count int, etime uint64) ([]wt.BarRecord, error) {
	if count > len(f.bars) {
		count = len(f.bars)
	}
	return f.bars[len(f.bars)-count:], nil
}

type fakeRTSource struct {
	ticks []wt.TickRecord
	bars  []wt.BarRecord
}

func (f *fakeRTSource) TailTicks(code string, count int) ([]wt.TickRecord, error) {
	if count > len(f.ticks) {
		count = len(f.ticks)
	}
	return f.ticks[len(f.ticks)-count:], nil
}

func (f *fakeRTSource) TailBars(code, period string, count int) ([]wt.BarRecord, error) {
	if count > len(f.bars) {
		count = len(f.bars)
	}
	return f.bars[len(f.bars)-count:], nil
}

var _ = Describe("LiveReader", func() {
	It("serves entirely from the RT tail when it already satisfies count", func() {
		archive := &fakeArchiveSource{ticks: []wt.TickRecord{{Price: 1}, {Price: 2}}}
		rt := &fakeRTSource{ticks: []wt.TickRecord{{Price: 3}, {Price: 4}, {Price: 5}}}
		reader := replay.NewLiveReader(archive, rt)

		slice, err := reader.ReadTickSlice("au2412", 2, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(slice.Records).To(HaveLen(2))
		Expect(slice.Records[0].Price).To(Equal(4.0))
		Expect(slice.Records[1].Price).To(Equal(5.0))
	})

	It("concatenates archive tail ahead of the RT tail when RT alone is short", func() {
		archive := &fakeArchiveSource{ticks: []wt.TickRecord{{Price: 1}, {Price: 2}, {Price: 3}}}
		rt := &fakeRTSource{ticks: []wt.TickRecord{{Price: 4}}}
		reader := replay.NewLiveReader(archive, rt)

		slice, err := reader.ReadTickSlice("au2412", 3, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(slice.Records).To(HaveLen(3))
		Expect(slice.Records[0].Price).To(Equal(2.0))
		Expect(slice.Records[1].Price).To(Equal(3.0))
		Expect(slice.Records[2].Price).To(Equal(4.0))
	})

	It("serves bar slices the same way", func() {
		archive := &fakeArchiveSource{bars: []wt.BarRecord{{Close: 10}, {Close: 11}}}
		rt := &fakeRTSource{bars: []wt.BarRecord{{Close: 12}}}
		reader := replay.NewLiveReader(archive, rt)

		slice, err := reader.ReadKlineSlice("au2412", "m1", 3, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(slice.Records).To(HaveLen(3))
		Expect(slice.Records[2].Close).To(Equal(12.0))
	})
})
