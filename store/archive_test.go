// Copyright (c) 2024 Neomantra Corp

package store_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"wondertrader/store"
	"wondertrader/wt"
)

var _ = Describe("SessionCloser.CloseTickLikeStream", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "wt-archive")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	It("writes a per-tdate tick archive and zeros the RT block (spec §8 scenario 5)", func() {
		rtPath := filepath.Join(dir, "au.dmb")
		block, err := store.OpenRTBlock(rtPath, wt.BlockType_Tick, 1440)
		Expect(err).NotTo(HaveOccurred())
		defer block.Close()

		for i := 0; i < 1500; i++ {
			rec := wt.TickRecord{ActionDate: 20240101, ActionTime: uint32(90000000 + i), TradingDate: 20240101, Price: 400.0}
			Expect(block.Append(&rec)).To(Succeed())
		}
		Expect(block.Size()).To(Equal(1500))

		closer := store.SessionCloser{Layout: store.ArchiveLayout{Root: dir}}
		Expect(closer.CloseTickLikeStream(block, "SHFE", "au", 20240101)).To(Succeed())

		Expect(block.Size()).To(Equal(0))

		path := closer.Layout.ArchivePath(wt.BlockType_Tick, "SHFE", "au", 20240101)
		ticks, err := store.ReadTickArchive(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(ticks).To(HaveLen(1500))
		Expect(ticks[0].ActionDate).To(Equal(uint32(20240101)))
	})
})

var _ = Describe("Marker", func() {
	var path string

	BeforeEach(func() {
		dir, err := os.MkdirTemp("", "wt-marker")
		Expect(err).NotTo(HaveOccurred())
		path = filepath.Join(dir, "marker.ini")
	})

	It("treats a fresh marker file as not-yet-proceeded", func() {
		m, err := store.OpenMarker(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(m.IsSessionProceeded("day", 20240101)).To(BeFalse())
	})

	It("is idempotent: marking twice for the same tdate still reports proceeded (spec §8 property 4)", func() {
		m, err := store.OpenMarker(path)
		Expect(err).NotTo(HaveOccurred())

		Expect(m.Mark("day", 20240101)).To(Succeed())
		Expect(m.IsSessionProceeded("day", 20240101)).To(BeTrue())

		Expect(m.Mark("day", 20240101)).To(Succeed())
		Expect(m.IsSessionProceeded("day", 20240101)).To(BeTrue())

		Expect(m.IsSessionProceeded("day", 20240102)).To(BeFalse())
	})

	It("persists marks across reopen", func() {
		m, err := store.OpenMarker(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Mark("day", 20240101)).To(Succeed())

		m2, err := store.OpenMarker(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(m2.IsSessionProceeded("day", 20240101)).To(BeTrue())
	})

	It("keeps markers for independent session ids separate", func() {
		m, err := store.OpenMarker(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(m.Mark("day", 20240101)).To(Succeed())

		Expect(m.IsSessionProceeded("night", 20240101)).To(BeFalse())
	})
})
