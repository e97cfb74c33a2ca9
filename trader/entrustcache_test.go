// Copyright (c) 2024 Neomantra Corp

package trader_test

import (
	"fmt"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"wondertrader/trader"
)

var _ = Describe("EntrustCache", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "wt-entrustcache")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(dir)
	})

	It("round-trips a Put through Get", func() {
		path := filepath.Join(dir, "entrust.dat")
		cache, err := trader.OpenEntrustCache(path, 16)
		Expect(err).NotTo(HaveOccurred())
		defer cache.Close()

		Expect(cache.Put("1#2#3", "order-local-1")).To(Succeed())

		value, ok := cache.Get("1#2#3")
		Expect(ok).To(BeTrue())
		Expect(value).To(Equal("order-local-1"))
	})

	It("reports a miss for a key never written", func() {
		path := filepath.Join(dir, "entrust.dat")
		cache, err := trader.OpenEntrustCache(path, 16)
		Expect(err).NotTo(HaveOccurred())
		defer cache.Close()

		_, ok := cache.Get("no#such#key")
		Expect(ok).To(BeFalse())
	})

	It("overwrites the value for an existing key", func() {
		path := filepath.Join(dir, "entrust.dat")
		cache, err := trader.OpenEntrustCache(path, 16)
		Expect(err).NotTo(HaveOccurred())
		defer cache.Close()

		Expect(cache.Put("1#2#3", "first")).To(Succeed())
		Expect(cache.Put("1#2#3", "second")).To(Succeed())

		value, ok := cache.Get("1#2#3")
		Expect(ok).To(BeTrue())
		Expect(value).To(Equal("second"))
	})

	It("persists entries across a close and reopen", func() {
		path := filepath.Join(dir, "entrust.dat")
		cache, err := trader.OpenEntrustCache(path, 16)
		Expect(err).NotTo(HaveOccurred())
		Expect(cache.Put("1#2#3", "order-local-1")).To(Succeed())
		Expect(cache.Close()).To(Succeed())

		reopened, err := trader.OpenEntrustCache(path, 16)
		Expect(err).NotTo(HaveOccurred())
		defer reopened.Close()

		value, ok := reopened.Get("1#2#3")
		Expect(ok).To(BeTrue())
		Expect(value).To(Equal("order-local-1"))
	})

	It("handles many entries via open-addressing probing without collisions", func() {
		path := filepath.Join(dir, "entrust.dat")
		cache, err := trader.OpenEntrustCache(path, 64)
		Expect(err).NotTo(HaveOccurred())
		defer cache.Close()

		for i := 0; i < 40; i++ {
			key := fmt.Sprintf("1#%d#%d", i, i*7)
			Expect(cache.Put(key, fmt.Sprintf("local-%d", i))).To(Succeed())
		}
		for i := 0; i < 40; i++ {
			key := fmt.Sprintf("1#%d#%d", i, i*7)
			value, ok := cache.Get(key)
			Expect(ok).To(BeTrue())
			Expect(value).To(Equal(fmt.Sprintf("local-%d", i)))
		}
	})
})
