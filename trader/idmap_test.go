// Copyright (c) 2024 Neomantra Corp

package trader_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"wondertrader/trader"
)

var _ = Describe("GenerateEntrustID / ExtractEntrustID", func() {
	It("round-trips (front_id, session_id, order_ref)", func() {
		id := trader.GenerateEntrustID(1, 2, 3)
		Expect(id).To(Equal("1#2#3"))

		frontID, sessionID, orderRef, err := trader.ExtractEntrustID(id)
		Expect(err).NotTo(HaveOccurred())
		Expect(frontID).To(Equal(1))
		Expect(sessionID).To(Equal(2))
		Expect(orderRef).To(Equal(3))
	})

	It("rejects a malformed entrust id", func() {
		_, _, _, err := trader.ExtractEntrustID("not-an-id")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("IDMap", func() {
	var m *trader.IDMap

	BeforeEach(func() {
		m = trader.NewIDMap()
	})

	It("generates strictly increasing local ids", func() {
		a := m.NextLocalID()
		b := m.NextLocalID()
		Expect(b).To(BeNumerically(">", a))
	})

	It("binds and looks up by local id before a broker id arrives", func() {
		localID := m.NextLocalID()
		m.Bind(localID, &trader.BrokerOrderInfo{Code: "au2412", IsLong: true, TotalQty: 10})

		info, ok := m.ByLocal(localID)
		Expect(ok).To(BeTrue())
		Expect(info.Code).To(Equal("au2412"))
		Expect(info.LocalID).To(Equal(localID))

		_, ok = m.ByBroker("broker-123")
		Expect(ok).To(BeFalse())
	})

	It("resolves by broker id once BindBrokerID attaches one", func() {
		localID := m.NextLocalID()
		m.Bind(localID, &trader.BrokerOrderInfo{Code: "au2412"})
		m.BindBrokerID(localID, "broker-123")

		info, ok := m.ByBroker("broker-123")
		Expect(ok).To(BeTrue())
		Expect(info.LocalID).To(Equal(localID))
	})

	It("removes tracking for both id spaces", func() {
		localID := m.NextLocalID()
		m.Bind(localID, &trader.BrokerOrderInfo{Code: "au2412", BrokerID: "broker-123"})
		m.Remove(localID)

		_, ok := m.ByLocal(localID)
		Expect(ok).To(BeFalse())
		_, ok = m.ByBroker("broker-123")
		Expect(ok).To(BeFalse())
	})
})
