// Copyright (c) 2024 Neomantra Corp
//
// Local <-> broker order ID translation (spec §4.6.1). Entrust IDs pack
// (front_id, session_id, order_ref) losslessly, satisfying the round-trip
// law of spec §8 ("Round-trip laws").

package trader

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// BrokerOrderInfo is what the adapter remembers about a broker-side order.
type BrokerOrderInfo struct {
	LocalID   uint32
	BrokerID  string
	Code      string
	IsLong    bool
	TotalQty  float64
	LeftQty   float64
	Price     float64
	Canceled  bool
	UserTag   string
}

// GenerateEntrustID packs (front_id, session_id, order_ref) into the
// broker-facing id string `{front_id}#{session_id}#{order_ref}`.
func GenerateEntrustID(frontID, sessionID, orderRef int) string {
	return fmt.Sprintf("%d#%d#%d", frontID, sessionID, orderRef)
}

// ExtractEntrustID is the exact inverse of GenerateEntrustID.
func ExtractEntrustID(entrustID string) (frontID, sessionID, orderRef int, err error) {
	parts := strings.Split(entrustID, "#")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("malformed entrust id %q", entrustID)
	}
	frontID, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, err
	}
	sessionID, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, 0, err
	}
	orderRef, err = strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, 0, err
	}
	return frontID, sessionID, orderRef, nil
}

// IDMap maintains the bidirectional local<->broker id translation tables of
// spec §4.6.1, plus the monotonic local-id generator.
type IDMap struct {
	mu         sync.RWMutex
	nextLocal  uint32
	byLocal    map[uint32]*BrokerOrderInfo
	byBroker   map[string]uint32
}

func NewIDMap() *IDMap {
	return &IDMap{byLocal: map[uint32]*BrokerOrderInfo{}, byBroker: map[string]uint32{}}
}

// NextLocalID returns a fresh monotonic local order id.
func (m *IDMap) NextLocalID() uint32 {
	return atomic.AddUint32(&m.nextLocal, 1)
}

// Bind records a freshly submitted order under both id spaces.
func (m *IDMap) Bind(localID uint32, info *BrokerOrderInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	info.LocalID = localID
	m.byLocal[localID] = info
	if info.BrokerID != "" {
		m.byBroker[info.BrokerID] = localID
	}
}

// BindBrokerID attaches a broker-assigned id to an order already tracked by
// local id (the broker id often arrives asynchronously after submission).
func (m *IDMap) BindBrokerID(localID uint32, brokerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if info, ok := m.byLocal[localID]; ok {
		info.BrokerID = brokerID
		m.byBroker[brokerID] = localID
	}
}

func (m *IDMap) ByLocal(localID uint32) (*BrokerOrderInfo, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	info, ok := m.byLocal[localID]
	return info, ok
}

func (m *IDMap) ByBroker(brokerID string) (*BrokerOrderInfo, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	localID, ok := m.byBroker[brokerID]
	if !ok {
		return nil, false
	}
	return m.byLocal[localID]
}

// Remove drops a completed order's tracking entries.
func (m *IDMap) Remove(localID uint32) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if info, ok := m.byLocal[localID]; ok {
		delete(m.byBroker, info.BrokerID)
		delete(m.byLocal, localID)
	}
}
