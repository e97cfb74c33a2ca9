// Copyright (c) 2024 Neomantra Corp
//
// Fixed-layout, little-endian, packed (no padding) market-data records.
// Field order and manual binary.LittleEndian fill mirror the teacher's
// RHeader/OhlcvMsg/Mbp0Msg style: every record exposes RSize()/FillRaw/PutRaw
// instead of reaching for a struct-tag codec, because the wire layout is
// byte-exact and self-describing tag codecs would not save anything here.

package wt

import (
	"encoding/binary"
	"math"
)

///////////////////////////////////////////////////////////////////////////////

// Record is implemented by every fixed-layout wire record.
type Record interface {
	RSize() int
	FillRaw(b []byte) error
	PutRaw(b []byte)
}

///////////////////////////////////////////////////////////////////////////////

// BarRecord is one OHLCV bar (1m, 5m, or daily). `Time` encodes
// YYYYMMDD*10000+HHMM for intraday bars, 0 for daily bars.
type BarRecord struct {
	Date   uint32
	Time   uint64
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Settle float64
	Vol    float64
	Money  float64
	Hold   float64
	Add    float64
	Bid    float64
	Ask    float64
}

const BarRecord_Size = 4 + 8 + 8*11 // date + time + 11 float64 fields

func (r *BarRecord) RSize() int { return BarRecord_Size }

func (r *BarRecord) FillRaw(b []byte) error {
	if len(b) < BarRecord_Size {
		return unexpectedBytesError(len(b), BarRecord_Size)
	}
	r.Date = binary.LittleEndian.Uint32(b[0:4])
	r.Time = binary.LittleEndian.Uint64(b[4:12])
	r.Open = float64frombits(b[12:20])
	r.High = float64frombits(b[20:28])
	r.Low = float64frombits(b[28:36])
	r.Close = float64frombits(b[36:44])
	r.Settle = float64frombits(b[44:52])
	r.Vol = float64frombits(b[52:60])
	r.Money = float64frombits(b[60:68])
	r.Hold = float64frombits(b[68:76])
	r.Add = float64frombits(b[76:84])
	r.Bid = float64frombits(b[84:92])
	r.Ask = float64frombits(b[92:100])
	return nil
}

func (r *BarRecord) PutRaw(b []byte) {
	binary.LittleEndian.PutUint32(b[0:4], r.Date)
	binary.LittleEndian.PutUint64(b[4:12], r.Time)
	putFloat64(b[12:20], r.Open)
	putFloat64(b[20:28], r.High)
	putFloat64(b[28:36], r.Low)
	putFloat64(b[36:44], r.Close)
	putFloat64(b[44:52], r.Settle)
	putFloat64(b[52:60], r.Vol)
	putFloat64(b[60:68], r.Money)
	putFloat64(b[68:76], r.Hold)
	putFloat64(b[76:84], r.Add)
	putFloat64(b[84:92], r.Bid)
	putFloat64(b[92:100], r.Ask)
}

// IsIntraday reports whether Time carries a YYYYMMDDHHMM encoding rather than 0.
func (r *BarRecord) IsIntraday() bool { return r.Time != 0 }

///////////////////////////////////////////////////////////////////////////////

const BidAskDepth = 10

// TickRecord is a full L1 snapshot.
type TickRecord struct {
	Exchg         [16]byte
	Code          [32]byte
	Price         float64
	Open          float64
	High          float64
	Low           float64
	PreClose      float64
	Settle        float64
	PreSettle     float64
	OpenInterest  float64
	PreInterest   float64
	TotalVolume   float64
	Volume        float64 // delta since previous tick
	TotalTurnover float64
	TurnOver      float64 // delta since previous tick
	BidPrice      [BidAskDepth]float64
	BidQty        [BidAskDepth]float64
	AskPrice      [BidAskDepth]float64
	AskQty        [BidAskDepth]float64
	ActionDate    uint32
	ActionTime    uint32 // HHMMSSmmm
	TradingDate   uint32
}

const tickFixedSize = 16 + 32 + 8*13 + 4*8*BidAskDepth + 4*3
const TickRecord_Size = tickFixedSize

func (r *TickRecord) RSize() int { return TickRecord_Size }

func (r *TickRecord) ExchgString() string { return cstr(r.Exchg[:]) }
func (r *TickRecord) CodeString() string  { return cstr(r.Code[:]) }

func (r *TickRecord) FillRaw(b []byte) error {
	if len(b) < TickRecord_Size {
		return unexpectedBytesError(len(b), TickRecord_Size)
	}
	off := 0
	copy(r.Exchg[:], b[off:off+16])
	off += 16
	copy(r.Code[:], b[off:off+32])
	off += 32
	for _, f := range []*float64{
		&r.Price, &r.Open, &r.High, &r.Low, &r.PreClose, &r.Settle, &r.PreSettle,
		&r.OpenInterest, &r.PreInterest, &r.TotalVolume, &r.Volume, &r.TotalTurnover, &r.TurnOver,
	} {
		*f = float64frombits(b[off : off+8])
		off += 8
	}
	for i := 0; i < BidAskDepth; i++ {
		r.BidPrice[i] = float64frombits(b[off : off+8])
		off += 8
	}
	for i := 0; i < BidAskDepth; i++ {
		r.BidQty[i] = float64frombits(b[off : off+8])
		off += 8
	}
	for i := 0; i < BidAskDepth; i++ {
		r.AskPrice[i] = float64frombits(b[off : off+8])
		off += 8
	}
	for i := 0; i < BidAskDepth; i++ {
		r.AskQty[i] = float64frombits(b[off : off+8])
		off += 8
	}
	r.ActionDate = binary.LittleEndian.Uint32(b[off : off+4])
	off += 4
	r.ActionTime = binary.LittleEndian.Uint32(b[off : off+4])
	off += 4
	r.TradingDate = binary.LittleEndian.Uint32(b[off : off+4])
	return nil
}

func (r *TickRecord) PutRaw(b []byte) {
	off := 0
	copy(b[off:off+16], r.Exchg[:])
	off += 16
	copy(b[off:off+32], r.Code[:])
	off += 32
	for _, v := range []float64{
		r.Price, r.Open, r.High, r.Low, r.PreClose, r.Settle, r.PreSettle,
		r.OpenInterest, r.PreInterest, r.TotalVolume, r.Volume, r.TotalTurnover, r.TurnOver,
	} {
		putFloat64(b[off:off+8], v)
		off += 8
	}
	for i := 0; i < BidAskDepth; i++ {
		putFloat64(b[off:off+8], r.BidPrice[i])
		off += 8
	}
	for i := 0; i < BidAskDepth; i++ {
		putFloat64(b[off:off+8], r.BidQty[i])
		off += 8
	}
	for i := 0; i < BidAskDepth; i++ {
		putFloat64(b[off:off+8], r.AskPrice[i])
		off += 8
	}
	for i := 0; i < BidAskDepth; i++ {
		putFloat64(b[off:off+8], r.AskQty[i])
		off += 8
	}
	binary.LittleEndian.PutUint32(b[off:off+4], r.ActionDate)
	off += 4
	binary.LittleEndian.PutUint32(b[off:off+4], r.ActionTime)
	off += 4
	binary.LittleEndian.PutUint32(b[off:off+4], r.TradingDate)
}

///////////////////////////////////////////////////////////////////////////////

// OrderQueueRecord is an L2 queue snapshot: price level + volume ladder.
type OrderQueueRecord struct {
	Exchg      [16]byte
	Code       [32]byte
	Price      float64
	OrderItems [50]float64 // per-order volumes resting at Price, 0-padded
	ActionDate uint32
	ActionTime uint32
}

const OrderQueueRecord_Size = 16 + 32 + 8 + 8*50 + 4 + 4

func (r *OrderQueueRecord) RSize() int { return OrderQueueRecord_Size }

func (r *OrderQueueRecord) FillRaw(b []byte) error {
	if len(b) < OrderQueueRecord_Size {
		return unexpectedBytesError(len(b), OrderQueueRecord_Size)
	}
	off := 0
	copy(r.Exchg[:], b[off:off+16])
	off += 16
	copy(r.Code[:], b[off:off+32])
	off += 32
	r.Price = float64frombits(b[off : off+8])
	off += 8
	for i := range r.OrderItems {
		r.OrderItems[i] = float64frombits(b[off : off+8])
		off += 8
	}
	r.ActionDate = binary.LittleEndian.Uint32(b[off : off+4])
	off += 4
	r.ActionTime = binary.LittleEndian.Uint32(b[off : off+4])
	return nil
}

func (r *OrderQueueRecord) PutRaw(b []byte) {
	off := 0
	copy(b[off:off+16], r.Exchg[:])
	off += 16
	copy(b[off:off+32], r.Code[:])
	off += 32
	putFloat64(b[off:off+8], r.Price)
	off += 8
	for _, v := range r.OrderItems {
		putFloat64(b[off:off+8], v)
		off += 8
	}
	binary.LittleEndian.PutUint32(b[off:off+4], r.ActionDate)
	off += 4
	binary.LittleEndian.PutUint32(b[off:off+4], r.ActionTime)
}

///////////////////////////////////////////////////////////////////////////////

// OrderDetailRecord is a single resting order (L2 market-by-order).
type OrderDetailRecord struct {
	Exchg      [16]byte
	Code       [32]byte
	OrderNo    uint64
	Side       uint8 // 'B' or 'S'
	Price      float64
	Volume     float64
	ActionDate uint32
	ActionTime uint32
}

const OrderDetailRecord_Size = 16 + 32 + 8 + 1 + 8 + 8 + 4 + 4

func (r *OrderDetailRecord) RSize() int { return OrderDetailRecord_Size }

func (r *OrderDetailRecord) FillRaw(b []byte) error {
	if len(b) < OrderDetailRecord_Size {
		return unexpectedBytesError(len(b), OrderDetailRecord_Size)
	}
	off := 0
	copy(r.Exchg[:], b[off:off+16])
	off += 16
	copy(r.Code[:], b[off:off+32])
	off += 32
	r.OrderNo = binary.LittleEndian.Uint64(b[off : off+8])
	off += 8
	r.Side = b[off]
	off += 1
	r.Price = float64frombits(b[off : off+8])
	off += 8
	r.Volume = float64frombits(b[off : off+8])
	off += 8
	r.ActionDate = binary.LittleEndian.Uint32(b[off : off+4])
	off += 4
	r.ActionTime = binary.LittleEndian.Uint32(b[off : off+4])
	return nil
}

func (r *OrderDetailRecord) PutRaw(b []byte) {
	off := 0
	copy(b[off:off+16], r.Exchg[:])
	off += 16
	copy(b[off:off+32], r.Code[:])
	off += 32
	binary.LittleEndian.PutUint64(b[off:off+8], r.OrderNo)
	off += 8
	b[off] = r.Side
	off += 1
	putFloat64(b[off:off+8], r.Price)
	off += 8
	putFloat64(b[off:off+8], r.Volume)
	off += 8
	binary.LittleEndian.PutUint32(b[off:off+4], r.ActionDate)
	off += 4
	binary.LittleEndian.PutUint32(b[off:off+4], r.ActionTime)
}

///////////////////////////////////////////////////////////////////////////////

// TransactionRecord is a single matched trade (L2).
type TransactionRecord struct {
	Exchg       [16]byte
	Code        [32]byte
	BuyOrderNo  uint64
	SellOrderNo uint64
	Price       float64
	Volume      float64
	Type        uint8 // e.g. 'M' match, 'C' cancel
	ActionDate  uint32
	ActionTime  uint32
}

const TransactionRecord_Size = 16 + 32 + 8 + 8 + 8 + 8 + 1 + 4 + 4

func (r *TransactionRecord) RSize() int { return TransactionRecord_Size }

func (r *TransactionRecord) FillRaw(b []byte) error {
	if len(b) < TransactionRecord_Size {
		return unexpectedBytesError(len(b), TransactionRecord_Size)
	}
	off := 0
	copy(r.Exchg[:], b[off:off+16])
	off += 16
	copy(r.Code[:], b[off:off+32])
	off += 32
	r.BuyOrderNo = binary.LittleEndian.Uint64(b[off : off+8])
	off += 8
	r.SellOrderNo = binary.LittleEndian.Uint64(b[off : off+8])
	off += 8
	r.Price = float64frombits(b[off : off+8])
	off += 8
	r.Volume = float64frombits(b[off : off+8])
	off += 8
	r.Type = b[off]
	off += 1
	r.ActionDate = binary.LittleEndian.Uint32(b[off : off+4])
	off += 4
	r.ActionTime = binary.LittleEndian.Uint32(b[off : off+4])
	return nil
}

func (r *TransactionRecord) PutRaw(b []byte) {
	off := 0
	copy(b[off:off+16], r.Exchg[:])
	off += 16
	copy(b[off:off+32], r.Code[:])
	off += 32
	binary.LittleEndian.PutUint64(b[off:off+8], r.BuyOrderNo)
	off += 8
	binary.LittleEndian.PutUint64(b[off:off+8], r.SellOrderNo)
	off += 8
	putFloat64(b[off:off+8], r.Price)
	off += 8
	putFloat64(b[off:off+8], r.Volume)
	off += 8
	b[off] = r.Type
	off += 1
	binary.LittleEndian.PutUint32(b[off:off+4], r.ActionDate)
	off += 4
	binary.LittleEndian.PutUint32(b[off:off+4], r.ActionTime)
}

///////////////////////////////////////////////////////////////////////////////

func cstr(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

func float64frombits(b []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(b))
}

func putFloat64(b []byte, v float64) {
	binary.LittleEndian.PutUint64(b, math.Float64bits(v))
}
