// Copyright (c) 2024 Neomantra Corp

package wt

// BlockType identifies the stream kind carried by a block header.
type BlockType uint16

const (
	BlockType_Tick        BlockType = 1
	BlockType_OrderQueue  BlockType = 2
	BlockType_OrderDetail BlockType = 3
	BlockType_Transaction BlockType = 4
	BlockType_Bar1Min     BlockType = 5
	BlockType_Bar5Min     BlockType = 6
	BlockType_BarDaily    BlockType = 7
)

// BlockVersion distinguishes legacy-raw, current-raw, and in-place-compressed payloads.
type BlockVersion uint16

const (
	// RawV1 is the legacy struct layout; readers must up-convert it to V2.
	RawV1 BlockVersion = 1
	// RawV2 is the current uncompressed struct layout.
	RawV2 BlockVersion = 2
	// CmpV2 is a V2 payload compressed in place; the header carries the compressed size.
	CmpV2 BlockVersion = 3
)

// Direction is a position's or detail's side.
type Direction int8

const (
	Direction_Long  Direction = 1
	Direction_Short Direction = -1
)

// Sign returns +1 for long, -1 for short.
func (d Direction) Sign() float64 {
	if d == Direction_Long {
		return 1
	}
	return -1
}

// CoverMode is the exchange rule for closing a position's offset.
type CoverMode uint8

const (
	CoverMode_OpenOnly   CoverMode = 0
	CoverMode_CoverToday CoverMode = 1
	CoverMode_CoverAny   CoverMode = 2
)

// SigType distinguishes a strategy-issued target-position signal from one
// fired by a matched conditional order.
type SigType uint8

const (
	SigType_Normal    SigType = 0
	SigType_Condition SigType = 2
)

// Comparator is the predicate operator of a ConditionalOrder.
type Comparator uint8

const (
	Comparator_Equal Comparator = iota
	Comparator_Greater
	Comparator_GreaterEqual
	Comparator_Less
	Comparator_LessEqual
)

// CondAction is the action a fired ConditionalOrder takes.
type CondAction uint8

const (
	CondAction_OpenLong CondAction = iota
	CondAction_CloseLong
	CondAction_OpenShort
	CondAction_CloseShort
	CondAction_SetPos
)

// OrderFlag is the strategy-facing time-in-force intent; the trader adapter
// maps it to broker-specific flags at the boundary (spec §4.5.4).
type OrderFlag uint8

const (
	OrderFlag_NOR OrderFlag = iota // Normal: GFD / any-volume
	OrderFlag_FAK                  // Fill-and-kill: IOC / any-volume
	OrderFlag_FOK                  // Fill-or-kill: IOC / complete-volume
)

// PxType tags a replayer-synthesized pseudo-tick with the OHLC corner it represents.
type PxType uint8

const (
	PxType_Open  PxType = 0
	PxType_High  PxType = 1
	PxType_Low   PxType = 2
	PxType_Close PxType = 3
)

// TraderState is the trader adapter's connection/readiness state machine (spec §4.6).
type TraderState uint8

const (
	TraderState_NotLogin TraderState = iota
	TraderState_Logining
	TraderState_Logined
	TraderState_LoginFailed
	TraderState_PositionQryed
	TraderState_OrdersQryed
	TraderState_TradesQryed
	TraderState_AllReady
)

// StrategyKind distinguishes the three execution paradigms sharing the engine.
type StrategyKind uint8

const (
	StrategyKind_CTA StrategyKind = iota
	StrategyKind_SEL
	StrategyKind_UFT
)

func (k StrategyKind) String() string {
	switch k {
	case StrategyKind_CTA:
		return "cta"
	case StrategyKind_SEL:
		return "sel"
	case StrategyKind_UFT:
		return "uft"
	default:
		return "unknown"
	}
}
