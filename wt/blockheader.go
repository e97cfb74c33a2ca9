// Copyright (c) 2024 Neomantra Corp
//
// On-disk/in-shm block headers (spec §3 "Block headers", §6.1).

package wt

import "encoding/binary"

// BlockFlag is the fixed 8-byte magic every block begins with.
var BlockFlag = [8]byte{0, 0, '&', '^', '%', '$', '#', '@'}

// BlockHeader is the common prefix of every on-disk/in-shm block.
type BlockHeader struct {
	Flag    [8]byte
	Type    BlockType
	Version BlockVersion
}

const BlockHeader_Size = 8 + 2 + 2

func (h *BlockHeader) RSize() int { return BlockHeader_Size }

func (h *BlockHeader) FillRaw(b []byte) error {
	if len(b) < BlockHeader_Size {
		return unexpectedBytesError(len(b), BlockHeader_Size)
	}
	copy(h.Flag[:], b[0:8])
	h.Type = BlockType(binary.LittleEndian.Uint16(b[8:10]))
	h.Version = BlockVersion(binary.LittleEndian.Uint16(b[10:12]))
	return nil
}

func (h *BlockHeader) PutRaw(b []byte) {
	copy(b[0:8], BlockFlag[:])
	binary.LittleEndian.PutUint16(b[8:10], uint16(h.Type))
	binary.LittleEndian.PutUint16(b[10:12], uint16(h.Version))
}

// Validate checks the magic flag, returning ErrBadBlockFlag if corrupted.
func (h *BlockHeader) Validate() error {
	if h.Flag != BlockFlag {
		return ErrBadBlockFlag
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////////

// RTBlockHeader extends BlockHeader with the real-time ring-block counters
// (spec §3 "Real-time blocks additionally carry...").
type RTBlockHeader struct {
	BlockHeader
	Capacity uint32
	Size     uint32
	Date     uint32
}

const RTBlockHeader_Size = BlockHeader_Size + 4 + 4 + 4

func (h *RTBlockHeader) RSize() int { return RTBlockHeader_Size }

func (h *RTBlockHeader) FillRaw(b []byte) error {
	if len(b) < RTBlockHeader_Size {
		return unexpectedBytesError(len(b), RTBlockHeader_Size)
	}
	if err := h.BlockHeader.FillRaw(b[0:BlockHeader_Size]); err != nil {
		return err
	}
	off := BlockHeader_Size
	h.Capacity = binary.LittleEndian.Uint32(b[off : off+4])
	off += 4
	h.Size = binary.LittleEndian.Uint32(b[off : off+4])
	off += 4
	h.Date = binary.LittleEndian.Uint32(b[off : off+4])
	return nil
}

func (h *RTBlockHeader) PutRaw(b []byte) {
	h.BlockHeader.PutRaw(b[0:BlockHeader_Size])
	off := BlockHeader_Size
	binary.LittleEndian.PutUint32(b[off:off+4], h.Capacity)
	off += 4
	binary.LittleEndian.PutUint32(b[off:off+4], h.Size)
	off += 4
	binary.LittleEndian.PutUint32(b[off:off+4], h.Date)
}

// RecordSizeForType returns the fixed wire size of the record held by a stream of this type.
func RecordSizeForType(t BlockType) int {
	switch t {
	case BlockType_Tick:
		return TickRecord_Size
	case BlockType_OrderQueue:
		return OrderQueueRecord_Size
	case BlockType_OrderDetail:
		return OrderDetailRecord_Size
	case BlockType_Transaction:
		return TransactionRecord_Size
	case BlockType_Bar1Min, BlockType_Bar5Min, BlockType_BarDaily:
		return BarRecord_Size
	default:
		return 0
	}
}

// DefaultInitialCapacity returns the default record count for a freshly
// created RT block of the given stream type (spec §4.1.1).
func DefaultInitialCapacity(t BlockType, sessionTradingMinutes int) uint32 {
	switch t {
	case BlockType_Tick, BlockType_OrderDetail, BlockType_OrderQueue, BlockType_Transaction:
		return 2500
	case BlockType_Bar1Min:
		return uint32(sessionTradingMinutes)
	case BlockType_Bar5Min:
		return uint32((sessionTradingMinutes + 4) / 5)
	default:
		return 2500
	}
}

// GrowthCapacity returns the new capacity when a block is full (spec §4.1.1).
// 1m and 5m bar streams grow by one more session worth; every other stream
// (tick/L2 and daily bars) doubles.
func GrowthCapacity(t BlockType, capacity uint32, sessionTradingMinutes int) uint32 {
	switch t {
	case BlockType_Bar1Min:
		return capacity + uint32(sessionTradingMinutes)
	case BlockType_Bar5Min:
		return capacity + uint32((sessionTradingMinutes+4)/5)
	default:
		return capacity * 2
	}
}

// RepairCapacity recomputes capacity/size from an on-disk file's actual
// length, per spec §3 invariant and §8 property 5 (block repair determinism).
func RepairCapacity(fileSize int64, headerSize int, recordSize int, oldSize uint32) (capacity uint32, size uint32) {
	if recordSize <= 0 {
		return 0, 0
	}
	payload := fileSize - int64(headerSize)
	if payload < 0 {
		payload = 0
	}
	capacity = uint32(payload / int64(recordSize))
	size = oldSize
	if size > capacity {
		size = capacity
	}
	return capacity, size
}
