// Copyright (c) 2024 Neomantra Corp
//
// Memory-mapped real-time ring blocks (spec §4.1.1). One writer per file;
// readers slice [0, size) without locking. Grounded on the teacher's
// MakeCompressedWriter/Reader file-handling shape in compressed_io.go,
// generalized here to a growable mmap'd record array via edsrzf/mmap-go
// (named per SPEC_FULL.md §B: no pack repo maps files, so the library is
// named rather than grounded on an example).

package store

import (
	"os"
	"sync"

	"github.com/edsrzf/mmap-go"

	"wondertrader/wt"
)

// RTBlock is a single-writer, many-reader memory-mapped record stream.
type RTBlock struct {
	mu             sync.Mutex // guards size++ and the bounded write; readers do not take it
	path           string
	file           *os.File
	mapping        mmap.MMap
	header         wt.RTBlockHeader
	recSize        int
	blockType      wt.BlockType
	sessionMinutes int
}

const rtHeaderSize = wt.RTBlockHeader_Size

// OpenRTBlock opens or creates the ring block at path for blockType. If the
// file already exists but its length disagrees with header.capacity, the
// header is repaired per spec §8 property 5 before mapping.
func OpenRTBlock(path string, blockType wt.BlockType, sessionMinutes int) (*RTBlock, error) {
	recSize := wt.RecordSizeForType(blockType)
	if recSize == 0 {
		return nil, wt.ErrUnknownBlockType
	}

	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}

	b := &RTBlock{
		path:           path,
		file:           file,
		recSize:        recSize,
		blockType:      blockType,
		sessionMinutes: sessionMinutes,
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}

	if info.Size() == 0 {
		capacity := wt.DefaultInitialCapacity(blockType, sessionMinutes)
		if err := b.initLayout(capacity); err != nil {
			file.Close()
			return nil, err
		}
	}

	if err := b.mapAndLoad(); err != nil {
		file.Close()
		return nil, err
	}
	return b, nil
}

// initLayout truncates a freshly-created file to header+capacity*recSize
// and writes a zeroed header with the given capacity.
func (b *RTBlock) initLayout(capacity uint32) error {
	total := int64(rtHeaderSize) + int64(capacity)*int64(b.recSize)
	if err := b.file.Truncate(total); err != nil {
		return err
	}
	hdr := wt.RTBlockHeader{
		BlockHeader: wt.BlockHeader{Type: b.blockType, Version: wt.RawV2},
		Capacity:    capacity,
		Size:        0,
		Date:        0,
	}
	buf := make([]byte, rtHeaderSize)
	hdr.PutRaw(buf)
	_, err := b.file.WriteAt(buf, 0)
	return err
}

// mapAndLoad (re)maps the file and validates/repairs the header.
func (b *RTBlock) mapAndLoad() error {
	if b.mapping != nil {
		b.mapping.Unmap()
		b.mapping = nil
	}
	m, err := mmap.Map(b.file, mmap.RDWR, 0)
	if err != nil {
		return err
	}
	b.mapping = m

	if err := b.header.FillRaw(m[0:rtHeaderSize]); err != nil {
		return err
	}
	if err := b.header.Validate(); err != nil {
		return err
	}

	info, err := b.file.Stat()
	if err != nil {
		return err
	}
	expected := int64(rtHeaderSize) + int64(b.header.Capacity)*int64(b.recSize)
	if info.Size() != expected {
		capacity, size := wt.RepairCapacity(info.Size(), rtHeaderSize, b.recSize, b.header.Size)
		b.header.Capacity = capacity
		b.header.Size = size
		b.header.PutRaw(m[0:rtHeaderSize])
	}
	return nil
}

// Size returns the current committed record count.
func (b *RTBlock) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return int(b.header.Size)
}

// Capacity returns the current record capacity.
func (b *RTBlock) Capacity() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return int(b.header.Capacity)
}

// Date returns the tdate currently open in this block.
func (b *RTBlock) Date() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.header.Date
}

// Type returns the stream kind this block carries.
func (b *RTBlock) Type() wt.BlockType {
	return b.blockType
}

// SetDate stamps the block's trading date (called on first write of a new tdate).
func (b *RTBlock) SetDate(date uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.header.Date = date
	b.header.PutRaw(b.mapping[0:rtHeaderSize])
}

// recordOffset returns the byte offset of record index i.
func (b *RTBlock) recordOffset(i int) int {
	return rtHeaderSize + i*b.recSize
}

// Append writes rec as the next record, growing the block if full.
// Readers never observe a partially-written record: size is only bumped
// after PutRaw completes.
func (b *RTBlock) Append(rec wt.Record) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.header.Size >= b.header.Capacity {
		if err := b.grow(); err != nil {
			return err
		}
	}

	off := b.recordOffset(int(b.header.Size))
	rec.PutRaw(b.mapping[off : off+b.recSize])
	b.header.Size++
	b.header.PutRaw(b.mapping[0:rtHeaderSize])
	return nil
}

// grow extends the file by the stream's growth policy and re-maps it.
// Callers must hold b.mu.
func (b *RTBlock) grow() error {
	newCapacity := wt.GrowthCapacity(b.blockType, b.header.Capacity, b.sessionMinutes)
	newTotal := int64(rtHeaderSize) + int64(newCapacity)*int64(b.recSize)
	if err := b.file.Truncate(newTotal); err != nil {
		return err
	}
	b.header.Capacity = newCapacity
	return b.mapAndLoad()
}

// ReadAt decodes the record at index i into rec. Callers must snapshot
// Size() first and treat the block as append-only past that point.
func (b *RTBlock) ReadAt(i int, rec wt.Record) error {
	if i < 0 || i >= b.Size() {
		return wt.ErrNoRecord
	}
	off := b.recordOffset(i)
	return rec.FillRaw(b.mapping[off : off+b.recSize])
}

// RawRecords returns the raw byte slice covering [0, size) records,
// the non-owning "tail of RT block" half of the §4.3.1 slice contract.
func (b *RTBlock) RawRecords() []byte {
	size := b.Size()
	end := b.recordOffset(size)
	return b.mapping[rtHeaderSize:end]
}

// ResetForNewSession zeroes size (called after the session-close task has
// archived the block's contents, spec §4.1.2 step 5).
func (b *RTBlock) ResetForNewSession(newDate uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.header.Size = 0
	b.header.Date = newDate
	b.header.PutRaw(b.mapping[0:rtHeaderSize])
}

// Close unmaps and closes the backing file.
func (b *RTBlock) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.mapping != nil {
		if err := b.mapping.Unmap(); err != nil {
			return err
		}
		b.mapping = nil
	}
	return b.file.Close()
}
