// Copyright (c) 2024 Neomantra Corp
//
// entrust_id_cache (spec §4.6.1): a fixed 64-byte-key/64-byte-value
// memory-mapped hash table with open addressing, persisting session-long
// idempotency across broker reconnects. Supplemented from
// original_source/src/WtCore/WtKVCache.hpp per SPEC_FULL.md §C.1; shares
// the edsrzf/mmap-go mapping concern used by store/rtblock.go.

package trader

import (
	"os"

	"github.com/edsrzf/mmap-go"
)

const (
	entrustKeySize   = 64
	entrustValueSize = 64
	entrustSlotSize  = 1 + entrustKeySize + entrustValueSize // occupied flag + key + value
)

// EntrustCache is the mmap-backed open-addressing KV table.
type EntrustCache struct {
	file     *os.File
	mapping  mmap.MMap
	slots    int
}

// OpenEntrustCache opens or creates the cache file at path sized for slots entries.
func OpenEntrustCache(path string, slots int) (*EntrustCache, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	total := int64(slots * entrustSlotSize)
	if info.Size() == 0 {
		if err := f.Truncate(total); err != nil {
			f.Close()
			return nil, err
		}
	} else {
		slots = int(info.Size() / entrustSlotSize)
	}
	m, err := mmap.Map(f, mmap.RDWR, 0)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &EntrustCache{file: f, mapping: m, slots: slots}, nil
}

func fnv1a(b []byte) uint64 {
	var h uint64 = 14695981039346656037
	for _, c := range b {
		h ^= uint64(c)
		h *= 1099511628211
	}
	return h
}

func keyBytes(key string) [entrustKeySize]byte {
	var out [entrustKeySize]byte
	copy(out[:], key)
	return out
}

// Put stores value under key using linear-probe open addressing. Returns
// wt.ErrCacheCorruption equivalent (here a plain error) if the table is full.
func (c *EntrustCache) Put(key, value string) error {
	if len(key) > entrustKeySize || len(value) > entrustValueSize {
		return errKeyTooLong
	}
	k := keyBytes(key)
	start := int(fnv1a(k[:]) % uint64(c.slots))

	for i := 0; i < c.slots; i++ {
		idx := (start + i) % c.slots
		off := idx * entrustSlotSize
		occupied := c.mapping[off]
		if occupied == 0 {
			c.writeSlot(off, k, value)
			return nil
		}
		if string(c.mapping[off+1:off+1+entrustKeySize]) == string(k[:]) {
			c.writeSlot(off, k, value) // overwrite existing
			return nil
		}
	}
	return errCacheFull
}

func (c *EntrustCache) writeSlot(off int, k [entrustKeySize]byte, value string) {
	c.mapping[off] = 1
	copy(c.mapping[off+1:off+1+entrustKeySize], k[:])
	var v [entrustValueSize]byte
	copy(v[:], value)
	copy(c.mapping[off+1+entrustKeySize:off+1+entrustKeySize+entrustValueSize], v[:])
}

// Get retrieves the value stored under key, if present.
func (c *EntrustCache) Get(key string) (string, bool) {
	k := keyBytes(key)
	start := int(fnv1a(k[:]) % uint64(c.slots))

	for i := 0; i < c.slots; i++ {
		idx := (start + i) % c.slots
		off := idx * entrustSlotSize
		occupied := c.mapping[off]
		if occupied == 0 {
			return "", false
		}
		if string(c.mapping[off+1:off+1+entrustKeySize]) == string(k[:]) {
			raw := c.mapping[off+1+entrustKeySize : off+1+entrustKeySize+entrustValueSize]
			return cstr(raw), true
		}
	}
	return "", false
}

func cstr(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

func (c *EntrustCache) Close() error {
	if err := c.mapping.Unmap(); err != nil {
		return err
	}
	return c.file.Close()
}

var (
	errKeyTooLong = errTooLong("entrust cache key/value exceeds 64 bytes")
	errCacheFull  = errTooLong("entrust cache full")
)

type errTooLong string

func (e errTooLong) Error() string { return string(e) }
