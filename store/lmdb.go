// Copyright (c) 2024 Neomantra Corp
//
// LMDB-backed keyed variant of the columnar store (spec §4.1.3). An
// alternative to the append-compressed archive format for random-access
// reads by time; the two layers are not mutually exclusive. LMDB is not
// used anywhere in the pack (named per SPEC_FULL.md §B's out-of-pack rule);
// its range-scan-on-packed-prefix usage mirrors the teacher's own "read a
// fixed-layout byte range, decode in place" style from dbn_scanner.go.

package store

import (
	"encoding/binary"

	"github.com/bmatsuo/lmdb-go/lmdb"

	"wondertrader/wt"
)

// LMDBBarKey packs (exchg, code, bar_time) into a sortable prefix key.
type LMDBBarKey struct {
	Exchg   [16]byte
	Code    [32]byte
	BarTime uint64
}

const lmdbBarKeySize = 16 + 32 + 8

func (k LMDBBarKey) Pack() []byte {
	buf := make([]byte, lmdbBarKeySize)
	copy(buf[0:16], k.Exchg[:])
	copy(buf[16:48], k.Code[:])
	binary.BigEndian.PutUint64(buf[48:56], k.BarTime) // big-endian so byte-order sorts by time
	return buf
}

// LMDBHftKey packs (exchg, code, tdate, off_time) for tick/L2 streams.
type LMDBHftKey struct {
	Exchg   [16]byte
	Code    [32]byte
	Tdate   uint32
	OffTime uint32
}

const lmdbHftKeySize = 16 + 32 + 4 + 4

func (k LMDBHftKey) Pack() []byte {
	buf := make([]byte, lmdbHftKeySize)
	copy(buf[0:16], k.Exchg[:])
	copy(buf[16:48], k.Code[:])
	binary.BigEndian.PutUint32(buf[48:52], k.Tdate)
	binary.BigEndian.PutUint32(buf[52:56], k.OffTime)
	return buf
}

///////////////////////////////////////////////////////////////////////////////

// LMDBStore is the keyed-variant backing store of spec §4.1.3.
type LMDBStore struct {
	env *lmdb.Env
	dbi lmdb.DBI
}

// OpenLMDBStore opens (creating if needed) an LMDB environment at path with
// a single named database used for all streams (keys are prefixed by
// stream type to disambiguate, see bucketKey).
func OpenLMDBStore(path string, mapSize int64) (*LMDBStore, error) {
	env, err := lmdb.NewEnv()
	if err != nil {
		return nil, err
	}
	if err := env.SetMapSize(mapSize); err != nil {
		env.Close()
		return nil, err
	}
	if err := env.Open(path, lmdb.NoSubdir, 0644); err != nil {
		env.Close()
		return nil, err
	}

	var dbi lmdb.DBI
	err = env.Update(func(txn *lmdb.Txn) error {
		var err error
		dbi, err = txn.CreateDBI("records")
		return err
	})
	if err != nil {
		env.Close()
		return nil, err
	}
	return &LMDBStore{env: env, dbi: dbi}, nil
}

func bucketKey(t wt.BlockType, packed []byte) []byte {
	out := make([]byte, 2+len(packed))
	binary.BigEndian.PutUint16(out[0:2], uint16(t))
	copy(out[2:], packed)
	return out
}

// PutBar commits a single bar record keyed by LMDBBarKey (write-per-record,
// spec §4.1.3).
func (s *LMDBStore) PutBar(t wt.BlockType, key LMDBBarKey, rec *wt.BarRecord) error {
	buf := make([]byte, wt.BarRecord_Size)
	rec.PutRaw(buf)
	k := bucketKey(t, key.Pack())
	return s.env.Update(func(txn *lmdb.Txn) error {
		return txn.Put(s.dbi, k, buf, 0)
	})
}

// PutTick commits a single tick record keyed by LMDBHftKey.
func (s *LMDBStore) PutTick(t wt.BlockType, key LMDBHftKey, rec *wt.TickRecord) error {
	buf := make([]byte, wt.TickRecord_Size)
	rec.PutRaw(buf)
	k := bucketKey(t, key.Pack())
	return s.env.Update(func(txn *lmdb.Txn) error {
		return txn.Put(s.dbi, k, buf, 0)
	})
}

// RangeBars scans all bars for (exchg, code) in [fromTime, toTime], keyed
// prefix-first so the scan is a contiguous cursor walk (spec §4.1.3).
func (s *LMDBStore) RangeBars(t wt.BlockType, exchg, code string, fromTime, toTime uint64) ([]wt.BarRecord, error) {
	var exchgKey [16]byte
	var codeKey [32]byte
	copy(exchgKey[:], exchg)
	copy(codeKey[:], code)

	lo := bucketKey(t, LMDBBarKey{Exchg: exchgKey, Code: codeKey, BarTime: fromTime}.Pack())
	hi := bucketKey(t, LMDBBarKey{Exchg: exchgKey, Code: codeKey, BarTime: toTime}.Pack())

	var out []wt.BarRecord
	err := s.env.View(func(txn *lmdb.Txn) error {
		cur, err := txn.OpenCursor(s.dbi)
		if err != nil {
			return err
		}
		defer cur.Close()

		k, v, err := cur.Get(lo, nil, lmdb.SetRange)
		for ; err == nil; k, v, err = cur.Get(nil, nil, lmdb.Next) {
			if compareBytes(k, hi) > 0 {
				break
			}
			var br wt.BarRecord
			if ferr := br.FillRaw(v); ferr != nil {
				return ferr
			}
			out = append(out, br)
		}
		if lmdb.IsNotFound(err) {
			return nil
		}
		return err
	})
	return out, err
}

func compareBytes(a, b []byte) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return int(a[i]) - int(b[i])
		}
	}
	return len(a) - len(b)
}

// Close releases the LMDB environment.
func (s *LMDBStore) Close() {
	s.env.Close()
}
