// Copyright 2017 The Cayley Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package kv is a quad store on top of any hidalgo key-value database.
//
// Every quad is stored once under its hash, and indexed by the hash of each
// of its values:
//
//	quads/<quad hash>                      -> encoded quad
//	idx/<direction>/<value hash>/<quad hash> -> (empty)
//	meta/version, meta/size
package kv

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/pquads"
	"github.com/hidal-go/hidalgo/kv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cayleygraph/surf/clog"
	"github.com/cayleygraph/surf/graph"
)

const latestDataVersion = 1

var (
	metaBucket  = kv.Key{[]byte("meta")}
	quadsBucket = kv.Key{[]byte("quads")}
	indexBucket = kv.Key{[]byte("idx")}

	keyVersion = metaBucket.AppendBytes([]byte("version"))
	keySize    = metaBucket.AppendBytes([]byte("size"))

	// placeholder value of index entries
	present = []byte{1}
)

type ValueHash [quad.HashSize]byte

type QuadHash [4 * quad.HashSize]byte

func hashQuad(q quad.Quad) (h QuadHash) {
	for i, d := range quad.Directions {
		if v := q.Get(d); v != nil {
			quad.HashTo(v, h[i*quad.HashSize:(i+1)*quad.HashSize])
		}
	}
	return
}

func hashValue(v quad.Value) (h ValueHash) {
	quad.HashTo(v, h[:])
	return
}

func quadKey(h QuadHash) kv.Key {
	return quadsBucket.AppendBytes(h[:])
}

func indexPrefix(d quad.Direction, v quad.Value) kv.Key {
	h := hashValue(v)
	return indexBucket.AppendBytes([]byte{d.Prefix()}).AppendBytes(h[:])
}

func encodeQuad(q quad.Quad) ([]byte, error) {
	var buf []byte
	for _, d := range quad.Directions {
		var (
			b   []byte
			err error
		)
		if v := q.Get(d); v != nil {
			if b, err = pquads.MarshalValue(v); err != nil {
				return nil, err
			}
		}
		buf = binary.AppendUvarint(buf, uint64(len(b)))
		buf = append(buf, b...)
	}
	return buf, nil
}

var errCorrupted = errors.New("kv: corrupted quad record")

func decodeQuad(buf []byte) (quad.Quad, error) {
	var q quad.Quad
	for _, d := range quad.Directions {
		n, sz := binary.Uvarint(buf)
		if sz <= 0 || uint64(len(buf)-sz) < n {
			return q, errCorrupted
		}
		buf = buf[sz:]
		if n != 0 {
			v, err := pquads.UnmarshalValue(buf[:n])
			if err != nil {
				return q, err
			}
			q.Set(d, v)
		}
		buf = buf[n:]
	}
	return q, nil
}

func asInt64(b []byte, empty int64) (int64, error) {
	if len(b) == 0 {
		return empty, nil
	} else if len(b) != 8 {
		return 0, fmt.Errorf("unexpected int size: %d", len(b))
	}
	return int64(binary.LittleEndian.Uint64(b)), nil
}

func int64Bytes(v int64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(v))
	return buf[:]
}

type QuadStore struct {
	db kv.KV

	writer sync.Mutex

	meta struct {
		sync.RWMutex
		size int64
	}
}

var _ graph.QuadStore = (*QuadStore)(nil)

// Init writes the metadata of an empty database.
func Init(ctx context.Context, db kv.KV) error {
	return kv.Update(ctx, db, func(tx kv.Tx) error {
		if _, err := tx.Get(ctx, keyVersion); err == nil {
			return graph.ErrDatabaseExists
		} else if err != kv.ErrNotFound {
			return err
		}
		if err := tx.Put(keyVersion, int64Bytes(latestDataVersion)); err != nil {
			return fmt.Errorf("couldn't write version: %w", err)
		}
		return tx.Put(keySize, int64Bytes(0))
	})
}

// New opens an initialized database.
func New(db kv.KV) (*QuadStore, error) {
	qs := &QuadStore{db: db}
	var vers int64
	err := kv.View(db, func(tx kv.Tx) error {
		vals, err := tx.GetBatch(context.Background(), []kv.Key{keyVersion, keySize})
		if err != nil {
			return err
		} else if vals[0] == nil {
			return graph.ErrNotInitialized
		}
		if vers, err = asInt64(vals[0], 0); err != nil {
			return err
		}
		qs.meta.size, err = asInt64(vals[1], 0)
		return err
	})
	if err != nil {
		return nil, err
	} else if vers != latestDataVersion {
		return nil, fmt.Errorf("kv: data version %d is not supported", vers)
	}
	return qs, nil
}

func (qs *QuadStore) Size(ctx context.Context) (int64, error) {
	qs.meta.RLock()
	defer qs.meta.RUnlock()
	return qs.meta.size, nil
}

func (qs *QuadStore) Close() error {
	return qs.db.Close()
}

func (qs *QuadStore) ApplyDeltas(ctx context.Context, in []graph.Delta, opts graph.IgnoreOpts) error {
	qs.writer.Lock()
	defer qs.writer.Unlock()

	mApplyBatch.Observe(float64(len(in)))
	defer prometheus.NewTimer(mApplySeconds).ObserveDuration()

	tx, err := qs.db.Tx(true)
	if err != nil {
		return err
	}
	tx = wrapTx(tx)
	defer tx.Close()

	// quads touched by this batch; writes are not read back from the tx
	state := make(map[QuadHash]bool)
	exists := func(h QuadHash) (bool, error) {
		if ok, seen := state[h]; seen {
			return ok, nil
		}
		_, err := tx.Get(ctx, quadKey(h))
		if err == kv.ErrNotFound {
			return false, nil
		}
		return err == nil, err
	}

	qs.meta.RLock()
	size := qs.meta.size
	qs.meta.RUnlock()

	for _, d := range in {
		if err := ctx.Err(); err != nil {
			return err
		}
		h := hashQuad(d.Quad)
		ok, err := exists(h)
		if err != nil {
			return err
		}
		switch d.Action {
		case graph.Add:
			if ok {
				if opts.IgnoreDup {
					continue
				}
				return &graph.DeltaError{Delta: d, Err: graph.ErrQuadExists}
			} else if !d.Quad.IsValid() {
				return &graph.DeltaError{Delta: d, Err: graph.ErrInvalidAction}
			}
			if err = qs.put(tx, h, d.Quad); err != nil {
				return err
			}
			state[h] = true
			size++
		case graph.Delete:
			if !ok {
				if opts.IgnoreMissing {
					continue
				}
				return &graph.DeltaError{Delta: d, Err: graph.ErrQuadNotExist}
			}
			if err = qs.del(tx, h, d.Quad); err != nil {
				return err
			}
			state[h] = false
			size--
		default:
			return &graph.DeltaError{Delta: d, Err: graph.ErrInvalidAction}
		}
	}
	if err = tx.Put(keySize, int64Bytes(size)); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return err
	}
	qs.meta.Lock()
	qs.meta.size = size
	qs.meta.Unlock()
	if clog.V(2) {
		clog.Infof("kv: applied %d deltas, size %d", len(in), size)
	}
	return nil
}

func (qs *QuadStore) put(tx kv.Tx, h QuadHash, q quad.Quad) error {
	buf, err := encodeQuad(q)
	if err != nil {
		return err
	}
	if err = tx.Put(quadKey(h), buf); err != nil {
		return err
	}
	for _, d := range quad.Directions {
		if v := q.Get(d); v != nil {
			if err = tx.Put(indexPrefix(d, v).AppendBytes(h[:]), present); err != nil {
				return err
			}
		}
	}
	return nil
}

func (qs *QuadStore) del(tx kv.Tx, h QuadHash, q quad.Quad) error {
	if err := tx.Del(quadKey(h)); err != nil {
		return err
	}
	for _, d := range quad.Directions {
		if v := q.Get(d); v != nil {
			if err := tx.Del(indexPrefix(d, v).AppendBytes(h[:])); err != nil {
				return err
			}
		}
	}
	return nil
}

// hasPrefix checks a scanned key part by part, since prefix scans may also
// return keys whose last part only starts with the prefix.
func hasPrefix(key, pref kv.Key) bool {
	if len(key) <= len(pref) {
		return false
	}
	for i := range pref {
		if !bytes.Equal(key[i], pref[i]) {
			return false
		}
	}
	return true
}

// Match scans the index of the first bound direction of the pattern, or all
// quads if nothing is bound.
func (qs *QuadStore) Match(ctx context.Context, pattern quad.Quad) ([]quad.Quad, error) {
	var out []quad.Quad
	start := time.Now()
	err := kv.View(qs.db, func(tx kv.Tx) error {
		tx = wrapTx(tx)
		var keys []kv.Key
		for _, d := range quad.Directions {
			v := pattern.Get(d)
			if v == nil {
				continue
			}
			pref := indexPrefix(d, v)
			it := tx.Scan(pref)
			defer it.Close()
			for it.Next(ctx) {
				k := it.Key()
				if !hasPrefix(k, pref) {
					continue
				}
				keys = append(keys, quadsBucket.AppendBytes(k[len(k)-1]))
			}
			if err := it.Err(); err != nil {
				return err
			}
			if len(keys) == 0 {
				return nil
			}
			vals, err := tx.GetBatch(ctx, keys)
			if err != nil {
				return err
			}
			return qs.collect(vals, pattern, &out)
		}
		it := tx.Scan(quadsBucket)
		defer it.Close()
		var vals []kv.Value
		for it.Next(ctx) {
			if hasPrefix(it.Key(), quadsBucket) {
				vals = append(vals, append([]byte(nil), it.Val()...))
			}
		}
		if err := it.Err(); err != nil {
			return err
		}
		return qs.collect(vals, pattern, &out)
	})
	if clog.V(2) {
		clog.Infof("kv: match %v: %d quads in %v", pattern, len(out), time.Since(start))
	}
	return out, err
}

func (qs *QuadStore) collect(vals []kv.Value, pattern quad.Quad, out *[]quad.Quad) error {
	for _, v := range vals {
		if v == nil {
			continue
		}
		q, err := decodeQuad(v)
		if err != nil {
			return err
		}
		if graph.Matches(pattern, q) {
			*out = append(*out, q)
		}
	}
	return nil
}
