// Copyright 2014 The Cayley Authors. All rights reserved.
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

// Package memstore is an in-process quad store. Quads are kept in an append
// only log with one index per direction.
package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/surf/clog"
	"github.com/cayleygraph/surf/graph"
	"github.com/cayleygraph/surf/graph/local"
)

const QuadStoreType = "memstore"

func init() {
	graph.RegisterBackend(QuadStoreType, graph.Registration{
		NewFunc: func(string, graph.Options) (graph.Backend, error) {
			return local.New(New()), nil
		},
		IsPersistent: false,
	})
}

// set is a set of quad ids.
type set map[int64]struct{}

type QuadDirectionIndex struct {
	index [4]map[int64]set
}

func NewQuadDirectionIndex() QuadDirectionIndex {
	return QuadDirectionIndex{[...]map[int64]set{
		quad.Subject - 1:   make(map[int64]set),
		quad.Predicate - 1: make(map[int64]set),
		quad.Object - 1:    make(map[int64]set),
		quad.Label - 1:     make(map[int64]set),
	}}
}

func (qdi QuadDirectionIndex) Tree(d quad.Direction, id int64) set {
	if d < quad.Subject || d > quad.Label {
		panic("illegal direction")
	}
	tree, ok := qdi.index[d-1][id]
	if !ok {
		tree = make(set)
		qdi.index[d-1][id] = tree
	}
	return tree
}

func (qdi QuadDirectionIndex) Get(d quad.Direction, id int64) (set, bool) {
	if d < quad.Subject || d > quad.Label {
		panic("illegal direction")
	}
	tree, ok := qdi.index[d-1][id]
	return tree, ok
}

type LogEntry struct {
	ID        int64
	Quad      quad.Quad
	Action    graph.Procedure
	DeletedBy int64
}

type QuadStore struct {
	mu         sync.RWMutex
	nextID     int64
	nextQuadID int64
	idMap      map[string]int64
	revIDMap   map[int64]quad.Value
	log        []LogEntry
	size       int64
	index      QuadDirectionIndex
}

var _ graph.QuadStore = (*QuadStore)(nil)

// New creates an empty quad store.
func New(quads ...quad.Quad) *QuadStore {
	qs := &QuadStore{
		idMap:    make(map[string]int64),
		revIDMap: make(map[int64]quad.Value),

		// Sentinel null entry so indices start at 1
		log: make([]LogEntry, 1, 200),

		index:      NewQuadDirectionIndex(),
		nextID:     1,
		nextQuadID: 1,
	}
	for _, q := range quads {
		_ = qs.AddDelta(graph.Delta{Quad: q, Action: graph.Add})
	}
	return qs
}

func keyOf(v quad.Value) string {
	if v == nil {
		return ""
	}
	return v.String()
}

func (qs *QuadStore) ApplyDeltas(ctx context.Context, deltas []graph.Delta, ignoreOpts graph.IgnoreOpts) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	qs.mu.Lock()
	defer qs.mu.Unlock()
	// Precheck the whole transaction (if required)
	if !ignoreOpts.IgnoreDup || !ignoreOpts.IgnoreMissing {
		for _, d := range deltas {
			switch d.Action {
			case graph.Add:
				if !ignoreOpts.IgnoreDup {
					if _, exists := qs.indexOf(d.Quad); exists {
						return &graph.DeltaError{Delta: d, Err: graph.ErrQuadExists}
					}
				}
			case graph.Delete:
				if !ignoreOpts.IgnoreMissing {
					if _, exists := qs.indexOf(d.Quad); !exists {
						return &graph.DeltaError{Delta: d, Err: graph.ErrQuadNotExist}
					}
				}
			default:
				return &graph.DeltaError{Delta: d, Err: graph.ErrInvalidAction}
			}
		}
	}

	for _, d := range deltas {
		var err error
		switch d.Action {
		case graph.Add:
			err = qs.AddDelta(d)
			if err != nil && ignoreOpts.IgnoreDup {
				err = nil
			}
		case graph.Delete:
			err = qs.RemoveDelta(d)
			if err != nil && ignoreOpts.IgnoreMissing {
				err = nil
			}
		default:
			err = &graph.DeltaError{Delta: d, Err: graph.ErrInvalidAction}
		}
		if err != nil {
			return err
		}
	}
	if clog.V(2) {
		clog.Infof("memstore: applied %d deltas, size %d", len(deltas), qs.size)
	}
	return nil
}

// candidates returns the smallest index among the bound directions of a
// pattern. It returns nil, false if no quad can match, and nil, true if
// the pattern has no bound directions.
func (qs *QuadStore) candidates(pattern quad.Quad) (set, bool) {
	var (
		min  = -1
		tree set
	)
	for _, d := range quad.Directions {
		v := pattern.Get(d)
		if v == nil {
			continue
		}
		id, ok := qs.idMap[keyOf(v)]
		// If we've never heard about a node, it must not exist
		if !ok {
			return nil, false
		}
		index, ok := qs.index.Get(d, id)
		if !ok || len(index) == 0 {
			return nil, false
		}
		if min < 0 || len(index) < min {
			min, tree = len(index), index
		}
	}
	return tree, true
}

func sameQuad(a, b quad.Quad) bool {
	for _, d := range quad.Directions {
		if keyOf(a.Get(d)) != keyOf(b.Get(d)) {
			return false
		}
	}
	return true
}

func (qs *QuadStore) indexOf(t quad.Quad) (int64, bool) {
	tree, ok := qs.candidates(t)
	if !ok {
		return 0, false
	} else if tree == nil {
		return 0, false
	}
	for id := range tree {
		if sameQuad(t, qs.log[id].Quad) {
			return id, true
		}
	}
	return 0, false
}

// AddDelta appends a quad to the log. The caller must hold the write lock.
func (qs *QuadStore) AddDelta(d graph.Delta) error {
	if !d.Quad.IsValid() {
		return &graph.DeltaError{Delta: d, Err: graph.ErrInvalidAction}
	}
	if _, exists := qs.indexOf(d.Quad); exists {
		return &graph.DeltaError{Delta: d, Err: graph.ErrQuadExists}
	}
	qid := qs.nextQuadID
	qs.log = append(qs.log, LogEntry{
		ID:     qid,
		Quad:   d.Quad,
		Action: d.Action,
	})
	qs.size++
	qs.nextQuadID++

	for _, dir := range quad.Directions {
		sid := d.Quad.Get(dir)
		if dir == quad.Label && sid == nil {
			continue
		}
		ssid := keyOf(sid)
		if _, ok := qs.idMap[ssid]; !ok {
			qs.idMap[ssid] = qs.nextID
			qs.revIDMap[qs.nextID] = sid
			qs.nextID++
		}
		id := qs.idMap[ssid]
		qs.index.Tree(dir, id)[qid] = struct{}{}
	}
	return nil
}

// RemoveDelta marks a quad as deleted. The caller must hold the write lock.
func (qs *QuadStore) RemoveDelta(d graph.Delta) error {
	prevQuadID, exists := qs.indexOf(d.Quad)
	if !exists {
		return &graph.DeltaError{Delta: d, Err: graph.ErrQuadNotExist}
	}

	quadID := qs.nextQuadID
	qs.log = append(qs.log, LogEntry{
		ID:     quadID,
		Quad:   d.Quad,
		Action: d.Action,
	})
	qs.log[prevQuadID].DeletedBy = quadID
	qs.size--
	qs.nextQuadID++

	prev := qs.log[prevQuadID].Quad
	for _, dir := range quad.Directions {
		sid := prev.Get(dir)
		if sid == nil {
			continue
		}
		if tree, ok := qs.index.Get(dir, qs.idMap[keyOf(sid)]); ok {
			delete(tree, prevQuadID)
		}
	}
	return nil
}

// Match returns live quads matching the pattern in insertion order.
func (qs *QuadStore) Match(ctx context.Context, pattern quad.Quad) ([]quad.Quad, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	qs.mu.RLock()
	defer qs.mu.RUnlock()
	tree, ok := qs.candidates(pattern)
	if !ok {
		return nil, nil
	}
	var ids []int64
	if tree == nil {
		for i := 1; i < len(qs.log); i++ {
			e := qs.log[i]
			if e.Action == graph.Add && e.DeletedBy == 0 {
				ids = append(ids, int64(i))
			}
		}
	} else {
		ids = make([]int64, 0, len(tree))
		for id := range tree {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}
	var out []quad.Quad
	for _, id := range ids {
		if q := qs.log[id].Quad; graph.Matches(pattern, q) {
			out = append(out, q)
		}
	}
	return out, nil
}

// ValueOf returns the node id of a value, or 0 if it is unknown.
func (qs *QuadStore) ValueOf(name quad.Value) int64 {
	qs.mu.RLock()
	defer qs.mu.RUnlock()
	return qs.idMap[keyOf(name)]
}

// NameOf returns the value of a node id.
func (qs *QuadStore) NameOf(id int64) quad.Value {
	qs.mu.RLock()
	defer qs.mu.RUnlock()
	return qs.revIDMap[id]
}

func (qs *QuadStore) Size(ctx context.Context) (int64, error) {
	qs.mu.RLock()
	defer qs.mu.RUnlock()
	return qs.size, nil
}

func (qs *QuadStore) DebugPrint() {
	for i, l := range qs.log {
		if i == 0 {
			continue
		}
		if clog.V(2) {
			clog.Infof("%d: %#v", i, l)
		}
	}
}

func (qs *QuadStore) Close() error { return nil }
