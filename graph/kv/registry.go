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

package kv

import (
	"context"
	"errors"
	"strings"

	"github.com/hidal-go/hidalgo/kv"

	"github.com/cayleygraph/surf/graph"
	"github.com/cayleygraph/surf/graph/local"
)

// OpenFunc opens a hidalgo database at a given address.
type OpenFunc func(address string, opts graph.Options) (kv.KV, error)

// Register adds a kv-backed store as a graph backend.
//
// Volatile databases are initialized on open. Persistent ones are initialized
// by graph.InitBackend, or on open if the "init" option is set.
func Register(name string, open OpenFunc, persistent bool) {
	graph.RegisterBackend(name, graph.Registration{
		NewFunc: func(addr string, opts graph.Options) (graph.Backend, error) {
			db, err := open(addr, opts)
			if err != nil {
				return nil, err
			}
			auto, err := opts.BoolKey("init", false)
			if err != nil {
				db.Close()
				return nil, err
			}
			if !persistent || auto {
				if err = Init(context.Background(), db); err != nil && !errors.Is(err, graph.ErrDatabaseExists) {
					db.Close()
					return nil, err
				}
			}
			qs, err := New(db)
			if err != nil {
				db.Close()
				return nil, err
			}
			batch, err := opts.IntKey("batch", 0)
			if err != nil {
				qs.Close()
				return nil, err
			}
			return local.New(qs).WithBatch(batch), nil
		},
		InitFunc: func(addr string, opts graph.Options) error {
			db, err := open(addr, opts)
			if err != nil {
				return err
			}
			defer db.Close()
			return Init(context.Background(), db)
		},
		IsPersistent: persistent,
	})
}

// RegisterAll registers every database known to hidalgo that is not
// registered yet. Names drop the "flat." prefix.
func RegisterAll() {
	for _, r := range kv.List() {
		r := r
		name := strings.TrimPrefix(r.Name, "flat.")
		if graph.IsRegistered(name) {
			continue
		}
		Register(name, func(addr string, _ graph.Options) (kv.KV, error) {
			return r.OpenPath(addr)
		}, !r.Volatile)
	}
}
