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

// Package btree registers an in-memory B-tree key-value store as a volatile
// graph backend.
package btree

import (
	hkv "github.com/hidal-go/hidalgo/kv"
	"github.com/hidal-go/hidalgo/kv/flat"
	"github.com/hidal-go/hidalgo/kv/flat/btree"

	"github.com/cayleygraph/surf/graph"
	"github.com/cayleygraph/surf/graph/kv"
)

const Type = "btree"

func init() {
	kv.Register(Type, Create, false)
}

func Create(_ string, _ graph.Options) (hkv.KV, error) {
	return New(), nil
}

func New() hkv.KV {
	return flat.Upgrade(btree.New())
}
