// Copyright 2015 The Cayley Authors. All rights reserved.
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

package graph

import (
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/require"
)

func TestTransaction(t *testing.T) {
	var tx *Transaction

	// simples adds / removes
	tx = NewTransaction()
	tx.AddQuad(quad.MakeIRI("E", "follows", "F", ""))
	tx.AddQuad(quad.MakeIRI("F", "follows", "G", ""))
	tx.RemoveQuad(quad.MakeIRI("A", "follows", "Z", ""))
	require.Equal(t, 3, tx.Len())

	// add, remove -> nothing
	tx = NewTransaction()
	tx.AddQuad(quad.MakeIRI("E", "follows", "G", ""))
	tx.RemoveQuad(quad.MakeIRI("E", "follows", "G", ""))
	require.Equal(t, 0, tx.Len(), "[add, remove]->[]")

	// remove, add -> nothing
	tx = NewTransaction()
	tx.RemoveQuad(quad.MakeIRI("E", "follows", "G", ""))
	tx.AddQuad(quad.MakeIRI("E", "follows", "G", ""))
	require.Equal(t, 0, tx.Len(), "[remove, add]->[]")

	// add x2 -> add x1
	tx = NewTransaction()
	tx.AddQuad(quad.MakeIRI("E", "follows", "G", ""))
	tx.AddQuad(quad.MakeIRI("E", "follows", "G", ""))
	require.Equal(t, 1, tx.Len(), "[add, add]->[add]")

	// same triple in different graphs are different quads
	tx = NewTransaction()
	tx.AddQuad(quad.MakeIRI("E", "follows", "G", "g1"))
	tx.AddQuad(quad.MakeIRI("E", "follows", "G", "g2"))
	require.Equal(t, 2, tx.Len())

	// add, remove x2 -> remove x1
	tx = NewTransaction()
	tx.AddQuad(quad.MakeIRI("E", "follows", "G", ""))
	tx.RemoveQuad(quad.MakeIRI("E", "follows", "G", ""))
	tx.RemoveQuad(quad.MakeIRI("E", "follows", "G", ""))
	require.Equal(t, 1, tx.Len(), "[add, remove, remove]->[remove]")
	require.Equal(t, Delete, tx.Deltas[0].Action)
}
