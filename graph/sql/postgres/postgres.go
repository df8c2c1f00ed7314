// Copyright 2026 The Cayley Authors. All rights reserved.
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

// Package postgres registers the PostgreSQL flavor of the sql quad store.
package postgres

import (
	"fmt"

	"github.com/lib/pq"

	"github.com/cayleygraph/surf/graph"
	csql "github.com/cayleygraph/surf/graph/sql"
)

const Type = "postgres"

var QueryDialect = csql.QueryDialect{
	FieldQuote: pq.QuoteIdentifier,
	Placeholder: func(n int) string {
		return fmt.Sprintf("$%d", n)
	},
}

func init() {
	csql.Register(Type, csql.Registration{
		Driver:       "postgres",
		HashType:     "BYTEA",
		BytesType:    "BYTEA",
		IDType:       "BIGSERIAL",
		QueryDialect: QueryDialect,
		Error:        ConvError,
	})
}

// ConvError maps PostgreSQL error codes to graph errors.
func ConvError(err error) error {
	e, ok := err.(*pq.Error)
	if !ok {
		return err
	}
	switch e.Code {
	case "42P07":
		return graph.ErrDatabaseExists
	}
	return err
}
