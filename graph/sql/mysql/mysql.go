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

// Package mysql registers the MySQL flavor of the sql quad store.
package mysql

import (
	"errors"
	"fmt"

	"github.com/cayleygraph/quad"
	"github.com/go-sql-driver/mysql"

	"github.com/cayleygraph/surf/graph"
	csql "github.com/cayleygraph/surf/graph/sql"
)

const Type = "mysql"

// errTableExists is ER_TABLE_EXISTS_ERROR.
const errTableExists = 1050

var QueryDialect = csql.QueryDialect{
	FieldQuote: func(name string) string {
		return "`" + name + "`"
	},
	Placeholder: func(n int) string { return "?" },
}

func init() {
	csql.Register(Type, csql.Registration{
		Driver: "mysql",
		// BLOB columns cannot be indexed without a prefix length, so hashes
		// use VARBINARY wide enough for a quad hash.
		HashType:     fmt.Sprintf("VARBINARY(%d)", 4*quad.HashSize),
		BytesType:    "BLOB",
		IDType:       "BIGINT AUTO_INCREMENT",
		QueryDialect: QueryDialect,
		Error:        ConvError,
		// DDL commits the running transaction implicitly.
		NoSchemaChangesInTx: true,
	})
}

// ConvError maps MySQL error numbers to graph errors.
func ConvError(err error) error {
	var e *mysql.MySQLError
	if errors.As(err, &e) && e.Number == errTableExists {
		return graph.ErrDatabaseExists
	}
	return err
}
