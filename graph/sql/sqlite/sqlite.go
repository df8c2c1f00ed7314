//go:build cgo
// +build cgo

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

// Package sqlite registers the sqlite flavor of the sql quad store.
package sqlite

import (
	"database/sql"
	"regexp"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/cayleygraph/surf/graph"
	csql "github.com/cayleygraph/surf/graph/sql"
)

const Type = "sqlite"

var QueryDialect = csql.QueryDialect{
	FieldQuote: func(name string) string {
		return "`" + name + "`"
	},
	Placeholder: func(n int) string { return "?" },
}

func init() {
	regex := func(re, s string) (bool, error) {
		return regexp.MatchString(re, s)
	}
	sql.Register("sqlite3-regexp",
		&sqlite3.SQLiteDriver{
			ConnectHook: func(conn *sqlite3.SQLiteConn) error {
				return conn.RegisterFunc("regexp", regex, true)
			},
		})
	csql.Register(Type, csql.Registration{
		Driver:       "sqlite3-regexp",
		HashType:     `BLOB`,
		BytesType:    `BLOB`,
		IDType:       `INTEGER`,
		MaxOpenConns: 1,
		QueryDialect: QueryDialect,
		Error:        ConvError,
	})
}

// ConvError maps sqlite errors to graph errors.
func ConvError(err error) error {
	if e, ok := err.(sqlite3.Error); ok && e.Code == sqlite3.ErrError &&
		regexp.MustCompile(`table \S+ already exists`).MatchString(e.Error()) {
		return graph.ErrDatabaseExists
	}
	return err
}
