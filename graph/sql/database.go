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

// Package sql is a quad store on top of a relational database.
//
// Quads live in a single table. Every value is stored as a protobuf blob
// next to its hash, and lookups go through per-direction hash indexes.
package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/surf/graph"
	"github.com/cayleygraph/surf/graph/local"
)

var types = make(map[string]Registration)

// Register adds a database flavor and exposes it as a persistent backend.
func Register(name string, r Registration) {
	if r.Driver == "" {
		panic("no sql driver in type definition")
	}
	types[name] = r

	graph.RegisterBackend(name, graph.Registration{
		NewFunc: func(addr string, opts graph.Options) (graph.Backend, error) {
			if auto, err := opts.BoolKey("init", false); err != nil {
				return nil, err
			} else if auto {
				if err = Init(name, addr, opts); err != nil && !errors.Is(err, graph.ErrDatabaseExists) {
					return nil, err
				}
			}
			qs, err := New(name, addr, opts)
			if err != nil {
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
			return Init(name, addr, opts)
		},
		IsPersistent: true,
	})
}

// Execer is the part of *sql.Tx used by transaction retry hooks.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

type Registration struct {
	Driver       string // sql driver to use on dial
	HashType     string // type for hash fields
	BytesType    string // type for binary fields
	IDType       string // type for the auto-increment primary key
	MaxOpenConns int    // default connection limit; zero means unlimited

	QueryDialect

	Error               func(error) error                                            // error conversion function
	TxRetry             func(ctx context.Context, tx Execer, stmts func() error) error // retries a transaction body
	NoSchemaChangesInTx bool
}

type QueryDialect struct {
	FieldQuote  func(string) string
	Placeholder func(int) string
}

func (r Registration) convError(err error) error {
	if err == nil || r.Error == nil {
		return err
	}
	return r.Error(err)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// column returns the name of the hash column for a direction, or of the
// value column if hash is false.
func column(d quad.Direction, hash bool) string {
	if hash {
		return d.String() + "_hash"
	}
	return d.String()
}

func (r Registration) quadsTable() string {
	htyp := orDefault(r.HashType, "BYTEA")
	btyp := orDefault(r.BytesType, "BYTEA")
	cols := []string{
		"id " + orDefault(r.IDType, "BIGSERIAL") + " PRIMARY KEY",
		"quad_hash " + htyp + " NOT NULL",
	}
	for _, d := range quad.Directions {
		null := " NOT NULL"
		if d == quad.Label {
			null = ""
		}
		cols = append(cols,
			r.FieldQuote(column(d, true))+" "+htyp+null,
			r.FieldQuote(column(d, false))+" "+btyp+null,
		)
	}
	return "CREATE TABLE quads (\n\t" + strings.Join(cols, ",\n\t") + "\n);"
}

func (r Registration) quadIndexes() []string {
	indexes := []string{`CREATE UNIQUE INDEX quads_unique ON quads (quad_hash);`}
	for _, d := range quad.Directions {
		indexes = append(indexes, fmt.Sprintf(`CREATE INDEX %c_index ON quads (%s);`,
			d.Prefix(), r.FieldQuote(column(d, true))))
	}
	return indexes
}

// placeholders returns n placeholders starting from the given index.
func (r Registration) placeholders(from, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = r.Placeholder(from + i)
	}
	return out
}
