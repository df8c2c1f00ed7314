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

package sql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/pquads"

	"github.com/cayleygraph/surf/clog"
	"github.com/cayleygraph/surf/graph"
)

type QuadStore struct {
	db     *sql.DB
	flavor Registration
}

var _ graph.QuadStore = (*QuadStore)(nil)

func connect(typ, addr string, opts graph.Options) (*sql.DB, Registration, error) {
	fl, ok := types[typ]
	if !ok {
		return nil, fl, fmt.Errorf("%w: sql flavor %q", graph.ErrBackendNotRegistered, typ)
	}
	conn, err := sql.Open(fl.Driver, addr)
	if err != nil {
		clog.Errorf("Couldn't open database at %s: %#v", addr, err)
		return nil, fl, err
	}
	// "Open may just validate its arguments without creating a connection to the database."
	if err := conn.Ping(); err != nil {
		clog.Errorf("Couldn't open database at %s: %#v", addr, err)
		conn.Close()
		return nil, fl, err
	}
	conns, err := opts.IntKey("max_open_conns", fl.MaxOpenConns)
	if err != nil {
		conn.Close()
		return nil, fl, err
	}
	conn.SetMaxOpenConns(conns)
	return conn, fl, nil
}

func tableExists(ctx context.Context, db *sql.DB) bool {
	rows, err := db.QueryContext(ctx, `SELECT 1 FROM quads LIMIT 1;`)
	if err != nil {
		return false
	}
	rows.Close()
	return true
}

// Init creates the quads table and its indexes.
func Init(typ, addr string, opts graph.Options) error {
	ctx := context.Background()
	conn, fl, err := connect(typ, addr, opts)
	if err != nil {
		return err
	}
	defer conn.Close()
	if tableExists(ctx, conn) {
		return graph.ErrDatabaseExists
	}
	stmts := append([]string{fl.quadsTable()}, fl.quadIndexes()...)
	if fl.NoSchemaChangesInTx {
		for _, s := range stmts {
			if _, err = conn.ExecContext(ctx, s); err != nil {
				return fl.convError(err)
			}
		}
		return nil
	}
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		clog.Errorf("Couldn't begin creation transaction: %s", err)
		return err
	}
	for _, s := range stmts {
		if _, err = tx.ExecContext(ctx, s); err != nil {
			tx.Rollback()
			err = fl.convError(err)
			if err != graph.ErrDatabaseExists {
				clog.Errorf("Cannot create quads table: %v", err)
			}
			return err
		}
	}
	return tx.Commit()
}

// New opens a database prepared by Init.
func New(typ, addr string, opts graph.Options) (*QuadStore, error) {
	conn, fl, err := connect(typ, addr, opts)
	if err != nil {
		return nil, err
	}
	if !tableExists(context.Background(), conn) {
		conn.Close()
		return nil, graph.ErrNotInitialized
	}
	return &QuadStore{db: conn, flavor: fl}, nil
}

func hashOf(v quad.Value) []byte {
	if v == nil {
		return nil
	}
	h := make([]byte, quad.HashSize)
	quad.HashTo(v, h)
	return h
}

func quadHash(q quad.Quad) []byte {
	h := make([]byte, 0, 4*quad.HashSize)
	for _, d := range quad.Directions {
		if v := q.Get(d); v != nil {
			h = append(h, hashOf(v)...)
		} else {
			h = append(h, make([]byte, quad.HashSize)...)
		}
	}
	return h
}

func marshalValue(v quad.Value) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return pquads.MarshalValue(v)
}

func unmarshalValue(b []byte) (quad.Value, error) {
	if b == nil {
		return nil, nil
	}
	return pquads.UnmarshalValue(b)
}

func (qs *QuadStore) insertStmt() string {
	cols := []string{"quad_hash"}
	for _, d := range quad.Directions {
		cols = append(cols, qs.flavor.FieldQuote(column(d, true)), qs.flavor.FieldQuote(column(d, false)))
	}
	return `INSERT INTO quads(` + strings.Join(cols, ", ") + `) VALUES (` +
		strings.Join(qs.flavor.placeholders(1, len(cols)), ", ") + `);`
}

func (qs *QuadStore) ApplyDeltas(ctx context.Context, in []graph.Delta, opts graph.IgnoreOpts) error {
	tx, err := qs.db.BeginTx(ctx, nil)
	if err != nil {
		clog.Errorf("couldn't begin write transaction: %v", err)
		return err
	}
	var (
		ph     = qs.flavor.Placeholder(1)
		exists = `SELECT COUNT(*) FROM quads WHERE quad_hash = ` + ph + `;`
		del    = `DELETE FROM quads WHERE quad_hash = ` + ph + `;`
		insert = qs.insertStmt()
	)
	apply := func() error {
		for _, d := range in {
			h := quadHash(d.Quad)
			var n int
			if err := tx.QueryRowContext(ctx, exists, h).Scan(&n); err != nil {
				return err
			}
			switch d.Action {
			case graph.Add:
				if n != 0 {
					if opts.IgnoreDup {
						continue
					}
					return &graph.DeltaError{Delta: d, Err: graph.ErrQuadExists}
				} else if !d.Quad.IsValid() {
					return &graph.DeltaError{Delta: d, Err: graph.ErrInvalidAction}
				}
				args := []interface{}{h}
				for _, dir := range quad.Directions {
					v := d.Quad.Get(dir)
					b, err := marshalValue(v)
					if err != nil {
						return err
					}
					args = append(args, hashOf(v), b)
				}
				if _, err := tx.ExecContext(ctx, insert, args...); err != nil {
					clog.Errorf("couldn't exec INSERT statement: %v", err)
					return err
				}
			case graph.Delete:
				if n == 0 {
					if opts.IgnoreMissing {
						continue
					}
					return &graph.DeltaError{Delta: d, Err: graph.ErrQuadNotExist}
				}
				if _, err := tx.ExecContext(ctx, del, h); err != nil {
					clog.Errorf("couldn't exec DELETE statement: %v", err)
					return err
				}
			default:
				return &graph.DeltaError{Delta: d, Err: graph.ErrInvalidAction}
			}
		}
		return nil
	}
	if qs.flavor.TxRetry != nil {
		err = qs.flavor.TxRetry(ctx, tx, apply)
	} else {
		err = apply()
	}
	if err != nil {
		tx.Rollback()
		return err
	}
	if err = tx.Commit(); err != nil {
		return err
	}
	if clog.V(2) {
		clog.Infof("sql: applied %d deltas", len(in))
	}
	return nil
}

// Match selects quads by the hashes of bound values, in insertion order.
func (qs *QuadStore) Match(ctx context.Context, pattern quad.Quad) ([]quad.Quad, error) {
	var (
		where []string
		args  []interface{}
	)
	for _, d := range quad.Directions {
		if v := pattern.Get(d); v != nil {
			args = append(args, hashOf(v))
			where = append(where, qs.flavor.FieldQuote(column(d, true))+" = "+qs.flavor.Placeholder(len(args)))
		}
	}
	cols := make([]string, 0, 4)
	for _, d := range quad.Directions {
		cols = append(cols, qs.flavor.FieldQuote(column(d, false)))
	}
	q := `SELECT ` + strings.Join(cols, ", ") + ` FROM quads`
	if len(where) != 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY id;`
	if clog.V(3) {
		clog.Infof("%s %v", q, args)
	}
	rows, err := qs.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []quad.Quad
	for rows.Next() {
		var raw [4][]byte
		if err := rows.Scan(&raw[0], &raw[1], &raw[2], &raw[3]); err != nil {
			return nil, err
		}
		var cur quad.Quad
		for i, d := range quad.Directions {
			v, err := unmarshalValue(raw[i])
			if err != nil {
				return nil, err
			}
			cur.Set(d, v)
		}
		if graph.Matches(pattern, cur) {
			out = append(out, cur)
		}
	}
	return out, rows.Err()
}

func (qs *QuadStore) Size(ctx context.Context) (int64, error) {
	var n int64
	err := qs.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quads;`).Scan(&n)
	return n, err
}

func (qs *QuadStore) Close() error {
	return qs.db.Close()
}
