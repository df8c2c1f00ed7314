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

// Package cockroach registers the CockroachDB flavor of the sql quad store.
package cockroach

import (
	"context"

	"github.com/lib/pq"

	csql "github.com/cayleygraph/surf/graph/sql"
	"github.com/cayleygraph/surf/graph/sql/postgres"
)

const Type = "cockroach"

const driverName = "postgres"

func init() {
	csql.Register(Type, csql.Registration{
		Driver:              driverName,
		HashType:            "BYTEA",
		BytesType:           "BYTEA",
		IDType:              "SERIAL",
		QueryDialect:        postgres.QueryDialect,
		Error:               postgres.ConvError,
		TxRetry:             retryTx,
		NoSchemaChangesInTx: true,
	})
}

// AmbiguousCommitError represents an error that left a transaction in an
// ambiguous state: unclear if it committed or not.
type AmbiguousCommitError struct {
	error
}

func (e *AmbiguousCommitError) Unwrap() error { return e.error }

func retryable(err error) bool {
	pqErr, ok := err.(*pq.Error)
	return ok && (pqErr.Code == "CR000" || pqErr.Code == "40001")
}

// retryTx runs the statements and restarts them on retryable errors.
// https://www.cockroachlabs.com/docs/transactions.html#client-side-transaction-retries
func retryTx(ctx context.Context, tx csql.Execer, stmts func() error) error {
	if _, err := tx.ExecContext(ctx, "SAVEPOINT cockroach_restart"); err != nil {
		return err
	}
	for {
		released := false
		err := stmts()
		if err == nil {
			// RELEASE acts like COMMIT in CockroachDB and reports retryable errors.
			released = true
			if _, err = tx.ExecContext(ctx, "RELEASE SAVEPOINT cockroach_restart"); err == nil {
				return nil
			}
		}
		if !retryable(err) {
			if released {
				err = &AmbiguousCommitError{err}
			}
			return err
		}
		if _, err = tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT cockroach_restart"); err != nil {
			return err
		}
	}
}
