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

package cockroach

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
)

type execLog []string

func (l *execLog) ExecContext(_ context.Context, q string, _ ...interface{}) (sql.Result, error) {
	*l = append(*l, q)
	return nil, nil
}

func TestRetryTx(t *testing.T) {
	ctx := context.Background()
	var log execLog
	calls := 0
	err := retryTx(ctx, &log, func() error {
		calls++
		if calls < 3 {
			return &pq.Error{Code: "40001"}
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
	require.Equal(t, execLog{
		"SAVEPOINT cockroach_restart",
		"ROLLBACK TO SAVEPOINT cockroach_restart",
		"ROLLBACK TO SAVEPOINT cockroach_restart",
		"RELEASE SAVEPOINT cockroach_restart",
	}, log)

	fatal := errors.New("fatal")
	log = nil
	err = retryTx(ctx, &log, func() error { return fatal })
	require.Equal(t, fatal, err)
	require.Len(t, log, 1)
}
