// Copyright 2014 The Cayley Authors. All rights reserved.
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

// Defines the QuadStore interface. Local backends only need to provide
// these primitives; query evaluation is done by package graph/eval.

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/cayleygraph/quad"
)

type QuadStore interface {
	// ApplyDeltas adds and removes quads. Duplicate adds and missing
	// deletes are reported as DeltaError unless ignored by opts.
	ApplyDeltas(ctx context.Context, in []Delta, opts IgnoreOpts) error

	// Match returns all quads that match the pattern. Nil fields of the
	// pattern match any value, including a nil label.
	Match(ctx context.Context, pattern quad.Quad) ([]quad.Quad, error)

	// Size returns the number of quads currently stored.
	Size(ctx context.Context) (int64, error)

	// Close the quad store and clean up. (Flush to disk, cleanly
	// sever connections, etc)
	Close() error
}

// Matches reports whether q matches a pattern with nil wildcards.
func Matches(pattern, q quad.Quad) bool {
	for _, d := range quad.Directions {
		if pv := pattern.Get(d); pv != nil && !ValueEqual(pv, q.Get(d)) {
			return false
		}
	}
	return true
}

// ValueEqual compares two terms by their canonical form.
func ValueEqual(a, b quad.Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a == b || a.String() == b.String()
}

var (
	ErrDatabaseExists = errors.New("quadstore: cannot init; database already exists")
	ErrNotInitialized = errors.New("quadstore: not initialized")
)

type Options map[string]interface{}

var (
	typeInt = reflect.TypeOf(int(0))
)

func (d Options) IntKey(key string, def int) (int, error) {
	if val, ok := d[key]; ok {
		if reflect.TypeOf(val).ConvertibleTo(typeInt) {
			i := reflect.ValueOf(val).Convert(typeInt).Int()
			return int(i), nil
		}

		return def, fmt.Errorf("Invalid %s parameter type from config: %T", key, val)
	}
	return def, nil
}

func (d Options) StringKey(key string, def string) (string, error) {
	if val, ok := d[key]; ok {
		if v, ok := val.(string); ok {
			return v, nil
		}

		return def, fmt.Errorf("Invalid %s parameter type from config: %T", key, val)
	}

	return def, nil
}

func (d Options) BoolKey(key string, def bool) (bool, error) {
	if val, ok := d[key]; ok {
		if v, ok := val.(bool); ok {
			return v, nil
		}

		return def, fmt.Errorf("Invalid %s parameter type from config: %T", key, val)
	}

	return def, nil
}

// DurationKey reads a duration. Strings are parsed with time.ParseDuration,
// numbers are treated as seconds.
func (d Options) DurationKey(key string, def time.Duration) (time.Duration, error) {
	val, ok := d[key]
	if !ok {
		return def, nil
	}
	switch v := val.(type) {
	case time.Duration:
		return v, nil
	case string:
		dt, err := time.ParseDuration(v)
		if err != nil {
			return def, fmt.Errorf("Invalid %s parameter from config: %w", key, err)
		}
		return dt, nil
	case float64:
		return time.Duration(v * float64(time.Second)), nil
	}
	if reflect.TypeOf(val).ConvertibleTo(typeInt) {
		i := reflect.ValueOf(val).Convert(typeInt).Int()
		return time.Duration(i) * time.Second, nil
	}
	return def, fmt.Errorf("Invalid %s parameter type from config: %T", key, val)
}
