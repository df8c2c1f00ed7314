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

import (
	"context"
	"errors"

	"github.com/cayleygraph/quad"
)

type Procedure int8

func (p Procedure) String() string {
	switch p {
	case +1:
		return "add"
	case -1:
		return "delete"
	default:
		return "invalid"
	}
}

// The different types of actions a transaction can do.
const (
	Add    Procedure = +1
	Delete Procedure = -1
)

type Delta struct {
	Quad   quad.Quad
	Action Procedure
}

type IgnoreOpts struct {
	IgnoreDup, IgnoreMissing bool
}

var (
	ErrQuadExists    = errors.New("quad exists")
	ErrQuadNotExist  = errors.New("quad does not exist")
	ErrInvalidAction = errors.New("invalid action")
)

// DeltaError records an error and the delta that caused it.
type DeltaError struct {
	Delta Delta
	Err   error
}

func (e *DeltaError) Error() string {
	if !e.Delta.Quad.IsValid() {
		return e.Err.Error()
	}
	return e.Delta.Action.String() + " " + e.Delta.Quad.String() + ": " + e.Err.Error()
}

func (e *DeltaError) Unwrap() error { return e.Err }

// IsQuadExist returns whether an error is a DeltaError
// with the Err field equal to ErrQuadExists.
func IsQuadExist(err error) bool {
	return errors.Is(err, ErrQuadExists)
}

// IsQuadNotExist returns whether an error is a DeltaError
// with the Err field equal to ErrQuadNotExist.
func IsQuadNotExist(err error) bool {
	return errors.Is(err, ErrQuadNotExist)
}

// IsInvalidAction returns whether an error is a DeltaError
// with the Err field equal to ErrInvalidAction.
func IsInvalidAction(err error) bool {
	return errors.Is(err, ErrInvalidAction)
}

type BatchWriter interface {
	quad.WriteCloser
	Flush() error
	// Written returns the number of quads passed to the store so far.
	Written() int
}

// NewWriter creates a quad writer that adds quads to a given QuadStore in
// batches of the given size. Duplicate quads are ignored.
//
// Caller must call Flush or Close to flush an internal buffer.
func NewWriter(ctx context.Context, qs QuadStore, batch int) BatchWriter {
	if batch <= 0 {
		batch = quad.DefaultBatch
	}
	return &batchWriter{ctx: ctx, qs: qs, size: batch}
}

type batchWriter struct {
	ctx  context.Context
	qs   QuadStore
	size int
	buf  []Delta
	n    int
}

func (w *batchWriter) flushBuffer(force bool) error {
	if len(w.buf) == 0 || (!force && len(w.buf) < w.size) {
		return nil
	}
	err := w.qs.ApplyDeltas(w.ctx, w.buf, IgnoreOpts{IgnoreDup: true})
	if err == nil {
		w.n += len(w.buf)
	}
	w.buf = w.buf[:0]
	return err
}

func (w *batchWriter) WriteQuad(q quad.Quad) error {
	if err := w.flushBuffer(false); err != nil {
		return err
	}
	w.buf = append(w.buf, Delta{Quad: q, Action: Add})
	return nil
}
func (w *batchWriter) WriteQuads(quads []quad.Quad) (int, error) {
	for i, q := range quads {
		if err := w.WriteQuad(q); err != nil {
			return i, err
		}
	}
	return len(quads), nil
}
func (w *batchWriter) Flush() error {
	return w.flushBuffer(true)
}
func (w *batchWriter) Close() error {
	return w.Flush()
}
func (w *batchWriter) Written() int { return w.n }
