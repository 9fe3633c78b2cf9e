// Copyright 2017 The Cayley Authors. All rights reserved.
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

// Package pipe implements lazy pull-based execution stages.
//
// A Pipe produces holders one at a time by pulling from the upstream pipe
// set with SetStarts. A pipe that returns false from Next is either exhausted
// (Err returns nil) or failed (Err returns the error). Errors of an upstream
// pipe are propagated unchanged by every downstream pipe.
package pipe

import "context"

// Pipe is a single execution stage.
//
// To get the full results of a pipe, do the following:
//
//	for p.Next(ctx) {
//		h := p.Result()
//		... do things with h.
//	}
//	if err := p.Err(); err != nil { ... }
type Pipe interface {
	// Next advances the pipe to the next holder. It returns false if the pipe is
	// exhausted or if an error was encountered. Err should be consulted to
	// distinguish between the two cases.
	Next(ctx context.Context) bool
	// Result returns the current holder.
	Result() *Holder
	// Err returns any error that was encountered by the pipe or its upstream.
	Err() error
	// Close the pipe and its upstream.
	Close() error
	// Label returns the label of the pipe within its pipeline.
	Label() string
	// SetStarts sets the upstream pipe.
	SetStarts(p Pipe)
}

type binder interface {
	bind(pl *Pipeline, label string)
}

// Base implements the bookkeeping shared by all pipes. It is meant to be embedded.
type Base struct {
	pipeline *Pipeline
	label    string
	starts   Pipe
	result   *Holder
	err      error
}

func (b *Base) bind(pl *Pipeline, label string) {
	b.pipeline, b.label = pl, label
}

func (b *Base) Label() string { return b.label }

func (b *Base) SetStarts(p Pipe) { b.starts = p }

// Starts returns the upstream pipe.
func (b *Base) Starts() Pipe { return b.starts }

func (b *Base) Result() *Holder { return b.result }

func (b *Base) Err() error { return b.err }

// Close closes the upstream pipe.
func (b *Base) Close() error {
	b.result = nil
	if b.starts != nil {
		return b.starts.Close()
	}
	return nil
}

// NextLabel returns the label of the following pipe in the pipeline, or None.
func (b *Base) NextLabel() string {
	if b.pipeline == nil {
		return None
	}
	return b.pipeline.NextLabel(b.label)
}

// TrackPaths reports whether the pipeline records holder paths.
func (b *Base) TrackPaths() bool {
	return b.pipeline != nil && b.pipeline.TrackPaths()
}

// Emit routes h to the following pipe and makes it the current result.
func (b *Base) Emit(h *Holder) bool {
	h.Pipe = b.NextLabel()
	b.result = h
	return true
}

// Fail stops the pipe with an error.
func (b *Base) Fail(err error) bool {
	b.result, b.err = nil, err
	return false
}

// Exhaust stops the pipe, propagating an upstream error if there is one.
func (b *Base) Exhaust() bool {
	b.result = nil
	if b.starts != nil && b.err == nil {
		b.err = b.starts.Err()
	}
	return false
}

// Pull advances the upstream pipe. A pipe without upstream is always exhausted.
func (b *Base) Pull(ctx context.Context) (*Holder, bool) {
	if b.starts == nil || b.err != nil {
		return nil, false
	}
	if !b.starts.Next(ctx) {
		return nil, false
	}
	return b.starts.Result(), true
}

// Source is a sequence of plain values feeding a Start pipe or a FlatMap expansion.
type Source interface {
	Next(ctx context.Context) bool
	Value() interface{}
	Err() error
	Close() error
}

// Values returns a source over a fixed list of values.
func Values(vals ...interface{}) Source {
	return &valuesSource{vals: vals, i: -1}
}

type valuesSource struct {
	vals []interface{}
	i    int
}

func (s *valuesSource) Next(ctx context.Context) bool {
	if s.i+1 >= len(s.vals) {
		s.i = len(s.vals)
		return false
	}
	s.i++
	return true
}

func (s *valuesSource) Value() interface{} {
	if s.i < 0 || s.i >= len(s.vals) {
		return nil
	}
	return s.vals[s.i]
}

func (s *valuesSource) Err() error { return nil }

func (s *valuesSource) Close() error {
	s.i = len(s.vals)
	return nil
}
