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

package pipe

import (
	"context"
	"fmt"
	"sort"
)

var (
	_ Pipe = (*Start)(nil)
	_ Pipe = (*Filter)(nil)
	_ Pipe = (*Map)(nil)
	_ Pipe = (*FlatMap)(nil)
	_ Pipe = (*Tag)(nil)
	_ Pipe = (*Sort)(nil)
	_ Pipe = (*Range)(nil)
	_ Pipe = (*Dedup)(nil)
	_ Pipe = (*Identity)(nil)
)

// Start emits source values as new holders. It ignores its upstream.
type Start struct {
	Base
	src Source
}

func NewStart(src Source) *Start {
	return &Start{src: src}
}

func (p *Start) Next(ctx context.Context) bool {
	if p.err != nil {
		return false
	}
	if !p.src.Next(ctx) {
		if err := p.src.Err(); err != nil {
			return p.Fail(err)
		}
		p.result = nil
		return false
	}
	return p.Emit(NewHolder(p.src.Value(), p.TrackPaths()))
}

func (p *Start) Close() error {
	p.result = nil
	return p.src.Close()
}

// Filter passes holders for which the predicate is true.
//
// It pulls as many upstream holders as needed to find a match, so a
// selective predicate over a long upstream may pull for a long time.
type Filter struct {
	Base
	pred func(h *Holder) (bool, error)
}

func NewFilter(pred func(h *Holder) (bool, error)) *Filter {
	return &Filter{pred: pred}
}

func (p *Filter) Next(ctx context.Context) bool {
	for {
		h, ok := p.Pull(ctx)
		if !ok {
			return p.Exhaust()
		}
		match, err := p.pred(h)
		if err != nil {
			return p.Fail(err)
		} else if match {
			return p.Emit(h)
		}
	}
}

// Map replaces every value with the result of a function.
type Map struct {
	Base
	fn func(h *Holder) (interface{}, error)
}

func NewMap(fn func(h *Holder) (interface{}, error)) *Map {
	return &Map{fn: fn}
}

func (p *Map) Next(ctx context.Context) bool {
	h, ok := p.Pull(ctx)
	if !ok {
		return p.Exhaust()
	}
	v, err := p.fn(h)
	if err != nil {
		return p.Fail(err)
	}
	return p.Emit(h.Split(v))
}

// FlatMap expands every holder into a sequence of values. Expansion is lazy:
// the next upstream holder is pulled only once the current sequence is exhausted.
type FlatMap struct {
	Base
	fn     func(h *Holder) (Source, error)
	parent *Holder
	cur    Source
}

func NewFlatMap(fn func(h *Holder) (Source, error)) *FlatMap {
	return &FlatMap{fn: fn}
}

func (p *FlatMap) Next(ctx context.Context) bool {
	for {
		if p.cur != nil {
			if p.cur.Next(ctx) {
				return p.Emit(p.parent.Split(p.cur.Value()))
			}
			err := p.cur.Err()
			p.cur.Close()
			p.cur, p.parent = nil, nil
			if err != nil {
				return p.Fail(err)
			}
		}
		h, ok := p.Pull(ctx)
		if !ok {
			return p.Exhaust()
		}
		src, err := p.fn(h)
		if err != nil {
			return p.Fail(err)
		}
		p.cur, p.parent = src, h
	}
}

func (p *FlatMap) Close() error {
	if p.cur != nil {
		p.cur.Close()
		p.cur, p.parent = nil, nil
	}
	return p.Base.Close()
}

// Tag binds the current value of every holder to the labels.
type Tag struct {
	Base
	labels []string
}

func NewTag(labels ...string) *Tag {
	return &Tag{labels: labels}
}

func (p *Tag) Next(ctx context.Context) bool {
	h, ok := p.Pull(ctx)
	if !ok {
		return p.Exhaust()
	}
	h.Tag(p.labels...)
	return p.Emit(h)
}

// Identity passes holders through unchanged.
type Identity struct {
	Base
}

func NewIdentity() *Identity { return &Identity{} }

func (p *Identity) Next(ctx context.Context) bool {
	h, ok := p.Pull(ctx)
	if !ok {
		return p.Exhaust()
	}
	return p.Emit(h)
}

// Sort is a barrier: on the first pull it reads the whole upstream and sorts it.
// The sort is stable. A comparator panic is reported as an error.
type Sort struct {
	Base
	cmp    func(a, b *Holder) int
	sorted []*Holder
	done   bool
}

func NewSort(cmp func(a, b *Holder) int) *Sort {
	return &Sort{cmp: cmp}
}

func (p *Sort) load(ctx context.Context) (err error) {
	for {
		h, ok := p.Pull(ctx)
		if !ok {
			break
		}
		p.sorted = append(p.sorted, h)
	}
	if err = p.starts.Err(); err != nil {
		return err
	}
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
			} else {
				err = fmt.Errorf("pipe: sort: %v", r)
			}
		}
	}()
	sort.SliceStable(p.sorted, func(i, j int) bool {
		return p.cmp(p.sorted[i], p.sorted[j]) < 0
	})
	return nil
}

func (p *Sort) Next(ctx context.Context) bool {
	if p.err != nil {
		return false
	}
	if !p.done {
		p.done = true
		if p.starts != nil {
			if err := p.load(ctx); err != nil {
				p.sorted = nil
				return p.Fail(err)
			}
		}
	}
	if len(p.sorted) == 0 {
		p.result = nil
		return false
	}
	h := p.sorted[0]
	p.sorted[0] = nil
	p.sorted = p.sorted[1:]
	return p.Emit(h)
}

func (p *Sort) Close() error {
	p.sorted = nil
	p.done = true
	return p.Base.Close()
}

// Range passes holders at positions [Low, High). A negative High means no upper bound.
// Once High is reached, the upstream is no longer pulled.
type Range struct {
	Base
	low, high int64
	n         int64
}

func NewRange(low, high int64) *Range {
	if low < 0 {
		low = 0
	}
	return &Range{low: low, high: high}
}

func (p *Range) Next(ctx context.Context) bool {
	for {
		if p.high >= 0 && p.n >= p.high {
			p.result = nil
			return false
		}
		h, ok := p.Pull(ctx)
		if !ok {
			return p.Exhaust()
		}
		i := p.n
		p.n++
		if i >= p.low {
			return p.Emit(h)
		}
	}
}

// Dedup passes only the first holder for every key. It keeps all keys seen so far.
type Dedup struct {
	Base
	key  func(h *Holder) interface{}
	seen map[interface{}]struct{}
}

// NewDedup creates a dedup pipe. Keys returned by key must be comparable.
func NewDedup(key func(h *Holder) interface{}) *Dedup {
	return &Dedup{key: key, seen: make(map[interface{}]struct{})}
}

func (p *Dedup) Next(ctx context.Context) bool {
	for {
		h, ok := p.Pull(ctx)
		if !ok {
			return p.Exhaust()
		}
		k := p.key(h)
		if _, dup := p.seen[k]; dup {
			continue
		}
		p.seen[k] = struct{}{}
		return p.Emit(h)
	}
}
