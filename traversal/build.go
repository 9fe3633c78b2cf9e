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

package traversal

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"reflect"

	"github.com/cayleygraph/traverse/graph"
	"github.com/cayleygraph/traverse/pipe"
	"github.com/cayleygraph/traverse/traversal/order"
)

var (
	ErrNoStart     = errors.New("traversal: traversal must begin with a start step")
	ErrUnknownStep = errors.New("traversal: unknown step")
)

// Option configures compilation of a traversal.
type Option func(o *buildOptions)

type buildOptions struct {
	rand rand.Source
	ctx  context.Context
}

// WithRandSource sets the randomness source used by shuffle ordering.
func WithRandSource(src rand.Source) Option {
	return func(o *buildOptions) {
		o.rand = src
	}
}

// WithContext sets the context used by scripts to read graph variables.
func WithContext(ctx context.Context) Option {
	return func(o *buildOptions) {
		o.ctx = ctx
	}
}

func isPathStep(s Step) bool {
	_, ok := s.(*PathStep)
	return ok
}

// Build realizes the steps of a traversal as a pipeline over a graph.
// Path tracking is enabled only if the traversal contains a path step.
func Build(g graph.Graph, t *Traversal, opts ...Option) (*pipe.Pipeline, error) {
	o := buildOptions{ctx: context.Background()}
	for _, opt := range opts {
		opt(&o)
	}
	steps := t.steps
	if len(steps) == 0 {
		return nil, ErrNoStart
	}
	if _, ok := steps[0].(*StartStep); !ok {
		return nil, ErrNoStart
	}
	pl := pipe.NewPipeline(t.Contains(isPathStep))
	for i, s := range steps {
		p, err := buildStep(g, s, i, &o)
		if err != nil {
			return nil, err
		}
		pl.Add(p, "")
		if labels := s.Labels(); len(labels) != 0 {
			pl.Add(pipe.NewTag(labels...), "")
		}
	}
	return pl, nil
}

func buildStep(g graph.Graph, s Step, i int, o *buildOptions) (pipe.Pipe, error) {
	switch s := s.(type) {
	case *StartStep:
		if i != 0 {
			return nil, fmt.Errorf("traversal: %v must be the first step", s)
		}
		return pipe.NewStart(elements(g.Vertices(s.IDs...), nil)), nil
	case *VertexStep:
		return buildVertexStep(g, s), nil
	case *EdgeVertexStep:
		dir := s.Direction
		return pipe.NewFlatMap(func(h *pipe.Holder) (pipe.Source, error) {
			e, ok := h.Value.(graph.Edge)
			if !ok {
				return nil, typeError(s, "edge", h.Value)
			}
			switch dir {
			case graph.Out, graph.In:
				return pipe.Values(e.Vertex(dir)), nil
			case graph.Both:
				return pipe.Values(e.Vertex(graph.Out), e.Vertex(graph.In)), nil
			}
			return nil, fmt.Errorf("traversal: %v has no direction", s)
		}), nil
	case *EdgeOtherVertexStep:
		return pipe.NewMap(func(h *pipe.Holder) (interface{}, error) {
			e, ok := h.Value.(graph.Edge)
			if !ok {
				return nil, typeError(s, "edge", h.Value)
			}
			from, ok := h.Origin.(graph.Vertex)
			if !ok || from.Type() != graph.VertexType {
				return nil, fmt.Errorf("traversal: %v: edge was not reached from a vertex", s)
			}
			return graph.OtherVertex(e, from), nil
		}), nil
	case *PathStep:
		return pipe.NewMap(func(h *pipe.Holder) (interface{}, error) {
			return h.Path(), nil
		}), nil
	case *LambdaStep:
		return buildLambda(g, s, o)
	case *HasStep:
		return pipe.NewFilter(func(h *pipe.Holder) (bool, error) {
			el, ok := h.Value.(graph.Element)
			if !ok {
				return false, nil
			}
			v, ok := el.Property(s.Key)
			if !ok {
				return false, nil
			}
			return s.Value == nil || order.Equal(v, s.Value), nil
		}), nil
	case *ValuesStep:
		return pipe.NewFlatMap(func(h *pipe.Holder) (pipe.Source, error) {
			el, ok := h.Value.(graph.Element)
			if !ok {
				return nil, typeError(s, "element", h.Value)
			}
			if v, ok := el.Property(s.Key); ok {
				return pipe.Values(v), nil
			}
			return pipe.Values(), nil
		}), nil
	case *OrderStep:
		return buildOrder(s, o), nil
	case *RangeStep:
		return pipe.NewRange(s.Low, s.High), nil
	case *DedupStep:
		return pipe.NewDedup(dedupKey), nil
	case *IdentityStep:
		return pipe.NewIdentity(), nil
	case *SelectStep:
		return pipe.NewFlatMap(func(h *pipe.Holder) (pipe.Source, error) {
			if v, ok := h.Tagged(s.Label); ok {
				return pipe.Values(v), nil
			}
			return pipe.Values(), nil
		}), nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnknownStep, s)
}

func typeError(s Step, expected string, got interface{}) error {
	return fmt.Errorf("traversal: %v: expected %s, got %T", s, expected, got)
}

func buildVertexStep(g graph.Graph, s *VertexStep) pipe.Pipe {
	dir, labels := s.Direction, s.EdgeLabels
	toVertex := s.Returns == graph.VertexType
	return pipe.NewFlatMap(func(h *pipe.Holder) (pipe.Source, error) {
		v, ok := h.Value.(graph.Vertex)
		if !ok || v.Type() != graph.VertexType {
			return nil, typeError(s, "vertex", h.Value)
		}
		it := g.Edges(v, dir, labels...)
		if !toVertex {
			return elements(it, nil), nil
		}
		return elements(it, func(el graph.Element) interface{} {
			e := el.(graph.Edge)
			switch dir {
			case graph.Out:
				return e.Vertex(graph.In)
			case graph.In:
				return e.Vertex(graph.Out)
			}
			return graph.OtherVertex(e, v)
		}), nil
	})
}

func buildLambda(g graph.Graph, s *LambdaStep, o *buildOptions) (pipe.Pipe, error) {
	fn, err := lambdaFunc(o.ctx, s, g.Variables())
	if err != nil {
		return nil, err
	}
	switch s.Kind {
	case LambdaFilter:
		return pipe.NewFilter(func(h *pipe.Holder) (bool, error) {
			r, err := fn(h.Value)
			if err != nil {
				return false, err
			}
			b, ok := r.(bool)
			if !ok {
				return false, fmt.Errorf("traversal: %v returned %T instead of bool", s, r)
			}
			return b, nil
		}), nil
	case LambdaMap:
		return pipe.NewMap(func(h *pipe.Holder) (interface{}, error) {
			return fn(h.Value)
		}), nil
	}
	return nil, fmt.Errorf("traversal: %v has unknown kind", s)
}

// sortKey returns the value an order step sorts by. It panics with an error if an
// element has no such property; the sort pipe reports the panic as an error.
func sortKey(key string, v interface{}) interface{} {
	el, ok := v.(graph.Element)
	if !ok {
		return v
	}
	if key == "" {
		return el.ID()
	}
	p, ok := el.Property(key)
	if !ok {
		panic(fmt.Errorf("traversal: cannot order by %q: %v has no such property", key, el.ID()))
	}
	return p
}

func sortItem(s *OrderStep, v interface{}) interface{} {
	switch s.Order {
	case order.KeyIncr, order.KeyDecr, order.ValueIncr, order.ValueDecr:
		switch v.(type) {
		case order.Entry, *order.Entry:
			return v
		}
		// elements are sorted by id as the entry key and by the sort key as the entry value
		return order.Entry{Key: sortKey("", v), Value: sortKey(s.Key, v)}
	}
	return sortKey(s.Key, v)
}

func buildOrder(s *OrderStep, o *buildOptions) pipe.Pipe {
	cmp := order.Comparator(s.Order, o.rand)
	return pipe.NewSort(func(a, b *pipe.Holder) int {
		return cmp(sortItem(s, a.Value), sortItem(s, b.Value))
	})
}

func dedupKey(h *pipe.Holder) interface{} {
	v := h.Value
	if el, ok := v.(graph.Element); ok {
		return el.Key()
	}
	if v == nil || reflect.TypeOf(v).Comparable() {
		return v
	}
	return fmt.Sprintf("%#v", v)
}

// elements adapts a graph iterator to a pipe source, optionally converting every element.
func elements(it graph.Iterator, conv func(el graph.Element) interface{}) pipe.Source {
	return &elementSource{it: it, conv: conv}
}

type elementSource struct {
	it   graph.Iterator
	conv func(el graph.Element) interface{}
}

func (s *elementSource) Next(ctx context.Context) bool { return s.it.Next(ctx) }

func (s *elementSource) Value() interface{} {
	el := s.it.Result()
	if s.conv != nil && el != nil {
		return s.conv(el)
	}
	return el
}

func (s *elementSource) Err() error { return s.it.Err() }

func (s *elementSource) Close() error { return s.it.Close() }
