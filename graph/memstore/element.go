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

package memstore

import (
	"fmt"
	"sort"

	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/traverse/graph"
	"github.com/cayleygraph/traverse/graph/variables"
)

var (
	_ graph.Vertex = (*vertex)(nil)
	_ graph.Edge   = (*edge)(nil)
)

type vertex struct {
	id    quad.Value
	key   string
	props map[string]quad.Value
	outE  []*edge
	inE   []*edge
}

func (v *vertex) ID() quad.Value { return v.id }

func (v *vertex) Key() interface{} { return v.key }

func (v *vertex) Type() graph.ElementType { return graph.VertexType }

func (v *vertex) String() string { return fmt.Sprintf("v[%v]", v.id) }

func (v *vertex) Property(key string) (quad.Value, bool) {
	p, ok := v.props[key]
	return p, ok
}

// PropertyKeys lists property keys, except the hidden ones.
func (v *vertex) PropertyKeys() []string {
	keys := make([]string, 0, len(v.props))
	for k := range v.props {
		if !variables.IsHidden(k) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

type edge struct {
	id    int64
	label string
	out   *vertex
	in    *vertex
}

func (e *edge) ID() quad.Value { return quad.Int(e.id) }

func (e *edge) Key() interface{} { return fmt.Sprintf("e:%d", e.id) }

func (e *edge) Type() graph.ElementType { return graph.EdgeType }

func (e *edge) Label() string { return e.label }

func (e *edge) String() string {
	return fmt.Sprintf("e[%d][%v-%s->%v]", e.id, e.out.id, e.label, e.in.id)
}

func (e *edge) Property(key string) (quad.Value, bool) { return nil, false }

func (e *edge) PropertyKeys() []string { return nil }

func (e *edge) Vertex(d graph.Direction) graph.Vertex {
	switch d {
	case graph.Out:
		return e.out
	case graph.In:
		return e.in
	}
	panic(fmt.Errorf("memstore: edge has no single vertex in %v direction", d))
}
