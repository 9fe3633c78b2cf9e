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

// Package memstore implements an in-memory property graph built from quads.
//
// A quad with an IRI or blank node object becomes an edge labeled with the predicate.
// Any other quad sets a property of the subject vertex.
package memstore

import (
	"fmt"
	"io"
	"sync"

	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/nquads"
	"github.com/pkg/errors"

	"github.com/cayleygraph/traverse/clog"
	"github.com/cayleygraph/traverse/graph"
	"github.com/cayleygraph/traverse/graph/variables"
)

var _ graph.Graph = (*QuadStore)(nil)

// QuadStore is an in-memory graph. It is safe for concurrent use.
// Iterators observe a snapshot taken when they are created.
type QuadStore struct {
	mu       sync.RWMutex
	nextID   int64
	vertices map[string]*vertex
	order    []*vertex
	edges    []*edge
	vars     variables.Variables
}

// New creates an empty graph with in-memory variables.
func New() *QuadStore {
	return &QuadStore{
		nextID:   1,
		vertices: make(map[string]*vertex),
		vars:     variables.NewMemory(),
	}
}

// SetVariables replaces the variables store bound to the graph.
func (qs *QuadStore) SetVariables(vars variables.Variables) {
	qs.mu.Lock()
	qs.vars = vars
	qs.mu.Unlock()
}

func (qs *QuadStore) Variables() variables.Variables {
	qs.mu.RLock()
	defer qs.mu.RUnlock()
	return qs.vars
}

func isNode(v quad.Value) bool {
	switch v.(type) {
	case quad.IRI, quad.BNode:
		return true
	}
	return false
}

// name converts a predicate to an edge label or a property key.
func name(p quad.Value) string {
	switch p := p.(type) {
	case quad.IRI:
		return string(p)
	case quad.String:
		return string(p)
	}
	return quad.StringOf(p)
}

func (qs *QuadStore) vertexOf(id quad.Value) *vertex {
	key := quad.StringOf(id)
	v, ok := qs.vertices[key]
	if !ok {
		v = &vertex{id: id, key: "v:" + key, props: make(map[string]quad.Value)}
		qs.vertices[key] = v
		qs.order = append(qs.order, v)
	}
	return v
}

// AddVertex adds a vertex without properties. Adding an existing vertex is a no-op.
func (qs *QuadStore) AddVertex(id quad.Value) error {
	if !isNode(id) {
		return fmt.Errorf("memstore: vertex id must be an IRI or a blank node, got %T", id)
	}
	qs.mu.Lock()
	qs.vertexOf(id)
	qs.mu.Unlock()
	return nil
}

// AddQuad adds an edge or a vertex property. Setting a property again overwrites its value.
func (qs *QuadStore) AddQuad(q quad.Quad) error {
	if !q.IsValid() {
		return fmt.Errorf("memstore: invalid quad: %v", q)
	} else if !isNode(q.Subject) {
		return fmt.Errorf("memstore: quad subject must be an IRI or a blank node, got %T", q.Subject)
	}
	qs.mu.Lock()
	defer qs.mu.Unlock()
	from := qs.vertexOf(q.Subject)
	if !isNode(q.Object) {
		from.props[name(q.Predicate)] = q.Object
		return nil
	}
	to := qs.vertexOf(q.Object)
	e := &edge{id: qs.nextID, label: name(q.Predicate), out: from, in: to}
	qs.nextID++
	qs.edges = append(qs.edges, e)
	from.outE = append(from.outE, e)
	to.inE = append(to.inE, e)
	return nil
}

// AddQuads adds all quads, stopping at the first error.
func (qs *QuadStore) AddQuads(quads ...quad.Quad) error {
	for _, q := range quads {
		if err := qs.AddQuad(q); err != nil {
			return err
		}
	}
	return nil
}

// Load reads N-Quads from r and adds them to the graph.
func (qs *QuadStore) Load(r io.Reader) error {
	dec := nquads.NewReader(r, false)
	n := 0
	for {
		q, err := dec.ReadQuad()
		if err == io.EOF {
			break
		} else if err != nil {
			return errors.Wrapf(err, "memstore: read quad %d", n+1)
		}
		if err = qs.AddQuad(q); err != nil {
			return err
		}
		n++
	}
	if clog.V(1) {
		clog.Infof("memstore: loaded %d quads", n)
	}
	return nil
}

// Size returns the number of vertices and edges in the graph.
func (qs *QuadStore) Size() (vertices, edges int) {
	qs.mu.RLock()
	defer qs.mu.RUnlock()
	return len(qs.order), len(qs.edges)
}

// Vertices iterates over vertices with given ids in the order of ids,
// or over all vertices in insertion order. Unknown ids are skipped.
func (qs *QuadStore) Vertices(ids ...quad.Value) graph.Iterator {
	qs.mu.RLock()
	defer qs.mu.RUnlock()
	var out []graph.Element
	if len(ids) == 0 {
		out = make([]graph.Element, 0, len(qs.order))
		for _, v := range qs.order {
			out = append(out, v)
		}
		return graph.NewFixed(out...)
	}
	for _, id := range ids {
		if v, ok := qs.vertices[quad.StringOf(id)]; ok {
			out = append(out, v)
		}
	}
	return graph.NewFixed(out...)
}

// Edges iterates over edges incident to v. For Both, outgoing edges are listed first.
func (qs *QuadStore) Edges(v graph.Vertex, d graph.Direction, labels ...string) graph.Iterator {
	qs.mu.RLock()
	defer qs.mu.RUnlock()
	mv, ok := qs.vertices[quad.StringOf(v.ID())]
	if !ok {
		return graph.NewFixed()
	}
	var list []*edge
	switch d {
	case graph.Out:
		list = mv.outE
	case graph.In:
		list = mv.inE
	case graph.Both:
		list = make([]*edge, 0, len(mv.outE)+len(mv.inE))
		list = append(list, mv.outE...)
		list = append(list, mv.inE...)
	default:
		clog.Warningf("memstore: edges requested in %v direction", d)
		return graph.NewFixed()
	}
	out := make([]graph.Element, 0, len(list))
	for _, e := range list {
		if hasLabel(e.label, labels) {
			out = append(out, e)
		}
	}
	return graph.NewFixed(out...)
}

func hasLabel(l string, labels []string) bool {
	if len(labels) == 0 {
		return true
	}
	for _, s := range labels {
		if s == l {
			return true
		}
	}
	return false
}

func (qs *QuadStore) DebugPrint() {
	if !clog.V(2) {
		return
	}
	qs.mu.RLock()
	defer qs.mu.RUnlock()
	for _, v := range qs.order {
		clog.Infof("%v: %v", v.id, v.props)
	}
	for _, e := range qs.edges {
		clog.Infof("%d: %v -%s-> %v", e.id, e.out.id, e.label, e.in.id)
	}
}
