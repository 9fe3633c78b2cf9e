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

// Package graph defines the property graph model consumed by traversals.
//
// Storage backends live outside of this package; a traversal only needs a
// backend to list vertices and the edges incident to a vertex.
package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/traverse/graph/variables"
)

// Direction specifies which endpoint(s) of an edge a step concerns.
type Direction int

const (
	// Unknown is the zero value. Steps with an unknown direction are never rewritten.
	Unknown Direction = iota
	Out
	In
	Both
)

// Opposite returns the reverse direction. Both and Unknown are their own opposites.
func (d Direction) Opposite() Direction {
	switch d {
	case Out:
		return In
	case In:
		return Out
	default:
		return d
	}
}

func (d Direction) String() string {
	switch d {
	case Out:
		return "OUT"
	case In:
		return "IN"
	case Both:
		return "BOTH"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// ParseDirection is the inverse of Direction.String. It is case-insensitive.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(s) {
	case "OUT":
		return Out, nil
	case "IN":
		return In, nil
	case "BOTH":
		return Both, nil
	}
	return Unknown, fmt.Errorf("unknown direction: %q", s)
}

// ElementType is a declared type of the values emitted by a step.
type ElementType int

const (
	AnyType ElementType = iota
	VertexType
	EdgeType
	ValueType
	PathType
)

func (t ElementType) String() string {
	switch t {
	case AnyType:
		return "any"
	case VertexType:
		return "vertex"
	case EdgeType:
		return "edge"
	case ValueType:
		return "value"
	case PathType:
		return "path"
	default:
		return fmt.Sprintf("ElementType(%d)", int(t))
	}
}

// ParseElementType is the inverse of ElementType.String.
func ParseElementType(s string) (ElementType, error) {
	switch strings.ToLower(s) {
	case "", "any":
		return AnyType, nil
	case "vertex":
		return VertexType, nil
	case "edge":
		return EdgeType, nil
	case "value":
		return ValueType, nil
	case "path":
		return PathType, nil
	}
	return AnyType, fmt.Errorf("unknown element type: %q", s)
}

// Element is a vertex or an edge of a property graph.
type Element interface {
	// ID returns an identifier of the element that is unique within its type.
	ID() quad.Value
	// Key returns a dynamic type that is comparable according to the Go language specification.
	// It must be unique across all elements of the graph.
	Key() interface{}
	// Type returns either VertexType or EdgeType.
	Type() ElementType
	// Property returns a value of the property with a given key.
	Property(key string) (quad.Value, bool)
	// PropertyKeys lists keys of all properties of the element.
	PropertyKeys() []string
}

// Vertex is a graph node.
type Vertex interface {
	Element
}

// Edge is a directed labeled link between two vertices.
type Edge interface {
	Element
	// Label returns the edge label.
	Label() string
	// Vertex returns the out (tail) vertex for Out and the in (head) vertex for In.
	Vertex(d Direction) Vertex
}

// OtherVertex returns the endpoint of e that is not v.
// For self-loops it returns v itself.
func OtherVertex(e Edge, v Vertex) Vertex {
	out := e.Vertex(Out)
	if out.Key() == v.Key() {
		return e.Vertex(In)
	}
	return out
}

// Iterator lists graph elements sequentially.
//
// To get the full results of iteration, do the following:
//
//	for it.Next(ctx) {
//		el := it.Result()
//		... do things with el.
//	}
//	if err := it.Err(); err != nil { ... }
type Iterator interface {
	// Next advances the iterator to the next element. It returns false if no further
	// advancement is possible, or if an error was encountered during iteration.
	// Err should be consulted to distinguish between the two cases.
	Next(ctx context.Context) bool
	// Result returns the current element.
	Result() Element
	// Err returns any error that was encountered by the Iterator.
	Err() error
	// Close the iterator and do internal cleanup.
	Close() error
}

// Graph is a narrow view of a storage backend used by traversal sources.
type Graph interface {
	// Vertices iterates over vertices with given ids, or over all vertices if no ids are specified.
	Vertices(ids ...quad.Value) Iterator
	// Edges iterates over edges incident to v in a given direction. If labels are specified,
	// only edges with one of these labels are returned.
	Edges(v Vertex, d Direction, labels ...string) Iterator
	// Variables returns a key/value store bound to the graph.
	Variables() variables.Variables
}
