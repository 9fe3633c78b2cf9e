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

package strategy

import (
	"github.com/cayleygraph/traverse/graph"
	"github.com/cayleygraph/traverse/traversal"
)

// IncidentToAdjacent fuses a step emitting incident edges with a following step
// extracting the far endpoint of every edge into a single step emitting adjacent vertices:
//
//	outE().inV()     -> out()
//	inE().outV()     -> in()
//	bothE().otherV() -> both()
//
// Both steps of a pair must be unlabeled. A traversal containing a path or a
// lambda step is never rewritten, since those may observe the intermediate edges.
type IncidentToAdjacent struct{}

func (IncidentToAdjacent) Name() string { return "IncidentToAdjacent" }

type fusablePair struct {
	edges *traversal.VertexStep
	next  traversal.Step
}

// fusable checks if prev emits edges and curr extracts their far endpoints.
func fusable(prev, curr traversal.Step) (*traversal.VertexStep, bool) {
	vs, ok := prev.(*traversal.VertexStep)
	if !ok || vs.Returns != graph.EdgeType || traversal.Labeled(vs) || traversal.Labeled(curr) {
		return nil, false
	}
	switch curr := curr.(type) {
	case *traversal.EdgeOtherVertexStep:
		return vs, vs.Direction == graph.Both
	case *traversal.EdgeVertexStep:
		switch vs.Direction {
		case graph.Out, graph.In:
			return vs, curr.Direction == vs.Direction.Opposite()
		}
	}
	return nil, false
}

// opaque checks if a step may depend on values that fusion would remove.
func opaque(s traversal.Step) bool {
	switch s.(type) {
	case *traversal.PathStep, *traversal.LambdaStep:
		return true
	}
	return false
}

func (IncidentToAdjacent) Apply(t *traversal.Traversal) {
	var (
		pairs []fusablePair
		prev  traversal.Step
	)
	for _, curr := range t.Steps() {
		if opaque(curr) {
			return
		}
		if prev != nil {
			if vs, ok := fusable(prev, curr); ok {
				pairs = append(pairs, fusablePair{edges: vs, next: curr})
			}
		}
		prev = curr
	}
	for _, p := range pairs {
		adj := traversal.NewVertexStep(p.edges.Direction, graph.VertexType,
			append([]string(nil), p.edges.EdgeLabels...)...)
		t.ReplaceStep(p.edges, adj)
		t.RemoveStep(p.next)
	}
}
