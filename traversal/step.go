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
	"fmt"
	"strings"

	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/traverse/graph"
	"github.com/cayleygraph/traverse/traversal/order"
)

// Step is a single operation of a traversal.
//
// The set of steps is closed: all implementations are defined in this package.
// Steps are compared by identity, so the same step value must not be added
// to a traversal twice.
type Step interface {
	// Labels returns names bound to the output of the step.
	Labels() []string
	// AddLabels binds additional names to the output of the step.
	// It panics with ErrLocked once the owning traversal is locked.
	AddLabels(labels ...string)
	// ReturnType is the declared type of emitted elements.
	ReturnType() graph.ElementType
	String() string

	clone() Step
	freeze()
	isStep()
}

type stepBase struct {
	labels []string
	frozen bool
}

func (s *stepBase) freeze() { s.frozen = true }

func (s *stepBase) isStep() {}

func (s *stepBase) Labels() []string {
	if len(s.labels) == 0 {
		return nil
	}
	return append([]string{}, s.labels...)
}

func (s *stepBase) AddLabels(labels ...string) {
	if s.frozen {
		panic(ErrLocked)
	}
	for _, l := range labels {
		if l == "" || s.hasLabel(l) {
			continue
		}
		s.labels = append(s.labels, l)
	}
}

func (s *stepBase) hasLabel(l string) bool {
	for _, x := range s.labels {
		if x == l {
			return true
		}
	}
	return false
}

func (s *stepBase) copyBase() stepBase {
	return stepBase{labels: s.Labels()}
}

func (s *stepBase) format(name string, args ...interface{}) string {
	var b strings.Builder
	b.WriteString(name)
	if len(args) != 0 {
		b.WriteByte('(')
		for i, a := range args {
			if i > 0 {
				b.WriteByte(',')
			}
			fmt.Fprint(&b, a)
		}
		b.WriteByte(')')
	}
	if len(s.labels) != 0 {
		b.WriteString("@[" + strings.Join(s.labels, ",") + "]")
	}
	return b.String()
}

// Labeled reports whether a step carries any labels.
func Labeled(s Step) bool {
	return len(s.Labels()) != 0
}

func formatList(vals []string) string {
	return "[" + strings.Join(vals, ",") + "]"
}

var (
	_ Step = (*VertexStep)(nil)
	_ Step = (*EdgeVertexStep)(nil)
	_ Step = (*EdgeOtherVertexStep)(nil)
	_ Step = (*PathStep)(nil)
	_ Step = (*LambdaStep)(nil)
	_ Step = (*StartStep)(nil)
	_ Step = (*HasStep)(nil)
	_ Step = (*ValuesStep)(nil)
	_ Step = (*OrderStep)(nil)
	_ Step = (*RangeStep)(nil)
	_ Step = (*DedupStep)(nil)
	_ Step = (*IdentityStep)(nil)
	_ Step = (*SelectStep)(nil)
)

// VertexStep moves from vertices to their incident edges (Returns is EdgeType)
// or to their adjacent vertices (Returns is VertexType).
type VertexStep struct {
	stepBase
	Direction graph.Direction
	// EdgeLabels restricts edges to the given labels. Empty means any label.
	EdgeLabels []string
	Returns    graph.ElementType
}

// NewVertexStep creates a step that follows edges in a given direction.
func NewVertexStep(dir graph.Direction, returns graph.ElementType, edgeLabels ...string) *VertexStep {
	return &VertexStep{Direction: dir, Returns: returns, EdgeLabels: edgeLabels}
}

func (s *VertexStep) ReturnType() graph.ElementType { return s.Returns }

func (s *VertexStep) String() string {
	return s.format("VertexStep", s.Direction, formatList(s.EdgeLabels), s.Returns)
}

func (s *VertexStep) clone() Step {
	c := *s
	c.stepBase = s.copyBase()
	c.EdgeLabels = append([]string(nil), s.EdgeLabels...)
	return &c
}

// EdgeVertexStep emits an endpoint of an edge: the out (tail) vertex for Out,
// the in (head) vertex for In, and both of them in this order for Both.
type EdgeVertexStep struct {
	stepBase
	Direction graph.Direction
}

func NewEdgeVertexStep(dir graph.Direction) *EdgeVertexStep {
	return &EdgeVertexStep{Direction: dir}
}

func (s *EdgeVertexStep) ReturnType() graph.ElementType { return graph.VertexType }

func (s *EdgeVertexStep) String() string { return s.format("EdgeVertexStep", s.Direction) }

func (s *EdgeVertexStep) clone() Step {
	c := *s
	c.stepBase = s.copyBase()
	return &c
}

// EdgeOtherVertexStep emits the endpoint of an edge other than the vertex the edge was reached from.
type EdgeOtherVertexStep struct {
	stepBase
}

func NewEdgeOtherVertexStep() *EdgeOtherVertexStep { return &EdgeOtherVertexStep{} }

func (s *EdgeOtherVertexStep) ReturnType() graph.ElementType { return graph.VertexType }

func (s *EdgeOtherVertexStep) String() string { return s.format("EdgeOtherVertexStep") }

func (s *EdgeOtherVertexStep) clone() Step {
	return &EdgeOtherVertexStep{stepBase: s.copyBase()}
}

// PathStep emits the full history of every traverser, including intermediate edges.
// Its presence enables path tracking for the whole traversal.
type PathStep struct {
	stepBase
}

func NewPathStep() *PathStep { return &PathStep{} }

func (s *PathStep) ReturnType() graph.ElementType { return graph.PathType }

func (s *PathStep) String() string { return s.format("PathStep") }

func (s *PathStep) clone() Step {
	return &PathStep{stepBase: s.copyBase()}
}

// LambdaKind selects how a lambda step uses its function.
type LambdaKind int

const (
	// LambdaFilter keeps values for which the function returns true.
	LambdaFilter LambdaKind = iota
	// LambdaMap replaces values with the function result.
	LambdaMap
)

func (k LambdaKind) String() string {
	switch k {
	case LambdaFilter:
		return "filter"
	case LambdaMap:
		return "map"
	}
	return fmt.Sprintf("LambdaKind(%d)", int(k))
}

// Func is a user function called by a lambda step. Filters must return a bool.
type Func func(v interface{}) (interface{}, error)

// LambdaStep calls an opaque user function. It is either a Go function or a
// JavaScript expression evaluated with the current value bound to "it".
type LambdaStep struct {
	stepBase
	Kind   LambdaKind
	Fn     Func
	Script string
}

// NewLambdaFilter creates a filter step calling a Go function.
func NewLambdaFilter(fn func(v interface{}) (bool, error)) *LambdaStep {
	return &LambdaStep{Kind: LambdaFilter, Fn: func(v interface{}) (interface{}, error) {
		return fn(v)
	}}
}

// NewLambdaMap creates a map step calling a Go function.
func NewLambdaMap(fn Func) *LambdaStep {
	return &LambdaStep{Kind: LambdaMap, Fn: fn}
}

// NewScriptFilter creates a filter step evaluating a JavaScript expression.
func NewScriptFilter(src string) *LambdaStep {
	return &LambdaStep{Kind: LambdaFilter, Script: src}
}

// NewScriptMap creates a map step evaluating a JavaScript expression.
func NewScriptMap(src string) *LambdaStep {
	return &LambdaStep{Kind: LambdaMap, Script: src}
}

func (s *LambdaStep) ReturnType() graph.ElementType { return graph.AnyType }

func (s *LambdaStep) String() string {
	name := "LambdaFilterStep"
	if s.Kind == LambdaMap {
		name = "LambdaMapStep"
	}
	if s.Script != "" {
		return s.format(name, fmt.Sprintf("%q", s.Script))
	}
	return s.format(name, "lambda")
}

func (s *LambdaStep) clone() Step {
	c := *s
	c.stepBase = s.copyBase()
	return &c
}

// StartStep emits vertices with given ids, or all vertices if no ids are set.
type StartStep struct {
	stepBase
	IDs []quad.Value
}

func NewStartStep(ids ...quad.Value) *StartStep { return &StartStep{IDs: ids} }

func (s *StartStep) ReturnType() graph.ElementType { return graph.VertexType }

func (s *StartStep) String() string {
	ids := make([]string, 0, len(s.IDs))
	for _, id := range s.IDs {
		ids = append(ids, quad.StringOf(id))
	}
	return s.format("StartStep", formatList(ids))
}

func (s *StartStep) clone() Step {
	return &StartStep{stepBase: s.copyBase(), IDs: append([]quad.Value(nil), s.IDs...)}
}

// HasStep keeps elements that have a property. If Value is set, the property must be equal to it.
type HasStep struct {
	stepBase
	Key   string
	Value quad.Value
}

func NewHasStep(key string, value quad.Value) *HasStep {
	return &HasStep{Key: key, Value: value}
}

func (s *HasStep) ReturnType() graph.ElementType { return graph.AnyType }

func (s *HasStep) String() string {
	if s.Value == nil {
		return s.format("HasStep", s.Key)
	}
	return s.format("HasStep", s.Key, quad.StringOf(s.Value))
}

func (s *HasStep) clone() Step {
	c := *s
	c.stepBase = s.copyBase()
	return &c
}

// ValuesStep emits a property value of every element. Elements without the property are dropped.
type ValuesStep struct {
	stepBase
	Key string
}

func NewValuesStep(key string) *ValuesStep { return &ValuesStep{Key: key} }

func (s *ValuesStep) ReturnType() graph.ElementType { return graph.ValueType }

func (s *ValuesStep) String() string { return s.format("ValuesStep", s.Key) }

func (s *ValuesStep) clone() Step {
	c := *s
	c.stepBase = s.copyBase()
	return &c
}

// OrderStep sorts all values. An empty Key sorts by the element ID, or by the
// value itself for non-elements; otherwise elements are sorted by a property.
// The key/value orders sort on (key, value) entries of the sort key and the value.
type OrderStep struct {
	stepBase
	Key   string
	Order order.Order
}

func NewOrderStep(key string, o order.Order) *OrderStep {
	return &OrderStep{Key: key, Order: o}
}

func (s *OrderStep) ReturnType() graph.ElementType { return graph.AnyType }

func (s *OrderStep) String() string {
	if s.Key == "" {
		return s.format("OrderStep", s.Order)
	}
	return s.format("OrderStep", s.Key, s.Order)
}

func (s *OrderStep) clone() Step {
	c := *s
	c.stepBase = s.copyBase()
	return &c
}

// RangeStep passes values at positions [Low, High). A negative High means no upper bound.
type RangeStep struct {
	stepBase
	Low, High int64
}

func NewRangeStep(low, high int64) *RangeStep { return &RangeStep{Low: low, High: high} }

func (s *RangeStep) ReturnType() graph.ElementType { return graph.AnyType }

func (s *RangeStep) String() string { return s.format("RangeStep", s.Low, s.High) }

func (s *RangeStep) clone() Step {
	c := *s
	c.stepBase = s.copyBase()
	return &c
}

// DedupStep drops values that were already emitted.
type DedupStep struct {
	stepBase
}

func NewDedupStep() *DedupStep { return &DedupStep{} }

func (s *DedupStep) ReturnType() graph.ElementType { return graph.AnyType }

func (s *DedupStep) String() string { return s.format("DedupStep") }

func (s *DedupStep) clone() Step {
	return &DedupStep{stepBase: s.copyBase()}
}

// IdentityStep passes values unchanged. It is mostly used to carry labels.
type IdentityStep struct {
	stepBase
}

func NewIdentityStep() *IdentityStep { return &IdentityStep{} }

func (s *IdentityStep) ReturnType() graph.ElementType { return graph.AnyType }

func (s *IdentityStep) String() string { return s.format("IdentityStep") }

func (s *IdentityStep) clone() Step {
	return &IdentityStep{stepBase: s.copyBase()}
}

// SelectStep emits the value bound to a label by an earlier step.
// Values without the label are dropped.
type SelectStep struct {
	stepBase
	Label string
}

func NewSelectStep(label string) *SelectStep { return &SelectStep{Label: label} }

func (s *SelectStep) ReturnType() graph.ElementType { return graph.AnyType }

func (s *SelectStep) String() string { return s.format("SelectStep", s.Label) }

func (s *SelectStep) clone() Step {
	c := *s
	c.stepBase = s.copyBase()
	return &c
}
