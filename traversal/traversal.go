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

// Package traversal defines graph traversals as mutable step sequences,
// the driver for optimization strategies, and compilation of steps to pipes.
//
// A traversal is built from steps, rewritten by strategies in a fixed order,
// locked and finally executed:
//
//	t := traversal.New(
//		traversal.NewStartStep(quad.IRI("marko")),
//		traversal.NewVertexStep(graph.Out, graph.EdgeType, "knows"),
//		traversal.NewEdgeVertexStep(graph.In),
//	)
//	t.ApplyStrategies(strategy.Default()...)
//	pl, err := traversal.Build(g, t)
package traversal

import (
	"errors"
	"fmt"
	"strings"
)

// ErrLocked is the panic value raised by mutations of a locked traversal.
var ErrLocked = errors.New("traversal: traversal is locked")

// Traversal is an ordered sequence of steps.
//
// It is not safe for concurrent mutation. Strategies borrow the traversal
// while it is optimized; once locked it is read-only.
type Traversal struct {
	steps  []Step
	locked bool
	mods   int
}

// New creates a traversal from steps.
func New(steps ...Step) *Traversal {
	t := &Traversal{}
	for _, s := range steps {
		t.AddStep(s)
	}
	return t
}

func (t *Traversal) mutate() {
	if t.locked {
		panic(ErrLocked)
	}
	t.mods++
}

// Steps returns the steps in execution order. The slice is a copy.
func (t *Traversal) Steps() []Step {
	return append([]Step{}, t.steps...)
}

// Len returns the number of steps.
func (t *Traversal) Len() int { return len(t.steps) }

// IndexOf returns the position of a step, or -1.
func (t *Traversal) IndexOf(s Step) int {
	for i, x := range t.steps {
		if x == s {
			return i
		}
	}
	return -1
}

// AddStep appends a step.
func (t *Traversal) AddStep(s Step) *Traversal {
	if s == nil {
		panic("traversal: nil step")
	}
	t.mutate()
	t.steps = append(t.steps, s)
	return t
}

// InsertStep inserts a step at position i, shifting later steps.
func (t *Traversal) InsertStep(i int, s Step) {
	if s == nil {
		panic("traversal: nil step")
	} else if i < 0 || i > len(t.steps) {
		panic(fmt.Errorf("traversal: insert position %d out of range [0,%d]", i, len(t.steps)))
	}
	t.mutate()
	t.steps = append(t.steps, nil)
	copy(t.steps[i+1:], t.steps[i:])
	t.steps[i] = s
}

// ReplaceStep puts a new step at the position of an old one.
// It returns false if the old step is not part of the traversal.
func (t *Traversal) ReplaceStep(old, s Step) bool {
	if s == nil {
		panic("traversal: nil step")
	}
	i := t.IndexOf(old)
	if i < 0 {
		return false
	}
	t.mutate()
	t.steps[i] = s
	return true
}

// RemoveStep removes a step. It returns false if the step is not part of the traversal.
func (t *Traversal) RemoveStep(s Step) bool {
	i := t.IndexOf(s)
	if i < 0 {
		return false
	}
	t.mutate()
	t.steps = append(t.steps[:i], t.steps[i+1:]...)
	return true
}

// Lock prevents any further mutation of the traversal and its steps.
func (t *Traversal) Lock() {
	t.locked = true
	for _, s := range t.steps {
		s.freeze()
	}
}

// Locked reports whether the traversal was locked.
func (t *Traversal) Locked() bool { return t.locked }

// Clone returns an unlocked deep copy of the traversal.
func (t *Traversal) Clone() *Traversal {
	c := &Traversal{steps: make([]Step, 0, len(t.steps))}
	for _, s := range t.steps {
		c.steps = append(c.steps, s.clone())
	}
	return c
}

// Contains reports whether the traversal has a step for which fn returns true.
func (t *Traversal) Contains(fn func(s Step) bool) bool {
	for _, s := range t.steps {
		if fn(s) {
			return true
		}
	}
	return false
}

func (t *Traversal) String() string {
	parts := make([]string, 0, len(t.steps))
	for _, s := range t.steps {
		parts = append(parts, s.String())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
