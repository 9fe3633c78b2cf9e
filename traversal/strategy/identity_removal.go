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

import "github.com/cayleygraph/traverse/traversal"

// IdentityRemoval drops unlabeled identity steps. Labeled identity steps are
// kept since later steps may select their output. A traversal consisting of a
// single identity step is left as is.
type IdentityRemoval struct{}

func (IdentityRemoval) Name() string { return "IdentityRemoval" }

func (IdentityRemoval) Apply(t *traversal.Traversal) {
	steps := t.Steps()
	if len(steps) < 2 {
		return
	}
	var drop []traversal.Step
	for _, s := range steps {
		if _, ok := s.(*traversal.IdentityStep); ok && !traversal.Labeled(s) {
			drop = append(drop, s)
		}
	}
	if len(drop) == len(steps) {
		drop = drop[1:]
	}
	for _, s := range drop {
		t.RemoveStep(s)
	}
}
