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

// Package strategy implements traversal optimization strategies.
//
// Strategies are stateless values. The default strategies form a fixed,
// ordered table that is applied to every traversal unless configured otherwise.
package strategy

import (
	"fmt"

	"github.com/cayleygraph/traverse/traversal"
)

var _ = []traversal.Strategy{IncidentToAdjacent{}, IdentityRemoval{}}

// defaults is the application order of default strategies.
var defaults = [...]traversal.Strategy{
	IdentityRemoval{},
	IncidentToAdjacent{},
}

// Default returns the default strategies in application order.
func Default() []traversal.Strategy {
	return append([]traversal.Strategy{}, defaults[:]...)
}

// Names returns names of the default strategies in application order.
func Names() []string {
	out := make([]string, 0, len(defaults))
	for _, s := range defaults {
		out = append(out, s.Name())
	}
	return out
}

// ByName returns a strategy with a given name.
func ByName(name string) (traversal.Strategy, bool) {
	for _, s := range defaults {
		if s.Name() == name {
			return s, true
		}
	}
	return nil, false
}

// Select returns the named strategies, or all default strategies if names is empty,
// skipping the disabled ones. Selected strategies keep the default application order.
func Select(names, disabled []string) ([]traversal.Strategy, error) {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		if _, ok := ByName(n); !ok {
			return nil, fmt.Errorf("strategy: unknown strategy %q", n)
		}
		want[n] = true
	}
	skip := make(map[string]bool, len(disabled))
	for _, n := range disabled {
		if _, ok := ByName(n); !ok {
			return nil, fmt.Errorf("strategy: unknown strategy %q", n)
		}
		skip[n] = true
	}
	var out []traversal.Strategy
	for _, s := range defaults {
		name := s.Name()
		if (len(want) == 0 || want[name]) && !skip[name] {
			out = append(out, s)
		}
	}
	return out, nil
}
