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
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cayleygraph/traverse/clog"
)

var debugOptimizer = os.Getenv("TRAVERSE_DEBUG_OPTIMIZER") == "true"

var (
	mStrategyApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "traverse_strategy_applied_total",
		Help: "Number of times a strategy was applied to a traversal.",
	}, []string{"strategy"})
	mStrategyRewrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "traverse_strategy_rewrites_total",
		Help: "Number of times a strategy changed a traversal.",
	}, []string{"strategy"})
)

// Strategy is a rewrite rule applied to a traversal before execution.
//
// Apply mutates the traversal in place. It must either apply all of its
// rewrites or leave the traversal untouched, and it must not fail: a strategy
// that finds nothing to rewrite is a no-op.
type Strategy interface {
	Name() string
	Apply(t *Traversal)
}

// Optimize applies strategies in the given order and reports whether the traversal changed.
func Optimize(t *Traversal, strategies ...Strategy) bool {
	if t.locked {
		panic(ErrLocked)
	}
	changed := false
	for _, s := range strategies {
		before := t.mods
		var prev string
		if debugOptimizer {
			prev = t.String()
		}
		s.Apply(t)
		name := s.Name()
		mStrategyApplied.WithLabelValues(name).Inc()
		if t.mods == before {
			continue
		}
		changed = true
		mStrategyRewrites.WithLabelValues(name).Inc()
		if debugOptimizer {
			clog.Infof("%s: %s -> %s", name, prev, t)
		} else if clog.V(2) {
			clog.Infof("strategy %s rewrote traversal: %s", name, t)
		}
	}
	return changed
}

// ApplyStrategies optimizes the traversal and locks it.
func (t *Traversal) ApplyStrategies(strategies ...Strategy) bool {
	changed := Optimize(t, strategies...)
	t.Lock()
	return changed
}
