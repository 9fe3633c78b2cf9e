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
	"math/rand"
	"strings"
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/traverse/graph"
	"github.com/cayleygraph/traverse/graph/memstore"
	"github.com/cayleygraph/traverse/graph/variables"
	"github.com/cayleygraph/traverse/traversal/order"
)

func iris(ids ...string) []quad.Value {
	out := make([]quad.Value, 0, len(ids))
	for _, id := range ids {
		out = append(out, quad.IRI(id))
	}
	return out
}

func as(s Step, labels ...string) Step {
	s.AddLabels(labels...)
	return s
}

// names converts results to plain strings: vertices to their ids and values to their string form.
func names(t testing.TB, vals []interface{}) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		switch v := v.(type) {
		case graph.Vertex:
			out = append(out, string(v.ID().(quad.IRI)))
		case quad.String:
			out = append(out, string(v))
		case string:
			out = append(out, v)
		default:
			t.Fatalf("unexpected result: %T(%v)", v, v)
		}
	}
	return out
}

func execute(t testing.TB, g graph.Graph, steps []Step, opts ...Option) ([]interface{}, error) {
	pl, err := Build(g, New(steps...), opts...)
	require.NoError(t, err)
	defer pl.Close()
	return pl.ToList(context.TODO())
}

var buildCases = []struct {
	name   string
	steps  func() []Step
	expect []string
	err    bool
}{
	{
		name:   "all vertices",
		steps:  func() []Step { return []Step{NewStartStep()} },
		expect: []string{"marko", "vadas", "lop", "josh", "ripple", "peter"},
	},
	{
		name:   "vertices by id",
		steps:  func() []Step { return []Step{NewStartStep(iris("peter", "nobody", "lop")...)} },
		expect: []string{"peter", "lop"},
	},
	{
		name: "out knows",
		steps: func() []Step {
			return []Step{
				NewStartStep(quad.IRI("marko")),
				NewVertexStep(graph.Out, graph.VertexType, "knows"),
			}
		},
		expect: []string{"vadas", "josh"},
	},
	{
		name: "in",
		steps: func() []Step {
			return []Step{
				NewStartStep(quad.IRI("lop")),
				NewVertexStep(graph.In, graph.VertexType),
			}
		},
		expect: []string{"marko", "josh", "peter"},
	},
	{
		name: "out edges then in vertex",
		steps: func() []Step {
			return []Step{
				NewStartStep(quad.IRI("marko")),
				NewVertexStep(graph.Out, graph.EdgeType),
				NewEdgeVertexStep(graph.In),
			}
		},
		expect: []string{"vadas", "josh", "lop"},
	},
	{
		name: "edge endpoints",
		steps: func() []Step {
			return []Step{
				NewStartStep(quad.IRI("marko")),
				NewVertexStep(graph.Out, graph.EdgeType, "knows"),
				NewEdgeVertexStep(graph.Both),
			}
		},
		expect: []string{"marko", "vadas", "marko", "josh"},
	},
	{
		name: "adjacent vertices of edges",
		steps: func() []Step {
			return []Step{
				NewStartStep(quad.IRI("marko")),
				NewVertexStep(graph.Out, graph.EdgeType),
				NewVertexStep(graph.Out, graph.VertexType),
			}
		},
		err: true,
	},
	{
		name: "both edges then other vertex",
		steps: func() []Step {
			return []Step{
				NewStartStep(quad.IRI("josh")),
				NewVertexStep(graph.Both, graph.EdgeType),
				NewEdgeOtherVertexStep(),
			}
		},
		expect: []string{"ripple", "lop", "marko"},
	},
	{
		name: "both",
		steps: func() []Step {
			return []Step{
				NewStartStep(quad.IRI("josh")),
				NewVertexStep(graph.Both, graph.VertexType),
			}
		},
		expect: []string{"ripple", "lop", "marko"},
	},
	{
		name: "has property",
		steps: func() []Step {
			return []Step{NewStartStep(), NewHasStep("age", nil)}
		},
		expect: []string{"marko", "vadas", "josh", "peter"},
	},
	{
		name: "has value",
		steps: func() []Step {
			return []Step{NewStartStep(), NewHasStep("lang", quad.String("java"))}
		},
		expect: []string{"lop", "ripple"},
	},
	{
		name: "has numeric value",
		steps: func() []Step {
			return []Step{NewStartStep(), NewHasStep("age", quad.Float(29))}
		},
		expect: []string{"marko"},
	},
	{
		name: "has iri does not match string property",
		steps: func() []Step {
			return []Step{NewStartStep(), NewHasStep("name", quad.IRI("marko"))}
		},
		expect: []string{},
	},
	{
		name: "values",
		steps: func() []Step {
			return []Step{NewStartStep(iris("marko", "lop")...), NewValuesStep("name")}
		},
		expect: []string{"marko", "lop"},
	},
	{
		name: "missing values are dropped",
		steps: func() []Step {
			return []Step{NewStartStep(), NewValuesStep("lang")}
		},
		expect: []string{"java", "java"},
	},
	{
		name: "values of values",
		steps: func() []Step {
			return []Step{NewStartStep(quad.IRI("marko")), NewValuesStep("name"), NewValuesStep("name")}
		},
		err: true,
	},
	{
		name: "order by property",
		steps: func() []Step {
			return []Step{NewStartStep(), NewHasStep("age", nil), NewOrderStep("age", order.Incr)}
		},
		expect: []string{"vadas", "marko", "josh", "peter"},
	},
	{
		name: "order by property decr",
		steps: func() []Step {
			return []Step{NewStartStep(), NewHasStep("age", nil), NewOrderStep("age", order.Decr)}
		},
		expect: []string{"peter", "josh", "marko", "vadas"},
	},
	{
		name: "order by id",
		steps: func() []Step {
			return []Step{NewStartStep(), NewOrderStep("", order.Incr)}
		},
		expect: []string{"josh", "lop", "marko", "peter", "ripple", "vadas"},
	},
	{
		name: "order values",
		steps: func() []Step {
			return []Step{NewStartStep(), NewValuesStep("name"), NewOrderStep("", order.Decr)}
		},
		expect: []string{"vadas", "ripple", "peter", "marko", "lop", "josh"},
	},
	{
		name: "order by entry value",
		steps: func() []Step {
			return []Step{NewStartStep(), NewHasStep("age", nil), NewOrderStep("age", order.ValueDecr)}
		},
		expect: []string{"peter", "josh", "marko", "vadas"},
	},
	{
		name: "order by entry key",
		steps: func() []Step {
			return []Step{NewStartStep(), NewHasStep("age", nil), NewOrderStep("age", order.KeyIncr)}
		},
		expect: []string{"josh", "marko", "peter", "vadas"},
	},
	{
		name: "order by missing property",
		steps: func() []Step {
			return []Step{NewStartStep(), NewOrderStep("age", order.Incr)}
		},
		err: true,
	},
	{
		name: "range",
		steps: func() []Step {
			return []Step{NewStartStep(), NewRangeStep(1, 3)}
		},
		expect: []string{"vadas", "lop"},
	},
	{
		name: "range without upper bound",
		steps: func() []Step {
			return []Step{NewStartStep(), NewRangeStep(4, -1)}
		},
		expect: []string{"ripple", "peter"},
	},
	{
		name: "dedup",
		steps: func() []Step {
			return []Step{
				NewStartStep(),
				NewVertexStep(graph.Out, graph.VertexType, "created"),
				NewDedupStep(),
			}
		},
		expect: []string{"lop", "ripple"},
	},
	{
		name: "dedup values",
		steps: func() []Step {
			return []Step{NewStartStep(), NewValuesStep("lang"), NewDedupStep()}
		},
		expect: []string{"java"},
	},
	{
		name: "select",
		steps: func() []Step {
			return []Step{
				as(NewStartStep(quad.IRI("marko")), "a"),
				NewVertexStep(graph.Out, graph.VertexType, "knows"),
				as(NewIdentityStep(), "b"),
				NewVertexStep(graph.Out, graph.VertexType, "created"),
				NewSelectStep("b"),
			}
		},
		expect: []string{"josh", "josh"},
	},
	{
		name: "select unknown label",
		steps: func() []Step {
			return []Step{NewStartStep(quad.IRI("marko")), NewSelectStep("a")}
		},
		expect: []string{},
	},
	{
		name: "go filter",
		steps: func() []Step {
			return []Step{NewStartStep(), NewLambdaFilter(func(v interface{}) (bool, error) {
				id := v.(graph.Vertex).ID().(quad.IRI)
				return strings.HasPrefix(string(id), "p"), nil
			})}
		},
		expect: []string{"peter"},
	},
	{
		name: "go map",
		steps: func() []Step {
			return []Step{NewStartStep(quad.IRI("vadas")), NewLambdaMap(func(v interface{}) (interface{}, error) {
				return v.(graph.Vertex).Key(), nil
			})}
		},
		expect: []string{"v:<vadas>"},
	},
	{
		name: "go filter error",
		steps: func() []Step {
			return []Step{NewStartStep(), NewLambdaFilter(func(v interface{}) (bool, error) {
				return false, errors.New("boom")
			})}
		},
		err: true,
	},
	{
		name: "go filter returning non bool",
		steps: func() []Step {
			return []Step{NewStartStep(), &LambdaStep{Kind: LambdaFilter, Fn: func(v interface{}) (interface{}, error) {
				return 1, nil
			}}}
		},
		err: true,
	},
	{
		name: "script filter",
		steps: func() []Step {
			return []Step{NewStartStep(), NewHasStep("age", nil), NewScriptFilter("it.properties.age > 30")}
		},
		expect: []string{"josh", "peter"},
	},
	{
		name: "script map",
		steps: func() []Step {
			return []Step{NewStartStep(iris("marko", "lop")...), NewScriptMap("it.properties.name.toUpperCase() + '/' + it.type")}
		},
		expect: []string{"MARKO/vertex", "LOP/vertex"},
	},
	{
		name: "script map over edges",
		steps: func() []Step {
			return []Step{
				NewStartStep(quad.IRI("josh")),
				NewVertexStep(graph.Out, graph.EdgeType),
				NewScriptMap("it.label"),
			}
		},
		expect: []string{"created", "created"},
	},
	{
		name: "script error",
		steps: func() []Step {
			return []Step{NewStartStep(), NewScriptFilter("it.nothing.at.all")}
		},
		err: true,
	},
}

func TestBuild(t *testing.T) {
	g := memstore.MakeModern()
	for _, c := range buildCases {
		t.Run(c.name, func(t *testing.T) {
			out, err := execute(t, g, c.steps())
			if c.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.expect, names(t, out))
		})
	}
}

func TestBuildErrors(t *testing.T) {
	g := memstore.MakeModern()
	cases := []struct {
		name  string
		steps []Step
		err   error
	}{
		{name: "empty", err: ErrNoStart},
		{name: "no start", steps: []Step{NewIdentityStep()}, err: ErrNoStart},
		{name: "late start", steps: []Step{NewStartStep(), NewStartStep()}},
		{name: "bad script", steps: []Step{NewStartStep(), NewScriptMap("it.(")}},
		{name: "empty lambda", steps: []Step{NewStartStep(), &LambdaStep{}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			pl, err := Build(g, New(c.steps...))
			require.Error(t, err)
			assert.Nil(t, pl)
			if c.err != nil {
				assert.True(t, errors.Is(err, c.err), "unexpected error: %v", err)
			}
		})
	}
}

func TestBuildPath(t *testing.T) {
	g := memstore.MakeModern()
	tr := New(
		NewStartStep(quad.IRI("marko")),
		NewVertexStep(graph.Out, graph.EdgeType, "knows"),
		NewEdgeVertexStep(graph.In),
		NewPathStep(),
	)
	pl, err := Build(g, tr)
	require.NoError(t, err)
	require.True(t, pl.TrackPaths())
	out, err := pl.ToList(context.TODO())
	require.NoError(t, err)
	require.Len(t, out, 2)
	for i, far := range []string{"vadas", "josh"} {
		path, ok := out[i].([]interface{})
		require.True(t, ok, "expected a path, got %T", out[i])
		require.Len(t, path, 3)
		assert.Equal(t, []string{"marko", far}, names(t, []interface{}{path[0], path[2]}))
		e, ok := path[1].(graph.Edge)
		require.True(t, ok)
		assert.Equal(t, "knows", e.Label())
	}

	pl, err = Build(g, New(NewStartStep()))
	require.NoError(t, err)
	assert.False(t, pl.TrackPaths())
}

func TestBuildShuffle(t *testing.T) {
	g := memstore.MakeModern()
	steps := func() []Step { return []Step{NewStartStep(), NewOrderStep("", order.Shuffle)} }

	a, err := execute(t, g, steps(), WithRandSource(rand.NewSource(7)))
	require.NoError(t, err)
	b, err := execute(t, g, steps(), WithRandSource(rand.NewSource(7)))
	require.NoError(t, err)
	assert.Equal(t, names(t, a), names(t, b))
	assert.ElementsMatch(t, []string{"marko", "vadas", "lop", "josh", "ripple", "peter"}, names(t, a))
}

type failingVars struct {
	variables.Variables
}

func (failingVars) Get(ctx context.Context, key string) (quad.Value, bool, error) {
	return nil, false, errors.New("store is down")
}

func TestBuildScriptVars(t *testing.T) {
	g := memstore.MakeModern()
	ctx := context.TODO()
	require.NoError(t, g.Variables().Set(ctx, "minAge", 30))
	require.NoError(t, g.Variables().Set(ctx, "suffix", "!"))

	out, err := execute(t, g, []Step{
		NewStartStep(), NewHasStep("age", nil), NewScriptFilter("it.properties.age > vars('minAge')"),
	}, WithContext(ctx))
	require.NoError(t, err)
	assert.Equal(t, []string{"josh", "peter"}, names(t, out))

	out, err = execute(t, g, []Step{
		NewStartStep(quad.IRI("marko")), NewScriptMap("it.properties.name + vars('suffix')"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"marko!"}, names(t, out))

	out, err = execute(t, g, []Step{
		NewStartStep(quad.IRI("marko")), NewScriptFilter("vars('missing') === null"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"marko"}, names(t, out))

	g.SetVariables(failingVars{})
	_, err = execute(t, g, []Step{NewStartStep(), NewScriptFilter("vars('minAge') > 1")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store is down")
}

func TestBuildLocked(t *testing.T) {
	g := memstore.MakeModern()
	tr := New(NewStartStep(quad.IRI("marko")), NewValuesStep("age"))
	tr.Lock()
	pl, err := Build(g, tr)
	require.NoError(t, err)
	out, err := pl.ToList(context.TODO())
	require.NoError(t, err)
	assert.Equal(t, []interface{}{quad.Int(29)}, out)
}

func TestBuildCancel(t *testing.T) {
	g := memstore.MakeModern()
	pl, err := Build(g, New(NewStartStep(), NewIdentityStep()))
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = pl.ToList(ctx)
	assert.Equal(t, context.Canceled, err)
}
