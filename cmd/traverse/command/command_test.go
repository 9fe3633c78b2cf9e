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

package command

import (
	"bytes"
	"compress/gzip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testGraph = `<marko> <name> "marko" .
<marko> <age> "29"^^<http://schema.org/Integer> .
<vadas> <name> "vadas" .
<josh> <name> "josh" .
<lop> <name> "lop" .
<marko> <knows> <vadas> .
<marko> <knows> <josh> .
<marko> <created> <lop> .
<josh> <created> <lop> .
`

const outKnows = `[
	{"step": "start", "ids": [{"@id": "marko"}]},
	{"step": "vertex", "direction": "out", "edgeLabels": ["knows"], "returns": "edge"},
	{"step": "edgeVertex", "direction": "in"},
	{"step": "values", "key": "name"}
]`

const byVariable = `[
	{"step": "start"},
	{"step": "lambda", "kind": "filter", "script": "it.properties.name === vars('who')"},
	{"step": "values", "key": "name"}
]`

func writeFile(t testing.TB, dir, name, data string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
	return path
}

func execute(t testing.TB, stdin string, args ...string) (string, error) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	cmd := NewRootCmd()
	out := bytes.NewBuffer(nil)
	cmd.SetOut(out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestExplain(t *testing.T) {
	out, err := execute(t, outKnows, "explain")
	require.NoError(t, err)
	assert.Contains(t, out, `original:  [StartStep([<marko>]), VertexStep(OUT,[knows],edge), EdgeVertexStep(IN), ValuesStep(name)]`)
	assert.Contains(t, out, `optimized: [StartStep([<marko>]), VertexStep(OUT,[knows],vertex), ValuesStep(name)]`)
	assert.NotContains(t, out, "no strategy")

	out, err = execute(t, outKnows, "explain", "--disable", "IncidentToAdjacent")
	require.NoError(t, err)
	assert.Contains(t, out, "no strategy changed the traversal")

	out, err = execute(t, outKnows, "explain", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"returns":"vertex"`)
	assert.NotContains(t, out, "edgeVertex")

	out, err = execute(t, outKnows, "explain", "--dot")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "digraph"), out)

	_, err = execute(t, `[{"step": "nope"}]`, "explain")
	require.Error(t, err)
	_, err = execute(t, outKnows, "explain", "--strategies", "Missing")
	require.Error(t, err)
}

func TestExplainFromFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "t.json", outKnows)
	out, err := execute(t, "", "explain", path)
	require.NoError(t, err)
	assert.Contains(t, out, "VertexStep(OUT,[knows],vertex)")
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "traverse.yml", "optimize:\n  disabled: [IncidentToAdjacent]\n")
	out, err := execute(t, "", "strategies", "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, "IdentityRemoval\tenabled\nIncidentToAdjacent\tdisabled\n", out)

	_, err = execute(t, "", "strategies", "--config", filepath.Join(dir, "missing.yml"))
	require.Error(t, err)
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	g := writeFile(t, dir, "modern.nq", testGraph)

	for _, args := range [][]string{
		{"run", "--graph", g},
		{"run", "--graph", g, "--no-optimize"},
	} {
		out, err := execute(t, outKnows, args...)
		require.NoError(t, err)
		assert.Equal(t, "\"vadas\"\n\"josh\"\n", out)
	}

	out, err := execute(t, `[{"step": "start", "ids": [{"@id": "marko"}]}, {"step": "vertex", "direction": "out", "returns": "edge"}]`,
		"run", "-g", g)
	require.NoError(t, err)
	assert.Equal(t, "e[<marko> -knows-> <vadas>]\ne[<marko> -knows-> <josh>]\ne[<marko> -created-> <lop>]\n", out)

	out, err = execute(t, `[{"step": "start", "ids": [{"@id": "josh"}]}, {"step": "vertex", "direction": "in", "returns": "edge"}, {"step": "edgeVertex", "direction": "out"}, {"step": "path"}]`,
		"run", "-g", g)
	require.NoError(t, err)
	assert.Equal(t, "[v[<josh>], e[<marko> -knows-> <josh>], v[<marko>]]\n", out)

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write([]byte(testGraph))
	require.NoError(t, zw.Close())
	gz := writeFile(t, dir, "modern.nq.gz", buf.String())
	out, err = execute(t, outKnows, "run", "-g", gz)
	require.NoError(t, err)
	assert.Equal(t, "\"vadas\"\n\"josh\"\n", out)

	_, err = execute(t, outKnows, "run")
	require.Error(t, err)
	_, err = execute(t, outKnows, "run", "-g", filepath.Join(dir, "missing.nq"))
	require.Error(t, err)
	bad := writeFile(t, dir, "bad.nq", "<a> <b>\n")
	_, err = execute(t, outKnows, "run", "-g", bad)
	require.Error(t, err)
}

func TestVars(t *testing.T) {
	store := filepath.Join(t.TempDir(), "vars.db")

	_, err := execute(t, "", "vars", "list")
	require.Equal(t, ErrNoStore, err)

	for _, kv := range [][2]string{{"name", "modern"}, {"size", "6"}, {"ratio", "0.5"}, {"done", "true"}} {
		_, err = execute(t, "", "vars", "set", kv[0], kv[1], "--store", store)
		require.NoError(t, err)
	}
	out, err := execute(t, "", "vars", "list", "--store", store)
	require.NoError(t, err)
	assert.Equal(t, "done\nname\nratio\nsize\n", out)

	out, err = execute(t, "", "vars", "get", "size", "--store", store)
	require.NoError(t, err)
	assert.Equal(t, quad.StringOf(quad.Int(6))+"\n", out)

	_, err = execute(t, "", "vars", "rm", "size", "--store", store)
	require.NoError(t, err)
	_, err = execute(t, "", "vars", "get", "size", "--store", store)
	require.Error(t, err)

	// scripts run against a graph read the bound store
	g := writeFile(t, t.TempDir(), "modern.nq", testGraph)
	os.Setenv("TRAVERSE_STORE_PATH", store)
	defer os.Unsetenv("TRAVERSE_STORE_PATH")
	_, err = execute(t, "", "vars", "set", "who", "josh")
	require.NoError(t, err)
	out, err = execute(t, byVariable, "run", "-g", g)
	require.NoError(t, err)
	assert.Equal(t, `"josh"`+"\n", out)

	os.Unsetenv("TRAVERSE_STORE_PATH")
	out, err = execute(t, byVariable, "run", "-g", g)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestParseValue(t *testing.T) {
	cases := []struct {
		in  string
		out quad.Value
	}{
		{"42", quad.Int(42)},
		{"-1.5", quad.Float(-1.5)},
		{"false", quad.Bool(false)},
		{"marko", quad.String("marko")},
		{"", quad.String("")},
	}
	for _, c := range cases {
		assert.Equal(t, c.out, parseValue(c.in), "%q", c.in)
	}
	_, ok := parseValue("2019-03-04T05:06:07Z").(quad.Time)
	assert.True(t, ok)
}
