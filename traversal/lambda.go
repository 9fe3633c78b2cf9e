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
	"fmt"

	"github.com/cayleygraph/quad"
	"github.com/dop251/goja"

	"github.com/cayleygraph/traverse/graph"
	"github.com/cayleygraph/traverse/graph/variables"
	"github.com/cayleygraph/traverse/internal/lru"
)

const scriptCacheSize = 256

var programs = lru.New(scriptCacheSize)

func compileScript(src string) (*goja.Program, error) {
	if p, ok := programs.Get(src); ok {
		return p.(*goja.Program), nil
	}
	p, err := goja.Compile("", src, false)
	if err != nil {
		return nil, fmt.Errorf("traversal: cannot compile script %q: %v", src, err)
	}
	programs.Put(src, p)
	return p, nil
}

// scriptValue converts a traversal value to a value convenient for scripts.
// Elements become objects with "id", "type", "properties" and, for edges, "label".
func scriptValue(v interface{}) interface{} {
	switch v := v.(type) {
	case graph.Element:
		props := make(map[string]interface{})
		for _, k := range v.PropertyKeys() {
			if p, ok := v.Property(k); ok {
				props[k] = scriptValue(p)
			}
		}
		m := map[string]interface{}{
			"id":         scriptValue(v.ID()),
			"type":       v.Type().String(),
			"properties": props,
		}
		if e, ok := v.(graph.Edge); ok {
			m["label"] = e.Label()
		}
		return m
	case quad.IRI:
		return string(v)
	case quad.BNode:
		return v.String()
	case quad.Value:
		return v.Native()
	case []interface{}:
		out := make([]interface{}, 0, len(v))
		for _, x := range v {
			out = append(out, scriptValue(x))
		}
		return out
	}
	return v
}

// scriptVars returns the "vars" function of script runtimes. It reads a graph
// variable and returns null if it is not set.
func scriptVars(ctx context.Context, vars variables.Variables) func(key string) (interface{}, error) {
	return func(key string) (interface{}, error) {
		if vars == nil {
			return nil, nil
		}
		v, ok, err := vars.Get(ctx, key)
		if err != nil || !ok {
			return nil, err
		}
		return scriptValue(v), nil
	}
}

// newScriptFunc compiles a script into a lambda function. The function owns a
// separate runtime and must not be called concurrently.
func newScriptFunc(ctx context.Context, src string, kind LambdaKind, vars variables.Variables) (Func, error) {
	p, err := compileScript(src)
	if err != nil {
		return nil, err
	}
	vm := goja.New()
	if err = vm.Set("vars", scriptVars(ctx, vars)); err != nil {
		return nil, err
	}
	return func(v interface{}) (interface{}, error) {
		vm.Set("it", scriptValue(v))
		res, err := vm.RunProgram(p)
		if e, ok := err.(*goja.Exception); ok && e.Value() != nil {
			if er, ok := e.Value().Export().(error); ok {
				err = er
			}
		}
		if err != nil {
			return nil, err
		}
		if kind == LambdaFilter {
			return res.ToBoolean(), nil
		}
		if goja.IsUndefined(res) || goja.IsNull(res) {
			return nil, nil
		}
		return res.Export(), nil
	}, nil
}

// lambdaFunc returns the function called by a lambda step. Scripts can read
// graph variables with vars(key).
func lambdaFunc(ctx context.Context, s *LambdaStep, vars variables.Variables) (Func, error) {
	switch {
	case s.Fn != nil:
		return s.Fn, nil
	case s.Script != "":
		return newScriptFunc(ctx, s.Script, s.Kind, vars)
	}
	return nil, fmt.Errorf("traversal: %v has neither a function nor a script", s)
}
