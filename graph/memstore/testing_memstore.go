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

package memstore

import "github.com/cayleygraph/quad"

// marko --knows--> vadas
// marko --knows--> josh
// marko --created--> lop
// josh --created--> ripple
// josh --created--> lop
// peter --created--> lop
var modernEdges = []quad.Quad{
	quad.MakeIRI("marko", "knows", "vadas", ""),
	quad.MakeIRI("marko", "knows", "josh", ""),
	quad.MakeIRI("marko", "created", "lop", ""),
	quad.MakeIRI("josh", "created", "ripple", ""),
	quad.MakeIRI("josh", "created", "lop", ""),
	quad.MakeIRI("peter", "created", "lop", ""),
}

var modernProps = []struct {
	id  string
	key string
	val quad.Value
}{
	{"marko", "name", quad.String("marko")},
	{"marko", "age", quad.Int(29)},
	{"vadas", "name", quad.String("vadas")},
	{"vadas", "age", quad.Int(27)},
	{"lop", "name", quad.String("lop")},
	{"lop", "lang", quad.String("java")},
	{"josh", "name", quad.String("josh")},
	{"josh", "age", quad.Int(32)},
	{"ripple", "name", quad.String("ripple")},
	{"ripple", "lang", quad.String("java")},
	{"peter", "name", quad.String("peter")},
	{"peter", "age", quad.Int(35)},
}

// MakeModern builds the six vertex "modern" graph used across traversal tests.
// Vertex ids are IRIs equal to the "name" property of each vertex.
func MakeModern() *QuadStore {
	qs := New()
	for _, p := range modernProps {
		if err := qs.AddQuad(quad.Quad{
			Subject: quad.IRI(p.id), Predicate: quad.IRI(p.key), Object: p.val,
		}); err != nil {
			panic(err)
		}
	}
	for _, q := range modernEdges {
		if err := qs.AddQuad(q); err != nil {
			panic(err)
		}
	}
	return qs
}
