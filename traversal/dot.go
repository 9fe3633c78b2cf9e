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

	"github.com/emicklei/dot"
)

// Dot renders the step chain in Graphviz dot notation. Edges are labeled
// with the declared type of values flowing between steps.
func Dot(t *Traversal) string {
	g := dot.NewGraph(dot.Directed)
	g.Attr("rankdir", "LR")
	var prev *dot.Node
	for i, s := range t.steps {
		n := g.Node(fmt.Sprintf("step%d", i)).Attr("label", s.String())
		if _, ok := s.(*LambdaStep); ok {
			n.Attr("shape", "box")
		}
		if prev != nil {
			g.Edge(*prev, n).Attr("label", t.steps[i-1].ReturnType().String())
		}
		prev = &n
	}
	return g.String()
}
