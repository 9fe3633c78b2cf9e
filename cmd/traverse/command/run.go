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
	"context"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/cayleygraph/quad"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cayleygraph/traverse/clog"
	"github.com/cayleygraph/traverse/graph"
	"github.com/cayleygraph/traverse/graph/memstore"
	"github.com/cayleygraph/traverse/graph/variables"
	"github.com/cayleygraph/traverse/internal/decompressor"
	"github.com/cayleygraph/traverse/pipe"
	"github.com/cayleygraph/traverse/traversal"
)

const (
	flagGraph      = "graph"
	flagNoOptimize = "no-optimize"
	flagSeed       = "seed"
	flagTimeout    = "timeout"
)

func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [traversal.json]",
		Short: "Run a traversal over a graph loaded from an N-Quads file (\".gz\" and \".bz2\" supported).",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gpath, _ := cmd.Flags().GetString(flagGraph)
			if gpath == "" {
				return errors.New("a graph file must be specified")
			}
			t, err := readTraversal(cmd, args)
			if err != nil {
				return err
			}
			qs, closeVars, err := openGraph(gpath)
			if err != nil {
				return err
			}
			defer closeVars()

			if skip, _ := cmd.Flags().GetBool(flagNoOptimize); !skip {
				strategies, err := configuredStrategies()
				if err != nil {
					return err
				}
				t.ApplyStrategies(strategies...)
			} else {
				t.Lock()
			}
			ctx := cmd.Context()
			if timeout, _ := cmd.Flags().GetDuration(flagTimeout); timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}
			opts := []traversal.Option{traversal.WithContext(ctx)}
			if seed, _ := cmd.Flags().GetInt64(flagSeed); seed != 0 {
				opts = append(opts, traversal.WithRandSource(rand.NewSource(seed)))
			}
			pl, err := traversal.Build(qs, t, opts...)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			n := 0
			err = pl.Drain(ctx, func(h *pipe.Holder) error {
				n++
				_, err := fmt.Fprintln(w, formatResult(h.Value))
				return err
			})
			if clog.V(1) {
				clog.Infof("traversal %v returned %d results", t, n)
			}
			return err
		},
	}
	cmd.Flags().StringP(flagGraph, "g", "", "N-Quads file with the graph")
	cmd.Flags().Bool(flagNoOptimize, false, "run the traversal as written")
	cmd.Flags().Int64(flagSeed, 0, "seed for shuffle ordering")
	cmd.Flags().Duration(flagTimeout, 30*time.Second, "elapsed time until the traversal times out")
	return cmd
}

// openGraph loads a plain, gzip or bzip2 compressed graph. If store.path is set,
// the persistent variables store is bound to the graph, so scripts read it with vars(key).
func openGraph(path string) (*memstore.QuadStore, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	r, err := decompressor.New(f)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "cannot read graph %q", path)
	}
	qs := memstore.New()
	if err = qs.Load(r); err != nil {
		return nil, nil, errors.Wrapf(err, "cannot load graph %q", path)
	}
	if clog.V(1) {
		nv, ne := qs.Size()
		clog.Infof("loaded %d vertices and %d edges", nv, ne)
	}
	spath := viper.GetString(KeyStorePath)
	if spath == "" {
		return qs, func() {}, nil
	}
	vars, err := variables.OpenBolt(spath)
	if err != nil {
		return nil, nil, err
	}
	qs.SetVariables(vars)
	return qs, func() {
		if err := vars.Close(); err != nil {
			clog.Errorf("cannot close variables: %v", err)
		}
	}, nil
}

// formatResult prints elements by id, quad values in their N-Quads form and paths as lists.
func formatResult(v interface{}) string {
	switch v := v.(type) {
	case graph.Edge:
		return fmt.Sprintf("e[%s -%s-> %s]",
			quad.StringOf(v.Vertex(graph.Out).ID()), v.Label(), quad.StringOf(v.Vertex(graph.In).ID()))
	case graph.Element:
		return fmt.Sprintf("v[%s]", quad.StringOf(v.ID()))
	case quad.Value:
		return quad.StringOf(v)
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, x := range v {
			parts = append(parts, formatResult(x))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case nil:
		return "null"
	}
	return fmt.Sprint(v)
}
