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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cayleygraph/traverse/traversal"
	"github.com/cayleygraph/traverse/traversal/strategy"
)

const (
	flagDot  = "dot"
	flagJSON = "json"
)

func NewExplainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain [traversal.json]",
		Short: "Print a traversal before and after optimization.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := readTraversal(cmd, args)
			if err != nil {
				return err
			}
			strategies, err := configuredStrategies()
			if err != nil {
				return err
			}
			opt := t.Clone()
			changed := opt.ApplyStrategies(strategies...)

			w := cmd.OutOrStdout()
			if dot, _ := cmd.Flags().GetBool(flagDot); dot {
				fmt.Fprint(w, traversal.Dot(opt))
				return nil
			}
			if js, _ := cmd.Flags().GetBool(flagJSON); js {
				data, err := traversal.Marshal(opt)
				if err != nil {
					return err
				}
				fmt.Fprintln(w, string(data))
				return nil
			}
			fmt.Fprintln(w, "original: ", t)
			fmt.Fprintln(w, "optimized:", opt)
			if !changed {
				fmt.Fprintln(w, "no strategy changed the traversal")
			}
			return nil
		},
	}
	cmd.Flags().Bool(flagDot, false, "print the optimized traversal in Graphviz dot notation")
	cmd.Flags().Bool(flagJSON, false, "print the optimized traversal as JSON")
	return cmd
}

func NewStrategiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strategies",
		Short: "List optimization strategies in application order.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			enabled, err := configuredStrategies()
			if err != nil {
				return err
			}
			on := make(map[string]bool, len(enabled))
			for _, s := range enabled {
				on[s.Name()] = true
			}
			for _, name := range strategy.Names() {
				state := "disabled"
				if on[name] {
					state = "enabled"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", name, state)
			}
			return nil
		},
	}
}
