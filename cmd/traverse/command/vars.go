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
	"strconv"
	"time"

	"github.com/cayleygraph/quad"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cayleygraph/traverse/graph/variables"
)

var ErrNoStore = errors.New("variables store path is not set")

func NewVarsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vars",
		Short: "Manage graph variables in a Bolt file.",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List variable names.",
			Args:  cobra.NoArgs,
			RunE: withVars(func(cmd *cobra.Command, vars variables.Variables, args []string) error {
				keys, err := vars.Keys(cmd.Context())
				if err != nil {
					return err
				}
				for _, k := range keys {
					fmt.Fprintln(cmd.OutOrStdout(), k)
				}
				return nil
			}),
		},
		&cobra.Command{
			Use:   "get <key>",
			Short: "Print a variable value.",
			Args:  cobra.ExactArgs(1),
			RunE: withVars(func(cmd *cobra.Command, vars variables.Variables, args []string) error {
				v, ok, err := vars.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				} else if !ok {
					return fmt.Errorf("variable %q is not set", args[0])
				}
				fmt.Fprintln(cmd.OutOrStdout(), quad.StringOf(v))
				return nil
			}),
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Set a variable. Numbers, booleans and RFC 3339 timestamps are detected.",
			Args:  cobra.ExactArgs(2),
			RunE: withVars(func(cmd *cobra.Command, vars variables.Variables, args []string) error {
				return vars.Set(cmd.Context(), args[0], parseValue(args[1]))
			}),
		},
		&cobra.Command{
			Use:     "rm <key>",
			Aliases: []string{"remove"},
			Short:   "Remove a variable.",
			Args:    cobra.ExactArgs(1),
			RunE: withVars(func(cmd *cobra.Command, vars variables.Variables, args []string) error {
				return vars.Remove(cmd.Context(), args[0])
			}),
		},
	)
	return cmd
}

type varsFunc func(cmd *cobra.Command, vars variables.Variables, args []string) error

func withVars(fn varsFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		path := viper.GetString(KeyStorePath)
		if path == "" {
			return ErrNoStore
		}
		vars, err := variables.OpenBolt(path)
		if err != nil {
			return err
		}
		defer vars.Close()
		return fn(cmd, vars, args)
	}
}

// parseValue detects the kind of a command line value. Anything else is a string.
func parseValue(s string) quad.Value {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return quad.Int(i)
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return quad.Float(f)
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return quad.Bool(b)
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return quad.Time(t)
	}
	return quad.String(s)
}
