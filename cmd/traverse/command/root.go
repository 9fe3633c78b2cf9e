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

// Package command implements subcommands of the traverse tool.
package command

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/cayleygraph/traverse/clog"
	"github.com/cayleygraph/traverse/traversal"
	"github.com/cayleygraph/traverse/traversal/strategy"
)

const (
	KeyStrategies = "optimize.strategies"
	KeyDisabled   = "optimize.disabled"
	KeyStorePath  = "store.path"
	KeyVerbosity  = "log.verbosity"
)

const envPrefix = "TRAVERSE"

// NewRootCmd creates the traverse command with all subcommands attached.
func NewRootCmd() *cobra.Command {
	var configFile string
	cmd := &cobra.Command{
		Use:           "traverse",
		Short:         "Optimize and run graph traversals.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(configFile); err != nil {
				return err
			}
			clog.SetV(viper.GetInt(KeyVerbosity))
			return nil
		},
	}
	flags := cmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "path to an explicit configuration file")
	flags.IntP("verbosity", "v", 0, "log verbosity")
	flags.StringSlice("strategies", nil, "strategies to apply, in default order (all by default)")
	flags.StringSlice("disable", nil, "strategies to skip")
	flags.String("store", "", "path to a Bolt file with graph variables")
	viper.BindPFlag(KeyVerbosity, flags.Lookup("verbosity"))
	viper.BindPFlag(KeyStrategies, flags.Lookup("strategies"))
	viper.BindPFlag(KeyDisabled, flags.Lookup("disable"))
	viper.BindPFlag(KeyStorePath, flags.Lookup("store"))

	cmd.AddCommand(
		NewExplainCmd(),
		NewRunCmd(),
		NewVarsCmd(),
		NewStrategiesCmd(),
	)
	return cmd
}

func loadConfig(file string) error {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	if file == "" {
		return nil
	}
	viper.SetConfigFile(file)
	if err := viper.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "cannot read config %q", file)
	}
	clog.Infof("using config file %q", viper.ConfigFileUsed())
	return nil
}

// configuredStrategies selects strategies according to the optimize.* settings.
func configuredStrategies() ([]traversal.Strategy, error) {
	return strategy.Select(viper.GetStringSlice(KeyStrategies), viper.GetStringSlice(KeyDisabled))
}

// openInput opens a file, or stdin if the name is "-" or empty.
func openInput(cmd *cobra.Command, name string) (io.ReadCloser, error) {
	if name == "" || name == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// readTraversal decodes a JSON traversal from a file named by the only argument, or from stdin.
func readTraversal(cmd *cobra.Command, args []string) (*traversal.Traversal, error) {
	name := ""
	if len(args) == 1 {
		name = args[0]
	}
	r, err := openInput(cmd, name)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	t, err := traversal.Unmarshal(data)
	if err != nil {
		return nil, errors.Wrap(err, "cannot decode traversal")
	}
	return t, nil
}
