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

package main

import (
	"flag"
	"os"

	"github.com/cayleygraph/traverse/clog"
	_ "github.com/cayleygraph/traverse/clog/glog"
	"github.com/cayleygraph/traverse/cmd/traverse/command"
)

func main() {
	// glog registers its flags on the standard flag set and complains if they are not parsed
	flag.CommandLine.Parse([]string{"-logtostderr=true"})

	if err := command.NewRootCmd().Execute(); err != nil {
		clog.Errorf("%v", err)
		os.Exit(1)
	}
}
