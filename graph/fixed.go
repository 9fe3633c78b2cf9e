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

package graph

import "context"

var _ Iterator = (*Fixed)(nil)

// Fixed is an iterator over an explicit list of elements.
type Fixed struct {
	values []Element
	index  int
	result Element
}

// NewFixed creates an iterator over a copy of the given elements.
func NewFixed(vals ...Element) *Fixed {
	return &Fixed{values: append([]Element{}, vals...)}
}

// Next advances the iterator.
func (it *Fixed) Next(ctx context.Context) bool {
	if it.index >= len(it.values) {
		it.result = nil
		return false
	}
	it.result = it.values[it.index]
	it.index++
	return true
}

func (it *Fixed) Result() Element { return it.result }

func (it *Fixed) Err() error { return nil }

func (it *Fixed) Close() error {
	it.index = len(it.values)
	return nil
}
