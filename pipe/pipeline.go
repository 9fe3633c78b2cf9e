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

package pipe

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Pipeline is an ordered chain of pipes. Pulling from the pipeline pulls from its last pipe.
type Pipeline struct {
	pipes      []Pipe
	index      map[string]int
	trackPaths bool
}

// NewPipeline creates an empty pipeline. If trackPaths is set, source holders record their paths.
func NewPipeline(trackPaths bool) *Pipeline {
	return &Pipeline{index: make(map[string]int), trackPaths: trackPaths}
}

// Add appends a pipe and connects it to the current last pipe.
// An empty label is replaced by the position of the pipe.
// Pipes must embed Base, and labels must be unique within the pipeline.
func (pl *Pipeline) Add(p Pipe, label string) *Pipeline {
	if label == "" {
		label = strconv.Itoa(len(pl.pipes))
	}
	if _, dup := pl.index[label]; dup {
		panic(fmt.Errorf("pipe: duplicate label %q", label))
	}
	b, ok := p.(binder)
	if !ok {
		panic(fmt.Errorf("pipe: %T does not embed pipe.Base", p))
	}
	b.bind(pl, label)
	if n := len(pl.pipes); n > 0 {
		p.SetStarts(pl.pipes[n-1])
	}
	pl.index[label] = len(pl.pipes)
	pl.pipes = append(pl.pipes, p)
	return pl
}

// Pipes returns all pipes in order.
func (pl *Pipeline) Pipes() []Pipe {
	return append([]Pipe{}, pl.pipes...)
}

// Len returns the number of pipes.
func (pl *Pipeline) Len() int { return len(pl.pipes) }

// TrackPaths reports whether holders record their paths.
func (pl *Pipeline) TrackPaths() bool { return pl.trackPaths }

// NextLabel returns the label of the pipe following the one with a given label,
// or None if it is the last pipe or the label is unknown.
func (pl *Pipeline) NextLabel(label string) string {
	i, ok := pl.index[label]
	if !ok || i+1 >= len(pl.pipes) {
		return None
	}
	return pl.pipes[i+1].Label()
}

func (pl *Pipeline) last() Pipe {
	if len(pl.pipes) == 0 {
		return nil
	}
	return pl.pipes[len(pl.pipes)-1]
}

func (pl *Pipeline) Next(ctx context.Context) bool {
	p := pl.last()
	return p != nil && p.Next(ctx)
}

func (pl *Pipeline) Result() *Holder {
	if p := pl.last(); p != nil {
		return p.Result()
	}
	return nil
}

func (pl *Pipeline) Err() error {
	if p := pl.last(); p != nil {
		return p.Err()
	}
	return nil
}

// Close closes all pipes, starting from the last one.
func (pl *Pipeline) Close() error {
	if p := pl.last(); p != nil {
		return p.Close()
	}
	return nil
}

// Drain pulls all holders and passes them to fn. It stops at the first error returned by fn.
// The pipeline is closed afterwards.
func (pl *Pipeline) Drain(ctx context.Context, fn func(h *Holder) error) error {
	defer pl.Close()
	done := ctx.Done()
	for {
		select {
		case <-done:
			return ctx.Err()
		default:
		}
		if !pl.Next(ctx) {
			break
		}
		if err := fn(pl.Result()); err != nil {
			return err
		}
	}
	return pl.Err()
}

// ToList pulls all values.
func (pl *Pipeline) ToList(ctx context.Context) ([]interface{}, error) {
	var out []interface{}
	err := pl.Drain(ctx, func(h *Holder) error {
		out = append(out, h.Value)
		return nil
	})
	return out, err
}

func (pl *Pipeline) String() string {
	parts := make([]string, 0, len(pl.pipes))
	for _, p := range pl.pipes {
		parts = append(parts, fmt.Sprintf("%T@%s", p, p.Label()))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
