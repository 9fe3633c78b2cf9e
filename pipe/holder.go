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

import "fmt"

// None is the routing label of a holder that left the last stage of a pipeline.
const None = "NONE"

// Holder wraps a value flowing through a pipeline.
//
// The wrapped value is never changed. Stages that transform a value derive
// a new holder with Split. Only the routing label and the tags are mutable.
type Holder struct {
	Value interface{}
	// Pipe is the label of the stage the holder is routed to, or None.
	Pipe string
	// Origin is the value this holder was derived from. It is nil for source values.
	Origin interface{}

	tracking bool
	path     []interface{}

	tags    map[string]interface{}
	ownTags bool
}

// NewHolder wraps a source value. If trackPath is set, the holder and its
// descendants record every value they were derived from.
func NewHolder(v interface{}, trackPath bool) *Holder {
	h := &Holder{Value: v, tracking: trackPath}
	if trackPath {
		h.path = []interface{}{v}
	}
	return h
}

// Split derives a holder for a new value. Tags are shared until either holder is tagged again.
func (h *Holder) Split(v interface{}) *Holder {
	c := &Holder{
		Value:    v,
		Pipe:     h.Pipe,
		Origin:   h.Value,
		tracking: h.tracking,
		tags:     h.tags,
	}
	h.ownTags = false
	if h.tracking {
		c.path = make([]interface{}, len(h.path), len(h.path)+1)
		copy(c.path, h.path)
		c.path = append(c.path, v)
	}
	return c
}

// Tag binds the current value to the labels.
func (h *Holder) Tag(labels ...string) {
	if len(labels) == 0 {
		return
	}
	if !h.ownTags {
		tags := make(map[string]interface{}, len(h.tags)+len(labels))
		for k, v := range h.tags {
			tags[k] = v
		}
		h.tags, h.ownTags = tags, true
	}
	for _, l := range labels {
		h.tags[l] = h.Value
	}
}

// Tagged returns a value bound to a label by Tag on this holder or any of its ancestors.
func (h *Holder) Tagged(label string) (interface{}, bool) {
	v, ok := h.tags[label]
	return v, ok
}

// Tags returns a copy of all labeled values.
func (h *Holder) Tags() map[string]interface{} {
	out := make(map[string]interface{}, len(h.tags))
	for k, v := range h.tags {
		out[k] = v
	}
	return out
}

// Tracking reports whether the holder records its path.
func (h *Holder) Tracking() bool { return h.tracking }

// Path returns a copy of all values from the source value up to the current one.
// It returns nil if path tracking is disabled.
func (h *Holder) Path() []interface{} {
	if !h.tracking {
		return nil
	}
	return append([]interface{}{}, h.path...)
}

func (h *Holder) String() string {
	return fmt.Sprintf("Holder(%v)@%s", h.Value, h.Pipe)
}
