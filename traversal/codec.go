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
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/traverse/graph"
	"github.com/cayleygraph/traverse/traversal/order"
)

// ErrNotSerializable is returned when marshaling a lambda step backed by a Go function.
var ErrNotSerializable = errors.New("traversal: step cannot be serialized")

const xsdDateTime = "http://www.w3.org/2001/XMLSchema#dateTime"

// stepJSON is the wire form of every step. Only the fields of a given step kind are set.
type stepJSON struct {
	Step       string            `json:"step"`
	As         []string          `json:"as,omitempty"`
	Direction  string            `json:"direction,omitempty"`
	EdgeLabels []string          `json:"edgeLabels,omitempty"`
	Returns    string            `json:"returns,omitempty"`
	Kind       string            `json:"kind,omitempty"`
	Script     string            `json:"script,omitempty"`
	IDs        []json.RawMessage `json:"ids,omitempty"`
	Key        string            `json:"key,omitempty"`
	Value      json.RawMessage   `json:"value,omitempty"`
	Order      string            `json:"order,omitempty"`
	Low        int64             `json:"low,omitempty"`
	High       *int64            `json:"high,omitempty"`
	Label      string            `json:"label,omitempty"`
}

type stepCodec struct {
	name   string
	decode func(m *stepJSON) (Step, error)
	encode func(s Step, m *stepJSON) error
}

var (
	codecByName = make(map[string]*stepCodec)
	codecByType = make(map[reflect.Type]*stepCodec)
)

func registerStep(proto Step, c *stepCodec) {
	tp := reflect.TypeOf(proto)
	if _, ok := codecByName[c.name]; ok {
		panic("this name was already registered")
	}
	codecByName[c.name] = c
	codecByType[tp] = c
}

// StepNames lists names of all steps known to Unmarshal.
func StepNames() []string {
	out := make([]string, 0, len(codecByName))
	for k := range codecByName {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func noFields(s Step, m *stepJSON) error { return nil }

func init() {
	registerStep((*VertexStep)(nil), &stepCodec{
		name: "vertex",
		decode: func(m *stepJSON) (Step, error) {
			dir, err := graph.ParseDirection(m.Direction)
			if err != nil {
				return nil, err
			}
			ret := graph.VertexType
			if m.Returns != "" {
				if ret, err = graph.ParseElementType(m.Returns); err != nil {
					return nil, err
				}
			}
			if ret != graph.VertexType && ret != graph.EdgeType {
				return nil, fmt.Errorf("vertex step cannot return %v", ret)
			}
			return NewVertexStep(dir, ret, m.EdgeLabels...), nil
		},
		encode: func(s Step, m *stepJSON) error {
			v := s.(*VertexStep)
			m.Direction, m.EdgeLabels, m.Returns = v.Direction.String(), v.EdgeLabels, v.Returns.String()
			return nil
		},
	})
	registerStep((*EdgeVertexStep)(nil), &stepCodec{
		name: "edgeVertex",
		decode: func(m *stepJSON) (Step, error) {
			dir, err := graph.ParseDirection(m.Direction)
			if err != nil {
				return nil, err
			}
			return NewEdgeVertexStep(dir), nil
		},
		encode: func(s Step, m *stepJSON) error {
			m.Direction = s.(*EdgeVertexStep).Direction.String()
			return nil
		},
	})
	registerStep((*EdgeOtherVertexStep)(nil), &stepCodec{
		name:   "otherV",
		decode: func(m *stepJSON) (Step, error) { return NewEdgeOtherVertexStep(), nil },
		encode: noFields,
	})
	registerStep((*PathStep)(nil), &stepCodec{
		name:   "path",
		decode: func(m *stepJSON) (Step, error) { return NewPathStep(), nil },
		encode: noFields,
	})
	registerStep((*LambdaStep)(nil), &stepCodec{
		name: "lambda",
		decode: func(m *stepJSON) (Step, error) {
			if m.Script == "" {
				return nil, errors.New("lambda step requires a script")
			}
			switch m.Kind {
			case "", LambdaFilter.String():
				return NewScriptFilter(m.Script), nil
			case LambdaMap.String():
				return NewScriptMap(m.Script), nil
			}
			return nil, fmt.Errorf("unknown lambda kind: %q", m.Kind)
		},
		encode: func(s Step, m *stepJSON) error {
			l := s.(*LambdaStep)
			if l.Script == "" {
				return ErrNotSerializable
			}
			m.Kind, m.Script = l.Kind.String(), l.Script
			return nil
		},
	})
	registerStep((*StartStep)(nil), &stepCodec{
		name: "start",
		decode: func(m *stepJSON) (Step, error) {
			ids := make([]quad.Value, 0, len(m.IDs))
			for _, raw := range m.IDs {
				v, err := decodeValue(raw)
				if err != nil {
					return nil, err
				}
				ids = append(ids, v)
			}
			return NewStartStep(ids...), nil
		},
		encode: func(s Step, m *stepJSON) error {
			for _, id := range s.(*StartStep).IDs {
				raw, err := encodeValue(id)
				if err != nil {
					return err
				}
				m.IDs = append(m.IDs, raw)
			}
			return nil
		},
	})
	registerStep((*HasStep)(nil), &stepCodec{
		name: "has",
		decode: func(m *stepJSON) (Step, error) {
			if m.Key == "" {
				return nil, errors.New("has step requires a key")
			}
			var v quad.Value
			if len(m.Value) != 0 {
				var err error
				if v, err = decodeValue(m.Value); err != nil {
					return nil, err
				}
			}
			return NewHasStep(m.Key, v), nil
		},
		encode: func(s Step, m *stepJSON) error {
			h := s.(*HasStep)
			m.Key = h.Key
			if h.Value == nil {
				return nil
			}
			raw, err := encodeValue(h.Value)
			m.Value = raw
			return err
		},
	})
	registerStep((*ValuesStep)(nil), &stepCodec{
		name: "values",
		decode: func(m *stepJSON) (Step, error) {
			if m.Key == "" {
				return nil, errors.New("values step requires a key")
			}
			return NewValuesStep(m.Key), nil
		},
		encode: func(s Step, m *stepJSON) error {
			m.Key = s.(*ValuesStep).Key
			return nil
		},
	})
	registerStep((*OrderStep)(nil), &stepCodec{
		name: "order",
		decode: func(m *stepJSON) (Step, error) {
			o := order.Incr
			if m.Order != "" {
				var err error
				if o, err = order.Parse(m.Order); err != nil {
					return nil, err
				}
			}
			return NewOrderStep(m.Key, o), nil
		},
		encode: func(s Step, m *stepJSON) error {
			o := s.(*OrderStep)
			m.Key, m.Order = o.Key, o.Order.String()
			return nil
		},
	})
	registerStep((*RangeStep)(nil), &stepCodec{
		name: "range",
		decode: func(m *stepJSON) (Step, error) {
			high := int64(-1)
			if m.High != nil {
				high = *m.High
			}
			if m.Low < 0 || (high >= 0 && high < m.Low) {
				return nil, fmt.Errorf("invalid range [%d, %d)", m.Low, high)
			}
			return NewRangeStep(m.Low, high), nil
		},
		encode: func(s Step, m *stepJSON) error {
			r := s.(*RangeStep)
			m.Low = r.Low
			if r.High >= 0 {
				high := r.High
				m.High = &high
			}
			return nil
		},
	})
	registerStep((*DedupStep)(nil), &stepCodec{
		name:   "dedup",
		decode: func(m *stepJSON) (Step, error) { return NewDedupStep(), nil },
		encode: noFields,
	})
	registerStep((*IdentityStep)(nil), &stepCodec{
		name:   "identity",
		decode: func(m *stepJSON) (Step, error) { return NewIdentityStep(), nil },
		encode: noFields,
	})
	registerStep((*SelectStep)(nil), &stepCodec{
		name: "select",
		decode: func(m *stepJSON) (Step, error) {
			if m.Label == "" {
				return nil, errors.New("select step requires a label")
			}
			return NewSelectStep(m.Label), nil
		},
		encode: func(s Step, m *stepJSON) error {
			m.Label = s.(*SelectStep).Label
			return nil
		},
	})
}

// Unmarshal decodes a traversal from a JSON array of steps.
func Unmarshal(data []byte) (*Traversal, error) {
	var arr []json.RawMessage
	if err := json.Unmarshal(data, &arr); err != nil {
		return nil, err
	}
	t := New()
	for i, raw := range arr {
		var m stepJSON
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&m); err != nil {
			return nil, fmt.Errorf("traversal: step %d: %v", i, err)
		}
		c, ok := codecByName[m.Step]
		if !ok {
			return nil, fmt.Errorf("traversal: step %d: %w: %q", i, ErrUnknownStep, m.Step)
		}
		s, err := c.decode(&m)
		if err != nil {
			return nil, fmt.Errorf("traversal: step %d (%s): %v", i, m.Step, err)
		}
		s.AddLabels(m.As...)
		t.AddStep(s)
	}
	return t, nil
}

// Marshal encodes a traversal as a JSON array of steps.
func Marshal(t *Traversal) ([]byte, error) {
	arr := make([]*stepJSON, 0, len(t.steps))
	for i, s := range t.steps {
		c, ok := codecByType[reflect.TypeOf(s)]
		if !ok {
			return nil, fmt.Errorf("traversal: step %d: %w: %T", i, ErrUnknownStep, s)
		}
		m := &stepJSON{Step: c.name, As: s.Labels()}
		if err := c.encode(s, m); err != nil {
			return nil, fmt.Errorf("traversal: step %d (%v): %w", i, s, err)
		}
		arr = append(arr, m)
	}
	return json.Marshal(arr)
}

type nodeJSON struct {
	ID    string `json:"@id,omitempty"`
	Value string `json:"@value,omitempty"`
	Type  string `json:"@type,omitempty"`
}

// encodeValue writes quad values the way JSON-LD does: IRIs and blank nodes as
// {"@id": ...}, plain literals as JSON scalars and timestamps as typed values.
func encodeValue(v quad.Value) (json.RawMessage, error) {
	switch v := v.(type) {
	case quad.IRI:
		return json.Marshal(nodeJSON{ID: string(v)})
	case quad.BNode:
		return json.Marshal(nodeJSON{ID: v.String()})
	case quad.String:
		return json.Marshal(string(v))
	case quad.Int:
		return json.RawMessage(strconv.FormatInt(int64(v), 10)), nil
	case quad.Float:
		s := strconv.FormatFloat(float64(v), 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEn") {
			s += ".0"
		}
		return json.RawMessage(s), nil
	case quad.Bool:
		return json.Marshal(bool(v))
	case quad.Time:
		return json.Marshal(nodeJSON{Value: time.Time(v).Format(time.RFC3339Nano), Type: xsdDateTime})
	}
	return nil, fmt.Errorf("unsupported value type: %T", v)
}

func decodeValue(raw json.RawMessage) (quad.Value, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errors.New("empty value")
	}
	switch raw[0] {
	case '{':
		var n nodeJSON
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, err
		}
		switch {
		case n.ID != "":
			if strings.HasPrefix(n.ID, "_:") {
				return quad.BNode(n.ID[2:]), nil
			}
			return quad.IRI(n.ID), nil
		case n.Type == xsdDateTime:
			t, err := time.Parse(time.RFC3339Nano, n.Value)
			if err != nil {
				return nil, err
			}
			return quad.Time(t), nil
		}
		return nil, fmt.Errorf("unsupported value: %s", raw)
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return quad.String(s), nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			return nil, err
		}
		return quad.Bool(b), nil
	}
	s := string(raw)
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return quad.Int(i), nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("unsupported value: %s", raw)
	}
	return quad.Float(f), nil
}
