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

// Package order defines comparison strategies used by sorting steps.
//
// Every order except Shuffle is a total order over mutually comparable values,
// and its Opposite compares the same pair with the inverted sign. Shuffle
// returns an independent coin flip on each call and is not a valid order:
// it is neither antisymmetric nor transitive.
package order

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// Order is one of the named comparison strategies.
type Order int

const (
	Incr Order = iota
	Decr
	KeyIncr
	ValueIncr
	KeyDecr
	ValueDecr
	Shuffle
)

type compareFunc func(src rand.Source, a, b interface{}) int

type orderDef struct {
	name     string
	opposite Order
	compare  compareFunc
}

var orders = [...]orderDef{
	Incr: {name: "incr", opposite: Decr, compare: func(_ rand.Source, a, b interface{}) int {
		return Natural(a, b)
	}},
	Decr: {name: "decr", opposite: Incr, compare: func(_ rand.Source, a, b interface{}) int {
		return -Natural(a, b)
	}},
	KeyIncr: {name: "keyIncr", opposite: KeyDecr, compare: func(_ rand.Source, a, b interface{}) int {
		return Natural(entryOf(a).Key, entryOf(b).Key)
	}},
	ValueIncr: {name: "valueIncr", opposite: ValueDecr, compare: func(_ rand.Source, a, b interface{}) int {
		return Natural(entryOf(a).Value, entryOf(b).Value)
	}},
	KeyDecr: {name: "keyDecr", opposite: KeyIncr, compare: func(_ rand.Source, a, b interface{}) int {
		return -Natural(entryOf(a).Key, entryOf(b).Key)
	}},
	ValueDecr: {name: "valueDecr", opposite: ValueIncr, compare: func(_ rand.Source, a, b interface{}) int {
		return -Natural(entryOf(a).Value, entryOf(b).Value)
	}},
	Shuffle: {name: "shuffle", opposite: Shuffle, compare: func(src rand.Source, _, _ interface{}) int {
		if src.Int63()&1 == 0 {
			return -1
		}
		return 1
	}},
}

// All lists every order in declaration order.
func All() []Order {
	return []Order{Incr, Decr, KeyIncr, ValueIncr, KeyDecr, ValueDecr, Shuffle}
}

func (o Order) valid() bool {
	return o >= 0 && int(o) < len(orders)
}

func (o Order) def() *orderDef {
	if !o.valid() {
		panic(fmt.Errorf("order: unknown order %d", int(o)))
	}
	return &orders[o]
}

// Opposite returns the order that sorts in reverse. Shuffle is its own opposite.
func (o Order) Opposite() Order {
	return o.def().opposite
}

// Compare returns -1, 0 or 1. Shuffle draws from the package default source.
//
// It panics with *IncomparableError if the values (or the extracted entry keys
// or values) are not mutually comparable.
func (o Order) Compare(a, b interface{}) int {
	return o.def().compare(defaultSource, a, b)
}

func (o Order) String() string {
	if !o.valid() {
		return fmt.Sprintf("Order(%d)", int(o))
	}
	return orders[o].name
}

func (o Order) MarshalText() ([]byte, error) {
	if !o.valid() {
		return nil, fmt.Errorf("order: unknown order %d", int(o))
	}
	return []byte(o.String()), nil
}

func (o *Order) UnmarshalText(text []byte) error {
	v, err := Parse(string(text))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// Parse returns an order with a given name.
func Parse(name string) (Order, error) {
	for i, d := range orders {
		if d.name == name {
			return Order(i), nil
		}
	}
	return 0, fmt.Errorf("order: unknown order %q", name)
}

// Comparator binds an order to a randomness source. A nil source uses the package default.
// Only Shuffle consumes the source; src must be safe for concurrent use if the
// comparator is shared between goroutines.
func Comparator(o Order, src rand.Source) func(a, b interface{}) int {
	if src == nil {
		src = defaultSource
	}
	cmp := o.def().compare
	return func(a, b interface{}) int {
		return cmp(src, a, b)
	}
}

// Entry is a key/value pair compared by the key and value orders.
type Entry struct {
	Key   interface{}
	Value interface{}
}

func (e Entry) String() string {
	return fmt.Sprintf("%v=%v", e.Key, e.Value)
}

func entryOf(v interface{}) Entry {
	switch v := v.(type) {
	case Entry:
		return v
	case *Entry:
		if v != nil {
			return *v
		}
	}
	panic(&IncomparableError{A: v, Reason: "not an entry"})
}

// NewLockedSource wraps a source for concurrent use.
func NewLockedSource(src rand.Source) rand.Source {
	return &lockedSource{src: src}
}

var defaultSource = NewLockedSource(rand.NewSource(time.Now().UnixNano()))

type lockedSource struct {
	mu  sync.Mutex
	src rand.Source
}

func (s *lockedSource) Int63() int64 {
	s.mu.Lock()
	v := s.src.Int63()
	s.mu.Unlock()
	return v
}

func (s *lockedSource) Seed(seed int64) {
	s.mu.Lock()
	s.src.Seed(seed)
	s.mu.Unlock()
}
