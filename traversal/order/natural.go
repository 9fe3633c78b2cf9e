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

package order

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/cayleygraph/quad"
)

// Comparable can be implemented by values that define their own natural order.
// CompareTo returns false if v cannot be compared with the receiver.
type Comparable interface {
	CompareTo(v interface{}) (int, bool)
}

// IncomparableError is the panic value raised when two values have no natural order.
type IncomparableError struct {
	A, B   interface{}
	Reason string
}

func (e *IncomparableError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("order: cannot compare %T: %s", e.A, e.Reason)
	}
	return fmt.Sprintf("order: cannot compare %T with %T", e.A, e.B)
}

// Natural compares two values in their natural order and returns -1, 0 or 1.
//
// Integers and floats of any width compare numerically with each other, strings
// lexicographically, false sorts before true, and time.Time chronologically.
// NaN sorts after every other number and equals itself.
// Quad values are compared by their native Go value. IRIs and blank nodes only
// compare with values of the same quad type.
// Natural panics with *IncomparableError for any other combination.
func Natural(a, b interface{}) int {
	c, ok := compare(a, b)
	if !ok {
		panic(&IncomparableError{A: a, B: b})
	}
	return c
}

// Equal reports whether a and b are equal in natural order.
// Unlike Natural, it returns false for incomparable values.
func Equal(a, b interface{}) bool {
	c, ok := compare(a, b)
	return ok && c == 0
}

func sign(c int) int {
	switch {
	case c < 0:
		return -1
	case c > 0:
		return 1
	}
	return 0
}

func native(v interface{}) interface{} {
	qv, ok := v.(quad.Value)
	if !ok || qv == nil {
		return v
	}
	if n := qv.Native(); n != nil {
		if _, still := n.(quad.Value); !still {
			return n
		}
	}
	return v
}

type kind int

const (
	kindOther kind = iota
	kindInt
	kindUint
	kindFloat
	kindString
	kindBool
)

func kindOf(v reflect.Value) kind {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return kindInt
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return kindUint
	case reflect.Float32, reflect.Float64:
		return kindFloat
	case reflect.String:
		return kindString
	case reflect.Bool:
		return kindBool
	}
	return kindOther
}

func isNumber(k kind) bool {
	return k == kindInt || k == kindUint || k == kindFloat
}

func toFloat(v reflect.Value, k kind) float64 {
	switch k {
	case kindInt:
		return float64(v.Int())
	case kindUint:
		return float64(v.Uint())
	}
	return v.Float()
}

func isNode(v interface{}) bool {
	switch v.(type) {
	case quad.IRI, quad.BNode:
		return true
	}
	return false
}

func compareFloats(x, y float64) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	case x == y:
		return 0
	}
	xn, yn := math.IsNaN(x), math.IsNaN(y)
	switch {
	case xn && yn:
		return 0
	case xn:
		return 1
	}
	return -1
}

func compare(a, b interface{}) (int, bool) {
	if (isNode(a) || isNode(b)) && reflect.TypeOf(a) != reflect.TypeOf(b) {
		return 0, false
	}
	a, b = native(a), native(b)
	if c, ok := a.(Comparable); ok {
		r, ok := c.CompareTo(b)
		return sign(r), ok
	}
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		switch {
		case ta.Before(tb):
			return -1, true
		case ta.After(tb):
			return 1, true
		}
		return 0, true
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if !va.IsValid() || !vb.IsValid() {
		return 0, false
	}
	ka, kb := kindOf(va), kindOf(vb)
	switch {
	case ka == kindString && kb == kindString:
		return strings.Compare(va.String(), vb.String()), true
	case ka == kindBool && kb == kindBool:
		x, y := va.Bool(), vb.Bool()
		switch {
		case x == y:
			return 0, true
		case !x:
			return -1, true
		}
		return 1, true
	case ka == kindInt && kb == kindInt:
		x, y := va.Int(), vb.Int()
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		}
		return 0, true
	case ka == kindUint && kb == kindUint:
		x, y := va.Uint(), vb.Uint()
		switch {
		case x < y:
			return -1, true
		case x > y:
			return 1, true
		}
		return 0, true
	case isNumber(ka) && isNumber(kb):
		return compareFloats(toFloat(va, ka), toFloat(vb, kb)), true
	}
	return 0, false
}
