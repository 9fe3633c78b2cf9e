// Package variables implements key/value stores bound to a graph.
//
// Values are restricted to scalar kinds that every store can persist: booleans,
// integers, floats, strings and timestamps. Keys starting with HiddenPrefix are
// accessible but never listed.
package variables

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cayleygraph/quad"
)

// HiddenPrefix marks keys that are reserved for system use.
const HiddenPrefix = "~"

var (
	ErrEmptyKey = errors.New("variables: key cannot be empty")
	ErrNilValue = errors.New("variables: value cannot be nil")
	// ErrUnsupportedValue is matched by errors.Is for every *UnsupportedValueError.
	ErrUnsupportedValue = errors.New("variables: data type of variable value not supported")
)

// UnsupportedValueError is returned by Set for values of a kind the store cannot keep.
type UnsupportedValueError struct {
	Value interface{}
}

func (e *UnsupportedValueError) Error() string {
	return fmt.Sprintf("variables: data type of variable value not supported: %T", e.Value)
}

func (e *UnsupportedValueError) Is(target error) bool {
	return target == ErrUnsupportedValue
}

// Variables is a key/value store bound to a graph.
type Variables interface {
	// Keys lists all keys that are not hidden.
	Keys(ctx context.Context) ([]string, error)
	// Get returns the value for a key. The boolean is false if the key is not set.
	Get(ctx context.Context, key string) (quad.Value, bool, error)
	// Set assigns a value to a key. Native Go values are converted to quad values first.
	Set(ctx context.Context, key string, value interface{}) error
	// Remove deletes a key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}

// IsHidden checks if the key is reserved for system use.
func IsHidden(key string) bool {
	return strings.HasPrefix(key, HiddenPrefix)
}

// Features lists the value kinds accepted by a store. Every value is a single
// quad value, so maps, bytes and lists of any kind, including homogeneous
// arrays of the supported kinds, are always rejected.
type Features struct {
	Bool   bool
	Int    bool
	Float  bool
	String bool
	Time   bool
}

// DefaultFeatures is the set of kinds supported by stores in this package.
var DefaultFeatures = Features{Bool: true, Int: true, Float: true, String: true, Time: true}

// Supports checks if a value kind is accepted.
func (f Features) Supports(v quad.Value) bool {
	switch v.(type) {
	case quad.Bool:
		return f.Bool
	case quad.Int:
		return f.Int
	case quad.Float:
		return f.Float
	case quad.String:
		return f.String
	case quad.Time:
		return f.Time
	}
	return false
}

// Validate checks a key and converts a value to a quad value supported by f.
func (f Features) Validate(key string, value interface{}) (quad.Value, error) {
	if key == "" {
		return nil, ErrEmptyKey
	} else if value == nil {
		return nil, ErrNilValue
	}
	qv, ok := quad.AsValue(value)
	if !ok || qv == nil || !f.Supports(qv) {
		return nil, &UnsupportedValueError{Value: value}
	}
	return qv, nil
}

func visibleKeys(keys []string) []string {
	out := keys[:0]
	for _, k := range keys {
		if !IsHidden(k) {
			out = append(out, k)
		}
	}
	return out
}
