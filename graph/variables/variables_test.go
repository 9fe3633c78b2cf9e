package variables_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/traverse/graph/variables"
)

func testVariables(t *testing.T, vars variables.Variables) {
	ctx := context.TODO()

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, vars.Set(ctx, "name", "marko"))
		require.NoError(t, vars.Set(ctx, "age", 29))
		require.NoError(t, vars.Set(ctx, "weight", 0.5))
		require.NoError(t, vars.Set(ctx, "active", true))
		ts := time.Date(2014, 9, 1, 12, 0, 0, 0, time.UTC)
		require.NoError(t, vars.Set(ctx, "created", ts))

		v, ok, err := vars.Get(ctx, "name")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, quad.String("marko"), v)

		v, ok, err = vars.Get(ctx, "age")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, quad.Int(29), v)

		v, _, err = vars.Get(ctx, "weight")
		require.NoError(t, err)
		assert.Equal(t, quad.Float(0.5), v)

		v, _, err = vars.Get(ctx, "active")
		require.NoError(t, err)
		assert.Equal(t, quad.Bool(true), v)

		v, _, err = vars.Get(ctx, "created")
		require.NoError(t, err)
		require.IsType(t, quad.Time{}, v)
		assert.True(t, ts.Equal(time.Time(v.(quad.Time))))
	})
	t.Run("missing", func(t *testing.T) {
		v, ok, err := vars.Get(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, v)
	})
	t.Run("hidden keys", func(t *testing.T) {
		require.NoError(t, vars.Set(ctx, variables.HiddenPrefix+"secret", "x"))
		keys, err := vars.Keys(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"active", "age", "created", "name", "weight"}, keys)

		v, ok, err := vars.Get(ctx, variables.HiddenPrefix+"secret")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, quad.String("x"), v)
	})
	t.Run("unsupported", func(t *testing.T) {
		for _, v := range []interface{}{
			map[string]int{"a": 1},
			[]string{"a", "b"},
			[]int64{1, 2},
			[]float64{0.5},
			[]bool{true},
			[]interface{}{1, "a"},
			[]byte("raw"),
			struct{ A int }{1},
		} {
			err := vars.Set(ctx, "bad", v)
			require.Error(t, err)
			assert.True(t, errors.Is(err, variables.ErrUnsupportedValue), "%T", v)
			var uerr *variables.UnsupportedValueError
			require.True(t, errors.As(err, &uerr))
			assert.Equal(t, v, uerr.Value)
		}
		_, ok, err := vars.Get(ctx, "bad")
		require.NoError(t, err)
		assert.False(t, ok)
	})
	t.Run("invalid", func(t *testing.T) {
		assert.Equal(t, variables.ErrEmptyKey, vars.Set(ctx, "", 1))
		assert.Equal(t, variables.ErrNilValue, vars.Set(ctx, "nil", nil))
		assert.Equal(t, variables.ErrEmptyKey, vars.Remove(ctx, ""))
	})
	t.Run("remove", func(t *testing.T) {
		require.NoError(t, vars.Remove(ctx, "name"))
		require.NoError(t, vars.Remove(ctx, "name"))
		_, ok, err := vars.Get(ctx, "name")
		require.NoError(t, err)
		assert.False(t, ok)
		keys, err := vars.Keys(ctx)
		require.NoError(t, err)
		assert.NotContains(t, keys, "name")
	})
}

func TestMemory(t *testing.T) {
	testVariables(t, variables.NewMemory())
}

func TestBolt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vars.bolt")
	s, err := variables.OpenBolt(path)
	require.NoError(t, err)
	testVariables(t, s)
	require.NoError(t, s.Close())

	s, err = variables.OpenBolt(path)
	require.NoError(t, err)
	defer s.Close()
	v, ok, err := s.Get(context.TODO(), "age")
	require.NoError(t, err)
	require.True(t, ok, "value should survive reopening")
	assert.Equal(t, quad.Int(29), v)
}

func TestFeatures(t *testing.T) {
	f := variables.Features{String: true}
	_, err := f.Validate("k", 1)
	assert.True(t, errors.Is(err, variables.ErrUnsupportedValue))
	v, err := f.Validate("k", "s")
	require.NoError(t, err)
	assert.Equal(t, quad.String("s"), v)
}
