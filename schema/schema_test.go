package schema_test

import (
	"errors"
	"math"
	"testing"

	"github.com/plus3/tickecs/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type vec2 struct {
	X, Y float64
}

type tagged struct {
	Label string `schema:"label"`
	Count int
}

type named string

func TestPrimitives(t *testing.T) {
	tests := []struct {
		name    string
		checker schema.Checker
		value   any
		want    bool
	}{
		{"string", schema.String(), "hello", true},
		{"string named type", schema.String(), named("x"), true},
		{"string rejects int", schema.String(), 1, false},
		{"string rejects nil", schema.String(), nil, false},
		{"number int", schema.Number(), 42, true},
		{"number uint8", schema.Number(), uint8(3), true},
		{"number float", schema.Number(), 1.5, true},
		{"number rejects NaN", schema.Number(), math.NaN(), false},
		{"number rejects string", schema.Number(), "1", false},
		{"bool", schema.Bool(), true, true},
		{"bool rejects int", schema.Bool(), 0, false},
		{"null nil", schema.Null(), nil, true},
		{"null typed nil pointer", schema.Null(), (*vec2)(nil), true},
		{"null rejects zero int", schema.Null(), 0, false},
		{"any accepts nil", schema.Any(), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.checker(tt.value))
		})
	}
}

func TestCombinators(t *testing.T) {
	t.Run("or", func(t *testing.T) {
		c := schema.Or(schema.String(), schema.Number())
		assert.True(t, c("a"))
		assert.True(t, c(1))
		assert.False(t, c(true))
	})

	t.Run("nullable", func(t *testing.T) {
		c := schema.Nullable(schema.Number())
		assert.True(t, c(nil))
		assert.True(t, c(2))
		assert.False(t, c("2"))
	})

	t.Run("array", func(t *testing.T) {
		c := schema.ArrayOf(schema.Number())
		assert.True(t, c([]int{1, 2, 3}))
		assert.True(t, c([2]float64{1, 2}))
		assert.True(t, c([]any{}))
		assert.False(t, c([]any{1, "2"}))
		assert.False(t, c(1))
	})

	t.Run("instance of", func(t *testing.T) {
		c := schema.InstanceOf[*vec2]()
		assert.True(t, c(&vec2{}))
		assert.False(t, c(vec2{}))

		e := schema.InstanceOf[error]()
		assert.True(t, e(errors.New("boom")))
		assert.False(t, e("boom"))
	})
}

func TestObject(t *testing.T) {
	point := schema.Object(schema.Shape{
		"X": schema.Number(),
		"Y": schema.Number(),
	})

	t.Run("struct", func(t *testing.T) {
		assert.True(t, point(vec2{X: 1, Y: 2}))
		assert.True(t, point(&vec2{X: 1, Y: 2}))
		assert.False(t, point((*vec2)(nil)))
	})

	t.Run("map", func(t *testing.T) {
		assert.True(t, point(map[string]any{"X": 1, "Y": 2.5, "Z": "ignored"}))
		assert.False(t, point(map[string]any{"X": 1}))
		assert.False(t, point(map[string]any{"X": 1, "Y": "2"}))
		assert.False(t, point(map[int]any{1: 1}))
	})

	t.Run("optional field", func(t *testing.T) {
		c := schema.Object(schema.Shape{
			"X":    schema.Number(),
			"Name": schema.Optional(schema.String()),
		})
		assert.True(t, c(map[string]any{"X": 1}))
		assert.True(t, c(map[string]any{"X": 1, "Name": "n"}))
		assert.False(t, c(map[string]any{"X": 1, "Name": 3}))
	})

	t.Run("tags", func(t *testing.T) {
		c := schema.Object(schema.Shape{
			"label": schema.String(),
			"Count": schema.Number(),
		})
		assert.True(t, c(tagged{Label: "a", Count: 1}))
	})

	t.Run("rejects non objects", func(t *testing.T) {
		assert.False(t, point(nil))
		assert.False(t, point(3))
		assert.False(t, point([]int{1}))
	})
}

func TestCheck(t *testing.T) {
	require.NoError(t, schema.Check(nil, "anything"))
	require.NoError(t, schema.Check(schema.Number(), 1))

	err := schema.Check(schema.Number(), "one")
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrMismatch)
	assert.Contains(t, err.Error(), "string")
}
