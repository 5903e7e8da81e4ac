package canon_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stupside/prism/internal/canon"
	"github.com/stupside/prism/internal/capability"
)

func TestHash64(t *testing.T) {
	t.Run("known vectors", func(t *testing.T) {
		// FNV-1a 64 offset basis for the empty input.
		assert.Equal(t, uint64(0xcbf29ce484222325), canon.Hash64(""))
		assert.Equal(t, uint64(0xaf63dc4c8601ec8c), canon.Hash64("a"))
	})

	t.Run("identical input gives identical output", func(t *testing.T) {
		enc := "data:image/png;base64,iVBORw0KGgo="
		assert.Equal(t, canon.Hash64(enc), canon.Hash64(enc))
	})

	t.Run("single byte change moves the hash", func(t *testing.T) {
		assert.NotEqual(t, canon.Hash64("data:image/png;base64,AAAA"), canon.Hash64("data:image/png;base64,AAAB"))
	})
}

func TestAbsSum(t *testing.T) {
	assert.Equal(t, float32(0), canon.AbsSum(nil))
	assert.Equal(t, float32(3.5), canon.AbsSum([]float32{-1, 0.5, -2}))

	samples := make([]float32, 5000)
	for i := range samples {
		samples[i] = float32(math.Sin(float64(i) / 10))
	}
	assert.Equal(t, canon.AbsSum(samples), canon.AbsSum(samples))
}

func TestPrecision(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		_, ok := canon.Precision(nil)
		assert.False(t, ok)
	})

	t.Run("collapses readings", func(t *testing.T) {
		env, ok := canon.Precision([]capability.PrecisionFormat{
			{RangeMin: 127, RangeMax: 127, Precision: 23},
			{RangeMin: 31, RangeMax: 30, Precision: 0},
			{RangeMin: 15, RangeMax: 14, Precision: 10},
		})
		require.True(t, ok)
		assert.Equal(t, canon.Envelope{LeastMin: 15, MostMax: 127, HighestPrecision: 23}, env)
	})

	t.Run("order independent", func(t *testing.T) {
		a := []capability.PrecisionFormat{{RangeMin: 1, RangeMax: 2, Precision: 3}, {RangeMin: 4, RangeMax: 5, Precision: 6}}
		b := []capability.PrecisionFormat{a[1], a[0]}
		ea, _ := canon.Precision(a)
		eb, _ := canon.Precision(b)
		assert.Equal(t, ea, eb)
	})
}

func TestDigest(t *testing.T) {
	type rec struct {
		A int     `json:"a"`
		B *string `json:"b"`
	}

	d1, err := canon.Digest(rec{A: 1})
	require.NoError(t, err)
	d2, err := canon.Digest(rec{A: 1})
	require.NoError(t, err)
	d3, err := canon.Digest(rec{A: 2})
	require.NoError(t, err)

	assert.Len(t, d1, 64)
	assert.Equal(t, d1, d2)
	assert.NotEqual(t, d1, d3)

	_, err = canon.Digest(make(chan int))
	assert.Error(t, err)
}
