package vectorstore

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_Length(t *testing.T) {
	for _, dim := range []int{1, 2, 3, 384, 768} {
		v := make([]float32, dim)
		assert.Len(t, Encode(v), dim*4, "dim %d", dim)
	}
	assert.Empty(t, Encode(nil))
}

func TestCodec_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		v    []float32
	}{
		{name: "single", v: []float32{0.5}},
		{name: "unit axes", v: []float32{1, 0, 0, -1}},
		{name: "negative zero", v: []float32{float32(math.Copysign(0, -1)), 0}},
		{name: "extremes", v: []float32{math.MaxFloat32, -math.MaxFloat32, math.SmallestNonzeroFloat32}},
		{name: "infinities", v: []float32{float32(math.Inf(1)), float32(math.Inf(-1))}},
		{name: "fractions", v: []float32{0.1, 0.2, 0.3, 1.0 / 3.0, -2.718281828}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decode(Encode(tt.v))
			require.Len(t, got, len(tt.v))
			for i := range tt.v {
				assert.Equal(t, math.Float32bits(tt.v[i]), math.Float32bits(got[i]), "index %d", i)
			}
		})
	}
}

func TestCodec_RoundTripGenerated(t *testing.T) {
	// Deterministic pseudo-random vectors across dimensions.
	seed := uint64(42)
	next := func() float32 {
		seed = seed*6364136223846793005 + 1442695040888963407
		return float32(int64(seed)) / float32(math.MaxInt64)
	}

	for dim := 1; dim <= 64; dim++ {
		v := make([]float32, dim)
		for i := range v {
			v[i] = next() * 1000
		}
		assert.Equal(t, v, Decode(Encode(v)), "dim %d", dim)
	}
}

func TestDecode_EmptyBlob(t *testing.T) {
	assert.Empty(t, Decode([]byte{}))
}

func TestDecode_PanicsOnBadLength(t *testing.T) {
	assert.Panics(t, func() { Decode([]byte{1, 2, 3}) })
	assert.Panics(t, func() { Decode(make([]byte, 9)) })
}

func TestDot(t *testing.T) {
	assert.InDelta(t, 1.0, Dot([]float32{1, 0}, []float32{1, 0}), 1e-9)
	assert.InDelta(t, 0.0, Dot([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, Dot([]float32{0, 1}, []float32{0, -1}), 1e-9)
	// Mismatched lengths score over the shared prefix.
	assert.InDelta(t, 2.0, Dot([]float32{1, 1, 5}, []float32{1, 1}), 1e-9)
}
