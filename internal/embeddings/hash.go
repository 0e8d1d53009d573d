package embeddings

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// DefaultHashDimension matches the all-MiniLM-L6-v2 output size.
const DefaultHashDimension = 384

// HashProvider is a deterministic, offline embedder. Each lower-cased word is
// hashed into a signed bucket so texts sharing words score higher than
// unrelated ones. Text without words, or whose buckets cancel out, falls back
// to a seeded pseudo-random vector.
type HashProvider struct {
	dimension int
}

// NewHashProvider creates a hash embedder. dimension <= 0 selects
// DefaultHashDimension.
func NewHashProvider(dimension int) (*HashProvider, error) {
	if dimension <= 0 {
		dimension = DefaultHashDimension
	}
	return &HashProvider{dimension: dimension}, nil
}

// Embed returns the hashed embedding of text.
func (h *HashProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: text cannot be empty", ErrEmptyInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return h.embed(text), nil
}

// EmbedBatch embeds each text independently.
func (h *HashProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: texts cannot be empty", ErrEmptyInput)
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := h.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("text %d: %w", i, err)
		}
		out[i] = vec
	}
	return out, nil
}

func (h *HashProvider) embed(text string) []float32 {
	vec := make([]float32, h.dimension)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		sum := fnvSum(w)
		idx := sum % uint64(h.dimension)
		if sum&(1<<63) != 0 {
			vec[idx]--
		} else {
			vec[idx]++
		}
	}
	if isZero(vec) {
		seed := fnvSum(text)
		for i := range vec {
			seed = seed*6364136223846793005 + 1442695040888963407
			vec[i] = float32(int64(seed)) / float32(math.MaxInt64)
		}
	}
	return Normalize(vec)
}

func isZero(vec []float32) bool {
	for _, v := range vec {
		if v != 0 {
			return false
		}
	}
	return true
}

func fnvSum(s string) uint64 {
	f := fnv.New64a()
	_, _ = f.Write([]byte(s))
	return f.Sum64()
}

// Dimension returns the configured dimension.
func (h *HashProvider) Dimension() int {
	return h.dimension
}

// Close is a no-op.
func (h *HashProvider) Close() error {
	return nil
}
