package vector

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// DefaultDimensions is the embedding width used when none is configured.
const DefaultDimensions = 128

// HashingEmbedder is a deterministic feature-hashing embedder. Each token of
// the input text is hashed into one of the vector's dimensions and the result
// is L2-normalized. It carries no model weights, which keeps variant
// indexing fully reproducible and dependency-free; swapping in a real
// embedding service only requires implementing Embed.
type HashingEmbedder struct {
	dims int
}

// NewHashingEmbedder creates an embedder with the given vector width.
// Non-positive widths fall back to DefaultDimensions.
func NewHashingEmbedder(dims int) *HashingEmbedder {
	if dims <= 0 {
		dims = DefaultDimensions
	}
	return &HashingEmbedder{dims: dims}
}

// Embed maps the text to a normalized dense vector.
func (e *HashingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dims)

	for _, token := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New64a()
		_, _ = h.Write([]byte(token))
		sum := h.Sum64()

		idx := int(sum % uint64(e.dims))
		// The next hash bit decides the sign, spreading tokens across both
		// halves of each dimension.
		sign := float32(1)
		if (sum>>63)&1 == 1 {
			sign = -1
		}
		vec[idx] += sign
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= scale
		}
	}

	return vec, nil
}
