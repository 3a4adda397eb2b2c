package embed

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
)

// DefaultDimensions matches the output size of MiniLM-class sentence models.
const DefaultDimensions = 384

const subTokenWeight = 0.5

// stopWords are template and filler words that carry no gift semantics.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "for": {}, "who": {}, "is": {}, "of": {},
	"and": {}, "to": {}, "with": {}, "gift": {}, "relationship": {}, "occasion": {},
}

// HashEncoder is a deterministic hashed bag-of-words encoder.
//
// Each token is hashed into one of Dimensions buckets with a hash-derived
// sign, and the vector is L2-normalized. It is safe for concurrent use and
// never fails.
type HashEncoder struct {
	dim int
}

// NewHashEncoder creates a hashing encoder. dim <= 0 selects DefaultDimensions.
func NewHashEncoder(dim int) *HashEncoder {
	if dim <= 0 {
		dim = DefaultDimensions
	}
	return &HashEncoder{dim: dim}
}

// Embed encodes text.
func (h *HashEncoder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float64, h.dim)

	for _, tok := range Tokenize(text) {
		if _, skip := stopWords[tok]; skip {
			continue
		}
		h.add(vec, tok, 1)
		for _, sub := range SubTokens(tok) {
			if _, skip := stopWords[sub]; skip {
				continue
			}
			h.add(vec, sub, subTokenWeight)
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}

	out := make([]float32, h.dim)
	if norm == 0 {
		return out, nil
	}
	norm = math.Sqrt(norm)
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out, nil
}

func (h *HashEncoder) add(vec []float64, token string, weight float64) {
	hasher := fnv.New64a()
	hasher.Write([]byte(token))
	sum := hasher.Sum64()

	idx := int(sum % uint64(h.dim))
	if sum>>63 == 1 {
		weight = -weight
	}
	vec[idx] += weight
}

// ModelID identifies the encoder configuration.
func (h *HashEncoder) ModelID() string {
	return fmt.Sprintf("hash-bow-%d", h.dim)
}

// Dimensions returns the vector length.
func (h *HashEncoder) Dimensions() int { return h.dim }

// Close is a no-op.
func (h *HashEncoder) Close() error { return nil }
