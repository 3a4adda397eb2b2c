/*
Package embed maps text into a fixed-length vector space.

The same Encoder must be used for catalog items and for request queries so
that cosine similarity between them is meaningful. Two encoders are
provided: HashEncoder, a deterministic hashed bag-of-words that needs no
model files, and ONNXEncoder, which runs a sentence-transformer model
through ONNX Runtime.
*/
package embed

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Encoder turns text into an embedding vector.
type Encoder interface {
	// Embed encodes a single string.
	Embed(ctx context.Context, text string) ([]float32, error)

	// ModelID identifies the model (and its parameters) that produced a vector.
	// Embeddings from different model ids are not comparable.
	ModelID() string

	// Close releases any native resources.
	Close() error
}

// EmbedAll encodes texts concurrently with at most workers goroutines.
// The result is index-aligned with texts.
func EmbedAll(ctx context.Context, enc Encoder, texts []string, workers int) ([][]float32, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	out := make([][]float32, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			vec, err := enc.Embed(gctx, text)
			if err != nil {
				return fmt.Errorf("embed text %d: %w", i, err)
			}
			out[i] = vec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Encoder kinds accepted by Open.
const (
	KindHash = "hash"
	KindONNX = "onnx"
)

// Open builds an encoder of the given kind.
func Open(kind string, dimensions int, onnx ONNXConfig) (Encoder, error) {
	switch kind {
	case "", KindHash:
		return NewHashEncoder(dimensions), nil
	case KindONNX:
		if onnx.Dimensions <= 0 {
			onnx.Dimensions = dimensions
		}
		return NewONNXEncoder(onnx)
	default:
		return nil, fmt.Errorf("unknown encoder kind %q", kind)
	}
}
