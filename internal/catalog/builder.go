package catalog

import (
	"context"
	"fmt"

	"github.com/khanglvm/gift-hub/internal/embed"
	"go.uber.org/zap"
)

// Builder encodes every item from Source with Encoder.
type Builder struct {
	Source  Source
	Encoder embed.Encoder
	Workers int
	Logger  *zap.Logger
}

// Provide loads the items and embeds their search text.
func (b *Builder) Provide(ctx context.Context) (*Catalog, error) {
	log := b.Logger
	if log == nil {
		log = zap.NewNop()
	}

	items, err := b.Source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog items: %w", err)
	}

	texts := make([]string, len(items))
	for i, it := range items {
		texts[i] = it.SearchText()
	}

	vectors, err := embed.EmbedAll(ctx, b.Encoder, texts, b.Workers)
	if err != nil {
		return nil, fmt.Errorf("failed to embed catalog: %w", err)
	}

	cat, err := New(items, vectors, b.Encoder.ModelID())
	if err != nil {
		return nil, err
	}
	log.Info("catalog built",
		zap.Int("items", cat.Len()),
		zap.Int("dimensions", cat.Dim()),
		zap.String("model", cat.ModelID()))
	return cat, nil
}

// SnapshotStore persists a built catalog.
type SnapshotStore interface {
	// LoadSnapshot returns the stored items and embeddings for modelID.
	// ok is false when no snapshot exists for that model.
	LoadSnapshot(modelID string) (items []Item, embeddings [][]float32, ok bool, err error)

	// SaveSnapshot replaces the stored snapshot.
	SaveSnapshot(modelID string, items []Item, embeddings [][]float32) error
}

// SnapshotProvider serves a persisted snapshot when one exists for the
// builder's encoder and still matches the source items. Otherwise it builds
// and persists a fresh catalog.
type SnapshotProvider struct {
	Store   SnapshotStore
	Builder *Builder
	// Rebuild skips the stored snapshot and makes a failed save an error.
	Rebuild bool
	Logger  *zap.Logger
}

// Provide returns the catalog.
func (p *SnapshotProvider) Provide(ctx context.Context) (*Catalog, error) {
	log := p.Logger
	if log == nil {
		log = zap.NewNop()
	}
	modelID := p.Builder.Encoder.ModelID()

	if !p.Rebuild {
		items, vectors, ok, err := p.Store.LoadSnapshot(modelID)
		if err != nil {
			log.Warn("failed to load catalog snapshot, rebuilding", zap.Error(err))
		} else if ok {
			current, err := p.Builder.Source.Load(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to load catalog items: %w", err)
			}
			if sameItems(items, current) {
				cat, err := New(items, vectors, modelID)
				if err == nil {
					log.Info("catalog loaded from snapshot", zap.Int("items", cat.Len()), zap.String("model", modelID))
					return cat, nil
				}
				log.Warn("stored catalog snapshot is invalid, rebuilding", zap.Error(err))
			} else {
				log.Info("catalog source changed since snapshot, rebuilding")
			}
		}
	}

	cat, err := p.Builder.Provide(ctx)
	if err != nil {
		return nil, err
	}

	vectors := make([][]float32, cat.Len())
	for i := range vectors {
		vectors[i] = cat.Embedding(i)
	}
	if err := p.Store.SaveSnapshot(modelID, cat.Items(), vectors); err != nil {
		if p.Rebuild {
			return nil, fmt.Errorf("failed to persist catalog snapshot: %w", err)
		}
		log.Warn("failed to persist catalog snapshot", zap.Error(err))
	}
	return cat, nil
}

// sameItems reports whether two item lists are identical in order and content.
func sameItems(a, b []Item) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		if x.ID != y.ID || x.Name != y.Name || x.Price != y.Price || len(x.Tags) != len(y.Tags) {
			return false
		}
		for j := range x.Tags {
			if x.Tags[j] != y.Tags[j] {
				return false
			}
		}
	}
	return true
}
