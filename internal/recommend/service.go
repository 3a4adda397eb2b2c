package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/khanglvm/gift-hub/internal/catalog"
	"github.com/khanglvm/gift-hub/internal/embed"
	"github.com/khanglvm/gift-hub/internal/search"
	"go.uber.org/zap"
)

// StatusSuccess is the Result status for a completed recommendation.
const StatusSuccess = "success"

// OutcomeSuccess is the Outcome kind for a completed recommendation.
const OutcomeSuccess = "success"

// BundleItem is one gift in a successful result.
type BundleItem struct {
	ID    int      `json:"id"`
	Name  string   `json:"name"`
	Price float64  `json:"price"`
	Tags  []string `json:"tags"`
	Score float64  `json:"score"`
	Role  Role     `json:"role"`
}

// Result is a successful recommendation.
type Result struct {
	Status         string       `json:"status"`
	Bundle         []BundleItem `json:"bundle"`
	TotalCost      int          `json:"total_cost"`
	IntentAnalysis string       `json:"intent_analysis"`
}

// Outcome summarizes one request for observers.
type Outcome struct {
	Query      string
	Kind       string
	BundleSize int
	TotalCost  int
	Duration   time.Duration
}

// Observer is notified after every request. Implementations must not block.
type Observer interface {
	Observe(Outcome)
}

// Config holds the optional collaborators of a Service.
type Config struct {
	// PoolSize is the number of ranked candidates (default search.DefaultPoolSize).
	PoolSize int

	// Selector defaults to DefaultSelector().
	Selector *Selector

	// Ranker defaults to a SemanticRanker over the catalog.
	Ranker search.Ranker

	Logger    *zap.Logger
	Observers []Observer
}

// Service answers recommendation requests against one immutable catalog.
// It holds no mutable state and is safe for concurrent use.
type Service struct {
	catalog   *catalog.Catalog
	encoder   embed.Encoder
	ranker    search.Ranker
	selector  Selector
	poolSize  int
	logger    *zap.Logger
	observers []Observer
}

// NewService creates a recommendation service.
func NewService(cat *catalog.Catalog, enc embed.Encoder, cfg Config) (*Service, error) {
	if cat == nil {
		return nil, errors.New("catalog is required")
	}
	if enc == nil {
		return nil, errors.New("encoder is required")
	}
	if cat.ModelID() != "" && cat.ModelID() != enc.ModelID() {
		return nil, fmt.Errorf("catalog was embedded with %q but encoder is %q", cat.ModelID(), enc.ModelID())
	}

	s := &Service{
		catalog:   cat,
		encoder:   enc,
		ranker:    cfg.Ranker,
		selector:  DefaultSelector(),
		poolSize:  cfg.PoolSize,
		logger:    cfg.Logger,
		observers: append([]Observer(nil), cfg.Observers...),
	}
	if cfg.Selector != nil {
		s.selector = *cfg.Selector
	}
	if s.poolSize <= 0 {
		s.poolSize = search.DefaultPoolSize
	}
	if s.ranker == nil {
		s.ranker = &search.SemanticRanker{Catalog: cat}
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s, nil
}

// Catalog returns the catalog the service ranks against.
func (s *Service) Catalog() *catalog.Catalog { return s.catalog }

// Search ranks the catalog against free text without budget or bundling.
func (s *Service) Search(ctx context.Context, text string, k int) ([]search.Candidate, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, missingFields([]string{"query"})
	}
	if k <= 0 {
		k = s.poolSize
	}

	vec, err := s.encoder.Embed(ctx, text)
	if err != nil {
		s.logger.Error("failed to encode search text", zap.Error(err))
		return nil, internalError(fmt.Errorf("encode query: %w", err))
	}

	ranked, err := s.ranker.Rank(ctx, vec, text, k)
	if err != nil {
		s.logger.Error("failed to rank catalog", zap.Error(err))
		return nil, internalError(fmt.Errorf("rank: %w", err))
	}
	return ranked, nil
}

// Recommend runs the full pipeline for one intent. Errors are always *Failure.
func (s *Service) Recommend(ctx context.Context, in Intent) (*Result, error) {
	start := time.Now()
	in = in.Normalized()

	result, err := s.recommend(ctx, in)

	outcome := Outcome{Query: in.Query(), Duration: time.Since(start)}
	if err != nil {
		outcome.Kind = KindOf(err)
	} else {
		outcome.Kind = OutcomeSuccess
		outcome.BundleSize = len(result.Bundle)
		outcome.TotalCost = result.TotalCost
	}
	for _, o := range s.observers {
		o.Observe(outcome)
	}

	return result, err
}

func (s *Service) recommend(ctx context.Context, in Intent) (*Result, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	query := in.Query()
	vec, err := s.encoder.Embed(ctx, query)
	if err != nil {
		s.logger.Error("failed to encode intent", zap.String("query", query), zap.Error(err))
		return nil, internalError(fmt.Errorf("encode query: %w", err))
	}

	ranked, err := s.ranker.Rank(ctx, vec, query, s.poolSize)
	if err != nil {
		s.logger.Error("failed to rank catalog", zap.Error(err))
		return nil, internalError(fmt.Errorf("rank: %w", err))
	}

	affordable := FilterByBudget(ranked, in.Budget)
	if len(affordable) == 0 {
		s.logger.Debug("no candidate fits budget",
			zap.Float64("budget", in.Budget), zap.Int("ranked", len(ranked)))
		return nil, budgetTooLow()
	}

	bundle, err := s.selector.Select(affordable, in.Budget, in.Vibe)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("bundle selected",
		zap.Int("items", len(bundle.Picks)),
		zap.Int("total_cost", bundle.TotalCost),
		zap.Float64("anchor_score", bundle.Anchor().Score))

	return toResult(bundle), nil
}

func toResult(b *Bundle) *Result {
	items := make([]BundleItem, len(b.Picks))
	for i, p := range b.Picks {
		items[i] = BundleItem{
			ID:    p.ID,
			Name:  p.Name,
			Price: p.Price,
			Tags:  p.Tags,
			Score: p.Score,
			Role:  p.Role,
		}
	}
	return &Result{
		Status:         StatusSuccess,
		Bundle:         items,
		TotalCost:      b.TotalCost,
		IntentAnalysis: b.Analysis,
	}
}
