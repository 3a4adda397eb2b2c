package recommend

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/khanglvm/gift-hub/internal/catalog"
	"github.com/khanglvm/gift-hub/internal/embed"
	"github.com/khanglvm/gift-hub/internal/search"
)

func seedService(t *testing.T, cfg Config) *Service {
	t.Helper()
	enc := embed.NewHashEncoder(embed.DefaultDimensions)
	cat, err := (&catalog.Builder{Source: catalog.SeedSource{}, Encoder: enc}).Provide(context.Background())
	if err != nil {
		t.Fatalf("failed to build seed catalog: %v", err)
	}
	svc, err := NewService(cat, enc, cfg)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return svc
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []Outcome
}

func (r *recordingObserver) Observe(o Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, o)
}

func TestRecommend_Success(t *testing.T) {
	obs := &recordingObserver{}
	svc := seedService(t, Config{Observers: []Observer{obs}})

	in := validIntent()
	res, err := svc.Recommend(context.Background(), in)
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}

	if res.Status != StatusSuccess {
		t.Errorf("expected status success, got %q", res.Status)
	}
	if len(res.Bundle) < 1 || len(res.Bundle) > 3 {
		t.Fatalf("unexpected bundle size %d", len(res.Bundle))
	}
	if res.Bundle[0].Role != RoleAnchor {
		t.Errorf("first item should be the anchor, got %s", res.Bundle[0].Role)
	}

	var sum float64
	seen := map[int]bool{}
	for _, it := range res.Bundle {
		sum += it.Price
		if seen[it.ID] {
			t.Errorf("duplicate item %d", it.ID)
		}
		seen[it.ID] = true
	}
	if res.TotalCost != int(sum) {
		t.Errorf("total cost %d does not match item sum %.2f", res.TotalCost, sum)
	}
	if float64(res.TotalCost) > in.Budget {
		t.Errorf("total cost %d exceeds budget %.0f", res.TotalCost, in.Budget)
	}
	if res.IntentAnalysis == "" {
		t.Error("missing intent analysis")
	}

	if len(obs.outcomes) != 1 || obs.outcomes[0].Kind != OutcomeSuccess || obs.outcomes[0].BundleSize != len(res.Bundle) {
		t.Errorf("unexpected observed outcomes %+v", obs.outcomes)
	}
}

func TestRecommend_MissingFields(t *testing.T) {
	obs := &recordingObserver{}
	svc := seedService(t, Config{Observers: []Observer{obs}})

	in := validIntent()
	in.Profession = ""
	_, err := svc.Recommend(context.Background(), in)
	if !errors.Is(err, ErrInvalidIntent) {
		t.Fatalf("expected ErrInvalidIntent, got %v", err)
	}
	if len(obs.outcomes) != 1 || obs.outcomes[0].Kind != KindMissingFields {
		t.Errorf("unexpected observed outcomes %+v", obs.outcomes)
	}
}

func TestRecommend_BudgetTooLow(t *testing.T) {
	svc := seedService(t, Config{})

	in := validIntent()
	in.Budget = 1 // cheapest seed item is 5
	res, err := svc.Recommend(context.Background(), in)
	if !errors.Is(err, ErrBudgetTooLow) {
		t.Fatalf("expected ErrBudgetTooLow, got %v", err)
	}
	if res != nil {
		t.Error("no bundle may be returned on failure")
	}
	if KindOf(err) != KindBudgetTooLow {
		t.Errorf("expected kind %s, got %s", KindBudgetTooLow, KindOf(err))
	}
}

type brokenEncoder struct{ embed.Encoder }

func (brokenEncoder) Embed(context.Context, string) ([]float32, error) {
	return nil, errors.New("model file corrupted")
}

func TestRecommend_EncodingFailure(t *testing.T) {
	svc := seedService(t, Config{})
	svc.encoder = brokenEncoder{Encoder: svc.encoder}

	_, err := svc.Recommend(context.Background(), validIntent())
	if !errors.Is(err, ErrInternal) {
		t.Fatalf("expected ErrInternal, got %v", err)
	}
	if KindOf(err) != KindInternal {
		t.Errorf("expected kind %s, got %s", KindInternal, KindOf(err))
	}
}

type fixedRanker []search.Candidate

func (f fixedRanker) Rank(context.Context, []float32, string, int) ([]search.Candidate, error) {
	return f, nil
}

func TestRecommend_SingleAffordableItem(t *testing.T) {
	svc := seedService(t, Config{Ranker: fixedRanker{
		cand(1, 150, 0.9),
		cand(2, 45, 0.8),
		cand(3, 70, 0.7),
	}})

	in := validIntent()
	in.Budget = 50
	res, err := svc.Recommend(context.Background(), in)
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}
	if len(res.Bundle) != 1 || res.Bundle[0].ID != 2 {
		t.Fatalf("expected only item 2, got %+v", res.Bundle)
	}
	if res.TotalCost != 45 {
		t.Errorf("expected total cost 45, got %d", res.TotalCost)
	}
}

func TestRecommend_EmptyCatalog(t *testing.T) {
	enc := embed.NewHashEncoder(8)
	cat, _ := catalog.New(nil, nil, enc.ModelID())
	svc, err := NewService(cat, enc, Config{})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	_, err = svc.Recommend(context.Background(), validIntent())
	if !errors.Is(err, ErrBudgetTooLow) {
		t.Errorf("expected ErrBudgetTooLow for empty catalog, got %v", err)
	}
}

func TestRecommend_Concurrent(t *testing.T) {
	svc := seedService(t, Config{})

	want, err := svc.Recommend(context.Background(), validIntent())
	if err != nil {
		t.Fatalf("Recommend failed: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan string, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := svc.Recommend(context.Background(), validIntent())
			if err != nil {
				errs <- err.Error()
				return
			}
			if len(got.Bundle) != len(want.Bundle) || got.TotalCost != want.TotalCost {
				errs <- "concurrent result differs"
				return
			}
			for j := range got.Bundle {
				if got.Bundle[j].ID != want.Bundle[j].ID {
					errs <- "concurrent bundle order differs"
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}

func TestNewService_Validation(t *testing.T) {
	enc := embed.NewHashEncoder(8)
	cat, _ := catalog.New(nil, nil, "other-model")

	if _, err := NewService(nil, enc, Config{}); err == nil {
		t.Error("expected error for nil catalog")
	}
	if _, err := NewService(cat, nil, Config{}); err == nil {
		t.Error("expected error for nil encoder")
	}
	if _, err := NewService(cat, enc, Config{}); err == nil {
		t.Error("expected error for model mismatch")
	}
}

func TestSearch(t *testing.T) {
	svc := seedService(t, Config{})

	got, err := svc.Search(context.Background(), "coffee mug", 5)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 candidates, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Errorf("scores not descending at %d", i)
		}
	}

	all, err := svc.Search(context.Background(), "gift", 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(all) != search.DefaultPoolSize {
		t.Errorf("k <= 0 should use the pool size, got %d", len(all))
	}

	_, err = svc.Search(context.Background(), "   ", 5)
	if !errors.Is(err, ErrInvalidIntent) {
		t.Errorf("blank text should be invalid, got %v", err)
	}
}
