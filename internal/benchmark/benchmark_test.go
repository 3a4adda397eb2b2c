package benchmark

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/khanglvm/gift-hub/internal/catalog"
	"github.com/khanglvm/gift-hub/internal/embed"
	"github.com/khanglvm/gift-hub/internal/recommend"
)

// fakeRecommender fails every intent with a budget below 10.
type fakeRecommender struct {
	calls int
}

func (f *fakeRecommender) Recommend(_ context.Context, in recommend.Intent) (*recommend.Result, error) {
	f.calls++
	if in.Budget < 10 {
		return nil, &recommend.Failure{Kind: recommend.KindBudgetTooLow, Message: "Budget too low for this specific request."}
	}
	return &recommend.Result{Status: recommend.StatusSuccess}, nil
}

func TestRunBenchmark(t *testing.T) {
	rec := &fakeRecommender{}

	result, err := RunBenchmark(context.Background(), rec, SampleIntents, 3)
	if err != nil {
		t.Fatalf("RunBenchmark failed: %v", err)
	}

	want := 3 * len(SampleIntents)
	if result.Requests != want || rec.calls != want {
		t.Errorf("expected %d requests, got %d (calls %d)", want, result.Requests, rec.calls)
	}
	if result.Outcomes["budget_too_low"] != 3 {
		t.Errorf("expected 3 budget_too_low outcomes, got %d", result.Outcomes["budget_too_low"])
	}
	if result.Outcomes["success"] != want-3 {
		t.Errorf("expected %d successes, got %d", want-3, result.Outcomes["success"])
	}

	l := result.Latency
	if l.Min > l.P50 || l.P50 > l.P95 || l.P95 > l.Max {
		t.Errorf("latency stats out of order: %+v", l)
	}
}

func TestRunBenchmarkInvalidInput(t *testing.T) {
	if _, err := RunBenchmark(context.Background(), &fakeRecommender{}, SampleIntents, 0); err == nil {
		t.Error("expected error for zero iterations")
	}
	if _, err := RunBenchmark(context.Background(), &fakeRecommender{}, nil, 1); err == nil {
		t.Error("expected error for no intents")
	}
}

func TestRunBenchmarkCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunBenchmark(ctx, &fakeRecommender{}, SampleIntents, 1)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRunBenchmarkSeedCatalog(t *testing.T) {
	enc := embed.NewHashEncoder(embed.DefaultDimensions)
	cat, err := (&catalog.Builder{Source: catalog.SeedSource{}, Encoder: enc}).Provide(context.Background())
	if err != nil {
		t.Fatalf("failed to build catalog: %v", err)
	}
	svc, err := recommend.NewService(cat, enc, recommend.Config{})
	if err != nil {
		t.Fatal(err)
	}

	result, err := RunBenchmark(context.Background(), svc, SampleIntents, 2)
	if err != nil {
		t.Fatalf("RunBenchmark failed: %v", err)
	}
	// The budget-1 sample can never be satisfied.
	if result.Outcomes["budget_too_low"] < 2 {
		t.Errorf("expected at least 2 budget_too_low outcomes, got %v", result.Outcomes)
	}
	if result.Outcomes["internal_error"] != 0 {
		t.Errorf("unexpected internal errors: %v", result.Outcomes)
	}
}

func TestPercentile(t *testing.T) {
	ms := func(n ...int) []time.Duration {
		out := make([]time.Duration, len(n))
		for i, v := range n {
			out[i] = time.Duration(v) * time.Millisecond
		}
		return out
	}

	tests := []struct {
		name   string
		sorted []time.Duration
		p      float64
		want   time.Duration
	}{
		{"empty", nil, 50, 0},
		{"single", ms(7), 95, 7 * time.Millisecond},
		{"median of ten", ms(1, 2, 3, 4, 5, 6, 7, 8, 9, 10), 50, 5 * time.Millisecond},
		{"p95 of ten", ms(1, 2, 3, 4, 5, 6, 7, 8, 9, 10), 95, 10 * time.Millisecond},
		{"p95 of twenty", ms(1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20), 95, 19 * time.Millisecond},
		{"p0 clamps", ms(3, 4), 0, 3 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := percentile(tt.sorted, tt.p); got != tt.want {
				t.Errorf("percentile(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	stats := summarize([]time.Duration{30, 10, 20})
	if stats.Min != 10 || stats.Max != 30 || stats.Mean != 20 || stats.P50 != 20 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if (summarize(nil) != LatencyStats{}) {
		t.Error("expected zero stats for no samples")
	}
}

func TestFormatResult(t *testing.T) {
	result := &BenchmarkResult{
		Iterations: 2,
		Requests:   12,
		Outcomes:   map[string]int{"success": 10, "budget_too_low": 2},
		Latency:    LatencyStats{Min: time.Millisecond, P50: 2 * time.Millisecond, P95: 3 * time.Millisecond, Max: 4 * time.Millisecond},
		Elapsed:    30 * time.Millisecond,
		Throughput: 400,
	}

	out := FormatResult(result)
	for _, want := range []string{"LATENCY BENCHMARK", "Requests:   12", "p95  3ms", "budget_too_low", "400.0 req/s"} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q:\n%s", want, out)
		}
	}

	// Outcomes are listed alphabetically.
	if strings.Index(out, "budget_too_low") > strings.Index(out, "success ") {
		t.Error("outcomes should be sorted")
	}
}

func TestBenchmarkResultJSON(t *testing.T) {
	data, err := json.Marshal(&BenchmarkResult{Outcomes: map[string]int{"success": 1}})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"throughputPerSecond"`) {
		t.Errorf("unexpected JSON: %s", data)
	}
}
