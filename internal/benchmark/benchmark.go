/*
Package benchmark measures recommendation latency.

It replays a fixed set of sample intents through a recommender for a number
of iterations and reports latency percentiles and outcome counts. Failures
such as budget_too_low are counted, not treated as benchmark errors.
*/
package benchmark

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/khanglvm/gift-hub/internal/recommend"
)

// Recommender is the part of recommend.Service the benchmark drives.
type Recommender interface {
	Recommend(ctx context.Context, in recommend.Intent) (*recommend.Result, error)
}

// SampleIntents covers typical requests plus one that cannot be satisfied.
var SampleIntents = []recommend.Intent{
	{Relation: "Friend", Occasion: "Birthday", AgeGroup: "young-adult", Gender: "female", Profession: "software engineer", Vibe: "cozy", Budget: 100},
	{Relation: "Father", Occasion: "Retirement", AgeGroup: "senior", Gender: "male", Profession: "teacher", Vibe: "relaxing", Budget: 150},
	{Relation: "Colleague", Occasion: "Farewell", AgeGroup: "adult", Gender: "male", Profession: "designer", Vibe: "creative", Budget: 60},
	{Relation: "Sister", Occasion: "Graduation", AgeGroup: "young-adult", Gender: "female", Profession: "student", Vibe: "fun", Budget: 40},
	{Relation: "Partner", Occasion: "Anniversary", AgeGroup: "adult", Gender: "female", Profession: "chef", Vibe: "luxury", Budget: 300},
	{Relation: "Nephew", Occasion: "Christmas", AgeGroup: "kid", Gender: "male", Profession: "student", Vibe: "playful", Budget: 1},
}

// LatencyStats summarizes request durations.
type LatencyStats struct {
	Min  time.Duration `json:"min"`
	Mean time.Duration `json:"mean"`
	P50  time.Duration `json:"p50"`
	P95  time.Duration `json:"p95"`
	Max  time.Duration `json:"max"`
}

// BenchmarkResult contains the measurements of one run.
type BenchmarkResult struct {
	Iterations int            `json:"iterations"`
	Requests   int            `json:"requests"`
	Outcomes   map[string]int `json:"outcomes"`
	Latency    LatencyStats   `json:"latency"`
	Elapsed    time.Duration  `json:"elapsed"`
	Throughput float64        `json:"throughputPerSecond"`
}

// RunBenchmark sends every intent iterations times, sequentially.
func RunBenchmark(ctx context.Context, rec Recommender, intents []recommend.Intent, iterations int) (*BenchmarkResult, error) {
	if iterations <= 0 {
		return nil, fmt.Errorf("iterations must be > 0, got %d", iterations)
	}
	if len(intents) == 0 {
		return nil, fmt.Errorf("no intents to benchmark")
	}

	durations := make([]time.Duration, 0, iterations*len(intents))
	outcomes := make(map[string]int)

	start := time.Now()
	for i := 0; i < iterations; i++ {
		for _, in := range intents {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			t0 := time.Now()
			_, err := rec.Recommend(ctx, in)
			durations = append(durations, time.Since(t0))

			if err != nil {
				outcomes[recommend.KindOf(err)]++
			} else {
				outcomes[recommend.OutcomeSuccess]++
			}
		}
	}
	elapsed := time.Since(start)

	result := &BenchmarkResult{
		Iterations: iterations,
		Requests:   len(durations),
		Outcomes:   outcomes,
		Latency:    summarize(durations),
		Elapsed:    elapsed,
	}
	if elapsed > 0 {
		result.Throughput = float64(len(durations)) / elapsed.Seconds()
	}
	return result, nil
}

// summarize computes latency statistics; durations is sorted in place.
func summarize(durations []time.Duration) LatencyStats {
	if len(durations) == 0 {
		return LatencyStats{}
	}
	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	var total time.Duration
	for _, d := range durations {
		total += d
	}

	return LatencyStats{
		Min:  durations[0],
		Mean: total / time.Duration(len(durations)),
		P50:  percentile(durations, 50),
		P95:  percentile(durations, 95),
		Max:  durations[len(durations)-1],
	}
}

// percentile uses the nearest-rank method on sorted input.
func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	rank := int(math.Ceil(p / 100 * float64(len(sorted))))
	if rank < 1 {
		rank = 1
	}
	if rank > len(sorted) {
		rank = len(sorted)
	}
	return sorted[rank-1]
}

// FormatResult formats the benchmark result for display.
func FormatResult(result *BenchmarkResult) string {
	var sb strings.Builder

	row := func(format string, args ...interface{}) {
		sb.WriteString(fmt.Sprintf("║  %-60s║\n", fmt.Sprintf(format, args...)))
	}
	blank := func() { sb.WriteString("║" + strings.Repeat(" ", 62) + "║\n") }
	rule := func() { sb.WriteString("╠" + strings.Repeat("═", 62) + "╣\n") }

	sb.WriteString("╔" + strings.Repeat("═", 62) + "╗\n")
	row("        RECOMMENDATION LATENCY BENCHMARK RESULTS")
	rule()
	blank()
	row("REQUESTS")
	row("   Iterations: %d", result.Iterations)
	row("   Requests:   %d", result.Requests)
	row("   Elapsed:    %s", result.Elapsed.Round(time.Microsecond))
	row("   Throughput: %.1f req/s", result.Throughput)
	blank()
	rule()
	blank()
	row("LATENCY")
	row("   min  %s", result.Latency.Min.Round(time.Microsecond))
	row("   mean %s", result.Latency.Mean.Round(time.Microsecond))
	row("   p50  %s", result.Latency.P50.Round(time.Microsecond))
	row("   p95  %s", result.Latency.P95.Round(time.Microsecond))
	row("   max  %s", result.Latency.Max.Round(time.Microsecond))
	blank()
	rule()
	blank()
	row("OUTCOMES")
	kinds := make([]string, 0, len(result.Outcomes))
	for k := range result.Outcomes {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		row("   %-16s %d", k, result.Outcomes[k])
	}
	blank()
	sb.WriteString("╚" + strings.Repeat("═", 62) + "╝\n")

	return sb.String()
}
