package cli

import (
	"github.com/khanglvm/gift-hub/internal/benchmark"
	"github.com/spf13/cobra"
)

// NewBenchmarkCmd creates the 'benchmark' command for latency testing.
func NewBenchmarkCmd() *cobra.Command {
	var jsonOutput bool
	var iterations int

	cmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Measure recommendation latency",
		Long: `Replay a fixed set of sample requests through the full pipeline
(encode, rank, filter, select) and report latency percentiles and outcome
counts. The samples include one request that no item can satisfy, so a
budget_too_low count is expected.

History recording is disabled while benchmarking.`,
		Example: `  # Run benchmark with current config
  gift-hub benchmark

  # More iterations, JSON output
  gift-hub benchmark --iterations 100 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBenchmark(cmd, iterations, jsonOutput)
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	cmd.Flags().IntVarP(&iterations, "iterations", "n", 10, "Passes over the sample requests")

	return cmd
}

// runBenchmark executes the latency benchmark.
func runBenchmark(cmd *cobra.Command, iterations int, jsonOutput bool) error {
	rt, err := bootstrap(cmd.Context(), cmd, bootstrapOptions{})
	if err != nil {
		return err
	}
	defer rt.Close()

	result, err := benchmark.RunBenchmark(cmd.Context(), rt.service, benchmark.SampleIntents, iterations)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		return writeJSON(out, result)
	}
	_, err = out.Write([]byte(benchmark.FormatResult(result)))
	return err
}
