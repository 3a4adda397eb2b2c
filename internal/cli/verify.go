package cli

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/khanglvm/gift-hub/internal/benchmark"
	"github.com/khanglvm/gift-hub/internal/catalog"
	"github.com/khanglvm/gift-hub/internal/config"
	"github.com/khanglvm/gift-hub/internal/embed"
	"github.com/spf13/cobra"
)

// NewVerifyCmd creates the 'verify' command for verifying configuration.
func NewVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify configuration and catalog",
		Long: `Verify that the configuration is valid, the catalog loads and the encoder
produces vectors of the catalog's size, then run one sample request.
Stored snapshots and the last day's recorded outcomes are listed when
storage is available.`,
		Example: `  gift-hub verify
  gift-hub verify --config ./gift-hub.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(cmd)
		},
	}

	return cmd
}

// runVerify validates the configuration and the catalog.
func runVerify(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	path, err := configPath(cmd)
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}
	if _, err := config.LoadFrom(path); err != nil {
		if _, missing := err.(*config.ConfigNotFoundError); !missing {
			return fmt.Errorf("configuration error: %w", err)
		}
		fmt.Fprintf(out, "• Config file: %s (not found, using defaults)\n", path)
	} else {
		fmt.Fprintf(out, "✓ Config file: %s\n", path)
	}

	rt, err := bootstrap(cmd.Context(), cmd, bootstrapOptions{})
	if err != nil {
		fmt.Fprintf(out, "✗ %v\n", err)
		return err
	}
	defer rt.Close()

	fmt.Fprintln(out, "✓ Configuration valid")
	fmt.Fprintf(out, "✓ Encoder: %s\n", rt.encoder.ModelID())
	fmt.Fprintf(out, "✓ Catalog: %d items, %d dimensions\n", rt.catalog.Len(), rt.catalog.Dim())

	if rt.catalog.Len() == 0 {
		fmt.Fprintln(out, "✗ Catalog is empty")
		return fmt.Errorf("catalog is empty")
	}

	sample := benchmark.SampleIntents[0]
	if err := checkEncoderAlignment(cmd.Context(), rt.encoder, rt.catalog, sample.Query()); err != nil {
		fmt.Fprintf(out, "✗ %v\n", err)
		return err
	}
	fmt.Fprintln(out, "✓ Embeddings aligned")

	if rt.store != nil && rt.store.Enabled() {
		fmt.Fprintf(out, "✓ Storage: %s\n", rt.store.Path())
		reportStorage(out, rt)
	} else if rt.cfg.Catalog.Snapshot {
		fmt.Fprintln(out, "• Storage: unavailable (snapshots and history disabled)")
	}

	result, err := rt.service.Recommend(cmd.Context(), sample)
	if err != nil {
		fmt.Fprintf(out, "✗ Sample request failed: %v\n", err)
		return err
	}
	fmt.Fprintf(out, "✓ Sample request: %d items, total $%d\n", len(result.Bundle), result.TotalCost)

	return nil
}

// checkEncoderAlignment embeds text and compares its size with the catalog's.
func checkEncoderAlignment(ctx context.Context, enc embed.Encoder, cat *catalog.Catalog, text string) error {
	vec, err := enc.Embed(ctx, text)
	if err != nil {
		return fmt.Errorf("encoder failed: %w", err)
	}
	if len(vec) != cat.Dim() {
		return fmt.Errorf("encoder produces %d dimensions, catalog has %d", len(vec), cat.Dim())
	}
	return nil
}

// reportStorage prints stored snapshots and a summary of the last day's outcomes.
func reportStorage(out io.Writer, rt *appRuntime) {
	models, err := rt.store.SnapshotModels()
	if err != nil {
		fmt.Fprintf(out, "✗ Snapshots: %v\n", err)
	} else {
		ids := make([]string, 0, len(models))
		for id := range models {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			marker := " "
			if id == rt.catalog.ModelID() {
				marker = "*"
			}
			fmt.Fprintf(out, "  %s snapshot %s: %d items\n", marker, id, models[id])
		}
	}

	recent, err := rt.store.RecentRecommendations(time.Now().Add(-24 * time.Hour))
	if err != nil {
		fmt.Fprintf(out, "✗ History: %v\n", err)
		return
	}
	counts := make(map[string]int)
	for _, rec := range recent {
		counts[rec.Outcome]++
	}
	kinds := make([]string, 0, len(counts))
	for k := range counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	parts := make([]string, 0, len(kinds))
	for _, k := range kinds {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[k]))
	}
	if len(parts) == 0 {
		parts = append(parts, "none")
	}
	fmt.Fprintf(out, "  history (24h): %d requests [%s]\n", len(recent), strings.Join(parts, " "))
}
