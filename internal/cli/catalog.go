package cli

import (
	"fmt"
	"strings"

	"github.com/khanglvm/gift-hub/internal/catalog"
	"github.com/khanglvm/gift-hub/internal/search"
	"github.com/spf13/cobra"
)

// NewCatalogCmd creates the 'catalog' command group.
func NewCatalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and rebuild the gift catalog",
		Long: `Inspect and rebuild the gift catalog.

Items come from catalog.path (YAML or JSON) or the built-in seed. Embeddings
are stored in catalog.database and reused while the encoder and items are
unchanged.`,
	}

	cmd.AddCommand(newCatalogListCmd())
	cmd.AddCommand(newCatalogBuildCmd())
	cmd.AddCommand(newCatalogSearchCmd())

	return cmd
}

func newCatalogListCmd() *cobra.Command {
	var jsonOutput bool
	var tag string
	var maxPrice float64

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List catalog items",
		Example: `  gift-hub catalog list
  gift-hub catalog list --tag coffee --max-price 30
  gift-hub catalog list --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(cmd.Context(), cmd, bootstrapOptions{})
			if err != nil {
				return err
			}
			defer rt.Close()

			items := filterItems(rt.catalog.Items(), tag, maxPrice)
			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, items)
			}

			fmt.Fprintf(out, "Catalog items (%d of %d):\n\n", len(items), rt.catalog.Len())
			for _, it := range items {
				fmt.Fprintf(out, "  %3d  %-32s $%8.2f  %s\n", it.ID, it.Name, it.Price, strings.Join(it.Tags, ", "))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	cmd.Flags().StringVar(&tag, "tag", "", "Only items with this tag")
	cmd.Flags().Float64Var(&maxPrice, "max-price", 0, "Only items at or below this price (0 = no limit)")

	return cmd
}

// filterItems keeps items carrying tag (when set) priced at most maxPrice (when > 0).
func filterItems(items []catalog.Item, tag string, maxPrice float64) []catalog.Item {
	out := make([]catalog.Item, 0, len(items))
	for _, it := range items {
		if tag != "" && !it.HasTag(tag) {
			continue
		}
		if maxPrice > 0 && it.Price > maxPrice {
			continue
		}
		out = append(out, it)
	}
	return out
}

func newCatalogBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Re-embed the catalog and replace the stored snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(cmd.Context(), cmd, bootstrapOptions{rebuild: true})
			if err != nil {
				return err
			}
			defer rt.Close()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Embedded %d items (%d dimensions, model %s)\n",
				rt.catalog.Len(), rt.catalog.Dim(), rt.catalog.ModelID())
			switch {
			case !rt.cfg.Catalog.Snapshot:
				fmt.Fprintln(out, "  Snapshots are disabled (catalog.snapshot = false)")
			case rt.store == nil || !rt.store.Enabled():
				fmt.Fprintln(out, "✗ Snapshot not saved: storage unavailable")
				return fmt.Errorf("snapshot not saved: storage at %s is unavailable", rt.cfg.Catalog.Database)
			default:
				fmt.Fprintf(out, "✓ Snapshot saved to %s\n", rt.store.Path())
			}
			return nil
		},
	}
	return cmd
}

func newCatalogSearchCmd() *cobra.Command {
	var jsonOutput bool
	var limit int
	var mode string

	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Rank catalog items against free text",
		Args:  cobra.MinimumNArgs(1),
		Example: `  gift-hub catalog search coffee lover
  gift-hub catalog search --mode keyword headphones`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if mode != "semantic" && mode != "keyword" {
				return fmt.Errorf("unknown mode %q (want semantic or keyword)", mode)
			}

			rt, err := bootstrap(cmd.Context(), cmd, bootstrapOptions{keyword: mode == "keyword"})
			if err != nil {
				return err
			}
			defer rt.Close()

			text := strings.Join(args, " ")
			var cands []search.Candidate
			if mode == "keyword" {
				cands, err = rt.keyword.SearchBM25(text, limit)
			} else {
				cands, err = rt.service.Search(cmd.Context(), text, limit)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				return writeJSON(out, cands)
			}
			fmt.Fprintf(out, "Results for %q (%s):\n\n", text, mode)
			for _, c := range cands {
				fmt.Fprintf(out, "  %2d. %-32s $%8.2f  score %.3f\n", c.Rank, c.Name, c.Price, c.Score)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum results")
	cmd.Flags().StringVar(&mode, "mode", "semantic", "semantic or keyword")

	return cmd
}
