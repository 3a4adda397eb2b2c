/*
Package cli implements the gift-hub commands.

Every command resolves its configuration the same way: --config when given,
otherwise ~/.gift-hub.json, otherwise built-in defaults.
*/
package cli

import (
	"github.com/khanglvm/gift-hub/internal/config"
	"github.com/khanglvm/gift-hub/internal/version"
	"github.com/spf13/cobra"
)

// NewRootCmd assembles the command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "gift-hub",
		Short: "Budget-aware gift bundle recommender",
		Long: `gift-hub recommends a small bundle of gifts for a described recipient.

The request (relationship, occasion, age group, gender, profession, vibe and
budget) is turned into a sentence, matched semantically against the catalog,
and a bundle is picked greedily:
  • anchor     - best match costing at most 70% of the budget
  • complement - best remaining match that still fits
  • filler     - best cheap match that still fits`,
		Version:       version.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.gift-hub.json)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")

	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewRecommendCmd())
	rootCmd.AddCommand(NewCatalogCmd())
	rootCmd.AddCommand(NewBenchmarkCmd())
	rootCmd.AddCommand(NewVerifyCmd())
	rootCmd.AddCommand(NewInitCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// configPath returns --config, or the default path.
func configPath(cmd *cobra.Command) (string, error) {
	if f := cmd.Flag("config"); f != nil && f.Value.String() != "" {
		return f.Value.String(), nil
	}
	return config.GetDefaultConfigPath()
}

func debugEnabled(cmd *cobra.Command) bool {
	f := cmd.Flag("debug")
	return f != nil && f.Value.String() == "true"
}
