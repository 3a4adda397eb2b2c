package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/khanglvm/gift-hub/internal/recommend"
	"github.com/spf13/cobra"
)

// NewRecommendCmd creates the 'recommend' command for one-off requests.
func NewRecommendCmd() *cobra.Command {
	var in recommend.Intent
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend a gift bundle from the command line",
		Long: `Build a gift bundle for one request and print it.

All fields are required and the budget must be greater than zero.
Exits non-zero when fields are missing or nothing fits the budget.`,
		Example: `  gift-hub recommend --relation Friend --occasion Birthday --age-group adult \
    --gender female --profession "software engineer" --vibe cozy --budget 100

  gift-hub recommend ... --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecommend(cmd, in, jsonOutput)
		},
	}

	cmd.Flags().StringVar(&in.Relation, "relation", "", "Relationship to the recipient")
	cmd.Flags().StringVar(&in.Occasion, "occasion", "", "Occasion")
	cmd.Flags().StringVar(&in.AgeGroup, "age-group", "", "Recipient age group")
	cmd.Flags().StringVar(&in.Gender, "gender", "", "Recipient gender")
	cmd.Flags().StringVar(&in.Profession, "profession", "", "Recipient profession")
	cmd.Flags().StringVar(&in.Vibe, "vibe", "", "Desired vibe")
	cmd.Flags().Float64Var(&in.Budget, "budget", 0, "Maximum total spend")
	cmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output as JSON")

	return cmd
}

func runRecommend(cmd *cobra.Command, in recommend.Intent, jsonOutput bool) error {
	rt, err := bootstrap(cmd.Context(), cmd, bootstrapOptions{history: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	out := cmd.OutOrStdout()
	result, err := rt.service.Recommend(cmd.Context(), in)
	if err != nil {
		var f *recommend.Failure
		if jsonOutput && errors.As(err, &f) {
			if werr := writeJSON(out, f); werr != nil {
				return werr
			}
		}
		return err
	}

	if jsonOutput {
		return writeJSON(out, result)
	}
	printResult(out, result)
	return nil
}

func printResult(out io.Writer, result *recommend.Result) {
	fmt.Fprintf(out, "Gift bundle (%d items, total $%d):\n\n", len(result.Bundle), result.TotalCost)
	for _, it := range result.Bundle {
		fmt.Fprintf(out, "  %-10s %-32s $%-8.2f score %.3f\n", it.Role, it.Name, it.Price, it.Score)
		fmt.Fprintf(out, "             tags: %s\n", strings.Join(it.Tags, ", "))
	}
	fmt.Fprintf(out, "\n%s\n", result.IntentAnalysis)
}

func writeJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
