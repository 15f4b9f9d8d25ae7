package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rootiq-ai/earnings-rag-app/internal/core/domain"
)

var (
	filterEntity  string
	filterYear    string
	filterQuarter string
	filterSource  string
	queryJSON     bool
)

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask a question about indexed earnings calls",
	Long: `Retrieves the most similar indexed chunks and synthesises a grounded
answer. Filters narrow retrieval to one entity, year, quarter or source.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	addFilterFlags(queryCmd)
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(queryCmd)
}

// addFilterFlags registers the shared metadata filter flags.
func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&filterEntity, "entity", "", "filter by entity ticker")
	cmd.Flags().StringVar(&filterYear, "year", "", "filter by reporting year")
	cmd.Flags().StringVar(&filterQuarter, "quarter", "", "filter by reporting quarter (Q1..Q4)")
	cmd.Flags().StringVar(&filterSource, "source", "", "filter by content source")
}

func currentFilters() domain.QueryFilters {
	return domain.QueryFilters{
		Entity:  filterEntity,
		Year:    filterYear,
		Quarter: filterQuarter,
		Source:  filterSource,
	}
}

func runQuery(cmd *cobra.Command, args []string) error {
	if pipeline == nil {
		return errors.New("pipeline not configured")
	}

	answer := pipeline.Query(context.Background(), args[0], currentFilters())

	if queryJSON {
		data, err := json.MarshalIndent(answer, "", "  ")
		if err != nil {
			return fmt.Errorf("marshalling answer: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(answer.Text)
	cmd.Println()
	cmd.Printf("Confidence: %.2f\n", answer.Confidence)
	if len(answer.Sources) > 0 {
		cmd.Println("Sources:")
		for i, src := range answer.Sources {
			m := src.Chunk.Metadata
			cmd.Printf("  [%d] %s %s %s (%.2f)\n", i+1, m.Entity, m.Year, m.Quarter, src.Score)
		}
	}
	return nil
}
