package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show collection statistics",
	RunE:  runStats,
}

func init() {
	addFilterFlags(statsCmd)
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output statistics as JSON")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if pipeline == nil {
		return errors.New("pipeline not configured")
	}

	stats := pipeline.Stats(context.Background(), currentFilters())

	if statsJSON {
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("marshalling stats: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Total chunks:      %d\n", stats.TotalChunks)
	cmd.Printf("Unique entities:   %d\n", stats.UniqueEntities)
	cmd.Printf("Latest period:     %s\n", stats.LatestPeriod)
	cmd.Printf("Days since update: %d\n", stats.DaysSinceUpdate)
	cmd.Printf("Ingested today:    %d\n", stats.IngestedToday)

	if len(stats.EntityDistribution) > 0 {
		cmd.Println("Distribution:")
		entities := make([]string, 0, len(stats.EntityDistribution))
		for entity := range stats.EntityDistribution {
			entities = append(entities, entity)
		}
		sort.Strings(entities)
		for _, entity := range entities {
			cmd.Printf("  %-8s %d\n", entity, stats.EntityDistribution[entity])
		}
	}
	return nil
}
