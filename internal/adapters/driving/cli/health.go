package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Run a health check against the backends and data directory",
	RunE:  runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, _ []string) error {
	if health == nil {
		return errors.New("health checker not configured")
	}

	report := health.Check(context.Background())

	cmd.Printf("Embedding backend:  %s\n", okOrDown(report.EmbeddingOK))
	cmd.Printf("Generation backend: %s\n", okOrDown(report.GenerationOK))
	cmd.Printf("Free disk:          %d MB\n", report.FreeDiskBytes/(1<<20))
	cmd.Printf("Log size:           %d MB\n", report.LogSizeBytes/(1<<20))

	if report.Healthy() {
		cmd.Println("Status: healthy")
		return nil
	}
	cmd.Println("Warnings:")
	for _, w := range report.Warnings {
		cmd.Printf("  - %s\n", w)
	}
	return nil
}

func okOrDown(ok bool) string {
	if ok {
		return "ok"
	}
	return "unreachable"
}
