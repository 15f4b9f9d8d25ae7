package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var resetForce bool

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete indexed chunks matching the filters",
	Long: `Removes all chunks matching the given metadata filters. At least one
filter is required; use reset to clear the whole index.`,
	RunE: runDelete,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the entire chunk index",
	RunE:  runReset,
}

func init() {
	addFilterFlags(deleteCmd)
	resetCmd.Flags().BoolVar(&resetForce, "force", false, "skip the confirmation prompt")
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(resetCmd)
}

func runDelete(cmd *cobra.Command, _ []string) error {
	if pipeline == nil {
		return errors.New("pipeline not configured")
	}

	filters := currentFilters()
	if !filters.Active() {
		return errors.New("delete requires at least one filter (--entity, --year, --quarter, --source)")
	}

	n, err := pipeline.Delete(context.Background(), filters)
	if err != nil {
		return err
	}
	cmd.Printf("Deleted %d chunks\n", n)
	return nil
}

func runReset(cmd *cobra.Command, _ []string) error {
	if pipeline == nil {
		return errors.New("pipeline not configured")
	}

	if !resetForce {
		cmd.Print("This clears the entire index. Continue? [y/N] ")
		var reply string
		if _, err := fmt.Fscanln(cmd.InOrStdin(), &reply); err != nil || (reply != "y" && reply != "Y") {
			cmd.Println("Aborted.")
			return nil
		}
	}

	if err := pipeline.Reset(context.Background()); err != nil {
		return err
	}
	cmd.Println("Index cleared.")
	return nil
}
