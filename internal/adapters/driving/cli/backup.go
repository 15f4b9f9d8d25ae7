package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Snapshot the data directory",
	RunE:  runBackup,
}

func init() {
	rootCmd.AddCommand(backupCmd)
}

func runBackup(cmd *cobra.Command, _ []string) error {
	if backupSvc == nil {
		return errors.New("backup service not configured")
	}
	if err := backupSvc.Run(context.Background()); err != nil {
		return err
	}
	cmd.Println("Backup complete")
	return nil
}
