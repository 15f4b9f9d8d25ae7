package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rootiq-ai/earnings-rag-app/internal/adapters/driven/source/filesystem"
)

var ingestWatch bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [artifact.json...]",
	Short: "Index raw earnings artifacts",
	Long: `Chunks, embeds and indexes one or more raw artifact files. Artifacts
are JSON files named {entity}_{year}_{quarter}_{timestamp}.json.

With --watch, blocks and indexes every new artifact written to the raw
directory until interrupted.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestWatch, "watch", false, "watch the raw directory for new artifacts")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if pipeline == nil {
		return errors.New("pipeline not configured")
	}
	if len(args) == 0 && !ingestWatch {
		return errors.New("provide artifact files or --watch")
	}

	ctx := context.Background()
	for _, path := range args {
		doc, err := source.Load(path)
		if err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
		if err := pipeline.Index(ctx, *doc); err != nil {
			return fmt.Errorf("indexing %s: %w", path, err)
		}
		cmd.Printf("Indexed %s %s %s from %s\n", doc.Entity, doc.Year, doc.Quarter, path)
	}

	if !ingestWatch {
		return nil
	}
	return watchArtifacts(cmd)
}

// watchArtifacts blocks, feeding new raw artifacts to the pipeline until
// the process is interrupted.
func watchArtifacts(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler := func(ctx context.Context, path string) {
		doc, err := source.Load(path)
		if err != nil {
			log.Error("Loading artifact %s: %v", path, err)
			return
		}
		if err := pipeline.Index(ctx, *doc); err != nil {
			log.Error("Indexing artifact %s: %v", path, err)
		}
	}

	watcher, err := filesystem.NewWatcher(source.Dir(), handler, log)
	if err != nil {
		return err
	}
	defer watcher.Close()

	watcher.Start(ctx)
	cmd.Printf("Watching %s for new artifacts (Ctrl-C to stop)\n", source.Dir())
	<-ctx.Done()
	return nil
}
