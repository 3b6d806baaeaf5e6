package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/vernebot/internal/core/domain"
	"github.com/custodia-labs/vernebot/internal/core/services"
	"github.com/custodia-labs/vernebot/internal/logger"
)

var (
	ingestDir   string
	ingestIndex string
	ingestWatch bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Build the knowledge index",
	Long: `Reads every PDF and text file in the knowledge directory, splits the
text into overlapping chunks, embeds them and saves the vector index.

Files that cannot be read are skipped and reported. Chunks whose embedding
batch fails are dropped. The previous index is replaced only when the new
one is saved.

With --watch, the directory is re-ingested whenever a file changes.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestDir, "dir", "", "knowledge directory (default from settings)")
	ingestCmd.Flags().StringVar(&ingestIndex, "index", "", "index bundle path (default from settings)")
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "re-ingest when the knowledge directory changes")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}
	if err := requireValidConfig(); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	dir := settings.Knowledge.Dir
	if ingestDir != "" {
		dir = ingestDir
	}
	index := settings.Index.Path
	if ingestIndex != "" {
		index = ingestIndex
	}

	ctx := cmd.Context()

	cmd.Printf("Ingesting %s into %s...\n", dir, index)
	progress.enable()
	report, err := ingestService.Ingest(ctx, dir, index)
	progress.disable()
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}
	printIngestReport(cmd, report)

	if !ingestWatch {
		return nil
	}

	cmd.Printf("Watching %s for changes (Ctrl+C to stop)...\n", dir)
	err = ingestService.Watch(ctx, dir, index, func(report *domain.IngestReport, err error) {
		if err != nil {
			cmd.Printf("Re-ingest failed: %v\n", err)
			return
		}
		printIngestReport(cmd, report)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}

func printIngestReport(cmd *cobra.Command, report *domain.IngestReport) {
	if report == nil {
		return
	}
	cmd.Println()
	cmd.Println("Ingest complete")
	cmd.Printf("  Documents: %d\n", report.Documents)
	cmd.Printf("  Chunks:    %d\n", report.Chunks)
	cmd.Printf("  Embedded:  %d\n", report.Embedded)
	if report.Dropped > 0 {
		cmd.Printf("  Dropped:   %d (embedding failures)\n", report.Dropped)
	}
	if len(report.Skipped) > 0 {
		cmd.Printf("  Skipped:   %d file(s)\n", len(report.Skipped))
		for _, source := range report.Skipped {
			cmd.Printf("    - %s\n", source)
		}
	}
	if err := services.IngestFailures(report); err != nil {
		logger.Debug("Ingest failures: %v", err)
	}
	cmd.Printf("  Took:      %s\n", report.Duration.Round(time.Millisecond))
	cmd.Println()
}
