package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Compute missing face embeddings for enrolled users",
	Long: `Compute face embeddings for every enrolled user that has a photo but no
embedding yet. Photos are downloaded from the configured bucket and sent to
the embedding server; results are written back to the database.

Examples:
  # Backfill with a progress bar
  lab-kiosk backfill

  # JSON output for scripting
  lab-kiosk backfill --json`,
	RunE: runBackfill,
}

func init() {
	rootCmd.AddCommand(backfillCmd)

	backfillCmd.Flags().Bool("json", false, "Output as JSON instead of progress bar")
}

// BackfillResult represents the result of a backfill run
type BackfillResult struct {
	Success       bool     `json:"success"`
	Candidates    int      `json:"candidates"`
	Computed      int      `json:"computed"`
	Failed        int      `json:"failed"`
	Skipped       int      `json:"skipped"`
	Errors        []string `json:"errors,omitempty"`
	DurationMs    int64    `json:"duration_ms"`
	DurationHuman string   `json:"duration_human,omitempty"`
}

func runBackfill(cmd *cobra.Command, args []string) error {
	jsonOutput := mustGetBool(cmd, "json")
	cfg := loadConfig(cmd)
	log := newLogger(cfg)
	ctx := context.Background()

	store, err := openStore(&cfg.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	cache, err := newGallery(ctx, cfg, store, newExtractor(cfg), log)
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	progress := func(done, total int) {
		if jsonOutput {
			return
		}
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetDescription("Computing embeddings"),
				progressbar.OptionShowCount(),
				progressbar.OptionShowIts(),
				progressbar.OptionSetItsString("users"),
				progressbar.OptionShowElapsedTimeOnFinish(),
				progressbar.OptionSetPredictTime(true),
				progressbar.OptionFullWidth(),
			)
		}
		bar.Set(done)
	}

	start := time.Now()
	report, err := cache.RefreshWithProgress(ctx, progress)
	if bar != nil {
		bar.Finish()
		fmt.Println()
	}
	if err != nil {
		return fmt.Errorf("backfill: %w", err)
	}
	elapsed := time.Since(start)

	result := BackfillResult{
		Success:       report.Failed == 0,
		Candidates:    report.Candidates,
		Computed:      report.Computed,
		Failed:        report.Failed,
		Skipped:       report.Skipped,
		DurationMs:    elapsed.Milliseconds(),
		DurationHuman: elapsed.Round(time.Millisecond).String(),
	}
	for _, e := range multierr.Errors(report.Err) {
		result.Errors = append(result.Errors, e.Error())
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Printf("Candidates: %d\n", result.Candidates)
	fmt.Printf("Computed:   %d\n", result.Computed)
	fmt.Printf("Failed:     %d\n", result.Failed)
	fmt.Printf("Skipped:    %d\n", result.Skipped)
	for _, e := range result.Errors {
		fmt.Printf("  - %s\n", e)
	}
	fmt.Printf("Done in %s\n", result.DurationHuman)
	return nil
}
