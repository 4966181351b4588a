package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/tanq16/resumer/internal/downloader"
	"github.com/tanq16/resumer/internal/output"
	"github.com/tanq16/resumer/internal/progress"
	"github.com/tanq16/resumer/internal/scheduler"
	"github.com/tanq16/resumer/internal/utils"
)

func newDownloadCmd() *cobra.Command {
	var maxAttempts int
	var maxConcurrent int
	var retryDelay time.Duration
	var showProgress bool

	cmd := &cobra.Command{
		Use:   "download [URL...] [--urllist FILE] [--s3 s3://BUCKET/PREFIX]",
		Short: "Download every URL, resuming partial files and retrying transient failures",
		Long: `Download every URL of the batch concurrently.

Partial files live in the staging directory as <name>.part and are resumed with
range requests; finished files are moved into the completed directory. The
command exits 0 even when individual URLs fail; failures are reported in the
logs and the summary.

Examples:
  resumer download https://example.com/a.iso https://example.com/b.iso
  resumer download --urllist urls.yaml --staging /tmp/stage --completed ~/iso
  resumer download --s3 s3://mybucket/datasets/ --max-concurrent 8`,
		Args: cobra.ArbitraryArgs,
		Run: func(cmd *cobra.Command, args []string) {
			flags := cmd.Flags()
			if flags.Changed("max-attempts") {
				settings.MaxAttempts = maxAttempts
			}
			if flags.Changed("retry-delay") {
				settings.RetryDelay = retryDelay
			}
			if flags.Changed("max-concurrent") {
				settings.MaxConcurrent = maxConcurrent
			}
			if err := settings.Validate(); err != nil {
				output.PrintError(err.Error())
				os.Exit(1)
			}

			ctx := context.Background()
			urls, err := collectURLs(ctx, args, false)
			if err != nil {
				output.PrintError(fmt.Sprintf("Failed to read URL list: %v", err))
				os.Exit(1)
			}
			if len(urls) == 0 {
				output.PrintError("No URL or URL list provided")
				os.Exit(1)
			}

			tracker := output.NewTracker(os.Stdout)
			reporters := utils.MultiReporter{tracker}
			var console io.Writer = os.Stderr
			var ui *progress.UI
			if showProgress {
				ui = progress.New(len(urls))
				reporters = append(reporters, ui)
				console = ui.Writer()
			}
			closeLog := setupLogging(console)

			httpConfig := globalHTTPConfig
			httpConfig.HighThreadMode = len(urls) > 5
			d := downloader.New(downloader.Config{
				StagingDir:   settings.Staging,
				CompletedDir: settings.Completed,
				MaxAttempts:  settings.MaxAttempts,
				RetryDelay:   settings.RetryDelay,
				Reporter:     reporters,
			}, utils.NewResumerHTTPClient(httpConfig))
			if err := d.PrepareDirs(); err != nil {
				closeLog()
				output.PrintError(fmt.Sprintf("Cannot prepare directories: %v", err))
				os.Exit(1)
			}

			output.PrintInfo(fmt.Sprintf("Files download process was started for %d URL(s)...", len(urls)))
			scheduler.New(d, settings.MaxConcurrent).RunAll(ctx, urls)
			// drain queued records while the bars can still print them
			closeLog()
			if ui != nil {
				ui.Wait()
			}
			tracker.ShowSummary()
			counts := tracker.Counts()
			if unfinished := counts[utils.OutcomeFailed] + counts[utils.OutcomeAborted]; unfinished > 0 {
				output.PrintWarning(fmt.Sprintf("%d URL(s) did not complete; run the same command again to resume them.", unfinished))
				return
			}
			output.PrintSuccess("Files download process has finished.")
		},
	}

	cmd.Flags().IntVarP(&maxAttempts, "max-attempts", "r", utils.DefaultMaxAttempts, "Attempts per URL before giving up")
	cmd.Flags().DurationVar(&retryDelay, "retry-delay", utils.DefaultRetryDelay, "Fixed wait between attempts")
	cmd.Flags().IntVarP(&maxConcurrent, "max-concurrent", "w", 0, "Maximum parallel downloads (0 = one per URL)")
	cmd.Flags().BoolVar(&showProgress, "progress", false, "Show per-file progress bars")
	return cmd
}
