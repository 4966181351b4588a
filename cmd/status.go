package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tanq16/resumer/internal/output"
	"github.com/tanq16/resumer/internal/utils"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [URL...]",
		Short: "Show what the staging and completed directories say about each URL",
		Args:  cobra.ArbitraryArgs,
		Run: func(cmd *cobra.Command, args []string) {
			urls, err := collectURLs(context.Background(), args, true)
			if err != nil {
				output.PrintError(fmt.Sprintf("Failed to read URL list: %v", err))
				os.Exit(1)
			}
			if len(urls) == 0 {
				output.PrintError("No URL or URL list provided")
				os.Exit(1)
			}
			counts := make(map[utils.JobState]int)
			output.PrintHeader(fmt.Sprintf("Staging %s %s Completed %s", settings.Staging, output.StyleSymbols["bullet"], settings.Completed))
			for _, url := range urls {
				status, err := utils.InspectJob(url, settings.Staging, settings.Completed)
				if err != nil {
					fmt.Printf("  %s %s %s\n", output.StatusIndicator("error"), url, output.FError(err.Error()))
					continue
				}
				counts[status.State]++
				fmt.Println(output.FormatStatusLine(status))
			}
			fmt.Println()
			output.PrintInfo(fmt.Sprintf("%d complete, %d partial, %d missing",
				counts[utils.StateComplete], counts[utils.StatePartial], counts[utils.StateMissing]))
		},
	}
}
