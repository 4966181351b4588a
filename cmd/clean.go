package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tanq16/resumer/internal/output"
	"github.com/tanq16/resumer/internal/utils"
)

func newCleanCmd() *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove orphaned partial files from the staging directory",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			removed, err := utils.CleanStaging(settings.Staging, settings.Completed, all)
			if err != nil {
				output.PrintError(fmt.Sprintf("Error cleaning up temporary files: %v", err))
				os.Exit(1)
			}
			for _, path := range removed {
				fmt.Println(output.FDebug("  removed " + path))
			}
			output.PrintSuccess(fmt.Sprintf("Temporary files cleaned up (%d removed)", len(removed)))
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Remove every partial file, not only orphans")
	return cmd
}
