package output

import (
	"fmt"
	"strings"

	"github.com/tanq16/resumer/internal/utils"
)

// FormatSpeed calculates and formats download speed
func FormatSpeed(bytes int64, elapsed float64) string {
	if elapsed == 0 {
		return "0 B/s"
	}
	bps := float64(bytes) / elapsed
	formatted := utils.FormatBytes(uint64(bps))
	return formatted[:len(formatted)-1] + "B/s" // Replace "B" with "B/s"
}

// StatusIndicator maps a job or outcome state onto a coloured symbol.
func StatusIndicator(status string) string {
	switch status {
	case "success", "completed", "skipped", "complete":
		return successStyle.Render(StyleSymbols["pass"])
	case "error", "failed", "aborted":
		return errorStyle.Render(StyleSymbols["fail"])
	case "warning", "partial":
		return warningStyle.Render(StyleSymbols["warning"])
	case "pending", "missing":
		return pendingStyle.Render(StyleSymbols["pending"])
	default:
		return infoStyle.Render(StyleSymbols["bullet"])
	}
}

// FormatStatusLine renders one row of the status table.
func FormatStatusLine(status utils.JobStatus) string {
	detail := string(status.State)
	if status.State == utils.StatePartial {
		detail = fmt.Sprintf("%s %s", detail, utils.FormatBytes(uint64(status.PartialSize)))
	}
	name := status.Name
	if name == "" {
		name = status.URL
	}
	return fmt.Sprintf("%s%s %s %s", strings.Repeat(" ", 2), StatusIndicator(string(status.State)), name, debugStyle.Render(detail))
}
