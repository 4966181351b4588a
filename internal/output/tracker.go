package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/tanq16/resumer/internal/utils"
)

type JobOutput struct {
	ID          int
	URL         string
	Status      string
	Outcome     utils.Outcome
	Downloaded  int64
	Resumed     int64 // bytes already on disk when the task started
	Retries     int
	Complete    bool
	StartTime   time.Time
	LastUpdated time.Time
	Error       error
	seen        bool
}

type ErrorReport struct {
	URL   string
	Error error
	Time  time.Time
}

// Tracker records each task's terminal state for the end-of-batch summary.
// It implements utils.Reporter.
type Tracker struct {
	outputs  map[string]*JobOutput
	mutex    sync.RWMutex
	errors   []ErrorReport
	jobCount int
	out      io.Writer
}

func NewTracker(out io.Writer) *Tracker {
	if out == nil {
		out = os.Stdout
	}
	return &Tracker{
		outputs: make(map[string]*JobOutput),
		errors:  []ErrorReport{},
		out:     out,
	}
}

func (t *Tracker) register(url string) *JobOutput {
	if info, exists := t.outputs[url]; exists {
		return info
	}
	t.jobCount++
	info := &JobOutput{
		ID:          t.jobCount,
		URL:         url,
		Status:      "pending",
		StartTime:   time.Now(),
		LastUpdated: time.Now(),
	}
	t.outputs[url] = info
	return info
}

func (t *Tracker) Started(url string) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.register(url)
}

func (t *Tracker) Progress(url string, downloaded, _ int64) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	info := t.register(url)
	if !info.seen {
		info.seen = true
		info.Resumed = downloaded
	}
	info.Downloaded = downloaded
	info.LastUpdated = time.Now()
}

func (t *Tracker) Retrying(url string, attempt int, _ error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	info := t.register(url)
	info.Retries = attempt
	info.LastUpdated = time.Now()
}

func (t *Tracker) Finished(url string, outcome utils.Outcome, err error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	info := t.register(url)
	info.Complete = true
	info.Outcome = outcome
	info.Status = outcome.String()
	info.Error = err
	info.LastUpdated = time.Now()
	if !outcome.Succeeded() {
		t.errors = append(t.errors, ErrorReport{
			URL:   url,
			Error: err,
			Time:  time.Now(),
		})
	}
}

// SessionBytes is what this run transferred, excluding the resumed prefix.
func (j *JobOutput) SessionBytes() int64 {
	return j.Downloaded - j.Resumed
}

// Counts returns how many registered jobs ended in each outcome.
func (t *Tracker) Counts() map[utils.Outcome]int {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	counts := make(map[utils.Outcome]int)
	for _, info := range t.outputs {
		if info.Complete {
			counts[info.Outcome]++
		}
	}
	return counts
}

func (t *Tracker) sortedJobs() []*JobOutput {
	var all []*JobOutput
	for _, info := range t.outputs {
		all = append(all, info)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].ID < all[j].ID
	})
	return all
}

func (t *Tracker) displayErrors() {
	if len(t.errors) == 0 {
		return
	}
	fmt.Fprintln(t.out)
	fmt.Fprintln(t.out, strings.Repeat(" ", 2)+errorStyle.Bold(true).Render("Errors:"))
	for i, report := range t.errors {
		fmt.Fprintf(t.out, "%s%s %s %s\n",
			strings.Repeat(" ", 2+2),
			errorStyle.Render(fmt.Sprintf("%d.", i+1)),
			debugStyle.Render(fmt.Sprintf("[%s]", report.Time.Format("15:04:05"))),
			errorStyle.Render(fmt.Sprintf("URL: %s", report.URL)))
		fmt.Fprintf(t.out, "%s%s\n", strings.Repeat(" ", 2+4), errorStyle.Render(fmt.Sprintf("Error: %v", report.Error)))
	}
}

// ShowSummary prints one line per job followed by totals and the error list.
func (t *Tracker) ShowSummary() {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	fmt.Fprintln(t.out)
	var succeeded, failed int
	for _, info := range t.sortedJobs() {
		elapsed := info.LastUpdated.Sub(info.StartTime).Round(time.Second)
		detail := info.Status
		if info.Outcome == utils.OutcomeCompleted && info.Downloaded > 0 {
			detail = fmt.Sprintf("%s %s %s %s %s", detail, StyleSymbols["bullet"], utils.FormatBytes(uint64(info.Downloaded)),
				StyleSymbols["bullet"], FormatSpeed(info.SessionBytes(), info.LastUpdated.Sub(info.StartTime).Seconds()))
		}
		if info.Retries > 0 {
			detail = fmt.Sprintf("%s %s retries %d", detail, StyleSymbols["bullet"], info.Retries)
		}
		fmt.Fprintf(t.out, "%s%s %s %s %s\n", strings.Repeat(" ", 2), StatusIndicator(info.Status),
			debugStyle.Render(elapsed.String()), info.URL, debugStyle.Render(detail))
		if info.Complete && info.Outcome.Succeeded() {
			succeeded++
		} else if info.Complete {
			failed++
		}
	}
	fmt.Fprintln(t.out)
	fmt.Fprintln(t.out, strings.Repeat(" ", 2)+success2Style.Render(fmt.Sprintf("Completed %d of %d", succeeded, len(t.outputs))))
	if failed > 0 {
		fmt.Fprintln(t.out, strings.Repeat(" ", 2)+errorStyle.Render(fmt.Sprintf("Failed %d of %d", failed, len(t.outputs))))
	}
	t.displayErrors()
	fmt.Fprintln(t.out)
}
