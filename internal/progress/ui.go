// Package progress draws one transfer bar per in-flight download.
package progress

import (
	"fmt"
	"io"
	"os"
	"path"
	"sync"
	"sync/atomic"

	"github.com/tanq16/resumer/internal/utils"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
	"golang.org/x/term"
)

// UI implements utils.Reporter on top of mpb. Off a terminal it renders nothing
// and Writer falls back to stderr.
type UI struct {
	progress   *mpb.Progress
	mu         sync.Mutex
	bars       map[string]*fileBar
	isTerminal bool
	total      int
}

type fileBar struct {
	bar     *mpb.Bar
	index   int
	name    string
	retries atomic.Int32
}

func New(totalFiles int) *UI {
	return newUI(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())), totalFiles)
}

func newUI(out io.Writer, isTerminal bool, totalFiles int) *UI {
	if !isTerminal {
		out = io.Discard
	}
	return &UI{
		progress:   mpb.New(mpb.WithOutput(out), mpb.WithWidth(64)),
		bars:       make(map[string]*fileBar),
		isTerminal: isTerminal,
		total:      totalFiles,
	}
}

// Writer returns a writer that prints above the bars.
func (u *UI) Writer() io.Writer {
	if u.isTerminal {
		return u.progress
	}
	return os.Stderr
}

func (u *UI) barFor(url string) *fileBar {
	u.mu.Lock()
	defer u.mu.Unlock()
	if fb, ok := u.bars[url]; ok {
		return fb
	}
	fb := &fileBar{index: len(u.bars) + 1, name: displayName(url)}
	fb.bar = u.progress.New(0,
		mpb.BarStyle().Lbound("[").Filler("█").Tip("█").Padding("░").Rbound("]"),
		mpb.PrependDecorators(
			decor.Any(func(s decor.Statistics) string {
				label := fmt.Sprintf("[%d/%d] %s", fb.index, u.total, fb.name)
				if r := fb.retries.Load(); r > 0 {
					return fmt.Sprintf("%s (retry %d)", label, r)
				}
				return label
			}, decor.WCSyncSpaceR),
		),
		mpb.AppendDecorators(
			decor.CountersKibiByte("% .1f / % .1f", decor.WCSyncSpace),
			decor.Name("  "),
			decor.Percentage(decor.WCSyncSpace),
		),
		mpb.BarRemoveOnComplete(),
	)
	u.bars[url] = fb
	return fb
}

func (u *UI) Started(url string) {
	u.barFor(url)
}

func (u *UI) Progress(url string, downloaded, total int64) {
	fb := u.barFor(url)
	if total > 0 {
		fb.bar.SetTotal(total, false)
	}
	fb.bar.SetCurrent(downloaded)
}

func (u *UI) Retrying(url string, attempt int, _ error) {
	fb := u.barFor(url)
	fb.retries.Store(int32(attempt))
}

func (u *UI) Finished(url string, outcome utils.Outcome, err error) {
	fb := u.barFor(url)
	if outcome.Succeeded() {
		// -1 takes the current value as the total and marks the bar complete
		fb.bar.SetTotal(-1, true)
		fmt.Fprintf(u.Writer(), "✓ %s %s\n", fb.name, outcome)
		return
	}
	fb.bar.Abort(false)
	fmt.Fprintf(u.Writer(), "✗ %s %s: %v (after %d retries)\n", fb.name, outcome, err, fb.retries.Load())
}

// Wait blocks until every bar is complete or aborted.
func (u *UI) Wait() {
	u.progress.Wait()
}

func displayName(url string) string {
	if name, err := utils.FileNameFromURL(url); err == nil {
		return name
	}
	return path.Base(url)
}
