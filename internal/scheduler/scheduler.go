package scheduler

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/tanq16/resumer/internal/utils"
	"golang.org/x/sync/semaphore"
)

// Downloader is the per-URL task the scheduler fans out.
type Downloader interface {
	Download(ctx context.Context, url string) utils.Outcome
}

type Scheduler struct {
	downloader Downloader
	// MaxConcurrent caps in-flight tasks; 0 means one goroutine per URL with no cap.
	MaxConcurrent int
}

func New(d Downloader, maxConcurrent int) *Scheduler {
	return &Scheduler{downloader: d, MaxConcurrent: max(maxConcurrent, 0)}
}

// RunAll starts one task per URL and returns once every task has reached a
// terminal state. A task's failure never stops the others.
func (s *Scheduler) RunAll(ctx context.Context, urls []string) {
	var sem *semaphore.Weighted
	if s.MaxConcurrent > 0 {
		sem = semaphore.NewWeighted(int64(s.MaxConcurrent))
	}
	seen := make(map[string]string, len(urls))
	var wg sync.WaitGroup
	started := 0
	for _, url := range urls {
		if name, err := utils.FileNameFromURL(url); err == nil {
			if first, dup := seen[name]; dup {
				log.Warn().Str("op", "scheduler").Msgf("Skipping %s: %s already writes %s", url, first, name)
				continue
			}
			seen[name] = url
		}
		started++
		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			if sem != nil {
				if err := sem.Acquire(ctx, 1); err != nil {
					log.Error().Str("op", "scheduler").Err(err).Msgf("Could not start download for %s", url)
					return
				}
				defer sem.Release(1)
			}
			s.downloader.Download(ctx, url)
		}(url)
	}
	log.Debug().Str("op", "scheduler").Msgf("Started %d download tasks", started)
	wg.Wait()
}
