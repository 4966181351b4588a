package downloader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tanq16/resumer/internal/utils"
)

type Config struct {
	StagingDir   string
	CompletedDir string
	MaxAttempts  int
	RetryDelay   time.Duration
	Reporter     utils.Reporter
	// Logger defaults to the global zerolog logger.
	Logger *zerolog.Logger
}

// Downloader runs the per-URL state machine:
//
//	CheckComplete -> Skip | Attempting
//	Attempting    -> Success | Retry | FatalAbort
//	Retry         -> Attempting (after RetryDelay) until MaxAttempts
//
// It is safe for concurrent use as long as no two calls share a file name.
type Downloader struct {
	cfg      Config
	client   utils.HTTPDoer
	reporter utils.Reporter
	logger   zerolog.Logger
}

func New(cfg Config, client utils.HTTPDoer) *Downloader {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = utils.DefaultMaxAttempts
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = 0
	}
	d := &Downloader{
		cfg:      cfg,
		client:   client,
		reporter: cfg.Reporter,
		logger:   log.Logger,
	}
	if d.reporter == nil {
		d.reporter = utils.NopReporter{}
	}
	if cfg.Logger != nil {
		d.logger = *cfg.Logger
	}
	d.logger = d.logger.With().Str("op", "downloader").Logger()
	return d
}

// PrepareDirs creates the staging and completed directories.
func (d *Downloader) PrepareDirs() error {
	for _, dir := range []string{d.cfg.StagingDir, d.cfg.CompletedDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fileErr("mkdir", dir, err)
		}
	}
	return nil
}

// Download takes one URL to a terminal state. Failures are logged and reported
// as an Outcome; they never escape as errors.
func (d *Downloader) Download(ctx context.Context, rawURL string) utils.Outcome {
	d.reporter.Started(rawURL)
	outcome, err := d.process(ctx, rawURL)
	d.reporter.Finished(rawURL, outcome, err)
	return outcome
}

func (d *Downloader) process(ctx context.Context, rawURL string) (utils.Outcome, error) {
	job, err := NewJob(rawURL, d.cfg.StagingDir, d.cfg.CompletedDir)
	if err != nil {
		d.logger.Error().Err(err).Msgf("Cannot derive a file name for %s. Aborting.", rawURL)
		return utils.OutcomeAborted, err
	}
	logger := d.logger.With().Str("file", job.Name).Logger()

	done, err := d.checkComplete(job, logger)
	if err != nil {
		logger.Error().Err(err).Msgf("Unexpected error with %s. Aborting.", rawURL)
		return utils.OutcomeAborted, err
	}
	if done {
		return utils.OutcomeSkipped, nil
	}

	var lastErr error
	for attempt := 1; attempt <= d.cfg.MaxAttempts; attempt++ {
		logger.Info().Msgf("Attempting to download: %s (attempt %d/%d)", rawURL, attempt, d.cfg.MaxAttempts)
		err := d.attempt(ctx, job, logger)
		if err == nil {
			return utils.OutcomeCompleted, nil
		}
		lastErr = err
		logger.Error().Err(err).Msgf("Error downloading %s on attempt %d", rawURL, attempt)
		if IsFatal(err) {
			logger.Error().Msgf("Unexpected error with %s. Aborting.", rawURL)
			return utils.OutcomeAborted, err
		}
		if attempt == d.cfg.MaxAttempts {
			break
		}
		d.reporter.Retrying(rawURL, attempt, err)
		if err := wait(ctx, d.cfg.RetryDelay); err != nil {
			logger.Error().Err(err).Msgf("Retry wait interrupted for %s. Aborting.", rawURL)
			return utils.OutcomeFailed, fmt.Errorf("retry wait interrupted: %w", err)
		}
	}
	logger.Error().Msgf("Max attempts (%d) reached for %s. Aborting.", d.cfg.MaxAttempts, rawURL)
	return utils.OutcomeFailed, fmt.Errorf("download failed after %d attempts: %w", d.cfg.MaxAttempts, lastErr)
}

// checkComplete reports whether the completed file already exists, removing an
// orphaned partial if one is left behind.
func (d *Downloader) checkComplete(job Job, logger zerolog.Logger) (bool, error) {
	done, err := job.completed()
	if err != nil || !done {
		return false, err
	}
	if err := os.Remove(job.TempPath); err == nil {
		logger.Debug().Msgf("Removed stale partial file %s", job.TempPath)
	} else if !errors.Is(err, fs.ErrNotExist) {
		logger.Warn().Err(err).Msgf("Could not remove stale partial file %s", job.TempPath)
	}
	logger.Info().Msgf("No need to download: %s. %s already exists.", job.URL, job.CompletedPath)
	return true, nil
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
