package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/tanq16/resumer/internal/utils"
)

// attempt performs one GET, resuming from the current partial length, and
// promotes the partial file when the server signals the transfer is whole.
func (d *Downloader) attempt(ctx context.Context, job Job, logger zerolog.Logger) error {
	offset, exists, err := job.partial()
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, job.URL, nil)
	if err != nil {
		return fmt.Errorf("error creating GET request: %w", err)
	}
	if offset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
		logger.Debug().Msgf("Resuming download from offset %d", offset)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("error executing GET request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusRequestedRangeNotSatisfiable && exists:
		logger.Info().Msgf("File already fully downloaded: %s", job.URL)
		d.reporter.Progress(job.URL, offset, offset)
		return d.promote(job, logger)
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusPartialContent:
		written, err := d.stream(job, resp, offset, logger)
		if err != nil {
			return err
		}
		logger.Info().Msgf("File downloaded: %s from %s, size: %d bytes", job.CompletedPath, job.URL, written)
		return d.promote(job, logger)
	default:
		return newStatusError(resp)
	}
}

// stream appends the response body to the partial file. It never truncates:
// a server that ignores the range header has its first offset bytes skipped.
func (d *Downloader) stream(job Job, resp *http.Response, offset int64, logger zerolog.Logger) (int64, error) {
	total := int64(-1)
	if resp.StatusCode == http.StatusPartialContent {
		if cr := resp.Header.Get("Content-Range"); cr != "" {
			start, _, size, err := parseContentRange(cr)
			if err != nil {
				return 0, err
			}
			if start != offset {
				return 0, fmt.Errorf("%w: want %d, got %d", ErrRangeMismatch, offset, start)
			}
			total = size
		}
		if total < 0 && resp.ContentLength >= 0 {
			total = offset + resp.ContentLength
		}
	} else {
		if resp.ContentLength >= 0 {
			total = resp.ContentLength
		}
		if offset > 0 {
			logger.Warn().Msgf("Server ignored range request (status %d), skipping %d bytes already on disk", resp.StatusCode, offset)
			if _, err := io.CopyN(io.Discard, resp.Body, offset); err != nil {
				if errors.Is(err, io.EOF) {
					return 0, fmt.Errorf("%w: %s", ErrShortBody, job.URL)
				}
				return 0, fmt.Errorf("error reading response body: %w", err)
			}
		}
	}

	outFile, err := os.OpenFile(job.TempPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return 0, fileErr("open", job.TempPath, err)
	}
	closed := false
	defer func() {
		if !closed {
			outFile.Close()
		}
	}()

	d.reporter.Progress(job.URL, offset, total)
	buf := utils.GetChunkBuffer()
	defer utils.PutChunkBuffer(buf)
	buffer := *buf
	var written int64
	for {
		bytesRead, readErr := resp.Body.Read(buffer)
		if bytesRead > 0 {
			if _, writeErr := outFile.Write(buffer[:bytesRead]); writeErr != nil {
				return written, fileErr("write", job.TempPath, writeErr)
			}
			written += int64(bytesRead)
			d.reporter.Progress(job.URL, offset+written, total)
		}
		if readErr != nil {
			if readErr == io.EOF {
				break
			}
			return written, fmt.Errorf("error reading response body: %w", readErr)
		}
	}
	if err := outFile.Sync(); err != nil {
		return written, fileErr("sync", job.TempPath, err)
	}
	closed = true
	if err := outFile.Close(); err != nil {
		return written, fileErr("close", job.TempPath, err)
	}
	return written, nil
}

// promote is the single commit point of a job.
func (d *Downloader) promote(job Job, logger zerolog.Logger) error {
	if err := os.Rename(job.TempPath, job.CompletedPath); err != nil {
		return fileErr("rename", job.TempPath, err)
	}
	logger.Debug().Msgf("Promoted %s to %s", job.TempPath, job.CompletedPath)
	return nil
}
