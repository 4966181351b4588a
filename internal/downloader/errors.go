package downloader

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
)

var (
	ErrShortBody     = errors.New("response body shorter than the partial file")
	ErrRangeMismatch = errors.New("content-range does not start at the resume offset")
)

// maxErrorBody caps how much of an unexpected response is kept for diagnostics.
const maxErrorBody = 1024

// FileError marks a failure of the local filesystem. Retrying cannot fix it, so
// a task that hits one stops immediately and leaves its partial file untouched.
type FileError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("filesystem %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

func fileErr(op, path string, err error) error {
	return &FileError{Op: op, Path: path, Err: err}
}

// IsFatal reports whether err should end a task without further attempts.
func IsFatal(err error) bool {
	var fe *FileError
	return errors.As(err, &fe)
}

// StatusError is returned for any response status the state machine does not
// handle. It is retryable.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error: %d %s, body: %s", e.Code, http.StatusText(e.Code), e.Body)
}

func newStatusError(resp *http.Response) *StatusError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}

// parseContentRange parses "bytes start-end/total". total is -1 when the server
// sends "*".
func parseContentRange(header string) (start, end, total int64, err error) {
	header = strings.TrimPrefix(strings.TrimSpace(header), "bytes ")
	parts := strings.Split(header, "/")
	if len(parts) != 2 {
		return 0, 0, 0, fmt.Errorf("invalid Content-Range format: %s", header)
	}
	rangeParts := strings.Split(parts[0], "-")
	if len(rangeParts) != 2 {
		return 0, 0, 0, fmt.Errorf("invalid Content-Range format: %s", header)
	}
	start, err = strconv.ParseInt(rangeParts[0], 10, 64)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid start byte: %w", err)
	}
	end, err = strconv.ParseInt(rangeParts[1], 10, 64)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid end byte: %w", err)
	}
	if parts[1] == "*" {
		total = -1
	} else {
		total, err = strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid total bytes: %w", err)
		}
	}
	return start, end, total, nil
}
