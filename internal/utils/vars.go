package utils

import (
	"errors"
	"time"
)

const DefaultBufferSize = 1024 * 1024 * 8 // 8MB buffer
const PartSuffix = ".part"
const ToolUserAgent = "resumer/1.0"

const (
	DefaultMaxAttempts = 20
	DefaultRetryDelay  = 2 * time.Second
	DefaultTimeout     = 3 * time.Minute
	DefaultKATimeout   = 90 * time.Second
	DefaultStagingDir  = "staging"
	DefaultCompleteDir = "completed"
)

var ErrNoFileName = errors.New("url path has no file name")

// Local-only User-Agent list
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:135.0) Gecko/20100101 Firefox/135.0",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/133.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64; rv:135.0) Gecko/20100101 Firefox/135.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.3 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/132.0.0.0 Safari/537.36 Edg/132.0.0.0",
	"curl/7.88.1",
	"Wget/1.21.4",
}

// StreamChunkSize is the read size used while appending a response body to a
// partial file.
const StreamChunkSize = 256 * 1024
