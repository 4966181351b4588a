package utils

import "time"

type HTTPClientConfig struct {
	Timeout        time.Duration
	KATimeout      time.Duration
	ProxyURL       string
	ProxyUsername  string
	ProxyPassword  string
	UserAgent      string
	BearerToken    string
	Headers        map[string]string
	HighThreadMode bool // advanced socket options for many parallel transfers
}

// JobState is the on-disk state of a single URL, inferred from which of its two
// paths exist.
type JobState string

const (
	StateMissing  JobState = "missing"
	StatePartial  JobState = "partial"
	StateComplete JobState = "complete"
)

type JobStatus struct {
	URL         string
	Name        string
	State       JobState
	PartialSize int64
}
