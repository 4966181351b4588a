package utils

// Outcome is the terminal state of one URL's task.
type Outcome int

const (
	OutcomeSkipped   Outcome = iota // completed file already present
	OutcomeCompleted                // partial file promoted
	OutcomeFailed                   // attempt budget exhausted
	OutcomeAborted                  // fatal filesystem error or unusable URL
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSkipped:
		return "skipped"
	case OutcomeCompleted:
		return "completed"
	case OutcomeFailed:
		return "failed"
	case OutcomeAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Succeeded reports whether the URL ended with a completed file on disk.
func (o Outcome) Succeeded() bool {
	return o == OutcomeSkipped || o == OutcomeCompleted
}

// Reporter observes task life cycles. Implementations must be safe for
// concurrent use; every task calls from its own goroutine.
type Reporter interface {
	Started(url string)
	Progress(url string, downloaded, total int64)
	Retrying(url string, attempt int, err error)
	Finished(url string, outcome Outcome, err error)
}

type MultiReporter []Reporter

func (m MultiReporter) Started(url string) {
	for _, r := range m {
		r.Started(url)
	}
}

func (m MultiReporter) Progress(url string, downloaded, total int64) {
	for _, r := range m {
		r.Progress(url, downloaded, total)
	}
}

func (m MultiReporter) Retrying(url string, attempt int, err error) {
	for _, r := range m {
		r.Retrying(url, attempt, err)
	}
}

func (m MultiReporter) Finished(url string, outcome Outcome, err error) {
	for _, r := range m {
		r.Finished(url, outcome, err)
	}
}

type NopReporter struct{}

func (NopReporter) Started(string)                  {}
func (NopReporter) Progress(string, int64, int64)   {}
func (NopReporter) Retrying(string, int, error)     {}
func (NopReporter) Finished(string, Outcome, error) {}
