package downloader

import (
	"errors"
	"io/fs"
	"os"

	"github.com/tanq16/resumer/internal/utils"
)

// Job is the transient record of one URL. Its durable state lives entirely in
// which of TempPath and CompletedPath exist and how long TempPath is.
type Job struct {
	URL           string
	Name          string
	TempPath      string
	CompletedPath string
}

func NewJob(rawURL, stagingDir, completedDir string) (Job, error) {
	name, err := utils.FileNameFromURL(rawURL)
	if err != nil {
		return Job{}, err
	}
	return Job{
		URL:           rawURL,
		Name:          name,
		TempPath:      utils.TempPath(stagingDir, name),
		CompletedPath: utils.CompletedPath(completedDir, name),
	}, nil
}

// partial returns the resume offset and whether a partial file exists at all.
func (j Job) partial() (int64, bool, error) {
	info, err := os.Stat(j.TempPath)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fileErr("stat", j.TempPath, err)
	}
	return info.Size(), true, nil
}

func (j Job) completed() (bool, error) {
	_, err := os.Stat(j.CompletedPath)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fileErr("stat", j.CompletedPath, err)
	}
	return true, nil
}
