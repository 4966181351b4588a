package utils

import (
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
)

func GetRandomUserAgent() string {
	return userAgents[time.Now().UnixNano()%int64(len(userAgents))]
}

func ParseHeaderArgs(headers []string) map[string]string {
	result := make(map[string]string)
	for _, header := range headers {
		parts := strings.SplitN(header, ":", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])
			result[key] = value
		}
	}
	return result
}

func FormatBytes(bytes uint64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := uint64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// FileNameFromURL returns the last segment of the URL path. Query strings and
// fragments never contribute to the name.
func FileNameFromURL(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	name := path.Base(parsed.Path)
	if name == "" || name == "." || name == "/" || name == ".." {
		return "", fmt.Errorf("%w: %s", ErrNoFileName, rawURL)
	}
	return name, nil
}

func TempPath(stagingDir, name string) string {
	return filepath.Join(stagingDir, name+PartSuffix)
}

func CompletedPath(completedDir, name string) string {
	return filepath.Join(completedDir, name)
}

func ExpandPath(p string) (string, error) {
	if p == "" {
		return p, nil
	}
	return homedir.Expand(p)
}

// InspectJob reports what the two directories say about a URL without any
// network access.
func InspectJob(rawURL, stagingDir, completedDir string) (JobStatus, error) {
	status := JobStatus{URL: rawURL, State: StateMissing}
	name, err := FileNameFromURL(rawURL)
	if err != nil {
		return status, err
	}
	status.Name = name
	if _, err := os.Stat(CompletedPath(completedDir, name)); err == nil {
		status.State = StateComplete
		return status, nil
	} else if !os.IsNotExist(err) {
		return status, err
	}
	info, err := os.Stat(TempPath(stagingDir, name))
	if err == nil {
		status.State = StatePartial
		status.PartialSize = info.Size()
		return status, nil
	} else if !os.IsNotExist(err) {
		return status, err
	}
	return status, nil
}

// CleanStaging removes partial files from stagingDir. With all unset only
// orphans (partials whose completed file already exists) are removed.
func CleanStaging(stagingDir, completedDir string, all bool) ([]string, error) {
	entries, err := os.ReadDir(stagingDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var removed []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), PartSuffix) {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), PartSuffix)
		if !all {
			if _, err := os.Stat(CompletedPath(completedDir, name)); err != nil {
				continue
			}
		}
		filePath := filepath.Join(stagingDir, entry.Name())
		if err := os.Remove(filePath); err != nil {
			return removed, err
		}
		removed = append(removed, filePath)
	}
	return removed, nil
}
