// Package source enumerates the URLs a batch should download.
package source

import (
	"context"
	"strings"
)

type Source interface {
	URLs(ctx context.Context) ([]string, error)
}

// Static is a fixed, ordered URL list.
type Static []string

func (s Static) URLs(context.Context) ([]string, error) {
	var urls []string
	for _, u := range s {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	return urls, nil
}

// Multi concatenates sources in order and drops repeated URLs.
type Multi []Source

func (m Multi) URLs(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)
	var urls []string
	for _, src := range m {
		list, err := src.URLs(ctx)
		if err != nil {
			return nil, err
		}
		for _, u := range list {
			if seen[u] {
				continue
			}
			seen[u] = true
			urls = append(urls, u)
		}
	}
	return urls, nil
}
