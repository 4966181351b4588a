package source

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tanq16/resumer/internal/utils"
	"gopkg.in/yaml.v3"
)

// ListFile reads URLs from disk. Files ending in .yaml or .yml hold either a
// sequence or a "urls:" key whose items are plain strings or {link: URL}
// entries; anything else is one URL per line with # comments.
type ListFile struct {
	Path string
}

type listEntry struct {
	Link string `yaml:"link"`
}

func (e *listEntry) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		e.Link = node.Value
		return nil
	}
	type plain listEntry
	return node.Decode((*plain)(e))
}

type listDocument struct {
	URLs []listEntry `yaml:"urls"`
}

func (l ListFile) URLs(context.Context) ([]string, error) {
	path, err := utils.ExpandPath(l.Path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading URL list: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return parseYAMLList(data)
	default:
		return parseTextList(data)
	}
}

func parseYAMLList(data []byte) ([]string, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("error parsing URL list: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}
	var entries []listEntry
	doc := root.Content[0]
	if doc.Kind == yaml.SequenceNode {
		if err := doc.Decode(&entries); err != nil {
			return nil, fmt.Errorf("error parsing URL list: %w", err)
		}
	} else {
		var list listDocument
		if err := doc.Decode(&list); err != nil {
			return nil, fmt.Errorf("error parsing URL list: %w", err)
		}
		entries = list.URLs
	}
	var urls []string
	for _, entry := range entries {
		if link := strings.TrimSpace(entry.Link); link != "" {
			urls = append(urls, link)
		}
	}
	return urls, nil
}

func parseTextList(data []byte) ([]string, error) {
	var urls []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error parsing URL list: %w", err)
	}
	return urls, nil
}
