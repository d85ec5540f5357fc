package sitetemplate

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel/manga-site-adapters/internal/connectors"
	"gopkg.in/yaml.v3"
)

// FetcherFactory builds the fetcher for one site, typically so every site gets
// its own rate limiter.
type FetcherFactory func(cfg Config) Fetcher

// LoadFromDir reads every *.yaml and *.yml file in dirPath as a site config.
// Broken files are reported together while the valid ones still load.
func LoadFromDir(dirPath string, newFetcher FetcherFactory, opts ...Option) ([]connectors.Connector, error) {
	trimmed := strings.TrimSpace(dirPath)
	if trimmed == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read sites dir: %w", err)
	}

	files := make([]string, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		lower := strings.ToLower(entry.Name())
		if strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml") {
			files = append(files, filepath.Join(trimmed, entry.Name()))
		}
	}
	sort.Strings(files)

	loaded := make([]connectors.Connector, 0, len(files))
	failures := make([]string, 0)

	for _, filePath := range files {
		cfg, err := LoadFile(filePath)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", filepath.Base(filePath), err))
			continue
		}
		if !cfg.IsEnabled() {
			continue
		}

		var fetcher Fetcher
		if newFetcher != nil {
			fetcher = newFetcher(cfg)
		}
		connector, err := NewConnector(cfg, connectors.KindYAML, fetcher, opts...)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", filepath.Base(filePath), err))
			continue
		}
		loaded = append(loaded, connector)
	}

	if len(failures) > 0 {
		return loaded, fmt.Errorf("site configs failed to load: %s", strings.Join(failures, " | "))
	}

	return loaded, nil
}

// LoadFile decodes one site config without validating it. Unknown keys are
// errors so a misplaced field cannot silently fall back to its default.
func LoadFile(filePath string) (Config, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(content))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return Config{}, fmt.Errorf("site config is empty")
		}
		return Config{}, err
	}
	return cfg, nil
}
