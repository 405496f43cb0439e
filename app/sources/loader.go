package sources

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Source is one configured feed source with its per-source options. Options
// are seeded into the store before ingest so they persist alongside the
// source's state.
type Source struct {
	URL                      string `yaml:"url"`
	Transform                string `yaml:"transform"`
	AllowRawOnTransformError bool   `yaml:"allow_raw_on_transform_error"`
	RetainAllEntries         *bool  `yaml:"retain_all_entries"`
}

// Retain reports whether the source keeps items that disappear from the
// upstream feed. Defaults to true.
func (s Source) Retain() bool {
	return s.RetainAllEntries == nil || *s.RetainAllEntries
}

type sourcesFile struct {
	Sources []Source `yaml:"sources"`
}

// Load reads the optional sources file. An empty path or a missing file
// yields no sources without error.
func Load(path string) ([]Source, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}

	var file sourcesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse sources file: %w", err)
	}

	for i, source := range file.Sources {
		if source.URL == "" {
			return nil, fmt.Errorf("source at index %d is missing a url", i)
		}
	}

	return file.Sources, nil
}
