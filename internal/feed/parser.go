package feed

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"pipewatch/internal/terminal"
)

var (
	ErrEmptySnapshot   = errors.New("snapshot is empty")
	ErrInvalidYAML     = errors.New("invalid YAML in snapshot")
	ErrInvalidSnapshot = errors.New("invalid snapshot")
	ErrMissingName     = errors.New("entry missing required name")
)

// Document is a decoded run snapshot: the plugins and instances of one
// publishing run plus any log records captured with it.
type Document struct {
	Version    int
	Plugins    []Entry
	Instances  []Entry
	Records    []terminal.Record
	SourceFile string
}

type Entry struct {
	Name string         `yaml:"name"`
	Data map[string]any `yaml:"data"`
}

type snapshot struct {
	Version   int              `yaml:"version"`
	Plugins   []Entry          `yaml:"plugins"`
	Instances []Entry          `yaml:"instances"`
	Records   []map[string]any `yaml:"records"`
}

func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	doc.SourceFile = path
	return doc, nil
}

// Parse decodes a YAML or JSON snapshot and checks its envelope.
func Parse(content []byte) (*Document, error) {
	trimmed := bytes.TrimLeft(content, "\ufeff\n\r\t ")
	if len(trimmed) == 0 {
		return nil, ErrEmptySnapshot
	}

	var raw any
	if err := yaml.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}
	if err := validateEnvelope(raw); err != nil {
		return nil, err
	}

	var snap snapshot
	if err := yaml.Unmarshal(trimmed, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	records := make([]terminal.Record, 0, len(snap.Records))
	for _, record := range snap.Records {
		records = append(records, terminal.Record(record))
	}

	return &Document{
		Version:   snap.Version,
		Plugins:   snap.Plugins,
		Instances: snap.Instances,
		Records:   records,
	}, nil
}
