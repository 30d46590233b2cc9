package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/cvtopo/pkg/configlet"
	"github.com/matzehuels/cvtopo/pkg/topology"
)

// Keys of the top-level document.
const (
	KeyTopology   = "CVP_TOPOLOGY"
	KeyConfiglets = "CVP_CONFIGLETS"
)

// Supported output formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Document is the variable file handed to the CloudVision playbooks.
type Document struct {
	Topology   *topology.Topology `json:"CVP_TOPOLOGY" yaml:"CVP_TOPOLOGY"`
	Configlets map[string]string  `json:"CVP_CONFIGLETS" yaml:"CVP_CONFIGLETS"`
}

// NewDocument assembles a document from an extracted topology and the
// collected configlets. Either may be nil.
func NewDocument(t *topology.Topology, configlets []configlet.Configlet) *Document {
	if t == nil {
		t = topology.NewTopology("")
	}
	return &Document{Topology: t, Configlets: configlet.Map(configlets)}
}

func (d *Document) normalized() *Document {
	out := *d
	if out.Topology == nil {
		out.Topology = topology.NewTopology("")
	}
	if out.Configlets == nil {
		out.Configlets = map[string]string{}
	}
	return &out
}

// WriteYAML encodes d as YAML with two-space indentation.
func WriteYAML(d *Document, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(d.normalized()); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

// WriteJSON encodes d as indented JSON.
func WriteJSON(d *Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d.normalized()); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Write encodes d in the given format.
func Write(d *Document, format string, w io.Writer) error {
	switch format {
	case FormatYAML, "yml", "":
		return WriteYAML(d, w)
	case FormatJSON:
		return WriteJSON(d, w)
	default:
		return fmt.Errorf("unsupported format %q", format)
	}
}

// FormatFor returns the format implied by the extension of path: JSON for
// ".json", YAML otherwise.
func FormatFor(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Export writes d to the file at path, creating parent directories as needed.
func Export(d *Document, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(d, FormatFor(path), f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
