package io

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/cvtopo/pkg/topology"
)

// ErrNoTopology is returned when a document lacks the CVP_TOPOLOGY key.
var ErrNoTopology = errors.New("document has no " + KeyTopology)

// ReadJSON decodes a JSON document from r. Container order is preserved.
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Document, error) {
	var d Document
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return checked(&d)
}

// ReadYAML decodes a YAML document from r. Container order is preserved.
// ReadYAML does not close r.
func ReadYAML(r io.Reader) (*Document, error) {
	var d Document
	if err := yaml.NewDecoder(r).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return checked(&d)
}

// Import reads the document at path, choosing the decoder by extension.
func Import(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if FormatFor(path) == FormatJSON {
		return ReadJSON(f)
	}
	return ReadYAML(f)
}

func checked(d *Document) (*Document, error) {
	if d.Topology == nil {
		return nil, ErrNoTopology
	}
	if d.Configlets == nil {
		d.Configlets = map[string]string{}
	}
	return d, nil
}

// TopologyOf is a shorthand for reading only the topology of a document.
func TopologyOf(path string) (*topology.Topology, error) {
	d, err := Import(path)
	if err != nil {
		return nil, err
	}
	return d.Topology, nil
}
