// Package pipeline provides the inventory-to-topology pipeline of cvtopo.
//
// This package implements the complete load → extract → collect pipeline
// used by the CLI and the API server. By centralizing this logic, both entry
// points share caching, validation, and error codes.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Parse the inventory from a file or from request bytes
//  2. Extract: Build the container tree and flatten the requested subtree
//  3. Collect: Read configlet files to publish alongside the topology
//
// Extraction results are cached by inventory content and options; the
// other stages are cheap and always run. Diagrams are rendered on request
// with [Runner.Render] and cached separately.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    InventoryPath: "inventory.yml",
//	    Root:          "DC1_FABRIC",
//	    ConfigletDir:  "intended/configs",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	doc := io.NewDocument(result.Topology, result.Configlets)
package pipeline

import (
	"fmt"
	"time"

	"github.com/matzehuels/cvtopo/pkg/cache"
	"github.com/matzehuels/cvtopo/pkg/configlet"
	cverrors "github.com/matzehuels/cvtopo/pkg/errors"
	"github.com/matzehuels/cvtopo/pkg/topology"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultConfigletPrefix marks configlets managed by this tool.
	DefaultConfigletPrefix = "AVD"

	// DefaultConfigletExtension selects configlet files.
	DefaultConfigletExtension = configlet.DefaultExtension

	// MaxInventorySize bounds inline inventories (API requests).
	MaxInventorySize = 16 << 20
)

// Format constants for rendered diagrams.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
)

// ValidFormats is the set of supported diagram formats.
var ValidFormats = map[string]bool{
	FormatDOT: true,
	FormatSVG: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options; exactly one of Inventory and InventoryPath is set.
	Inventory     []byte `json:"-"`
	InventoryPath string `json:"inventory_path,omitempty"`

	// Extract options
	Root         string `json:"root"`
	ReservedRoot string `json:"reserved_root,omitempty"`
	Strict       bool   `json:"strict,omitempty"`
	Refresh      bool   `json:"refresh,omitempty"`

	// Collect options; no configlets are read when ConfigletDir is empty.
	ConfigletDir       string `json:"configlet_dir,omitempty"`
	ConfigletPrefix    string `json:"configlet_prefix,omitempty"`
	ConfigletExtension string `json:"configlet_extension,omitempty"`
	ConfigletRecursive bool   `json:"configlet_recursive,omitempty"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Topology is the extracted container topology.
	Topology *topology.Topology

	// Configlets are the collected configuration files, sorted by name.
	Configlets []configlet.Configlet

	// Warnings lists inventory entries that were skipped or ambiguous.
	Warnings []string

	// InventoryHash is the content hash of the inventory bytes.
	InventoryHash string

	// Stats contains timing and size information.
	Stats Stats

	// CacheHit reports whether the topology came from the cache.
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Containers  int
	Devices     int
	Configlets  int
	LoadTime    time.Duration
	ExtractTime time.Duration
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a diagram format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return cverrors.New(cverrors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: dot, svg)", format)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForExtract(); err != nil {
		return err
	}
	if o.ConfigletDir != "" {
		if err := cverrors.ValidatePath(o.ConfigletDir); err != nil {
			return err
		}
	}
	if err := cverrors.ValidatePrefix(o.ConfigletPrefix); err != nil {
		return err
	}
	if o.ConfigletExtension == "" {
		o.ConfigletExtension = DefaultConfigletExtension
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks that an inventory source is set.
func (o *Options) ValidateForLoad() error {
	switch {
	case len(o.Inventory) == 0 && o.InventoryPath == "":
		return cverrors.New(cverrors.ErrCodeInvalidInput, "inventory is required")
	case len(o.Inventory) > 0 && o.InventoryPath != "":
		return cverrors.New(cverrors.ErrCodeInvalidInput, "inventory and inventory_path are mutually exclusive")
	case len(o.Inventory) > MaxInventorySize:
		return cverrors.New(cverrors.ErrCodeInvalidInput, "inventory too large (max %d bytes)", MaxInventorySize)
	case o.InventoryPath != "":
		if err := cverrors.ValidatePath(o.InventoryPath); err != nil {
			return err
		}
	}
	return nil
}

// ValidateForExtract checks the load options and the subtree root.
func (o *Options) ValidateForExtract() error {
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := cverrors.ValidateContainerName(o.Root); err != nil {
		return err
	}
	if o.ReservedRoot == "" {
		o.ReservedRoot = topology.DefaultReservedRoot
	}
	return cverrors.ValidateContainerName(o.ReservedRoot)
}

// TopologyOptions returns the extraction options.
func (o *Options) TopologyOptions() []topology.Option {
	return []topology.Option{
		topology.WithReservedRoot(o.ReservedRoot),
		topology.WithStrict(o.Strict),
	}
}

// TopologyKeyOpts returns cache key options for extraction.
func (o *Options) TopologyKeyOpts() cache.TopologyKeyOpts {
	return cache.TopologyKeyOpts{
		Root:         o.Root,
		ReservedRoot: o.ReservedRoot,
		Strict:       o.Strict,
	}
}

// ConfigletOptions returns the options for collecting configlets.
func (o *Options) ConfigletOptions() configlet.Options {
	return configlet.Options{
		Prefix:    o.ConfigletPrefix,
		Extension: o.ConfigletExtension,
		Recursive: o.ConfigletRecursive,
	}
}

func (o *Options) source() string {
	if o.InventoryPath != "" {
		return o.InventoryPath
	}
	return "request"
}

func (s Stats) String() string {
	return fmt.Sprintf("%d containers, %d devices, %d configlets", s.Containers, s.Devices, s.Configlets)
}
