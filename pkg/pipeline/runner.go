package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/cvtopo/pkg/cache"
	"github.com/matzehuels/cvtopo/pkg/configlet"
	cverrors "github.com/matzehuels/cvtopo/pkg/errors"
	"github.com/matzehuels/cvtopo/pkg/inventory"
	"github.com/matzehuels/cvtopo/pkg/observability"
	"github.com/matzehuels/cvtopo/pkg/topology"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → extract → collect pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	result := &Result{}

	// Stage 1: Load
	loadStart := time.Now()
	inv, hash, err := Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.InventoryHash = hash
	result.Stats.LoadTime = time.Since(loadStart)

	r.Logger.Debug("loaded inventory",
		"source", opts.source(),
		"entries", inv.Len(),
		"duration", result.Stats.LoadTime)

	// Stage 2: Extract
	extractStart := time.Now()
	entry, hit, err := r.ExtractWithCacheInfo(ctx, inv, hash, opts)
	if err != nil {
		return nil, err
	}
	result.Topology = entry.Topology
	result.Warnings = entry.Warnings
	result.CacheHit = hit
	result.Stats.ExtractTime = time.Since(extractStart)
	result.Stats.Containers = entry.Topology.Len()
	result.Stats.Devices = entry.Topology.DeviceCount()

	for _, w := range result.Warnings {
		r.Logger.Warn(w)
	}
	r.Logger.Info("extracted topology",
		"root", opts.Root,
		"containers", result.Stats.Containers,
		"devices", result.Stats.Devices,
		"cached", hit,
		"duration", result.Stats.ExtractTime)

	// Stage 3: Collect
	if opts.ConfigletDir != "" {
		list, err := configlet.List(opts.ConfigletDir, opts.ConfigletOptions())
		if err != nil {
			return nil, cverrors.Wrap(cverrors.ErrCodeInvalidPath, err, "collect configlets")
		}
		result.Configlets = list
		result.Stats.Configlets = len(list)
		r.Logger.Info("collected configlets", "dir", opts.ConfigletDir, "count", len(list))
	}

	return result, nil
}

// Extraction is the cached outcome of an extraction.
type Extraction struct {
	Topology *topology.Topology
	Warnings []string
}

type cachedExtraction struct {
	ReservedRoot string          `json:"reserved_root"`
	Topology     json.RawMessage `json:"topology"`
	Warnings     []string        `json:"warnings,omitempty"`
}

// ExtractWithCacheInfo extracts the topology of opts.Root from inv, using
// the cache unless opts.Refresh is set, and reports whether it hit.
func (r *Runner) ExtractWithCacheInfo(ctx context.Context, inv inventory.Mapping, inventoryHash string, opts Options) (*Extraction, bool, error) {
	if err := opts.ValidateForExtract(); err != nil {
		return nil, false, err
	}
	key := r.Keyer.TopologyKey(inventoryHash, opts.TopologyKeyOpts())
	hooks := observability.Cache()

	if !opts.Refresh {
		if e, ok := r.cachedExtraction(ctx, key); ok {
			hooks.OnCacheHit(ctx, "topology")
			return e, true, nil
		}
		hooks.OnCacheMiss(ctx, "topology")
	}

	e, err := extract(ctx, inv, opts)
	if err != nil {
		return nil, false, err
	}

	if data, err := encodeExtraction(e); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.TopologyTTL); err != nil {
			r.Logger.Debug("cache write failed", "err", err)
		} else {
			hooks.OnCacheSet(ctx, "topology", len(data))
		}
	}
	return e, false, nil
}

func extract(ctx context.Context, inv inventory.Mapping, opts Options) (*Extraction, error) {
	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnExtractStart(ctx, opts.Root)

	var (
		topo     *topology.Topology
		warnings []string
	)
	tree, err := topology.BuildTree(inv, opts.TopologyOptions()...)
	if err == nil {
		warnings = Warnings(tree)
		topo, err = tree.Extract(opts.Root)
	}

	n := 0
	if topo != nil {
		n = topo.Len()
	}
	hooks.OnExtractComplete(ctx, opts.Root, n, time.Since(start), err)
	if err != nil {
		return nil, classifyError(err)
	}
	return &Extraction{Topology: topo, Warnings: warnings}, nil
}

func (r *Runner) cachedExtraction(ctx context.Context, key string) (*Extraction, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil {
		r.Logger.Debug("cache read failed", "err", err)
		return nil, false
	}
	if !hit {
		return nil, false
	}
	e, err := decodeExtraction(data)
	if err != nil {
		r.Logger.Debug("discarding corrupt cache entry", "err", err)
		return nil, false
	}
	return e, true
}

func encodeExtraction(e *Extraction) ([]byte, error) {
	topo, err := json.Marshal(e.Topology)
	if err != nil {
		return nil, err
	}
	return json.Marshal(cachedExtraction{
		ReservedRoot: e.Topology.ReservedRoot(),
		Topology:     topo,
		Warnings:     e.Warnings,
	})
}

func decodeExtraction(data []byte) (*Extraction, error) {
	var c cachedExtraction
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	topo := topology.NewTopology(c.ReservedRoot)
	if err := json.Unmarshal(c.Topology, topo); err != nil {
		return nil, fmt.Errorf("decode topology: %w", err)
	}
	return &Extraction{Topology: topo, Warnings: c.Warnings}, nil
}

// Tree loads the inventory and builds its container tree without
// extracting, for listing and browsing.
func (r *Runner) Tree(ctx context.Context, opts Options) (*topology.Tree, error) {
	inv, _, err := Load(ctx, opts)
	if err != nil {
		return nil, err
	}
	if opts.ReservedRoot == "" {
		opts.ReservedRoot = topology.DefaultReservedRoot
	}
	tree, err := topology.BuildTree(inv, opts.TopologyOptions()...)
	if err != nil {
		return nil, classifyError(err)
	}
	return tree, nil
}

// Containers lists every container of the inventory in pre-order.
func (r *Runner) Containers(ctx context.Context, opts Options) ([]string, error) {
	tree, err := r.Tree(ctx, opts)
	if err != nil {
		return nil, err
	}
	return tree.Containers(), nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
