// Package cache stores derived artifacts (extracted topologies, rendered
// diagrams) keyed by a hash of their inputs.
//
// Backends share the [Cache] interface:
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [MemoryCache]: bounded LRU, for a single server process
//   - [RedisCache]: shared between server replicas
//   - [NullCache]: disables caching
//
// Keys come from a [Keyer] so that every input affecting a result is part
// of its key:
//
//	keyer := cache.NewDefaultKeyer()
//	key := keyer.TopologyKey(cache.Hash(inventoryBytes), cache.TopologyKeyOpts{Root: "DC1"})
//	data, hit, err := c.Get(ctx, key)
package cache

import (
	"context"
	"time"
)

// Default lifetimes of cached entries.
const (
	TopologyTTL = 24 * time.Hour
	ArtifactTTL = 7 * 24 * time.Hour
)

// Cache is a byte-oriented key/value store with per-entry expiry.
// A miss is reported with ok == false and a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// TopologyKeyOpts holds the extraction options that change a topology.
type TopologyKeyOpts struct {
	Root         string `json:"root"`
	ReservedRoot string `json:"reserved_root"`
	Strict       bool   `json:"strict"`
}

// ArtifactKeyOpts holds the rendering options that change a diagram.
type ArtifactKeyOpts struct {
	Format  string `json:"format"`
	Devices bool   `json:"devices"`
}

// Keyer derives cache keys.
type Keyer interface {
	// TopologyKey keys an extracted topology by the inventory content hash.
	TopologyKey(inventoryHash string, opts TopologyKeyOpts) string

	// ArtifactKey keys a rendered diagram by the topology content hash.
	ArtifactKey(topologyHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces keys of the form "<kind>:<sha256>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default key scheme.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// TopologyKey implements [Keyer].
func (DefaultKeyer) TopologyKey(inventoryHash string, opts TopologyKeyOpts) string {
	return hashKey("topology", inventoryHash, opts)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(topologyHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", topologyHash, opts)
}
