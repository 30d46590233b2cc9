// Package store persists extracted topologies as snapshots.
//
// A snapshot records what was extracted, from which inventory and when, so
// that a topology pushed to CloudVision can be retrieved and compared later.
// Two backends implement [Store]:
//   - [FileStore]: one JSON file per snapshot, for the CLI
//   - [MongoStore]: a MongoDB collection, for the API server
//
// [Open] picks the backend from a location string:
//
//	s, err := store.Open(ctx, "mongodb://localhost:27017/cvtopo")
//	s, err := store.Open(ctx, "/var/lib/cvtopo/snapshots")
package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/cvtopo/pkg/topology"
)

// ErrNotFound is returned when a snapshot does not exist.
var ErrNotFound = errors.New("snapshot not found")

// DefaultListLimit bounds [Store.List] when limit <= 0.
const DefaultListLimit = 50

// Snapshot is a stored extraction result.
type Snapshot struct {
	ID            string             `json:"id"`
	CreatedAt     time.Time          `json:"created_at"`
	Root          string             `json:"root"`
	ReservedRoot  string             `json:"reserved_root"`
	InventoryHash string             `json:"inventory_hash"`
	Topology      *topology.Topology `json:"topology"`
	Warnings      []string           `json:"warnings,omitempty"`
}

// New creates a snapshot with a fresh ID.
func New(root, inventoryHash string, t *topology.Topology, warnings []string) *Snapshot {
	return &Snapshot{
		ID:            uuid.NewString(),
		CreatedAt:     time.Now().UTC(),
		Root:          root,
		ReservedRoot:  t.ReservedRoot(),
		InventoryHash: inventoryHash,
		Topology:      t,
		Warnings:      warnings,
	}
}

// UnmarshalJSON decodes a snapshot, giving the topology the stored reserved
// root.
func (s *Snapshot) UnmarshalJSON(data []byte) error {
	type plain Snapshot
	var aux struct {
		plain
		Topology json.RawMessage `json:"topology"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*s = Snapshot(aux.plain)
	s.Topology = topology.NewTopology(s.ReservedRoot)
	if len(aux.Topology) > 0 && string(aux.Topology) != "null" {
		if err := json.Unmarshal(aux.Topology, s.Topology); err != nil {
			return err
		}
	}
	return nil
}

// Store is the interface for snapshot backends.
type Store interface {
	// Save stores s, assigning an ID and creation time when missing.
	Save(ctx context.Context, s *Snapshot) error

	// Get returns the snapshot with the given ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Snapshot, error)

	// List returns up to limit snapshots, newest first.
	List(ctx context.Context, limit int) ([]*Snapshot, error)

	// Delete removes a snapshot. Deleting a missing snapshot is not an error.
	Delete(ctx context.Context, id string) error

	Close() error
}

// Open returns a MongoDB store for mongodb:// and mongodb+srv:// URIs and a
// file store rooted at location otherwise.
func Open(ctx context.Context, location string) (Store, error) {
	if strings.HasPrefix(location, "mongodb://") || strings.HasPrefix(location, "mongodb+srv://") {
		s, err := NewMongoStore(ctx, location)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	s, err := NewFileStore(location)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func prepare(s *Snapshot) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	if s.Topology == nil {
		s.Topology = topology.NewTopology(s.ReservedRoot)
	}
	if s.ReservedRoot == "" {
		s.ReservedRoot = s.Topology.ReservedRoot()
	}
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
