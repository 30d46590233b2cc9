package topology

import (
	"fmt"
	"iter"
	"slices"

	"github.com/matzehuels/cvtopo/pkg/inventory"
)

// Container is the output record of one container.
//
// Parent is empty for containers that sit directly under the reserved root
// without being the extracted subtree root; those records carry no linkage.
// Devices is only meaningful when Leaf is set, and may then be empty.
type Container struct {
	Parent  string
	Devices []string
	Leaf    bool
}

// HasParent reports whether the record names a parent container.
func (c Container) HasParent() bool { return c.Parent != "" }

// Topology is the insertion-ordered mapping of container name to record
// produced by [Extract]. It holds no references into the tree it came from.
type Topology struct {
	reservedRoot string
	names        []string
	records      map[string]Container
}

// NewTopology creates an empty topology for the given reserved root name.
func NewTopology(reservedRoot string) *Topology {
	if reservedRoot == "" {
		reservedRoot = DefaultReservedRoot
	}
	return &Topology{reservedRoot: reservedRoot, records: make(map[string]Container)}
}

// ReservedRoot returns the name of the synthetic root the topology hangs off.
func (t *Topology) ReservedRoot() string { return t.reservedRoot }

// Len returns the number of containers.
func (t *Topology) Len() int { return len(t.names) }

// Names returns the container names in traversal order.
func (t *Topology) Names() []string { return slices.Clone(t.names) }

// Get returns the record for name.
func (t *Topology) Get(name string) (Container, bool) {
	c, ok := t.records[name]
	return c, ok
}

// All iterates over the containers in traversal order.
func (t *Topology) All() iter.Seq2[string, Container] {
	return func(yield func(string, Container) bool) {
		for _, name := range t.names {
			if !yield(name, t.records[name]) {
				return
			}
		}
	}
}

// DeviceCount returns the total number of devices attached to leaves.
func (t *Topology) DeviceCount() int {
	n := 0
	for _, c := range t.records {
		n += len(c.Devices)
	}
	return n
}

// Set stores c under name. A name that is already present keeps its
// position and has its record replaced.
func (t *Topology) Set(name string, c Container) {
	if _, exists := t.records[name]; !exists {
		t.names = append(t.names, name)
	}
	c.Devices = slices.Clone(c.Devices)
	if c.Leaf && c.Devices == nil {
		c.Devices = []string{}
	}
	t.records[name] = c
}

// Extract builds the container tree of inv and returns the topology of the
// subtree rooted at the container named root.
//
// It returns an error wrapping [ErrContainerNotFound] when root is not a
// container of inv, and [ErrDuplicateContainer] in strict mode.
func Extract(inv inventory.Mapping, root string, opts ...Option) (*Topology, error) {
	cfg := newConfig(opts)
	forest, issues := inventory.Classify(inv)
	tree, err := buildTree(forest, issues, cfg)
	if err != nil {
		return nil, err
	}
	return tree.Extract(root)
}

// Extract returns the topology of the subtree rooted at the container named
// root, walked in pre-order.
//
// The subtree root is always parented to the reserved root. Every other
// container is parented to its structural parent, except containers whose
// parent is named like the reserved root: they get an empty record. Leaves
// also carry the devices declared on their group.
func (t *Tree) Extract(root string) (*Topology, error) {
	rootID, ok := t.Lookup(root)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrContainerNotFound, root)
	}

	reserved := t.RootName()
	topo := NewTopology(reserved)
	for _, id := range t.Subtree(rootID) {
		n := t.nodes[id]
		if n.Name == reserved {
			continue
		}

		var c Container
		switch parent := t.nodes[n.Parent]; {
		case n.Name == root:
			c.Parent = reserved
		case parent.Name == reserved:
			// Direct children of the global root other than the subtree root
			// are listed without linkage.
		default:
			c.Parent = parent.Name
			if t.IsLeaf(id) {
				c.Leaf = true
				c.Devices = t.Devices(n.Name)
			}
		}
		topo.Set(n.Name, c)
	}
	return topo, nil
}

// Containers returns every container name of the tree in pre-order, without
// the reserved root and without repeating duplicated names.
func (t *Tree) Containers() []string {
	seen := make(map[string]bool)
	var out []string
	for _, id := range t.Subtree(t.Root()) {
		n := t.nodes[id]
		if n.IsRoot() || seen[n.Name] {
			continue
		}
		seen[n.Name] = true
		out = append(out, n.Name)
	}
	return out
}
