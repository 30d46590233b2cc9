package topology

import (
	"errors"

	"github.com/matzehuels/cvtopo/pkg/inventory"
)

var (
	// ErrEmptyName is returned by [Tree.Add] when the container name is empty.
	ErrEmptyName = errors.New("container name must not be empty")

	// ErrUnknownParent is returned by [Tree.Add] when the parent node does not
	// exist in the tree.
	ErrUnknownParent = errors.New("unknown parent node")

	// ErrContainerNotFound is returned by [Extract] and [Tree.Extract] when the
	// requested subtree root is not a container of the inventory.
	ErrContainerNotFound = errors.New("container not found")

	// ErrDuplicateContainer is returned by [BuildTree] in strict mode when two
	// groups share a name.
	ErrDuplicateContainer = errors.New("duplicate container name")
)

// NodeID addresses a node of a [Tree]. IDs are assigned in creation order, so
// the root is always 0.
type NodeID int

// NoParent is the parent of the root node.
const NoParent NodeID = -1

// Node is one container of the tree.
type Node struct {
	ID     NodeID
	Name   string
	Parent NodeID // NoParent for the root
	Depth  int    // 0 for the root

	// Group is the inventory group the node was built from; nil for the root.
	Group *inventory.Group
}

// IsRoot reports whether n is the synthetic root.
func (n Node) IsRoot() bool { return n.Parent == NoParent }

// Duplicate records a container name that was created more than once. The
// name index resolves to Current; Previous stays in the tree but can only be
// reached structurally.
type Duplicate struct {
	Name     string
	Previous NodeID
	Current  NodeID
}

// Tree is a rooted container tree. Nodes are identified by NodeID rather than
// by name, so a name collision never merges unrelated nodes; the collision is
// recorded instead (see [Tree.Duplicates]).
//
// The zero value is not usable; use [NewTree] or [BuildTree].
// A Tree is not safe for concurrent mutation, but a fully built tree can be
// read from multiple goroutines.
type Tree struct {
	nodes    []Node
	children [][]NodeID
	byName   map[string]NodeID
	dups     []Duplicate

	forest *inventory.Forest
	issues []inventory.Issue
}

// NewTree creates a tree holding only the synthetic root named rootName.
func NewTree(rootName string) *Tree {
	t := &Tree{byName: make(map[string]NodeID)}
	t.nodes = append(t.nodes, Node{ID: 0, Name: rootName, Parent: NoParent})
	t.children = append(t.children, nil)
	t.byName[rootName] = 0
	return t
}

// Add creates a node named name under parent and returns its ID.
// If name is already indexed, the index moves to the new node and the
// collision is recorded as a [Duplicate].
func (t *Tree) Add(name string, parent NodeID) (NodeID, error) {
	return t.add(name, parent, nil)
}

func (t *Tree) add(name string, parent NodeID, g *inventory.Group) (NodeID, error) {
	if name == "" {
		return 0, ErrEmptyName
	}
	if !t.valid(parent) {
		return 0, ErrUnknownParent
	}
	id := NodeID(len(t.nodes))
	t.nodes = append(t.nodes, Node{
		ID:     id,
		Name:   name,
		Parent: parent,
		Depth:  t.nodes[parent].Depth + 1,
		Group:  g,
	})
	t.children = append(t.children, nil)
	t.children[parent] = append(t.children[parent], id)

	if prev, exists := t.byName[name]; exists {
		t.dups = append(t.dups, Duplicate{Name: name, Previous: prev, Current: id})
	}
	t.byName[name] = id
	return id, nil
}

func (t *Tree) valid(id NodeID) bool { return id >= 0 && int(id) < len(t.nodes) }

// Root returns the ID of the synthetic root.
func (t *Tree) Root() NodeID { return 0 }

// RootName returns the reserved name of the synthetic root.
func (t *Tree) RootName() string { return t.nodes[0].Name }

// Len returns the number of nodes, including the root.
func (t *Tree) Len() int { return len(t.nodes) }

// Node returns the node with the given ID.
func (t *Tree) Node(id NodeID) (Node, bool) {
	if !t.valid(id) {
		return Node{}, false
	}
	return t.nodes[id], true
}

// Lookup resolves a container name to the most recently created node with
// that name.
func (t *Tree) Lookup(name string) (NodeID, bool) {
	id, ok := t.byName[name]
	return id, ok
}

// Parent returns the parent of id. It returns false for the root or an
// unknown ID.
func (t *Tree) Parent(id NodeID) (NodeID, bool) {
	if !t.valid(id) || t.nodes[id].Parent == NoParent {
		return NoParent, false
	}
	return t.nodes[id].Parent, true
}

// Children returns the children of id in insertion order. The returned slice
// should not be modified.
func (t *Tree) Children(id NodeID) []NodeID {
	if !t.valid(id) {
		return nil
	}
	return t.children[id]
}

// IsLeaf reports whether id has no children.
func (t *Tree) IsLeaf(id NodeID) bool { return len(t.Children(id)) == 0 }

// Subtree returns id and all of its descendants in pre-order: a parent before
// its children, siblings in insertion order. It returns nil for an unknown ID.
func (t *Tree) Subtree(id NodeID) []NodeID {
	if !t.valid(id) {
		return nil
	}
	var out []NodeID
	stack := []NodeID{id}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, n)
		kids := t.children[n]
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	return out
}

// Duplicates returns the name collisions seen while building the tree, in
// creation order.
func (t *Tree) Duplicates() []Duplicate { return t.dups }

// Issues returns the inventory problems skipped while building the tree.
func (t *Tree) Issues() []inventory.Issue { return t.issues }
