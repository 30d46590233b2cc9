package topology

import (
	"fmt"

	"github.com/matzehuels/cvtopo/pkg/inventory"
)

// BuildTree builds the container tree of inv under a synthetic root.
//
// Every group reachable from the inventory becomes a node under the group
// that declared it; top-level groups hang off the root. Sub-groups are only
// followed through "children" blocks. Values that are not groups are skipped
// and reported by [Tree.Issues].
//
// Names are expected to be unique. A repeated name does not fail the build
// unless [WithStrict] is set; it is recorded in [Tree.Duplicates] and the name
// resolves to the later node.
func BuildTree(inv inventory.Mapping, opts ...Option) (*Tree, error) {
	cfg := newConfig(opts)
	forest, issues := inventory.Classify(inv)
	return buildTree(forest, issues, cfg)
}

func buildTree(forest *inventory.Forest, issues []inventory.Issue, cfg config) (*Tree, error) {
	t := NewTree(cfg.reservedRoot)
	t.forest = forest
	t.issues = issues

	var add func(groups []*inventory.Group, parent NodeID) error
	add = func(groups []*inventory.Group, parent NodeID) error {
		for _, g := range groups {
			id, err := t.add(g.Name, parent, g)
			if err != nil {
				return fmt.Errorf("group %s: %w", g.Path, err)
			}
			if g.Kind == inventory.BranchGroup {
				if err := add(g.Children, id); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := add(forest.Groups, t.Root()); err != nil {
		return nil, err
	}

	if cfg.strict && len(t.dups) > 0 {
		d := t.dups[0]
		return nil, fmt.Errorf("%w: %q (%s)", ErrDuplicateContainer, d.Name, t.nodes[d.Current].path())
	}
	return t, nil
}

func (n Node) path() string {
	if n.Group == nil {
		return n.Name
	}
	return n.Group.Path
}
