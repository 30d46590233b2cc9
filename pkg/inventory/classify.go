package inventory

import (
	"fmt"
	"strings"
)

// GroupKind tags a classified group.
type GroupKind int

const (
	// LeafGroup has no "children" key. It may still own hosts.
	LeafGroup GroupKind = iota
	// BranchGroup declares a "children" key, possibly empty.
	BranchGroup
)

func (k GroupKind) String() string {
	switch k {
	case LeafGroup:
		return "leaf"
	case BranchGroup:
		return "branch"
	}
	return fmt.Sprintf("GroupKind(%d)", int(k))
}

// Group is one classified inventory group.
type Group struct {
	Name     string
	Kind     GroupKind
	Hosts    []string // host names in document order; nil when no hosts are declared
	Children []*Group // sub-groups in document order; only set for BranchGroup
	Path     string   // dotted location in the document, e.g. "all.children.DC1"
}

// IssueKind identifies the kind of [Issue].
type IssueKind int

const (
	// IssueMalformedGroup: a group value is neither a mapping nor null.
	IssueMalformedGroup IssueKind = iota
	// IssueMalformedChildren: a "children" value is not a mapping.
	IssueMalformedChildren
	// IssueMalformedHosts: a "hosts" value is not a mapping.
	IssueMalformedHosts
	// IssueEmptyName: a group key is the empty string.
	IssueEmptyName
)

func (k IssueKind) String() string {
	switch k {
	case IssueMalformedGroup:
		return "malformed group"
	case IssueMalformedChildren:
		return "malformed children"
	case IssueMalformedHosts:
		return "malformed hosts"
	case IssueEmptyName:
		return "empty group name"
	}
	return fmt.Sprintf("IssueKind(%d)", int(k))
}

// Issue describes a part of the document that was skipped during classification.
type Issue struct {
	Kind   IssueKind
	Path   string
	Detail string
}

func (i Issue) String() string {
	if i.Detail == "" {
		return fmt.Sprintf("%s at %s", i.Kind, i.Path)
	}
	return fmt.Sprintf("%s at %s: %s", i.Kind, i.Path, i.Detail)
}

// Forest is the classified form of an inventory: its top-level groups.
type Forest struct {
	Groups []*Group
}

// Walk visits every group in pre-order (parent before children, siblings in
// document order). parent is nil for top-level groups.
func (f *Forest) Walk(fn func(g, parent *Group)) {
	var walk func(groups []*Group, parent *Group)
	walk = func(groups []*Group, parent *Group) {
		for _, g := range groups {
			fn(g, parent)
			walk(g.Children, g)
		}
	}
	walk(f.Groups, nil)
}

// Find returns every group named name, in pre-order.
func (f *Forest) Find(name string) []*Group {
	var found []*Group
	f.Walk(func(g, _ *Group) {
		if g.Name == name {
			found = append(found, g)
		}
	})
	return found
}

// Len returns the total number of groups in the forest.
func (f *Forest) Len() int {
	n := 0
	f.Walk(func(*Group, *Group) { n++ })
	return n
}

// Classify converts m into a [Forest].
//
// At the top level every key names a group, except the reserved keys: the
// entries of a "children" block are hoisted as top-level groups, and "hosts"
// and "vars" (ungrouped hosts and global variables) are ignored. Inside a
// group body only "children" and "hosts" are interpreted.
//
// A null group value is an empty leaf group (a bare key under "children").
// Scalars and sequences are skipped and reported as issues.
func Classify(m Mapping) (*Forest, []Issue) {
	c := &classifier{}
	return &Forest{Groups: c.groups(m, "", true)}, c.issues
}

type classifier struct {
	issues []Issue
}

func (c *classifier) report(kind IssueKind, path, format string, args ...any) {
	c.issues = append(c.issues, Issue{Kind: kind, Path: path, Detail: fmt.Sprintf(format, args...)})
}

func (c *classifier) groups(m Mapping, path string, top bool) []*Group {
	var out []*Group
	for _, e := range m {
		p := joinPath(path, e.Key)
		switch {
		case e.Key == KeyChildren:
			sub, ok := e.Value.(Mapping)
			if !ok {
				if e.Value != nil {
					c.report(IssueMalformedChildren, p, "got %s", typeName(e.Value))
				}
				continue
			}
			out = append(out, c.groups(sub, p, false)...)
		case top && (e.Key == KeyHosts || e.Key == KeyVars):
			continue
		case e.Key == "":
			c.report(IssueEmptyName, p, "")
		default:
			if g := c.group(e.Key, e.Value, p); g != nil {
				out = append(out, g)
			}
		}
	}
	return out
}

func (c *classifier) group(name string, value any, path string) *Group {
	g := &Group{Name: name, Kind: LeafGroup, Path: path}
	switch body := value.(type) {
	case nil:
		return g
	case Mapping:
		if hv, ok := body.Get(KeyHosts); ok {
			g.Hosts = c.hosts(hv, joinPath(path, KeyHosts))
		}
		if cv, ok := body.Get(KeyChildren); ok {
			g.Kind = BranchGroup
			switch children := cv.(type) {
			case Mapping:
				g.Children = c.groups(children, joinPath(path, KeyChildren), false)
			case nil:
			default:
				c.report(IssueMalformedChildren, joinPath(path, KeyChildren), "got %s", typeName(cv))
			}
		}
		return g
	default:
		c.report(IssueMalformedGroup, path, "got %s", typeName(value))
		return nil
	}
}

func (c *classifier) hosts(value any, path string) []string {
	switch hosts := value.(type) {
	case Mapping:
		return hosts.Keys()
	case nil:
		return []string{}
	default:
		c.report(IssueMalformedHosts, path, "got %s", typeName(value))
		return nil
	}
}

func joinPath(parent, key string) string {
	if parent == "" {
		return key
	}
	return parent + "." + key
}

func typeName(v any) string {
	switch v.(type) {
	case []any:
		return "sequence"
	case string:
		return "string"
	case bool:
		return "bool"
	case int, int64, uint64, float64:
		return "number"
	}
	return strings.TrimPrefix(fmt.Sprintf("%T", v), "*")
}
