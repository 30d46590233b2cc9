package topology

import (
	"errors"
	"slices"
	"testing"

	"github.com/matzehuels/cvtopo/pkg/inventory"
)

func parse(t *testing.T, src string) inventory.Mapping {
	t.Helper()
	m, err := inventory.Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return m
}

func load(t *testing.T) inventory.Mapping {
	t.Helper()
	m, err := inventory.Load("../inventory/testdata/inventory.yml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return m
}

func TestBuildTree(t *testing.T) {
	tr, err := BuildTree(parse(t, `
DC1:
  children:
    SPINES:
      hosts:
        spine1:
    LEAFS:
      children:
        LEAF1:
DC2:
`))
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}

	if tr.Len() != 6 {
		t.Errorf("Len() = %d, want 6", tr.Len())
	}
	if got := tr.Containers(); !slices.Equal(got, []string{"DC1", "SPINES", "LEAFS", "LEAF1", "DC2"}) {
		t.Errorf("Containers() = %v", got)
	}

	leafs, _ := tr.Lookup("LEAFS")
	dc1, _ := tr.Lookup("DC1")
	if p, _ := tr.Parent(leafs); p != dc1 {
		t.Errorf("Parent(LEAFS) = %d, want %d", p, dc1)
	}
	n, _ := tr.Node(leafs)
	if n.Group == nil || n.Group.Kind != inventory.BranchGroup {
		t.Errorf("LEAFS group = %+v, want branch", n.Group)
	}
	dc2, _ := tr.Lookup("DC2")
	if p, _ := tr.Parent(dc2); p != tr.Root() {
		t.Errorf("top-level group should hang off the root, got parent %d", p)
	}
}

func TestBuildTree_ReservedRoot(t *testing.T) {
	inv := parse(t, "DC1:\n")

	tr, _ := BuildTree(inv)
	if tr.RootName() != DefaultReservedRoot {
		t.Errorf("RootName() = %q, want %q", tr.RootName(), DefaultReservedRoot)
	}

	tr, _ = BuildTree(inv, WithReservedRoot("Campus"))
	if tr.RootName() != "Campus" {
		t.Errorf("RootName() = %q, want Campus", tr.RootName())
	}

	tr, _ = BuildTree(inv, WithReservedRoot(""))
	if tr.RootName() != DefaultReservedRoot {
		t.Errorf("empty reserved root should keep the default, got %q", tr.RootName())
	}
}

func TestBuildTree_HostsAreNotContainers(t *testing.T) {
	tr, err := BuildTree(parse(t, `
SPINES:
  hosts:
    spine1:
    spine2:
  vars:
    mtu: 9214
`))
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	for _, name := range []string{"hosts", "vars", "spine1", "mtu"} {
		if _, ok := tr.Lookup(name); ok {
			t.Errorf("%q should not be a container", name)
		}
	}
	if tr.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tr.Len())
	}
}

func TestBuildTree_Issues(t *testing.T) {
	tr, err := BuildTree(parse(t, `
DC1:
  children:
    BROKEN: [a, b]
    OK:
`))
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	if len(tr.Issues()) != 1 {
		t.Fatalf("Issues() = %v, want 1", tr.Issues())
	}
	if tr.Issues()[0].Kind != inventory.IssueMalformedGroup {
		t.Errorf("issue kind = %v", tr.Issues()[0].Kind)
	}
	if _, ok := tr.Lookup("BROKEN"); ok {
		t.Error("malformed group should be skipped")
	}
	if _, ok := tr.Lookup("OK"); !ok {
		t.Error("sibling of a malformed group should still be built")
	}
}

func TestBuildTree_Duplicates(t *testing.T) {
	inv := load(t)

	tr, err := BuildTree(inv)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	dups := tr.Duplicates()
	if len(dups) != 1 || dups[0].Name != "DC1_L3LEAFS" {
		t.Fatalf("Duplicates() = %+v", dups)
	}

	_, err = BuildTree(inv, WithStrict(true))
	if !errors.Is(err, ErrDuplicateContainer) {
		t.Errorf("strict BuildTree error = %v, want ErrDuplicateContainer", err)
	}
}

func TestBuildTree_Empty(t *testing.T) {
	tr, err := BuildTree(nil)
	if err != nil {
		t.Fatalf("BuildTree(nil): %v", err)
	}
	if tr.Len() != 1 || len(tr.Containers()) != 0 {
		t.Errorf("empty inventory should yield only the root, got %d nodes", tr.Len())
	}
}

func TestBuildTree_TopLevelHostsAndVarsAreNotGroups(t *testing.T) {
	inv := parse(t, `
hosts:
  ungrouped1:
vars:
  ansible_user: admin
A:
  hosts:
    a1:
`)
	tr, err := BuildTree(inv)
	if err != nil {
		t.Fatalf("BuildTree: %v", err)
	}
	if got := tr.Containers(); !slices.Equal(got, []string{"A"}) {
		t.Errorf("Containers() = %v, want [A]", got)
	}
	for _, name := range []string{"hosts", "vars"} {
		if _, ok := tr.Lookup(name); ok {
			t.Errorf("top-level %q key became a container", name)
		}
	}

	topo, err := Extract(inv, DefaultReservedRoot)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got := topo.Names(); !slices.Equal(got, []string{"A"}) {
		t.Errorf("Names() = %v, want [A]", got)
	}
}
