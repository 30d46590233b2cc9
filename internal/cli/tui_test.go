package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/cvtopo/pkg/inventory"
	"github.com/matzehuels/cvtopo/pkg/topology"
)

func testTree(t *testing.T) *topology.Tree {
	t.Helper()
	inv, err := inventory.Load(testInventory)
	if err != nil {
		t.Fatal(err)
	}
	tree, err := topology.BuildTree(inv)
	if err != nil {
		t.Fatal(err)
	}
	return tree
}

func keys(m tea.Model, msgs ...tea.Msg) RootPickerModel {
	for _, msg := range msgs {
		m, _ = m.Update(msg)
	}
	return m.(RootPickerModel)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestRootPickerItems(t *testing.T) {
	m := NewRootPickerModel(testTree(t))

	var names []string
	for _, it := range m.Items {
		names = append(names, it.Name)
	}
	want := []string{
		"all", "CVP", "DC1", "DC1_FABRIC", "DC1_SPINES", "DC1_LEAF1", "DC1_LEAF2",
		"DC1_TENANTS_NETWORKS", "DC1_L3LEAFS", "DC1_SERVERS",
	}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Errorf("items = %v, want %v", names, want)
	}
	if m.Items[0].Depth != 0 || m.Items[1].Depth != 1 || m.Items[3].Depth != 2 {
		t.Errorf("depths = %d, %d, %d", m.Items[0].Depth, m.Items[1].Depth, m.Items[3].Depth)
	}
	if m.Items[4].Name != "DC1_SPINES" || m.Items[4].Devices != 2 {
		t.Errorf("Items[4] = %s with %d devices, want DC1_SPINES with 2", m.Items[4].Name, m.Items[4].Devices)
	}
}

func TestRootPickerNavigate(t *testing.T) {
	m := keys(NewRootPickerModel(testTree(t)),
		tea.KeyMsg{Type: tea.KeyUp},
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyDown},
		tea.KeyMsg{Type: tea.KeyEnter},
	)
	if m.Selected != "DC1_FABRIC" {
		t.Errorf("Selected = %q, want DC1_FABRIC", m.Selected)
	}
}

func TestRootPickerFilter(t *testing.T) {
	m := keys(NewRootPickerModel(testTree(t)), runes("leaf"), tea.KeyMsg{Type: tea.KeyDown})
	if got := len(m.visible()); got != 3 {
		t.Fatalf("visible = %d, want 3 (LEAF1, LEAF2, L3LEAFS)", got)
	}
	if !strings.Contains(m.View(), "filter: leaf") {
		t.Error("view should show the filter")
	}

	m = keys(m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Selected != "DC1_LEAF2" {
		t.Errorf("Selected = %q, want DC1_LEAF2", m.Selected)
	}

	m = keys(NewRootPickerModel(testTree(t)), runes("zz"), tea.KeyMsg{Type: tea.KeyEnter})
	if m.Selected != "" {
		t.Errorf("Selected = %q with no matches", m.Selected)
	}
	if !strings.Contains(m.View(), "no matching containers") {
		t.Error("view should report an empty filter result")
	}

	m = keys(m, tea.KeyMsg{Type: tea.KeyBackspace}, tea.KeyMsg{Type: tea.KeyBackspace})
	if m.Filter != "" || len(m.visible()) != len(m.Items) {
		t.Errorf("backspace should clear the filter, got %q", m.Filter)
	}
}

func TestRootPickerScroll(t *testing.T) {
	m := NewRootPickerModel(testTree(t))
	m = keys(m, tea.WindowSizeMsg{Height: 10})
	if m.Height != 5 {
		t.Fatalf("Height = %d, want 5", m.Height)
	}
	for range 7 {
		m = keys(m, tea.KeyMsg{Type: tea.KeyDown})
	}
	if m.Cursor != 7 || m.Offset != 3 {
		t.Errorf("Cursor, Offset = %d, %d; want 7, 3", m.Cursor, m.Offset)
	}
	for range 20 {
		m = keys(m, tea.KeyMsg{Type: tea.KeyDown})
	}
	if m.Cursor != len(m.Items)-1 {
		t.Errorf("Cursor = %d, want last item", m.Cursor)
	}
}

func TestRootPickerQuit(t *testing.T) {
	_, cmd := NewRootPickerModel(testTree(t)).Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("esc should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("esc should return tea.Quit")
	}
}

func TestContainerTree(t *testing.T) {
	out := containerTree(testTree(t), true)

	lines := strings.Split(out, "\n")
	if lines[0] != "Tenant" {
		t.Errorf("first line = %q, want Tenant", lines[0])
	}
	if strings.Count(out, "DC1_L3LEAFS") != 2 || strings.Count(out, "shadowed duplicate") != 1 {
		t.Errorf("duplicate marking wrong:\n%s", out)
	}
	if !strings.Contains(out, "cv_server") {
		t.Errorf("devices missing:\n%s", out)
	}
}
