package topology

import "github.com/matzehuels/cvtopo/pkg/inventory"

// FindDevices returns the hosts declared directly under every group named
// container, in document order. Hosts of sub-groups are not included.
//
// Each call returns a newly allocated slice; an unknown container or a group
// without hosts yields an empty, non-nil slice.
func FindDevices(inv inventory.Mapping, container string) []string {
	forest, _ := inventory.Classify(inv)
	return devicesOf(forest, container)
}

// Devices is [FindDevices] over the inventory the tree was built from.
func (t *Tree) Devices(container string) []string {
	if t.forest == nil {
		return []string{}
	}
	return devicesOf(t.forest, container)
}

func devicesOf(forest *inventory.Forest, container string) []string {
	devices := []string{}
	for _, g := range forest.Find(container) {
		devices = append(devices, g.Hosts...)
	}
	return devices
}
