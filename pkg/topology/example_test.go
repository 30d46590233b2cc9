package topology_test

import (
	"encoding/json"
	"fmt"

	"github.com/matzehuels/cvtopo/pkg/inventory"
	"github.com/matzehuels/cvtopo/pkg/topology"
)

func ExampleExtract() {
	inv, _ := inventory.Parse([]byte(`
Tenant:
  children:
    DC1:
      children:
        DC1_SPINES:
          hosts:
            spine1:
`))

	topo, _ := topology.Extract(inv, "DC1")
	out, _ := json.Marshal(topo)
	fmt.Println(string(out))
	// Output:
	// {"DC1":{"parent_container":"Tenant"},"DC1_SPINES":{"parent_container":"DC1","devices":["spine1"]}}
}

func ExampleFindDevices() {
	inv, _ := inventory.Parse([]byte(`
FABRIC:
  children:
    SPINES:
      hosts:
        spine1:
        spine2:
`))

	fmt.Println(topology.FindDevices(inv, "SPINES"))
	fmt.Println(topology.FindDevices(inv, "FABRIC"))
	// Output:
	// [spine1 spine2]
	// []
}

func ExampleTree_Containers() {
	inv, _ := inventory.Parse([]byte(`
DC1:
  children:
    SPINES:
    LEAFS:
DC2:
`))

	tree, _ := topology.BuildTree(inv)
	fmt.Println(tree.RootName(), tree.Containers())
	// Output:
	// Tenant [DC1 SPINES LEAFS DC2]
}
