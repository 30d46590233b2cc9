// Package topology derives CloudVision container topologies from inventories.
//
// # Overview
//
// CloudVision organizes devices in a tree of containers under a fixed
// top-level container named "Tenant". An Ansible inventory already describes
// such a tree as nested groups; this package rebuilds it explicitly and
// flattens the part of it that should be provisioned.
//
// The work happens in three steps:
//
//  1. [BuildTree] classifies the inventory and creates one [Node] per group
//     under a synthetic root.
//  2. [Tree.Extract] walks the subtree of a chosen container in pre-order and
//     emits a [Container] record for each node.
//  3. Leaves of that subtree get the hosts of their group, resolved by
//     [FindDevices].
//
// [Extract] runs all three steps at once:
//
//	inv, _ := inventory.Load("inventory.yml")
//	topo, err := topology.Extract(inv, "DC1_FABRIC")
//	if errors.Is(err, topology.ErrContainerNotFound) {
//	    // no such group
//	}
//	for name, c := range topo.All() {
//	    fmt.Println(name, c.Parent, c.Devices)
//	}
//
// # Root Handling
//
// The extracted subtree root is always parented to the reserved root, whatever
// its depth in the inventory. Containers that are structurally direct
// children of the reserved root, other than the subtree root, are emitted with
// an empty record. The reserved root itself is never emitted. Its name is
// configurable with [WithReservedRoot].
//
// # Identity
//
// Nodes are addressed by [NodeID]; names are labels indexed separately. When
// two groups share a name both nodes exist, the name resolves to the later
// one, and the collision is listed by [Tree.Duplicates]. [WithStrict] turns
// collisions into [ErrDuplicateContainer].
//
// # Concurrency
//
// Every call builds its own tree and result. Independent extractions can run
// in parallel.
package topology
