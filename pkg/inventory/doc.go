// Package inventory decodes nested Ansible-style inventories.
//
// # Overview
//
// An inventory is a mapping of group names to group bodies. A body may declare
// sub-groups under the reserved "children" key and devices under "hosts":
//
//	all:
//	  children:
//	    DC1:
//	      children:
//	        DC1_SPINES:
//	          hosts:
//	            spine1:
//	            spine2:
//
// Go maps do not keep key order, and the order of groups and hosts is part of
// the output contract, so documents decode into [Mapping], an ordered list of
// key/value entries built from the yaml.v3 node tree.
//
// # Classification
//
// [Classify] turns a [Mapping] into a [Forest] of [Group] values, each tagged
// [LeafGroup] or [BranchGroup]. Consumers walk the forest instead of probing
// raw mappings for reserved keys. Values that cannot be groups (scalars,
// sequences) are skipped and reported as [Issue] values; classification never
// fails.
package inventory
