// Package io reads and writes the variable documents consumed by the
// arista.cvp Ansible collection.
//
// # Format
//
// A [Document] has two top-level keys, matching the variables a playbook
// registers and passes on to cv_container and cv_configlet:
//
//	CVP_TOPOLOGY:
//	  DC1_FABRIC:
//	    parent_container: Tenant
//	  DC1_SPINES:
//	    parent_container: DC1_FABRIC
//	    devices:
//	      - DC1-SPINE1
//	      - DC1-SPINE2
//	CVP_CONFIGLETS:
//	  AVD_DC1-SPINE1: |
//	    hostname DC1-SPINE1
//
// Containers are written in traversal order, so a parent always precedes
// its children. Configlets are sorted by name.
//
// # Formats
//
// YAML is the default. JSON carries the same structure; [Export] and
// [Import] pick the format from the file extension.
package io
