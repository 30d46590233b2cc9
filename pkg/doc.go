// Package pkg holds the libraries behind cvtopo, which turns Ansible
// inventories into CloudVision container topologies.
//
// # Overview
//
// The data flow:
//
//	inventory.yml
//	     ↓
//	[inventory] package (order-preserving decode, group classification)
//	     ↓
//	[topology] package (container tree, device resolution, extraction)
//	     ↓
//	[io] package (CVP_TOPOLOGY / CVP_CONFIGLETS documents)
//	[render/nodelink] package (DOT and SVG diagrams)
//
// [pipeline] runs these steps with caching from [cache]; [store] keeps
// extracted topologies as snapshots and [server] exposes the pipeline over
// HTTP. [configlet] collects device configurations, [errors] defines the
// error codes shared by the CLI and the API, and [observability] provides
// hooks around pipeline stages.
//
// [inventory]: github.com/matzehuels/cvtopo/pkg/inventory
// [topology]: github.com/matzehuels/cvtopo/pkg/topology
// [io]: github.com/matzehuels/cvtopo/pkg/io
// [render/nodelink]: github.com/matzehuels/cvtopo/pkg/render/nodelink
// [pipeline]: github.com/matzehuels/cvtopo/pkg/pipeline
// [cache]: github.com/matzehuels/cvtopo/pkg/cache
// [store]: github.com/matzehuels/cvtopo/pkg/store
// [server]: github.com/matzehuels/cvtopo/pkg/server
// [configlet]: github.com/matzehuels/cvtopo/pkg/configlet
// [errors]: github.com/matzehuels/cvtopo/pkg/errors
// [observability]: github.com/matzehuels/cvtopo/pkg/observability
package pkg
