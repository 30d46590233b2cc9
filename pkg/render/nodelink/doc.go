// Package nodelink renders container topologies as node-link diagrams.
//
// # Overview
//
// A topology is drawn top to bottom with the reserved root at the top, each
// container as a rounded box and each parent link as an arrow. Containers
// with an empty record (no parent linkage) are drawn dashed and unattached,
// which makes the linkage gap visible.
//
// # Usage
//
//	dot := nodelink.ToDOT(topo, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Options
//
//   - Devices: draw the devices of leaf containers as ellipses
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering, so no Graphviz installation is needed.
package nodelink
