// Package render groups the diagram renderers of cvtopo.
//
// The [nodelink] subpackage draws an extracted topology as a Graphviz
// diagram, containers as boxes under the reserved root and, optionally,
// devices as ellipses under their leaf containers:
//
//	dot := nodelink.ToDOT(topo, nodelink.Options{Devices: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [nodelink]: github.com/matzehuels/cvtopo/pkg/render/nodelink
package render
