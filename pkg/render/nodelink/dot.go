package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/cvtopo/pkg/topology"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Devices adds the devices of leaf containers as ellipse nodes.
	Devices bool
}

// ToDOT converts a topology to Graphviz DOT source. Nodes and edges are
// emitted in topology order so the output is stable.
func ToDOT(t *topology.Topology, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=18, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	root := t.ReservedRoot()
	fmt.Fprintf(&buf, "  %s [style=\"rounded,filled,bold\", fillcolor=lightgrey];\n", dotID(root))
	for name, c := range t.All() {
		if c.HasParent() {
			fmt.Fprintf(&buf, "  %s;\n", dotID(name))
		} else {
			fmt.Fprintf(&buf, "  %s [style=\"rounded,dashed\"];\n", dotID(name))
		}
		if opts.Devices {
			for _, d := range c.Devices {
				fmt.Fprintf(&buf, "  %s [shape=ellipse, fontsize=14, label=%s];\n", dotID(deviceID(name, d)), dotID(d))
			}
		}
	}

	buf.WriteString("\n")
	for name, c := range t.All() {
		if c.HasParent() {
			fmt.Fprintf(&buf, "  %s -> %s;\n", dotID(c.Parent), dotID(name))
		}
		if opts.Devices {
			for _, d := range c.Devices {
				fmt.Fprintf(&buf, "  %s -> %s [arrowhead=none, style=dotted];\n", dotID(name), dotID(deviceID(name, d)))
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// dotEscaper escapes the two characters DOT gives meaning to inside a
// quoted string. Everything else, including non-ASCII names, is kept as is.
var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// dotID quotes s as a DOT identifier.
func dotID(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}

// deviceID keeps device nodes distinct from containers of the same name;
// the label still shows the bare device name.
func deviceID(container, device string) string {
	return container + "/" + device
}

// RenderSVG renders DOT source to SVG using the embedded Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces the fixed point-based size Graphviz writes with
// a viewBox-driven one so the SVG scales in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
