package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/matzehuels/cvtopo/pkg/cache"
	cverrors "github.com/matzehuels/cvtopo/pkg/errors"
	"github.com/matzehuels/cvtopo/pkg/observability"
	"github.com/matzehuels/cvtopo/pkg/render/nodelink"
	"github.com/matzehuels/cvtopo/pkg/topology"
)

// RenderOptions selects the diagram format.
type RenderOptions struct {
	Format  string `json:"format"`
	Devices bool   `json:"devices,omitempty"`
}

func (o RenderOptions) keyOpts() cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{Format: o.Format, Devices: o.Devices}
}

// Render draws t as a node-link diagram. SVG output is cached by topology
// content. The second result reports a cache hit.
func (r *Runner) Render(ctx context.Context, t *topology.Topology, opts RenderOptions) ([]byte, bool, error) {
	if opts.Format == "" {
		opts.Format = FormatSVG
	}
	if err := ValidateFormat(opts.Format); err != nil {
		return nil, false, err
	}

	dot := nodelink.ToDOT(t, nodelink.Options{Devices: opts.Devices})
	if opts.Format == FormatDOT {
		return []byte(dot), false, nil
	}

	key, err := r.artifactKey(t, opts)
	if err != nil {
		return nil, false, cverrors.Wrap(cverrors.ErrCodeInternal, err, "hash topology")
	}
	if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return data, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	hooks := observability.Pipeline()
	start := time.Now()
	hooks.OnRenderStart(ctx, opts.Format)
	svg, err := nodelink.RenderSVG(ctx, dot)
	hooks.OnRenderComplete(ctx, opts.Format, time.Since(start), err)
	if err != nil {
		return nil, false, cverrors.Wrap(cverrors.ErrCodeInternal, err, "render %s", opts.Format)
	}

	if err := r.Cache.Set(ctx, key, svg, cache.ArtifactTTL); err == nil {
		observability.Cache().OnCacheSet(ctx, "artifact", len(svg))
	}
	return svg, false, nil
}

func (r *Runner) artifactKey(t *topology.Topology, opts RenderOptions) (string, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return "", err
	}
	hash := cache.Hash(fmt.Appendf(data, "\x00%s", t.ReservedRoot()))
	return r.Keyer.ArtifactKey(hash, opts.keyOpts()), nil
}
