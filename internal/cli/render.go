package cli

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	cverrors "github.com/matzehuels/cvtopo/pkg/errors"
	"github.com/matzehuels/cvtopo/pkg/pipeline"
	"github.com/matzehuels/cvtopo/pkg/topology"
)

// renderCommand draws the extracted topology as a node-link diagram.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		ef      extractFlags
		format  string
		devices bool
		output  string
	)

	cmd := &cobra.Command{
		Use:   "render <inventory>",
		Short: "Draw the topology below a container as DOT or SVG",
		Example: `  cvtopo render inventory.yml -r DC1 -o dc1.svg
  cvtopo render inventory.yml -r DC1 -f dot --devices | dot -Tpng > dc1.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !cmd.Flags().Changed("format") && output != "" {
				format = formatForPath(output)
			}
			if err := pipeline.ValidateFormat(format); err != nil {
				return err
			}

			runner, err := c.newRunner(ctx, ef.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			opts := c.options(cmd, args[0], &ef)
			if err := c.resolveRoot(ctx, runner, &opts); err != nil {
				return err
			}
			result, err := runner.Execute(ctx, opts)
			if err != nil {
				return err
			}

			data, cached, err := c.render(cmd, runner, result.Topology, pipeline.RenderOptions{Format: format, Devices: devices})
			if err != nil {
				return err
			}

			if output == "" {
				_, err := cmd.OutOrStdout().Write(data)
				return err
			}
			if err := writeFile(output, data); err != nil {
				return err
			}
			printSuccess("Rendered %s", StyleHighlight.Render(opts.Root))
			printStats(result.Stats.Containers, result.Stats.Devices, 0, cached)
			printFile(output)
			return nil
		},
	}

	ef.register(cmd)
	_ = cmd.RegisterFlagCompletionFunc("root", c.completeRoot)
	cmd.Flags().StringVarP(&format, "format", "f", pipeline.FormatSVG, "output format: dot or svg (default from -o extension)")
	cmd.Flags().BoolVar(&devices, "devices", false, "draw devices below leaf containers")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

// render runs the renderer behind a spinner; SVG layout can take a moment on
// large fabrics.
func (c *CLI) render(cmd *cobra.Command, runner *pipeline.Runner, t *topology.Topology, opts pipeline.RenderOptions) ([]byte, bool, error) {
	if opts.Format == pipeline.FormatDOT {
		return runner.Render(cmd.Context(), t, opts)
	}
	spinner := newSpinnerWithContext(cmd.Context(), "Rendering "+opts.Format+"...")
	spinner.Start()
	data, cached, err := runner.Render(cmd.Context(), t, opts)
	spinner.Stop()
	return data, cached, err
}

func formatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".dot", ".gv":
		return pipeline.FormatDOT
	default:
		return pipeline.FormatSVG
	}
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return cverrors.Wrap(cverrors.ErrCodeInvalidPath, err, "create %s", dir)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return cverrors.Wrap(cverrors.ErrCodeInvalidPath, err, "write %s", path)
	}
	return nil
}
