package cli

import (
	"path/filepath"

	"github.com/spf13/cobra"

	cverrors "github.com/matzehuels/cvtopo/pkg/errors"
	cvio "github.com/matzehuels/cvtopo/pkg/io"
	"github.com/matzehuels/cvtopo/pkg/store"
)

// topologyCommand creates the command that writes the provisioning document.
func (c *CLI) topologyCommand() *cobra.Command {
	var (
		ef           extractFlags
		configletDir string
		recursive    bool
		output       string
		format       string
		save         bool
	)

	cmd := &cobra.Command{
		Use:   "topology <inventory>",
		Short: "Extract the CloudVision topology below a container",
		Long: `Extract the container topology below --root and write it, together with
the configlets found in --configlets, as the CVP_TOPOLOGY / CVP_CONFIGLETS
document consumed by the CloudVision playbooks.`,
		Example: `  cvtopo topology inventory.yml --root DC1_FABRIC
  cvtopo topology inventory.yml -r DC1 --configlets intended/configs -o cvp.yml
  cvtopo topology inventory.yml -r DC1 --format json --save`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if output == "" {
				if err := cverrors.ValidateFormat(format, cvio.FormatYAML, cvio.FormatJSON); err != nil {
					return err
				}
			}

			runner, err := c.newRunner(ctx, ef.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			opts := c.options(cmd, args[0], &ef)
			opts.ConfigletDir = configletDir
			opts.ConfigletPrefix = stringFlag(cmd, "prefix", c.Config.ConfigletPrefix)
			opts.ConfigletExtension = stringFlag(cmd, "ext", c.Config.ConfigletExtension)
			opts.ConfigletRecursive = recursive
			if err := c.resolveRoot(ctx, runner, &opts); err != nil {
				return err
			}

			prog := newProgress(loggerFromContext(ctx))
			result, err := runner.Execute(ctx, opts)
			if err != nil {
				return err
			}
			prog.done("pipeline complete", "root", opts.Root)

			doc := cvio.NewDocument(result.Topology, result.Configlets)
			if output == "" {
				if err := cvio.Write(doc, format, cmd.OutOrStdout()); err != nil {
					return err
				}
			} else {
				if err := cvio.Export(doc, output); err != nil {
					return cverrors.Wrap(cverrors.ErrCodeInvalidPath, err, "write %s", output)
				}
				printSuccess("Extracted %s", StyleHighlight.Render(opts.Root))
				printStats(result.Stats.Containers, result.Stats.Devices, result.Stats.Configlets, result.CacheHit)
				printFile(output)
			}
			for _, w := range result.Warnings {
				printWarning("%s", w)
			}

			if save {
				st, err := c.openStore(ctx)
				if err != nil {
					return err
				}
				defer st.Close()
				snap := store.New(opts.Root, result.InventoryHash, result.Topology, result.Warnings)
				if err := st.Save(ctx, snap); err != nil {
					return cverrors.Wrap(cverrors.ErrCodeInternal, err, "save snapshot")
				}
				printSuccess("Saved snapshot %s", StyleHighlight.Render(snap.ID))
				printNextStep("Inspect it", appName+" snapshots show "+snap.ID)
			}
			if output != "" && !save {
				printNextStep("Draw it", appName+" render "+filepath.ToSlash(args[0])+" -r "+opts.Root)
			}
			return nil
		},
	}

	ef.register(cmd)
	_ = cmd.RegisterFlagCompletionFunc("root", c.completeRoot)
	cmd.Flags().StringVar(&configletDir, "configlets", "", "directory of device configurations to include")
	cmd.Flags().String("prefix", "", "configlet name prefix, \"none\" for no prefix (default \"AVD\")")
	cmd.Flags().String("ext", "", "configlet file extension (default \"cfg\")")
	cmd.Flags().BoolVar(&recursive, "recursive", false, "search the configlet directory recursively")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file; .json selects JSON, anything else YAML (default stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", cvio.FormatYAML, "stdout format: yaml or json")
	cmd.Flags().BoolVar(&save, "save", false, "store the result as a snapshot")
	return cmd
}
