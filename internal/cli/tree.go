package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	cverrors "github.com/matzehuels/cvtopo/pkg/errors"
	"github.com/matzehuels/cvtopo/pkg/pipeline"
)

// treeCommand prints the container hierarchy of an inventory.
func (c *CLI) treeCommand() *cobra.Command {
	var (
		devices bool
		strict  bool
	)

	cmd := &cobra.Command{
		Use:   "tree <inventory>",
		Short: "Print the container tree of an inventory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner := pipeline.NewRunner(nil, nil, c.Logger)
			tree, err := runner.Tree(ctx, pipeline.Options{
				InventoryPath: args[0],
				ReservedRoot:  stringFlag(cmd, "reserved-root", c.Config.ReservedRoot),
				Strict:        strict,
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), containerTree(tree, devices))
			for _, w := range pipeline.Warnings(tree) {
				printWarning("%s", w)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&devices, "devices", "d", false, "list the devices of leaf containers")
	cmd.Flags().String("reserved-root", "", "name of the top-level container (default \"Tenant\")")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on duplicate container names")
	return cmd
}

// devicesCommand prints the devices of one container.
func (c *CLI) devicesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "devices <inventory> <container>",
		Short: "Print the devices of a container",
		Long: `Print the hosts of every inventory group named <container>, one per line.
Groups sharing the name contribute their hosts in document order.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner := pipeline.NewRunner(nil, nil, c.Logger)
			tree, err := runner.Tree(cmd.Context(), pipeline.Options{InventoryPath: args[0]})
			if err != nil {
				return err
			}
			if _, ok := tree.Lookup(args[1]); !ok {
				return cverrors.New(cverrors.ErrCodeContainerNotFound, "container %q not found in %s", args[1], args[0])
			}
			for _, d := range tree.Devices(args[1]) {
				fmt.Fprintln(cmd.OutOrStdout(), d)
			}
			return nil
		},
	}
}
