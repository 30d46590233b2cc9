package cli

import (
	"context"

	"github.com/spf13/cobra"

	cverrors "github.com/matzehuels/cvtopo/pkg/errors"
	"github.com/matzehuels/cvtopo/pkg/pipeline"
)

// extractFlags are shared by the commands that extract a topology.
type extractFlags struct {
	root         string
	reservedRoot string
	strict       bool
	noCache      bool
	refresh      bool
}

func (f *extractFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.root, "root", "r", "", "container to extract (interactive picker when omitted on a terminal)")
	cmd.Flags().StringVar(&f.reservedRoot, "reserved-root", "", "name of the CloudVision top-level container (default \"Tenant\")")
	cmd.Flags().BoolVar(&f.strict, "strict", false, "fail on duplicate container names")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached results and extract again")
}

// completeRoot offers the containers of the inventory argument for --root.
func (c *CLI) completeRoot(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	names, err := pipeline.NewRunner(nil, nil, c.Logger).Containers(ctx, pipeline.Options{InventoryPath: args[0]})
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// options builds pipeline options for the inventory at path.
func (c *CLI) options(cmd *cobra.Command, path string, f *extractFlags) pipeline.Options {
	return pipeline.Options{
		InventoryPath: path,
		Root:          f.root,
		ReservedRoot:  stringFlag(cmd, "reserved-root", c.Config.ReservedRoot),
		Strict:        f.strict,
		Refresh:       f.refresh,
	}
}

// resolveRoot fills opts.Root from the interactive picker when it is unset.
func (c *CLI) resolveRoot(ctx context.Context, runner *pipeline.Runner, opts *pipeline.Options) error {
	if opts.Root != "" {
		return nil
	}
	if !c.interactive() {
		return cverrors.New(cverrors.ErrCodeInvalidInput, "--root is required when not running in a terminal")
	}
	tree, err := runner.Tree(ctx, *opts)
	if err != nil {
		return err
	}
	name, err := pickRoot(tree)
	if err != nil {
		return err
	}
	if name == "" {
		return context.Canceled
	}
	opts.Root = name
	return nil
}
