package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cvtopo/pkg/configlet"
	cverrors "github.com/matzehuels/cvtopo/pkg/errors"
)

// configletsCommand lists the configlets a topology run would include.
func (c *CLI) configletsCommand() *cobra.Command {
	var (
		recursive bool
		names     bool
	)

	cmd := &cobra.Command{
		Use:   "configlets <dir>",
		Short: "List the configlets found in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := configlet.Options{
				Prefix:    stringFlag(cmd, "prefix", c.Config.ConfigletPrefix),
				Extension: stringFlag(cmd, "ext", c.Config.ConfigletExtension),
				Recursive: recursive,
			}
			if err := cverrors.ValidatePrefix(opts.Prefix); err != nil {
				return err
			}
			list, err := configlet.List(args[0], opts)
			if err != nil {
				return cverrors.Wrap(cverrors.ErrCodeInvalidPath, err, "list configlets")
			}

			out := cmd.OutOrStdout()
			if names {
				for _, cl := range list {
					fmt.Fprintln(out, cl.Name)
				}
				return nil
			}
			if len(list) == 0 {
				printInfo("No *.%s files in %s", opts.Extension, args[0])
				return nil
			}
			rows := make([][]string, len(list))
			for i, cl := range list {
				rows[i] = []string{cl.Name, cl.Path, strconv.Itoa(len(cl.Content))}
			}
			fmt.Fprintln(out, renderTable([]string{"Configlet", "File", "Bytes"}, rows))
			return nil
		},
	}

	cmd.Flags().String("prefix", "", "configlet name prefix, \"none\" for no prefix (default \"AVD\")")
	cmd.Flags().String("ext", "", "file extension (default \"cfg\")")
	cmd.Flags().BoolVar(&recursive, "recursive", false, "search subdirectories")
	cmd.Flags().BoolVar(&names, "names", false, "print only configlet names")
	return cmd
}
