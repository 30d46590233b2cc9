package cli

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	cverrors "github.com/matzehuels/cvtopo/pkg/errors"
	cvio "github.com/matzehuels/cvtopo/pkg/io"
	"github.com/matzehuels/cvtopo/pkg/store"
)

// snapshotsCommand groups the snapshot inspection commands.
func (c *CLI) snapshotsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "snapshots",
		Aliases: []string{"snap"},
		Short:   "Inspect stored topologies",
	}
	cmd.PersistentFlags().String("store", "", "snapshot store: a directory or a mongodb:// URI")

	cmd.AddCommand(c.snapshotsListCommand())
	cmd.AddCommand(c.snapshotsShowCommand())
	cmd.AddCommand(c.snapshotsDeleteCommand())
	return cmd
}

func (c *CLI) withStore(cmd *cobra.Command, fn func(store.Store) error) error {
	if cmd.Flags().Changed("store") {
		c.Config.Store.URI, _ = cmd.Flags().GetString("store")
	}
	st, err := c.openStore(cmd.Context())
	if err != nil {
		return err
	}
	defer st.Close()
	return fn(st)
}

func (c *CLI) snapshotsListCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List snapshots, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(st store.Store) error {
				snaps, err := st.List(cmd.Context(), limit)
				if err != nil {
					return err
				}
				if len(snaps) == 0 {
					printInfo("No snapshots")
					return nil
				}
				rows := make([][]string, len(snaps))
				for i, s := range snaps {
					rows[i] = []string{
						s.ID,
						s.CreatedAt.Local().Format(time.DateTime),
						s.Root,
						strconv.Itoa(s.Topology.Len()),
						strconv.Itoa(s.Topology.DeviceCount()),
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Created", "Root", "Containers", "Devices"}, rows))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", store.DefaultListLimit, "maximum number of snapshots")
	return cmd
}

func (c *CLI) snapshotsShowCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print the topology of a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cverrors.ValidateFormat(format, cvio.FormatYAML, cvio.FormatJSON); err != nil {
				return err
			}
			if err := cverrors.ValidateSnapshotID(args[0]); err != nil {
				return err
			}
			return c.withStore(cmd, func(st store.Store) error {
				snap, err := st.Get(cmd.Context(), args[0])
				if errors.Is(err, store.ErrNotFound) {
					return cverrors.New(cverrors.ErrCodeSnapshotNotFound, "snapshot %s not found", args[0])
				}
				if err != nil {
					return err
				}
				printInfo("Snapshot of %s taken %s", StyleHighlight.Render(snap.Root), snap.CreatedAt.Local().Format(time.DateTime))
				for _, w := range snap.Warnings {
					printWarning("%s", w)
				}
				return cvio.Write(cvio.NewDocument(snap.Topology, nil), format, cmd.OutOrStdout())
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", cvio.FormatYAML, "output format: yaml or json")
	return cmd
}

func (c *CLI) snapshotsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cverrors.ValidateSnapshotID(args[0]); err != nil {
				return err
			}
			return c.withStore(cmd, func(st store.Store) error {
				if err := st.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				printSuccess("Deleted snapshot %s", args[0])
				return nil
			})
		},
	}
}
