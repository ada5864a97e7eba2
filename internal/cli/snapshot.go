package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newSnapshotCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Manage stored element snapshots",
	}
	cmd.AddCommand(newSnapshotSaveCommand(a))
	cmd.AddCommand(newSnapshotListCommand(a))
	cmd.AddCommand(newSnapshotDeleteCommand(a))
	return cmd
}

func newSnapshotSaveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "save <fixture.yaml>",
		Short: "Render a fixture and store a snapshot of every element with an id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.build(cmd.Context(), args[0], false)
			if err != nil {
				return err
			}
			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			saved := 0
			for _, el := range identified(doc) {
				s, err := a.reg.Snapshot(el, a.cfg.Sensitive)
				if err != nil {
					return err
				}
				if err := st.Put(el.Node().ID(), s); err != nil {
					return err
				}
				saved++
			}
			color.New(color.FgGreen).Fprintf(cmd.OutOrStdout(), "saved %d snapshot(s)\n", saved)
			return nil
		},
	}
}

func newSnapshotListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored snapshot ids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			ids, err := st.IDs()
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}

func newSnapshotDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete stored snapshots",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			for _, id := range args {
				if err := st.Delete(id); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
