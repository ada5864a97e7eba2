package cli

import (
	"os"

	"github.com/spf13/cobra"
)

func newRenderCommand(a *app) *cobra.Command {
	var (
		output  string
		restore bool
	)
	cmd := &cobra.Command{
		Use:   "render <fixture.yaml>",
		Short: "Render a fixture document as HTML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.build(cmd.Context(), args[0], restore)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return doc.Node().Component().Render(cmd.Context(), w)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write HTML to a file instead of stdout")
	cmd.Flags().BoolVar(&restore, "restore", false, "apply stored snapshots to elements with an id")
	return cmd
}
