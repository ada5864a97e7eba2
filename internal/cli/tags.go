package cli

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newTagsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List the defined custom elements and their observed attributes",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			tagColor := color.New(color.FgGreen, color.Bold)
			w := cmd.OutOrStdout()
			for _, tag := range a.reg.Tags() {
				cls, _ := a.reg.Get(tag)
				tagColor.Fprint(w, tag)
				if attrs := cls.ObservedAttributes(); len(attrs) > 0 {
					fmt.Fprintf(w, "  %s", strings.Join(attrs, " "))
				}
				fmt.Fprintln(w)
			}
		},
	}
}
