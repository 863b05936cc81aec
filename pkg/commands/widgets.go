package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tableflip.dev/dash/pkg/api"
	"tableflip.dev/dash/pkg/commands/options"
	"tableflip.dev/dash/pkg/printers"
)

func addWidgets(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "widgets",
		Short: "list the widget catalog",
		Example: `
dash widgets
dash widgets --ids
dash widgets --json
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := api.LoadConfig()
			if err != nil {
				return oo.HandleError(err)
			}
			svc, err := api.New(cfg)
			if err != nil {
				return oo.HandleError(err)
			}
			widgets, err := svc.Widgets(context.Background())
			if err != nil {
				return oo.HandleError(err)
			}
			if oo.JSON {
				b, err := json.Marshal(widgets)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(color.Output, string(b))
				return nil
			}
			pp := &printers.PrettyPrint{ShowID: oo.ShowID}
			pp.Title("Widgets")
			pp.Widgets(widgets)
			return nil
		},
	}
	options.AddOutputArgs(cmd, oo)

	topLevel.AddCommand(cmd)
}
