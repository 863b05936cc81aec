package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tableflip.dev/dash/pkg/api"
	"tableflip.dev/dash/pkg/commands/options"
	"tableflip.dev/dash/pkg/compose"
	"tableflip.dev/dash/pkg/printers"
	"tableflip.dev/dash/pkg/reorder"
	"tableflip.dev/dash/pkg/section"
)

func addSections(topLevel *cobra.Command) {
	oo := &options.OutputOptions{}

	cmd := &cobra.Command{
		Use:   "sections",
		Short: "list dashboard sections in display order",
		Example: `
dash sections
dash sections --json
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			cfg, err := api.LoadConfig()
			if err != nil {
				return oo.HandleError(err)
			}
			svc, err := api.New(cfg)
			if err != nil {
				return oo.HandleError(err)
			}
			sections, err := svc.Sections(ctx)
			if err != nil {
				return oo.HandleError(err)
			}
			widgets, err := svc.Widgets(ctx)
			if err != nil {
				return oo.HandleError(err)
			}
			g := compose.Compose(widgets, sections)
			if oo.JSON {
				b, err := json.Marshal(g.Order)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(color.Output, string(b))
				return nil
			}
			pp := &printers.PrettyPrint{ShowID: oo.ShowID}
			pp.Title("Sections")
			pp.Sections(g)
			return nil
		},
	}
	options.AddOutputArgs(cmd, oo)

	addSectionsMove(cmd)

	topLevel.AddCommand(cmd)
}

func addSectionsMove(sections *cobra.Command) {
	mo := &options.MoveOptions{}

	cmd := &cobra.Command{
		Use:   "move <name>",
		Short: "move a section one position up or down",
		Example: `
dash sections move finance --up
dash sections move reading --down
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := mo.Direction()
			if err != nil {
				return err
			}
			ctx := context.Background()
			cfg, err := api.LoadConfig()
			if err != nil {
				return err
			}
			svc, err := api.New(cfg)
			if err != nil {
				return err
			}
			fetched, err := svc.Sections(ctx)
			if err != nil {
				return err
			}
			order := section.SortByPosition(fetched)
			from := section.Find(order, args[0])
			if from < 0 {
				return fmt.Errorf("unknown section %q", args[0])
			}
			moved, ok := reorder.Swapped(order, from, from+dir)
			if !ok {
				// Already at the boundary.
				return nil
			}
			if err := svc.SetSectionPositions(ctx, section.Placements(moved)); err != nil {
				return err
			}
			fmt.Printf("moved %q to position %d\n", args[0], from+dir)
			return nil
		},
	}
	options.AddMoveArgs(cmd, mo)

	sections.AddCommand(cmd)
}
