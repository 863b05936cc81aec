package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"tableflip.dev/dash/pkg/api"
	"tableflip.dev/dash/pkg/commands/options"
	"tableflip.dev/dash/pkg/store"
	"tableflip.dev/dash/pkg/tui/app"
)

func addUI(topLevel *cobra.Command) {
	ro := &options.RefreshOptions{}

	cmd := &cobra.Command{
		Use:   "ui",
		Short: "open the dashboard interface",
		Example: `
dash ui
dash ui --refresh=2m
`,
		ValidArgs: []string{},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
				return fmt.Errorf("ui requires an interactive terminal")
			}
			interval, err := ro.GetInterval()
			if err != nil {
				return err
			}
			cfg, err := api.LoadConfig()
			if err != nil {
				return err
			}
			svc, err := api.New(cfg)
			if err != nil {
				return err
			}
			snap, err := store.Open(cfg.SnapshotPath)
			if err != nil {
				return err
			}
			return app.Run(context.Background(), svc, snap, interval)
		},
	}
	options.AddRefreshArgs(cmd, ro)

	topLevel.AddCommand(cmd)
}
