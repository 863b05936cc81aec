package commands

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"tableflip.dev/dash/pkg/api"
	"tableflip.dev/dash/pkg/habit"
)

func addHabit(topLevel *cobra.Command) {
	habitCmd := &cobra.Command{
		Use:   "habit",
		Short: "work with habit tracking widgets",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd := &cobra.Command{
		Use:   "toggle <widget-id> <habit-id> [date]",
		Short: "flip a habit's completion for a day",
		Long: `Flips the completion state of one habit on one day and records it
with the dashboard service. The date defaults to today and must fall
inside the widget's tracked window.`,
		Example: `
dash habit toggle w-habits drink-water
dash habit toggle w-habits stretch 2026-08-21
`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := ""
			if len(args) == 3 {
				raw = args[2]
			}
			date, err := habit.ValidateDate(raw)
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
			data, err := svc.WidgetData(ctx, args[0])
			if err != nil {
				return err
			}
			var p habit.Payload
			if err := json.Unmarshal(data, &p); err != nil {
				return fmt.Errorf("widget %s does not carry habit data: %w", args[0], err)
			}
			hi := p.FindHabit(args[1])
			if hi < 0 {
				return fmt.Errorf("unknown habit %q in widget %s", args[1], args[0])
			}
			di := p.Habits[hi].FindDay(date)
			if di < 0 {
				return fmt.Errorf("date %s is outside the tracked window", date)
			}
			comp := habit.Completion{
				HabitID:   args[1],
				Date:      date,
				Completed: !p.Habits[hi].Days[di].Completed,
			}
			if err := svc.SetHabitCompletion(ctx, comp); err != nil {
				return err
			}
			state := "done"
			if !comp.Completed {
				state = "not done"
			}
			fmt.Printf("%s on %s: %s\n", p.Habits[hi].Name, date, state)
			return nil
		},
	}

	habitCmd.AddCommand(cmd)
	topLevel.AddCommand(habitCmd)
}
