package options

import (
	"fmt"

	"github.com/spf13/cobra"
)

// MoveOptions
type MoveOptions struct {
	Up   bool
	Down bool
}

func AddMoveArgs(cmd *cobra.Command, o *MoveOptions) {
	cmd.Flags().BoolVar(&o.Up, "up", false,
		"Move the section one position earlier.")
	cmd.Flags().BoolVar(&o.Down, "down", false,
		"Move the section one position later.")
}

// Direction returns -1 for --up and +1 for --down, erroring unless
// exactly one was given.
func (o *MoveOptions) Direction() (int, error) {
	switch {
	case o.Up && o.Down:
		return 0, fmt.Errorf("--up and --down are mutually exclusive")
	case o.Up:
		return -1, nil
	case o.Down:
		return 1, nil
	default:
		return 0, fmt.Errorf("one of --up or --down is required")
	}
}
