package options

import (
	"time"

	"github.com/spf13/cobra"

	"tableflip.dev/dash/pkg/timeutil"
)

// RefreshOptions
type RefreshOptions struct {
	Interval string
}

func AddRefreshArgs(cmd *cobra.Command, o *RefreshOptions) {
	cmd.Flags().StringVar(&o.Interval, "refresh", "",
		`Override the catalog refresh interval, example: --refresh=5m.`)
}

func (o *RefreshOptions) GetInterval() (time.Duration, error) {
	if o.Interval == "" {
		return 0, nil
	}
	return timeutil.ParseInterval(o.Interval)
}
