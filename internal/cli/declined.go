package cli

import (
	"github.com/spf13/cobra"

	"github.com/gopforever/ShazbotCards/internal/app"
)

var declinedLimit int

var declinedCmd = &cobra.Command{
	Use:   "declined",
	Short: "List listings that regressed between the last two snapshots",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.DeclinedOptions{
			Limit: declinedLimit,
		}

		return getApp().Declined(cmd.Context(), opts)
	},
}

func init() {
	declinedCmd.Flags().IntVar(&declinedLimit, "limit", 0, "Maximum rows to display (0 = all)")
}
