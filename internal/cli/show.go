package cli

import (
	"github.com/spf13/cobra"

	"github.com/gopforever/ShazbotCards/internal/app"
)

var (
	showSnapshot int64
	showLimit    int
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Display a scored snapshot in triage order",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ShowOptions{
			SnapshotID: showSnapshot,
			Limit:      showLimit,
		}

		return getApp().Show(cmd.Context(), opts)
	},
}

func init() {
	showCmd.Flags().Int64Var(&showSnapshot, "snapshot", 0, "Snapshot id (default: latest)")
	showCmd.Flags().IntVar(&showLimit, "limit", 50, "Number of listings to display")
}
