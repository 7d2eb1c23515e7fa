package cli

import (
	"github.com/spf13/cobra"

	"github.com/gopforever/ShazbotCards/internal/app"
)

var (
	compareFrom  int64
	compareTo    int64
	compareLimit int
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare two snapshots item by item",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.CompareOptions{
			FromID: compareFrom,
			ToID:   compareTo,
			Limit:  compareLimit,
		}

		return getApp().Compare(cmd.Context(), opts)
	},
}

func init() {
	compareCmd.Flags().Int64Var(&compareFrom, "from", 0, "Baseline snapshot id")
	compareCmd.Flags().Int64Var(&compareTo, "to", 0, "Comparison snapshot id")
	compareCmd.Flags().IntVar(&compareLimit, "limit", 0, "Maximum rows to display (0 = all)")
}
