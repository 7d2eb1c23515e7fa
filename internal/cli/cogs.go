package cli

import (
	"github.com/spf13/cobra"

	"github.com/gopforever/ShazbotCards/internal/app"
)

var (
	cogsPrice    float64
	cogsQuantity int64
	cogsShipping string
)

var cogsCmd = &cobra.Command{
	Use:   "cogs",
	Short: "Profitability tools",
}

var cogsCalcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Compute cost of goods sold for one sale",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.CogsOptions{
			Price:    cogsPrice,
			Quantity: cogsQuantity,
			Shipping: cogsShipping,
		}

		return getApp().Cogs(cmd.Context(), opts)
	},
}

var cogsInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default settings file for editing",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().CogsInit(cmd.Context())
	},
}

func init() {
	cogsCalcCmd.Flags().Float64Var(&cogsPrice, "price", 0, "Sale price")
	cogsCalcCmd.Flags().Int64Var(&cogsQuantity, "qty", 1, "Quantity sold")
	cogsCalcCmd.Flags().StringVar(&cogsShipping, "shipping", "", "Shipping method key, overriding auto-selection")

	cogsCmd.AddCommand(cogsCalcCmd)
	cogsCmd.AddCommand(cogsInitCmd)
}
