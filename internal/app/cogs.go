package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/gopforever/ShazbotCards/internal/cogs"
)

// Cogs computes and prints the profitability breakdown for one sale at
// the given price.
func (a *App) Cogs(_ context.Context, opts CogsOptions) error {
	if opts.Price <= 0 {
		return errors.New("--price must be greater than zero")
	}
	if opts.Quantity <= 0 {
		opts.Quantity = 1
	}

	settings, err := cogs.Load(a.Config.Cogs.SettingsPath)
	if err != nil {
		return err
	}

	in := cogs.ListingInput{
		Price:            decimal.NewFromFloat(opts.Price),
		Quantity:         opts.Quantity,
		ShippingOverride: opts.Shipping,
	}
	result := cogs.CalcListing(in, settings)

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(writer, "Price\t$%s\n", in.Price.StringFixed(2))
	fmt.Fprintf(writer, "Shipping method\t%s\n", result.ShippingMethod)
	fmt.Fprintf(writer, "eBay fee\t$%s\n", result.EbayFee.StringFixed(2))
	fmt.Fprintf(writer, "Materials\t$%s\n", result.MaterialCost.StringFixed(2))
	fmt.Fprintf(writer, "Postage\t$%s\n", result.Postage.StringFixed(2))
	fmt.Fprintf(writer, "COGS\t$%s\n", result.COGS.StringFixed(2))
	fmt.Fprintf(writer, "Net profit\t$%s\n", result.NetProfit.StringFixed(2))
	fmt.Fprintf(writer, "Margin\t%s%%\n", result.MarginPct.StringFixed(2))
	if err := writer.Flush(); err != nil {
		return err
	}

	if opts.Quantity > 1 {
		portfolio := cogs.CalcPortfolio([]cogs.ListingInput{in}, settings)
		fmt.Fprintf(os.Stdout, "\n%d units: value $%s, net $%s, margin %s%%\n",
			opts.Quantity,
			portfolio.TotalValue.StringFixed(2),
			portfolio.TotalNetProfit.StringFixed(2),
			portfolio.AvgMarginPct.StringFixed(2),
		)
	}
	return nil
}

// CogsInit writes the default settings document so sellers have a file
// to edit.
func (a *App) CogsInit(_ context.Context) error {
	path := a.Config.Cogs.SettingsPath
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("refusing to overwrite existing settings at %s", path)
	}
	if err := cogs.Save(path, cogs.DefaultSettings()); err != nil {
		return err
	}
	a.Logger.Info().Str("path", path).Msg("wrote default cogs settings")
	return nil
}
