package cogs

import (
	"github.com/shopspring/decimal"
)

// moneyPlaces is the rounding applied to every monetary output before
// it is summed elsewhere, so portfolio totals cannot drift.
const moneyPlaces = 2

// ListingInput is what the calculator needs to know about one sale.
// ShippingOverride, when set to a shipping method key, always beats
// the threshold auto-selection.
type ListingInput struct {
	ItemID           string          `json:"item_id"`
	Title            string          `json:"title"`
	Price            decimal.Decimal `json:"price"`
	Quantity         int64           `json:"quantity"`
	ShippingOverride string          `json:"shipping_override,omitempty"`
}

// Result is the per-listing profitability breakdown.
type Result struct {
	ItemID         string          `json:"item_id"`
	ShippingMethod string          `json:"shipping_method"`
	EbayFee        decimal.Decimal `json:"ebay_fee"`
	MaterialCost   decimal.Decimal `json:"material_cost"`
	Postage        decimal.Decimal `json:"postage"`
	COGS           decimal.Decimal `json:"cogs"`
	NetProfit      decimal.Decimal `json:"net_profit"`
	MarginPct      decimal.Decimal `json:"margin_pct"`
}

// Portfolio sums profitability across a set of listings weighted by
// quantity.
type Portfolio struct {
	TotalValue     decimal.Decimal `json:"total_value"`
	TotalCOGS      decimal.Decimal `json:"total_cogs"`
	TotalNetProfit decimal.Decimal `json:"total_net_profit"`
	AvgMarginPct   decimal.Decimal `json:"avg_margin_pct"`
}

// SelectShipping picks the shipping method for a price: the explicit
// override when it names a known method, otherwise the first method
// whose threshold covers the price, falling back to the catch-all.
func SelectShipping(price decimal.Decimal, override string, s Settings) ShippingMethod {
	if override != "" {
		for _, m := range s.ShippingMethods {
			if m.Key == override {
				return m
			}
		}
	}
	var fallback ShippingMethod
	for _, m := range s.ShippingMethods {
		if m.Threshold.IsZero() {
			fallback = m
			continue
		}
		if price.LessThanOrEqual(m.Threshold) {
			return m
		}
	}
	return fallback
}

// CalcListing computes the profitability of one sale.
func CalcListing(in ListingInput, s Settings) Result {
	method := SelectShipping(in.Price, in.ShippingOverride, s)

	fee := in.Price.Mul(s.FeeRate).Round(moneyPlaces)

	materials := decimal.Zero
	for _, m := range s.Materials {
		if !m.IncludePerSale {
			continue
		}
		if !appliesTo(m, method.Key) {
			continue
		}
		materials = materials.Add(m.UnitCost())
	}
	materials = materials.Round(moneyPlaces)

	postage := method.Postage.Round(moneyPlaces)
	totalCOGS := fee.Add(materials).Add(postage)
	net := in.Price.Sub(totalCOGS).Round(moneyPlaces)

	margin := decimal.Zero
	if in.Price.IsPositive() {
		margin = net.Div(in.Price).Mul(decimal.NewFromInt(100)).Round(moneyPlaces)
	}

	return Result{
		ItemID:         in.ItemID,
		ShippingMethod: method.Key,
		EbayFee:        fee,
		MaterialCost:   materials,
		Postage:        postage,
		COGS:           totalCOGS,
		NetProfit:      net,
		MarginPct:      margin,
	}
}

// CalcPortfolio aggregates quantity-weighted profitability over the
// set.
func CalcPortfolio(ins []ListingInput, s Settings) Portfolio {
	p := Portfolio{
		TotalValue:     decimal.Zero,
		TotalCOGS:      decimal.Zero,
		TotalNetProfit: decimal.Zero,
		AvgMarginPct:   decimal.Zero,
	}
	for _, in := range ins {
		qty := decimal.NewFromInt(in.Quantity)
		r := CalcListing(in, s)
		p.TotalValue = p.TotalValue.Add(in.Price.Mul(qty))
		p.TotalCOGS = p.TotalCOGS.Add(r.COGS.Mul(qty))
		p.TotalNetProfit = p.TotalNetProfit.Add(r.NetProfit.Mul(qty))
	}
	if p.TotalValue.IsPositive() {
		p.AvgMarginPct = p.TotalNetProfit.Div(p.TotalValue).Mul(decimal.NewFromInt(100)).Round(moneyPlaces)
	}
	return p
}

func appliesTo(m Material, methodKey string) bool {
	for _, k := range m.AppliesTo {
		if k == methodKey {
			return true
		}
	}
	return false
}
