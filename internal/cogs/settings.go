// Package cogs computes per-listing and portfolio profitability from
// fee, shipping, and materials configuration.
package cogs

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
)

// SettingsVersion is the current settings schema version. Loading an
// older document triggers Migrate.
const SettingsVersion = 3

// ShippingMethod is one row of the shipping table. Threshold is the
// highest price the method is auto-selected for; a zero threshold
// marks the catch-all method for everything above the others.
type ShippingMethod struct {
	Key       string          `json:"key"`
	Label     string          `json:"label"`
	Postage   decimal.Decimal `json:"postage"`
	Threshold decimal.Decimal `json:"threshold"`
}

// Material is a consumable included in the cost of a sale.
type Material struct {
	Name           string          `json:"name"`
	PackSize       int64           `json:"pack_size"`
	PackPrice      decimal.Decimal `json:"pack_price"`
	IncludePerSale bool            `json:"include_per_sale"`
	AppliesTo      []string        `json:"applies_to"`
}

// UnitCost derives the per-item cost from the pack.
func (m Material) UnitCost() decimal.Decimal {
	if m.PackSize <= 0 {
		return decimal.Zero
	}
	return m.PackPrice.DivRound(decimal.NewFromInt(m.PackSize), 4)
}

// Settings is the full profitability configuration.
type Settings struct {
	Version         int              `json:"version"`
	FeeRate         decimal.Decimal  `json:"fee_rate"`
	ShippingMethods []ShippingMethod `json:"shipping_methods"`
	Materials       []Material       `json:"materials"`
}

// DefaultSettings returns the built-in configuration for the current
// schema version.
func DefaultSettings() Settings {
	return Settings{
		Version: SettingsVersion,
		FeeRate: decimal.NewFromFloat(0.1325),
		ShippingMethods: []ShippingMethod{
			{
				Key:       "envelope",
				Label:     "Standard Envelope",
				Postage:   decimal.NewFromFloat(1.19),
				Threshold: decimal.NewFromInt(20),
			},
			{
				Key:     "ground",
				Label:   "Ground Advantage",
				Postage: decimal.NewFromFloat(4.63),
			},
		},
		Materials: []Material{
			{
				Name:           "Penny sleeve",
				PackSize:       100,
				PackPrice:      decimal.NewFromFloat(1.99),
				IncludePerSale: true,
				AppliesTo:      []string{"envelope", "ground"},
			},
			{
				Name:           "Top loader",
				PackSize:       25,
				PackPrice:      decimal.NewFromFloat(5.49),
				IncludePerSale: true,
				AppliesTo:      []string{"envelope", "ground"},
			},
			{
				Name:           "Team bag",
				PackSize:       100,
				PackPrice:      decimal.NewFromFloat(6.99),
				IncludePerSale: true,
				AppliesTo:      []string{"envelope"},
			},
			{
				Name:           "Bubble mailer",
				PackSize:       50,
				PackPrice:      decimal.NewFromFloat(12.99),
				IncludePerSale: true,
				AppliesTo:      []string{"ground"},
			},
		},
	}
}

// Migrate upgrades a persisted settings document to the current
// schema. Structural fields (shipping table, materials list) reset to
// the current defaults; user-tuned scalars (the fee rate) survive.
// Documents already at the current version pass through unchanged.
func Migrate(s Settings) Settings {
	if s.Version >= SettingsVersion {
		return s
	}
	out := DefaultSettings()
	if s.FeeRate.IsPositive() {
		out.FeeRate = s.FeeRate
	}
	return out
}

// Load reads settings from path, migrating stale documents. A missing
// file yields the defaults.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultSettings(), nil
		}
		return Settings{}, fmt.Errorf("read cogs settings: %w", err)
	}

	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parse cogs settings: %w", err)
	}
	return Migrate(s), nil
}

// Save writes settings to path as indented JSON.
func Save(path string, s Settings) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cogs settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write cogs settings: %w", err)
	}
	return nil
}
