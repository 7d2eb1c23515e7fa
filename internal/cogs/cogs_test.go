package cogs

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSelectShippingByThreshold(t *testing.T) {
	s := DefaultSettings()
	if m := SelectShipping(dec("15.00"), "", s); m.Key != "envelope" {
		t.Fatalf("price below threshold should pick envelope, got %q", m.Key)
	}
	if m := SelectShipping(dec("20.00"), "", s); m.Key != "envelope" {
		t.Fatalf("price at threshold should still pick envelope, got %q", m.Key)
	}
	if m := SelectShipping(dec("25.00"), "", s); m.Key != "ground" {
		t.Fatalf("price above threshold should fall back to ground, got %q", m.Key)
	}
}

func TestSelectShippingOverrideWins(t *testing.T) {
	s := DefaultSettings()
	if m := SelectShipping(dec("12.50"), "ground", s); m.Key != "ground" {
		t.Fatalf("override must beat threshold selection, got %q", m.Key)
	}
	// Unknown override keys fall back to the threshold rule.
	if m := SelectShipping(dec("12.50"), "carrier-pigeon", s); m.Key != "envelope" {
		t.Fatalf("unknown override should be ignored, got %q", m.Key)
	}
}

func TestCalcListingEnvelope(t *testing.T) {
	r := CalcListing(ListingInput{ItemID: "1", Price: dec("15.00"), Quantity: 1}, DefaultSettings())
	if r.ShippingMethod != "envelope" {
		t.Fatalf("unexpected method %q", r.ShippingMethod)
	}
	if !r.EbayFee.Equal(dec("1.99")) {
		t.Fatalf("fee = %s, want 1.99", r.EbayFee)
	}
	if !r.MaterialCost.Equal(dec("0.31")) {
		t.Fatalf("materials = %s, want 0.31", r.MaterialCost)
	}
	if !r.Postage.Equal(dec("1.19")) {
		t.Fatalf("postage = %s, want 1.19", r.Postage)
	}
	if !r.COGS.Equal(dec("3.49")) {
		t.Fatalf("cogs = %s, want 3.49", r.COGS)
	}
	if !r.NetProfit.Equal(dec("11.51")) {
		t.Fatalf("net = %s, want 11.51", r.NetProfit)
	}
	if !r.MarginPct.Equal(dec("76.73")) {
		t.Fatalf("margin = %s, want 76.73", r.MarginPct)
	}
}

func TestCalcListingGround(t *testing.T) {
	r := CalcListing(ListingInput{ItemID: "2", Price: dec("25.00"), Quantity: 1}, DefaultSettings())
	if r.ShippingMethod != "ground" {
		t.Fatalf("unexpected method %q", r.ShippingMethod)
	}
	if !r.MaterialCost.Equal(dec("0.50")) {
		t.Fatalf("materials = %s, want 0.50", r.MaterialCost)
	}
	if !r.COGS.Equal(dec("8.44")) {
		t.Fatalf("cogs = %s, want 8.44", r.COGS)
	}
}

func TestCalcListingZeroPrice(t *testing.T) {
	r := CalcListing(ListingInput{ItemID: "3", Price: decimal.Zero, Quantity: 1}, DefaultSettings())
	if !r.MarginPct.IsZero() {
		t.Fatalf("zero price must give zero margin, got %s", r.MarginPct)
	}
	if !r.NetProfit.IsNegative() {
		t.Fatalf("zero price sale should lose money, got %s", r.NetProfit)
	}
}

func TestCalcPortfolio(t *testing.T) {
	s := DefaultSettings()
	p := CalcPortfolio([]ListingInput{
		{ItemID: "1", Price: dec("15.00"), Quantity: 2},
		{ItemID: "2", Price: dec("25.00"), Quantity: 1},
	}, s)
	if !p.TotalValue.Equal(dec("55.00")) {
		t.Fatalf("total value = %s, want 55.00", p.TotalValue)
	}
	// 2 * 3.49 envelope sales plus one 8.44 ground sale.
	if !p.TotalCOGS.Equal(dec("15.42")) {
		t.Fatalf("total cogs = %s, want 15.42", p.TotalCOGS)
	}
	if !p.TotalNetProfit.Equal(dec("39.58")) {
		t.Fatalf("total net = %s, want 39.58", p.TotalNetProfit)
	}
	if !p.AvgMarginPct.Equal(dec("71.96")) {
		t.Fatalf("avg margin = %s, want 71.96", p.AvgMarginPct)
	}
}

func TestCalcPortfolioEmpty(t *testing.T) {
	p := CalcPortfolio(nil, DefaultSettings())
	if !p.TotalValue.IsZero() || !p.AvgMarginPct.IsZero() {
		t.Fatalf("empty portfolio should be all zeros, got %+v", p)
	}
}

func TestMigratePreservesFeeRate(t *testing.T) {
	old := Settings{
		Version:         1,
		FeeRate:         dec("0.20"),
		ShippingMethods: []ShippingMethod{{Key: "legacy", Postage: dec("9.99")}},
		Materials:       []Material{{Name: "Legacy box", PackSize: 1, PackPrice: dec("3.00")}},
	}
	out := Migrate(old)
	if out.Version != SettingsVersion {
		t.Fatalf("version = %d, want %d", out.Version, SettingsVersion)
	}
	if !out.FeeRate.Equal(dec("0.20")) {
		t.Fatalf("tuned fee rate must survive migration, got %s", out.FeeRate)
	}
	if len(out.ShippingMethods) != 2 || out.ShippingMethods[0].Key != "envelope" {
		t.Fatalf("shipping table should reset to defaults, got %+v", out.ShippingMethods)
	}
	if len(out.Materials) != 4 {
		t.Fatalf("materials should reset to defaults, got %d entries", len(out.Materials))
	}
}

func TestMigrateZeroFeeRate(t *testing.T) {
	out := Migrate(Settings{Version: 2})
	if !out.FeeRate.Equal(dec("0.1325")) {
		t.Fatalf("unset fee rate should take the default, got %s", out.FeeRate)
	}
}

func TestMigrateCurrentVersionUntouched(t *testing.T) {
	s := DefaultSettings()
	s.FeeRate = dec("0.15")
	s.Materials = nil
	out := Migrate(s)
	if !out.FeeRate.Equal(dec("0.15")) || out.Materials != nil {
		t.Fatalf("current-version document must pass through unchanged, got %+v", out)
	}
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if s.Version != SettingsVersion {
		t.Fatalf("expected defaults, got version %d", s.Version)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cogs.json")
	want := DefaultSettings()
	want.FeeRate = dec("0.1450")
	if err := Save(path, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !got.FeeRate.Equal(want.FeeRate) {
		t.Fatalf("fee rate = %s, want %s", got.FeeRate, want.FeeRate)
	}
	if len(got.ShippingMethods) != len(want.ShippingMethods) {
		t.Fatalf("shipping methods = %d, want %d", len(got.ShippingMethods), len(want.ShippingMethods))
	}
}

func TestMaterialUnitCost(t *testing.T) {
	m := Material{Name: "Top loader", PackSize: 25, PackPrice: dec("5.49")}
	if !m.UnitCost().Equal(dec("0.2196")) {
		t.Fatalf("unit cost = %s, want 0.2196", m.UnitCost())
	}
	if !(Material{PackSize: 0, PackPrice: dec("5.49")}).UnitCost().IsZero() {
		t.Fatal("zero pack size must cost zero")
	}
}
