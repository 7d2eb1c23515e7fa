package report

import "time"

// Listing is one row of a seller traffic export. Numeric metrics are
// pointers because the export distinguishes "no data" from zero; nil
// always means the marketplace reported no value for the period.
type Listing struct {
	ItemID     string     `json:"item_id"`
	Title      string     `json:"title"`
	StartDate  *time.Time `json:"start_date,omitempty"`
	IsPromoted bool       `json:"is_promoted"`

	Impressions         *float64 `json:"impressions"`
	PromotedImpressions *float64 `json:"promoted_impressions"`
	OrganicImpressions  *float64 `json:"organic_impressions"`

	// Percent change in organic impressions versus the previous 30-day
	// window and versus the same window a year earlier.
	OrganicChange30d *float64 `json:"organic_change_30d"`
	OrganicChangeYoY *float64 `json:"organic_change_yoy"`

	// ClickThroughRate and Top20SlotRate are percentages (2.0 == 2%).
	ClickThroughRate *float64 `json:"click_through_rate"`
	PageViews        *float64 `json:"page_views"`
	QuantitySold     *float64 `json:"quantity_sold"`
	Top20SlotRate    *float64 `json:"top20_slot_rate"`
}

// Period is the reporting window stated in the export preamble.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Value dereferences a nullable metric, treating "no data" as zero.
// Analytic code that must keep the distinction works on the pointer.
func Value(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// Ptr returns a pointer to v. Mostly useful in tests and fixtures.
func Ptr(v float64) *float64 {
	return &v
}
