package health

import "github.com/gopforever/ShazbotCards/internal/report"

// Priority orders recommendations for triage. Rank runs high(0) to
// good(3); lower rank sorts first.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
	PriorityGood   Priority = "good"
)

// Rank returns the sort rank of a priority.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	case PriorityGood:
		return 3
	}
	return 4
}

// Recommendation is a rule-derived action for one listing.
type Recommendation struct {
	Text     string   `json:"text"`
	Priority Priority `json:"priority"`
}

// Recommend evaluates the fixed-order rule ladder; the first matching
// rule wins. Null metrics are treated as zero here because every rule
// is phrased against observed activity.
func Recommend(l report.Listing) Recommendation {
	impressions := report.Value(l.Impressions)
	ctr := report.Value(l.ClickThroughRate)
	views := report.Value(l.PageViews)
	sold := report.Value(l.QuantitySold)

	switch {
	case impressions == 0:
		return Recommendation{
			Text:     "No impressions. Check that the listing is live and in the right category.",
			Priority: PriorityLow,
		}
	case impressions > 50 && ctr == 0:
		return Recommendation{
			Text:     "Strong visibility but nobody clicks. Rework the title and lead photo.",
			Priority: PriorityHigh,
		}
	case impressions > 20 && ctr == 0:
		return Recommendation{
			Text:     "Getting seen but not clicked. Review the title and thumbnail.",
			Priority: PriorityHigh,
		}
	case views > 0 && sold == 0 && ctr > 0:
		return Recommendation{
			Text:     "Shoppers view but do not buy. Revisit price and description.",
			Priority: PriorityMedium,
		}
	case sold > 0:
		return Recommendation{
			Text:     "Selling. Maintain the current strategy.",
			Priority: PriorityGood,
		}
	case ctr == 0:
		return Recommendation{
			Text:     "No clicks yet. Consider promoting or adding search keywords.",
			Priority: PriorityMedium,
		}
	default:
		return Recommendation{
			Text:     "Not enough data yet. Keep monitoring.",
			Priority: PriorityLow,
		}
	}
}
