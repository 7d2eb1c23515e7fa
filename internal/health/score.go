package health

import (
	"math"

	"github.com/gopforever/ShazbotCards/internal/report"
)

// Badge is the three-tier health classification.
type Badge string

const (
	BadgeGreen  Badge = "green"
	BadgeYellow Badge = "yellow"
	BadgeRed    Badge = "red"
)

// Scored is a listing with the derived analytics attached.
type Scored struct {
	report.Listing
	HealthScore    int            `json:"health_score"`
	Badge          Badge          `json:"health_badge"`
	Sport          string         `json:"sport"`
	Recommendation Recommendation `json:"recommendation"`
}

// Parts are the four weighted sub-scores of the composite health score.
type Parts struct {
	Impressions float64 // 0-40, log-normalized against the dataset max
	CTR         float64 // 0-30, saturates at a 2% click-through rate
	Placement   float64 // 0-15, top-20 search slot rate
	Trend       float64 // 0-15, 7.5 neutral, saturates at +/-200% change
}

// MaxImpressions returns the largest impression count in the dataset,
// the normalization ceiling for the impression sub-score.
func MaxImpressions(listings []report.Listing) float64 {
	max := 0.0
	for _, l := range listings {
		if v := report.Value(l.Impressions); v > max {
			max = v
		}
	}
	return max
}

// ScoreParts computes the four sub-scores for one listing given the
// dataset impression maximum.
func ScoreParts(l report.Listing, maxImpressions float64) Parts {
	var p Parts

	impr := report.Value(l.Impressions)
	if impr > 0 && maxImpressions > 0 {
		p.Impressions = math.Log(impr+1) / math.Log(maxImpressions+1) * 40
	}

	p.CTR = math.Min(report.Value(l.ClickThroughRate)/2.0, 1) * 30

	p.Placement = math.Min(report.Value(l.Top20SlotRate)/100, 1) * 15

	p.Trend = 7.5
	if sig := OrganicChangeSignal(l); sig != nil {
		shift := *sig / 200
		if shift > 1 {
			shift = 1
		}
		if shift < -1 {
			shift = -1
		}
		p.Trend += shift * 7.5
	}

	return p
}

// Score computes the composite 0-100 health score.
func Score(l report.Listing, maxImpressions float64) int {
	p := ScoreParts(l, maxImpressions)
	total := p.Impressions + p.CTR + p.Placement + p.Trend
	clamped := math.Max(0, math.Min(100, total))
	return int(math.Round(clamped))
}

// BadgeFor maps a score to its badge. Boundaries are exact: 60 and up
// is green, 30 to 59 yellow, below 30 red.
func BadgeFor(score int) Badge {
	switch {
	case score >= 60:
		return BadgeGreen
	case score >= 30:
		return BadgeYellow
	default:
		return BadgeRed
	}
}

// OrganicChangeSignal averages the two organic-impression change
// columns, ignoring whichever is null. Both null yields nil.
func OrganicChangeSignal(l report.Listing) *float64 {
	sum := 0.0
	n := 0
	if l.OrganicChange30d != nil {
		sum += *l.OrganicChange30d
		n++
	}
	if l.OrganicChangeYoY != nil {
		sum += *l.OrganicChangeYoY
		n++
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	return &avg
}

// ScoreAll derives the full analytic set for every listing. The input
// is not mutated.
func ScoreAll(listings []report.Listing) []Scored {
	max := MaxImpressions(listings)
	scored := make([]Scored, 0, len(listings))
	for _, l := range listings {
		s := Score(l, max)
		scored = append(scored, Scored{
			Listing:        l,
			HealthScore:    s,
			Badge:          BadgeFor(s),
			Sport:          ClassifySport(l.Title),
			Recommendation: Recommend(l),
		})
	}
	return scored
}
