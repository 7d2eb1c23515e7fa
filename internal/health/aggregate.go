package health

import (
	"sort"

	"github.com/gopforever/ShazbotCards/internal/report"
)

// KPIs are whole-dataset totals. AvgCTR is nil when no listing has a
// reported click-through rate.
type KPIs struct {
	Listings         int      `json:"listings"`
	TotalImpressions float64  `json:"total_impressions"`
	TotalPageViews   float64  `json:"total_page_views"`
	TotalSold        float64  `json:"total_sold"`
	AvgCTR           *float64 `json:"avg_ctr"`
	DeadListings     int      `json:"dead_listings"`
}

// PromotedSplit holds the same KPI set for each side of the promoted
// flag.
type PromotedSplit struct {
	Promoted KPIs `json:"promoted"`
	Organic  KPIs `json:"organic"`
}

// SportStats summarizes one classified sport.
type SportStats struct {
	Sport       string  `json:"sport"`
	Listings    int     `json:"listings"`
	Impressions float64 `json:"impressions"`
	Sold        float64 `json:"sold"`
}

// Mover is one entry of the short-horizon trending report.
type Mover struct {
	ItemID      string  `json:"item_id"`
	Title       string  `json:"title"`
	ChangePct   float64 `json:"change_pct"`
	Impressions float64 `json:"impressions"`
}

// TrendingReport carries the top positive and negative organic movers.
type TrendingReport struct {
	Gainers   []Mover `json:"gainers"`
	Decliners []Mover `json:"decliners"`
}

// ComputeKPIs reduces the dataset to its headline totals. Listings
// with no reported page views count as dead.
func ComputeKPIs(scored []Scored) KPIs {
	k := KPIs{Listings: len(scored)}
	ctrSum := 0.0
	ctrCount := 0
	for _, s := range scored {
		k.TotalImpressions += report.Value(s.Impressions)
		k.TotalPageViews += report.Value(s.PageViews)
		k.TotalSold += report.Value(s.QuantitySold)
		if s.ClickThroughRate != nil {
			ctrSum += *s.ClickThroughRate
			ctrCount++
		}
		if report.Value(s.PageViews) == 0 {
			k.DeadListings++
		}
	}
	if ctrCount > 0 {
		avg := ctrSum / float64(ctrCount)
		k.AvgCTR = &avg
	}
	return k
}

// ComputePromotedSplit computes KPIs separately for promoted and
// organic listings.
func ComputePromotedSplit(scored []Scored) PromotedSplit {
	var promoted, organic []Scored
	for _, s := range scored {
		if s.IsPromoted {
			promoted = append(promoted, s)
		} else {
			organic = append(organic, s)
		}
	}
	return PromotedSplit{
		Promoted: ComputeKPIs(promoted),
		Organic:  ComputeKPIs(organic),
	}
}

// ComputeSportBreakdown groups listings by classified sport, ordered
// by impressions descending with the sport name breaking ties.
func ComputeSportBreakdown(scored []Scored) []SportStats {
	bySport := make(map[string]*SportStats)
	for _, s := range scored {
		st, ok := bySport[s.Sport]
		if !ok {
			st = &SportStats{Sport: s.Sport}
			bySport[s.Sport] = st
		}
		st.Listings++
		st.Impressions += report.Value(s.Impressions)
		st.Sold += report.Value(s.QuantitySold)
	}

	out := make([]SportStats, 0, len(bySport))
	for _, st := range bySport {
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Impressions != out[j].Impressions {
			return out[i].Impressions > out[j].Impressions
		}
		return out[i].Sport < out[j].Sport
	})
	return out
}

// ComputePriorityList orders listings for triage: recommendation
// priority first, then impressions descending. The sort is stable so
// equal listings keep their input order.
func ComputePriorityList(scored []Scored) []Scored {
	out := make([]Scored, len(scored))
	copy(out, scored)
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].Recommendation.Priority.Rank(), out[j].Recommendation.Priority.Rank()
		if ri != rj {
			return ri < rj
		}
		return report.Value(out[i].Impressions) > report.Value(out[j].Impressions)
	})
	return out
}

const trendingLimit = 10

// ComputeTrending picks the ten strongest positive and negative
// organic-impression movers. Listings with no change signal at all are
// excluded.
func ComputeTrending(scored []Scored) TrendingReport {
	movers := make([]Mover, 0, len(scored))
	for _, s := range scored {
		sig := OrganicChangeSignal(s.Listing)
		if sig == nil {
			continue
		}
		movers = append(movers, Mover{
			ItemID:      s.ItemID,
			Title:       s.Title,
			ChangePct:   *sig,
			Impressions: report.Value(s.Impressions),
		})
	}
	sort.SliceStable(movers, func(i, j int) bool {
		return movers[i].ChangePct > movers[j].ChangePct
	})

	var rep TrendingReport
	for _, m := range movers {
		if m.ChangePct > 0 && len(rep.Gainers) < trendingLimit {
			rep.Gainers = append(rep.Gainers, m)
		}
	}
	for i := len(movers) - 1; i >= 0; i-- {
		if movers[i].ChangePct < 0 && len(rep.Decliners) < trendingLimit {
			rep.Decliners = append(rep.Decliners, movers[i])
		}
	}
	return rep
}
