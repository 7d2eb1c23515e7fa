// Package keywords aggregates per-keyword performance across a scored
// catalog snapshot.
package keywords

import (
	"sort"
	"strings"

	"github.com/gopforever/ShazbotCards/internal/health"
	"github.com/gopforever/ShazbotCards/internal/report"
)

// Aggregate is the accumulated performance of one normalized keyword.
// Appearances counts listings containing the keyword, once per listing
// no matter how often the title repeats it.
type Aggregate struct {
	Keyword          string   `json:"keyword"`
	Appearances      int      `json:"appearances"`
	TotalImpressions float64  `json:"total_impressions"`
	TotalPageViews   float64  `json:"total_page_views"`
	TotalSold        float64  `json:"total_sold"`
	WeightedCTR      *float64 `json:"weighted_ctr"`
	AvgImpressions   float64  `json:"avg_impressions"`
	ConversionRate   *float64 `json:"conversion_rate"`
	AvgHealthScore   float64  `json:"avg_health_score"`

	// TrendProxy is a cross-sectional signal (distance from the current
	// dataset median), not a period-over-period trend. Set by
	// ClassifyTrends.
	TrendProxy string `json:"trend_proxy,omitempty"`
}

var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "at": {}, "by": {},
	"for": {}, "from": {}, "in": {}, "is": {}, "it": {}, "of": {},
	"on": {}, "or": {}, "the": {}, "to": {}, "with": {},
}

func isDelimiter(r rune) bool {
	switch r {
	case ' ', '\t', ',', '/', '(', ')', '[', ']', '|', '&', '+':
		return true
	}
	return false
}

func isAlphanumeric(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= '0' && r <= '9'
}

// Extract tokenizes a title: split on whitespace and punctuation,
// lowercase, strip non-alphanumeric edges, drop empties and stop words.
func Extract(title string) []string {
	fields := strings.FieldsFunc(strings.ToLower(title), isDelimiter)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimFunc(f, func(r rune) bool { return !isAlphanumeric(r) })
		if f == "" {
			continue
		}
		if _, stop := stopWords[f]; stop {
			continue
		}
		out = append(out, f)
	}
	return out
}

// Analyze accumulates keyword aggregates over the snapshot. Each
// listing contributes at most once per keyword. The result is ordered
// by total impressions descending, keyword ascending on ties.
func Analyze(listings []health.Scored) []Aggregate {
	type acc struct {
		agg       Aggregate
		ctrNum    float64
		ctrDen    float64
		scoreSum  int
		listCount int
	}
	byKeyword := make(map[string]*acc)

	for _, l := range listings {
		seen := make(map[string]struct{})
		for _, kw := range Extract(l.Title) {
			if _, dup := seen[kw]; dup {
				continue
			}
			seen[kw] = struct{}{}

			a, ok := byKeyword[kw]
			if !ok {
				a = &acc{agg: Aggregate{Keyword: kw}}
				byKeyword[kw] = a
			}
			a.agg.Appearances++
			a.agg.TotalImpressions += report.Value(l.Impressions)
			a.agg.TotalPageViews += report.Value(l.PageViews)
			a.agg.TotalSold += report.Value(l.QuantitySold)
			if l.ClickThroughRate != nil && l.Impressions != nil {
				a.ctrNum += *l.ClickThroughRate * *l.Impressions
				a.ctrDen += *l.Impressions
			}
			a.scoreSum += l.HealthScore
			a.listCount++
		}
	}

	out := make([]Aggregate, 0, len(byKeyword))
	for _, a := range byKeyword {
		agg := a.agg
		if a.ctrDen > 0 {
			ctr := a.ctrNum / a.ctrDen
			agg.WeightedCTR = &ctr
		}
		agg.AvgImpressions = agg.TotalImpressions / float64(agg.Appearances)
		if agg.TotalPageViews > 0 {
			conv := agg.TotalSold / agg.TotalPageViews * 100
			agg.ConversionRate = &conv
		}
		if a.listCount > 0 {
			agg.AvgHealthScore = float64(a.scoreSum) / float64(a.listCount)
		}
		out = append(out, agg)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalImpressions != out[j].TotalImpressions {
			return out[i].TotalImpressions > out[j].TotalImpressions
		}
		return out[i].Keyword < out[j].Keyword
	})
	return out
}

// ClassifyTrends attaches the cross-sectional trend proxy: keywords
// whose average impressions sit more than 20% above the dataset median
// are "up", more than 20% below are "down", the rest "stable". This is
// a snapshot-relative signal only; it says nothing about movement over
// time.
func ClassifyTrends(aggs []Aggregate) []Aggregate {
	out := make([]Aggregate, len(aggs))
	copy(out, aggs)
	if len(out) == 0 {
		return out
	}

	med := medianAvgImpressions(out)
	for i := range out {
		switch {
		case med > 0 && out[i].AvgImpressions > med*1.2:
			out[i].TrendProxy = "up"
		case med > 0 && out[i].AvgImpressions < med*0.8:
			out[i].TrendProxy = "down"
		default:
			out[i].TrendProxy = "stable"
		}
	}
	return out
}

func medianAvgImpressions(aggs []Aggregate) float64 {
	values := make([]float64, len(aggs))
	for i, a := range aggs {
		values[i] = a.AvgImpressions
	}
	sort.Float64s(values)
	mid := len(values) / 2
	if len(values)%2 == 1 {
		return values[mid]
	}
	return (values[mid-1] + values[mid]) / 2
}

const suggestionLimit = 5

// Suggestions returns the five highest-impression keywords other than
// the query term itself.
func Suggestions(keyword string, all []Aggregate) []string {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	out := make([]string, 0, suggestionLimit)
	for _, a := range all {
		if a.Keyword == keyword {
			continue
		}
		out = append(out, a.Keyword)
		if len(out) == suggestionLimit {
			break
		}
	}
	return out
}
