package report

import (
	"encoding/csv"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// headerSentinel is the leading column name of the real header row.
// Everything above it is disclaimer/preamble text the marketplace
// prepends to the export.
const headerSentinel = "listing title"

// minColumns is the smallest column count a data row may have and
// still be accepted.
const minColumns = 13

// Canonical column names, matched case-insensitively against the
// located header row.
const (
	colTitle            = "listing title"
	colItemID           = "ebay item id"
	colStartDate        = "listing start date"
	colPromotedStatus   = "current promoted listing status"
	colImpressions      = "total impressions"
	colPromotedImpr     = "promoted impressions"
	colOrganicImpr      = "organic impressions"
	colOrganicChange30d = "organic impressions % change (vs previous 30 days)"
	colOrganicChangeYoY = "organic impressions % change (vs previous year)"
	colCTR              = "click-through rate"
	colPageViews        = "page views"
	colQuantitySold     = "quantity sold"
	colTop20Rate        = "top 20 search slot impression rate"
)

// ParseError indicates the export is structurally unusable, i.e. no
// header row could be located. Malformed data rows never produce it.
type ParseError struct {
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("report: %s", e.Msg)
}

var formulaEscape = regexp.MustCompile(`^="(.*)"$`)

var startDateLayouts = []string{
	"Jan 2, 2006",
	"2006-01-02",
	"01/02/2006",
}

// Parse turns raw export text into listings. Rows before the header
// sentinel are skipped; rows with too few columns or an empty title
// are dropped so one corrupt row cannot abort a multi-thousand-row
// export.
func Parse(text string) ([]Listing, error) {
	rows, err := readRows(text)
	if err != nil {
		return nil, err
	}

	headerIdx := -1
	for i, row := range rows {
		if len(row) > 0 && normalizeHeader(row[0]) == headerSentinel {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, &ParseError{Msg: "no header row found in export"}
	}

	cols := make(map[string]int, len(rows[headerIdx]))
	for i, name := range rows[headerIdx] {
		cols[normalizeHeader(name)] = i
	}

	listings := make([]Listing, 0, len(rows)-headerIdx-1)
	for _, row := range rows[headerIdx+1:] {
		if len(row) < minColumns {
			continue
		}
		title := strings.TrimSpace(cell(row, cols, colTitle))
		if title == "" {
			continue
		}
		listings = append(listings, Listing{
			ItemID:              cleanIdentifier(cell(row, cols, colItemID)),
			Title:               title,
			StartDate:           parseDate(cell(row, cols, colStartDate)),
			IsPromoted:          parsePromoted(cell(row, cols, colPromotedStatus)),
			Impressions:         parseNumber(cell(row, cols, colImpressions)),
			PromotedImpressions: parseNumber(cell(row, cols, colPromotedImpr)),
			OrganicImpressions:  parseNumber(cell(row, cols, colOrganicImpr)),
			OrganicChange30d:    parseNumber(cell(row, cols, colOrganicChange30d)),
			OrganicChangeYoY:    parseNumber(cell(row, cols, colOrganicChangeYoY)),
			ClickThroughRate:    parseNumber(cell(row, cols, colCTR)),
			PageViews:           parseNumber(cell(row, cols, colPageViews)),
			QuantitySold:        parseNumber(cell(row, cols, colQuantitySold)),
			Top20SlotRate:       parseNumber(cell(row, cols, colTop20Rate)),
		})
	}

	return listings, nil
}

// ExtractPeriod scans the preamble for a "data range" line and returns
// the stated reporting window, or nil when none is present.
func ExtractPeriod(text string) *Period {
	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)
		if !strings.Contains(lower, "data range") && !strings.Contains(lower, "report period") {
			continue
		}
		dates := dateTokens.FindAllString(line, 2)
		if len(dates) != 2 {
			continue
		}
		start := parseDate(dates[0])
		end := parseDate(dates[1])
		if start == nil || end == nil {
			continue
		}
		return &Period{Start: *start, End: *end}
	}
	return nil
}

var dateTokens = regexp.MustCompile(`[A-Z][a-z]{2} \d{1,2}, \d{4}|\d{4}-\d{2}-\d{2}`)

func readRows(text string) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(text))
	// Preamble rows have arbitrary shapes and quoting.
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, &ParseError{Msg: fmt.Sprintf("unreadable export: %v", err)}
	}
	return rows, nil
}

func cell(row []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func normalizeHeader(s string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(s, "\uFEFF")))
}

// cleanIdentifier unwraps the spreadsheet formula escape the export
// uses to keep long numeric IDs from being mangled by Excel.
func cleanIdentifier(s string) string {
	s = strings.TrimSpace(s)
	if m := formulaEscape.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return strings.Trim(s, `"`)
}

// parseNumber cleans one numeric cell. The sentinel "-" and the empty
// string mean "no data" and map to nil, never to zero. Thousands
// separators and a trailing "%" are stripped before parsing.
func parseNumber(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return nil
	}
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSuffix(s, "%")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parsePromoted(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "promoted", "active":
		return true
	}
	return false
}

func parseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return nil
	}
	for _, layout := range startDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}
