package app

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/gopforever/ShazbotCards/internal/report"
)

func TestTruncate(t *testing.T) {
	if got := truncate("short title", 40); got != "short title" {
		t.Fatalf("short strings must pass through, got %q", got)
	}
	got := truncate(strings.Repeat("x", 50), 40)
	if len(got) != 40 || !strings.HasSuffix(got, "...") {
		t.Fatalf("long strings should cut to max with ellipsis, got %q (%d)", got, len(got))
	}
}

func TestTruncateMultibyte(t *testing.T) {
	title := "Panini Prizm José Ramírez™ " + strings.Repeat("é", 30)
	got := truncate(title, 40)
	if !utf8.ValidString(got) {
		t.Fatalf("truncation must not split a rune, got %q", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Fatalf("expected ellipsis suffix, got %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 40 {
		t.Fatalf("rune count = %d, want 40", n)
	}
}

func TestFormatMetric(t *testing.T) {
	if got := formatMetric(nil); got != "-" {
		t.Fatalf("nil metric should render as dash, got %q", got)
	}
	if got := formatMetric(report.Ptr(2.5)); got != "2.5" {
		t.Fatalf("metric should render one decimal, got %q", got)
	}
	if got := formatMetric(report.Ptr(0)); got != "0.0" {
		t.Fatalf("zero must stay visibly distinct from no data, got %q", got)
	}
}
