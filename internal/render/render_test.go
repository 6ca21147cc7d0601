// internal/render/render_test.go
package render

import (
	"strings"
	"testing"
)

func TestToMarkdownPlainTextUnchanged(t *testing.T) {
	in := "Permits for Facility X expired in 2024. Shipment volume < 200 units."
	if got := ToMarkdown(in); got != in {
		t.Errorf("plain text must pass through, got %q", got)
	}
}

func TestToMarkdownConvertsHTML(t *testing.T) {
	got := ToMarkdown("<p>Permits <strong>expired</strong> in 2024.</p>")
	if strings.Contains(got, "<p>") || strings.Contains(got, "<strong>") {
		t.Errorf("expected tags converted, got %q", got)
	}
	if !strings.Contains(got, "expired") {
		t.Errorf("content lost in conversion: %q", got)
	}
}

func TestExcerptShortTextUnchanged(t *testing.T) {
	in := "short finding"
	if got := Excerpt(in, 100); got != in {
		t.Errorf("short text must pass through, got %q", got)
	}
	if got := Excerpt(in, 0); got != in {
		t.Errorf("non-positive budget must pass through, got %q", got)
	}
}

func TestExcerptTruncatesLongText(t *testing.T) {
	in := strings.Repeat("facility permit record entry ", 500)
	got := Excerpt(in, 50)
	if len(got) >= len(in) {
		t.Error("expected truncation")
	}
	if !strings.HasSuffix(got, "[Content truncated]") {
		t.Errorf("expected truncation marker, got tail %q", got[len(got)-30:])
	}
}

func TestCountTokensPositive(t *testing.T) {
	if n := CountTokens(strings.Repeat("word ", 100)); n <= 0 {
		t.Errorf("expected positive token count, got %d", n)
	}
}
