package svg

import (
	"strings"
	"testing"
)

func TestBarsProducesSVG(t *testing.T) {
	html, err := Bars(420, 220, []string{"25/10", "26/10"}, []Series{
		{Label: "Pass", Color: PassColor, Values: []float64{770, 745}},
		{Label: "NG", Color: NGColor, Values: []float64{30, 55}},
	}, BarOpts{Title: "Sản lượng theo ngày", Description: "Pass và NG theo ngày"})
	if err != nil {
		t.Fatalf("bars renderer error: %v", err)
	}
	output := string(html)
	if !strings.HasPrefix(output, "<svg") {
		t.Fatalf("expected svg output, got %s", output)
	}
	if got := strings.Count(output, "<rect"); got != 6 {
		t.Fatalf("expected 4 bars and 2 legend swatches, got %d rects", got)
	}
	if !strings.Contains(output, NGColor) {
		t.Fatalf("expected NG colour in output")
	}
}

func TestBarsRejectsMismatchedSeries(t *testing.T) {
	_, err := Bars(0, 0, []string{"a", "b"}, []Series{{Label: "Pass", Values: []float64{1}}}, BarOpts{})
	if err == nil {
		t.Fatalf("expected length mismatch error")
	}
}

func TestHBarsProducesOneBarPerCategory(t *testing.T) {
	html, err := HBars(480, 200, []string{"Áo Thun", "Quần Jean", "<script>"}, []float64{700, 700, 0}, HBarOpts{Title: "Theo loại sản phẩm"})
	if err != nil {
		t.Fatalf("hbars renderer error: %v", err)
	}
	output := string(html)
	if got := strings.Count(output, "<rect"); got != 3 {
		t.Fatalf("expected 3 bars, got %d", got)
	}
	if strings.Contains(output, "<script>") {
		t.Fatalf("labels must be escaped")
	}
}

func TestDonutSplitsRing(t *testing.T) {
	html, err := Donut(200, []Slice{
		{Label: "Pass", Color: PassColor, Value: 2845},
		{Label: "NG", Color: NGColor, Value: 155},
	}, DonutOpts{Title: "Pass vs NG", CenterLabel: "94.8%"})
	if err != nil {
		t.Fatalf("donut renderer error: %v", err)
	}
	output := string(html)
	if got := strings.Count(output, "stroke-dasharray"); got != 2 {
		t.Fatalf("expected 2 segments, got %d", got)
	}
	if !strings.Contains(output, "94.8%") || !strings.Contains(output, "(5.2%)") {
		t.Fatalf("expected share labels in output: %s", output)
	}
}

func TestDonutEmptyTotalDrawsTrackOnly(t *testing.T) {
	html, err := Donut(120, []Slice{{Label: "Pass"}, {Label: "NG"}}, DonutOpts{})
	if err != nil {
		t.Fatalf("donut renderer error: %v", err)
	}
	if strings.Contains(string(html), "stroke-dasharray") {
		t.Fatalf("expected no segments for empty ring")
	}
	if _, err := Donut(120, []Slice{{Label: "bad", Value: -1}}, DonutOpts{}); err == nil {
		t.Fatalf("expected error for negative slice")
	}
}
