package svg

import (
	"strings"
	"testing"
)

func TestLineProducesSVG(t *testing.T) {
	html, err := Line(400, 200, []float64{800, 800, 1400}, []string{"25/10", "26/10", "27/10"}, LineOpts{
		Title:       "Input",
		Description: "Daily input volume",
		ShowDots:    true,
	})
	if err != nil {
		t.Fatalf("line renderer error: %v", err)
	}
	output := string(html)
	if !strings.HasPrefix(output, "<svg") {
		t.Fatalf("expected svg output, got %s", output)
	}
	if !strings.Contains(output, "<path") {
		t.Fatalf("expected path element in svg")
	}
	if !strings.Contains(output, "aria-labelledby=\"input-line-title input-line-desc\"") {
		t.Fatalf("expected accessibility attributes")
	}
	if got := strings.Count(output, "<circle"); got != 3 {
		t.Fatalf("expected 3 dots, got %d", got)
	}
}

func TestLineSinglePoint(t *testing.T) {
	if _, err := Line(0, 0, []float64{5}, []string{"25/10"}, LineOpts{}); err != nil {
		t.Fatalf("single point should render: %v", err)
	}
	if _, err := Line(0, 0, nil, nil, LineOpts{}); err == nil {
		t.Fatalf("expected error for empty series")
	}
}
