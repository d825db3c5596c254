package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// Donut renders a ring split proportionally between the slices. A ring whose
// slices sum to zero is drawn as an empty track.
func Donut(size int, slices []Slice, opts DonutOpts) (template.HTML, error) {
	if len(slices) == 0 {
		return "", fmt.Errorf("svg: slices required")
	}
	if size <= 0 {
		size = DefaultHeight
	}
	total := 0.0
	for _, s := range slices {
		if s.Value < 0 {
			return "", fmt.Errorf("svg: slice %q is negative", s.Label)
		}
		total += s.Value
	}
	thickness := opts.Thickness
	if thickness <= 0 {
		thickness = float64(size) * 0.14
	}
	trackColor := fallback(opts.TrackColor, "#e2e8f0")
	textColor := fallback(opts.TextColor, "#0f172a")

	center := float64(size) / 2
	radius := center - thickness/2 - 4
	if radius <= 0 {
		return "", fmt.Errorf("svg: viewport too small")
	}
	circumference := 2 * math.Pi * radius

	var b strings.Builder
	open(&b, size, size, "donut", opts.Title, "Donut chart", opts.Description, "Share of total")
	fmt.Fprintf(&b, "<circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\" fill=\"none\" stroke=\"%s\" stroke-width=\"%.2f\" aria-hidden=\"true\"></circle>", center, center, radius, trackColor, thickness)

	if total > 0 {
		offset := 0.0
		for i, s := range slices {
			length := s.Value / total * circumference
			if length <= 0 {
				continue
			}
			// Segments start at 12 o'clock and run clockwise.
			fmt.Fprintf(&b, "<circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\" fill=\"none\" stroke=\"%s\" stroke-width=\"%.2f\" stroke-dasharray=\"%.2f %.2f\" stroke-dashoffset=\"%.2f\" transform=\"rotate(-90 %.2f %.2f)\"><title>%s: %s (%.1f%%)</title></circle>",
				center, center, radius, colorAt(s.Color, i), thickness,
				length, circumference-length, -offset, center, center,
				template.HTMLEscapeString(s.Label), formatTick(s.Value), s.Value/total*100)
			offset += length
		}
	}

	label := opts.CenterLabel
	if label == "" {
		label = formatTick(total)
	}
	fmt.Fprintf(&b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"16\" font-weight=\"600\" text-anchor=\"middle\">%s</text>", center, center+6, textColor, template.HTMLEscapeString(label))

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
