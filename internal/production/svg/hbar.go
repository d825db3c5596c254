package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// HBars renders one horizontal bar per category, in the order given.
func HBars(width, height int, labels []string, values []float64, opts HBarOpts) (template.HTML, error) {
	if len(values) == 0 {
		return "", fmt.Errorf("svg: values required")
	}
	if len(values) != len(labels) {
		return "", fmt.Errorf("svg: labels length must match values")
	}
	width, height, padding := viewport(width, height, opts.Padding)
	labelWidth := opts.LabelWidth
	if labelWidth <= 0 {
		labelWidth = DefaultLabelWidth
	}
	barColor := fallback(opts.BarColor, InputColor)
	axisColor := fallback(opts.AxisColor, "#475569")

	chartWidth := float64(width) - 2*padding - labelWidth
	chartHeight := float64(height) - 2*padding
	if chartWidth <= 0 || chartHeight <= 0 {
		return "", fmt.Errorf("svg: viewport too small")
	}

	_, maxVal := bounds(values)
	if maxVal <= 0 {
		maxVal = 1
	}
	rowHeight := chartHeight / float64(len(values))
	barHeight := rowHeight * 0.7
	originX := padding + labelWidth

	var b strings.Builder
	open(&b, width, height, "hbar", opts.Title, "Category chart", opts.Description, "Totals per category")
	fmt.Fprintf(&b, "<line x1=\"%.2f\" y1=\"%.2f\" x2=\"%.2f\" y2=\"%.2f\" stroke=\"%s\" stroke-width=\"1\" aria-hidden=\"true\"></line>", originX, padding, originX, padding+chartHeight, axisColor)

	for i, label := range labels {
		top := padding + float64(i)*rowHeight + (rowHeight-barHeight)/2
		w := math.Max(values[i], 0) / maxVal * chartWidth
		fmt.Fprintf(&b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"11\" text-anchor=\"end\">%s</text>", originX-6, top+barHeight/2+4, axisColor, template.HTMLEscapeString(label))
		fmt.Fprintf(&b, "<rect x=\"%.2f\" y=\"%.2f\" width=\"%.2f\" height=\"%.2f\" rx=\"2\" fill=\"%s\"><title>%s: %s</title></rect>", originX, top, w, barHeight, barColor, template.HTMLEscapeString(label), formatTick(values[i]))
		fmt.Fprintf(&b, "<text x=\"%.2f\" y=\"%.2f\" fill=\"%s\" font-size=\"10\" text-anchor=\"start\">%s</text>", originX+w+4, top+barHeight/2+4, axisColor, formatTick(values[i]))
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
