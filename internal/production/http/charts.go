package productionhttp

import (
	"fmt"
	"html/template"

	"github.com/odyssey-erp/prodmon/internal/platform/httpx"
	"github.com/odyssey-erp/prodmon/internal/production"
	"github.com/odyssey-erp/prodmon/internal/production/svg"
	"github.com/odyssey-erp/prodmon/internal/production/ui"
)

// Chart names served under /production/charts/{chart}.svg.
const (
	chartByDate    = "by-date"
	chartTrend     = "trend"
	chartByProduct = "by-product"
	chartSplit     = "split"
)

const noDataLabel = "Không có dữ liệu"

func (h *Handler) renderChart(name string, d production.Dashboard) (template.HTML, error) {
	switch name {
	case chartByDate:
		labels, pass, ng := ui.DateLabels(d.ByDate), make([]float64, 0, len(d.ByDate)), make([]float64, 0, len(d.ByDate))
		for _, b := range d.ByDate {
			pass = append(pass, b.Pass)
			ng = append(ng, b.NG)
		}
		if len(labels) == 0 {
			labels, pass, ng = []string{noDataLabel}, []float64{0}, []float64{0}
		}
		return h.charts.Bars(svg.DefaultWidth, svg.DefaultHeight, labels, []svg.Series{
			{Label: "Pass", Color: svg.PassColor, Values: pass},
			{Label: "NG", Color: svg.NGColor, Values: ng},
		}, svg.BarOpts{Title: "Sản lượng theo ngày", Description: "Số lượng Pass và NG theo ngày"})
	case chartTrend:
		labels, input := ui.DateLabels(d.ByDate), make([]float64, 0, len(d.ByDate))
		for _, b := range d.ByDate {
			input = append(input, b.Input)
		}
		if len(labels) == 0 {
			labels, input = []string{noDataLabel}, []float64{0}
		}
		return h.charts.Line(svg.DefaultWidth, svg.DefaultHeight, input, labels, svg.LineOpts{
			Title:       "Xu hướng Input",
			Description: "Tổng số lượng input theo ngày",
			ShowDots:    true,
		})
	case chartByProduct:
		labels, input := make([]string, 0, len(d.ByProductType)), make([]float64, 0, len(d.ByProductType))
		for _, b := range d.ByProductType {
			labels = append(labels, b.Category)
			input = append(input, b.Input)
		}
		if len(labels) == 0 {
			labels, input = []string{noDataLabel}, []float64{0}
		}
		return h.charts.HBars(svg.DefaultWidth, svg.DefaultHeight, labels, input, svg.HBarOpts{
			Title:       "Theo loại sản phẩm",
			Description: "Tổng input theo loại sản phẩm",
		})
	case chartSplit:
		center := "0%"
		if total := d.Split.Pass + d.Split.NG; total > 0 {
			center = fmt.Sprintf("%.1f%%", d.Split.Pass/total*100)
		}
		return h.charts.Donut(svg.DefaultHeight, []svg.Slice{
			{Label: "Pass", Color: svg.PassColor, Value: d.Split.Pass},
			{Label: "NG", Color: svg.NGColor, Value: d.Split.NG},
		}, svg.DonutOpts{Title: "Pass và NG", Description: "Tỷ lệ Pass so với NG", CenterLabel: center})
	default:
		return "", fmt.Errorf("chart %q: %w", name, httpx.ErrNotFound)
	}
}
