package ui

import (
	"fmt"
	"html/template"
	"time"

	"github.com/odyssey-erp/prodmon/internal/production"
	"github.com/odyssey-erp/prodmon/internal/production/svg"
)

// DashboardFilters represents the sanitized query filters echoed back to the page.
type DashboardFilters struct {
	From             string   `json:"from"`
	To               string   `json:"to"`
	AllDates         bool     `json:"allDates"`
	OrderCode        string   `json:"orderCode"`
	OrderName        string   `json:"orderName"`
	ProductTypes     []string `json:"productTypes"`
	Customers        []string `json:"customers"`
	DeliveryStatuses []string `json:"deliveryStatuses"`
	ShiftLeaders     []string `json:"shiftLeaders"`
}

// KPICard is one headline figure on the dashboard.
type KPICard struct {
	Key    string  `json:"key"`
	Label  string  `json:"label"`
	Value  float64 `json:"value"`
	Rate   float64 `json:"rate"`
	Detail string  `json:"detail"`
	Tone   string  `json:"tone"`
}

// RecordRow is one line in the detail table.
type RecordRow struct {
	production.Record
	DisplayDate string                `json:"displayDate"`
	Metrics     production.RowMetrics `json:"metrics"`
}

// DashboardViewModel combines all dashboard data for rendering.
type DashboardViewModel struct {
	Filters       DashboardFilters            `json:"filters"`
	KPIs          []KPICard                   `json:"kpis"`
	Records       []RecordRow                 `json:"records"`
	ByDate        []production.DateBucket     `json:"byDate"`
	ByProductType []production.CategoryBucket `json:"byProductType"`
	Split         production.Split            `json:"split"`
	Options       production.FilterOptions    `json:"options"`
	Empty         bool                        `json:"empty"`
	Source        production.Source           `json:"source"`
	GeneratedAt   time.Time                   `json:"generatedAt"`
	Query         string                      `json:"-"`
	ByDateSVG     template.HTML               `json:"-"`
	TrendSVG      template.HTML               `json:"-"`
	ProductSVG    template.HTML               `json:"-"`
	SplitSVG      template.HTML               `json:"-"`
}

// LineRenderer abstracts SVG line chart rendering for the dashboard.
type LineRenderer interface {
	Line(width, height int, series []float64, labels []string, opts svg.LineOpts) (template.HTML, error)
}

// BarRenderer abstracts SVG bar chart rendering for the dashboard.
type BarRenderer interface {
	Bars(width, height int, labels []string, series []svg.Series, opts svg.BarOpts) (template.HTML, error)
}

// HBarRenderer abstracts horizontal category bars.
type HBarRenderer interface {
	HBars(width, height int, labels []string, values []float64, opts svg.HBarOpts) (template.HTML, error)
}

// DonutRenderer abstracts the pass/NG ring.
type DonutRenderer interface {
	Donut(size int, slices []svg.Slice, opts svg.DonutOpts) (template.HTML, error)
}

// Renderer bundles every chart kind the dashboard draws.
type Renderer interface {
	LineRenderer
	BarRenderer
	HBarRenderer
	DonutRenderer
}

// SVGRenderer is the Renderer backed by package svg.
type SVGRenderer struct{}

func (SVGRenderer) Line(width, height int, series []float64, labels []string, opts svg.LineOpts) (template.HTML, error) {
	return svg.Line(width, height, series, labels, opts)
}

func (SVGRenderer) Bars(width, height int, labels []string, series []svg.Series, opts svg.BarOpts) (template.HTML, error) {
	return svg.Bars(width, height, labels, series, opts)
}

func (SVGRenderer) HBars(width, height int, labels []string, values []float64, opts svg.HBarOpts) (template.HTML, error) {
	return svg.HBars(width, height, labels, values, opts)
}

func (SVGRenderer) Donut(size int, slices []svg.Slice, opts svg.DonutOpts) (template.HTML, error) {
	return svg.Donut(size, slices, opts)
}

// ToKPICards converts totals into the four headline cards.
func ToKPICards(t production.Totals) []KPICard {
	return []KPICard{
		{Key: "input", Label: "Tổng Input", Value: t.TotalInput, Rate: 100, Detail: "Tổng sản lượng đầu vào", Tone: "neutral"},
		{Key: "pass", Label: "Tổng Pass", Value: t.TotalPass, Rate: t.PassRate, Detail: fmt.Sprintf("%.1f%% đạt", t.PassRate), Tone: "good"},
		{Key: "ng", Label: "Tổng NG", Value: t.TotalNG, Rate: t.NGRate, Detail: fmt.Sprintf("%.1f%% lỗi", t.NGRate), Tone: "bad"},
		{Key: "pending", Label: "Tồn đọng", Value: t.TotalPending, Rate: t.PendingRate, Detail: fmt.Sprintf("%.1f%% chưa xử lý", t.PendingRate), Tone: "warn"},
	}
}

// ToRecordRows attaches display dates and per-row metrics.
func ToRecordRows(records []production.Record) []RecordRow {
	rows := make([]RecordRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, RecordRow{
			Record:      r,
			DisplayDate: production.DisplayDate(r.Date),
			Metrics:     production.Metrics(r),
		})
	}
	return rows
}

// DateLabels returns the chart labels for the per-day buckets.
func DateLabels(buckets []production.DateBucket) []string {
	labels := make([]string, 0, len(buckets))
	for _, b := range buckets {
		labels = append(labels, production.DisplayDate(b.Date))
	}
	return labels
}
