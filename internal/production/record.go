package production

import "time"

// RawRow is a single backend row keyed by whatever column names the source uses.
type RawRow map[string]any

// Record is the canonical production-tracking row consumed by filters and aggregates.
type Record struct {
	Date           string         `json:"date"`
	OrderCode      string         `json:"orderCode"`
	OrderName      string         `json:"orderName"`
	ProductType    string         `json:"productType"`
	Customer       string         `json:"customer"`
	DeliveryStatus string         `json:"deliveryStatus"`
	ShiftLeader    string         `json:"shiftLeader"`
	InputQty       float64        `json:"inputQty"`
	PassQty        float64        `json:"passQty"`
	NGQty          float64        `json:"ngQty"`
	RowID          string         `json:"rowId,omitempty"`
	Extras         map[string]any `json:"extras,omitempty"`
}

// Pending returns the quantity neither passed nor rejected, clamped at zero.
func Pending(r Record) float64 {
	return max(0, r.InputQty-r.PassQty-r.NGQty)
}

// highDefectRate marks rows whose NG share is worth flagging in the detail table.
const highDefectRate = 5.0

// RowMetrics carries the per-row rates shown next to each record.
type RowMetrics struct {
	Pending     float64 `json:"pending"`
	PassRate    float64 `json:"passRate"`
	NGRate      float64 `json:"ngRate"`
	PendingRate float64 `json:"pendingRate"`
	HighDefect  bool    `json:"highDefect"`
}

// Metrics derives the per-row figures for a record.
func Metrics(r Record) RowMetrics {
	pending := Pending(r)
	m := RowMetrics{
		Pending:     pending,
		PassRate:    rate(r.PassQty, r.InputQty),
		NGRate:      rate(r.NGQty, r.InputQty),
		PendingRate: rate(pending, r.InputQty),
	}
	m.HighDefect = m.NGRate > highDefectRate
	return m
}

// Source identifies which branch of the data source produced the rows.
type Source string

const (
	SourceLive     Source = "live"
	SourceFallback Source = "fallback"
)

// Dashboard is the fully derived view for one filter over one record set.
type Dashboard struct {
	Filter        Filter           `json:"filter"`
	Records       []Record         `json:"records"`
	Totals        Totals           `json:"totals"`
	ByDate        []DateBucket     `json:"byDate"`
	ByProductType []CategoryBucket `json:"byProductType"`
	Split         Split            `json:"split"`
	Options       FilterOptions    `json:"options"`
	Source        Source           `json:"source"`
	GeneratedAt   time.Time        `json:"generatedAt"`
}

// Empty reports whether no rows matched the current filter.
func (d Dashboard) Empty() bool {
	return len(d.Records) == 0
}

// Build filters the record set and derives every aggregate from the result.
// Filter options are computed from the unfiltered set so choices never vanish.
func Build(records []Record, f Filter) Dashboard {
	filtered := Apply(records, f)
	return Dashboard{
		Filter:        f,
		Records:       filtered,
		Totals:        Aggregate(filtered),
		ByDate:        GroupByDate(filtered),
		ByProductType: GroupByProductType(filtered),
		Split:         PassVsNG(filtered),
		Options:       Options(records),
	}
}
