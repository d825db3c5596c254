package production

import (
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

// defaultWindowDays is the look-back applied when the dashboard opens.
const defaultWindowDays = 7

// Filter holds the user-controlled view criteria. Empty fields are inactive.
type Filter struct {
	DateFrom         string   `json:"dateFrom"`
	DateTo           string   `json:"dateTo"`
	OrderCodeQuery   string   `json:"orderCodeQuery"`
	OrderNameQuery   string   `json:"orderNameQuery"`
	ProductTypes     []string `json:"productTypes"`
	Customers        []string `json:"customers"`
	DeliveryStatuses []string `json:"deliveryStatuses"`
	ShiftLeaders     []string `json:"shiftLeaders"`
}

// DefaultFilter returns the initial dashboard window ending today (UTC).
func DefaultFilter(now time.Time) Filter {
	end := now.UTC()
	start := end.AddDate(0, 0, -defaultWindowDays)
	return Filter{DateFrom: start.Format(isoDate), DateTo: end.Format(isoDate)}
}

// HasDateRange reports whether either date bound is active.
func (f Filter) HasDateRange() bool {
	return f.DateFrom != "" || f.DateTo != ""
}

// IsZero reports whether no criterion is active.
func (f Filter) IsZero() bool {
	return !f.HasDateRange() && f.OrderCodeQuery == "" && f.OrderNameQuery == "" &&
		len(f.ProductTypes) == 0 && len(f.Customers) == 0 &&
		len(f.DeliveryStatuses) == 0 && len(f.ShiftLeaders) == 0
}

// Normalized trims the date bounds and drops blank or duplicate set entries.
// Order queries are kept as typed, surrounding spaces included.
func (f Filter) Normalized() Filter {
	return Filter{
		DateFrom:         strings.TrimSpace(f.DateFrom),
		DateTo:           strings.TrimSpace(f.DateTo),
		OrderCodeQuery:   f.OrderCodeQuery,
		OrderNameQuery:   f.OrderNameQuery,
		ProductTypes:     cleanSet(f.ProductTypes),
		Customers:        cleanSet(f.Customers),
		DeliveryStatuses: cleanSet(f.DeliveryStatuses),
		ShiftLeaders:     cleanSet(f.ShiftLeaders),
	}
}

// Key renders a stable token for the filter, independent of set ordering.
func (f Filter) Key() string {
	n := f.Normalized()
	parts := []string{
		orDash(n.DateFrom), orDash(n.DateTo),
		orDash(n.OrderCodeQuery), orDash(n.OrderNameQuery),
		setToken(n.ProductTypes), setToken(n.Customers),
		setToken(n.DeliveryStatuses), setToken(n.ShiftLeaders),
	}
	return strings.Join(parts, "|")
}

func setToken(values []string) string {
	if len(values) == 0 {
		return "-"
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	return strings.Join(sorted, ",")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func cleanSet(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Apply returns the records matching every active criterion, preserving order.
func Apply(records []Record, f Filter) []Record {
	m := newMatcher(f)
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if m.match(r) {
			out = append(out, r)
		}
	}
	return out
}

type matcher struct {
	f         Filter
	fold      cases.Caser
	codeQuery string
	nameQuery string
}

func newMatcher(f Filter) *matcher {
	m := &matcher{f: f, fold: cases.Fold()}
	if f.OrderCodeQuery != "" {
		m.codeQuery = m.fold.String(f.OrderCodeQuery)
	}
	if f.OrderNameQuery != "" {
		m.nameQuery = m.fold.String(f.OrderNameQuery)
	}
	return m
}

func (m *matcher) match(r Record) bool {
	// ISO dates compare chronologically as strings; an empty date fails any bound.
	if m.f.DateFrom != "" && (r.Date == "" || r.Date < m.f.DateFrom) {
		return false
	}
	if m.f.DateTo != "" && (r.Date == "" || r.Date > m.f.DateTo) {
		return false
	}
	if m.codeQuery != "" && !strings.Contains(m.fold.String(r.OrderCode), m.codeQuery) {
		return false
	}
	if m.nameQuery != "" && !strings.Contains(m.fold.String(r.OrderName), m.nameQuery) {
		return false
	}
	return inSet(m.f.ProductTypes, r.ProductType) &&
		inSet(m.f.Customers, r.Customer) &&
		inSet(m.f.DeliveryStatuses, r.DeliveryStatus) &&
		inSet(m.f.ShiftLeaders, r.ShiftLeader)
}

// inSet treats an empty set as "no restriction".
func inSet(set []string, value string) bool {
	return len(set) == 0 || slices.Contains(set, value)
}
