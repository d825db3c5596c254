package production

import (
	"cmp"
	"slices"
	"time"
)

const (
	// UnknownDate labels the by-date bucket for records without a date.
	UnknownDate = "Unknown"
	// UnknownCategory labels the product-type bucket for records without a type.
	UnknownCategory = "N/A"
)

// Totals are the headline KPIs for a record set.
type Totals struct {
	TotalInput   float64 `json:"totalInput"`
	TotalPass    float64 `json:"totalPass"`
	TotalNG      float64 `json:"totalNG"`
	TotalPending float64 `json:"totalPending"`
	PassRate     float64 `json:"passRate"`
	NGRate       float64 `json:"ngRate"`
	PendingRate  float64 `json:"pendingRate"`
}

// DateBucket sums quantities for one production date.
type DateBucket struct {
	Date  string  `json:"date"`
	Input float64 `json:"inputSum"`
	Pass  float64 `json:"passSum"`
	NG    float64 `json:"ngSum"`
}

// CategoryBucket sums quantities for one product type.
type CategoryBucket struct {
	Category string  `json:"category"`
	Input    float64 `json:"inputSum"`
	Pass     float64 `json:"passSum"`
	NG       float64 `json:"ngSum"`
}

// Split is the pass/NG proportion feeding the share chart.
type Split struct {
	Pass float64 `json:"passTotal"`
	NG   float64 `json:"ngTotal"`
}

// Aggregate sums the base quantities and derives percentage rates.
// Pending is the sum of each row's clamped pending, not the clamp of the sums.
func Aggregate(records []Record) Totals {
	var t Totals
	for _, r := range records {
		t.TotalInput += r.InputQty
		t.TotalPass += r.PassQty
		t.TotalNG += r.NGQty
		t.TotalPending += Pending(r)
	}
	t.PassRate = rate(t.TotalPass, t.TotalInput)
	t.NGRate = rate(t.TotalNG, t.TotalInput)
	t.PendingRate = rate(t.TotalPending, t.TotalInput)
	return t
}

func rate(part, whole float64) float64 {
	if whole > 0 {
		return part / whole * 100
	}
	return 0
}

// GroupByDate buckets records per date in chronological order. Dates that do
// not parse keep their first-seen order after the dated buckets, and the
// Unknown bucket always comes last.
func GroupByDate(records []Record) []DateBucket {
	index := make(map[string]int)
	buckets := make([]DateBucket, 0)
	for _, r := range records {
		key := r.Date
		if key == "" {
			key = UnknownDate
		}
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, DateBucket{Date: key})
		}
		buckets[i].Input += r.InputQty
		buckets[i].Pass += r.PassQty
		buckets[i].NG += r.NGQty
	}
	slices.SortStableFunc(buckets, func(a, b DateBucket) int {
		return compareBucketDates(a.Date, b.Date)
	})
	return buckets
}

func compareBucketDates(a, b string) int {
	ra, ta := dateRank(a)
	rb, tb := dateRank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}
	if ra == 0 {
		return ta.Compare(tb)
	}
	return 0
}

// dateRank orders parseable dates first, then unparseable labels, then Unknown.
func dateRank(date string) (int, time.Time) {
	if date == UnknownDate {
		return 2, time.Time{}
	}
	if t, err := time.Parse(isoDate, date); err == nil {
		return 0, t
	}
	return 1, time.Time{}
}

// GroupByProductType buckets records per product type, largest input first.
// Ties keep first-encountered order.
func GroupByProductType(records []Record) []CategoryBucket {
	index := make(map[string]int)
	buckets := make([]CategoryBucket, 0)
	for _, r := range records {
		key := r.ProductType
		if key == "" {
			key = UnknownCategory
		}
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, CategoryBucket{Category: key})
		}
		buckets[i].Input += r.InputQty
		buckets[i].Pass += r.PassQty
		buckets[i].NG += r.NGQty
	}
	slices.SortStableFunc(buckets, func(a, b CategoryBucket) int {
		return cmp.Compare(b.Input, a.Input)
	})
	return buckets
}

// PassVsNG totals passed and rejected quantities.
func PassVsNG(records []Record) Split {
	var s Split
	for _, r := range records {
		s.Pass += r.PassQty
		s.NG += r.NGQty
	}
	return s
}

// FilterOptions lists the distinct values offered by the multi-select filters.
type FilterOptions struct {
	ProductTypes     []string `json:"productTypes"`
	Customers        []string `json:"customers"`
	DeliveryStatuses []string `json:"deliveryStatuses"`
	ShiftLeaders     []string `json:"shiftLeaders"`
}

// Options collects sorted distinct non-empty values per category field.
func Options(records []Record) FilterOptions {
	return FilterOptions{
		ProductTypes:     distinct(records, func(r Record) string { return r.ProductType }),
		Customers:        distinct(records, func(r Record) string { return r.Customer }),
		DeliveryStatuses: distinct(records, func(r Record) string { return r.DeliveryStatus }),
		ShiftLeaders:     distinct(records, func(r Record) string { return r.ShiftLeader }),
	}
}

func distinct(records []Record, field func(Record) string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, r := range records {
		v := field(r)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}
