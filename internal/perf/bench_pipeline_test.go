package perf

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/prodmon/internal/production"
	productionhttp "github.com/odyssey-erp/prodmon/internal/production/http"
	"github.com/odyssey-erp/prodmon/internal/production/ui"
)

type staticSource struct {
	rows []production.RawRow
}

func (s staticSource) FetchRows(ctx context.Context, opts production.FetchOptions) (production.FetchResult, error) {
	return production.FetchResult{Rows: s.rows}, nil
}

func syntheticRows(n int) []production.RawRow {
	types := []string{"Áo Thun", "Quần Jean", "Váy", "Áo Khoác"}
	customers := []string{"Adidas", "Nike", "Puma", "Zara", "Uniqlo"}
	rows := make([]production.RawRow, n)
	start := time.Date(2023, 10, 1, 0, 0, 0, 0, time.UTC)
	for i := range rows {
		day := start.AddDate(0, 0, i%30)
		rows[i] = production.RawRow{
			"Ngày":            day.Format("01/02/2006"),
			"Đơn hàng":        fmt.Sprintf("PO-%05d", i),
			"Loại sp":         types[i%len(types)],
			"Khách hàng":      customers[i%len(customers)],
			"Số lượng inputs": fmt.Sprintf("%d", 100+i%400),
			"pass":            90 + i%380,
			"Hàng NG":         i % 20,
		}
	}
	return rows
}

func BenchmarkNormalizeAndBuild(b *testing.B) {
	rows := syntheticRows(10000)
	filter := production.Filter{DateFrom: "2023-10-05", DateTo: "2023-10-20", Customers: []string{"Nike", "Zara"}}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		production.Build(production.Normalize(rows), filter)
	}
}

func BenchmarkDashboardHandlerCached(b *testing.B) {
	mr := miniredis.RunT(b)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	service := production.NewService(staticSource{rows: syntheticRows(2000)}, production.NewCache(client, time.Minute), nil)
	handler := productionhttp.NewHandler(nil, service, ui.SVGRenderer{}, nil)
	r := chi.NewRouter()
	handler.MountRoutes(r)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/production?from=2023-10-01&to=2023-10-30", nil))
		if rr.Code != http.StatusOK {
			b.Fatalf("unexpected status %d", rr.Code)
		}
	}
}

func TestDashboardLatencyTargets(t *testing.T) {
	if testing.Short() {
		t.Skip("latency sampling skipped in short mode")
	}
	service := production.NewService(staticSource{rows: syntheticRows(5000)}, nil, nil)
	filter := production.Filter{DateFrom: "2023-10-01", DateTo: "2023-10-30"}

	samples := make([]time.Duration, 0, 20)
	for i := 0; i < 20; i++ {
		start := time.Now()
		d, err := service.Dashboard(context.Background(), filter)
		if err != nil {
			t.Fatalf("dashboard: %v", err)
		}
		if len(d.Records) != 5000 {
			t.Fatalf("expected 5000 records, got %d", len(d.Records))
		}
		samples = append(samples, time.Since(start))
	}
	if p95 := percentile95(samples); p95 > 2*time.Second {
		t.Fatalf("dashboard latency regression: p95=%s", p95)
	}
}

func percentile95(samples []time.Duration) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	index := int(float64(len(sorted)-1) * 0.95)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}
