package e2e

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/prodmon/internal/app"
	jobmetrics "github.com/odyssey-erp/prodmon/internal/jobs"
	"github.com/odyssey-erp/prodmon/internal/observability"
	"github.com/odyssey-erp/prodmon/internal/production"
	"github.com/odyssey-erp/prodmon/internal/production/appsheet"
	productionhttp "github.com/odyssey-erp/prodmon/internal/production/http"
	"github.com/odyssey-erp/prodmon/internal/production/ui"
	"github.com/odyssey-erp/prodmon/jobs"
	"github.com/odyssey-erp/prodmon/web"
)

const backendRows = `{"Rows":[
 {"_RowNumber":1,"Ngày":"10/25/2023","Đơn hàng":"PO-1","Tên đơn":"Áo thun","Loại sp":"Áo Thun","Khách hàng":"Adidas","Số lượng inputs":"1,000","pass":950,"Hàng NG":50},
 {"_RowNumber":2,"Ngày":"10/26/2023","Đơn hàng":"PO-2","Tên đơn":"Jean","Loại sp":"Quần Jean","Khách hàng":"Nike","Số lượng inputs":400,"pass":390,"Hàng NG":4},
 {"_RowNumber":3,"Ngày":"10/26/2023","Đơn hàng":"PO-3","Tên đơn":"Váy","Loại sp":"Váy","Khách hàng":"Zara","Số lượng inputs":200,"pass":150,"Hàng NG":30}
]}`

type flow struct {
	router   http.Handler
	service  *production.Service
	hits     *atomic.Int32
	failNext *atomic.Bool
}

func newFlow(t *testing.T) flow {
	t.Helper()
	hits := &atomic.Int32{}
	failNext := &atomic.Bool{}
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if failNext.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, backendRows)
	}))
	t.Cleanup(backend.Close)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	source := appsheet.NewClient(appsheet.Config{
		AppID:     "app-1",
		AccessKey: "key",
		BaseURL:   backend.URL,
		Timeout:   2 * time.Second,
	}, backend.Client(), logger)
	service := production.NewService(source, production.NewCache(client, time.Minute), logger)
	now := func() time.Time { return time.Date(2023, 10, 27, 10, 0, 0, 0, time.UTC) }
	service.WithNow(now)

	page, err := productionhttp.ParsePage(web.Templates)
	require.NoError(t, err)
	handler := productionhttp.NewHandler(logger, service, ui.SVGRenderer{}, page)
	handler.WithNow(now)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            &app.Config{AppEnv: "development", RateLimit: 1000},
		ProductionHandler: handler,
		Metrics:           observability.NewMetrics(),
	})
	return flow{router: router, service: service, hits: hits, failNext: failNext}
}

func (f flow) do(t *testing.T, method, target, accept string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func TestDashboardFromBackendIsCached(t *testing.T) {
	f := newFlow(t)

	rr := f.do(t, http.MethodGet, "/production?from=2023-10-25&to=2023-10-26", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var vm struct {
		Source  string `json:"source"`
		Records []struct {
			OrderCode string `json:"orderCode"`
		} `json:"records"`
		Split production.Split `json:"split"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &vm))
	assert.Equal(t, "live", vm.Source)
	assert.Len(t, vm.Records, 3)
	assert.Equal(t, production.Split{Pass: 1490, NG: 84}, vm.Split)

	rr = f.do(t, http.MethodGet, "/production?from=2023-10-25&to=2023-10-26&customer=Nike", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, int32(1), f.hits.Load())

	rr = f.do(t, http.MethodGet, "/production?from=2023-10-25&to=2023-10-26", "text/html")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "1.600")
	assert.Equal(t, 4, strings.Count(rr.Body.String(), "<svg"))
}

func TestBackendOutageFallsBackWithoutPoisoningCache(t *testing.T) {
	f := newFlow(t)
	f.failNext.Store(true)

	rr := f.do(t, http.MethodGet, "/production?all=1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"source":"fallback"`)

	f.failNext.Store(false)
	rr = f.do(t, http.MethodGet, "/production?all=1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"source":"live"`)
	assert.Equal(t, int32(2), f.hits.Load())
}

func TestExportMatchesDashboard(t *testing.T) {
	f := newFlow(t)

	rr := f.do(t, http.MethodGet, "/production/export.csv?from=2023-10-26&to=2023-10-26", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "production-2023-10-26_2023-10-26.csv")

	reader := csv.NewReader(strings.NewReader(rr.Body.String()))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)
	totals := map[string]string{}
	for _, rec := range records {
		if len(rec) == 2 {
			totals[rec[0]] = rec[1]
		}
	}
	assert.Equal(t, "600", totals["Tổng Input"])
	assert.Equal(t, "26/10/2023", totals["Từ ngày"])
}

func TestRefreshJobReloadsBackend(t *testing.T) {
	f := newFlow(t)
	_ = f.do(t, http.MethodGet, "/production?from=2023-10-20&to=2023-10-27", "")
	require.Equal(t, int32(1), f.hits.Load())

	job := jobs.NewProductionRefreshJob(f.service, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))
	task, err := jobs.NewProductionRefreshTask(jobs.RefreshPayload{DateFrom: "2023-10-20", DateTo: "2023-10-27"})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))
	assert.Equal(t, int32(2), f.hits.Load())

	_ = f.do(t, http.MethodGet, "/production?from=2023-10-20&to=2023-10-27", "")
	assert.Equal(t, int32(2), f.hits.Load())
}
