package productionhttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/odyssey-erp/prodmon/internal/platform/httpx"
)

const defaultExportLimit = 10

// MountRoutes registers production dashboard endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(h.exportLimit, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			httpx.Problem(w, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests), "export rate limit reached")
		}),
	)

	r.Get("/production", h.handleDashboard)
	r.Get("/production/records", h.handleRecords)
	r.Get("/production/charts/{chart}.svg", h.handleChart)
	r.Group(func(gr chi.Router) {
		gr.Use(limiter)
		gr.Get("/production/export.csv", h.handleCSV)
		gr.Post("/production/refresh", h.handleRefresh)
	})
}

func rateLimitKey(r *http.Request) (string, error) {
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
