package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/prodmon/internal/jobs"
	"github.com/odyssey-erp/prodmon/internal/production"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

const refreshTimeout = 30 * time.Second

// DashboardRefresher is the slice of the production service the job drives.
type DashboardRefresher interface {
	Refresh(ctx context.Context) error
	Dashboard(ctx context.Context, f production.Filter) (production.Dashboard, error)
}

// ProductionRefreshJob drops cached rows and warms the dashboard window.
type ProductionRefreshJob struct {
	Service DashboardRefresher
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewProductionRefreshJob wires dependencies for the refresh handler.
func NewProductionRefreshJob(service DashboardRefresher, logger *slog.Logger, metrics *jobmetrics.Metrics) *ProductionRefreshJob {
	return &ProductionRefreshJob{
		Service: service,
		Logger:  logger,
		Metrics: metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle processes production refresh tasks.
func (j *ProductionRefreshJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Service == nil {
		return errors.New("production refresh: handler not configured")
	}
	var payload RefreshPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
	}

	tracker := j.metrics().Track(TaskProductionRefresh)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	now := j.now()
	filter := production.DefaultFilter(now)
	if payload.DateFrom != "" || payload.DateTo != "" {
		filter = production.Filter{DateFrom: payload.DateFrom, DateTo: payload.DateTo}
	}
	logger := j.logger().With(slog.String("from", filter.DateFrom), slog.String("to", filter.DateTo))
	logger.Info("starting production refresh")

	runCtx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	if err := j.Service.Refresh(runCtx); err != nil {
		resultErr = err
		logger.Error("invalidate production cache", slog.Any("error", err))
		return resultErr
	}
	dashboard, err := j.Service.Dashboard(runCtx, filter)
	if err != nil {
		resultErr = err
		logger.Error("warm production dashboard", slog.Any("error", err))
		return resultErr
	}
	j.metrics().SetRefreshRows(string(dashboard.Source), len(dashboard.Records))
	if dashboard.Source == production.SourceFallback {
		logger.Warn("production refresh served fallback rows")
	}

	logger.Info("completed production refresh",
		slog.Int("records", len(dashboard.Records)),
		slog.String("source", string(dashboard.Source)),
		slog.Duration("duration", time.Since(now)),
	)
	return resultErr
}

func (j *ProductionRefreshJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskProductionRefresh))
	}
	return slog.Default().With(slog.String("job", TaskProductionRefresh))
}

func (j *ProductionRefreshJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *ProductionRefreshJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
