package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthWithoutInspector(t *testing.T) {
	r := chi.NewRouter()
	r.Route("/jobs", NewHandler(nil, slog.Default()).MountRoutes)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var body queueHealth
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, queueHealth{Queue: QueueDefault}, body)
}

func TestEnqueueRefresh(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewClient(asynq.RedisClientOpt{Addr: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	info, err := client.EnqueueRefresh(context.Background(), RefreshPayload{DateFrom: "2023-10-20"})
	require.NoError(t, err)
	assert.Equal(t, TaskProductionRefresh, info.Type)
	assert.Equal(t, QueueDefault, info.Queue)

	var payload RefreshPayload
	require.NoError(t, json.Unmarshal(info.Payload, &payload))
	assert.Equal(t, "2023-10-20", payload.DateFrom)
}

func TestNewWorkerRegistersCron(t *testing.T) {
	mr := miniredis.RunT(t)
	task, err := NewProductionRefreshTask(RefreshPayload{})
	require.NoError(t, err)

	job := NewProductionRefreshJob(&stubRefresher{}, nil, nil)
	worker, err := NewWorker(WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: mr.Addr()},
		Handlers:  []TaskHandler{{Type: TaskProductionRefresh, Handler: job.Handle}},
		Cron:      []CronRegistration{{Spec: "*/15 * * * *", Task: task}},
	})
	require.NoError(t, err)
	assert.NotNil(t, worker.scheduler)

	_, err = NewWorker(WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: mr.Addr()},
		Cron:      []CronRegistration{{Spec: "not a cron", Task: task}},
	})
	assert.Error(t, err)
}
