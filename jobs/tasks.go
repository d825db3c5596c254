package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskProductionRefresh invalidates the row cache and re-warms the default window.
	TaskProductionRefresh = "production:refresh"
)

// RefreshPayload describes an optional window to warm after invalidation.
// Empty bounds fall back to the default seven-day window.
type RefreshPayload struct {
	DateFrom string `json:"date_from,omitempty"`
	DateTo   string `json:"date_to,omitempty"`
}

// NewProductionRefreshTask constructs an Asynq task.
func NewProductionRefreshTask(payload RefreshPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskProductionRefresh, data), nil
}
