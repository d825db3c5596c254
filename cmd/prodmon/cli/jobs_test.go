package cli

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/prodmon/jobs"
)

func TestJobsCLITrigger(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := NewJobsCLI(mr.Addr())
	require.NoError(t, err)
	defer c.Close()

	info, err := c.Trigger(context.Background(), jobs.TaskProductionRefresh)
	require.NoError(t, err)
	assert.Equal(t, jobs.TaskProductionRefresh, info.Type)
	assert.Equal(t, 3, info.MaxRetry)

	_, err = c.Trigger(context.Background(), "mail:send")
	assert.EqualError(t, err, "jobs cli: unsupported job mail:send")
}

func TestJobsCLIRequiresConfiguration(t *testing.T) {
	_, err := NewJobsCLI("")
	assert.Error(t, err)

	var c *JobsCLI
	_, err = c.Trigger(context.Background(), jobs.TaskProductionRefresh)
	assert.Error(t, err)
	_, err = c.InspectQueue(context.Background())
	assert.Error(t, err)
	_, err = c.ListScheduled(context.Background(), 5)
	assert.Error(t, err)
}
