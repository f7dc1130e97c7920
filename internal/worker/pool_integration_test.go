//go:build integration

package worker

// Runs the pool, DLQ and retry sweep against a real Redis.
// Run with: go test -tags integration ./internal/worker/... -v

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"jewelshop/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	rdC, err := tcRedis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	url, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestPool_DeliversJob(t *testing.T) {
	rdb := startRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan LowStockAlert, 1)
	pool := NewPool(rdb)
	pool.Register(JobLowStockAlert, func(_ context.Context, raw json.RawMessage) error {
		var a LowStockAlert
		require.NoError(t, json.Unmarshal(raw, &a))
		got <- a
		return nil
	})
	pool.Start(ctx, 1)

	require.NoError(t, NewDispatcher(rdb).EnqueueLowStockAlert(ctx, LowStockAlert{ProductName: "Ring", Material: "gold", Quantity: 1}))

	select {
	case a := <-got:
		assert.Equal(t, "Ring", a.ProductName)
	case <-time.After(10 * time.Second):
		t.Fatal("job not delivered")
	}

	cancel()
	pool.Wait()
}

func TestPool_FailingJobEndsInDLQ(t *testing.T) {
	rdb := startRedis(t)
	ctx := context.Background()

	var calls int32
	pool := NewPool(rdb)
	pool.Register(JobLowStockAlert, func(context.Context, json.RawMessage) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("smtp down")
	})

	require.NoError(t, NewDispatcher(rdb).EnqueueLowStockAlert(ctx, LowStockAlert{ProductName: "Ring"}))

	// drive the pool by hand: each failure requeues until attempts run out
	for i := 0; i < defaultMaxAttempts; i++ {
		raw, err := rdb.RPop(ctx, QueueAlerts).Result()
		require.NoError(t, err)
		pool.process(ctx, QueueAlerts, raw)
	}

	assert.Equal(t, int32(defaultMaxAttempts), atomic.LoadInt32(&calls))
	n, err := rdb.LLen(ctx, QueueAlerts).Result()
	require.NoError(t, err)
	assert.Zero(t, n)
	dead, err := DLQLength(ctx, rdb, QueueAlerts)
	require.NoError(t, err)
	assert.Equal(t, int64(1), dead)

	// the sweep puts it back with a fresh attempt budget
	moved := replayDeadLetters(ctx, RetryCronConfig{RDB: rdb, Queue: QueueAlerts})
	assert.Equal(t, 1, moved)

	raw, err := rdb.RPop(ctx, QueueAlerts).Result()
	require.NoError(t, err)
	var job Job
	require.NoError(t, json.Unmarshal([]byte(raw), &job))
	assert.Equal(t, 0, job.Attempts)
	assert.Equal(t, 1, job.Replays)
}

type openBreaker struct{}

func (openBreaker) BreakerState() infra.CBState { return infra.CBOpen }

func TestReplayDeadLetters_SkipsWhileBreakerOpen(t *testing.T) {
	rdb := startRedis(t)
	ctx := context.Background()

	SendToDLQ(ctx, rdb, QueueAlerts, Job{Type: JobLowStockAlert, Payload: json.RawMessage(`{}`)}, "smtp down")

	assert.Zero(t, replayDeadLetters(ctx, RetryCronConfig{RDB: rdb, Breaker: openBreaker{}, Queue: QueueAlerts}))
	dead, err := DLQLength(ctx, rdb, QueueAlerts)
	require.NoError(t, err)
	assert.Equal(t, int64(1), dead)
}

func TestReplayDeadLetters_ParksExhaustedJobs(t *testing.T) {
	rdb := startRedis(t)
	ctx := context.Background()

	SendToDLQ(ctx, rdb, QueueAlerts, Job{Type: JobLowStockAlert, Payload: json.RawMessage(`{}`), Replays: maxReplays}, "smtp down")

	assert.Zero(t, replayDeadLetters(ctx, RetryCronConfig{RDB: rdb, Queue: QueueAlerts}))
	dead, err := DLQLength(ctx, rdb, QueueAlerts)
	require.NoError(t, err)
	assert.Equal(t, int64(1), dead)
}
