package worker

// retry_cron.go
// Background goroutine that periodically moves dead-lettered alert jobs back
// onto their queue once the SMTP breaker is no longer open. Each job is
// replayed at most maxReplays times; after that it stays in the DLQ.

import (
	"context"
	"time"

	"jewelshop/internal/infra"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	retryTickInterval = 5 * time.Minute
	retryBatchSize    = 20
	maxReplays        = 2
)

// BreakerStater reports a circuit breaker state; *infra.Mailer satisfies it.
type BreakerStater interface {
	BreakerState() infra.CBState
}

// RetryCronConfig holds all dependencies for the retry goroutine.
type RetryCronConfig struct {
	RDB     *redis.Client
	Breaker BreakerStater
	Queue   string
}

// StartRetryCron launches the sweep. It respects ctx for graceful shutdown.
func StartRetryCron(ctx context.Context, cfg RetryCronConfig) {
	if cfg.Queue == "" {
		cfg.Queue = QueueAlerts
	}
	go func() {
		ticker := time.NewTicker(retryTickInterval)
		defer ticker.Stop()

		log.Info().Str("queue", cfg.Queue).Msg("retry_cron: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("retry_cron: shutting down")
				return
			case <-ticker.C:
				replayDeadLetters(ctx, cfg)
			}
		}
	}()
}

// replayDeadLetters requeues up to retryBatchSize DLQ entries and returns how
// many it moved.
func replayDeadLetters(ctx context.Context, cfg RetryCronConfig) int {
	if cfg.Breaker != nil && cfg.Breaker.BreakerState() == infra.CBOpen {
		log.Debug().Msg("retry_cron: circuit breaker is open, skipping tick")
		return 0
	}

	moved := 0
	var parked []DLQEntry
	for i := 0; i < retryBatchSize; i++ {
		entry, ok, err := popDLQ(ctx, cfg.RDB, cfg.Queue)
		if err != nil {
			log.Error().Err(err).Msg("retry_cron: failed to read DLQ")
			break
		}
		if !ok {
			break
		}
		if entry.Job.Replays >= maxReplays {
			parked = append(parked, entry)
			continue
		}

		job := entry.Job
		job.Attempts = 0
		job.Replays++
		if err := push(ctx, cfg.RDB, cfg.Queue, job); err != nil {
			log.Error().Err(err).Msg("retry_cron: requeue failed")
			parked = append(parked, entry)
			break
		}
		moved++
	}

	// exhausted entries go back for manual inspection
	for _, entry := range parked {
		SendToDLQ(ctx, cfg.RDB, cfg.Queue, entry.Job, entry.Reason)
	}

	if moved > 0 {
		log.Info().Int("count", moved).Str("queue", cfg.Queue).Msg("retry_cron: replayed dead-lettered jobs")
	}
	return moved
}
