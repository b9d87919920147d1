package worker

// dlq.go
// Receipt and email jobs that exhaust their retries land in dlq:{queue}.
// The monitor reports the backlog; Requeue puts an entry back on its queue
// once the cause (SMTP down, disk full) is fixed.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	dlqPrefix = "dlq:"
	// dlqMaxLen caps each list; older entries are dropped.
	dlqMaxLen = 1000
)

type DLQEntry struct {
	Queue    string          `json:"queue"`
	JobType  string          `json:"job_type"`
	Payload  json.RawMessage `json:"payload"`
	Reason   string          `json:"reason"`
	Attempts int             `json:"attempts"`
	FailedAt time.Time       `json:"failed_at"`
}

func dlqKey(queue string) string { return dlqPrefix + queue }

// sendToDLQ records a job that failed MaxJobAttempts times. Errors are only
// logged: the job's GiveUp has already persisted the failure on the receipt.
func sendToDLQ(ctx context.Context, rdb *redis.Client, entry DLQEntry) {
	if entry.FailedAt.IsZero() {
		entry.FailedAt = time.Now().UTC()
	}
	data, err := json.Marshal(entry)
	if err != nil {
		log.Error().Err(err).Str("queue", entry.Queue).Msg("dlq: marshal failed")
		return
	}

	key := dlqKey(entry.Queue)
	pipe := rdb.TxPipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, dlqMaxLen-1)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Error().Err(err).Str("dlq_key", key).Msg("dlq: push failed")
		return
	}

	log.Warn().
		Str("queue", entry.Queue).
		Str("job_type", entry.JobType).
		Str("reason", entry.Reason).
		Int("attempts", entry.Attempts).
		Msg("dlq: job moved to dead letter queue")
}

// DLQLength returns the backlog of queue's dead letters.
func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, dlqKey(queue)).Result()
}

// OldestDLQEntry returns the entry that has waited longest, or nil when the
// list is empty.
func OldestDLQEntry(ctx context.Context, rdb *redis.Client, queue string) (*DLQEntry, error) {
	raw, err := rdb.LIndex(ctx, dlqKey(queue), -1).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entry DLQEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, fmt.Errorf("dlq entry: %w", err)
	}
	return &entry, nil
}

// Requeue moves up to max entries (oldest first) from the DLQ back to queue.
// It returns how many were moved.
func Requeue(ctx context.Context, rdb *redis.Client, queue string, max int) (int, error) {
	moved := 0
	for moved < max {
		raw, err := rdb.RPop(ctx, dlqKey(queue)).Result()
		if errors.Is(err, redis.Nil) {
			break
		}
		if err != nil {
			return moved, err
		}
		var entry DLQEntry
		if err := json.Unmarshal([]byte(raw), &entry); err != nil {
			log.Error().Err(err).Str("queue", queue).Msg("dlq: dropping unreadable entry")
			continue
		}
		job, err := json.Marshal(Job{Type: entry.JobType, Payload: entry.Payload})
		if err != nil {
			return moved, err
		}
		if err := rdb.LPush(ctx, queue, job).Err(); err != nil {
			return moved, err
		}
		moved++
	}
	if moved > 0 {
		log.Info().Str("queue", queue).Int("moved", moved).Msg("dlq: jobs requeued")
	}
	return moved, nil
}
