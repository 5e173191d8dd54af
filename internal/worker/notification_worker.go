package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/admissions-backend/internal/config"
	"github.com/stemsi/admissions-backend/internal/model"
	"github.com/stemsi/admissions-backend/internal/repository"
)

const (
	NoticeBatchSize    = 50
	NoticeBatchTimeout = 2 * time.Second
	NoticePollTimeout  = 1 * time.Second // Redis rejects BLPOP timeouts below 1s
)

// NotificationWorker drains admission_notices_queue into the notice outbox and fans each
// persisted notice out to the student's PubSub channel.
type NotificationWorker struct {
	notices repository.NoticeStore
	rdb     *redis.Client
	log     zerolog.Logger
}

// NewNotificationWorker creates a new NotificationWorker.
func NewNotificationWorker(notices repository.NoticeStore, rdb *redis.Client, log zerolog.Logger) *NotificationWorker {
	return &NotificationWorker{
		notices: notices,
		rdb:     rdb,
		log:     log.With().Str("component", "notification_worker").Logger(),
	}
}

// Start runs the worker loop until ctx is cancelled. Call in a goroutine.
func (w *NotificationWorker) Start(ctx context.Context) {
	w.log.Info().Msg("NotificationWorker started")

	batch := make([]model.AdmissionNotice, 0, NoticeBatchSize)
	lastFlush := time.Now()

	for {
		if len(batch) > 0 && (len(batch) >= NoticeBatchSize || time.Since(lastFlush) >= NoticeBatchTimeout) {
			w.flushSafe(ctx, batch)
			batch = batch[:0]
			lastFlush = time.Now()
		}

		select {
		case <-ctx.Done():
			w.shutdown(batch)
			return
		default:
		}

		item, err := w.rdb.BLPop(ctx, NoticePollTimeout, config.WorkerKey.AdmissionNoticesQueue).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) || ctx.Err() != nil {
				continue
			}
			w.log.Error().Err(err).Msg("Redis connection error, sleeping 3s")
			time.Sleep(3 * time.Second)
			continue
		}
		if len(item) < 2 {
			continue
		}

		var n model.AdmissionNotice
		if err := json.Unmarshal([]byte(item[1]), &n); err != nil {
			w.log.Error().Err(err).Str("data", item[1]).Msg("Discarding malformed notice")
			continue
		}
		batch = append(batch, n)
	}
}

// flushSafe tries one bulk insert, falls back to row-by-row, and requeues rows that still fail.
func (w *NotificationWorker) flushSafe(ctx context.Context, batch []model.AdmissionNotice) {
	if len(batch) == 0 {
		return
	}

	err := w.notices.InsertMany(ctx, batch)
	if err == nil {
		w.publish(ctx, batch)
		return
	}
	w.log.Warn().Err(err).Int("count", len(batch)).Msg("Bulk insert failed, attempting row-by-row recovery")

	var (
		stored  []model.AdmissionNotice
		requeue []model.AdmissionNotice
	)
	for _, n := range batch {
		if err := w.notices.Insert(ctx, n); err != nil {
			w.log.Error().Err(err).Str("application_id", n.ApplicationID.String()).Msg("Insert failed, requeueing")
			requeue = append(requeue, n)
			continue
		}
		stored = append(stored, n)
	}

	w.publish(ctx, stored)
	if len(requeue) > 0 {
		w.requeue(ctx, requeue)
	}
}

// publish announces persisted notices on each student's channel. Delivery is best effort.
func (w *NotificationWorker) publish(ctx context.Context, notices []model.AdmissionNotice) {
	if len(notices) == 0 {
		return
	}
	pipe := w.rdb.Pipeline()
	for _, n := range notices {
		data, err := json.Marshal(n)
		if err != nil {
			continue
		}
		pipe.Publish(ctx, config.CacheKey.StudentAdmissionsChannel(n.StudentID), data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Warn().Err(err).Int("count", len(notices)).Msg("Failed to publish notices")
	}
}

func (w *NotificationWorker) requeue(ctx context.Context, items []model.AdmissionNotice) {
	pipe := w.rdb.Pipeline()
	for _, n := range items {
		data, _ := json.Marshal(n)
		pipe.RPush(ctx, config.WorkerKey.AdmissionNoticesQueue, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Error().Err(err).Int("count", len(items)).Msg("CRITICAL: Failed to requeue notices. Data loss occurred.")
		return
	}
	w.log.Info().Int("count", len(items)).Msg("Requeued failed notices")
	// back off while the outbox is unavailable
	time.Sleep(2 * time.Second)
}

func (w *NotificationWorker) shutdown(batch []model.AdmissionNotice) {
	w.log.Info().Msg("Worker stopping, flushing remaining notices...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	w.flushSafe(ctx, batch)

	w.log.Info().Msg("Worker stopped")
}
