package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/admissions-backend/internal/config"
	"github.com/stemsi/admissions-backend/internal/model"
)

// NoticeFeed subscribes to the per-student channels NotificationWorker publishes on.
type NoticeFeed struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewNoticeFeed creates a new NoticeFeed.
func NewNoticeFeed(rdb *redis.Client, log zerolog.Logger) *NoticeFeed {
	return &NoticeFeed{rdb: rdb, log: log.With().Str("component", "notice_feed").Logger()}
}

// Subscribe streams the student's notices until ctx is cancelled, then closes the channel.
func (f *NoticeFeed) Subscribe(ctx context.Context, studentID uuid.UUID) (<-chan model.AdmissionNotice, error) {
	sub := f.rdb.Subscribe(ctx, config.CacheKey.StudentAdmissionsChannel(studentID))
	// Receive blocks until the subscription is confirmed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	out := make(chan model.AdmissionNotice, 16)
	go func() {
		defer close(out)
		defer sub.Close()

		msgs := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var n model.AdmissionNotice
				if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
					f.log.Warn().Err(err).Msg("Dropping malformed notice")
					continue
				}
				select {
				case out <- n:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
