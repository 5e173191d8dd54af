package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/stemsi/admissions-backend/internal/config"
	"github.com/stemsi/admissions-backend/internal/model"
)

// NoticeQueue pushes admission notices onto the Redis list drained by NotificationWorker.
type NoticeQueue struct {
	rdb *redis.Client
}

// NewNoticeQueue creates a new NoticeQueue.
func NewNoticeQueue(rdb *redis.Client) *NoticeQueue {
	return &NoticeQueue{rdb: rdb}
}

// Enqueue appends the notices in one round trip.
func (q *NoticeQueue) Enqueue(ctx context.Context, notices []model.AdmissionNotice) error {
	if len(notices) == 0 {
		return nil
	}
	values := make([]interface{}, 0, len(notices))
	for _, n := range notices {
		data, err := json.Marshal(n)
		if err != nil {
			return fmt.Errorf("marshal notice: %w", err)
		}
		values = append(values, data)
	}
	if err := q.rdb.RPush(ctx, config.WorkerKey.AdmissionNoticesQueue, values...).Err(); err != nil {
		return fmt.Errorf("push notices: %w", err)
	}
	return nil
}
