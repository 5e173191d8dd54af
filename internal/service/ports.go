package service

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/stemsi/admissions-backend/internal/model"
)

// ProjectionCache stores read projections. Implemented by cache.ProjectionCache and cache.Local.
type ProjectionCache interface {
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, v any) error
	Delete(ctx context.Context, keys ...string) error
	CatalogVersion(ctx context.Context) (int64, error)
	BumpCatalogVersion(ctx context.Context) (int64, error)
}

// NoticeQueue accepts decision notices for asynchronous delivery.
type NoticeQueue interface {
	Enqueue(ctx context.Context, notices []model.AdmissionNotice) error
}

// evict drops projection entries after a committed write. Failures only cost freshness until the TTL.
func evict(ctx context.Context, cache ProjectionCache, log zerolog.Logger, keys ...string) {
	if err := cache.Delete(ctx, keys...); err != nil {
		log.Warn().Err(err).Strs("keys", keys).Msg("Failed to evict projections")
	}
}

// dispatch hands notices to the queue after commit. A failure never undoes the decision.
func dispatch(ctx context.Context, queue NoticeQueue, log zerolog.Logger, notices []model.AdmissionNotice) {
	if len(notices) == 0 {
		return
	}
	if err := queue.Enqueue(context.WithoutCancel(ctx), notices); err != nil {
		log.Warn().Err(err).Int("count", len(notices)).Msg("Failed to enqueue admission notices")
	}
}
