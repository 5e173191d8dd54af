package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/admissions-backend/internal/config"
	"github.com/stemsi/admissions-backend/internal/response"
)

const healthTimeout = 2 * time.Second

// Pinger checks connectivity to a backing store. *pgxpool.Pool satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler reports dependency health and worker backlog.
type SystemHandler struct {
	rdb       *redis.Client
	db        Pinger
	startTime time.Time
	log       zerolog.Logger
}

// NewSystemHandler creates a new SystemHandler. db may be nil for the in-memory store.
func NewSystemHandler(rdb *redis.Client, db Pinger, log zerolog.Logger) *SystemHandler {
	return &SystemHandler{
		rdb:       rdb,
		db:        db,
		startTime: time.Now(),
		log:       log.With().Str("component", "system_handler").Logger(),
	}
}

type healthReport struct {
	Status       string            `json:"status"`
	Uptime       string            `json:"uptime"`
	Checks       map[string]string `json:"checks"`
	NoticeQueue  int64             `json:"notice_queue_length"`
	Goroutines   int               `json:"goroutines"`
	HeapAlloc    uint64            `json:"heap_alloc"`
	GoVersion    string            `json:"go_version"`
	StoreBackend string            `json:"store_backend"`
}

// Health godoc
// GET /health
// Returns 200 when every dependency answers, 503 otherwise.
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	report := healthReport{
		Status:       "ok",
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
		Checks:       map[string]string{},
		Goroutines:   runtime.NumGoroutine(),
		GoVersion:    runtime.Version(),
		StoreBackend: config.StoreDriverMemory,
	}

	if err := h.rdb.Ping(ctx).Err(); err != nil {
		h.log.Warn().Err(err).Msg("Redis health check failed")
		report.Checks["redis"] = "down"
		report.Status = "degraded"
	} else {
		report.Checks["redis"] = "up"
		report.NoticeQueue, _ = h.rdb.LLen(ctx, config.WorkerKey.AdmissionNoticesQueue).Result()
	}

	if h.db != nil {
		report.StoreBackend = config.StoreDriverPostgres
		if err := h.db.Ping(ctx); err != nil {
			h.log.Warn().Err(err).Msg("Postgres health check failed")
			report.Checks["postgres"] = "down"
			report.Status = "degraded"
		} else {
			report.Checks["postgres"] = "up"
		}
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	report.HeapAlloc = mem.HeapAlloc

	status := http.StatusOK
	if report.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	response.Success(c, status, report)
}
