package middleware

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/admissions-backend/internal/response"
	"github.com/stemsi/admissions-backend/internal/service"
)

func TestRateLimiterAllow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(ctx, 3, time.Minute)
	rl.now = func() time.Time { return clock }

	for i := 0; i < 3; i++ {
		assert.True(t, rl.allow("10.0.0.1"), "request %d", i)
	}
	assert.False(t, rl.allow("10.0.0.1"))
	assert.True(t, rl.allow("10.0.0.2"), "buckets are per IP")

	clock = clock.Add(30 * time.Second)
	assert.False(t, rl.allow("10.0.0.1"), "no refill before a full interval")

	clock = clock.Add(31 * time.Second)
	assert.True(t, rl.allow("10.0.0.1"))
}

func TestRateLimiterCleanup(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(ctx, 1, time.Minute)
	rl.now = func() time.Time { return clock }

	rl.allow("10.0.0.1")
	clock = clock.Add(4 * time.Minute)
	rl.allow("10.0.0.2")
	rl.cleanup()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.visitors, "10.0.0.1")
	assert.Contains(t, rl.visitors, "10.0.0.2")
}

func TestRateLimiterMiddleware(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := NewRateLimiter(ctx, 1, time.Hour)
	r := gin.New()
	r.GET("/", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	assert.Equal(t, http.StatusNoContent, serve(r, http.MethodGet, "/", "").Code)
	w := serve(r, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, response.ErrRateLimitExceeded, errorCode(t, w))
}

type fakeLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (f *fakeLimiter) Allow(_ context.Context, key string) (bool, error) {
	f.keys = append(f.keys, key)
	return f.allowed, f.err
}

func TestLimitPerStudent(t *testing.T) {
	tokens := testTokens(time.Hour)
	student := uuid.New()
	tok, err := tokens.IssueToken(student, service.RoleStudent, uuid.Nil)
	require.NoError(t, err)

	keyFn := func(id uuid.UUID) string { return "apply:" + id.String() }
	route := func(l Limiter) *gin.Engine {
		r := gin.New()
		r.POST("/apply", RequireJWT(tokens, service.RoleStudent), LimitPerStudent(l, keyFn, zerolog.Nop()),
			func(c *gin.Context) { c.Status(http.StatusCreated) })
		return r
	}

	t.Run("allowed", func(t *testing.T) {
		l := &fakeLimiter{allowed: true}
		assert.Equal(t, http.StatusCreated, serve(route(l), http.MethodPost, "/apply", tok).Code)
		assert.Equal(t, []string{"apply:" + student.String()}, l.keys)
	})

	t.Run("denied", func(t *testing.T) {
		w := serve(route(&fakeLimiter{}), http.MethodPost, "/apply", tok)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, response.ErrRateLimitExceeded, errorCode(t, w))
	})

	t.Run("limiter failure lets the request through", func(t *testing.T) {
		l := &fakeLimiter{allowed: true, err: errors.New("redis down")}
		assert.Equal(t, http.StatusCreated, serve(route(l), http.MethodPost, "/apply", tok).Code)
	})

	t.Run("no claims", func(t *testing.T) {
		r := gin.New()
		r.POST("/apply", LimitPerStudent(&fakeLimiter{allowed: true}, keyFn, zerolog.Nop()),
			func(c *gin.Context) { c.Status(http.StatusCreated) })
		assert.Equal(t, http.StatusUnauthorized, serve(r, http.MethodPost, "/apply", "").Code)
	})
}

func TestRedisLimiterDisabled(t *testing.T) {
	allowed, err := NewRedisLimiter(nil, 0, time.Minute).Allow(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, allowed)
}
