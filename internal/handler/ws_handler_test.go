package handler

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/admissions-backend/internal/config"
	"github.com/stemsi/admissions-backend/internal/middleware"
	"github.com/stemsi/admissions-backend/internal/model"
	"github.com/stemsi/admissions-backend/internal/repository/memory"
	"github.com/stemsi/admissions-backend/internal/service"
	ws "github.com/stemsi/admissions-backend/internal/websocket"
)

type chanFeed struct {
	ch         chan model.AdmissionNotice
	subscribed chan uuid.UUID
}

func (f *chanFeed) Subscribe(ctx context.Context, studentID uuid.UUID) (<-chan model.AdmissionNotice, error) {
	f.subscribed <- studentID
	out := make(chan model.AdmissionNotice)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case n := <-f.ch:
				out <- n
			}
		}
	}()
	return out, nil
}

func TestAdmissionsStream(t *testing.T) {
	cfg := &config.Config{JWTSecret: "ws-test-secret-0123456789", JWTIssuer: "test-idp", JWTExpiry: time.Hour}
	tokens := service.NewTokenService(cfg)
	db := memory.New()
	student := uuid.New()

	old := model.AdmissionNotice{
		ApplicationID: uuid.New(), StudentID: student, InstitutionID: uuid.New(), CourseID: uuid.New(),
		Status: model.ApplicationStatusApproved, OccurredAt: time.Now().UTC().Add(-time.Hour),
	}
	require.NoError(t, db.Notices().Insert(context.Background(), old))

	feed := &chanFeed{ch: make(chan model.AdmissionNotice), subscribed: make(chan uuid.UUID, 1)}
	h := NewWSHandler(feed, db.Notices(), zerolog.Nop(), nil)

	r := gin.New()
	r.GET("/ws/v1/student/admissions/stream", middleware.RequireStudentWSAuth(tokens), h.AdmissionsStream)
	srv := httptest.NewServer(r)
	defer srv.Close()

	tok, err := tokens.IssueToken(student, service.RoleStudent, uuid.Nil)
	require.NoError(t, err)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/v1/student/admissions/stream?token=" + tok

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	assert.Equal(t, student, <-feed.subscribed)

	var backlog ws.BacklogResponse
	require.NoError(t, conn.ReadJSON(&backlog))
	assert.Equal(t, ws.EventBacklog, backlog.Event)
	require.Len(t, backlog.Notices, 1)
	assert.Equal(t, old.ApplicationID, backlog.Notices[0].ApplicationID)

	batchID := uuid.New()
	live := model.AdmissionNotice{
		ApplicationID: uuid.New(), StudentID: student, Status: model.ApplicationStatusAdmitted,
		BatchID: &batchID, OccurredAt: time.Now().UTC(),
	}
	feed.ch <- live

	var got ws.NoticeResponse
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, ws.EventNotice, got.Event)
	assert.Equal(t, live.ApplicationID, got.Notice.ApplicationID)
	require.NotNil(t, got.Notice.BatchID)
	assert.Equal(t, batchID, *got.Notice.BatchID)

	require.NoError(t, conn.WriteJSON(ws.RequestEnvelope{Action: ws.ActionPing}))
	var pong ws.PongResponse
	require.NoError(t, conn.ReadJSON(&pong))
	assert.Equal(t, ws.EventPong, pong.Event)
}

func TestAdmissionsStreamRequiresStudentToken(t *testing.T) {
	cfg := &config.Config{JWTSecret: "ws-test-secret-0123456789", JWTIssuer: "test-idp", JWTExpiry: time.Hour}
	tokens := service.NewTokenService(cfg)
	h := NewWSHandler(&chanFeed{subscribed: make(chan uuid.UUID, 1)}, memory.New().Notices(), zerolog.Nop(), nil)

	r := gin.New()
	r.GET("/stream", middleware.RequireStudentWSAuth(tokens), h.AdmissionsStream)
	srv := httptest.NewServer(r)
	defer srv.Close()

	base := "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream"

	_, resp, err := websocket.DefaultDialer.Dial(base, nil)
	require.Error(t, err)
	assert.Equal(t, 401, resp.StatusCode)

	staff, err := tokens.IssueToken(uuid.New(), service.RoleInstitutionStaff, uuid.New())
	require.NoError(t, err)
	_, resp, err = websocket.DefaultDialer.Dial(base+"?token="+staff, nil)
	require.Error(t, err)
	assert.Equal(t, 403, resp.StatusCode)
}

func TestBuildUpgraderOrigins(t *testing.T) {
	up := buildUpgrader([]string{"https://portal.example.edu"})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "https://PORTAL.example.edu")
	assert.True(t, up.CheckOrigin(req))

	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, up.CheckOrigin(req))

	assert.True(t, buildUpgrader(nil).CheckOrigin(req))
}
