package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/admissions-backend/internal/middleware"
	"github.com/stemsi/admissions-backend/internal/model"
	"github.com/stemsi/admissions-backend/internal/repository"
	"github.com/stemsi/admissions-backend/internal/response"
	ws "github.com/stemsi/admissions-backend/internal/websocket"
)

// backlogSize is how many recent notices a fresh connection receives.
const backlogSize = 20

// NoticeSubscriber streams a student's admission notices. Implemented by worker.NoticeFeed.
type NoticeSubscriber interface {
	Subscribe(ctx context.Context, studentID uuid.UUID) (<-chan model.AdmissionNotice, error)
}

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler serves the student's live admissions feed.
type WSHandler struct {
	feed     NoticeSubscriber
	notices  repository.NoticeStore
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(feed NoticeSubscriber, notices repository.NoticeStore, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		feed:     feed,
		notices:  notices,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// AdmissionsStream godoc
// WS /ws/v1/student/admissions/stream?token=
// Sends the recent notice backlog, then every new decision on the student's applications.
func (h *WSHandler) AdmissionsStream(c *gin.Context) {
	studentID, ok := middleware.SubjectID(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Str("student_id", studentID.String()).Logger()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// Subscribe before reading the backlog so nothing published in between is lost.
	stream, err := h.feed.Subscribe(ctx, studentID)
	if err != nil {
		wsLog.Error().Err(err).Msg("Notice subscription failed")
		_ = ws.WriteError(conn, "live feed unavailable")
		return
	}

	backlog, err := h.notices.ListByStudent(ctx, studentID, backlogSize)
	if err != nil {
		wsLog.Warn().Err(err).Msg("Backlog read failed")
		backlog = []model.AdmissionNotice{}
	}
	if err := ws.WriteTyped(conn, ws.BacklogResponse{Event: ws.EventBacklog, Notices: backlog}); err != nil {
		return
	}

	wsLog.Info().Msg("Student connected to admissions feed")

	pongs := make(chan struct{}, 1)
	go h.readLoop(conn, wsLog, pongs, cancel)
	h.writeLoop(ctx, conn, wsLog, stream, pongs)
}

// readLoop consumes client frames until the connection fails; it only understands ping.
func (h *WSHandler) readLoop(conn *websocket.Conn, log zerolog.Logger, pongs chan<- struct{}, cancel context.CancelFunc) {
	defer cancel()

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(ws.PongWait))
	})

	for {
		var msg ws.RequestEnvelope
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Msg("Unexpected close")
			} else {
				log.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionPing:
			select {
			case pongs <- struct{}{}:
			default:
			}
		default:
			log.Debug().Str("action", string(msg.Action)).Msg("Ignoring unknown action")
		}
	}
}

// writeLoop is the connection's only writer.
func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, log zerolog.Logger, stream <-chan model.AdmissionNotice, pongs <-chan struct{}) {
	ticker := time.NewTicker(ws.PingPeriod)
	defer ticker.Stop()

	for {
		var err error
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			return
		case n, ok := <-stream:
			if !ok {
				return
			}
			err = ws.WriteTyped(conn, ws.NoticeResponse{Event: ws.EventNotice, Notice: n})
		case <-pongs:
			err = ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
		case <-ticker.C:
			err = ws.WritePing(conn)
		}
		if err != nil {
			log.Debug().Err(err).Msg("Write failed, closing")
			return
		}
	}
}
