package websocket

import "github.com/stemsi/admissions-backend/internal/model"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError   Event = "error"
	EventBacklog Event = "backlog"
	EventNotice  Event = "notice"
	EventPong    Event = "pong"
)

// BacklogResponse carries the student's most recent notices right after connecting.
type BacklogResponse struct {
	Event   Event                   `json:"event"`
	Notices []model.AdmissionNotice `json:"notices"`
}

// NoticeResponse forwards one admission decision as it happens.
type NoticeResponse struct {
	Event  Event                 `json:"event"`
	Notice model.AdmissionNotice `json:"notice"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
