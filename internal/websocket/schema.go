package websocket

import "github.com/stemsi/portal-backend/internal/model"

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
	EventError        Event = "error"
	EventReady        Event = "ready"
	EventNotification Event = "notification"
	EventPong         Event = "pong"
)

// ReadyResponse is sent once the subscription is live.
type ReadyResponse struct {
	Event       Event `json:"event"`
	UnreadCount int   `json:"unread_count"`
}

// NotificationResponse carries one freshly published notification.
type NotificationResponse struct {
	Event        Event               `json:"event"`
	Notification *model.Notification `json:"notification"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
