package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stemsi/portal-backend/internal/middleware"
	"github.com/stemsi/portal-backend/internal/model"
	ws "github.com/stemsi/portal-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
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

// WSHandler streams live notifications to the portal's bell menu.
type WSHandler struct {
	inbox    NotificationInbox
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(inbox NotificationInbox, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		inbox:    inbox,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// lockedConn serialises writes; gorilla allows one concurrent writer.
type lockedConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (l *lockedConn) write(v interface{}) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return ws.WriteTyped(l.conn, v)
}

// NotificationStream godoc
// WS /ws/v1/student/notifications?token=
// Pushes notifications published on student:<id>:notifications. The client may
// send {"action":"ping"} and receives {"event":"pong"}.
func (h *WSHandler) NotificationStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	studentID := claims.UserID

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().Int("student_id", studentID).Logger()
	out := &lockedConn{conn: conn}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub := h.inbox.Subscribe(ctx, studentID)
	defer sub.Close()

	// Wait for the subscription so nothing published after "ready" is missed.
	if _, err := sub.Receive(ctx); err != nil {
		wsLog.Error().Err(err).Msg("Subscribe failed")
		ws.WriteError(conn, "subscription failed")
		return
	}

	unread := 0
	if list, _, err := h.inbox.List(ctx, studentID, 1, 1); err == nil {
		unread = list.UnreadCount
	}
	if err := out.write(ws.ReadyResponse{Event: ws.EventReady, UnreadCount: unread}); err != nil {
		return
	}

	wsLog.Info().Msg("Student connected")

	go h.readLoop(conn, out, wsLog, cancel)

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			wsLog.Debug().Msg("Connection closed")
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			var n model.Notification
			if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
				wsLog.Warn().Err(err).Msg("Dropping malformed notification")
				continue
			}
			if err := out.write(ws.NotificationResponse{Event: ws.EventNotification, Notification: &n}); err != nil {
				wsLog.Debug().Err(err).Msg("Write failed")
				return
			}
		}
	}
}

// readLoop answers pings and cancels the stream when the client goes away.
func (h *WSHandler) readLoop(conn *websocket.Conn, out *lockedConn, wsLog zerolog.Logger, cancel context.CancelFunc) {
	defer cancel()

	for {
		var msg ws.RequestEnvelope
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			}
			return
		}

		switch msg.Action {
		case ws.ActionPing:
			if err := out.write(ws.PongResponse{Event: ws.EventPong}); err != nil {
				return
			}
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			if err := out.write(ws.ErrorResponse{Event: ws.EventError, Error: "unknown action: " + string(msg.Action)}); err != nil {
				return
			}
		}
	}
}
