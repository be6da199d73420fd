package session

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"suryawash/internal/identity"
	"suryawash/internal/middleware"
	"suryawash/internal/modules/auth"
	"suryawash/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	writeWait  = 10 * time.Second
)

// StateSource produces session states for a user.
type StateSource interface {
	CurrentState(ctx context.Context, userID string) (*auth.SessionState, error)
	WatchSession(userID string, fn func(auth.SessionState)) func()
}

// WSHandler streams session changes of the token's user: GET /ws/session?token=JWT.
type WSHandler struct {
	hub      *Hub
	sessions middleware.SessionResolver
	states   StateSource
	upgrader websocket.Upgrader
	loggerf  func(format string, args ...interface{})
}

// NewWSHandler accepts any origin when origins is empty.
func NewWSHandler(hub *Hub, sessions middleware.SessionResolver, states StateSource, origins []string, loggerf func(format string, args ...interface{})) *WSHandler {
	if loggerf == nil {
		loggerf = log.Printf
	}
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return &WSHandler{
		hub:      hub,
		sessions: sessions,
		states:   states,
		loggerf:  loggerf,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
	}
}

func (h *WSHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/ws/session", h.HandleWebSocket)
}

// HandleWebSocket authenticates with the token query parameter, since browsers
// cannot set headers on websocket requests.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, http.StatusUnauthorized, "AUTH_HEADER_MISSING", "Token is required. Use ?token=YOUR_JWT_TOKEN")
		return
	}
	sess, err := h.sessions.CurrentSession(c.Request.Context(), token)
	if err != nil {
		if identity.IsCode(err, identity.CodeSessionExpired) {
			response.Error(c, http.StatusUnauthorized, "SESSION_EXPIRED", "Invalid or expired token")
			return
		}
		h.loggerf("level=error msg=ws_session_lookup_failed err=%q", err.Error())
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not verify session")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.loggerf("level=warn msg=ws_upgrade_failed user_id=%s err=%q", sess.UserID, err.Error())
		return
	}

	cl := newClient(sess.UserID, conn)
	h.hub.Register(cl)
	h.loggerf("level=info msg=ws_connected user_id=%s session_id=%s online=%d", sess.UserID, sess.SessionID, h.hub.GetOnlineCount())

	unsubscribe := h.states.WatchSession(sess.UserID, func(st auth.SessionState) {
		h.deliver(cl, token, st)
	})
	defer func() {
		unsubscribe()
		h.hub.Unregister(cl)
		h.loggerf("level=info msg=ws_disconnected user_id=%s", sess.UserID)
	}()

	go h.writeLoop(cl)

	if st, err := h.states.CurrentState(c.Request.Context(), sess.UserID); err == nil {
		cl.enqueue(stateMessage(*st))
	} else {
		h.loggerf("level=error msg=ws_initial_state_failed user_id=%s err=%q", sess.UserID, err.Error())
		cl.enqueue(errorMessage("STATE_UNAVAILABLE", "User data not found"))
	}

	h.readLoop(cl)
}

// deliver forwards st. A sign-out elsewhere only ends this stream when it ended this
// stream's own session.
func (h *WSHandler) deliver(cl *client, token string, st auth.SessionState) {
	if st.Event != string(identity.EventSignedOut) {
		cl.enqueue(stateMessage(st))
		return
	}
	if _, err := h.sessions.CurrentSession(context.Background(), token); err == nil {
		return
	}
	cl.enqueue(stateMessage(st))
	cl.enqueue(Message{Type: messageClose, At: st.At})
}

func (h *WSHandler) writeLoop(cl *client) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-cl.done:
			return
		case m := <-cl.send:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if m.Type == messageClose {
				_ = cl.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "signed out"))
				cl.close()
				return
			}
			if err := cl.conn.WriteJSON(m); err != nil {
				cl.close()
				return
			}
		case <-ticker.C:
			_ = cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cl.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				cl.close()
				return
			}
		}
	}
}

func (h *WSHandler) readLoop(cl *client) {
	_ = cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	cl.conn.SetPongHandler(func(string) error {
		return cl.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := cl.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				h.loggerf("level=warn msg=ws_read_failed user_id=%s err=%q", cl.userID, err.Error())
			}
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			cl.enqueue(errorMessage("INVALID_JSON", "Failed to parse message"))
			continue
		}
		switch msg.Type {
		case "ping":
			cl.enqueue(Message{Type: MessagePong, At: time.Now().UTC()})
		default:
			cl.enqueue(errorMessage("UNKNOWN_TYPE", "Unknown message type: "+msg.Type))
		}
	}
}
